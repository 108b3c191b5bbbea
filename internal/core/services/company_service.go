package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atelierhq/order_tracking_app/internal/apperrors"
	"github.com/atelierhq/order_tracking_app/internal/changefeed"
	"github.com/atelierhq/order_tracking_app/internal/core/domain"
	portsrepo "github.com/atelierhq/order_tracking_app/internal/core/ports/repositories"
	portssvc "github.com/atelierhq/order_tracking_app/internal/core/ports/services"
	"github.com/atelierhq/order_tracking_app/internal/middleware"
	"github.com/atelierhq/order_tracking_app/internal/utils"
	"github.com/google/uuid"
)

const invitationCodeLength = 9

// CompanyService manages the tenant: the company record, its members and
// invitations.
type CompanyService struct {
	companyRepo    portsrepo.CompanyRepository
	profileRepo    portsrepo.ProfileRepository
	invitationRepo portsrepo.InvitationRepository
	assignmentRepo portsrepo.AssignmentRepository
	feed           *changefeed.Feed
}

// NewCompanyService creates a new CompanyService.
func NewCompanyService(repos portsrepo.RepositoryProvider, feed *changefeed.Feed) portssvc.CompanySvcFacade {
	return &CompanyService{
		companyRepo:    repos.CompanyRepo,
		profileRepo:    repos.ProfileRepo,
		invitationRepo: repos.InvitationRepo,
		assignmentRepo: repos.AssignmentRepo,
		feed:           feed,
	}
}

var _ portssvc.CompanySvcFacade = (*CompanyService)(nil)

// requireMember loads the caller's profile and checks it belongs to the
// company. Returns the profile for further role checks.
func (s *CompanyService) requireMember(ctx context.Context, companyID, callerID string) (*domain.Profile, error) {
	caller, err := s.profileRepo.FindProfileByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if caller.CompanyID == nil || *caller.CompanyID != companyID {
		return nil, apperrors.ErrForbidden
	}
	return caller, nil
}

func (s *CompanyService) requireManager(ctx context.Context, companyID, callerID string) (*domain.Profile, error) {
	caller, err := s.requireMember(ctx, companyID, callerID)
	if err != nil {
		return nil, err
	}
	if !domain.DeriveCapabilities(caller.Role).IsManager {
		return nil, apperrors.ErrForbidden
	}
	return caller, nil
}

func (s *CompanyService) CreateCompany(ctx context.Context, name, creatorUserID string) (*domain.Company, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: company name must not be empty", apperrors.ErrValidation)
	}

	company := domain.Company{
		CompanyID: uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
		CreatedBy: creatorUserID,
	}
	if err := s.companyRepo.SaveCompany(ctx, company); err != nil {
		logger.Error("Failed to save company", slog.String("error", err.Error()), slog.String("name", name))
		return nil, err
	}
	if err := s.profileRepo.SetCompany(ctx, creatorUserID, company.CompanyID, domain.StageCompanyResolved, creatorUserID); err != nil {
		logger.Error("Failed to attach creator to company", slog.String("error", err.Error()), slog.String("company_id", company.CompanyID))
		return nil, err
	}

	logger.Info("Company created", slog.String("company_id", company.CompanyID), slog.String("creator_user_id", creatorUserID))
	return &company, nil
}

func (s *CompanyService) GetCompany(ctx context.Context, companyID, callerID string) (*domain.Company, error) {
	if _, err := s.requireMember(ctx, companyID, callerID); err != nil {
		return nil, err
	}
	return s.companyRepo.FindCompanyByID(ctx, companyID)
}

func (s *CompanyService) ListMembers(ctx context.Context, companyID, callerID string) ([]domain.Profile, error) {
	if _, err := s.requireMember(ctx, companyID, callerID); err != nil {
		return nil, err
	}
	return s.profileRepo.ListProfilesByCompany(ctx, companyID)
}

// RemoveMember detaches a worker from the company and deletes their
// assignment rows. Managers cannot remove themselves.
func (s *CompanyService) RemoveMember(ctx context.Context, companyID, callerID, workerID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.requireManager(ctx, companyID, callerID); err != nil {
		return err
	}
	if workerID == callerID {
		return fmt.Errorf("%w: cannot remove yourself from the company", apperrors.ErrValidation)
	}

	target, err := s.profileRepo.FindProfileByID(ctx, workerID)
	if err != nil {
		return err
	}
	if target.CompanyID == nil || *target.CompanyID != companyID {
		return apperrors.ErrNotFound
	}

	if err := s.assignmentRepo.DeleteAssignmentsByWorker(ctx, workerID, companyID); err != nil {
		return err
	}
	if err := s.profileRepo.DetachFromCompany(ctx, workerID, companyID, callerID); err != nil {
		return err
	}

	logger.Info("Member removed from company",
		slog.String("company_id", companyID),
		slog.String("worker_id", workerID),
		slog.String("removed_by", callerID))
	s.feed.Publish(changefeed.Event{
		Table:     changefeed.TableProfiles,
		Kind:      changefeed.Updated,
		RowID:     workerID,
		CompanyID: companyID,
	})
	return nil
}

func (s *CompanyService) CreateInvitation(ctx context.Context, companyID, callerID, email string, role domain.Role) (*domain.Invitation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.requireManager(ctx, companyID, callerID); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: invitation email must not be empty", apperrors.ErrValidation)
	}
	switch role {
	case domain.RoleWorker, domain.RoleManager:
	default:
		return nil, fmt.Errorf("%w: invitation role must be worker or manager", apperrors.ErrValidation)
	}

	code, err := utils.GenerateInvitationCode(invitationCodeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invitation code: %w", err)
	}

	inv := domain.Invitation{
		Code:      code,
		Email:     email,
		Role:      role,
		CompanyID: companyID,
		InvitedBy: callerID,
		CreatedAt: time.Now(),
	}
	if err := s.invitationRepo.SaveInvitation(ctx, inv); err != nil {
		logger.Error("Failed to save invitation", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, err
	}

	logger.Info("Invitation created", slog.String("company_id", companyID), slog.String("invited_by", callerID))
	s.feed.Publish(changefeed.Event{
		Table:     changefeed.TableInvitations,
		Kind:      changefeed.Inserted,
		RowID:     inv.Code,
		CompanyID: companyID,
	})
	return &inv, nil
}

func (s *CompanyService) ListInvitations(ctx context.Context, companyID, callerID string) ([]domain.Invitation, error) {
	if _, err := s.requireManager(ctx, companyID, callerID); err != nil {
		return nil, err
	}
	return s.invitationRepo.ListInvitationsByCompany(ctx, companyID)
}

func (s *CompanyService) DeleteInvitation(ctx context.Context, companyID, callerID, code string) error {
	if _, err := s.requireManager(ctx, companyID, callerID); err != nil {
		return err
	}
	if err := s.invitationRepo.DeleteInvitation(ctx, code, companyID); err != nil {
		return err
	}
	s.feed.Publish(changefeed.Event{
		Table:     changefeed.TableInvitations,
		Kind:      changefeed.Deleted,
		RowID:     code,
		CompanyID: companyID,
	})
	return nil
}
