package services

import (
	"context"
	"errors"
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
	"github.com/atelierhq/order_tracking_app/internal/platform/config"
	"github.com/google/uuid"
)

// ProfileService resolves, repairs and updates profiles layered over
// identities. It owns the post-signup setup sequence and the session state
// derivation used by the authorization gate.
type ProfileService struct {
	cfg            *config.Config
	profileRepo    portsrepo.ProfileRepository
	companyRepo    portsrepo.CompanyRepository
	invitationRepo portsrepo.InvitationRepository
	userRepo       portsrepo.UserRepository
	feed           *changefeed.Feed
}

// NewProfileService creates a new ProfileService.
func NewProfileService(cfg *config.Config, repos portsrepo.RepositoryProvider, feed *changefeed.Feed) portssvc.ProfileSvcFacade {
	return &ProfileService{
		cfg:            cfg,
		profileRepo:    repos.ProfileRepo,
		companyRepo:    repos.CompanyRepo,
		invitationRepo: repos.InvitationRepo,
		userRepo:       repos.UserRepo,
		feed:           feed,
	}
}

var _ portssvc.ProfileSvcFacade = (*ProfileService)(nil)

func (s *ProfileService) FetchProfile(ctx context.Context, profileID string) (*domain.Profile, error) {
	return s.profileRepo.FindProfileByID(ctx, profileID)
}

// WaitForProfile polls for the trigger-created profile row with bounded
// backoff. The row is written by the database when the identity is inserted,
// so it normally appears on the first attempt; the backoff covers replication
// lag without a fixed settling sleep.
func (s *ProfileService) WaitForProfile(ctx context.Context, profileID string) (*domain.Profile, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	delay := s.cfg.ProfilePollBaseDelay
	for attempt := 1; ; attempt++ {
		profile, err := s.profileRepo.FindProfileByID(ctx, profileID)
		if err == nil {
			return profile, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		if attempt >= s.cfg.ProfilePollAttempts {
			logger.Warn("Profile row did not appear within poll budget",
				slog.String("profile_id", profileID),
				slog.Int("attempts", attempt))
			return nil, apperrors.ErrNotFound
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > s.cfg.ProfilePollMaxDelay {
			delay = s.cfg.ProfilePollMaxDelay
		}
	}
}

// RepairProfile idempotently creates a minimal profile row for the identity
// and returns the current profile. It never re-runs company resolution on
// its own; the recorded setup_stage tells the client which step to retry.
func (s *ProfileService) RepairProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	minimal := domain.Profile{
		ProfileID:  user.UserID,
		Email:      user.Email,
		Role:       domain.RoleWorker,
		SetupStage: domain.StageRegistered,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     user.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: user.UserID,
		},
	}
	if err := s.profileRepo.EnsureProfile(ctx, minimal); err != nil {
		logger.Error("Failed to ensure profile row", slog.String("error", err.Error()), slog.String("user_id", userID))
		return nil, err
	}

	profile, err := s.profileRepo.FindProfileByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	logger.Info("Profile repaired",
		slog.String("profile_id", profile.ProfileID),
		slog.String("setup_stage", string(profile.SetupStage)))
	s.feed.Publish(changefeed.Event{
		Table:     changefeed.TableProfiles,
		Kind:      changefeed.Updated,
		RowID:     profile.ProfileID,
		CompanyID: companyIDOf(profile),
	})
	return profile, nil
}

// CompleteProfileSetup runs the post-signup sequence for the new identity:
// write the collected profile fields, then resolve the company by either
// creating a new one or consuming an invitation. The sequence is not one
// transaction; each completed step advances setup_stage so a crash leaves a
// resumable degraded account rather than a broken one.
func (s *ProfileService) CompleteProfileSetup(ctx context.Context, user *domain.User, metadata domain.SignupMetadata) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	role := metadata.Role
	if role == "" {
		role = domain.RoleWorker
	}
	if metadata.CompanyType == domain.CompanyTypeExisting {
		// Invited signups always start as workers, whatever role the
		// signup request or the invitation claims.
		role = domain.RoleWorker
	}

	// Step 1: the trigger-created row exists by now (or WaitForProfile gave
	// up); fill in the collected fields.
	if err := s.profileRepo.UpdateProfileFields(ctx, user.UserID, metadata.FullName, user.Email, role, domain.StageProfileUpdated, user.UserID); err != nil {
		logger.Error("Failed to update profile fields during setup", slog.String("error", err.Error()), slog.String("user_id", user.UserID))
		return err
	}

	// Step 2: resolve the company.
	switch metadata.CompanyType {
	case domain.CompanyTypeNew:
		if strings.TrimSpace(metadata.CompanyName) == "" {
			return fmt.Errorf("%w: company name is required to create a company", apperrors.ErrValidation)
		}
		company := domain.Company{
			CompanyID: uuid.NewString(),
			Name:      strings.TrimSpace(metadata.CompanyName),
			CreatedAt: time.Now(),
			CreatedBy: user.UserID,
		}
		if err := s.companyRepo.SaveCompany(ctx, company); err != nil {
			logger.Error("Failed to create company during setup", slog.String("error", err.Error()), slog.String("user_id", user.UserID))
			return err
		}
		if err := s.profileRepo.SetCompany(ctx, user.UserID, company.CompanyID, domain.StageCompanyResolved, user.UserID); err != nil {
			logger.Error("Failed to attach profile to new company", slog.String("error", err.Error()), slog.String("user_id", user.UserID), slog.String("company_id", company.CompanyID))
			return err
		}
		logger.Info("Company created during signup", slog.String("company_id", company.CompanyID), slog.String("user_id", user.UserID))

	case domain.CompanyTypeExisting:
		// Codes are generated uppercase; fold what the user typed so case
		// never decides whether a valid invitation matches.
		code := strings.ToUpper(strings.TrimSpace(metadata.InvitationCode))
		if code == "" {
			return fmt.Errorf("%w: invitation code is required to join a company", apperrors.ErrValidation)
		}
		inv, err := s.invitationRepo.ConsumeInvitation(ctx, code, user.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: invitation code is invalid or already used", apperrors.ErrValidation)
			}
			logger.Error("Failed to consume invitation during setup", slog.String("error", err.Error()), slog.String("user_id", user.UserID))
			return err
		}
		logger.Info("Invitation consumed during signup",
			slog.String("company_id", inv.CompanyID),
			slog.String("user_id", user.UserID),
			slog.String("role", string(inv.Role)))

	default:
		return fmt.Errorf("%w: unknown company type %q", apperrors.ErrValidation, metadata.CompanyType)
	}

	s.feed.Publish(changefeed.Event{
		Table: changefeed.TableProfiles,
		Kind:  changefeed.Updated,
		RowID: user.UserID,
	})
	return nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, profileID, fullName string) (*domain.Profile, error) {
	if strings.TrimSpace(fullName) == "" {
		return nil, fmt.Errorf("%w: full name must not be empty", apperrors.ErrValidation)
	}

	profile, err := s.profileRepo.FindProfileByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if err := s.profileRepo.UpdateProfileFields(ctx, profileID, strings.TrimSpace(fullName), profile.Email, profile.Role, profile.SetupStage, profileID); err != nil {
		return nil, err
	}

	updated, err := s.profileRepo.FindProfileByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	s.feed.Publish(changefeed.Event{
		Table:     changefeed.TableProfiles,
		Kind:      changefeed.Updated,
		RowID:     profileID,
		CompanyID: companyIDOf(updated),
	})
	return updated, nil
}

// SessionState derives the gate state for an authenticated identity. A
// missing or degraded profile is reported as a state, never an error.
func (s *ProfileService) SessionState(ctx context.Context, userID string) (*portssvc.SessionOverview, error) {
	profile, err := s.profileRepo.FindProfileByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &portssvc.SessionOverview{
				State: domain.SessionNoProfile,
			}, nil
		}
		return nil, err
	}

	return &portssvc.SessionOverview{
		State:        domain.DeriveSessionState(true, profile),
		Profile:      profile,
		Capabilities: domain.DeriveCapabilities(profile.Role),
	}, nil
}

func companyIDOf(p *domain.Profile) string {
	if p == nil || p.CompanyID == nil {
		return ""
	}
	return *p.CompanyID
}
