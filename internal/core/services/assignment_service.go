package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/atelierhq/order_tracking_app/internal/apperrors"
	"github.com/atelierhq/order_tracking_app/internal/changefeed"
	"github.com/atelierhq/order_tracking_app/internal/core/domain"
	portsrepo "github.com/atelierhq/order_tracking_app/internal/core/ports/repositories"
	portssvc "github.com/atelierhq/order_tracking_app/internal/core/ports/services"
	"github.com/atelierhq/order_tracking_app/internal/middleware"
	"github.com/google/uuid"
)

// AssignmentService owns the assignment rows linking orders to workers: the
// replace-style assignment operation plus the per-worker flags.
type AssignmentService struct {
	assignmentRepo portsrepo.AssignmentRepository
	orderRepo      portsrepo.OrderRepository
	profileRepo    portsrepo.ProfileRepository
	feed           *changefeed.Feed
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(repos portsrepo.RepositoryProvider, feed *changefeed.Feed) portssvc.AssignmentSvcFacade {
	return &AssignmentService{
		assignmentRepo: repos.AssignmentRepo,
		orderRepo:      repos.OrderRepo,
		profileRepo:    repos.ProfileRepo,
		feed:           feed,
	}
}

var _ portssvc.AssignmentSvcFacade = (*AssignmentService)(nil)

// AssignWorkers replaces the order's assignment rows wholesale. Existing rows
// are deleted and fresh rows inserted for exactly workerIDs, with both flags
// reset to false; workers present in both old and new sets do not keep their
// prior flags.
func (s *AssignmentService) AssignWorkers(ctx context.Context, caller *domain.Profile, orderID string, workerIDs []string) ([]domain.OrderAssignment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	companyID, err := callerCompany(caller)
	if err != nil {
		return nil, err
	}
	if !domain.DeriveCapabilities(caller.Role).IsManager {
		return nil, apperrors.ErrForbidden
	}

	order, err := s.orderRepo.FindOrderByID(ctx, orderID, companyID)
	if err != nil {
		return nil, err
	}

	// Dedupe and verify every worker belongs to the company before touching
	// the rows.
	seen := make(map[string]bool, len(workerIDs))
	unique := make([]string, 0, len(workerIDs))
	for _, workerID := range workerIDs {
		if seen[workerID] {
			continue
		}
		seen[workerID] = true
		worker, err := s.profileRepo.FindProfileByID(ctx, workerID)
		if err != nil {
			return nil, fmt.Errorf("%w: worker %s not found", apperrors.ErrValidation, workerID)
		}
		if worker.CompanyID == nil || *worker.CompanyID != companyID {
			return nil, fmt.Errorf("%w: worker %s is not a member of the company", apperrors.ErrValidation, workerID)
		}
		unique = append(unique, workerID)
	}

	now := time.Now()
	assignments := make([]domain.OrderAssignment, len(unique))
	for i, workerID := range unique {
		assignments[i] = domain.OrderAssignment{
			AssignmentID: uuid.NewString(),
			OrderID:      orderID,
			WorkerID:     workerID,
			CreatedAt:    now,
		}
	}

	if err := s.assignmentRepo.ReplaceAssignments(ctx, orderID, assignments); err != nil {
		logger.Error("Failed to replace assignments", slog.String("error", err.Error()), slog.String("order_id", orderID))
		return nil, err
	}

	logger.Info("Order assignments replaced",
		slog.String("order_id", orderID),
		slog.Int("worker_count", len(unique)))
	s.feed.Publish(changefeed.Event{
		Table:     changefeed.TableAssignments,
		Kind:      changefeed.Updated,
		RowID:     orderID,
		CompanyID: order.CompanyID,
	})
	return assignments, nil
}

func (s *AssignmentService) ListMyAssignments(ctx context.Context, caller *domain.Profile) ([]domain.OrderAssignment, error) {
	if _, err := callerCompany(caller); err != nil {
		return nil, err
	}
	return s.assignmentRepo.ListAssignmentsByWorker(ctx, caller.ProfileID)
}

// ToggleStarred flips the star on the caller's own assignment row. Another
// worker's row matches zero rows and reads as not found.
func (s *AssignmentService) ToggleStarred(ctx context.Context, caller *domain.Profile, assignmentID string, starred bool) error {
	companyID, err := callerCompany(caller)
	if err != nil {
		return err
	}
	if err := s.assignmentRepo.SetStarred(ctx, assignmentID, caller.ProfileID, starred); err != nil {
		return err
	}
	s.feed.Publish(changefeed.Event{
		Table:     changefeed.TableAssignments,
		Kind:      changefeed.Updated,
		RowID:     assignmentID,
		CompanyID: companyID,
	})
	return nil
}

// MarkDone records the worker's completion flag. On a general order the
// assignment row is created on demand; the (order, worker) unique constraint
// keeps repeated toggles on a single row.
func (s *AssignmentService) MarkDone(ctx context.Context, caller *domain.Profile, orderID string, done bool) error {
	companyID, err := callerCompany(caller)
	if err != nil {
		return err
	}

	// Scope check: the order must be visible to the caller.
	order, err := s.orderRepo.FindOrderByID(ctx, orderID, companyID)
	if err != nil {
		return err
	}
	if !domain.DeriveCapabilities(caller.Role).IsManager && order.AssignmentType == domain.AssignmentSpecific {
		assigned := false
		for _, a := range order.Assignments {
			if a.WorkerID == caller.ProfileID {
				assigned = true
				break
			}
		}
		if !assigned {
			return apperrors.ErrNotFound
		}
	}

	if err := s.assignmentRepo.UpsertMarkedDone(ctx, orderID, caller.ProfileID, done); err != nil {
		return err
	}
	s.feed.Publish(changefeed.Event{
		Table:     changefeed.TableAssignments,
		Kind:      changefeed.Updated,
		RowID:     orderID,
		CompanyID: companyID,
	})
	return nil
}
