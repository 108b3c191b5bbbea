package services

import (
	"context"
	"time"

	"github.com/atelierhq/order_tracking_app/internal/apperrors"
	"github.com/atelierhq/order_tracking_app/internal/core/domain"
	portsrepo "github.com/atelierhq/order_tracking_app/internal/core/ports/repositories"
	portssvc "github.com/atelierhq/order_tracking_app/internal/core/ports/services"
)

const recentOrderWindow = 30 * 24 * time.Hour

// AnalyticsService computes dashboard aggregations in memory over the
// caller's visibility-scoped orders. The data volumes here are one company's
// orders, so there is no need to push the aggregation into SQL.
type AnalyticsService struct {
	orderRepo portsrepo.OrderRepository
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(orderRepo portsrepo.OrderRepository) portssvc.AnalyticsSvcFacade {
	return &AnalyticsService{orderRepo: orderRepo}
}

var _ portssvc.AnalyticsSvcFacade = (*AnalyticsService)(nil)

func isActive(status domain.OrderStatus) bool {
	return status == domain.StatusNew || status == domain.StatusInProgress
}

// CompanySummary aggregates all company orders. Manager only.
func (s *AnalyticsService) CompanySummary(ctx context.Context, caller *domain.Profile) (*domain.CompanySummary, error) {
	companyID, err := callerCompany(caller)
	if err != nil {
		return nil, err
	}
	if !domain.DeriveCapabilities(caller.Role).IsManager {
		return nil, apperrors.ErrForbidden
	}

	orders, err := s.orderRepo.ListOrdersByCompany(ctx, companyID, 0, nil)
	if err != nil {
		return nil, err
	}

	summary := domain.CompanySummary{
		ByStatus:    make(map[domain.OrderStatus]int),
		ByPriority:  make(map[domain.Priority]int),
		WorkerLoads: []domain.WorkerLoad{},
	}
	recentCutoff := time.Now().Add(-recentOrderWindow)
	loadByWorker := make(map[string]*domain.WorkerLoad)
	workerOrder := []string{}

	for _, o := range orders {
		summary.TotalOrders++
		summary.ByStatus[o.Status]++
		summary.ByPriority[o.Priority]++
		if o.Status == domain.StatusCompleted {
			summary.CompletedOrders++
		}
		if isActive(o.Status) {
			summary.PendingOrders++
			if o.Priority == domain.PriorityHigh || o.Priority == domain.PriorityUrgent {
				summary.ActiveHighPriority++
			}
		}
		if o.CreatedAt.After(recentCutoff) {
			summary.RecentOrders++
		}

		for _, a := range o.Assignments {
			load, ok := loadByWorker[a.WorkerID]
			if !ok {
				load = &domain.WorkerLoad{WorkerID: a.WorkerID, WorkerName: a.WorkerName}
				loadByWorker[a.WorkerID] = load
				workerOrder = append(workerOrder, a.WorkerID)
			}
			load.Assigned++
			if a.MarkedDone {
				load.Completed++
			}
		}
	}

	for _, workerID := range workerOrder {
		summary.WorkerLoads = append(summary.WorkerLoads, *loadByWorker[workerID])
	}
	return &summary, nil
}

// WorkerSummary aggregates the caller's own scope: assigned plus general
// orders, and their own assignment flags.
func (s *AnalyticsService) WorkerSummary(ctx context.Context, caller *domain.Profile) (*domain.WorkerSummary, error) {
	companyID, err := callerCompany(caller)
	if err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.ListOrdersVisibleToWorker(ctx, companyID, caller.ProfileID, 0, nil)
	if err != nil {
		return nil, err
	}

	summary := domain.WorkerSummary{}
	for _, o := range orders {
		summary.AssignedOrders++
		if o.Status == domain.StatusCompleted {
			summary.CompletedOrders++
		}
		if isActive(o.Status) {
			summary.PendingOrders++
			if o.Priority == domain.PriorityHigh || o.Priority == domain.PriorityUrgent {
				summary.ActiveHighPriority++
			}
		}
		for _, a := range o.Assignments {
			if a.WorkerID == caller.ProfileID && a.Starred {
				summary.StarredOrders++
			}
		}
	}
	return &summary, nil
}
