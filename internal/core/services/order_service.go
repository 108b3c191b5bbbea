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
	"github.com/google/uuid"
)

const defaultOrderPageSize = 50

// OrderService is the order resource. Scope follows the caller's role:
// managers see every company order, workers see assigned plus general.
type OrderService struct {
	orderRepo portsrepo.OrderRepository
	feed      *changefeed.Feed
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo portsrepo.OrderRepository, feed *changefeed.Feed) portssvc.OrderSvcFacade {
	return &OrderService{orderRepo: orderRepo, feed: feed}
}

var _ portssvc.OrderSvcFacade = (*OrderService)(nil)

func callerCompany(caller *domain.Profile) (string, error) {
	if caller == nil || caller.Degraded() {
		return "", apperrors.ErrForbidden
	}
	return *caller.CompanyID, nil
}

func (s *OrderService) ListOrders(ctx context.Context, caller *domain.Profile, params portssvc.OrderListParams) ([]domain.OrderWithAssignments, error) {
	companyID, err := callerCompany(caller)
	if err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 || limit > defaultOrderPageSize {
		limit = defaultOrderPageSize
	}

	if domain.DeriveCapabilities(caller.Role).IsManager {
		return s.orderRepo.ListOrdersByCompany(ctx, companyID, limit, params.Before)
	}
	return s.orderRepo.ListOrdersVisibleToWorker(ctx, companyID, caller.ProfileID, limit, params.Before)
}

// GetOrder fetches one order within the caller's scope. Workers get
// ErrNotFound for specific orders they are not assigned to, identical to a
// nonexistent order.
func (s *OrderService) GetOrder(ctx context.Context, caller *domain.Profile, orderID string) (*domain.OrderWithAssignments, error) {
	companyID, err := callerCompany(caller)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindOrderByID(ctx, orderID, companyID)
	if err != nil {
		return nil, err
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
			return nil, apperrors.ErrNotFound
		}
	}
	return order, nil
}

func validateOrderFields(title string, priority domain.Priority, assignmentType domain.AssignmentType, quantity int) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: order title must not be empty", apperrors.ErrValidation)
	}
	switch priority {
	case domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh, domain.PriorityUrgent:
	default:
		return fmt.Errorf("%w: unknown priority %q", apperrors.ErrValidation, priority)
	}
	switch assignmentType {
	case domain.AssignmentGeneral, domain.AssignmentSpecific:
	default:
		return fmt.Errorf("%w: unknown assignment type %q", apperrors.ErrValidation, assignmentType)
	}
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", apperrors.ErrValidation)
	}
	return nil
}

func (s *OrderService) CreateOrder(ctx context.Context, caller *domain.Profile, input portssvc.CreateOrderInput) (*domain.Order, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	companyID, err := callerCompany(caller)
	if err != nil {
		return nil, err
	}
	if !domain.DeriveCapabilities(caller.Role).IsManager {
		return nil, apperrors.ErrForbidden
	}

	if input.Priority == "" {
		input.Priority = domain.PriorityMedium
	}
	if input.AssignmentType == "" {
		input.AssignmentType = domain.AssignmentGeneral
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}
	if err := validateOrderFields(input.Title, input.Priority, input.AssignmentType, input.Quantity); err != nil {
		return nil, err
	}

	now := time.Now()
	order := domain.Order{
		OrderID:        uuid.NewString(),
		Title:          strings.TrimSpace(input.Title),
		Details:        input.Details,
		ClientName:     input.ClientName,
		DueDate:        input.DueDate,
		Priority:       input.Priority,
		Category:       input.Category,
		Status:         domain.StatusNew,
		Quantity:       input.Quantity,
		AssignmentType: input.AssignmentType,
		ImageURLs:      input.ImageURLs,
		CompanyID:      companyID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.ProfileID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.ProfileID,
		},
	}
	if order.ImageURLs == nil {
		order.ImageURLs = []string{}
	}

	if err := s.orderRepo.SaveOrder(ctx, order); err != nil {
		logger.Error("Failed to save order", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, err
	}

	logger.Info("Order created", slog.String("order_id", order.OrderID), slog.String("company_id", companyID))
	s.feed.Publish(changefeed.Event{
		Table:     changefeed.TableOrders,
		Kind:      changefeed.Inserted,
		RowID:     order.OrderID,
		CompanyID: companyID,
	})
	return &order, nil
}

// UpdateOrder applies the provided fields to the order. Managers may change
// anything; workers may only change the status of orders they can see.
func (s *OrderService) UpdateOrder(ctx context.Context, caller *domain.Profile, orderID string, input portssvc.UpdateOrderInput) (*domain.OrderWithAssignments, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	companyID, err := callerCompany(caller)
	if err != nil {
		return nil, err
	}

	existing, err := s.GetOrder(ctx, caller, orderID)
	if err != nil {
		return nil, err
	}

	isManager := domain.DeriveCapabilities(caller.Role).IsManager
	if !isManager {
		// Workers may only move status.
		if input.Title != nil || input.Details != nil || input.ClientName != nil ||
			input.DueDate != nil || input.Priority != nil || input.Category != nil ||
			input.Quantity != nil || input.AssignmentType != nil || input.ImageURLs != nil {
			return nil, apperrors.ErrForbidden
		}
	}

	order := existing.Order
	if input.Title != nil {
		order.Title = strings.TrimSpace(*input.Title)
	}
	if input.Details != nil {
		order.Details = *input.Details
	}
	if input.ClientName != nil {
		order.ClientName = *input.ClientName
	}
	if input.DueDate != nil {
		order.DueDate = input.DueDate
	}
	if input.Priority != nil {
		order.Priority = *input.Priority
	}
	if input.Category != nil {
		order.Category = *input.Category
	}
	if input.Status != nil {
		switch *input.Status {
		case domain.StatusNew, domain.StatusInProgress, domain.StatusCompleted, domain.StatusCancelled:
			order.Status = *input.Status
		default:
			return nil, fmt.Errorf("%w: unknown order status %q", apperrors.ErrValidation, *input.Status)
		}
	}
	if input.Quantity != nil {
		order.Quantity = *input.Quantity
	}
	if input.AssignmentType != nil {
		order.AssignmentType = *input.AssignmentType
	}
	if input.ImageURLs != nil {
		order.ImageURLs = input.ImageURLs
	}
	if err := validateOrderFields(order.Title, order.Priority, order.AssignmentType, order.Quantity); err != nil {
		return nil, err
	}

	order.LastUpdatedAt = time.Now()
	order.LastUpdatedBy = caller.ProfileID

	if err := s.orderRepo.UpdateOrder(ctx, order); err != nil {
		logger.Error("Failed to update order", slog.String("error", err.Error()), slog.String("order_id", orderID))
		return nil, err
	}

	s.feed.Publish(changefeed.Event{
		Table:     changefeed.TableOrders,
		Kind:      changefeed.Updated,
		RowID:     orderID,
		CompanyID: companyID,
	})
	return s.orderRepo.FindOrderByID(ctx, orderID, companyID)
}

// DeleteOrder removes the order and its assignment rows. Manager only.
func (s *OrderService) DeleteOrder(ctx context.Context, caller *domain.Profile, orderID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	companyID, err := callerCompany(caller)
	if err != nil {
		return err
	}
	if !domain.DeriveCapabilities(caller.Role).IsManager {
		return apperrors.ErrForbidden
	}

	if err := s.orderRepo.DeleteOrder(ctx, orderID, companyID); err != nil {
		return err
	}

	logger.Info("Order deleted", slog.String("order_id", orderID), slog.String("company_id", companyID))
	s.feed.Publish(changefeed.Event{
		Table:     changefeed.TableOrders,
		Kind:      changefeed.Deleted,
		RowID:     orderID,
		CompanyID: companyID,
	})
	return nil
}
