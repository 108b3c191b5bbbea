package services

import (
	"context"
	"time"

	"github.com/atelierhq/order_tracking_app/internal/core/domain"
)

// OrderListParams select a page of the scoped order list.
type OrderListParams struct {
	Limit  int
	Before *time.Time // created_at cursor, exclusive
}

// CreateOrderInput carries the client-supplied fields of a new order.
type CreateOrderInput struct {
	Title          string
	Details        string
	ClientName     string
	DueDate        *time.Time
	Priority       domain.Priority
	Category       string
	Quantity       int
	AssignmentType domain.AssignmentType
	ImageURLs      []string
}

// UpdateOrderInput uses pointers to distinguish omitted fields from
// zero values.
type UpdateOrderInput struct {
	Title          *string
	Details        *string
	ClientName     *string
	DueDate        *time.Time
	Priority       *domain.Priority
	Category       *string
	Status         *domain.OrderStatus
	Quantity       *int
	AssignmentType *domain.AssignmentType
	ImageURLs      []string
}

// OrderSvcFacade is the order resource: scoped list, CRUD and the
// visibility rule. The caller's profile decides scope: managers see all
// company orders, workers see assigned ∪ general.
type OrderSvcFacade interface {
	ListOrders(ctx context.Context, caller *domain.Profile, params OrderListParams) ([]domain.OrderWithAssignments, error)
	GetOrder(ctx context.Context, caller *domain.Profile, orderID string) (*domain.OrderWithAssignments, error)
	CreateOrder(ctx context.Context, caller *domain.Profile, input CreateOrderInput) (*domain.Order, error)
	UpdateOrder(ctx context.Context, caller *domain.Profile, orderID string, input UpdateOrderInput) (*domain.OrderWithAssignments, error)
	DeleteOrder(ctx context.Context, caller *domain.Profile, orderID string) error
}

// AssignmentSvcFacade is the assignment resource: destructive-replace
// assignment plus the per-worker flags.
type AssignmentSvcFacade interface {
	// AssignWorkers replaces the order's assignment rows wholesale: existing
	// rows are deleted and fresh rows inserted for exactly workerIDs, with
	// starred/marked_done reset to false. Manager only.
	AssignWorkers(ctx context.Context, caller *domain.Profile, orderID string, workerIDs []string) ([]domain.OrderAssignment, error)
	ListMyAssignments(ctx context.Context, caller *domain.Profile) ([]domain.OrderAssignment, error)
	// ToggleStarred flips the star on the worker's own assignment row only.
	ToggleStarred(ctx context.Context, caller *domain.Profile, assignmentID string, starred bool) error
	// MarkDone records the worker's completion flag, creating the assignment
	// row on demand for general orders.
	MarkDone(ctx context.Context, caller *domain.Profile, orderID string, done bool) error
}
