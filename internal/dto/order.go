package dto

import (
	"time"

	"github.com/atelierhq/order_tracking_app/internal/core/domain"
	portssvc "github.com/atelierhq/order_tracking_app/internal/core/ports/services"
)

// --- Order DTOs ---

// CreateOrderRequest defines data for creating an order.
type CreateOrderRequest struct {
	Title          string                `json:"title" binding:"required"`
	Details        string                `json:"details"`
	ClientName     string                `json:"clientName"`
	DueDate        *time.Time            `json:"dueDate"`
	Priority       domain.Priority       `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Category       string                `json:"category"`
	Quantity       int                   `json:"quantity" binding:"omitempty,min=1"`
	AssignmentType domain.AssignmentType `json:"assignmentType" binding:"omitempty,oneof=general specific"`
	ImageURLs      []string              `json:"imageURLs" binding:"omitempty,max=5"`
}

// ToCreateOrderInput converts the request into the service-layer input.
func (r *CreateOrderRequest) ToCreateOrderInput() portssvc.CreateOrderInput {
	return portssvc.CreateOrderInput{
		Title:          r.Title,
		Details:        r.Details,
		ClientName:     r.ClientName,
		DueDate:        r.DueDate,
		Priority:       r.Priority,
		Category:       r.Category,
		Quantity:       r.Quantity,
		AssignmentType: r.AssignmentType,
		ImageURLs:      r.ImageURLs,
	}
}

// UpdateOrderRequest defines the mutable order fields. Pointers distinguish
// omitted fields from zero values.
type UpdateOrderRequest struct {
	Title          *string                `json:"title"`
	Details        *string                `json:"details"`
	ClientName     *string                `json:"clientName"`
	DueDate        *time.Time             `json:"dueDate"`
	Priority       *domain.Priority       `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Category       *string                `json:"category"`
	Status         *domain.OrderStatus    `json:"status" binding:"omitempty,oneof=new in_progress completed cancelled"`
	Quantity       *int                   `json:"quantity" binding:"omitempty,min=1"`
	AssignmentType *domain.AssignmentType `json:"assignmentType" binding:"omitempty,oneof=general specific"`
	ImageURLs      []string               `json:"imageURLs" binding:"omitempty,max=5"`
}

// ToUpdateOrderInput converts the request into the service-layer input.
func (r *UpdateOrderRequest) ToUpdateOrderInput() portssvc.UpdateOrderInput {
	return portssvc.UpdateOrderInput{
		Title:          r.Title,
		Details:        r.Details,
		ClientName:     r.ClientName,
		DueDate:        r.DueDate,
		Priority:       r.Priority,
		Category:       r.Category,
		Status:         r.Status,
		Quantity:       r.Quantity,
		AssignmentType: r.AssignmentType,
		ImageURLs:      r.ImageURLs,
	}
}

// AssignmentResponse defines data returned for an order assignment.
type AssignmentResponse struct {
	AssignmentID string    `json:"assignmentID"`
	OrderID      string    `json:"orderID"`
	WorkerID     string    `json:"workerID"`
	WorkerName   string    `json:"workerName"`
	Starred      bool      `json:"starred"`
	MarkedDone   bool      `json:"markedDone"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ToAssignmentResponse converts domain.OrderAssignment to DTO.
func ToAssignmentResponse(a *domain.OrderAssignment) AssignmentResponse {
	return AssignmentResponse{
		AssignmentID: a.AssignmentID,
		OrderID:      a.OrderID,
		WorkerID:     a.WorkerID,
		WorkerName:   a.WorkerName,
		Starred:      a.Starred,
		MarkedDone:   a.MarkedDone,
		CreatedAt:    a.CreatedAt,
	}
}

// OrderResponse defines data returned for an order with its assignments.
type OrderResponse struct {
	OrderID        string                `json:"orderID"`
	Title          string                `json:"title"`
	Details        string                `json:"details"`
	ClientName     string                `json:"clientName"`
	DueDate        *time.Time            `json:"dueDate"`
	Priority       domain.Priority       `json:"priority"`
	Category       string                `json:"category"`
	Status         domain.OrderStatus    `json:"status"`
	Quantity       int                   `json:"quantity"`
	AssignmentType domain.AssignmentType `json:"assignmentType"`
	ImageURLs      []string              `json:"imageURLs"`
	CompanyID      string                `json:"companyID"`
	Assignments    []AssignmentResponse  `json:"assignments"`
	CreatedAt      time.Time             `json:"createdAt"`
	CreatedBy      string                `json:"createdBy"`
	LastUpdatedAt  time.Time             `json:"lastUpdatedAt"`
}

// ToOrderResponse converts domain.OrderWithAssignments to DTO.
func ToOrderResponse(o *domain.OrderWithAssignments) OrderResponse {
	assignments := make([]AssignmentResponse, len(o.Assignments))
	for i := range o.Assignments {
		assignments[i] = ToAssignmentResponse(&o.Assignments[i])
	}
	return OrderResponse{
		OrderID:        o.OrderID,
		Title:          o.Title,
		Details:        o.Details,
		ClientName:     o.ClientName,
		DueDate:        o.DueDate,
		Priority:       o.Priority,
		Category:       o.Category,
		Status:         o.Status,
		Quantity:       o.Quantity,
		AssignmentType: o.AssignmentType,
		ImageURLs:      o.ImageURLs,
		CompanyID:      o.CompanyID,
		Assignments:    assignments,
		CreatedAt:      o.CreatedAt,
		CreatedBy:      o.CreatedBy,
		LastUpdatedAt:  o.LastUpdatedAt,
	}
}

// ListOrdersResponse wraps a page of orders with the cursor for the next
// page, empty when the page was not full.
type ListOrdersResponse struct {
	Orders    []OrderResponse `json:"orders"`
	NextToken string          `json:"nextToken,omitempty"`
}

// ToListOrdersResponse converts a slice of domain.OrderWithAssignments to DTO.
func ToListOrdersResponse(orders []domain.OrderWithAssignments, nextToken string) ListOrdersResponse {
	list := make([]OrderResponse, len(orders))
	for i := range orders {
		list[i] = ToOrderResponse(&orders[i])
	}
	return ListOrdersResponse{Orders: list, NextToken: nextToken}
}

// AssignWorkersRequest defines the full replacement set of workers for an
// order. An empty list clears all assignments.
type AssignWorkersRequest struct {
	WorkerIDs []string `json:"workerIDs" binding:"required"`
}

// ListAssignmentsResponse wraps a list of assignments.
type ListAssignmentsResponse struct {
	Assignments []AssignmentResponse `json:"assignments"`
}

// ToListAssignmentsResponse converts a slice of domain.OrderAssignment to DTO.
func ToListAssignmentsResponse(as []domain.OrderAssignment) ListAssignmentsResponse {
	list := make([]AssignmentResponse, len(as))
	for i := range as {
		list[i] = ToAssignmentResponse(&as[i])
	}
	return ListAssignmentsResponse{Assignments: list}
}

// SetFlagRequest carries a boolean flag toggle (starred or marked done).
type SetFlagRequest struct {
	Value *bool `json:"value" binding:"required"`
}
