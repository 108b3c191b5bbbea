package dto

import (
	"time"

	"github.com/atelierhq/order_tracking_app/internal/core/domain"
	portssvc "github.com/atelierhq/order_tracking_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// --- Buy list DTOs ---

// CreateBuyListItemRequest defines data for adding a shopping-list item.
type CreateBuyListItemRequest struct {
	ItemName      string           `json:"itemName" binding:"required"`
	EstimatedCost *decimal.Decimal `json:"estimatedCost"`
}

// UpdateBuyListItemRequest defines the mutable item fields.
type UpdateBuyListItemRequest struct {
	ItemName      *string          `json:"itemName"`
	EstimatedCost *decimal.Decimal `json:"estimatedCost"`
}

// ToUpdateBuyListItemInput converts the request into the service-layer input.
func (r *UpdateBuyListItemRequest) ToUpdateBuyListItemInput() portssvc.UpdateBuyListItemInput {
	return portssvc.UpdateBuyListItemInput{
		ItemName:      r.ItemName,
		EstimatedCost: r.EstimatedCost,
	}
}

// ToggleBoughtRequest flips the item between pending and received.
type ToggleBoughtRequest struct {
	Received *bool `json:"received" binding:"required"`
}

// BuyListItemResponse defines data returned for a buy list item.
type BuyListItemResponse struct {
	ItemID        string           `json:"itemID"`
	ItemName      string           `json:"itemName"`
	EstimatedCost *decimal.Decimal `json:"estimatedCost"`
	Status        domain.BuyStatus `json:"status"`
	CompanyID     string           `json:"companyID"`
	AddedBy       string           `json:"addedBy"`
	AddedByName   string           `json:"addedByName"`
	CreatedAt     time.Time        `json:"createdAt"`
	LastUpdatedAt time.Time        `json:"lastUpdatedAt"`
}

// ToBuyListItemResponse converts domain.BuyListItem to DTO.
func ToBuyListItemResponse(item *domain.BuyListItem) BuyListItemResponse {
	return BuyListItemResponse{
		ItemID:        item.ItemID,
		ItemName:      item.ItemName,
		EstimatedCost: item.EstimatedCost,
		Status:        item.Status,
		CompanyID:     item.CompanyID,
		AddedBy:       item.AddedBy,
		AddedByName:   item.AddedByName,
		CreatedAt:     item.CreatedAt,
		LastUpdatedAt: item.LastUpdatedAt,
	}
}

// ListBuyListResponse wraps a list of buy list items.
type ListBuyListResponse struct {
	Items []BuyListItemResponse `json:"items"`
}

// ToListBuyListResponse converts a slice of domain.BuyListItem to DTO.
func ToListBuyListResponse(items []domain.BuyListItem) ListBuyListResponse {
	list := make([]BuyListItemResponse, len(items))
	for i := range items {
		list[i] = ToBuyListItemResponse(&items[i])
	}
	return ListBuyListResponse{Items: list}
}
