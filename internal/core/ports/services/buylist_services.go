package services

import (
	"context"

	"github.com/atelierhq/order_tracking_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// UpdateBuyListItemInput uses pointers to distinguish omitted fields from
// zero values.
type UpdateBuyListItemInput struct {
	ItemName      *string
	EstimatedCost *decimal.Decimal
}

// BuyListSvcFacade is the shared shopping-list resource. Any company member
// may create, update, toggle or delete items.
type BuyListSvcFacade interface {
	ListItems(ctx context.Context, caller *domain.Profile) ([]domain.BuyListItem, error)
	AddItem(ctx context.Context, caller *domain.Profile, itemName string, estimatedCost *decimal.Decimal) (*domain.BuyListItem, error)
	UpdateItem(ctx context.Context, caller *domain.Profile, itemID string, input UpdateBuyListItemInput) (*domain.BuyListItem, error)
	// ToggleBought flips the item between pending and received.
	ToggleBought(ctx context.Context, caller *domain.Profile, itemID string, received bool) error
	DeleteItem(ctx context.Context, caller *domain.Profile, itemID string) error
}
