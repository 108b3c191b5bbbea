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
	"github.com/shopspring/decimal"
)

// BuyListService is the shared shopping list. Items belong to the company,
// not to their creator; any member may change or delete any item.
type BuyListService struct {
	buyListRepo portsrepo.BuyListRepository
	feed        *changefeed.Feed
}

// NewBuyListService creates a new BuyListService.
func NewBuyListService(buyListRepo portsrepo.BuyListRepository, feed *changefeed.Feed) portssvc.BuyListSvcFacade {
	return &BuyListService{buyListRepo: buyListRepo, feed: feed}
}

var _ portssvc.BuyListSvcFacade = (*BuyListService)(nil)

func (s *BuyListService) ListItems(ctx context.Context, caller *domain.Profile) ([]domain.BuyListItem, error) {
	companyID, err := callerCompany(caller)
	if err != nil {
		return nil, err
	}
	return s.buyListRepo.ListItemsByCompany(ctx, companyID)
}

func (s *BuyListService) AddItem(ctx context.Context, caller *domain.Profile, itemName string, estimatedCost *decimal.Decimal) (*domain.BuyListItem, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	companyID, err := callerCompany(caller)
	if err != nil {
		return nil, err
	}
	itemName = strings.TrimSpace(itemName)
	if itemName == "" {
		return nil, fmt.Errorf("%w: item name must not be empty", apperrors.ErrValidation)
	}
	if estimatedCost != nil && estimatedCost.IsNegative() {
		return nil, fmt.Errorf("%w: estimated cost must not be negative", apperrors.ErrValidation)
	}

	now := time.Now()
	item := domain.BuyListItem{
		ItemID:        uuid.NewString(),
		ItemName:      itemName,
		EstimatedCost: estimatedCost,
		Status:        domain.BuyPending,
		CompanyID:     companyID,
		AddedBy:       caller.ProfileID,
		AddedByName:   caller.FullName,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.ProfileID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.ProfileID,
		},
	}
	if err := s.buyListRepo.SaveItem(ctx, item); err != nil {
		logger.Error("Failed to save buy list item", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, err
	}

	s.feed.Publish(changefeed.Event{
		Table:     changefeed.TableBuyList,
		Kind:      changefeed.Inserted,
		RowID:     item.ItemID,
		CompanyID: companyID,
	})
	return &item, nil
}

func (s *BuyListService) UpdateItem(ctx context.Context, caller *domain.Profile, itemID string, input portssvc.UpdateBuyListItemInput) (*domain.BuyListItem, error) {
	companyID, err := callerCompany(caller)
	if err != nil {
		return nil, err
	}

	item, err := s.buyListRepo.FindItemByID(ctx, itemID, companyID)
	if err != nil {
		return nil, err
	}

	if input.ItemName != nil {
		name := strings.TrimSpace(*input.ItemName)
		if name == "" {
			return nil, fmt.Errorf("%w: item name must not be empty", apperrors.ErrValidation)
		}
		item.ItemName = name
	}
	if input.EstimatedCost != nil {
		if input.EstimatedCost.IsNegative() {
			return nil, fmt.Errorf("%w: estimated cost must not be negative", apperrors.ErrValidation)
		}
		item.EstimatedCost = input.EstimatedCost
	}
	item.LastUpdatedAt = time.Now()
	item.LastUpdatedBy = caller.ProfileID

	if err := s.buyListRepo.UpdateItem(ctx, *item); err != nil {
		return nil, err
	}

	s.feed.Publish(changefeed.Event{
		Table:     changefeed.TableBuyList,
		Kind:      changefeed.Updated,
		RowID:     itemID,
		CompanyID: companyID,
	})
	return item, nil
}

// ToggleBought flips the item between pending and received.
func (s *BuyListService) ToggleBought(ctx context.Context, caller *domain.Profile, itemID string, received bool) error {
	companyID, err := callerCompany(caller)
	if err != nil {
		return err
	}

	status := domain.BuyPending
	if received {
		status = domain.BuyReceived
	}
	if err := s.buyListRepo.SetStatus(ctx, itemID, companyID, status, caller.ProfileID); err != nil {
		return err
	}

	s.feed.Publish(changefeed.Event{
		Table:     changefeed.TableBuyList,
		Kind:      changefeed.Updated,
		RowID:     itemID,
		CompanyID: companyID,
	})
	return nil
}

func (s *BuyListService) DeleteItem(ctx context.Context, caller *domain.Profile, itemID string) error {
	companyID, err := callerCompany(caller)
	if err != nil {
		return err
	}
	if err := s.buyListRepo.DeleteItem(ctx, itemID, companyID); err != nil {
		return err
	}
	s.feed.Publish(changefeed.Event{
		Table:     changefeed.TableBuyList,
		Kind:      changefeed.Deleted,
		RowID:     itemID,
		CompanyID: companyID,
	})
	return nil
}
