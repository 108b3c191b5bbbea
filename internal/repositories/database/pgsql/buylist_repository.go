package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/atelierhq/order_tracking_app/internal/apperrors"
	"github.com/atelierhq/order_tracking_app/internal/core/domain"
	portsrepo "github.com/atelierhq/order_tracking_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxBuyListRepository struct {
	BaseRepository
}

// newPgxBuyListRepository creates a new repository for buy list data.
func newPgxBuyListRepository(pool *pgxpool.Pool) portsrepo.BuyListRepository {
	return &PgxBuyListRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.BuyListRepository = (*PgxBuyListRepository)(nil)

var FULL_BUY_LIST_SELECT_QUERY = `
SELECT
	b.item_id, b.item_name, b.estimated_cost, b.status, b.company_id, b.added_by,
	COALESCE(p.full_name, '') AS added_by_name,
	b.created_at, b.created_by, b.last_updated_at, b.last_updated_by
FROM buy_list b
LEFT JOIN profiles p ON p.profile_id = b.added_by
`

func (r *PgxBuyListRepository) getItems(ctx context.Context, filterQuery string, args ...any) ([]domain.BuyListItem, error) {
	query := FULL_BUY_LIST_SELECT_QUERY + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query buy list items", err)
	}
	defer rows.Close()
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.BuyListItem])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.BuyListItem{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect buy list rows", err)
	}
	return items, nil
}

func (r *PgxBuyListRepository) SaveItem(ctx context.Context, item domain.BuyListItem) error {
	query := `
		INSERT INTO buy_list (item_id, item_name, estimated_cost, status, company_id, added_by, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		item.ItemID,
		item.ItemName,
		item.EstimatedCost,
		item.Status,
		item.CompanyID,
		item.AddedBy,
		item.CreatedAt,
		item.CreatedBy,
		item.LastUpdatedAt,
		item.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewConflictError("buy list item ID " + item.ItemID + " already exists")
		}
		return apperrors.NewAppError(500, "failed to save buy list item "+item.ItemID, err)
	}
	return nil
}

func (r *PgxBuyListRepository) ListItemsByCompany(ctx context.Context, companyID string) ([]domain.BuyListItem, error) {
	return r.getItems(ctx, `WHERE b.company_id = $1 ORDER BY b.created_at DESC;`, companyID)
}

func (r *PgxBuyListRepository) FindItemByID(ctx context.Context, itemID, companyID string) (*domain.BuyListItem, error) {
	items, err := r.getItems(ctx, `WHERE b.item_id = $1 AND b.company_id = $2;`, itemID, companyID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &items[0], nil
}

func (r *PgxBuyListRepository) UpdateItem(ctx context.Context, item domain.BuyListItem) error {
	query := `
		UPDATE buy_list
		SET item_name = $3, estimated_cost = $4, status = $5,
			last_updated_at = $6, last_updated_by = $7
		WHERE item_id = $1 AND company_id = $2;
	`
	tag, err := r.Pool.Exec(ctx, query,
		item.ItemID,
		item.CompanyID,
		item.ItemName,
		item.EstimatedCost,
		item.Status,
		item.LastUpdatedAt,
		item.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update buy list item "+item.ItemID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxBuyListRepository) SetStatus(ctx context.Context, itemID, companyID string, status domain.BuyStatus, updatedBy string) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE buy_list SET status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE item_id = $1 AND company_id = $2;
	`, itemID, companyID, status, time.Now(), updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status of buy list item "+itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxBuyListRepository) DeleteItem(ctx context.Context, itemID, companyID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM buy_list WHERE item_id = $1 AND company_id = $2;`, itemID, companyID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete buy list item "+itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
