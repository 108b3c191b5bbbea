package pgsql

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/atelierhq/order_tracking_app/internal/apperrors"
	"github.com/atelierhq/order_tracking_app/internal/core/domain"
	portsrepo "github.com/atelierhq/order_tracking_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxOrderRepository struct {
	BaseRepository
}

// newPgxOrderRepository creates a new repository for order data.
func newPgxOrderRepository(pool *pgxpool.Pool) portsrepo.OrderRepository {
	return &PgxOrderRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.OrderRepository = (*PgxOrderRepository)(nil)

var FULL_ORDER_SELECT_QUERY = `
SELECT
	o.order_id, o.title, o.details, o.client_name, o.due_date, o.priority,
	o.category, o.status, o.quantity, o.assignment_type, o.image_urls,
	o.company_id, o.created_at, o.created_by, o.last_updated_at, o.last_updated_by
FROM orders o
`

func (r *PgxOrderRepository) getOrders(ctx context.Context, filterQuery string, args ...any) ([]domain.Order, error) {
	query := FULL_ORDER_SELECT_QUERY + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query orders", err)
	}
	defer rows.Close()
	orders, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Order])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Order{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect order rows", err)
	}
	return orders, nil
}

// attachAssignments loads assignment rows (with worker names) for the given
// orders and zips them onto the result.
func (r *PgxOrderRepository) attachAssignments(ctx context.Context, orders []domain.Order) ([]domain.OrderWithAssignments, error) {
	result := make([]domain.OrderWithAssignments, len(orders))
	if len(orders) == 0 {
		return result, nil
	}

	orderIDs := make([]string, len(orders))
	for i, o := range orders {
		result[i] = domain.OrderWithAssignments{Order: o, Assignments: []domain.OrderAssignment{}}
		orderIDs[i] = o.OrderID
	}

	query := `
		SELECT
			a.assignment_id, a.order_id, a.worker_id,
			COALESCE(p.full_name, '') AS worker_name,
			a.starred, a.marked_done, a.created_at
		FROM order_assignments a
		LEFT JOIN profiles p ON p.profile_id = a.worker_id
		WHERE a.order_id = ANY($1)
		ORDER BY a.created_at;
	`
	rows, err := r.Pool.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query order assignments", err)
	}
	defer rows.Close()
	assignments, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.OrderAssignment])
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewAppError(500, "failed to collect assignment rows", err)
	}

	byOrder := make(map[string]int, len(result))
	for i := range result {
		byOrder[result[i].OrderID] = i
	}
	for _, a := range assignments {
		if i, ok := byOrder[a.OrderID]; ok {
			result[i].Assignments = append(result[i].Assignments, a)
		}
	}
	return result, nil
}

func (r *PgxOrderRepository) SaveOrder(ctx context.Context, order domain.Order) error {
	query := `
		INSERT INTO orders (
			order_id, title, details, client_name, due_date, priority, category,
			status, quantity, assignment_type, image_urls, company_id,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.Pool.Exec(ctx, query,
		order.OrderID,
		order.Title,
		order.Details,
		order.ClientName,
		order.DueDate,
		order.Priority,
		order.Category,
		order.Status,
		order.Quantity,
		order.AssignmentType,
		order.ImageURLs,
		order.CompanyID,
		order.CreatedAt,
		order.CreatedBy,
		order.LastUpdatedAt,
		order.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return apperrors.NewConflictError("order ID " + order.OrderID + " already exists")
			}
			if pgErr.Code == "23503" { // foreign_key_violation
				return apperrors.NewValidationFailedError("order references an unknown company or user")
			}
		}
		return apperrors.NewAppError(500, "failed to save order "+order.OrderID, err)
	}
	return nil
}

func (r *PgxOrderRepository) ListOrdersByCompany(ctx context.Context, companyID string, limit int, before *time.Time) ([]domain.OrderWithAssignments, error) {
	filter := `WHERE o.company_id = $1`
	args := []any{companyID}
	if before != nil {
		filter += ` AND o.created_at < $2`
		args = append(args, *before)
	}
	filter += ` ORDER BY o.created_at DESC`
	if limit > 0 {
		args = append(args, limit)
		filter += ` LIMIT $` + strconv.Itoa(len(args))
	}
	orders, err := r.getOrders(ctx, filter, args...)
	if err != nil {
		return nil, err
	}
	return r.attachAssignments(ctx, orders)
}

// ListOrdersVisibleToWorker returns the union of orders explicitly assigned
// to the worker and general orders of the company. The union is computed in
// the query on every call, never cached.
func (r *PgxOrderRepository) ListOrdersVisibleToWorker(ctx context.Context, companyID, workerID string, limit int, before *time.Time) ([]domain.OrderWithAssignments, error) {
	filter := `
	WHERE o.company_id = $1
	  AND (
		o.assignment_type = 'general'
		OR EXISTS (
			SELECT 1 FROM order_assignments a
			WHERE a.order_id = o.order_id AND a.worker_id = $2
		)
	  )`
	args := []any{companyID, workerID}
	if before != nil {
		filter += ` AND o.created_at < $3`
		args = append(args, *before)
	}
	filter += ` ORDER BY o.created_at DESC`
	if limit > 0 {
		args = append(args, limit)
		filter += ` LIMIT $` + strconv.Itoa(len(args))
	}
	orders, err := r.getOrders(ctx, filter, args...)
	if err != nil {
		return nil, err
	}
	return r.attachAssignments(ctx, orders)
}

func (r *PgxOrderRepository) FindOrderByID(ctx context.Context, orderID, companyID string) (*domain.OrderWithAssignments, error) {
	orders, err := r.getOrders(ctx, `WHERE o.order_id = $1 AND o.company_id = $2`, orderID, companyID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, apperrors.ErrNotFound
	}
	withAssignments, err := r.attachAssignments(ctx, orders)
	if err != nil {
		return nil, err
	}
	return &withAssignments[0], nil
}

// UpdateOrder rewrites mutable fields, scoped by company. Zero matched rows
// means not found or not permitted.
func (r *PgxOrderRepository) UpdateOrder(ctx context.Context, order domain.Order) error {
	query := `
		UPDATE orders
		SET title = $3, details = $4, client_name = $5, due_date = $6,
			priority = $7, category = $8, status = $9, quantity = $10,
			assignment_type = $11, image_urls = $12,
			last_updated_at = $13, last_updated_by = $14
		WHERE order_id = $1 AND company_id = $2;
	`
	tag, err := r.Pool.Exec(ctx, query,
		order.OrderID,
		order.CompanyID,
		order.Title,
		order.Details,
		order.ClientName,
		order.DueDate,
		order.Priority,
		order.Category,
		order.Status,
		order.Quantity,
		order.AssignmentType,
		order.ImageURLs,
		order.LastUpdatedAt,
		order.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update order "+order.OrderID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteOrder removes the order's assignment rows first, then the order,
// in one transaction, satisfying the referential rule.
func (r *PgxOrderRepository) DeleteOrder(ctx context.Context, orderID, companyID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `
		DELETE FROM order_assignments
		WHERE order_id IN (SELECT order_id FROM orders WHERE order_id = $1 AND company_id = $2);
	`, orderID, companyID); err != nil {
		return apperrors.NewAppError(500, "failed to delete assignments for order "+orderID, err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM orders WHERE order_id = $1 AND company_id = $2;`, orderID, companyID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete order "+orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return r.Commit(ctx, tx)
}
