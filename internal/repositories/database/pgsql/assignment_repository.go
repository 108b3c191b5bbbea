package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/atelierhq/order_tracking_app/internal/apperrors"
	"github.com/atelierhq/order_tracking_app/internal/core/domain"
	portsrepo "github.com/atelierhq/order_tracking_app/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAssignmentRepository struct {
	BaseRepository
}

// newPgxAssignmentRepository creates a new repository for order assignment data.
func newPgxAssignmentRepository(pool *pgxpool.Pool) portsrepo.AssignmentRepository {
	return &PgxAssignmentRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.AssignmentRepository = (*PgxAssignmentRepository)(nil)

var FULL_ASSIGNMENT_SELECT_QUERY = `
SELECT
	a.assignment_id, a.order_id, a.worker_id,
	COALESCE(p.full_name, '') AS worker_name,
	a.starred, a.marked_done, a.created_at
FROM order_assignments a
LEFT JOIN profiles p ON p.profile_id = a.worker_id
`

func (r *PgxAssignmentRepository) getAssignments(ctx context.Context, filterQuery string, args ...any) ([]domain.OrderAssignment, error) {
	query := FULL_ASSIGNMENT_SELECT_QUERY + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query order assignments", err)
	}
	defer rows.Close()
	assignments, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.OrderAssignment])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.OrderAssignment{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect assignment rows", err)
	}
	return assignments, nil
}

func (r *PgxAssignmentRepository) ListAssignmentsByWorker(ctx context.Context, workerID string) ([]domain.OrderAssignment, error) {
	return r.getAssignments(ctx, `WHERE a.worker_id = $1 ORDER BY a.created_at;`, workerID)
}

// ReplaceAssignments deletes every assignment row of the order and inserts
// the given rows in their place. Replaced workers lose starred and
// marked_done state; that reset is intentional.
func (r *PgxAssignmentRepository) ReplaceAssignments(ctx context.Context, orderID string, assignments []domain.OrderAssignment) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM order_assignments WHERE order_id = $1;`, orderID); err != nil {
		return apperrors.NewAppError(500, "failed to clear assignments for order "+orderID, err)
	}

	for _, a := range assignments {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_assignments (assignment_id, order_id, worker_id, starred, marked_done, created_at)
			VALUES ($1, $2, $3, $4, $5, $6);
		`, a.AssignmentID, orderID, a.WorkerID, a.Starred, a.MarkedDone, a.CreatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
				return apperrors.NewValidationFailedError("worker " + a.WorkerID + " does not exist")
			}
			return apperrors.NewAppError(500, "failed to assign worker "+a.WorkerID+" to order "+orderID, err)
		}
	}

	return r.Commit(ctx, tx)
}

// SetStarred flips the star flag on the caller's own assignment row.
func (r *PgxAssignmentRepository) SetStarred(ctx context.Context, assignmentID, workerID string, starred bool) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE order_assignments SET starred = $3
		WHERE assignment_id = $1 AND worker_id = $2;
	`, assignmentID, workerID, starred)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update starred flag", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpsertMarkedDone records completion on an existing assignment row, or
// creates one when the worker picked up a general order without an explicit
// assignment. The (order_id, worker_id) unique constraint makes repeated
// calls converge on a single row.
func (r *PgxAssignmentRepository) UpsertMarkedDone(ctx context.Context, orderID, workerID string, done bool) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO order_assignments (assignment_id, order_id, worker_id, starred, marked_done, created_at)
		VALUES ($1, $2, $3, FALSE, $4, $5)
		ON CONFLICT (order_id, worker_id)
		DO UPDATE SET marked_done = EXCLUDED.marked_done;
	`, uuid.New().String(), orderID, workerID, done, time.Now())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return apperrors.ErrNotFound
		}
		return apperrors.NewAppError(500, "failed to record completion for order "+orderID, err)
	}
	return nil
}

func (r *PgxAssignmentRepository) DeleteAssignmentsByWorker(ctx context.Context, workerID, companyID string) error {
	_, err := r.Pool.Exec(ctx, `
		DELETE FROM order_assignments
		WHERE worker_id = $1
		  AND order_id IN (SELECT order_id FROM orders WHERE company_id = $2);
	`, workerID, companyID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete assignments for worker "+workerID, err)
	}
	return nil
}
