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

type PgxInvitationRepository struct {
	BaseRepository
}

// newPgxInvitationRepository creates a new repository for invitation data.
func newPgxInvitationRepository(pool *pgxpool.Pool) portsrepo.InvitationRepository {
	return &PgxInvitationRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.InvitationRepository = (*PgxInvitationRepository)(nil)

var FULL_INVITATION_SELECT_QUERY = `
SELECT i.code, i.email, i.role, i.company_id, i.invited_by, i.is_used, i.created_at
FROM invitations i
`

func (r *PgxInvitationRepository) SaveInvitation(ctx context.Context, inv domain.Invitation) error {
	query := `
		INSERT INTO invitations (code, email, role, company_id, invited_by, is_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		inv.Code,
		inv.Email,
		inv.Role,
		inv.CompanyID,
		inv.InvitedBy,
		inv.IsUsed,
		inv.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewConflictError("invitation code collision, retry")
		}
		return apperrors.NewAppError(500, "failed to save invitation", err)
	}
	return nil
}

func (r *PgxInvitationRepository) ListInvitationsByCompany(ctx context.Context, companyID string) ([]domain.Invitation, error) {
	query := FULL_INVITATION_SELECT_QUERY + `WHERE i.company_id = $1 ORDER BY i.created_at DESC`
	rows, err := r.Pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query invitations", err)
	}
	defer rows.Close()
	invitations, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Invitation])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Invitation{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect invitation rows", err)
	}
	return invitations, nil
}

func (r *PgxInvitationRepository) DeleteInvitation(ctx context.Context, code, companyID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM invitations WHERE code = $1 AND company_id = $2;`, code, companyID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete invitation", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ConsumeInvitation atomically marks an unused code as used and attaches the
// profile to the invitation's company. The row lock on the invitation keeps
// two concurrent signups from both consuming the same code.
func (r *PgxInvitationRepository) ConsumeInvitation(ctx context.Context, code, profileID string) (*domain.Invitation, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	var inv domain.Invitation
	err = tx.QueryRow(ctx, `
		SELECT code, email, role, company_id, invited_by, is_used, created_at
		FROM invitations
		WHERE code = $1 AND is_used = FALSE
		FOR UPDATE;
	`, code).Scan(&inv.Code, &inv.Email, &inv.Role, &inv.CompanyID, &inv.InvitedBy, &inv.IsUsed, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("invitation code is invalid or already used")
		}
		return nil, apperrors.NewAppError(500, "failed to look up invitation", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE invitations SET is_used = TRUE WHERE code = $1;`, inv.Code); err != nil {
		return nil, apperrors.NewAppError(500, "failed to mark invitation used", err)
	}

	// Invited signups always join as workers; the invitation's role field
	// never grants manager at signup. A manager promotes the member later.
	tag, err := tx.Exec(ctx, `
		UPDATE profiles
		SET company_id = $2, role = $3, setup_stage = $4, last_updated_at = $5, last_updated_by = $1
		WHERE profile_id = $1;
	`, profileID, inv.CompanyID, domain.RoleWorker, domain.StageCompanyResolved, time.Now())
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to attach profile "+profileID+" to company", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.NewNotFoundError("profile not found for invitation consumption")
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	inv.IsUsed = true
	return &inv, nil
}
