package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/atelierhq/order_tracking_app/internal/apperrors"
	"github.com/atelierhq/order_tracking_app/internal/core/domain"
	portsrepo "github.com/atelierhq/order_tracking_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxProfileRepository struct {
	BaseRepository
}

// newPgxProfileRepository creates a new repository for profile data.
func newPgxProfileRepository(pool *pgxpool.Pool) portsrepo.ProfileRepository {
	return &PgxProfileRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ProfileRepository = (*PgxProfileRepository)(nil)

var FULL_PROFILE_SELECT_QUERY = `
SELECT
	p.profile_id, p.full_name, p.email, p.role, p.company_id, p.setup_stage,
	p.created_at, p.created_by, p.last_updated_at, p.last_updated_by
FROM profiles p
`

func (r *PgxProfileRepository) getProfiles(ctx context.Context, filterQuery string, args ...any) ([]domain.Profile, error) {
	query := FULL_PROFILE_SELECT_QUERY + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query profiles", err)
	}
	defer rows.Close()
	profiles, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Profile])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Profile{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect profile rows", err)
	}
	return profiles, nil
}

func (r *PgxProfileRepository) FindProfileByID(ctx context.Context, profileID string) (*domain.Profile, error) {
	profiles, err := r.getProfiles(ctx, `WHERE p.profile_id = $1`, profileID)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &profiles[0], nil
}

// EnsureProfile creates a minimal profile row if none exists. The ON
// CONFLICT clause makes the repair operation idempotent.
func (r *PgxProfileRepository) EnsureProfile(ctx context.Context, profile domain.Profile) error {
	query := `
		INSERT INTO profiles (
			profile_id, full_name, email, role, company_id, setup_stage,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (profile_id) DO NOTHING;
	`
	_, err := r.Pool.Exec(ctx, query,
		profile.ProfileID,
		profile.FullName,
		profile.Email,
		profile.Role,
		profile.CompanyID,
		profile.SetupStage,
		profile.CreatedAt,
		profile.CreatedBy,
		profile.LastUpdatedAt,
		profile.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to ensure profile "+profile.ProfileID, err)
	}
	return nil
}

func (r *PgxProfileRepository) UpdateProfileFields(ctx context.Context, profileID, fullName, email string, role domain.Role, stage domain.SetupStage, updatedBy string) error {
	query := `
		UPDATE profiles
		SET full_name = $2, email = $3, role = $4, setup_stage = $5,
			last_updated_at = $6, last_updated_by = $7
		WHERE profile_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, profileID, fullName, email, role, stage, time.Now(), updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update profile "+profileID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxProfileRepository) SetCompany(ctx context.Context, profileID, companyID string, stage domain.SetupStage, updatedBy string) error {
	query := `
		UPDATE profiles
		SET company_id = $2, setup_stage = $3, last_updated_at = $4, last_updated_by = $5
		WHERE profile_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, profileID, companyID, stage, time.Now(), updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to set company for profile "+profileID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DetachFromCompany clears company membership, scoped by the current
// company so a stale caller cannot detach a profile that already moved.
func (r *PgxProfileRepository) DetachFromCompany(ctx context.Context, profileID, companyID string, updatedBy string) error {
	query := `
		UPDATE profiles
		SET company_id = NULL, last_updated_at = $3, last_updated_by = $4
		WHERE profile_id = $1 AND company_id = $2;
	`
	tag, err := r.Pool.Exec(ctx, query, profileID, companyID, time.Now(), updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to detach profile "+profileID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxProfileRepository) ListProfilesByCompany(ctx context.Context, companyID string) ([]domain.Profile, error) {
	return r.getProfiles(ctx, `WHERE p.company_id = $1 ORDER BY p.full_name`, companyID)
}
