package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/models"
)

// Repository handles profile persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a profiles repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const profileCols = `id, email, display_name, is_admin, deleted_at, created_at, updated_at`

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.Email, &p.DisplayName, &p.IsAdmin, &p.DeletedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert provisions a profile on first sight and keeps email and display
// name in sync with the provider afterwards. is_admin and deleted_at are
// never written here.
func (r *Repository) Upsert(ctx context.Context, p *models.Profile) error {
	const q = `INSERT INTO profiles (id, email, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			display_name = EXCLUDED.display_name,
			updated_at = NOW()
		RETURNING ` + profileCols
	fresh, err := scanProfile(r.pool.QueryRow(ctx, q, p.ID, p.Email, p.DisplayName))
	if err != nil {
		return err
	}
	*p = *fresh
	return nil
}

// GetByID returns a profile by id, deleted or not.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	const q = `SELECT ` + profileCols + ` FROM profiles WHERE id = $1`
	return scanProfile(r.pool.QueryRow(ctx, q, id))
}

// SoftDelete stamps deleted_at. Stamping an already-deleted profile keeps the
// original timestamp so the call is safe to repeat during reconciliation.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE profiles SET deleted_at = COALESCE(deleted_at, NOW()), updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}

// ListDeleted returns all soft-deleted profiles.
func (r *Repository) ListDeleted(ctx context.Context) ([]models.Profile, error) {
	const q = `SELECT ` + profileCols + ` FROM profiles WHERE deleted_at IS NOT NULL ORDER BY deleted_at`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}
