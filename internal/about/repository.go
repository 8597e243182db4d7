package about

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/content"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/models"
)

func isNoRows(err error) bool { return errors.Is(err, pgx.ErrNoRows) }

// Repository handles about-page persistence. Pages are keyed by slug and
// created or replaced as a whole, translations included.
type Repository struct {
	pool         *pgxpool.Pool
	translations *content.Repository
}

// NewRepository creates an about-pages repository.
func NewRepository(pool *pgxpool.Pool, translations *content.Repository) *Repository {
	return &Repository{pool: pool, translations: translations}
}

// Upsert creates or replaces the page with the given slug together with its
// translation set, in one transaction.
func (r *Repository) Upsert(ctx context.Context, p *models.AboutPage, inputs []content.TranslationInput) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO about_pages (slug, status, hero_image_url, updated_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slug) DO UPDATE SET
			status = EXCLUDED.status,
			hero_image_url = EXCLUDED.hero_image_url,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, q, p.Slug, p.Status, p.HeroImageURL, p.UpdatedBy).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return err
	}
	if err := r.translations.UpsertTx(ctx, tx, p.ID, inputs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetBySlug returns a page by slug regardless of status.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.AboutPage, error) {
	const q = `SELECT id, slug, status, hero_image_url, updated_by, created_at, updated_at
		FROM about_pages WHERE slug = $1`
	var p models.AboutPage
	err := r.pool.QueryRow(ctx, q, slug).Scan(&p.ID, &p.Slug, &p.Status, &p.HeroImageURL, &p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns published pages carrying a servable translation, ordered by
// slug. Sites have a handful of pages, so no pagination.
func (r *Repository) List(ctx context.Context, langs []string) ([]models.AboutPage, error) {
	const q = `SELECT p.id, p.slug, p.status, p.hero_image_url, p.updated_by, p.created_at, p.updated_at
		FROM about_pages p
		WHERE p.status = 'published'
		  AND EXISTS (SELECT 1 FROM content_translations ct WHERE ct.entity_id = p.id AND ct.lang = ANY($1))
		ORDER BY p.slug`
	rows, err := r.pool.Query(ctx, q, langs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.AboutPage
	for rows.Next() {
		var p models.AboutPage
		if err := rows.Scan(&p.ID, &p.Slug, &p.Status, &p.HeroImageURL, &p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// ListAdmin returns every page regardless of status or translation coverage.
func (r *Repository) ListAdmin(ctx context.Context) ([]models.AboutPage, error) {
	const q = `SELECT id, slug, status, hero_image_url, updated_by, created_at, updated_at
		FROM about_pages ORDER BY slug`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.AboutPage
	for rows.Next() {
		var p models.AboutPage
		if err := rows.Scan(&p.ID, &p.Slug, &p.Status, &p.HeroImageURL, &p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Translations returns every translation row for a page (admin editor view).
func (r *Repository) Translations(ctx context.Context, pageID uuid.UUID) ([]models.Translation, error) {
	return r.translations.ListByEntity(ctx, pageID)
}

// Delete removes a page and its translations in one transaction.
func (r *Repository) Delete(ctx context.Context, slug string) (uuid.UUID, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback(ctx)

	var id uuid.UUID
	err = tx.QueryRow(ctx, `DELETE FROM about_pages WHERE slug = $1 RETURNING id`, slug).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	if err := r.translations.DeleteTx(ctx, tx, id); err != nil {
		return uuid.Nil, err
	}
	return id, tx.Commit(ctx)
}
