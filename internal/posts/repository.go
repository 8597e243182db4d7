package posts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/content"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/models"
)

// ErrSlugTaken means another post already owns the requested slug.
var ErrSlugTaken = errors.New("posts: slug already taken")

func isNoRows(err error) bool { return errors.Is(err, pgx.ErrNoRows) }

// Repository handles post persistence. Writes that touch translations run in
// one transaction so a partial multi-language save never lands.
type Repository struct {
	pool         *pgxpool.Pool
	translations *content.Repository
}

// NewRepository creates a posts repository.
func NewRepository(pool *pgxpool.Pool, translations *content.Repository) *Repository {
	return &Repository{pool: pool, translations: translations}
}

// Create inserts a post and its translation set in one transaction.
func (r *Repository) Create(ctx context.Context, p *models.Post, inputs []content.TranslationInput) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO posts (slug, status, cover_image_url, published_at, created_by)
		VALUES ($1, $2, $3, CASE WHEN $2 = 'published' THEN NOW() END, $4)
		ON CONFLICT (slug) DO NOTHING
		RETURNING id, published_at, created_at, updated_at`
	err = tx.QueryRow(ctx, q, p.Slug, p.Status, p.CoverImageURL, p.CreatedBy).
		Scan(&p.ID, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrSlugTaken
	}
	if err != nil {
		return err
	}
	if err := r.translations.UpsertTx(ctx, tx, p.ID, inputs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Update rewrites a post's fields and replaces its translation set in one
// transaction. A first transition to published stamps published_at.
func (r *Repository) Update(ctx context.Context, p *models.Post, inputs []content.TranslationInput) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var taken bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1 AND id <> $2)`, p.Slug, p.ID).Scan(&taken); err != nil {
		return err
	}
	if taken {
		return ErrSlugTaken
	}

	const q = `UPDATE posts SET slug = $2, status = $3, cover_image_url = $4,
			published_at = CASE WHEN $3 = 'published' THEN COALESCE(published_at, NOW()) ELSE published_at END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING published_at, created_at, updated_at`
	if err := tx.QueryRow(ctx, q, p.ID, p.Slug, p.Status, p.CoverImageURL).
		Scan(&p.PublishedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return err
	}
	if err := r.translations.UpsertTx(ctx, tx, p.ID, inputs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetByID returns a post by ID regardless of status.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	const q = `SELECT id, slug, status, cover_image_url, published_at, created_by, created_at, updated_at
		FROM posts WHERE id = $1`
	var p models.Post
	err := r.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Slug, &p.Status, &p.CoverImageURL, &p.PublishedAt, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetBySlug returns a post by slug regardless of status.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	const q = `SELECT id, slug, status, cover_image_url, published_at, created_by, created_at, updated_at
		FROM posts WHERE slug = $1`
	var p models.Post
	err := r.pool.QueryRow(ctx, q, slug).Scan(&p.ID, &p.Slug, &p.Status, &p.CoverImageURL, &p.PublishedAt, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns published posts that carry a translation in one of langs,
// newest first, with the total for pagination. Posts without a servable
// translation are excluded so page counts stay truthful.
func (r *Repository) List(ctx context.Context, langs []string, page, limit int) ([]models.Post, int64, error) {
	const where = `FROM posts p
		WHERE p.status = 'published'
		  AND EXISTS (SELECT 1 FROM content_translations ct WHERE ct.entity_id = p.id AND ct.lang = ANY($1))`

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) `+where, langs).Scan(&total); err != nil {
		return nil, 0, err
	}

	const q = `SELECT p.id, p.slug, p.status, p.cover_image_url, p.published_at, p.created_by, p.created_at, p.updated_at `
	rows, err := r.pool.Query(ctx, q+where+` ORDER BY p.published_at DESC NULLS LAST LIMIT $2 OFFSET $3`,
		langs, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Slug, &p.Status, &p.CoverImageURL, &p.PublishedAt, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

// ListAdmin returns every post regardless of status or translation coverage.
func (r *Repository) ListAdmin(ctx context.Context, page, limit int) ([]models.Post, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts`).Scan(&total); err != nil {
		return nil, 0, err
	}
	const q = `SELECT id, slug, status, cover_image_url, published_at, created_by, created_at, updated_at
		FROM posts ORDER BY updated_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, q, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Slug, &p.Status, &p.CoverImageURL, &p.PublishedAt, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

// Translations returns every translation row for a post (admin editor view).
func (r *Repository) Translations(ctx context.Context, postID uuid.UUID) ([]models.Translation, error) {
	return r.translations.ListByEntity(ctx, postID)
}

// Delete removes a post and its translations in one transaction.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := r.translations.DeleteTx(ctx, tx, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}
