package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/content"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/models"
)

// ErrSlugTaken means another event already owns the requested slug.
var ErrSlugTaken = errors.New("events: slug already taken")

func isNoRows(err error) bool { return errors.Is(err, pgx.ErrNoRows) }

// Filter values for List.
const (
	FilterUpcoming = "upcoming"
	FilterPast     = "past"
)

// Repository handles event persistence. Writes that touch translations run
// in one transaction.
type Repository struct {
	pool         *pgxpool.Pool
	translations *content.Repository
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool, translations *content.Repository) *Repository {
	return &Repository{pool: pool, translations: translations}
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.Slug, &e.Status, &e.StartsAt, &e.EndsAt, &e.Venue, &e.BannerImageURL,
		&e.Price, &e.Capacity, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

const eventCols = `id, slug, status, starts_at, ends_at, venue, banner_image_url, price, capacity, created_by, created_at, updated_at`

// Create inserts an event and its translation set in one transaction.
func (r *Repository) Create(ctx context.Context, e *models.Event, inputs []content.TranslationInput) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO events (slug, status, starts_at, ends_at, venue, banner_image_url, price, capacity, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (slug) DO NOTHING
		RETURNING id, created_at, updated_at`
	err = tx.QueryRow(ctx, q, e.Slug, e.Status, e.StartsAt, e.EndsAt, e.Venue, e.BannerImageURL, e.Price, e.Capacity, e.CreatedBy).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrSlugTaken
	}
	if err != nil {
		return err
	}
	if err := r.translations.UpsertTx(ctx, tx, e.ID, inputs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Update rewrites an event's fields and replaces its translation set in one
// transaction.
func (r *Repository) Update(ctx context.Context, e *models.Event, inputs []content.TranslationInput) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var taken bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE slug = $1 AND id <> $2)`, e.Slug, e.ID).Scan(&taken); err != nil {
		return err
	}
	if taken {
		return ErrSlugTaken
	}

	const q = `UPDATE events SET slug = $2, status = $3, starts_at = $4, ends_at = $5, venue = $6,
			banner_image_url = $7, price = $8, capacity = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING created_by, created_at, updated_at`
	if err := tx.QueryRow(ctx, q, e.ID, e.Slug, e.Status, e.StartsAt, e.EndsAt, e.Venue, e.BannerImageURL, e.Price, e.Capacity).
		Scan(&e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return err
	}
	if err := r.translations.UpsertTx(ctx, tx, e.ID, inputs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetByID returns an event by ID regardless of status.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventCols+` FROM events WHERE id = $1`, id))
}

// GetBySlug returns an event by slug regardless of status.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventCols+` FROM events WHERE slug = $1`, slug))
}

// List returns non-draft events carrying a servable translation. filter is
// "", FilterUpcoming or FilterPast; upcoming sorts soonest first, everything
// else newest first. Cancelled and completed events stay visible so past
// listings remain complete.
func (r *Repository) List(ctx context.Context, langs []string, filter string, page, limit int) ([]models.Event, int64, error) {
	const where = `FROM events e
		WHERE e.status <> 'draft'
		  AND EXISTS (SELECT 1 FROM content_translations ct WHERE ct.entity_id = e.id AND ct.lang = ANY($1))
		  AND ($2 = '' OR ($2 = 'upcoming' AND e.starts_at > NOW()) OR ($2 = 'past' AND e.starts_at <= NOW()))`

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) `+where, langs, filter).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT e.id, e.slug, e.status, e.starts_at, e.ends_at, e.venue, e.banner_image_url, e.price, e.capacity, e.created_by, e.created_at, e.updated_at ` +
		where + ` ORDER BY CASE WHEN $2 = 'upcoming' THEN e.starts_at END ASC, e.starts_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.pool.Query(ctx, q, langs, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *e)
	}
	return list, total, rows.Err()
}

// ListAdmin returns every event regardless of status or translation coverage.
func (r *Repository) ListAdmin(ctx context.Context, page, limit int) ([]models.Event, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+eventCols+` FROM events ORDER BY starts_at DESC LIMIT $1 OFFSET $2`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *e)
	}
	return list, total, rows.Err()
}

// Translations returns every translation row for an event (admin editor view).
func (r *Repository) Translations(ctx context.Context, eventID uuid.UUID) ([]models.Translation, error) {
	return r.translations.ListByEntity(ctx, eventID)
}

// Delete removes an event and its translations in one transaction.
// Registrations cascade at the database level.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := r.translations.DeleteTx(ctx, tx, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}
