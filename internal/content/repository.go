package content

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/models"
)

// Repository handles translation persistence. Translation rows never change
// outside their owning entity's transaction, so the write methods take a tx.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a content repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByEntity returns every translation row for one entity.
func (r *Repository) ListByEntity(ctx context.Context, entityID uuid.UUID) ([]models.Translation, error) {
	const q = `SELECT entity_id, lang, title, summary, body, created_at, updated_at
		FROM content_translations WHERE entity_id = $1`
	rows, err := r.pool.Query(ctx, q, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Translation
	for rows.Next() {
		var t models.Translation
		if err := rows.Scan(&t.EntityID, &t.Lang, &t.Title, &t.Summary, &t.Body, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// ListByEntities returns translation rows for the given entities restricted
// to langs. One round trip regardless of entity count.
func (r *Repository) ListByEntities(ctx context.Context, entityIDs []uuid.UUID, langs []string) ([]models.Translation, error) {
	const q = `SELECT entity_id, lang, title, summary, body, created_at, updated_at
		FROM content_translations WHERE entity_id = ANY($1) AND lang = ANY($2)`
	rows, err := r.pool.Query(ctx, q, entityIDs, langs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Translation
	for rows.Next() {
		var t models.Translation
		if err := rows.Scan(&t.EntityID, &t.Lang, &t.Title, &t.Summary, &t.Body, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// ListLanguages returns the language codes present per entity.
func (r *Repository) ListLanguages(ctx context.Context, entityIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	const q = `SELECT entity_id, lang FROM content_translations WHERE entity_id = ANY($1)`
	rows, err := r.pool.Query(ctx, q, entityIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uuid.UUID][]string)
	for rows.Next() {
		var id uuid.UUID
		var lang string
		if err := rows.Scan(&id, &lang); err != nil {
			return nil, err
		}
		out[id] = append(out[id], lang)
	}
	return out, rows.Err()
}

// UpsertTx replaces the entity's translation set inside the caller's
// transaction: rows in the new set are upserted in place, rows missing from
// it are deleted. A partial write rolls back with the owning entity.
func (r *Repository) UpsertTx(ctx context.Context, tx pgx.Tx, entityID uuid.UUID, inputs []TranslationInput) error {
	const upsert = `INSERT INTO content_translations (entity_id, lang, title, summary, body)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (entity_id, lang) DO UPDATE SET
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			body = EXCLUDED.body,
			updated_at = NOW()`
	langs := make([]string, 0, len(inputs))
	for _, in := range inputs {
		if _, err := tx.Exec(ctx, upsert, entityID, in.Lang, in.Title, in.Summary, in.Body); err != nil {
			return err
		}
		langs = append(langs, in.Lang)
	}
	const prune = `DELETE FROM content_translations WHERE entity_id = $1 AND NOT (lang = ANY($2))`
	_, err := tx.Exec(ctx, prune, entityID, langs)
	return err
}

// DeleteTx removes all translation rows for an entity inside the caller's
// transaction.
func (r *Repository) DeleteTx(ctx context.Context, tx pgx.Tx, entityID uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM content_translations WHERE entity_id = $1`, entityID)
	return err
}
