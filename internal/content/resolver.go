package content

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/i18n"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/models"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/pkg/cache"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/pkg/markdown"
)

// TranslationStore is the persistence the resolver reads from.
type TranslationStore interface {
	ListByEntity(ctx context.Context, entityID uuid.UUID) ([]models.Translation, error)
	ListByEntities(ctx context.Context, entityIDs []uuid.UUID, langs []string) ([]models.Translation, error)
	ListLanguages(ctx context.Context, entityIDs []uuid.UUID) (map[uuid.UUID][]string, error)
}

// Cache is the subset of pkg/cache the resolver uses. Nil disables caching.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{})
	Delete(ctx context.Context, keys ...string)
}

// Resolver serves the best-available translation for content entities. The
// fallback chain is fixed: requested language, then the default language,
// then ErrNotFound. It never mixes fields from two languages in one result.
type Resolver struct {
	store  TranslationStore
	cache  Cache
	md     *markdown.Renderer
	logger *zap.Logger
}

// NewResolver creates a resolver. cache and md may be nil to disable caching
// and HTML rendering.
func NewResolver(store TranslationStore, c Cache, md *markdown.Renderer, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{store: store, cache: c, md: md, logger: logger}
}

func cacheKey(entityID uuid.UUID, lang string) string {
	return "content:" + entityID.String() + ":" + lang
}

// Resolve returns the translation for entityID in lang. Unknown language tags
// normalize to the default rather than erroring; ErrNotFound is returned only
// when neither the requested nor the default translation exists.
func (r *Resolver) Resolve(ctx context.Context, entityID uuid.UUID, lang string) (*models.ResolvedContent, error) {
	lang = i18n.Normalize(lang)

	if r.cache != nil {
		var cached models.ResolvedContent
		err := r.cache.Get(ctx, cacheKey(entityID, lang), &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			r.logger.Warn("content cache read failed", zap.String("entity_id", entityID.String()), zap.Error(err))
		}
	}

	rows, err := r.store.ListByEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	resolved, err := pick(rows, lang)
	if err != nil {
		return nil, err
	}

	if r.md != nil && resolved.Body != "" {
		html, err := r.md.Render(resolved.Body)
		if err != nil {
			r.logger.Warn("markdown render failed", zap.String("entity_id", entityID.String()), zap.Error(err))
		} else {
			resolved.BodyHTML = html
		}
	}

	if r.cache != nil {
		r.cache.Set(ctx, cacheKey(entityID, lang), resolved)
	}
	return resolved, nil
}

// ResolveMany resolves one translation per entity using two bulk queries
// (rows in the requested and default languages, then per-entity language
// sets) merged in memory, so list endpoints stay at a constant query count.
// Entities with nothing servable are omitted from the result. List results
// skip HTML rendering and caching; both are per-entity read concerns.
func (r *Resolver) ResolveMany(ctx context.Context, entityIDs []uuid.UUID, lang string) (map[uuid.UUID]*models.ResolvedContent, error) {
	out := make(map[uuid.UUID]*models.ResolvedContent, len(entityIDs))
	if len(entityIDs) == 0 {
		return out, nil
	}
	lang = i18n.Normalize(lang)

	rows, err := r.store.ListByEntities(ctx, entityIDs, i18n.WithDefault(lang))
	if err != nil {
		return nil, err
	}
	availByEntity, err := r.store.ListLanguages(ctx, entityIDs)
	if err != nil {
		return nil, err
	}

	best := make(map[uuid.UUID]models.Translation, len(entityIDs))
	for _, t := range rows {
		cur, ok := best[t.EntityID]
		if !ok || (cur.Lang != lang && t.Lang == lang) {
			best[t.EntityID] = t
		}
	}

	for id, t := range best {
		out[id] = &models.ResolvedContent{
			Lang:               t.Lang,
			IsFallback:         t.Lang != lang,
			AvailableLanguages: catalogOrder(availByEntity[id]),
			Title:              t.Title,
			Summary:            t.Summary,
			Body:               t.Body,
		}
	}
	return out, nil
}

// Invalidate drops cached resolutions for an entity in every catalog
// language. Owners call it after a translation write.
func (r *Resolver) Invalidate(ctx context.Context, entityID uuid.UUID) {
	if r.cache == nil {
		return
	}
	codes := i18n.Codes()
	keys := make([]string, 0, len(codes))
	for _, code := range codes {
		keys = append(keys, cacheKey(entityID, code))
	}
	r.cache.Delete(ctx, keys...)
}

// pick applies the fallback rules to one entity's full translation set.
func pick(rows []models.Translation, lang string) (*models.ResolvedContent, error) {
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	byLang := make(map[string]models.Translation, len(rows))
	codes := make([]string, 0, len(rows))
	for _, t := range rows {
		byLang[t.Lang] = t
		codes = append(codes, t.Lang)
	}

	t, ok := byLang[lang]
	isFallback := false
	if !ok {
		if t, ok = byLang[i18n.DefaultLang]; !ok {
			return nil, ErrNotFound
		}
		isFallback = true
	}
	return &models.ResolvedContent{
		Lang:               t.Lang,
		IsFallback:         isFallback,
		AvailableLanguages: catalogOrder(codes),
		Title:              t.Title,
		Summary:            t.Summary,
		Body:               t.Body,
	}, nil
}

// catalogOrder filters codes to catalog order so language switchers render
// identically across requests.
func catalogOrder(codes []string) []string {
	present := make(map[string]bool, len(codes))
	for _, c := range codes {
		present[c] = true
	}
	out := make([]string, 0, len(codes))
	for _, c := range i18n.Codes() {
		if present[c] {
			out = append(out, c)
		}
	}
	return out
}
