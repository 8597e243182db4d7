package content

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/models"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/pkg/cache"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/pkg/markdown"
)

type fakeStore struct {
	rows      map[uuid.UUID][]models.Translation
	listCalls int
}

func (f *fakeStore) ListByEntity(_ context.Context, entityID uuid.UUID) ([]models.Translation, error) {
	f.listCalls++
	return f.rows[entityID], nil
}

func (f *fakeStore) ListByEntities(_ context.Context, ids []uuid.UUID, langs []string) ([]models.Translation, error) {
	allowed := make(map[string]bool, len(langs))
	for _, l := range langs {
		allowed[l] = true
	}
	var out []models.Translation
	for _, id := range ids {
		for _, t := range f.rows[id] {
			if allowed[t.Lang] {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) ListLanguages(_ context.Context, ids []uuid.UUID) (map[uuid.UUID][]string, error) {
	out := make(map[uuid.UUID][]string)
	for _, id := range ids {
		for _, t := range f.rows[id] {
			out[id] = append(out[id], t.Lang)
		}
	}
	return out, nil
}

type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := f.data[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}) {
	raw, _ := json.Marshal(value)
	f.data[key] = raw
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) {
	for _, k := range keys {
		delete(f.data, k)
	}
}

func tr(id uuid.UUID, lang, title string) models.Translation {
	return models.Translation{
		EntityID: id,
		Lang:     lang,
		Title:    title,
		Summary:  title + " summary",
		Body:     title + " body",
	}
}

func TestResolveRequestedLanguage(t *testing.T) {
	id := uuid.New()
	store := &fakeStore{rows: map[uuid.UUID][]models.Translation{
		id: {tr(id, "en", "Hello"), tr(id, "de", "Hallo")},
	}}
	r := NewResolver(store, nil, nil, nil)

	got, err := r.Resolve(context.Background(), id, "de")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Lang != "de" || got.IsFallback {
		t.Fatalf("got lang=%q fallback=%v, want de/false", got.Lang, got.IsFallback)
	}
	if got.Title != "Hallo" {
		t.Fatalf("got title %q, want Hallo", got.Title)
	}
	if want := []string{"en", "de"}; !reflect.DeepEqual(got.AvailableLanguages, want) {
		t.Fatalf("available = %v, want %v", got.AvailableLanguages, want)
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	id := uuid.New()
	store := &fakeStore{rows: map[uuid.UUID][]models.Translation{
		id: {tr(id, "en", "Hello"), tr(id, "es", "Hola")},
	}}
	r := NewResolver(store, nil, nil, nil)

	got, err := r.Resolve(context.Background(), id, "de")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Lang != "en" || !got.IsFallback {
		t.Fatalf("got lang=%q fallback=%v, want en/true", got.Lang, got.IsFallback)
	}
	if want := []string{"en", "es"}; !reflect.DeepEqual(got.AvailableLanguages, want) {
		t.Fatalf("available = %v, want %v", got.AvailableLanguages, want)
	}
}

func TestResolveNoTranslations(t *testing.T) {
	store := &fakeStore{rows: map[uuid.UUID][]models.Translation{}}
	r := NewResolver(store, nil, nil, nil)

	_, err := r.Resolve(context.Background(), uuid.New(), "en")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestResolveNormalizesTag(t *testing.T) {
	id := uuid.New()
	store := &fakeStore{rows: map[uuid.UUID][]models.Translation{
		id: {tr(id, "en", "Hello"), tr(id, "de", "Hallo")},
	}}
	r := NewResolver(store, nil, nil, nil)

	got, err := r.Resolve(context.Background(), id, "DE-at")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Lang != "de" || got.IsFallback {
		t.Fatalf("got lang=%q fallback=%v, want de/false", got.Lang, got.IsFallback)
	}
}

func TestResolveUnknownTagServesDefaultWithoutFallbackFlag(t *testing.T) {
	id := uuid.New()
	store := &fakeStore{rows: map[uuid.UUID][]models.Translation{
		id: {tr(id, "en", "Hello")},
	}}
	r := NewResolver(store, nil, nil, nil)

	// "xx" normalizes to the default before lookup, so serving the default
	// translation is a direct hit, not a fallback.
	got, err := r.Resolve(context.Background(), id, "xx")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Lang != "en" || got.IsFallback {
		t.Fatalf("got lang=%q fallback=%v, want en/false", got.Lang, got.IsFallback)
	}
}

func TestResolveNeverMixesLanguages(t *testing.T) {
	id := uuid.New()
	en := models.Translation{EntityID: id, Lang: "en", Title: "Hello", Summary: "english summary", Body: "english body"}
	de := models.Translation{EntityID: id, Lang: "de", Title: "Hallo", Summary: "deutsche zusammenfassung", Body: "deutscher text"}
	store := &fakeStore{rows: map[uuid.UUID][]models.Translation{id: {en, de}}}
	r := NewResolver(store, nil, nil, nil)

	got, err := r.Resolve(context.Background(), id, "de")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Title != de.Title || got.Summary != de.Summary || got.Body != de.Body {
		t.Fatalf("mixed-language result: %+v", got)
	}
}

func TestResolveCachesResult(t *testing.T) {
	id := uuid.New()
	store := &fakeStore{rows: map[uuid.UUID][]models.Translation{
		id: {tr(id, "en", "Hello")},
	}}
	c := newFakeCache()
	r := NewResolver(store, c, nil, nil)

	ctx := context.Background()
	if _, err := r.Resolve(ctx, id, "en"); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	got, err := r.Resolve(ctx, id, "en")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if store.listCalls != 1 {
		t.Fatalf("store queried %d times, want 1", store.listCalls)
	}
	if got.Title != "Hello" {
		t.Fatalf("cached title %q, want Hello", got.Title)
	}

	r.Invalidate(ctx, id)
	if _, err := r.Resolve(ctx, id, "en"); err != nil {
		t.Fatalf("resolve after invalidate: %v", err)
	}
	if store.listCalls != 2 {
		t.Fatalf("store queried %d times after invalidate, want 2", store.listCalls)
	}
}

func TestResolveRendersMarkdown(t *testing.T) {
	id := uuid.New()
	row := tr(id, "en", "Hello")
	row.Body = "# Heading\n\nSome *emphasis*."
	store := &fakeStore{rows: map[uuid.UUID][]models.Translation{id: {row}}}
	r := NewResolver(store, nil, markdown.NewRenderer(), nil)

	got, err := r.Resolve(context.Background(), id, "en")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !strings.Contains(got.BodyHTML, "<h1") || !strings.Contains(got.BodyHTML, "<em>") {
		t.Fatalf("unexpected html: %q", got.BodyHTML)
	}
	if got.Body != row.Body {
		t.Fatalf("raw body changed: %q", got.Body)
	}
}

func TestResolveMany(t *testing.T) {
	e1, e2, e3 := uuid.New(), uuid.New(), uuid.New()
	store := &fakeStore{rows: map[uuid.UUID][]models.Translation{
		e1: {tr(e1, "en", "One"), tr(e1, "de", "Eins")},
		e2: {tr(e2, "en", "Two")},
	}}
	r := NewResolver(store, nil, nil, nil)

	got, err := r.ResolveMany(context.Background(), []uuid.UUID{e1, e2, e3}, "de")
	if err != nil {
		t.Fatalf("ResolveMany: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("resolved %d entities, want 2", len(got))
	}
	if c := got[e1]; c.Lang != "de" || c.IsFallback || c.Title != "Eins" {
		t.Fatalf("e1 = %+v, want de/false/Eins", c)
	}
	if c := got[e2]; c.Lang != "en" || !c.IsFallback || c.Title != "Two" {
		t.Fatalf("e2 = %+v, want en/true/Two", c)
	}
	if _, ok := got[e3]; ok {
		t.Fatal("entity without translations must be omitted")
	}
}

func TestResolveManyEmptyInput(t *testing.T) {
	r := NewResolver(&fakeStore{}, nil, nil, nil)
	got, err := r.ResolveMany(context.Background(), nil, "en")
	if err != nil {
		t.Fatalf("ResolveMany: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d results, want 0", len(got))
	}
}

func TestValidateInputs(t *testing.T) {
	cases := []struct {
		name    string
		inputs  []TranslationInput
		wantErr error
	}{
		{"empty set", nil, ErrNoTranslations},
		{"missing default", []TranslationInput{{Lang: "de", Title: "Hallo"}}, ErrDefaultMissing},
		{"valid", []TranslationInput{{Lang: "en", Title: "Hello"}, {Lang: "de", Title: "Hallo"}}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateInputs(tc.inputs)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}

	t.Run("unsupported language", func(t *testing.T) {
		err := ValidateInputs([]TranslationInput{{Lang: "en", Title: "a"}, {Lang: "xx", Title: "b"}})
		if err == nil || !strings.Contains(err.Error(), "unsupported language") {
			t.Fatalf("got %v, want unsupported language error", err)
		}
	})
	t.Run("duplicate language", func(t *testing.T) {
		err := ValidateInputs([]TranslationInput{{Lang: "en", Title: "a"}, {Lang: "en", Title: "b"}})
		if err == nil || !strings.Contains(err.Error(), "duplicate language") {
			t.Fatalf("got %v, want duplicate language error", err)
		}
	})
}
