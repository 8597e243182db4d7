package translator

import (
	"context"
	"errors"
	"testing"

	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/content"
)

type fakeTranslator struct {
	fail map[string]bool
}

func (f *fakeTranslator) Translate(_ context.Context, _, targetLang, text string) (string, error) {
	if f.fail[targetLang] {
		return "", errors.New("translator down")
	}
	if text == "" {
		return "", nil
	}
	return "[" + targetLang + "] " + text, nil
}

func TestFillMissingTranslatesAbsentLanguages(t *testing.T) {
	p := NewPrefiller(&fakeTranslator{}, nil)
	in := []content.TranslationInput{
		{Lang: "en", Title: "Hello", Summary: "Sum", Body: "Body"},
		{Lang: "de", Title: "Hallo"},
	}

	out := p.FillMissing(context.Background(), in)
	if len(out) != 4 {
		t.Fatalf("got %d inputs, want 4", len(out))
	}
	byLang := make(map[string]content.TranslationInput, len(out))
	for _, tr := range out {
		byLang[tr.Lang] = tr
	}
	if byLang["de"].Title != "Hallo" {
		t.Fatalf("provided translation overwritten: %+v", byLang["de"])
	}
	if got := byLang["es"].Title; got != "[es] Hello" {
		t.Fatalf("es title = %q, want machine translation", got)
	}
	if got := byLang["fr"].Body; got != "[fr] Body" {
		t.Fatalf("fr body = %q, want machine translation", got)
	}
}

func TestFillMissingKeepsSourceTextOnFailure(t *testing.T) {
	p := NewPrefiller(&fakeTranslator{fail: map[string]bool{"fr": true}}, nil)
	in := []content.TranslationInput{{Lang: "en", Title: "Hello"}}

	out := p.FillMissing(context.Background(), in)
	byLang := make(map[string]content.TranslationInput, len(out))
	for _, tr := range out {
		byLang[tr.Lang] = tr
	}
	if got := byLang["fr"].Title; got != "Hello" {
		t.Fatalf("fr title = %q, want source text on translator failure", got)
	}
	if got := byLang["es"].Title; got != "[es] Hello" {
		t.Fatalf("es title = %q, want machine translation", got)
	}
}

func TestFillMissingWithoutDefaultIsNoop(t *testing.T) {
	p := NewPrefiller(&fakeTranslator{}, nil)
	in := []content.TranslationInput{{Lang: "de", Title: "Hallo"}}

	out := p.FillMissing(context.Background(), in)
	if len(out) != 1 {
		t.Fatalf("got %d inputs, want unchanged 1", len(out))
	}
}
