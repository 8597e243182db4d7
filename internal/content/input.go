package content

import (
	"errors"
	"fmt"

	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/i18n"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/models"
)

var (
	// ErrNotFound means the entity has no translation the resolver may serve.
	ErrNotFound = errors.New("content: no translation found")
	// ErrNoTranslations means an admin save carried an empty translation set.
	ErrNoTranslations = errors.New("content: at least one translation required")
	// ErrDefaultMissing means an admin save lacked the default language.
	ErrDefaultMissing = errors.New("content: default language translation required")
)

// TranslationInput is one language's text in an admin save request.
type TranslationInput struct {
	Lang    string `json:"lang" binding:"required"`
	Title   string `json:"title" binding:"required"`
	Summary string `json:"summary"`
	Body    string `json:"body"`
}

// ValidStatus reports whether s is a content status accepted from admins.
func ValidStatus(s string) bool {
	switch s {
	case models.ContentStatusDraft, models.ContentStatusPublished, models.ContentStatusArchived:
		return true
	}
	return false
}

// ValidateInputs checks an admin-supplied translation set: every language
// must be a catalog code (exact, no normalization for admin input), appear at
// most once, and the default language must be present so the resolver always
// has a fallback row.
func ValidateInputs(inputs []TranslationInput) error {
	if len(inputs) == 0 {
		return ErrNoTranslations
	}
	seen := make(map[string]bool, len(inputs))
	hasDefault := false
	for _, in := range inputs {
		if !i18n.IsSupported(in.Lang) {
			return fmt.Errorf("content: unsupported language %q", in.Lang)
		}
		if seen[in.Lang] {
			return fmt.Errorf("content: duplicate language %q", in.Lang)
		}
		seen[in.Lang] = true
		if in.Lang == i18n.DefaultLang {
			hasDefault = true
		}
	}
	if !hasDefault {
		return ErrDefaultMissing
	}
	return nil
}
