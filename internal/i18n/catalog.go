// Package i18n holds the site's language catalog. The supported set is
// compiled in: adding a language is a deliberate code change because it also
// requires translated UI chrome and editorial content.
package i18n

import "strings"

// DefaultLang is the site's default language. Published content must carry a
// translation in it, which makes it a safe fallback for every request.
const DefaultLang = "en"

// Language describes one supported language.
type Language struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

// catalog lists the supported languages, default first. Names are native.
var catalog = []Language{
	{Code: "en", Name: "English", IsDefault: true},
	{Code: "de", Name: "Deutsch"},
	{Code: "es", Name: "Español"},
	{Code: "fr", Name: "Français"},
}

var supported = func() map[string]bool {
	m := make(map[string]bool, len(catalog))
	for _, l := range catalog {
		m[l.Code] = true
	}
	return m
}()

// Languages returns the catalog, default first. The slice is a copy.
func Languages() []Language {
	out := make([]Language, len(catalog))
	copy(out, catalog)
	return out
}

// Codes returns the supported language codes, default first.
func Codes() []string {
	out := make([]string, len(catalog))
	for i, l := range catalog {
		out[i] = l.Code
	}
	return out
}

// IsSupported reports whether code is exactly a supported language code.
// Callers that accept arbitrary client input want Normalize instead.
func IsSupported(code string) bool {
	return supported[code]
}

// WithDefault returns the normalized lang followed by the default language
// when they differ: the lookup order for fallback-aware queries.
func WithDefault(lang string) []string {
	lang = Normalize(lang)
	if lang == DefaultLang {
		return []string{lang}
	}
	return []string{lang, DefaultLang}
}

// Normalize maps an arbitrary client-supplied language tag to a supported
// code. Matching is case-insensitive; a regional tag falls back to its base
// language (de-AT -> de); anything else maps to the default. Normalize never
// fails, so callers can pass Accept-Language fragments or query params as-is.
func Normalize(tag string) string {
	t := strings.ToLower(strings.TrimSpace(tag))
	if t == "" {
		return DefaultLang
	}
	if supported[t] {
		return t
	}
	if i := strings.IndexAny(t, "-_"); i > 0 {
		if base := t[:i]; supported[base] {
			return base
		}
	}
	return DefaultLang
}
