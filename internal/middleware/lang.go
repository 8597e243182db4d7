package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/i18n"
)

// ContextLang is the key for the request's resolved language in gin context.
const ContextLang = "lang"

// Language resolves the request language from the lang query parameter or,
// failing that, the Accept-Language header, normalized to a catalog code.
// It never rejects a request; unknown tags resolve to the default language.
func Language() gin.HandlerFunc {
	return func(c *gin.Context) {
		tag := c.Query("lang")
		if tag == "" {
			tag = firstAcceptLanguage(c.GetHeader("Accept-Language"))
		}
		c.Set(ContextLang, i18n.Normalize(tag))
		c.Next()
	}
}

// firstAcceptLanguage extracts the highest-priority tag from an
// Accept-Language header ("de-AT,de;q=0.9,en;q=0.8" -> "de-AT").
func firstAcceptLanguage(header string) string {
	if header == "" {
		return ""
	}
	first := header
	if i := strings.IndexByte(first, ','); i >= 0 {
		first = first[:i]
	}
	if i := strings.IndexByte(first, ';'); i >= 0 {
		first = first[:i]
	}
	return strings.TrimSpace(first)
}
