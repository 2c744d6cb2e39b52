// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/barter-backend/internal/i18n"
)

// I18nMiddleware picks the first Accept-Language entry we have a locale for.
func I18nMiddleware(defaultLang string) gin.HandlerFunc {
	if defaultLang == "" {
		defaultLang = "en"
	}
	return func(c *gin.Context) {
		c.Set("lang", negotiateLanguage(c.GetHeader("Accept-Language"), i18n.GetSupportedLanguages(), defaultLang))
		c.Next()
	}
}

// negotiateLanguage handles values like "hi-IN,hi;q=0.9,en;q=0.8".
// Entries are taken in header order; quality weights are not compared.
func negotiateLanguage(header string, supported []string, fallback string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.Split(part, ";")[0])
		if tag == "" {
			continue
		}
		subtags := strings.FieldsFunc(tag, func(r rune) bool { return r == '-' || r == '_' })
		if len(subtags) == 0 {
			continue
		}
		base := strings.ToLower(subtags[0])
		for _, lang := range supported {
			if lang == base {
				return lang
			}
		}
	}
	return fallback
}
