package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/excursion"
)

// resolveLocale picks currency and language from explicit values, then the
// Accept-Language header, then the configured defaults.
func resolveLocale(c *gin.Context, currency, lang string, defaults excursion.Locale) (excursion.Locale, error) {
	if strings.TrimSpace(lang) == "" {
		lang = preferredLanguage(c.GetHeader("Accept-Language"))
	}
	return excursion.ResolveLocale(strings.ToUpper(strings.TrimSpace(currency)), lang, defaults)
}

// preferredLanguage returns the highest-weighted concrete tag of an
// Accept-Language header, or "" when none is usable.
func preferredLanguage(header string) string {
	if header == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return ""
	}
	for _, tag := range tags {
		if tag != language.Und {
			return tag.String()
		}
	}
	return ""
}
