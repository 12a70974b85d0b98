package middleware

import (
	"github.com/campusloop/campusloop-backend/pkg/i18n"
	"github.com/gin-gonic/gin"
)

const localeKey = "locale"

// I18n resolves the response locale. An explicit ?lang= (the mobile client sends its
// device language there) wins over Accept-Language.
func I18n() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Accept-Language")
		if lang := c.Query("lang"); lang != "" {
			header = lang
		}
		locale := i18n.ParseAcceptLanguage(header)
		c.Set(localeKey, locale)
		c.Header("Content-Language", string(locale))
		c.Next()
	}
}

// GetLocale returns the request locale, English when I18n did not run
func GetLocale(c *gin.Context) i18n.Locale {
	if locale, ok := c.Value(localeKey).(i18n.Locale); ok {
		return locale
	}
	return i18n.LocaleEn
}

// Translate looks key up in bundle for the request locale
func Translate(c *gin.Context, bundle *i18n.Bundle, key string, args ...interface{}) string {
	return bundle.T(GetLocale(c), key, args...)
}
