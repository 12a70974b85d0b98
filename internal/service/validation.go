package service

import (
	"github.com/campusloop/campusloop-backend/pkg/i18n"
)

// ValidationError is a user facing form error shown as an alert (title + message)
type ValidationError struct {
	Field      string
	TitleKey   string
	MessageKey string
}

func newValidationError(field, titleKey, messageKey string) *ValidationError {
	return &ValidationError{Field: field, TitleKey: titleKey, MessageKey: messageKey}
}

func (e *ValidationError) Error() string {
	return defaultBundle.T(i18n.LocaleEn, e.MessageKey)
}

// Localize returns the alert title and message in the given locale
func (e *ValidationError) Localize(bundle *i18n.Bundle, locale i18n.Locale) (title, message string) {
	if bundle == nil {
		bundle = defaultBundle
	}
	return bundle.T(locale, e.TitleKey), bundle.T(locale, e.MessageKey)
}

var defaultBundle = i18n.NewDefaultBundle()
