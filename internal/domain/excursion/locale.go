package excursion

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

const (
	// DefaultCurrency is used when the caller does not specify one
	DefaultCurrency = "USD"
	// DefaultLanguage is used when the caller does not specify one
	DefaultLanguage = "en-US"
)

// Locale carries the currency and language every supply request is priced and
// translated in.
type Locale struct {
	Currency string `json:"currency"`
	Language string `json:"language"`
}

// DefaultLocale returns USD / en-US
func DefaultLocale() Locale {
	return Locale{Currency: DefaultCurrency, Language: DefaultLanguage}
}

// WithDefaults fills empty fields with USD / en-US
func (l Locale) WithDefaults() Locale {
	return l.Or(DefaultLocale())
}

// Or fills empty fields from fallback
func (l Locale) Or(fallback Locale) Locale {
	if strings.TrimSpace(l.Currency) == "" {
		l.Currency = fallback.Currency
	}
	if strings.TrimSpace(l.Language) == "" {
		l.Language = fallback.Language
	}
	return l
}

// ParseLocale validates and canonicalizes both fields, filling blanks with
// USD / en-US.
func ParseLocale(currencyCode, lang string) (Locale, error) {
	return ResolveLocale(currencyCode, lang, DefaultLocale())
}

// ResolveLocale fills blank fields from fallback, then validates and
// canonicalizes both. Currency must be an ISO 4217 code and language a BCP 47
// tag; a field still blank after the fallback is invalid.
func ResolveLocale(currencyCode, lang string, fallback Locale) (Locale, error) {
	l := Locale{Currency: currencyCode, Language: lang}.Or(fallback)

	unit, err := currency.ParseISO(strings.TrimSpace(l.Currency))
	if err != nil {
		return Locale{}, NewInvalidFieldError("currency", "must be an ISO 4217 currency code")
	}
	tag, err := language.Parse(strings.TrimSpace(l.Language))
	if err != nil {
		return Locale{}, NewInvalidFieldError("language", "must be a BCP 47 language tag")
	}

	return Locale{Currency: unit.String(), Language: tag.String()}, nil
}
