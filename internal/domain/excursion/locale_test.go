package excursion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocale_WithDefaults(t *testing.T) {
	assert.Equal(t, DefaultLocale(), Locale{}.WithDefaults())
	assert.Equal(t, Locale{Currency: "EUR", Language: DefaultLanguage}, Locale{Currency: "EUR"}.WithDefaults())
}

func TestParseLocale(t *testing.T) {
	tests := []struct {
		name     string
		currency string
		language string
		want     Locale
		field    string
	}{
		{"defaults", "", "", Locale{Currency: "USD", Language: "en-US"}, ""},
		{"canonicalized", "eur", "fr-fr", Locale{Currency: "EUR", Language: "fr-FR"}, ""},
		{"invalid currency", "DOLLARS", "en", Locale{}, "currency"},
		{"invalid language", "USD", "not a tag!", Locale{}, "language"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLocale(tt.currency, tt.language)
			if tt.field != "" {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, []string{tt.field}, ve.Fields)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveLocale(t *testing.T) {
	eur := Locale{Currency: "EUR", Language: "de-DE"}

	tests := []struct {
		name     string
		currency string
		language string
		fallback Locale
		want     Locale
		field    string
	}{
		{"fallback fills both", "", "", eur, eur, ""},
		{"fallback fills language only", "gbp", "", eur, Locale{Currency: "GBP", Language: "de-DE"}, ""},
		{"explicit wins", "JPY", "ja", eur, Locale{Currency: "JPY", Language: "ja"}, ""},
		{"blank fallback currency", "", "en", Locale{}, Locale{}, "currency"},
		{"blank fallback language", "USD", "", Locale{Currency: "USD"}, Locale{}, "language"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveLocale(tt.currency, tt.language, tt.fallback)
			if tt.field != "" {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, []string{tt.field}, ve.Fields)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
