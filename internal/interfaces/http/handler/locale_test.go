package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreferredLanguage(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"fr-CA", "fr-CA"},
		{"de-DE;q=0.5, en-GB;q=0.9", "en-GB"},
		{"en-US;q=abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, preferredLanguage(tt.header))
		})
	}
}
