package excursion

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSearchQuery_Normalize(t *testing.T) {
	tests := []struct {
		name         string
		query        SearchQuery
		wantPage     int
		wantPageSize int
		wantStart    int
	}{
		{"defaults", SearchQuery{Term: " turks caicos "}, 1, DefaultPageSize, 1},
		{"second page", SearchQuery{Term: "x", Page: 2, PageSize: 10}, 2, 10, 11},
		{"capped page size", SearchQuery{Term: "x", Page: 3, PageSize: 500}, 3, MaxPageSize, 101},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.query
			q.Normalize()
			assert.Equal(t, tt.wantPage, q.Page)
			assert.Equal(t, tt.wantPageSize, q.PageSize)
			assert.Equal(t, tt.wantStart, q.Start())
		})
	}
}

func TestSearchQuery_Validate(t *testing.T) {
	start := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)
	low := decimal.NewFromInt(100)
	high := decimal.NewFromInt(50)

	tests := []struct {
		name    string
		query   SearchQuery
		wantErr bool
	}{
		{"term", SearchQuery{Term: "snorkel"}, false},
		{"destination only", SearchQuery{Filters: SearchFilters{DestinationID: "732"}}, false},
		{"blank", SearchQuery{Term: "   "}, true},
		{"bad sort", SearchQuery{Term: "x", Filters: SearchFilters{Sort: "RANDOM"}}, true},
		{"dates reversed", SearchQuery{Term: "x", Filters: SearchFilters{StartDate: &start, EndDate: &end}}, true},
		{"prices reversed", SearchQuery{Term: "x", Filters: SearchFilters{LowestPrice: &low, HighestPrice: &high}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.query
			err := q.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProductSummary_IsUsable(t *testing.T) {
	assert.True(t, ProductSummary{ProductCode: "5010SYDNEY", Title: "Harbour cruise"}.IsUsable())
	assert.False(t, ProductSummary{ProductCode: "", Title: "Harbour cruise"}.IsUsable())
	assert.False(t, ProductSummary{ProductCode: "5010SYDNEY", Title: "  "}.IsUsable())
}
