package excursion

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/excursion"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"49.99", "49.99"},
		{`"49.99"`, "49.99"},
		{`" 120 "`, "120"},
		{"0", "0"},
		{`"abc"`, "0"},
		{"null", "0"},
		{"true", "0"},
		{`{"amount":5}`, "0"},
		{"", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(ParseDecimal(tt.input)), "got %s", ParseDecimal(tt.input))
		})
	}
}

func TestDecodeSearchPage_Shapes(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCodes []string
		wantTotal int
		hasMore   *bool
	}{
		{
			name:      "nested results",
			body:      `{"products":{"totalCount":42,"results":[{"productCode":"A","title":"Reef"},{"productCode":"B","title":"Kayak"}]}}`,
			wantCodes: []string{"A", "B"},
			wantTotal: 42,
		},
		{
			name:      "flat products with total",
			body:      `{"products":[{"productCode":"A","title":"Reef"}],"totalCount":7}`,
			wantCodes: []string{"A"},
			wantTotal: 7,
		},
		{
			name:      "bare array",
			body:      `[{"productCode":"A","title":"Reef"},{"productCode":"B","title":"Kayak"}]`,
			wantCodes: []string{"A", "B"},
			wantTotal: 2,
		},
		{
			name:      "upstream hasMore",
			body:      `{"products":[],"totalCount":0,"hasMore":true}`,
			wantCodes: []string{},
			hasMore:   boolPtr(true),
		},
		{
			name:      "non-object entries skipped",
			body:      `[{"productCode":"A","title":"Reef"},"junk",42]`,
			wantCodes: []string{"A"},
			wantTotal: 1,
		},
		{
			name:      "missing products",
			body:      `{"totalCount":0}`,
			wantCodes: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := decodeSearchPage([]byte(tt.body))
			require.NoError(t, err)

			codes := []string{}
			for _, p := range page.products {
				codes = append(codes, p.ProductCode)
			}
			assert.Equal(t, tt.wantCodes, codes)
			assert.Equal(t, tt.wantTotal, page.totalCount)
			assert.Equal(t, tt.hasMore, page.hasMore)
		})
	}
}

func TestDecodeSearchPage_Malformed(t *testing.T) {
	for _, body := range []string{"", "not json", `"string"`, `{"products":"nope"}`, `{"products":{"results":5}}`} {
		_, err := decodeSearchPage([]byte(body))
		assert.ErrorIs(t, err, errMalformedPayload, body)
	}
}

func TestWireProduct_ToSummary(t *testing.T) {
	page, err := decodeSearchPage([]byte(`[{
		"productCode": "5010SYDNEY",
		"title": "  Snorkel Tour  ",
		"productUrl": "https://example.com/tours/5010",
		"reviews": {"totalReviews": 120, "combinedAverageRating": 4.7},
		"duration": {"fixedDurationInMinutes": 150},
		"pricing": {"currency": "AUD", "summary": {"fromPrice": "89.50"}},
		"images": [
			{"isCover": false, "variants": [{"url": "https://img/other.jpg", "width": 720}]},
			{"isCover": true, "variants": [{"url": "https://img/small.jpg", "width": 200}, {"url": "https://img/large.jpg", "width": 720}]}
		]
	}]`))
	require.NoError(t, err)
	require.Len(t, page.products, 1)

	s := page.products[0].toSummary("USD")
	assert.Equal(t, "5010SYDNEY", s.ProductCode)
	assert.Equal(t, "Snorkel Tour", s.Title)
	assert.Equal(t, 4.7, s.Rating)
	assert.Equal(t, 120, s.ReviewCount)
	assert.Equal(t, 150, s.DurationMinutes)
	assert.Equal(t, "2h 30m", s.Duration)
	assert.True(t, decimal.RequireFromString("89.5").Equal(s.LeadPrice))
	assert.Equal(t, "AUD", s.Currency)
	assert.Equal(t, "https://img/large.jpg", s.ImageURL)
	assert.Equal(t, "https://example.com/tours/5010", s.BookingURL)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45m", formatDuration(45, 0, 0))
	assert.Equal(t, "3h", formatDuration(180, 0, 0))
	assert.Equal(t, "2d", formatDuration(2880, 0, 0))
	assert.Equal(t, "1h to 3h", formatDuration(0, 60, 180))
	assert.Equal(t, "1h 30m", formatDuration(0, 90, 0))
	assert.Equal(t, "", formatDuration(0, 0, 0))
}

func TestDecodeAvailability(t *testing.T) {
	req := &excursion.AvailabilityRequest{ProductCode: "P1", TravelDate: "2026-03-01"}
	body := `{
		"currency": "USD",
		"bookableItems": [
			{
				"availabilityRef": "AV-TG1-0900",
				"productOptionCode": "TG1",
				"startTime": "09:00",
				"available": true,
				"lineItems": [
					{"ageBand": "ADULT", "numberOfTravelers": 2, "subtotalPrice": {"price": {"recommendedRetailPrice": 100}}},
					{"ageBand": "CHILD", "numberOfTravelers": 1, "subtotalPrice": {"price": {"recommendedRetailPrice": "30.00"}}}
				]
			},
			{"bookableItemRef": "AV-TG2", "productOptionCode": "TG2", "available": false, "unavailableReason": "SOLD_OUT"}
		]
	}`

	result, err := decodeAvailability([]byte(body), req, "EUR")
	require.NoError(t, err)

	assert.Equal(t, "P1", result.ProductCode)
	assert.Equal(t, "2026-03-01", result.TravelDate)
	assert.Equal(t, "USD", result.Currency)
	assert.True(t, result.Bookable)
	require.Len(t, result.BookableItems, 2)

	first := result.BookableItems[0]
	require.Len(t, first.LineItems, 2)
	assert.True(t, decimal.NewFromInt(50).Equal(first.LineItems[0].UnitPrice))
	assert.True(t, decimal.NewFromInt(130).Equal(first.TotalPrice), "total falls back to line item sum")
	assert.Equal(t, "SOLD_OUT", result.BookableItems[1].UnavailableReason)
	assert.Equal(t, "AV-TG1-0900", first.AvailabilityRef)
	assert.Equal(t, "AV-TG2", result.BookableItems[1].AvailabilityRef, "bookableItemRef is accepted as the reference")
	assert.NotEmpty(t, result.Raw)
}

func TestDecodeAvailability_Malformed(t *testing.T) {
	req := &excursion.AvailabilityRequest{ProductCode: "P1"}
	for _, body := range []string{"", "[]", `{"bookableItems":"x"}`} {
		_, err := decodeAvailability([]byte(body), req, "USD")
		assert.Error(t, err, body)
	}
}

func TestItemStatus(t *testing.T) {
	assert.Equal(t, excursion.BookingStatusConfirmed, itemStatus("confirmed"))
	assert.Equal(t, excursion.BookingStatusPending, itemStatus("PENDING"))
	assert.Equal(t, excursion.BookingStatusPending, itemStatus("ON_HOLD"))
	assert.Equal(t, excursion.BookingStatusFailed, itemStatus("REJECTED"))
	assert.Equal(t, excursion.BookingStatusFailed, itemStatus(""))
}

func TestDecodeDestinations(t *testing.T) {
	body := `{"destinations":[
		{"destinationId": 732, "name": "Turks and Caicos", "type": "COUNTRY", "timeZone": "America/Grand_Turk", "defaultCurrencyCode": "USD"},
		{"destinationId": "25869", "name": "Providenciales", "type": "CITY", "parentDestinationId": 732},
		{"name": "no id"}
	],"totalCount": 2}`

	list, err := decodeDestinations([]byte(body))
	require.NoError(t, err)
	require.Len(t, list.Destinations, 2)
	assert.Equal(t, "732", list.Destinations[0].ID)
	assert.Equal(t, "732", list.Destinations[1].ParentID)
	assert.Equal(t, 2, list.TotalCount)
}

func TestDecodeReviews(t *testing.T) {
	body := `{"reviews":[{"reviewReference":"R1","provider":"VIATOR","rating":5,"text":"Great","publishedDate":"2025-06-01T10:00:00Z"}],
		"totalReviewsSummary":{"totalReviews":31}}`

	reviews, total, err := decodeReviews([]byte(body))
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "R1", reviews[0].ReviewRef)
	assert.Equal(t, 2025, reviews[0].PublishedDate.Year())
	assert.Equal(t, 31, total)
}

func boolPtr(b bool) *bool {
	return &b
}
