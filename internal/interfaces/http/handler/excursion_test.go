package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/excursion"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/interfaces/http/dto"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/interfaces/http/middleware"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, query excursion.SearchQuery, locale excursion.Locale) (*excursion.SearchResult, error) {
	args := m.Called(ctx, query, locale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*excursion.SearchResult), args.Error(1)
}

type MockAvailability struct {
	mock.Mock
}

func (m *MockAvailability) CheckAvailability(ctx context.Context, req excursion.AvailabilityRequest) (*excursion.AvailabilityResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*excursion.AvailabilityResult), args.Error(1)
}

type MockBooker struct {
	mock.Mock
}

func (m *MockBooker) BookCart(ctx context.Context, req excursion.CartBookingRequest) (*excursion.CartBookingResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*excursion.CartBookingResult), args.Error(1)
}

func (m *MockBooker) CartStatus(ctx context.Context, partnerCartRef string, locale excursion.Locale) (*excursion.CartBookingResult, error) {
	args := m.Called(ctx, partnerCartRef, locale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*excursion.CartBookingResult), args.Error(1)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetProduct(ctx context.Context, code string, locale excursion.Locale) (*excursion.ProductDetail, error) {
	args := m.Called(ctx, code, locale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*excursion.ProductDetail), args.Error(1)
}

func (m *MockCatalog) GetReviews(ctx context.Context, code string, page, pageSize int, locale excursion.Locale) (*excursion.ReviewPage, error) {
	args := m.Called(ctx, code, page, pageSize, locale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*excursion.ReviewPage), args.Error(1)
}

func (m *MockCatalog) GetDestinations(ctx context.Context, locale excursion.Locale) (*excursion.DestinationList, error) {
	args := m.Called(ctx, locale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*excursion.DestinationList), args.Error(1)
}

func (m *MockCatalog) GetDestination(ctx context.Context, id string, locale excursion.Locale) (*excursion.Destination, error) {
	args := m.Called(ctx, id, locale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*excursion.Destination), args.Error(1)
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

type excursionFixture struct {
	search       *MockSearcher
	availability *MockAvailability
	booking      *MockBooker
	catalog      *MockCatalog
	router       *gin.Engine
}

func newExcursionFixture(t *testing.T, opts ...ExcursionOption) *excursionFixture {
	t.Helper()
	middleware.SetupValidator()

	f := &excursionFixture{
		search:       new(MockSearcher),
		availability: new(MockAvailability),
		booking:      new(MockBooker),
		catalog:      new(MockCatalog),
	}
	h := NewExcursionHandler(f.search, f.availability, f.booking, f.catalog, opts...)

	f.router = gin.New()
	f.router.Use(middleware.RequestID())
	g := f.router.Group("/excursions")
	g.GET("/search", h.Search)
	g.POST("/availability", h.CheckAvailability)
	g.POST("/bookings", h.BookCart)
	g.GET("/bookings/:ref/status", h.CartStatus)
	g.GET("/products/:code", h.GetProduct)
	g.GET("/products/:code/reviews", h.GetReviews)
	g.GET("/destinations", h.GetDestinations)
	g.GET("/destinations/:id", h.GetDestination)

	t.Cleanup(func() {
		f.search.AssertExpectations(t)
		f.availability.AssertExpectations(t)
		f.booking.AssertExpectations(t)
		f.catalog.AssertExpectations(t)
	})
	return f
}

func (f *excursionFixture) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

var usd = excursion.DefaultLocale()

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestExcursionHandler_Search(t *testing.T) {
	f := newExcursionFixture(t)

	f.search.On("Search", mock.Anything, mock.MatchedBy(func(q excursion.SearchQuery) bool {
		return q.Term == "turks caicos" && q.Page == 2 && q.PageSize == 6
	}), usd).Return(&excursion.SearchResult{
		Products: []excursion.ProductSummary{
			{ProductCode: "P1", Title: "Grace Bay Snorkel", LeadPrice: decimal.NewFromInt(89), Currency: "USD"},
		},
		TotalCount: 13,
		HasMore:    true,
		Page:       2,
		PageSize:   6,
	}, nil)

	w := f.do(http.MethodGet, "/excursions/search?q=turks+caicos&page=2&page_size=6", "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, dto.Meta{Total: 13, Page: 2, PageSize: 6, HasMore: true}, *resp.Meta)

	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(13), data["totalCount"])
	assert.Equal(t, true, data["hasMore"])
	products := data["products"].([]any)
	require.Len(t, products, 1)
	assert.Equal(t, "P1", products[0].(map[string]any)["productCode"])
}

func TestExcursionHandler_SearchLocale(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		headers []string
		want    excursion.Locale
	}{
		{"defaults", "", nil, usd},
		{"query params", "&currency=eur&language=fr-FR", nil, excursion.Locale{Currency: "EUR", Language: "fr-FR"}},
		{"accept-language", "", []string{"Accept-Language", "de-DE;q=0.8, es-MX"}, excursion.Locale{Currency: "USD", Language: "es-MX"}},
		{"query beats header", "&language=it", []string{"Accept-Language", "de"}, excursion.Locale{Currency: "USD", Language: "it"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newExcursionFixture(t)
			f.search.On("Search", mock.Anything, mock.Anything, tt.want).
				Return(&excursion.SearchResult{Page: 1, PageSize: 10}, nil)

			w := f.do(http.MethodGet, "/excursions/search?q=reef"+tt.query, "", tt.headers...)

			assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		})
	}
}

func TestExcursionHandler_SearchBadInput(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"page size over limit", "q=reef&page_size=51"},
		{"unknown sort", "q=reef&sort=RANDOM"},
		{"bad currency", "q=reef&currency=XYZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newExcursionFixture(t)

			w := f.do(http.MethodGet, "/excursions/search?"+tt.query, "")

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
			f.search.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestExcursionHandler_CheckAvailability(t *testing.T) {
	f := newExcursionFixture(t)

	f.availability.On("CheckAvailability", mock.Anything, mock.MatchedBy(func(r excursion.AvailabilityRequest) bool {
		return r.ProductCode == "5010SYDNEY" && len(r.PaxMix) == 2 && r.PaxMix[0].AgeBand == "CHILD" && r.Locale.Currency == "AUD"
	})).Return(&excursion.AvailabilityResult{
		ProductCode: "5010SYDNEY",
		Currency:    "AUD",
		Bookable:    true,
	}, nil)

	w := f.do(http.MethodPost, "/excursions/availability", `{
		"productCode": "5010SYDNEY",
		"productOptionCode": "TG1",
		"travelDate": "2026-12-01",
		"currency": "AUD",
		"paxMix": [{"ageBand":"CHILD","numberOfTravelers":1},{"ageBand":"ADULT","numberOfTravelers":2}]
	}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, true, data["bookable"])
}

func TestExcursionHandler_CheckAvailabilityMissingFields(t *testing.T) {
	f := newExcursionFixture(t)
	f.availability.On("CheckAvailability", mock.Anything, mock.Anything).
		Return(nil, excursion.NewMissingFieldsError("productCode", "travelDate"))

	w := f.do(http.MethodPost, "/excursions/availability", `{"productOptionCode":"TG1"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "productCode", resp.Error.Details[0].Field)
}

func TestExcursionHandler_BookCart(t *testing.T) {
	f := newExcursionFixture(t)

	f.booking.On("BookCart", mock.Anything, mock.MatchedBy(func(r excursion.CartBookingRequest) bool {
		return len(r.Items) == 1 && r.Booker.FirstName == "Jane" && r.Booker.LastName == "Doe"
	})).Return(&excursion.CartBookingResult{
		PartnerCartRef: "cart-1",
		Status:         excursion.BookingStatusConfirmed,
		Items: []excursion.ItemOutcome{
			{PartnerBookingRef: "item-1", Status: excursion.BookingStatusConfirmed, BookingRef: "BR-1"},
		},
	}, nil)

	w := f.do(http.MethodPost, "/excursions/bookings", `{
		"items": [{"productCode":"5010SYDNEY","productOptionCode":"TG1","travelDate":"2026-12-01","paxMix":[{"ageBand":"ADULT","numberOfTravelers":2}]}],
		"booker": {"firstName":"Jane","lastName":"Doe","email":"jane@example.com"},
		"communication": {"email":"jane@example.com"}
	}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "CONFIRMED", data["status"])
	assert.Len(t, data["items"], 1)
}

func TestExcursionHandler_BookCartErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"empty cart", excursion.ErrEmptyCart, http.StatusBadRequest, dto.ErrCodeValidation},
		{"duplicate", excursion.ErrDuplicateSubmission, http.StatusConflict, dto.ErrCodeDuplicateSubmission},
		{"not configured", excursion.NewConfigurationError("missing key"), http.StatusServiceUnavailable, dto.ErrCodeSupplyNotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newExcursionFixture(t)
			f.booking.On("BookCart", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := f.do(http.MethodPost, "/excursions/bookings", `{"items":[]}`)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeResponse(t, w).Error.Code)
		})
	}
}

func TestExcursionHandler_CartStatus(t *testing.T) {
	f := newExcursionFixture(t)
	f.booking.On("CartStatus", mock.Anything, "cart-1", usd).Return(&excursion.CartBookingResult{
		PartnerCartRef: "cart-1",
		Status:         excursion.BookingStatusPending,
	}, nil)
	f.booking.On("CartStatus", mock.Anything, "missing", usd).Return(nil, excursion.ErrNotFound)

	w := f.do(http.MethodGet, "/excursions/bookings/cart-1/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PENDING", decodeResponse(t, w).Data.(map[string]any)["status"])

	w = f.do(http.MethodGet, "/excursions/bookings/missing/status", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExcursionHandler_GetProduct(t *testing.T) {
	f := newExcursionFixture(t)
	f.catalog.On("GetProduct", mock.Anything, "5010SYDNEY", usd).Return(&excursion.ProductDetail{
		ProductSummary: excursion.ProductSummary{ProductCode: "5010SYDNEY", Title: "Harbour Cruise"},
	}, nil)
	f.catalog.On("GetProduct", mock.Anything, "NOPE", usd).Return(nil, excursion.ErrNotFound)

	w := f.do(http.MethodGet, "/excursions/products/5010SYDNEY", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Harbour Cruise", decodeResponse(t, w).Data.(map[string]any)["title"])

	w = f.do(http.MethodGet, "/excursions/products/NOPE", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, decodeResponse(t, w).Error.Code)
}

func TestExcursionHandler_GetReviews(t *testing.T) {
	f := newExcursionFixture(t)
	f.catalog.On("GetReviews", mock.Anything, "5010SYDNEY", 2, 5, usd).Return(&excursion.ReviewPage{
		ProductCode: "5010SYDNEY",
		Reviews:     []excursion.Review{{ReviewRef: "R1", Rating: 5, Text: "Great"}},
		TotalCount:  11,
		Page:        2,
		PageSize:    5,
		HasMore:     true,
	}, nil)

	w := f.do(http.MethodGet, "/excursions/products/5010SYDNEY/reviews?page=2&page_size=5", "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.Meta{Total: 11, Page: 2, PageSize: 5, HasMore: true}, *resp.Meta)
}

func TestExcursionHandler_Destinations(t *testing.T) {
	f := newExcursionFixture(t)
	f.catalog.On("GetDestinations", mock.Anything, usd).Return(&excursion.DestinationList{
		Destinations: []excursion.Destination{{ID: "732", Name: "Providenciales"}},
		TotalCount:   1,
	}, nil)
	f.catalog.On("GetDestination", mock.Anything, "732", usd).Return(&excursion.Destination{ID: "732", Name: "Providenciales"}, nil)
	f.catalog.On("GetDestination", mock.Anything, "1", usd).Return(nil, excursion.ErrNotFound)

	w := f.do(http.MethodGet, "/excursions/destinations", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeResponse(t, w).Data.(map[string]any)["totalCount"])

	w = f.do(http.MethodGet, "/excursions/destinations/732", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Providenciales", decodeResponse(t, w).Data.(map[string]any)["name"])

	w = f.do(http.MethodGet, "/excursions/destinations/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExcursionHandler_UpstreamFailures(t *testing.T) {
	f := newExcursionFixture(t)
	f.catalog.On("GetDestinations", mock.Anything, usd).
		Return(nil, &excursion.NetworkError{Operation: "destinations", Err: context.DeadlineExceeded})

	w := f.do(http.MethodGet, "/excursions/destinations", "")

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Equal(t, dto.ErrCodeUpstreamUnavailable, decodeResponse(t, w).Error.Code)
}

func TestExcursionHandler_ConfiguredDefaultLocale(t *testing.T) {
	eur := excursion.Locale{Currency: "EUR", Language: "de-DE"}
	list := &excursion.DestinationList{Destinations: []excursion.Destination{{ID: "77", Name: "Berlin"}}}

	tests := []struct {
		name    string
		path    string
		headers []string
		want    excursion.Locale
	}{
		{"configured default", "/excursions/destinations", nil, eur},
		{"accept-language before default", "/excursions/destinations", []string{"Accept-Language", "fr-FR"}, excursion.Locale{Currency: "EUR", Language: "fr-FR"}},
		{"explicit before both", "/excursions/destinations?currency=gbp&language=en-GB", []string{"Accept-Language", "fr-FR"}, excursion.Locale{Currency: "GBP", Language: "en-GB"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newExcursionFixture(t, WithDefaultLocale(eur))
			f.catalog.On("GetDestinations", mock.Anything, tt.want).Return(list, nil).Once()

			w := f.do(http.MethodGet, tt.path, "", tt.headers...)

			assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		})
	}
}
