package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/excursion"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/shared"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/interfaces/http/dto"
)

// ---------------------------------------------------------------------------
// Service ports
// ---------------------------------------------------------------------------

// ProductSearcher searches the supply catalog
type ProductSearcher interface {
	Search(ctx context.Context, query excursion.SearchQuery, locale excursion.Locale) (*excursion.SearchResult, error)
}

// AvailabilityChecker prices a product option for a date and passenger mix
type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context, req excursion.AvailabilityRequest) (*excursion.AvailabilityResult, error)
}

// CartBooker books carts and reports their status
type CartBooker interface {
	BookCart(ctx context.Context, req excursion.CartBookingRequest) (*excursion.CartBookingResult, error)
	CartStatus(ctx context.Context, partnerCartRef string, locale excursion.Locale) (*excursion.CartBookingResult, error)
}

// CatalogReader reads product detail, reviews and destinations
type CatalogReader interface {
	GetProduct(ctx context.Context, code string, locale excursion.Locale) (*excursion.ProductDetail, error)
	GetReviews(ctx context.Context, code string, page, pageSize int, locale excursion.Locale) (*excursion.ReviewPage, error)
	GetDestinations(ctx context.Context, locale excursion.Locale) (*excursion.DestinationList, error)
	GetDestination(ctx context.Context, id string, locale excursion.Locale) (*excursion.Destination, error)
}

// ---------------------------------------------------------------------------
// Handler
// ---------------------------------------------------------------------------

// ExcursionHandler serves the /excursions API
type ExcursionHandler struct {
	BaseHandler
	search       ProductSearcher
	availability AvailabilityChecker
	booking      CartBooker
	catalog      CatalogReader
	locale       excursion.Locale
}

// ExcursionOption configures an ExcursionHandler
type ExcursionOption func(*ExcursionHandler)

// WithDefaultLocale sets the currency and language used when a request names
// neither and sends no Accept-Language header
func WithDefaultLocale(l excursion.Locale) ExcursionOption {
	return func(h *ExcursionHandler) {
		h.locale = l.WithDefaults()
	}
}

// NewExcursionHandler creates a new ExcursionHandler
func NewExcursionHandler(
	search ProductSearcher,
	availability AvailabilityChecker,
	booking CartBooker,
	catalog CatalogReader,
	opts ...ExcursionOption,
) *ExcursionHandler {
	h := &ExcursionHandler{
		search:       search,
		availability: availability,
		booking:      booking,
		catalog:      catalog,
		locale:       excursion.DefaultLocale(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Search godoc
// @Summary  Search excursions by free text or destination
// @Tags     excursions
// @Param    q              query string false "Search term"
// @Param    destination_id query string false "Destination ID"
// @Param    page           query int    false "Page (1-based)"
// @Param    page_size      query int    false "Page size (max 50)"
// @Success  200 {object} dto.Response
// @Router   /excursions/search [get]
func (h *ExcursionHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	locale, err := resolveLocale(c, req.Currency, req.Language, h.locale)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.search.Search(c.Request.Context(), req.ToQuery(), locale)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, dto.SearchResponse{
		Products:   result.Products,
		TotalCount: result.TotalCount,
		HasMore:    result.HasMore,
	}, result.TotalCount, result.Page, result.PageSize, result.HasMore)
}

// CheckAvailability godoc
// @Summary  Check availability and price for a product option
// @Tags     excursions
// @Accept   json
// @Param    request body dto.AvailabilityRequest true "Availability check"
// @Success  200 {object} dto.Response
// @Router   /excursions/availability [post]
func (h *ExcursionHandler) CheckAvailability(c *gin.Context) {
	var req dto.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	locale, err := resolveLocale(c, firstNonEmpty(req.Currency, c.Query("currency")), firstNonEmpty(req.Language, c.Query("language")), h.locale)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.availability.CheckAvailability(c.Request.Context(), req.ToDomain(locale))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// BookCart godoc
// @Summary  Book a cart of excursions
// @Tags     excursions
// @Accept   json
// @Param    request body dto.CartBookingRequest true "Cart booking"
// @Success  200 {object} dto.Response
// @Failure  409 {object} dto.Response "Cart already submitted"
// @Failure  504 {object} dto.Response "Booking outcome unknown"
// @Router   /excursions/bookings [post]
func (h *ExcursionHandler) BookCart(c *gin.Context) {
	var req dto.CartBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	locale, err := resolveLocale(c, firstNonEmpty(req.Currency, c.Query("currency")), firstNonEmpty(req.Language, c.Query("language")), h.locale)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.booking.BookCart(c.Request.Context(), req.ToDomain(locale))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// CartStatus godoc
// @Summary  Get the upstream status of a submitted cart
// @Tags     excursions
// @Param    ref path string true "Partner cart ref"
// @Success  200 {object} dto.Response
// @Router   /excursions/bookings/{ref}/status [get]
func (h *ExcursionHandler) CartStatus(c *gin.Context) {
	ref := strings.TrimSpace(c.Param("ref"))
	if ref == "" {
		h.HandleError(c, shared.ErrInvalidInput)
		return
	}
	locale, ok := h.queryLocale(c)
	if !ok {
		return
	}

	result, err := h.booking.CartStatus(c.Request.Context(), ref, locale)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetProduct godoc
// @Summary  Get product detail
// @Tags     excursions
// @Param    code path string true "Product code"
// @Success  200 {object} dto.Response
// @Router   /excursions/products/{code} [get]
func (h *ExcursionHandler) GetProduct(c *gin.Context) {
	locale, ok := h.queryLocale(c)
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("code"), locale)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// GetReviews godoc
// @Summary  List product reviews, most recent first
// @Tags     excursions
// @Param    code      path  string true  "Product code"
// @Param    page      query int    false "Page (1-based)"
// @Param    page_size query int    false "Page size (max 50)"
// @Success  200 {object} dto.Response
// @Router   /excursions/products/{code}/reviews [get]
func (h *ExcursionHandler) GetReviews(c *gin.Context) {
	var req dto.PageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	locale, err := resolveLocale(c, req.Currency, req.Language, h.locale)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, err := h.catalog.GetReviews(c.Request.Context(), c.Param("code"), req.Page, req.PageSize, locale)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page, page.TotalCount, page.Page, page.PageSize, page.HasMore)
}

// GetDestinations godoc
// @Summary  List destinations
// @Tags     excursions
// @Success  200 {object} dto.Response
// @Router   /excursions/destinations [get]
func (h *ExcursionHandler) GetDestinations(c *gin.Context) {
	locale, ok := h.queryLocale(c)
	if !ok {
		return
	}

	list, err := h.catalog.GetDestinations(c.Request.Context(), locale)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// GetDestination godoc
// @Summary  Get one destination
// @Tags     excursions
// @Param    id path string true "Destination ID"
// @Success  200 {object} dto.Response
// @Router   /excursions/destinations/{id} [get]
func (h *ExcursionHandler) GetDestination(c *gin.Context) {
	locale, ok := h.queryLocale(c)
	if !ok {
		return
	}

	dest, err := h.catalog.GetDestination(c.Request.Context(), c.Param("id"), locale)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dest)
}

// queryLocale binds currency/language query params, writing the error response on failure
func (h *ExcursionHandler) queryLocale(c *gin.Context) (excursion.Locale, bool) {
	var q dto.LocaleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.HandleBindError(c, err)
		return excursion.Locale{}, false
	}
	locale, err := resolveLocale(c, q.Currency, q.Language, h.locale)
	if err != nil {
		h.HandleError(c, err)
		return excursion.Locale{}, false
	}
	return locale, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
