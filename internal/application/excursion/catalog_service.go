package excursion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/excursion"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/infrastructure/telemetry"
)

const (
	pathProducts     = "/products/"
	pathReviews      = "/reviews/product"
	pathDestinations = "/destinations"

	reviewProvider = "ALL"
	reviewSort     = "MOST_RECENT"
)

// CacheTTL sets how long catalog lookups are cached. Zero disables caching
// for that lookup.
type CacheTTL struct {
	Product      time.Duration
	Destinations time.Duration
}

// CatalogService serves product detail, reviews and destinations
type CatalogService struct {
	transport excursion.SupplyTransport
	cache     excursion.LookupCache
	ttl       CacheTTL
	opts      options
}

// NewCatalogService creates a new CatalogService. cache may be nil.
func NewCatalogService(transport excursion.SupplyTransport, cache excursion.LookupCache, ttl CacheTTL, opts ...Option) *CatalogService {
	return &CatalogService{
		transport: transport,
		cache:     cache,
		ttl:       ttl,
		opts:      newOptions(opts),
	}
}

// GetProduct returns the full product. An unknown code returns ErrNotFound.
func (s *CatalogService) GetProduct(ctx context.Context, code string, locale excursion.Locale) (*excursion.ProductDetail, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, excursion.NewMissingFieldsError("productCode")
	}
	locale = locale.WithDefaults()

	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "GetProduct",
		telemetry.WithAttribute(telemetry.SpanAttrProductCode, code),
	)
	defer span.End()

	key := cacheKey("product", code, locale.Currency, locale.Language)
	var cached excursion.ProductDetail
	if s.cacheGet(ctx, key, &cached) {
		telemetry.AddEvent(span, "cache_hit")
		telemetry.SetOK(span)
		return &cached, nil
	}

	resp, err := s.opts.sendRead(ctx, s.transport, &excursion.SupplyRequest{
		Operation: "product",
		Method:    http.MethodGet,
		Path:      pathProducts + url.PathEscape(code),
		Locale:    locale,
	})
	if err != nil {
		err = notFound(err)
		telemetry.RecordError(span, err)
		return nil, err
	}

	var w wireProductDetail
	if err := json.Unmarshal(resp.Body, &w); err != nil {
		upstreamErr := &excursion.UpstreamError{Operation: "product", Status: resp.Status, Body: resp.Body, Reason: errMalformedPayload.Error()}
		telemetry.RecordError(span, upstreamErr)
		return nil, upstreamErr
	}
	if strings.TrimSpace(w.ProductCode) == "" {
		w.ProductCode = code
	}
	detail := w.toDetail(locale.Currency, json.RawMessage(resp.Body))

	s.cacheSet(ctx, key, detail, s.ttl.Product)
	telemetry.SetOK(span)
	return detail, nil
}

// GetReviews returns one page of reviews, most recent first. Review pages
// are never cached.
func (s *CatalogService) GetReviews(ctx context.Context, code string, page, pageSize int, locale excursion.Locale) (*excursion.ReviewPage, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, excursion.NewMissingFieldsError("productCode")
	}
	q := excursion.SearchQuery{Page: page, PageSize: pageSize}
	q.Normalize()
	locale = locale.WithDefaults()

	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "GetReviews",
		telemetry.WithAttribute(telemetry.SpanAttrProductCode, code),
		telemetry.WithAttribute(telemetry.SpanAttrPage, q.Page),
	)
	defer span.End()

	resp, err := s.opts.sendRead(ctx, s.transport, &excursion.SupplyRequest{
		Operation: "reviews",
		Method:    http.MethodPost,
		Path:      pathReviews,
		Locale:    locale,
		Body: wireReviewRequest{
			ProductCode: code,
			Count:       q.PageSize,
			Start:       q.Start(),
			Provider:    reviewProvider,
			SortBy:      reviewSort,
		},
	})
	if err != nil {
		err = notFound(err)
		telemetry.RecordError(span, err)
		return nil, err
	}

	reviews, total, err := decodeReviews(resp.Body)
	if err != nil {
		upstreamErr := &excursion.UpstreamError{Operation: "reviews", Status: resp.Status, Body: resp.Body, Reason: err.Error()}
		telemetry.RecordError(span, upstreamErr)
		return nil, upstreamErr
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrResultCount, len(reviews))
	telemetry.SetOK(span)
	return &excursion.ReviewPage{
		ProductCode: code,
		Reviews:     reviews,
		TotalCount:  total,
		Page:        q.Page,
		PageSize:    q.PageSize,
		HasMore:     q.Page*q.PageSize < total,
	}, nil
}

// GetDestinations returns the destination catalog
func (s *CatalogService) GetDestinations(ctx context.Context, locale excursion.Locale) (*excursion.DestinationList, error) {
	locale = locale.WithDefaults()

	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "GetDestinations")
	defer span.End()

	key := cacheKey("destinations", locale.Language)
	var cached excursion.DestinationList
	if s.cacheGet(ctx, key, &cached) {
		telemetry.AddEvent(span, "cache_hit")
		telemetry.SetOK(span)
		return &cached, nil
	}

	resp, err := s.opts.sendRead(ctx, s.transport, &excursion.SupplyRequest{
		Operation: "destinations",
		Method:    http.MethodGet,
		Path:      pathDestinations,
		Locale:    locale,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	list, err := decodeDestinations(resp.Body)
	if err != nil {
		upstreamErr := &excursion.UpstreamError{Operation: "destinations", Status: resp.Status, Body: resp.Body, Reason: err.Error()}
		telemetry.RecordError(span, upstreamErr)
		return nil, upstreamErr
	}

	s.cacheSet(ctx, key, list, s.ttl.Destinations)
	telemetry.SetAttributes(span, telemetry.SpanAttrResultCount, len(list.Destinations))
	telemetry.SetOK(span)
	return list, nil
}

// GetDestination looks up one destination by ID
func (s *CatalogService) GetDestination(ctx context.Context, id string, locale excursion.Locale) (*excursion.Destination, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, excursion.NewMissingFieldsError("destinationId")
	}
	list, err := s.GetDestinations(ctx, locale)
	if err != nil {
		return nil, err
	}
	d, ok := list.Find(id)
	if !ok {
		return nil, excursion.ErrNotFound
	}
	return &d, nil
}

// notFound maps an upstream 404 to ErrNotFound
func notFound(err error) error {
	var upstream *excursion.UpstreamError
	if errors.As(err, &upstream) && upstream.Status == http.StatusNotFound {
		return excursion.ErrNotFound
	}
	return err
}

func cacheKey(parts ...string) string {
	return strings.Join(parts, ":")
}

func (s *CatalogService) cacheGet(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.opts.log(ctx).Warn("lookup cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.opts.log(ctx).Warn("discarding unreadable cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *CatalogService) cacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	if s.cache == nil || ttl <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, ttl); err != nil {
		s.opts.log(ctx).Warn("lookup cache write failed", zap.String("key", key), zap.Error(err))
	}
}
