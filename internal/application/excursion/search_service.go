package excursion

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/excursion"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/infrastructure/telemetry"
)

const (
	pathFreetextSearch = "/search/freetext"
	pathProductSearch  = "/products/search"
)

// SearchService finds products by free text or destination
type SearchService struct {
	transport excursion.SupplyTransport
	opts      options
}

// NewSearchService creates a new SearchService
func NewSearchService(transport excursion.SupplyTransport, opts ...Option) *SearchService {
	return &SearchService{
		transport: transport,
		opts:      newOptions(opts),
	}
}

// Search returns one normalized page of products. Entries without a product
// code or a usable title are dropped.
func (s *SearchService) Search(ctx context.Context, query excursion.SearchQuery, locale excursion.Locale) (*excursion.SearchResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	locale = locale.WithDefaults()

	ctx, span := telemetry.StartServiceSpan(ctx, "search", "Search",
		telemetry.WithAttribute(telemetry.SpanAttrSearchTerm, query.Term),
		telemetry.WithAttribute(telemetry.SpanAttrDestinationID, query.Filters.DestinationID),
		telemetry.WithAttribute(telemetry.SpanAttrPage, query.Page),
		telemetry.WithAttribute(telemetry.SpanAttrPageSize, query.PageSize),
	)
	defer span.End()

	req := &excursion.SupplyRequest{
		Operation: "search",
		Method:    http.MethodPost,
		Locale:    locale,
	}
	if query.Term != "" {
		req.Path = pathFreetextSearch
		req.Body = newFreetextSearchBody(query, locale.Currency)
	} else {
		req.Path = pathProductSearch
		req.Body = newProductSearchBody(query, locale.Currency)
	}

	resp, err := s.opts.sendRead(ctx, s.transport, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	page, err := decodeSearchPage(resp.Body)
	if err != nil {
		upstreamErr := &excursion.UpstreamError{Operation: req.Operation, Status: resp.Status, Body: resp.Body, Reason: err.Error()}
		telemetry.RecordError(span, upstreamErr)
		return nil, upstreamErr
	}

	result := &excursion.SearchResult{
		Products:   make([]excursion.ProductSummary, 0, len(page.products)),
		TotalCount: page.totalCount,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	dropped := 0
	for _, p := range page.products {
		summary := p.toSummary(locale.Currency)
		if !summary.IsUsable() {
			dropped++
			continue
		}
		result.Products = append(result.Products, summary)
	}
	if page.hasMore != nil {
		result.HasMore = *page.hasMore
	} else {
		result.HasMore = query.Page*query.PageSize < page.totalCount
	}

	if dropped > 0 {
		s.opts.log(ctx).Debug("dropped unusable search entries", zap.Int("dropped", dropped))
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrResultCount, len(result.Products))
	telemetry.SetOK(span)
	return result, nil
}

type searchPagination struct {
	Start int `json:"start"`
	Count int `json:"count"`
}

type searchRange struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

type searchType struct {
	SearchType string           `json:"searchType"`
	Pagination searchPagination `json:"pagination"`
}

type productFiltering struct {
	Destination string       `json:"destination,omitempty"`
	DateRange   *searchRange `json:"dateRange,omitempty"`
	Price       *searchRange `json:"price,omitempty"`
	Tags        []int        `json:"tags,omitempty"`
}

type sortSpec struct {
	Sort string `json:"sort"`
}

func newSortSpec(order excursion.SortOrder) *sortSpec {
	if order == "" || order == excursion.SortDefault {
		return nil
	}
	return &sortSpec{Sort: string(order)}
}

type freetextSearchBody struct {
	SearchTerm       string            `json:"searchTerm"`
	Currency         string            `json:"currency"`
	SearchTypes      []searchType      `json:"searchTypes"`
	ProductFiltering *productFiltering `json:"productFiltering,omitempty"`
	ProductSorting   *sortSpec         `json:"productSorting,omitempty"`
}

func newFreetextSearchBody(q excursion.SearchQuery, currency string) freetextSearchBody {
	body := freetextSearchBody{
		SearchTerm: q.Term,
		Currency:   currency,
		SearchTypes: []searchType{{
			SearchType: "PRODUCTS",
			Pagination: searchPagination{Start: q.Start(), Count: q.PageSize},
		}},
		ProductSorting: newSortSpec(q.Filters.Sort),
	}

	f := q.Filters
	dates, prices := dateRange(f), priceRange(f)
	if f.DestinationID != "" || dates != nil || prices != nil || len(f.Tags) > 0 {
		body.ProductFiltering = &productFiltering{
			Destination: f.DestinationID,
			DateRange:   dates,
			Price:       prices,
			Tags:        f.Tags,
		}
	}
	return body
}

type productSearchBody struct {
	Filtering struct {
		Destination  string   `json:"destination"`
		Tags         []int    `json:"tags,omitempty"`
		LowestPrice  *float64 `json:"lowestPrice,omitempty"`
		HighestPrice *float64 `json:"highestPrice,omitempty"`
		StartDate    string   `json:"startDate,omitempty"`
		EndDate      string   `json:"endDate,omitempty"`
	} `json:"filtering"`
	Sorting    *sortSpec        `json:"sorting,omitempty"`
	Pagination searchPagination `json:"pagination"`
	Currency   string           `json:"currency"`
}

func newProductSearchBody(q excursion.SearchQuery, currency string) productSearchBody {
	f := q.Filters
	body := productSearchBody{
		Sorting:    newSortSpec(f.Sort),
		Pagination: searchPagination{Start: q.Start(), Count: q.PageSize},
		Currency:   currency,
	}
	body.Filtering.Destination = f.DestinationID
	body.Filtering.Tags = f.Tags
	if f.LowestPrice != nil {
		v := f.LowestPrice.InexactFloat64()
		body.Filtering.LowestPrice = &v
	}
	if f.HighestPrice != nil {
		v := f.HighestPrice.InexactFloat64()
		body.Filtering.HighestPrice = &v
	}
	if f.StartDate != nil {
		body.Filtering.StartDate = f.StartDate.Format(excursion.DateLayout)
	}
	if f.EndDate != nil {
		body.Filtering.EndDate = f.EndDate.Format(excursion.DateLayout)
	}
	return body
}

func dateRange(f excursion.SearchFilters) *searchRange {
	if f.StartDate == nil && f.EndDate == nil {
		return nil
	}
	r := &searchRange{}
	if f.StartDate != nil {
		r.From = f.StartDate.Format(excursion.DateLayout)
	}
	if f.EndDate != nil {
		r.To = f.EndDate.Format(excursion.DateLayout)
	}
	return r
}

func priceRange(f excursion.SearchFilters) *searchRange {
	if f.LowestPrice == nil && f.HighestPrice == nil {
		return nil
	}
	r := &searchRange{}
	if f.LowestPrice != nil {
		r.From = f.LowestPrice.String()
	}
	if f.HighestPrice != nil {
		r.To = f.HighestPrice.String()
	}
	return r
}
