package excursion

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultPageSize is used when a search or review page size is not given
	DefaultPageSize = 10
	// MaxPageSize is the largest page the supply API serves
	MaxPageSize = 50
)

// SortOrder is the upstream sort applied to product search
type SortOrder string

const (
	SortDefault      SortOrder = "DEFAULT"
	SortPrice        SortOrder = "PRICE"
	SortTravelerRank SortOrder = "TRAVELER_RATING"
	SortDuration     SortOrder = "ITINERARY_DURATION"
	SortNewest       SortOrder = "DATE_ADDED"
)

// IsValid returns true if the sort order is known
func (s SortOrder) IsValid() bool {
	switch s {
	case "", SortDefault, SortPrice, SortTravelerRank, SortDuration, SortNewest:
		return true
	default:
		return false
	}
}

// ProductSummary is the normalized view of one upstream product. It is
// request-scoped and never persisted. ProductCode is the unique key.
type ProductSummary struct {
	ProductCode     string          `json:"productCode"`
	Title           string          `json:"title"`
	DestinationName string          `json:"destinationName,omitempty"`
	Rating          float64         `json:"rating"`
	ReviewCount     int             `json:"reviewCount"`
	DurationMinutes int             `json:"durationMinutes,omitempty"`
	Duration        string          `json:"duration,omitempty"`
	LeadPrice       decimal.Decimal `json:"leadPrice"`
	Currency        string          `json:"currency"`
	ImageURL        string          `json:"imageUrl,omitempty"`
	BookingURL      string          `json:"bookingUrl,omitempty"`
}

// IsUsable returns true if the summary carries a product code and a non-blank title
func (p ProductSummary) IsUsable() bool {
	return strings.TrimSpace(p.ProductCode) != "" && strings.TrimSpace(p.Title) != ""
}

// ProductOption is a bookable variant of a product
type ProductOption struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ProductDetail is the full product lookup result
type ProductDetail struct {
	ProductSummary
	Description        string          `json:"description,omitempty"`
	Inclusions         []string        `json:"inclusions,omitempty"`
	Exclusions         []string        `json:"exclusions,omitempty"`
	Options            []ProductOption `json:"options,omitempty"`
	Images             []string        `json:"images,omitempty"`
	CancellationPolicy string          `json:"cancellationPolicy,omitempty"`
	Raw                json.RawMessage `json:"raw,omitempty"`
}

// SearchFilters narrows a product search
type SearchFilters struct {
	DestinationID string           `json:"destinationId,omitempty"`
	StartDate     *time.Time       `json:"startDate,omitempty"`
	EndDate       *time.Time       `json:"endDate,omitempty"`
	LowestPrice   *decimal.Decimal `json:"lowestPrice,omitempty"`
	HighestPrice  *decimal.Decimal `json:"highestPrice,omitempty"`
	Tags          []int            `json:"tags,omitempty"`
	Sort          SortOrder        `json:"sort,omitempty"`
}

// SearchQuery is a free-text or filtered product search for one page
type SearchQuery struct {
	Term     string
	Page     int
	PageSize int
	Filters  SearchFilters
}

// Normalize trims the term and applies page defaults
func (q *SearchQuery) Normalize() {
	q.Term = strings.TrimSpace(q.Term)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
}

// Validate validates the search query after normalization
func (q *SearchQuery) Validate() error {
	q.Normalize()
	if q.Term == "" && q.Filters.DestinationID == "" {
		return NewMissingFieldsError("term")
	}
	if !q.Filters.Sort.IsValid() {
		return NewInvalidFieldError("sort", "unknown sort order")
	}
	if q.Filters.StartDate != nil && q.Filters.EndDate != nil && q.Filters.StartDate.After(*q.Filters.EndDate) {
		return NewInvalidFieldError("startDate", "must not be after endDate")
	}
	if q.Filters.LowestPrice != nil && q.Filters.HighestPrice != nil && q.Filters.LowestPrice.GreaterThan(*q.Filters.HighestPrice) {
		return NewInvalidFieldError("lowestPrice", "must not exceed highestPrice")
	}
	return nil
}

// Start returns the 1-based upstream start offset for the page
func (q SearchQuery) Start() int {
	return (q.Page-1)*q.PageSize + 1
}

// SearchResult is the canonical shape of one search page
type SearchResult struct {
	Products   []ProductSummary `json:"products"`
	TotalCount int              `json:"totalCount"`
	HasMore    bool             `json:"hasMore"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
}
