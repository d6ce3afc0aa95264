package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/excursion"
)

// LocaleQuery carries the optional currency and language overrides
type LocaleQuery struct {
	Currency string `form:"currency" binding:"omitempty,len=3,alpha"`
	Language string `form:"language" binding:"omitempty,max=35"`
}

// SearchRequest is the query string of a product search
type SearchRequest struct {
	LocaleQuery
	Query         string   `form:"q" binding:"omitempty,max=200"`
	Page          int      `form:"page" binding:"omitempty,min=1"`
	PageSize      int      `form:"page_size" binding:"omitempty,min=1,max=50"`
	DestinationID string   `form:"destination_id" binding:"omitempty,max=20"`
	StartDate     string   `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate       string   `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	LowestPrice   *float64 `form:"lowest_price" binding:"omitempty,gte=0"`
	HighestPrice  *float64 `form:"highest_price" binding:"omitempty,gte=0"`
	Tags          []int    `form:"tags"`
	Sort          string   `form:"sort" binding:"omitempty,oneof=DEFAULT PRICE TRAVELER_RATING ITINERARY_DURATION DATE_ADDED"`
}

// ToQuery converts the request into a search query
func (r SearchRequest) ToQuery() excursion.SearchQuery {
	q := excursion.SearchQuery{
		Term:     r.Query,
		Page:     r.Page,
		PageSize: r.PageSize,
		Filters: excursion.SearchFilters{
			DestinationID: r.DestinationID,
			Tags:          r.Tags,
			Sort:          excursion.SortOrder(r.Sort),
		},
	}
	if t, err := time.Parse(excursion.DateLayout, r.StartDate); err == nil {
		q.Filters.StartDate = &t
	}
	if t, err := time.Parse(excursion.DateLayout, r.EndDate); err == nil {
		q.Filters.EndDate = &t
	}
	if r.LowestPrice != nil {
		d := decimal.NewFromFloat(*r.LowestPrice)
		q.Filters.LowestPrice = &d
	}
	if r.HighestPrice != nil {
		d := decimal.NewFromFloat(*r.HighestPrice)
		q.Filters.HighestPrice = &d
	}
	return q
}

// SearchResponse is the body of a search result
type SearchResponse struct {
	Products   []excursion.ProductSummary `json:"products"`
	TotalCount int                        `json:"totalCount"`
	HasMore    bool                       `json:"hasMore"`
}

// PageRequest is the query string of a paged listing
type PageRequest struct {
	LocaleQuery
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=50"`
}

// PaxMixRequest is one age band of a passenger mix
type PaxMixRequest struct {
	AgeBand           string `json:"ageBand" binding:"required,oneof=ADULT SENIOR YOUTH CHILD INFANT TRAVELER"`
	NumberOfTravelers int    `json:"numberOfTravelers" binding:"required,min=1,max=100"`
}

func toPaxMix(in []PaxMixRequest) []excursion.PaxMix {
	out := make([]excursion.PaxMix, 0, len(in))
	for _, p := range in {
		out = append(out, excursion.PaxMix(p))
	}
	return out
}

// AvailabilityRequest is the body of an availability check. Required fields
// are enforced by the domain so that every missing field is reported at once.
type AvailabilityRequest struct {
	ProductCode       string          `json:"productCode" binding:"max=64"`
	ProductOptionCode string          `json:"productOptionCode" binding:"max=64"`
	TravelDate        string          `json:"travelDate" binding:"max=10"`
	StartTime         string          `json:"startTime" binding:"omitempty,max=5"`
	PaxMix            []PaxMixRequest `json:"paxMix" binding:"omitempty,max=10,dive"`
	Currency          string          `json:"currency" binding:"omitempty,len=3,alpha"`
	Language          string          `json:"language" binding:"omitempty,max=35"`
}

// ToDomain converts the request into a domain availability request
func (r AvailabilityRequest) ToDomain(locale excursion.Locale) excursion.AvailabilityRequest {
	return excursion.AvailabilityRequest{
		ProductCode:       r.ProductCode,
		ProductOptionCode: r.ProductOptionCode,
		TravelDate:        r.TravelDate,
		StartTime:         r.StartTime,
		PaxMix:            toPaxMix(r.PaxMix),
		Locale:            locale,
	}
}

// CartItemRequest is one item of a cart booking
type CartItemRequest struct {
	PartnerBookingRef string          `json:"partnerBookingRef" binding:"omitempty,max=100"`
	ProductCode       string          `json:"productCode" binding:"max=64"`
	ProductOptionCode string          `json:"productOptionCode" binding:"omitempty,max=64"`
	TravelDate        string          `json:"travelDate" binding:"omitempty,datetime=2006-01-02"`
	StartTime         string          `json:"startTime" binding:"omitempty,datetime=15:04"`
	PaxMix            []PaxMixRequest `json:"paxMix" binding:"omitempty,max=10,dive"`
	AvailabilityRef   string          `json:"availabilityRef" binding:"omitempty,max=200"`
}

// BookerRequest is the person making the booking
type BookerRequest struct {
	FirstName string `json:"firstName" binding:"max=100"`
	LastName  string `json:"lastName" binding:"max=100"`
	Email     string `json:"email" binding:"omitempty,email"`
}

// CommunicationRequest is where confirmations are sent
type CommunicationRequest struct {
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone" binding:"omitempty,max=30"`
}

// CartBookingRequest is the body of a cart booking
type CartBookingRequest struct {
	PartnerCartRef string               `json:"partnerCartRef" binding:"omitempty,max=100"`
	Items          []CartItemRequest    `json:"items" binding:"omitempty,max=20,dive"`
	Booker         BookerRequest        `json:"booker"`
	Communication  CommunicationRequest `json:"communication"`
	Currency       string               `json:"currency" binding:"omitempty,len=3,alpha"`
	Language       string               `json:"language" binding:"omitempty,max=35"`
}

// ToDomain converts the request into a domain cart booking request
func (r CartBookingRequest) ToDomain(locale excursion.Locale) excursion.CartBookingRequest {
	items := make([]excursion.CartItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, excursion.CartItem{
			PartnerBookingRef: item.PartnerBookingRef,
			ProductCode:       item.ProductCode,
			ProductOptionCode: item.ProductOptionCode,
			TravelDate:        item.TravelDate,
			StartTime:         item.StartTime,
			PaxMix:            toPaxMix(item.PaxMix),
			AvailabilityRef:   item.AvailabilityRef,
		})
	}
	return excursion.CartBookingRequest{
		PartnerCartRef: r.PartnerCartRef,
		Items:          items,
		Booker: excursion.Booker{
			FirstName: r.Booker.FirstName,
			LastName:  r.Booker.LastName,
			Email:     r.Booker.Email,
		},
		Communication: excursion.Communication{
			Email: r.Communication.Email,
			Phone: r.Communication.Phone,
		},
		Locale: locale,
	}
}

// HealthResponse reports liveness and supply configuration
type HealthResponse struct {
	Status      string `json:"status"`
	Supply      string `json:"supply"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
	GoVersion   string `json:"go_version"`
	Uptime      string `json:"uptime"`
}
