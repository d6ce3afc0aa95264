package excursion

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DateLayout is the upstream travel date format
	DateLayout = "2006-01-02"
	// TimeLayout is the upstream start time format
	TimeLayout = "15:04"
)

// Age bands understood by the supply API
const (
	AgeBandAdult    = "ADULT"
	AgeBandSenior   = "SENIOR"
	AgeBandYouth    = "YOUTH"
	AgeBandChild    = "CHILD"
	AgeBandInfant   = "INFANT"
	AgeBandTraveler = "TRAVELER"
)

// PaxMix is one age band and traveler count. Order within a mix is meaningful
// to upstream pricing and is never changed.
type PaxMix struct {
	AgeBand           string `json:"ageBand"`
	NumberOfTravelers int    `json:"numberOfTravelers"`
}

// AvailabilityRequest asks the supply API to price a product option for a date
type AvailabilityRequest struct {
	ProductCode       string   `json:"productCode"`
	ProductOptionCode string   `json:"productOptionCode"`
	TravelDate        string   `json:"travelDate"`
	StartTime         string   `json:"startTime,omitempty"`
	PaxMix            []PaxMix `json:"paxMix"`
	Locale            Locale   `json:"-"`
}

// Validate checks every required field and reports all missing ones together,
// then rejects malformed values.
func (r *AvailabilityRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.ProductCode) == "" {
		missing = append(missing, "productCode")
	}
	if strings.TrimSpace(r.ProductOptionCode) == "" {
		missing = append(missing, "productOptionCode")
	}
	if strings.TrimSpace(r.TravelDate) == "" {
		missing = append(missing, "travelDate")
	}
	if len(r.PaxMix) == 0 {
		missing = append(missing, "paxMix")
	}
	if len(missing) > 0 {
		return NewMissingFieldsError(missing...)
	}

	if _, err := time.Parse(DateLayout, r.TravelDate); err != nil {
		return NewInvalidFieldError("travelDate", "must be formatted YYYY-MM-DD")
	}
	if r.StartTime != "" {
		if _, err := time.Parse(TimeLayout, r.StartTime); err != nil {
			return NewInvalidFieldError("startTime", "must be formatted HH:MM")
		}
	}
	return validatePaxMix("paxMix", r.PaxMix)
}

func validatePaxMix(field string, mix []PaxMix) error {
	for _, p := range mix {
		if strings.TrimSpace(p.AgeBand) == "" {
			return NewInvalidFieldError(field, "age band is required")
		}
		if p.NumberOfTravelers < 1 {
			return NewInvalidFieldError(field, "traveler count must be at least 1")
		}
	}
	return nil
}

// TotalTravelers returns the number of travelers across all bands
func (r *AvailabilityRequest) TotalTravelers() int {
	total := 0
	for _, p := range r.PaxMix {
		total += p.NumberOfTravelers
	}
	return total
}

// LineItem is the price of one age band in a bookable item
type LineItem struct {
	AgeBand           string          `json:"ageBand"`
	NumberOfTravelers int             `json:"numberOfTravelers"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	Subtotal          decimal.Decimal `json:"subtotal"`
}

// BookableItem is one priced start time or option the traveler can book.
// AvailabilityRef, when the supply API issues one, identifies the priced hold
// for a later cart booking.
type BookableItem struct {
	AvailabilityRef   string          `json:"availabilityRef,omitempty"`
	ProductOptionCode string          `json:"productOptionCode"`
	StartTime         string          `json:"startTime,omitempty"`
	Available         bool            `json:"available"`
	UnavailableReason string          `json:"unavailableReason,omitempty"`
	LineItems         []LineItem      `json:"lineItems,omitempty"`
	TotalPrice        decimal.Decimal `json:"totalPrice"`
}

// AvailabilityResult is the priced availability returned by the supply API.
// Raw keeps the upstream payload for callers that need fields not mapped here.
type AvailabilityResult struct {
	ProductCode   string          `json:"productCode"`
	TravelDate    string          `json:"travelDate"`
	Currency      string          `json:"currency"`
	Bookable      bool            `json:"bookable"`
	BookableItems []BookableItem  `json:"bookableItems"`
	Raw           json.RawMessage `json:"raw,omitempty"`
}

// LowestPrice returns the cheapest available item total, or zero if nothing is bookable
func (r *AvailabilityResult) LowestPrice() decimal.Decimal {
	lowest := decimal.Zero
	found := false
	for _, item := range r.BookableItems {
		if !item.Available {
			continue
		}
		if !found || item.TotalPrice.LessThan(lowest) {
			lowest = item.TotalPrice
			found = true
		}
	}
	return lowest
}

// CartItem builds a cart item for the bookable item at index i of this result.
// The item carries the availability reference along with the option, date and
// start time so the booking matches what was priced.
func (r *AvailabilityResult) CartItem(i int, paxMix []PaxMix) (CartItem, error) {
	if i < 0 || i >= len(r.BookableItems) {
		return CartItem{}, newCartItemError("bookable item index out of range")
	}
	item := r.BookableItems[i]
	if !item.Available {
		return CartItem{}, newCartItemError("bookable item is not available")
	}
	return CartItem{
		ProductCode:       r.ProductCode,
		ProductOptionCode: item.ProductOptionCode,
		TravelDate:        r.TravelDate,
		StartTime:         item.StartTime,
		PaxMix:            append([]PaxMix(nil), paxMix...),
		AvailabilityRef:   item.AvailabilityRef,
	}, nil
}
