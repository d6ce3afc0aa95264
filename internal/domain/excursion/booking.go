package excursion

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingStatus is the outcome of a cart or one of its items
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusPartial   BookingStatus = "PARTIAL"
	BookingStatusFailed    BookingStatus = "FAILED"
)

// CartItem is one booking in a cart. It refers to a prior availability check
// either by AvailabilityRef or by option code and travel date.
type CartItem struct {
	PartnerBookingRef string   `json:"partnerBookingRef"`
	ProductCode       string   `json:"productCode"`
	ProductOptionCode string   `json:"productOptionCode,omitempty"`
	TravelDate        string   `json:"travelDate,omitempty"`
	StartTime         string   `json:"startTime,omitempty"`
	PaxMix            []PaxMix `json:"paxMix,omitempty"`
	AvailabilityRef   string   `json:"availabilityRef,omitempty"`
}

// Booker is the person making the booking
type Booker struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Communication is where booking confirmations are sent
type Communication struct {
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// CartBookingRequest submits a multi-item booking
type CartBookingRequest struct {
	PartnerCartRef string        `json:"partnerCartRef"`
	Items          []CartItem    `json:"items"`
	Booker         Booker        `json:"booker"`
	Communication  Communication `json:"communication"`
	Locale         Locale        `json:"-"`
}

// Validate checks preconditions in a fixed order, returning the first named
// error: items, then booker, then communication, then each item.
func (r *CartBookingRequest) Validate() error {
	if len(r.Items) == 0 {
		return ErrEmptyCart
	}
	if strings.TrimSpace(r.Booker.FirstName) == "" {
		return ErrBookerFirstNameRequired
	}
	if strings.TrimSpace(r.Booker.LastName) == "" {
		return ErrBookerLastNameRequired
	}
	if strings.TrimSpace(r.Booker.Email) == "" {
		return ErrBookerEmailRequired
	}
	if strings.TrimSpace(r.Communication.Email) == "" {
		return ErrCommunicationEmailRequired
	}
	for i := range r.Items {
		if err := r.Items[i].validate(); err != nil {
			return err
		}
	}
	return nil
}

func (i *CartItem) validate() error {
	if strings.TrimSpace(i.ProductCode) == "" {
		return newCartItemError("productCode is required")
	}
	if i.AvailabilityRef != "" {
		return nil
	}
	if strings.TrimSpace(i.ProductOptionCode) == "" || strings.TrimSpace(i.TravelDate) == "" {
		return newCartItemError("availabilityRef or productOptionCode and travelDate are required")
	}
	if len(i.PaxMix) == 0 {
		return newCartItemError("paxMix is required")
	}
	return validatePaxMix("items.paxMix", i.PaxMix)
}

func newCartItemError(msg string) *ValidationError {
	return &ValidationError{
		Code:    ErrCartItemInvalid.Code,
		Fields:  []string{"items"},
		Message: "invalid cart item: " + msg,
	}
}

// AssignRefs generates the partner cart ref and any missing item refs
func (r *CartBookingRequest) AssignRefs() {
	if r.PartnerCartRef == "" {
		r.PartnerCartRef = uuid.New().String()
	}
	for i := range r.Items {
		if r.Items[i].PartnerBookingRef == "" {
			r.Items[i].PartnerBookingRef = uuid.New().String()
		}
	}
}

// ItemOutcome is the upstream result for one cart item
type ItemOutcome struct {
	PartnerBookingRef string          `json:"partnerBookingRef"`
	ProductCode       string          `json:"productCode,omitempty"`
	Status            BookingStatus   `json:"status"`
	BookingRef        string          `json:"bookingRef,omitempty"`
	FailureReason     string          `json:"failureReason,omitempty"`
	TotalPrice        decimal.Decimal `json:"totalPrice"`
}

// CartBookingResult is the outcome of a cart booking. Items can succeed
// independently of each other.
type CartBookingResult struct {
	PartnerCartRef string          `json:"partnerCartRef"`
	CartRef        string          `json:"cartRef,omitempty"`
	Status         BookingStatus   `json:"status"`
	Currency       string          `json:"currency"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	Items          []ItemOutcome   `json:"items"`
}

// ComputeStatus derives the cart status from its items
func (r *CartBookingResult) ComputeStatus() BookingStatus {
	if len(r.Items) == 0 {
		return BookingStatusFailed
	}
	confirmed, pending := 0, 0
	for _, item := range r.Items {
		switch item.Status {
		case BookingStatusConfirmed:
			confirmed++
		case BookingStatusPending:
			pending++
		}
	}
	switch {
	case confirmed == len(r.Items):
		return BookingStatusConfirmed
	case pending > 0 && confirmed+pending == len(r.Items):
		return BookingStatusPending
	case confirmed > 0 || pending > 0:
		return BookingStatusPartial
	default:
		return BookingStatusFailed
	}
}

// ConfirmedCount returns the number of confirmed items
func (r *CartBookingResult) ConfirmedCount() int {
	n := 0
	for _, item := range r.Items {
		if item.Status == BookingStatusConfirmed {
			n++
		}
	}
	return n
}
