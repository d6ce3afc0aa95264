package excursion

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/excursion"
)

// ---------------------------------------------------------------------------
// Lenient scalars
// ---------------------------------------------------------------------------

// flexNumber accepts a JSON number or a numeric string. Anything else
// decodes to zero instead of failing the enclosing document.
type flexNumber struct {
	decimal.Decimal
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	n.Decimal = ParseDecimal(string(data))
	return nil
}

// ParseDecimal parses a price from a JSON number literal or a quoted numeric
// string, returning zero when the value is not numeric
func ParseDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}
	if s == "" || s == "null" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// flexString accepts a JSON string or number
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

type wirePrice struct {
	Price struct {
		RecommendedRetailPrice flexNumber `json:"recommendedRetailPrice"`
		PartnerNetPrice        flexNumber `json:"partnerNetPrice"`
	} `json:"price"`
}

// amount prefers the retail price and falls back to the net price
func (p *wirePrice) amount() decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	if !p.Price.RecommendedRetailPrice.IsZero() {
		return p.Price.RecommendedRetailPrice.Decimal
	}
	return p.Price.PartnerNetPrice.Decimal
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

type wireImage struct {
	IsCover  bool `json:"isCover"`
	Variants []struct {
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	} `json:"variants"`
}

// largest returns the URL of the widest variant
func (img wireImage) largest() string {
	url, width := "", -1
	for _, v := range img.Variants {
		if v.URL != "" && v.Width > width {
			url, width = v.URL, v.Width
		}
	}
	return url
}

type wireProduct struct {
	ProductCode     string      `json:"productCode"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	DestinationName string      `json:"destinationName"`
	ProductURL      string      `json:"productUrl"`
	Price           *flexNumber `json:"price"`
	Images          []wireImage `json:"images"`
	Reviews         struct {
		TotalReviews          int        `json:"totalReviews"`
		CombinedAverageRating flexNumber `json:"combinedAverageRating"`
	} `json:"reviews"`
	Duration struct {
		FixedDurationInMinutes      int `json:"fixedDurationInMinutes"`
		VariableDurationFromMinutes int `json:"variableDurationFromMinutes"`
		VariableDurationToMinutes   int `json:"variableDurationToMinutes"`
	} `json:"duration"`
	Pricing struct {
		Currency string `json:"currency"`
		Summary  struct {
			FromPrice flexNumber `json:"fromPrice"`
		} `json:"summary"`
	} `json:"pricing"`
}

func (p wireProduct) coverImage() string {
	for _, img := range p.Images {
		if img.IsCover {
			if url := img.largest(); url != "" {
				return url
			}
		}
	}
	for _, img := range p.Images {
		if url := img.largest(); url != "" {
			return url
		}
	}
	return ""
}

func (p wireProduct) leadPrice() decimal.Decimal {
	if !p.Pricing.Summary.FromPrice.IsZero() {
		return p.Pricing.Summary.FromPrice.Decimal
	}
	if p.Price != nil {
		return p.Price.Decimal
	}
	return decimal.Zero
}

func (p wireProduct) toSummary(currency string) excursion.ProductSummary {
	minutes := p.Duration.FixedDurationInMinutes
	if minutes == 0 {
		minutes = p.Duration.VariableDurationFromMinutes
	}
	if p.Pricing.Currency != "" {
		currency = p.Pricing.Currency
	}
	return excursion.ProductSummary{
		ProductCode:     strings.TrimSpace(p.ProductCode),
		Title:           strings.TrimSpace(p.Title),
		DestinationName: p.DestinationName,
		Rating:          p.Reviews.CombinedAverageRating.InexactFloat64(),
		ReviewCount:     p.Reviews.TotalReviews,
		DurationMinutes: minutes,
		Duration:        formatDuration(p.Duration.FixedDurationInMinutes, p.Duration.VariableDurationFromMinutes, p.Duration.VariableDurationToMinutes),
		LeadPrice:       p.leadPrice(),
		Currency:        currency,
		ImageURL:        p.coverImage(),
		BookingURL:      p.ProductURL,
	}
}

// formatDuration renders minutes as display text, e.g. "2h 30m" or "1h to 3h"
func formatDuration(fixed, from, to int) string {
	switch {
	case fixed > 0:
		return humanMinutes(fixed)
	case from > 0 && to > from:
		return humanMinutes(from) + " to " + humanMinutes(to)
	case from > 0:
		return humanMinutes(from)
	default:
		return ""
	}
}

func humanMinutes(m int) string {
	d := time.Duration(m) * time.Minute
	hours, minutes := int(d.Hours()), m%60
	switch {
	case hours >= 24 && hours%24 == 0 && minutes == 0:
		return fmt.Sprintf("%dd", hours/24)
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// searchPage is one decoded search response before filtering
type searchPage struct {
	products   []wireProduct
	totalCount int
	hasMore    *bool
}

var errMalformedPayload = errors.New("malformed response payload")

// decodeSearchPage accepts {products:{results,totalCount}}, {products:[...],totalCount}
// and a bare array. Entries that do not decode as objects are skipped.
func decodeSearchPage(body []byte) (searchPage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return searchPage{}, errMalformedPayload
	}

	switch body[0] {
	case '[':
		items, err := decodeProductList(body)
		if err != nil {
			return searchPage{}, err
		}
		return searchPage{products: items, totalCount: len(items)}, nil
	case '{':
	default:
		return searchPage{}, errMalformedPayload
	}

	var envelope struct {
		Products   json.RawMessage `json:"products"`
		TotalCount *int            `json:"totalCount"`
		HasMore    *bool           `json:"hasMore"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return searchPage{}, errMalformedPayload
	}

	page := searchPage{hasMore: envelope.HasMore}
	products := bytes.TrimSpace(envelope.Products)
	switch {
	case len(products) == 0 || bytes.Equal(products, []byte("null")):
	case products[0] == '[':
		items, err := decodeProductList(products)
		if err != nil {
			return searchPage{}, err
		}
		page.products = items
	case products[0] == '{':
		var nested struct {
			Results    json.RawMessage `json:"results"`
			TotalCount *int            `json:"totalCount"`
			HasMore    *bool           `json:"hasMore"`
		}
		if err := json.Unmarshal(products, &nested); err != nil {
			return searchPage{}, errMalformedPayload
		}
		if len(nested.Results) > 0 && !bytes.Equal(nested.Results, []byte("null")) {
			items, err := decodeProductList(nested.Results)
			if err != nil {
				return searchPage{}, err
			}
			page.products = items
		}
		if nested.TotalCount != nil {
			envelope.TotalCount = nested.TotalCount
		}
		if nested.HasMore != nil {
			page.hasMore = nested.HasMore
		}
	default:
		return searchPage{}, errMalformedPayload
	}

	if envelope.TotalCount != nil {
		page.totalCount = *envelope.TotalCount
	} else {
		page.totalCount = len(page.products)
	}
	return page, nil
}

func decodeProductList(data []byte) ([]wireProduct, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errMalformedPayload
	}
	products := make([]wireProduct, 0, len(raw))
	for _, item := range raw {
		var p wireProduct
		if err := json.Unmarshal(item, &p); err != nil {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

type wireProductDetail struct {
	wireProduct
	Inclusions []struct {
		Description      string `json:"description"`
		OtherDescription string `json:"otherDescription"`
	} `json:"inclusions"`
	Exclusions []struct {
		Description      string `json:"description"`
		OtherDescription string `json:"otherDescription"`
	} `json:"exclusions"`
	ProductOptions []struct {
		ProductOptionCode string `json:"productOptionCode"`
		Title             string `json:"title"`
		Description       string `json:"description"`
	} `json:"productOptions"`
	CancellationPolicy struct {
		Description string `json:"description"`
	} `json:"cancellationPolicy"`
}

func (d wireProductDetail) toDetail(currency string, raw json.RawMessage) *excursion.ProductDetail {
	detail := &excursion.ProductDetail{
		ProductSummary:     d.toSummary(currency),
		Description:        d.Description,
		CancellationPolicy: d.CancellationPolicy.Description,
		Raw:                raw,
	}
	for _, inc := range d.Inclusions {
		if text := firstNonBlank(inc.OtherDescription, inc.Description); text != "" {
			detail.Inclusions = append(detail.Inclusions, text)
		}
	}
	for _, exc := range d.Exclusions {
		if text := firstNonBlank(exc.OtherDescription, exc.Description); text != "" {
			detail.Exclusions = append(detail.Exclusions, text)
		}
	}
	for _, opt := range d.ProductOptions {
		detail.Options = append(detail.Options, excursion.ProductOption{
			Code:        opt.ProductOptionCode,
			Title:       opt.Title,
			Description: opt.Description,
		})
	}
	for _, img := range d.Images {
		if url := img.largest(); url != "" {
			detail.Images = append(detail.Images, url)
		}
	}
	return detail
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// ---------------------------------------------------------------------------
// Availability
// ---------------------------------------------------------------------------

type wireAvailability struct {
	ProductCode   string `json:"productCode"`
	TravelDate    string `json:"travelDate"`
	Currency      string `json:"currency"`
	BookableItems []struct {
		AvailabilityRef   string `json:"availabilityRef"`
		BookableItemRef   string `json:"bookableItemRef"`
		ProductOptionCode string `json:"productOptionCode"`
		StartTime         string `json:"startTime"`
		Available         bool   `json:"available"`
		UnavailableReason string `json:"unavailableReason"`
		LineItems         []struct {
			AgeBand           string     `json:"ageBand"`
			NumberOfTravelers int        `json:"numberOfTravelers"`
			SubtotalPrice     *wirePrice `json:"subtotalPrice"`
		} `json:"lineItems"`
		TotalPrice *wirePrice `json:"totalPrice"`
	} `json:"bookableItems"`
}

func decodeAvailability(body []byte, req *excursion.AvailabilityRequest, currency string) (*excursion.AvailabilityResult, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, errMalformedPayload
	}
	var w wireAvailability
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, errMalformedPayload
	}

	result := &excursion.AvailabilityResult{
		ProductCode:   firstNonBlank(w.ProductCode, req.ProductCode),
		TravelDate:    firstNonBlank(w.TravelDate, req.TravelDate),
		Currency:      firstNonBlank(w.Currency, currency),
		BookableItems: make([]excursion.BookableItem, 0, len(w.BookableItems)),
		Raw:           json.RawMessage(body),
	}

	for _, wi := range w.BookableItems {
		item := excursion.BookableItem{
			AvailabilityRef:   firstNonBlank(wi.AvailabilityRef, wi.BookableItemRef),
			ProductOptionCode: wi.ProductOptionCode,
			StartTime:         wi.StartTime,
			Available:         wi.Available,
			UnavailableReason: wi.UnavailableReason,
			TotalPrice:        wi.TotalPrice.amount(),
		}
		sum := decimal.Zero
		for _, wl := range wi.LineItems {
			subtotal := wl.SubtotalPrice.amount()
			unit := decimal.Zero
			if wl.NumberOfTravelers > 0 {
				unit = subtotal.DivRound(decimal.NewFromInt(int64(wl.NumberOfTravelers)), 2)
			}
			item.LineItems = append(item.LineItems, excursion.LineItem{
				AgeBand:           wl.AgeBand,
				NumberOfTravelers: wl.NumberOfTravelers,
				UnitPrice:         unit,
				Subtotal:          subtotal,
			})
			sum = sum.Add(subtotal)
		}
		if item.TotalPrice.IsZero() {
			item.TotalPrice = sum
		}
		if item.Available {
			result.Bookable = true
		}
		result.BookableItems = append(result.BookableItems, item)
	}
	return result, nil
}

// ---------------------------------------------------------------------------
// Cart booking
// ---------------------------------------------------------------------------

type wireCartItemRequest struct {
	PartnerBookingRef string             `json:"partnerBookingRef"`
	ProductCode       string             `json:"productCode"`
	ProductOptionCode string             `json:"productOptionCode,omitempty"`
	TravelDate        string             `json:"travelDate,omitempty"`
	StartTime         string             `json:"startTime,omitempty"`
	PaxMix            []excursion.PaxMix `json:"paxMix,omitempty"`
	AvailabilityRef   string             `json:"availabilityRef,omitempty"`
}

type wireCartRequest struct {
	PartnerCartRef string                `json:"partnerCartRef"`
	Currency       string                `json:"currency"`
	Items          []wireCartItemRequest `json:"items"`
	BookerInfo     struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
	} `json:"bookerInfo"`
	Communication struct {
		Email string `json:"email"`
		Phone string `json:"phone,omitempty"`
	} `json:"communication"`
}

func newWireCartRequest(req *excursion.CartBookingRequest, currency string) wireCartRequest {
	w := wireCartRequest{
		PartnerCartRef: req.PartnerCartRef,
		Currency:       currency,
		Items:          make([]wireCartItemRequest, 0, len(req.Items)),
	}
	w.BookerInfo.FirstName = strings.TrimSpace(req.Booker.FirstName)
	w.BookerInfo.LastName = strings.TrimSpace(req.Booker.LastName)
	w.BookerInfo.Email = strings.TrimSpace(req.Booker.Email)
	w.Communication.Email = strings.TrimSpace(req.Communication.Email)
	w.Communication.Phone = strings.TrimSpace(req.Communication.Phone)
	for _, item := range req.Items {
		w.Items = append(w.Items, wireCartItemRequest(item))
	}
	return w
}

type wireCartResponse struct {
	CartRef        string     `json:"cartRef"`
	PartnerCartRef string     `json:"partnerCartRef"`
	Currency       string     `json:"currency"`
	TotalPrice     *wirePrice `json:"totalPrice"`
	Items          []struct {
		PartnerBookingRef string     `json:"partnerBookingRef"`
		ProductCode       string     `json:"productCode"`
		BookingRef        string     `json:"bookingRef"`
		Status            string     `json:"status"`
		RejectionReason   string     `json:"rejectionReasonCode"`
		FailureReason     string     `json:"failureReason"`
		TotalPrice        *wirePrice `json:"totalPrice"`
	} `json:"items"`
}

// itemStatus maps upstream item statuses; anything unrecognized is a failure
func itemStatus(s string) excursion.BookingStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CONFIRMED":
		return excursion.BookingStatusConfirmed
	case "PENDING", "ON_HOLD":
		return excursion.BookingStatusPending
	default:
		return excursion.BookingStatusFailed
	}
}

func decodeCartResult(body []byte, req *excursion.CartBookingRequest, currency string) (*excursion.CartBookingResult, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, errMalformedPayload
	}
	var w wireCartResponse
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, errMalformedPayload
	}

	result := &excursion.CartBookingResult{
		PartnerCartRef: firstNonBlank(w.PartnerCartRef, req.PartnerCartRef),
		CartRef:        w.CartRef,
		Currency:       firstNonBlank(w.Currency, currency),
		TotalPrice:     w.TotalPrice.amount(),
		Items:          make([]excursion.ItemOutcome, 0, len(w.Items)),
	}

	productByRef := make(map[string]string, len(req.Items))
	for _, item := range req.Items {
		productByRef[item.PartnerBookingRef] = item.ProductCode
	}

	sum := decimal.Zero
	for _, wi := range w.Items {
		outcome := excursion.ItemOutcome{
			PartnerBookingRef: wi.PartnerBookingRef,
			ProductCode:       firstNonBlank(wi.ProductCode, productByRef[wi.PartnerBookingRef]),
			Status:            itemStatus(wi.Status),
			BookingRef:        wi.BookingRef,
			TotalPrice:        wi.TotalPrice.amount(),
		}
		if outcome.Status == excursion.BookingStatusFailed {
			outcome.FailureReason = firstNonBlank(wi.FailureReason, wi.RejectionReason, strings.ToUpper(wi.Status))
		}
		sum = sum.Add(outcome.TotalPrice)
		result.Items = append(result.Items, outcome)
	}
	if result.TotalPrice.IsZero() {
		result.TotalPrice = sum
	}
	result.Status = result.ComputeStatus()
	return result, nil
}

// ---------------------------------------------------------------------------
// Reviews and destinations
// ---------------------------------------------------------------------------

type wireReviewRequest struct {
	ProductCode string `json:"productCode"`
	Count       int    `json:"count"`
	Start       int    `json:"start"`
	Provider    string `json:"provider"`
	SortBy      string `json:"sortBy"`
}

type wireReviews struct {
	Reviews []struct {
		ReviewReference flexString `json:"reviewReference"`
		Provider        string     `json:"provider"`
		Rating          int        `json:"rating"`
		Title           string     `json:"title"`
		Text            string     `json:"text"`
		UserName        string     `json:"userName"`
		PublishedDate   string     `json:"publishedDate"`
	} `json:"reviews"`
	TotalCount          *int `json:"totalCount"`
	TotalReviewsSummary struct {
		TotalReviews int `json:"totalReviews"`
	} `json:"totalReviewsSummary"`
}

func decodeReviews(body []byte) ([]excursion.Review, int, error) {
	var w wireReviews
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, 0, errMalformedPayload
	}
	reviews := make([]excursion.Review, 0, len(w.Reviews))
	for _, r := range w.Reviews {
		reviews = append(reviews, excursion.Review{
			ReviewRef:     string(r.ReviewReference),
			Provider:      r.Provider,
			Rating:        r.Rating,
			Title:         r.Title,
			Text:          r.Text,
			UserName:      r.UserName,
			PublishedDate: parseTimestamp(r.PublishedDate),
		})
	}
	total := w.TotalReviewsSummary.TotalReviews
	if w.TotalCount != nil {
		total = *w.TotalCount
	}
	return reviews, total, nil
}

// parseTimestamp accepts RFC 3339 and plain dates; anything else is zero
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", excursion.DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

type wireDestinations struct {
	Destinations []struct {
		DestinationID       flexString `json:"destinationId"`
		Name                string     `json:"name"`
		Type                string     `json:"type"`
		ParentDestinationID flexString `json:"parentDestinationId"`
		TimeZone            string     `json:"timeZone"`
		DefaultCurrencyCode string     `json:"defaultCurrencyCode"`
	} `json:"destinations"`
	TotalCount *int `json:"totalCount"`
}

func decodeDestinations(body []byte) (*excursion.DestinationList, error) {
	var w wireDestinations
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, errMalformedPayload
	}
	list := &excursion.DestinationList{
		Destinations: make([]excursion.Destination, 0, len(w.Destinations)),
	}
	for _, d := range w.Destinations {
		if d.DestinationID == "" {
			continue
		}
		list.Destinations = append(list.Destinations, excursion.Destination{
			ID:              string(d.DestinationID),
			Name:            d.Name,
			Type:            d.Type,
			ParentID:        string(d.ParentDestinationID),
			TimeZone:        d.TimeZone,
			DefaultCurrency: d.DefaultCurrencyCode,
		})
	}
	list.TotalCount = len(list.Destinations)
	if w.TotalCount != nil {
		list.TotalCount = *w.TotalCount
	}
	return list, nil
}
