package excursion

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/excursion"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/infrastructure/telemetry"
)

const pathAvailabilityCheck = "/availability/check"

// AvailabilityService prices a product option for a date and passenger mix.
// Checks are sent once: upstream quotes are never retried.
type AvailabilityService struct {
	transport excursion.SupplyTransport
	opts      options
}

// NewAvailabilityService creates a new AvailabilityService
func NewAvailabilityService(transport excursion.SupplyTransport, opts ...Option) *AvailabilityService {
	return &AvailabilityService{
		transport: transport,
		opts:      newOptions(opts),
	}
}

type availabilityCheckBody struct {
	ProductCode       string             `json:"productCode"`
	ProductOptionCode string             `json:"productOptionCode"`
	TravelDate        string             `json:"travelDate"`
	StartTime         string             `json:"startTime,omitempty"`
	PaxMix            []excursion.PaxMix `json:"paxMix"`
	Currency          string             `json:"currency"`
}

// CheckAvailability validates the request locally and asks the supply API
// for bookable items and prices
func (s *AvailabilityService) CheckAvailability(ctx context.Context, req excursion.AvailabilityRequest) (*excursion.AvailabilityResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	locale := req.Locale.WithDefaults()

	ctx, span := telemetry.StartServiceSpan(ctx, "availability", "CheckAvailability",
		telemetry.WithAttribute(telemetry.SpanAttrProductCode, req.ProductCode),
		telemetry.WithAttribute(telemetry.SpanAttrOptionCode, req.ProductOptionCode),
	)
	defer span.End()

	resp, err := s.transport.Send(ctx, &excursion.SupplyRequest{
		Operation: "availability",
		Method:    http.MethodPost,
		Path:      pathAvailabilityCheck,
		Locale:    locale,
		Body: availabilityCheckBody{
			ProductCode:       req.ProductCode,
			ProductOptionCode: req.ProductOptionCode,
			TravelDate:        req.TravelDate,
			StartTime:         req.StartTime,
			PaxMix:            req.PaxMix,
			Currency:          locale.Currency,
		},
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result, err := decodeAvailability(resp.Body, &req, locale.Currency)
	if err != nil {
		upstreamErr := &excursion.UpstreamError{Operation: "availability", Status: resp.Status, Body: resp.Body, Reason: err.Error()}
		telemetry.RecordError(span, upstreamErr)
		return nil, upstreamErr
	}

	s.opts.log(ctx).Debug("availability checked",
		zap.String("product_code", req.ProductCode),
		zap.Bool("bookable", result.Bookable),
		zap.Int("bookable_items", len(result.BookableItems)),
	)
	telemetry.SetOK(span)
	return result, nil
}
