package excursion

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/excursion"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/shared"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/infrastructure/telemetry"
)

const (
	pathCartBook   = "/bookings/cart/book"
	pathCartStatus = "/bookings/cart/status"
)

// BookingService submits carts. Booking is not idempotent upstream, so a
// submission is never retried and a partner cart ref is accepted only once
// per guard TTL.
type BookingService struct {
	transport excursion.SupplyTransport
	guard     shared.SubmissionGuard
	guardCfg  shared.SubmissionGuardConfig
	opts      options
}

// NewBookingService creates a new BookingService. guard may be nil, which
// disables duplicate submission checks.
func NewBookingService(
	transport excursion.SupplyTransport,
	guard shared.SubmissionGuard,
	guardCfg shared.SubmissionGuardConfig,
	opts ...Option,
) *BookingService {
	if guardCfg.TTL <= 0 {
		guardCfg.TTL = shared.DefaultSubmissionGuardConfig().TTL
	}
	return &BookingService{
		transport: transport,
		guard:     guard,
		guardCfg:  guardCfg,
		opts:      newOptions(opts),
	}
}

// BookCart validates and submits a cart.
//
// Validation errors are returned before any network access. A transport
// failure is joined with ErrBookingOutcomeUnknown because the upstream may
// have created the reservation; callers must confirm with CartStatus. A request
// that never left the client (ErrRequestNotSent) releases the ref like any
// upstream rejection.
func (s *BookingService) BookCart(ctx context.Context, req excursion.CartBookingRequest) (*excursion.CartBookingResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.AssignRefs()
	locale := req.Locale.WithDefaults()

	ctx, span := telemetry.StartServiceSpan(ctx, "booking", "BookCart",
		telemetry.WithAttribute(telemetry.SpanAttrPartnerCartRef, req.PartnerCartRef),
		telemetry.WithAttribute(telemetry.SpanAttrCartItems, len(req.Items)),
	)
	defer span.End()

	log := s.opts.log(ctx).With(zap.String("partner_cart_ref", req.PartnerCartRef))

	if err := s.markSubmitted(ctx, req.PartnerCartRef); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp, err := s.transport.Send(ctx, &excursion.SupplyRequest{
		Operation: "book_cart",
		Method:    http.MethodPost,
		Path:      pathCartBook,
		Locale:    locale,
		Body:      newWireCartRequest(&req, locale.Currency),
	})
	if err != nil {
		telemetry.RecordError(span, err)
		switch {
		case errors.Is(err, excursion.ErrNetwork):
			// the reservation may exist upstream, so the ref stays marked
			log.Error("cart booking outcome unknown", zap.Error(err))
			return nil, errors.Join(excursion.ErrBookingOutcomeUnknown, err)
		default:
			s.release(ctx, req.PartnerCartRef)
			return nil, err
		}
	}

	result, err := decodeCartResult(resp.Body, &req, locale.Currency)
	if err != nil {
		upstreamErr := &excursion.UpstreamError{Operation: "book_cart", Status: resp.Status, Body: resp.Body, Reason: err.Error()}
		telemetry.RecordError(span, upstreamErr)
		log.Error("cart booked but response unreadable", zap.Error(upstreamErr))
		return nil, errors.Join(excursion.ErrBookingOutcomeUnknown, upstreamErr)
	}

	log.Info("cart booked",
		zap.String("cart_ref", result.CartRef),
		zap.String("status", string(result.Status)),
		zap.Int("confirmed", result.ConfirmedCount()),
		zap.Int("items", len(result.Items)),
	)
	telemetry.SetOK(span)
	return result, nil
}

// CartStatus fetches the current outcome of a previously submitted cart
func (s *BookingService) CartStatus(ctx context.Context, partnerCartRef string, locale excursion.Locale) (*excursion.CartBookingResult, error) {
	partnerCartRef = strings.TrimSpace(partnerCartRef)
	if partnerCartRef == "" {
		return nil, excursion.NewMissingFieldsError("partnerCartRef")
	}
	locale = locale.WithDefaults()

	ctx, span := telemetry.StartServiceSpan(ctx, "booking", "CartStatus",
		telemetry.WithAttribute(telemetry.SpanAttrPartnerCartRef, partnerCartRef),
	)
	defer span.End()

	resp, err := s.opts.sendRead(ctx, s.transport, &excursion.SupplyRequest{
		Operation: "cart_status",
		Method:    http.MethodPost,
		Path:      pathCartStatus,
		Locale:    locale,
		Body:      map[string]string{"partnerCartRef": partnerCartRef},
	})
	if err != nil {
		var upstream *excursion.UpstreamError
		if errors.As(err, &upstream) && upstream.Status == http.StatusNotFound {
			err = excursion.ErrNotFound
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	req := &excursion.CartBookingRequest{PartnerCartRef: partnerCartRef}
	result, err := decodeCartResult(resp.Body, req, locale.Currency)
	if err != nil {
		upstreamErr := &excursion.UpstreamError{Operation: "cart_status", Status: resp.Status, Body: resp.Body, Reason: err.Error()}
		telemetry.RecordError(span, upstreamErr)
		return nil, upstreamErr
	}
	telemetry.SetOK(span)
	return result, nil
}

func (s *BookingService) markSubmitted(ctx context.Context, ref string) error {
	if s.guard == nil || !s.guardCfg.Enabled {
		return nil
	}
	isNew, err := s.guard.MarkSubmitted(ctx, ref, s.guardCfg.TTL)
	if err != nil {
		// an unavailable guard must not block bookings
		s.opts.log(ctx).Warn("submission guard unavailable", zap.Error(err))
		return nil
	}
	if !isNew {
		return excursion.ErrDuplicateSubmission
	}
	return nil
}

func (s *BookingService) release(ctx context.Context, ref string) {
	if s.guard == nil || !s.guardCfg.Enabled {
		return
	}
	if err := s.guard.Release(ctx, ref); err != nil {
		s.opts.log(ctx).Warn("failed to release submission guard", zap.Error(err))
	}
}
