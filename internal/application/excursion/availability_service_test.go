package excursion

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/excursion"
)

func availabilityRequest() excursion.AvailabilityRequest {
	return excursion.AvailabilityRequest{
		ProductCode:       "5010SYDNEY",
		ProductOptionCode: "TG1",
		TravelDate:        "2026-03-01",
		PaxMix: []excursion.PaxMix{
			{AgeBand: excursion.AgeBandChild, NumberOfTravelers: 1},
			{AgeBand: excursion.AgeBandAdult, NumberOfTravelers: 2},
		},
	}
}

func TestAvailabilityService_CheckAvailability(t *testing.T) {
	transport := new(MockSupplyTransport)
	transport.On("Send", mock.Anything, onPath(pathAvailabilityCheck)).Return(okResponse(`{
		"currency": "USD",
		"bookableItems": [{
			"productOptionCode": "TG1",
			"startTime": "09:00",
			"available": true,
			"lineItems": [{"ageBand": "ADULT", "numberOfTravelers": 2, "subtotalPrice": {"price": {"recommendedRetailPrice": 150}}}],
			"totalPrice": {"price": {"recommendedRetailPrice": 175.5}}
		}]
	}`), nil).Once()

	svc := NewAvailabilityService(transport)
	result, err := svc.CheckAvailability(context.Background(), availabilityRequest())
	require.NoError(t, err)

	assert.True(t, result.Bookable)
	assert.Equal(t, "5010SYDNEY", result.ProductCode)
	assert.Equal(t, "175.5", result.LowestPrice().String())

	body := requestBody(transport.Calls[0].Arguments.Get(1).(*excursion.SupplyRequest))
	mix := body["paxMix"].([]any)
	require.Len(t, mix, 2)
	assert.Equal(t, "CHILD", mix[0].(map[string]any)["ageBand"], "passenger mix order is preserved")
	assert.Equal(t, "ADULT", mix[1].(map[string]any)["ageBand"])
	assert.Equal(t, "USD", body["currency"])
}

func TestAvailabilityService_MissingFields(t *testing.T) {
	transport := new(MockSupplyTransport)
	svc := NewAvailabilityService(transport)

	_, err := svc.CheckAvailability(context.Background(), excursion.AvailabilityRequest{ProductCode: "X"})

	var verr *excursion.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"productOptionCode", "travelDate", "paxMix"}, verr.Fields)
	transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestAvailabilityService_ServerErrorNotRetried(t *testing.T) {
	transport := new(MockSupplyTransport)
	transport.On("Send", mock.Anything, mock.Anything).Return(nil, &excursion.UpstreamError{
		Operation: "availability",
		Status:    http.StatusInternalServerError,
		Body:      []byte(`{"message":"boom"}`),
	})

	svc := NewAvailabilityService(transport, WithReadRetries(3, 1))
	_, err := svc.CheckAvailability(context.Background(), availabilityRequest())

	var upstream *excursion.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusInternalServerError, upstream.Status)
	transport.AssertNumberOfCalls(t, "Send", 1)
}

func TestAvailabilityService_MalformedResponse(t *testing.T) {
	transport := new(MockSupplyTransport)
	transport.On("Send", mock.Anything, mock.Anything).Return(okResponse(`["not","an","object"]`), nil)

	svc := NewAvailabilityService(transport)
	_, err := svc.CheckAvailability(context.Background(), availabilityRequest())
	assert.ErrorIs(t, err, excursion.ErrUpstream)
}
