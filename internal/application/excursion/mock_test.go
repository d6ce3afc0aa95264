package excursion

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/stretchr/testify/mock"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/excursion"
)

// MockSupplyTransport is a mock implementation of SupplyTransport
type MockSupplyTransport struct {
	mock.Mock
}

func (m *MockSupplyTransport) Send(ctx context.Context, req *excursion.SupplyRequest) (*excursion.SupplyResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*excursion.SupplyResponse), args.Error(1)
}

func (m *MockSupplyTransport) Configured() bool {
	return true
}

// okResponse builds a 200 response from a JSON literal
func okResponse(body string) *excursion.SupplyResponse {
	return &excursion.SupplyResponse{Status: http.StatusOK, Body: []byte(body)}
}

// requestBody re-encodes the request body for inspection
func requestBody(req *excursion.SupplyRequest) map[string]any {
	data, err := json.Marshal(req.Body)
	if err != nil {
		return nil
	}
	var out map[string]any
	_ = json.Unmarshal(data, &out)
	return out
}

func onPath(path string) any {
	return mock.MatchedBy(func(req *excursion.SupplyRequest) bool {
		return req.Path == path
	})
}
