package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubSupply bool

func (s stubSupply) Configured() bool { return bool(s) }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name   string
		supply SupplyState
		want   string
	}{
		{"configured", stubSupply(true), SupplyConfigured},
		{"missing key", stubSupply(false), SupplyNotConfigured},
		{"no client", nil, SupplyNotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.supply, "sandbox", "1.2.3")
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

			h.Health(c)

			assert.Equal(t, http.StatusOK, w.Code)
			data := decodeResponse(t, w).Data.(map[string]any)
			assert.Equal(t, "ok", data["status"])
			assert.Equal(t, tt.want, data["supply"])
			assert.Equal(t, "sandbox", data["environment"])
			assert.Equal(t, "1.2.3", data["version"])
		})
	}
}
