package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/interfaces/http/dto"
)

func TestFormatValidationErrors(t *testing.T) {
	SetupValidator()

	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var req dto.CartBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(nil))
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(RequestIDHeader, "req-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("reports nested json field names", func(t *testing.T) {
		w := post(`{"booker":{"email":"not-an-email"},"items":[{"productCode":"X","paxMix":[{"ageBand":"PIRATE","numberOfTravelers":1}]}]}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "req-1", resp.Error.RequestID)
		assert.ElementsMatch(t, []dto.ValidationDetail{
			{Field: "items[0].paxMix[0].ageBand", Message: "Must be one of: ADULT SENIOR YOUTH CHILD INFANT TRAVELER"},
			{Field: "booker.email", Message: "Invalid email format"},
		}, resp.Error.Details)
	})

	t.Run("missing domain fields pass binding", func(t *testing.T) {
		w := post(`{}`)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetValidationMessage(t *testing.T) {
	SetupValidator()

	type query struct {
		Currency string `form:"currency" binding:"omitempty,len=3"`
		PageSize int    `form:"page_size" binding:"omitempty,max=50"`
		Date     string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	}

	tests := []struct {
		query string
		field string
		msg   string
	}{
		{"currency=EURO", "currency", "Must be exactly 3 characters"},
		{"page_size=51", "page_size", "Must be at most 50"},
		{"start_date=01/02/2026", "start_date", "Must match the layout 2006-01-02"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)

			var q query
			err := c.ShouldBindQuery(&q)
			require.Error(t, err)

			resp := FormatValidationErrors(err, "")
			require.Len(t, resp.Error.Details, 1)
			assert.Equal(t, tt.field, resp.Error.Details[0].Field)
			assert.Equal(t, tt.msg, resp.Error.Details[0].Message)
		})
	}
}
