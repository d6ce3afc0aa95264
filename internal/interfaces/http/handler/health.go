package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/interfaces/http/dto"
)

// Supply configuration states reported by /health
const (
	SupplyConfigured    = "configured"
	SupplyNotConfigured = "not_configured"
)

// SupplyState reports whether supply credentials are present
type SupplyState interface {
	Configured() bool
}

// HealthHandler serves liveness and configuration state
type HealthHandler struct {
	BaseHandler
	supply      SupplyState
	environment string
	version     string
	startTime   time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(supply SupplyState, environment, version string) *HealthHandler {
	return &HealthHandler{
		supply:      supply,
		environment: environment,
		version:     version,
		startTime:   time.Now(),
	}
}

// Health godoc
// @Summary  Liveness and supply configuration state
// @Tags     system
// @Produce  json
// @Success  200 {object} dto.Response
// @Router   /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	supply := SupplyNotConfigured
	if h.supply != nil && h.supply.Configured() {
		supply = SupplyConfigured
	}

	// Always 200; supply state is informational
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.HealthResponse{
		Status:      "ok",
		Supply:      supply,
		Environment: h.environment,
		Version:     h.version,
		GoVersion:   runtime.Version(),
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
	}))
}
