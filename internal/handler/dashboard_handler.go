package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusdocs/doctrack-api/internal/dto"
	"github.com/campusdocs/doctrack-api/internal/models"
	"github.com/campusdocs/doctrack-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context, viewer *models.JWTClaims) (*dto.DashboardResponse, error)
}

// DashboardHandler serves the viewer-scoped summary.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Summary godoc
// @Summary Dashboard counts for the caller's scope
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	result, err := h.service.Summary(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{"cache_hit": result.CacheHit}
	response.JSON(c, http.StatusOK, result, nil, meta)
}
