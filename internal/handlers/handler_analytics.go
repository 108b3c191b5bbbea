package handlers

import (
	"net/http"

	portssvc "github.com/atelierhq/order_tracking_app/internal/core/ports/services"
	"github.com/atelierhq/order_tracking_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// AnalyticsHandler serves the dashboard aggregations.
type AnalyticsHandler struct {
	analyticsService portssvc.AnalyticsSvcFacade
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(services *portssvc.ServiceContainer) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: services.Analytics}
}

// registerAnalyticsRoutes sets up the analytics routes behind the profile
// gate.
func registerAnalyticsRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := NewAnalyticsHandler(services)

	analytics := rg.Group("/analytics")
	{
		analytics.GET("/company", middleware.RequireManager(), h.CompanySummary)
		analytics.GET("/me", h.WorkerSummary)
	}
}

// CompanySummary godoc
// @Summary Company-wide order metrics
// @Description Aggregates all company orders: totals by status and priority, recent volume and per-worker load. Manager only.
// @Tags analytics
// @Produce json
// @Success 200 {object} domain.CompanySummary
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /analytics/company [get]
func (h *AnalyticsHandler) CompanySummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	profile, ok := middleware.GetProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	summary, err := h.analyticsService.CompanySummary(c.Request.Context(), profile)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to compute company summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// WorkerSummary godoc
// @Summary The caller's own order metrics
// @Description Aggregates the caller's visible orders and their own flags.
// @Tags analytics
// @Produce json
// @Success 200 {object} domain.WorkerSummary
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /analytics/me [get]
func (h *AnalyticsHandler) WorkerSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	profile, ok := middleware.GetProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	summary, err := h.analyticsService.WorkerSummary(c.Request.Context(), profile)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to compute worker summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}
