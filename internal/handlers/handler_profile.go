package handlers

import (
	"net/http"

	portssvc "github.com/atelierhq/order_tracking_app/internal/core/ports/services"
	"github.com/atelierhq/order_tracking_app/internal/dto"
	"github.com/atelierhq/order_tracking_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ProfileHandler serves the caller's own profile. Like the session routes it
// runs without the profile gate so a degraded account can still read and fix
// its profile.
type ProfileHandler struct {
	profileService portssvc.ProfileSvcFacade
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(services *portssvc.ServiceContainer) *ProfileHandler {
	return &ProfileHandler{profileService: services.Profile}
}

// registerProfileRoutes sets up the profile routes.
func registerProfileRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := NewProfileHandler(services)
	rg.GET("/profile", h.GetMyProfile)
	rg.PATCH("/profile", h.UpdateMyProfile)
}

// GetMyProfile godoc
// @Summary Get the caller's profile
// @Tags profile
// @Produce json
// @Success 200 {object} dto.ProfileResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /profile [get]
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	profile, err := h.profileService.FetchProfile(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to load profile")
		return
	}
	c.JSON(http.StatusOK, dto.ToProfileResponse(profile))
}

// UpdateMyProfile godoc
// @Summary Update the caller's profile
// @Tags profile
// @Accept json
// @Produce json
// @Param profile body dto.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} dto.ProfileResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /profile [patch]
func (h *ProfileHandler) UpdateMyProfile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindingErrorMessage(err)})
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), userID, req.FullName)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, dto.ToProfileResponse(profile))
}
