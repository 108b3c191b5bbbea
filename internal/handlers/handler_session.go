package handlers

import (
	"net/http"

	"github.com/atelierhq/order_tracking_app/internal/core/domain"
	portssvc "github.com/atelierhq/order_tracking_app/internal/core/ports/services"
	"github.com/atelierhq/order_tracking_app/internal/dto"
	"github.com/atelierhq/order_tracking_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// SessionHandler reports and repairs the gate state for the current
// identity. These routes sit behind authentication but deliberately NOT
// behind the profile gate: a degraded session must be able to reach them.
type SessionHandler struct {
	profileService portssvc.ProfileSvcFacade
	userService    portssvc.UserSvcFacade
	companyService portssvc.CompanySvcFacade
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(services *portssvc.ServiceContainer) *SessionHandler {
	return &SessionHandler{
		profileService: services.Profile,
		userService:    services.User,
		companyService: services.Company,
	}
}

// registerSessionRoutes sets up the session state and repair routes.
func registerSessionRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := NewSessionHandler(services)
	rg.GET("/session", h.GetSession)
	rg.POST("/session/repair", h.RepairSession)
	rg.POST("/session/setup", h.CompleteSetup)
}

// GetSession godoc
// @Summary Report the session state
// @Description Returns the gate state for the current identity, its profile when one exists, and the role-derived capabilities. A missing or degraded profile is a state, not an error.
// @Tags session
// @Produce json
// @Success 200 {object} dto.SessionResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /session [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	overview, err := h.profileService.SessionState(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to derive session state")
		return
	}
	c.JSON(http.StatusOK, dto.ToSessionResponse(overview))
}

// RepairSession godoc
// @Summary Repair a degraded session
// @Description Idempotently creates the minimal profile row for the identity and returns the resulting session state. Running repair on a healthy session changes nothing.
// @Tags session
// @Produce json
// @Success 200 {object} dto.SessionResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /session/repair [post]
func (h *SessionHandler) RepairSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if _, err := h.profileService.RepairProfile(c.Request.Context(), userID); err != nil {
		handleServiceError(c, logger, err, "Failed to repair profile")
		return
	}

	overview, err := h.profileService.SessionState(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to derive session state")
		return
	}
	c.JSON(http.StatusOK, dto.ToSessionResponse(overview))
}

func domainSignupMetadata(req CompleteSetupRequest) domain.SignupMetadata {
	return domain.SignupMetadata{
		FullName:       req.FullName,
		Role:           domain.Role(req.Role),
		CompanyType:    domain.CompanyType(req.CompanyType),
		CompanyName:    req.CompanyName,
		InvitationCode: req.InvitationCode,
	}
}

// CompleteSetupRequest re-runs the post-signup steps for a session whose
// setup stopped partway.
type CompleteSetupRequest struct {
	FullName       string `json:"fullName" binding:"required"`
	Role           string `json:"role" binding:"omitempty,oneof=worker manager"`
	CompanyType    string `json:"companyType" binding:"required,oneof=new existing"`
	CompanyName    string `json:"companyName"`
	InvitationCode string `json:"invitationCode"`
}

// CompleteSetup godoc
// @Summary Finish an incomplete profile setup
// @Description Re-runs the profile and company resolution steps for the current identity, resuming from the recorded setup stage.
// @Tags session
// @Accept json
// @Produce json
// @Param setup body CompleteSetupRequest true "Setup details"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /session/setup [post]
func (h *SessionHandler) CompleteSetup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req CompleteSetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindingErrorMessage(err)})
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to load identity")
		return
	}

	metadata := domainSignupMetadata(req)
	if err := h.profileService.CompleteProfileSetup(c.Request.Context(), user, metadata); err != nil {
		handleServiceError(c, logger, err, "Failed to complete profile setup")
		return
	}

	overview, err := h.profileService.SessionState(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to derive session state")
		return
	}
	c.JSON(http.StatusOK, dto.ToSessionResponse(overview))
}
