package handlers

import (
	"net/http"

	portssvc "github.com/atelierhq/order_tracking_app/internal/core/ports/services"
	"github.com/atelierhq/order_tracking_app/internal/dto"
	"github.com/atelierhq/order_tracking_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// CompanyHandler serves the tenant surface: the company record, members and
// invitations.
type CompanyHandler struct {
	companyService portssvc.CompanySvcFacade
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(services *portssvc.ServiceContainer) *CompanyHandler {
	return &CompanyHandler{companyService: services.Company}
}

// registerCompanyRoutes sets up the company routes. The group already runs
// behind the profile gate, which also enforces that company_id matches the
// caller's company.
func registerCompanyRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := NewCompanyHandler(services)

	companies := rg.Group("/companies/:company_id")
	{
		companies.GET("", h.GetCompany)
		companies.GET("/members", h.ListMembers)
		companies.DELETE("/members/:worker_id", middleware.RequireManager(), h.RemoveMember)
		companies.POST("/invitations", middleware.RequireManager(), h.CreateInvitation)
		companies.GET("/invitations", middleware.RequireManager(), h.ListInvitations)
		companies.DELETE("/invitations/:code", middleware.RequireManager(), h.DeleteInvitation)
	}
}

func callerProfile(c *gin.Context) (string, bool) {
	profile, ok := middleware.GetProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return "", false
	}
	return profile.ProfileID, true
}

// GetCompany godoc
// @Summary Get the company
// @Tags companies
// @Produce json
// @Param company_id path string true "Company ID"
// @Success 200 {object} dto.CompanyResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id} [get]
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	callerID, ok := callerProfile(c)
	if !ok {
		return
	}

	company, err := h.companyService.GetCompany(c.Request.Context(), c.Param("company_id"), callerID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to load company")
		return
	}
	c.JSON(http.StatusOK, dto.ToCompanyResponse(company))
}

// ListMembers godoc
// @Summary List company members
// @Tags companies
// @Produce json
// @Param company_id path string true "Company ID"
// @Success 200 {object} dto.ListProfilesResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/members [get]
func (h *CompanyHandler) ListMembers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	callerID, ok := callerProfile(c)
	if !ok {
		return
	}

	members, err := h.companyService.ListMembers(c.Request.Context(), c.Param("company_id"), callerID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list members")
		return
	}
	c.JSON(http.StatusOK, dto.ToListProfilesResponse(members))
}

// RemoveMember godoc
// @Summary Remove a member from the company
// @Description Detaches the worker's profile from the company and removes their assignment rows. Managers cannot remove themselves.
// @Tags companies
// @Param company_id path string true "Company ID"
// @Param worker_id path string true "Worker profile ID"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/members/{worker_id} [delete]
func (h *CompanyHandler) RemoveMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	callerID, ok := callerProfile(c)
	if !ok {
		return
	}

	err := h.companyService.RemoveMember(c.Request.Context(), c.Param("company_id"), callerID, c.Param("worker_id"))
	if err != nil {
		handleServiceError(c, logger, err, "Failed to remove member")
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateInvitation godoc
// @Summary Invite a member
// @Description Creates a single-use invitation code for the given email and role.
// @Tags companies
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param invitation body dto.CreateInvitationRequest true "Invitation details"
// @Success 201 {object} dto.InvitationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/invitations [post]
func (h *CompanyHandler) CreateInvitation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	callerID, ok := callerProfile(c)
	if !ok {
		return
	}

	var req dto.CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindingErrorMessage(err)})
		return
	}

	inv, err := h.companyService.CreateInvitation(c.Request.Context(), c.Param("company_id"), callerID, req.Email, req.Role)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to create invitation")
		return
	}
	c.JSON(http.StatusCreated, dto.ToInvitationResponse(inv))
}

// ListInvitations godoc
// @Summary List company invitations
// @Tags companies
// @Produce json
// @Param company_id path string true "Company ID"
// @Success 200 {object} dto.ListInvitationsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/invitations [get]
func (h *CompanyHandler) ListInvitations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	callerID, ok := callerProfile(c)
	if !ok {
		return
	}

	invs, err := h.companyService.ListInvitations(c.Request.Context(), c.Param("company_id"), callerID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list invitations")
		return
	}
	c.JSON(http.StatusOK, dto.ToListInvitationsResponse(invs))
}

// DeleteInvitation godoc
// @Summary Delete an invitation
// @Tags companies
// @Param company_id path string true "Company ID"
// @Param code path string true "Invitation code"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/invitations/{code} [delete]
func (h *CompanyHandler) DeleteInvitation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	callerID, ok := callerProfile(c)
	if !ok {
		return
	}

	err := h.companyService.DeleteInvitation(c.Request.Context(), c.Param("company_id"), callerID, c.Param("code"))
	if err != nil {
		handleServiceError(c, logger, err, "Failed to delete invitation")
		return
	}
	c.Status(http.StatusNoContent)
}
