package middleware

import (
	"errors"
	"net/http"

	"github.com/atelierhq/order_tracking_app/internal/apperrors"
	"github.com/atelierhq/order_tracking_app/internal/core/domain"
	portssvc "github.com/atelierhq/order_tracking_app/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// RepairPath is where degraded sessions are pointed to recover.
const RepairPath = "/api/v1/session/repair"

// ProfileGate renders the authorization gate server-side: it resolves the
// caller's profile and only lets requests through in the authenticated-ready
// state. Missing or company-less profiles are blocked with the repair
// affordance; company-scoped data is never served to a degraded session.
func ProfileGate(profileSvc portssvc.ProfileSvcFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		userID, ok := GetUserIDFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		profile, err := profileSvc.FetchProfile(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error":      "Profile setup is incomplete",
					"code":       "profile_degraded",
					"state":      domain.SessionNoProfile,
					"repair_url": RepairPath,
				})
				return
			}
			logger.Error("Failed to resolve caller profile", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve profile"})
			return
		}

		if profile.Degraded() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":      "Your profile is not linked to a company yet",
				"code":       "profile_degraded",
				"state":      domain.SessionDegraded,
				"repair_url": RepairPath,
			})
			return
		}

		// Routes carrying an explicit company scope must match the caller's.
		if companyID := c.Param("company_id"); companyID != "" && companyID != *profile.CompanyID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}

		c.Set(profileKey, profile)
		c.Next()
	}
}

// RequireManager blocks callers without the manager capability. Must run
// after ProfileGate.
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, ok := GetProfileFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if !domain.DeriveCapabilities(profile.Role).IsManager {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Manager role required"})
			return
		}
		c.Next()
	}
}
