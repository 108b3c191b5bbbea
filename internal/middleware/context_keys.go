package middleware

import (
	"github.com/atelierhq/order_tracking_app/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// userIDKey is the key used to store the authenticated user's ID in the
// request context.
const userIDKey = contextKey("userID")

// profileKey is the key used by the profile gate to store the resolved
// caller profile in the Gin context.
const profileKey = "callerProfile"

// GetUserIDFromContext retrieves the authenticated user ID from the Gin
// context. It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if v := c.Request.Context().Value(userIDKey); v != nil {
		if userID, ok := v.(string); ok {
			return userID, true
		}
	}
	return "", false
}

// GetProfileFromContext retrieves the caller profile stored by ProfileGate.
func GetProfileFromContext(c *gin.Context) (*domain.Profile, bool) {
	v, exists := c.Get(profileKey)
	if !exists {
		return nil, false
	}
	profile, ok := v.(*domain.Profile)
	return profile, ok
}
