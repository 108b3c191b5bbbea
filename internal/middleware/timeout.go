package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestTimeout bounds every request with a deadline so no handler can hang
// on a stuck downstream call. Repositories and services observe the
// context; expiry surfaces as a network-class error at the handler boundary.
// Paths matching a skip prefix (long-lived streams) keep the client-driven
// request context instead.
func RequestTimeout(d time.Duration, skipPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, prefix := range skipPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
