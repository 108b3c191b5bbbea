package handlers

import (
	"net/http"

	"github.com/atelierhq/order_tracking_app/cmd/docs"
	"github.com/atelierhq/order_tracking_app/internal/changefeed"
	portssvc "github.com/atelierhq/order_tracking_app/internal/core/ports/services"
	"github.com/atelierhq/order_tracking_app/internal/middleware"
	"github.com/atelierhq/order_tracking_app/internal/platform/config"
	"github.com/atelierhq/order_tracking_app/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	feed *changefeed.Feed,
	images *storage.ImageStore,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public authentication routes
	registerAuthRoutes(r, cfg, services)
	registerGoogleOAuthRoutes(r, cfg, services)

	setupAPIV1Routes(r, cfg, services, feed, images)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	feed *changefeed.Feed,
	images *storage.ImageStore,
) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	// Session, profile and logout stay outside the profile gate: an account
	// whose setup is incomplete must still be able to inspect and repair it.
	registerSessionRoutes(v1, services)
	registerProfileRoutes(v1, services)
	registerLogoutRoute(v1, cfg, services)

	// Everything below requires a healthy profile attached to a company.
	gated := v1.Group("", middleware.ProfileGate(services.Profile))

	registerOrderRoutes(gated, services)
	registerBuyListRoutes(gated, services)
	registerCompanyRoutes(gated, services)
	registerAnalyticsRoutes(gated, services)
	registerEventRoutes(gated, services, feed)
	registerStorageRoutes(gated, images)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
