package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ulule/limiter/v3"
	limitergin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/atelierhq/order_tracking_app/internal/core/domain"
	portssvc "github.com/atelierhq/order_tracking_app/internal/core/ports/services"
	"github.com/atelierhq/order_tracking_app/internal/dto"
	"github.com/atelierhq/order_tracking_app/internal/middleware"
	"github.com/atelierhq/order_tracking_app/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication related requests.
type AuthHandler struct {
	authService    portssvc.AuthSvcFacade
	profileService portssvc.ProfileSvcFacade
	cfg            *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(services *portssvc.ServiceContainer, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService:    services.Auth,
		profileService: services.Profile,
		cfg:            cfg,
	}
}

// registerAuthRoutes sets up the public authentication routes.
func registerAuthRoutes(rg *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := NewAuthHandler(services, cfg)

	// 5 requests per minute per client IP on the credential endpoints.
	rate, _ := limiter.NewRateFromFormatted("5-M")
	store := memory.NewStore()
	ipLimiter := limiter.New(store, rate)
	limitMiddleware := limitergin.NewMiddleware(ipLimiter)

	auth := rg.Group("/api/v1/auth")
	{
		auth.POST("/register", limitMiddleware, h.Register)
		auth.POST("/login", limitMiddleware, h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/reset-password", limitMiddleware, h.ResetPassword)
	}
}

// registerLogoutRoute wires the authenticated sign-out endpoint.
func registerLogoutRoute(rg *gin.RouterGroup, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := NewAuthHandler(services, cfg)
	rg.POST("/auth/logout", h.Logout)
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string, expiry time.Time) {
	maxAge := int(time.Until(expiry).Seconds())
	c.SetCookie(h.cfg.RefreshTokenCookieName, token, maxAge, h.cfg.RefreshTokenCookiePath, "", h.cfg.IsProduction, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetCookie(h.cfg.RefreshTokenCookieName, "", -1, h.cfg.RefreshTokenCookiePath, "", h.cfg.IsProduction, true)
}

// Register godoc
// @Summary Register a new account
// @Description Creates an identity, resolves the profile and company, and reports the resulting session state. A degraded state means setup stopped partway; the account still works and can be repaired.
// @Tags auth
// @Accept json
// @Produce json
// @Param register body dto.SignupRequest true "Signup details"
// @Success 201 {object} dto.SignupResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Failure 500 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindingErrorMessage(err)})
		return
	}

	user, err := h.authService.SignUp(c.Request.Context(), req.Email, req.Password, req.ToSignupMetadata())
	if err != nil && user == nil {
		handleServiceError(c, logger, err, "Failed to register")
		return
	}

	// Setup may have stopped partway; report the real state rather than
	// failing the whole registration.
	state := domain.SessionReady
	if overview, stateErr := h.profileService.SessionState(c.Request.Context(), user.UserID); stateErr == nil {
		state = overview.State
	}
	if err != nil {
		logger.Warn("Registration completed with degraded setup", slog.String("user_id", user.UserID), slog.String("error", err.Error()))
	}

	c.JSON(http.StatusCreated, dto.SignupResponse{
		UserID: user.UserID,
		Email:  user.Email,
		State:  state,
	})
}

// Login godoc
// @Summary Sign in with email and password
// @Description Authenticates and returns an access token. The refresh token is set as an HTTP-only cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindingErrorMessage(err)})
		return
	}

	session, err := h.authService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to sign in")
		return
	}

	h.setRefreshCookie(c, session.RefreshToken, session.RefreshTokenExpiry)
	c.JSON(http.StatusOK, dto.LoginResponse{
		UserID:            session.User.UserID,
		AccessToken:       session.AccessToken,
		AccessTokenExpiry: session.AccessTokenExpiry,
	})
}

// Refresh godoc
// @Summary Refresh the access token
// @Description Exchanges the refresh token cookie for a fresh token pair. The refresh token is rotated.
// @Tags auth
// @Accept json
// @Produce json
// @Param refresh body dto.RefreshRequest true "Session owner"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindingErrorMessage(err)})
		return
	}

	refreshToken, err := c.Cookie(h.cfg.RefreshTokenCookieName)
	if err != nil || refreshToken == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Missing refresh token"})
		return
	}

	session, err := h.authService.Refresh(c.Request.Context(), req.UserID, refreshToken)
	if err != nil {
		h.clearRefreshCookie(c)
		handleServiceError(c, logger, err, "Failed to refresh session")
		return
	}

	h.setRefreshCookie(c, session.RefreshToken, session.RefreshTokenExpiry)
	c.JSON(http.StatusOK, dto.LoginResponse{
		UserID:            session.User.UserID,
		AccessToken:       session.AccessToken,
		AccessTokenExpiry: session.AccessTokenExpiry,
	})
}

// Logout godoc
// @Summary Sign out
// @Description Invalidates the stored refresh token and clears the cookie. Signing out twice is not an error.
// @Tags auth
// @Produce json
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.authService.SignOut(c.Request.Context(), userID); err != nil {
		handleServiceError(c, logger, err, "Failed to sign out")
		return
	}

	h.clearRefreshCookie(c)
	c.Status(http.StatusNoContent)
}

// ResetPassword godoc
// @Summary Request a password reset
// @Description Issues a reset token for the account if one exists. The response is identical whether or not the email is registered.
// @Tags auth
// @Accept json
// @Produce json
// @Param reset body dto.ResetPasswordRequest true "Account email"
// @Success 202 "Accepted"
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindingErrorMessage(err)})
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Email); err != nil {
		handleServiceError(c, logger, err, "Failed to request password reset")
		return
	}
	c.Status(http.StatusAccepted)
}
