package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ulule/limiter/v3"
	limitergin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/SscSPs/agent_onboarding_portal/internal/apperrors"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/SscSPs/agent_onboarding_portal/internal/dto"
	"github.com/SscSPs/agent_onboarding_portal/internal/middleware"
	"github.com/SscSPs/agent_onboarding_portal/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication related requests.
type AuthHandler struct {
	userService  portssvc.UserSvcFacade
	tokenService portssvc.TokenSvcFacade
	cfg          *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(us portssvc.UserSvcFacade, ts portssvc.TokenSvcFacade, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		userService:  us,
		tokenService: ts,
		cfg:          cfg,
	}
}

// registerAuthRoutes sets up the public authentication routes.
func registerAuthRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := NewAuthHandler(services.User, services.Token, cfg)

	rate, err := limiter.NewRateFromFormatted(cfg.LoginRateLimit)
	if err != nil {
		rate, _ = limiter.NewRateFromFormatted("5-M")
	}
	limitMiddleware := limitergin.NewMiddleware(limiter.New(memory.NewStore(), rate))

	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/login", limitMiddleware, h.Login)
		auth.POST("/refresh", limitMiddleware, h.Refresh)
		auth.POST("/logout", h.Logout)
		registerGoogleOAuthRoutes(auth, cfg, services, limitMiddleware)
	}
}

// Login godoc
// @Summary User login
// @Description Authenticates a user and returns a JWT token. A refresh token is set as an HttpOnly cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	user, err := h.userService.AuthenticateUser(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid username or password"})
			return
		}
		respondError(c, err, "Failed to log in")
		return
	}

	token, ok := h.issueTokens(c, user)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.LoginResponse{Token: token})
}

// Refresh godoc
// @Summary Refresh access token
// @Description Exchanges the refresh token cookie for a new access token and rotates the cookie.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.RefreshTokenResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	raw, err := c.Cookie(h.cfg.RefreshTokenCookieName)
	if err != nil || raw == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Refresh token missing"})
		return
	}
	userID, token, found := strings.Cut(raw, ":")
	if !found || userID == "" || token == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Refresh token malformed"})
		return
	}

	user, err := h.tokenService.ValidateAndParseRefreshToken(c.Request.Context(), userID, token)
	if err != nil {
		logger.Warn("Refresh token rejected", slog.String("user_id", userID), slog.String("error", err.Error()))
		h.clearRefreshCookie(c)
		respondError(c, err, "Failed to refresh token")
		return
	}

	accessToken, ok := h.issueTokens(c, user)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.RefreshTokenResponse{Token: accessToken})
}

// Logout godoc
// @Summary Log out
// @Description Revokes the refresh token carried by the cookie and clears it.
// @Tags auth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if raw, err := c.Cookie(h.cfg.RefreshTokenCookieName); err == nil {
		if userID, token, found := strings.Cut(raw, ":"); found {
			// only a holder of a valid token may revoke it
			if user, err := h.tokenService.ValidateAndParseRefreshToken(c.Request.Context(), userID, token); err == nil {
				if err := h.userService.ClearRefreshToken(c.Request.Context(), user.UserID); err != nil {
					middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to clear refresh token", slog.String("error", err.Error()))
				}
			}
		}
	}
	h.clearRefreshCookie(c)
	c.Status(http.StatusNoContent)
}

// issueTokens writes the refresh cookie and returns a fresh access token.
func (h *AuthHandler) issueTokens(c *gin.Context, user *domain.User) (string, bool) {
	ctx := c.Request.Context()
	accessToken, _, err := h.tokenService.GenerateAccessToken(ctx, user)
	if err != nil {
		respondError(c, err, "Failed to generate token")
		return "", false
	}
	refreshToken, expiry, err := h.tokenService.GenerateRefreshToken(ctx, user)
	if err != nil {
		respondError(c, err, "Failed to generate token")
		return "", false
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.cfg.RefreshTokenCookieName, user.UserID+":"+refreshToken,
		int(time.Until(expiry).Seconds()), h.cfg.RefreshTokenCookiePath, "", h.cfg.IsProduction, true)
	return accessToken, true
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.cfg.RefreshTokenCookieName, "", -1, h.cfg.RefreshTokenCookiePath, "", h.cfg.IsProduction, true)
}
