package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/agent_onboarding_portal/internal/apperrors"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/SscSPs/agent_onboarding_portal/internal/dto"
	"github.com/SscSPs/agent_onboarding_portal/internal/middleware"
	"github.com/SscSPs/agent_onboarding_portal/internal/platform/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
)

// GoogleOAuthHandler handles Google sign-in for users that were already provisioned
// by an administrator. Accounts are never created from a Google identity.
type GoogleOAuthHandler struct {
	googleOAuthService portssvc.GoogleOAuthHandlerSvcFacade
	userService        portssvc.UserSvcFacade
	tokenService       portssvc.TokenSvcFacade
	cfg                *config.Config
}

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 10 * 60
)

// NewGoogleOAuthHandler creates a new instance of GoogleOAuthHandler.
func NewGoogleOAuthHandler(
	googleOAuthService portssvc.GoogleOAuthHandlerSvcFacade,
	userService portssvc.UserSvcFacade,
	tokenService portssvc.TokenSvcFacade,
	cfg *config.Config,
) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{
		googleOAuthService: googleOAuthService,
		userService:        userService,
		tokenService:       tokenService,
		cfg:                cfg,
	}
}

// LoginGoogle redirects the browser to Google's consent page.
// @Summary Start Google sign-in
// @Description Sets a short-lived state cookie and redirects to Google
// @Tags auth
// @Success 307
// @Failure 500 {object} ErrorResponse
// @Router /auth/google/login [get]
func (h *GoogleOAuthHandler) LoginGoogle(c *gin.Context) {
	ctx := c.Request.Context()
	state, err := h.googleOAuthService.GenerateStateString(ctx)
	if err != nil {
		respondError(c, err, "Failed to start Google sign-in")
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, oauthStateMaxAge, "/", "", h.cfg.IsProduction, true)
	c.Redirect(http.StatusTemporaryRedirect, h.googleOAuthService.GetGoogleLoginURL(ctx, state))
}

// ExchangeCodeGoogle exchanges an authorization code for Google tokens, validates the
// ID token and signs in the provisioned user with the same email.
// @Summary Exchange Google authorization code for an access token
// @Description Signs in an existing user with a Google authorization code
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   code body dto.ExchangeCodeRequest true "Authorization code"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse "Invalid authorization code or state"
// @Failure 401 {object} ErrorResponse "Unknown or unverified account"
// @Failure 502 {object} ErrorResponse "Google unavailable"
// @Router /auth/google/exchange-code [post]
func (h *GoogleOAuthHandler) ExchangeCodeGoogle(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	var req dto.ExchangeCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "request body", err)
		return
	}

	// a state cookie means the flow started at LoginGoogle; the echoed state must match it
	if expected, err := c.Cookie(oauthStateCookie); err == nil {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(oauthStateCookie, "", -1, "/", "", h.cfg.IsProduction, true)
		if expected == "" || req.State != expected {
			logger.Warn("Google sign-in state mismatch")
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid OAuth state"})
			return
		}
	}

	oauth2Token, err := h.googleOAuthService.ExchangeCodeForToken(ctx, req.Code)
	if err != nil {
		logger.Error("Failed to exchange authorization code with Google", slog.String("error", err.Error()))
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "invalid_grant") || strings.Contains(msg, "bad request") {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid or expired authorization code"})
			return
		}
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Failed to communicate with Google"})
		return
	}

	identity, err := h.resolveIdentity(c, oauth2Token)
	if err != nil {
		return
	}
	email := identity.Email
	if email == "" || !identity.VerifiedEmail {
		logger.Warn("Google account has no verified email", slog.String("google_user_id", identity.ID))
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Google account email is not verified"})
		return
	}

	user, err := h.userService.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("No provisioned user for Google account", slog.String("google_user_id", identity.ID))
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "No account is provisioned for this email"})
			return
		}
		respondError(c, err, "Failed to look up user")
		return
	}
	if user.DeletedAt != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "No account is provisioned for this email"})
		return
	}

	accessToken, _, err := h.tokenService.GenerateAccessToken(ctx, user)
	if err != nil {
		respondError(c, err, "Failed to generate access token")
		return
	}

	logger.Info("User signed in with Google", slog.String("user_id", user.UserID))
	c.JSON(http.StatusOK, dto.LoginResponse{Token: accessToken})
}

// resolveIdentity reads the signed-in Google identity from the ID token, or from the
// userinfo endpoint when Google returned no ID token. The response is written on error.
func (h *GoogleOAuthHandler) resolveIdentity(c *gin.Context, token *oauth2.Token) (*domain.GoogleUserInfo, error) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	idTokenString, ok := token.Extra("id_token").(string)
	if !ok || idTokenString == "" {
		info, err := h.googleOAuthService.GetUserInfo(ctx, token)
		if err != nil {
			logger.Error("Failed to read Google user info", slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Failed to retrieve identity from Google"})
			return nil, err
		}
		return info, nil
	}

	payload, err := h.googleOAuthService.ValidateGoogleIDToken(ctx, idTokenString)
	if err != nil {
		logger.Warn("Google ID token validation failed", slog.String("error", err.Error()))
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid Google ID token"})
		return nil, err
	}
	info := &domain.GoogleUserInfo{ID: payload.Subject}
	info.Email, _ = payload.Claims["email"].(string)
	info.VerifiedEmail, _ = payload.Claims["email_verified"].(bool)
	info.Name, _ = payload.Claims["name"].(string)
	return info, nil
}

// registerGoogleOAuthRoutes registers the Google OAuth routes.
func registerGoogleOAuthRoutes(rg *gin.RouterGroup, cfg *config.Config, services *portssvc.ServiceContainer, limit gin.HandlerFunc) {
	h := NewGoogleOAuthHandler(services.GoogleOAuth, services.User, services.Token, cfg)
	googleRoutes := rg.Group("/google")
	{
		googleRoutes.GET("/login", limit, h.LoginGoogle)
		googleRoutes.POST("/exchange-code", limit, h.ExchangeCodeGoogle)
	}
}
