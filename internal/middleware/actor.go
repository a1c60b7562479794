package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/agent_onboarding_portal/internal/apperrors"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// ActorMiddleware resolves the authenticated user's role, bank and agency and stores
// them in the request context. It must run after authentication.
func ActorMiddleware(roles services.RoleProviderSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())
		userID, ok := GetUserIDFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		actor, err := roles.ResolveActor(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				logger.Warn("Authenticated user no longer exists")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			logger.Error("Failed to resolve actor", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve user role"})
			return
		}

		ctx := WithActor(c.Request.Context(), actor)
		ctx = WithLogger(ctx, logger.With(slog.String("role", string(actor.Role))))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
