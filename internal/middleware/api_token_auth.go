package middleware

import (
	"net/http"

	"github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// APIKeyHeader carries bank integration tokens.
const APIKeyHeader = "x-api-key"

// APITokenAuth authenticates requests carrying an API token. Requests without the
// header fall through to the JWT middleware.
func APITokenAuth(tokenSvc services.APITokenSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(APIKeyHeader)
		if apiKey == "" {
			c.Next()
			return
		}

		user, err := tokenSvc.ValidateToken(c.Request.Context(), apiKey)
		if err != nil {
			GetLoggerFromCtx(c.Request.Context()).Warn("API token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			return
		}

		setAuthenticatedUser(c, user.UserID, "api_token")
		c.Next()
	}
}
