package middleware

import (
	"context"

	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	"github.com/gin-gonic/gin"
)

const (
	// userIDKey stores the authenticated user's ID.
	userIDKey = contextKey("userID")
	// actorKey stores the resolved domain.Actor.
	actorKey = contextKey("actor")
	// authMethodKey marks requests already authenticated by an earlier middleware.
	authMethodKey = "authMethod"
)

// GetUserIDFromContext retrieves the authenticated user ID from the request context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, ok := c.Request.Context().Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetActorFromCtx retrieves the actor stored by ActorMiddleware.
func GetActorFromCtx(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	return actor, ok
}

// setAuthenticatedUser stores userID in the request context and enriches the request logger.
func setAuthenticatedUser(c *gin.Context, userID string, method string) {
	ctx := context.WithValue(c.Request.Context(), userIDKey, userID)
	logger := GetLoggerFromCtx(ctx).With("user_id", userID)
	c.Request = c.Request.WithContext(WithLogger(ctx, logger))
	c.Set(authMethodKey, method)
}
