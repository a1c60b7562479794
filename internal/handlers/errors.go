package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/agent_onboarding_portal/internal/apperrors"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	"github.com/SscSPs/agent_onboarding_portal/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error       string                 `json:"error"`
	Code        string                 `json:"code,omitempty"`
	From        string                 `json:"from,omitempty"`
	To          string                 `json:"to,omitempty"`
	FieldErrors []apperrors.FieldError `json:"fieldErrors,omitempty"`
}

type workflowStatus struct {
	kind   error
	code   string
	status int
}

var workflowStatuses = []workflowStatus{
	{apperrors.ErrTransitionUnauthorized, "TRANSITION_UNAUTHORIZED", http.StatusForbidden},
	{apperrors.ErrInvalidTransition, "INVALID_TRANSITION", http.StatusConflict},
	{apperrors.ErrTerminalState, "TERMINAL_STATE", http.StatusConflict},
	{apperrors.ErrConcurrentModification, "CONCURRENT_MODIFICATION", http.StatusConflict},
	{apperrors.ErrDepositRequired, "DEPOSIT_REQUIRED", http.StatusConflict},
	{apperrors.ErrIncompleteSubmission, "INCOMPLETE_SUBMISSION", http.StatusUnprocessableEntity},
	{apperrors.ErrNoCorrectionsRequested, "NO_CORRECTIONS_REQUESTED", http.StatusUnprocessableEntity},
	{apperrors.ErrUnresolvedFeedback, "UNRESOLVED_FEEDBACK", http.StatusUnprocessableEntity},
}

// respondError maps a service error onto a status code and writes it.
// Unexpected errors are logged and answered with fallback.
func respondError(c *gin.Context, err error, fallback string) {
	status, body := errorResponse(err, fallback)
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if status >= http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()))
	} else {
		logger.Warn("Request rejected", slog.Int("status", status), slog.String("error", err.Error()))
	}
	c.JSON(status, body)
}

func errorResponse(err error, fallback string) (int, ErrorResponse) {
	var wfErr *apperrors.WorkflowError
	if errors.As(err, &wfErr) {
		for _, ws := range workflowStatuses {
			if errors.Is(wfErr, ws.kind) {
				return ws.status, ErrorResponse{
					Error:       wfErr.Error(),
					Code:        ws.code,
					From:        wfErr.From,
					To:          wfErr.To,
					FieldErrors: wfErr.FieldErrors,
				}
			}
		}
	}

	var valErr *apperrors.ValidationError
	if errors.As(err, &valErr) {
		return http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Code: "VALIDATION", FieldErrors: valErr.Errors}
	}

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, ErrorResponse{Error: appMessage(err), Code: "VALIDATION"}
	case errors.Is(err, apperrors.ErrRefreshTokenExpired):
		return http.StatusUnauthorized, ErrorResponse{Error: "Refresh token expired"}
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"}
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Error: appMessage(err), Code: "FORBIDDEN"}
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: appMessage(err), Code: "NOT_FOUND"}
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, ErrorResponse{Error: appMessage(err), Code: "CONFLICT"}
	case errors.Is(err, apperrors.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, ErrorResponse{Error: "File too large"}
	case errors.Is(err, apperrors.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, ErrorResponse{Error: "Unsupported file type"}
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code >= 400 && appErr.Code < 500 {
		return appErr.Code, ErrorResponse{Error: appErr.Message}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: fallback}
}

// appMessage prefers the message of an AppError over the raw error chain.
func appMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}

// actorFromCtx returns the actor resolved by ActorMiddleware, answering 401 when it is missing.
func actorFromCtx(c *gin.Context) (domain.Actor, bool) {
	actor, ok := middleware.GetActorFromCtx(c.Request.Context())
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return domain.Actor{}, false
	}
	return actor, true
}

// bindError answers a malformed request body or query.
func bindError(c *gin.Context, what string, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind "+what, slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid " + what + ": " + err.Error(), Code: "VALIDATION"})
}
