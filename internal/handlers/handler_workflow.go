package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/agent_onboarding_portal/internal/apperrors"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/SscSPs/agent_onboarding_portal/internal/dto"
	"github.com/SscSPs/agent_onboarding_portal/internal/middleware"
	"github.com/gin-gonic/gin"
)

type workflowHandler struct {
	workflowService portssvc.WorkflowSvc
}

func registerWorkflowRoutes(request *gin.RouterGroup, workflowService portssvc.WorkflowSvc) {
	h := &workflowHandler{workflowService: workflowService}
	request.GET("/actions", h.availableActions)
	request.POST("/actions/:action", h.applyAction)
	request.POST("/transitions", h.transitionTo)
}

func registerStatusRoutes(rg *gin.RouterGroup, workflowService portssvc.WorkflowSvc) {
	h := &workflowHandler{workflowService: workflowService}
	rg.GET("/statuses", h.listStatuses)
}

// applyAction godoc
// @Summary Perform a workflow action
// @Description Applies a named action (submit, approve, reject, request_corrections, ...) from the request's current status.
// @Tags workflow
// @Accept json
// @Produce json
// @Param requestID path string true "Request ID"
// @Param action path string true "Action name"
// @Param body body dto.ApplyActionRequest false "Optional comment"
// @Success 200 {object} dto.TransitionResponse
// @Failure 403 {object} ErrorResponse "Role not allowed"
// @Failure 409 {object} ErrorResponse "Invalid transition"
// @Failure 422 {object} ErrorResponse "Guard failed"
// @Security BearerAuth
// @Router /requests/{requestID}/actions/{action} [post]
func (h *workflowHandler) applyAction(c *gin.Context) {
	var req dto.ApplyActionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, "request body", err)
			return
		}
	}
	actor, ok := actorFromCtx(c)
	if !ok {
		return
	}

	result, err := h.workflowService.Apply(c.Request.Context(), actor, c.Param("requestID"), c.Param("action"), req.Comment)
	if err != nil {
		respondError(c, err, "Failed to apply action")
		return
	}
	h.respondTransition(c, result)
}

// transitionTo godoc
// @Summary Move a request to a target status
// @Tags workflow
// @Accept json
// @Produce json
// @Param requestID path string true "Request ID"
// @Param body body dto.TransitionRequest true "Target status code and optional comment"
// @Success 200 {object} dto.TransitionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Security BearerAuth
// @Router /requests/{requestID}/transitions [post]
func (h *workflowHandler) transitionTo(c *gin.Context) {
	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "request body", err)
		return
	}
	target, err := domain.ParseRequestStatus(req.TargetStatus)
	if err != nil {
		respondError(c, apperrors.NewValidationError([]apperrors.FieldError{{Field: "targetStatus", Message: err.Error()}}), "Invalid target status")
		return
	}
	actor, ok := actorFromCtx(c)
	if !ok {
		return
	}

	result, err := h.workflowService.TransitionTo(c.Request.Context(), actor, c.Param("requestID"), target, req.Comment)
	if err != nil {
		respondError(c, err, "Failed to transition request")
		return
	}
	h.respondTransition(c, result)
}

func (h *workflowHandler) respondTransition(c *gin.Context, result *portssvc.TransitionResult) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Request transitioned",
		slog.String("request_id", result.Request.RequestID),
		slog.String("status", result.Request.Status.String()))
	c.JSON(http.StatusOK, dto.TransitionResponse{
		Request: dto.ToOnboardingRequestResponse(&result.Request),
		Entry:   result.Entry,
	})
}

// availableActions godoc
// @Summary List the actions available to the caller
// @Tags workflow
// @Produce json
// @Param requestID path string true "Request ID"
// @Success 200 {object} dto.AvailableActionsResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /requests/{requestID}/actions [get]
func (h *workflowHandler) availableActions(c *gin.Context) {
	actor, ok := actorFromCtx(c)
	if !ok {
		return
	}
	status, transitions, err := h.workflowService.AvailableActions(c.Request.Context(), actor, c.Param("requestID"))
	if err != nil {
		respondError(c, err, "Failed to list available actions")
		return
	}
	actions := make([]dto.AvailableAction, len(transitions))
	for i, t := range transitions {
		actions[i] = dto.AvailableAction{Action: t.Action, To: t.To}
	}
	c.JSON(http.StatusOK, dto.AvailableActionsResponse{Status: status, Actions: actions})
}

// listStatuses godoc
// @Summary List every request status
// @Tags workflow
// @Produce json
// @Success 200 {array} workflow.StatusDefinition
// @Security BearerAuth
// @Router /statuses [get]
func (h *workflowHandler) listStatuses(c *gin.Context) {
	c.JSON(http.StatusOK, h.workflowService.Statuses())
}
