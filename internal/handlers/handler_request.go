package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/SscSPs/agent_onboarding_portal/internal/dto"
	"github.com/SscSPs/agent_onboarding_portal/internal/middleware"
	"github.com/SscSPs/agent_onboarding_portal/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// requestHandler handles the onboarding request resource.
type requestHandler struct {
	requestService portssvc.OnboardingRequestSvcFacade
}

func newRequestHandler(rs portssvc.OnboardingRequestSvcFacade) *requestHandler {
	return &requestHandler{requestService: rs}
}

// registerRequestRoutes registers onboarding requests and everything nested under them.
func registerRequestRoutes(rg *gin.RouterGroup, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := newRequestHandler(services.Request)

	requests := rg.Group("/requests")
	{
		requests.POST("", h.createRequest)
		requests.GET("", h.listRequests)

		request := requests.Group("/:requestID")
		{
			request.GET("", h.getRequest)
			request.PUT("", h.updateSections)
			request.GET("/history", h.listHistory)
			request.GET("/readiness", h.checkReadiness)

			registerWorkflowRoutes(request, services.Workflow)
			registerValidationRoutes(request, services.FieldValidation)
			registerDepositRoutes(request, services.Deposit)
			registerDocumentUploadRoutes(request, services.Document, cfg)
		}
	}
}

// createRequest godoc
// @Summary Open an onboarding request
// @Description Agents open a DRAFT request for their agency. At least one section must be provided.
// @Tags requests
// @Accept json
// @Produce json
// @Param request body dto.CreateOnboardingRequest true "Initial sections"
// @Success 201 {object} dto.OnboardingRequestResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /requests [post]
func (h *requestHandler) createRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateOnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "request body", err)
		return
	}
	actor, ok := actorFromCtx(c)
	if !ok {
		return
	}

	created, err := h.requestService.CreateRequest(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err, "Failed to create onboarding request")
		return
	}

	logger.Info("Onboarding request created", slog.String("request_id", created.RequestID))
	c.JSON(http.StatusCreated, dto.ToOnboardingRequestResponse(created))
}

// listRequests godoc
// @Summary List onboarding requests
// @Description Agents see their own requests, bank roles their bank's, super admins everything.
// @Tags requests
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Token from the previous page"
// @Param status query string false "Status code filter, e.g. CTO_REVIEW"
// @Param bankID query string false "Bank filter (super admin)"
// @Param agencyID query string false "Agency filter"
// @Param agentID query string false "Agent filter"
// @Success 200 {object} dto.ListRequestsResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /requests [get]
func (h *requestHandler) listRequests(c *gin.Context) {
	var params dto.ListRequestsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, "query parameters", err)
		return
	}
	actor, ok := actorFromCtx(c)
	if !ok {
		return
	}

	resp, err := h.requestService.ListRequests(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, err, "Failed to list onboarding requests")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getRequest godoc
// @Summary Get an onboarding request
// @Tags requests
// @Produce json
// @Param requestID path string true "Request ID"
// @Success 200 {object} dto.OnboardingRequestResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /requests/{requestID} [get]
func (h *requestHandler) getRequest(c *gin.Context) {
	actor, ok := actorFromCtx(c)
	if !ok {
		return
	}
	req, err := h.requestService.GetRequest(c.Request.Context(), actor, c.Param("requestID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve onboarding request")
		return
	}
	c.JSON(http.StatusOK, dto.ToOnboardingRequestResponse(req))
}

// updateSections godoc
// @Summary Update the sections of an onboarding request
// @Description Replaces the sections present in the body. Only the owning agent may edit, and only while the status is agent-editable. The version must match the stored one.
// @Tags requests
// @Accept json
// @Produce json
// @Param requestID path string true "Request ID"
// @Param request body dto.UpdateSectionsRequest true "Sections and expected version"
// @Success 200 {object} dto.OnboardingRequestResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Not editable or modified concurrently"
// @Security BearerAuth
// @Router /requests/{requestID} [put]
func (h *requestHandler) updateSections(c *gin.Context) {
	var req dto.UpdateSectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "request body", err)
		return
	}
	actor, ok := actorFromCtx(c)
	if !ok {
		return
	}

	updated, err := h.requestService.UpdateSections(c.Request.Context(), actor, c.Param("requestID"), req)
	if err != nil {
		respondError(c, err, "Failed to update onboarding request")
		return
	}
	c.JSON(http.StatusOK, dto.ToOnboardingRequestResponse(updated))
}

// listHistory godoc
// @Summary List the status history of a request
// @Tags requests
// @Produce json
// @Param requestID path string true "Request ID"
// @Success 200 {array} domain.StatusHistoryEntry
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /requests/{requestID}/history [get]
func (h *requestHandler) listHistory(c *gin.Context) {
	actor, ok := actorFromCtx(c)
	if !ok {
		return
	}
	history, err := h.requestService.ListHistory(c.Request.Context(), actor, c.Param("requestID"))
	if err != nil {
		respondError(c, err, "Failed to list request history")
		return
	}
	c.JSON(http.StatusOK, history)
}

// checkReadiness godoc
// @Summary Check whether a request could be submitted
// @Description Runs the submission rules against the stored payload without changing the request.
// @Tags requests
// @Produce json
// @Param requestID path string true "Request ID"
// @Success 200 {object} dto.ReadinessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /requests/{requestID}/readiness [get]
func (h *requestHandler) checkReadiness(c *gin.Context) {
	actor, ok := actorFromCtx(c)
	if !ok {
		return
	}
	result, err := h.requestService.CheckReadiness(c.Request.Context(), actor, c.Param("requestID"))
	if err != nil {
		respondError(c, err, "Failed to check request readiness")
		return
	}
	c.JSON(http.StatusOK, dto.ReadinessResponse{Valid: result.Valid, Errors: result.Errors})
}
