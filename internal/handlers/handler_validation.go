package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/SscSPs/agent_onboarding_portal/internal/dto"
	"github.com/SscSPs/agent_onboarding_portal/internal/middleware"
	"github.com/gin-gonic/gin"
)

type validationHandler struct {
	validationService portssvc.FieldValidationSvc
}

func registerValidationRoutes(request *gin.RouterGroup, validationService portssvc.FieldValidationSvc) {
	h := &validationHandler{validationService: validationService}
	request.POST("/validations", h.recordValidation)
	request.GET("/validations", h.listValidations)
}

// recordValidation godoc
// @Summary Record a verdict on a request field
// @Description Reviewers append an ok, warning or error verdict. Verdicts are never edited; the latest one per field wins.
// @Tags validations
// @Accept json
// @Produce json
// @Param requestID path string true "Request ID"
// @Param body body dto.RecordValidationRequest true "Verdict"
// @Success 201 {object} domain.FieldValidation
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Request not under review"
// @Security BearerAuth
// @Router /requests/{requestID}/validations [post]
func (h *validationHandler) recordValidation(c *gin.Context) {
	var req dto.RecordValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "request body", err)
		return
	}
	actor, ok := actorFromCtx(c)
	if !ok {
		return
	}

	requestID := c.Param("requestID")
	verdict, err := h.validationService.RecordValidation(c.Request.Context(), actor, requestID, req)
	if err != nil {
		respondError(c, err, "Failed to record validation")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Validation recorded",
		slog.String("request_id", requestID), slog.String("field_id", verdict.FieldID))
	c.JSON(http.StatusCreated, verdict)
}

// listValidations godoc
// @Summary List verdicts and their summary
// @Tags validations
// @Produce json
// @Param requestID path string true "Request ID"
// @Success 200 {object} dto.ValidationsResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /requests/{requestID}/validations [get]
func (h *validationHandler) listValidations(c *gin.Context) {
	actor, ok := actorFromCtx(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	requestID := c.Param("requestID")

	validations, err := h.validationService.ListValidations(ctx, actor, requestID)
	if err != nil {
		respondError(c, err, "Failed to list validations")
		return
	}
	summary, err := h.validationService.Summarize(ctx, actor, requestID)
	if err != nil {
		respondError(c, err, "Failed to summarize validations")
		return
	}
	c.JSON(http.StatusOK, dto.ValidationsResponse{Validations: validations, Summary: summary})
}
