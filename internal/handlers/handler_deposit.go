package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/SscSPs/agent_onboarding_portal/internal/dto"
	"github.com/gin-gonic/gin"
)

type depositHandler struct {
	depositService portssvc.DepositSvc
}

func registerDepositRoutes(request *gin.RouterGroup, depositService portssvc.DepositSvc) {
	h := &depositHandler{depositService: depositService}
	request.POST("/deposit", h.confirmDeposit)
	request.GET("/deposit", h.getDeposit)
}

// confirmDeposit godoc
// @Summary Confirm the capital deposit of a request
// @Description Bank staff record that the capital deposit was received. Confirming twice returns the stored confirmation.
// @Tags deposits
// @Accept json
// @Produce json
// @Param requestID path string true "Request ID"
// @Param body body dto.ConfirmDepositRequest true "Deposit details"
// @Success 201 {object} domain.DepositConfirmation
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /requests/{requestID}/deposit [post]
func (h *depositHandler) confirmDeposit(c *gin.Context) {
	var req dto.ConfirmDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "request body", err)
		return
	}
	actor, ok := actorFromCtx(c)
	if !ok {
		return
	}
	deposit, err := h.depositService.ConfirmDeposit(c.Request.Context(), actor, c.Param("requestID"), req)
	if err != nil {
		respondError(c, err, "Failed to confirm deposit")
		return
	}
	c.JSON(http.StatusCreated, deposit)
}

// getDeposit godoc
// @Summary Get the deposit confirmation of a request
// @Tags deposits
// @Produce json
// @Param requestID path string true "Request ID"
// @Success 200 {object} domain.DepositConfirmation
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "No confirmation yet"
// @Security BearerAuth
// @Router /requests/{requestID}/deposit [get]
func (h *depositHandler) getDeposit(c *gin.Context) {
	actor, ok := actorFromCtx(c)
	if !ok {
		return
	}
	deposit, err := h.depositService.GetDeposit(c.Request.Context(), actor, c.Param("requestID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve deposit")
		return
	}
	c.JSON(http.StatusOK, deposit)
}
