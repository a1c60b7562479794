package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/SscSPs/agent_onboarding_portal/internal/dto"
	"github.com/SscSPs/agent_onboarding_portal/internal/middleware"
	"github.com/gin-gonic/gin"
)

type bankHandler struct {
	bankService portssvc.BankSvcFacade
}

func newBankHandler(bs portssvc.BankSvcFacade) *bankHandler {
	return &bankHandler{bankService: bs}
}

// registerBankRoutes registers the bank and agency routes.
func registerBankRoutes(rg *gin.RouterGroup, bankService portssvc.BankSvcFacade, exportService portssvc.ExportSvc) {
	h := newBankHandler(bankService)

	banks := rg.Group("/banks")
	{
		banks.POST("", h.createBank)
		banks.GET("", h.listBanks)
		banks.GET("/:bankID", h.getBank)
		banks.POST("/:bankID/agencies", h.createAgency)
		banks.GET("/:bankID/agencies", h.listAgencies)
		registerExportRoutes(banks, exportService)
	}
}

// createBank godoc
// @Summary Create a bank
// @Tags banks
// @Accept json
// @Produce json
// @Param bank body dto.CreateBankRequest true "Bank details"
// @Success 201 {object} dto.BankResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Bank code taken"
// @Security BearerAuth
// @Router /banks [post]
func (h *bankHandler) createBank(c *gin.Context) {
	var req dto.CreateBankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "request format", err)
		return
	}
	actor, ok := actorFromCtx(c)
	if !ok {
		return
	}
	bank, err := h.bankService.CreateBank(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err, "Failed to create bank")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Bank created", slog.String("bank_id", bank.BankID))
	c.JSON(http.StatusCreated, dto.ToBankResponse(*bank))
}

// listBanks godoc
// @Summary List banks
// @Tags banks
// @Produce json
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} dto.BankResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /banks [get]
func (h *bankHandler) listBanks(c *gin.Context) {
	var params dto.ListBanksParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, "query parameters", err)
		return
	}
	actor, ok := actorFromCtx(c)
	if !ok {
		return
	}
	banks, err := h.bankService.ListBanks(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, err, "Failed to list banks")
		return
	}
	c.JSON(http.StatusOK, dto.ToBankResponseList(banks))
}

// getBank godoc
// @Summary Get a bank
// @Tags banks
// @Produce json
// @Param bankID path string true "Bank ID"
// @Success 200 {object} dto.BankResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /banks/{bankID} [get]
func (h *bankHandler) getBank(c *gin.Context) {
	actor, ok := actorFromCtx(c)
	if !ok {
		return
	}
	bank, err := h.bankService.GetBank(c.Request.Context(), actor, c.Param("bankID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve bank")
		return
	}
	c.JSON(http.StatusOK, dto.ToBankResponse(*bank))
}

// createAgency godoc
// @Summary Create an agency in a bank
// @Tags banks
// @Accept json
// @Produce json
// @Param bankID path string true "Bank ID"
// @Param agency body dto.CreateAgencyRequest true "Agency details"
// @Success 201 {object} dto.AgencyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /banks/{bankID}/agencies [post]
func (h *bankHandler) createAgency(c *gin.Context) {
	var req dto.CreateAgencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "request format", err)
		return
	}
	actor, ok := actorFromCtx(c)
	if !ok {
		return
	}
	agency, err := h.bankService.CreateAgency(c.Request.Context(), actor, c.Param("bankID"), req)
	if err != nil {
		respondError(c, err, "Failed to create agency")
		return
	}
	c.JSON(http.StatusCreated, dto.ToAgencyResponse(*agency))
}

// listAgencies godoc
// @Summary List the agencies of a bank
// @Tags banks
// @Produce json
// @Param bankID path string true "Bank ID"
// @Success 200 {array} dto.AgencyResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /banks/{bankID}/agencies [get]
func (h *bankHandler) listAgencies(c *gin.Context) {
	actor, ok := actorFromCtx(c)
	if !ok {
		return
	}
	agencies, err := h.bankService.ListAgencies(c.Request.Context(), actor, c.Param("bankID"))
	if err != nil {
		respondError(c, err, "Failed to list agencies")
		return
	}
	c.JSON(http.StatusOK, dto.ToAgencyResponseList(agencies))
}
