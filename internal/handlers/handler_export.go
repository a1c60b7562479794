package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type exportHandler struct {
	exportService portssvc.ExportSvc
}

func registerExportRoutes(banks *gin.RouterGroup, exportService portssvc.ExportSvc) {
	h := &exportHandler{exportService: exportService}
	banks.GET("/:bankID/export", h.exportRequests)
}

// exportRequests godoc
// @Summary Export a bank's onboarding requests
// @Description Returns an XLSX workbook with one sheet of requests and one of their status history.
// @Tags banks
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param bankID path string true "Bank ID"
// @Success 200 {file} file
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /banks/{bankID}/export [get]
func (h *exportHandler) exportRequests(c *gin.Context) {
	actor, ok := actorFromCtx(c)
	if !ok {
		return
	}
	bankID := c.Param("bankID")

	// buffered so a failure halfway still yields a JSON error
	var buf bytes.Buffer
	if err := h.exportService.ExportRequests(c.Request.Context(), actor, bankID, &buf); err != nil {
		respondError(c, err, "Failed to export requests")
		return
	}

	filename := fmt.Sprintf("onboarding-requests-%s-%s.xlsx", bankID, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
