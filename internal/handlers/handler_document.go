package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/agent_onboarding_portal/internal/apperrors"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/SscSPs/agent_onboarding_portal/internal/middleware"
	"github.com/SscSPs/agent_onboarding_portal/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// multipart framing allowance on top of the file limit
const multipartOverhead = 1 << 20

type documentHandler struct {
	documentService portssvc.DocumentSvc
	maxUploadBytes  int64
}

func registerDocumentUploadRoutes(request *gin.RouterGroup, documentService portssvc.DocumentSvc, cfg *config.Config) {
	h := &documentHandler{documentService: documentService, maxUploadBytes: cfg.MaxUploadBytes}

	rate, err := limiter.NewRateFromFormatted(cfg.UploadRateLimit)
	if err != nil {
		rate, _ = limiter.NewRateFromFormatted("30-M")
	}
	uploadLimit := middleware.RateLimit(limiter.New(memory.NewStore(), rate))

	request.POST("/documents/:category", uploadLimit, h.uploadDocument)
}

func registerDocumentRoutes(rg *gin.RouterGroup, documentService portssvc.DocumentSvc) {
	h := &documentHandler{documentService: documentService}
	rg.GET("/documents/:reference", h.downloadDocument)
}

// uploadDocument godoc
// @Summary Upload a document
// @Description Stores a JPEG, PNG or PDF file and appends its reference to the request's documents in the given category.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param requestID path string true "Request ID"
// @Param category path string true "proofOfResidence, identityDocument, signature or bankDetails"
// @Param file formData file true "Document"
// @Success 201 {object} domain.StoredDocument
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Request not editable"
// @Failure 413 {object} ErrorResponse
// @Failure 415 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Security BearerAuth
// @Router /requests/{requestID}/documents/{category} [post]
func (h *documentHandler) uploadDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	category := domain.DocumentCategory(c.Param("category"))
	if !category.IsValid() {
		respondError(c, apperrors.NewValidationError([]apperrors.FieldError{{Field: "category", Message: "unknown document category"}}), "Invalid category")
		return
	}
	actor, ok := actorFromCtx(c)
	if !ok {
		return
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, apperrors.ErrFileTooLarge, "File too large")
			return
		}
		bindError(c, "multipart form", err)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, fmt.Errorf("failed to open uploaded file: %w", err), "Failed to read upload")
		return
	}
	defer file.Close()

	doc, err := h.documentService.UploadDocument(c.Request.Context(), actor, c.Param("requestID"), category, fileHeader.Filename, file)
	if err != nil {
		respondError(c, err, "Failed to store document")
		return
	}

	logger.Info("Document uploaded", slog.String("reference", doc.Reference), slog.String("category", string(category)), slog.Int64("size", doc.Size))
	c.JSON(http.StatusCreated, doc)
}

// downloadDocument godoc
// @Summary Download a document
// @Tags documents
// @Produce octet-stream
// @Param reference path string true "Document reference"
// @Success 200 {file} file
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /documents/{reference} [get]
func (h *documentHandler) downloadDocument(c *gin.Context) {
	actor, ok := actorFromCtx(c)
	if !ok {
		return
	}
	doc, content, err := h.documentService.OpenDocument(c.Request.Context(), actor, c.Param("reference"))
	if err != nil {
		respondError(c, err, "Failed to open document")
		return
	}
	defer content.Close()

	c.DataFromReader(http.StatusOK, doc.Size, doc.ContentType, content, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", doc.OriginalFilename),
	})
}
