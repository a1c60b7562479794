package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/SscSPs/agent_onboarding_portal/internal/apperrors"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	portsrepo "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/workflow"
	"github.com/SscSPs/agent_onboarding_portal/internal/platform/metrics"
)

type documentService struct {
	BaseService
	requestRepo  portsrepo.OnboardingRequestRepositoryWithTx
	documentRepo portsrepo.DocumentRepository
	files        portssvc.FileStore
	table        *workflow.Table
	now          func() time.Time
}

// NewDocumentService creates a new document service
func NewDocumentService(
	requestRepo portsrepo.OnboardingRequestRepositoryWithTx,
	documentRepo portsrepo.DocumentRepository,
	files portssvc.FileStore,
	table *workflow.Table,
) portssvc.DocumentSvc {
	return &documentService{
		requestRepo:  requestRepo,
		documentRepo: documentRepo,
		files:        files,
		table:        table,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.DocumentSvc = (*documentService)(nil)

func (s *documentService) UploadDocument(ctx context.Context, actor domain.Actor, requestID string, category domain.DocumentCategory, filename string, content io.Reader) (*domain.StoredDocument, error) {
	if err := requireRole(actor, domain.RoleAgent); err != nil {
		return nil, err
	}
	if !category.IsValid() {
		return nil, apperrors.NewValidationError([]apperrors.FieldError{{Field: "category", Message: "unknown document category"}})
	}

	// Cheap checks before the content is written anywhere.
	current, err := s.requestRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.checkEditable(actor, current); err != nil {
		return nil, err
	}

	stored, err := s.files.Save(ctx, content, filepath.Base(filename))
	if err != nil {
		return nil, err
	}

	doc, err := s.attach(ctx, actor, requestID, category, filename, stored)
	if err != nil {
		if delErr := s.files.Delete(ctx, stored.Reference); delErr != nil {
			s.LogError(ctx, delErr, "Failed to delete orphaned document", slog.String("reference", stored.Reference))
		}
		return nil, err
	}

	metrics.DocumentUploadBytes.Observe(float64(stored.Size))
	s.LogInfo(ctx, "Document uploaded",
		slog.String("request_id", requestID),
		slog.String("category", string(category)),
		slog.String("reference", stored.Reference))
	return doc, nil
}

func (s *documentService) attach(ctx context.Context, actor domain.Actor, requestID string, category domain.DocumentCategory, filename string, stored *domain.StoredFile) (*domain.StoredDocument, error) {
	tx, err := s.requestRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := s.requestRepo.Rollback(ctx, tx); rbErr != nil {
			s.LogError(ctx, rbErr, "Failed to rollback transaction", slog.String("request_id", requestID))
		}
	}()

	current, err := s.requestRepo.FindRequestByIDForUpdate(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.checkEditable(actor, current); err != nil {
		return nil, err
	}

	now := s.now()
	doc := domain.StoredDocument{
		Reference:        stored.Reference,
		RequestID:        requestID,
		Category:         category,
		OriginalFilename: filepath.Base(filename),
		ContentType:      stored.ContentType,
		Size:             stored.Size,
		Checksum:         stored.Checksum,
		UploadedBy:       actor.UserID,
		UploadedAt:       now,
	}
	if err := s.documentRepo.SaveDocumentInTx(ctx, tx, doc); err != nil {
		return nil, err
	}

	next := *current
	next.Documents = current.Documents.WithRef(category, stored.Reference)
	next.LastUpdatedAt = now
	next.LastUpdatedBy = actor.UserID
	if err := s.requestRepo.UpdateSectionsInTx(ctx, tx, next, current.Version); err != nil {
		return nil, err
	}
	if err := s.requestRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &doc, nil
}

func (s *documentService) checkEditable(actor domain.Actor, req *domain.OnboardingRequest) error {
	if err := authorizeRequest(actor, req); err != nil {
		return err
	}
	if def, _ := s.table.Status(req.Status); !def.AgentEditable {
		return apperrors.NewWorkflowError(apperrors.ErrInvalidTransition, req.Status.String(), "",
			"documents cannot be added in the current status")
	}
	return nil
}

func (s *documentService) OpenDocument(ctx context.Context, actor domain.Actor, reference string) (*domain.StoredDocument, io.ReadCloser, error) {
	doc, err := s.documentRepo.FindDocumentByReference(ctx, reference)
	if err != nil {
		return nil, nil, err
	}
	req, err := s.requestRepo.FindRequestByID(ctx, doc.RequestID)
	if err != nil {
		return nil, nil, err
	}
	if err := authorizeRequest(actor, req); err != nil {
		return nil, nil, err
	}
	content, err := s.files.Open(ctx, reference)
	if err != nil {
		return nil, nil, err
	}
	return doc, content, nil
}
