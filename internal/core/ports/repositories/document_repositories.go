package repositories

import (
	"context"

	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// DocumentRepository defines data access for uploaded document metadata
type DocumentRepository interface {
	// SaveDocumentInTx records an uploaded document.
	SaveDocumentInTx(ctx context.Context, tx pgx.Tx, doc domain.StoredDocument) error

	// FindDocumentByReference retrieves a document by its stored-file reference.
	FindDocumentByReference(ctx context.Context, reference string) (*domain.StoredDocument, error)

	// ListDocumentsByRequest retrieves the documents uploaded for a request.
	ListDocumentsByRequest(ctx context.Context, requestID string) ([]domain.StoredDocument, error)
}
