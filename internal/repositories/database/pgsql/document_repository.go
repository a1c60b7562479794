package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/agent_onboarding_portal/internal/apperrors"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	portsrepo "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/repositories"
	"github.com/SscSPs/agent_onboarding_portal/internal/models"
	"github.com/SscSPs/agent_onboarding_portal/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxDocumentRepository struct {
	BaseRepository
}

func newPgxDocumentRepository(db *pgxpool.Pool) portsrepo.DocumentRepository {
	return &PgxDocumentRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.DocumentRepository = (*PgxDocumentRepository)(nil)

const (
	selectDocumentFields = `reference, request_id, category, original_filename, content_type, size_bytes, checksum, uploaded_by, uploaded_at`

	insertDocumentQuery = `
		INSERT INTO request_documents (` + selectDocumentFields + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`

	findDocumentQuery = `SELECT ` + selectDocumentFields + ` FROM request_documents WHERE reference = $1;`

	listDocumentsQuery = `SELECT ` + selectDocumentFields + ` FROM request_documents WHERE request_id = $1 ORDER BY uploaded_at, reference;`
)

func scanDocument(row pgx.Row) (*models.StoredDocument, error) {
	var m models.StoredDocument
	if err := row.Scan(&m.Reference, &m.RequestID, &m.Category, &m.OriginalFilename, &m.ContentType,
		&m.Size, &m.Checksum, &m.UploadedBy, &m.UploadedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgxDocumentRepository) SaveDocumentInTx(ctx context.Context, tx pgx.Tx, doc domain.StoredDocument) error {
	m := mapping.ToModelStoredDocument(doc)
	_, err := tx.Exec(ctx, insertDocumentQuery, m.Reference, m.RequestID, m.Category, m.OriginalFilename,
		m.ContentType, m.Size, m.Checksum, m.UploadedBy, m.UploadedAt)
	if err != nil {
		return mapWriteError(err, "document")
	}
	return nil
}

func (r *PgxDocumentRepository) FindDocumentByReference(ctx context.Context, reference string) (*domain.StoredDocument, error) {
	m, err := scanDocument(r.Pool.QueryRow(ctx, findDocumentQuery, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("document not found")
		}
		return nil, fmt.Errorf("failed to find document: %w", err)
	}
	d := mapping.ToDomainStoredDocument(*m)
	return &d, nil
}

func (r *PgxDocumentRepository) ListDocumentsByRequest(ctx context.Context, requestID string) ([]domain.StoredDocument, error) {
	rows, err := r.Pool.Query(ctx, listDocumentsQuery, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.StoredDocument{}
	for rows.Next() {
		m, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, mapping.ToDomainStoredDocument(*m))
	}
	return docs, rows.Err()
}
