package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/agent_onboarding_portal/internal/apperrors"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	portsrepo "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/repositories"
	"github.com/SscSPs/agent_onboarding_portal/internal/models"
	"github.com/SscSPs/agent_onboarding_portal/internal/utils/mapping"
	"github.com/SscSPs/agent_onboarding_portal/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxOnboardingRequestRepository struct {
	BaseRepository
}

func newPgxOnboardingRequestRepository(db *pgxpool.Pool) portsrepo.OnboardingRequestRepositoryWithTx {
	return &PgxOnboardingRequestRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.OnboardingRequestRepositoryWithTx = (*PgxOnboardingRequestRepository)(nil)

const (
	selectRequestFields = `
		request_id, bank_id, agency_id, agent_id, status,
		personal_info, business_info, shareholders, documents, submitted_at,
		created_at, created_by, last_updated_at, last_updated_by, version
	`

	insertRequestQuery = `
		INSERT INTO onboarding_requests (
			request_id, bank_id, agency_id, agent_id, status,
			personal_info, business_info, shareholders, documents, submitted_at,
			created_at, created_by, last_updated_at, last_updated_by, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`

	findRequestByIDQuery = `SELECT ` + selectRequestFields + ` FROM onboarding_requests WHERE request_id = $1`

	listRequestsForExportQuery = `SELECT ` + selectRequestFields + ` FROM onboarding_requests WHERE bank_id = $1 ORDER BY created_at, request_id;`

	updateRequestStatusQuery = `
		UPDATE onboarding_requests
		SET status = $2, submitted_at = $3, last_updated_by = $4, last_updated_at = $5, version = version + 1
		WHERE request_id = $1 AND version = $6;
	`

	updateRequestSectionsQuery = `
		UPDATE onboarding_requests
		SET personal_info = $2, business_info = $3, shareholders = $4, documents = $5,
			last_updated_by = $6, last_updated_at = $7, version = version + 1
		WHERE request_id = $1 AND version = $8;
	`

	selectHistoryFields = `entry_id, request_id, previous_status, status, action, user_id, role, comment, metadata, created_at`

	insertHistoryQuery = `
		INSERT INTO request_status_history (` + selectHistoryFields + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`

	listHistoryQuery = `SELECT ` + selectHistoryFields + ` FROM request_status_history WHERE request_id = $1 ORDER BY seq;`

	listHistoryForRequestsQuery = `SELECT ` + selectHistoryFields + ` FROM request_status_history WHERE request_id = ANY($1) ORDER BY request_id, seq;`
)

func scanRequest(row pgx.Row) (*models.OnboardingRequest, error) {
	var m models.OnboardingRequest
	err := row.Scan(
		&m.RequestID,
		&m.BankID,
		&m.AgencyID,
		&m.AgentID,
		&m.Status,
		&m.PersonalInfo,
		&m.BusinessInfo,
		&m.Shareholders,
		&m.Documents,
		&m.SubmittedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanHistoryEntry(row pgx.Row) (*models.StatusHistoryEntry, error) {
	var m models.StatusHistoryEntry
	err := row.Scan(
		&m.EntryID,
		&m.RequestID,
		&m.PreviousStatus,
		&m.Status,
		&m.Action,
		&m.UserID,
		&m.Role,
		&m.Comment,
		&m.Metadata,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgxOnboardingRequestRepository) findOne(ctx context.Context, q pgx.Row) (*domain.OnboardingRequest, error) {
	m, err := scanRequest(q)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("onboarding request not found")
		}
		return nil, fmt.Errorf("failed to find onboarding request: %w", err)
	}
	req, err := mapping.ToDomainOnboardingRequest(*m)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *PgxOnboardingRequestRepository) FindRequestByID(ctx context.Context, requestID string) (*domain.OnboardingRequest, error) {
	return r.findOne(ctx, r.Pool.QueryRow(ctx, findRequestByIDQuery, requestID))
}

func (r *PgxOnboardingRequestRepository) FindRequestByIDForUpdate(ctx context.Context, tx pgx.Tx, requestID string) (*domain.OnboardingRequest, error) {
	return r.findOne(ctx, tx.QueryRow(ctx, findRequestByIDQuery+" FOR UPDATE", requestID))
}

func (r *PgxOnboardingRequestRepository) FindRequestByIDForShare(ctx context.Context, tx pgx.Tx, requestID string) (*domain.OnboardingRequest, error) {
	return r.findOne(ctx, tx.QueryRow(ctx, findRequestByIDQuery+" FOR SHARE", requestID))
}

// ListRequests pages newest first on (created_at, request_id).
func (r *PgxOnboardingRequestRepository) ListRequests(ctx context.Context, filter domain.RequestFilter, limit int, nextToken *string) ([]domain.OnboardingRequest, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// One extra row tells whether there is a next page.
	fetchLimit := limit + 1

	var conditions []string
	var args []any
	addCondition := func(column string, value any) {
		args = append(args, value)
		conditions = append(conditions, column+" = $"+strconv.Itoa(len(args)))
	}
	if filter.BankID != nil {
		addCondition("bank_id", *filter.BankID)
	}
	if filter.AgencyID != nil {
		addCondition("agency_id", *filter.AgencyID)
	}
	if filter.AgentID != nil {
		addCondition("agent_id", *filter.AgentID)
	}
	if filter.Status != nil {
		addCondition("status", int16(*filter.Status))
	}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationFailedError("invalid nextToken")
		}
		args = append(args, lastCreatedAt, lastID)
		conditions = append(conditions, fmt.Sprintf("(created_at, request_id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	query := `SELECT ` + selectRequestFields + ` FROM onboarding_requests`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, fetchLimit)
	query += " ORDER BY created_at DESC, request_id DESC LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query onboarding requests", err)
	}
	defer rows.Close()

	results := make([]domain.OnboardingRequest, 0, fetchLimit)
	for rows.Next() {
		m, err := scanRequest(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan onboarding request row", err)
		}
		req, err := mapping.ToDomainOnboardingRequest(*m)
		if err != nil {
			return nil, nil, err
		}
		results = append(results, req)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating onboarding request rows", err)
	}

	var next *string
	if len(results) > limit {
		last := results[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.RequestID)
		next = &token
		results = results[:limit]
	}
	return results, next, nil
}

func (r *PgxOnboardingRequestRepository) ListRequestsForExport(ctx context.Context, bankID string) ([]domain.OnboardingRequest, error) {
	rows, err := r.Pool.Query(ctx, listRequestsForExportQuery, bankID)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests for export: %w", err)
	}
	defer rows.Close()

	results := []domain.OnboardingRequest{}
	for rows.Next() {
		m, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan onboarding request row: %w", err)
		}
		req, err := mapping.ToDomainOnboardingRequest(*m)
		if err != nil {
			return nil, err
		}
		results = append(results, req)
	}
	return results, rows.Err()
}

func (r *PgxOnboardingRequestRepository) ListStatusHistory(ctx context.Context, requestID string) ([]domain.StatusHistoryEntry, error) {
	byRequest, err := r.queryHistory(ctx, listHistoryQuery, requestID)
	if err != nil {
		return nil, err
	}
	return byRequest[requestID], nil
}

func (r *PgxOnboardingRequestRepository) ListStatusHistoryForRequests(ctx context.Context, requestIDs []string) (map[string][]domain.StatusHistoryEntry, error) {
	if len(requestIDs) == 0 {
		return map[string][]domain.StatusHistoryEntry{}, nil
	}
	return r.queryHistory(ctx, listHistoryForRequestsQuery, requestIDs)
}

func (r *PgxOnboardingRequestRepository) queryHistory(ctx context.Context, query string, arg any) (map[string][]domain.StatusHistoryEntry, error) {
	rows, err := r.Pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	out := map[string][]domain.StatusHistoryEntry{}
	for rows.Next() {
		m, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan status history row: %w", err)
		}
		entry, err := mapping.ToDomainStatusHistoryEntry(*m)
		if err != nil {
			return nil, err
		}
		out[entry.RequestID] = append(out[entry.RequestID], entry)
	}
	return out, rows.Err()
}

// SaveRequestWithHistory inserts the request and its creation entry atomically.
func (r *PgxOnboardingRequestRepository) SaveRequestWithHistory(ctx context.Context, req domain.OnboardingRequest, entry domain.StatusHistoryEntry) error {
	m, err := mapping.ToModelOnboardingRequest(req)
	if err != nil {
		return err
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	_, err = tx.Exec(ctx, insertRequestQuery,
		m.RequestID, m.BankID, m.AgencyID, m.AgentID, m.Status,
		m.PersonalInfo, m.BusinessInfo, m.Shareholders, m.Documents, m.SubmittedAt,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy, m.Version,
	)
	if err != nil {
		return mapWriteError(err, "onboarding request")
	}
	if err := r.AppendHistoryInTx(ctx, tx, entry); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func (r *PgxOnboardingRequestRepository) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, requestID string, status domain.RequestStatus, expectedVersion int64, submittedAt *time.Time, userID string, now time.Time) error {
	tag, err := tx.Exec(ctx, updateRequestStatusQuery, requestID, int16(status), submittedAt, userID, now, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewWorkflowError(apperrors.ErrConcurrentModification, "", status.String(), "request version changed")
	}
	return nil
}

func (r *PgxOnboardingRequestRepository) UpdateSectionsInTx(ctx context.Context, tx pgx.Tx, req domain.OnboardingRequest, expectedVersion int64) error {
	m, err := mapping.ToModelOnboardingRequest(req)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, updateRequestSectionsQuery,
		m.RequestID, m.PersonalInfo, m.BusinessInfo, m.Shareholders, m.Documents,
		m.LastUpdatedBy, m.LastUpdatedAt, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update request sections: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewWorkflowError(apperrors.ErrConcurrentModification, "", "", "request version changed")
	}
	return nil
}

func (r *PgxOnboardingRequestRepository) AppendHistoryInTx(ctx context.Context, tx pgx.Tx, entry domain.StatusHistoryEntry) error {
	m, err := mapping.ToModelStatusHistoryEntry(entry)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, insertHistoryQuery,
		m.EntryID, m.RequestID, m.PreviousStatus, m.Status, m.Action,
		m.UserID, m.Role, m.Comment, m.Metadata, m.CreatedAt,
	)
	if err != nil {
		return mapWriteError(err, "status history entry")
	}
	return nil
}
