package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	portsrepo "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/repositories"
	"github.com/SscSPs/agent_onboarding_portal/internal/models"
	"github.com/SscSPs/agent_onboarding_portal/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type PgxFieldValidationRepository struct {
	BaseRepository
}

func newPgxFieldValidationRepository(db *pgxpool.Pool) portsrepo.FieldValidationRepositoryWithTx {
	return &PgxFieldValidationRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.FieldValidationRepositoryWithTx = (*PgxFieldValidationRepository)(nil)

const (
	selectValidationFields = `validation_id, request_id, field_id, status, comment, validated_by, validated_at`

	insertValidationQuery = `
		INSERT INTO field_validations (` + selectValidationFields + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`

	listValidationsQuery = `
		SELECT ` + selectValidationFields + `
		FROM field_validations
		WHERE request_id = $1
		ORDER BY validated_at, seq;
	`

	registerFieldsQuery = `
		INSERT INTO registered_fields (request_id, field_id, registered_at)
		SELECT $1, unnest($2::text[]), $3
		ON CONFLICT (request_id, field_id) DO NOTHING;
	`

	listRegisteredFieldsQuery = `SELECT field_id FROM registered_fields WHERE request_id = $1 ORDER BY field_id;`
)

func (r *PgxFieldValidationRepository) ListValidations(ctx context.Context, requestID string) ([]domain.FieldValidation, error) {
	return listValidations(ctx, r.Pool, requestID)
}

func (r *PgxFieldValidationRepository) ListValidationsInTx(ctx context.Context, tx pgx.Tx, requestID string) ([]domain.FieldValidation, error) {
	return listValidations(ctx, tx, requestID)
}

func (r *PgxFieldValidationRepository) ListRegisteredFields(ctx context.Context, requestID string) ([]string, error) {
	return listRegisteredFields(ctx, r.Pool, requestID)
}

func (r *PgxFieldValidationRepository) ListRegisteredFieldsInTx(ctx context.Context, tx pgx.Tx, requestID string) ([]string, error) {
	return listRegisteredFields(ctx, tx, requestID)
}

func (r *PgxFieldValidationRepository) SaveValidationInTx(ctx context.Context, tx pgx.Tx, validation domain.FieldValidation) error {
	m := mapping.ToModelFieldValidation(validation)
	_, err := tx.Exec(ctx, insertValidationQuery,
		m.ValidationID, m.RequestID, m.FieldID, m.Status, m.Comment, m.ValidatedBy, m.ValidatedAt)
	if err != nil {
		return mapWriteError(err, "field validation")
	}
	return nil
}

func (r *PgxFieldValidationRepository) RegisterFieldsInTx(ctx context.Context, tx pgx.Tx, requestID string, fieldIDs []string, now time.Time) error {
	if len(fieldIDs) == 0 {
		return nil
	}
	if _, err := tx.Exec(ctx, registerFieldsQuery, requestID, fieldIDs, now); err != nil {
		return mapWriteError(err, "registered field")
	}
	return nil
}

func listValidations(ctx context.Context, q querier, requestID string) ([]domain.FieldValidation, error) {
	rows, err := q.Query(ctx, listValidationsQuery, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query field validations: %w", err)
	}
	defer rows.Close()

	validations := []domain.FieldValidation{}
	for rows.Next() {
		var m models.FieldValidation
		if err := rows.Scan(&m.ValidationID, &m.RequestID, &m.FieldID, &m.Status, &m.Comment, &m.ValidatedBy, &m.ValidatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan field validation row: %w", err)
		}
		validations = append(validations, mapping.ToDomainFieldValidation(m))
	}
	return validations, rows.Err()
}

func listRegisteredFields(ctx context.Context, q querier, requestID string) ([]string, error) {
	rows, err := q.Query(ctx, listRegisteredFieldsQuery, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query registered fields: %w", err)
	}
	defer rows.Close()

	fields := []string{}
	for rows.Next() {
		var field string
		if err := rows.Scan(&field); err != nil {
			return nil, fmt.Errorf("failed to scan registered field: %w", err)
		}
		fields = append(fields, field)
	}
	return fields, rows.Err()
}
