package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// FieldValidationReader defines read operations for reviewer verdicts
type FieldValidationReader interface {
	// ListValidations retrieves every verdict recorded for a request, oldest first.
	ListValidations(ctx context.Context, requestID string) ([]domain.FieldValidation, error)

	// ListRegisteredFields retrieves the distinct field IDs registered for a request.
	ListRegisteredFields(ctx context.Context, requestID string) ([]string, error)
}

// FieldValidationTransactionSupport defines verdict operations run inside a caller-managed transaction
type FieldValidationTransactionSupport interface {
	// SaveValidationInTx appends a verdict.
	SaveValidationInTx(ctx context.Context, tx pgx.Tx, validation domain.FieldValidation) error

	// ListValidationsInTx is ListValidations inside tx.
	ListValidationsInTx(ctx context.Context, tx pgx.Tx, requestID string) ([]domain.FieldValidation, error)

	// RegisterFieldsInTx registers field IDs for a request. Already registered IDs are ignored.
	RegisterFieldsInTx(ctx context.Context, tx pgx.Tx, requestID string, fieldIDs []string, now time.Time) error

	// ListRegisteredFieldsInTx is ListRegisteredFields inside tx.
	ListRegisteredFieldsInTx(ctx context.Context, tx pgx.Tx, requestID string) ([]string, error)
}

// FieldValidationRepositoryFacade combines all field validation repository interfaces
type FieldValidationRepositoryFacade interface {
	FieldValidationReader
	FieldValidationTransactionSupport
}

// FieldValidationRepositoryWithTx extends FieldValidationRepositoryFacade with transaction capabilities
type FieldValidationRepositoryWithTx interface {
	FieldValidationRepositoryFacade
	TransactionManager
}
