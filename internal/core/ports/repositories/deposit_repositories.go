package repositories

import (
	"context"

	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// DepositRepository defines data access for capital deposit confirmations
type DepositRepository interface {
	// SaveDepositConfirmation records a confirmation. It reports false when the request
	// already had one, in which case the stored confirmation is left untouched.
	SaveDepositConfirmation(ctx context.Context, deposit domain.DepositConfirmation) (bool, error)

	// FindDepositByRequestID retrieves the confirmation recorded for a request.
	FindDepositByRequestID(ctx context.Context, requestID string) (*domain.DepositConfirmation, error)

	// HasDepositInTx reports whether a confirmation exists for a request.
	HasDepositInTx(ctx context.Context, tx pgx.Tx, requestID string) (bool, error)
}
