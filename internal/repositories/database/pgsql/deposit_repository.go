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

type PgxDepositRepository struct {
	BaseRepository
}

func newPgxDepositRepository(db *pgxpool.Pool) portsrepo.DepositRepository {
	return &PgxDepositRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.DepositRepository = (*PgxDepositRepository)(nil)

const (
	insertDepositQuery = `
		INSERT INTO deposit_confirmations (request_id, amount, reference, source, confirmed_by, confirmed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (request_id) DO NOTHING;
	`

	findDepositQuery = `
		SELECT request_id, amount, reference, source, confirmed_by, confirmed_at
		FROM deposit_confirmations WHERE request_id = $1;
	`

	hasDepositQuery = `SELECT EXISTS (SELECT 1 FROM deposit_confirmations WHERE request_id = $1);`
)

// SaveDepositConfirmation keeps the first confirmation of a request.
func (r *PgxDepositRepository) SaveDepositConfirmation(ctx context.Context, deposit domain.DepositConfirmation) (bool, error) {
	m := mapping.ToModelDepositConfirmation(deposit)
	tag, err := r.Pool.Exec(ctx, insertDepositQuery, m.RequestID, m.Amount, m.Reference, m.Source, m.ConfirmedBy, m.ConfirmedAt)
	if err != nil {
		return false, mapWriteError(err, "deposit confirmation")
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PgxDepositRepository) FindDepositByRequestID(ctx context.Context, requestID string) (*domain.DepositConfirmation, error) {
	var m models.DepositConfirmation
	err := r.Pool.QueryRow(ctx, findDepositQuery, requestID).Scan(
		&m.RequestID, &m.Amount, &m.Reference, &m.Source, &m.ConfirmedBy, &m.ConfirmedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("deposit confirmation not found")
		}
		return nil, fmt.Errorf("failed to find deposit confirmation: %w", err)
	}
	d := mapping.ToDomainDepositConfirmation(m)
	return &d, nil
}

func (r *PgxDepositRepository) HasDepositInTx(ctx context.Context, tx pgx.Tx, requestID string) (bool, error) {
	var exists bool
	if err := tx.QueryRow(ctx, hasDepositQuery, requestID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check deposit confirmation: %w", err)
	}
	return exists, nil
}
