package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/agent_onboarding_portal/internal/apperrors"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	portsrepo "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/repositories"
	"github.com/SscSPs/agent_onboarding_portal/internal/models"
	"github.com/SscSPs/agent_onboarding_portal/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAPITokenRepository struct {
	BaseRepository
}

// newPgxAPITokenRepository creates a new instance of PgxAPITokenRepository
func newPgxAPITokenRepository(db *pgxpool.Pool) portsrepo.APITokenRepository {
	return &PgxAPITokenRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.APITokenRepository = (*PgxAPITokenRepository)(nil)

const (
	apiTokensTable = "api_tokens"

	selectAPITokenFields = `
		api_token_id, user_id, name, token_hash,
		last_used_at, expires_at, created_at, updated_at
	`

	insertAPITokenQuery = `
		INSERT INTO ` + apiTokensTable + ` (
			api_token_id, user_id, name, token_hash, expires_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING ` + selectAPITokenFields

	findAPITokenByIDQuery = `
		SELECT ` + selectAPITokenFields + `
		FROM ` + apiTokensTable + `
		WHERE api_token_id = $1 AND deleted_at IS NULL
	`

	findAPITokenByUserIDQuery = `
		SELECT ` + selectAPITokenFields + `
		FROM ` + apiTokensTable + `
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	findAPITokenByHashQuery = `
		SELECT ` + selectAPITokenFields + `
		FROM ` + apiTokensTable + `
		WHERE token_hash = $1 AND deleted_at IS NULL
	`

	touchAPITokenQuery = `
		UPDATE ` + apiTokensTable + `
		SET last_used_at = $2, updated_at = $2
		WHERE api_token_id = $1 AND deleted_at IS NULL
	`

	deleteAPITokenQuery = `
		UPDATE ` + apiTokensTable + `
		SET deleted_at = NOW()
		WHERE api_token_id = $1 AND deleted_at IS NULL
	`

	deleteAPITokensByUserIDQuery = `
		UPDATE ` + apiTokensTable + `
		SET deleted_at = NOW()
		WHERE user_id = $1 AND deleted_at IS NULL
	`

	deleteExpiredAPITokensQuery = `
		UPDATE ` + apiTokensTable + `
		SET deleted_at = NOW()
		WHERE expires_at < $1 AND deleted_at IS NULL
	`
)

// Create persists a new API token
func (r *PgxAPITokenRepository) Create(ctx context.Context, token *domain.APIToken) error {
	if token == nil {
		return errors.New("token cannot be nil")
	}

	modelToken := mapping.ToModelAPIToken(*token)
	created, err := scanAPIToken(r.Pool.QueryRow(ctx, insertAPITokenQuery,
		modelToken.ID,
		modelToken.UserID,
		modelToken.Name,
		modelToken.TokenHash,
		modelToken.ExpiresAt,
		modelToken.CreatedAt,
	))
	if err != nil {
		return mapWriteError(err, "api token")
	}

	token.CreatedAt = created.CreatedAt
	token.UpdatedAt = created.UpdatedAt
	return nil
}

// FindByID retrieves an API token by its ID
func (r *PgxAPITokenRepository) FindByID(ctx context.Context, id string) (*domain.APIToken, error) {
	return r.findOne(ctx, findAPITokenByIDQuery, id)
}

// FindByTokenHash finds a live token by its hash
func (r *PgxAPITokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*domain.APIToken, error) {
	return r.findOne(ctx, findAPITokenByHashQuery, tokenHash)
}

func (r *PgxAPITokenRepository) findOne(ctx context.Context, query, key string) (*domain.APIToken, error) {
	if key == "" {
		return nil, apperrors.NewNotFoundError("token not found")
	}
	token, err := scanAPIToken(r.Pool.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("token not found")
		}
		return nil, fmt.Errorf("failed to find api token: %w", err)
	}
	domainToken := mapping.ToDomainAPIToken(*token)
	return &domainToken, nil
}

// FindByUserID retrieves all API tokens for a specific user
func (r *PgxAPITokenRepository) FindByUserID(ctx context.Context, userID string) ([]domain.APIToken, error) {
	rows, err := r.Pool.Query(ctx, findAPITokenByUserIDQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query api tokens: %w", err)
	}
	defer rows.Close()

	var tokens []domain.APIToken
	for rows.Next() {
		token, err := scanAPIToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan api token: %w", err)
		}
		tokens = append(tokens, mapping.ToDomainAPIToken(*token))
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tokens, nil
}

// TouchLastUsed records when a token was last presented
func (r *PgxAPITokenRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	if _, err := r.Pool.Exec(ctx, touchAPITokenQuery, id, at); err != nil {
		return fmt.Errorf("failed to touch api token: %w", err)
	}
	return nil
}

// Delete removes an API token by ID (soft delete)
func (r *PgxAPITokenRepository) Delete(ctx context.Context, id string) error {
	result, err := r.Pool.Exec(ctx, deleteAPITokenQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete api token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("token not found or already deleted")
	}
	return nil
}

// DeleteByUserID removes all API tokens for a specific user (soft delete)
func (r *PgxAPITokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.Pool.Exec(ctx, deleteAPITokensByUserIDQuery, userID)
	return err
}

// DeleteExpired removes all expired API tokens (soft delete)
func (r *PgxAPITokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	if before.IsZero() {
		return 0, errors.New("invalid time provided")
	}
	result, err := r.Pool.Exec(ctx, deleteExpiredAPITokensQuery, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// scanAPIToken scans an API token from a row
func scanAPIToken(row pgx.Row) (*models.APIToken, error) {
	var token models.APIToken
	err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.Name,
		&token.TokenHash,
		&token.LastUsedAt,
		&token.ExpiresAt,
		&token.CreatedAt,
		&token.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &token, nil
}
