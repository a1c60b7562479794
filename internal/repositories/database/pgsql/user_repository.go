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

type PgxUserRepository struct {
	BaseRepository
}

func newPgxUserRepository(db *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{BaseRepository: BaseRepository{Pool: db}}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

const (
	selectUserFields = `
		user_id, username, email, password_hash, name, role, bank_id, agency_id,
		created_at, created_by, last_updated_at, last_updated_by, version, deleted_at,
		refresh_token_hash, refresh_token_expiry_time
	`

	insertUserQuery = `
		INSERT INTO users (
			user_id, username, email, password_hash, name, role, bank_id, agency_id,
			created_at, created_by, last_updated_at, last_updated_by, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`

	findUserByIDQuery = `SELECT ` + selectUserFields + ` FROM users WHERE user_id = $1 AND deleted_at IS NULL;`

	findUserByUsernameQuery = `SELECT ` + selectUserFields + ` FROM users WHERE username = $1 AND deleted_at IS NULL;`

	findUserByEmailQuery = `SELECT ` + selectUserFields + ` FROM users WHERE lower(email) = lower($1) AND deleted_at IS NULL;`

	findUsersQuery = `
		SELECT ` + selectUserFields + `
		FROM users
		WHERE deleted_at IS NULL AND ($1::text IS NULL OR bank_id = $1)
		ORDER BY created_at DESC, user_id DESC
		LIMIT $2 OFFSET $3;
	`

	updateUserQuery = `
		UPDATE users
		SET name = $1, last_updated_at = $2, last_updated_by = $3, version = version + 1
		WHERE user_id = $4 AND deleted_at IS NULL;
	`

	markUserDeletedQuery = `
		UPDATE users
		SET deleted_at = $1, last_updated_at = $1, last_updated_by = $2, refresh_token_hash = NULL, refresh_token_expiry_time = NULL
		WHERE user_id = $3 AND deleted_at IS NULL;
	`

	updateRefreshTokenQuery = `
		UPDATE users SET refresh_token_hash = $1, refresh_token_expiry_time = $2
		WHERE user_id = $3 AND deleted_at IS NULL;
	`

	clearRefreshTokenQuery = `
		UPDATE users SET refresh_token_hash = NULL, refresh_token_expiry_time = NULL
		WHERE user_id = $1;
	`
)

func scanUser(row pgx.Row) (*models.User, error) {
	var m models.User
	err := row.Scan(
		&m.UserID,
		&m.Username,
		&m.Email,
		&m.PasswordHash,
		&m.Name,
		&m.Role,
		&m.BankID,
		&m.AgencyID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
		&m.DeletedAt,
		&m.RefreshTokenHash,
		&m.RefreshTokenExpiryTime,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	m := mapping.ToModelUser(user)
	_, err := r.Pool.Exec(ctx, insertUserQuery,
		m.UserID,
		m.Username,
		m.Email,
		m.PasswordHash,
		m.Name,
		m.Role,
		m.BankID,
		m.AgencyID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.Version,
	)
	if err != nil {
		return mapWriteError(err, "user")
	}
	return nil
}

func (r *PgxUserRepository) findOne(ctx context.Context, query, key string) (*domain.User, error) {
	m, err := scanUser(r.Pool.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("user not found")
		}
		return nil, fmt.Errorf("failed to find user %s: %w", key, err)
	}
	user := mapping.ToDomainUser(*m)
	return &user, nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.findOne(ctx, findUserByIDQuery, userID)
}

func (r *PgxUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, findUserByUsernameQuery, username)
}

func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, findUserByEmailQuery, email)
}

func (r *PgxUserRepository) FindUsers(ctx context.Context, bankID *string, limit int, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.Pool.Query(ctx, findUsersQuery, bankID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	modelUsers := []models.User{}
	for rows.Next() {
		m, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		modelUsers = append(modelUsers, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return mapping.ToDomainUserSlice(modelUsers), nil
}

func (r *PgxUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	cmdTag, err := r.Pool.Exec(ctx, updateUserQuery, user.Name, user.LastUpdatedAt, user.LastUpdatedBy, user.UserID)
	if err != nil {
		return fmt.Errorf("failed to execute update user query: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("user not found or already deleted")
	}
	return nil
}

func (r *PgxUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error {
	cmdTag, err := r.Pool.Exec(ctx, markUserDeletedQuery, deletedAt, deletedBy, userID)
	if err != nil {
		return fmt.Errorf("failed to mark user as deleted: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("user not found or already deleted")
	}
	return nil
}

func (r *PgxUserRepository) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, expiry time.Time) error {
	cmdTag, err := r.Pool.Exec(ctx, updateRefreshTokenQuery, refreshTokenHash, expiry, userID)
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("user not found")
	}
	return nil
}

func (r *PgxUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	if _, err := r.Pool.Exec(ctx, clearRefreshTokenQuery, userID); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}
