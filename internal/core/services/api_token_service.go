package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/agent_onboarding_portal/internal/apperrors"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/SscSPs/agent_onboarding_portal/internal/utils"
	"github.com/google/uuid"
)

const apiTokenPrefix = "aop_"

// apiTokenService implements the APITokenSvc interface
type apiTokenService struct {
	BaseService
	tokenRepo repositories.APITokenRepository
	userRepo  repositories.UserReader
}

// NewAPITokenService creates a new instance of apiTokenService
func NewAPITokenService(tokenRepo repositories.APITokenRepository, userRepo repositories.UserReader) portssvc.APITokenSvc {
	return &apiTokenService{
		tokenRepo: tokenRepo,
		userRepo:  userRepo,
	}
}

// CreateToken generates a new API token for the user
func (s *apiTokenService) CreateToken(ctx context.Context, userID, name string, expiresIn *time.Duration) (string, *domain.APIToken, error) {
	if userID == "" {
		return "", nil, errors.New("user ID is required")
	}
	if name == "" {
		return "", nil, apperrors.NewValidationFailedError("token name is required")
	}
	if expiresIn != nil && *expiresIn <= 0 {
		return "", nil, apperrors.NewValidationFailedError("expiresIn must be positive")
	}

	token, err := utils.GenerateOpaqueToken(apiTokenPrefix, 32)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now().UTC()
	var expiresAt *time.Time
	if expiresIn != nil {
		expiry := now.Add(*expiresIn)
		expiresAt = &expiry
	}

	apiToken := &domain.APIToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		TokenHash: utils.HashToken(token),
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.tokenRepo.Create(ctx, apiToken); err != nil {
		return "", nil, fmt.Errorf("failed to save token: %w", err)
	}

	// The plaintext token is only available here.
	return token, apiToken, nil
}

// ListTokens returns all API tokens for a user
func (s *apiTokenService) ListTokens(ctx context.Context, userID string) ([]domain.APIToken, error) {
	if userID == "" {
		return nil, errors.New("user ID is required")
	}

	tokens, err := s.tokenRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	if tokens == nil {
		tokens = []domain.APIToken{}
	}
	return tokens, nil
}

// RevokeToken deletes a specific API token for a user
func (s *apiTokenService) RevokeToken(ctx context.Context, userID, tokenID string) error {
	if userID == "" || tokenID == "" {
		return errors.New("user ID and token ID are required")
	}

	token, err := s.tokenRepo.FindByID(ctx, tokenID)
	if err != nil {
		return err
	}
	if token.UserID != userID {
		return apperrors.NewNotFoundError("token not found")
	}

	if err := s.tokenRepo.Delete(ctx, tokenID); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// RevokeAllTokens deletes all API tokens for a user
func (s *apiTokenService) RevokeAllTokens(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("user ID is required")
	}

	if err := s.tokenRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke all tokens: %w", err)
	}
	return nil
}

// ValidateToken checks if a token is valid and returns the owning user
func (s *apiTokenService) ValidateToken(ctx context.Context, tokenString string) (*domain.User, error) {
	if tokenString == "" {
		return nil, apperrors.ErrUnauthorized
	}

	token, err := s.tokenRepo.FindByTokenHash(ctx, utils.HashToken(tokenString))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	now := time.Now().UTC()
	if token.ExpiredAt(now) {
		if delErr := s.tokenRepo.Delete(ctx, token.ID); delErr != nil {
			s.LogError(ctx, delErr, "Failed to delete expired API token", slog.String("token_id", token.ID))
		}
		return nil, apperrors.ErrUnauthorized
	}

	if err := s.tokenRepo.TouchLastUsed(ctx, token.ID, now); err != nil {
		s.LogError(ctx, err, "Failed to update API token last use", slog.String("token_id", token.ID))
	}

	user, err := s.userRepo.FindUserByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.DeletedAt != nil {
		return nil, apperrors.ErrUnauthorized
	}
	return user, nil
}

// PurgeExpired removes every token whose expiry has passed.
func (s *apiTokenService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.tokenRepo.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired tokens: %w", err)
	}
	if n > 0 {
		s.LogInfo(ctx, "Purged expired API tokens", slog.Int64("count", n))
	}
	return n, nil
}
