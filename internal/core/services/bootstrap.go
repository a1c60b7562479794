package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/agent_onboarding_portal/internal/apperrors"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	portsrepo "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/repositories"
	"github.com/SscSPs/agent_onboarding_portal/internal/utils"
	"github.com/google/uuid"
)

// EnsureSuperAdmin creates a super admin named username unless a user with that name exists.
// It reports whether a user was created.
func EnsureSuperAdmin(ctx context.Context, users portsrepo.UserRepositoryFacade, username, email, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, nil
	}
	if _, err := users.FindUserByUsername(ctx, username); err == nil {
		return false, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return false, fmt.Errorf("failed to look up bootstrap admin: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("failed to hash bootstrap admin password: %w", err)
	}
	now := time.Now().UTC()
	id := uuid.NewString()
	admin := domain.User{
		UserID:       id,
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Name:         username,
		Role:         domain.RoleSuperAdmin,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     id,
			LastUpdatedAt: now,
			LastUpdatedBy: id,
			Version:       1,
		},
	}
	if err := users.SaveUser(ctx, admin); err != nil {
		return false, fmt.Errorf("failed to save bootstrap admin: %w", err)
	}
	slog.InfoContext(ctx, "Bootstrap super admin created", slog.String("user_id", id))
	return true, nil
}
