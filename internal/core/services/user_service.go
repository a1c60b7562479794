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
	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/SscSPs/agent_onboarding_portal/internal/dto"
	"github.com/SscSPs/agent_onboarding_portal/internal/utils"
	"github.com/google/uuid"
)

// roles a bank admin may hand out inside their own bank
var bankAdminGrantable = map[domain.Role]bool{
	domain.RoleAgent:      true,
	domain.RoleBankStaff:  true,
	domain.RoleCTO:        true,
	domain.RoleN1Reviewer: true,
	domain.RoleN2Reviewer: true,
}

type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
	bankRepo portsrepo.BankReader
	roles    portssvc.RoleProviderSvc
}

// UserServiceOption is a functional option for configuring the user service
type UserServiceOption func(*userService)

// WithRoleProvider makes the user service drop cached actors of users it changes.
func WithRoleProvider(roles portssvc.RoleProviderSvc) UserServiceOption {
	return func(s *userService) {
		s.roles = roles
	}
}

// NewUserService creates a new user service
func NewUserService(userRepo portsrepo.UserRepositoryFacade, bankRepo portsrepo.BankReader, opts ...UserServiceOption) portssvc.UserSvcFacade {
	s := &userService{userRepo: userRepo, bankRepo: bankRepo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) CreateUser(ctx context.Context, actor domain.Actor, req dto.CreateUserRequest) (*domain.User, error) {
	bankID, agencyID, err := s.checkGrant(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.userRepo.FindUserByUsername(ctx, username); err == nil {
		return nil, apperrors.NewConflictError("username already taken")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if _, err := s.userRepo.FindUserByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflictError("email already registered")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		UserID:       uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Role:         req.Role,
		BankID:       bankID,
		AgencyID:     agencyID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
			Version:       1,
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		s.LogError(ctx, err, "Failed to save user", slog.String("username", username))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.LogInfo(ctx, "User created", slog.String("user_id", user.UserID), slog.String("role", string(user.Role)))
	return &user, nil
}

// checkGrant validates the role, bank and agency of a new user against what actor may grant.
func (s *userService) checkGrant(ctx context.Context, actor domain.Actor, req dto.CreateUserRequest) (*string, *string, error) {
	if !req.Role.IsValid() {
		return nil, nil, apperrors.NewValidationError([]apperrors.FieldError{{Field: "role", Message: "unknown role"}})
	}

	bankID := req.BankID
	switch actor.Role {
	case domain.RoleSuperAdmin:
	case domain.RoleBankAdmin:
		if !bankAdminGrantable[req.Role] {
			return nil, nil, apperrors.NewForbiddenError("bank admins cannot grant role " + string(req.Role))
		}
		if bankID != nil && (actor.BankID == nil || *bankID != *actor.BankID) {
			return nil, nil, apperrors.NewForbiddenError("cannot create users in another bank")
		}
		bankID = actor.BankID
	default:
		return nil, nil, apperrors.NewForbiddenError("role " + string(actor.Role) + " cannot create users")
	}

	if req.Role == domain.RoleSuperAdmin {
		if bankID != nil || req.AgencyID != nil {
			return nil, nil, apperrors.NewValidationFailedError("super admins are not attached to a bank")
		}
		return nil, nil, nil
	}

	if bankID == nil {
		return nil, nil, apperrors.NewValidationError([]apperrors.FieldError{{Field: "bankID", Message: "is required for role " + string(req.Role)}})
	}
	if _, err := s.bankRepo.FindBankByID(ctx, *bankID); err != nil {
		return nil, nil, err
	}

	if req.Role != domain.RoleAgent {
		return bankID, nil, nil
	}
	if req.AgencyID == nil {
		return nil, nil, apperrors.NewValidationError([]apperrors.FieldError{{Field: "agencyID", Message: "is required for agents"}})
	}
	agency, err := s.bankRepo.FindAgencyByID(ctx, *req.AgencyID)
	if err != nil {
		return nil, nil, err
	}
	if agency.BankID != *bankID {
		return nil, nil, apperrors.NewValidationError([]apperrors.FieldError{{Field: "agencyID", Message: "does not belong to the bank"}})
	}
	return bankID, req.AgencyID, nil
}

// canSee reports whether actor may read or manage target.
func canSee(actor domain.Actor, target *domain.User, manage bool) bool {
	if actor.UserID == target.UserID {
		return true
	}
	switch actor.Role {
	case domain.RoleSuperAdmin:
		return true
	case domain.RoleBankAdmin:
		return target.BankID != nil && actor.InBank(*target.BankID)
	case domain.RoleAgent:
		return false
	default:
		return !manage && target.BankID != nil && actor.InBank(*target.BankID)
	}
}

func (s *userService) GetUserByID(ctx context.Context, actor domain.Actor, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !canSee(actor, user, false) {
		return nil, apperrors.NewForbiddenError("cannot read this user")
	}
	return user, nil
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.userRepo.FindUserByUsername(ctx, username)
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.userRepo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *userService) ListUsers(ctx context.Context, actor domain.Actor, params dto.ListUsersParams) ([]domain.User, error) {
	bankID := params.BankID
	switch actor.Role {
	case domain.RoleSuperAdmin:
	case domain.RoleBankAdmin:
		if bankID != nil && !actor.InBank(*bankID) {
			return nil, apperrors.NewForbiddenError("cannot list users of another bank")
		}
		bankID = actor.BankID
	default:
		return nil, apperrors.NewForbiddenError("role " + string(actor.Role) + " cannot list users")
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	users, err := s.userRepo.FindUsers(ctx, bankID, limit, params.Offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list users")
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (s *userService) UpdateUser(ctx context.Context, actor domain.Actor, userID string, req dto.UpdateUserRequest) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !canSee(actor, user, true) {
		return nil, apperrors.NewForbiddenError("cannot update this user")
	}

	changed := false
	if req.Name != nil && *req.Name != user.Name {
		user.Name = *req.Name
		changed = true
	}
	if !changed {
		return user, nil
	}

	user.LastUpdatedAt = time.Now().UTC()
	user.LastUpdatedBy = actor.UserID
	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	return s.userRepo.UpdateRefreshToken(ctx, userID, refreshTokenHash, refreshTokenExpiryTime)
}

func (s *userService) ClearRefreshToken(ctx context.Context, userID string) error {
	return s.userRepo.ClearRefreshToken(ctx, userID)
}

func (s *userService) DeleteUser(ctx context.Context, actor domain.Actor, userID string) error {
	if actor.UserID == userID {
		return apperrors.NewForbiddenError("users cannot delete themselves")
	}
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if actor.Role == domain.RoleAgent || !canSee(actor, user, true) {
		return apperrors.NewForbiddenError("cannot delete this user")
	}
	if err := s.userRepo.MarkUserDeleted(ctx, userID, time.Now().UTC(), actor.UserID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if s.roles != nil {
		s.roles.Invalidate(userID)
	}
	s.LogInfo(ctx, "User deleted", slog.String("user_id", userID))
	return nil
}

func (s *userService) AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user.DeletedAt != nil || user.PasswordHash == "" || !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrUnauthorized
	}
	return user, nil
}
