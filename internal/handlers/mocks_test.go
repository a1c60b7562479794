package handlers_test

import (
	"context"
	"io"
	"time"

	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/workflow"
	"github.com/SscSPs/agent_onboarding_portal/internal/dto"
	"github.com/SscSPs/agent_onboarding_portal/internal/utils/onboarding"
	"github.com/stretchr/testify/mock"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

// --- Mock RoleProvider ---
type MockRoleProvider struct {
	mock.Mock
}

func (m *MockRoleProvider) ResolveActor(ctx context.Context, userID string) (domain.Actor, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Actor), args.Error(1)
}

func (m *MockRoleProvider) Invalidate(userID string) {
	m.Called(userID)
}

var _ portssvc.RoleProviderSvc = (*MockRoleProvider)(nil)

// --- Mock OnboardingRequestService ---
type MockRequestService struct {
	mock.Mock
}

func (m *MockRequestService) GetRequest(ctx context.Context, actor domain.Actor, requestID string) (*domain.OnboardingRequest, error) {
	args := m.Called(ctx, actor, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OnboardingRequest), args.Error(1)
}

func (m *MockRequestService) ListRequests(ctx context.Context, actor domain.Actor, params dto.ListRequestsParams) (*dto.ListRequestsResponse, error) {
	args := m.Called(ctx, actor, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListRequestsResponse), args.Error(1)
}

func (m *MockRequestService) ListHistory(ctx context.Context, actor domain.Actor, requestID string) ([]domain.StatusHistoryEntry, error) {
	args := m.Called(ctx, actor, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StatusHistoryEntry), args.Error(1)
}

func (m *MockRequestService) CheckReadiness(ctx context.Context, actor domain.Actor, requestID string) (onboarding.Result, error) {
	args := m.Called(ctx, actor, requestID)
	return args.Get(0).(onboarding.Result), args.Error(1)
}

func (m *MockRequestService) CreateRequest(ctx context.Context, actor domain.Actor, req dto.CreateOnboardingRequest) (*domain.OnboardingRequest, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OnboardingRequest), args.Error(1)
}

func (m *MockRequestService) UpdateSections(ctx context.Context, actor domain.Actor, requestID string, req dto.UpdateSectionsRequest) (*domain.OnboardingRequest, error) {
	args := m.Called(ctx, actor, requestID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OnboardingRequest), args.Error(1)
}

var _ portssvc.OnboardingRequestSvcFacade = (*MockRequestService)(nil)

// --- Mock WorkflowService ---
type MockWorkflowService struct {
	mock.Mock
}

func (m *MockWorkflowService) Apply(ctx context.Context, actor domain.Actor, requestID, action string, comment *string) (*portssvc.TransitionResult, error) {
	args := m.Called(ctx, actor, requestID, action, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.TransitionResult), args.Error(1)
}

func (m *MockWorkflowService) TransitionTo(ctx context.Context, actor domain.Actor, requestID string, target domain.RequestStatus, comment *string) (*portssvc.TransitionResult, error) {
	args := m.Called(ctx, actor, requestID, target, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.TransitionResult), args.Error(1)
}

func (m *MockWorkflowService) AvailableActions(ctx context.Context, actor domain.Actor, requestID string) (domain.RequestStatus, []workflow.Transition, error) {
	args := m.Called(ctx, actor, requestID)
	var transitions []workflow.Transition
	if args.Get(1) != nil {
		transitions = args.Get(1).([]workflow.Transition)
	}
	return args.Get(0).(domain.RequestStatus), transitions, args.Error(2)
}

func (m *MockWorkflowService) Statuses() []workflow.StatusDefinition {
	args := m.Called()
	return args.Get(0).([]workflow.StatusDefinition)
}

var _ portssvc.WorkflowSvc = (*MockWorkflowService)(nil)

// --- Mock DocumentService ---
type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) UploadDocument(ctx context.Context, actor domain.Actor, requestID string, category domain.DocumentCategory, filename string, content io.Reader) (*domain.StoredDocument, error) {
	args := m.Called(ctx, actor, requestID, category, filename, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StoredDocument), args.Error(1)
}

func (m *MockDocumentService) OpenDocument(ctx context.Context, actor domain.Actor, reference string) (*domain.StoredDocument, io.ReadCloser, error) {
	args := m.Called(ctx, actor, reference)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.StoredDocument), args.Get(1).(io.ReadCloser), args.Error(2)
}

var _ portssvc.DocumentSvc = (*MockDocumentService)(nil)

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserByID(ctx context.Context, actor domain.Actor, userID string) (*domain.User, error) {
	args := m.Called(ctx, actor, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, actor domain.Actor, params dto.ListUsersParams) ([]domain.User, error) {
	args := m.Called(ctx, actor, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserService) CreateUser(ctx context.Context, actor domain.Actor, req dto.CreateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, actor domain.Actor, userID string, req dto.UpdateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, actor, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	return m.Called(ctx, userID, refreshTokenHash, refreshTokenExpiryTime).Error(0)
}

func (m *MockUserService) ClearRefreshToken(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockUserService) DeleteUser(ctx context.Context, actor domain.Actor, userID string) error {
	return m.Called(ctx, actor, userID).Error(0)
}

func (m *MockUserService) AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

// --- Mock APITokenService ---
type MockAPITokenService struct {
	mock.Mock
}

func (m *MockAPITokenService) CreateToken(ctx context.Context, userID, name string, expiresIn *time.Duration) (string, *domain.APIToken, error) {
	args := m.Called(ctx, userID, name, expiresIn)
	if args.Get(1) == nil {
		return "", nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*domain.APIToken), args.Error(2)
}

func (m *MockAPITokenService) ListTokens(ctx context.Context, userID string) ([]domain.APIToken, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.APIToken), args.Error(1)
}

func (m *MockAPITokenService) RevokeToken(ctx context.Context, userID, tokenID string) error {
	return m.Called(ctx, userID, tokenID).Error(0)
}

func (m *MockAPITokenService) RevokeAllTokens(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockAPITokenService) ValidateToken(ctx context.Context, tokenString string) (*domain.User, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAPITokenService) PurgeExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

var _ portssvc.APITokenSvc = (*MockAPITokenService)(nil)

// --- Mock GoogleOAuthService ---
type MockGoogleOAuthService struct {
	mock.Mock
}

func (m *MockGoogleOAuthService) GenerateStateString(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockGoogleOAuthService) GetGoogleLoginURL(ctx context.Context, state string) string {
	return m.Called(ctx, state).String(0)
}

func (m *MockGoogleOAuthService) ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth2.Token), args.Error(1)
}

func (m *MockGoogleOAuthService) GetUserInfo(ctx context.Context, token *oauth2.Token) (*domain.GoogleUserInfo, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GoogleUserInfo), args.Error(1)
}

func (m *MockGoogleOAuthService) ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error) {
	args := m.Called(ctx, idTokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*idtoken.Payload), args.Error(1)
}

var _ portssvc.GoogleOAuthHandlerSvcFacade = (*MockGoogleOAuthService)(nil)

// --- Mock TokenService ---
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) ValidateAndParseRefreshToken(ctx context.Context, userID string, refreshTokenString string) (*domain.User, error) {
	args := m.Called(ctx, userID, refreshTokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

var _ portssvc.TokenSvcFacade = (*MockTokenService)(nil)
