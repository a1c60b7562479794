package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/SscSPs/agent_onboarding_portal/internal/dto"
	"github.com/SscSPs/agent_onboarding_portal/internal/handlers"
	"github.com/SscSPs/agent_onboarding_portal/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/oauth2"
)

type GoogleOAuthHandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
	google *MockGoogleOAuthService
	users  *MockUserService
	tokens *MockTokenService
}

func (s *GoogleOAuthHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.google = new(MockGoogleOAuthService)
	s.users = new(MockUserService)
	s.tokens = new(MockTokenService)

	cfg := &config.Config{
		JWTSecret:              "test-secret-key-that-is-long-enough",
		RefreshTokenCookieName: "rtid",
		RefreshTokenCookiePath: "/api/v1/auth",
		LoginRateLimit:         "10-M",
		UploadRateLimit:        "10-M",
		IsProduction:           true,
	}
	container := &portssvc.ServiceContainer{
		User:        s.users,
		Token:       s.tokens,
		GoogleOAuth: s.google,
		APIToken:    new(MockAPITokenService),
	}
	s.router = gin.New()
	handlers.RegisterRoutes(s.router, cfg, container)
}

func (s *GoogleOAuthHandlerTestSuite) exchange(req dto.ExchangeCodeRequest, stateCookie string) *httptest.ResponseRecorder {
	body, err := json.Marshal(req)
	s.Require().NoError(err)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/google/exchange-code", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	if stateCookie != "" {
		r.AddCookie(&http.Cookie{Name: "oauth_state", Value: stateCookie})
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, r)
	return w
}

func (s *GoogleOAuthHandlerTestSuite) TestLoginRedirectsWithStateCookie() {
	s.google.On("GenerateStateString", mock.Anything).Return("st8", nil)
	s.google.On("GetGoogleLoginURL", mock.Anything, "st8").Return("https://accounts.google.com/o/oauth2/auth?state=st8")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/login", nil))

	s.Equal(http.StatusTemporaryRedirect, w.Code)
	s.Equal("https://accounts.google.com/o/oauth2/auth?state=st8", w.Header().Get("Location"))
	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "oauth_state" {
			found = true
			s.Equal("st8", c.Value)
			s.True(c.HttpOnly)
			s.True(c.Secure)
		}
	}
	s.True(found, "state cookie should be set")
}

func (s *GoogleOAuthHandlerTestSuite) TestExchange_StateMismatch() {
	w := s.exchange(dto.ExchangeCodeRequest{Code: "code", State: "other"}, "st8")

	s.Equal(http.StatusBadRequest, w.Code)
	s.google.AssertNotCalled(s.T(), "ExchangeCodeForToken", mock.Anything, mock.Anything)
}

func (s *GoogleOAuthHandlerTestSuite) TestExchange_FallsBackToUserInfo() {
	token := &oauth2.Token{AccessToken: "google-access"}
	user := &domain.User{UserID: "user-1", Email: "agent@bank.test", Role: domain.RoleAgent}
	s.google.On("ExchangeCodeForToken", mock.Anything, "code").Return(token, nil)
	s.google.On("GetUserInfo", mock.Anything, token).
		Return(&domain.GoogleUserInfo{ID: "g-1", Email: "agent@bank.test", VerifiedEmail: true}, nil)
	s.users.On("GetUserByEmail", mock.Anything, "agent@bank.test").Return(user, nil)
	s.tokens.On("GenerateAccessToken", mock.Anything, user).Return("signed-jwt", time.Now().Add(time.Hour), nil)

	w := s.exchange(dto.ExchangeCodeRequest{Code: "code", State: "st8"}, "st8")

	s.Require().Equal(http.StatusOK, w.Code)
	var resp dto.LoginResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("signed-jwt", resp.Token)
	s.google.AssertNotCalled(s.T(), "ValidateGoogleIDToken", mock.Anything, mock.Anything)
}

func (s *GoogleOAuthHandlerTestSuite) TestExchange_UnverifiedEmail() {
	token := &oauth2.Token{AccessToken: "google-access"}
	s.google.On("ExchangeCodeForToken", mock.Anything, "code").Return(token, nil)
	s.google.On("GetUserInfo", mock.Anything, token).
		Return(&domain.GoogleUserInfo{ID: "g-1", Email: "agent@bank.test"}, nil)

	w := s.exchange(dto.ExchangeCodeRequest{Code: "code"}, "")

	s.Equal(http.StatusUnauthorized, w.Code)
	s.users.AssertNotCalled(s.T(), "GetUserByEmail", mock.Anything, mock.Anything)
}

func TestGoogleOAuthHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GoogleOAuthHandlerTestSuite))
}
