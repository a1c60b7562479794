package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/agent_onboarding_portal/internal/apperrors"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/SscSPs/agent_onboarding_portal/internal/dto"
	"github.com/SscSPs/agent_onboarding_portal/internal/handlers"
	"github.com/SscSPs/agent_onboarding_portal/internal/middleware"
	"github.com/SscSPs/agent_onboarding_portal/internal/platform/config"
	"github.com/SscSPs/agent_onboarding_portal/internal/utils/onboarding"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type RequestHandlerTestSuite struct {
	suite.Suite
	router    *gin.Engine
	jwtSecret string
	roles     *MockRoleProvider
	requests  *MockRequestService
	workflow  *MockWorkflowService
	documents *MockDocumentService
	users     *MockUserService
	apiTokens *MockAPITokenService
	agent     domain.Actor
}

func strPtr(s string) *string { return &s }

// generateTestToken creates a signed access token for userID.
func (s *RequestHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "onboarding-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		s.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (s *RequestHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.jwtSecret = "test-secret-key-that-is-long-enough"
	s.roles = new(MockRoleProvider)
	s.requests = new(MockRequestService)
	s.workflow = new(MockWorkflowService)
	s.documents = new(MockDocumentService)
	s.users = new(MockUserService)
	s.apiTokens = new(MockAPITokenService)
	s.agent = domain.Actor{
		UserID:   uuid.NewString(),
		Role:     domain.RoleAgent,
		BankID:   strPtr("bank-1"),
		AgencyID: strPtr("agency-1"),
	}

	cfg := &config.Config{
		JWTSecret:              s.jwtSecret,
		RefreshTokenCookieName: "rtid",
		RefreshTokenCookiePath: "/api/v1/auth",
		LoginRateLimit:         "2-M",
		MaxUploadBytes:         1024,
		UploadRateLimit:        "2-M",
		IsProduction:           true,
	}
	container := &portssvc.ServiceContainer{
		User:         s.users,
		APIToken:     s.apiTokens,
		RoleProvider: s.roles,
		Request:      s.requests,
		Workflow:     s.workflow,
		Document:     s.documents,
	}

	s.router = gin.New()
	handlers.RegisterRoutes(s.router, cfg, container)
}

func (s *RequestHandlerTestSuite) do(method, path string, body []byte, contentType string, actor *domain.Actor) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if actor != nil {
		s.roles.On("ResolveActor", mock.Anything, actor.UserID).Return(*actor, nil)
		req.Header.Set("Authorization", "Bearer "+s.generateTestToken(actor.UserID))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RequestHandlerTestSuite) decodeError(w *httptest.ResponseRecorder) handlers.ErrorResponse {
	var body handlers.ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func draftRequest(agent domain.Actor) *domain.OnboardingRequest {
	now := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	return &domain.OnboardingRequest{
		RequestID: "req-1",
		BankID:    *agent.BankID,
		AgencyID:  *agent.AgencyID,
		AgentID:   agent.UserID,
		Status:    domain.StatusDraft,
		PersonalInfo: &domain.PersonalInfo{
			FirstName: "Ada",
			Surname:   "Lovelace",
		},
		AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now, Version: 1},
	}
}

func (s *RequestHandlerTestSuite) TestCreateRequest_Success() {
	body := []byte(`{"personalInfo":{"firstName":"Ada","surname":"Lovelace"}}`)
	s.requests.On("CreateRequest", mock.Anything, s.agent, mock.MatchedBy(func(req dto.CreateOnboardingRequest) bool {
		return len(req.PersonalInfo) > 0 && req.BusinessInfo == nil
	})).Return(draftRequest(s.agent), nil).Once()

	w := s.do(http.MethodPost, "/api/v1/requests", body, "application/json", &s.agent)

	s.Equal(http.StatusCreated, w.Code)
	var resp dto.OnboardingRequestResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("req-1", resp.RequestID)
	s.Equal(domain.StatusDraft, resp.Status)
	s.Contains(w.Body.String(), `"status":"DRAFT"`)
	s.NotNil(resp.Shareholders)
	s.requests.AssertExpectations(s.T())
}

func (s *RequestHandlerTestSuite) TestCreateRequest_RequiresAuthentication() {
	w := s.do(http.MethodPost, "/api/v1/requests", []byte(`{}`), "application/json", nil)

	s.Equal(http.StatusUnauthorized, w.Code)
	s.requests.AssertNotCalled(s.T(), "CreateRequest", mock.Anything, mock.Anything, mock.Anything)
}

func (s *RequestHandlerTestSuite) TestCreateRequest_OtherTenantIsForbidden() {
	s.requests.On("CreateRequest", mock.Anything, s.agent, mock.Anything).
		Return(nil, apperrors.NewForbiddenError("agency does not belong to the caller's bank")).Once()

	w := s.do(http.MethodPost, "/api/v1/requests", []byte(`{"personalInfo":{}}`), "application/json", &s.agent)

	s.Equal(http.StatusForbidden, w.Code)
	body := s.decodeError(w)
	s.Equal("FORBIDDEN", body.Code)
	s.Equal("agency does not belong to the caller's bank", body.Error)
}

func (s *RequestHandlerTestSuite) TestListRequests_BindsQuery() {
	next := "tok"
	s.requests.On("ListRequests", mock.Anything, s.agent, mock.MatchedBy(func(p dto.ListRequestsParams) bool {
		return p.Limit == 5 && p.Status != nil && *p.Status == "CTO_REVIEW" && p.NextToken == nil
	})).Return(&dto.ListRequestsResponse{
		Requests:  []dto.OnboardingRequestResponse{dto.ToOnboardingRequestResponse(draftRequest(s.agent))},
		NextToken: &next,
	}, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/requests?limit=5&status=CTO_REVIEW", nil, "", &s.agent)

	s.Equal(http.StatusOK, w.Code)
	var resp dto.ListRequestsResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Len(resp.Requests, 1)
	s.Require().NotNil(resp.NextToken)
	s.Equal("tok", *resp.NextToken)
}

func (s *RequestHandlerTestSuite) TestGetRequest_NotFound() {
	s.requests.On("GetRequest", mock.Anything, s.agent, "missing").
		Return(nil, apperrors.NewNotFoundError("onboarding request missing not found")).Once()

	w := s.do(http.MethodGet, "/api/v1/requests/missing", nil, "", &s.agent)

	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("NOT_FOUND", s.decodeError(w).Code)
}

func (s *RequestHandlerTestSuite) TestUpdateSections_VersionMismatchIsConflict() {
	s.requests.On("UpdateSections", mock.Anything, s.agent, "req-1", mock.MatchedBy(func(r dto.UpdateSectionsRequest) bool {
		return r.Version == 3
	})).Return(nil, apperrors.NewWorkflowError(apperrors.ErrConcurrentModification, "DRAFT", "", "version 3 is stale")).Once()

	w := s.do(http.MethodPut, "/api/v1/requests/req-1", []byte(`{"version":3,"businessInfo":{}}`), "application/json", &s.agent)

	s.Equal(http.StatusConflict, w.Code)
	s.Equal("CONCURRENT_MODIFICATION", s.decodeError(w).Code)
}

func (s *RequestHandlerTestSuite) TestUpdateSections_MissingVersion() {
	w := s.do(http.MethodPut, "/api/v1/requests/req-1", []byte(`{"businessInfo":{}}`), "application/json", &s.agent)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("VALIDATION", s.decodeError(w).Code)
	s.requests.AssertNotCalled(s.T(), "UpdateSections", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *RequestHandlerTestSuite) TestApplyAction_IncompleteSubmissionListsFieldErrors() {
	wfErr := apperrors.NewWorkflowError(apperrors.ErrIncompleteSubmission, "DRAFT", "SUBMITTED", "")
	wfErr.FieldErrors = []apperrors.FieldError{
		{Field: "businessInfo", Message: "business info is required"},
		{Field: "documents.signature", Message: "at least one signature is required"},
	}
	s.workflow.On("Apply", mock.Anything, s.agent, "req-1", "submit", (*string)(nil)).Return(nil, wfErr).Once()

	w := s.do(http.MethodPost, "/api/v1/requests/req-1/actions/submit", nil, "", &s.agent)

	s.Equal(http.StatusUnprocessableEntity, w.Code)
	body := s.decodeError(w)
	s.Equal("INCOMPLETE_SUBMISSION", body.Code)
	s.Equal("DRAFT", body.From)
	s.Equal("SUBMITTED", body.To)
	s.Len(body.FieldErrors, 2)
	s.workflow.AssertExpectations(s.T())
}

func (s *RequestHandlerTestSuite) TestApplyAction_RoleNotAllowed() {
	s.workflow.On("Apply", mock.Anything, s.agent, "req-1", "approve", (*string)(nil)).
		Return(nil, apperrors.NewWorkflowError(apperrors.ErrTransitionUnauthorized, "CTO_REVIEW", "CTO_N2_REVIEW", "")).Once()

	w := s.do(http.MethodPost, "/api/v1/requests/req-1/actions/approve", nil, "", &s.agent)

	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("TRANSITION_UNAUTHORIZED", s.decodeError(w).Code)
}

func (s *RequestHandlerTestSuite) TestApplyAction_WithComment() {
	staff := domain.Actor{UserID: uuid.NewString(), Role: domain.RoleBankStaff, BankID: strPtr("bank-1")}
	req := draftRequest(s.agent)
	req.Status = domain.StatusCorrectionN0
	prev := domain.StatusSubmitted
	comment := "IBAN is unreadable"
	s.workflow.On("Apply", mock.Anything, staff, "req-1", "request_corrections", mock.MatchedBy(func(c *string) bool {
		return c != nil && *c == comment
	})).Return(&portssvc.TransitionResult{
		Request: *req,
		Entry: domain.StatusHistoryEntry{
			EntryID:        "entry-1",
			RequestID:      "req-1",
			PreviousStatus: &prev,
			Status:         domain.StatusCorrectionN0,
			Action:         "request_corrections",
			UserID:         staff.UserID,
			Role:           staff.Role,
			Comment:        &comment,
		},
	}, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/requests/req-1/actions/request_corrections",
		[]byte(`{"comment":"IBAN is unreadable"}`), "application/json", &staff)

	s.Equal(http.StatusOK, w.Code)
	var resp dto.TransitionResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(domain.StatusCorrectionN0, resp.Request.Status)
	s.Equal("request_corrections", resp.Entry.Action)
	s.Require().NotNil(resp.Entry.PreviousStatus)
	s.Equal(domain.StatusSubmitted, *resp.Entry.PreviousStatus)
}

func (s *RequestHandlerTestSuite) TestTransitionTo_UnknownStatusCode() {
	w := s.do(http.MethodPost, "/api/v1/requests/req-1/transitions", []byte(`{"targetStatus":"NOT_A_STATUS"}`), "application/json", &s.agent)

	s.Equal(http.StatusBadRequest, w.Code)
	body := s.decodeError(w)
	s.Equal("VALIDATION", body.Code)
	s.Require().Len(body.FieldErrors, 1)
	s.Equal("targetStatus", body.FieldErrors[0].Field)
	s.workflow.AssertNotCalled(s.T(), "TransitionTo", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *RequestHandlerTestSuite) TestTransitionTo_TerminalState() {
	s.workflow.On("TransitionTo", mock.Anything, s.agent, "req-1", domain.StatusCTOReview, (*string)(nil)).
		Return(nil, apperrors.NewWorkflowError(apperrors.ErrTerminalState, "CLOSED", "CTO_REVIEW", "")).Once()

	w := s.do(http.MethodPost, "/api/v1/requests/req-1/transitions", []byte(`{"targetStatus":"CTO_REVIEW"}`), "application/json", &s.agent)

	s.Equal(http.StatusConflict, w.Code)
	s.Equal("TERMINAL_STATE", s.decodeError(w).Code)
}

func (s *RequestHandlerTestSuite) TestReadiness() {
	s.requests.On("CheckReadiness", mock.Anything, s.agent, "req-1").Return(onboardingResult(), nil).Once()

	w := s.do(http.MethodGet, "/api/v1/requests/req-1/readiness", nil, "", &s.agent)

	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"valid":false`)
	s.Contains(w.Body.String(), "personalInfo.email")
}

func onboardingResult() onboarding.Result {
	return onboarding.Result{
		Valid:  false,
		Errors: []apperrors.FieldError{{Field: "personalInfo.email", Message: "must be a valid email"}},
	}
}

func multipartBody(s *RequestHandlerTestSuite, filename string, content []byte) ([]byte, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	s.Require().NoError(err)
	_, err = part.Write(content)
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

func (s *RequestHandlerTestSuite) TestUploadDocument_Success() {
	body, contentType := multipartBody(s, "id.png", []byte("\x89PNG\r\n\x1a\n0000"))
	s.documents.On("UploadDocument", mock.Anything, s.agent, "req-1", domain.DocIdentityDocument, "id.png", mock.Anything).
		Return(&domain.StoredDocument{
			Reference:        uuid.NewString(),
			RequestID:        "req-1",
			Category:         domain.DocIdentityDocument,
			OriginalFilename: "id.png",
			ContentType:      "image/png",
			Size:             12,
		}, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/requests/req-1/documents/identityDocument", body, contentType, &s.agent)

	s.Equal(http.StatusCreated, w.Code)
	var doc domain.StoredDocument
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &doc))
	s.Equal("image/png", doc.ContentType)
	s.documents.AssertExpectations(s.T())
}

func (s *RequestHandlerTestSuite) TestUploadDocument_UnknownCategory() {
	body, contentType := multipartBody(s, "id.png", []byte("png"))

	w := s.do(http.MethodPost, "/api/v1/requests/req-1/documents/selfie", body, contentType, &s.agent)

	s.Equal(http.StatusBadRequest, w.Code)
	s.documents.AssertNotCalled(s.T(), "UploadDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *RequestHandlerTestSuite) TestUploadDocument_BodyOverLimit() {
	body, contentType := multipartBody(s, "scan.pdf", bytes.Repeat([]byte("a"), 2<<20))

	w := s.do(http.MethodPost, "/api/v1/requests/req-1/documents/proofOfResidence", body, contentType, &s.agent)

	s.Equal(http.StatusRequestEntityTooLarge, w.Code)
	s.documents.AssertNotCalled(s.T(), "UploadDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *RequestHandlerTestSuite) TestUploadDocument_UnsupportedType() {
	body, contentType := multipartBody(s, "notes.txt", []byte("plain text"))
	s.documents.On("UploadDocument", mock.Anything, s.agent, "req-1", domain.DocSignature, "notes.txt", mock.Anything).
		Return(nil, apperrors.ErrUnsupportedMediaType).Once()

	w := s.do(http.MethodPost, "/api/v1/requests/req-1/documents/signature", body, contentType, &s.agent)

	s.Equal(http.StatusUnsupportedMediaType, w.Code)
}

func (s *RequestHandlerTestSuite) TestUploadDocument_RateLimitedPerUser() {
	body, contentType := multipartBody(s, "id.png", []byte("png"))

	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/requests/req-1/documents/selfie", body, contentType, &s.agent).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/requests/req-1/documents/selfie", body, contentType, &s.agent).Code)
	w := s.do(http.MethodPost, "/api/v1/requests/req-1/documents/selfie", body, contentType, &s.agent)

	s.Equal(http.StatusTooManyRequests, w.Code)
	s.Equal("0", w.Header().Get("X-RateLimit-Remaining"))
}

func (s *RequestHandlerTestSuite) TestAPIKeyActsAsOwner() {
	owner := &domain.User{UserID: uuid.NewString(), Role: domain.RoleBankStaff, BankID: strPtr("bank-1")}
	s.apiTokens.On("ValidateToken", mock.Anything, "good-key").Return(owner, nil).Once()
	s.roles.On("ResolveActor", mock.Anything, owner.UserID).Return(owner.Actor(), nil).Once()
	s.requests.On("GetRequest", mock.Anything, owner.Actor(), "req-1").Return(draftRequest(s.agent), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/requests/req-1", nil)
	req.Header.Set(middleware.APIKeyHeader, "good-key")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	s.requests.AssertExpectations(s.T())
}

func (s *RequestHandlerTestSuite) TestInvalidAPIKeyIsRejected() {
	s.apiTokens.On("ValidateToken", mock.Anything, "bad-key").Return(nil, apperrors.ErrUnauthorized).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/requests", nil)
	req.Header.Set(middleware.APIKeyHeader, "bad-key")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusUnauthorized, w.Code)
	s.roles.AssertNotCalled(s.T(), "ResolveActor", mock.Anything, mock.Anything)
}

func (s *RequestHandlerTestSuite) TestLogin_InvalidCredentialsThenRateLimited() {
	s.users.On("AuthenticateUser", mock.Anything, "agent1", "wrong").Return(nil, apperrors.ErrUnauthorized).Twice()

	login := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"agent1","password":"wrong"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return w
	}

	first := login()
	s.Equal(http.StatusUnauthorized, first.Code)
	s.Equal("Invalid username or password", s.decodeError(first).Error)
	s.Equal(http.StatusUnauthorized, login().Code)
	s.Equal(http.StatusTooManyRequests, login().Code)
	s.users.AssertExpectations(s.T())
}

func TestRequestHandler(t *testing.T) {
	suite.Run(t, new(RequestHandlerTestSuite))
}
