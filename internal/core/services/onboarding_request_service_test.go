package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/SscSPs/agent_onboarding_portal/internal/apperrors"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/services"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/workflow"
	"github.com/SscSPs/agent_onboarding_portal/internal/dto"
	"github.com/SscSPs/agent_onboarding_portal/internal/utils/onboarding"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type OnboardingRequestServiceTestSuite struct {
	suite.Suite
	ctx          context.Context
	tx           pgx.Tx
	requestRepo  *MockRequestRepository
	bankRepo     *MockBankRepository
	documentRepo *MockDocumentRepository
	service      portssvc.OnboardingRequestSvcFacade
}

func (s *OnboardingRequestServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.tx = fakeTx{}
	s.requestRepo = new(MockRequestRepository)
	s.bankRepo = new(MockBankRepository)
	s.documentRepo = new(MockDocumentRepository)
	s.service = services.NewOnboardingRequestService(s.requestRepo, s.bankRepo, s.documentRepo, workflow.MustDefault())
	s.requestRepo.On("Rollback", s.ctx, s.tx).Return(nil).Maybe()
}

func (s *OnboardingRequestServiceTestSuite) expectLocked(status domain.RequestStatus) *domain.OnboardingRequest {
	req := completeRequest("req-1", "bank-1", "agent-1", status)
	s.requestRepo.On("Begin", s.ctx).Return(s.tx, nil).Once()
	s.requestRepo.On("FindRequestByIDForUpdate", s.ctx, s.tx, "req-1").Return(req, nil).Once()
	return req
}

func (s *OnboardingRequestServiceTestSuite) expectUploads(docs ...domain.StoredDocument) {
	s.documentRepo.On("ListDocumentsByRequest", s.ctx, "req-1").Return(docs, nil).Once()
}

func upload(ref string, category domain.DocumentCategory) domain.StoredDocument {
	return domain.StoredDocument{Reference: ref, RequestID: "req-1", Category: category}
}

func documentsUpdate(version int64, documents string) dto.UpdateSectionsRequest {
	return dto.UpdateSectionsRequest{
		Version:         version,
		SectionsPayload: onboarding.SectionsPayload{Documents: json.RawMessage(documents)},
	}
}

func (s *OnboardingRequestServiceTestSuite) requireFieldError(err error, field, message string) {
	var verr *apperrors.ValidationError
	s.Require().ErrorAs(err, &verr)
	for _, fe := range verr.Errors {
		if fe.Field == field {
			s.Equal(message, fe.Message)
			return
		}
	}
	s.Failf("missing field error", "no error on %s in %v", field, verr.Errors)
}

func (s *OnboardingRequestServiceTestSuite) TestUpdateRejectsDocumentNeverUploaded() {
	s.expectLocked(domain.StatusDraft)
	s.expectUploads(upload("i1", domain.DocIdentityDocument), upload("s1", domain.DocSignature), upload("b1", domain.DocBankDetails))

	_, err := s.service.UpdateSections(s.ctx, agent("agent-1"), "req-1", documentsUpdate(3,
		`{"proofOfResidence":["never-uploaded"],"identityDocument":["i1"],"signature":["s1"],"bankDetails":["b1"]}`))

	s.requireFieldError(err, "documents.proofOfResidence.0", "is not a document uploaded for this request")
	s.requestRepo.AssertNotCalled(s.T(), "UpdateSectionsInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.requestRepo.AssertNotCalled(s.T(), "Commit", mock.Anything, mock.Anything)
}

func (s *OnboardingRequestServiceTestSuite) TestUpdateRejectsDocumentUnderAnotherCategory() {
	s.expectLocked(domain.StatusDraft)
	s.expectUploads(upload("i1", domain.DocIdentityDocument))

	_, err := s.service.UpdateSections(s.ctx, agent("agent-1"), "req-1", documentsUpdate(3,
		`{"proofOfResidence":[],"identityDocument":["i1"],"signature":["i1"],"bankDetails":[]}`))

	s.requireFieldError(err, "documents.signature.0", "was uploaded as identityDocument")
	s.requestRepo.AssertNotCalled(s.T(), "UpdateSectionsInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *OnboardingRequestServiceTestSuite) TestUpdateAcceptsUploadedDocuments() {
	s.expectLocked(domain.StatusDraft)
	s.expectUploads(upload("r1", domain.DocProofOfResidence), upload("r2", domain.DocProofOfResidence),
		upload("i1", domain.DocIdentityDocument))
	s.requestRepo.On("UpdateSectionsInTx", s.ctx, s.tx, mock.MatchedBy(func(r domain.OnboardingRequest) bool {
		return len(r.Documents.ProofOfResidence) == 1 && r.Documents.ProofOfResidence[0] == "r2" &&
			len(r.Documents.Signature) == 0 && r.PersonalInfo != nil && r.LastUpdatedBy == "agent-1"
	}), int64(3)).Return(nil).Once()
	s.requestRepo.On("Commit", s.ctx, s.tx).Return(nil).Once()

	got, err := s.service.UpdateSections(s.ctx, agent("agent-1"), "req-1", documentsUpdate(3,
		`{"proofOfResidence":["r2"],"identityDocument":["i1"],"signature":[],"bankDetails":[]}`))

	s.Require().NoError(err)
	s.Equal(int64(4), got.Version)
	s.requestRepo.AssertExpectations(s.T())
	s.documentRepo.AssertExpectations(s.T())
}

func (s *OnboardingRequestServiceTestSuite) TestUpdateOutsideEditableStatusConflicts() {
	s.expectLocked(domain.StatusSubmitted)

	_, err := s.service.UpdateSections(s.ctx, agent("agent-1"), "req-1", documentsUpdate(3,
		`{"proofOfResidence":["r1"],"identityDocument":[],"signature":[],"bankDetails":[]}`))

	s.ErrorIs(err, apperrors.ErrInvalidTransition)
	s.documentRepo.AssertNotCalled(s.T(), "ListDocumentsByRequest", mock.Anything, mock.Anything)
	s.requestRepo.AssertNotCalled(s.T(), "UpdateSectionsInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *OnboardingRequestServiceTestSuite) TestUpdateWithStaleVersion() {
	s.expectLocked(domain.StatusCorrectionN0)

	_, err := s.service.UpdateSections(s.ctx, agent("agent-1"), "req-1", documentsUpdate(2,
		`{"proofOfResidence":["r1"],"identityDocument":[],"signature":[],"bankDetails":[]}`))

	s.ErrorIs(err, apperrors.ErrConcurrentModification)
	s.requestRepo.AssertNotCalled(s.T(), "UpdateSectionsInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *OnboardingRequestServiceTestSuite) TestCreateRejectsDocumentReferences() {
	actor := agent("agent-1")
	actor.AgencyID = strPtr("agency-1")

	_, err := s.service.CreateRequest(s.ctx, actor, dto.CreateOnboardingRequest{
		SectionsPayload: onboarding.SectionsPayload{
			Documents: json.RawMessage(`{"proofOfResidence":["r1"],"identityDocument":[],"signature":[],"bankDetails":[]}`),
		},
	})

	s.requireFieldError(err, "documents.proofOfResidence.0", "is not a document uploaded for this request")
	s.requestRepo.AssertNotCalled(s.T(), "SaveRequestWithHistory", mock.Anything, mock.Anything, mock.Anything)
}

func (s *OnboardingRequestServiceTestSuite) TestCreateStartsInDraft() {
	actor := agent("agent-1")
	actor.AgencyID = strPtr("agency-1")
	s.bankRepo.On("FindAgencyByID", s.ctx, "agency-1").
		Return(&domain.Agency{AgencyID: "agency-1", BankID: "bank-1"}, nil).Once()
	s.requestRepo.On("SaveRequestWithHistory", s.ctx,
		mock.MatchedBy(func(r domain.OnboardingRequest) bool {
			return r.Status == domain.StatusDraft && r.AgentID == "agent-1" && r.BankID == "bank-1" &&
				r.Version == 1 && len(r.Documents.ProofOfResidence) == 0
		}),
		mock.MatchedBy(func(e domain.StatusHistoryEntry) bool {
			return e.Status == domain.StatusDraft && e.PreviousStatus == nil && e.Action == "create"
		})).Return(nil).Once()

	got, err := s.service.CreateRequest(s.ctx, actor, dto.CreateOnboardingRequest{
		SectionsPayload: onboarding.SectionsPayload{
			Documents: json.RawMessage(`{"proofOfResidence":[],"identityDocument":[],"signature":[],"bankDetails":[]}`),
		},
	})

	s.Require().NoError(err)
	s.Equal(domain.StatusDraft, got.Status)
	s.requestRepo.AssertExpectations(s.T())
}

func TestOnboardingRequestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OnboardingRequestServiceTestSuite))
}
