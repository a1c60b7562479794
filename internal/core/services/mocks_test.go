package services_test

import (
	"context"
	"io"
	"time"

	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// fakeTx stands in for a live transaction. Repositories are mocked, so it is never used.
type fakeTx struct{ pgx.Tx }

// --- Mock OnboardingRequestRepositoryWithTx ---
type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	var tx pgx.Tx
	if args.Get(0) != nil {
		tx = args.Get(0).(pgx.Tx)
	}
	return tx, args.Error(1)
}

func (m *MockRequestRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockRequestRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockRequestRepository) FindRequestByID(ctx context.Context, requestID string) (*domain.OnboardingRequest, error) {
	args := m.Called(ctx, requestID)
	var req *domain.OnboardingRequest
	if args.Get(0) != nil {
		req = args.Get(0).(*domain.OnboardingRequest)
	}
	return req, args.Error(1)
}

func (m *MockRequestRepository) ListRequests(ctx context.Context, filter domain.RequestFilter, limit int, nextToken *string) ([]domain.OnboardingRequest, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	var reqs []domain.OnboardingRequest
	if args.Get(0) != nil {
		reqs = args.Get(0).([]domain.OnboardingRequest)
	}
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	return reqs, next, args.Error(2)
}

func (m *MockRequestRepository) ListRequestsForExport(ctx context.Context, bankID string) ([]domain.OnboardingRequest, error) {
	args := m.Called(ctx, bankID)
	var reqs []domain.OnboardingRequest
	if args.Get(0) != nil {
		reqs = args.Get(0).([]domain.OnboardingRequest)
	}
	return reqs, args.Error(1)
}

func (m *MockRequestRepository) ListStatusHistory(ctx context.Context, requestID string) ([]domain.StatusHistoryEntry, error) {
	args := m.Called(ctx, requestID)
	var entries []domain.StatusHistoryEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.StatusHistoryEntry)
	}
	return entries, args.Error(1)
}

func (m *MockRequestRepository) ListStatusHistoryForRequests(ctx context.Context, requestIDs []string) (map[string][]domain.StatusHistoryEntry, error) {
	args := m.Called(ctx, requestIDs)
	var entries map[string][]domain.StatusHistoryEntry
	if args.Get(0) != nil {
		entries = args.Get(0).(map[string][]domain.StatusHistoryEntry)
	}
	return entries, args.Error(1)
}

func (m *MockRequestRepository) SaveRequestWithHistory(ctx context.Context, req domain.OnboardingRequest, entry domain.StatusHistoryEntry) error {
	return m.Called(ctx, req, entry).Error(0)
}

func (m *MockRequestRepository) FindRequestByIDForUpdate(ctx context.Context, tx pgx.Tx, requestID string) (*domain.OnboardingRequest, error) {
	args := m.Called(ctx, tx, requestID)
	var req *domain.OnboardingRequest
	if args.Get(0) != nil {
		req = args.Get(0).(*domain.OnboardingRequest)
	}
	return req, args.Error(1)
}

func (m *MockRequestRepository) FindRequestByIDForShare(ctx context.Context, tx pgx.Tx, requestID string) (*domain.OnboardingRequest, error) {
	args := m.Called(ctx, tx, requestID)
	var req *domain.OnboardingRequest
	if args.Get(0) != nil {
		req = args.Get(0).(*domain.OnboardingRequest)
	}
	return req, args.Error(1)
}

func (m *MockRequestRepository) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, requestID string, status domain.RequestStatus, expectedVersion int64, submittedAt *time.Time, userID string, now time.Time) error {
	return m.Called(ctx, tx, requestID, status, expectedVersion, submittedAt, userID, now).Error(0)
}

func (m *MockRequestRepository) UpdateSectionsInTx(ctx context.Context, tx pgx.Tx, req domain.OnboardingRequest, expectedVersion int64) error {
	return m.Called(ctx, tx, req, expectedVersion).Error(0)
}

func (m *MockRequestRepository) AppendHistoryInTx(ctx context.Context, tx pgx.Tx, entry domain.StatusHistoryEntry) error {
	return m.Called(ctx, tx, entry).Error(0)
}

// --- Mock FieldValidationRepositoryWithTx ---
type MockValidationRepository struct {
	mock.Mock
}

func (m *MockValidationRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	var tx pgx.Tx
	if args.Get(0) != nil {
		tx = args.Get(0).(pgx.Tx)
	}
	return tx, args.Error(1)
}

func (m *MockValidationRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockValidationRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockValidationRepository) ListValidations(ctx context.Context, requestID string) ([]domain.FieldValidation, error) {
	args := m.Called(ctx, requestID)
	var out []domain.FieldValidation
	if args.Get(0) != nil {
		out = args.Get(0).([]domain.FieldValidation)
	}
	return out, args.Error(1)
}

func (m *MockValidationRepository) ListRegisteredFields(ctx context.Context, requestID string) ([]string, error) {
	args := m.Called(ctx, requestID)
	var out []string
	if args.Get(0) != nil {
		out = args.Get(0).([]string)
	}
	return out, args.Error(1)
}

func (m *MockValidationRepository) SaveValidationInTx(ctx context.Context, tx pgx.Tx, validation domain.FieldValidation) error {
	return m.Called(ctx, tx, validation).Error(0)
}

func (m *MockValidationRepository) ListValidationsInTx(ctx context.Context, tx pgx.Tx, requestID string) ([]domain.FieldValidation, error) {
	args := m.Called(ctx, tx, requestID)
	var out []domain.FieldValidation
	if args.Get(0) != nil {
		out = args.Get(0).([]domain.FieldValidation)
	}
	return out, args.Error(1)
}

func (m *MockValidationRepository) RegisterFieldsInTx(ctx context.Context, tx pgx.Tx, requestID string, fieldIDs []string, now time.Time) error {
	return m.Called(ctx, tx, requestID, fieldIDs, now).Error(0)
}

func (m *MockValidationRepository) ListRegisteredFieldsInTx(ctx context.Context, tx pgx.Tx, requestID string) ([]string, error) {
	args := m.Called(ctx, tx, requestID)
	var out []string
	if args.Get(0) != nil {
		out = args.Get(0).([]string)
	}
	return out, args.Error(1)
}

// --- Mock DepositRepository ---
type MockDepositRepository struct {
	mock.Mock
}

func (m *MockDepositRepository) SaveDepositConfirmation(ctx context.Context, deposit domain.DepositConfirmation) (bool, error) {
	args := m.Called(ctx, deposit)
	return args.Bool(0), args.Error(1)
}

func (m *MockDepositRepository) FindDepositByRequestID(ctx context.Context, requestID string) (*domain.DepositConfirmation, error) {
	args := m.Called(ctx, requestID)
	var d *domain.DepositConfirmation
	if args.Get(0) != nil {
		d = args.Get(0).(*domain.DepositConfirmation)
	}
	return d, args.Error(1)
}

func (m *MockDepositRepository) HasDepositInTx(ctx context.Context, tx pgx.Tx, requestID string) (bool, error) {
	args := m.Called(ctx, tx, requestID)
	return args.Bool(0), args.Error(1)
}

// --- Mock DocumentRepository ---
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) SaveDocumentInTx(ctx context.Context, tx pgx.Tx, doc domain.StoredDocument) error {
	return m.Called(ctx, tx, doc).Error(0)
}

func (m *MockDocumentRepository) FindDocumentByReference(ctx context.Context, reference string) (*domain.StoredDocument, error) {
	args := m.Called(ctx, reference)
	var d *domain.StoredDocument
	if args.Get(0) != nil {
		d = args.Get(0).(*domain.StoredDocument)
	}
	return d, args.Error(1)
}

func (m *MockDocumentRepository) ListDocumentsByRequest(ctx context.Context, requestID string) ([]domain.StoredDocument, error) {
	args := m.Called(ctx, requestID)
	var out []domain.StoredDocument
	if args.Get(0) != nil {
		out = args.Get(0).([]domain.StoredDocument)
	}
	return out, args.Error(1)
}

// --- Mock BankRepositoryFacade ---
type MockBankRepository struct {
	mock.Mock
}

func (m *MockBankRepository) FindBankByID(ctx context.Context, bankID string) (*domain.Bank, error) {
	args := m.Called(ctx, bankID)
	var b *domain.Bank
	if args.Get(0) != nil {
		b = args.Get(0).(*domain.Bank)
	}
	return b, args.Error(1)
}

func (m *MockBankRepository) ListBanks(ctx context.Context, limit int, offset int) ([]domain.Bank, error) {
	args := m.Called(ctx, limit, offset)
	var out []domain.Bank
	if args.Get(0) != nil {
		out = args.Get(0).([]domain.Bank)
	}
	return out, args.Error(1)
}

func (m *MockBankRepository) FindAgencyByID(ctx context.Context, agencyID string) (*domain.Agency, error) {
	args := m.Called(ctx, agencyID)
	var a *domain.Agency
	if args.Get(0) != nil {
		a = args.Get(0).(*domain.Agency)
	}
	return a, args.Error(1)
}

func (m *MockBankRepository) ListAgenciesByBank(ctx context.Context, bankID string) ([]domain.Agency, error) {
	args := m.Called(ctx, bankID)
	var out []domain.Agency
	if args.Get(0) != nil {
		out = args.Get(0).([]domain.Agency)
	}
	return out, args.Error(1)
}

func (m *MockBankRepository) SaveBank(ctx context.Context, bank domain.Bank) error {
	return m.Called(ctx, bank).Error(0)
}

func (m *MockBankRepository) SaveAgency(ctx context.Context, agency domain.Agency) error {
	return m.Called(ctx, agency).Error(0)
}

// --- Mock EventPublisher ---
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event domain.NotificationEvent) {
	m.Called(ctx, event)
}

// --- Mock FileStore ---
type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Save(ctx context.Context, content io.Reader, originalName string) (*domain.StoredFile, error) {
	args := m.Called(ctx, content, originalName)
	var f *domain.StoredFile
	if args.Get(0) != nil {
		f = args.Get(0).(*domain.StoredFile)
	}
	return f, args.Error(1)
}

func (m *MockFileStore) Open(ctx context.Context, reference string) (io.ReadCloser, error) {
	args := m.Called(ctx, reference)
	var rc io.ReadCloser
	if args.Get(0) != nil {
		rc = args.Get(0).(io.ReadCloser)
	}
	return rc, args.Error(1)
}

func (m *MockFileStore) Delete(ctx context.Context, reference string) error {
	return m.Called(ctx, reference).Error(0)
}

func strPtr(s string) *string { return &s }

// completeRequest returns a request that passes the submission rules.
func completeRequest(id, bankID, agentID string, status domain.RequestStatus) *domain.OnboardingRequest {
	notUS := false
	address := domain.Address{Street: "12 rue de la Paix", City: "Paris", PostalCode: "75002", Country: "FR"}
	return &domain.OnboardingRequest{
		RequestID: id,
		BankID:    bankID,
		AgencyID:  "agency-1",
		AgentID:   agentID,
		Status:    status,
		PersonalInfo: &domain.PersonalInfo{
			Title: "madame", Surname: "Durand", FirstName: "Claire",
			Email: "claire.durand@example.com", Mobile: "0612345678", Address: address,
			BirthDate: "1985-04-12", BirthPlace: "Lyon", BirthCountry: "FR",
			Nationality: "FR", TaxResidence: "FR", IsUsCitizen: &notUS,
		},
		BusinessInfo: &domain.BusinessInfo{
			LegalForm: "SAS", Siret: "12345678901234", CompanyName: "Durand Conseil",
			IndustryCode: "6201Z", Address: address,
			ActivityDescription: "IT consulting services", ClientLocation: "France", ClientTypes: "B2B",
		},
		Shareholders: []domain.Shareholder{{
			Type: domain.ShareholderIndividual, OwnershipPercentage: decimal.NewFromInt(100),
			FirstName: "Claire", LastName: "Durand", BirthDate: "1985-04-12", Nationality: "FR",
		}},
		Documents: domain.Documents{
			ProofOfResidence: []string{"r1"}, IdentityDocument: []string{"i1"},
			Signature: []string{"s1"}, BankDetails: []string{"b1"},
		},
		AuditFields: domain.AuditFields{Version: 3, CreatedBy: agentID},
	}
}
