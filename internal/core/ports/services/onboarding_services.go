package services

import (
	"context"
	"io"

	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/workflow"
	"github.com/SscSPs/agent_onboarding_portal/internal/dto"
	"github.com/SscSPs/agent_onboarding_portal/internal/utils/onboarding"
)

// OnboardingRequestReaderSvc defines read operations for onboarding requests
type OnboardingRequestReaderSvc interface {
	// GetRequest retrieves a request the actor may see.
	GetRequest(ctx context.Context, actor domain.Actor, requestID string) (*domain.OnboardingRequest, error)

	// ListRequests retrieves a page of the requests the actor may see.
	ListRequests(ctx context.Context, actor domain.Actor, params dto.ListRequestsParams) (*dto.ListRequestsResponse, error)

	// ListHistory retrieves the status history of a request.
	ListHistory(ctx context.Context, actor domain.Actor, requestID string) ([]domain.StatusHistoryEntry, error)

	// CheckReadiness runs the submission rules against the stored payload without changing anything.
	CheckReadiness(ctx context.Context, actor domain.Actor, requestID string) (onboarding.Result, error)
}

// OnboardingRequestWriterSvc defines write operations for onboarding requests
type OnboardingRequestWriterSvc interface {
	// CreateRequest opens a DRAFT request for the calling agent.
	CreateRequest(ctx context.Context, actor domain.Actor, req dto.CreateOnboardingRequest) (*domain.OnboardingRequest, error)

	// UpdateSections replaces the sections present in req on an editable request.
	UpdateSections(ctx context.Context, actor domain.Actor, requestID string, req dto.UpdateSectionsRequest) (*domain.OnboardingRequest, error)
}

// OnboardingRequestSvcFacade combines the onboarding request service interfaces
type OnboardingRequestSvcFacade interface {
	OnboardingRequestReaderSvc
	OnboardingRequestWriterSvc
}

// TransitionResult is a committed transition.
type TransitionResult struct {
	Request domain.OnboardingRequest
	Entry   domain.StatusHistoryEntry
}

// WorkflowSvc moves requests through their lifecycle.
type WorkflowSvc interface {
	// Apply performs the named action from the request's current status.
	Apply(ctx context.Context, actor domain.Actor, requestID, action string, comment *string) (*TransitionResult, error)

	// TransitionTo moves the request to an explicit target status.
	TransitionTo(ctx context.Context, actor domain.Actor, requestID string, target domain.RequestStatus, comment *string) (*TransitionResult, error)

	// AvailableActions lists the actions the actor could attempt from the request's current status.
	AvailableActions(ctx context.Context, actor domain.Actor, requestID string) (domain.RequestStatus, []workflow.Transition, error)

	// Statuses returns the status catalogue.
	Statuses() []workflow.StatusDefinition
}

// FieldValidationSvc records and aggregates reviewer verdicts.
type FieldValidationSvc interface {
	// RecordValidation appends a verdict on one field of a request.
	RecordValidation(ctx context.Context, actor domain.Actor, requestID string, req dto.RecordValidationRequest) (*domain.FieldValidation, error)

	// ListValidations returns every verdict of a request.
	ListValidations(ctx context.Context, actor domain.Actor, requestID string) ([]domain.FieldValidation, error)

	// Summarize aggregates the latest verdict of every registered field.
	Summarize(ctx context.Context, actor domain.Actor, requestID string) (domain.ValidationSummary, error)
}

// DepositSvc records capital deposit confirmations.
type DepositSvc interface {
	// ConfirmDeposit records a confirmation sent by bank staff over HTTP.
	ConfirmDeposit(ctx context.Context, actor domain.Actor, requestID string, req dto.ConfirmDepositRequest) (*domain.DepositConfirmation, error)

	// RecordSignal records a confirmation received from the banking message feed.
	RecordSignal(ctx context.Context, signal dto.DepositSignal) error

	// GetDeposit returns the confirmation of a request.
	GetDeposit(ctx context.Context, actor domain.Actor, requestID string) (*domain.DepositConfirmation, error)
}

// DocumentSvc stores uploaded documents and attaches them to requests.
type DocumentSvc interface {
	// UploadDocument stores content and appends its reference to the request's documents.
	UploadDocument(ctx context.Context, actor domain.Actor, requestID string, category domain.DocumentCategory, filename string, content io.Reader) (*domain.StoredDocument, error)

	// OpenDocument returns the metadata and content of a stored document. The caller closes the reader.
	OpenDocument(ctx context.Context, actor domain.Actor, reference string) (*domain.StoredDocument, io.ReadCloser, error)
}

// ExportSvc renders request listings for back-office tooling.
type ExportSvc interface {
	// ExportRequests writes an XLSX workbook of a bank's requests and their history to w.
	ExportRequests(ctx context.Context, actor domain.Actor, bankID string, w io.Writer) error
}
