package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/agent_onboarding_portal/internal/apperrors"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	portsrepo "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/workflow"
	"github.com/SscSPs/agent_onboarding_portal/internal/dto"
	"github.com/SscSPs/agent_onboarding_portal/internal/utils/onboarding"
	"github.com/google/uuid"
)

const maxRequestPageSize = 100

type onboardingRequestService struct {
	BaseService
	requestRepo  portsrepo.OnboardingRequestRepositoryWithTx
	bankRepo     portsrepo.BankReader
	documentRepo portsrepo.DocumentRepository
	table        *workflow.Table
	now          func() time.Time
}

// NewOnboardingRequestService creates a new onboarding request service
func NewOnboardingRequestService(
	requestRepo portsrepo.OnboardingRequestRepositoryWithTx,
	bankRepo portsrepo.BankReader,
	documentRepo portsrepo.DocumentRepository,
	table *workflow.Table,
) portssvc.OnboardingRequestSvcFacade {
	return &onboardingRequestService{
		requestRepo:  requestRepo,
		bankRepo:     bankRepo,
		documentRepo: documentRepo,
		table:        table,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.OnboardingRequestSvcFacade = (*onboardingRequestService)(nil)

func (s *onboardingRequestService) CreateRequest(ctx context.Context, actor domain.Actor, req dto.CreateOnboardingRequest) (*domain.OnboardingRequest, error) {
	if err := requireRole(actor, domain.RoleAgent); err != nil {
		return nil, err
	}
	if actor.BankID == nil || actor.AgencyID == nil {
		return nil, apperrors.NewForbiddenError("agent is not attached to an agency")
	}

	parsed, result := onboarding.ValidateSections(onboarding.ModeCreateOrUpdate, req.SectionsPayload)
	if err := result.Err(); err != nil {
		return nil, err
	}
	// nothing can have been uploaded for a request that does not exist yet
	if parsed.Documents != nil {
		if errs := checkDocumentRefs(*parsed.Documents, nil); len(errs) > 0 {
			return nil, apperrors.NewValidationError(errs)
		}
	}

	agency, err := s.bankRepo.FindAgencyByID(ctx, *actor.AgencyID)
	if err != nil {
		return nil, err
	}
	if agency.BankID != *actor.BankID {
		return nil, apperrors.NewForbiddenError("agency does not belong to the agent's bank")
	}

	now := s.now()
	request := domain.OnboardingRequest{
		RequestID: uuid.NewString(),
		BankID:    *actor.BankID,
		AgencyID:  agency.AgencyID,
		AgentID:   actor.UserID,
		Status:    domain.StatusDraft,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
			Version:       1,
		},
	}
	applySections(&request, parsed)

	entry := domain.StatusHistoryEntry{
		EntryID:   uuid.NewString(),
		RequestID: request.RequestID,
		Status:    domain.StatusDraft,
		Action:    "create",
		UserID:    actor.UserID,
		Role:      actor.Role,
		CreatedAt: now,
	}

	if err := s.requestRepo.SaveRequestWithHistory(ctx, request, entry); err != nil {
		s.LogError(ctx, err, "Failed to save onboarding request", slog.String("agent_id", actor.UserID))
		return nil, fmt.Errorf("failed to save onboarding request: %w", err)
	}

	s.LogInfo(ctx, "Onboarding request created",
		slog.String("request_id", request.RequestID),
		slog.String("bank_id", request.BankID))
	return &request, nil
}

func (s *onboardingRequestService) GetRequest(ctx context.Context, actor domain.Actor, requestID string) (*domain.OnboardingRequest, error) {
	req, err := s.requestRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := authorizeRequest(actor, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *onboardingRequestService) ListRequests(ctx context.Context, actor domain.Actor, params dto.ListRequestsParams) (*dto.ListRequestsResponse, error) {
	filter := domain.RequestFilter{
		BankID:   params.BankID,
		AgencyID: params.AgencyID,
		AgentID:  params.AgentID,
	}
	if params.Status != nil && *params.Status != "" {
		status, err := domain.ParseRequestStatus(*params.Status)
		if err != nil {
			return nil, apperrors.NewValidationFailedError(err.Error())
		}
		filter.Status = &status
	}

	filter, err := scopeFilter(actor, filter)
	if err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > maxRequestPageSize {
		limit = maxRequestPageSize
	}

	requests, next, err := s.requestRepo.ListRequests(ctx, filter, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list onboarding requests")
		return nil, fmt.Errorf("failed to list onboarding requests: %w", err)
	}

	resp := dto.ToListRequestsResponse(requests, next)
	return &resp, nil
}

func (s *onboardingRequestService) ListHistory(ctx context.Context, actor domain.Actor, requestID string) ([]domain.StatusHistoryEntry, error) {
	if _, err := s.GetRequest(ctx, actor, requestID); err != nil {
		return nil, err
	}
	entries, err := s.requestRepo.ListStatusHistory(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list status history: %w", err)
	}
	if entries == nil {
		entries = []domain.StatusHistoryEntry{}
	}
	return entries, nil
}

func (s *onboardingRequestService) CheckReadiness(ctx context.Context, actor domain.Actor, requestID string) (onboarding.Result, error) {
	req, err := s.GetRequest(ctx, actor, requestID)
	if err != nil {
		return onboarding.Result{}, err
	}
	return onboarding.ValidateRequest(*req), nil
}

func (s *onboardingRequestService) UpdateSections(ctx context.Context, actor domain.Actor, requestID string, req dto.UpdateSectionsRequest) (updated *domain.OnboardingRequest, err error) {
	if err := requireRole(actor, domain.RoleAgent); err != nil {
		return nil, err
	}
	parsed, result := onboarding.ValidateSections(onboarding.ModeCreateOrUpdate, req.SectionsPayload)
	if err := result.Err(); err != nil {
		return nil, err
	}

	tx, err := s.requestRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := s.requestRepo.Rollback(ctx, tx); rbErr != nil {
			s.LogError(ctx, rbErr, "Failed to rollback transaction", slog.String("request_id", requestID))
		}
	}()

	current, err := s.requestRepo.FindRequestByIDForUpdate(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}
	if err := authorizeRequest(actor, current); err != nil {
		return nil, err
	}
	if def, _ := s.table.Status(current.Status); !def.AgentEditable {
		return nil, apperrors.NewWorkflowError(apperrors.ErrInvalidTransition, current.Status.String(), "",
			"request is not editable in its current status")
	}
	if current.Version != req.Version {
		return nil, apperrors.NewWorkflowError(apperrors.ErrConcurrentModification, current.Status.String(), "",
			fmt.Sprintf("request is at version %d, not %d", current.Version, req.Version))
	}
	if parsed.Documents != nil {
		stored, err := s.documentRepo.ListDocumentsByRequest(ctx, requestID)
		if err != nil {
			return nil, fmt.Errorf("failed to list request documents: %w", err)
		}
		if errs := checkDocumentRefs(*parsed.Documents, stored); len(errs) > 0 {
			return nil, apperrors.NewValidationError(errs)
		}
	}

	next := *current
	applySections(&next, parsed)
	now := s.now()
	next.LastUpdatedAt = now
	next.LastUpdatedBy = actor.UserID

	if err := s.requestRepo.UpdateSectionsInTx(ctx, tx, next, current.Version); err != nil {
		return nil, err
	}
	if err := s.requestRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	next.Version = current.Version + 1
	s.LogInfo(ctx, "Onboarding request sections updated", slog.String("request_id", requestID))
	return &next, nil
}

// applySections overwrites the sections present in parsed.
func applySections(req *domain.OnboardingRequest, parsed onboarding.ParsedSections) {
	if parsed.PersonalInfo != nil {
		req.PersonalInfo = parsed.PersonalInfo
	}
	if parsed.BusinessInfo != nil {
		req.BusinessInfo = parsed.BusinessInfo
	}
	if parsed.HasShareholders {
		req.Shareholders = parsed.Shareholders
	}
	if parsed.Documents != nil {
		req.Documents = *parsed.Documents
	}
}

// checkDocumentRefs reports every reference in docs that is not one of the stored
// uploads or sits under another category than the one it was uploaded as.
func checkDocumentRefs(docs domain.Documents, stored []domain.StoredDocument) []apperrors.FieldError {
	uploaded := make(map[string]domain.DocumentCategory, len(stored))
	for _, d := range stored {
		uploaded[d.Reference] = d.Category
	}

	var errs []apperrors.FieldError
	for _, category := range domain.DocumentCategories {
		for i, ref := range docs.Refs(category) {
			field := fmt.Sprintf("%s.%s.%d", domain.SectionDocuments, category, i)
			got, ok := uploaded[ref]
			switch {
			case !ok:
				errs = append(errs, apperrors.FieldError{Field: field, Message: "is not a document uploaded for this request"})
			case got != category:
				errs = append(errs, apperrors.FieldError{Field: field, Message: "was uploaded as " + string(got)})
			}
		}
	}
	return errs
}
