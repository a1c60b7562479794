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

type fieldValidationService struct {
	BaseService
	requestRepo    portsrepo.OnboardingRequestRepositoryWithTx
	validationRepo portsrepo.FieldValidationRepositoryFacade
	table          *workflow.Table
	now            func() time.Time
}

// NewFieldValidationService creates a new field validation service
func NewFieldValidationService(
	requestRepo portsrepo.OnboardingRequestRepositoryWithTx,
	validationRepo portsrepo.FieldValidationRepositoryFacade,
	table *workflow.Table,
) portssvc.FieldValidationSvc {
	return &fieldValidationService{
		requestRepo:    requestRepo,
		validationRepo: validationRepo,
		table:          table,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.FieldValidationSvc = (*fieldValidationService)(nil)

func (s *fieldValidationService) RecordValidation(ctx context.Context, actor domain.Actor, requestID string, req dto.RecordValidationRequest) (*domain.FieldValidation, error) {
	if !actor.Role.IsReviewer() {
		return nil, apperrors.NewForbiddenError("only reviewers may record field validations")
	}
	if !req.Status.IsValid() {
		return nil, apperrors.NewValidationError([]apperrors.FieldError{{Field: "status", Message: "must be one of ok, warning, error"}})
	}
	if err := onboarding.ValidateFieldID(req.FieldID); err != nil {
		return nil, apperrors.NewValidationError([]apperrors.FieldError{{Field: "fieldID", Message: err.Error()}})
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

	// Shared lock: verdicts never interleave with a transition's snapshot.
	current, err := s.requestRepo.FindRequestByIDForShare(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}
	if err := authorizeRequest(actor, current); err != nil {
		return nil, err
	}
	if current.SubmittedAt == nil {
		return nil, apperrors.NewWorkflowError(apperrors.ErrInvalidTransition, current.Status.String(), "",
			"request has not been submitted")
	}
	if s.table.IsTerminal(current.Status) {
		return nil, apperrors.NewWorkflowError(apperrors.ErrTerminalState, current.Status.String(), "", "")
	}

	now := s.now()
	validation := domain.FieldValidation{
		ValidationID: uuid.NewString(),
		RequestID:    requestID,
		FieldID:      req.FieldID,
		Status:       req.Status,
		Comment:      req.Comment,
		ValidatedBy:  actor.UserID,
		ValidatedAt:  now,
	}

	if err := s.validationRepo.RegisterFieldsInTx(ctx, tx, requestID, []string{req.FieldID}, now); err != nil {
		return nil, err
	}
	if err := s.validationRepo.SaveValidationInTx(ctx, tx, validation); err != nil {
		s.LogError(ctx, err, "Failed to save field validation", slog.String("request_id", requestID))
		return nil, fmt.Errorf("failed to save field validation: %w", err)
	}
	if err := s.requestRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.LogDebug(ctx, "Field validation recorded",
		slog.String("request_id", requestID),
		slog.String("field_id", req.FieldID),
		slog.String("status", string(req.Status)))
	return &validation, nil
}

func (s *fieldValidationService) ListValidations(ctx context.Context, actor domain.Actor, requestID string) ([]domain.FieldValidation, error) {
	if err := s.checkAccess(ctx, actor, requestID); err != nil {
		return nil, err
	}
	entries, err := s.validationRepo.ListValidations(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list field validations: %w", err)
	}
	if entries == nil {
		entries = []domain.FieldValidation{}
	}
	return entries, nil
}

func (s *fieldValidationService) Summarize(ctx context.Context, actor domain.Actor, requestID string) (domain.ValidationSummary, error) {
	if err := s.checkAccess(ctx, actor, requestID); err != nil {
		return domain.ValidationSummary{}, err
	}
	entries, err := s.validationRepo.ListValidations(ctx, requestID)
	if err != nil {
		return domain.ValidationSummary{}, fmt.Errorf("failed to list field validations: %w", err)
	}
	registered, err := s.validationRepo.ListRegisteredFields(ctx, requestID)
	if err != nil {
		return domain.ValidationSummary{}, fmt.Errorf("failed to list registered fields: %w", err)
	}
	return onboarding.Summarize(registered, entries), nil
}

func (s *fieldValidationService) checkAccess(ctx context.Context, actor domain.Actor, requestID string) error {
	req, err := s.requestRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		return err
	}
	return authorizeRequest(actor, req)
}
