package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/agent_onboarding_portal/internal/apperrors"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	portsrepo "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/SscSPs/agent_onboarding_portal/internal/dto"
	"github.com/SscSPs/agent_onboarding_portal/internal/platform/metrics"
)

type depositService struct {
	BaseService
	requestRepo portsrepo.OnboardingRequestReader
	depositRepo portsrepo.DepositRepository
	now         func() time.Time
}

// NewDepositService creates a new deposit confirmation service
func NewDepositService(requestRepo portsrepo.OnboardingRequestReader, depositRepo portsrepo.DepositRepository) portssvc.DepositSvc {
	return &depositService{
		requestRepo: requestRepo,
		depositRepo: depositRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.DepositSvc = (*depositService)(nil)

func (s *depositService) ConfirmDeposit(ctx context.Context, actor domain.Actor, requestID string, req dto.ConfirmDepositRequest) (*domain.DepositConfirmation, error) {
	if err := requireRole(actor, domain.RoleBankStaff, domain.RoleBankAdmin, domain.RoleSuperAdmin); err != nil {
		return nil, err
	}
	request, err := s.requestRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := authorizeRequest(actor, request); err != nil {
		return nil, err
	}

	deposit := domain.DepositConfirmation{
		RequestID:   requestID,
		Amount:      req.Amount,
		Reference:   strings.TrimSpace(req.Reference),
		Source:      domain.DepositSourceAPI,
		ConfirmedBy: actor.UserID,
		ConfirmedAt: s.now(),
	}
	return s.record(ctx, deposit)
}

func (s *depositService) RecordSignal(ctx context.Context, signal dto.DepositSignal) error {
	if _, err := s.requestRepo.FindRequestByID(ctx, signal.RequestID); err != nil {
		metrics.DepositSignalsTotal.WithLabelValues(string(domain.DepositSourceKafka), "unknown_request").Inc()
		return err
	}
	confirmedBy := signal.ConfirmedBy
	if confirmedBy == "" {
		confirmedBy = "core-banking"
	}
	_, err := s.record(ctx, domain.DepositConfirmation{
		RequestID:   signal.RequestID,
		Amount:      signal.Amount,
		Reference:   strings.TrimSpace(signal.Reference),
		Source:      domain.DepositSourceKafka,
		ConfirmedBy: confirmedBy,
		ConfirmedAt: s.now(),
	})
	return err
}

func (s *depositService) GetDeposit(ctx context.Context, actor domain.Actor, requestID string) (*domain.DepositConfirmation, error) {
	request, err := s.requestRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := authorizeRequest(actor, request); err != nil {
		return nil, err
	}
	return s.depositRepo.FindDepositByRequestID(ctx, requestID)
}

// record stores the first confirmation of a request. Later ones are ignored and the
// stored confirmation is returned.
func (s *depositService) record(ctx context.Context, deposit domain.DepositConfirmation) (*domain.DepositConfirmation, error) {
	source := string(deposit.Source)
	var fieldErrs []apperrors.FieldError
	if !deposit.Amount.IsPositive() {
		fieldErrs = append(fieldErrs, apperrors.FieldError{Field: "amount", Message: "must be greater than 0"})
	}
	if deposit.Reference == "" {
		fieldErrs = append(fieldErrs, apperrors.FieldError{Field: "reference", Message: "is required"})
	}
	if len(fieldErrs) > 0 {
		metrics.DepositSignalsTotal.WithLabelValues(source, "invalid").Inc()
		return nil, apperrors.NewValidationError(fieldErrs)
	}

	created, err := s.depositRepo.SaveDepositConfirmation(ctx, deposit)
	if err != nil {
		metrics.DepositSignalsTotal.WithLabelValues(source, "error").Inc()
		s.LogError(ctx, err, "Failed to save deposit confirmation", slog.String("request_id", deposit.RequestID))
		return nil, fmt.Errorf("failed to save deposit confirmation: %w", err)
	}
	if !created {
		metrics.DepositSignalsTotal.WithLabelValues(source, "duplicate").Inc()
		s.LogInfo(ctx, "Deposit already confirmed", slog.String("request_id", deposit.RequestID))
		return s.depositRepo.FindDepositByRequestID(ctx, deposit.RequestID)
	}

	metrics.DepositSignalsTotal.WithLabelValues(source, "recorded").Inc()
	s.LogInfo(ctx, "Deposit confirmed",
		slog.String("request_id", deposit.RequestID),
		slog.String("source", source),
		slog.String("amount", deposit.Amount.String()))
	return &deposit, nil
}
