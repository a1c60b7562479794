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
	"github.com/google/uuid"
)

type bankService struct {
	BaseService
	bankRepo portsrepo.BankRepositoryFacade
}

// NewBankService creates a new bank service
func NewBankService(bankRepo portsrepo.BankRepositoryFacade) portssvc.BankSvcFacade {
	return &bankService{bankRepo: bankRepo}
}

var _ portssvc.BankSvcFacade = (*bankService)(nil)

func (s *bankService) CreateBank(ctx context.Context, actor domain.Actor, req dto.CreateBankRequest) (*domain.Bank, error) {
	if err := requireRole(actor, domain.RoleSuperAdmin); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	bank := domain.Bank{
		BankID:   uuid.NewString(),
		Name:     strings.TrimSpace(req.Name),
		Code:     strings.ToUpper(strings.TrimSpace(req.Code)),
		IsActive: true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
			Version:       1,
		},
	}
	if err := s.bankRepo.SaveBank(ctx, bank); err != nil {
		s.LogError(ctx, err, "Failed to save bank", slog.String("code", bank.Code))
		return nil, fmt.Errorf("failed to save bank: %w", err)
	}
	s.LogInfo(ctx, "Bank created", slog.String("bank_id", bank.BankID))
	return &bank, nil
}

func (s *bankService) GetBank(ctx context.Context, actor domain.Actor, bankID string) (*domain.Bank, error) {
	if !actor.InBank(bankID) {
		return nil, apperrors.NewForbiddenError("cannot read another bank")
	}
	return s.bankRepo.FindBankByID(ctx, bankID)
}

func (s *bankService) ListBanks(ctx context.Context, actor domain.Actor, params dto.ListBanksParams) ([]domain.Bank, error) {
	if err := requireRole(actor, domain.RoleSuperAdmin); err != nil {
		return nil, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	banks, err := s.bankRepo.ListBanks(ctx, limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list banks: %w", err)
	}
	if banks == nil {
		banks = []domain.Bank{}
	}
	return banks, nil
}

func (s *bankService) CreateAgency(ctx context.Context, actor domain.Actor, bankID string, req dto.CreateAgencyRequest) (*domain.Agency, error) {
	if err := requireRole(actor, domain.RoleBankAdmin, domain.RoleSuperAdmin); err != nil {
		return nil, err
	}
	if !actor.InBank(bankID) {
		return nil, apperrors.NewForbiddenError("cannot add an agency to another bank")
	}
	if _, err := s.bankRepo.FindBankByID(ctx, bankID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	agency := domain.Agency{
		AgencyID: uuid.NewString(),
		BankID:   bankID,
		Name:     strings.TrimSpace(req.Name),
		City:     strings.TrimSpace(req.City),
		IsActive: true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
			Version:       1,
		},
	}
	if err := s.bankRepo.SaveAgency(ctx, agency); err != nil {
		s.LogError(ctx, err, "Failed to save agency", slog.String("bank_id", bankID))
		return nil, fmt.Errorf("failed to save agency: %w", err)
	}
	s.LogInfo(ctx, "Agency created", slog.String("agency_id", agency.AgencyID), slog.String("bank_id", bankID))
	return &agency, nil
}

func (s *bankService) ListAgencies(ctx context.Context, actor domain.Actor, bankID string) ([]domain.Agency, error) {
	if !actor.InBank(bankID) {
		return nil, apperrors.NewForbiddenError("cannot read another bank")
	}
	agencies, err := s.bankRepo.ListAgenciesByBank(ctx, bankID)
	if err != nil {
		return nil, fmt.Errorf("failed to list agencies: %w", err)
	}
	if agencies == nil {
		agencies = []domain.Agency{}
	}
	return agencies, nil
}
