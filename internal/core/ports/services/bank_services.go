package services

import (
	"context"

	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	"github.com/SscSPs/agent_onboarding_portal/internal/dto"
)

// BankReaderSvc defines read operations for banks and agencies
type BankReaderSvc interface {
	GetBank(ctx context.Context, actor domain.Actor, bankID string) (*domain.Bank, error)
	ListBanks(ctx context.Context, actor domain.Actor, params dto.ListBanksParams) ([]domain.Bank, error)
	ListAgencies(ctx context.Context, actor domain.Actor, bankID string) ([]domain.Agency, error)
}

// BankWriterSvc defines write operations for banks and agencies
type BankWriterSvc interface {
	CreateBank(ctx context.Context, actor domain.Actor, req dto.CreateBankRequest) (*domain.Bank, error)
	CreateAgency(ctx context.Context, actor domain.Actor, bankID string, req dto.CreateAgencyRequest) (*domain.Agency, error)
}

// BankSvcFacade combines the bank service interfaces
type BankSvcFacade interface {
	BankReaderSvc
	BankWriterSvc
}
