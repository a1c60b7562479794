package repositories

import (
	"context"

	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
)

// BankReader defines read operations for banks and their agencies
type BankReader interface {
	// FindBankByID retrieves a bank by its ID.
	FindBankByID(ctx context.Context, bankID string) (*domain.Bank, error)

	// ListBanks retrieves a paginated list of banks.
	ListBanks(ctx context.Context, limit int, offset int) ([]domain.Bank, error)

	// FindAgencyByID retrieves an agency by its ID.
	FindAgencyByID(ctx context.Context, agencyID string) (*domain.Agency, error)

	// ListAgenciesByBank retrieves the agencies of a bank.
	ListAgenciesByBank(ctx context.Context, bankID string) ([]domain.Agency, error)
}

// BankWriter defines write operations for banks and their agencies
type BankWriter interface {
	// SaveBank persists a new bank.
	SaveBank(ctx context.Context, bank domain.Bank) error

	// SaveAgency persists a new agency.
	SaveAgency(ctx context.Context, agency domain.Agency) error
}

// BankRepositoryFacade combines all bank repository interfaces
type BankRepositoryFacade interface {
	BankReader
	BankWriter
}
