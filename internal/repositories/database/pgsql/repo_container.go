package pgsql

import (
	portsrepo "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		BankRepo:            newPgxBankRepository(dbPool),
		UserRepo:            newPgxUserRepository(dbPool),
		APITokenRepo:        newPgxAPITokenRepository(dbPool),
		RequestRepo:         newPgxOnboardingRequestRepository(dbPool),
		FieldValidationRepo: newPgxFieldValidationRepository(dbPool),
		DepositRepo:         newPgxDepositRepository(dbPool),
		DocumentRepo:        newPgxDocumentRepository(dbPool),
	}
}
