package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	BankRepo            BankRepositoryFacade
	UserRepo            UserRepositoryFacade
	APITokenRepo        APITokenRepository
	RequestRepo         OnboardingRequestRepositoryWithTx
	FieldValidationRepo FieldValidationRepositoryWithTx
	DepositRepo         DepositRepository
	DocumentRepo        DocumentRepository
}
