package services

import (
	portsrepo "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/workflow"
	"github.com/SscSPs/agent_onboarding_portal/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// files and publisher are the outbound adapters chosen at startup.
func NewServiceContainer(
	cfg *config.Config,
	repos portsrepo.RepositoryProvider,
	table *workflow.Table,
	files portssvc.FileStore,
	publisher portssvc.EventPublisher,
) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The role provider comes first: user changes invalidate its cache.
	container.RoleProvider = NewRoleProviderService(repos.UserRepo, cfg.RoleCacheSize, cfg.RoleCacheTTL)

	container.Bank = NewBankService(repos.BankRepo)
	container.User = NewUserService(repos.UserRepo, repos.BankRepo, WithRoleProvider(container.RoleProvider))
	container.Token = NewTokenService(cfg, container.User)
	container.GoogleOAuth = NewGoogleOAuthHandlerService(cfg)
	container.APIToken = NewAPITokenService(repos.APITokenRepo, repos.UserRepo)

	container.Request = NewOnboardingRequestService(repos.RequestRepo, repos.BankRepo, repos.DocumentRepo, table)
	container.Workflow = NewWorkflowService(
		repos.RequestRepo,
		repos.FieldValidationRepo,
		repos.DepositRepo,
		workflow.NewMachine(table),
		publisher,
		WithTransitionRetries(cfg.TransitionMaxRetries),
	)
	container.FieldValidation = NewFieldValidationService(repos.RequestRepo, repos.FieldValidationRepo, table)
	container.Deposit = NewDepositService(repos.RequestRepo, repos.DepositRepo)
	container.Document = NewDocumentService(repos.RequestRepo, repos.DocumentRepo, files, table)
	container.Export = NewExportService(repos.RequestRepo)

	return container
}
