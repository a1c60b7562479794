package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Bank            BankSvcFacade
	User            UserSvcFacade
	Token           TokenSvcFacade
	GoogleOAuth     GoogleOAuthHandlerSvcFacade
	APIToken        APITokenSvc
	RoleProvider    RoleProviderSvc
	Request         OnboardingRequestSvcFacade
	Workflow        WorkflowSvc
	FieldValidation FieldValidationSvc
	Deposit         DepositSvc
	Document        DocumentSvc
	Export          ExportSvc
}
