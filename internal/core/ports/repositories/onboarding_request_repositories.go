package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// OnboardingRequestReader defines read operations for onboarding requests and their history
type OnboardingRequestReader interface {
	// FindRequestByID retrieves a request by its ID.
	FindRequestByID(ctx context.Context, requestID string) (*domain.OnboardingRequest, error)

	// ListRequests retrieves requests matching filter, newest first, using keyset pagination.
	// It returns the page and the token for the next page, nil when there is none.
	ListRequests(ctx context.Context, filter domain.RequestFilter, limit int, nextToken *string) ([]domain.OnboardingRequest, *string, error)

	// ListRequestsForExport retrieves every request of a bank ordered by creation time.
	ListRequestsForExport(ctx context.Context, bankID string) ([]domain.OnboardingRequest, error)

	// ListStatusHistory retrieves the history of a request in commit order.
	ListStatusHistory(ctx context.Context, requestID string) ([]domain.StatusHistoryEntry, error)

	// ListStatusHistoryForRequests retrieves the history of several requests keyed by request ID.
	ListStatusHistoryForRequests(ctx context.Context, requestIDs []string) (map[string][]domain.StatusHistoryEntry, error)
}

// OnboardingRequestWriter defines write operations that do not need a caller-managed transaction
type OnboardingRequestWriter interface {
	// SaveRequestWithHistory inserts a new request together with its first history entry.
	SaveRequestWithHistory(ctx context.Context, req domain.OnboardingRequest, entry domain.StatusHistoryEntry) error
}

// OnboardingRequestTransactionSupport defines operations run inside a caller-managed transaction
type OnboardingRequestTransactionSupport interface {
	// FindRequestByIDForUpdate selects a request and locks its row exclusively.
	FindRequestByIDForUpdate(ctx context.Context, tx pgx.Tx, requestID string) (*domain.OnboardingRequest, error)

	// FindRequestByIDForShare selects a request and takes a shared lock on its row.
	FindRequestByIDForShare(ctx context.Context, tx pgx.Tx, requestID string) (*domain.OnboardingRequest, error)

	// UpdateStatusInTx moves a request to status if its version still equals expectedVersion.
	// A version mismatch returns apperrors.ErrConcurrentModification.
	UpdateStatusInTx(ctx context.Context, tx pgx.Tx, requestID string, status domain.RequestStatus, expectedVersion int64, submittedAt *time.Time, userID string, now time.Time) error

	// UpdateSectionsInTx stores the payload sections of req if its version still equals expectedVersion.
	UpdateSectionsInTx(ctx context.Context, tx pgx.Tx, req domain.OnboardingRequest, expectedVersion int64) error

	// AppendHistoryInTx appends a status history entry.
	AppendHistoryInTx(ctx context.Context, tx pgx.Tx, entry domain.StatusHistoryEntry) error
}

// OnboardingRequestRepositoryFacade combines all onboarding request repository interfaces
type OnboardingRequestRepositoryFacade interface {
	OnboardingRequestReader
	OnboardingRequestWriter
	OnboardingRequestTransactionSupport
}

// OnboardingRequestRepositoryWithTx extends OnboardingRequestRepositoryFacade with transaction capabilities
type OnboardingRequestRepositoryWithTx interface {
	OnboardingRequestRepositoryFacade
	TransactionManager
}
