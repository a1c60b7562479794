package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/agent_onboarding_portal/internal/apperrors"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	portsrepo "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/workflow"
	"github.com/SscSPs/agent_onboarding_portal/internal/platform/metrics"
	"github.com/SscSPs/agent_onboarding_portal/internal/utils/onboarding"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// decision picks the edge to take given the locked snapshot.
type decision func(m *workflow.Machine, current domain.RequestStatus, role domain.Role, snap workflow.Snapshot) (workflow.Transition, error)

type workflowService struct {
	BaseService
	requestRepo    portsrepo.OnboardingRequestRepositoryWithTx
	validationRepo portsrepo.FieldValidationTransactionSupport
	depositRepo    portsrepo.DepositRepository
	machine        *workflow.Machine
	publisher      portssvc.EventPublisher
	maxRetries     int
	now            func() time.Time
}

// WorkflowServiceOption is a functional option for configuring the workflow service
type WorkflowServiceOption func(*workflowService)

// WithTransitionRetries sets how often a transition is retried after losing a version race.
func WithTransitionRetries(n int) WorkflowServiceOption {
	return func(s *workflowService) {
		s.maxRetries = n
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) WorkflowServiceOption {
	return func(s *workflowService) {
		s.now = now
	}
}

// NewWorkflowService creates a new workflow service
func NewWorkflowService(
	requestRepo portsrepo.OnboardingRequestRepositoryWithTx,
	validationRepo portsrepo.FieldValidationTransactionSupport,
	depositRepo portsrepo.DepositRepository,
	machine *workflow.Machine,
	publisher portssvc.EventPublisher,
	opts ...WorkflowServiceOption,
) portssvc.WorkflowSvc {
	s := &workflowService{
		requestRepo:    requestRepo,
		validationRepo: validationRepo,
		depositRepo:    depositRepo,
		machine:        machine,
		publisher:      publisher,
		maxRetries:     3,
		now:            func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.WorkflowSvc = (*workflowService)(nil)

func (s *workflowService) Apply(ctx context.Context, actor domain.Actor, requestID, action string, comment *string) (*portssvc.TransitionResult, error) {
	return s.run(ctx, actor, requestID, comment, func(m *workflow.Machine, current domain.RequestStatus, role domain.Role, snap workflow.Snapshot) (workflow.Transition, error) {
		return m.Apply(current, action, role, snap)
	})
}

func (s *workflowService) TransitionTo(ctx context.Context, actor domain.Actor, requestID string, target domain.RequestStatus, comment *string) (*portssvc.TransitionResult, error) {
	return s.run(ctx, actor, requestID, comment, func(m *workflow.Machine, current domain.RequestStatus, role domain.Role, snap workflow.Snapshot) (workflow.Transition, error) {
		return m.AttemptTransition(current, target, role, snap)
	})
}

func (s *workflowService) AvailableActions(ctx context.Context, actor domain.Actor, requestID string) (domain.RequestStatus, []workflow.Transition, error) {
	req, err := s.requestRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		return 0, nil, err
	}
	if err := authorizeRequest(actor, req); err != nil {
		return 0, nil, err
	}
	return req.Status, s.machine.AvailableActions(req.Status, actor.Role), nil
}

func (s *workflowService) Statuses() []workflow.StatusDefinition {
	return s.machine.Table().Statuses()
}

// run retries transitionOnce while it loses optimistic version races.
func (s *workflowService) run(ctx context.Context, actor domain.Actor, requestID string, comment *string, decide decision) (*portssvc.TransitionResult, error) {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		result, err := s.transitionOnce(ctx, actor, requestID, comment, decide)
		if err == nil {
			s.afterCommit(ctx, result)
			return result, nil
		}
		lastErr = err
		if !errors.Is(err, apperrors.ErrConcurrentModification) {
			break
		}
		s.LogDebug(ctx, "Retrying transition after concurrent modification",
			slog.String("request_id", requestID), slog.Int("attempt", attempt+1))
	}

	var wfErr *apperrors.WorkflowError
	if errors.As(lastErr, &wfErr) {
		metrics.TransitionRejectionsTotal.WithLabelValues(wfErr.Kind.Error()).Inc()
		s.LogInfo(ctx, "Transition rejected",
			slog.String("request_id", requestID),
			slog.String("kind", wfErr.Kind.Error()),
			slog.String("from", wfErr.From),
			slog.String("to", wfErr.To))
	}
	return nil, lastErr
}

func (s *workflowService) transitionOnce(ctx context.Context, actor domain.Actor, requestID string, comment *string, decide decision) (result *portssvc.TransitionResult, err error) {
	tx, err := s.requestRepo.Begin(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to begin transaction", slog.String("request_id", requestID))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := s.requestRepo.Rollback(ctx, tx); rbErr != nil {
			s.LogError(ctx, rbErr, "Failed to rollback transaction", slog.String("request_id", requestID))
		}
	}()

	req, err := s.requestRepo.FindRequestByIDForUpdate(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}
	if err := authorizeRequest(actor, req); err != nil {
		return nil, err
	}

	snap, err := s.snapshot(ctx, tx, *req)
	if err != nil {
		return nil, err
	}

	edge, err := decide(s.machine, req.Status, actor.Role, snap)
	if err != nil {
		return nil, err
	}

	now := s.now()
	submittedAt := req.SubmittedAt
	if edge.To == domain.StatusSubmitted {
		submittedAt = &now
	}

	if err := s.requestRepo.UpdateStatusInTx(ctx, tx, req.RequestID, edge.To, req.Version, submittedAt, actor.UserID, now); err != nil {
		return nil, err
	}

	previous := req.Status
	entry := domain.StatusHistoryEntry{
		EntryID:        uuid.NewString(),
		RequestID:      req.RequestID,
		PreviousStatus: &previous,
		Status:         edge.To,
		Action:         edge.Action,
		UserID:         actor.UserID,
		Role:           actor.Role,
		Comment:        comment,
		Metadata: map[string]any{
			"validation": snap.Validation,
		},
		CreatedAt: now,
	}
	if err := s.requestRepo.AppendHistoryInTx(ctx, tx, entry); err != nil {
		return nil, err
	}

	if edge.To == domain.StatusSubmitted {
		if err := s.validationRepo.RegisterFieldsInTx(ctx, tx, req.RequestID, onboarding.FieldIDs(*req), now); err != nil {
			return nil, err
		}
	}

	if err := s.requestRepo.Commit(ctx, tx); err != nil {
		s.LogError(ctx, err, "Failed to commit transition", slog.String("request_id", requestID))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	updated := *req
	updated.Status = edge.To
	updated.SubmittedAt = submittedAt
	updated.Version = req.Version + 1
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = actor.UserID

	return &portssvc.TransitionResult{Request: updated, Entry: entry}, nil
}

// snapshot reads everything the guards look at under the row lock held by tx.
func (s *workflowService) snapshot(ctx context.Context, tx pgx.Tx, req domain.OnboardingRequest) (workflow.Snapshot, error) {
	entries, err := s.validationRepo.ListValidationsInTx(ctx, tx, req.RequestID)
	if err != nil {
		return workflow.Snapshot{}, err
	}
	registered, err := s.validationRepo.ListRegisteredFieldsInTx(ctx, tx, req.RequestID)
	if err != nil {
		return workflow.Snapshot{}, err
	}
	deposited, err := s.depositRepo.HasDepositInTx(ctx, tx, req.RequestID)
	if err != nil {
		return workflow.Snapshot{}, err
	}
	return workflow.Snapshot{
		Request:          req,
		Validation:       onboarding.Summarize(registered, entries),
		DepositConfirmed: deposited,
	}, nil
}

func (s *workflowService) afterCommit(ctx context.Context, result *portssvc.TransitionResult) {
	from := ""
	if result.Entry.PreviousStatus != nil {
		from = result.Entry.PreviousStatus.String()
	}
	to := result.Entry.Status
	metrics.TransitionsTotal.WithLabelValues(result.Entry.Action, from, to.String()).Inc()
	s.LogInfo(ctx, "Request transitioned",
		slog.String("request_id", result.Request.RequestID),
		slog.String("action", result.Entry.Action),
		slog.String("from", from),
		slog.String("to", to.String()))

	if s.publisher == nil {
		return
	}
	def, _ := s.machine.Table().Status(to)
	props := map[string]any{
		"clientMessage":   def.ClientMessage,
		"visibleToClient": def.VisibleToClient,
		"notifyClient":    def.NotifyClient,
	}

	types := []domain.EventType{domain.EventStatusChanged}
	if to == domain.StatusSubmitted {
		types = append(types, domain.EventRequestSubmitted)
	}
	if def.NotifyReviewers {
		types = append(types, domain.EventValidationRequired)
	}
	if def.RequiresKbis {
		types = append(types, domain.EventKbisRequested)
	}

	for _, t := range types {
		event := domain.NotificationEvent{
			EventID:    uuid.NewString(),
			Type:       t,
			RequestID:  result.Request.RequestID,
			BankID:     result.Request.BankID,
			AgencyID:   result.Request.AgencyID,
			ToStatus:   to,
			Action:     result.Entry.Action,
			ActorID:    result.Entry.UserID,
			ActorRole:  result.Entry.Role,
			Comment:    result.Entry.Comment,
			OccurredAt: result.Entry.CreatedAt,
			Properties: props,
		}
		if result.Entry.PreviousStatus != nil {
			event.FromStatus = *result.Entry.PreviousStatus
		}
		s.publisher.Publish(ctx, event)
	}
}
