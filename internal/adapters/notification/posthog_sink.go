package notification

import (
	"context"

	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
)

// EventEnqueuer captures analytics events; utils.PosthogClientWrapper implements it.
type EventEnqueuer interface {
	Enqueue(distinctID string, event string, properties map[string]any) error
}

// PosthogSink records workflow events as product analytics, attributed to the acting user.
type PosthogSink struct {
	client EventEnqueuer
}

func NewPosthogSink(client EventEnqueuer) *PosthogSink {
	return &PosthogSink{client: client}
}

var _ portssvc.NotificationSink = (*PosthogSink)(nil)

func (s *PosthogSink) Name() string { return "posthog" }

func (s *PosthogSink) Notify(_ context.Context, event domain.NotificationEvent) error {
	props := map[string]any{
		"request_id": event.RequestID,
		"bank_id":    event.BankID,
		"agency_id":  event.AgencyID,
		"from":       event.FromStatus.String(),
		"to":         event.ToStatus.String(),
		"action":     event.Action,
		"actor_role": string(event.ActorRole),
	}
	for k, v := range event.Properties {
		props[k] = v
	}
	return s.client.Enqueue(event.ActorID, "onboarding_"+string(event.Type), props)
}
