package notification

import (
	"context"
	"log/slog"

	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
)

// LogSink writes every event to the structured log.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

var _ portssvc.NotificationSink = (*LogSink)(nil)

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Notify(ctx context.Context, event domain.NotificationEvent) error {
	s.logger.InfoContext(ctx, "Workflow notification",
		slog.String("event_id", event.EventID),
		slog.String("event_type", string(event.Type)),
		slog.String("request_id", event.RequestID),
		slog.String("bank_id", event.BankID),
		slog.String("from", event.FromStatus.String()),
		slog.String("to", event.ToStatus.String()),
		slog.String("actor_id", event.ActorID),
	)
	return nil
}
