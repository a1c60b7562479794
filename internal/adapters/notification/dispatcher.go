// Package notification fans workflow events out to notification sinks.
package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/SscSPs/agent_onboarding_portal/internal/platform/metrics"
)

const defaultSinkTimeout = 5 * time.Second

// Dispatcher queues events and delivers them to every sink from a single worker.
// Publish never blocks: when the queue is full the event is dropped.
type Dispatcher struct {
	sinks       []portssvc.NotificationSink
	queue       chan domain.NotificationEvent
	logger      *slog.Logger
	sinkTimeout time.Duration

	mu      sync.RWMutex
	started bool
	closed  bool
	done    chan struct{}
}

// DispatcherOption is a functional option for configuring the dispatcher
type DispatcherOption func(*Dispatcher)

// WithSinkTimeout bounds each sink delivery.
func WithSinkTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.sinkTimeout = d
		}
	}
}

// NewDispatcher creates a dispatcher with a queue of queueSize events.
func NewDispatcher(queueSize int, logger *slog.Logger, sinks []portssvc.NotificationSink, opts ...DispatcherOption) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	d := &Dispatcher{
		sinks:       sinks,
		queue:       make(chan domain.NotificationEvent, queueSize),
		logger:      logger,
		sinkTimeout: defaultSinkTimeout,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var _ portssvc.EventPublisher = (*Dispatcher)(nil)

// Start runs the delivery worker until Close drains the queue. Only the first call
// before Close has an effect.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true
	go func() {
		defer close(d.done)
		for event := range d.queue {
			d.deliver(event)
		}
	}()
}

// Publish enqueues event. It is safe to call after Close; the event is dropped.
func (d *Dispatcher) Publish(ctx context.Context, event domain.NotificationEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("Notification dispatcher closed, dropping event",
			slog.String("event_type", string(event.Type)), slog.String("request_id", event.RequestID))
		metrics.NotificationsDropped.Inc()
		return
	}
	select {
	case d.queue <- event:
	default:
		d.logger.Warn("Notification queue full, dropping event",
			slog.String("event_type", string(event.Type)), slog.String("request_id", event.RequestID))
		metrics.NotificationsDropped.Inc()
	}
}

// Close stops accepting events and waits for queued ones to be delivered or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
		if !d.started {
			// no worker will ever drain the queue
			d.started = true
			if n := len(d.queue); n > 0 {
				d.logger.Warn("Notification dispatcher closed before start, dropping events", slog.Int("count", n))
			}
			close(d.done)
		}
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) deliver(event domain.NotificationEvent) {
	for _, sink := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), d.sinkTimeout)
		err := sink.Notify(ctx, event)
		cancel()
		if err != nil {
			metrics.NotificationsTotal.WithLabelValues(sink.Name(), "error").Inc()
			d.logger.Error("Notification delivery failed",
				slog.String("sink", sink.Name()),
				slog.String("event_type", string(event.Type)),
				slog.String("request_id", event.RequestID),
				slog.String("error", err.Error()))
			continue
		}
		metrics.NotificationsTotal.WithLabelValues(sink.Name(), "delivered").Inc()
	}
}
