// Package messaging consumes banking-side signals from Kafka.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/agent_onboarding_portal/internal/apperrors"
	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/SscSPs/agent_onboarding_portal/internal/dto"
	"github.com/SscSPs/agent_onboarding_portal/internal/platform/metrics"
	"github.com/segmentio/kafka-go"
)

const (
	defaultMaxAttempts = 3
	defaultBackoff     = 500 * time.Millisecond
)

// MessageReader is the part of kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// DepositConsumer records capital deposit confirmations published by core banking.
// A message is committed once it is recorded or known to be unusable. A message that
// keeps failing transiently holds its partition until it goes through.
type DepositConsumer struct {
	reader      MessageReader
	deposits    portssvc.DepositSvc
	logger      *slog.Logger
	maxAttempts int
	backoff     time.Duration
}

// NewDepositConsumer creates a consumer-group reader on topic.
func NewDepositConsumer(brokers []string, topic, groupID string, deposits portssvc.DepositSvc, logger *slog.Logger) *DepositConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		StartOffset:    kafka.FirstOffset,
		SessionTimeout: 30 * time.Second,
	})
	return NewDepositConsumerWithReader(reader, deposits, logger)
}

// ConsumerOption configures a DepositConsumer.
type ConsumerOption func(*DepositConsumer)

// WithRetryPolicy sets the attempts per round and the linear backoff between them.
func WithRetryPolicy(maxAttempts int, backoff time.Duration) ConsumerOption {
	return func(c *DepositConsumer) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// NewDepositConsumerWithReader creates a consumer on an existing reader.
func NewDepositConsumerWithReader(reader MessageReader, deposits portssvc.DepositSvc, logger *slog.Logger, opts ...ConsumerOption) *DepositConsumer {
	c := &DepositConsumer{
		reader:      reader,
		deposits:    deposits,
		logger:      logger,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run consumes until ctx is cancelled or the reader fails.
func (c *DepositConsumer) Run(ctx context.Context) error {
	c.logger.Info("Deposit consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Deposit consumer stopped")
				return nil
			}
			c.logger.Error("Failed to fetch deposit message", slog.String("error", err.Error()))
			return err
		}

		if !c.handleUntilDone(ctx, msg) {
			return nil
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to commit deposit message", slog.Int64("offset", msg.Offset), slog.String("error", err.Error()))
		}
	}
}

// handleUntilDone retries msg in rounds until it is handled. It reports false when ctx
// ended first, leaving msg uncommitted for the next consumer.
func (c *DepositConsumer) handleUntilDone(ctx context.Context, msg kafka.Message) bool {
	pause := time.Duration(c.maxAttempts) * c.backoff
	for {
		err := c.Handle(ctx, msg)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		metrics.DepositSignalsTotal.WithLabelValues("kafka", "retrying").Inc()
		c.logger.Error("Deposit message not recorded, will retry",
			slog.Int64("offset", msg.Offset),
			slog.Int("partition", msg.Partition),
			slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return false
		case <-time.After(pause):
		}
	}
}

// Handle records one message. Transient failures are retried with a linear backoff.
func (c *DepositConsumer) Handle(ctx context.Context, msg kafka.Message) error {
	var signal dto.DepositSignal
	if err := json.Unmarshal(msg.Value, &signal); err != nil {
		c.logger.Warn("Malformed deposit message", slog.Int64("offset", msg.Offset), slog.String("error", err.Error()))
		return nil
	}
	if signal.RequestID == "" {
		signal.RequestID = string(msg.Key)
	}
	if signal.RequestID == "" {
		c.logger.Warn("Deposit message without request ID", slog.Int64("offset", msg.Offset))
		return nil
	}

	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err = c.deposits.RecordSignal(ctx, signal)
		if err == nil {
			return nil
		}
		if permanent(err) {
			c.logger.Warn("Deposit signal rejected",
				slog.String("request_id", signal.RequestID),
				slog.String("error", err.Error()))
			return nil
		}
		if attempt == c.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * c.backoff):
		}
	}
	return err
}

func (c *DepositConsumer) Close() error {
	return c.reader.Close()
}

func permanent(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrValidation) ||
		errors.Is(err, apperrors.ErrDuplicate)
}
