package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of kafka.Writer the sink uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes events as JSON keyed by request ID, so one request's events stay ordered.
type KafkaSink struct {
	writer MessageWriter
}

// NewKafkaSink creates a sink writing to topic on brokers.
func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return NewKafkaSinkWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		MaxAttempts:            3,
		WriteBackoffMin:        100 * time.Millisecond,
		WriteBackoffMax:        time.Second,
	})
}

// NewKafkaSinkWithWriter creates a sink on an existing writer.
func NewKafkaSinkWithWriter(writer MessageWriter) *KafkaSink {
	return &KafkaSink{writer: writer}
}

var _ portssvc.NotificationSink = (*KafkaSink)(nil)

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Notify(ctx context.Context, event domain.NotificationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.RequestID),
		Value: payload,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "bank_id", Value: []byte(event.BankID)},
		},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write notification to kafka: %w", err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
