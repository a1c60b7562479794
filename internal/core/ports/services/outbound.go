package services

import (
	"context"
	"io"

	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
)

// FileStore persists uploaded document content.
type FileStore interface {
	// Save stores content and returns its reference, sniffed content type, size and checksum.
	Save(ctx context.Context, content io.Reader, originalName string) (*domain.StoredFile, error)
	// Open returns the content stored under reference.
	Open(ctx context.Context, reference string) (io.ReadCloser, error)
	// Delete removes the content stored under reference.
	Delete(ctx context.Context, reference string) error
}

// NotificationSink delivers workflow events to one destination.
type NotificationSink interface {
	Notify(ctx context.Context, event domain.NotificationEvent) error
	Name() string
}

// EventPublisher hands events to the notification pipeline without blocking the caller.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.NotificationEvent)
}
