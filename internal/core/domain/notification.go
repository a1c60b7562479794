package domain

import "time"

// EventType names a notification emitted by the workflow.
type EventType string

const (
	EventRequestSubmitted   EventType = "request_submitted"
	EventStatusChanged      EventType = "status_changed"
	EventValidationRequired EventType = "validation_required"
	EventKbisRequested      EventType = "kbis_requested"
)

// NotificationEvent is the payload handed to notification sinks.
type NotificationEvent struct {
	EventID    string         `json:"eventID"`
	Type       EventType      `json:"type"`
	RequestID  string         `json:"requestID"`
	BankID     string         `json:"bankID"`
	AgencyID   string         `json:"agencyID"`
	FromStatus RequestStatus  `json:"fromStatus"`
	ToStatus   RequestStatus  `json:"toStatus"`
	Action     string         `json:"action,omitempty"`
	ActorID    string         `json:"actorID"`
	ActorRole  Role           `json:"actorRole"`
	Comment    *string        `json:"comment,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
	Properties map[string]any `json:"properties,omitempty"`
}
