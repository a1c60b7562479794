package domain

import "time"

// StatusHistoryEntry records one committed status change. Entries are append-only.
type StatusHistoryEntry struct {
	EntryID        string         `json:"entryID"`
	RequestID      string         `json:"requestID"`
	PreviousStatus *RequestStatus `json:"previousStatus,omitempty"`
	Status         RequestStatus  `json:"status"`
	Action         string         `json:"action,omitempty"`
	UserID         string         `json:"userID"`
	Role           Role           `json:"role"`
	Comment        *string        `json:"comment,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}
