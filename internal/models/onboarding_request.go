package models

import "time"

// OnboardingRequest represents a row of the onboarding_requests table.
// Payload sections are stored as jsonb; a nil section is NULL.
type OnboardingRequest struct {
	RequestID    string     `db:"request_id"`
	BankID       string     `db:"bank_id"`
	AgencyID     string     `db:"agency_id"`
	AgentID      string     `db:"agent_id"`
	Status       int16      `db:"status"`
	PersonalInfo []byte     `db:"personal_info"`
	BusinessInfo []byte     `db:"business_info"`
	Shareholders []byte     `db:"shareholders"`
	Documents    []byte     `db:"documents"`
	SubmittedAt  *time.Time `db:"submitted_at"`
	AuditFields
}

// StatusHistoryEntry represents a row of the request_status_history table.
type StatusHistoryEntry struct {
	EntryID        string    `db:"entry_id"`
	RequestID      string    `db:"request_id"`
	PreviousStatus *int16    `db:"previous_status"`
	Status         int16     `db:"status"`
	Action         *string   `db:"action"`
	UserID         string    `db:"user_id"`
	Role           string    `db:"role"`
	Comment        *string   `db:"comment"`
	Metadata       []byte    `db:"metadata"`
	CreatedAt      time.Time `db:"created_at"`
}
