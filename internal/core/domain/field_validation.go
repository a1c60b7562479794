package domain

import "time"

// VerdictStatus is a reviewer's verdict on a single field.
type VerdictStatus string

const (
	VerdictOK      VerdictStatus = "ok"
	VerdictWarning VerdictStatus = "warning"
	VerdictError   VerdictStatus = "error"
)

// IsValid reports whether v is a known verdict.
func (v VerdictStatus) IsValid() bool {
	return v == VerdictOK || v == VerdictWarning || v == VerdictError
}

// FieldValidation is an immutable reviewer verdict for one field of a request.
// Re-validating a field appends a new entry.
type FieldValidation struct {
	ValidationID string        `json:"validationID"`
	RequestID    string        `json:"requestID"`
	FieldID      string        `json:"fieldID"`
	Status       VerdictStatus `json:"status"`
	Comment      *string       `json:"comment,omitempty"`
	ValidatedBy  string        `json:"validatedBy"`
	ValidatedAt  time.Time     `json:"validatedAt"`
}

// ValidationSummary aggregates the latest verdict of every registered field.
type ValidationSummary struct {
	ValidCount      int `json:"validCount"`
	ErrorCount      int `json:"errorCount"`
	WarningCount    int `json:"warningCount"`
	TotalFields     int `json:"totalFields"`
	ProgressPercent int `json:"progressPercent"`
}
