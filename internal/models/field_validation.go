package models

import "time"

// FieldValidation represents a row of the field_validations table.
type FieldValidation struct {
	ValidationID string    `db:"validation_id"`
	RequestID    string    `db:"request_id"`
	FieldID      string    `db:"field_id"`
	Status       string    `db:"status"`
	Comment      *string   `db:"comment"`
	ValidatedBy  string    `db:"validated_by"`
	ValidatedAt  time.Time `db:"validated_at"`
}
