package dto

import (
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
)

// RecordValidationRequest is a reviewer verdict on one field.
type RecordValidationRequest struct {
	FieldID string               `json:"fieldID" binding:"required"`
	Status  domain.VerdictStatus `json:"status" binding:"required,oneof=ok warning error"`
	Comment *string              `json:"comment" binding:"omitempty,max=2000"`
}

// ValidationsResponse lists the verdicts of a request with their summary.
type ValidationsResponse struct {
	Validations []domain.FieldValidation `json:"validations"`
	Summary     domain.ValidationSummary `json:"summary"`
}
