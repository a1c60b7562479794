package dto

import (
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
)

// ApplyActionRequest carries the optional comment of a workflow action.
type ApplyActionRequest struct {
	Comment *string `json:"comment" binding:"omitempty,max=2000"`
}

// TransitionRequest asks for an explicit target status, by stable code.
type TransitionRequest struct {
	TargetStatus string  `json:"targetStatus" binding:"required"`
	Comment      *string `json:"comment" binding:"omitempty,max=2000"`
}

// TransitionResponse is returned after a committed transition.
type TransitionResponse struct {
	Request OnboardingRequestResponse `json:"request"`
	Entry   domain.StatusHistoryEntry `json:"historyEntry"`
}

// AvailableAction is one action a caller may attempt from the current status.
type AvailableAction struct {
	Action string               `json:"action"`
	To     domain.RequestStatus `json:"to"`
}

// AvailableActionsResponse lists what the caller can do next with a request.
type AvailableActionsResponse struct {
	Status  domain.RequestStatus `json:"status"`
	Actions []AvailableAction    `json:"actions"`
}
