package apperrors

import (
	"errors"
	"fmt"
)

// Workflow error kinds. A *WorkflowError matches exactly one of them with errors.Is.
var (
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrTransitionUnauthorized = errors.New("role not allowed for transition")
	ErrIncompleteSubmission   = errors.New("incomplete submission")
	ErrNoCorrectionsRequested = errors.New("no corrections requested")
	ErrTerminalState          = errors.New("request is in a terminal state")
	ErrDepositRequired        = errors.New("capital deposit not confirmed")
	ErrUnresolvedFeedback     = errors.New("unresolved field errors")
	ErrConcurrentModification = errors.New("request modified concurrently")
)

// WorkflowError is the structured result of a rejected transition.
type WorkflowError struct {
	Kind        error
	From        string
	To          string
	Message     string
	FieldErrors []FieldError
}

func (e *WorkflowError) Error() string {
	msg := e.Kind.Error()
	if e.From != "" || e.To != "" {
		msg = fmt.Sprintf("%s (%s -> %s)", msg, e.From, e.To)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *WorkflowError) Is(target error) bool {
	return target == e.Kind
}

// NewWorkflowError builds a WorkflowError for the given kind and edge.
func NewWorkflowError(kind error, from, to, message string) *WorkflowError {
	return &WorkflowError{Kind: kind, From: from, To: to, Message: message}
}
