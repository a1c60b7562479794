package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkflowErrorMatchesKindOnly(t *testing.T) {
	err := NewWorkflowError(ErrTerminalState, "CLOSED", "DRAFT", "")
	wrapped := fmt.Errorf("apply: %w", err)

	assert.True(t, errors.Is(wrapped, ErrTerminalState))
	assert.False(t, errors.Is(wrapped, ErrInvalidTransition))

	var wfErr *WorkflowError
	assert.True(t, errors.As(wrapped, &wfErr))
	assert.Equal(t, "CLOSED", wfErr.From)
	assert.Contains(t, err.Error(), "CLOSED -> DRAFT")
}

func TestValidationErrorIsErrValidation(t *testing.T) {
	err := NewValidationError([]FieldError{
		{Field: "personalInfo.email", Message: "must be a valid email address"},
		{Message: "at least one section must be provided"},
	})

	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t,
		"validation failed: personalInfo.email: must be a valid email address; at least one section must be provided",
		err.Error())
}

func TestAppErrorHelpersWrapSentinels(t *testing.T) {
	assert.True(t, errors.Is(NewNotFoundError("bank not found"), ErrNotFound))
	assert.True(t, errors.Is(NewConflictError("bank exists"), ErrDuplicate))
	assert.True(t, errors.Is(NewValidationFailedError("bad"), ErrValidation))

	appErr := NewAppError(500, "failed to query", errors.New("boom"))
	assert.Equal(t, "failed to query: boom", appErr.Error())
}
