package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the resource was modified concurrently or is in a conflicting state.
var ErrConflict = errors.New("resource conflict")

// ErrUnauthorized indicates the caller could not be authenticated.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates the caller is authenticated but may not touch the resource.
var ErrForbidden = errors.New("forbidden")

// ErrRefreshTokenExpired indicates the presented refresh token is past its expiry.
var ErrRefreshTokenExpired = errors.New("refresh token expired")

// ErrFileTooLarge indicates an uploaded file exceeds the configured size limit.
var ErrFileTooLarge = errors.New("file too large")

// ErrUnsupportedMediaType indicates an uploaded file is not one of the accepted types.
var ErrUnsupportedMediaType = errors.New("unsupported media type")

// AppError carries an HTTP-ish status code alongside a message and the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError wraps ErrNotFound with a message.
func NewNotFoundError(message string) error {
	return NewAppError(404, message, ErrNotFound)
}

// NewConflictError wraps ErrDuplicate with a message.
func NewConflictError(message string) error {
	return NewAppError(409, message, ErrDuplicate)
}

// NewForbiddenError wraps ErrForbidden with a message.
func NewForbiddenError(message string) error {
	return NewAppError(403, message, ErrForbidden)
}

// NewValidationFailedError wraps ErrValidation with a message.
func NewValidationFailedError(message string) error {
	return NewAppError(400, message, ErrValidation)
}

// FieldError describes a single structural problem with a submitted field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError groups field errors. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		if fe.Field == "" {
			parts = append(parts, fe.Message)
			continue
		}
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError from field errors.
func NewValidationError(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}
