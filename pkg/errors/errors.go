package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeDecode     ErrorType = "decode"
	ErrorTypeTooSmall   ErrorType = "too_small"
	ErrorTypeRender     ErrorType = "render"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error represents a pipeline error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Wrap creates a typed error around an underlying cause
func Wrap(errorType ErrorType, err error, message string) *Error {
	return &Error{
		Type:    errorType,
		Message: fmt.Sprintf("%s: %v", message, err),
		Err:     err,
	}
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether err carries the given ErrorType
func IsType(err error, errorType ErrorType) bool {
	return err != nil && TypeOf(err) == errorType
}

// IsRetryable checks if an error type should be retried.
// Undersized responses are retried exactly like transient network failures.
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeValidation:
		return true
	case ErrorTypeDecode, ErrorTypeTooSmall, ErrorTypeRender, ErrorTypeIO:
		return false
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code should be retried.
// Any rejected status counts: the origin may answer the next primed session.
func IsRetryableStatusCode(statusCode int) bool {
	return statusCode == 0 || statusCode >= 400
}
