package esewa

import (
	"errors"
	"fmt"
)

var (
	// ErrRequestFailed matches every failure of a gateway call.
	ErrRequestFailed = errors.New("esewa request failed")

	ErrGatewayUnavailable = errors.New("esewa gateway unavailable")
	ErrUnknownEnvironment = errors.New("unknown esewa environment")
	ErrInvalidInput       = errors.New("invalid input")
	ErrResponseTooLarge   = errors.New("response body exceeds limit")
)

// GatewayError is returned when the gateway answers with a non-2xx status.
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("gateway responded %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("gateway responded %d", e.StatusCode)
}

func (e *GatewayError) Unwrap() error {
	return ErrRequestFailed
}

// Temporary reports whether the status indicates a gateway-side fault.
func (e *GatewayError) Temporary() bool {
	return e.StatusCode >= 500
}

// ValidationError represents a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

func requestFailed(op string, err error) error {
	if errors.Is(err, ErrRequestFailed) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrRequestFailed, err)
}
