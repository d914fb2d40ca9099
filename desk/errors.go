package desk

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid desk configuration")
	// ErrValidationRejected indicates desk refused a payload with 422.
	// Execute reports this case as absence; callers may use it to build their own error.
	ErrValidationRejected = errors.New("desk failed to validate resource")
)

// TransportError is returned when a request produced no HTTP response at all
type TransportError struct {
	Method   string
	Resource string
	Err      error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("desk request %s %s failed: %v", e.Method, e.Resource, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError represents a non-success response from the Desk API
type APIError struct {
	StatusCode int
	Status     string
	Body       string
	// Err is the lower-level error that accompanied the response, if any
	Err error
}

// Error implements the error interface
func (e *APIError) Error() string {
	status := e.Status
	if status == "" {
		status = http.StatusText(e.StatusCode)
	}
	msg := fmt.Sprintf("desk API error: status %d: %s: %s", e.StatusCode, status, e.Body)
	if e.Err != nil {
		msg += fmt.Sprintf(" (%v)", e.Err)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsRateLimited checks if the request was still throttled after retrying
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// DecodeError indicates a success body could not be decoded into the target type
type DecodeError struct {
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode desk response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// errorf builds a configuration error that matches ErrInvalidConfig
func errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
