package domain

import (
	"errors"
	"fmt"
)

// -----------------------------
// ValidationError
// -----------------------------

// ValidationError indicates bad caller input: an empty flag key, a malformed
// target identifier, or conflicting context/target parameters. It is always
// surfaced to the caller, never suppressed.
type ValidationError struct {
	Message string
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// -----------------------------
// AuthenticationError
// -----------------------------

// AuthenticationError indicates the service rejected the API key
// (HTTP 401 or 403).
type AuthenticationError struct {
	Message string
}

func NewAuthenticationError(message string) *AuthenticationError {
	return &AuthenticationError{Message: message}
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication error: %s", e.Message)
}

func IsAuthenticationError(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}

// -----------------------------
// NetworkError
// -----------------------------

// NetworkError indicates a transport-level failure: connection refused,
// timeout, or a cancelled request.
type NetworkError struct {
	Message string
	Err     error
}

func NewNetworkError(message string, err error) *NetworkError {
	return &NetworkError{Message: message, Err: err}
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("network error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("network error: %s", e.Message)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// -----------------------------
// ServiceError
// -----------------------------

// ServiceError indicates the service answered but unusably: a non-2xx status
// other than 401/403, or a malformed success body.
type ServiceError struct {
	StatusCode int
	Message    string
}

func NewServiceError(statusCode int, message string) *ServiceError {
	return &ServiceError{StatusCode: statusCode, Message: message}
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("service error: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("service error: %s", e.Message)
}

func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}
