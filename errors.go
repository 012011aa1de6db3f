package flagvault

import "github.com/flagvault/flagvault-go/internal/domain"

// Error types that may be returned by FlagVault operations. The concrete
// types live in internal/domain; the aliases keep them usable with
// errors.As at the public surface.

// ValidationError indicates bad caller input: a missing flag key, a
// malformed target identifier, or conflicting evaluation parameters.
// It is the only error IsEnabled ever returns.
type ValidationError = domain.ValidationError

// AuthenticationError indicates the service rejected the API key.
type AuthenticationError = domain.AuthenticationError

// NetworkError indicates a connection failure or timeout.
type NetworkError = domain.NetworkError

// ServiceError indicates a non-2xx response or a malformed response body.
type ServiceError = domain.ServiceError

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool { return domain.IsValidationError(err) }

// IsAuthenticationError reports whether err is an AuthenticationError.
func IsAuthenticationError(err error) bool { return domain.IsAuthenticationError(err) }

// IsNetworkError reports whether err is a NetworkError.
func IsNetworkError(err error) bool { return domain.IsNetworkError(err) }

// IsServiceError reports whether err is a ServiceError.
func IsServiceError(err error) bool { return domain.IsServiceError(err) }
