package virl2

import (
	"errors"
	"fmt"
	"net/http"
)

// InitializationError reports a construction-time failure: unresolvable
// credentials, a malformed URL, or an authentication failure when the client
// is configured to raise for it.
type InitializationError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *InitializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("initialization failed: %s: %v", e.Message, e.Err)
	}

	return "initialization failed: " + e.Message
}

// Unwrap returns the wrapped cause, if any.
func (e *InitializationError) Unwrap() error {
	return e.Err
}

// NewInitializationError creates an InitializationError with a formatted message.
func NewInitializationError(format string, args ...interface{}) *InitializationError {
	return &InitializationError{Message: fmt.Sprintf(format, args...)}
}

// APIError represents a non-2xx response from the controller. The original
// status and body are preserved for caller inspection.
type APIError struct {
	StatusCode int
	Status     string
	Method     string
	URL        string
	Body       []byte
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if len(e.Body) > 0 {
		return fmt.Sprintf("%s %s: %s: %s", e.Method, e.URL, e.Status, e.Body)
	}

	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Status)
}

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired    = errors.New("config is required")
	ErrInvalidURLScheme  = errors.New("invalid URL scheme")
	ErrUsernameRequired  = errors.New("username is required")
	ErrPasswordRequired  = errors.New("password is required")
	ErrTokenUnavailable  = errors.New("no authentication token available")
	ErrUnknownTopology   = errors.New("unknown topology file extension")
	ErrNoLabIDInResponse = errors.New("no lab ID in import response")
)

// AsAPIError returns the *APIError in err's chain, or nil.
func AsAPIError(err error) *APIError {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr
	}

	return nil
}

// IsUnauthorized checks if the error is a 401 response.
func IsUnauthorized(err error) bool {
	apiErr := AsAPIError(err)

	return apiErr != nil && apiErr.StatusCode == http.StatusUnauthorized
}

// IsNotFound checks if the error is a 404 response.
func IsNotFound(err error) bool {
	apiErr := AsAPIError(err)

	return apiErr != nil && apiErr.StatusCode == http.StatusNotFound
}
