package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// ConnectionErrorMessage is what users see when the backend cannot be reached.
const ConnectionErrorMessage = "Connection error. Please try again."

var (
	// ErrConnection wraps transport failures: refused connections, timeouts, unreadable bodies.
	ErrConnection = errors.New("backend connection error")
	// ErrUnauthorized is returned for any 401 from the backend.
	ErrUnauthorized = errors.New("backend rejected credentials")
)

// APIError is an application-level failure: a non-2xx status or a body with success=false.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error (%d): %s", e.StatusCode, e.Message)
}

func newAPIError(status int, message string) *APIError {
	if message == "" {
		message = http.StatusText(status)
	}
	if message == "" {
		message = "request failed"
	}
	return &APIError{StatusCode: status, Message: message}
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
