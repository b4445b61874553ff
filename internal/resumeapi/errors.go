package resumeapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrCredentialExpired is returned before any round trip when the bearer
// credential's exp claim is in the past.
var ErrCredentialExpired = errors.New("credential expired")

// GenericMessage is shown when a failure carries no usable detail.
const GenericMessage = "Something went wrong while talking to the résumé service. Please try again."

// APIError is a non-2xx response from the service.
type APIError struct {
	Method  string
	URL     string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Status)
}

// NotFound reports whether the service answered 404.
func (e *APIError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// TransportError wraps a failure that prevented a response from arriving.
type TransportError struct {
	Method string
	URL    string
	Cause  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// UserMessage turns a client error into text fit for a notice.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, ErrCredentialExpired) {
		return "Your session has expired. Provide a fresh API token and try again."
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The résumé service did not respond in time. Please try again."
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		switch {
		case apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden:
			return "You are not authorized to perform this action."
		case apiErr.NotFound():
			return "The résumé could not be found."
		}
		return GenericMessage
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return "Could not reach the résumé service. Check your connection and try again."
	}
	return GenericMessage
}
