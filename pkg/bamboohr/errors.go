package bamboohr

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is matched by APIErrors with a 404 status.
var ErrNotFound = errors.New("resource not found")

// APIError is a non-2xx response from BambooHR.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	// Message comes from the X-BambooHR-Error-Message header, falling back
	// to the response body.
	Message string
}

func (e *APIError) Error() string {
	retryability := "permanent"
	if e.Retryable() {
		retryability = "retryable"
	}
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: API returned status %d (%s): %s", e.Method, e.Path, e.StatusCode, retryability, msg)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Retryable reports whether the request may succeed if sent again.
func (e *APIError) Retryable() bool {
	return isRetryableHTTPStatus(e.StatusCode)
}

// isRetryableHTTPStatus determines if an HTTP status code represents a retryable error
func isRetryableHTTPStatus(status int) bool {
	switch {
	case status >= 500:
		return true
	case status == http.StatusTooManyRequests:
		return true
	case status == http.StatusRequestTimeout:
		return true
	default:
		return false
	}
}
