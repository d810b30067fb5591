package unisphere

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is returned when Unisphere answers with a non-2xx status. The
// response body is retained (truncated) because Unisphere reports most
// failures as a JSON message body.
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("unisphere: GET %s returned %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// TransportError wraps failures that occurred before an HTTP status was
// available: DNS, TLS, connection and timeout errors.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("unisphere: GET %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err is an APIError carrying a 401. A 401
// almost always means bad credentials rather than a transient fault.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether err is an APIError carrying a 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
