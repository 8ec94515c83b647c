package catalog

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when a single-resource lookup succeeds upstream
// but carries no data.
var ErrNotFound = errors.New("catalog resource not found")

// TransportError wraps a network or TLS failure reaching upstream.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("catalog transport error on %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UpstreamStatusError reports a non-200 upstream response. Message carries
// the parsed upstream error body when one was available.
type UpstreamStatusError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *UpstreamStatusError) Error() string {
	msg := fmt.Sprintf("catalog API error: HTTP %d on %s", e.StatusCode, e.Endpoint)
	if e.StatusCode == http.StatusUnauthorized {
		msg += " - unauthorized"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.StatusCode == http.StatusUnauthorized {
		msg += " (check that the API token is valid and not expired)"
	}
	return msg
}

// Unauthorized reports whether the failure was an auth/expired-token
// condition rather than a transient upstream problem.
func (e *UpstreamStatusError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// MalformedResponseError reports a 200 response whose body failed to parse
// as JSON.
type MalformedResponseError struct {
	Endpoint string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("catalog API returned invalid JSON on %s: %v", e.Endpoint, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// errorClass labels a fetch failure for logging and metrics.
func errorClass(err error) string {
	var statusErr *UpstreamStatusError
	switch {
	case errors.As(err, &statusErr):
		if statusErr.Unauthorized() {
			return "unauthorized"
		}
		return "upstream_status"
	case errors.As(err, new(*MalformedResponseError)):
		return "malformed_response"
	case errors.As(err, new(*TransportError)):
		return "transport"
	default:
		return "other"
	}
}
