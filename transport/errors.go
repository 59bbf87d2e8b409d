package transport

import (
	"context"
	"errors"
	"fmt"
)

// TimeoutError indicates the per-request timeout elapsed before a response
// arrived. It carries the method and target for diagnostics.
type TimeoutError struct {
	Method string
	Target string
	Err    error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("transport: %s %s timed out", e.Method, e.Target)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// CancelledError indicates the caller cancelled the request. It is distinct
// from TimeoutError even though the underlying HTTP library conflates the
// two signals. errors.Is(err, context.Canceled) holds for it.
type CancelledError struct {
	Method string
	Target string
	Err    error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("transport: %s %s cancelled", e.Method, e.Target)
}

func (e *CancelledError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return context.Canceled
}

// APIError is a structured error reported by the service in a JSON body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("transport: api error (HTTP %d): %s", e.Status, e.Message)
}

// StatusError is an unstructured non-success response: a status code and
// reason phrase with no parseable error body.
type StatusError struct {
	Status int
	Reason string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("transport: HTTP %d %s", e.Status, e.Reason)
}

// ConnectionError indicates the request never produced a response (refused,
// DNS failure, reset).
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("transport: connection failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IsTimeout reports whether err is a request timeout.
func IsTimeout(err error) bool {
	var e *TimeoutError
	return errors.As(err, &e)
}

// IsCancelled reports whether err is a caller-initiated cancellation.
func IsCancelled(err error) bool {
	var e *CancelledError
	if errors.As(err, &e) {
		return true
	}
	return errors.Is(err, context.Canceled)
}

// IsConnection reports whether err is a connection-level failure.
func IsConnection(err error) bool {
	var e *ConnectionError
	return errors.As(err, &e)
}

// ErrorStatus returns the HTTP status carried by a service-reported error,
// or 0 for connection-level failures.
func ErrorStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		return api.Status
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// IsRetryable reports whether a failed call may be safely reattempted:
// connection failures, timeouts, 429 and 5xx service errors. Cancellation
// and other 4xx client errors are never retried.
func IsRetryable(err error) bool {
	if IsCancelled(err) {
		return false
	}
	if IsTimeout(err) || IsConnection(err) {
		return true
	}
	status := ErrorStatus(err)
	return status == 429 || status >= 500
}
