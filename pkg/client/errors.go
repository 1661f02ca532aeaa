package client

import (
	"errors"
	"fmt"

	"github.com/opcua-sdk/opcua-go/pkg/continuation"
	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// Client errors.
var (
	// ErrNotConnected is returned when an operation requires an
	// activated session and none exists.
	ErrNotConnected = errors.New("no activated session")

	// ErrRequestTimeout is returned when the transport gave up waiting
	// for a response. It matches ErrNotConnected under errors.Is: the
	// session may or may not have survived, and the caller must treat
	// it the same way.
	ErrRequestTimeout = fmt.Errorf("request timed out: %w", ErrNotConnected)

	// ErrBatchEmpty is returned for batch operations with no items.
	ErrBatchEmpty = errors.New("batch is empty")

	// ErrBatchTooLarge is returned when a batch exceeds the configured
	// maximum size.
	ErrBatchTooLarge = errors.New("batch exceeds maximum size")

	// ErrUnexpectedResponse is returned when a response does not match
	// the request shape, such as a result count mismatch.
	ErrUnexpectedResponse = errors.New("unexpected response shape")

	// ErrSubscriptionClosed is returned when monitoring is attempted
	// on a subscription that was closed or torn down by a disconnect.
	ErrSubscriptionClosed = errors.New("subscription is closed")
)

// ServiceError reports a service call that failed as a whole. Per-item
// failures are status codes inside the results instead.
type ServiceError struct {
	// Service is the name of the failed service, such as "Read".
	Service string

	// Status is the service-level result code.
	Status ua.StatusCode
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s service failed: %s", e.Service, e.Status)
}

// Unwrap exposes the status code to errors.Is and errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Status
}

// serviceStatusErr maps a bad per-node or service-level status to the
// error the caller sees. Unknown-node statuses map to
// ua.ErrInvalidNodeID, stale continuation points to the token error,
// everything else to a ServiceError.
func serviceStatusErr(service string, status ua.StatusCode) error {
	switch status {
	case ua.BadNodeIDUnknown, ua.BadNodeIDInvalid:
		return fmt.Errorf("%s: %s: %w", service, status, ua.ErrInvalidNodeID)
	case ua.BadContinuationPointInvalid, ua.BadNoContinuationPoints:
		return fmt.Errorf("%s: %s: %w", service, status, continuation.ErrUnknownOrExpiredToken)
	default:
		return &ServiceError{Service: service, Status: status}
	}
}
