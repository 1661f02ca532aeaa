package channel

import (
	"context"
	"errors"
)

// Transport errors.
var (
	ErrClosed         = errors.New("transport is closed")
	ErrRequestTimeout = errors.New("request timed out")
	ErrNoSession      = errors.New("no activated session")
)

// Transport is the secure-channel engine the client core drives.
// Implemented by the test harness simulator; production deployments
// plug in a real protocol stack.
type Transport interface {
	// Connect establishes the secure channel and activates a session.
	// The corresponding lifecycle events are delivered to the event
	// handler before Connect returns.
	Connect(ctx context.Context) error

	// Close closes the session and the channel. Safe to call in any
	// state.
	Close(ctx context.Context) error

	// Invoke sends one service request and waits for its response.
	// A transport-level timeout is reported as ErrRequestTimeout.
	Invoke(ctx context.Context, req Request) (Response, error)

	// SetEventHandler installs the lifecycle event handler. Must be
	// called before Connect; the handler must not block.
	SetEventHandler(handler func(Event))

	// SetNotificationHandler installs the handler for subscription
	// notifications. The handler must not block.
	SetNotificationHandler(handler func(Notification))
}
