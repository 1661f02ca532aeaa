package channel

import (
	"time"

	"github.com/google/uuid"

	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// EventKind identifies a connection lifecycle event.
type EventKind uint8

const (
	// EventConnecting: the transport started establishing the channel.
	EventConnecting EventKind = iota + 1

	// EventChannelOpened: the secure channel is open, no session yet.
	EventChannelOpened

	// EventSessionActivated: a session is activated and services can
	// be invoked. Carries the activation's session ID.
	EventSessionActivated

	// EventSessionClosing: a graceful close has started.
	EventSessionClosing

	// EventDisconnected: channel and session are gone. Err carries the
	// fault when the disconnect was not requested.
	EventDisconnected
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventConnecting:
		return "CONNECTING"
	case EventChannelOpened:
		return "CHANNEL_OPENED"
	case EventSessionActivated:
		return "SESSION_ACTIVATED"
	case EventSessionClosing:
		return "SESSION_CLOSING"
	case EventDisconnected:
		return "DISCONNECTED"
	default:
		return "UNKNOWN"
	}
}

// Event is a confirmed lifecycle transition reported by the transport.
type Event struct {
	Kind EventKind
	Time time.Time

	// SessionID is set for EventSessionActivated and identifies the
	// activation. A reconnect produces a new session ID.
	SessionID uuid.UUID

	// Err is set for EventDisconnected when the disconnect was caused
	// by a fault rather than a requested close.
	Err error
}

// Notification carries one monitored-item value change.
type Notification struct {
	SubscriptionID uint32

	// ClientHandle is the identifier the client assigned when the
	// monitored item was created.
	ClientHandle uint32

	Value ua.DataValue
}
