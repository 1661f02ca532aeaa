package log

import (
	"time"

	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// Event represents one protocol log event. CBOR encoding uses integer
// keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the session activation (UUID), when one
	// exists at event time.
	SessionID string `cbor:"2,keyasint,omitempty"`

	// EndpointURL is the server endpoint the client talks to.
	EndpointURL string `cbor:"3,keyasint,omitempty"`

	// Direction indicates message flow for service and subscription
	// events.
	Direction Direction `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// Type-specific payload (one of these will be set).
	Service      *ServiceEvent      `cbor:"10,keyasint,omitempty"`
	StateChange  *StateChangeEvent  `cbor:"11,keyasint,omitempty"`
	Discovery    *DiscoveryEvent    `cbor:"12,keyasint,omitempty"`
	Subscription *SubscriptionEvent `cbor:"13,keyasint,omitempty"`
	Error        *ErrorEventData    `cbor:"14,keyasint,omitempty"`
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryService indicates a service call leg.
	CategoryService Category = 0
	// CategoryState indicates a session state change.
	CategoryState Category = 1
	// CategoryDiscovery indicates an mDNS discovery event.
	CategoryDiscovery Category = 2
	// CategorySubscription indicates a monitored-item notification.
	CategorySubscription Category = 3
	// CategoryError indicates an error event.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryService:
		return "SERVICE"
	case CategoryState:
		return "STATE"
	case CategoryDiscovery:
		return "DISCOVERY"
	case CategorySubscription:
		return "SUBSCRIPTION"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ServiceEvent captures one leg of a service call: the outgoing request
// or the incoming response.
type ServiceEvent struct {
	// Name is the service name ("Read", "Browse", "BrowseNext", ...).
	Name string `cbor:"1,keyasint"`

	// RequestHandle correlates request/response pairs.
	RequestHandle uint32 `cbor:"2,keyasint,omitempty"`

	// Operations is the batch size: nodes read, nodes browsed,
	// continuation points resumed, methods called.
	Operations int `cbor:"3,keyasint,omitempty"`

	// ServiceResult is the service-level status (response only).
	ServiceResult *ua.StatusCode `cbor:"4,keyasint,omitempty"`

	// RoundTrip is the request-to-response duration (response only).
	// Stored as nanoseconds.
	RoundTrip *time.Duration `cbor:"5,keyasint,omitempty"`
}

// StateChangeEvent captures a session state transition.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// DiscoveryEvent captures an mDNS discovery or removal.
type DiscoveryEvent struct {
	// Instance is the advertised instance name.
	Instance string `cbor:"1,keyasint"`

	// Host is the resolved hostname.
	Host string `cbor:"2,keyasint,omitempty"`

	// Port is the advertised port.
	Port int `cbor:"3,keyasint,omitempty"`

	// Removed indicates the instance disappeared.
	Removed bool `cbor:"4,keyasint,omitempty"`
}

// SubscriptionEvent captures a monitored-item notification.
type SubscriptionEvent struct {
	// SubscriptionID identifies the server-side subscription.
	SubscriptionID uint32 `cbor:"1,keyasint"`

	// ClientHandle identifies the monitored item.
	ClientHandle uint32 `cbor:"2,keyasint,omitempty"`

	// Status is the quality of the delivered value.
	Status *ua.StatusCode `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`
}
