package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opcua-sdk/opcua-go/pkg/channel"
	"github.com/opcua-sdk/opcua-go/pkg/log"
)

// State represents the client's position in the session lifecycle.
type State uint8

const (
	// StateDisconnected means no secure channel exists.
	StateDisconnected State = iota
	// StateConnecting means the transport is being established.
	StateConnecting
	// StateConnected means the secure channel is open but no session
	// has been activated on it yet.
	StateConnected
	// StateSessionActivated means service calls may be issued.
	StateSessionActivated
	// StateSessionClosing means an orderly shutdown is in progress.
	StateSessionClosing
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateSessionActivated:
		return "SESSION_ACTIVATED"
	case StateSessionClosing:
		return "SESSION_CLOSING"
	default:
		return "UNKNOWN"
	}
}

// Tracker derives the session state from transport lifecycle events.
//
// All methods are safe for concurrent use. State change callbacks are
// invoked outside the tracker's lock, in registration order, from the
// goroutine that delivered the event.
type Tracker struct {
	mu        sync.RWMutex
	state     State
	sessionID uuid.UUID
	lastErr   error

	onStateChange []func(oldState, newState State)

	logger log.Logger
}

// NewTracker creates a tracker in the DISCONNECTED state. A nil logger
// disables protocol logging.
func NewTracker(logger log.Logger) *Tracker {
	return &Tracker{
		state:  StateDisconnected,
		logger: log.OrNoop(logger),
	}
}

// Current returns the current state.
func (t *Tracker) Current() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// IsActive reports whether a session is activated and service calls
// may be issued.
func (t *Tracker) IsActive() bool {
	return t.Current() == StateSessionActivated
}

// ActiveSession returns the ID of the activated session. The second
// return is false when no session is active; the ID and the state are
// read under the same lock, so the pair is always consistent.
func (t *Tracker) ActiveSession() (uuid.UUID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.state != StateSessionActivated {
		return uuid.Nil, false
	}
	return t.sessionID, true
}

// LastError returns the error that caused the most recent fault
// disconnect, or nil. It is cleared when a session activates.
func (t *Tracker) LastError() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastErr
}

// OnStateChange registers a callback for state transitions. Callbacks
// must not block; they run on the event delivery goroutine.
func (t *Tracker) OnStateChange(cb func(oldState, newState State)) {
	if cb == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStateChange = append(t.onStateChange, cb)
}

// HandleEvent applies a transport lifecycle event to the tracker.
//
// Events that do not form a valid transition from the current state
// are logged and ignored, with one exception: a disconnect always
// forces DISCONNECTED, whatever the current state.
func (t *Tracker) HandleEvent(e channel.Event) {
	t.mu.Lock()

	oldState := t.state
	var newState State
	valid := false

	switch e.Kind {
	case channel.EventConnecting:
		newState, valid = StateConnecting, oldState == StateDisconnected
	case channel.EventChannelOpened:
		newState, valid = StateConnected, oldState == StateConnecting
	case channel.EventSessionActivated:
		newState, valid = StateSessionActivated, oldState == StateConnected
	case channel.EventSessionClosing:
		newState, valid = StateSessionClosing, oldState == StateSessionActivated
	case channel.EventDisconnected:
		newState, valid = StateDisconnected, true
	}

	if !valid {
		t.mu.Unlock()
		t.logIgnored(e, oldState)
		return
	}
	if newState == oldState {
		t.mu.Unlock()
		return
	}

	t.state = newState
	switch newState {
	case StateSessionActivated:
		t.sessionID = e.SessionID
		t.lastErr = nil
	case StateDisconnected:
		t.sessionID = uuid.Nil
		if e.Err != nil {
			t.lastErr = e.Err
		}
	}
	sessionID := t.sessionID
	callbacks := make([]func(State, State), len(t.onStateChange))
	copy(callbacks, t.onStateChange)

	t.mu.Unlock()

	t.logTransition(oldState, newState, sessionID, e.Err)
	for _, cb := range callbacks {
		cb(oldState, newState)
	}
}

func (t *Tracker) logTransition(oldState, newState State, sessionID uuid.UUID, cause error) {
	sc := &log.StateChangeEvent{
		OldState: oldState.String(),
		NewState: newState.String(),
	}
	if cause != nil {
		sc.Reason = cause.Error()
	}
	event := log.Event{
		Timestamp:   time.Now(),
		Category:    log.CategoryState,
		StateChange: sc,
	}
	if sessionID != uuid.Nil {
		event.SessionID = sessionID.String()
	}
	t.logger.Log(event)
}

func (t *Tracker) logIgnored(e channel.Event, state State) {
	t.logger.Log(log.Event{
		Timestamp: time.Now(),
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Message: "ignored out-of-order lifecycle event",
			Context: fmt.Sprintf("%s in state %s", e.Kind, state),
		},
	})
}
