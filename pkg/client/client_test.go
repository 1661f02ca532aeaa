package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/opcua-sdk/opcua-go/pkg/channel"
	"github.com/opcua-sdk/opcua-go/pkg/session"
	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// fakeTransport is a scripted in-memory transport. The handler decides
// each response; connect and close emit the full lifecycle event
// sequence synchronously.
type fakeTransport struct {
	mu      sync.Mutex
	events  func(channel.Event)
	notify  func(channel.Notification)
	handler func(channel.Request) (channel.Response, error)

	sessionID  uuid.UUID
	connectErr error
	silent     bool // suppress lifecycle events on connect
	invokes    int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{sessionID: uuid.New()}
}

func (f *fakeTransport) Connect(ctx context.Context) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	if f.silent {
		return nil
	}
	f.events(channel.Event{Kind: channel.EventConnecting})
	f.events(channel.Event{Kind: channel.EventChannelOpened})
	f.events(channel.Event{Kind: channel.EventSessionActivated, SessionID: f.sessionID})
	return nil
}

func (f *fakeTransport) Close(ctx context.Context) error {
	f.events(channel.Event{Kind: channel.EventSessionClosing})
	f.events(channel.Event{Kind: channel.EventDisconnected})
	return nil
}

func (f *fakeTransport) Invoke(ctx context.Context, req channel.Request) (channel.Response, error) {
	f.mu.Lock()
	f.invokes++
	handler := f.handler
	f.mu.Unlock()
	if handler == nil {
		return nil, fmt.Errorf("no handler for %T", req)
	}
	return handler(req)
}

func (f *fakeTransport) SetEventHandler(h func(channel.Event)) {
	f.events = h
}

func (f *fakeTransport) SetNotificationHandler(h func(channel.Notification)) {
	f.notify = h
}

func (f *fakeTransport) setHandler(h func(channel.Request) (channel.Response, error)) {
	f.mu.Lock()
	f.handler = h
	f.mu.Unlock()
}

func (f *fakeTransport) invokeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.invokes
}

// drop simulates a transport fault.
func (f *fakeTransport) drop(err error) {
	f.events(channel.Event{Kind: channel.EventDisconnected, Err: err})
}

// reconnect simulates a fresh activation with a new session ID.
func (f *fakeTransport) reconnect() {
	f.sessionID = uuid.New()
	f.events(channel.Event{Kind: channel.EventConnecting})
	f.events(channel.Event{Kind: channel.EventChannelOpened})
	f.events(channel.Event{Kind: channel.EventSessionActivated, SessionID: f.sessionID})
}

var _ channel.Transport = (*fakeTransport)(nil)

// newTestClient returns a connected client on a fake transport.
func newTestClient(t *testing.T) (*Client, *fakeTransport) {
	t.Helper()
	ft := newFakeTransport()
	c := New(ft, DefaultConfig())
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	t.Cleanup(func() { c.continuations.Close() })
	return c, ft
}

func TestConnectLifecycle(t *testing.T) {
	ft := newFakeTransport()
	c := New(ft, DefaultConfig())
	defer c.continuations.Close()

	if got := c.State(); got != session.StateDisconnected {
		t.Fatalf("state before connect = %s", got)
	}
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	if got := c.State(); got != session.StateSessionActivated {
		t.Errorf("state after connect = %s, want %s", got, session.StateSessionActivated)
	}
	id, ok := c.SessionID()
	if !ok || id != ft.sessionID {
		t.Errorf("SessionID() = %s, %t, want %s, true", id, ok, ft.sessionID)
	}

	// A second connect on an active session is a no-op.
	if err := c.Connect(context.Background()); err != nil {
		t.Errorf("second Connect() failed: %v", err)
	}
}

func TestConnectTransportError(t *testing.T) {
	ft := newFakeTransport()
	ft.connectErr = errors.New("connection refused")
	c := New(ft, DefaultConfig())
	defer c.continuations.Close()

	if err := c.Connect(context.Background()); !errors.Is(err, ft.connectErr) {
		t.Errorf("Connect() = %v, want %v", err, ft.connectErr)
	}
	if got := c.State(); got != session.StateDisconnected {
		t.Errorf("state after failed connect = %s", got)
	}
}

func TestConnectWithoutActivation(t *testing.T) {
	ft := newFakeTransport()
	ft.silent = true
	c := New(ft, DefaultConfig())
	defer c.continuations.Close()

	err := c.Connect(context.Background())
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Connect() = %v, want ErrNotConnected", err)
	}
}

func TestCloseEndsSession(t *testing.T) {
	c, _ := newTestClient(t)

	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if got := c.State(); got != session.StateDisconnected {
		t.Errorf("state after close = %s", got)
	}
	// Close is idempotent.
	if err := c.Close(context.Background()); err != nil {
		t.Errorf("second Close() failed: %v", err)
	}
}

func TestFailFastWhenNotConnected(t *testing.T) {
	ft := newFakeTransport()
	c := New(ft, DefaultConfig())
	defer c.continuations.Close()
	ctx := context.Background()
	node := ua.NewNodeIDNumeric(2, 1)

	calls := []struct {
		name string
		run  func() error
	}{
		{"ReadAttribute", func() error {
			_, err := c.ReadAttribute(ctx, node, ua.AttributeIDValue)
			return err
		}},
		{"ReadAttributes", func() error {
			_, err := c.ReadAttributes(ctx, []ua.ReadValueID{{NodeID: node, AttributeID: ua.AttributeIDValue}})
			return err
		}},
		{"WriteValue", func() error {
			return c.WriteValue(ctx, node, int32(1))
		}},
		{"CallMethod", func() error {
			_, err := c.CallMethod(ctx, node, node, nil)
			return err
		}},
		{"Browse", func() error {
			_, err := c.Browse(ctx, node, nil)
			return err
		}},
		{"BrowseAll", func() error {
			_, err := c.BrowseAll(ctx, node, nil)
			return err
		}},
		{"CreateSubscription", func() error {
			_, err := c.CreateSubscription(ctx, nil)
			return err
		}},
	}
	for _, call := range calls {
		if err := call.run(); !errors.Is(err, ErrNotConnected) {
			t.Errorf("%s: err = %v, want ErrNotConnected", call.name, err)
		}
	}
	if got := ft.invokeCount(); got != 0 {
		t.Errorf("transport saw %d requests while disconnected, want 0", got)
	}
}

func TestRequestTimeoutMapsToNotConnected(t *testing.T) {
	c, ft := newTestClient(t)
	ft.setHandler(func(channel.Request) (channel.Response, error) {
		return nil, channel.ErrRequestTimeout
	})

	_, err := c.ReadValue(context.Background(), ua.ServerStatusCurrentTime)
	if !errors.Is(err, ErrRequestTimeout) {
		t.Errorf("err = %v, want ErrRequestTimeout", err)
	}
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("err = %v, want ErrNotConnected match", err)
	}
}

func TestTransportClosedMapsToNotConnected(t *testing.T) {
	c, ft := newTestClient(t)
	ft.setHandler(func(channel.Request) (channel.Response, error) {
		return nil, channel.ErrClosed
	})

	_, err := c.ReadValue(context.Background(), ua.ServerStatusCurrentTime)
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("err = %v, want ErrNotConnected match", err)
	}
}

func TestServiceLevelFailure(t *testing.T) {
	c, ft := newTestClient(t)
	ft.setHandler(func(req channel.Request) (channel.Response, error) {
		resp := &channel.ReadResponse{}
		resp.ServiceResult = ua.BadInternalError
		return resp, nil
	})

	_, err := c.ReadAttributes(context.Background(), []ua.ReadValueID{
		{NodeID: ua.Server, AttributeID: ua.AttributeIDBrowseName},
	})
	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *ServiceError", err)
	}
	if se.Service != "Read" || se.Status != ua.BadInternalError {
		t.Errorf("ServiceError = %q/%s, want Read/%s", se.Service, se.Status, ua.BadInternalError)
	}
	if !errors.Is(err, ua.BadInternalError) {
		t.Errorf("errors.Is(err, BadInternalError) = false")
	}
}

func TestStatsCounters(t *testing.T) {
	c, ft := newTestClient(t)
	ft.setHandler(func(req channel.Request) (channel.Response, error) {
		rr := req.(*channel.ReadRequest)
		return &channel.ReadResponse{Results: make([]ua.DataValue, len(rr.NodesToRead))}, nil
	})

	for i := 0; i < 3; i++ {
		if _, err := c.ReadAttribute(context.Background(), ua.Server, ua.AttributeIDBrowseName); err != nil {
			t.Fatalf("read %d failed: %v", i, err)
		}
	}
	ft.setHandler(func(channel.Request) (channel.Response, error) {
		return nil, channel.ErrRequestTimeout
	})
	_, _ = c.ReadAttribute(context.Background(), ua.Server, ua.AttributeIDBrowseName)

	stats := c.Stats()
	if stats.RequestsSent != 4 {
		t.Errorf("RequestsSent = %d, want 4", stats.RequestsSent)
	}
	if stats.RequestsFailed != 1 {
		t.Errorf("RequestsFailed = %d, want 1", stats.RequestsFailed)
	}
	if stats.State != session.StateSessionActivated {
		t.Errorf("State = %s", stats.State)
	}
	if stats.SessionID == uuid.Nil {
		t.Error("SessionID not set in stats")
	}
}

func TestOnStateChangeForwarded(t *testing.T) {
	ft := newFakeTransport()
	c := New(ft, DefaultConfig())
	defer c.continuations.Close()

	var transitions []session.State
	c.OnStateChange(func(_, newState session.State) {
		transitions = append(transitions, newState)
	})
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}

	want := []session.State{session.StateConnecting, session.StateConnected, session.StateSessionActivated}
	if len(transitions) != len(want) {
		t.Fatalf("saw %d transitions, want %d", len(transitions), len(want))
	}
	for i, s := range want {
		if transitions[i] != s {
			t.Errorf("transition %d = %s, want %s", i, transitions[i], s)
		}
	}
}
