package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/opcua-sdk/opcua-go/pkg/channel"
	"github.com/opcua-sdk/opcua-go/pkg/continuation"
	"github.com/opcua-sdk/opcua-go/pkg/log"
	"github.com/opcua-sdk/opcua-go/pkg/session"
	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// DefaultMaxBatchSize caps batch operations. Most servers advertise an
// operation limit in this range.
const DefaultMaxBatchSize = 1000

// Config holds client settings. Field defaults apply when left zero.
type Config struct {
	// MaxBatchSize caps the item count of ReadAttributes, BrowseMany,
	// and other batch operations. Default: DefaultMaxBatchSize.
	MaxBatchSize int

	// Continuation configures the browse continuation handle store.
	// Default: continuation.DefaultConfig().
	Continuation continuation.Config

	// Logger receives protocol events. Nil disables logging.
	Logger log.Logger
}

// DefaultConfig returns a Config with default settings.
func DefaultConfig() Config {
	return Config{
		MaxBatchSize: DefaultMaxBatchSize,
		Continuation: continuation.DefaultConfig(),
	}
}

// Client is a high-level OPC UA client. All methods are safe for
// concurrent use.
type Client struct {
	transport channel.Transport
	cfg       Config
	logger    log.Logger

	sessions      *session.Tracker
	continuations *continuation.Store

	nextRequestHandle atomic.Uint32
	nextClientHandle  atomic.Uint32

	requestsSent   atomic.Uint64
	requestsFailed atomic.Uint64
	notifications  atomic.Uint64

	subMu sync.RWMutex
	subs  map[uint32]*Subscription

	closeOnce sync.Once
}

// New creates a client on top of a transport. The client installs
// itself as the transport's event and notification handler.
func New(transport channel.Transport, cfg Config) *Client {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = DefaultMaxBatchSize
	}
	if cfg.Continuation == (continuation.Config{}) {
		cfg.Continuation = continuation.DefaultConfig()
	}
	logger := log.OrNoop(cfg.Logger)

	c := &Client{
		transport:     transport,
		cfg:           cfg,
		logger:        logger,
		sessions:      session.NewTracker(logger),
		continuations: continuation.NewStore(cfg.Continuation),
		subs:          make(map[uint32]*Subscription),
	}
	transport.SetEventHandler(c.handleEvent)
	transport.SetNotificationHandler(c.handleNotification)
	return c
}

// Connect establishes the transport and waits for an activated
// session. It is a no-op when a session is already active.
func (c *Client) Connect(ctx context.Context) error {
	if c.sessions.IsActive() {
		return nil
	}
	if err := c.transport.Connect(ctx); err != nil {
		return err
	}
	if !c.sessions.IsActive() {
		return fmt.Errorf("transport connected without activating a session: %w", ErrNotConnected)
	}
	return nil
}

// Close shuts the session and the transport down and releases client
// resources. Only the first call does anything.
func (c *Client) Close(ctx context.Context) error {
	var err error
	c.closeOnce.Do(func() {
		err = c.transport.Close(ctx)
		c.continuations.Close()
	})
	return err
}

// State returns the current session state.
func (c *Client) State() session.State {
	return c.sessions.Current()
}

// SessionID returns the ID of the activated session, or false when no
// session is active.
func (c *Client) SessionID() (uuid.UUID, bool) {
	return c.sessions.ActiveSession()
}

// OnStateChange registers a callback for session state transitions.
// Callbacks must not block.
func (c *Client) OnStateChange(cb func(oldState, newState session.State)) {
	c.sessions.OnStateChange(cb)
}

// Stats is a point-in-time snapshot of client counters.
type Stats struct {
	State          session.State
	SessionID      uuid.UUID
	RequestsSent   uint64
	RequestsFailed uint64
	Notifications  uint64

	// OutstandingContinuations counts unconsumed browse handles.
	OutstandingContinuations int

	Subscriptions  int
	MonitoredItems int
}

// Stats returns a snapshot of the client's counters.
func (c *Client) Stats() Stats {
	s := Stats{
		State:                    c.sessions.Current(),
		RequestsSent:             c.requestsSent.Load(),
		RequestsFailed:           c.requestsFailed.Load(),
		Notifications:            c.notifications.Load(),
		OutstandingContinuations: c.continuations.Outstanding(),
	}
	if id, ok := c.sessions.ActiveSession(); ok {
		s.SessionID = id
	}
	c.subMu.RLock()
	s.Subscriptions = len(c.subs)
	for _, sub := range c.subs {
		s.MonitoredItems += sub.itemCount()
	}
	c.subMu.RUnlock()
	return s
}

// invoke stamps the request header, dispatches the request, and maps
// transport and service failures onto the client's error taxonomy. It
// fails fast with ErrNotConnected when no session is active.
func (c *Client) invoke(ctx context.Context, service string, operations int, req channel.Request) (channel.Response, error) {
	sessionID, ok := c.sessions.ActiveSession()
	if !ok {
		return nil, ErrNotConnected
	}

	h := req.Header()
	h.RequestHandle = c.nextRequestHandle.Add(1)
	h.Timestamp = ua.DateTimeNow()

	c.logService(log.DirectionOut, sessionID, service, h.RequestHandle, operations, nil, 0)
	start := time.Now()
	c.requestsSent.Add(1)

	resp, err := c.transport.Invoke(ctx, req)
	if err != nil {
		c.requestsFailed.Add(1)
		return nil, mapTransportErr(err)
	}

	roundTrip := time.Since(start)
	result := resp.Header().ServiceResult
	c.logService(log.DirectionIn, sessionID, service, h.RequestHandle, operations, &result, roundTrip)

	if result.IsBad() {
		c.requestsFailed.Add(1)
		return nil, &ServiceError{Service: service, Status: result}
	}
	return resp, nil
}

// mapTransportErr translates transport errors into client sentinels.
func mapTransportErr(err error) error {
	switch {
	case errors.Is(err, channel.ErrRequestTimeout):
		return ErrRequestTimeout
	case errors.Is(err, channel.ErrClosed), errors.Is(err, channel.ErrNoSession):
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	default:
		return err
	}
}

// handleEvent feeds lifecycle events to the session tracker and cleans
// up session-scoped state on disconnect.
func (c *Client) handleEvent(e channel.Event) {
	sessionID, active := c.sessions.ActiveSession()
	c.sessions.HandleEvent(e)

	if e.Kind != channel.EventDisconnected {
		return
	}
	if active {
		c.continuations.InvalidateSession(sessionID)
	}
	c.teardownSubscriptions()
}

// handleNotification routes a data change to its subscription.
func (c *Client) handleNotification(n channel.Notification) {
	c.notifications.Add(1)

	status := n.Value.Status
	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionIn,
		Category:  log.CategorySubscription,
		Subscription: &log.SubscriptionEvent{
			SubscriptionID: n.SubscriptionID,
			ClientHandle:   n.ClientHandle,
			Status:         &status,
		},
	})

	c.subMu.RLock()
	sub := c.subs[n.SubscriptionID]
	c.subMu.RUnlock()
	if sub == nil {
		return
	}
	sub.dispatch(n)
}

func (c *Client) logService(dir log.Direction, sessionID uuid.UUID, service string, handle uint32, operations int, result *ua.StatusCode, roundTrip time.Duration) {
	se := &log.ServiceEvent{
		Name:          service,
		RequestHandle: handle,
		Operations:    operations,
	}
	if result != nil {
		status := *result
		se.ServiceResult = &status
	}
	if roundTrip > 0 {
		se.RoundTrip = &roundTrip
	}
	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: sessionID.String(),
		Direction: dir,
		Category:  log.CategoryService,
		Service:   se,
	})
}
