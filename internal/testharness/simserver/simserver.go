// Package simserver implements the channel.Transport contract against
// an in-memory address space. It stands in for a real protocol stack
// in tests and demos: sessions with optional password authentication,
// service dispatch with per-request fault injection, subscriptions
// with a notification pump, and random-walk value simulation.
package simserver

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/opcua-sdk/opcua-go/internal/testharness/addrspace"
	"github.com/opcua-sdk/opcua-go/pkg/channel"
	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// ErrAccessDenied is returned by Connect when session activation fails
// the password check.
var ErrAccessDenied = errors.New("user access denied")

// DefaultPageCap is the server-side ceiling on browse page sizes.
// Requests asking for more, or for no limit at all, are clamped to it.
const DefaultPageCap = 64

// FaultMode selects what an injected fault does to its request.
type FaultMode uint8

const (
	// FaultDrop severs the connection: the request fails with
	// ErrClosed and a faulted disconnect event is emitted.
	FaultDrop FaultMode = iota + 1

	// FaultTimeout fails the request with ErrRequestTimeout and
	// leaves the connection up.
	FaultTimeout

	// FaultStatus answers the request with a response whose service
	// result is the fault's status code.
	FaultStatus
)

// Fault is one scripted failure, tripped by the nth Invoke call.
type Fault struct {
	// Request is the 1-based Invoke ordinal the fault fires on.
	Request int

	Mode FaultMode

	// Status is the service result for FaultStatus faults.
	Status ua.StatusCode
}

// Server is an in-memory transport bound to an address space. The
// zero value is not usable; construct with New.
type Server struct {
	space *addrspace.Space

	mu        sync.Mutex
	connected bool
	sessionID uuid.UUID

	onEvent  func(channel.Event)
	onNotify func(channel.Notification)

	// Session activation checks the presented identity against the
	// required bcrypt hash when one is configured.
	requiredUser string
	requiredHash []byte
	identityUser string
	identityPass string

	connectErr error

	pageCap uint32
	faults  map[int]Fault

	invokes  int
	services map[string]int

	subs      map[uint32]*subscription
	nextSubID uint32
	nextItem  uint32
}

// New creates a server over the given space.
func New(space *addrspace.Space) *Server {
	return &Server{
		space:    space,
		pageCap:  DefaultPageCap,
		faults:   make(map[int]Fault),
		services: make(map[string]int),
		subs:     make(map[uint32]*subscription),
	}
}

// Space returns the address space the server answers from.
func (s *Server) Space() *addrspace.Space { return s.space }

// RequireAuth makes session activation demand the given user name and
// a password matching the bcrypt hash.
func (s *Server) RequireAuth(user string, passwordHash []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requiredUser = user
	s.requiredHash = passwordHash
}

// SetIdentity sets the user identity presented during session
// activation.
func (s *Server) SetIdentity(user, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identityUser = user
	s.identityPass = password
}

// SetPageCap overrides the browse page ceiling. Zero restores the
// default.
func (s *Server) SetPageCap(n uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n == 0 {
		n = DefaultPageCap
	}
	s.pageCap = n
}

// InjectFault schedules a scripted failure.
func (s *Server) InjectFault(f Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[f.Request] = f
}

// FailNextConnect makes the next Connect attempt fail with err after
// the channel opens.
func (s *Server) FailNextConnect(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connectErr = err
}

// InvokeCount returns how many Invoke calls reached the server,
// including rejected and faulted ones.
func (s *Server) InvokeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invokes
}

// ServiceCount returns how many Invoke calls carried the named
// service.
func (s *Server) ServiceCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.services[name]
}

// SessionID returns the ID of the current session, or uuid.Nil when
// disconnected.
func (s *Server) SessionID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// SetEventHandler installs the lifecycle event handler.
func (s *Server) SetEventHandler(handler func(channel.Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvent = handler
}

// SetNotificationHandler installs the notification handler.
func (s *Server) SetNotificationHandler(handler func(channel.Notification)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onNotify = handler
}

// Connect opens the channel and activates a session. All lifecycle
// events are delivered before it returns.
func (s *Server) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.connected {
		s.mu.Unlock()
		return nil
	}
	emit := s.onEvent
	failErr := s.connectErr
	s.connectErr = nil
	wantUser, hash := s.requiredUser, s.requiredHash
	user, pass := s.identityUser, s.identityPass
	s.mu.Unlock()

	// Handlers run without the lock held.
	send := func(e channel.Event) {
		if emit != nil {
			e.Time = time.Now()
			emit(e)
		}
	}

	send(channel.Event{Kind: channel.EventConnecting})

	if failErr != nil {
		send(channel.Event{Kind: channel.EventDisconnected, Err: failErr})
		return failErr
	}

	send(channel.Event{Kind: channel.EventChannelOpened})

	if len(hash) > 0 {
		if user != wantUser || bcrypt.CompareHashAndPassword(hash, []byte(pass)) != nil {
			send(channel.Event{Kind: channel.EventDisconnected, Err: ErrAccessDenied})
			return ErrAccessDenied
		}
	}

	s.mu.Lock()
	s.sessionID = uuid.New()
	s.connected = true
	id := s.sessionID
	s.mu.Unlock()

	send(channel.Event{Kind: channel.EventSessionActivated, SessionID: id})
	return nil
}

// Close ends the session gracefully. Safe to call in any state.
func (s *Server) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return nil
	}
	emit := s.onEvent
	s.teardownLocked()
	s.mu.Unlock()

	if emit != nil {
		emit(channel.Event{Kind: channel.EventSessionClosing, Time: time.Now()})
		emit(channel.Event{Kind: channel.EventDisconnected, Time: time.Now()})
	}
	return nil
}

// Drop severs the connection as a fault, the way a broken socket
// would.
func (s *Server) Drop(cause error) {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return
	}
	emit := s.onEvent
	s.teardownLocked()
	s.mu.Unlock()

	if emit != nil {
		emit(channel.Event{Kind: channel.EventDisconnected, Time: time.Now(), Err: cause})
	}
}

// teardownLocked clears session state and stops every subscription
// pump. Callers hold mu.
func (s *Server) teardownLocked() {
	s.connected = false
	s.sessionID = uuid.Nil
	for id, sub := range s.subs {
		sub.stopPump()
		delete(s.subs, id)
	}
}

// Invoke executes one service request against the address space.
func (s *Server) Invoke(ctx context.Context, req channel.Request) (channel.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.invokes++
	ordinal := s.invokes
	s.services[serviceName(req)]++

	if !s.connected {
		s.mu.Unlock()
		return nil, channel.ErrNoSession
	}

	if f, ok := s.faults[ordinal]; ok {
		delete(s.faults, ordinal)
		switch f.Mode {
		case FaultDrop:
			emit := s.onEvent
			s.teardownLocked()
			s.mu.Unlock()
			if emit != nil {
				emit(channel.Event{Kind: channel.EventDisconnected, Time: time.Now(), Err: errors.New("injected connection drop")})
			}
			return nil, channel.ErrClosed
		case FaultTimeout:
			s.mu.Unlock()
			return nil, channel.ErrRequestTimeout
		case FaultStatus:
			s.mu.Unlock()
			return faultResponse(req, f.Status), nil
		}
	}
	s.mu.Unlock()

	return s.dispatch(req)
}

// serviceName labels a request for the per-service counters.
func serviceName(req channel.Request) string {
	switch req.(type) {
	case *channel.ReadRequest:
		return "Read"
	case *channel.WriteRequest:
		return "Write"
	case *channel.BrowseRequest:
		return "Browse"
	case *channel.BrowseNextRequest:
		return "BrowseNext"
	case *channel.CallRequest:
		return "Call"
	case *channel.CreateSubscriptionRequest:
		return "CreateSubscription"
	case *channel.DeleteSubscriptionsRequest:
		return "DeleteSubscriptions"
	case *channel.CreateMonitoredItemsRequest:
		return "CreateMonitoredItems"
	case *channel.DeleteMonitoredItemsRequest:
		return "DeleteMonitoredItems"
	default:
		return "Unknown"
	}
}
