package continuation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"

	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// ErrUnknownOrExpiredToken reports a handle that is unknown, already
// consumed, aged out, or owned by another session.
var ErrUnknownOrExpiredToken = errors.New("unknown or expired continuation token")

// Handle is a stable identifier for one outstanding continuation point.
// Handles are never zero.
type Handle uint64

// Default store limits.
const (
	// DefaultTokenTTL is how long an unconsumed token stays valid.
	DefaultTokenTTL = 5 * time.Minute

	// DefaultCapacity bounds the number of outstanding tokens; the
	// oldest token is dropped when a new one would exceed it.
	DefaultCapacity = 256
)

// Config configures a Store.
type Config struct {
	// TokenTTL is how long an unconsumed token stays valid
	// (default: 5m, 0 or negative = no expiry).
	TokenTTL time.Duration

	// Capacity bounds outstanding tokens (default: 256, 0 = unbounded).
	Capacity int
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		TokenTTL: DefaultTokenTTL,
		Capacity: DefaultCapacity,
	}
}

// entry is one outstanding token and the session that received it.
type entry struct {
	session uuid.UUID
	token   ua.ContinuationPoint
}

// Store maps handles to outstanding continuation points, scoped by
// session. Safe for concurrent use.
type Store struct {
	mu sync.Mutex

	capacity int
	cache    *ttlcache.Cache[Handle, entry]

	// Handles per session, for atomic per-session invalidation
	bySession map[uuid.UUID]map[Handle]struct{}

	nextHandle atomic.Uint64
}

// NewStore creates a store with the given configuration and starts its
// expiry loop. Call Close to stop it.
func NewStore(cfg Config) *Store {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}

	s := &Store{
		capacity: cfg.Capacity,
		cache: ttlcache.New[Handle, entry](
			ttlcache.WithTTL[Handle, entry](ttl),
			ttlcache.WithDisableTouchOnHit[Handle, entry](),
		),
		bySession: make(map[uuid.UUID]map[Handle]struct{}),
	}

	s.cache.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[Handle, entry]) {
		if reason != ttlcache.EvictionReasonExpired {
			// Explicit deletes maintain the index at the call site.
			return
		}
		session, h := item.Value().session, item.Key()
		// The cleanup must not take the store lock on this goroutine:
		// callers of the store hold it while touching the cache.
		go func() {
			s.mu.Lock()
			s.removeIndexLocked(session, h)
			s.mu.Unlock()
		}()
	})

	go s.cache.Start()
	return s
}

// Issue records a freshly received continuation point against the
// session that received it and returns the handle callers use in its
// place. At capacity the oldest outstanding token is dropped first.
func (s *Store) Issue(session uuid.UUID, token ua.ContinuationPoint) Handle {
	h := Handle(s.nextHandle.Add(1))

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capacity > 0 && s.cache.Len() >= s.capacity {
		s.evictOldestLocked()
	}

	s.cache.Set(h, entry{session: session, token: token}, ttlcache.DefaultTTL)

	idx := s.bySession[session]
	if idx == nil {
		idx = make(map[Handle]struct{})
		s.bySession[session] = idx
	}
	idx[h] = struct{}{}

	return h
}

// Consume removes and returns the token behind a handle, exactly once.
// The session must be the one the handle was issued for.
func (s *Store) Consume(session uuid.UUID, h Handle) (ua.ContinuationPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.cache.Get(h)
	if item == nil {
		return "", fmt.Errorf("handle %d: %w", h, ErrUnknownOrExpiredToken)
	}

	e := item.Value()
	if e.session != session {
		// A foreign handle stays outstanding for its owner.
		return "", fmt.Errorf("handle %d issued for another session: %w", h, ErrUnknownOrExpiredToken)
	}

	s.removeIndexLocked(e.session, h)
	s.cache.Delete(h)
	return e.token, nil
}

// InvalidateSession drops all of a session's outstanding tokens
// atomically and returns how many were dropped.
func (s *Store) InvalidateSession(session uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.bySession[session]
	for h := range idx {
		s.cache.Delete(h)
	}
	delete(s.bySession, session)
	return len(idx)
}

// Outstanding returns the number of outstanding tokens across all
// sessions.
func (s *Store) Outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}

// OutstandingFor returns the number of outstanding tokens for one
// session.
func (s *Store) OutstandingFor(session uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bySession[session])
}

// Close stops the expiry loop. The store stays usable; tokens simply
// stop aging out.
func (s *Store) Close() {
	s.cache.Stop()
}

// evictOldestLocked drops the oldest outstanding token. Handles are
// assigned monotonically, so the smallest handle is the oldest issue.
func (s *Store) evictOldestLocked() {
	var victim *ttlcache.Item[Handle, entry]
	for _, item := range s.cache.Items() {
		if victim == nil || item.Key() < victim.Key() {
			victim = item
		}
	}
	if victim == nil {
		return
	}
	s.removeIndexLocked(victim.Value().session, victim.Key())
	s.cache.Delete(victim.Key())
}

func (s *Store) removeIndexLocked(session uuid.UUID, h Handle) {
	idx := s.bySession[session]
	if idx == nil {
		return
	}
	delete(idx, h)
	if len(idx) == 0 {
		delete(s.bySession, session)
	}
}
