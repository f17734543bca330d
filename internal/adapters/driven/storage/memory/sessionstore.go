package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// sessionEntry guards one session. evicted is set by the cache's eviction
// hook, which may run while mu is held by Update.
type sessionEntry struct {
	mu      sync.Mutex
	session *domain.Session
	evicted atomic.Bool
}

// SessionStore keeps sessions in a TTL cache.
//
// Expiry is enforced twice: the cache drops entries idle for longer than the
// timeout in wall-clock time, and every access also checks the session's own
// LastActive against the store clock.
type SessionStore struct {
	cache   *cache.Cache
	timeout time.Duration
	now     func() time.Time
}

// SessionStoreOption configures a SessionStore.
type SessionStoreOption func(*SessionStore)

// WithSessionClock sets the clock used for lazy expiry checks.
func WithSessionClock(now func() time.Time) SessionStoreOption {
	return func(s *SessionStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSessionStore creates a session store with the given inactivity timeout.
// A timeout of zero or less disables expiry.
func NewSessionStore(timeout time.Duration, opts ...SessionStoreOption) *SessionStore {
	ttl, cleanup := timeout, timeout
	if timeout <= 0 {
		ttl, cleanup = cache.NoExpiration, 0
	}

	s := &SessionStore{
		cache:   cache.New(ttl, cleanup),
		timeout: timeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.cache.OnEvicted(func(_ string, v interface{}) {
		if e, ok := v.(*sessionEntry); ok {
			e.evicted.Store(true)
		}
	})
	return s
}

// Create stores a new active session.
func (s *SessionStore) Create(_ context.Context, session *domain.Session) error {
	if session == nil || session.Token == "" {
		return fmt.Errorf("%w: session token required", domain.ErrInvalidInput)
	}
	if err := s.cache.Add(session.Token, &sessionEntry{session: session}, cache.DefaultExpiration); err != nil {
		return fmt.Errorf("%w: session %s already exists", domain.ErrInvalidInput, session.Token)
	}
	return nil
}

// Update runs fn on the session under its entry lock.
func (s *SessionStore) Update(ctx context.Context, token string, fn func(*domain.Session) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	v, ok := s.cache.Get(token)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionExpired, token)
	}
	e := v.(*sessionEntry)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.evicted.Load() || !e.session.IsActive() || e.session.IsExpired(s.now(), s.timeout) {
		s.cache.Delete(token)
		return fmt.Errorf("%w: %s", domain.ErrSessionExpired, token)
	}

	err := fn(e.session)

	if !e.session.IsActive() {
		s.cache.Delete(token)
	} else {
		// Re-setting refreshes the cache TTL.
		s.cache.Set(token, e, cache.DefaultExpiration)
	}
	return err
}

// Sweep removes idle or ended sessions and returns how many were removed.
func (s *SessionStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	removed := 0
	for token, item := range s.cache.Items() {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		e, ok := item.Object.(*sessionEntry)
		if !ok {
			continue
		}

		e.mu.Lock()
		stale := !e.session.IsActive() || e.session.IsExpired(now, s.timeout)
		if stale {
			s.cache.Delete(token)
			removed++
		}
		e.mu.Unlock()
	}

	before := s.cache.ItemCount()
	s.cache.DeleteExpired()
	removed += before - s.cache.ItemCount()
	return removed, nil
}

// Len returns the number of sessions held, including ones not yet swept.
func (s *SessionStore) Len() int {
	return s.cache.ItemCount()
}
