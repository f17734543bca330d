package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driven"
)

// Ensure RouteStore implements the interface.
var _ driven.RouteStore = (*RouteStore)(nil)

// routeSet is a snapshot of stored routes in insertion order. Readers see
// only routes[:len] of the slice they took, so Put may append in place.
// index is touched only under the store's write lock.
type routeSet struct {
	routes []domain.Route
	index  map[string]struct{}
}

func newRouteSet(capacity int) *routeSet {
	return &routeSet{
		routes: make([]domain.Route, 0, capacity),
		index:  make(map[string]struct{}, capacity),
	}
}

// add appends r unless its signature is already present.
func (rs *routeSet) add(r domain.Route) {
	if _, ok := rs.index[r.Signature]; ok {
		return
	}
	rs.index[r.Signature] = struct{}{}
	rs.routes = append(rs.routes, r)
}

// RouteStore is an in-memory implementation of driven.RouteStore.
// Replace builds a new snapshot and swaps it in, so queries never observe a
// partially written set.
type RouteStore struct {
	mu  sync.RWMutex
	set *routeSet
}

// NewRouteStore creates a new empty in-memory route store.
func NewRouteStore() *RouteStore {
	return &RouteStore{set: newRouteSet(0)}
}

// Clear removes every stored route.
func (s *RouteStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = newRouteSet(0)
	return nil
}

// Put stores a route; an existing signature is left untouched.
func (s *RouteStore) Put(_ context.Context, route domain.Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := *s.set
	next.add(route)
	s.set = &next
	return nil
}

// Replace swaps the stored set for routes.
func (s *RouteStore) Replace(_ context.Context, routes []domain.Route) error {
	next := newRouteSet(len(routes))
	for _, r := range routes {
		next.add(r)
	}

	s.mu.Lock()
	s.set = next
	s.mu.Unlock()
	return nil
}

// Query returns routes inside the query window, closest to the target first.
func (s *RouteStore) Query(ctx context.Context, query domain.RouteQuery) ([]domain.Route, error) {
	s.mu.RLock()
	set := s.set
	s.mu.RUnlock()

	lo, hi := query.Window()
	var matches []domain.Route
	for _, r := range set.routes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v := r.Value(query.Mode)
		if v >= lo && v <= hi {
			matches = append(matches, r)
		}
	}

	// Stable sort keeps insertion order among equal deltas.
	slices.SortStableFunc(matches, func(a, b domain.Route) int {
		return query.Delta(a) - query.Delta(b)
	})

	if query.Limit > 0 && len(matches) > query.Limit {
		matches = matches[:query.Limit]
	}
	return matches, nil
}

// Count returns the number of stored routes.
func (s *RouteStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.set.routes), nil
}
