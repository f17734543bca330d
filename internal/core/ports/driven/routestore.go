package driven

import (
	"context"

	"github.com/routy-labs/routy/internal/core/domain"
)

// RouteStore persists precalculated routes and answers tolerance-band queries.
type RouteStore interface {
	// Clear removes every stored route.
	Clear(ctx context.Context) error

	// Put stores a route keyed by its chain signature.
	// Storing a signature that already exists is a no-op.
	Put(ctx context.Context, route domain.Route) error

	// Replace atomically swaps the stored set for routes.
	// Concurrent readers see either the old or the new set, never an empty window.
	Replace(ctx context.Context, routes []domain.Route) error

	// Query returns routes whose length (distance mode) or duration (duration mode)
	// lies in the query window, ordered by absolute distance to the target ascending.
	// Ties keep insertion order. At most query.Limit routes are returned.
	Query(ctx context.Context, query domain.RouteQuery) ([]domain.Route, error)

	// Count returns the number of stored routes.
	Count(ctx context.Context) (int, error)
}
