package driving

import (
	"context"

	"github.com/routy-labs/routy/internal/core/domain"
)

// RouteRecommender drives a session-scoped, diversity-aware recommendation.
type RouteRecommender interface {
	// Start opens a session and proposes the freshest in-tolerance route.
	// Returns domain.ErrNoCandidate, without creating a session, when nothing fits.
	Start(ctx context.Context, target domain.Target) (*domain.RouteProposal, error)

	// Alternative widens the tolerance and proposes the best route not yet shown.
	// Returns domain.ErrSessionExpired, domain.ErrNoCandidate or domain.ErrNoDiverseAlternative.
	Alternative(ctx context.Context, token string) (*domain.RouteProposal, error)

	// Accept credits every segment of the current route and ends the session.
	Accept(ctx context.Context, token string) (*domain.RouteProposal, error)

	// Cancel ends the session without touching usage data.
	Cancel(ctx context.Context, token string) (*domain.RouteProposal, error)
}
