package driving

import (
	"context"

	"github.com/routy-labs/routy/internal/core/domain"
)

// Precalculator enumerates every qualifying closed route and stores the result.
type Precalculator interface {
	// Run resolves the home node, enumerates routes and replaces the stored set.
	// Returns an error wrapping domain.ErrConfiguration, without touching the
	// store, when the home node cannot be resolved.
	Run(ctx context.Context) (*domain.PrecalcResult, error)
}
