package driving

import (
	"context"

	"github.com/routy-labs/routy/internal/core/domain"
)

// GraphService loads and inspects the segment network.
type GraphService interface {
	// Import validates and stores nodes and segments.
	// Segments referencing unknown nodes are rejected with domain.ErrGraphIntegrity.
	Import(ctx context.Context, nodes []domain.Node, segments []domain.Segment) error

	// Stats returns node, segment and route counts.
	Stats(ctx context.Context) (domain.GraphStats, error)
}

// UsageService reports how routes have been used.
type UsageService interface {
	// Top returns the most used segments.
	Top(ctx context.Context, limit int) ([]domain.SegmentUsage, error)
}
