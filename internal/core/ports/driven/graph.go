package driven

import (
	"context"

	"github.com/routy-labs/routy/internal/core/domain"
)

// GraphSource provides read access to the segment network.
// Nodes and segments are created by an external ingestion pipeline.
type GraphSource interface {
	// ListNodes returns all nodes ordered by ID ascending.
	ListNodes(ctx context.Context) ([]domain.Node, error)

	// ListSegments returns all segments ordered by ID ascending.
	ListSegments(ctx context.Context) ([]domain.Segment, error)

	// FindNodesByName returns nodes with exactly this name, ordered by ID ascending.
	FindNodesByName(ctx context.Context, name string) ([]domain.Node, error)

	// NodeNames returns display names for the given IDs.
	// Unknown or unnamed nodes are absent from the map.
	NodeNames(ctx context.Context, ids []int64) (map[int64]string, error)
}

// GraphStore extends GraphSource with writes used by graph import.
type GraphStore interface {
	GraphSource

	// SaveNodes creates or updates nodes by ID.
	SaveNodes(ctx context.Context, nodes []domain.Node) error

	// SaveSegments creates or updates segments by ID and ensures a usage row exists for each.
	SaveSegments(ctx context.Context, segments []domain.Segment) error

	// Stats returns node and segment counts. The Routes field is left zero.
	Stats(ctx context.Context) (domain.GraphStats, error)
}
