package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driven"
)

// Ensure GraphStore implements the interface.
var _ driven.GraphStore = (*GraphStore)(nil)

// GraphStore is an in-memory implementation of driven.GraphStore.
// When created with a UsageStore, saving a segment also creates its usage counter.
type GraphStore struct {
	mu       sync.RWMutex
	nodes    map[int64]domain.Node
	segments map[int64]domain.Segment
	usage    *UsageStore
}

// NewGraphStore creates a new in-memory graph store.
// usage may be nil.
func NewGraphStore(usage *UsageStore) *GraphStore {
	return &GraphStore{
		nodes:    make(map[int64]domain.Node),
		segments: make(map[int64]domain.Segment),
		usage:    usage,
	}
}

// ListNodes returns all nodes ordered by ID.
func (s *GraphStore) ListNodes(_ context.Context) ([]domain.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		result = append(result, n)
	}
	slices.SortFunc(result, func(a, b domain.Node) int { return cmpID(a.ID, b.ID) })
	return result, nil
}

// ListSegments returns all segments ordered by ID.
func (s *GraphStore) ListSegments(_ context.Context) ([]domain.Segment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Segment, 0, len(s.segments))
	for _, seg := range s.segments {
		result = append(result, seg)
	}
	slices.SortFunc(result, func(a, b domain.Segment) int { return cmpID(a.ID, b.ID) })
	return result, nil
}

// FindNodesByName returns nodes with exactly this name, ordered by ID.
func (s *GraphStore) FindNodesByName(ctx context.Context, name string) ([]domain.Node, error) {
	nodes, err := s.ListNodes(ctx)
	if err != nil {
		return nil, err
	}

	var result []domain.Node
	for _, n := range nodes {
		if n.Name == name {
			result = append(result, n)
		}
	}
	return result, nil
}

// NodeNames returns the names of the requested nodes that have one.
func (s *GraphStore) NodeNames(_ context.Context, ids []int64) (map[int64]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make(map[int64]string, len(ids))
	for _, id := range ids {
		if n, ok := s.nodes[id]; ok && n.Name != "" {
			names[id] = n.Name
		}
	}
	return names, nil
}

// SaveNodes creates or updates nodes.
func (s *GraphStore) SaveNodes(_ context.Context, nodes []domain.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range nodes {
		s.nodes[n.ID] = n
	}
	return nil
}

// SaveSegments creates or updates segments.
func (s *GraphStore) SaveSegments(_ context.Context, segments []domain.Segment) error {
	s.mu.Lock()
	ids := make([]int64, 0, len(segments))
	for _, seg := range segments {
		s.segments[seg.ID] = seg
		ids = append(ids, seg.ID)
	}
	s.mu.Unlock()

	if s.usage != nil {
		s.usage.ensure(ids)
	}
	return nil
}

// Stats returns node and segment counts.
func (s *GraphStore) Stats(_ context.Context) (domain.GraphStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.GraphStats{
		Nodes:    len(s.nodes),
		Segments: len(s.segments),
	}, nil
}

func cmpID(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
