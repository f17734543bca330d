package services

import (
	"context"
	"fmt"

	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driven"
	"github.com/routy-labs/routy/internal/core/ports/driving"
)

// Ensure GraphImportService implements the interface.
var _ driving.GraphService = (*GraphImportService)(nil)

// GraphImportService loads externally produced nodes and segments.
type GraphImportService struct {
	store  driven.GraphStore
	routes driven.RouteStore
}

// NewGraphImportService creates a graph import service.
// routes is optional and only used for statistics.
func NewGraphImportService(store driven.GraphStore, routes driven.RouteStore) *GraphImportService {
	return &GraphImportService{store: store, routes: routes}
}

// Import stores nodes and then segments. Every segment must reference a node
// that is either part of this import or already stored.
func (g *GraphImportService) Import(ctx context.Context, nodes []domain.Node, segments []domain.Segment) error {
	known := make(map[int64]struct{}, len(nodes))
	for _, n := range nodes {
		if n.ID <= 0 {
			return fmt.Errorf("%w: node id must be positive, got %d", domain.ErrInvalidInput, n.ID)
		}
		known[n.ID] = struct{}{}
	}

	existing, err := g.store.ListNodes(ctx)
	if err != nil {
		return fmt.Errorf("list nodes: %w", err)
	}
	for _, n := range existing {
		known[n.ID] = struct{}{}
	}

	for _, s := range segments {
		if s.ID <= 0 {
			return fmt.Errorf("%w: segment id must be positive, got %d", domain.ErrInvalidInput, s.ID)
		}
		if s.LengthM < 0 || s.DurationMin < 0 {
			return fmt.Errorf("%w: segment %d has negative length or duration", domain.ErrInvalidInput, s.ID)
		}
		if _, ok := known[s.StartNodeID]; !ok {
			return fmt.Errorf("%w: segment %d starts at unknown node %d", domain.ErrGraphIntegrity, s.ID, s.StartNodeID)
		}
		if _, ok := known[s.EndNodeID]; !ok {
			return fmt.Errorf("%w: segment %d ends at unknown node %d", domain.ErrGraphIntegrity, s.ID, s.EndNodeID)
		}
	}

	if err := g.store.SaveNodes(ctx, nodes); err != nil {
		return fmt.Errorf("save nodes: %w", err)
	}
	if err := g.store.SaveSegments(ctx, segments); err != nil {
		return fmt.Errorf("save segments: %w", err)
	}
	return nil
}

// Stats returns node, segment and route counts.
func (g *GraphImportService) Stats(ctx context.Context) (domain.GraphStats, error) {
	stats, err := g.store.Stats(ctx)
	if err != nil {
		return domain.GraphStats{}, fmt.Errorf("graph stats: %w", err)
	}
	if g.routes != nil {
		stats.Routes, err = g.routes.Count(ctx)
		if err != nil {
			return domain.GraphStats{}, fmt.Errorf("count routes: %w", err)
		}
	}
	return stats, nil
}
