package services

import (
	"context"
	"fmt"
	"time"

	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driven"
	"github.com/routy-labs/routy/internal/core/ports/driving"
	"github.com/routy-labs/routy/internal/logger"
)

// Ensure PrecalcService implements the interface.
var _ driving.Precalculator = (*PrecalcService)(nil)

// PrecalcService runs the offline enumeration and persists its result.
type PrecalcService struct {
	settings domain.RoutingSettings
	graph    driven.GraphSource
	routes   driven.RouteStore
}

// NewPrecalcService creates a precalculation service.
func NewPrecalcService(settings domain.RoutingSettings, graph driven.GraphSource, routes driven.RouteStore) *PrecalcService {
	return &PrecalcService{
		settings: settings,
		graph:    graph,
		routes:   routes,
	}
}

// Run resolves the home node, enumerates all closed routes within the
// configured kilometre bounds and atomically replaces the stored routes.
// The store is left untouched if anything fails before the replace.
func (p *PrecalcService) Run(ctx context.Context) (*domain.PrecalcResult, error) {
	started := time.Now()
	logger.Section("Route Precalculation")

	home, err := p.resolveHome(ctx)
	if err != nil {
		return nil, err
	}

	nodes, err := p.graph.ListNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	segments, err := p.graph.ListSegments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}

	graph := BuildGraph(nodes, segments)
	minM, maxM := p.settings.MinLengthM(), p.settings.MaxLengthM()
	logger.Debug("home=%d nodes=%d segments=%d bounds=[%d, %d]m", home, len(nodes), len(segments), minM, maxM)

	routes, err := NewRouteEnumerator(graph).Enumerate(ctx, minM, maxM, home)
	if err != nil {
		return nil, err
	}

	if err := p.routes.Replace(ctx, routes); err != nil {
		return nil, fmt.Errorf("store routes: %w", err)
	}

	result := &domain.PrecalcResult{
		HomeNodeID:      home,
		Nodes:           len(nodes),
		Segments:        len(segments),
		SkippedSegments: len(graph.Skipped()),
		Routes:          len(routes),
		Duration:        time.Since(started),
	}
	logger.Info("precalculated %d routes in %s", result.Routes, result.Duration)
	return result, nil
}

// resolveHome returns the lowest node ID carrying the configured home name.
func (p *PrecalcService) resolveHome(ctx context.Context) (int64, error) {
	name := p.settings.HomeNodeName
	nodes, err := p.graph.FindNodesByName(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("find home node: %w", err)
	}
	if len(nodes) == 0 {
		return 0, fmt.Errorf("%w: no node named %q", domain.ErrHomeNodeNotFound, name)
	}

	home := nodes[0].ID
	for _, n := range nodes[1:] {
		if n.ID < home {
			home = n.ID
		}
	}
	if len(nodes) > 1 {
		logger.Warn("%d nodes named %q, using lowest id %d", len(nodes), name, home)
	}
	return home, nil
}
