package services

import (
	"context"
	"fmt"

	"github.com/routy-labs/routy/internal/core/domain"
)

// RouteEnumerator finds every closed walk from a home node back to itself
// whose length lies inside a budget.
type RouteEnumerator struct {
	graph *Graph
}

// NewRouteEnumerator creates an enumerator over graph.
func NewRouteEnumerator(graph *Graph) *RouteEnumerator {
	return &RouteEnumerator{graph: graph}
}

// Enumerate runs a depth-first search from home and returns every route that
// closes at home with a length in [minLength, maxLength] meters.
//
// A walk arriving at home within budget is recorded and not extended further.
// A walk arriving at home outside the budget keeps going, so routes may pass
// through home before closing. No step may reverse the previous step, and no
// directed node pair may be used twice in one route. Walks longer than
// maxLength are abandoned, which is what bounds the search.
//
// Routes are returned in discovery order, which is deterministic for a given graph.
func (e *RouteEnumerator) Enumerate(ctx context.Context, minLength, maxLength int, home int64) ([]domain.Route, error) {
	if minLength < 0 || maxLength < minLength {
		return nil, fmt.Errorf("%w: length bounds [%d, %d]", domain.ErrInvalidInput, minLength, maxLength)
	}
	if !e.graph.HasNode(home) {
		return nil, fmt.Errorf("%w: home node %d is not in the graph", domain.ErrConfiguration, home)
	}

	w := &walker{
		ctx:   ctx,
		graph: e.graph,
		home:  home,
		min:   minLength,
		max:   maxLength,
		used:  make(map[domain.DirectedEdge]struct{}),
		nodes: []int64{home},
	}
	if err := w.visit(home, 0, false); err != nil {
		return nil, fmt.Errorf("enumerate routes: %w", err)
	}
	return w.routes, nil
}

// walker carries the mutable path state of one search. Markers are pushed
// before descending into a subtree and popped only after it has returned, so
// sibling branches share the same buffers without copying.
type walker struct {
	ctx   context.Context
	graph *Graph
	home  int64
	min   int
	max   int

	used     map[domain.DirectedEdge]struct{}
	nodes    []int64
	segments []int64
	length   int
	duration int

	routes []domain.Route
}

func (w *walker) visit(current, previous int64, hasPrevious bool) error {
	if current == w.home && len(w.nodes) > 1 && w.length >= w.min && w.length <= w.max {
		w.routes = append(w.routes, domain.NewRoute(w.nodes, w.segments, w.length, w.duration))
		return nil
	}
	if w.length > w.max {
		return nil
	}

	for _, edge := range w.graph.Neighbors(current) {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		if hasPrevious && edge.To == previous {
			continue
		}
		step := domain.DirectedEdge{From: current, To: edge.To}
		if _, seen := w.used[step]; seen {
			continue
		}

		w.push(step, edge)
		err := w.visit(edge.To, current, true)
		w.pop(step, edge)
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) push(step domain.DirectedEdge, edge Edge) {
	w.used[step] = struct{}{}
	w.nodes = append(w.nodes, edge.To)
	w.segments = append(w.segments, edge.Segment.ID)
	w.length += edge.Segment.LengthM
	w.duration += edge.Segment.DurationMin
}

func (w *walker) pop(step domain.DirectedEdge, edge Edge) {
	w.duration -= edge.Segment.DurationMin
	w.length -= edge.Segment.LengthM
	w.segments = w.segments[:len(w.segments)-1]
	w.nodes = w.nodes[:len(w.nodes)-1]
	delete(w.used, step)
}
