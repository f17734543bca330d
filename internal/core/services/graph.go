package services

import (
	"cmp"
	"slices"

	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/logger"
)

// Edge is one outgoing step from a node.
type Edge struct {
	// Segment is the segment that realises the step.
	Segment domain.Segment

	// To is the destination node.
	To int64
}

// Graph is a directed adjacency view of the segment network.
// Outgoing edges of every node are ordered by segment ID ascending, so any
// traversal over the graph is reproducible.
type Graph struct {
	nodes     map[int64]struct{}
	adjacency map[int64][]Edge
	edges     map[domain.DirectedEdge]domain.Segment
	skipped   []int64
}

// BuildGraph builds the adjacency of the given segments over the given nodes.
//
// A segment referencing a node missing from nodes is logged and skipped.
// When several segments share one directed (start, end) pair, the one with
// the lowest ID represents the pair; the others are ignored.
func BuildGraph(nodes []domain.Node, segments []domain.Segment) *Graph {
	g := &Graph{
		nodes:     make(map[int64]struct{}, len(nodes)),
		adjacency: make(map[int64][]Edge),
		edges:     make(map[domain.DirectedEdge]domain.Segment, len(segments)),
	}
	for _, n := range nodes {
		g.nodes[n.ID] = struct{}{}
	}

	ordered := slices.Clone(segments)
	slices.SortStableFunc(ordered, func(a, b domain.Segment) int {
		return cmp.Compare(a.ID, b.ID)
	})

	for _, seg := range ordered {
		if !g.HasNode(seg.StartNodeID) || !g.HasNode(seg.EndNodeID) {
			logger.WithFields(map[string]any{
				"segment_id": seg.ID,
				"start_node": seg.StartNodeID,
				"end_node":   seg.EndNodeID,
			}).Warnf("%v: segment references unknown node, skipped", domain.ErrGraphIntegrity)
			g.skipped = append(g.skipped, seg.ID)
			continue
		}

		edge := seg.Edge()
		if first, dup := g.edges[edge]; dup {
			logger.Debug("segment %d duplicates %d->%d, using segment %d", seg.ID, edge.From, edge.To, first.ID)
			continue
		}
		g.edges[edge] = seg
		g.adjacency[seg.StartNodeID] = append(g.adjacency[seg.StartNodeID], Edge{Segment: seg, To: seg.EndNodeID})
	}

	return g
}

// HasNode reports whether id is a known node.
func (g *Graph) HasNode(id int64) bool {
	_, ok := g.nodes[id]
	return ok
}

// Neighbors returns the outgoing edges of a node in segment ID order.
// The returned slice must not be modified.
func (g *Graph) Neighbors(id int64) []Edge {
	return g.adjacency[id]
}

// Segment resolves a directed node pair to the segment representing it.
func (g *Graph) Segment(from, to int64) (domain.Segment, bool) {
	seg, ok := g.edges[domain.DirectedEdge{From: from, To: to}]
	return seg, ok
}

// NodeCount returns the number of known nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of directed pairs in the adjacency.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Skipped returns the IDs of segments dropped for referencing unknown nodes.
func (g *Graph) Skipped() []int64 {
	return slices.Clone(g.skipped)
}
