package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ChainDelimiter separates node IDs in a chain signature.
const ChainDelimiter = "-"

// Route is a closed walk from the home node back to the home node.
// Routes are produced by the enumerator and are immutable once stored.
type Route struct {
	// Signature is the node-ID chain joined with ChainDelimiter.
	// It is the natural deduplication key for a route.
	Signature string

	// NodeIDs is the ordered node sequence; first and last are the home node.
	NodeIDs []int64

	// SegmentIDs is the ordered segment sequence, one shorter than NodeIDs.
	SegmentIDs []int64

	// LengthM is the total length in meters.
	LengthM int

	// DurationMin is the total duration in minutes.
	DurationMin int
}

// NewRoute builds a route from copies of the given chains and computes its signature.
func NewRoute(nodeIDs, segmentIDs []int64, lengthM, durationMin int) Route {
	nodes := make([]int64, len(nodeIDs))
	copy(nodes, nodeIDs)
	segs := make([]int64, len(segmentIDs))
	copy(segs, segmentIDs)

	return Route{
		Signature:   ChainSignature(nodes),
		NodeIDs:     nodes,
		SegmentIDs:  segs,
		LengthM:     lengthM,
		DurationMin: durationMin,
	}
}

// ChainSignature builds the canonical signature of a node chain, e.g. "1-4-7-1".
func ChainSignature(nodeIDs []int64) string {
	parts := make([]string, len(nodeIDs))
	for i, id := range nodeIDs {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ChainDelimiter)
}

// ParseChainSignature is the inverse of ChainSignature.
func ParseChainSignature(sig string) ([]int64, error) {
	if sig == "" {
		return nil, fmt.Errorf("%w: empty chain signature", ErrInvalidInput)
	}
	parts := strings.Split(sig, ChainDelimiter)
	ids := make([]int64, len(parts))
	for i, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: chain signature %q: %v", ErrInvalidInput, sig, err)
		}
		ids[i] = id
	}
	return ids, nil
}

// Value returns the route's length in meters or duration in minutes, depending on mode.
func (r Route) Value(mode QueryMode) int {
	if mode == QueryModeDuration {
		return r.DurationMin
	}
	return r.LengthM
}

// Home returns the start and end node of the route.
func (r Route) Home() int64 {
	if len(r.NodeIDs) == 0 {
		return 0
	}
	return r.NodeIDs[0]
}

// SegmentSet returns the set of segment IDs traversed by the route.
func (r Route) SegmentSet() SegmentSet {
	return NewSegmentSet(r.SegmentIDs)
}

// Validate checks the structural invariants of a route.
func (r Route) Validate() error {
	if len(r.NodeIDs) < 2 {
		return fmt.Errorf("%w: route needs at least two nodes", ErrInvalidInput)
	}
	if r.NodeIDs[0] != r.NodeIDs[len(r.NodeIDs)-1] {
		return fmt.Errorf("%w: route does not return to its start", ErrInvalidInput)
	}
	if len(r.SegmentIDs) != len(r.NodeIDs)-1 {
		return fmt.Errorf("%w: route has %d nodes but %d segments",
			ErrInvalidInput, len(r.NodeIDs), len(r.SegmentIDs))
	}
	if r.Signature != ChainSignature(r.NodeIDs) {
		return fmt.Errorf("%w: signature %q does not match node chain", ErrInvalidInput, r.Signature)
	}
	return nil
}
