package domain

import "strconv"

// Node is an immutable location in the segment network.
// Nodes are created and merged by the ingestion pipeline and are read-only here.
type Node struct {
	// ID is the unique identifier for the node.
	ID int64

	// Name is an optional display name (e.g., "Home", "Bakery").
	Name string

	// Latitude in decimal degrees.
	Latitude float64

	// Longitude in decimal degrees.
	Longitude float64
}

// DisplayName returns the node name, or "N<id>" when the node is unnamed.
func (n Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return FallbackNodeName(n.ID)
}

// FallbackNodeName is the display name used for a node without a name.
func FallbackNodeName(id int64) string {
	return "N" + strconv.FormatInt(id, 10)
}

// Segment is a directed, traversable edge between two nodes.
// Forward and reverse traversals of the same physical path are distinct segments.
type Segment struct {
	// ID is the unique identifier for the segment.
	ID int64

	// Name is an optional label (e.g., "Park - Lake").
	Name string

	// StartNodeID is the node the segment leaves from.
	StartNodeID int64

	// EndNodeID is the node the segment arrives at.
	EndNodeID int64

	// LengthM is the physical length in meters.
	LengthM int

	// DurationMin is the estimated traversal time in minutes.
	DurationMin int
}

// Edge returns the directed (start, end) node pair of the segment.
func (s Segment) Edge() DirectedEdge {
	return DirectedEdge{From: s.StartNodeID, To: s.EndNodeID}
}

// DirectedEdge is an ordered pair of node IDs.
type DirectedEdge struct {
	From int64
	To   int64
}
