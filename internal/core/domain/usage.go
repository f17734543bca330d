package domain

import "time"

// SegmentUsage summarises how often a segment was part of an accepted route.
type SegmentUsage struct {
	// SegmentID identifies the segment.
	SegmentID int64

	// UsageCount is the all-time acceptance counter.
	UsageCount int

	// AcceptedToday counts acceptance events on the current calendar day.
	AcceptedToday int
}

// AcceptanceEvent is one logged acceptance of one segment.
type AcceptanceEvent struct {
	SegmentID  int64
	AcceptedAt time.Time
}

// SameDay reports whether a and b fall on the same calendar day in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DayBounds returns [start, end) of the calendar day containing t.
func DayBounds(t time.Time) (start, end time.Time) {
	y, m, d := t.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// PrecalcResult reports what a precalculation run did.
type PrecalcResult struct {
	// HomeNodeID is the resolved home node.
	HomeNodeID int64

	// Nodes is the number of nodes read from the graph source.
	Nodes int

	// Segments is the number of segments read from the graph source.
	Segments int

	// SkippedSegments counts segments dropped for referencing unknown nodes.
	SkippedSegments int

	// Routes is the number of routes stored.
	Routes int

	// Duration is the wall time of the run.
	Duration time.Duration
}

// GraphStats reports the size of the stored network.
type GraphStats struct {
	Nodes    int
	Segments int
	Routes   int
}
