package driven

import (
	"context"
	"time"

	"github.com/routy-labs/routy/internal/core/domain"
)

// UsageStore holds per-segment usage counters and the acceptance event log.
type UsageStore interface {
	// UsageSums returns the usage counter of each requested segment.
	// Segments without a counter are absent from the map.
	UsageSums(ctx context.Context, segmentIDs []int64) (map[int64]int, error)

	// CountOnDay returns, per segment, the number of acceptance events on the
	// calendar day containing day (in day's location).
	CountOnDay(ctx context.Context, segmentIDs []int64, day time.Time) (map[int64]int, error)

	// Increment adds one to the usage counter of each segment.
	Increment(ctx context.Context, segmentIDs []int64) error

	// AppendAcceptanceEvents logs one acceptance event per segment at the given time.
	AppendAcceptanceEvents(ctx context.Context, segmentIDs []int64, at time.Time) error

	// RecordAcceptance performs Increment and AppendAcceptanceEvents as one atomic unit:
	// either every segment is credited or none is.
	RecordAcceptance(ctx context.Context, segmentIDs []int64, at time.Time) error

	// TopSegments returns the most used segments, with today's acceptance count
	// relative to now, ordered by usage descending then segment ID ascending.
	TopSegments(ctx context.Context, limit int, now time.Time) ([]domain.SegmentUsage, error)
}
