package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driven"
)

// Ensure UsageStore implements the interface.
var _ driven.UsageStore = (*UsageStore)(nil)

// UsageStore is an in-memory implementation of driven.UsageStore.
type UsageStore struct {
	mu     sync.RWMutex
	counts map[int64]int
	events []domain.AcceptanceEvent
}

// NewUsageStore creates a new in-memory usage store.
func NewUsageStore() *UsageStore {
	return &UsageStore{
		counts: make(map[int64]int),
	}
}

// ensure creates zero counters for segments that have none.
func (s *UsageStore) ensure(ids []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if _, ok := s.counts[id]; !ok {
			s.counts[id] = 0
		}
	}
}

// UsageSums returns the counters of the requested segments that have one.
func (s *UsageStore) UsageSums(_ context.Context, segmentIDs []int64) (map[int64]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[int64]int, len(segmentIDs))
	for _, id := range segmentIDs {
		if c, ok := s.counts[id]; ok {
			result[id] = c
		}
	}
	return result, nil
}

// CountOnDay counts acceptance events per segment on day's calendar day.
func (s *UsageStore) CountOnDay(_ context.Context, segmentIDs []int64, day time.Time) (map[int64]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := domain.NewSegmentSet(segmentIDs)
	start, end := domain.DayBounds(day)

	result := make(map[int64]int)
	for _, ev := range s.events {
		if !wanted.Contains(ev.SegmentID) {
			continue
		}
		if ev.AcceptedAt.Before(start) || !ev.AcceptedAt.Before(end) {
			continue
		}
		result[ev.SegmentID]++
	}
	return result, nil
}

// Increment adds one to each segment's counter.
func (s *UsageStore) Increment(_ context.Context, segmentIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.increment(segmentIDs)
	return nil
}

// AppendAcceptanceEvents logs one event per segment.
func (s *UsageStore) AppendAcceptanceEvents(_ context.Context, segmentIDs []int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendEvents(segmentIDs, at)
	return nil
}

// RecordAcceptance increments counters and logs events under one lock.
func (s *UsageStore) RecordAcceptance(ctx context.Context, segmentIDs []int64, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.increment(segmentIDs)
	s.appendEvents(segmentIDs, at)
	return nil
}

// TopSegments returns the most used segments.
func (s *UsageStore) TopSegments(_ context.Context, limit int, now time.Time) ([]domain.SegmentUsage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	today := make(map[int64]int)
	start, end := domain.DayBounds(now)
	for _, ev := range s.events {
		if !ev.AcceptedAt.Before(start) && ev.AcceptedAt.Before(end) {
			today[ev.SegmentID]++
		}
	}

	result := make([]domain.SegmentUsage, 0, len(s.counts))
	for id, c := range s.counts {
		result = append(result, domain.SegmentUsage{
			SegmentID:     id,
			UsageCount:    c,
			AcceptedToday: today[id],
		})
	}
	slices.SortFunc(result, func(a, b domain.SegmentUsage) int {
		if a.UsageCount != b.UsageCount {
			return b.UsageCount - a.UsageCount
		}
		return cmpID(a.SegmentID, b.SegmentID)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Events returns a copy of the acceptance log.
func (s *UsageStore) Events() []domain.AcceptanceEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}

func (s *UsageStore) increment(ids []int64) {
	for _, id := range ids {
		s.counts[id]++
	}
}

func (s *UsageStore) appendEvents(ids []int64, at time.Time) {
	for _, id := range ids {
		s.events = append(s.events, domain.AcceptanceEvent{SegmentID: id, AcceptedAt: at})
	}
}
