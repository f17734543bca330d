package services

import (
	"context"
	"fmt"
	"time"

	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driven"
	"github.com/routy-labs/routy/internal/core/ports/driving"
)

// UsagePenaltyModel scores how worn a set of segments is.
// Lower scores are fresher and preferred.
type UsagePenaltyModel struct {
	store  driven.UsageStore
	weight float64
	now    func() time.Time
}

// NewUsagePenaltyModel creates a model applying weight to same-day acceptances.
func NewUsagePenaltyModel(store driven.UsageStore, weight float64, now func() time.Time) *UsagePenaltyModel {
	if now == nil {
		now = time.Now
	}
	return &UsagePenaltyModel{store: store, weight: weight, now: now}
}

// UsageSum returns the sum of the usage counters of segmentIDs.
func (m *UsagePenaltyModel) UsageSum(ctx context.Context, segmentIDs []int64) (int, error) {
	if len(segmentIDs) == 0 {
		return 0, nil
	}
	sums, err := m.store.UsageSums(ctx, segmentIDs)
	if err != nil {
		return 0, fmt.Errorf("usage sums: %w", err)
	}
	total := 0
	for _, id := range segmentIDs {
		total += sums[id]
	}
	return total, nil
}

// DailyPenalty returns weight times the number of today's acceptance events
// across segmentIDs. A weight of zero or less returns 0 without querying history.
func (m *UsagePenaltyModel) DailyPenalty(ctx context.Context, segmentIDs []int64, weight float64) (float64, error) {
	if len(segmentIDs) == 0 || weight <= 0 {
		return 0, nil
	}
	counts, err := m.store.CountOnDay(ctx, segmentIDs, m.now())
	if err != nil {
		return 0, fmt.Errorf("count today: %w", err)
	}
	total := 0
	for _, id := range segmentIDs {
		total += counts[id]
	}
	return float64(total) * weight, nil
}

// Freshness returns UsageSum plus DailyPenalty at the model's weight.
func (m *UsagePenaltyModel) Freshness(ctx context.Context, segmentIDs []int64) (float64, error) {
	usage, err := m.UsageSum(ctx, segmentIDs)
	if err != nil {
		return 0, err
	}
	penalty, err := m.DailyPenalty(ctx, segmentIDs, m.weight)
	if err != nil {
		return 0, err
	}
	return float64(usage) + penalty, nil
}

// FreshnessScores returns the freshness of every route, using one usage
// lookup and at most one history lookup for the whole batch.
func (m *UsagePenaltyModel) FreshnessScores(ctx context.Context, routes []domain.Route) ([]float64, error) {
	scores := make([]float64, len(routes))
	all := make(domain.SegmentSet)
	for _, r := range routes {
		all.Merge(r.SegmentSet())
	}
	if len(all) == 0 {
		return scores, nil
	}
	ids := all.IDs()

	sums, err := m.store.UsageSums(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("usage sums: %w", err)
	}

	var today map[int64]int
	if m.weight > 0 {
		today, err = m.store.CountOnDay(ctx, ids, m.now())
		if err != nil {
			return nil, fmt.Errorf("count today: %w", err)
		}
	}

	for i, r := range routes {
		usage, events := 0, 0
		for _, id := range r.SegmentIDs {
			usage += sums[id]
			events += today[id]
		}
		scores[i] = float64(usage)
		if m.weight > 0 {
			scores[i] += float64(events) * m.weight
		}
	}
	return scores, nil
}

// Ensure UsageReport implements the interface.
var _ driving.UsageService = (*UsageReport)(nil)

// UsageReport lists segment usage for operators.
type UsageReport struct {
	store driven.UsageStore
	now   func() time.Time
}

// NewUsageReport creates a usage report over store.
func NewUsageReport(store driven.UsageStore) *UsageReport {
	return &UsageReport{store: store, now: time.Now}
}

// Top returns the most used segments.
func (r *UsageReport) Top(ctx context.Context, limit int) ([]domain.SegmentUsage, error) {
	if limit <= 0 {
		limit = 10
	}
	return r.store.TopSegments(ctx, limit, r.now())
}
