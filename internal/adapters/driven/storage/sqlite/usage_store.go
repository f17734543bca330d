package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driven"
)

// Ensure usageStore implements the interface.
var _ driven.UsageStore = (*usageStore)(nil)

// usageStore implements driven.UsageStore using SQLite.
type usageStore struct {
	store *Store
}

const (
	incrementUsageSQL = `
		INSERT INTO segment_usage (segment_id, usage_count) VALUES (?, 1)
		ON CONFLICT(segment_id) DO UPDATE SET usage_count = usage_count + 1
	`
	appendEventSQL = "INSERT INTO acceptance_log (segment_id, accepted_at) VALUES (?, ?)"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *usageStore) UsageSums(ctx context.Context, segmentIDs []int64) (map[int64]int, error) {
	sums := make(map[int64]int, len(segmentIDs))
	for _, chunk := range chunkIDs(segmentIDs) {
		query := "SELECT segment_id, usage_count FROM segment_usage WHERE segment_id IN (" +
			placeholders(len(chunk)) + ")"
		if err := s.collectCounts(ctx, sums, query, int64Args(chunk)...); err != nil {
			return nil, fmt.Errorf("%w: reading usage: %v", domain.ErrStoreUnavailable, err)
		}
	}
	return sums, nil
}

func (s *usageStore) CountOnDay(ctx context.Context, segmentIDs []int64, day time.Time) (map[int64]int, error) {
	start, end := domain.DayBounds(day)
	counts := make(map[int64]int, len(segmentIDs))
	for _, chunk := range chunkIDs(segmentIDs) {
		query := `
			SELECT segment_id, COUNT(*) FROM acceptance_log
			WHERE accepted_at >= ? AND accepted_at < ?
			AND segment_id IN (` + placeholders(len(chunk)) + `)
			GROUP BY segment_id`
		args := append([]any{unixMilli(start), unixMilli(end)}, int64Args(chunk)...)
		if err := s.collectCounts(ctx, counts, query, args...); err != nil {
			return nil, fmt.Errorf("%w: counting acceptances: %v", domain.ErrStoreUnavailable, err)
		}
	}
	return counts, nil
}

func (s *usageStore) Increment(ctx context.Context, segmentIDs []int64) error {
	if err := increment(ctx, s.store.db, segmentIDs); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *usageStore) AppendAcceptanceEvents(ctx context.Context, segmentIDs []int64, at time.Time) error {
	if err := appendEvents(ctx, s.store.db, segmentIDs, at); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// RecordAcceptance credits every segment and logs the events in one transaction.
func (s *usageStore) RecordAcceptance(ctx context.Context, segmentIDs []int64, at time.Time) error {
	err := s.store.withTx(ctx, func(tx *sql.Tx) error {
		if err := increment(ctx, tx, segmentIDs); err != nil {
			return err
		}
		return appendEvents(ctx, tx, segmentIDs, at)
	})
	if err != nil {
		return fmt.Errorf("%w: recording acceptance: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *usageStore) TopSegments(ctx context.Context, limit int, now time.Time) ([]domain.SegmentUsage, error) {
	if limit <= 0 {
		limit = -1
	}
	start, end := domain.DayBounds(now)

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT u.segment_id, u.usage_count,
			(SELECT COUNT(*) FROM acceptance_log a
			 WHERE a.segment_id = u.segment_id AND a.accepted_at >= ? AND a.accepted_at < ?)
		FROM segment_usage u
		ORDER BY u.usage_count DESC, u.segment_id ASC
		LIMIT ?
	`, unixMilli(start), unixMilli(end), limit)
	if err != nil {
		return nil, fmt.Errorf("%w: listing top segments: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var result []domain.SegmentUsage
	for rows.Next() {
		var u domain.SegmentUsage
		if err := rows.Scan(&u.SegmentID, &u.UsageCount, &u.AcceptedToday); err != nil {
			return nil, fmt.Errorf("scanning segment usage: %w", err)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (s *usageStore) collectCounts(ctx context.Context, into map[int64]int, query string, args ...any) error {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return fmt.Errorf("scanning count: %w", err)
		}
		into[id] = n
	}
	return rows.Err()
}

func increment(ctx context.Context, db execer, segmentIDs []int64) error {
	for _, id := range segmentIDs {
		if _, err := db.ExecContext(ctx, incrementUsageSQL, id); err != nil {
			return fmt.Errorf("incrementing usage of segment %d: %w", id, err)
		}
	}
	return nil
}

func appendEvents(ctx context.Context, db execer, segmentIDs []int64, at time.Time) error {
	ts := unixMilli(at)
	for _, id := range segmentIDs {
		if _, err := db.ExecContext(ctx, appendEventSQL, id, ts); err != nil {
			return fmt.Errorf("logging acceptance of segment %d: %w", id, err)
		}
	}
	return nil
}
