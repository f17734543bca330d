package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driven"
)

var _ driven.GraphStore = (*graphStore)(nil)

type graphStore struct {
	store *Store
}

func (s *graphStore) ListNodes(ctx context.Context) ([]domain.Node, error) {
	return s.queryNodes(ctx, "SELECT id, name, latitude, longitude FROM nodes ORDER BY id")
}

func (s *graphStore) ListSegments(ctx context.Context) ([]domain.Segment, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, start_node_id, end_node_id, length_m, duration_min
		FROM segments ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: listing segments: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var segments []domain.Segment
	for rows.Next() {
		var seg domain.Segment
		if err := rows.Scan(&seg.ID, &seg.Name, &seg.StartNodeID, &seg.EndNodeID,
			&seg.LengthM, &seg.DurationMin); err != nil {
			return nil, fmt.Errorf("scanning segment: %w", err)
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

// FindNodesByName compares with a binary collation so the match is exact.
func (s *graphStore) FindNodesByName(ctx context.Context, name string) ([]domain.Node, error) {
	return s.queryNodes(ctx,
		"SELECT id, name, latitude, longitude FROM nodes WHERE name = BINARY ? ORDER BY id", name)
}

func (s *graphStore) NodeNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	for _, chunk := range chunkIDs(ids) {
		nodes, err := s.queryNodes(ctx,
			"SELECT id, name, latitude, longitude FROM nodes WHERE name <> '' AND id IN ("+
				placeholders(len(chunk))+")", int64Args(chunk)...)
		if err != nil {
			return nil, err
		}
		for _, n := range nodes {
			names[n.ID] = n.Name
		}
	}
	return names, nil
}

func (s *graphStore) SaveNodes(ctx context.Context, nodes []domain.Node) error {
	err := s.store.withTx(ctx, func(tx *sql.Tx) error {
		for _, n := range nodes {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO nodes (id, name, latitude, longitude) VALUES (?, ?, ?, ?)
				ON DUPLICATE KEY UPDATE name = VALUES(name), latitude = VALUES(latitude), longitude = VALUES(longitude)
			`, n.ID, n.Name, n.Latitude, n.Longitude)
			if err != nil {
				return fmt.Errorf("saving node %d: %w", n.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *graphStore) SaveSegments(ctx context.Context, segments []domain.Segment) error {
	err := s.store.withTx(ctx, func(tx *sql.Tx) error {
		for _, seg := range segments {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO segments (id, name, start_node_id, end_node_id, length_m, duration_min)
				VALUES (?, ?, ?, ?, ?, ?)
				ON DUPLICATE KEY UPDATE
					name = VALUES(name),
					start_node_id = VALUES(start_node_id),
					end_node_id = VALUES(end_node_id),
					length_m = VALUES(length_m),
					duration_min = VALUES(duration_min)
			`, seg.ID, seg.Name, seg.StartNodeID, seg.EndNodeID, seg.LengthM, seg.DurationMin)
			if err != nil {
				return fmt.Errorf("saving segment %d: %w", seg.ID, err)
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT IGNORE INTO segment_usage (segment_id, usage_count) VALUES (?, 0)", seg.ID); err != nil {
				return fmt.Errorf("creating usage counter for segment %d: %w", seg.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *graphStore) Stats(ctx context.Context) (domain.GraphStats, error) {
	var stats domain.GraphStats
	err := s.store.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM nodes),
			(SELECT COUNT(*) FROM segments),
			(SELECT COUNT(*) FROM routes)
	`).Scan(&stats.Nodes, &stats.Segments, &stats.Routes)
	if err != nil {
		return domain.GraphStats{}, fmt.Errorf("%w: reading stats: %v", domain.ErrStoreUnavailable, err)
	}
	return stats, nil
}

func (s *graphStore) queryNodes(ctx context.Context, query string, args ...any) ([]domain.Node, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying nodes: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var nodes []domain.Node
	for rows.Next() {
		var n domain.Node
		if err := rows.Scan(&n.ID, &n.Name, &n.Latitude, &n.Longitude); err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}
