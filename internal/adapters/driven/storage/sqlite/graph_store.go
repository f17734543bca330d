package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driven"
)

// Ensure graphStore implements the interface.
var _ driven.GraphStore = (*graphStore)(nil)

// graphStore implements driven.GraphStore using SQLite.
type graphStore struct {
	store *Store
}

func (s *graphStore) ListNodes(ctx context.Context) ([]domain.Node, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT id, name, latitude, longitude FROM nodes ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("%w: listing nodes: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()
	return scanNodes(rows)
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

func (s *graphStore) FindNodesByName(ctx context.Context, name string) ([]domain.Node, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT id, name, latitude, longitude FROM nodes WHERE name = ? ORDER BY id", name)
	if err != nil {
		return nil, fmt.Errorf("%w: finding nodes: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

func (s *graphStore) NodeNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	for _, chunk := range chunkIDs(ids) {
		query := "SELECT id, name FROM nodes WHERE name != '' AND id IN (" + placeholders(len(chunk)) + ")"
		rows, err := s.store.db.QueryContext(ctx, query, int64Args(chunk)...)
		if err != nil {
			return nil, fmt.Errorf("%w: reading node names: %v", domain.ErrStoreUnavailable, err)
		}
		for rows.Next() {
			var id int64
			var name string
			if err := rows.Scan(&id, &name); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning node name: %w", err)
			}
			names[id] = name
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return names, nil
}

func (s *graphStore) SaveNodes(ctx context.Context, nodes []domain.Node) error {
	return s.store.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO nodes (id, name, latitude, longitude) VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				latitude = excluded.latitude,
				longitude = excluded.longitude
		`)
		if err != nil {
			return fmt.Errorf("preparing node insert: %w", err)
		}
		defer stmt.Close()

		for _, n := range nodes {
			if _, err := stmt.ExecContext(ctx, n.ID, n.Name, n.Latitude, n.Longitude); err != nil {
				return fmt.Errorf("saving node %d: %w", n.ID, err)
			}
		}
		return nil
	})
}

// SaveSegments upserts segments and creates a zero usage counter for new ones.
func (s *graphStore) SaveSegments(ctx context.Context, segments []domain.Segment) error {
	return s.store.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO segments (id, name, start_node_id, end_node_id, length_m, duration_min)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				start_node_id = excluded.start_node_id,
				end_node_id = excluded.end_node_id,
				length_m = excluded.length_m,
				duration_min = excluded.duration_min
		`)
		if err != nil {
			return fmt.Errorf("preparing segment insert: %w", err)
		}
		defer stmt.Close()

		usage, err := tx.PrepareContext(ctx,
			"INSERT OR IGNORE INTO segment_usage (segment_id, usage_count) VALUES (?, 0)")
		if err != nil {
			return fmt.Errorf("preparing usage insert: %w", err)
		}
		defer usage.Close()

		for _, seg := range segments {
			if _, err := stmt.ExecContext(ctx, seg.ID, seg.Name, seg.StartNodeID, seg.EndNodeID,
				seg.LengthM, seg.DurationMin); err != nil {
				return fmt.Errorf("saving segment %d: %w", seg.ID, err)
			}
			if _, err := usage.ExecContext(ctx, seg.ID); err != nil {
				return fmt.Errorf("creating usage counter for segment %d: %w", seg.ID, err)
			}
		}
		return nil
	})
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

func scanNodes(rows *sql.Rows) ([]domain.Node, error) {
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
