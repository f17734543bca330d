package mysql

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driven"
)

var _ driven.RouteStore = (*routeStore)(nil)

// routeStore keys routes by the SHA-256 of their signature because long
// chains exceed the maximum index length.
type routeStore struct {
	store *Store
}

const insertRouteSQL = `
	INSERT IGNORE INTO routes (signature_hash, signature, node_ids, segment_ids, length_m, duration_min)
	VALUES (?, ?, ?, ?, ?, ?)
`

func (s *routeStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM routes"); err != nil {
		return fmt.Errorf("%w: clearing routes: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *routeStore) Put(ctx context.Context, route domain.Route) error {
	args, err := routeArgs(route)
	if err != nil {
		return err
	}
	if _, err := s.store.db.ExecContext(ctx, insertRouteSQL, args...); err != nil {
		return fmt.Errorf("%w: saving route %s: %v", domain.ErrStoreUnavailable, route.Signature, err)
	}
	return nil
}

// Replace runs in one InnoDB transaction; readers keep their snapshot of the
// previous set until commit.
func (s *routeStore) Replace(ctx context.Context, routes []domain.Route) error {
	err := s.store.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM routes"); err != nil {
			return fmt.Errorf("clearing routes: %w", err)
		}
		for _, r := range routes {
			args, err := routeArgs(r)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, insertRouteSQL, args...); err != nil {
				return fmt.Errorf("saving route %s: %w", r.Signature, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: replacing routes: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *routeStore) Query(ctx context.Context, q domain.RouteQuery) ([]domain.Route, error) {
	var col string
	switch q.Mode {
	case domain.QueryModeDistance:
		col = "length_m"
	case domain.QueryModeDuration:
		col = "duration_min"
	default:
		return nil, fmt.Errorf("%w: unknown query mode %q", domain.ErrInvalidInput, q.Mode)
	}
	lo, hi := q.Window()

	query := fmt.Sprintf(`
		SELECT signature, node_ids, segment_ids, length_m, duration_min
		FROM routes
		WHERE %[1]s BETWEEN ? AND ?
		ORDER BY ABS(%[1]s - ?), seq`, col)
	args := []any{lo, hi, q.Target}
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying routes: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var routes []domain.Route
	for rows.Next() {
		var r domain.Route
		var nodeIDs, segmentIDs []byte
		if err := rows.Scan(&r.Signature, &nodeIDs, &segmentIDs, &r.LengthM, &r.DurationMin); err != nil {
			return nil, fmt.Errorf("scanning route: %w", err)
		}
		if err := json.Unmarshal(nodeIDs, &r.NodeIDs); err != nil {
			return nil, fmt.Errorf("unmarshaling node ids of %s: %w", r.Signature, err)
		}
		if err := json.Unmarshal(segmentIDs, &r.SegmentIDs); err != nil {
			return nil, fmt.Errorf("unmarshaling segment ids of %s: %w", r.Signature, err)
		}
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

func (s *routeStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM routes").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting routes: %v", domain.ErrStoreUnavailable, err)
	}
	return n, nil
}

func routeArgs(r domain.Route) ([]any, error) {
	nodeIDs, err := json.Marshal(r.NodeIDs)
	if err != nil {
		return nil, fmt.Errorf("marshaling node ids: %w", err)
	}
	segmentIDs, err := json.Marshal(r.SegmentIDs)
	if err != nil {
		return nil, fmt.Errorf("marshaling segment ids: %w", err)
	}
	hash := sha256.Sum256([]byte(r.Signature))
	return []any{hash[:], r.Signature, string(nodeIDs), string(segmentIDs), r.LengthM, r.DurationMin}, nil
}
