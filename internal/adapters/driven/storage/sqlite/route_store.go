package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driven"
)

// Ensure routeStore implements the interface.
var _ driven.RouteStore = (*routeStore)(nil)

// routeStore implements driven.RouteStore using SQLite.
// Node and segment chains are stored as JSON arrays.
type routeStore struct {
	store *Store
}

const insertRouteSQL = `
	INSERT OR IGNORE INTO routes (signature, node_ids, segment_ids, length_m, duration_min)
	VALUES (?, ?, ?, ?, ?)
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

// Replace deletes and reinserts inside one transaction. WAL readers keep
// seeing the previous set until commit.
func (s *routeStore) Replace(ctx context.Context, routes []domain.Route) error {
	err := s.store.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM routes"); err != nil {
			return fmt.Errorf("clearing routes: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, insertRouteSQL)
		if err != nil {
			return fmt.Errorf("preparing route insert: %w", err)
		}
		defer stmt.Close()

		for _, r := range routes {
			args, err := routeArgs(r)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
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
	col, err := routeColumn(q.Mode)
	if err != nil {
		return nil, err
	}
	lo, hi := q.Window()

	limit := -1
	if q.Limit > 0 {
		limit = q.Limit
	}

	query := fmt.Sprintf(`
		SELECT signature, node_ids, segment_ids, length_m, duration_min
		FROM routes
		WHERE %[1]s BETWEEN ? AND ?
		ORDER BY ABS(%[1]s - ?), seq
		LIMIT ?
	`, col)

	rows, err := s.store.db.QueryContext(ctx, query, lo, hi, q.Target, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: querying routes: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var routes []domain.Route
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, err
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

func routeColumn(mode domain.QueryMode) (string, error) {
	switch mode {
	case domain.QueryModeDistance:
		return "length_m", nil
	case domain.QueryModeDuration:
		return "duration_min", nil
	default:
		return "", fmt.Errorf("%w: unknown query mode %q", domain.ErrInvalidInput, mode)
	}
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
	return []any{r.Signature, string(nodeIDs), string(segmentIDs), r.LengthM, r.DurationMin}, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoute(row rowScanner) (domain.Route, error) {
	var r domain.Route
	var nodeIDs, segmentIDs string
	if err := row.Scan(&r.Signature, &nodeIDs, &segmentIDs, &r.LengthM, &r.DurationMin); err != nil {
		return domain.Route{}, fmt.Errorf("scanning route: %w", err)
	}
	if err := json.Unmarshal([]byte(nodeIDs), &r.NodeIDs); err != nil {
		return domain.Route{}, fmt.Errorf("unmarshaling node ids of %s: %w", r.Signature, err)
	}
	if err := json.Unmarshal([]byte(segmentIDs), &r.SegmentIDs); err != nil {
		return domain.Route{}, fmt.Errorf("unmarshaling segment ids of %s: %w", r.Signature, err)
	}
	return r, nil
}
