package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routy-labs/routy/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func testRoute(nodes []int64, segs []int64, lengthM, durationMin int) domain.Route {
	return domain.NewRoute(nodes, segs, lengthM, durationMin)
}

// ==================== Store Creation and Initialization Tests ====================

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	dbPath := filepath.Join(dir, "routy.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)
	assert.NoError(t, store.db.Ping())
}

func TestNewStore_DefaultDirectoryFromEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("ROUTY_HOME", home)

	store, err := NewStore("")
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(home, "data", "routy.db"), store.Path())
}

func TestNewStore_DirectoryCreation(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "path", "to", "db")

	store, err := NewStore(nested)
	require.NoError(t, err)
	defer store.Close()

	assert.DirExists(t, nested)
}

func TestNewStore_Migrations(t *testing.T) {
	store := setupTestStore(t)

	tables := []string{
		"nodes",
		"segments",
		"routes",
		"segment_usage",
		"acceptance_log",
		"sessions",
		"jobs",
		"job_runs",
	}
	for _, table := range tables {
		var n int
		err := store.db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "table %s should exist", table)
	}

	version, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}

func TestStore_MigrationIdempotency(t *testing.T) {
	dir := t.TempDir()

	store1, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store1.GraphStore().SaveNodes(context.Background(), []domain.Node{{ID: 1, Name: "Home"}}))
	require.NoError(t, store1.Close())

	store2, err := NewStore(dir)
	require.NoError(t, err)
	defer store2.Close()

	var count int
	require.NoError(t, store2.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)

	nodes, err := store2.GraphStore().ListNodes(context.Background())
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}

func TestStore_WALMode(t *testing.T) {
	store := setupTestStore(t)

	var journalMode string
	require.NoError(t, store.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)
}

func TestStore_Close(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.Error(t, store.db.Ping())
}

func TestStore_InterfaceGetters(t *testing.T) {
	store := setupTestStore(t)

	assert.NotNil(t, store.GraphStore())
	assert.NotNil(t, store.RouteStore())
	assert.NotNil(t, store.UsageStore())
	assert.NotNil(t, store.SessionStore(time.Minute, nil))
	assert.NotNil(t, store.SchedulerStore())
}

func TestChunkIDs(t *testing.T) {
	ids := make([]int64, 0, 1203)
	for i := int64(1203); i > 0; i-- {
		ids = append(ids, i)
	}
	ids = append(ids, 7, 7)

	chunks := chunkIDs(ids)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], maxParams)
	assert.Len(t, chunks[1], maxParams)
	assert.Len(t, chunks[2], 203)
	assert.Equal(t, int64(1), chunks[0][0])

	assert.Empty(t, chunkIDs(nil))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}

// ==================== GraphStore Tests ====================

func TestGraphStore_SaveAndList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	graph := store.GraphStore()

	require.NoError(t, graph.SaveNodes(ctx, []domain.Node{
		{ID: 3, Name: "Bakery", Latitude: 52.1, Longitude: 4.3},
		{ID: 1, Name: "Home", Latitude: 52.0, Longitude: 4.2},
		{ID: 2},
	}))
	require.NoError(t, graph.SaveSegments(ctx, []domain.Segment{
		{ID: 20, StartNodeID: 2, EndNodeID: 1, LengthM: 700, DurationMin: 7},
		{ID: 10, Name: "Home - Bakery", StartNodeID: 1, EndNodeID: 3, LengthM: 500, DurationMin: 5},
	}))

	nodes, err := graph.ListNodes(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{nodes[0].ID, nodes[1].ID, nodes[2].ID})
	assert.Equal(t, "Home", nodes[0].Name)
	assert.InDelta(t, 52.0, nodes[0].Latitude, 1e-9)

	segments, err := graph.ListSegments(ctx)
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, int64(10), segments[0].ID)
	assert.Equal(t, "Home - Bakery", segments[0].Name)
	assert.Equal(t, int64(3), segments[0].EndNodeID)
	assert.Equal(t, 5, segments[0].DurationMin)
}

func TestGraphStore_SaveUpdates(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	graph := store.GraphStore()

	require.NoError(t, graph.SaveNodes(ctx, []domain.Node{{ID: 1, Name: "Old"}}))
	require.NoError(t, graph.SaveNodes(ctx, []domain.Node{{ID: 1, Name: "Home"}}))

	nodes, err := graph.ListNodes(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "Home", nodes[0].Name)
}

func TestGraphStore_FindNodesByName(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	graph := store.GraphStore()

	require.NoError(t, graph.SaveNodes(ctx, []domain.Node{
		{ID: 5, Name: "Home"},
		{ID: 2, Name: "Home"},
		{ID: 3, Name: "home"},
	}))

	found, err := graph.FindNodesByName(ctx, "Home")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, int64(2), found[0].ID)
	assert.Equal(t, int64(5), found[1].ID)

	found, err = graph.FindNodesByName(ctx, "Nowhere")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestGraphStore_NodeNames(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	graph := store.GraphStore()

	require.NoError(t, graph.SaveNodes(ctx, []domain.Node{
		{ID: 1, Name: "Home"},
		{ID: 2},
		{ID: 3, Name: "Lake"},
	}))

	names, err := graph.NodeNames(ctx, []int64{1, 2, 3, 99, 1})
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{1: "Home", 3: "Lake"}, names)
}

func TestGraphStore_SaveSegmentsCreatesUsageCounters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.GraphStore().SaveSegments(ctx, []domain.Segment{
		{ID: 1, StartNodeID: 1, EndNodeID: 2, LengthM: 100, DurationMin: 1},
	}))
	require.NoError(t, store.UsageStore().Increment(ctx, []int64{1}))

	// Saving again must not reset the counter.
	require.NoError(t, store.GraphStore().SaveSegments(ctx, []domain.Segment{
		{ID: 1, StartNodeID: 1, EndNodeID: 2, LengthM: 120, DurationMin: 1},
	}))

	sums, err := store.UsageStore().UsageSums(ctx, []int64{1})
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{1: 1}, sums)
}

func TestGraphStore_Stats(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.GraphStore().SaveNodes(ctx, []domain.Node{{ID: 1}, {ID: 2}}))
	require.NoError(t, store.GraphStore().SaveSegments(ctx, []domain.Segment{
		{ID: 1, StartNodeID: 1, EndNodeID: 2, LengthM: 100},
	}))
	require.NoError(t, store.RouteStore().Put(ctx, testRoute([]int64{1, 2, 1}, []int64{1, 2}, 200, 2)))

	stats, err := store.GraphStore().Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.GraphStats{Nodes: 2, Segments: 1, Routes: 1}, stats)
}

// ==================== RouteStore Tests ====================

func seedRoutes(t *testing.T, store *Store) {
	t.Helper()
	routes := store.RouteStore()
	ctx := context.Background()
	require.NoError(t, routes.Put(ctx, testRoute([]int64{1, 4, 1}, []int64{5, 6}, 1800, 18)))
	require.NoError(t, routes.Put(ctx, testRoute([]int64{1, 3, 1}, []int64{3, 4}, 1900, 30)))
	require.NoError(t, routes.Put(ctx, testRoute([]int64{1, 2, 1}, []int64{1, 2}, 2200, 22)))
	require.NoError(t, routes.Put(ctx, testRoute([]int64{1, 5, 1}, []int64{7, 8}, 3000, 31)))
}

func TestRouteStore_QueryOrdersByDelta(t *testing.T) {
	store := setupTestStore(t)
	seedRoutes(t, store)

	got, err := store.RouteStore().Query(context.Background(), domain.RouteQuery{
		Mode:             domain.QueryModeDistance,
		Target:           2000,
		TolerancePercent: 10,
	})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, 1900, got[0].LengthM)
	assert.Equal(t, 1800, got[1].LengthM)
	assert.Equal(t, 2200, got[2].LengthM)
	assert.Equal(t, []int64{3, 4}, got[0].SegmentIDs)
	assert.Equal(t, []int64{1, 3, 1}, got[0].NodeIDs)
	assert.Equal(t, "1-3-1", got[0].Signature)
}

func TestRouteStore_QueryTiesKeepInsertionOrder(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	routes := store.RouteStore()

	require.NoError(t, routes.Put(ctx, testRoute([]int64{1, 9, 1}, []int64{9, 10}, 2100, 21)))
	require.NoError(t, routes.Put(ctx, testRoute([]int64{1, 8, 1}, []int64{11, 12}, 1900, 19)))

	got, err := routes.Query(ctx, domain.RouteQuery{
		Mode: domain.QueryModeDistance, Target: 2000, TolerancePercent: 10,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1-9-1", got[0].Signature)
	assert.Equal(t, "1-8-1", got[1].Signature)
}

func TestRouteStore_QueryDurationModeAndLimit(t *testing.T) {
	store := setupTestStore(t)
	seedRoutes(t, store)

	got, err := store.RouteStore().Query(context.Background(), domain.RouteQuery{
		Mode:             domain.QueryModeDuration,
		Target:           30,
		TolerancePercent: 10,
		Limit:            1,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 30, got[0].DurationMin)
}

func TestRouteStore_QueryWindowIsInclusive(t *testing.T) {
	store := setupTestStore(t)
	seedRoutes(t, store)

	got, err := store.RouteStore().Query(context.Background(), domain.RouteQuery{
		Mode: domain.QueryModeDistance, Target: 2000, TolerancePercent: 0,
	})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = store.RouteStore().Query(context.Background(), domain.RouteQuery{
		Mode: domain.QueryModeDistance, Target: 2200, TolerancePercent: 0,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2200, got[0].LengthM)
}

func TestRouteStore_QueryUnknownMode(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.RouteStore().Query(context.Background(), domain.RouteQuery{Mode: "speed", Target: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRouteStore_PutIsIdempotent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	r := testRoute([]int64{1, 2, 1}, []int64{1, 2}, 200, 2)

	require.NoError(t, store.RouteStore().Put(ctx, r))
	require.NoError(t, store.RouteStore().Put(ctx, r))

	n, err := store.RouteStore().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRouteStore_ClearAndReplace(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	seedRoutes(t, store)

	require.NoError(t, store.RouteStore().Replace(ctx, []domain.Route{
		testRoute([]int64{1, 6, 1}, []int64{13, 14}, 5000, 50),
	}))
	n, err := store.RouteStore().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, store.RouteStore().Clear(ctx))
	n, err = store.RouteStore().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRouteStore_ReplaceNeverExposesEmptyWindow(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	seedRoutes(t, store)

	next := []domain.Route{
		testRoute([]int64{1, 2, 1}, []int64{1, 2}, 2200, 22),
		testRoute([]int64{1, 3, 1}, []int64{3, 4}, 1900, 30),
	}
	q := domain.RouteQuery{Mode: domain.QueryModeDistance, Target: 2000, TolerancePercent: 10}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	empty := make(chan struct{}, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			got, err := store.RouteStore().Query(ctx, q)
			if err == nil && len(got) == 0 {
				select {
				case empty <- struct{}{}:
				default:
				}
			}
		}
	}()

	for i := 0; i < 20; i++ {
		require.NoError(t, store.RouteStore().Replace(ctx, next))
	}
	close(stop)
	wg.Wait()

	assert.Empty(t, empty, "a reader observed an empty window during Replace")
}

func TestRouteStore_CancelledContext(t *testing.T) {
	store := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.RouteStore().Query(ctx, domain.RouteQuery{Mode: domain.QueryModeDistance, Target: 1})
	assert.Error(t, err)
}

// ==================== UsageStore Tests ====================

func TestUsageStore_RecordAcceptance(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	usage := store.UsageStore()
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)

	require.NoError(t, usage.RecordAcceptance(ctx, []int64{1, 2}, at))
	require.NoError(t, usage.RecordAcceptance(ctx, []int64{2}, at.Add(time.Hour)))

	sums, err := usage.UsageSums(ctx, []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{1: 1, 2: 2}, sums)

	today, err := usage.CountOnDay(ctx, []int64{1, 2, 3}, at)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{1: 1, 2: 2}, today)

	tomorrow, err := usage.CountOnDay(ctx, []int64{1, 2}, at.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, tomorrow)
}

func TestUsageStore_CountOnDayBoundaries(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	usage := store.UsageStore()
	midnight := time.Date(2024, 5, 2, 0, 0, 0, 0, time.Local)

	require.NoError(t, usage.AppendAcceptanceEvents(ctx, []int64{1}, midnight.Add(-time.Millisecond)))
	require.NoError(t, usage.AppendAcceptanceEvents(ctx, []int64{1}, midnight))

	counts, err := usage.CountOnDay(ctx, []int64{1}, midnight.Add(12*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, counts[1])

	counts, err = usage.CountOnDay(ctx, []int64{1}, midnight.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, counts[1])
}

func TestUsageStore_RecordAcceptanceIsAtomic(t *testing.T) {
	store := setupTestStore(t)
	usage := store.UsageStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := usage.RecordAcceptance(ctx, []int64{1, 2}, time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	sums, err := usage.UsageSums(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	assert.Empty(t, sums)
}

func TestUsageStore_UsageSumsManyIDs(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	usage := store.UsageStore()

	ids := make([]int64, 1200)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	require.NoError(t, usage.Increment(ctx, ids))

	sums, err := usage.UsageSums(ctx, ids)
	require.NoError(t, err)
	assert.Len(t, sums, 1200)
	assert.Equal(t, 1, sums[1200])
}

func TestUsageStore_TopSegments(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	usage := store.UsageStore()
	now := time.Date(2024, 5, 1, 18, 0, 0, 0, time.Local)

	require.NoError(t, store.GraphStore().SaveSegments(ctx, []domain.Segment{
		{ID: 9, StartNodeID: 1, EndNodeID: 2, LengthM: 10},
	}))
	require.NoError(t, usage.RecordAcceptance(ctx, []int64{3, 1}, now.AddDate(0, 0, -1)))
	require.NoError(t, usage.RecordAcceptance(ctx, []int64{3, 1}, now))
	require.NoError(t, usage.RecordAcceptance(ctx, []int64{2}, now))

	top, err := usage.TopSegments(ctx, 2, now)
	require.NoError(t, err)
	assert.Equal(t, []domain.SegmentUsage{
		{SegmentID: 1, UsageCount: 2, AcceptedToday: 1},
		{SegmentID: 3, UsageCount: 2, AcceptedToday: 1},
	}, top)

	all, err := usage.TopSegments(ctx, 0, now)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, domain.SegmentUsage{SegmentID: 9}, all[3])
}
