package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routy-labs/routy/internal/adapters/driven/storage/memory"
	"github.com/routy-labs/routy/internal/core/domain"
)

func seededGraphStore(t *testing.T) *memory.GraphStore {
	t.Helper()
	store := memory.NewGraphStore(nil)
	ctx := context.Background()

	require.NoError(t, store.SaveNodes(ctx, []domain.Node{
		{ID: nodeH, Name: "Home"},
		{ID: nodeA, Name: "Mill"},
		{ID: nodeB},
		{ID: 9, Name: "Home"},
	}))
	require.NoError(t, store.SaveSegments(ctx, []domain.Segment{
		seg(10, nodeH, nodeA, 500),
		seg(11, nodeA, nodeB, 500),
		seg(12, nodeB, nodeH, 500),
		seg(13, nodeA, nodeH, 500),
		seg(14, nodeB, 77, 500),
	}))
	return store
}

func precalcSettings(minKm, maxKm float64) domain.RoutingSettings {
	s := domain.DefaultRoutingSettings()
	s.PrecalcMinKm = minKm
	s.PrecalcMaxKm = maxKm
	return s
}

func TestPrecalcService_Run(t *testing.T) {
	graph := seededGraphStore(t)
	routes := memory.NewRouteStore()
	ctx := context.Background()

	svc := NewPrecalcService(precalcSettings(1.1, 1.6), graph, routes)

	result, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, nodeH, result.HomeNodeID)
	assert.Equal(t, 4, result.Nodes)
	assert.Equal(t, 5, result.Segments)
	assert.Equal(t, 1, result.SkippedSegments)
	assert.Equal(t, 1, result.Routes)

	stored, err := routes.Query(ctx, domain.RouteQuery{Mode: domain.QueryModeDistance, Target: 1500, Limit: 10})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "1-2-3-1", stored[0].Signature)
}

func TestPrecalcService_RunIsRepeatable(t *testing.T) {
	graph := seededGraphStore(t)
	routes := memory.NewRouteStore()
	ctx := context.Background()
	svc := NewPrecalcService(precalcSettings(1.1, 1.6), graph, routes)

	_, err := svc.Run(ctx)
	require.NoError(t, err)
	_, err = svc.Run(ctx)
	require.NoError(t, err)

	count, err := routes.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPrecalcService_HomeNotFoundLeavesStore(t *testing.T) {
	graph := seededGraphStore(t)
	routes := memory.NewRouteStore()
	ctx := context.Background()
	existing := domain.NewRoute([]int64{5, 6, 5}, []int64{1, 2}, 1000, 10)
	require.NoError(t, routes.Put(ctx, existing))

	settings := precalcSettings(1, 2)
	settings.HomeNodeName = "Nowhere"

	_, err := NewPrecalcService(settings, graph, routes).Run(ctx)
	assert.ErrorIs(t, err, domain.ErrHomeNodeNotFound)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	count, err := routes.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPrecalcService_ReplaceFailure(t *testing.T) {
	graph := seededGraphStore(t)
	routes := &failingRouteStore{err: domain.ErrStoreUnavailable}

	_, err := NewPrecalcService(precalcSettings(1.1, 1.6), graph, routes).Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.True(t, routes.replaced)
}

func TestPrecalcService_Cancelled(t *testing.T) {
	graph := seededGraphStore(t)
	routes := &failingRouteStore{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPrecalcService(precalcSettings(1.1, 1.6), graph, routes).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, routes.replaced)
}
