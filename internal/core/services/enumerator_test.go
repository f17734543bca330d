package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routy-labs/routy/internal/core/domain"
)

const (
	nodeH int64 = 1
	nodeA int64 = 2
	nodeB int64 = 3
)

// triangleGraph is H→A→B→H with an extra A→H return.
func triangleGraph() *Graph {
	return BuildGraph(nodes(nodeH, nodeA, nodeB), []domain.Segment{
		seg(10, nodeH, nodeA, 500),
		seg(11, nodeA, nodeB, 500),
		seg(12, nodeB, nodeH, 500),
		seg(13, nodeA, nodeH, 500),
	})
}

// gridGraph is a bidirectional 2x3 grid with one diagonal.
//
//	1 - 2 - 3
//	|   | / |
//	4 - 5 - 6
func gridGraph() *Graph {
	pairs := [][2]int64{{1, 2}, {2, 3}, {1, 4}, {2, 5}, {3, 6}, {4, 5}, {5, 6}, {3, 5}}
	var segments []domain.Segment
	id := int64(1)
	for _, p := range pairs {
		segments = append(segments, seg(id, p[0], p[1], 300), seg(id+1, p[1], p[0], 300))
		id += 2
	}
	return BuildGraph(nodes(1, 2, 3, 4, 5, 6), segments)
}

func signatures(routes []domain.Route) []string {
	sigs := make([]string, len(routes))
	for i, r := range routes {
		sigs[i] = r.Signature
	}
	return sigs
}

func TestEnumerate_TriangleScenario(t *testing.T) {
	routes, err := NewRouteEnumerator(triangleGraph()).Enumerate(context.Background(), 1100, 1600, nodeH)
	require.NoError(t, err)

	require.Len(t, routes, 1)
	assert.Equal(t, []int64{nodeH, nodeA, nodeB, nodeH}, routes[0].NodeIDs)
	assert.Equal(t, []int64{10, 11, 12}, routes[0].SegmentIDs)
	assert.Equal(t, 1500, routes[0].LengthM)
	assert.Equal(t, 15, routes[0].DurationMin)
	assert.Equal(t, "1-2-3-1", routes[0].Signature)
}

func TestEnumerate_NoImmediateReversalBackHome(t *testing.T) {
	// H→A→H is 1000m and in bounds, but returns along the step just taken.
	routes, err := NewRouteEnumerator(triangleGraph()).Enumerate(context.Background(), 1000, 1600, nodeH)
	require.NoError(t, err)

	assert.Equal(t, []string{"1-2-3-1"}, signatures(routes))
}

func TestEnumerate_ContinuesThroughHomeWhenTooShort(t *testing.T) {
	g := BuildGraph(nodes(1, 2, 3, 4, 5), []domain.Segment{
		seg(1, 1, 2, 100),
		seg(2, 2, 3, 100),
		seg(3, 3, 1, 100),
		seg(4, 1, 4, 100),
		seg(5, 4, 5, 100),
		seg(6, 5, 1, 100),
	})

	routes, err := NewRouteEnumerator(g).Enumerate(context.Background(), 500, 700, 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"1-2-3-1-4-5-1", "1-4-5-1-2-3-1"}, signatures(routes))
	for _, r := range routes {
		assert.Equal(t, 600, r.LengthM)
	}
}

func TestEnumerate_StopsAtFirstInBoundsReturn(t *testing.T) {
	g := BuildGraph(nodes(1, 2, 3, 4, 5), []domain.Segment{
		seg(1, 1, 2, 100),
		seg(2, 2, 3, 100),
		seg(3, 3, 1, 100),
		seg(4, 1, 4, 100),
		seg(5, 4, 5, 100),
		seg(6, 5, 1, 100),
	})

	routes, err := NewRouteEnumerator(g).Enumerate(context.Background(), 300, 700, 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"1-2-3-1", "1-4-5-1"}, signatures(routes))
}

func TestEnumerate_Properties(t *testing.T) {
	const minLen, maxLen = 900, 3000
	routes, err := NewRouteEnumerator(gridGraph()).Enumerate(context.Background(), minLen, maxLen, 1)
	require.NoError(t, err)
	require.NotEmpty(t, routes)

	seen := make(map[string]struct{})
	for _, r := range routes {
		require.NoError(t, r.Validate())
		assert.Equal(t, int64(1), r.NodeIDs[0])
		assert.Equal(t, int64(1), r.NodeIDs[len(r.NodeIDs)-1])
		assert.GreaterOrEqual(t, r.LengthM, minLen)
		assert.LessOrEqual(t, r.LengthM, maxLen)
		assert.Equal(t, 300*len(r.SegmentIDs), r.LengthM)

		used := make(map[domain.DirectedEdge]struct{})
		for i := 0; i+1 < len(r.NodeIDs); i++ {
			e := domain.DirectedEdge{From: r.NodeIDs[i], To: r.NodeIDs[i+1]}
			_, dup := used[e]
			assert.False(t, dup, "route %s reuses %v", r.Signature, e)
			used[e] = struct{}{}

			if i > 0 {
				assert.NotEqual(t, r.NodeIDs[i-1], r.NodeIDs[i+1], "route %s reverses at step %d", r.Signature, i)
			}
		}

		_, dup := seen[r.Signature]
		assert.False(t, dup, "duplicate route %s", r.Signature)
		seen[r.Signature] = struct{}{}
	}
}

func TestEnumerate_Deterministic(t *testing.T) {
	first, err := NewRouteEnumerator(gridGraph()).Enumerate(context.Background(), 900, 2400, 5)
	require.NoError(t, err)
	second, err := NewRouteEnumerator(gridGraph()).Enumerate(context.Background(), 900, 2400, 5)
	require.NoError(t, err)

	assert.Equal(t, signatures(first), signatures(second))
}

func TestEnumerate_RoutesDoNotAliasBuffers(t *testing.T) {
	routes, err := NewRouteEnumerator(gridGraph()).Enumerate(context.Background(), 1200, 1200, 1)
	require.NoError(t, err)
	require.Greater(t, len(routes), 1)

	for _, r := range routes {
		assert.Equal(t, domain.ChainSignature(r.NodeIDs), r.Signature)
	}
}

func TestEnumerate_InvalidBounds(t *testing.T) {
	e := NewRouteEnumerator(triangleGraph())

	_, err := e.Enumerate(context.Background(), -1, 100, nodeH)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.Enumerate(context.Background(), 200, 100, nodeH)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEnumerate_UnknownHome(t *testing.T) {
	_, err := NewRouteEnumerator(triangleGraph()).Enumerate(context.Background(), 0, 100, 42)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestEnumerate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRouteEnumerator(gridGraph()).Enumerate(ctx, 0, 10000, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEnumerate_IsolatedHome(t *testing.T) {
	g := BuildGraph(nodes(1, 2), []domain.Segment{seg(1, 2, 2, 100)})

	routes, err := NewRouteEnumerator(g).Enumerate(context.Background(), 0, 1000, 1)
	require.NoError(t, err)
	assert.Empty(t, routes)
}
