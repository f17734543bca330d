package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/routy-labs/routy/internal/adapters/driven/storage/memory"
	"github.com/routy-labs/routy/internal/adapters/driven/validation"
	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driving"
	"github.com/routy-labs/routy/internal/core/services"
)

// testEnv exposes the stores behind the services installed for a test.
type testEnv struct {
	settings *services.SettingsService
	graph    *memory.GraphStore
	routes   *memory.RouteStore
	usage    *memory.UsageStore
	sessions *memory.SessionStore
}

// setupTestServices installs memory-backed services over a triangle
// Home(1) - Mill(2) - Ford(3) with segments in both directions, each
// 1500 m and 20 min. Precalculation yields two 4.5 km routes that share
// no segment.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	env := &testEnv{
		settings: services.NewSettingsService(memory.NewConfigStore(), validation.NewSettingsValidator()),
		routes:   memory.NewRouteStore(),
		usage:    memory.NewUsageStore(),
	}
	env.graph = memory.NewGraphStore(env.usage)

	require.NoError(t, env.graph.SaveNodes(ctx, []domain.Node{
		{ID: 1, Name: "Home"},
		{ID: 2, Name: "Mill"},
		{ID: 3, Name: "Ford"},
	}))
	require.NoError(t, env.graph.SaveSegments(ctx, []domain.Segment{
		testSegment(100, 1, 2),
		testSegment(101, 2, 3),
		testSegment(102, 3, 1),
		testSegment(103, 1, 3),
		testSegment(104, 3, 2),
		testSegment(105, 2, 1),
	}))

	routing, err := env.settings.Routing()
	require.NoError(t, err)
	env.sessions = memory.NewSessionStore(routing.SessionTimeout)

	build := func(r domain.RoutingSettings) driving.Precalculator {
		return newTestPrecalc(env, r)
	}
	selector := services.NewDiversitySelector(routing, env.routes, env.usage, env.sessions,
		services.WithNodeNames(env.graph))

	SetServices(&Services{
		Settings:        env.settings,
		Precalc:         build(routing),
		Recommender:     selector,
		LiveRecommender: selector,
		Graph:           services.NewGraphImportService(env.graph, env.routes),
		Usage:           services.NewUsageReport(env.usage),
		NewPrecalc:      build,
	})

	origTerminal := isTerminal
	isTerminal = func() bool { return false }
	t.Cleanup(func() {
		isTerminal = origTerminal
		SetServices(nil)
	})
	return env
}

// precalc fills the route store for env.
func (env *testEnv) precalc(t *testing.T) {
	t.Helper()
	routing, err := env.settings.Routing()
	require.NoError(t, err)
	_, err = newTestPrecalc(env, routing).Run(context.Background())
	require.NoError(t, err)
}

func newTestPrecalc(env *testEnv, r domain.RoutingSettings) driving.Precalculator {
	return services.NewPrecalcService(r, env.graph, env.routes)
}

func testSegment(id, from, to int64) domain.Segment {
	return domain.Segment{ID: id, StartNodeID: from, EndNodeID: to, LengthM: 1500, DurationMin: 20}
}

// runCLI executes the root command with args and returns its output.
// Flag variables are reset first because cobra keeps them between runs.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLIWithInput(t, "", args...)
}

func runCLIWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	routeJSON = false
	usageLimit = 20
	verbose = false

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
