package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routy-labs/routy/internal/core/domain"
)

func TestPrecalcCmd(t *testing.T) {
	env := setupTestServices(t)

	out, err := runCLI(t, "precalc")
	require.NoError(t, err)

	assert.Contains(t, out, "Home node: 1")
	assert.Contains(t, out, "Graph: 3 nodes, 6 segments")
	assert.Contains(t, out, "Stored 2 routes")

	count, err := env.routes.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPrecalcCmd_HomeMissing(t *testing.T) {
	env := setupTestServices(t)
	require.NoError(t, env.settings.Set("home.name", "Nowhere"))
	routing, err := env.settings.Routing()
	require.NoError(t, err)
	SetServices(&Services{Precalc: newTestPrecalc(env, routing)})

	_, err = runCLI(t, "precalc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

func TestPrecalcCmd_NotConfigured(t *testing.T) {
	SetServices(nil)

	_, err := runCLI(t, "precalc")
	assert.EqualError(t, err, "precalculation not configured")
}
