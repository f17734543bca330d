package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routy-labs/routy/internal/core/domain"
)

func TestParseGraphFile(t *testing.T) {
	data := []byte(`{
		"nodes": [{"id": 1, "name": "Home", "lat": 52.37, "lon": 4.89}, {"id": 2, "name": "Park"}],
		"segments": [{"id": 10, "name": "Home - Park", "start": 1, "end": 2, "length_m": 450, "duration_min": 6}]
	}`)

	nodes, segments, err := parseGraphFile(data)
	require.NoError(t, err)

	require.Len(t, nodes, 2)
	assert.Equal(t, domain.Node{ID: 1, Name: "Home", Latitude: 52.37, Longitude: 4.89}, nodes[0])
	require.Len(t, segments, 1)
	assert.Equal(t, domain.Segment{
		ID: 10, Name: "Home - Park", StartNodeID: 1, EndNodeID: 2, LengthM: 450, DurationMin: 6,
	}, segments[0])
}

func TestParseGraphFile_Invalid(t *testing.T) {
	_, _, err := parseGraphFile([]byte(`{"nodes": [`))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestGraphImportCmd(t *testing.T) {
	env := setupTestServices(t)

	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"nodes": [{"id": 4, "name": "Bridge"}],
		"segments": [{"id": 106, "start": 2, "end": 4, "length_m": 300, "duration_min": 4}]
	}`), 0o600))

	out, err := runCLI(t, "graph", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 nodes")

	out, err = runCLI(t, "graph", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Nodes:    4")
	assert.Contains(t, out, "Segments: 7")

	names, err := env.graph.NodeNames(t.Context(), []int64{4})
	require.NoError(t, err)
	assert.Equal(t, "Bridge", names[4])
}

func TestGraphImportCmd_UnknownNode(t *testing.T) {
	setupTestServices(t)

	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"segments": [{"id": 200, "start": 1, "end": 99, "length_m": 300, "duration_min": 4}]
	}`), 0o600))

	_, err := runCLI(t, "graph", "import", path)
	assert.True(t, errors.Is(err, domain.ErrGraphIntegrity))
}

func TestGraphImportCmd_MissingFile(t *testing.T) {
	setupTestServices(t)

	_, err := runCLI(t, "graph", "import", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
