package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixtures(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	channels := filepath.Join(dir, "channels.geojson")
	points := filepath.Join(dir, "points.geojson")
	require.NoError(t, os.WriteFile(channels, []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {}, "geometry": {"type": "LineString", "coordinates": [[0, 10], [10, 10], [10, 0]]}},
			{"type": "Feature", "properties": {}, "geometry": {"type": "LineString", "coordinates": [[0, -10], [10, -10], [10, 0]]}},
			{"type": "Feature", "properties": {}, "geometry": {"type": "LineString", "coordinates": [[10, 0], [30, 0]]}}
		]
	}`), 0644))
	require.NoError(t, os.WriteFile(points, []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {"well": "up"}, "geometry": {"type": "Point", "coordinates": [5, 10]}},
			{"type": "Feature", "properties": {"well": "down"}, "geometry": {"type": "Point", "coordinates": [20, 0]}}
		]
	}`), 0644))
	return channels, points
}

func TestRunNetworkCSV(t *testing.T) {
	channels, points := writeFixtures(t)
	output := filepath.Join(filepath.Dir(channels), "net.csv")

	opts := networkOpts{
		points:       points,
		channels:     channels,
		output:       output,
		format:       "csv",
		pointsField:  "well",
		snapDistance: 5,
		tolerance:    0.001,
		direction:    "downstream",
		branchPolicy: "strict",
		workers:      2,
	}
	require.NoError(t, runNetwork(context.Background(), &opts))

	for _, suffix := range []string{"_nodes.csv", "_edges.csv", "_diagnostics.csv"} {
		_, err := os.Stat(filepath.Join(filepath.Dir(channels), "net"+suffix))
		assert.NoError(t, err, "file net%s must exist", suffix)
	}
}

func TestRunNetworkText(t *testing.T) {
	channels, points := writeFixtures(t)
	output := filepath.Join(filepath.Dir(channels), "net.txt")

	opts := networkOpts{
		points:       points,
		channels:     channels,
		output:       output,
		format:       "text",
		pointsField:  "well",
		snapDistance: 5,
		tolerance:    0.001,
		direction:    "downstream",
		branchPolicy: "strict",
		workers:      2,
	}
	require.NoError(t, runNetwork(context.Background(), &opts))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "down -> outlet_3", lines[0])
	assert.Equal(t, "up -> down", lines[1])
}

func TestRunNetworkGeoJSONWithSnapLines(t *testing.T) {
	channels, points := writeFixtures(t)
	dir := filepath.Dir(channels)

	opts := networkOpts{
		points:       points,
		channels:     channels,
		output:       filepath.Join(dir, "net"),
		format:       "geojson",
		pointsField:  "well",
		snapDistance: 5,
		tolerance:    0.001,
		direction:    "downstream",
		branchPolicy: "strict",
		workers:      2,
		snapLines:    filepath.Join(dir, "snaps.geojson"),
	}
	require.NoError(t, runNetwork(context.Background(), &opts))

	for _, fname := range []string{"net_nodes.geojson", "net_edges.geojson", "snaps.geojson"} {
		data, err := os.ReadFile(filepath.Join(dir, fname))
		require.NoError(t, err, "file %s must exist", fname)
		assert.Contains(t, string(data), "FeatureCollection")
	}
}

func TestRunNetworkUnknownFormat(t *testing.T) {
	channels, points := writeFixtures(t)
	opts := networkOpts{
		points:       points,
		channels:     channels,
		output:       "out",
		format:       "xml",
		snapDistance: 5,
		direction:    "downstream",
		branchPolicy: "strict",
		workers:      1,
	}
	assert.Error(t, runNetwork(context.Background(), &opts))
}
