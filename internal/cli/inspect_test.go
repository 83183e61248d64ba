package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layer.geojson")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {"well": "alpha"}, "geometry": {"type": "Point", "coordinates": [1, 2]}},
			{"type": "Feature", "properties": {"name": "creek"}, "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]}}
		]
	}`), 0644))

	var out bytes.Buffer
	require.NoError(t, runInspect(path, &out))

	report := out.String()
	assert.Contains(t, report, "Features: 2")
	assert.Contains(t, report, "Point: 1")
	assert.Contains(t, report, "LineString: 1")
	assert.Contains(t, report, "well")
	assert.Contains(t, report, "name")
}

func TestRunInspectMissingFile(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, runInspect(filepath.Join(t.TempDir(), "absent.geojson"), &out))
}
