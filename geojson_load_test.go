package streamnet

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var channelsJSON = []byte(`{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"properties": {"name": "upper"},
			"geometry": {"type": "LineString", "coordinates": [[0, 10], [10, 10], [10, 0]]}
		},
		{
			"type": "Feature",
			"properties": {"name": "braided"},
			"geometry": {"type": "MultiLineString", "coordinates": [
				[[0, -10], [10, 0]],
				[[10, 0], [30, 0]]
			]}
		},
		{
			"type": "Feature",
			"properties": {"name": "broken"},
			"geometry": {"type": "LineString", "coordinates": [[5, 5]]}
		},
		{
			"type": "Feature",
			"properties": {"name": "odd"},
			"geometry": {"type": "Point", "coordinates": [1, 1]}
		}
	]
}`)

func TestLoadChannelsGeoJSON(t *testing.T) {
	segments, diagnostics, err := LoadChannelsGeoJSON(channelsJSON, 0)
	require.NoError(t, err)

	require.Len(t, segments, 3)
	assert.Equal(t, SegmentID(0), segments[0].ID)
	assert.Equal(t, "upper", segments[0].Tags()["name"])
	assert.Equal(t, orb.Point{0, 10}, segments[0].SourcePoint())

	// MultiLineString parts become separate segments sharing attributes
	assert.Equal(t, SegmentID(1), segments[1].ID)
	assert.Equal(t, SegmentID(2), segments[2].ID)
	assert.Equal(t, "braided", segments[1].Tags()["name"])
	assert.Equal(t, "braided", segments[2].Tags()["name"])

	require.Len(t, diagnostics, 2)
	assert.Equal(t, DIAGNOSTIC_INVALID_GEOMETRY, diagnostics[0].Kind)
	assert.Equal(t, SegmentID(3), diagnostics[0].SegmentID)
	assert.Equal(t, DIAGNOSTIC_INVALID_GEOMETRY, diagnostics[1].Kind)
}

var pointsJSON = []byte(`{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"properties": {"well": "alpha", "depth": 12},
			"geometry": {"type": "Point", "coordinates": [5, 10]}
		},
		{
			"type": "Feature",
			"properties": {},
			"geometry": {"type": "Point", "coordinates": [20, 0]}
		},
		{
			"type": "Feature",
			"properties": {"well": "gamma"},
			"geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]}
		}
	]
}`)

func TestLoadPointsGeoJSON(t *testing.T) {
	points, diagnostics, err := LoadPointsGeoJSON(pointsJSON, "well")
	require.NoError(t, err)

	require.Len(t, points, 2)
	assert.Equal(t, "alpha", points[0].ID)
	assert.Equal(t, orb.Point{5, 10}, points[0].Geom)
	assert.Equal(t, "12", points[0].Tags()["depth"])
	// Feature without the id property falls back to its position
	assert.Equal(t, "1", points[1].ID)

	require.Len(t, diagnostics, 1)
	assert.Equal(t, DIAGNOSTIC_INVALID_GEOMETRY, diagnostics[0].Kind)
	assert.Equal(t, "gamma", diagnostics[0].PointID)
}

func TestLoadPointsGeoJSONPositionalIDs(t *testing.T) {
	points, _, err := LoadPointsGeoJSON(pointsJSON, "")
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "0", points[0].ID)
	assert.Equal(t, "1", points[1].ID)
}

func TestLoadChannelsGeoJSONGarbage(t *testing.T) {
	_, _, err := LoadChannelsGeoJSON([]byte("not json"), 0)
	assert.Error(t, err)
}
