package streamnet

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// propertiesToTags flattens GeoJSON feature properties into string attributes
func propertiesToTags(properties map[string]interface{}) map[string]string {
	tagMap := make(map[string]string, len(properties))
	for k, v := range properties {
		tagMap[k] = fmt.Sprintf("%v", v)
	}
	return tagMap
}

// lineStringToOrb converts raw GeoJSON coordinates into orb representation
func lineStringToOrb(coordinates [][]float64) orb.LineString {
	line := make(orb.LineString, 0, len(coordinates))
	for _, coordinate := range coordinates {
		if len(coordinate) < 2 {
			continue
		}
		line = append(line, orb.Point{coordinate[0], coordinate[1]})
	}
	return line
}

// LoadChannelsGeoJSON reads channel segments from a GeoJSON feature collection.
// Each LineString becomes one segment; every part of a MultiLineString becomes
// its own segment. Segment ids follow feature order so identical files always
// produce identical ids. Degenerate features are skipped and reported.
func LoadChannelsGeoJSON(data []byte, tolerance float64) ([]*ChannelSegment, []Diagnostic, error) {
	collection, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, nil, errors.Wrap(err, "Can't parse channels layer")
	}
	segments := []*ChannelSegment{}
	diagnostics := []Diagnostic{}
	nextID := SegmentID(0)
	appendSegment := func(coordinates [][]float64, tagMap map[string]string) {
		id := nextID
		nextID++
		segment, err := NewChannelSegment(id, lineStringToOrb(coordinates), tagMap, tolerance)
		if err != nil {
			diagnostics = append(diagnostics, Diagnostic{
				Kind:      DIAGNOSTIC_INVALID_GEOMETRY,
				SegmentID: id,
				Message:   err.Error(),
			})
			return
		}
		segments = append(segments, segment)
	}
	for _, feature := range collection.Features {
		if feature.Geometry == nil {
			diagnostics = append(diagnostics, Diagnostic{
				Kind:      DIAGNOSTIC_INVALID_GEOMETRY,
				SegmentID: nextID,
				Message:   "feature without geometry",
			})
			nextID++
			continue
		}
		tagMap := propertiesToTags(feature.Properties)
		switch feature.Geometry.Type {
		case geojson.GeometryLineString:
			appendSegment(feature.Geometry.LineString, tagMap)
		case geojson.GeometryMultiLineString:
			for _, part := range feature.Geometry.MultiLineString {
				appendSegment(part, tagMap)
			}
		default:
			diagnostics = append(diagnostics, Diagnostic{
				Kind:      DIAGNOSTIC_INVALID_GEOMETRY,
				SegmentID: nextID,
				Message:   fmt.Sprintf("unsupported geometry type '%s' in channels layer", feature.Geometry.Type),
			})
			nextID++
		}
	}
	return segments, diagnostics, nil
}

// LoadPointsGeoJSON reads points of interest from a GeoJSON feature collection.
// Point ids come from idProperty when given (falling back to the feature
// position for features missing it), otherwise from the feature position.
func LoadPointsGeoJSON(data []byte, idProperty string) ([]*PointOfInterest, []Diagnostic, error) {
	collection, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, nil, errors.Wrap(err, "Can't parse points layer")
	}
	points := []*PointOfInterest{}
	diagnostics := []Diagnostic{}
	for i, feature := range collection.Features {
		id := fmt.Sprintf("%d", i)
		if idProperty != "" {
			if value, ok := feature.Properties[idProperty]; ok {
				id = fmt.Sprintf("%v", value)
			}
		}
		if feature.Geometry == nil || feature.Geometry.Type != geojson.GeometryPoint || len(feature.Geometry.Point) < 2 {
			diagnostics = append(diagnostics, Diagnostic{
				Kind:      DIAGNOSTIC_INVALID_GEOMETRY,
				PointID:   id,
				SegmentID: -1,
				Message:   "feature is not a point",
			})
			continue
		}
		points = append(points, NewPointOfInterest(
			id,
			orb.Point{feature.Geometry.Point[0], feature.Geometry.Point[1]},
			propertiesToTags(feature.Properties),
		))
	}
	return points, diagnostics, nil
}
