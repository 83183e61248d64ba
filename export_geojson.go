package streamnet

import (
	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// lineStringToRaw converts orb line into raw GeoJSON coordinates
func lineStringToRaw(line orb.LineString) [][]float64 {
	coordinates := make([][]float64, len(line))
	for i, pt := range line {
		coordinates[i] = []float64{pt[0], pt[1]}
	}
	return coordinates
}

// ExportNodesGeoJSON renders network nodes (snapped points of interest and
// outlet sentinels) as a GeoJSON feature collection with computed attributes
func (net *NetworkGraph) ExportNodesGeoJSON() ([]byte, error) {
	collection := geojson.NewFeatureCollection()
	for i := range net.Nodes {
		node := &net.Nodes[i]
		feature := geojson.NewPointFeature([]float64{node.Geom[0], node.Geom[1]})
		feature.SetProperty("id", node.ID)
		feature.SetProperty("snap_segment", int64(node.SnapSegmentID))
		feature.SetProperty("snap_fraction", node.SnapFraction)
		feature.SetProperty("snap_offset", node.SnapOffset)
		feature.SetProperty("upstream_count", node.UpstreamCount)
		feature.SetProperty("order", node.Order)
		feature.SetProperty("outlet_distance", node.OutletDistance)
		feature.SetProperty("is_outlet", node.IsOutlet)
		feature.SetProperty("unsnapped", node.Unsnapped)
		for k, v := range node.Tags() {
			feature.SetProperty(k, v)
		}
		collection.AddFeature(feature)
	}
	data, err := collection.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "Can't marshal nodes")
	}
	return data, nil
}

// ExportEdgesGeoJSON renders network edges as a GeoJSON feature collection.
// Edge geometry follows the traversed channel path unless simplified output
// (straight source->target lines) was requested
func (net *NetworkGraph) ExportEdgesGeoJSON(simplified bool) ([]byte, error) {
	collection := geojson.NewFeatureCollection()
	for _, edge := range net.Edges {
		geom := edgeGeometry(edge, simplified)
		feature := geojson.NewLineStringFeature(lineStringToRaw(geom))
		feature.SetProperty("source", edge.SourceID)
		feature.SetProperty("target", edge.TargetID)
		feature.SetProperty("distance", edge.DistanceMeters)
		feature.SetProperty("segments", joinSegmentIDs(edge.SegmentIDs))
		feature.SetProperty("to_outlet", edge.ToOutlet)
		collection.AddFeature(feature)
	}
	data, err := collection.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "Can't marshal edges")
	}
	return data, nil
}

// ExportStreamOrdersGeoJSON renders channel segments with their stream order
// as a GeoJSON feature collection, orders aligned with graph.Segments()
func ExportStreamOrdersGeoJSON(graph *ChannelGraph, orders []int) ([]byte, error) {
	collection := geojson.NewFeatureCollection()
	for i, segment := range graph.Segments() {
		feature := geojson.NewLineStringFeature(lineStringToRaw(segment.Geometry()))
		feature.SetProperty("segment_id", int64(segment.ID))
		feature.SetProperty("order", orders[i])
		feature.SetProperty("length_meters", segment.Length())
		for k, v := range segment.Tags() {
			feature.SetProperty(k, v)
		}
		collection.AddFeature(feature)
	}
	data, err := collection.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "Can't marshal stream orders")
	}
	return data, nil
}

// ExportSnappedPointsGeoJSON renders points of interest at their snapped
// locations (original position when snapping failed) with snap attributes
func ExportSnappedPointsGeoJSON(points []*PointOfInterest) ([]byte, error) {
	collection := geojson.NewFeatureCollection()
	for _, poi := range points {
		location := poi.Geom
		segmentID := SegmentID(-1)
		fraction, offset := 0.0, 0.0
		if poi.Snapped() {
			location = poi.Snap.Point
			segmentID = poi.Snap.SegmentID
			fraction = poi.Snap.Fraction
			offset = poi.Snap.Offset
		}
		feature := geojson.NewPointFeature([]float64{location[0], location[1]})
		feature.SetProperty("id", poi.ID)
		feature.SetProperty("snapped", poi.Snapped())
		feature.SetProperty("snap_segment", int64(segmentID))
		feature.SetProperty("snap_fraction", fraction)
		feature.SetProperty("snap_offset", offset)
		for k, v := range poi.Tags() {
			feature.SetProperty(k, v)
		}
		collection.AddFeature(feature)
	}
	data, err := collection.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "Can't marshal snapped points")
	}
	return data, nil
}

// ExportSnapLinesGeoJSON renders the movement every point of interest made
// while snapping as a line layer; points which failed to snap get a
// zero-length line at their original position flagged with error=yes
func ExportSnapLinesGeoJSON(points []*PointOfInterest) ([]byte, error) {
	collection := geojson.NewFeatureCollection()
	for _, poi := range points {
		end := poi.Geom
		snapError := "yes"
		if poi.Snapped() {
			end = poi.Snap.Point
			snapError = "no"
		}
		feature := geojson.NewLineStringFeature([][]float64{
			{poi.Geom[0], poi.Geom[1]},
			{end[0], end[1]},
		})
		feature.SetProperty("name", poi.ID)
		feature.SetProperty("error", snapError)
		collection.AddFeature(feature)
	}
	data, err := collection.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "Can't marshal snap lines")
	}
	return data, nil
}
