package streamnet

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/pkg/errors"
)

// joinTags renders feature attributes as deterministic "key=value" list
func joinTags(tagMap map[string]string) string {
	keys := make([]string, 0, len(tagMap))
	for k := range tagMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, tagMap[k])
	}
	return strings.Join(parts, ",")
}

// joinSegmentIDs renders traversed segment ids as comma separated list
func joinSegmentIDs(ids []SegmentID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ",")
}

// edgeGeometry returns edge geometry for export: the traversed channel path,
// or a straight source->target line when simplified output was requested
func edgeGeometry(edge NetworkEdge, simplified bool) orb.LineString {
	if !simplified || len(edge.Geom) < 2 {
		return edge.Geom
	}
	return orb.LineString{edge.Geom[0], edge.Geom[len(edge.Geom)-1]}
}

// ExportToCSV writes assembled network into CSV files: if file name is
// 'net.csv' then 'net_nodes.csv', 'net_edges.csv' and 'net_diagnostics.csv'
// will be produced.
func (net *NetworkGraph) ExportToCSV(fname string, simplified bool) error {
	fnameParts := strings.Split(fname, ".csv")
	fnameNodes := fnameParts[0] + "_nodes.csv"
	fnameEdges := fnameParts[0] + "_edges.csv"
	fnameDiagnostics := fnameParts[0] + "_diagnostics.csv"

	err := net.exportNodesToCSV(fnameNodes)
	if err != nil {
		return errors.Wrap(err, "Can't export nodes")
	}

	err = net.exportEdgesToCSV(fnameEdges, simplified)
	if err != nil {
		return errors.Wrap(err, "Can't export edges")
	}

	err = net.exportDiagnosticsToCSV(fnameDiagnostics)
	if err != nil {
		return errors.Wrap(err, "Can't export diagnostics")
	}

	return nil
}

func (net *NetworkGraph) exportNodesToCSV(fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"id", "snap_segment", "snap_fraction", "snap_offset", "upstream_count", "order", "outlet_distance", "is_outlet", "unsnapped", "tags", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for i := range net.Nodes {
		node := &net.Nodes[i]
		err = writer.Write([]string{
			node.ID,
			fmt.Sprintf("%d", node.SnapSegmentID),
			fmt.Sprintf("%f", node.SnapFraction),
			fmt.Sprintf("%f", node.SnapOffset),
			fmt.Sprintf("%d", node.UpstreamCount),
			fmt.Sprintf("%d", node.Order),
			fmt.Sprintf("%f", node.OutletDistance),
			fmt.Sprintf("%t", node.IsOutlet),
			fmt.Sprintf("%t", node.Unsnapped),
			joinTags(node.Tags()),
			wkt.MarshalString(node.Geom),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write node")
		}
	}
	return nil
}

func (net *NetworkGraph) exportEdgesToCSV(fname string, simplified bool) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"source", "target", "distance", "segments", "to_outlet", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for _, edge := range net.Edges {
		err = writer.Write([]string{
			edge.SourceID,
			edge.TargetID,
			fmt.Sprintf("%f", edge.DistanceMeters),
			joinSegmentIDs(edge.SegmentIDs),
			fmt.Sprintf("%t", edge.ToOutlet),
			wkt.MarshalString(edgeGeometry(edge, simplified)),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write edge")
		}
	}
	return nil
}

func (net *NetworkGraph) exportDiagnosticsToCSV(fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"kind", "point_id", "segment_id", "message"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for _, diagnostic := range net.Diagnostics {
		err = writer.Write([]string{
			diagnostic.Kind.String(),
			diagnostic.PointID,
			fmt.Sprintf("%d", diagnostic.SegmentID),
			diagnostic.Message,
		})
		if err != nil {
			return errors.Wrap(err, "Can't write diagnostic")
		}
	}
	return nil
}

// ExportStreamOrdersCSV writes channel segments with their stream order,
// orders aligned with graph.Segments()
func ExportStreamOrdersCSV(graph *ChannelGraph, orders []int, fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"segment_id", "order", "length_meters", "tags", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for i, segment := range graph.Segments() {
		err = writer.Write([]string{
			fmt.Sprintf("%d", segment.ID),
			fmt.Sprintf("%d", orders[i]),
			fmt.Sprintf("%f", segment.Length()),
			joinTags(segment.Tags()),
			wkt.MarshalString(segment.Geometry()),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write segment order")
		}
	}
	return nil
}
