package streamnet

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/pkg/errors"
)

// OsmConfiguration allows to filter ways by certain tags from OSM data
type OsmConfiguration struct {
	EntityName string // e.g. 'waterway'
	Tags       []string
}

// DefaultWaterwayConfiguration covers OSM waterway values representing physical flow channels
func DefaultWaterwayConfiguration() *OsmConfiguration {
	return &OsmConfiguration{
		EntityName: "waterway",
		Tags:       []string{"river", "stream", "canal", "drain", "ditch", "tidal_channel"},
	}
}

// CheckTag checks if incoming tag is represented in configuration
func (cfg *OsmConfiguration) CheckTag(tag string) bool {
	for i := range cfg.Tags {
		if cfg.Tags[i] == tag {
			return true
		}
	}
	return false
}

// waterwayNode carries scanned node coordinate and how many matched ways use it
type waterwayNode struct {
	point    orb.Point
	useCount int
}

// ImportChannelsFromOSMFile imports channel segments from file of PBF-format (in OSM terms).
// Ways matching the configuration are split at nodes shared between ways so
// confluences become segment endpoints (junction detection connects segments
// only at endpoints). Coordinates stay in degrees: callers working in meters
// should reproject before snapping.
/*
	File should have PBF (Protocolbuffer Binary Format) extension according to https://github.com/paulmach/osm
*/
func ImportChannelsFromOSMFile(fileName string, cfg *OsmConfiguration, tolerance float64, verbose bool) ([]*ChannelSegment, []Diagnostic, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, nil, errors.Wrap(err, "File open")
	}
	defer f.Close()

	scannerWays := osmpbf.New(context.Background(), f, 4)
	defer scannerWays.Close()

	type waterwayWay struct {
		id     osm.WayID
		nodes  []osm.NodeID
		tagMap map[string]string
	}
	ways := []waterwayWay{}
	nodes := make(map[osm.NodeID]waterwayNode)
	nodesSeen := make(map[osm.NodeID]struct{})

	if verbose {
		fmt.Printf("Scanning ways...")
	}
	st := time.Now()
	for scannerWays.Scan() {
		obj := scannerWays.Object()
		if obj.ObjectID().Type() != "way" {
			continue
		}
		way := obj.(*osm.Way)
		tagMap := way.TagMap()
		tag, ok := tagMap[cfg.EntityName]
		if !ok {
			continue
		}
		if !cfg.CheckTag(tag) {
			continue
		}
		prepared := waterwayWay{
			id:     way.ID,
			nodes:  make([]osm.NodeID, 0, len(way.Nodes)),
			tagMap: tagMap,
		}
		for _, node := range way.Nodes {
			prepared.nodes = append(prepared.nodes, node.ID)
			nodesSeen[node.ID] = struct{}{}
		}
		ways = append(ways, prepared)
	}
	if scannerWays.Err() != nil {
		return nil, nil, errors.Wrap(scannerWays.Err(), "Scanner error on Ways")
	}
	if verbose {
		fmt.Printf("Done in %v\n\tWays: %d\n", time.Since(st), len(ways))
	}

	// Seek file to start
	_, err = f.Seek(0, io.SeekStart)
	if err != nil {
		return nil, nil, errors.Wrap(err, "Can't repeat seeking")
	}
	scannerNodes := osmpbf.New(context.Background(), f, 4)
	defer scannerNodes.Close()

	if verbose {
		fmt.Printf("Scanning nodes...")
	}
	st = time.Now()
	for scannerNodes.Scan() {
		obj := scannerNodes.Object()
		if obj.ObjectID().Type() != "node" {
			continue
		}
		node := obj.(*osm.Node)
		if _, ok := nodesSeen[node.ID]; ok {
			delete(nodesSeen, node.ID)
			nodes[node.ID] = waterwayNode{point: orb.Point{node.Lon, node.Lat}}
		}
	}
	if scannerNodes.Err() != nil {
		return nil, nil, errors.Wrap(scannerNodes.Err(), "Scanner error on Nodes")
	}
	if verbose {
		fmt.Printf("Done in %v\n\tNodes: %d\n", time.Since(st), len(nodes))
	}

	for _, way := range ways {
		for i, nodeID := range way.nodes {
			node, ok := nodes[nodeID]
			if !ok {
				return nil, nil, fmt.Errorf("Missing node with id: %d", nodeID)
			}
			if i == 0 || i == len(way.nodes)-1 {
				node.useCount += 2
			} else {
				node.useCount++
			}
			nodes[nodeID] = node
		}
	}

	if verbose {
		fmt.Printf("Preparing segments...")
	}
	st = time.Now()
	segments := []*ChannelSegment{}
	diagnostics := []Diagnostic{}
	nextID := SegmentID(0)
	for _, way := range ways {
		geometry := orb.LineString{}
		for i, nodeID := range way.nodes {
			node := nodes[nodeID]
			geometry = append(geometry, node.point)
			if i == 0 {
				continue
			}
			// Interior nodes shared with another way end the current segment
			// so the shared location becomes a junction endpoint
			if node.useCount > 1 || i == len(way.nodes)-1 {
				id := nextID
				nextID++
				segment, err := NewChannelSegment(id, geometry, way.tagMap, tolerance)
				if err != nil {
					diagnostics = append(diagnostics, Diagnostic{
						Kind:      DIAGNOSTIC_INVALID_GEOMETRY,
						SegmentID: id,
						Message:   fmt.Sprintf("way '%d': %s", way.id, err.Error()),
					})
				} else {
					segments = append(segments, segment)
				}
				geometry = orb.LineString{node.point}
			}
		}
	}
	if verbose {
		fmt.Printf("Done in %v\n\tSegments: %d\n", time.Since(st), len(segments))
	}
	return segments, diagnostics, nil
}
