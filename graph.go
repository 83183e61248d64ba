package streamnet

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// ChannelGraph is directed connectivity between channel segments via shared
// endpoints. Segments and junctions live in arenas addressed by integer index;
// successor/predecessor relations are index lists. The graph is built once and
// never mutated afterwards, so any number of traces may read it concurrently.
type ChannelGraph struct {
	segments []*ChannelSegment
	byID     map[SegmentID]int

	sourceJunction []JunctionID
	targetJunction []JunctionID
	junctionPoints []orb.Point

	successors   [][]int
	predecessors [][]int
}

// BuildChannelGraph unifies segment endpoints lying within tolerance into
// junction nodes and records which segments share them. Endpoints are matched
// through a quantization grid of cell size equal to tolerance, so clustering
// does not depend on input order. Segment order inside the graph follows
// ascending segment id regardless of input order.
func BuildChannelGraph(segments []*ChannelSegment, tolerance float64) (*ChannelGraph, error) {
	if len(segments) == 0 {
		return nil, errors.Wrap(ErrEmptyChannels, "can't build channel graph")
	}
	ordered := make([]*ChannelSegment, len(segments))
	copy(ordered, segments)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	graph := &ChannelGraph{
		segments:       ordered,
		byID:           make(map[SegmentID]int, len(ordered)),
		sourceJunction: make([]JunctionID, len(ordered)),
		targetJunction: make([]JunctionID, len(ordered)),
		successors:     make([][]int, len(ordered)),
		predecessors:   make([][]int, len(ordered)),
	}
	for i, segment := range ordered {
		if _, ok := graph.byID[segment.ID]; ok {
			return nil, errors.Wrapf(ErrInvalidGeometry, "duplicate segment id '%d'", segment.ID)
		}
		graph.byID[segment.ID] = i
	}

	// Endpoint 2*i is the source vertex of segment i, endpoint 2*i+1 its target
	endpointAt := func(e int) orb.Point {
		if e%2 == 0 {
			return ordered[e/2].SourcePoint()
		}
		return ordered[e/2].TargetPoint()
	}

	// Zero tolerance still needs a non-zero grid cell for exact endpoint matching
	cellSize := tolerance
	if cellSize <= 0 {
		cellSize = 1e-12
	}

	uf := newUnionFind(2 * len(ordered))
	cells := make(map[cellKey][]int)
	for e := 0; e < 2*len(ordered); e++ {
		pt := endpointAt(e)
		cell := quantize(pt, cellSize)
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				neighbors := cells[cellKey{cell.x + dx, cell.y + dy}]
				for _, other := range neighbors {
					if findDistance(pt, endpointAt(other)) <= tolerance {
						uf.union(e, other)
					}
				}
			}
		}
		cells[cell] = append(cells[cell], e)
	}

	// Renumber union-find roots into dense junction ids in endpoint scan order
	junctionByRoot := make(map[int]JunctionID)
	for e := 0; e < 2*len(ordered); e++ {
		root := uf.find(e)
		id, ok := junctionByRoot[root]
		if !ok {
			id = JunctionID(len(graph.junctionPoints))
			junctionByRoot[root] = id
			graph.junctionPoints = append(graph.junctionPoints, endpointAt(root))
		}
		if e%2 == 0 {
			graph.sourceJunction[e/2] = id
		} else {
			graph.targetJunction[e/2] = id
		}
	}

	segmentsBySource := make(map[JunctionID][]int)
	segmentsByTarget := make(map[JunctionID][]int)
	for i := range ordered {
		segmentsBySource[graph.sourceJunction[i]] = append(segmentsBySource[graph.sourceJunction[i]], i)
		segmentsByTarget[graph.targetJunction[i]] = append(segmentsByTarget[graph.targetJunction[i]], i)
	}
	for i := range ordered {
		graph.successors[i] = segmentsBySource[graph.targetJunction[i]]
		graph.predecessors[i] = segmentsByTarget[graph.sourceJunction[i]]
	}
	return graph, nil
}

// Segments returns the segment arena ordered by ascending segment id
func (graph *ChannelGraph) Segments() []*ChannelSegment {
	return graph.segments
}

// Segment returns segment at given arena index
func (graph *ChannelGraph) Segment(idx int) *ChannelSegment {
	return graph.segments[idx]
}

// IndexOf returns arena index for given segment id
func (graph *ChannelGraph) IndexOf(id SegmentID) (int, bool) {
	idx, ok := graph.byID[id]
	return idx, ok
}

// Successors returns arena indices of segments whose source vertex shares a
// junction with the terminal vertex of segment at idx, ordered by segment id
func (graph *ChannelGraph) Successors(idx int) []int {
	return graph.successors[idx]
}

// Predecessors returns arena indices of segments whose terminal vertex shares
// a junction with the source vertex of segment at idx, ordered by segment id
func (graph *ChannelGraph) Predecessors(idx int) []int {
	return graph.predecessors[idx]
}

// SourceJunction returns junction at the source vertex of segment at idx
func (graph *ChannelGraph) SourceJunction(idx int) JunctionID {
	return graph.sourceJunction[idx]
}

// TargetJunction returns junction at the terminal vertex of segment at idx
func (graph *ChannelGraph) TargetJunction(idx int) JunctionID {
	return graph.targetJunction[idx]
}

// JunctionPoint returns representative coordinate of given junction
func (graph *ChannelGraph) JunctionPoint(id JunctionID) orb.Point {
	return graph.junctionPoints[id]
}

// JunctionsNum returns number of detected junction nodes
func (graph *ChannelGraph) JunctionsNum() int {
	return len(graph.junctionPoints)
}
