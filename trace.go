package streamnet

import (
	"context"
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"
)

type TraceDirection uint16

const (
	TRACE_DOWNSTREAM = TraceDirection(iota + 1)
	TRACE_UPSTREAM
)

func (iotaIdx TraceDirection) String() string {
	return [...]string{"downstream", "upstream"}[iotaIdx-1]
}

type BranchPolicy uint16

const (
	// BRANCH_STRICT_FAIL halts a trace at any junction with multiple successors
	BRANCH_STRICT_FAIL = BranchPolicy(iota + 1)
	// BRANCH_ENUMERATE_ALL follows every successor as a separate path
	BRANCH_ENUMERATE_ALL
)

func (iotaIdx BranchPolicy) String() string {
	return [...]string{"strict-fail", "enumerate-all"}[iotaIdx-1]
}

// NetworkEdge is a directed relationship between two points of interest
// (or a point and an outlet sentinel) following the channel flow direction.
type NetworkEdge struct {
	SourceID       string
	TargetID       string
	SegmentIDs     []SegmentID
	Geom           orb.LineString
	DistanceMeters float64
	ToOutlet       bool
}

// occupant is a snapped point of interest sitting on a segment
type occupant struct {
	poi      *PointOfInterest
	fraction float64
}

// Tracer walks the channel graph from snapped positions in flow direction
// until the next point of interest or a channel dead end. It only reads the
// shared graph and occupancy tables, so traces may run concurrently.
type Tracer struct {
	graph     *ChannelGraph
	policy    BranchPolicy
	occupants map[int][]occupant
}

// NewTracer prepares tracer over given graph and snapped points.
// Points which failed to snap are ignored. Occupants of one segment are
// ordered by fractional position, ties by point id, never by input order.
func NewTracer(graph *ChannelGraph, points []*PointOfInterest, policy BranchPolicy) *Tracer {
	occupants := make(map[int][]occupant)
	for _, poi := range points {
		if !poi.Snapped() {
			continue
		}
		idx, ok := graph.IndexOf(poi.Snap.SegmentID)
		if !ok {
			continue
		}
		occupants[idx] = append(occupants[idx], occupant{poi: poi, fraction: poi.Snap.Fraction})
	}
	for idx := range occupants {
		segment := occupants[idx]
		sort.Slice(segment, func(i, j int) bool {
			if segment[i].fraction != segment[j].fraction {
				return segment[i].fraction < segment[j].fraction
			}
			return segment[i].poi.ID < segment[j].poi.ID
		})
	}
	return &Tracer{
		graph:     graph,
		policy:    policy,
		occupants: occupants,
	}
}

// OutletNodeID returns the sentinel node id representing network exit at given junction
func OutletNodeID(junction JunctionID) string {
	return fmt.Sprintf("outlet_%d", junction)
}

// walkState is one partially walked path during a trace
type walkState struct {
	segmentIdx int
	distance   float64
	visited    map[int]bool
	segmentIDs []SegmentID
	geom       orb.LineString
}

// Trace walks from the snapped position of one point of interest to the next
// point(s) in flow direction. Emits one edge per reached point or outlet;
// branching and cycles are reported through diagnostics.
func (tracer *Tracer) Trace(poi *PointOfInterest) ([]NetworkEdge, []Diagnostic) {
	if !poi.Snapped() {
		return nil, nil
	}
	entryIdx, ok := tracer.graph.IndexOf(poi.Snap.SegmentID)
	if !ok {
		return nil, nil
	}
	entrySegment := tracer.graph.Segment(entryIdx)

	// Next occupant on the entry segment strictly after the snap position
	// (same position allowed for a greater point id) ends the trace right away
	for _, other := range tracer.occupants[entryIdx] {
		if other.fraction < poi.Snap.Fraction {
			continue
		}
		if other.fraction == poi.Snap.Fraction && other.poi.ID <= poi.ID {
			continue
		}
		return []NetworkEdge{{
			SourceID:       poi.ID,
			TargetID:       other.poi.ID,
			DistanceMeters: (other.fraction - poi.Snap.Fraction) * entrySegment.Length(),
			SegmentIDs:     []SegmentID{entrySegment.ID},
			Geom:           lineSubstring(entrySegment.Geometry(), poi.Snap.Fraction, other.fraction),
		}}, nil
	}

	edges := []NetworkEdge{}
	diagnostics := []Diagnostic{}
	stack := []walkState{{
		segmentIdx: entryIdx,
		distance:   (1 - poi.Snap.Fraction) * entrySegment.Length(),
		visited:    map[int]bool{entryIdx: true},
		segmentIDs: []SegmentID{entrySegment.ID},
		geom:       lineSubstring(entrySegment.Geometry(), poi.Snap.Fraction, 1),
	}}

	for len(stack) > 0 {
		state := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		successors := tracer.graph.Successors(state.segmentIdx)
		if len(successors) == 0 {
			junction := tracer.graph.TargetJunction(state.segmentIdx)
			edges = append(edges, NetworkEdge{
				SourceID:       poi.ID,
				TargetID:       OutletNodeID(junction),
				DistanceMeters: state.distance,
				SegmentIDs:     state.segmentIDs,
				Geom:           state.geom,
				ToOutlet:       true,
			})
			continue
		}
		if len(successors) > 1 && tracer.policy == BRANCH_STRICT_FAIL {
			diagnostics = append(diagnostics, Diagnostic{
				Kind:      DIAGNOSTIC_AMBIGUOUS_BRANCH,
				PointID:   poi.ID,
				SegmentID: tracer.graph.Segment(state.segmentIdx).ID,
				Message:   fmt.Sprintf("%d successors at junction '%d'", len(successors), tracer.graph.TargetJunction(state.segmentIdx)),
			})
			continue
		}

		// Successors are ordered by segment id; pushed in reverse so the
		// lowest id branch is walked first
		for i := len(successors) - 1; i >= 0; i-- {
			nextIdx := successors[i]
			nextSegment := tracer.graph.Segment(nextIdx)
			if state.visited[nextIdx] {
				diagnostics = append(diagnostics, Diagnostic{
					Kind:      DIAGNOSTIC_CYCLE_DETECTED,
					PointID:   poi.ID,
					SegmentID: nextSegment.ID,
					Message:   "trace revisited segment, path truncated",
				})
				continue
			}
			if stop, found := firstOccupant(tracer.occupants[nextIdx]); found {
				edges = append(edges, NetworkEdge{
					SourceID:       poi.ID,
					TargetID:       stop.poi.ID,
					DistanceMeters: state.distance + stop.fraction*nextSegment.Length(),
					SegmentIDs:     appendSegmentIDs(state.segmentIDs, nextSegment.ID),
					Geom:           appendTraceGeometry(state.geom, lineSubstring(nextSegment.Geometry(), 0, stop.fraction)),
				})
				continue
			}
			visited := state.visited
			if len(successors) > 1 {
				visited = make(map[int]bool, len(state.visited)+1)
				for k := range state.visited {
					visited[k] = true
				}
			}
			visited[nextIdx] = true
			stack = append(stack, walkState{
				segmentIdx: nextIdx,
				distance:   state.distance + nextSegment.Length(),
				visited:    visited,
				segmentIDs: appendSegmentIDs(state.segmentIDs, nextSegment.ID),
				geom:       appendTraceGeometry(state.geom, nextSegment.Geometry()),
			})
		}
	}
	return edges, diagnostics
}

// firstOccupant returns the occupant with the lowest (fraction, id) position
func firstOccupant(occupants []occupant) (occupant, bool) {
	if len(occupants) == 0 {
		return occupant{}, false
	}
	return occupants[0], true
}

// appendSegmentIDs grows the traversed id list without sharing backing arrays between branches
func appendSegmentIDs(ids []SegmentID, id SegmentID) []SegmentID {
	out := make([]SegmentID, len(ids), len(ids)+1)
	copy(out, ids)
	return append(out, id)
}

// appendTraceGeometry joins path geometry with the next traversed part,
// dropping the duplicated join vertex
func appendTraceGeometry(geom orb.LineString, next orb.LineString) orb.LineString {
	out := make(orb.LineString, len(geom), len(geom)+len(next))
	copy(out, geom)
	for i, pt := range next {
		if i == 0 && len(out) > 0 && out[len(out)-1] == pt {
			continue
		}
		out = append(out, pt)
	}
	return out
}

// TraceAll runs one trace per snapped point of interest across workers.
// Per-point results land in private slots merged in ascending point id order,
// so the outcome is identical no matter how traces interleave.
func (tracer *Tracer) TraceAll(ctx context.Context, points []*PointOfInterest, workers int) ([]NetworkEdge, []Diagnostic, error) {
	if workers < 1 {
		workers = 1
	}
	ordered := make([]*PointOfInterest, 0, len(points))
	for _, poi := range points {
		if poi.Snapped() {
			ordered = append(ordered, poi)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	edgeSlots := make([][]NetworkEdge, len(ordered))
	diagnosticSlots := make([][]Diagnostic, len(ordered))
	group, _ := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, poi := range ordered {
		i, poi := i, poi
		group.Go(func() error {
			edgeSlots[i], diagnosticSlots[i] = tracer.Trace(poi)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}
	edges := []NetworkEdge{}
	diagnostics := []Diagnostic{}
	for i := range ordered {
		edges = append(edges, edgeSlots[i]...)
		diagnostics = append(diagnostics, diagnosticSlots[i]...)
	}
	return edges, diagnostics, nil
}
