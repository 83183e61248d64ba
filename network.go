package streamnet

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// NetworkNode is a point of interest (or an outlet sentinel) inside the
// assembled network together with its computed attributes.
type NetworkNode struct {
	tagMap map[string]string

	ID   string
	Geom orb.Point

	// Snap attributes; SnapSegmentID is -1 for unsnapped points and outlets
	SnapSegmentID SegmentID
	SnapFraction  float64
	SnapOffset    float64

	// UpstreamCount is the number of points of interest the node is reachable from
	UpstreamCount int
	// Order is the number of leaf points (no upstream edges) routed through the node
	Order int
	// OutletDistance is channel distance to the nearest reachable outlet, -1 when
	// tracing halted before any outlet
	OutletDistance float64

	InEdges  []int
	OutEdges []int

	IsOutlet  bool
	Unsnapped bool
}

// Tags returns attributes inherited from the source feature. Empty for outlets
func (node *NetworkNode) Tags() map[string]string {
	return node.tagMap
}

// NetworkGraph owns the final directed acyclic network: nodes are points of
// interest plus outlet sentinels, edges follow channel flow direction.
// Node and edge slices are ordered by id so identical inputs always assemble
// byte-identical exports. Read-only once built.
type NetworkGraph struct {
	RunID       string
	Nodes       []NetworkNode
	Edges       []NetworkEdge
	Diagnostics []Diagnostic

	byID map[string]int
}

// NodeByID returns index of node with given id
func (net *NetworkGraph) NodeByID(id string) (int, bool) {
	idx, ok := net.byID[id]
	return idx, ok
}

// BuildNetworkGraph assembles nodes, edges and computed attributes from trace
// results. Points which failed to snap become isolated nodes marked unsnapped;
// outlet sentinels are created for every terminal edge.
func BuildNetworkGraph(graph *ChannelGraph, points []*PointOfInterest, edges []NetworkEdge, diagnostics []Diagnostic) *NetworkGraph {
	net := &NetworkGraph{
		RunID:       uuid.NewString(),
		Diagnostics: diagnostics,
		byID:        make(map[string]int),
	}

	ordered := make([]*PointOfInterest, len(points))
	copy(ordered, points)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })
	for _, poi := range ordered {
		node := NetworkNode{
			ID:             poi.ID,
			Geom:           poi.Geom,
			tagMap:         poi.Tags(),
			SnapSegmentID:  -1,
			OutletDistance: -1,
			Unsnapped:      !poi.Snapped(),
		}
		if poi.Snapped() {
			node.Geom = poi.Snap.Point
			node.SnapSegmentID = poi.Snap.SegmentID
			node.SnapFraction = poi.Snap.Fraction
			node.SnapOffset = poi.Snap.Offset
		}
		net.byID[node.ID] = len(net.Nodes)
		net.Nodes = append(net.Nodes, node)
	}

	// Outlet sentinels referenced by terminal edges, ordered by id
	outletGeom := make(map[string]orb.Point)
	for _, edge := range edges {
		if edge.ToOutlet && len(edge.Geom) > 0 {
			outletGeom[edge.TargetID] = edge.Geom[len(edge.Geom)-1]
		}
	}
	outletIDs := make([]string, 0, len(outletGeom))
	for id := range outletGeom {
		outletIDs = append(outletIDs, id)
	}
	sort.Strings(outletIDs)
	for _, id := range outletIDs {
		net.byID[id] = len(net.Nodes)
		net.Nodes = append(net.Nodes, NetworkNode{
			ID:             id,
			Geom:           outletGeom[id],
			tagMap:         map[string]string{},
			SnapSegmentID:  -1,
			OutletDistance: 0,
			IsOutlet:       true,
		})
	}

	net.Edges = make([]NetworkEdge, len(edges))
	copy(net.Edges, edges)
	sort.SliceStable(net.Edges, func(i, j int) bool {
		if net.Edges[i].SourceID != net.Edges[j].SourceID {
			return net.Edges[i].SourceID < net.Edges[j].SourceID
		}
		if net.Edges[i].TargetID != net.Edges[j].TargetID {
			return net.Edges[i].TargetID < net.Edges[j].TargetID
		}
		return net.Edges[i].DistanceMeters < net.Edges[j].DistanceMeters
	})
	net.dropCyclicEdges()
	for e := range net.Edges {
		src := net.byID[net.Edges[e].SourceID]
		dst := net.byID[net.Edges[e].TargetID]
		net.Nodes[src].OutEdges = append(net.Nodes[src].OutEdges, e)
		net.Nodes[dst].InEdges = append(net.Nodes[dst].InEdges, e)
	}

	net.computeReachability()
	net.computeOutletDistances()
	return net
}

// dropCyclicEdges keeps the sorted edge set acyclic: an edge whose target
// already reaches its source (points of interest sitting on a closed channel
// loop trace back to each other) is dropped and reported. Accepting edges in
// sorted order keeps the surviving set a pure function of node ids.
func (net *NetworkGraph) dropCyclicEdges() {
	adjacency := make([][]int, len(net.Nodes))
	reaches := func(from, to int) bool {
		if from == to {
			return true
		}
		seen := map[int]bool{from: true}
		stack := []int{from}
		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, next := range adjacency[current] {
				if next == to {
					return true
				}
				if !seen[next] {
					seen[next] = true
					stack = append(stack, next)
				}
			}
		}
		return false
	}

	acyclic := make([]NetworkEdge, 0, len(net.Edges))
	for _, edge := range net.Edges {
		src := net.byID[edge.SourceID]
		dst := net.byID[edge.TargetID]
		if reaches(dst, src) {
			lastSegment := SegmentID(-1)
			if len(edge.SegmentIDs) > 0 {
				lastSegment = edge.SegmentIDs[len(edge.SegmentIDs)-1]
			}
			net.Diagnostics = append(net.Diagnostics, Diagnostic{
				Kind:      DIAGNOSTIC_CYCLE_DETECTED,
				PointID:   edge.SourceID,
				SegmentID: lastSegment,
				Message:   fmt.Sprintf("edge to '%s' would make the point its own ancestor, dropped", edge.TargetID),
			})
			continue
		}
		adjacency[src] = append(adjacency[src], dst)
		acyclic = append(acyclic, edge)
	}
	net.Edges = acyclic
}

// computeReachability fills UpstreamCount and Order by walking edges forward
// from every point node. The edge set is acyclic (cyclic edges are dropped at
// assembly, loops inside one trace are truncated earlier), so plain DFS terminates.
func (net *NetworkGraph) computeReachability() {
	for start := range net.Nodes {
		if net.Nodes[start].IsOutlet || net.Nodes[start].Unsnapped {
			continue
		}
		isLeaf := len(net.Nodes[start].InEdges) == 0
		if isLeaf {
			net.Nodes[start].Order++
		}
		seen := map[int]bool{start: true}
		stack := []int{start}
		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, e := range net.Nodes[current].OutEdges {
				next := net.byID[net.Edges[e].TargetID]
				if seen[next] {
					continue
				}
				seen[next] = true
				net.Nodes[next].UpstreamCount++
				if isLeaf {
					net.Nodes[next].Order++
				}
				stack = append(stack, next)
			}
		}
	}
}

// computeOutletDistances fills OutletDistance with the channel distance to the
// nearest reachable outlet sentinel, moving over nodes in reverse topological order
func (net *NetworkGraph) computeOutletDistances() {
	resolved := make([]bool, len(net.Nodes))
	var resolve func(idx int) float64
	resolve = func(idx int) float64 {
		if resolved[idx] {
			return net.Nodes[idx].OutletDistance
		}
		resolved[idx] = true
		best := -1.0
		for _, e := range net.Nodes[idx].OutEdges {
			downstream := resolve(net.byID[net.Edges[e].TargetID])
			if downstream < 0 {
				continue
			}
			total := net.Edges[e].DistanceMeters + downstream
			if best < 0 || total < best {
				best = total
			}
		}
		net.Nodes[idx].OutletDistance = best
		return best
	}
	for idx := range net.Nodes {
		if net.Nodes[idx].IsOutlet {
			net.Nodes[idx].OutletDistance = 0
			resolved[idx] = true
		}
	}
	for idx := range net.Nodes {
		resolve(idx)
	}
}
