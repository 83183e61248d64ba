package streamnet

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"
)

// SnapCandidate is a single answer of the geometry index: a channel segment
// within query distance together with the exact closest position on it.
type SnapCandidate struct {
	Segment  *ChannelSegment
	Point    orb.Point
	Fraction float64
	Distance float64
}

// SegmentIndex answers "which segments lie within distance d of point p".
// It keeps an R-tree over segment bounding boxes; exact distances are
// computed by projecting the query point onto candidate polylines.
// Immutable after construction and safe for concurrent queries.
type SegmentIndex struct {
	tree      rtree.RTreeG[*ChannelSegment]
	tolerance float64
}

// NewSegmentIndex builds spatial index over given segments.
// Tolerance is used to break ties between equally distant candidates.
func NewSegmentIndex(segments []*ChannelSegment, tolerance float64) *SegmentIndex {
	index := &SegmentIndex{tolerance: tolerance}
	for _, segment := range segments {
		bound := segment.Geometry().Bound()
		index.tree.Insert(
			[2]float64{bound.Min[0], bound.Min[1]},
			[2]float64{bound.Max[0], bound.Max[1]},
			segment,
		)
	}
	return index
}

// Nearest returns segments lying within maxDist of given point, ascending by
// distance. Candidates within tolerance of the smallest distance count as
// equally near and are ordered by lowest segment id, then by lower fraction,
// so repeated queries give identical answers.
func (index *SegmentIndex) Nearest(p orb.Point, maxDist float64) []SnapCandidate {
	candidates := []SnapCandidate{}
	index.tree.Search(
		[2]float64{p[0] - maxDist, p[1] - maxDist},
		[2]float64{p[0] + maxDist, p[1] + maxDist},
		func(min, max [2]float64, segment *ChannelSegment) bool {
			closest, fraction, distance := projectOnPolyline(segment.Geometry(), p)
			if distance <= maxDist {
				candidates = append(candidates, SnapCandidate{
					Segment:  segment,
					Point:    closest,
					Fraction: fraction,
					Distance: distance,
				})
			}
			return true
		},
	)
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Distance != candidates[j].Distance {
			return candidates[i].Distance < candidates[j].Distance
		}
		if candidates[i].Segment.ID != candidates[j].Segment.ID {
			return candidates[i].Segment.ID < candidates[j].Segment.ID
		}
		return candidates[i].Fraction < candidates[j].Fraction
	})
	// Candidates within tolerance of the minimum distance are interchangeable:
	// reorder that band by id then fraction so the best pick is stable
	if len(candidates) > 1 {
		band := 1
		for band < len(candidates) && candidates[band].Distance-candidates[0].Distance <= index.tolerance {
			band++
		}
		sort.Slice(candidates[:band], func(i, j int) bool {
			if candidates[i].Segment.ID != candidates[j].Segment.ID {
				return candidates[i].Segment.ID < candidates[j].Segment.ID
			}
			return candidates[i].Fraction < candidates[j].Fraction
		})
	}
	return candidates
}
