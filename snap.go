package streamnet

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"
)

// SnapResult places a point of interest onto a channel segment:
// fraction 0.0 is the segment source vertex, 1.0 its terminal vertex,
// offset is the perpendicular distance the point moved while snapping.
type SnapResult struct {
	SegmentID SegmentID
	Point     orb.Point
	Fraction  float64
	Offset    float64
}

// PointOfInterest is an input point feature to be located on the channel network.
// Snap stays nil when no segment lies within the configured snap distance.
type PointOfInterest struct {
	tagMap map[string]string
	Snap   *SnapResult
	Geom   orb.Point
	ID     string
}

// NewPointOfInterest prepares a point of interest from raw feature geometry
func NewPointOfInterest(id string, geom orb.Point, tagMap map[string]string) *PointOfInterest {
	if tagMap == nil {
		tagMap = map[string]string{}
	}
	return &PointOfInterest{
		ID:     id,
		Geom:   geom,
		tagMap: tagMap,
	}
}

// Tags returns attributes inherited from the source feature
func (poi *PointOfInterest) Tags() map[string]string {
	return poi.tagMap
}

// Snapped reports whether the point has been placed on a segment
func (poi *PointOfInterest) Snapped() bool {
	return poi.Snap != nil
}

// SnapPoint assigns single point of interest to the best candidate returned by
// the index: smallest offset, ties by lowest segment id, then lower fraction.
// Returns false when no segment lies within maxSnapDistance.
func SnapPoint(poi *PointOfInterest, index *SegmentIndex, maxSnapDistance float64) bool {
	candidates := index.Nearest(poi.Geom, maxSnapDistance)
	if len(candidates) == 0 {
		return false
	}
	best := candidates[0]
	poi.Snap = &SnapResult{
		SegmentID: best.Segment.ID,
		Point:     best.Point,
		Fraction:  best.Fraction,
		Offset:    best.Distance,
	}
	return true
}

// SnapPoints snaps every point of interest against the index in parallel.
// Snap queries are read-only against the shared index so no locking is needed;
// every unsnapped point produces exactly one diagnostic, in input order.
func SnapPoints(ctx context.Context, points []*PointOfInterest, index *SegmentIndex, maxSnapDistance float64, workers int) ([]Diagnostic, error) {
	if workers < 1 {
		workers = 1
	}
	group, _ := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	missed := make([]bool, len(points))
	for i, poi := range points {
		i, poi := i, poi
		group.Go(func() error {
			missed[i] = !SnapPoint(poi, index, maxSnapDistance)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	diagnostics := []Diagnostic{}
	for i, poi := range points {
		if missed[i] {
			diagnostics = append(diagnostics, Diagnostic{
				Kind:      DIAGNOSTIC_UNSNAPPED,
				PointID:   poi.ID,
				SegmentID: -1,
				Message:   fmt.Sprintf("no channel segment within %f", maxSnapDistance),
			})
		}
	}
	return diagnostics, nil
}
