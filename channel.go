package streamnet

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

type SegmentID int64

// ChannelSegment is one digitized polyline feature of the channels layer.
// Digitized direction (first vertex -> last vertex) defines nominal flow direction.
type ChannelSegment struct {
	tagMap       map[string]string
	geom         orb.LineString
	lengthMeters float64
	ID           SegmentID
}

// NewChannelSegment prepares a channel segment from raw feature geometry.
// Consecutive vertices closer than given tolerance are collapsed; a geometry
// with fewer than 2 distinct vertices or with NaN coordinates is rejected.
func NewChannelSegment(id SegmentID, geom orb.LineString, tagMap map[string]string, tolerance float64) (*ChannelSegment, error) {
	cleaned := make(orb.LineString, 0, len(geom))
	for _, pt := range geom {
		if math.IsNaN(pt[0]) || math.IsNaN(pt[1]) {
			return nil, errors.Wrapf(ErrInvalidGeometry, "segment '%d' has NaN coordinate", id)
		}
		if len(cleaned) > 0 && findDistance(cleaned[len(cleaned)-1], pt) <= tolerance {
			continue
		}
		cleaned = append(cleaned, pt)
	}
	if len(cleaned) < 2 {
		return nil, errors.Wrapf(ErrInvalidGeometry, "segment '%d' has %d distinct vertices", id, len(cleaned))
	}
	if tagMap == nil {
		tagMap = map[string]string{}
	}
	return &ChannelSegment{
		ID:           id,
		geom:         cleaned,
		tagMap:       tagMap,
		lengthMeters: getLength(cleaned),
	}, nil
}

// Geometry returns segment polyline. Callers must not mutate it
func (segment *ChannelSegment) Geometry() orb.LineString {
	return segment.geom
}

// Length returns cached segment length in layer units
func (segment *ChannelSegment) Length() float64 {
	return segment.lengthMeters
}

// SourcePoint returns first vertex of digitized direction
func (segment *ChannelSegment) SourcePoint() orb.Point {
	return segment.geom[0]
}

// TargetPoint returns last vertex of digitized direction
func (segment *ChannelSegment) TargetPoint() orb.Point {
	return segment.geom[len(segment.geom)-1]
}

// Tags returns attributes inherited from the source feature
func (segment *ChannelSegment) Tags() map[string]string {
	return segment.tagMap
}

// reversed returns a copy of the segment with flipped digitized direction.
// Used for upstream tracing
func (segment *ChannelSegment) reversed() *ChannelSegment {
	return &ChannelSegment{
		ID:           segment.ID,
		geom:         reverseLine(segment.geom),
		tagMap:       segment.tagMap,
		lengthMeters: segment.lengthMeters,
	}
}
