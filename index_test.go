package streamnet

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentIndexNearest(t *testing.T) {
	segments := []*ChannelSegment{
		mustSegment(t, 0, orb.Point{0, 0}, orb.Point{10, 0}),
		mustSegment(t, 1, orb.Point{0, 5}, orb.Point{10, 5}),
		mustSegment(t, 2, orb.Point{0, 100}, orb.Point{10, 100}),
	}
	index := NewSegmentIndex(segments, 0.001)

	candidates := index.Nearest(orb.Point{5, 1}, 10)
	require.Len(t, candidates, 2)
	assert.Equal(t, SegmentID(0), candidates[0].Segment.ID)
	assert.Equal(t, 1.0, candidates[0].Distance)
	assert.Equal(t, SegmentID(1), candidates[1].Segment.ID)
	assert.Equal(t, 4.0, candidates[1].Distance)
	assert.Equal(t, orb.Point{5, 0}, candidates[0].Point)
	assert.Equal(t, 0.5, candidates[0].Fraction)
}

func TestSegmentIndexNearestNothingInRange(t *testing.T) {
	segments := []*ChannelSegment{
		mustSegment(t, 0, orb.Point{0, 0}, orb.Point{10, 0}),
	}
	index := NewSegmentIndex(segments, 0.001)

	candidates := index.Nearest(orb.Point{5, 50}, 10)
	assert.Empty(t, candidates)
}

func TestSegmentIndexNearestTieBreak(t *testing.T) {
	// Point exactly between two parallel segments: lowest id must come first
	segments := []*ChannelSegment{
		mustSegment(t, 4, orb.Point{0, 2}, orb.Point{10, 2}),
		mustSegment(t, 3, orb.Point{0, -2}, orb.Point{10, -2}),
	}
	index := NewSegmentIndex(segments, 0.001)

	candidates := index.Nearest(orb.Point{5, 0}, 10)
	require.Len(t, candidates, 2)
	assert.Equal(t, SegmentID(3), candidates[0].Segment.ID)
	assert.Equal(t, SegmentID(4), candidates[1].Segment.ID)
}

func TestSegmentIndexNearestChainedDistances(t *testing.T) {
	// Distances 2.0, 2.8 and 3.6 with tolerance 1.0: the first two count as
	// equally near (lowest id wins), the third is beyond the band even though
	// pairwise gaps stay under tolerance
	segments := []*ChannelSegment{
		mustSegment(t, 5, orb.Point{-10, 2}, orb.Point{10, 2}),
		mustSegment(t, 1, orb.Point{-10, 2.8}, orb.Point{10, 2.8}),
		mustSegment(t, 0, orb.Point{-10, 3.6}, orb.Point{10, 3.6}),
	}
	index := NewSegmentIndex(segments, 1.0)

	candidates := index.Nearest(orb.Point{0, 0}, 10)
	require.Len(t, candidates, 3)
	assert.Equal(t, SegmentID(1), candidates[0].Segment.ID)
	assert.Equal(t, SegmentID(5), candidates[1].Segment.ID)
	assert.Equal(t, SegmentID(0), candidates[2].Segment.ID)
}

func TestSegmentIndexBoxFilter(t *testing.T) {
	// Segment inside the search box but farther than maxDist must be dropped
	segments := []*ChannelSegment{
		mustSegment(t, 0, orb.Point{7, 7}, orb.Point{9, 9}),
	}
	index := NewSegmentIndex(segments, 0.001)

	candidates := index.Nearest(orb.Point{0, 0}, 8)
	assert.Empty(t, candidates)
}
