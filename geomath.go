package streamnet

import (
	"math"

	"github.com/paulmach/orb"
)

// findDistance returns Euclidean distance between two planar points
func findDistance(p, q orb.Point) float64 {
	xdistance := p[0] - q[0]
	ydistance := p[1] - q[1]
	return math.Sqrt(xdistance*xdistance + ydistance*ydistance)
}

// sqDist returns squared Euclidean distance between two planar points
func sqDist(p, q orb.Point) float64 {
	xdistance := p[0] - q[0]
	ydistance := p[1] - q[1]
	return xdistance*xdistance + ydistance*ydistance
}

// getLength returns length for given line
func getLength(line orb.LineString) float64 {
	totalLength := 0.0
	if len(line) < 2 {
		return totalLength
	}
	for i := 1; i < len(line); i++ {
		totalLength += findDistance(line[i-1], line[i])
	}
	return totalLength
}

// pointOnSegmentByFraction returns a point on given segment using known fraction
func pointOnSegmentByFraction(p, q orb.Point, fraction float64) orb.Point {
	return orb.Point{
		(1-fraction)*p[0] + fraction*q[0],
		(1-fraction)*p[1] + fraction*q[1],
	}
}

// projectOnSegment projects point onto segment [a;b] and clamps result to segment extents.
// Returns closest point on segment and its position as fraction of [a;b]
func projectOnSegment(a, b, p orb.Point) (orb.Point, float64) {
	abx := b[0] - a[0]
	aby := b[1] - a[1]
	sqLen := abx*abx + aby*aby
	if sqLen == 0 {
		// degenerate segment, both vertices coincide
		return a, 0.0
	}
	t := ((p[0]-a[0])*abx + (p[1]-a[1])*aby) / sqLen
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return pointOnSegmentByFraction(a, b, t), t
}

// projectOnPolyline projects point onto polyline.
// Returns closest point on the polyline, its position as fraction of total polyline length
// and the distance between given point and the closest one.
// Ties between vertex pairs are broken towards the lower fraction to keep results repeatable.
func projectOnPolyline(line orb.LineString, p orb.Point) (orb.Point, float64, float64) {
	var (
		bestPoint    orb.Point
		bestFraction float64
		bestSqDist   = math.Inf(1)
	)
	totalLength := getLength(line)
	travelled := 0.0
	for i := 1; i < len(line); i++ {
		segmentLength := findDistance(line[i-1], line[i])
		candidate, t := projectOnSegment(line[i-1], line[i], p)
		d := sqDist(p, candidate)
		if d < bestSqDist {
			bestSqDist = d
			bestPoint = candidate
			if totalLength > 0 {
				bestFraction = (travelled + t*segmentLength) / totalLength
			}
		}
		travelled += segmentLength
	}
	return bestPoint, bestFraction, math.Sqrt(bestSqDist)
}

// pointAtFraction returns the point located at given fraction of polyline length
func pointAtFraction(line orb.LineString, fraction float64) orb.Point {
	if fraction <= 0 {
		return line[0]
	}
	if fraction >= 1 {
		return line[len(line)-1]
	}
	target := fraction * getLength(line)
	travelled := 0.0
	for i := 1; i < len(line); i++ {
		segmentLength := findDistance(line[i-1], line[i])
		if travelled+segmentLength >= target && segmentLength > 0 {
			return pointOnSegmentByFraction(line[i-1], line[i], (target-travelled)/segmentLength)
		}
		travelled += segmentLength
	}
	return line[len(line)-1]
}

// lineSubstring returns part of polyline between two fractions of its length.
// Returned line always contains at least two points (coincident ones when fromFraction == toFraction)
func lineSubstring(line orb.LineString, fromFraction, toFraction float64) orb.LineString {
	if fromFraction > toFraction {
		fromFraction, toFraction = toFraction, fromFraction
	}
	totalLength := getLength(line)
	start := fromFraction * totalLength
	end := toFraction * totalLength

	result := orb.LineString{pointAtFraction(line, fromFraction)}
	travelled := 0.0
	for i := 1; i < len(line)-1; i++ {
		travelled += findDistance(line[i-1], line[i])
		if travelled > start && travelled < end {
			result = append(result, line[i])
		}
	}
	result = append(result, pointAtFraction(line, toFraction))
	return result
}

// reverseLine reverses order of points in given line. Returns new slice
func reverseLine(pts orb.LineString) orb.LineString {
	inputLen := len(pts)
	output := make(orb.LineString, inputLen)
	for i, n := range pts {
		j := inputLen - i - 1
		output[j] = n
	}
	return output
}
