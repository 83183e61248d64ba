package streamnet

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestFindDistance(t *testing.T) {
	p := orb.Point{0, 0}
	q := orb.Point{3, 4}
	res := 5.0
	d := findDistance(p, q)
	if d != res {
		t.Errorf("Distance must be %f, but got %f", res, d)
	}
}

func TestGetLength(t *testing.T) {
	line := orb.LineString{
		{0, 0},
		{3, 4},
		{3, 10},
	}
	res := 11.0
	length := getLength(line)
	if length != res {
		t.Errorf("Length must be %f, but got %f", res, length)
	}
}

func TestProjectOnSegment(t *testing.T) {
	a := orb.Point{0, 0}
	b := orb.Point{10, 0}

	pt, fraction := projectOnSegment(a, b, orb.Point{4, 3})
	if pt != (orb.Point{4, 0}) {
		t.Errorf("Projection must be %v, but got %v", orb.Point{4, 0}, pt)
	}
	if fraction != 0.4 {
		t.Errorf("Fraction must be %f, but got %f", 0.4, fraction)
	}

	// Projection beyond segment extent clamps to the nearest vertex
	pt, fraction = projectOnSegment(a, b, orb.Point{15, 1})
	if pt != b {
		t.Errorf("Projection must clamp to %v, but got %v", b, pt)
	}
	if fraction != 1.0 {
		t.Errorf("Fraction must be %f, but got %f", 1.0, fraction)
	}

	// Degenerate segment
	pt, fraction = projectOnSegment(a, a, orb.Point{15, 1})
	if pt != a || fraction != 0.0 {
		t.Errorf("Degenerate projection must be %v/0.0, but got %v/%f", a, pt, fraction)
	}
}

func TestProjectOnPolyline(t *testing.T) {
	line := orb.LineString{
		{0, 0},
		{10, 0},
		{10, 10},
	}

	pt, fraction, distance := projectOnPolyline(line, orb.Point{10, 5})
	if pt != (orb.Point{10, 5}) {
		t.Errorf("Closest point must be %v, but got %v", orb.Point{10, 5}, pt)
	}
	if fraction != 0.75 {
		t.Errorf("Fraction must be %f, but got %f", 0.75, fraction)
	}
	if distance != 0.0 {
		t.Errorf("Distance must be %f, but got %f", 0.0, distance)
	}

	pt, fraction, distance = projectOnPolyline(line, orb.Point{5, 2})
	if pt != (orb.Point{5, 0}) {
		t.Errorf("Closest point must be %v, but got %v", orb.Point{5, 0}, pt)
	}
	if fraction != 0.25 {
		t.Errorf("Fraction must be %f, but got %f", 0.25, fraction)
	}
	if distance != 2.0 {
		t.Errorf("Distance must be %f, but got %f", 2.0, distance)
	}
}

func TestProjectOnPolylineTies(t *testing.T) {
	// Point equally distant from both halves, lower fraction must win
	line := orb.LineString{
		{0, 0},
		{10, 0},
		{10, 10},
	}
	_, fraction, _ := projectOnPolyline(line, orb.Point{10, 0})
	if fraction != 0.5 {
		t.Errorf("Fraction must be %f, but got %f", 0.5, fraction)
	}
}

func TestPointAtFraction(t *testing.T) {
	line := orb.LineString{
		{0, 0},
		{10, 0},
		{10, 10},
	}
	pt := pointAtFraction(line, 0.25)
	if pt != (orb.Point{5, 0}) {
		t.Errorf("Point must be %v, but got %v", orb.Point{5, 0}, pt)
	}
	pt = pointAtFraction(line, 0.0)
	if pt != line[0] {
		t.Errorf("Point must be %v, but got %v", line[0], pt)
	}
	pt = pointAtFraction(line, 1.0)
	if pt != line[2] {
		t.Errorf("Point must be %v, but got %v", line[2], pt)
	}
}

func TestLineSubstring(t *testing.T) {
	line := orb.LineString{
		{0, 0},
		{10, 0},
		{10, 10},
	}
	sub := lineSubstring(line, 0.25, 0.75)
	expected := orb.LineString{
		{5, 0},
		{10, 0},
		{10, 5},
	}
	if len(sub) != len(expected) {
		t.Errorf("Substring must have %d points, but got %d", len(expected), len(sub))
	}
	for i := range expected {
		if math.Abs(sub[i][0]-expected[i][0]) > 1e-9 || math.Abs(sub[i][1]-expected[i][1]) > 1e-9 {
			t.Errorf("Substring point %d must be %v, but got %v", i, expected[i], sub[i])
		}
	}

	// Equal fractions must still give a valid two point line
	sub = lineSubstring(line, 0.5, 0.5)
	if len(sub) < 2 {
		t.Errorf("Zero length substring must have 2 points, but got %d", len(sub))
	}
}

func TestReverseLine(t *testing.T) {
	line := orb.LineString{
		{0, 0},
		{10, 0},
		{10, 10},
	}
	reversed := reverseLine(line)
	if reversed[0] != line[2] || reversed[2] != line[0] {
		t.Errorf("Reversed line endpoints must swap, got %v", reversed)
	}
	if line[0] != (orb.Point{0, 0}) {
		t.Errorf("Original line must stay untouched, got %v", line)
	}
}
