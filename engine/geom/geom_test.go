package geom_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/simobility/shortterm/engine/geom"
)

func TestDistance(t *testing.T) {
	d := geom.Distance(mgl64.Vec2{0, 0}, mgl64.Vec2{3, 4})
	if math.Abs(d-5) > 1e-9 {
		t.Fatalf("Distance = %v, want 5", d)
	}
}

func TestCrossAndDot(t *testing.T) {
	a := mgl64.Vec2{1, 0}
	b := mgl64.Vec2{0, 1}
	if got := geom.Cross(a, b); math.Abs(got-1) > 1e-9 {
		t.Fatalf("Cross = %v, want 1", got)
	}
	if got := geom.Dot(a, b); math.Abs(got) > 1e-9 {
		t.Fatalf("Dot = %v, want 0", got)
	}
}

func TestLineIntersectionParallelLines(t *testing.T) {
	_, ok := geom.LineIntersection(
		mgl64.Vec2{0, 0}, mgl64.Vec2{1, 0},
		mgl64.Vec2{0, 1}, mgl64.Vec2{1, 1},
	)
	if ok {
		t.Fatal("parallel lines should not intersect")
	}
}

func TestLineIntersectionCrossing(t *testing.T) {
	p, ok := geom.LineIntersection(
		mgl64.Vec2{-1, 0}, mgl64.Vec2{1, 0},
		mgl64.Vec2{0, -1}, mgl64.Vec2{0, 1},
	)
	if !ok {
		t.Fatal("perpendicular lines should intersect")
	}
	if math.Abs(p[0]) > 1e-9 || math.Abs(p[1]) > 1e-9 {
		t.Fatalf("intersection = %v, want (0,0)", p)
	}
}

func TestSegmentIntersectionOutsideBounds(t *testing.T) {
	_, ok := geom.SegmentIntersection(
		mgl64.Vec2{0, 0}, mgl64.Vec2{1, 0},
		mgl64.Vec2{5, -1}, mgl64.Vec2{5, 1},
	)
	if ok {
		t.Fatal("segments whose infinite lines cross outside both segments must not report an intersection")
	}
}

func TestPerpendicularOffset(t *testing.T) {
	p := geom.PerpendicularOffset(mgl64.Vec2{0, 0}, mgl64.Vec2{1, 0}, 2)
	want := mgl64.Vec2{0, 2}
	if math.Abs(p[0]-want[0]) > 1e-9 || math.Abs(p[1]-want[1]) > 1e-9 {
		t.Fatalf("PerpendicularOffset = %v, want %v", p, want)
	}
}

func TestWithinRect(t *testing.T) {
	min, max := mgl64.Vec2{0, 0}, mgl64.Vec2{10, 10}
	if !geom.WithinRect(mgl64.Vec2{5, 5}, min, max) {
		t.Fatal("(5,5) should be within [0,0]-[10,10]")
	}
	if geom.WithinRect(mgl64.Vec2{11, 5}, min, max) {
		t.Fatal("(11,5) should be outside [0,0]-[10,10]")
	}
}
