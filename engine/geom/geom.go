// Package geom provides the 2-D vector helpers (GeomHelpers in the spec)
// used by movement roles and the spatial index: distance, dot/cross
// product, line-line intersection, and perpendicular offset. It builds on
// mgl64.Vec2, the same go-gl/mathgl vector type the teacher uses for its own
// 2-D math (server/world/generator/pmgen/populate/ore.go), rather than
// hand-rolling a parallel vector type.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Distance returns the Euclidean distance between a and b.
func Distance(a, b mgl64.Vec2) float64 {
	return a.Sub(b).Len()
}

// Dot returns the dot product of a and b.
func Dot(a, b mgl64.Vec2) float64 {
	return a.Dot(b)
}

// Cross returns the z-component of the 3-D cross product of a and b treated
// as vectors in the z=0 plane. A positive value means b is counter-clockwise
// from a.
func Cross(a, b mgl64.Vec2) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

// Perpendicular returns v rotated 90 degrees counter-clockwise.
func Perpendicular(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{-v[1], v[0]}
}

// PerpendicularOffset returns a point offset from p by distance along the
// perpendicular of the direction vector dir (not required to be
// normalised). A positive distance offsets to the left of dir.
func PerpendicularOffset(p, dir mgl64.Vec2, distance float64) mgl64.Vec2 {
	if dir.Len() == 0 {
		return p
	}
	n := Perpendicular(dir.Normalize())
	return p.Add(n.Mul(distance))
}

// LineIntersection computes the intersection point of the infinite lines
// through (p1, p2) and (p3, p4). ok is false if the lines are parallel
// (within epsilon).
func LineIntersection(p1, p2, p3, p4 mgl64.Vec2) (point mgl64.Vec2, ok bool) {
	const epsilon = 1e-9

	d1 := p2.Sub(p1)
	d2 := p4.Sub(p3)
	denom := Cross(d1, d2)
	if math.Abs(denom) < epsilon {
		return mgl64.Vec2{}, false
	}

	diff := p3.Sub(p1)
	t := Cross(diff, d2) / denom
	return p1.Add(d1.Mul(t)), true
}

// SegmentIntersection is like LineIntersection but only reports an
// intersection that falls within both finite segments [p1,p2] and [p3,p4].
func SegmentIntersection(p1, p2, p3, p4 mgl64.Vec2) (point mgl64.Vec2, ok bool) {
	const epsilon = 1e-9

	d1 := p2.Sub(p1)
	d2 := p4.Sub(p3)
	denom := Cross(d1, d2)
	if math.Abs(denom) < epsilon {
		return mgl64.Vec2{}, false
	}

	diff := p3.Sub(p1)
	t := Cross(diff, d2) / denom
	u := Cross(diff, d1) / denom
	if t < -epsilon || t > 1+epsilon || u < -epsilon || u > 1+epsilon {
		return mgl64.Vec2{}, false
	}
	return p1.Add(d1.Mul(t)), true
}

// WithinRect reports whether p lies within the axis-aligned rectangle
// [min, max], inclusive on both bounds (matching SpatialIndex.QueryRect's
// closed-rectangle semantics).
func WithinRect(p, min, max mgl64.Vec2) bool {
	return p[0] >= min[0] && p[0] <= max[0] && p[1] >= min[1] && p[1] <= max[1]
}
