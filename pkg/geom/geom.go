// Package geom provides the planar geometry operations the planner needs on
// top of the orb types: convex clipping, polygon splitting, boundary insets,
// convex hulls, minimum rotated rectangles, and ring repair.
//
// All rings handled by this package are closed: the first vertex is repeated
// as the last. Constructors enforce this; edge walks iterate len(ring)-1
// segments. Coordinates are metres unless a caller says otherwise.
package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Eps is the tolerance used for degeneracy checks, in metres.
const Eps = 1e-9

// NewRing builds a closed ring from the given vertices.
func NewRing(pts ...orb.Point) orb.Ring {
	r := make(orb.Ring, 0, len(pts)+1)
	r = append(r, pts...)
	if len(r) > 0 && !r[0].Equal(r[len(r)-1]) {
		r = append(r, r[0])
	}
	return r
}

// Rect returns a closed axis-aligned rectangle ring.
func Rect(minX, minY, maxX, maxY float64) orb.Ring {
	return NewRing(
		orb.Point{minX, minY},
		orb.Point{maxX, minY},
		orb.Point{maxX, maxY},
		orb.Point{minX, maxY},
	)
}

// Open returns the ring without its closing vertex.
func Open(r orb.Ring) []orb.Point {
	if len(r) > 1 && r[0].Equal(r[len(r)-1]) {
		return r[:len(r)-1]
	}
	return r
}

// Add returns p + q.
func Add(p, q orb.Point) orb.Point {
	return orb.Point{p.X() + q.X(), p.Y() + q.Y()}
}

// Sub returns p - q.
func Sub(p, q orb.Point) orb.Point {
	return orb.Point{p.X() - q.X(), p.Y() - q.Y()}
}

// Scale returns p * s.
func Scale(p orb.Point, s float64) orb.Point {
	return orb.Point{p.X() * s, p.Y() * s}
}

// Dot returns the dot product of p and q.
func Dot(p, q orb.Point) float64 {
	return p.X()*q.X() + p.Y()*q.Y()
}

// Cross returns the 2D cross product (z-component of the 3D cross).
func Cross(p, q orb.Point) float64 {
	return p.X()*q.Y() - p.Y()*q.X()
}

// Length returns the Euclidean length of the vector p.
func Length(p orb.Point) float64 {
	return math.Hypot(p.X(), p.Y())
}

// Normalize returns the unit vector in the direction of p, or the zero
// vector if p is degenerate.
func Normalize(p orb.Point) orb.Point {
	l := Length(p)
	if l < Eps {
		return orb.Point{}
	}
	return orb.Point{p.X() / l, p.Y() / l}
}

// Perp returns p rotated 90 degrees counterclockwise.
func Perp(p orb.Point) orb.Point {
	return orb.Point{-p.Y(), p.X()}
}

// Rotate returns p rotated by angle radians around the origin.
func Rotate(p orb.Point, angle float64) orb.Point {
	c, s := math.Cos(angle), math.Sin(angle)
	return orb.Point{p.X()*c - p.Y()*s, p.X()*s + p.Y()*c}
}

// Lerp returns the linear interpolation between p and q at t in [0,1].
func Lerp(p, q orb.Point, t float64) orb.Point {
	return orb.Point{
		p.X() + (q.X()-p.X())*t,
		p.Y() + (q.Y()-p.Y())*t,
	}
}

// SegmentDistance returns the distance from pt to the segment a-b.
func SegmentDistance(pt, a, b orb.Point) float64 {
	return planar.Distance(pt, NearestOnSegment(pt, a, b))
}

// NearestOnSegment returns the point on segment a-b closest to pt.
func NearestOnSegment(pt, a, b orb.Point) orb.Point {
	d := Sub(b, a)
	lenSq := Dot(d, d)
	if lenSq < Eps {
		return a
	}
	t := Dot(Sub(pt, a), d) / lenSq
	t = math.Max(0, math.Min(1, t))
	return Lerp(a, b, t)
}

// RingDistance returns the minimum distance from pt to the ring boundary.
func RingDistance(pt orb.Point, r orb.Ring) float64 {
	best := math.MaxFloat64
	for i := 0; i < len(r)-1; i++ {
		if d := SegmentDistance(pt, r[i], r[i+1]); d < best {
			best = d
		}
	}
	return best
}

// RingToRingDistance returns the minimum boundary-to-boundary distance
// between two rings. Zero if they share an edge or intersect.
func RingToRingDistance(a, b orb.Ring) float64 {
	best := math.MaxFloat64
	for i := 0; i < len(a)-1; i++ {
		for j := 0; j < len(b)-1; j++ {
			if segmentsIntersect(a[i], a[i+1], b[j], b[j+1]) {
				return 0
			}
		}
	}
	for _, p := range Open(a) {
		if d := RingDistance(p, b); d < best {
			best = d
		}
	}
	for _, p := range Open(b) {
		if d := RingDistance(p, a); d < best {
			best = d
		}
	}
	return best
}

// segmentsIntersect reports whether segments p1-p2 and p3-p4 cross.
func segmentsIntersect(p1, p2, p3, p4 orb.Point) bool {
	d1 := Cross(Sub(p4, p3), Sub(p1, p3))
	d2 := Cross(Sub(p4, p3), Sub(p2, p3))
	d3 := Cross(Sub(p2, p1), Sub(p3, p1))
	d4 := Cross(Sub(p2, p1), Sub(p4, p1))
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}
