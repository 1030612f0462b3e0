package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// SignedArea returns the shoelace area of a closed ring. Positive for
// counterclockwise winding, negative for clockwise.
func SignedArea(r orb.Ring) float64 {
	if len(r) < 4 {
		return 0
	}
	area := 0.0
	for i := 0; i < len(r)-1; i++ {
		area += r[i].X() * r[i+1].Y()
		area -= r[i+1].X() * r[i].Y()
	}
	return area / 2
}

// Area returns the unsigned area of a closed ring.
func Area(r orb.Ring) float64 {
	return math.Abs(SignedArea(r))
}

// PolygonArea returns the area of a polygon with its holes subtracted.
func PolygonArea(p orb.Polygon) float64 {
	if len(p) == 0 {
		return 0
	}
	area := Area(p[0])
	for _, hole := range p[1:] {
		area -= Area(hole)
	}
	return area
}

// Centroid returns the area centroid of a closed ring. Degenerate rings
// fall back to the vertex average.
func Centroid(r orb.Ring) orb.Point {
	pts := Open(r)
	if len(pts) == 0 {
		return orb.Point{}
	}
	if math.Abs(SignedArea(r)) < Eps {
		sum := orb.Point{}
		for _, p := range pts {
			sum = Add(sum, p)
		}
		return Scale(sum, 1/float64(len(pts)))
	}
	c, _ := planar.CentroidArea(r)
	return c
}

// Perimeter returns the boundary length of a closed ring.
func Perimeter(r orb.Ring) float64 {
	return planar.Length(r)
}

// Contains reports whether the point lies inside the ring.
func Contains(r orb.Ring, pt orb.Point) bool {
	if len(r) < 4 {
		return false
	}
	return planar.RingContains(r, pt)
}

// PolygonContains reports whether the point lies inside the polygon
// and outside all of its holes.
func PolygonContains(p orb.Polygon, pt orb.Point) bool {
	if len(p) == 0 {
		return false
	}
	return planar.PolygonContains(p, pt)
}

// EnsureCCW returns the ring with vertices in counterclockwise order.
func EnsureCCW(r orb.Ring) orb.Ring {
	if SignedArea(r) < 0 {
		return Reverse(r)
	}
	return r
}

// Reverse returns the ring with its vertex order reversed.
func Reverse(r orb.Ring) orb.Ring {
	rev := make(orb.Ring, len(r))
	for i, p := range r {
		rev[len(r)-1-i] = p
	}
	return rev
}

// IsEmpty reports whether the ring has too few vertices to bound an area.
func IsEmpty(r orb.Ring) bool {
	return len(r) < 4 || Area(r) < Eps
}

// CoverageRatio returns how much of ring a lies within ring b, estimated by
// sampling a's interior on a grid. Used for containment checks at the
// metre scale where exact boolean areas are not needed.
func CoverageRatio(a, b orb.Ring) float64 {
	if IsEmpty(a) {
		return 0
	}
	bound := a.Bound()
	const n = 20
	stepX := (bound.Max.X() - bound.Min.X()) / n
	stepY := (bound.Max.Y() - bound.Min.Y()) / n
	if stepX < Eps || stepY < Eps {
		return 0
	}
	inside, covered := 0, 0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			pt := orb.Point{
				bound.Min.X() + (float64(i)+0.5)*stepX,
				bound.Min.Y() + (float64(j)+0.5)*stepY,
			}
			if !Contains(a, pt) {
				continue
			}
			inside++
			if Contains(b, pt) {
				covered++
			}
		}
	}
	if inside == 0 {
		return 0
	}
	return float64(covered) / float64(inside)
}

// OverlapArea estimates the intersection area of two rings by sampling.
// Accurate to a few percent at the metre scale.
func OverlapArea(a, b orb.Ring) float64 {
	if IsEmpty(a) || IsEmpty(b) {
		return 0
	}
	if !a.Bound().Intersects(b.Bound()) {
		return 0
	}
	return Area(a) * CoverageRatio(a, b)
}
