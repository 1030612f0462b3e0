package geom

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// ConvexHull returns the convex hull of the ring's vertices as a closed
// CCW ring, using the monotone chain algorithm.
func ConvexHull(pts []orb.Point) orb.Ring {
	if len(pts) < 3 {
		return nil
	}
	sorted := append([]orb.Point(nil), pts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X() != sorted[j].X() {
			return sorted[i].X() < sorted[j].X()
		}
		return sorted[i].Y() < sorted[j].Y()
	})

	var lower, upper []orb.Point
	for _, p := range sorted {
		for len(lower) >= 2 && Cross(Sub(lower[len(lower)-1], lower[len(lower)-2]), Sub(p, lower[len(lower)-2])) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && Cross(Sub(upper[len(upper)-1], upper[len(upper)-2]), Sub(p, upper[len(upper)-2])) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	if len(hull) < 3 {
		return nil
	}
	return NewRing(hull...)
}

// RotatedRect is a minimum-area oriented bounding rectangle.
type RotatedRect struct {
	Ring   orb.Ring // closed rectangle ring
	Center orb.Point
	Angle  float64 // rotation of the long axis from +X, radians
	Long   float64 // longer side length
	Short  float64 // shorter side length
}

// Axis returns the unit vector along the rectangle's long side.
func (rr RotatedRect) Axis() orb.Point {
	return orb.Point{math.Cos(rr.Angle), math.Sin(rr.Angle)}
}

// Aspect returns long/short, or 0 for a degenerate rectangle.
func (rr RotatedRect) Aspect() float64 {
	if rr.Short < Eps {
		return 0
	}
	return rr.Long / rr.Short
}

// Area returns the rectangle area.
func (rr RotatedRect) Area() float64 {
	return rr.Long * rr.Short
}

// MinimumRotatedRect computes the minimum-area oriented bounding rectangle
// of a ring via rotating calipers over its convex hull edges.
func MinimumRotatedRect(r orb.Ring) RotatedRect {
	hull := ConvexHull(Open(r))
	if hull == nil {
		return RotatedRect{}
	}
	pts := Open(hull)

	best := RotatedRect{Long: math.MaxFloat64, Short: math.MaxFloat64}
	bestArea := math.MaxFloat64

	for i := 0; i < len(pts); i++ {
		edge := Sub(pts[(i+1)%len(pts)], pts[i])
		angle := math.Atan2(edge.Y(), edge.X())

		minU, maxU := math.MaxFloat64, -math.MaxFloat64
		minV, maxV := math.MaxFloat64, -math.MaxFloat64
		for _, p := range pts {
			q := Rotate(p, -angle)
			minU = math.Min(minU, q.X())
			maxU = math.Max(maxU, q.X())
			minV = math.Min(minV, q.Y())
			maxV = math.Max(maxV, q.Y())
		}

		w, h := maxU-minU, maxV-minV
		area := w * h
		if area >= bestArea {
			continue
		}
		bestArea = area

		corners := []orb.Point{
			Rotate(orb.Point{minU, minV}, angle),
			Rotate(orb.Point{maxU, minV}, angle),
			Rotate(orb.Point{maxU, maxV}, angle),
			Rotate(orb.Point{minU, maxV}, angle),
		}
		long, short := w, h
		rectAngle := angle
		if h > w {
			long, short = h, w
			rectAngle = angle + math.Pi/2
		}
		// Normalize to (-π/2, π/2].
		for rectAngle > math.Pi/2 {
			rectAngle -= math.Pi
		}
		for rectAngle <= -math.Pi/2 {
			rectAngle += math.Pi
		}

		best = RotatedRect{
			Ring:   NewRing(corners...),
			Center: Rotate(orb.Point{(minU + maxU) / 2, (minV + maxV) / 2}, angle),
			Angle:  rectAngle,
			Long:   long,
			Short:  short,
		}
	}
	return best
}
