package geom

import (
	"math"

	"github.com/paulmach/orb"
)

// ClipToConvex clips the subject ring to a convex clip ring using the
// Sutherland-Hodgman algorithm. Returns the intersection as a closed ring,
// or an empty ring when nothing remains. The clipper must be convex; the
// subject may be any simple ring.
func ClipToConvex(subject, clipper orb.Ring) orb.Ring {
	if IsEmpty(subject) || IsEmpty(clipper) {
		return nil
	}
	clipper = EnsureCCW(clipper)

	output := append([]orb.Point(nil), Open(subject)...)
	clip := Open(clipper)

	for i := 0; i < len(clip); i++ {
		if len(output) == 0 {
			return nil
		}
		edgeStart := clip[i]
		edgeEnd := clip[(i+1)%len(clip)]
		output = clipAgainstEdge(output, edgeStart, edgeEnd)
	}
	if len(output) < 3 {
		return nil
	}
	return NewRing(output...)
}

// ClipHalfPlane keeps the part of the ring on the left of the directed
// line a→b. The result may include zero-width bridges for strongly concave
// subjects; block geometry in this planner stays near-convex.
func ClipHalfPlane(subject orb.Ring, a, b orb.Point) orb.Ring {
	if IsEmpty(subject) {
		return nil
	}
	out := clipAgainstEdge(Open(subject), a, b)
	if len(out) < 3 {
		return nil
	}
	r := NewRing(out...)
	if Area(r) < Eps {
		return nil
	}
	return r
}

// SplitByLine cuts the ring with the infinite line a→b and returns the
// pieces on the left and right of the line. Either piece may be empty.
func SplitByLine(subject orb.Ring, a, b orb.Point) (left, right orb.Ring) {
	left = ClipHalfPlane(subject, a, b)
	right = ClipHalfPlane(subject, b, a)
	return left, right
}

// Strip describes an infinite road strip: a center line with a width.
type Strip struct {
	A, B  orb.Point
	Width float64
}

// Sides returns the two boundary lines of the strip. Each is given as a
// point pair oriented so that the strip interior is to its right.
func (s Strip) Sides() (l1a, l1b, l2a, l2b orb.Point) {
	n := Scale(Perp(Normalize(Sub(s.B, s.A))), s.Width/2)
	l1a, l1b = Add(s.A, n), Add(s.B, n)
	l2a, l2b = Sub(s.A, n), Sub(s.B, n)
	return
}

// SubtractStrip removes the strip from the ring, returning the pieces on
// either side. Footprint is the part of the ring covered by the strip.
func SubtractStrip(subject orb.Ring, s Strip) (pieces []orb.Ring, footprint orb.Ring) {
	l1a, l1b, l2a, l2b := s.Sides()

	// Left of line 1 (outside the strip on one side).
	if p := ClipHalfPlane(subject, l1a, l1b); !IsEmpty(p) {
		pieces = append(pieces, p)
	}
	// Right of line 2, expressed as left of the reversed line.
	if p := ClipHalfPlane(subject, l2b, l2a); !IsEmpty(p) {
		pieces = append(pieces, p)
	}

	// Footprint: inside both strip half-planes.
	mid := ClipHalfPlane(subject, l1b, l1a)
	if !IsEmpty(mid) {
		footprint = ClipHalfPlane(mid, l2a, l2b)
	}
	return pieces, footprint
}

// Inset shrinks the ring inward by d metres using mitred edge offsets.
// Works reliably for convex and mildly concave boundaries. Returns an
// empty ring when the inset consumes the whole shape.
func Inset(r orb.Ring, d float64) orb.Ring {
	if IsEmpty(r) || d <= 0 {
		return r
	}
	src := Open(EnsureCCW(r))
	n := len(src)
	if n < 3 {
		return nil
	}

	// Offset each edge inward: for a CCW ring the interior is to the left,
	// so the inward normal is the left-hand perpendicular of the edge.
	type line struct{ a, b orb.Point }
	lines := make([]line, n)
	for i := 0; i < n; i++ {
		p, q := src[i], src[(i+1)%n]
		normal := Scale(Perp(Normalize(Sub(q, p))), d)
		lines[i] = line{Add(p, normal), Add(q, normal)}
	}

	out := make([]orb.Point, 0, n)
	for i := 0; i < n; i++ {
		prev := lines[(i+n-1)%n]
		curr := lines[i]
		ix, ok := lineIntersection(prev.a, prev.b, curr.a, curr.b)
		if !ok {
			ix = curr.a
		}
		out = append(out, ix)
	}

	inset := NewRing(out...)
	if SignedArea(inset) < Eps || Area(inset) >= Area(r) {
		return nil
	}
	// An over-deep inset inverts: opposing offsets cross over and at least
	// one offset edge runs against its source edge.
	for i := 0; i < n; i++ {
		srcDir := Sub(src[(i+1)%n], src[i])
		insDir := Sub(out[(i+1)%n], out[i])
		if Dot(srcDir, insDir) <= 0 {
			return nil
		}
	}
	// A collapsed inset folds over itself; reject when vertices left the shape.
	for _, p := range out {
		if !Contains(r, p) && RingDistance(p, r) > d*0.5 {
			return nil
		}
	}
	return inset
}

// clipAgainstEdge keeps the points on the left of the directed edge.
func clipAgainstEdge(input []orb.Point, edgeStart, edgeEnd orb.Point) []orb.Point {
	output := make([]orb.Point, 0, len(input))
	for j := 0; j < len(input); j++ {
		current := input[j]
		next := input[(j+1)%len(input)]
		curInside := isLeftOf(current, edgeStart, edgeEnd)
		nextInside := isLeftOf(next, edgeStart, edgeEnd)

		switch {
		case curInside && nextInside:
			output = append(output, next)
		case curInside && !nextInside:
			if ix, ok := lineIntersection(current, next, edgeStart, edgeEnd); ok {
				output = append(output, ix)
			}
		case !curInside && nextInside:
			if ix, ok := lineIntersection(current, next, edgeStart, edgeEnd); ok {
				output = append(output, ix)
			}
			output = append(output, next)
		}
	}
	return output
}

// isLeftOf reports whether p lies on or left of the directed line a→b.
func isLeftOf(p, a, b orb.Point) bool {
	return (b.X()-a.X())*(p.Y()-a.Y())-(b.Y()-a.Y())*(p.X()-a.X()) >= 0
}

// lineIntersection returns the intersection of the infinite lines p1→p2
// and p3→p4.
func lineIntersection(p1, p2, p3, p4 orb.Point) (orb.Point, bool) {
	d := (p1.X()-p2.X())*(p3.Y()-p4.Y()) - (p1.Y()-p2.Y())*(p3.X()-p4.X())
	if math.Abs(d) < 1e-12 {
		return orb.Point{}, false
	}
	t := ((p1.X()-p3.X())*(p3.Y()-p4.Y()) - (p1.Y()-p3.Y())*(p3.X()-p4.X())) / d
	return Lerp(p1, p2, t), true
}
