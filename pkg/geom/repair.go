package geom

import (
	"errors"

	"github.com/paulmach/orb"
)

// ErrDegenerate indicates a ring that cannot be repaired into a simple
// polygon with positive area.
var ErrDegenerate = errors.New("geom: degenerate ring")

// Repair normalizes an input ring the way a zero-width buffer would:
// duplicate and collinear vertices are dropped, the ring is closed and
// oriented CCW, and bowtie self-intersections are resolved by keeping the
// largest simple loop. Returns ErrDegenerate when no valid polygon remains.
func Repair(r orb.Ring) (orb.Ring, error) {
	pts := dedupe(Open(r))
	if len(pts) < 3 {
		return nil, ErrDegenerate
	}

	// Resolve self-intersections one crossing at a time. Each pass keeps
	// the larger of the two loops created by the crossing.
	for iter := 0; iter < 8; iter++ {
		i, j, ix, found := firstCrossing(pts)
		if !found {
			break
		}
		loopA := append([]orb.Point{}, pts[i+1:j+1]...)
		loopA = append(loopA, ix)
		loopB := append([]orb.Point{}, pts[j+1:]...)
		loopB = append(loopB, pts[:i+1]...)
		loopB = append(loopB, ix)

		if Area(NewRing(loopA...)) >= Area(NewRing(loopB...)) {
			pts = dedupe(loopA)
		} else {
			pts = dedupe(loopB)
		}
		if len(pts) < 3 {
			return nil, ErrDegenerate
		}
	}

	ring := EnsureCCW(NewRing(pts...))
	if IsEmpty(ring) {
		return nil, ErrDegenerate
	}
	return ring, nil
}

// dedupe removes consecutive vertices closer than 1 cm.
func dedupe(pts []orb.Point) []orb.Point {
	const tol = 0.01
	out := make([]orb.Point, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 {
			last := out[len(out)-1]
			if Length(Sub(p, last)) < tol {
				continue
			}
		}
		out = append(out, p)
	}
	// First and last may also coincide.
	for len(out) > 1 && Length(Sub(out[0], out[len(out)-1])) < tol {
		out = out[:len(out)-1]
	}
	return out
}

// firstCrossing finds the first pair of non-adjacent crossing edges
// (i, i+1) and (j, j+1) with i < j, and their intersection point.
func firstCrossing(pts []orb.Point) (int, int, orb.Point, bool) {
	n := len(pts)
	for i := 0; i < n; i++ {
		a1, a2 := pts[i], pts[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // adjacent through the wrap
			}
			b1, b2 := pts[j], pts[(j+1)%n]
			if !segmentsIntersect(a1, a2, b1, b2) {
				continue
			}
			if ix, ok := lineIntersection(a1, a2, b1, b2); ok {
				return i, j, ix, true
			}
		}
	}
	return 0, 0, orb.Point{}, false
}
