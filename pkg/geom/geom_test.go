package geom

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(size float64) orb.Ring {
	return Rect(0, 0, size, size)
}

func TestAreaAndCentroid(t *testing.T) {
	r := Rect(0, 0, 100, 50)
	assert.InDelta(t, 5000, Area(r), 1e-9)

	c := Centroid(r)
	assert.InDelta(t, 50, c.X(), 1e-9)
	assert.InDelta(t, 25, c.Y(), 1e-9)
}

func TestSignedAreaOrientation(t *testing.T) {
	ccw := square(10)
	cw := Reverse(ccw)

	assert.Positive(t, SignedArea(ccw))
	assert.Negative(t, SignedArea(cw))
	assert.Positive(t, SignedArea(EnsureCCW(cw)))
}

func TestContains(t *testing.T) {
	r := square(100)
	assert.True(t, Contains(r, orb.Point{50, 50}))
	assert.False(t, Contains(r, orb.Point{150, 50}))
}

func TestClipToConvex(t *testing.T) {
	tests := []struct {
		name     string
		subject  orb.Ring
		clipper  orb.Ring
		wantArea float64
	}{
		{"full overlap", square(10), square(10), 100},
		{"half overlap", Rect(0, 0, 10, 10), Rect(5, 0, 15, 10), 50},
		{"disjoint", Rect(0, 0, 10, 10), Rect(20, 0, 30, 10), 0},
		{"contained", Rect(2, 2, 4, 4), square(10), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClipToConvex(tt.subject, tt.clipper)
			assert.InDelta(t, tt.wantArea, Area(got), 1e-6)
		})
	}
}

func TestSplitByLine(t *testing.T) {
	r := Rect(0, 0, 10, 10)
	left, right := SplitByLine(r, orb.Point{5, -1}, orb.Point{5, 11})

	require.False(t, IsEmpty(left))
	require.False(t, IsEmpty(right))
	assert.InDelta(t, 50, Area(left), 1e-6)
	assert.InDelta(t, 50, Area(right), 1e-6)
	assert.InDelta(t, Area(r), Area(left)+Area(right), 1e-6)
}

func TestSubtractStrip(t *testing.T) {
	r := Rect(0, 0, 100, 100)
	strip := Strip{A: orb.Point{50, -10}, B: orb.Point{50, 110}, Width: 10}

	pieces, footprint := SubtractStrip(r, strip)
	require.Len(t, pieces, 2)
	assert.InDelta(t, 1000, Area(footprint), 1e-6)
	assert.InDelta(t, 4500, Area(pieces[0]), 1e-6)
	assert.InDelta(t, 4500, Area(pieces[1]), 1e-6)
}

func TestInset(t *testing.T) {
	r := Rect(0, 0, 100, 100)
	inner := Inset(r, 10)

	require.False(t, IsEmpty(inner))
	assert.InDelta(t, 6400, Area(inner), 1e-6)
	for _, p := range inner {
		assert.True(t, Contains(r, p), "inset vertex %v escaped the ring", p)
	}

	// Inset deeper than the half-width collapses the ring.
	assert.True(t, IsEmpty(Inset(Rect(0, 0, 10, 10), 6)))
}

func TestConvexHull(t *testing.T) {
	pts := []orb.Point{
		{0, 0}, {10, 0}, {10, 10}, {0, 10},
		{5, 5}, {3, 7}, // interior points must vanish
	}
	hull := ConvexHull(pts)
	require.NotNil(t, hull)
	assert.InDelta(t, 100, Area(hull), 1e-9)
	assert.Len(t, Open(hull), 4)
}

func TestMinimumRotatedRect(t *testing.T) {
	// A 40x20 rectangle rotated 30 degrees keeps its dims in the MRR.
	base := Rect(0, 0, 40, 20)
	rot := make(orb.Ring, len(base))
	for i, p := range base {
		rot[i] = Rotate(p, math.Pi/6)
	}

	mrr := MinimumRotatedRect(rot)
	require.NotNil(t, mrr.Ring)
	assert.InDelta(t, 40, mrr.Long, 1e-6)
	assert.InDelta(t, 20, mrr.Short, 1e-6)
	assert.InDelta(t, 2.0, mrr.Aspect(), 1e-6)
}

func TestRepairBowtie(t *testing.T) {
	// Self-intersecting hourglass; repair keeps the larger loop.
	bowtie := orb.Ring{
		{0, 0}, {10, 0}, {0, 10}, {10, 10}, {0, 0},
	}
	fixed, err := Repair(bowtie)
	require.NoError(t, err)
	assert.Positive(t, SignedArea(fixed))

	for i := 0; i < len(fixed)-1; i++ {
		for j := i + 2; j < len(fixed)-1; j++ {
			if i == 0 && j == len(fixed)-2 {
				continue
			}
			assert.False(t,
				segmentsIntersect(fixed[i], fixed[i+1], fixed[j], fixed[j+1]),
				"repaired ring still self-intersects at %d/%d", i, j)
		}
	}
}

func TestRepairDegenerate(t *testing.T) {
	_, err := Repair(orb.Ring{{0, 0}, {1, 1}, {0, 0}})
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestRingToRingDistance(t *testing.T) {
	a := Rect(0, 0, 10, 10)
	b := Rect(15, 0, 25, 10)
	c := Rect(10, 0, 20, 10) // shares an edge with a

	assert.InDelta(t, 5, RingToRingDistance(a, b), 1e-9)
	assert.InDelta(t, 0, RingToRingDistance(a, c), 1e-9)
}

func TestCoverageRatio(t *testing.T) {
	inner := Rect(10, 10, 90, 90)
	outer := Rect(0, 0, 100, 100)

	assert.InDelta(t, 1.0, CoverageRatio(inner, outer), 0.01)
	assert.Less(t, CoverageRatio(outer, inner), 0.75)
}
