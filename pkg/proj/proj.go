// Package proj normalizes input coordinates into a local metric frame.
// Geographic input (degrees) is projected with a local equirectangular
// projection about the site centroid; planar input passes through
// unchanged. The projection is reversible so results can be returned in
// the caller's coordinate system.
package proj

import (
	"math"

	"github.com/paulmach/orb"
)

// metresPerDegree is the metric length of one degree of latitude.
const metresPerDegree = 111320.0

// Frame is a reversible mapping between input coordinates and the local
// metric working frame.
type Frame struct {
	geographic bool
	originLon  float64
	originLat  float64
	cosLat     float64
}

// Geographic reports whether the input was detected as lon/lat degrees.
func (f *Frame) Geographic() bool {
	return f.geographic
}

// LooksGeographic reports whether every vertex fits in the lon/lat value
// range. Metre-scale planar sites exceed it immediately, so range checking
// is a reliable discriminator for real survey data.
func LooksGeographic(rings []orb.Ring) bool {
	seen := false
	for _, r := range rings {
		for _, p := range r {
			seen = true
			if math.Abs(p.X()) > 180 || math.Abs(p.Y()) > 90 {
				return false
			}
		}
	}
	return seen
}

// NewFrame builds the working frame for the given parcels, anchored at
// the mean vertex of all rings.
func NewFrame(rings []orb.Ring) *Frame {
	if !LooksGeographic(rings) {
		return &Frame{}
	}

	var sumLon, sumLat float64
	count := 0
	for _, r := range rings {
		for _, p := range r {
			sumLon += p.X()
			sumLat += p.Y()
			count++
		}
	}
	lat := sumLat / float64(count)
	return &Frame{
		geographic: true,
		originLon:  sumLon / float64(count),
		originLat:  lat,
		cosLat:     math.Cos(lat * math.Pi / 180),
	}
}

// ToLocal converts an input point into the metric frame.
func (f *Frame) ToLocal(p orb.Point) orb.Point {
	if !f.geographic {
		return p
	}
	return orb.Point{
		(p.X() - f.originLon) * metresPerDegree * f.cosLat,
		(p.Y() - f.originLat) * metresPerDegree,
	}
}

// ToInput converts a metric point back into the input coordinate system.
func (f *Frame) ToInput(p orb.Point) orb.Point {
	if !f.geographic {
		return p
	}
	return orb.Point{
		p.X()/(metresPerDegree*f.cosLat) + f.originLon,
		p.Y()/metresPerDegree + f.originLat,
	}
}

// RingToLocal converts a ring into the metric frame.
func (f *Frame) RingToLocal(r orb.Ring) orb.Ring {
	if !f.geographic {
		return r
	}
	out := make(orb.Ring, len(r))
	for i, p := range r {
		out[i] = f.ToLocal(p)
	}
	return out
}

// RingToInput converts a ring back into the input coordinate system.
func (f *Frame) RingToInput(r orb.Ring) orb.Ring {
	if !f.geographic {
		return r
	}
	out := make(orb.Ring, len(r))
	for i, p := range r {
		out[i] = f.ToInput(p)
	}
	return out
}

// PolygonToInput converts a polygon back into the input coordinate system.
func (f *Frame) PolygonToInput(p orb.Polygon) orb.Polygon {
	if !f.geographic {
		return p
	}
	out := make(orb.Polygon, len(p))
	for i, r := range p {
		out[i] = f.RingToInput(r)
	}
	return out
}

// LineToInput converts a line string back into the input coordinate system.
func (f *Frame) LineToInput(ls orb.LineString) orb.LineString {
	if !f.geographic {
		return ls
	}
	out := make(orb.LineString, len(ls))
	for i, p := range ls {
		out[i] = f.ToInput(p)
	}
	return out
}
