// Package roads carves the hierarchical road skeleton out of a site
// boundary and yields the developable blocks between the roads.
package roads

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/estateforge/estateplan/pkg/config"
	"github.com/estateforge/estateplan/pkg/geom"
	"github.com/estateforge/estateplan/pkg/validation"
)

// Level is the road hierarchy level.
type Level string

const (
	LevelPerimeter Level = "perimeter"
	LevelMain      Level = "main"
	LevelSecondary Level = "secondary"
	LevelAccess    Level = "access"
)

// Segment is one routed road with its centerline and design width.
type Segment struct {
	ID    string         `json:"id"`
	Level Level          `json:"level"`
	Line  orb.LineString `json:"line"`
	Width float64        `json:"width"`
}

// Length returns the centerline length in metres.
func (s Segment) Length() float64 {
	return planar.Length(s.Line)
}

// Block is a developable area bounded by roads. Holes carry landscape
// reserves carved out of large blocks.
type Block struct {
	ID              string     `json:"id"`
	Outer           orb.Ring   `json:"outer"`
	Holes           []orb.Ring `json:"holes,omitempty"`
	Area            float64    `json:"area"`
	Centroid        orb.Point  `json:"centroid"`
	DistToEntrance  float64    `json:"dist_to_entrance"`
	TouchesBoundary bool       `json:"touches_boundary"`
}

// Polygon returns the block as an orb polygon with its holes.
func (b Block) Polygon() orb.Polygon {
	p := orb.Polygon{b.Outer}
	p = append(p, b.Holes...)
	return p
}

// Network is the generated road system plus the site-axis context the
// classifier needs downstream.
type Network struct {
	Site       orb.Ring   `json:"site"`
	Segments   []Segment  `json:"segments"`
	RoadArea   float64    `json:"road_area"`
	Entrance   orb.Point  `json:"entrance"`
	Axis       orb.Point  `json:"axis"` // unit vector, entrance toward far side
	AxisLength float64    `json:"axis_length"`
	Reserves   []orb.Ring `json:"reserves,omitempty"` // corner landscape within the verge
}

// TotalLength sums all segment centerline lengths.
func (n *Network) TotalLength() float64 {
	total := 0.0
	for _, s := range n.Segments {
		total += s.Length()
	}
	return total
}

// MainLines returns the centerlines of main-level segments.
func (n *Network) MainLines() []orb.LineString {
	var lines []orb.LineString
	for _, s := range n.Segments {
		if s.Level == LevelMain {
			lines = append(lines, s.Line)
		}
	}
	return lines
}

const (
	minBlockArea   = 500.0 // blocks below this are slivers and dropped
	secondaryDepth = 12    // recursion bound for secondary dividers
)

// Generate carves the road hierarchy into the site and returns the network
// and the resulting blocks, ordered along the entrance axis. Every returned
// geometry lies within the site boundary.
func Generate(site orb.Ring, cfg *config.Config) (*Network, []Block, *validation.Report) {
	report := validation.NewReport()
	net := &Network{Site: site}

	// Perimeter ring: the road centerline runs half a width inside the
	// boundary, the developable interior starts a full width inside.
	inner := geom.Inset(site, cfg.RoadWidth)
	if geom.IsEmpty(inner) {
		report.MarkDegraded(validation.LevelSpatial,
			"perimeter inset consumed the site; roads will overlay the boundary")
		inner = site
	} else {
		ringLine := geom.Inset(site, cfg.RoadWidth/2)
		if !geom.IsEmpty(ringLine) {
			net.Segments = append(net.Segments, Segment{
				ID:    "perimeter_ring",
				Level: LevelPerimeter,
				Line:  orb.LineString(ringLine),
				Width: cfg.RoadWidth,
			})
			net.RoadArea += geom.Area(site) - geom.Area(inner)
		}
	}

	mrr := geom.MinimumRotatedRect(inner)
	if mrr.Ring == nil {
		report.AddWarning(validation.Result{
			Level:   validation.LevelSpatial,
			Message: "site too degenerate for a road skeleton",
		})
		return net, nil, report
	}

	blocks := carveMainAndSecondary(net, inner, mrr, cfg)
	if len(blocks) == 0 {
		// Fallback: a plain two-branch orthogonal grid through the center.
		report.MarkDegraded(validation.LevelSpatial,
			"hierarchical skeleton produced no blocks; using orthogonal grid fallback")
		blocks = carveFallbackGrid(net, inner, mrr, cfg)
	}

	resolveEntrance(net, site, mrr)
	placeCornerReserves(net, site, cfg)

	out := finishBlocks(blocks, net, site, cfg)
	report.AddInfo(validation.Result{
		Level: validation.LevelSpatial,
		Message: fmt.Sprintf("road skeleton: %d segments, %.0f m total, %d blocks",
			len(net.Segments), net.TotalLength(), len(out)),
	})
	return net, out, report
}

// carveMainAndSecondary runs stages (b) and (c): orthogonal main dividers
// sized by site width, then recursive ~spacing secondary dividers.
func carveMainAndSecondary(net *Network, inner orb.Ring, mrr geom.RotatedRect, cfg *config.Config) []orb.Ring {
	axis := mrr.Axis()
	perp := geom.Perp(axis)
	half := mrr.Long/2 + mrr.Short // long enough to cross the whole site

	branchCount := cfg.SkeletonBranchCount
	if branchCount < 1 {
		branchCount = 1
	}
	if branchCount > 2 {
		branchCount = 2
	}

	// Cross dividers perpendicular to the long axis.
	var strips []geom.Strip
	stations := []float64{0}
	if branchCount == 2 && mrr.Short <= cfg.SpacingMax {
		stations = []float64{-mrr.Long / 6, mrr.Long / 6}
	}
	for _, u := range stations {
		at := geom.Add(mrr.Center, geom.Scale(axis, u))
		strips = append(strips, geom.Strip{
			A:     geom.Sub(at, geom.Scale(perp, half)),
			B:     geom.Add(at, geom.Scale(perp, half)),
			Width: cfg.RoadWidth,
		})
	}
	// A longitudinal divider when the site is wide enough for two rows.
	if branchCount == 2 && mrr.Short > cfg.SpacingMax {
		strips = append(strips, geom.Strip{
			A:     geom.Sub(mrr.Center, geom.Scale(axis, half)),
			B:     geom.Add(mrr.Center, geom.Scale(axis, half)),
			Width: cfg.RoadWidth,
		})
	}

	blocks := []orb.Ring{inner}
	for i, strip := range strips {
		blocks = applyStrip(net, blocks, strip, fmt.Sprintf("main_%02d", i+1), LevelMain)
	}

	// Secondary dividers: split any block above the spacing threshold.
	spacing := cfg.SecondarySpacing()
	threshold := spacing * spacing
	secondaryW := math.Max(cfg.RoadWidth*0.7, 6)
	idx := 0
	for depth := 0; depth < secondaryDepth; depth++ {
		split := false
		var next []orb.Ring
		for _, b := range blocks {
			bm := geom.MinimumRotatedRect(b)
			if geom.Area(b) <= threshold*1.2 || bm.Ring == nil || bm.Long < 2*cfg.MinLotWidth {
				next = append(next, b)
				continue
			}
			idx++
			strip := geom.Strip{
				A:     geom.Sub(bm.Center, geom.Scale(geom.Perp(bm.Axis()), bm.Short)),
				B:     geom.Add(bm.Center, geom.Scale(geom.Perp(bm.Axis()), bm.Short)),
				Width: secondaryW,
			}
			pieces := applyStrip(net, []orb.Ring{b}, strip, fmt.Sprintf("secondary_%02d", idx), LevelSecondary)
			next = append(next, pieces...)
			split = true
		}
		blocks = next
		if !split {
			break
		}
	}
	return blocks
}

// carveFallbackGrid is the simple two-branch orthogonal grid used when the
// hierarchical skeleton yields nothing.
func carveFallbackGrid(net *Network, inner orb.Ring, mrr geom.RotatedRect, cfg *config.Config) []orb.Ring {
	axis := mrr.Axis()
	perp := geom.Perp(axis)
	half := mrr.Long/2 + mrr.Short

	blocks := []orb.Ring{inner}
	blocks = applyStrip(net, blocks, geom.Strip{
		A:     geom.Sub(mrr.Center, geom.Scale(perp, half)),
		B:     geom.Add(mrr.Center, geom.Scale(perp, half)),
		Width: cfg.RoadWidth,
	}, "grid_cross", LevelMain)
	blocks = applyStrip(net, blocks, geom.Strip{
		A:     geom.Sub(mrr.Center, geom.Scale(axis, half)),
		B:     geom.Add(mrr.Center, geom.Scale(axis, half)),
		Width: cfg.RoadWidth,
	}, "grid_long", LevelMain)
	return blocks
}

// applyStrip subtracts a road strip from every block, records the segment,
// and accumulates the paved footprint area.
func applyStrip(net *Network, blocks []orb.Ring, strip geom.Strip, id string, level Level) []orb.Ring {
	var out []orb.Ring
	touched := false
	for _, b := range blocks {
		pieces, footprint := geom.SubtractStrip(b, strip)
		if geom.IsEmpty(footprint) {
			out = append(out, b)
			continue
		}
		net.RoadArea += geom.Area(footprint)
		touched = true
		// A block fully inside the strip is paved over and vanishes.
		out = append(out, pieces...)
	}
	if touched {
		if chord, ok := lineRingChord(strip.A, strip.B, net.Site); ok {
			net.Segments = append(net.Segments, Segment{
				ID:    id,
				Level: level,
				Line:  chord,
				Width: strip.Width,
			})
		}
	}
	return out
}

// lineRingChord clips the infinite line a→b to the ring and returns the
// chord between the outermost crossings.
func lineRingChord(a, b orb.Point, ring orb.Ring) (orb.LineString, bool) {
	dir := geom.Normalize(geom.Sub(b, a))
	if geom.Length(dir) < geom.Eps {
		return nil, false
	}
	minT, maxT := math.MaxFloat64, -math.MaxFloat64
	for i := 0; i < len(ring)-1; i++ {
		ix, ok := lineSegmentIntersection(a, dir, ring[i], ring[i+1])
		if !ok {
			continue
		}
		t := geom.Dot(geom.Sub(ix, a), dir)
		minT = math.Min(minT, t)
		maxT = math.Max(maxT, t)
	}
	if maxT-minT < 1 {
		return nil, false
	}
	return orb.LineString{
		geom.Add(a, geom.Scale(dir, minT)),
		geom.Add(a, geom.Scale(dir, maxT)),
	}, true
}

// lineSegmentIntersection intersects the infinite line (p, dir) with the
// segment q1-q2.
func lineSegmentIntersection(p, dir, q1, q2 orb.Point) (orb.Point, bool) {
	seg := geom.Sub(q2, q1)
	denom := geom.Cross(dir, seg)
	if math.Abs(denom) < 1e-12 {
		return orb.Point{}, false
	}
	diff := geom.Sub(q1, p)
	u := geom.Cross(diff, dir) / denom
	if u < 0 || u > 1 {
		return orb.Point{}, false
	}
	return geom.Lerp(q1, q2, u), true
}

// resolveEntrance picks the entrance point: where the first main divider
// meets the boundary, or the nearest boundary point to the skeleton center.
func resolveEntrance(net *Network, site orb.Ring, mrr geom.RotatedRect) {
	var anchor orb.Point
	found := false
	for _, s := range net.Segments {
		if s.Level == LevelMain && len(s.Line) > 0 {
			anchor = s.Line[0]
			found = true
			break
		}
	}
	if !found {
		anchor = mrr.Center
	}

	entrance := anchor
	best := math.MaxFloat64
	for i := 0; i < len(site)-1; i++ {
		p := geom.NearestOnSegment(anchor, site[i], site[i+1])
		if d := planar.Distance(anchor, p); d < best {
			best = d
			entrance = p
		}
	}
	net.Entrance = entrance

	far := entrance
	maxD := 0.0
	for _, v := range geom.Open(site) {
		if d := planar.Distance(entrance, v); d > maxD {
			maxD = d
			far = v
		}
	}
	net.Axis = geom.Normalize(geom.Sub(far, entrance))
	net.AxisLength = maxD
}

// placeCornerReserves drops small landscape squares on sharp boundary
// vertices, clipped to the site. They occupy the perimeter verge, not
// block land. Centroid reserves for large blocks are carved as holes in
// finishBlocks.
func placeCornerReserves(net *Network, site orb.Ring, cfg *config.Config) {
	side := cfg.RoadWidth * 1.5
	pts := geom.Open(site)
	count := 0
	for i := 0; i < len(pts) && count < 4; i++ {
		prev := pts[(i+len(pts)-1)%len(pts)]
		next := pts[(i+1)%len(pts)]
		v := pts[i]
		a := geom.Normalize(geom.Sub(prev, v))
		b := geom.Normalize(geom.Sub(next, v))
		// Sharp-ish corner: interior angle under ~120 degrees.
		if geom.Dot(a, b) < -0.5 {
			continue
		}
		square := geom.Rect(v.X()-side/2, v.Y()-side/2, v.X()+side/2, v.Y()+side/2)
		reserve := geom.ClipToConvex(site, square)
		if !geom.IsEmpty(reserve) && geom.Area(reserve) > 20 {
			net.Reserves = append(net.Reserves, reserve)
			count++
		}
	}
}

// finishBlocks drops slivers, carves centroid landscape holes in large
// blocks, orders blocks along the entrance axis, and fills attributes.
func finishBlocks(rings []orb.Ring, net *Network, site orb.Ring, cfg *config.Config) []Block {
	spacing := cfg.SecondarySpacing()
	largeArea := 2 * spacing * spacing

	var kept []orb.Ring
	for _, r := range rings {
		if geom.Area(r) >= minBlockArea {
			kept = append(kept, r)
		}
	}

	// Deterministic order: distance along the entrance axis, then across it.
	sort.SliceStable(kept, func(i, j int) bool {
		ci, cj := geom.Centroid(kept[i]), geom.Centroid(kept[j])
		ui := geom.Dot(geom.Sub(ci, net.Entrance), net.Axis)
		uj := geom.Dot(geom.Sub(cj, net.Entrance), net.Axis)
		if math.Abs(ui-uj) > 1 {
			return ui < uj
		}
		return geom.Cross(net.Axis, geom.Sub(ci, net.Entrance)) < geom.Cross(net.Axis, geom.Sub(cj, net.Entrance))
	})

	blocks := make([]Block, 0, len(kept))
	for i, r := range kept {
		c := geom.Centroid(r)
		b := Block{
			ID:              fmt.Sprintf("block_%02d", i+1),
			Outer:           r,
			Centroid:        c,
			DistToEntrance:  planar.Distance(c, net.Entrance),
			TouchesBoundary: geom.RingToRingDistance(r, site) < cfg.RoadWidth*1.5,
		}
		if area := geom.Area(r); area > largeArea {
			side := math.Sqrt(area) * 0.12
			square := geom.Rect(c.X()-side/2, c.Y()-side/2, c.X()+side/2, c.Y()+side/2)
			hole := geom.ClipToConvex(r, square)
			if !geom.IsEmpty(hole) {
				b.Holes = append(b.Holes, hole)
			}
		}
		b.Area = geom.PolygonArea(b.Polygon())
		blocks = append(blocks, b)
	}
	return blocks
}
