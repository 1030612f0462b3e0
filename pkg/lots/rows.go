package lots

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/estateforge/estateplan/pkg/config"
	"github.com/estateforge/estateplan/pkg/geom"
	"github.com/estateforge/estateplan/pkg/validation"
	"github.com/estateforge/estateplan/pkg/zoning"
)

// accessRoadWidth separates parallel lot rows inside a block.
const accessRoadWidth = 8.0

// RowPacker lays parallel rows of uniform-depth lots along the block's
// longer bounding dimension, separated by internal access roads. Edge rows
// touch the block boundary; interior rows are bounded by access roads on
// both sides.
type RowPacker struct{}

// Name implements Strategy.
func (p *RowPacker) Name() string { return "rows" }

// Subdivide implements Strategy.
func (p *RowPacker) Subdivide(block zoning.ZonedBlock, cfg *config.Config) (Result, *validation.Report) {
	report := validation.NewReport()
	var res Result

	mrr := geom.MinimumRotatedRect(block.Outer)
	if mrr.Ring == nil || mrr.Short < cfg.MinLotWidth {
		report.AddWarning(validation.Result{
			Level:   validation.LevelSpatial,
			Message: fmt.Sprintf("%s: too narrow for row subdivision", block.ID),
		})
		return res, report
	}

	dims := dimsFor(block.Zone)
	w := clampWidth(cfg, dims)
	depth := dims.D
	if depth > mrr.Short {
		depth = mrr.Short
	}

	axis := mrr.Axis()
	perp := geom.Perp(axis)
	// Local frame: u along the row direction, v across rows, both measured
	// from the rectangle center.
	minU, maxU := -mrr.Long/2, mrr.Long/2
	minV, maxV := -mrr.Short/2, mrr.Short/2

	toWorld := func(u, v float64) orb.Point {
		return geom.Add(mrr.Center, geom.Add(geom.Scale(axis, u), geom.Scale(perp, v)))
	}

	lotIdx := 0
	v := minV
	for v+depth <= maxV+geom.Eps {
		vTop := v + depth
		another := vTop+accessRoadWidth+depth <= maxV
		if !another && maxV-vTop < depth*0.5 {
			// Final row stretches to touch the far block edge.
			vTop = maxV
		}

		rowLots := p.packRow(block, cfg, toWorld, minU, maxU, v, vTop, w, &lotIdx)
		res.Lots = append(res.Lots, rowLots...)

		if !another {
			break
		}
		// Access road above this row serves it and the next one.
		mid := vTop + accessRoadWidth/2
		res.AccessLines = append(res.AccessLines, orb.LineString{
			toWorld(minU, mid), toWorld(maxU, mid),
		})
		v = vTop + accessRoadWidth
	}

	if len(res.Lots) == 0 {
		report.AddWarning(validation.Result{
			Level:   validation.LevelSpatial,
			Message: fmt.Sprintf("%s: row packing produced no lots", block.ID),
		})
	}
	return res, report
}

// packRow fills one row between v bounds with equal-width lots, clipping
// each to the block and dropping remainders under the area floor. The
// count is the nominal width rounded into the run, then nudged so the
// resulting width stays inside the zone's band.
func (p *RowPacker) packRow(block zoning.ZonedBlock, cfg *config.Config,
	toWorld func(u, v float64) orb.Point, minU, maxU, vLow, vHigh, w float64, lotIdx *int) []Lot {

	var out []Lot
	run := maxU - minU
	count := int(math.Round(run / w))
	if count < 1 {
		count = 1
	}
	lo, hi := widthBand(cfg, dimsFor(block.Zone))
	width := run / float64(count)
	for width > hi+geom.Eps {
		count++
		width = run / float64(count)
	}
	if count > 1 && width < lo && run/float64(count-1) <= hi+geom.Eps {
		count--
		width = run / float64(count)
	}

	for i := 0; i < count; i++ {
		u0 := minU + float64(i)*width
		u1 := u0 + width
		if i == count-1 {
			u1 = maxU // close the row exactly
		}

		rect := geom.NewRing(
			toWorld(u0, vLow), toWorld(u1, vLow),
			toWorld(u1, vHigh), toWorld(u0, vHigh),
		)
		clipped := geom.ClipToConvex(block.Outer, rect)
		if geom.IsEmpty(clipped) {
			continue
		}
		area := geom.Area(clipped)
		if area < minLotArea {
			continue
		}
		center := geom.Centroid(clipped)
		inHole := false
		for _, h := range block.Holes {
			if geom.Contains(h, center) {
				inHole = true
				break
			}
		}
		if inHole {
			continue
		}

		*lotIdx++
		out = append(out, Lot{
			ID:            fmt.Sprintf("%s_lot_%02d", block.ID, *lotIdx),
			BlockID:       block.ID,
			Ring:          clipped,
			Zone:          block.Zone,
			Width:         u1 - u0,
			Depth:         vHigh - vLow,
			Area:          area,
			Frontage:      u1 - u0,
			HasRoadAccess: true,
			Corner:        i == 0 || i == count-1,
		})
	}
	return out
}
