package lots

import (
	"fmt"
	"math"
	"time"

	"github.com/paulmach/orb"

	"github.com/estateforge/estateplan/pkg/config"
	"github.com/estateforge/estateplan/pkg/geom"
	"github.com/estateforge/estateplan/pkg/validation"
	"github.com/estateforge/estateplan/pkg/zoning"
)

// cornerPremium widens the first and last segment of a frontage run:
// corner lots carry a size premium in estate practice.
const cornerPremium = 1.15

// FrontageAllocator partitions a block's frontage length into lot widths
// inside [min_width, max_width], minimizing deviation from the target
// width. It searches under a wall-clock budget and falls back to uniform
// partitioning when no feasible assignment is found in time.
type FrontageAllocator struct {
	Budget time.Duration
}

// Name implements Strategy.
func (a *FrontageAllocator) Name() string { return "frontage" }

// Subdivide implements Strategy.
func (a *FrontageAllocator) Subdivide(block zoning.ZonedBlock, cfg *config.Config) (Result, *validation.Report) {
	report := validation.NewReport()
	var res Result

	mrr := geom.MinimumRotatedRect(block.Outer)
	if mrr.Ring == nil || mrr.Long < cfg.MinLotWidth {
		report.AddWarning(validation.Result{
			Level:   validation.LevelSpatial,
			Message: fmt.Sprintf("%s: frontage too short to allocate", block.ID),
		})
		return res, report
	}

	widths, degraded := a.Allocate(mrr.Long, cfg)
	if len(widths) == 0 {
		report.AddWarning(validation.Result{
			Level:   validation.LevelSpatial,
			Message: fmt.Sprintf("%s: frontage allocation infeasible", block.ID),
		})
		return res, report
	}
	if degraded {
		report.MarkDegraded(validation.LevelSpatial,
			fmt.Sprintf("%s: frontage solver fell back to uniform partitioning", block.ID))
	}

	dims := dimsFor(block.Zone)
	depthRatio := dims.D / dims.W
	axis := mrr.Axis()
	perp := geom.Perp(axis)
	toWorld := func(u, v float64) orb.Point {
		return geom.Add(mrr.Center, geom.Add(geom.Scale(axis, u), geom.Scale(perp, v)))
	}

	u := -mrr.Long / 2
	for i, w := range widths {
		depth := math.Min(w*depthRatio, mrr.Short)
		p1 := toWorld(u, -mrr.Short/2)
		p2 := toWorld(u+w, -mrr.Short/2)
		p3 := toWorld(u+w, -mrr.Short/2+depth)
		p4 := toWorld(u, -mrr.Short/2+depth)
		rect := geom.NewRing(p1, p2, p3, p4)

		clipped := geom.ClipToConvex(block.Outer, rect)
		u += w
		if geom.IsEmpty(clipped) {
			continue
		}
		area := geom.Area(clipped)
		if area < minLotArea {
			continue
		}

		res.Lots = append(res.Lots, Lot{
			ID:            fmt.Sprintf("%s_lot_%02d", block.ID, i+1),
			BlockID:       block.ID,
			Ring:          clipped,
			Zone:          block.Zone,
			Width:         w,
			Depth:         depth,
			Area:          area,
			Frontage:      w,
			HasRoadAccess: true,
			Corner:        i == 0 || i == len(widths)-1,
		})
	}
	return res, report
}

// Allocate partitions the frontage length into widths. The second return
// is true when the uniform fallback was used. An empty slice means even
// the fallback could not satisfy the hard bounds.
func (a *FrontageAllocator) Allocate(frontage float64, cfg *config.Config) ([]float64, bool) {
	budget := a.Budget
	if budget <= 0 {
		budget = 2 * time.Second
	}
	deadline := time.Now().Add(budget)

	minW, maxW, target := cfg.MinLotWidth, cfg.MaxLotWidth, cfg.TargetLotWidth
	if target <= 0 {
		target = (minW + maxW) / 2
	}

	nMin := int(math.Ceil(frontage / maxW))
	nMax := int(math.Floor(frontage / minW))
	if nMin < 1 {
		nMin = 1
	}
	if nMax < nMin {
		return uniformFallback(frontage, cfg)
	}

	// Candidate counts ordered by closeness to the target-implied count.
	ideal := frontage / target
	counts := make([]int, 0, nMax-nMin+1)
	for n := nMin; n <= nMax; n++ {
		counts = append(counts, n)
	}
	for i := 1; i < len(counts); i++ {
		for j := i; j > 0 && math.Abs(float64(counts[j])-ideal) < math.Abs(float64(counts[j-1])-ideal); j-- {
			counts[j], counts[j-1] = counts[j-1], counts[j]
		}
	}

	var best []float64
	bestDev := math.MaxFloat64
	for _, n := range counts {
		if time.Now().After(deadline) {
			break
		}
		widths, dev, ok := solveForCount(frontage, n, minW, maxW, target)
		if !ok {
			continue
		}
		if dev < bestDev {
			bestDev = dev
			best = widths
		}
		if dev < 1e-6 {
			break // exact fit, nothing better exists
		}
	}

	if best == nil {
		return uniformFallback(frontage, cfg)
	}
	return best, false
}

// solveForCount assigns n widths summing to the frontage, each within
// bounds, minimizing total deviation from the per-segment targets. The
// corner segments carry the size premium. Water-filling from the target
// assignment is optimal for this L1 objective with box constraints.
func solveForCount(frontage float64, n int, minW, maxW, target float64) ([]float64, float64, bool) {
	targets := make([]float64, n)
	for i := range targets {
		t := target
		if i == 0 || i == n-1 {
			t = math.Min(target*cornerPremium, maxW)
		}
		targets[i] = t
	}

	widths := append([]float64(nil), targets...)
	sum := 0.0
	for _, w := range widths {
		sum += w
	}
	rem := frontage - sum

	for iter := 0; iter < 64 && math.Abs(rem) > 1e-9; iter++ {
		var adjustable []int
		for i, w := range widths {
			if rem > 0 && w < maxW-1e-12 {
				adjustable = append(adjustable, i)
			}
			if rem < 0 && w > minW+1e-12 {
				adjustable = append(adjustable, i)
			}
		}
		if len(adjustable) == 0 {
			return nil, 0, false
		}
		share := rem / float64(len(adjustable))
		for _, i := range adjustable {
			next := widths[i] + share
			if next > maxW {
				next = maxW
			}
			if next < minW {
				next = minW
			}
			rem -= next - widths[i]
			widths[i] = next
		}
	}
	if math.Abs(rem) > 1e-6 {
		return nil, 0, false
	}

	dev := 0.0
	for i, w := range widths {
		dev += math.Abs(w - targets[i])
	}
	return widths, dev, true
}

// uniformFallback is the mandatory degraded result: equal widths as close
// to the target as the count allows.
func uniformFallback(frontage float64, cfg *config.Config) ([]float64, bool) {
	target := cfg.TargetLotWidth
	if target <= 0 {
		target = (cfg.MinLotWidth + cfg.MaxLotWidth) / 2
	}
	n := int(math.Round(frontage / target))
	if n < 1 {
		n = 1
	}
	w := frontage / float64(n)
	widths := make([]float64, n)
	for i := range widths {
		widths[i] = w
	}
	return widths, true
}
