// Package zoning assigns each block a functional zone from ordered
// spatial heuristics, then rebalances assignments against the target
// area-share ratios.
package zoning

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"

	"github.com/estateforge/estateplan/pkg/config"
	"github.com/estateforge/estateplan/pkg/geom"
	"github.com/estateforge/estateplan/pkg/roads"
	"github.com/estateforge/estateplan/pkg/validation"
)

// Zone is the functional land-use tag of a block.
type Zone string

const (
	ZoneFactory     Zone = "factory"
	ZoneWarehouse   Zone = "warehouse"
	ZoneResidential Zone = "residential"
	ZoneService     Zone = "service"
	ZoneGreen       Zone = "green"
	ZoneWater       Zone = "water"
)

// AllZones lists the zone enumeration in a stable order.
var AllZones = []Zone{ZoneFactory, ZoneWarehouse, ZoneResidential, ZoneService, ZoneGreen, ZoneWater}

// ZonedBlock is a block with its assigned zone.
type ZonedBlock struct {
	roads.Block
	Zone Zone `json:"zone"`
}

// Commercial reports whether the block is subdividable into saleable lots.
func (z ZonedBlock) Commercial() bool {
	return z.Zone != ZoneGreen && z.Zone != ZoneWater
}

// Area thresholds for the ordered rules, in m². These encode observed
// estate-design practice and are deliberately plain constants here; the
// target area shares that drive rebalancing come from configuration.
const (
	greenMaxArea     = 3000.0
	waterMaxArea     = 6000.0
	factoryMinArea   = 20000.0
	warehouseMinArea = 8000.0
	hugeFactoryArea  = 40000.0
	largeFarArea     = 30000.0
	wellServedDist   = 40.0
)

// Classifier holds the run-scoped classification state. A new classifier
// is created per invocation so concurrent runs stay isolated; in
// particular the water-zone singleton flag lives here, never in a global.
type Classifier struct {
	cfg           *config.Config
	net           *roads.Network
	waterAssigned bool
}

// NewClassifier creates a per-run classifier.
func NewClassifier(cfg *config.Config, net *roads.Network) *Classifier {
	return &Classifier{cfg: cfg, net: net}
}

// Classify assigns exactly one zone to every block using the ordered rule
// list, then rebalances against the configured area shares. Input order is
// preserved; the same input always produces the same assignment.
func (c *Classifier) Classify(blocks []roads.Block) ([]ZonedBlock, *validation.Report) {
	report := validation.NewReport()

	zoned := make([]ZonedBlock, len(blocks))
	for i, b := range blocks {
		zoned[i] = ZonedBlock{Block: b, Zone: c.classifyOne(b)}
	}

	c.rebalance(zoned)

	counts := map[Zone]int{}
	for _, z := range zoned {
		counts[z.Zone]++
	}
	report.AddInfo(validation.Result{
		Level: validation.LevelSpatial,
		Message: fmt.Sprintf("zoned %d blocks: factory=%d warehouse=%d service=%d residential=%d green=%d water=%d",
			len(zoned), counts[ZoneFactory], counts[ZoneWarehouse], counts[ZoneService],
			counts[ZoneResidential], counts[ZoneGreen], counts[ZoneWater]),
	})
	return zoned, report
}

// classifyOne applies the ordered rules; the first match wins.
func (c *Classifier) classifyOne(b roads.Block) Zone {
	t := c.axisPosition(b.Centroid)
	roadDist := c.mainRoadDistance(b.Centroid)

	// 1. Small boundary-adjacent blocks become green buffers.
	if b.TouchesBoundary && b.Area < greenMaxArea {
		return ZoneGreen
	}

	// 2. One small central block per run becomes the retention pond.
	if !c.waterAssigned && t > 0.35 && t < 0.65 && b.Area < waterMaxArea {
		c.waterAssigned = true
		return ZoneWater
	}

	// 3. Near the entrance: heavy uses with direct haul access.
	if t < 0.33 {
		if b.Area >= factoryMinArea {
			return ZoneFactory
		}
		if b.Area >= warehouseMinArea {
			return ZoneWarehouse
		}
		return ZoneService
	}

	// 4. Mid-axis: area threshold with a carve-out for very large blocks.
	if t < 0.66 {
		if b.Area >= hugeFactoryArea {
			return ZoneFactory
		}
		if b.Area >= warehouseMinArea {
			return ZoneWarehouse
		}
		return ZoneService
	}

	// 5. Far side skews residential unless large or well road-served.
	if b.Area >= largeFarArea || roadDist < wellServedDist {
		return ZoneWarehouse
	}
	if b.TouchesBoundary && b.Area < warehouseMinArea {
		// 6. Outer-rim default.
		return ZoneService
	}
	return ZoneResidential
}

// axisPosition returns the block's normalized position along the
// entrance-to-far axis, in [0, 1].
func (c *Classifier) axisPosition(pt orb.Point) float64 {
	if c.net.AxisLength < geom.Eps {
		return 0.5
	}
	u := geom.Dot(geom.Sub(pt, c.net.Entrance), c.net.Axis) / c.net.AxisLength
	return math.Max(0, math.Min(1, u))
}

// mainRoadDistance returns the distance from the point to the nearest
// main-level road centerline.
func (c *Classifier) mainRoadDistance(pt orb.Point) float64 {
	best := math.MaxFloat64
	for _, line := range c.net.MainLines() {
		for i := 0; i < len(line)-1; i++ {
			if d := geom.SegmentDistance(pt, line[i], line[i+1]); d < best {
				best = d
			}
		}
	}
	return best
}

// rebalance nudges assignments toward the configured area shares: the most
// distant factory blocks become warehouse when factory is over-represented,
// and the smallest warehouse blocks become service when service is under-
// represented. Bounded passes keep the loop finite on pathological inputs.
func (c *Classifier) rebalance(zoned []ZonedBlock) {
	total := 0.0
	for _, z := range zoned {
		total += z.Area
	}
	if total < geom.Eps {
		return
	}

	share := func(zone Zone) float64 {
		sum := 0.0
		for _, z := range zoned {
			if z.Zone == zone {
				sum += z.Area
			}
		}
		return sum / total
	}
	target := func(zone Zone) float64 {
		r := c.cfg.ZoneRatio(string(zone))
		if r == 0 {
			r = config.Default().ZoneAreaRatios[string(zone)]
		}
		return r
	}

	const tolerance = 0.05

	for pass := 0; pass < len(zoned); pass++ {
		if share(ZoneFactory) <= target(ZoneFactory)+tolerance {
			break
		}
		idx := -1
		for i, z := range zoned {
			if z.Zone != ZoneFactory {
				continue
			}
			if idx == -1 || z.DistToEntrance > zoned[idx].DistToEntrance {
				idx = i
			}
		}
		if idx == -1 {
			break
		}
		zoned[idx].Zone = ZoneWarehouse
	}

	for pass := 0; pass < len(zoned); pass++ {
		if share(ZoneService) >= target(ZoneService)-tolerance {
			break
		}
		idx := -1
		for i, z := range zoned {
			if z.Zone != ZoneWarehouse {
				continue
			}
			if idx == -1 || z.Area < zoned[idx].Area {
				idx = i
			}
		}
		if idx == -1 {
			break
		}
		zoned[idx].Zone = ZoneService
	}
}

// Shares returns the zone area ratios of an assignment, keyed by zone.
func Shares(zoned []ZonedBlock) map[Zone]float64 {
	total := 0.0
	for _, z := range zoned {
		total += z.Area
	}
	out := map[Zone]float64{}
	if total < geom.Eps {
		return out
	}
	for _, z := range zoned {
		out[z.Zone] += z.Area / total
	}
	return out
}

// SortByArea returns block indexes ordered by descending area. Used by
// reporting, where the biggest assignments matter first.
func SortByArea(zoned []ZonedBlock) []int {
	idx := make([]int, len(zoned))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return zoned[idx[a]].Area > zoned[idx[b]].Area
	})
	return idx
}
