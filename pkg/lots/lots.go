// Package lots subdivides zoned blocks into saleable lots. Two
// interchangeable strategies exist: a deterministic row packer and a
// constrained frontage allocator running under a wall-clock budget.
package lots

import (
	"github.com/paulmach/orb"

	"github.com/estateforge/estateplan/pkg/config"
	"github.com/estateforge/estateplan/pkg/validation"
	"github.com/estateforge/estateplan/pkg/zoning"
)

// minLotArea is the clip floor: lots whose clipped footprint falls below
// it are discarded.
const minLotArea = 100.0

// Lot is one saleable subdivision of a block.
type Lot struct {
	ID            string      `json:"id"`
	BlockID       string      `json:"block_id"`
	Ring          orb.Ring    `json:"ring"`
	Zone          zoning.Zone `json:"zone"`
	Width         float64     `json:"width"`
	Depth         float64     `json:"depth"`
	Area          float64     `json:"area"`
	Frontage      float64     `json:"frontage"`
	HasRoadAccess bool        `json:"has_road_access"`
	Corner        bool        `json:"corner,omitempty"`
	Quality       float64     `json:"quality"`
	Flagged       bool        `json:"flagged,omitempty"`
}

// Result is the output of one block subdivision: the lots plus the
// internal access road centerlines laid between rows.
type Result struct {
	Lots        []Lot
	AccessLines []orb.LineString
}

// Strategy subdivides one zoned block.
type Strategy interface {
	Name() string
	Subdivide(block zoning.ZonedBlock, cfg *config.Config) (Result, *validation.Report)
}

// lotDims is the standard lot size for a zone: width along the row and
// row depth. These are design-practice defaults, adjusted toward the
// configured target width at subdivision time.
type lotDims struct {
	W, D float64
}

var zoneLotDims = map[zoning.Zone]lotDims{
	zoning.ZoneFactory:     {W: 40, D: 60},
	zoning.ZoneWarehouse:   {W: 30, D: 50},
	zoning.ZoneService:     {W: 20, D: 30},
	zoning.ZoneResidential: {W: 16, D: 32},
}

// dimsFor returns the standard dims for a zone, defaulting to service
// scale for anything unexpected.
func dimsFor(zone zoning.Zone) lotDims {
	if d, ok := zoneLotDims[zone]; ok {
		return d
	}
	return zoneLotDims[zoning.ZoneService]
}

// clampWidth pulls the configured target width into the zone's practical
// band and the configured hard bounds.
func clampWidth(cfg *config.Config, dims lotDims) float64 {
	w := cfg.TargetLotWidth
	if w <= 0 {
		w = dims.W
	}
	lo := dims.W * 0.75
	hi := dims.W * 1.25
	if w < lo {
		w = lo
	}
	if w > hi {
		w = hi
	}
	if cfg.MinLotWidth > 0 && w < cfg.MinLotWidth {
		w = cfg.MinLotWidth
	}
	if cfg.MaxLotWidth > 0 && w > cfg.MaxLotWidth {
		w = cfg.MaxLotWidth
	}
	return w
}

// widthBand returns the acceptable lot-width range for a zone: the
// zone's practical band tightened by the configured hard bounds.
func widthBand(cfg *config.Config, dims lotDims) (lo, hi float64) {
	lo, hi = dims.W*0.75, dims.W*1.25
	if cfg.MinLotWidth > lo {
		lo = cfg.MinLotWidth
	}
	if cfg.MaxLotWidth > 0 && cfg.MaxLotWidth < hi {
		hi = cfg.MaxLotWidth
	}
	return lo, hi
}

// StrategiesFor returns the ordered strategy list for a run: the
// configured strategy first, the other as fallback, then the whole-block
// terminal fallback. Fallback order is a first-class value so it can be
// asserted in tests.
func StrategiesFor(cfg *config.Config) []Strategy {
	row := &RowPacker{}
	frontage := &FrontageAllocator{Budget: cfg.SolverBudget}
	if cfg.Strategy == config.StrategyFrontage {
		return []Strategy{frontage, row, &WholeBlock{}}
	}
	return []Strategy{row, frontage, &WholeBlock{}}
}
