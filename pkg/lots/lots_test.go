package lots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estateforge/estateplan/pkg/config"
	"github.com/estateforge/estateplan/pkg/geom"
	"github.com/estateforge/estateplan/pkg/roads"
	"github.com/estateforge/estateplan/pkg/zoning"
)

func testCfg() *config.Config {
	c := config.Default()
	return &c
}

func factoryBlock(w, h float64) zoning.ZonedBlock {
	ring := geom.Rect(0, 0, w, h)
	return zoning.ZonedBlock{
		Block: roads.Block{
			ID:       "block_01",
			Outer:    ring,
			Area:     geom.Area(ring),
			Centroid: geom.Centroid(ring),
		},
		Zone: zoning.ZoneFactory,
	}
}

func TestRowPackerFactoryBlock(t *testing.T) {
	cfg := testCfg()
	block := factoryBlock(240, 130)

	res, report := (&RowPacker{}).Subdivide(block, cfg)
	require.True(t, report.Valid)
	require.NotEmpty(t, res.Lots)

	for _, lot := range res.Lots {
		assert.Equal(t, "block_01", lot.BlockID)
		assert.Equal(t, zoning.ZoneFactory, lot.Zone)
		assert.GreaterOrEqual(t, lot.Area, 100.0)
		assert.True(t, lot.HasRoadAccess)
		for _, p := range lot.Ring {
			assert.True(t, geom.Contains(block.Outer, p),
				"%s: vertex outside block", lot.ID)
		}
	}
	assert.NotEmpty(t, res.AccessLines,
		"a 130 m deep block needs an internal access road between rows")
}

func TestRowPackerLotsDoNotOverlap(t *testing.T) {
	cfg := testCfg()
	block := factoryBlock(240, 130)

	res, _ := (&RowPacker{}).Subdivide(block, cfg)
	require.Greater(t, len(res.Lots), 1)

	for i := 0; i < len(res.Lots); i++ {
		for j := i + 1; j < len(res.Lots); j++ {
			overlap := geom.OverlapArea(res.Lots[i].Ring, res.Lots[j].Ring)
			assert.LessOrEqual(t, overlap, res.Lots[i].Area*0.01,
				"%s overlaps %s", res.Lots[i].ID, res.Lots[j].ID)
		}
	}
}

func TestRowPackerWidthsStayInBand(t *testing.T) {
	cfg := testCfg()
	// A square 25,000 m² block: the row run does not divide evenly by the
	// 40 m factory width, so the remainder must spread across equal-width
	// lots instead of piling onto the last one.
	block := factoryBlock(158.1, 158.1)

	res, report := (&RowPacker{}).Subdivide(block, cfg)
	require.True(t, report.Valid)
	require.NotEmpty(t, res.Lots)

	lo, hi := widthBand(cfg, dimsFor(zoning.ZoneFactory))
	for _, lot := range res.Lots {
		assert.GreaterOrEqual(t, lot.Width, lo-1e-9, "%s too narrow", lot.ID)
		assert.LessOrEqual(t, lot.Width, hi+1e-9, "%s too wide", lot.ID)
		assert.LessOrEqual(t, lot.Width, cfg.MaxLotWidth+1e-9, "%s over the hard bound", lot.ID)
	}
}

func TestRowPackerNarrowBlock(t *testing.T) {
	cfg := testCfg()
	block := factoryBlock(15, 200) // narrower than min_lot_width

	res, report := (&RowPacker{}).Subdivide(block, cfg)
	assert.Empty(t, res.Lots)
	assert.NotEmpty(t, report.Warnings)
}

func TestClampWidthStaysInZoneBand(t *testing.T) {
	cfg := testCfg()

	tests := []struct {
		zone   zoning.Zone
		target float64
		lo, hi float64
	}{
		{zoning.ZoneFactory, 40, 30, 50},
		{zoning.ZoneWarehouse, 40, 22.5, 37.5},
		{zoning.ZoneService, 40, 20, 25}, // zone band capped below target
	}
	for _, tt := range tests {
		t.Run(string(tt.zone), func(t *testing.T) {
			cfg.TargetLotWidth = tt.target
			w := clampWidth(cfg, dimsFor(tt.zone))
			assert.GreaterOrEqual(t, w, tt.lo)
			assert.LessOrEqual(t, w, tt.hi)
		})
	}
}

func TestAllocateExactPartition(t *testing.T) {
	cfg := testCfg()
	cfg.MinLotWidth, cfg.MaxLotWidth, cfg.TargetLotWidth = 20, 40, 30

	a := &FrontageAllocator{Budget: time.Second}
	widths, degraded := a.Allocate(300, cfg)

	require.NotEmpty(t, widths)
	assert.False(t, degraded)

	sum := 0.0
	for _, w := range widths {
		sum += w
		assert.GreaterOrEqual(t, w, cfg.MinLotWidth-1e-6)
		assert.LessOrEqual(t, w, cfg.MaxLotWidth+1e-6)
	}
	assert.InDelta(t, 300, sum, 1.0, "widths must tile the frontage")
}

func TestAllocateCornerPremium(t *testing.T) {
	cfg := testCfg()
	cfg.MinLotWidth, cfg.MaxLotWidth, cfg.TargetLotWidth = 20, 60, 30

	a := &FrontageAllocator{Budget: time.Second}
	widths, degraded := a.Allocate(310, cfg)

	require.GreaterOrEqual(t, len(widths), 3)
	assert.False(t, degraded)
	interior := widths[1]
	assert.GreaterOrEqual(t, widths[0], interior,
		"corner lots carry the width premium")
	assert.GreaterOrEqual(t, widths[len(widths)-1], interior)
}

func TestAllocateInfeasibleFallsBack(t *testing.T) {
	cfg := testCfg()
	// A frontage shorter than one minimum lot: the exact search has no
	// feasible count and the uniform fallback takes over.
	cfg.MinLotWidth, cfg.MaxLotWidth, cfg.TargetLotWidth = 20, 40, 30

	widths, degraded := (&FrontageAllocator{Budget: time.Second}).Allocate(12, cfg)
	require.NotEmpty(t, widths)
	assert.True(t, degraded)

	sum := 0.0
	for _, w := range widths {
		sum += w
	}
	assert.InDelta(t, 12, sum, 1e-6)
}

func TestAllocateZeroBudgetStillAnswers(t *testing.T) {
	cfg := testCfg()
	cfg.SolverBudget = time.Nanosecond

	a := &FrontageAllocator{Budget: time.Nanosecond}
	widths, _ := a.Allocate(300, cfg)
	assert.NotEmpty(t, widths, "an expired budget must still yield the fallback")
}

func TestFrontageSubdivide(t *testing.T) {
	cfg := testCfg()
	block := factoryBlock(300, 80)

	res, report := (&FrontageAllocator{Budget: time.Second}).Subdivide(block, cfg)
	require.True(t, report.Valid)
	require.NotEmpty(t, res.Lots)

	for i, lot := range res.Lots {
		assert.True(t, lot.HasRoadAccess)
		if i == 0 || i == len(res.Lots)-1 {
			assert.True(t, lot.Corner)
		}
	}
}

func TestWholeBlockFallback(t *testing.T) {
	cfg := testCfg()
	block := factoryBlock(50, 40)

	res, report := (&WholeBlock{}).Subdivide(block, cfg)
	require.Len(t, res.Lots, 1)
	assert.True(t, res.Lots[0].Flagged)
	assert.True(t, report.Degraded)
	assert.InDelta(t, block.Area, res.Lots[0].Area, 1e-9)
}

func TestStrategiesForOrder(t *testing.T) {
	cfg := testCfg()

	cfg.Strategy = config.StrategyRows
	names := strategyNames(StrategiesFor(cfg))
	assert.Equal(t, []string{"rows", "frontage", "whole-block"}, names)

	cfg.Strategy = config.StrategyFrontage
	names = strategyNames(StrategiesFor(cfg))
	assert.Equal(t, []string{"frontage", "rows", "whole-block"}, names)
}

func strategyNames(ss []Strategy) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.Name()
	}
	return out
}
