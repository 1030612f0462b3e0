package cost

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estateforge/estateplan/pkg/config"
	"github.com/estateforge/estateplan/pkg/geom"
	"github.com/estateforge/estateplan/pkg/infra"
	"github.com/estateforge/estateplan/pkg/lots"
	"github.com/estateforge/estateplan/pkg/roads"
	"github.com/estateforge/estateplan/pkg/zoning"
)

func fixture() (*config.Config, *roads.Network, []zoning.ZonedBlock, []lots.Lot, *infra.Plan) {
	cfg := config.Default()

	net := &roads.Network{
		Site: geom.Rect(0, 0, 1000, 500),
		Segments: []roads.Segment{
			{ID: "perimeter_ring", Level: roads.LevelPerimeter, Width: 14,
				Line: orb.LineString(geom.Rect(7, 7, 993, 493))},
			{ID: "main_01", Level: roads.LevelMain, Width: 14,
				Line: orb.LineString{{500, 0}, {500, 500}}},
			{ID: "secondary_01", Level: roads.LevelSecondary, Width: 9.8,
				Line: orb.LineString{{0, 250}, {1000, 250}}},
		},
	}

	greenRing := geom.Rect(0, 0, 40, 50)
	blocks := []zoning.ZonedBlock{
		{Block: roads.Block{ID: "block_01", Outer: geom.Rect(14, 14, 486, 236), Area: 104784}, Zone: zoning.ZoneFactory},
		{Block: roads.Block{ID: "block_02", Outer: greenRing, Area: geom.Area(greenRing)}, Zone: zoning.ZoneGreen},
	}
	lotSet := []lots.Lot{
		{ID: "l1", Area: 2400}, {ID: "l2", Area: 2400},
	}
	plan := &infra.Plan{
		Networks: []infra.Network{
			{Utility: infra.UtilityWater, TotalLength: 1000, Cost: 1_500_000},
			{Utility: infra.UtilitySewer, TotalLength: 1000, Cost: 2_200_000},
		},
		TotalCost: 3_700_000,
	}
	return &cfg, net, blocks, lotSet, plan
}

func TestEstimateBreakdown(t *testing.T) {
	cfg, net, blocks, lotSet, plan := fixture()
	r := Estimate(cfg, net, blocks, lotSet, plan)

	e := r.Estimate
	assert.Positive(t, e.Earthworks)
	assert.Positive(t, e.Roadworks)
	assert.Equal(t, 3_700_000.0, e.Utilities)
	assert.Positive(t, e.Landscape)
	assert.Equal(t, EntranceWorks, e.Other)
	assert.InDelta(t, e.Earthworks+e.Roadworks+e.Utilities+e.Landscape+e.Other, e.Total, 1e-6)

	// Balanced cut-and-fill over 500,000 m².
	assert.InDelta(t, 500_000*GradingBalancedPerM2, e.Earthworks, 1e-6)
}

func TestEstimateRoadRatesByLevel(t *testing.T) {
	cfg, net, blocks, lotSet, plan := fixture()
	r := Estimate(cfg, net, blocks, lotSet, plan)

	require.Contains(t, r.Roads, roads.LevelPerimeter)
	require.Contains(t, r.Roads, roads.LevelMain)
	require.Contains(t, r.Roads, roads.LevelSecondary)

	// main_01: 500 m at 14 m width.
	assert.InDelta(t, 500*14*RoadMainCostPerM2, r.Roads[roads.LevelMain], 1e-6)
	// secondary_01: 1000 m at 9.8 m width.
	assert.InDelta(t, 1000*9.8*RoadSecondaryCostPerM2, r.Roads[roads.LevelSecondary], 1e-6)
}

func TestEstimateTerrainStrategyRates(t *testing.T) {
	cfg, net, blocks, lotSet, plan := fixture()

	cfg.TerrainStrategy = config.TerrainMinimalCut
	minimal := Estimate(cfg, net, blocks, lotSet, plan).Estimate.Earthworks

	cfg.TerrainStrategy = config.TerrainMajorGrade
	major := Estimate(cfg, net, blocks, lotSet, plan).Estimate.Earthworks

	assert.Less(t, minimal, major)
}

func TestEstimateSummaryPerRai(t *testing.T) {
	cfg, net, blocks, lotSet, plan := fixture()
	r := Estimate(cfg, net, blocks, lotSet, plan)

	assert.InDelta(t, 312.5, r.Summary.SiteAreaRai, 1e-9) // 500,000 / 1,600
	assert.InDelta(t, 3.0, r.Summary.SellableAreaRai, 1e-9)
	assert.InDelta(t, r.Estimate.Total/312.5, r.Summary.PerRai, 1e-6)
	assert.InDelta(t, r.Estimate.Total/4800, r.Summary.PerSellableM2, 1e-6)
}

func TestEstimateNilPlan(t *testing.T) {
	cfg, net, blocks, lotSet, _ := fixture()
	r := Estimate(cfg, net, blocks, lotSet, nil)
	assert.Zero(t, r.Estimate.Utilities)
	assert.Positive(t, r.Estimate.Total)
}
