package pipeline

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estateforge/estateplan/pkg/config"
	"github.com/estateforge/estateplan/pkg/geom"
	"github.com/estateforge/estateplan/pkg/zoning"
)

func runRect(t *testing.T) *Result {
	t.Helper()
	cfg := config.Default()
	res, err := Run([]orb.Ring{geom.Rect(0, 0, 1000, 500)}, &cfg)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func TestRunEndToEnd(t *testing.T) {
	res := runRect(t)

	assert.NotEmpty(t, res.RunID)
	require.NotNil(t, res.Network)
	assert.NotEmpty(t, res.Network.Segments)
	assert.NotEmpty(t, res.Blocks)
	assert.NotEmpty(t, res.Lots)
	require.NotNil(t, res.Infra)
	assert.Len(t, res.Infra.Networks, 3)
	require.NotNil(t, res.Cost)
	assert.Positive(t, res.Cost.Estimate.Total)
	assert.True(t, res.Report.Valid)
}

func TestRunSummary(t *testing.T) {
	res := runRect(t)
	s := res.Summary

	assert.InDelta(t, 500_000, s.SiteAreaM2, 1e-6)
	assert.InDelta(t, 312.5, s.SiteAreaRai, 1e-6)
	assert.Equal(t, len(res.Blocks), s.BlockCount)
	assert.Equal(t, len(res.Lots), s.LotCount)
	assert.Positive(t, s.RoadLengthM)
	assert.Positive(t, s.AvgLotWidthM)
	assert.Greater(t, s.SellableRatio, 0.2,
		"an industrial estate sells well over a fifth of its land")
	assert.Less(t, s.SellableRatio, 1.0)

	sum := 0.0
	for _, v := range s.ZoneShares {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestRunLotsStayInBlocks(t *testing.T) {
	res := runRect(t)

	blocks := map[string]orb.Ring{}
	for _, b := range res.Blocks {
		blocks[b.ID] = b.Outer
	}
	for _, lot := range res.Lots {
		parent, ok := blocks[lot.BlockID]
		if !ok {
			continue // merged lots keep the majority parent only
		}
		assert.GreaterOrEqual(t, geom.CoverageRatio(lot.Ring, parent), 0.95,
			"%s escapes its block", lot.ID)
	}
}

func TestRunLotsDoNotOverlap(t *testing.T) {
	res := runRect(t)
	require.NotEmpty(t, res.Lots)

	for i := 0; i < len(res.Lots); i++ {
		for j := i + 1; j < len(res.Lots); j++ {
			a, b := res.Lots[i], res.Lots[j]
			if !a.Ring.Bound().Intersects(b.Ring.Bound()) {
				continue
			}
			overlap := geom.OverlapArea(a.Ring, b.Ring)
			assert.LessOrEqual(t, overlap, a.Area*0.02,
				"%s overlaps %s by %.1f m²", a.ID, b.ID, overlap)
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	first := runRect(t)
	second := runRect(t)

	require.Equal(t, len(first.Lots), len(second.Lots))
	for i := range first.Lots {
		assert.Equal(t, first.Lots[i].ID, second.Lots[i].ID)
		assert.InDelta(t, first.Lots[i].Area, second.Lots[i].Area, 1e-6)
	}
}

func TestRunRepairsSelfIntersectingInput(t *testing.T) {
	cfg := config.Default()
	bowtie := orb.Ring{
		{0, 0}, {1000, 0}, {0, 500}, {1000, 500}, {0, 0},
	}
	res, err := Run([]orb.Ring{bowtie}, &cfg)
	require.NoError(t, err, "a repairable ring must not abort the run")
	assert.True(t, res.Report.Degraded, "the repair is reported")
	assert.NotEmpty(t, res.Blocks)
}

func TestRunRejectsDegenerateInput(t *testing.T) {
	cfg := config.Default()
	_, err := Run([]orb.Ring{{{0, 0}, {1, 1}, {0, 0}}}, &cfg)

	var gerr *InputGeometryError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, 0, gerr.Index)
}

func TestRunRejectsEmptyInput(t *testing.T) {
	cfg := config.Default()
	_, err := Run(nil, &cfg)

	var gerr *InputGeometryError
	assert.ErrorAs(t, err, &gerr)
}

func TestRunRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.MinLotWidth, cfg.MaxLotWidth = 50, 30

	_, err := Run([]orb.Ring{geom.Rect(0, 0, 1000, 500)}, &cfg)
	var cerr *ConfigError
	assert.ErrorAs(t, err, &cerr)
}

func TestRunMultiParcelUnion(t *testing.T) {
	cfg := config.Default()
	parcels := []orb.Ring{
		geom.Rect(0, 0, 500, 500),
		geom.Rect(500, 0, 1000, 500),
	}
	res, err := Run(parcels, &cfg)
	require.NoError(t, err)
	assert.InDelta(t, 500_000, res.Summary.SiteAreaM2, 5_000,
		"abutting parcels union without inflation")
}

func TestRunGeographicInput(t *testing.T) {
	cfg := config.Default()
	// ~1000 x 550 m parcel in lon/lat near Rayong.
	site := geom.NewRing(
		orb.Point{101.2800, 12.7100},
		orb.Point{101.2892, 12.7100},
		orb.Point{101.2892, 12.7150},
		orb.Point{101.2800, 12.7150},
	)
	res, err := Run([]orb.Ring{site}, &cfg)
	require.NoError(t, err)

	// Metric summary figures despite degree input.
	assert.InDelta(t, 550_000, res.Summary.SiteAreaM2, 30_000)

	// Output geometry is restored to degrees.
	for _, p := range res.Network.Site {
		assert.InDelta(t, 101.28, p.X(), 0.02)
		assert.InDelta(t, 12.71, p.Y(), 0.02)
	}
	for _, lot := range res.Lots {
		for _, p := range lot.Ring {
			assert.InDelta(t, 101.28, p.X(), 0.02)
		}
	}
}

func TestRunZoneExhaustiveness(t *testing.T) {
	res := runRect(t)

	known := map[zoning.Zone]bool{}
	for _, z := range zoning.AllZones {
		known[z] = true
	}
	for _, b := range res.Blocks {
		assert.True(t, known[b.Zone], "%s carries unknown zone %q", b.ID, b.Zone)
	}
	for _, lot := range res.Lots {
		assert.NotEqual(t, zoning.ZoneGreen, lot.Zone, "green blocks are never subdivided")
		assert.NotEqual(t, zoning.ZoneWater, lot.Zone)
	}
}

func TestRunNilConfigUsesDefaults(t *testing.T) {
	res, err := Run([]orb.Ring{geom.Rect(0, 0, 1000, 500)}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Lots)
}
