// Package cost estimates development cost for a generated estate layout:
// earthworks, roadworks by level, utility networks, and landscaping, with
// per-rai summary figures.
package cost

import (
	"github.com/estateforge/estateplan/pkg/config"
	"github.com/estateforge/estateplan/pkg/geom"
	"github.com/estateforge/estateplan/pkg/infra"
	"github.com/estateforge/estateplan/pkg/lots"
	"github.com/estateforge/estateplan/pkg/roads"
	"github.com/estateforge/estateplan/pkg/zoning"
)

// Breakdown itemizes costs by category.
type Breakdown struct {
	Earthworks float64 `json:"earthworks"`
	Roadworks  float64 `json:"roadworks"`
	Utilities  float64 `json:"utilities"`
	Landscape  float64 `json:"landscape"`
	Other      float64 `json:"other"`
	Total      float64 `json:"total"`
}

// Report is the complete cost output.
type Report struct {
	Estimate Breakdown `json:"estimate"`

	Roads map[roads.Level]float64   `json:"roads"`
	Utils map[infra.Utility]float64 `json:"utils"`

	Summary struct {
		SiteAreaRai     float64 `json:"site_area_rai"`
		SellableAreaRai float64 `json:"sellable_area_rai"`
		PerRai          float64 `json:"per_rai"`
		PerSellableRai  float64 `json:"per_sellable_rai"`
		PerSellableM2   float64 `json:"per_sellable_m2"`
	} `json:"summary"`
}

// gradingRate maps the terrain strategy to its earthworks unit rate.
func gradingRate(s config.TerrainStrategy) float64 {
	switch s {
	case config.TerrainMinimalCut:
		return GradingMinimalPerM2
	case config.TerrainMajorGrade:
		return GradingMajorPerM2
	default:
		return GradingBalancedPerM2
	}
}

// roadRate maps a road level to its pavement unit rate.
func roadRate(l roads.Level) float64 {
	switch l {
	case roads.LevelPerimeter:
		return RoadPerimeterCostPerM2
	case roads.LevelMain:
		return RoadMainCostPerM2
	case roads.LevelSecondary:
		return RoadSecondaryCostPerM2
	default:
		return RoadAccessCostPerM2
	}
}

// Estimate computes the bottom-up cost of a layout from its generated
// geometry and the routed utility plan.
func Estimate(cfg *config.Config, net *roads.Network, blocks []zoning.ZonedBlock, lotSet []lots.Lot, plan *infra.Plan) *Report {
	report := &Report{
		Roads: map[roads.Level]float64{},
		Utils: map[infra.Utility]float64{},
	}

	siteArea := geom.Area(net.Site)
	earthworks := siteArea * gradingRate(cfg.TerrainStrategy)

	roadworks := 0.0
	for _, seg := range net.Segments {
		c := seg.Length() * seg.Width * roadRate(seg.Level)
		report.Roads[seg.Level] += c
		roadworks += c
	}

	utilities := 0.0
	if plan != nil {
		for _, n := range plan.Networks {
			report.Utils[n.Utility] = n.Cost
			utilities += n.Cost
		}
	}

	landscapeArea := 0.0
	for _, b := range blocks {
		if b.Zone == zoning.ZoneGreen {
			landscapeArea += b.Area
		}
		for _, h := range b.Holes {
			landscapeArea += geom.Area(h)
		}
	}
	for _, r := range net.Reserves {
		landscapeArea += geom.Area(r)
	}
	landscape := landscapeArea * LandscapePerM2

	report.Estimate = Breakdown{
		Earthworks: earthworks,
		Roadworks:  roadworks,
		Utilities:  utilities,
		Landscape:  landscape,
		Other:      EntranceWorks,
	}
	report.Estimate.Total = earthworks + roadworks + utilities + landscape + EntranceWorks

	sellable := 0.0
	for _, lot := range lotSet {
		sellable += lot.Area
	}

	report.Summary.SiteAreaRai = siteArea / M2PerRai
	report.Summary.SellableAreaRai = sellable / M2PerRai
	if siteArea > 0 {
		report.Summary.PerRai = report.Estimate.Total / (siteArea / M2PerRai)
	}
	if sellable > 0 {
		report.Summary.PerSellableRai = report.Estimate.Total / (sellable / M2PerRai)
		report.Summary.PerSellableM2 = report.Estimate.Total / sellable
	}
	return report
}
