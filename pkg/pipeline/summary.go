package pipeline

import (
	"github.com/paulmach/orb"

	"github.com/estateforge/estateplan/pkg/geom"
	"github.com/estateforge/estateplan/pkg/zoning"
)

// Summary carries the headline figures of a run. Areas are metric,
// computed in the local frame before coordinates are restored.
type Summary struct {
	SiteAreaM2  float64 `json:"site_area_m2"`
	SiteAreaRai float64 `json:"site_area_rai"`
	SiteAreaHa  float64 `json:"site_area_ha"`

	RoadLengthM float64 `json:"road_length_m"`
	RoadAreaM2  float64 `json:"road_area_m2"`

	BlockCount int `json:"block_count"`
	LotCount   int `json:"lot_count"`

	ZoneCounts map[zoning.Zone]int     `json:"zone_counts"`
	ZoneShares map[zoning.Zone]float64 `json:"zone_shares"`

	AvgLotWidthM  float64 `json:"avg_lot_width_m"`
	AvgLotAreaM2  float64 `json:"avg_lot_area_m2"`
	SellableRatio float64 `json:"sellable_ratio"`
	FlaggedLots   int     `json:"flagged_lots"`

	UtilityLengthM float64 `json:"utility_length_m"`
	TotalCost      float64 `json:"total_cost"`

	Degraded bool `json:"degraded"`
}

const m2PerRai = 1600.0

func summarize(res *Result, site orb.Ring) Summary {
	s := Summary{
		ZoneCounts: map[zoning.Zone]int{},
		BlockCount: len(res.Blocks),
		LotCount:   len(res.Lots),
		Degraded:   res.Report.Degraded,
	}

	s.SiteAreaM2 = geom.Area(site)
	s.SiteAreaRai = s.SiteAreaM2 / m2PerRai
	s.SiteAreaHa = s.SiteAreaM2 / 10000

	s.RoadLengthM = res.Network.TotalLength()
	s.RoadAreaM2 = res.Network.RoadArea

	for _, b := range res.Blocks {
		s.ZoneCounts[b.Zone]++
	}
	s.ZoneShares = zoning.Shares(res.Blocks)

	var widthSum, areaSum float64
	for _, lot := range res.Lots {
		widthSum += lot.Width
		areaSum += lot.Area
		if lot.Flagged {
			s.FlaggedLots++
		}
	}
	if len(res.Lots) > 0 {
		s.AvgLotWidthM = widthSum / float64(len(res.Lots))
		s.AvgLotAreaM2 = areaSum / float64(len(res.Lots))
	}
	if s.SiteAreaM2 > 0 {
		s.SellableRatio = areaSum / s.SiteAreaM2
	}

	if res.Infra != nil {
		for _, n := range res.Infra.Networks {
			s.UtilityLengthM += n.TotalLength
		}
	}
	if res.Cost != nil {
		s.TotalCost = res.Cost.Estimate.Total
	}
	return s
}
