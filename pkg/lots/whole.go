package lots

import (
	"fmt"

	"github.com/estateforge/estateplan/pkg/config"
	"github.com/estateforge/estateplan/pkg/geom"
	"github.com/estateforge/estateplan/pkg/validation"
	"github.com/estateforge/estateplan/pkg/zoning"
)

// WholeBlock is the terminal fallback: the block becomes a single lot.
// It never fails on a block above the area floor, which is what makes the
// strategy chain total.
type WholeBlock struct{}

// Name implements Strategy.
func (w *WholeBlock) Name() string { return "whole-block" }

// Subdivide implements Strategy.
func (w *WholeBlock) Subdivide(block zoning.ZonedBlock, cfg *config.Config) (Result, *validation.Report) {
	report := validation.NewReport()
	var res Result

	if block.Area < minLotArea {
		report.AddWarning(validation.Result{
			Level:   validation.LevelSpatial,
			Message: fmt.Sprintf("%s: below minimum lot area, left unsold", block.ID),
		})
		return res, report
	}

	mrr := geom.MinimumRotatedRect(block.Outer)
	res.Lots = append(res.Lots, Lot{
		ID:            fmt.Sprintf("%s_lot_01", block.ID),
		BlockID:       block.ID,
		Ring:          block.Outer,
		Zone:          block.Zone,
		Width:         mrr.Short,
		Depth:         mrr.Long,
		Area:          block.Area,
		Frontage:      mrr.Long,
		HasRoadAccess: true,
		Flagged:       true, // oversized single lot, review before sale
	})
	report.MarkDegraded(validation.LevelSpatial,
		fmt.Sprintf("%s: subdivision fell back to whole-block lot", block.ID))
	return res, report
}
