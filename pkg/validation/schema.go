package validation

import (
	"fmt"
	"math"

	"github.com/estateforge/estateplan/pkg/config"
)

// ValidateConfig performs schema-level checks on a planning configuration.
// Any error here is fatal: the pipeline rejects the run before it starts.
func ValidateConfig(c *config.Config) *Report {
	r := NewReport()

	validateWidths(c, r)
	validateSpacing(c, r)
	validateSkeleton(c, r)
	validateRatios(c, r)
	validateStrategies(c, r)

	return r
}

func validateWidths(c *config.Config, r *Report) {
	if c.RoadWidth <= 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "road_width must be greater than 0",
			Path:        "road_width",
			ActualValue: c.RoadWidth,
			Expected:    "> 0",
		})
	}
	if c.MinLotWidth <= 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "min_lot_width must be greater than 0",
			Path:        "min_lot_width",
			ActualValue: c.MinLotWidth,
			Expected:    "> 0",
		})
	}
	if c.MinLotWidth > c.MaxLotWidth {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("min_lot_width (%.1f) exceeds max_lot_width (%.1f)", c.MinLotWidth, c.MaxLotWidth),
			Path:        "min_lot_width",
			ActualValue: c.MinLotWidth,
			Expected:    fmt.Sprintf("<= %.1f", c.MaxLotWidth),
		})
	}
	if c.TargetLotWidth < c.MinLotWidth || c.TargetLotWidth > c.MaxLotWidth {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("target_lot_width %.1f is outside [%.1f, %.1f]", c.TargetLotWidth, c.MinLotWidth, c.MaxLotWidth),
			Path:        "target_lot_width",
			ActualValue: c.TargetLotWidth,
			Expected:    fmt.Sprintf("%.1f-%.1f", c.MinLotWidth, c.MaxLotWidth),
		})
	}
}

func validateSpacing(c *config.Config, r *Report) {
	if c.SpacingMin <= 0 || c.SpacingMax <= 0 {
		r.AddError(Result{
			Level:    LevelSchema,
			Message:  "spacing_min and spacing_max must be greater than 0",
			Path:     "spacing_min",
			Expected: "> 0",
		})
		return
	}
	if c.SpacingMin > c.SpacingMax {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("spacing_min (%.0f) exceeds spacing_max (%.0f)", c.SpacingMin, c.SpacingMax),
			Path:        "spacing_min",
			ActualValue: c.SpacingMin,
			Expected:    fmt.Sprintf("<= %.0f", c.SpacingMax),
		})
	}
}

func validateSkeleton(c *config.Config, r *Report) {
	if c.SkeletonBranchCount < 1 || c.SkeletonBranchCount > 2 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("skeleton_branch_count %d is outside valid range (1-2)", c.SkeletonBranchCount),
			Path:        "skeleton_branch_count",
			ActualValue: c.SkeletonBranchCount,
			Expected:    "1-2",
		})
	}
}

func validateRatios(c *config.Config, r *Report) {
	if len(c.ZoneAreaRatios) == 0 {
		return // defaults apply downstream
	}
	sum := 0.0
	for name, ratio := range c.ZoneAreaRatios {
		if ratio < 0 {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("zone_area_ratios.%s must be non-negative", name),
				Path:        fmt.Sprintf("zone_area_ratios.%s", name),
				ActualValue: ratio,
				Expected:    ">= 0",
			})
		}
		sum += ratio
	}
	if math.Abs(sum-1.0) > 0.05 {
		r.AddWarning(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("zone_area_ratios sum to %.2f, expected ~1.0; shares will be normalized", sum),
			Path:        "zone_area_ratios",
			ActualValue: sum,
			Expected:    "1.0 (±0.05)",
		})
	}
}

func validateStrategies(c *config.Config, r *Report) {
	switch c.TerrainStrategy {
	case config.TerrainMinimalCut, config.TerrainBalanced, config.TerrainMajorGrade, "":
	default:
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("unknown terrain_strategy %q", c.TerrainStrategy),
			Path:        "terrain_strategy",
			ActualValue: string(c.TerrainStrategy),
			Expected:    "minimal-cut | balanced-cut-fill | major-grading",
		})
	}
	switch c.Strategy {
	case config.StrategyRows, config.StrategyFrontage, "":
	default:
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("unknown subdivision_strategy %q", c.Strategy),
			Path:        "subdivision_strategy",
			ActualValue: string(c.Strategy),
			Expected:    "rows | frontage",
		})
	}
}
