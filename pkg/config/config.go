// Package config defines the per-run planning configuration and its loader.
// A project directory holds an estate.yaml; values missing from the file
// fall back to defaults, and every key can be overridden through the
// ESTATEPLAN_* environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// TerrainStrategy selects the earthworks posture, which shifts divider
// spacing and road curvature preference.
type TerrainStrategy string

const (
	TerrainMinimalCut TerrainStrategy = "minimal-cut"
	TerrainBalanced   TerrainStrategy = "balanced-cut-fill"
	TerrainMajorGrade TerrainStrategy = "major-grading"
)

// SubdivisionStrategy selects how blocks are cut into lots.
type SubdivisionStrategy string

const (
	StrategyRows     SubdivisionStrategy = "rows"
	StrategyFrontage SubdivisionStrategy = "frontage"
)

// Config is the immutable planning configuration for one invocation.
type Config struct {
	SpacingMin float64 `mapstructure:"spacing_min" yaml:"spacing_min" json:"spacing_min"`
	SpacingMax float64 `mapstructure:"spacing_max" yaml:"spacing_max" json:"spacing_max"`
	RoadWidth  float64 `mapstructure:"road_width" yaml:"road_width" json:"road_width"`

	MinLotWidth    float64 `mapstructure:"min_lot_width" yaml:"min_lot_width" json:"min_lot_width"`
	MaxLotWidth    float64 `mapstructure:"max_lot_width" yaml:"max_lot_width" json:"max_lot_width"`
	TargetLotWidth float64 `mapstructure:"target_lot_width" yaml:"target_lot_width" json:"target_lot_width"`

	SkeletonBranchCount int                `mapstructure:"skeleton_branch_count" yaml:"skeleton_branch_count" json:"skeleton_branch_count"`
	ZoneAreaRatios      map[string]float64 `mapstructure:"zone_area_ratios" yaml:"zone_area_ratios" json:"zone_area_ratios"`

	TerrainStrategy TerrainStrategy     `mapstructure:"terrain_strategy" yaml:"terrain_strategy" json:"terrain_strategy"`
	Strategy        SubdivisionStrategy `mapstructure:"subdivision_strategy" yaml:"subdivision_strategy" json:"subdivision_strategy"`

	// SolverBudget bounds the constrained frontage allocator per block.
	SolverBudget time.Duration `mapstructure:"solver_budget" yaml:"solver_budget" json:"solver_budget"`
}

// Default returns the regulation-aligned defaults. The zone ratios encode
// the governing area-share policy and are deliberately configuration, not
// invariants.
func Default() Config {
	return Config{
		SpacingMin:          180,
		SpacingMax:          280,
		RoadWidth:           14,
		MinLotWidth:         20,
		MaxLotWidth:         60,
		TargetLotWidth:      40,
		SkeletonBranchCount: 2,
		ZoneAreaRatios: map[string]float64{
			"factory":   0.40,
			"warehouse": 0.30,
			"service":   0.25,
			"green":     0.05,
		},
		TerrainStrategy: TerrainBalanced,
		Strategy:        StrategyRows,
		SolverBudget:    2 * time.Second,
	}
}

// Load reads estate.yaml from the project directory, layering file values
// over defaults and env overrides over both.
func Load(projectDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("estate")
	v.SetConfigType("yaml")
	v.AddConfigPath(projectDir)
	v.SetEnvPrefix("ESTATEPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("spacing_min", def.SpacingMin)
	v.SetDefault("spacing_max", def.SpacingMax)
	v.SetDefault("road_width", def.RoadWidth)
	v.SetDefault("min_lot_width", def.MinLotWidth)
	v.SetDefault("max_lot_width", def.MaxLotWidth)
	v.SetDefault("target_lot_width", def.TargetLotWidth)
	v.SetDefault("skeleton_branch_count", def.SkeletonBranchCount)
	v.SetDefault("zone_area_ratios", def.ZoneAreaRatios)
	v.SetDefault("terrain_strategy", string(def.TerrainStrategy))
	v.SetDefault("subdivision_strategy", string(def.Strategy))
	v.SetDefault("solver_budget", def.SolverBudget.String())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading estate.yaml: %w", err)
		}
		// No file: defaults plus env are a complete configuration.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}
	return &cfg, nil
}

// SecondarySpacing returns the target secondary-divider spacing, adjusted
// by terrain posture: cautious grading keeps blocks smaller.
func (c *Config) SecondarySpacing() float64 {
	base := (c.SpacingMin + c.SpacingMax) / 2
	switch c.TerrainStrategy {
	case TerrainMinimalCut:
		return base * 0.85
	case TerrainMajorGrade:
		return base * 1.15
	default:
		return base
	}
}

// ZoneRatio returns the target area share for a zone name, or 0.
func (c *Config) ZoneRatio(zone string) float64 {
	return c.ZoneAreaRatios[zone]
}
