package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, 14.0, c.RoadWidth)
	assert.Equal(t, TerrainBalanced, c.TerrainStrategy)
	assert.Equal(t, StrategyRows, c.Strategy)
	assert.Equal(t, 2*time.Second, c.SolverBudget)

	sum := 0.0
	for _, v := range c.ZoneAreaRatios {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(dir)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.RoadWidth, c.RoadWidth)
	assert.Equal(t, def.SpacingMin, c.SpacingMin)
}

func TestLoadProjectFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
road_width: 18
spacing_min: 120
spacing_max: 260
target_lot_width: 35
terrain_strategy: minimal-cut
subdivision_strategy: frontage
zone_area_ratios:
  factory: 0.5
  warehouse: 0.3
  service: 0.15
  green: 0.05
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "estate.yaml"), []byte(yaml), 0o644))

	c, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 18.0, c.RoadWidth)
	assert.Equal(t, 120.0, c.SpacingMin)
	assert.Equal(t, TerrainMinimalCut, c.TerrainStrategy)
	assert.Equal(t, StrategyFrontage, c.Strategy)
	assert.Equal(t, 0.5, c.ZoneRatio("factory"))
	// Unset keys keep their defaults.
	assert.Equal(t, Default().MinLotWidth, c.MinLotWidth)
}

func TestSecondarySpacingByTerrain(t *testing.T) {
	c := Default()
	c.SpacingMin, c.SpacingMax = 100, 200

	c.TerrainStrategy = TerrainBalanced
	balanced := c.SecondarySpacing()
	assert.InDelta(t, 150, balanced, 1e-9)

	c.TerrainStrategy = TerrainMinimalCut
	assert.Less(t, c.SecondarySpacing(), balanced,
		"cautious earthworks keep blocks smaller")

	c.TerrainStrategy = TerrainMajorGrade
	assert.Greater(t, c.SecondarySpacing(), balanced)
}

func TestZoneRatioFallback(t *testing.T) {
	c := Default()
	assert.Equal(t, 0.0, c.ZoneRatio("nonexistent"))
}
