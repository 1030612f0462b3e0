package geoio

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estateforge/estateplan/pkg/geom"
	"github.com/estateforge/estateplan/pkg/infra"
	"github.com/estateforge/estateplan/pkg/lots"
	"github.com/estateforge/estateplan/pkg/pipeline"
	"github.com/estateforge/estateplan/pkg/roads"
	"github.com/estateforge/estateplan/pkg/zoning"
)

func parcelJSON(t *testing.T) []byte {
	t.Helper()
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Polygon{geom.Rect(0, 0, 1000, 500)}))
	data, err := fc.MarshalJSON()
	require.NoError(t, err)
	return data
}

func TestParseParcels(t *testing.T) {
	rings, dropped, err := ParseParcels(parcelJSON(t))
	require.NoError(t, err)
	assert.Zero(t, dropped)
	require.Len(t, rings, 1)
	assert.InDelta(t, 500000, geom.Area(rings[0]), 1e-6)
}

func TestParseParcelsMultiPolygon(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.MultiPolygon{
		{geom.Rect(0, 0, 100, 100)},
		{geom.Rect(200, 0, 300, 100), geom.Rect(220, 20, 280, 80)}, // one hole
	}))
	data, err := fc.MarshalJSON()
	require.NoError(t, err)

	rings, dropped, err := ParseParcels(data)
	require.NoError(t, err)
	assert.Len(t, rings, 2)
	assert.Equal(t, 1, dropped)
}

func TestParseParcelsRejectsEmptyCollection(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Point{1, 2}))
	data, err := fc.MarshalJSON()
	require.NoError(t, err)

	_, _, err = ParseParcels(data)
	assert.Error(t, err)
}

func TestLoadParcels(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "parcels.geojson")
	require.NoError(t, os.WriteFile(path, parcelJSON(t), 0o644))

	rings, dropped, err := LoadParcels(path)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	assert.Len(t, rings, 1)

	_, _, err = LoadParcels(filepath.Join(dir, "missing.geojson"))
	assert.Error(t, err)
}

func TestExportResult(t *testing.T) {
	res := &pipeline.Result{
		RunID: "test",
		Network: &roads.Network{
			Site: geom.Rect(0, 0, 100, 100),
			Segments: []roads.Segment{
				{ID: "main_01", Level: roads.LevelMain, Width: 14,
					Line: orb.LineString{{0, 50}, {100, 50}}},
			},
			Reserves: []orb.Ring{geom.Rect(0, 0, 10, 10)},
		},
		Blocks: []zoning.ZonedBlock{
			{Block: roads.Block{ID: "block_01", Outer: geom.Rect(14, 14, 86, 86)}, Zone: zoning.ZoneFactory},
		},
		Lots: []lots.Lot{
			{ID: "block_01_lot_01", BlockID: "block_01", Ring: geom.Rect(14, 14, 50, 50), Zone: zoning.ZoneFactory},
		},
		AccessRoads: []orb.LineString{{{14, 30}, {86, 30}}},
		Infra: &infra.Plan{
			Networks: []infra.Network{{
				Utility: infra.UtilityWater,
				Nodes: []infra.Node{
					{ID: 0, Pt: orb.Point{0, 50}}, {ID: 1, Pt: orb.Point{100, 50}},
				},
				Edges: []infra.Edge{{From: 0, To: 1, Length: 100}},
			}},
		},
	}

	fc := ExportResult(res)
	kinds := map[string]int{}
	for _, f := range fc.Features {
		kinds[f.Properties.MustString("kind", "")]++
	}
	assert.Equal(t, 1, kinds["road"])
	assert.Equal(t, 1, kinds["block"])
	assert.Equal(t, 1, kinds["lot"])
	assert.Equal(t, 1, kinds["reserve"])
	assert.Equal(t, 1, kinds["access_road"])
	assert.Equal(t, 1, kinds["utility"])

	// The collection must survive a marshal round trip.
	data, err := fc.MarshalJSON()
	require.NoError(t, err)
	var back map[string]any
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "FeatureCollection", back["type"])
}
