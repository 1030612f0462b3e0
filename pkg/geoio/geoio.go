// Package geoio reads parcel boundaries from GeoJSON and writes plan
// results back out as feature collections.
package geoio

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/estateforge/estateplan/pkg/pipeline"
)

// ParseParcels extracts parcel rings from a GeoJSON feature collection.
// Polygons contribute their outer ring; multipolygons one ring per part.
// Holes in input parcels are not supported and are dropped with the
// returned count.
func ParseParcels(data []byte) ([]orb.Ring, int, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing feature collection: %w", err)
	}

	var rings []orb.Ring
	dropped := 0
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			if len(g) > 0 {
				rings = append(rings, g[0])
				dropped += len(g) - 1
			}
		case orb.MultiPolygon:
			for _, p := range g {
				if len(p) > 0 {
					rings = append(rings, p[0])
					dropped += len(p) - 1
				}
			}
		case orb.Ring:
			rings = append(rings, g)
		}
	}
	if len(rings) == 0 {
		return nil, dropped, fmt.Errorf("no polygon features found")
	}
	return rings, dropped, nil
}

// LoadParcels reads parcel rings from a GeoJSON file. The second return
// counts interior rings the parser had to ignore.
func LoadParcels(path string) ([]orb.Ring, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	rings, dropped, err := ParseParcels(data)
	if err != nil {
		return nil, dropped, fmt.Errorf("%s: %w", path, err)
	}
	return rings, dropped, nil
}

// ExportResult renders a plan result as a GeoJSON feature collection:
// one feature per road segment, block, lot, reserve, and utility network.
func ExportResult(res *pipeline.Result) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, seg := range res.Network.Segments {
		f := geojson.NewFeature(seg.Line)
		f.Properties = geojson.Properties{
			"kind":  "road",
			"id":    seg.ID,
			"level": string(seg.Level),
			"width": seg.Width,
		}
		fc.Append(f)
	}

	for _, b := range res.Blocks {
		f := geojson.NewFeature(b.Polygon())
		f.Properties = geojson.Properties{
			"kind": "block",
			"id":   b.ID,
			"zone": string(b.Zone),
			"area": b.Area,
		}
		fc.Append(f)
	}

	for _, lot := range res.Lots {
		f := geojson.NewFeature(orb.Polygon{lot.Ring})
		f.Properties = geojson.Properties{
			"kind":     "lot",
			"id":       lot.ID,
			"block_id": lot.BlockID,
			"zone":     string(lot.Zone),
			"area":     lot.Area,
			"width":    lot.Width,
			"quality":  lot.Quality,
			"flagged":  lot.Flagged,
		}
		fc.Append(f)
	}

	for i, r := range res.Network.Reserves {
		f := geojson.NewFeature(orb.Polygon{r})
		f.Properties = geojson.Properties{
			"kind": "reserve",
			"id":   fmt.Sprintf("reserve_%02d", i+1),
		}
		fc.Append(f)
	}

	for _, line := range res.AccessRoads {
		f := geojson.NewFeature(line)
		f.Properties = geojson.Properties{"kind": "access_road"}
		fc.Append(f)
	}

	if res.Infra != nil {
		for _, n := range res.Infra.Networks {
			pts := make(map[int64]orb.Point, len(n.Nodes))
			for _, node := range n.Nodes {
				pts[node.ID] = node.Pt
			}
			for _, e := range n.Edges {
				f := geojson.NewFeature(orb.LineString{pts[e.From], pts[e.To]})
				f.Properties = geojson.Properties{
					"kind":    "utility",
					"utility": string(n.Utility),
					"length":  e.Length,
				}
				fc.Append(f)
			}
		}
	}
	return fc
}
