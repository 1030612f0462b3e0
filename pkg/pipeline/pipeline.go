// Package pipeline chains the planning stages into one run: normalize,
// roads, zoning, subdivision, shape optimization, utilities, and cost.
// Every stage has a degraded fallback; a run fails only when input
// geometry is unusable or configuration is fatally wrong.
package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/estateforge/estateplan/pkg/config"
	"github.com/estateforge/estateplan/pkg/cost"
	"github.com/estateforge/estateplan/pkg/geom"
	"github.com/estateforge/estateplan/pkg/infra"
	"github.com/estateforge/estateplan/pkg/lots"
	"github.com/estateforge/estateplan/pkg/proj"
	"github.com/estateforge/estateplan/pkg/roads"
	"github.com/estateforge/estateplan/pkg/shape"
	"github.com/estateforge/estateplan/pkg/validation"
	"github.com/estateforge/estateplan/pkg/zoning"
)

// Result is the complete output of one planning run, in the input
// coordinate system.
type Result struct {
	RunID   string        `json:"run_id"`
	Elapsed time.Duration `json:"elapsed"`

	Network     *roads.Network      `json:"network"`
	Blocks      []zoning.ZonedBlock `json:"blocks"`
	Lots        []lots.Lot          `json:"lots"`
	AccessRoads []orb.LineString    `json:"access_roads"`
	Infra       *infra.Plan         `json:"infra"`
	Cost        *cost.Report        `json:"cost"`

	Report  *validation.Report `json:"report"`
	Summary Summary            `json:"summary"`
}

// Run executes the full pipeline over the input parcels. A nil config
// uses the defaults. Errors are limited to fatal configuration and
// unusable input geometry; everything downstream degrades instead.
func Run(parcels []orb.Ring, cfg *config.Config) (*Result, error) {
	start := time.Now()
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}

	report := validation.ValidateConfig(cfg)
	if !report.Valid {
		return nil, &ConfigError{Reason: report.Errors[0].Message}
	}

	if len(parcels) == 0 {
		return nil, &InputGeometryError{Index: 0, Reason: "no parcels supplied"}
	}

	res := &Result{
		RunID:  uuid.NewString(),
		Report: report,
	}
	log := slog.With("run_id", res.RunID)

	repaired := make([]orb.Ring, 0, len(parcels))
	for i, p := range parcels {
		r, err := geom.Repair(p)
		if err != nil {
			return nil, &InputGeometryError{Index: i, Reason: err.Error()}
		}
		if len(r) != len(p) {
			report.MarkDegraded(validation.LevelGeometry,
				fmt.Sprintf("parcel %d repaired: %d vertices in, %d out", i, len(p), len(r)))
		}
		repaired = append(repaired, r)
	}

	frame := proj.NewFrame(repaired)
	local := make([]orb.Ring, len(repaired))
	for i, r := range repaired {
		local[i] = frame.RingToLocal(r)
	}
	site := unionParcels(local, report)
	if geom.Area(site) < geom.Eps {
		return nil, &InputGeometryError{Index: 0, Reason: "site has no area after normalization"}
	}

	net, blocks, roadReport := roads.Generate(site, cfg)
	report.Merge(roadReport)
	if len(blocks) == 0 {
		net, blocks = wholeSiteFallback(site, cfg, report)
	}
	if len(blocks) == 0 {
		return nil, &ExhaustedError{Stage: "roads", Reason: "no developable block could be formed"}
	}
	log.Info("roads generated", "segments", len(net.Segments), "blocks", len(blocks))

	classifier := zoning.NewClassifier(cfg, net)
	zoned, zoneReport := classifier.Classify(blocks)
	report.Merge(zoneReport)

	res.Network = net
	res.Blocks = zoned
	res.Lots, res.AccessRoads = subdivideAll(zoned, cfg, report)
	log.Info("blocks subdivided", "lots", len(res.Lots))

	optimizer := shape.NewOptimizer(zoned)
	optimized, shapeReport := optimizer.Optimize(res.Lots)
	report.Merge(shapeReport)
	res.Lots = optimized

	planner := infra.NewPlanner(cfg)
	plan, infraReport := planner.Plan(net, zoned, res.Lots, res.AccessRoads)
	report.Merge(infraReport)
	res.Infra = plan

	res.Cost = cost.Estimate(cfg, net, zoned, res.Lots, plan)
	res.Summary = summarize(res, site)

	restore(res, frame)
	res.Elapsed = time.Since(start)
	log.Info("run complete", "lots", len(res.Lots), "degraded", report.Degraded,
		"elapsed", res.Elapsed)
	return res, nil
}

// unionParcels merges multiple parcels into one site ring. Disjoint or
// overlapping parcels are unioned by convex hull, which over-covers
// concave assemblies; the report records when that happens.
func unionParcels(parcels []orb.Ring, report *validation.Report) orb.Ring {
	if len(parcels) == 1 {
		return parcels[0]
	}
	var pts []orb.Point
	for _, p := range parcels {
		pts = append(pts, geom.Open(p)...)
	}
	hull := geom.ConvexHull(pts)
	area := 0.0
	for _, p := range parcels {
		area += geom.Area(p)
	}
	if ha := geom.Area(hull); ha > area*1.02 {
		report.AddWarning(validation.Result{
			Level: validation.LevelGeometry,
			Message: fmt.Sprintf("parcel union by convex hull adds %.0f m² beyond the parcels",
				ha-area),
		})
	}
	return hull
}

// wholeSiteFallback treats the site inside the perimeter road as one or
// two blocks: halved across the long axis when both halves carry area,
// whole otherwise. The run is degraded but still complete.
func wholeSiteFallback(site orb.Ring, cfg *config.Config, report *validation.Report) (*roads.Network, []roads.Block) {
	inner := geom.Inset(site, cfg.RoadWidth)
	if geom.IsEmpty(inner) {
		inner = site
	}
	ca := geom.Centroid(inner)
	net := &roads.Network{Site: site, Entrance: site[0], Axis: geom.Normalize(geom.Sub(ca, site[0]))}

	rings := []orb.Ring{inner}
	if mrr := geom.MinimumRotatedRect(inner); mrr.Ring != nil {
		cut := geom.Scale(geom.Perp(mrr.Axis()), mrr.Long)
		left, right := geom.SplitByLine(inner, geom.Sub(ca, cut), geom.Add(ca, cut))
		if !geom.IsEmpty(left) && !geom.IsEmpty(right) {
			rings = []orb.Ring{left, right}
		}
	}

	var blocks []roads.Block
	for _, r := range rings {
		if geom.Area(r) < geom.Eps {
			continue
		}
		blocks = append(blocks, roads.Block{
			ID:       fmt.Sprintf("block_%02d", len(blocks)+1),
			Outer:    r,
			Area:     geom.Area(r),
			Centroid: geom.Centroid(r),
		})
	}
	if len(blocks) == 0 {
		return net, nil
	}
	report.MarkDegraded(validation.LevelSpatial,
		fmt.Sprintf("road generation fell back to %d whole-site block(s)", len(blocks)))
	return net, blocks
}

// subdivideAll runs the strategy chain over every developable block.
// Green and water blocks stay whole.
func subdivideAll(zoned []zoning.ZonedBlock, cfg *config.Config, report *validation.Report) ([]lots.Lot, []orb.LineString) {
	strategies := lots.StrategiesFor(cfg)
	var all []lots.Lot
	var access []orb.LineString

	for _, block := range zoned {
		if block.Zone == zoning.ZoneGreen || block.Zone == zoning.ZoneWater {
			continue
		}
		for _, s := range strategies {
			res, r := s.Subdivide(block, cfg)
			report.Merge(r)
			if len(res.Lots) == 0 {
				continue
			}
			all = append(all, res.Lots...)
			access = append(access, res.AccessLines...)
			break
		}
	}
	return all, access
}

// restore maps every output geometry back to the input coordinate system.
func restore(res *Result, frame *proj.Frame) {
	net := res.Network
	net.Site = frame.RingToInput(net.Site)
	net.Entrance = frame.ToInput(net.Entrance)
	for i := range net.Segments {
		net.Segments[i].Line = frame.LineToInput(net.Segments[i].Line)
	}
	for i := range net.Reserves {
		net.Reserves[i] = frame.RingToInput(net.Reserves[i])
	}

	for i := range res.Blocks {
		b := &res.Blocks[i]
		b.Outer = frame.RingToInput(b.Outer)
		for j := range b.Holes {
			b.Holes[j] = frame.RingToInput(b.Holes[j])
		}
		b.Centroid = frame.ToInput(b.Centroid)
	}

	for i := range res.Lots {
		res.Lots[i].Ring = frame.RingToInput(res.Lots[i].Ring)
	}
	for i := range res.AccessRoads {
		res.AccessRoads[i] = frame.LineToInput(res.AccessRoads[i])
	}

	if res.Infra != nil {
		res.Infra.Transformer = frame.ToInput(res.Infra.Transformer)
		res.Infra.Outlet = frame.ToInput(res.Infra.Outlet)
		for i := range res.Infra.Networks {
			n := &res.Infra.Networks[i]
			n.Source = frame.ToInput(n.Source)
			for j := range n.Nodes {
				n.Nodes[j].Pt = frame.ToInput(n.Nodes[j].Pt)
			}
		}
	}
}
