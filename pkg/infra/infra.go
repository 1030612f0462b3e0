// Package infra routes the three utility networks over the road graph:
// gravity sewer draining to the lowest point, and looped water and
// electrical distribution from the estate entrance.
package infra

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/estateforge/estateplan/pkg/config"
	"github.com/estateforge/estateplan/pkg/geom"
	"github.com/estateforge/estateplan/pkg/lots"
	"github.com/estateforge/estateplan/pkg/roads"
	"github.com/estateforge/estateplan/pkg/validation"
	"github.com/estateforge/estateplan/pkg/zoning"
)

// Utility identifies one of the planned service networks.
type Utility string

const (
	UtilityWater      Utility = "water"
	UtilitySewer      Utility = "sewer"
	UtilityElectrical Utility = "electrical"
)

// Per-metre trench-and-pipe rates plus the fixed cost of a junction
// chamber or manhole. Rates follow standard provincial estate budgets.
var unitCost = map[Utility]float64{
	UtilityWater:      1500,
	UtilitySewer:      2200,
	UtilityElectrical: 1200,
}

const junctionCost = 15000.0

// Network is one routed utility: the subset of graph nodes and edges it
// uses, with aggregate length, junction count, and cost.
type Network struct {
	Utility     Utility   `json:"utility"`
	Nodes       []Node    `json:"nodes"`
	Edges       []Edge    `json:"edges"`
	Source      orb.Point `json:"source"`
	TotalLength float64   `json:"total_length"`
	Junctions   int       `json:"junctions"`
	Looped      bool      `json:"looped"`
	Cost        float64   `json:"cost"`
}

// Plan is the full infrastructure result for a layout.
type Plan struct {
	Networks    []Network `json:"networks"`
	Transformer orb.Point `json:"transformer"`
	Outlet      orb.Point `json:"outlet"`
	OutletBlock string    `json:"outlet_block"`
	TotalCost   float64   `json:"total_cost"`
}

// CostFor returns the routed cost of one utility, zero if absent.
func (p *Plan) CostFor(u Utility) float64 {
	for _, n := range p.Networks {
		if n.Utility == u {
			return n.Cost
		}
	}
	return 0
}

// Planner routes utilities for one layout run.
type Planner struct {
	cfg *config.Config
}

// NewPlanner returns a planner bound to the given configuration.
func NewPlanner(cfg *config.Config) *Planner {
	return &Planner{cfg: cfg}
}

// Plan builds the routing graph from road centerlines and internal access
// roads, attaches one service terminal per lot, and routes the three
// networks. The report flags unreachable terminals.
func (pl *Planner) Plan(net *roads.Network, blocks []zoning.ZonedBlock, lotSet []lots.Lot, access []orb.LineString) (*Plan, *validation.Report) {
	report := validation.NewReport()

	polylines := make([]orb.LineString, 0, len(net.Segments)+len(access))
	for _, seg := range net.Segments {
		polylines = append(polylines, seg.Line)
	}
	polylines = append(polylines, access...)
	if len(polylines) == 0 {
		report.AddError(validation.Result{
			Level:   validation.LevelSpatial,
			Message: "no road centerlines to route utilities along",
		})
		return nil, report
	}

	rg := buildRouteGraph(polylines)

	// One terminal per serviced lot. Green and water blocks take no
	// connections.
	terminals := make([]int64, 0, len(lotSet))
	for _, lot := range lotSet {
		if lot.Zone == zoning.ZoneGreen || lot.Zone == zoning.ZoneWater {
			continue
		}
		terminals = append(terminals, rg.addTerminal(geom.Centroid(lot.Ring), "terminal"))
	}
	if len(terminals) == 0 {
		report.AddWarning(validation.Result{
			Level:   validation.LevelSpatial,
			Message: "no serviceable lots, utility plan is empty",
		})
		return &Plan{}, report
	}

	entranceID := rg.addTerminal(net.Entrance, "source")

	outletBlock, outletPt := lowestBlock(net, blocks)
	outletID := rg.addTerminal(outletPt, "source")

	transformer := transformerSite(blocks)
	transformerID := rg.addTerminal(transformer, "source")

	plan := &Plan{
		Transformer: transformer,
		Outlet:      outletPt,
		OutletBlock: outletBlock,
	}

	sewer, unreached := pl.gravityTree(rg, outletID, terminals)
	if unreached > 0 {
		report.MarkDegraded(validation.LevelSpatial,
			fmt.Sprintf("sewer: %d terminals unreachable from outlet", unreached))
	}
	plan.Networks = append(plan.Networks, sewer)

	water := pl.distribution(rg, UtilityWater, entranceID, terminals, true)
	plan.Networks = append(plan.Networks, water)

	elec := pl.distribution(rg, UtilityElectrical, transformerID, terminals, false)
	plan.Networks = append(plan.Networks, elec)

	for _, n := range plan.Networks {
		plan.TotalCost += n.Cost
	}
	report.AddInfo(validation.Result{
		Level: validation.LevelSpatial,
		Message: fmt.Sprintf("utilities routed: %.0f m total, cost %.0f",
			sewer.TotalLength+water.TotalLength+elec.TotalLength, plan.TotalCost),
	})
	return plan, report
}

// gravityTree routes every terminal to the outlet along shortest paths.
// Shared downstream runs are counted once, which is what makes the union
// a tree rooted at the outlet.
func (pl *Planner) gravityTree(rg *routeGraph, outletID int64, terminals []int64) (Network, int) {
	sp := rg.shortestFrom(outletID)
	edges := map[[2]int64]float64{}
	unreached := 0
	for _, t := range terminals {
		if !rg.pathEdges(sp, t, edges) {
			unreached++
		}
	}
	n := pl.assemble(UtilitySewer, rg, edges, false)
	n.Source = rg.nodes[outletID].Pt
	return n, unreached
}

// distribution routes a source-fed network as a Steiner-tree approximation:
// Kruskal MST over the metric closure of source plus terminals, expanded
// back into road-graph paths. When loop is set, the closure edge between
// the two terminals farthest apart is added to close a ring main.
func (pl *Planner) distribution(rg *routeGraph, u Utility, sourceID int64, terminals []int64, loop bool) Network {
	members := append([]int64{sourceID}, terminals...)

	// One Dijkstra per member gives the metric closure and the paths to
	// expand chosen closure edges with.
	paths := make(map[int64]path.Shortest, len(members))
	for _, m := range members {
		paths[m] = rg.shortestFrom(m)
	}

	closure := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for _, m := range members {
		closure.AddNode(simple.Node(m))
	}
	for i, a := range members {
		sp := paths[a]
		for _, b := range members[i+1:] {
			_, w := sp.To(b)
			if math.IsInf(w, 1) {
				continue
			}
			closure.SetWeightedEdge(simple.WeightedEdge{
				F: simple.Node(a), T: simple.Node(b), W: w,
			})
		}
	}

	mst := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	path.Kruskal(mst, closure)

	edges := map[[2]int64]float64{}
	it := mst.WeightedEdges()
	for it.Next() {
		e := it.WeightedEdge()
		rg.pathEdges(paths[e.From().ID()], e.To().ID(), edges)
	}

	looped := false
	if loop && len(terminals) >= 3 {
		// Close the ring between the two mutually farthest terminals.
		var fa, fb int64
		far := -1.0
		for i, a := range terminals {
			sp := paths[a]
			for _, b := range terminals[i+1:] {
				if _, w := sp.To(b); !math.IsInf(w, 1) && w > far {
					far, fa, fb = w, a, b
				}
			}
		}
		if far > 0 && rg.pathEdges(paths[fa], fb, edges) {
			looped = true
		}
	}

	n := pl.assemble(u, rg, edges, looped)
	n.Source = rg.nodes[sourceID].Pt
	return n
}

// assemble turns a deduplicated edge set into a Network with stats.
func (pl *Planner) assemble(u Utility, rg *routeGraph, edges map[[2]int64]float64, looped bool) Network {
	n := Network{Utility: u, Looped: looped}

	keys := make([][2]int64, 0, len(edges))
	for k := range edges {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	degree := map[int64]int{}
	seen := map[int64]bool{}
	for _, k := range keys {
		w := edges[k]
		n.Edges = append(n.Edges, Edge{From: k[0], To: k[1], Length: w})
		n.TotalLength += w
		degree[k[0]]++
		degree[k[1]]++
		for _, id := range k {
			if !seen[id] {
				seen[id] = true
				n.Nodes = append(n.Nodes, rg.nodes[id])
			}
		}
	}
	sort.Slice(n.Nodes, func(i, j int) bool { return n.Nodes[i].ID < n.Nodes[j].ID })

	for _, d := range degree {
		if d >= 3 {
			n.Junctions++
		}
	}
	n.Cost = unitCost[u]*n.TotalLength + junctionCost*float64(n.Junctions)
	return n
}

// lowestBlock picks the drainage outlet. Without a terrain model the
// elevation proxy is distance along the entrance axis: the site falls away
// from the entrance, so the farthest block centroid is the low point.
func lowestBlock(net *roads.Network, blocks []zoning.ZonedBlock) (string, orb.Point) {
	if len(blocks) == 0 {
		return "", net.Entrance
	}
	axis := net.Axis
	if geom.Length(axis) < geom.Eps {
		axis = orb.Point{1, 0}
	}
	bestID := blocks[0].ID
	bestPt := blocks[0].Centroid
	best := -math.MaxFloat64
	for _, b := range blocks {
		t := geom.Dot(geom.Sub(b.Centroid, net.Entrance), axis)
		if t > best {
			best = t
			bestID = b.ID
			bestPt = b.Centroid
		}
	}
	return bestID, bestPt
}

// transformerSite places the substation at the area-weighted centroid of
// the factory blocks, the dominant electrical load. Falls back to all
// blocks when no factory zone exists.
func transformerSite(blocks []zoning.ZonedBlock) orb.Point {
	var sx, sy, sw float64
	accumulate := func(b zoning.ZonedBlock) {
		sx += b.Centroid.X() * b.Area
		sy += b.Centroid.Y() * b.Area
		sw += b.Area
	}
	for _, b := range blocks {
		if b.Zone == zoning.ZoneFactory {
			accumulate(b)
		}
	}
	if sw < geom.Eps {
		for _, b := range blocks {
			accumulate(b)
		}
	}
	if sw < geom.Eps {
		return orb.Point{}
	}
	return orb.Point{sx / sw, sy / sw}
}
