package infra

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/estateforge/estateplan/pkg/geom"
)

const (
	sampleStep = 25.0 // road centerline sampling interval, metres
	snapDist   = 5.0  // nodes closer than this collapse into one
)

// Node is a vertex of the utility routing graph.
type Node struct {
	ID   int64     `json:"id"`
	Pt   orb.Point `json:"pt"`
	Kind string    `json:"kind"` // road | terminal | source
}

// Edge is an undirected routing edge between two nodes.
type Edge struct {
	From   int64   `json:"from"`
	To     int64   `json:"to"`
	Length float64 `json:"length"`
}

// routeGraph is the shared routing substrate: road centerline samples
// joined at crossings, wrapped around a gonum weighted graph.
type routeGraph struct {
	nodes []Node
	g     *simple.WeightedUndirectedGraph
}

// buildRouteGraph samples every polyline, inserts crossing points, snaps
// nearby samples together, and links consecutive stations.
func buildRouteGraph(polylines []orb.LineString) *routeGraph {
	rg := &routeGraph{g: simple.NewWeightedUndirectedGraph(0, math.Inf(1))}
	snap := map[[2]int64]int64{}

	nodeAt := func(p orb.Point) int64 {
		key := [2]int64{int64(math.Round(p.X() / snapDist)), int64(math.Round(p.Y() / snapDist))}
		if id, ok := snap[key]; ok {
			return id
		}
		id := int64(len(rg.nodes))
		rg.nodes = append(rg.nodes, Node{ID: id, Pt: p, Kind: "road"})
		rg.g.AddNode(simple.Node(id))
		snap[key] = id
		return id
	}

	for li, line := range polylines {
		stations := sampleStations(line)
		// Crossing points with every other polyline join the graphs.
		for lj, other := range polylines {
			if lj == li {
				continue
			}
			for _, ix := range lineCrossings(line, other) {
				stations = append(stations, ix)
			}
		}
		orderAlong(line, stations)

		prev := int64(-1)
		for _, st := range stations {
			id := nodeAt(st)
			if prev >= 0 && prev != id {
				w := planar.Distance(rg.nodes[prev].Pt, rg.nodes[id].Pt)
				if w > geom.Eps {
					rg.g.SetWeightedEdge(simple.WeightedEdge{
						F: simple.Node(prev), T: simple.Node(id), W: w,
					})
				}
			}
			prev = id
		}
	}
	return rg
}

// addTerminal attaches an off-network point to its nearest road node with
// a service connection edge and returns the new node id.
func (rg *routeGraph) addTerminal(p orb.Point, kind string) int64 {
	nearest := rg.nearestRoadNode(p)
	id := int64(len(rg.nodes))
	rg.nodes = append(rg.nodes, Node{ID: id, Pt: p, Kind: kind})
	rg.g.AddNode(simple.Node(id))
	if nearest >= 0 && nearest != id {
		w := planar.Distance(p, rg.nodes[nearest].Pt)
		if w < geom.Eps {
			w = geom.Eps
		}
		rg.g.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(id), T: simple.Node(nearest), W: w,
		})
	}
	return id
}

// nearestRoadNode returns the closest road-kind node to p, or -1.
func (rg *routeGraph) nearestRoadNode(p orb.Point) int64 {
	best := int64(-1)
	bestD := math.MaxFloat64
	for _, n := range rg.nodes {
		if n.Kind != "road" {
			continue
		}
		if d := planar.Distance(p, n.Pt); d < bestD {
			bestD = d
			best = n.ID
		}
	}
	return best
}

// shortestFrom wraps Dijkstra from the given node.
func (rg *routeGraph) shortestFrom(src int64) path.Shortest {
	return path.DijkstraFrom(simple.Node(src), rg.g)
}

// pathEdges converts a Dijkstra node path into deduplicatable edges.
func (rg *routeGraph) pathEdges(sp path.Shortest, dst int64, sink map[[2]int64]float64) bool {
	nodes, w := sp.To(dst)
	if len(nodes) < 2 || math.IsInf(w, 1) {
		return false
	}
	for i := 0; i < len(nodes)-1; i++ {
		a, b := nodes[i].ID(), nodes[i+1].ID()
		if a > b {
			a, b = b, a
		}
		sink[[2]int64{a, b}] = planar.Distance(rg.nodes[a].Pt, rg.nodes[b].Pt)
	}
	return true
}

// sampleStations returns points along a polyline at the sampling interval,
// always including both endpoints.
func sampleStations(line orb.LineString) []orb.Point {
	var out []orb.Point
	if len(line) == 0 {
		return out
	}
	out = append(out, line[0])
	for i := 0; i < len(line)-1; i++ {
		a, b := line[i], line[i+1]
		segLen := planar.Distance(a, b)
		steps := int(segLen / sampleStep)
		for s := 1; s <= steps; s++ {
			out = append(out, geom.Lerp(a, b, float64(s)*sampleStep/segLen))
		}
		out = append(out, b)
	}
	return out
}

// lineCrossings returns the intersection points of two polylines.
func lineCrossings(a, b orb.LineString) []orb.Point {
	var out []orb.Point
	for i := 0; i < len(a)-1; i++ {
		for j := 0; j < len(b)-1; j++ {
			if ix, ok := segmentCrossing(a[i], a[i+1], b[j], b[j+1]); ok {
				out = append(out, ix)
			}
		}
	}
	return out
}

// segmentCrossing intersects two segments, inclusive of endpoints.
func segmentCrossing(p1, p2, p3, p4 orb.Point) (orb.Point, bool) {
	d := geom.Sub(p2, p1)
	e := geom.Sub(p4, p3)
	denom := geom.Cross(d, e)
	if math.Abs(denom) < 1e-12 {
		return orb.Point{}, false
	}
	diff := geom.Sub(p3, p1)
	t := geom.Cross(diff, e) / denom
	u := geom.Cross(diff, d) / denom
	if t < -1e-9 || t > 1+1e-9 || u < -1e-9 || u > 1+1e-9 {
		return orb.Point{}, false
	}
	return geom.Lerp(p1, p2, math.Max(0, math.Min(1, t))), true
}

// orderAlong sorts stations by their arc-length position along the
// polyline, so consecutive stations are neighbors on the road even for
// closed ring centerlines.
func orderAlong(line orb.LineString, stations []orb.Point) {
	if len(line) < 2 {
		return
	}
	cum := make([]float64, len(line))
	for i := 1; i < len(line); i++ {
		cum[i] = cum[i-1] + planar.Distance(line[i-1], line[i])
	}
	param := func(p orb.Point) float64 {
		best := math.MaxFloat64
		at := 0.0
		for i := 0; i < len(line)-1; i++ {
			q := geom.NearestOnSegment(p, line[i], line[i+1])
			if d := planar.Distance(p, q); d < best {
				best = d
				at = cum[i] + planar.Distance(line[i], q)
			}
		}
		return at
	}
	keys := make(map[orb.Point]float64, len(stations))
	for _, st := range stations {
		keys[st] = param(st)
	}
	sort.SliceStable(stations, func(i, j int) bool {
		return keys[stations[i]] < keys[stations[j]]
	})
}
