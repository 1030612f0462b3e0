package shape

import (
	"fmt"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"

	"github.com/estateforge/estateplan/pkg/geom"
	"github.com/estateforge/estateplan/pkg/lots"
	"github.com/estateforge/estateplan/pkg/validation"
	"github.com/estateforge/estateplan/pkg/zoning"
)

const (
	// defaultMinScore is the usability threshold under which a lot
	// becomes a merge candidate. Perfectly rectangular slivers score in
	// the high 50s from the rectangularity and convexity terms alone, so
	// the bar sits above them.
	defaultMinScore = 60.0

	// adjacencyDist is the maximum boundary gap for two lots to count
	// as geometrically adjacent.
	adjacencyDist = 1.0

	// discardAreaFactor: unmergeable low-quality lots below this multiple
	// of the minimum lot area are dropped rather than kept flagged.
	discardAreaFactor = 1.5

	// mrrAreaRetention: a squared-off replacement must keep at least this
	// share of the rectangle filled by the original lot.
	mrrAreaRetention = 0.90

	minLotArea = 100.0
)

// Optimizer improves a lot set in place: scoring, merging adjacent poor
// lots, discarding unusable remainders, and squaring off stubborn shapes.
type Optimizer struct {
	MinScore float64
	blocks   map[string]zoning.ZonedBlock
}

// NewOptimizer creates an optimizer over the given block set. Blocks are
// needed to keep squared-off lots clipped to their parent.
func NewOptimizer(blocks []zoning.ZonedBlock) *Optimizer {
	idx := make(map[string]zoning.ZonedBlock, len(blocks))
	for _, b := range blocks {
		idx[b.ID] = b
	}
	return &Optimizer{MinScore: defaultMinScore, blocks: idx}
}

// lotItem adapts a lot index for the R-tree.
type lotItem struct {
	idx  int
	rect rtreego.Rect
}

var _ rtreego.Spatial = (*lotItem)(nil)

func (it *lotItem) Bounds() rtreego.Rect { return it.rect }

// Optimize scores every lot and runs the merge, discard, and square-off
// passes. Merged lots always score at least as high as both sources.
func (o *Optimizer) Optimize(input []lots.Lot) ([]lots.Lot, *validation.Report) {
	report := validation.NewReport()
	if len(input) == 0 {
		return input, report
	}

	working := append([]lots.Lot(nil), input...)
	for i := range working {
		working[i].Quality, _ = Score(working[i].Ring)
	}

	tree := rtreego.NewTree(2, 25, 50)
	for i := range working {
		if r, ok := boundsRect(working[i].Ring, adjacencyDist); ok {
			tree.Insert(&lotItem{idx: i, rect: r})
		}
	}

	consumed := make([]bool, len(working))
	var merged []lots.Lot
	mergeCount := 0

	for i := range working {
		if consumed[i] || working[i].Quality >= o.MinScore {
			continue
		}
		j := o.findMergePartner(tree, working, consumed, i)
		if j < 0 {
			continue
		}
		lot, ok := o.merge(working[i], working[j])
		if !ok {
			continue
		}
		consumed[i], consumed[j] = true, true
		merged = append(merged, lot)
		mergeCount++
	}

	var out []lots.Lot
	discarded := 0
	for i := range working {
		if consumed[i] {
			continue
		}
		lot := working[i]
		if lot.Quality < o.MinScore {
			if lot.Area < discardAreaFactor*minLotArea {
				discarded++
				continue
			}
			lot.Flagged = true
		}
		out = append(out, lot)
	}
	out = append(out, merged...)

	// Square-off pass: replace a still-poor lot with its minimum rotated
	// rectangle when the rectangle is nearly filled and scores higher.
	for i := range out {
		if out[i].Quality >= o.MinScore {
			continue
		}
		if rect, score, ok := o.squareOff(out[i]); ok {
			out[i].Ring = rect
			out[i].Area = geom.Area(rect)
			out[i].Quality = score
			out[i].Flagged = score < o.MinScore
		}
	}

	if mergeCount > 0 || discarded > 0 {
		report.AddInfo(validation.Result{
			Level: validation.LevelSpatial,
			Message: fmt.Sprintf("shape pass: %d merges, %d discards, %d lots kept",
				mergeCount, discarded, len(out)),
		})
	}
	return out, report
}

// findMergePartner locates the nearest low-quality uncommitted neighbor
// within the adjacency distance.
func (o *Optimizer) findMergePartner(tree *rtreego.Rtree, working []lots.Lot, consumed []bool, i int) int {
	query, ok := boundsRect(working[i].Ring, adjacencyDist)
	if !ok {
		return -1
	}
	best := -1
	bestDist := adjacencyDist
	for _, sp := range tree.SearchIntersect(query) {
		it := sp.(*lotItem)
		j := it.idx
		if j == i || consumed[j] || working[j].Quality >= o.MinScore {
			continue
		}
		d := geom.RingToRingDistance(working[i].Ring, working[j].Ring)
		if d <= bestDist {
			bestDist = d
			best = j
		}
	}
	return best
}

// merge combines two adjacent lots. The union of two touching lots is
// approximated by the convex hull of their vertices, which is exact for
// the abutting rectangles the subdividers emit. The merge is accepted only
// when it outscores both sources and clears the usability threshold.
func (o *Optimizer) merge(a, b lots.Lot) (lots.Lot, bool) {
	pts := append(append([]orb.Point{}, geom.Open(a.Ring)...), geom.Open(b.Ring)...)
	ring := geom.ConvexHull(pts)
	if ring == nil {
		return lots.Lot{}, false
	}
	score, _ := Score(ring)
	if score < a.Quality || score < b.Quality || score < o.MinScore {
		return lots.Lot{}, false
	}

	// The majority contributor keeps naming rights and the zone.
	major, minor := a, b
	if b.Area > a.Area {
		major, minor = b, a
	}

	mrr := geom.MinimumRotatedRect(ring)
	return lots.Lot{
		ID:            major.ID + "m",
		BlockID:       major.BlockID,
		Ring:          ring,
		Zone:          major.Zone,
		Width:         mrr.Short,
		Depth:         mrr.Long,
		Area:          geom.Area(ring),
		Frontage:      major.Frontage + minor.Frontage,
		HasRoadAccess: major.HasRoadAccess || minor.HasRoadAccess,
		Corner:        major.Corner || minor.Corner,
		Quality:       score,
	}, true
}

// squareOff returns the lot's minimum rotated rectangle, clipped to the
// parent block, when it retains enough of the original area and raises
// the score.
func (o *Optimizer) squareOff(lot lots.Lot) (orb.Ring, float64, bool) {
	mrr := geom.MinimumRotatedRect(lot.Ring)
	if mrr.Ring == nil || mrr.Area() < geom.Eps {
		return nil, 0, false
	}
	if lot.Area/mrr.Area() < mrrAreaRetention {
		return nil, 0, false
	}

	rect := mrr.Ring
	if block, ok := o.blocks[lot.BlockID]; ok {
		clipped := geom.ClipToConvex(block.Outer, rect)
		if geom.IsEmpty(clipped) {
			return nil, 0, false
		}
		rect = clipped
	}
	score, _ := Score(rect)
	if score <= lot.Quality {
		return nil, 0, false
	}
	return rect, score, true
}

// boundsRect builds an R-tree rectangle for a ring, padded by margin.
func boundsRect(r orb.Ring, margin float64) (rtreego.Rect, bool) {
	if len(r) == 0 {
		return rtreego.Rect{}, false
	}
	b := r.Bound()
	rect, err := rtreego.NewRect(
		rtreego.Point{b.Min.X() - margin, b.Min.Y() - margin},
		[]float64{b.Max.X() - b.Min.X() + 2*margin, b.Max.Y() - b.Min.Y() + 2*margin},
	)
	if err != nil {
		return rtreego.Rect{}, false
	}
	return rect, true
}
