// Package shape scores lot shape quality and improves the lot set by
// merging, discarding, or squaring-off lots that fall under the usability
// threshold.
package shape

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/estateforge/estateplan/pkg/geom"
)

// Metric weights: rectangular, well-proportioned lots sell; ragged ones
// do not.
const (
	weightRectangularity = 40.0
	weightAspect         = 30.0
	weightCompactness    = 15.0
	weightConvexity      = 15.0

	// idealAspect is the long/short ratio under which a lot reads as
	// well proportioned.
	idealAspect = 1.8
)

// Metrics are the four shape quality measures, each in [0, 1] after
// normalization.
type Metrics struct {
	Rectangularity float64 `json:"rectangularity"`
	AspectRatio    float64 `json:"aspect_ratio"` // raw long/short
	Compactness    float64 `json:"compactness"`
	Convexity      float64 `json:"convexity"`
}

// Score computes the 0-100 quality score of a lot shape along with the
// underlying metrics.
func Score(r orb.Ring) (float64, Metrics) {
	area := geom.Area(r)
	if area < geom.Eps {
		return 0, Metrics{}
	}

	mrr := geom.MinimumRotatedRect(r)
	rect := 0.0
	aspect := 0.0
	if mrr.Area() > geom.Eps {
		rect = math.Min(1, area/mrr.Area())
		aspect = mrr.Aspect()
	}

	perim := geom.Perimeter(r)
	compact := 0.0
	if perim > geom.Eps {
		compact = math.Min(1, 4*math.Pi*area/(perim*perim))
	}

	hull := geom.ConvexHull(geom.Open(r))
	convex := 0.0
	if hull != nil {
		if ha := geom.Area(hull); ha > geom.Eps {
			convex = math.Min(1, area/ha)
		}
	}

	aspectScore := 1.0
	if aspect > idealAspect {
		aspectScore = idealAspect / aspect
	}

	score := weightRectangularity*rect +
		weightAspect*aspectScore +
		weightCompactness*compact +
		weightConvexity*convex

	return score, Metrics{
		Rectangularity: rect,
		AspectRatio:    aspect,
		Compactness:    compact,
		Convexity:      convex,
	}
}
