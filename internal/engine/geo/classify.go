package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ErrInvalidGeometry is returned for geometries the classifier and centroid
// calculator refuse to work with.
var ErrInvalidGeometry = errors.New("invalid geometry")

// edgeTolerance is the distance, relative to an edge's length, within which a
// point is treated as lying on that edge.
const edgeTolerance = 1e-9

// Contains reports whether point lies inside a polygon or multi-polygon.
//
// Points on any ring edge or vertex, outer ring or hole, count as inside.
// "On" allows for float rounding: a point within edgeTolerance times the edge
// length of an edge is on it. A point strictly inside a hole is outside.
func Contains(g orb.Geometry, point orb.Point) (bool, error) {
	c, err := NewClassifier(g)
	if err != nil {
		return false, err
	}
	return c.Contains(point), nil
}

// Classifier tests many points against one validated geometry.
type Classifier struct {
	geom  orb.Geometry
	bound orb.Bound
}

// NewClassifier validates g once so Contains can be called per point without
// repeating the checks.
func NewClassifier(g orb.Geometry) (*Classifier, error) {
	if err := Validate(g); err != nil {
		return nil, err
	}
	return &Classifier{geom: g, bound: padBound(g.Bound())}, nil
}

// Bound is the bounding box of the classified geometry, padded by the edge
// tolerance.
func (c *Classifier) Bound() orb.Bound { return c.bound }

// Contains applies the same boundary policy as the package-level Contains.
func (c *Classifier) Contains(point orb.Point) bool {
	if !c.bound.Contains(point) {
		return false
	}
	switch g := c.geom.(type) {
	case orb.Polygon:
		return polygonContains(g, point)
	case orb.MultiPolygon:
		for _, poly := range g {
			if polygonContains(poly, point) {
				return true
			}
		}
	}
	return false
}

func polygonContains(p orb.Polygon, point orb.Point) bool {
	if onRing(p[0], point) {
		return true
	}
	if !planar.RingContains(p[0], point) {
		return false
	}
	for _, hole := range p[1:] {
		if onRing(hole, point) {
			return true
		}
		if planar.RingContains(hole, point) {
			return false
		}
	}
	return true
}

// onRing reports whether point touches any edge of r, including the closing
// edge of an unclosed ring. A point counts as touching an edge when its
// distance to it is within edgeTolerance of the edge's length, so points
// rounded onto diagonal edges still count.
func onRing(r orb.Ring, point orb.Point) bool {
	if !padBound(r.Bound()).Contains(point) {
		return false
	}
	for i := range r {
		next := r[(i+1)%len(r)]
		limit := edgeTolerance * edgeTolerance * planar.DistanceSquared(r[i], next)
		if planar.DistanceFromSegmentSquared(r[i], next, point) <= limit {
			return true
		}
	}
	return false
}

func padBound(b orb.Bound) orb.Bound {
	return b.Pad(edgeTolerance * math.Max(b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]))
}

// Validate checks that g is a polygon or multi-polygon whose rings each have at
// least three distinct, finite points.
func Validate(g orb.Geometry) error {
	switch g := g.(type) {
	case orb.Polygon:
		return validatePolygon(g)
	case orb.MultiPolygon:
		if len(g) == 0 {
			return fmt.Errorf("%w: empty multipolygon", ErrInvalidGeometry)
		}
		for i, poly := range g {
			if err := validatePolygon(poly); err != nil {
				return fmt.Errorf("polygon %d: %w", i, err)
			}
		}
		return nil
	case nil:
		return fmt.Errorf("%w: missing geometry", ErrInvalidGeometry)
	default:
		return fmt.Errorf("%w: unexpected geometry type %T", ErrInvalidGeometry, g)
	}
}

func validatePolygon(p orb.Polygon) error {
	if len(p) == 0 {
		return fmt.Errorf("%w: polygon has no rings", ErrInvalidGeometry)
	}
	for i, r := range p {
		for _, pt := range r {
			if !finite(pt) {
				return fmt.Errorf("%w: ring %d has non-finite coordinate %v", ErrInvalidGeometry, i, pt)
			}
		}
		if n := distinctPoints(r, 3); n < 3 {
			return fmt.Errorf("%w: ring %d has %d distinct points", ErrInvalidGeometry, i, n)
		}
	}
	return nil
}

// distinctPoints counts distinct points in r, stopping once limit is reached.
func distinctPoints(r orb.Ring, limit int) int {
	seen := make([]orb.Point, 0, limit)
	for _, pt := range r {
		dup := false
		for _, s := range seen {
			if s.Equal(pt) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen = append(seen, pt)
		if len(seen) == limit {
			break
		}
	}
	return len(seen)
}

func finite(p orb.Point) bool {
	return !math.IsNaN(p[0]) && !math.IsInf(p[0], 0) &&
		!math.IsNaN(p[1]) && !math.IsInf(p[1], 0)
}
