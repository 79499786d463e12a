package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Center returns a point to re-center a viewport on.
//
// For a polygon it is the area-weighted centroid of the outer ring; holes are
// ignored. For a multi-polygon it is the centroid of the constituent polygon
// with the largest outer-ring area, the earliest one on ties.
func Center(g orb.Geometry) (orb.Point, error) {
	if err := Validate(g); err != nil {
		return orb.Point{}, err
	}

	switch g := g.(type) {
	case orb.Polygon:
		c, area := ringCentroid(g[0])
		if area == 0 {
			return orb.Point{}, fmt.Errorf("%w: outer ring has zero area", ErrInvalidGeometry)
		}
		return c, nil
	case orb.MultiPolygon:
		var (
			best     orb.Point
			bestArea float64
		)
		for _, poly := range g {
			c, area := ringCentroid(poly[0])
			if area > bestArea {
				best, bestArea = c, area
			}
		}
		if bestArea == 0 {
			return orb.Point{}, fmt.Errorf("%w: every outer ring has zero area", ErrInvalidGeometry)
		}
		return best, nil
	}

	// Validate only lets polygons and multi-polygons through.
	return orb.Point{}, fmt.Errorf("%w: unexpected geometry type %T", ErrInvalidGeometry, g)
}

func ringCentroid(r orb.Ring) (orb.Point, float64) {
	c, area := planar.CentroidArea(r)
	return c, math.Abs(area)
}
