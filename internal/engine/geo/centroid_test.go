package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCenter_Square(t *testing.T) {
	c, err := Center(orb.Polygon{square(0, 0, 10, 10)})
	require.NoError(t, err)
	assert.Equal(t, orb.Point{5, 5}, c)
}

func TestCenter_IgnoresHoles(t *testing.T) {
	// An off-center hole would pull a hole-adjusted centroid away from (5,5).
	c, err := Center(orb.Polygon{square(0, 0, 10, 10), square(6, 6, 9, 9)})
	require.NoError(t, err)
	assert.Equal(t, orb.Point{5, 5}, c)
}

func TestCenter_ClockwiseRing(t *testing.T) {
	ring := orb.Ring{{0, 0}, {0, 4}, {4, 4}, {4, 0}, {0, 0}}
	c, err := Center(orb.Polygon{ring})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, c[0], 1e-9)
	assert.InDelta(t, 2.0, c[1], 1e-9)
}

func TestCenter_MultiPolygonUsesLargest(t *testing.T) {
	mp := orb.MultiPolygon{
		{square(0, 0, 2, 2)},
		{square(40, 40, 60, 60)},
		{square(100, 100, 101, 101)},
	}
	c, err := Center(mp)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, c[0], 1e-9)
	assert.InDelta(t, 50.0, c[1], 1e-9)
}

func TestCenter_MultiPolygonTieKeepsFirst(t *testing.T) {
	mp := orb.MultiPolygon{
		{square(0, 0, 10, 10)},
		{square(20, 20, 30, 30)},
	}
	c, err := Center(mp)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, c[0], 1e-9)
	assert.InDelta(t, 5.0, c[1], 1e-9)
}

func TestCenter_Invalid(t *testing.T) {
	tests := []struct {
		name string
		geom orb.Geometry
	}{
		{name: "nil", geom: nil},
		{name: "empty polygon", geom: orb.Polygon{}},
		{name: "empty multipolygon", geom: orb.MultiPolygon{}},
		{name: "point ring", geom: orb.Polygon{{{1, 1}, {1, 1}, {1, 1}}}},
		{name: "collinear ring", geom: orb.Polygon{{{0, 0}, {1, 1}, {2, 2}, {0, 0}}}},
		{name: "line string", geom: orb.LineString{{0, 0}, {1, 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Center(tt.geom)
			assert.ErrorIs(t, err, ErrInvalidGeometry)
		})
	}
}
