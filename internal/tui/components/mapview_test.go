package components

import (
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapView_Bound(t *testing.T) {
	m := NewMapView(40, 10)
	m.SetView(orb.Point{10, 20}, 1)

	b := m.Bound()
	assert.Equal(t, orb.Point{-80, -25}, b.Min)
	assert.Equal(t, orb.Point{100, 65}, b.Max)

	m.SetView(orb.Point{0, 0}, 100)
	assert.Equal(t, maxZoom, m.Zoom())
	m.SetView(orb.Point{0, 0}, -3)
	assert.Equal(t, minZoom, m.Zoom())
}

func TestMapView_ZoomAndPan(t *testing.T) {
	m := NewMapView(40, 10)
	m.SetView(orb.Point{0, 0}, 2)

	m.ZoomIn()
	assert.Equal(t, 2.5, m.Zoom())
	m.ZoomOut()
	m.ZoomOut()
	assert.Equal(t, 1.5, m.Zoom())

	m.SetView(orb.Point{0, 0}, 1)
	m.Pan(0, 1)
	assert.InDelta(t, 18.0, m.Center()[0], 1e-9)
	m.Pan(100, 0)
	assert.Equal(t, 90.0, m.Center()[1], "latitude is clamped")
}

func TestMapView_View(t *testing.T) {
	m := NewMapView(20, 5)
	m.SetView(orb.Point{5, 5}, 4) // 22.5 x 11.25 degrees

	empty := m.View()
	lines := strings.Split(empty, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, strings.Repeat(" ", 20), lines[0])

	m.SetBorders([]orb.Geometry{orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}})
	m.SetPoints([]orb.Point{{5, 5}, {500, 5}})
	out := m.View()
	assert.NotEqual(t, empty, out)
	assert.Len(t, strings.Split(out, "\n"), 5)
	assert.True(t, strings.ContainsFunc(out, func(r rune) bool {
		return r > 0x2800 && r <= 0x28FF
	}), "borders and points render as braille")
}

func TestMapView_SetBordersFlattensRings(t *testing.T) {
	m := NewMapView(10, 5)
	outer := orb.Ring{{0, 0}, {4, 0}, {4, 4}, {0, 0}}
	hole := orb.Ring{{1, 1}, {2, 1}, {2, 2}, {1, 1}}

	m.SetBorders([]orb.Geometry{
		orb.Polygon{outer, hole},
		orb.MultiPolygon{{outer}, {hole}},
		orb.Point{1, 1},
	})
	assert.Len(t, m.borders, 4)

	m.SetBorders(nil)
	assert.Empty(t, m.borders)
}

func TestMapView_SelectedResetOnNewPoints(t *testing.T) {
	m := NewMapView(10, 5)
	m.SetPoints([]orb.Point{{0, 0}})
	m.SetSelected(0)
	assert.Equal(t, 0, m.selected)

	m.SetPoints([]orb.Point{{1, 1}})
	assert.Equal(t, -1, m.selected)
}

func TestMapView_ZeroSize(t *testing.T) {
	assert.Empty(t, NewMapView(0, 0).View())
}
