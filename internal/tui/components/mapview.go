package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/paulmach/orb"

	"github.com/rendis/quakemap/internal/tui/styles"
)

const (
	minZoom = 0.5
	maxZoom = 12.0
)

// MapView renders country borders and earthquake epicenters using Braille
// characters. The viewport is a center plus a web-map style zoom level: at
// zoom z the view spans 360/2^z degrees of longitude.
type MapView struct {
	width    int
	height   int
	points   []orb.Point
	borders  []orb.Ring
	selected int // index into points, -1 if none

	center orb.Point
	zoom   float64
}

func NewMapView(width, height int) MapView {
	return MapView{
		width:    width,
		height:   height,
		selected: -1,
		zoom:     1,
	}
}

func (m *MapView) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetBorders replaces the drawn boundaries with every ring of the given
// polygons and multi-polygons.
func (m *MapView) SetBorders(geoms []orb.Geometry) {
	m.borders = nil
	for _, g := range geoms {
		switch g := g.(type) {
		case orb.Polygon:
			m.borders = append(m.borders, g...)
		case orb.MultiPolygon:
			for _, p := range g {
				m.borders = append(m.borders, p...)
			}
		}
	}
}

func (m *MapView) SetPoints(points []orb.Point) {
	m.points = points
	m.selected = -1
}

func (m *MapView) SetSelected(idx int) {
	m.selected = idx
}

// SetView moves the viewport to center at the given zoom level.
func (m *MapView) SetView(center orb.Point, zoom float64) {
	m.center = center
	m.zoom = clampZoom(zoom)
}

func (m MapView) Center() orb.Point { return m.center }
func (m MapView) Zoom() float64     { return m.zoom }

func (m *MapView) ZoomIn()  { m.zoom = clampZoom(m.zoom + 0.5) }
func (m *MapView) ZoomOut() { m.zoom = clampZoom(m.zoom - 0.5) }

// Pan shifts the center by a tenth of the visible span per step.
func (m *MapView) Pan(dLat, dLng float64) {
	b := m.Bound()
	m.center[0] += dLng * (b.Max[0] - b.Min[0]) * 0.1
	m.center[1] += dLat * (b.Max[1] - b.Min[1]) * 0.1
	m.center[1] = math.Max(-90, math.Min(90, m.center[1]))
}

// Bound returns the geographic area currently visible.
func (m MapView) Bound() orb.Bound {
	halfLng := 360 / math.Pow(2, m.zoom) / 2
	halfLat := halfLng / 2
	return orb.Bound{
		Min: orb.Point{m.center[0] - halfLng, m.center[1] - halfLat},
		Max: orb.Point{m.center[0] + halfLng, m.center[1] + halfLat},
	}
}

func clampZoom(z float64) float64 {
	return math.Max(minZoom, math.Min(maxZoom, z))
}

// Braille character encoding:
// Each braille char is a 2x4 dot grid.
// Dot positions:  0 3
//
//	1 4
//	2 5
//	6 7
//
// Unicode: 0x2800 + sum of raised dot bits
var brailleDots = [8]rune{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80}

var dotPositions = [8][2]int{
	{0, 0}, {1, 0}, {2, 0}, {0, 1},
	{1, 1}, {2, 1}, {3, 0}, {3, 1},
}

type layer int

const (
	layerBorder layer = iota
	layerPoint
	layerSelected
	layerCount
)

func (m MapView) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	cols, rows := m.width, m.height
	dotW, dotH := cols*2, rows*4

	b := m.Bound()
	lngRange := b.Max[0] - b.Min[0]
	latRange := b.Max[1] - b.Min[1]

	var grids [layerCount][][]bool
	for l := range grids {
		grids[l] = make([][]bool, dotH)
		for i := range grids[l] {
			grids[l][i] = make([]bool, dotW)
		}
	}

	toDot := func(p orb.Point) (int, int) {
		x := int((p[0] - b.Min[0]) / lngRange * float64(dotW-1))
		y := int((b.Max[1] - p[1]) / latRange * float64(dotH-1))
		return x, y
	}

	for _, ring := range m.borders {
		for i := 0; i+1 < len(ring); i++ {
			seg := orb.Bound{Min: ring[i], Max: ring[i]}.Extend(ring[i+1])
			if !seg.Intersects(b) {
				continue
			}
			x0, y0 := toDot(ring[i])
			x1, y1 := toDot(ring[i+1])
			// antimeridian crossings would streak across the whole map
			if abs(x1-x0) > dotW/2 {
				continue
			}
			drawLine(grids[layerBorder], x0, y0, x1, y1, dotW, dotH)
		}
	}

	for i, p := range m.points {
		x, y := toDot(p)
		if x < 0 || x >= dotW || y < 0 || y >= dotH {
			continue
		}
		l := layerPoint
		if i == m.selected {
			l = layerSelected
		}
		grids[l][y][x] = true
	}

	styleFor := [layerCount]lipgloss.Style{
		layerBorder:   lipgloss.NewStyle().Foreground(styles.Secondary),
		layerPoint:    lipgloss.NewStyle().Foreground(styles.Success),
		layerSelected: lipgloss.NewStyle().Foreground(styles.Warning).Bold(true),
	}

	var sb strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			var cell [layerCount]rune
			for dot := 0; dot < 8; dot++ {
				dy := row*4 + dotPositions[dot][0]
				dx := col*2 + dotPositions[dot][1]
				for l := range grids {
					if grids[l][dy][dx] {
						cell[l] |= brailleDots[dot]
					}
				}
			}

			// the topmost non-empty layer wins the cell
			drawn := false
			for l := layerCount - 1; l >= 0; l-- {
				if cell[l] != 0 {
					sb.WriteString(styleFor[l].Render(string(0x2800 + cell[l])))
					drawn = true
					break
				}
			}
			if !drawn {
				sb.WriteRune(' ')
			}
		}
		if row < rows-1 {
			sb.WriteRune('\n')
		}
	}

	return sb.String()
}

// drawLine draws a line between two points using Bresenham's algorithm.
func drawLine(grid [][]bool, x0, y0, x1, y1, maxW, maxH int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 >= x1 {
		sx = -1
	}
	sy := 1
	if y0 >= y1 {
		sy = -1
	}
	err := dx + dy

	for {
		if x0 >= 0 && x0 < maxW && y0 >= 0 && y0 < maxH {
			grid[y0][x0] = true
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
