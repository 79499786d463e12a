package views

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"

	"github.com/rendis/quakemap/internal/engine/export"
	"github.com/rendis/quakemap/internal/engine/filter"
	"github.com/rendis/quakemap/internal/engine/geo"
	"github.com/rendis/quakemap/internal/model"
	"github.com/rendis/quakemap/internal/tui/components"
	"github.com/rendis/quakemap/internal/tui/styles"
)

const (
	legendEmpty  = "There are no earthquakes in the selected country"
	legendPrompt = "Select an earthquake to see info"
)

type focusArea int

const (
	focusTable focusArea = iota
	focusMap
)

// ExplorerModel shows the current filter result as a braille map, an event
// table and a legend with the selected event's details.
type ExplorerModel struct {
	runner    *filter.Runner
	clock     clockwork.Clock
	countries []model.Country // selectable, sorted by name
	exportDir string

	result    model.FilterResult
	pointIdx  []int // table row -> map point, -1 for events without a coordinate
	filtering bool
	pending   model.Selection
	err       error
	notice    string

	table    table.Model
	mapView  components.MapView
	focus    focusArea
	selected int // table row shown in the legend, -1 if none
	width    int
	height   int
}

type filterDoneMsg struct {
	outcome filter.Outcome
}

// NewExplorerModel starts on the reset view of e's dataset. Exports are
// written to exportDir.
func NewExplorerModel(e *filter.Engine, runner *filter.Runner, clock clockwork.Clock, exportDir string) ExplorerModel {
	m := ExplorerModel{
		runner:    runner,
		clock:     clock,
		countries: geo.Selectable(e.Dataset().Countries),
		exportDir: exportDir,
		mapView:   components.NewMapView(0, 0),
		selected:  -1,
	}
	// the reset view never scans, so it is computed inline
	res, _ := e.Apply(context.Background(), model.AllCountries())
	m.applyResult(res)
	return m
}

func (m ExplorerModel) Init() tea.Cmd {
	return nil
}

// Countries returns the entries offered by the country picker.
func (m ExplorerModel) Countries() []model.Country { return m.countries }

// Result returns the filter result currently on screen.
func (m ExplorerModel) Result() model.FilterResult { return m.result }

// Select submits sel to the runner and returns the command that computes it.
// Any earlier evaluation still in flight is superseded.
func (m *ExplorerModel) Select(sel model.Selection) tea.Cmd {
	ticket := m.runner.Submit(sel)
	m.filtering = true
	m.pending = sel
	return func() tea.Msg {
		return filterDoneMsg{outcome: ticket.Run()}
	}
}

func (m ExplorerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil

	case filterDoneMsg:
		if !m.runner.Accept(msg.outcome) {
			return m, nil
		}
		m.filtering = false
		if err := msg.outcome.Err; err != nil {
			if !errors.Is(err, context.Canceled) {
				m.err = err
			}
			return m, nil
		}
		m.err = nil
		m.applyResult(msg.outcome.Result)
		return m, nil

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q":
			return m, tea.Quit
		case "/", "c":
			return m, func() tea.Msg { return OpenSearchMsg{} }
		case "a":
			return m, m.Select(model.AllCountries())
		case "tab":
			if m.focus == focusTable {
				m.focus = focusMap
				m.table.Blur()
			} else {
				m.focus = focusTable
				m.table.Focus()
			}
			return m, nil
		case "+", "=":
			m.mapView.ZoomIn()
			return m, nil
		case "-":
			m.mapView.ZoomOut()
			return m, nil
		case "0":
			m.mapView.SetView(m.result.ViewCenter(), m.result.Zoom())
			return m, nil
		case "e":
			m.exportCSV()
			return m, nil
		}

		if m.focus == focusMap {
			switch key {
			case "up", "k":
				m.mapView.Pan(1, 0)
			case "down", "j":
				m.mapView.Pan(-1, 0)
			case "left", "h":
				m.mapView.Pan(0, -1)
			case "right", "l":
				m.mapView.Pan(0, 1)
			}
			return m, nil
		}

		if key == "enter" {
			m.selectRow(m.table.Cursor())
			return m, nil
		}
	}

	var cmd tea.Cmd
	prev := m.table.Cursor()
	m.table, cmd = m.table.Update(msg)
	if cursor := m.table.Cursor(); cursor != prev {
		m.selectRow(cursor)
	}
	return m, cmd
}

func (m *ExplorerModel) selectRow(row int) {
	if row < 0 || row >= len(m.result.Earthquakes) {
		m.selected = -1
		m.mapView.SetSelected(-1)
		return
	}
	m.selected = row
	m.mapView.SetSelected(m.pointIdx[row])
}

func (m *ExplorerModel) applyResult(res model.FilterResult) {
	m.result = res
	m.selected = -1
	m.notice = ""
	if res.NotFound {
		m.notice = fmt.Sprintf("No country matches %q, showing all earthquakes", res.Selection.Key())
	}

	m.pointIdx = make([]int, len(res.Earthquakes))
	points := make([]orb.Point, 0, len(res.Earthquakes))
	for i, q := range res.Earthquakes {
		m.pointIdx[i] = -1
		if q.Located {
			m.pointIdx[i] = len(points)
			points = append(points, q.Point)
		}
	}

	geoms := make([]orb.Geometry, 0, len(res.Countries))
	for _, c := range res.Countries {
		if c.Geometry != nil {
			geoms = append(geoms, c.Geometry)
		}
	}
	m.mapView.SetBorders(geoms)
	m.mapView.SetPoints(points)
	m.mapView.SetView(res.ViewCenter(), res.Zoom())

	m.buildTable()
}

func (m ExplorerModel) tableHeight() int {
	return max(5, m.height/2-6)
}

func (m ExplorerModel) mapHeight() int {
	return max(6, m.height/2-4)
}

func (m ExplorerModel) legendWidth() int {
	return max(30, m.width/3)
}

func (m *ExplorerModel) updateLayout() {
	if m.width <= 0 {
		return
	}
	m.mapView.SetSize(m.width-4, m.mapHeight())
	m.buildTable()
}

func (m *ExplorerModel) buildTable() {
	magW, timeW, coordW := 5, 17, 9
	titleW := 36
	if avail := m.width - m.legendWidth() - magW - timeW - 2*coordW - 14; avail > titleW {
		titleW = avail
	}

	columns := []table.Column{
		{Title: "Title", Width: titleW},
		{Title: "Mag", Width: magW},
		{Title: "Time (UTC)", Width: timeW},
		{Title: "Lat", Width: coordW},
		{Title: "Lng", Width: coordW},
	}

	rows := make([]table.Row, len(m.result.Earthquakes))
	for i, q := range m.result.Earthquakes {
		lat, lng := "", ""
		if q.Located {
			lat = fmt.Sprintf("%.3f", q.Lat())
			lng = fmt.Sprintf("%.3f", q.Lng())
		}
		rows[i] = table.Row{
			truncate(q.Title, titleW),
			formatMagnitude(q.Magnitude),
			formatTime(q.Time, "2006-01-02 15:04"),
			lat,
			lng,
		}
	}

	cursor := m.table.Cursor()
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(m.focus == focusTable),
		table.WithHeight(m.tableHeight()),
	)
	t.SetStyles(tableStyles())
	if cursor < len(rows) {
		t.SetCursor(cursor)
	}
	m.table = t
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Secondary)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(styles.Primary).
		Bold(true)
	return s
}

// Legend returns the text of the legend panel without styling.
func (m ExplorerModel) Legend() []string {
	if len(m.result.Earthquakes) == 0 {
		return []string{legendEmpty}
	}
	if m.selected < 0 || m.selected >= len(m.result.Earthquakes) {
		return []string{legendPrompt}
	}

	q := m.result.Earthquakes[m.selected]
	lines := []string{q.Title, ""}
	lines = append(lines, fmt.Sprintf("%-10s %s", "Magnitude:", formatMagnitude(q.Magnitude)))
	if q.Time != 0 {
		t := time.UnixMilli(q.Time)
		lines = append(lines, fmt.Sprintf("%-10s %s", "Time:", t.UTC().Format("2006-01-02 15:04:05 UTC")))
		lines = append(lines, fmt.Sprintf("%-10s %s", "", timeAgo(m.clock.Since(t))))
	}
	if q.Located {
		lines = append(lines, fmt.Sprintf("%-10s %.4f, %.4f", "Location:", q.Lat(), q.Lng()))
	} else {
		lines = append(lines, fmt.Sprintf("%-10s %s", "Location:", "unknown"))
	}
	lines = append(lines, fmt.Sprintf("%-10s %s", "ID:", q.ID))
	return lines
}

func (m ExplorerModel) View() string {
	var b strings.Builder

	scope := "worldwide"
	if c := m.result.Country; c != nil {
		scope = "in " + c.Name
	}
	b.WriteString(styles.Title.Render(fmt.Sprintf("Earthquakes %s: %d", scope, len(m.result.Earthquakes))))
	if m.filtering {
		b.WriteString(styles.Hint.Render(fmt.Sprintf("  filtering %s...", m.pending.Key())))
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(styles.ErrorText.Render("Error: "+m.err.Error()) + "\n")
	}
	if m.notice != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Warning).Render(m.notice) + "\n")
	}

	mapColor := styles.Muted
	if m.focus == focusMap {
		mapColor = styles.Primary
	}
	b.WriteString(lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(mapColor).
		Render(m.mapView.View()))
	b.WriteString("\n")

	legendW := m.legendWidth()
	legend := m.viewLegend(legendW - 4)
	legendBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Muted).
		Padding(0, 1).
		Width(legendW - 2).
		Height(m.tableHeight() + 1).
		Render(legend)

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.table.View(), " ", legendBox))
	b.WriteString("\n")

	var status string
	switch m.focus {
	case focusTable:
		status = "↑↓ navigate • enter details • / country • a all • +/- zoom • 0 recenter • tab map • e export • q quit"
	case focusMap:
		status = "←↑↓→ pan • +/- zoom • 0 recenter • tab table • / country • q quit"
	}
	b.WriteString(styles.StatusBar.Render(status))

	return b.String()
}

func (m ExplorerModel) viewLegend(w int) string {
	lines := m.Legend()
	if len(lines) == 1 {
		return styles.Hint.Render(lines[0])
	}

	var sb strings.Builder
	q := m.result.Earthquakes[m.selected]
	sb.WriteString(lipgloss.NewStyle().Bold(true).Foreground(styles.Text).Render(truncate(lines[0], w)))
	for _, line := range lines[1:] {
		sb.WriteString("\n")
		if strings.HasPrefix(line, "Magnitude:") {
			sb.WriteString(styles.Magnitude(q.Magnitude).Render(line))
			continue
		}
		sb.WriteString(styles.Value.Render(truncate(line, w)))
	}
	return sb.String()
}

func (m *ExplorerModel) exportCSV() {
	path := filepath.Join(m.exportDir, export.DefaultFileName(m.result.Selection, export.FormatCSV))

	n, err := export.ToFile(path, export.FormatCSV, m.result.Selection, m.result.Earthquakes)
	if err != nil {
		m.notice = fmt.Sprintf("Export error: %v", err)
		return
	}
	m.notice = fmt.Sprintf("Exported %d earthquakes to %s", n, path)
}

func formatMagnitude(mag *float64) string {
	if mag == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *mag)
}

func formatTime(ms int64, layout string) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(layout)
}

func timeAgo(d time.Duration) string {
	switch {
	case d < 0:
		return "in the future"
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	case d < 365*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	default:
		return plural(int(d/(365*24*time.Hour)), "year") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
