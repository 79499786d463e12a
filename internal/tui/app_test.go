package tui

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/quakemap/internal/engine/dataset"
	"github.com/rendis/quakemap/internal/engine/filter"
	"github.com/rendis/quakemap/internal/model"
	"github.com/rendis/quakemap/internal/tui/views"
)

func newTestApp(t *testing.T) App {
	t.Helper()
	return newTestAppWith(t, filepath.Join(t.TempDir(), "recent.json"), nil)
}

func newTestAppWith(t *testing.T, recentPath string, logger *slog.Logger) App {
	t.Helper()
	poly := orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}
	ds := &dataset.Dataset{
		Countries: []model.Country{{ID: "AAA", Name: "Alpha", Geometry: poly, Bound: poly.Bound()}},
		Earthquakes: []model.Earthquake{
			{ID: "in", Point: orb.Point{5, 5}, Located: true},
			{ID: "out", Point: orb.Point{50, 5}, Located: true},
		},
	}
	e := filter.New(ds)
	runner := filter.NewRunner(e)
	t.Cleanup(runner.Close)
	clock := clockwork.NewFakeClock()
	return NewApp(e, runner, clock, t.TempDir(), NewRecentStore(recentPath, clock), logger)
}

func step(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	next, cmd := a.Update(msg)
	return next.(App), cmd
}

// run executes cmd, unpacking batches, and feeds every resulting message back
// into the app. Follow-up commands are dropped.
func run(t *testing.T, a App, cmd tea.Cmd) App {
	t.Helper()
	if cmd == nil {
		return a
	}
	switch msg := cmd().(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range msg {
			a = run(t, a, c)
		}
	default:
		a, _ = step(t, a, msg)
	}
	return a
}

func TestApp_PickCountry(t *testing.T) {
	a := newTestApp(t)
	a, _ = step(t, a, tea.WindowSizeMsg{Width: 100, Height: 30})

	a, _ = step(t, a, views.OpenSearchMsg{})
	assert.Equal(t, viewSearch, a.currentView)
	assert.Contains(t, a.View(), "Select country")

	a, _ = step(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("alp")})
	_, cmd := step(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	picked := cmd()
	assert.Equal(t, views.CountrySelectedMsg{Selection: model.SelectCountry("AAA")}, picked)

	a, cmd = step(t, a, picked)
	assert.Equal(t, viewExplorer, a.currentView)
	require.NotNil(t, cmd)
	assert.Empty(t, a.recent.Keys(), "saved by the command, not by Update")

	a = run(t, a, cmd)
	res := a.explorer.Result()
	require.Len(t, res.Earthquakes, 1)
	assert.Equal(t, "in", res.Earthquakes[0].ID)
	assert.Contains(t, a.View(), "Earthquakes in Alpha: 1")
	assert.Equal(t, []string{"AAA"}, a.recent.Keys())

	a, _ = step(t, a, views.OpenSearchMsg{})
	assert.Contains(t, a.View(), "Alpha (AAA) · recent")
}

func TestApp_ResultsReachExplorerBehindPicker(t *testing.T) {
	a := newTestApp(t)

	a, cmd := step(t, a, views.CountrySelectedMsg{Selection: model.SelectCountry("AAA")})
	a, _ = step(t, a, views.OpenSearchMsg{})
	a = run(t, a, cmd)

	assert.Equal(t, viewSearch, a.currentView)
	assert.Len(t, a.explorer.Result().Earthquakes, 1)

	a, _ = step(t, a, views.CloseSearchMsg{})
	assert.Equal(t, viewExplorer, a.currentView)
}

func TestApp_CtrlCQuits(t *testing.T) {
	_, cmd := step(t, newTestApp(t), tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestApp_RecentSaveFailureIsLogged(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	var logs bytes.Buffer
	a := newTestAppWith(t, filepath.Join(blocker, "recent.json"), slog.New(slog.NewTextHandler(&logs, nil)))

	a, cmd := step(t, a, views.CountrySelectedMsg{Selection: model.SelectCountry("AAA")})
	a = run(t, a, cmd)

	assert.Len(t, a.explorer.Result().Earthquakes, 1, "the filter still applies")
	assert.Empty(t, a.recent.Keys())
	assert.Contains(t, logs.String(), "saving recent country failed")
	assert.Contains(t, logs.String(), "selection=AAA")
}

func TestApp_AllCountriesIsNotRemembered(t *testing.T) {
	a := newTestApp(t)

	a, cmd := step(t, a, views.CountrySelectedMsg{Selection: model.AllCountries()})
	a = run(t, a, cmd)

	assert.Empty(t, a.recent.Keys())
}
