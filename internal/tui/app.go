package tui

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"

	"github.com/rendis/quakemap/internal/engine/filter"
	"github.com/rendis/quakemap/internal/model"
	"github.com/rendis/quakemap/internal/tui/views"
)

type viewID int

const (
	viewExplorer viewID = iota
	viewSearch
)

// App is the root bubbletea model.
type App struct {
	currentView viewID
	width       int
	height      int
	explorer    views.ExplorerModel
	search      views.SearchModel
	recent      *RecentStore // nil disables recent selections
	logger      *slog.Logger
}

func NewApp(e *filter.Engine, runner *filter.Runner, clock clockwork.Clock, exportDir string, recent *RecentStore, logger *slog.Logger) App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return App{
		currentView: viewExplorer,
		explorer:    views.NewExplorerModel(e, runner, clock, exportDir),
		recent:      recent,
		logger:      logger,
	}
}

func (a App) Init() tea.Cmd {
	return a.explorer.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
	case views.OpenSearchMsg:
		a.currentView = viewSearch
		var recent []string
		if a.recent != nil {
			recent = a.recent.Keys()
		}
		a.search = views.NewSearchModel(a.explorer.Countries(), recent)
		return a, a.search.Init()
	case views.CloseSearchMsg:
		a.currentView = viewExplorer
		return a, nil
	case views.CountrySelectedMsg:
		a.currentView = viewExplorer
		cmd := a.explorer.Select(msg.Selection)
		return a, tea.Batch(cmd, a.saveRecent(msg.Selection))
	}

	var cmds []tea.Cmd
	if a.currentView == viewSearch {
		m, cmd := a.search.Update(msg)
		a.search = m.(views.SearchModel)
		cmds = append(cmds, cmd)
		if _, isKey := msg.(tea.KeyMsg); isKey {
			return a, cmd
		}
	}

	// filter results and resizes reach the explorer even behind the picker
	m, cmd := a.explorer.Update(msg)
	a.explorer = m.(views.ExplorerModel)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

// saveRecent remembers a picked country off the event loop. Failures only
// reach the log.
func (a App) saveRecent(sel model.Selection) tea.Cmd {
	if a.recent == nil || sel.IsAll() {
		return nil
	}
	recent, logger, key := a.recent, a.logger, sel.Key()
	return func() tea.Msg {
		if err := recent.Save(key); err != nil {
			logger.Warn("saving recent country failed", "selection", key, "error", err)
		}
		return nil
	}
}

func (a App) View() string {
	if a.currentView == viewSearch {
		return lipgloss.Place(
			a.width, a.height,
			lipgloss.Center, lipgloss.Center,
			a.search.View(),
		)
	}

	return lipgloss.Place(
		a.width, a.height,
		lipgloss.Left, lipgloss.Top,
		a.explorer.View(),
	)
}

// Run starts the TUI on e and blocks until the user quits. Picked countries
// are remembered in recentPath.
func Run(e *filter.Engine, clock clockwork.Clock, exportDir, recentPath string, logger *slog.Logger) error {
	runner := filter.NewRunner(e)
	defer runner.Close()

	app := NewApp(e, runner, clock, exportDir, NewRecentStore(recentPath, clock), logger)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
