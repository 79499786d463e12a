package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rendis/quakemap/internal/engine/geo"
	"github.com/rendis/quakemap/internal/model"
	"github.com/rendis/quakemap/internal/tui/styles"
)

const suggestLimit = 8

type option struct {
	sel   model.Selection
	label string
}

// SearchModel is the country dropdown: a text input narrowing the selectable
// countries, with an "all countries" entry that resets the view.
type SearchModel struct {
	input     textinput.Model
	countries []model.Country
	recent    []model.Country
	options   []option
	cursor    int
}

// NewSearchModel builds a picker over countries, which must already exclude
// sentinel entries. Countries whose IDs are in recent are offered first while
// the input is empty.
func NewSearchModel(countries []model.Country, recent []string) SearchModel {
	ti := textinput.New()
	ti.Placeholder = "type a country name or code..."
	ti.CharLimit = 60
	ti.Width = 40
	ti.Focus()

	m := SearchModel{input: ti, countries: countries}
	for _, key := range recent {
		if c, ok := geo.Resolve(countries, key); ok {
			m.recent = append(m.recent, c)
		}
	}
	m.refresh()
	return m
}

func (m SearchModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return CloseSearchMsg{} }
		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "ctrl+n", "tab":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
			return m, nil
		case "enter":
			sel := m.Selected()
			return m, func() tea.Msg { return CountrySelectedMsg{Selection: sel} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.refresh()
	return m, cmd
}

// Selected returns the highlighted option, or the raw input when nothing
// matches so the engine can report the key as not found.
func (m SearchModel) Selected() model.Selection {
	if m.cursor >= 0 && m.cursor < len(m.options) {
		return m.options[m.cursor].sel
	}
	return model.ParseSelection(m.input.Value())
}

func (m *SearchModel) refresh() {
	raw := strings.TrimSpace(m.input.Value())
	m.options = nil

	if raw != "" {
		q := geo.Normalize(raw)
		exact := q == "any" || q == "all" || q == "all countries"
		if exact {
			m.addAll()
		}
		for _, c := range geo.Suggest(m.countries, raw, suggestLimit) {
			m.addCountry(c, "")
		}
		// a partial "any" or "all countries" stays below the countries it matches
		if !exact && len(q) >= 2 && (strings.HasPrefix("any", q) || strings.HasPrefix("all countries", q)) {
			m.addAll()
		}
	} else {
		m.addAll()
		seen := make(map[string]bool, len(m.recent))
		for _, c := range m.recent {
			seen[c.ID] = true
			m.addCountry(c, " · recent")
		}
		for _, c := range m.countries {
			if len(m.options) > suggestLimit {
				break
			}
			if !seen[c.ID] {
				m.addCountry(c, "")
			}
		}
	}

	if m.cursor >= len(m.options) {
		m.cursor = max(0, len(m.options)-1)
	}
}

func (m *SearchModel) addAll() {
	m.options = append(m.options, option{sel: model.AllCountries(), label: "All countries (" + model.AnyCountry + ")"})
}

func (m *SearchModel) addCountry(c model.Country, suffix string) {
	m.options = append(m.options, option{
		sel:   model.SelectCountry(c.ID),
		label: fmt.Sprintf("%s (%s)%s", c.Name, c.ID, suffix),
	})
}

func (m SearchModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Select country") + "\n")
	b.WriteString(styles.Label.Render("Country:") + " " + m.input.View() + "\n\n")

	if len(m.options) == 0 {
		b.WriteString(styles.Hint.Render("  no matching country, enter shows all earthquakes") + "\n")
	}
	for i, o := range m.options {
		if i == m.cursor {
			b.WriteString(styles.ActiveItem.Render("  > " + o.label))
		} else {
			b.WriteString(styles.InactiveItem.Render("    " + o.label))
		}
		b.WriteString("\n")
	}

	b.WriteString(styles.StatusBar.Render("enter select • ↑↓ move • esc cancel"))

	return styles.Border.Render(b.String())
}

// Messages
type OpenSearchMsg struct{}

type CloseSearchMsg struct{}

type CountrySelectedMsg struct {
	Selection model.Selection
}
