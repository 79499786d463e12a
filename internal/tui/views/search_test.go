package views

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/quakemap/internal/engine/geo"
	"github.com/rendis/quakemap/internal/model"
)

func newTestSearch() SearchModel {
	countries := testCountries()
	countries = append(countries, model.Country{ID: "CIV", Name: "Côte d'Ivoire"})
	return NewSearchModel(geo.Selectable(countries), nil)
}

func typeInto(t *testing.T, m SearchModel, s string) SearchModel {
	t.Helper()
	next, _ := m.Update(keyRunes(s))
	return next.(SearchModel)
}

func TestSearch_StartsWithAllCountries(t *testing.T) {
	m := newTestSearch()

	require.NotEmpty(t, m.options)
	assert.Equal(t, model.AllCountries(), m.Selected())
	assert.Len(t, m.options, 6, "ANY plus every selectable country")
	assert.Contains(t, m.View(), "All countries (ANY)")
}

func TestSearch_AccentInsensitive(t *testing.T) {
	m := typeInto(t, newTestSearch(), "cote")

	require.Len(t, m.options, 1)
	assert.Equal(t, model.SelectCountry("CIV"), m.Selected())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CountrySelectedMsg{Selection: model.SelectCountry("CIV")}, cmd())
}

func TestSearch_MatchByID(t *testing.T) {
	m := typeInto(t, newTestSearch(), "bbb")

	require.Len(t, m.options, 1)
	assert.Equal(t, "BBB", m.Selected().Key())
}

func TestSearch_Navigation(t *testing.T) {
	m := typeInto(t, newTestSearch(), "country")
	require.Len(t, m.options, 2)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(SearchModel)
	assert.Equal(t, "BBB", m.Selected().Key())

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(SearchModel)
	assert.Equal(t, "BBB", m.Selected().Key(), "cursor stops at the last option")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(SearchModel)
	assert.Equal(t, "AAA", m.Selected().Key())
}

func TestSearch_NoMatchFallsBackToRawKey(t *testing.T) {
	m := typeInto(t, newTestSearch(), "Atlantis")

	assert.Empty(t, m.options)
	assert.Equal(t, model.SelectCountry("Atlantis"), m.Selected())
	assert.Contains(t, m.View(), "no matching country")
}

func TestSearch_Escape(t *testing.T) {
	_, cmd := newTestSearch().Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CloseSearchMsg{}, cmd())
}

func TestSearch_RecentFirst(t *testing.T) {
	countries := geo.Selectable(testCountries())
	m := NewSearchModel(countries, []string{"EEE", "gone", "BBB"})

	require.Len(t, m.options, 5)
	assert.Equal(t, model.AllCountries(), m.options[0].sel)
	assert.Equal(t, "Empty Land (EEE) · recent", m.options[1].label)
	assert.Equal(t, "Country B (BBB) · recent", m.options[2].label)
	assert.Equal(t, "BAD", m.options[3].sel.Key())
	assert.Equal(t, "AAA", m.options[4].sel.Key())
}

func TestSearch_NamePrefixPicksCountryBeforeAll(t *testing.T) {
	countries := []model.Country{
		{ID: "ALB", Name: "Albania"},
		{ID: "DZA", Name: "Algeria"},
		{ID: "USA", Name: "United States of America"},
		{ID: "CAN", Name: "Canada"},
		{ID: "DEU", Name: "Germany"},
	}

	tests := []struct {
		typed string
		first model.Selection
		last  model.Selection
	}{
		{typed: "Al", first: model.SelectCountry("ALB"), last: model.AllCountries()},
		{typed: "a", first: model.SelectCountry("ALB"), last: model.SelectCountry("DEU")},
		{typed: "Un", first: model.SelectCountry("USA"), last: model.SelectCountry("USA")},
		{typed: "an", first: model.SelectCountry("ALB"), last: model.AllCountries()},
		{typed: "any", first: model.AllCountries(), last: model.SelectCountry("DEU")},
		{typed: "ALL", first: model.AllCountries(), last: model.AllCountries()},
	}

	for _, tt := range tests {
		t.Run(tt.typed, func(t *testing.T) {
			m := typeInto(t, NewSearchModel(countries, nil), tt.typed)

			require.NotEmpty(t, m.options)
			assert.Equal(t, tt.first, m.Selected())
			assert.Equal(t, tt.last, m.options[len(m.options)-1].sel)

			_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
			require.NotNil(t, cmd)
			assert.Equal(t, CountrySelectedMsg{Selection: tt.first}, cmd())
		})
	}
}
