package model

import (
	"strings"

	"github.com/paulmach/orb"
)

// AnyCountry is the reserved selector value that resets the view.
const AnyCountry = "ANY"

// Default viewport used when no country is selected.
var DefaultCenter = orb.Point{-100, 40}

const (
	DefaultZoom = 1.5
	CountryZoom = 3.0
)

// Selection is either all countries or one country key (ID or display name).
type Selection struct {
	key string
}

func AllCountries() Selection { return Selection{} }

func SelectCountry(key string) Selection {
	return ParseSelection(key)
}

// ParseSelection maps the raw selector value to a Selection. Empty input and
// the ANY sentinel both select all countries.
func ParseSelection(raw string) Selection {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == AnyCountry {
		return Selection{}
	}
	return Selection{key: raw}
}

func (s Selection) IsAll() bool { return s.key == "" }

// Key returns the country key, or AnyCountry for the reset selection.
func (s Selection) Key() string {
	if s.key == "" {
		return AnyCountry
	}
	return s.key
}

func (s Selection) String() string { return s.Key() }

// FilterResult is the output of one filter evaluation.
type FilterResult struct {
	Selection   Selection
	Country     *Country // resolved country, nil on reset
	Earthquakes []Earthquake
	Countries   []Country
	Center      *orb.Point // nil means use DefaultCenter and DefaultZoom
	NotFound    bool       // a specific key fell back to the reset view
}

// Zoom returns the zoom level the viewport should use for this result.
func (r FilterResult) Zoom() float64 {
	if r.Center == nil {
		return DefaultZoom
	}
	return CountryZoom
}

// ViewCenter returns Center or DefaultCenter when no country is selected.
func (r FilterResult) ViewCenter() orb.Point {
	if r.Center == nil {
		return DefaultCenter
	}
	return *r.Center
}
