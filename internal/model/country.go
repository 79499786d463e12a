package model

import "github.com/paulmach/orb"

// SentinelID marks a country whose dataset entry carries no usable code.
// Natural Earth uses -99 for these.
const SentinelID = "-99"

// Country is a boundary entry from the country feature collection.
type Country struct {
	ID         string         // stable code, e.g. ISO_A3
	Name       string         // display name, not guaranteed unique
	Geometry   orb.Geometry   // orb.Polygon or orb.MultiPolygon
	Bound      orb.Bound      // precomputed bounding box of Geometry
	Properties map[string]any // raw feature properties
}

// Selectable reports whether the country may appear in a selection list.
func (c Country) Selectable() bool {
	return c.ID != "" && c.ID != SentinelID
}
