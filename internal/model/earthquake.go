package model

import "github.com/paulmach/orb"

// Earthquake is a single event from the earthquake feature collection.
type Earthquake struct {
	ID        string    `json:"id"`
	Point     orb.Point `json:"point"` // [lng, lat]
	Located   bool      `json:"located"`
	Magnitude *float64  `json:"mag"`
	Time      int64     `json:"time"` // epoch milliseconds
	Title     string    `json:"title"`
}

func (e Earthquake) Lng() float64 { return e.Point.Lon() }
func (e Earthquake) Lat() float64 { return e.Point.Lat() }
