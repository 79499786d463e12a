package dataset

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/rendis/quakemap/internal/model"
)

// EventOptions names the event feature properties. Defaults follow the USGS
// earthquake feed.
type EventOptions struct {
	MagnitudeProperty string
	TimeProperty      string
	TitleProperty     string
}

func (o EventOptions) withDefaults() EventOptions {
	if o.MagnitudeProperty == "" {
		o.MagnitudeProperty = "mag"
	}
	if o.TimeProperty == "" {
		o.TimeProperty = "time"
	}
	if o.TitleProperty == "" {
		o.TitleProperty = "title"
	}
	return o
}

// LoadEarthquakes reads an earthquake FeatureCollection from path.
func LoadEarthquakes(path string, opts EventOptions) ([]model.Earthquake, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading earthquakes: %w", err)
	}
	return ParseEarthquakes(data, opts)
}

// ParseEarthquakes decodes an earthquake FeatureCollection. Features without a
// finite point geometry are kept but marked as not located.
func ParseEarthquakes(data []byte, opts EventOptions) ([]model.Earthquake, error) {
	opts = opts.withDefaults()

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing earthquakes geojson: %w", err)
	}

	quakes := make([]model.Earthquake, 0, len(fc.Features))
	for i, f := range fc.Features {
		q := model.Earthquake{
			ID:        featureID(f, i),
			Magnitude: floatProp(f.Properties, opts.MagnitudeProperty),
			Title:     stringProp(f.Properties, opts.TitleProperty),
		}
		if t := floatProp(f.Properties, opts.TimeProperty); t != nil {
			q.Time = int64(*t)
		}
		if p, ok := f.Geometry.(orb.Point); ok && !math.IsNaN(p[0]) && !math.IsNaN(p[1]) &&
			!math.IsInf(p[0], 0) && !math.IsInf(p[1], 0) {
			q.Point = p
			q.Located = true
		}
		quakes = append(quakes, q)
	}

	return quakes, nil
}

func featureID(f *geojson.Feature, idx int) string {
	switch id := f.ID.(type) {
	case string:
		if id != "" {
			return id
		}
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	}
	if code := stringProp(f.Properties, "code"); code != "" {
		return code
	}
	return strconv.Itoa(idx)
}

// floatProp returns nil for absent, null or non-numeric values.
func floatProp(props geojson.Properties, key string) *float64 {
	switch v := props[key].(type) {
	case float64:
		return &v
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}
