package dataset

import (
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/rendis/quakemap/internal/model"
)

// Default Natural Earth property names.
var (
	DefaultIDProperties = []string{"ISO_A3", "ADM0_A3", "ISO_A3_EH"}
	DefaultNameProperty = "ADMIN"
)

// CountryOptions selects which feature properties carry the country ID and name.
type CountryOptions struct {
	// IDProperties are tried in order; the first value that is neither empty
	// nor the sentinel becomes the ID.
	IDProperties []string
	NameProperty string
}

func (o CountryOptions) withDefaults() CountryOptions {
	if len(o.IDProperties) == 0 {
		o.IDProperties = DefaultIDProperties
	}
	if o.NameProperty == "" {
		o.NameProperty = DefaultNameProperty
	}
	return o
}

// LoadCountries reads a country boundary FeatureCollection from path.
func LoadCountries(path string, opts CountryOptions) ([]model.Country, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading countries: %w", err)
	}
	return ParseCountries(data, opts)
}

// ParseCountries decodes a country boundary FeatureCollection. Geometry is
// not validated here; a broken polygon only fails when it is selected.
func ParseCountries(data []byte, opts CountryOptions) ([]model.Country, error) {
	opts = opts.withDefaults()

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing countries geojson: %w", err)
	}

	countries := make([]model.Country, 0, len(fc.Features))
	for _, f := range fc.Features {
		name := firstProp(f.Properties, opts.NameProperty, "ADMIN", "NAME")

		c := model.Country{
			ID:         countryID(f.Properties, opts.IDProperties),
			Name:       name,
			Geometry:   f.Geometry,
			Properties: map[string]any(f.Properties),
		}
		if c.Name == "" {
			c.Name = c.ID
		}
		if f.Geometry != nil {
			c.Bound = f.Geometry.Bound()
		}
		countries = append(countries, c)
	}

	return countries, nil
}

// countryID returns the first usable code among keys, falling back to the
// sentinel. Natural Earth has -99 in ISO_A3 for some territories (e.g. France,
// Norway, Kosovo) while ADM0_A3 still carries a code.
func countryID(props geojson.Properties, keys []string) string {
	for _, k := range keys {
		if v := stringProp(props, k); v != "" && v != model.SentinelID {
			return v
		}
	}
	return model.SentinelID
}

func firstProp(props geojson.Properties, keys ...string) string {
	for _, k := range keys {
		if v := stringProp(props, k); v != "" {
			return v
		}
	}
	return ""
}

// stringProp safely extracts a string property from GeoJSON properties.
func stringProp(props geojson.Properties, key string) string {
	switch v := props[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		// some exports store numeric sentinels
		return fmt.Sprintf("%g", v)
	}
	return ""
}
