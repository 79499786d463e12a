package dataset

import (
	"fmt"

	"github.com/rendis/quakemap/internal/model"
)

// Dataset holds both collections. It is built once at startup and never
// mutated afterwards, so it can be shared freely between goroutines.
type Dataset struct {
	Countries   []model.Country
	Earthquakes []model.Earthquake
}

// Options configures Load.
type Options struct {
	Countries CountryOptions
	Events    EventOptions
}

// Load reads the country and earthquake collections.
func Load(countriesPath, earthquakesPath string, opts Options) (*Dataset, error) {
	countries, err := LoadCountries(countriesPath, opts.Countries)
	if err != nil {
		return nil, err
	}
	quakes, err := LoadEarthquakes(earthquakesPath, opts.Events)
	if err != nil {
		return nil, err
	}
	if len(countries) == 0 {
		return nil, fmt.Errorf("no countries in %s", countriesPath)
	}
	return &Dataset{Countries: countries, Earthquakes: quakes}, nil
}

// Located returns how many earthquakes carry a usable coordinate.
func (d *Dataset) Located() int {
	n := 0
	for _, q := range d.Earthquakes {
		if q.Located {
			n++
		}
	}
	return n
}
