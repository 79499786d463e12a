package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rendis/quakemap/internal/config"
	"github.com/rendis/quakemap/internal/engine/dataset"
	"github.com/rendis/quakemap/internal/engine/geo"
)

func runCountries(args []string, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var query string
	fs := flag.NewFlagSet("countries", flag.ContinueOnError)
	fs.StringVar(&cfg.CountriesPath, "countries", cfg.CountriesPath, "Country boundaries GeoJSON")
	fs.StringVar(&cfg.NameProperty, "name-property", cfg.NameProperty, "Country property holding the display name")
	fs.StringVar(&query, "q", "", "Only list countries whose name or ID matches")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: quakemap countries [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	countries, err := dataset.LoadCountries(cfg.CountriesPath, dataset.CountryOptions{
		IDProperties: cfg.IDProperties,
		NameProperty: cfg.NameProperty,
	})
	if err != nil {
		return err
	}

	list := geo.Selectable(countries)
	if query != "" {
		list = geo.Suggest(list, query, 0)
	}
	for _, c := range list {
		fmt.Fprintf(stdout, "%-4s %s\n", c.ID, c.Name)
	}
	return nil
}
