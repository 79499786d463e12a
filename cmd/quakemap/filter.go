package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rendis/quakemap/internal/config"
	"github.com/rendis/quakemap/internal/engine/export"
	"github.com/rendis/quakemap/internal/model"
)

// applyFlags are shared by filter and export.
type applyFlags struct {
	country string
}

func (f *applyFlags) bind(fs *flag.FlagSet) {
	fs.StringVar(&f.country, "country", model.AnyCountry, "Country ID or display name, "+model.AnyCountry+" for all")
}

// applySelection loads the datasets and evaluates the selection, logging to
// stderr. Ctrl+C cancels a running scan.
func applySelection(cfg *config.Config, country string) (model.FilterResult, error) {
	s, err := openSession(cfg, os.Stderr)
	if err != nil {
		return model.FilterResult{}, err
	}
	defer s.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return s.engine.Apply(ctx, model.ParseSelection(country))
}

func runFilter(args []string, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var sel applyFlags
	var geojsonPath string

	fs := flag.NewFlagSet("filter", flag.ContinueOnError)
	bindConfigFlags(fs, cfg)
	sel.bind(fs)
	fs.StringVar(&geojsonPath, "geojson", "", "Also write the filtered earthquakes to this GeoJSON file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: quakemap filter [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  quakemap filter -country CHL\n")
		fmt.Fprintf(os.Stderr, "  quakemap filter -country Japan -geojson japan.geojson\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := applySelection(cfg, sel.country)
	if err != nil {
		return err
	}

	printResult(stdout, res)

	if geojsonPath != "" {
		n, err := export.ToFile(geojsonPath, export.FormatGeoJSON, res.Selection, res.Earthquakes)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %d earthquakes to %s\n", n, geojsonPath)
	}
	return nil
}

func printResult(w io.Writer, res model.FilterResult) {
	if res.NotFound {
		fmt.Fprintf(w, "No country matches %q, showing all earthquakes\n", res.Selection.Key())
	}
	if c := res.Country; c != nil {
		fmt.Fprintf(w, "Country:     %s (%s)\n", c.Name, c.ID)
	} else {
		fmt.Fprintf(w, "Country:     all\n")
	}
	center := res.ViewCenter()
	fmt.Fprintf(w, "Center:      %.4f, %.4f (zoom %.1f)\n", center.Lat(), center.Lon(), res.Zoom())
	fmt.Fprintf(w, "Earthquakes: %d\n", len(res.Earthquakes))

	if len(res.Earthquakes) == 0 {
		fmt.Fprintln(w, "There are no earthquakes in the selected country")
		return
	}

	fmt.Fprintln(w)
	for _, q := range res.Earthquakes {
		mag := "  n/a"
		if q.Magnitude != nil {
			mag = fmt.Sprintf("%5.1f", *q.Magnitude)
		}
		fmt.Fprintf(w, "%-14s %s  %s\n", q.ID, mag, q.Title)
	}
}
