package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rendis/quakemap/internal/config"
	"github.com/rendis/quakemap/internal/engine/export"
)

func runExport(args []string, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var sel applyFlags
	var outputPath, format string

	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	bindConfigFlags(fs, cfg)
	sel.bind(fs)
	fs.StringVar(&outputPath, "output", "", "Output file path (default: quakemap_<country>.<format>)")
	fs.StringVar(&format, "format", export.FormatCSV, "Export format: csv, geojson, sqlite")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: quakemap export [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  quakemap export -country CHL\n")
		fmt.Fprintf(os.Stderr, "  quakemap export -country Japan -format sqlite -output quakes.db\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	format = strings.ToLower(format)
	switch format {
	case export.FormatCSV, export.FormatGeoJSON, export.FormatSQLite:
	default:
		return fmt.Errorf("unsupported format: %s (csv, geojson or sqlite)", format)
	}

	res, err := applySelection(cfg, sel.country)
	if err != nil {
		return err
	}
	if res.NotFound {
		return fmt.Errorf("no country matches %q", res.Selection.Key())
	}

	if outputPath == "" {
		outputPath = export.DefaultFileName(res.Selection, format)
	}

	n, err := export.ToFile(outputPath, format, res.Selection, res.Earthquakes)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Exported %d earthquakes to %s\n", n, outputPath)

	if format == export.FormatSQLite {
		stored, total, err := export.SnapshotStats(outputPath, res.Selection)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Snapshot holds %d earthquakes for %s (%d rows total)\n", stored, res.Selection.Key(), total)
	}
	return nil
}
