package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

var version = "dev"

func main() {
	args := os.Args[1:]
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}

	var err error
	switch cmd {
	case "filter":
		err = runFilter(args[1:], os.Stdout)
	case "export":
		err = runExport(args[1:], os.Stdout)
	case "countries":
		err = runCountries(args[1:], os.Stdout)
	case "version":
		fmt.Println("quakemap " + version)
		return
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		// no subcommand → launch TUI
		err = runTUI(args)
	}

	if err != nil && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `quakemap - earthquakes by country

Usage:
  quakemap [flags]             Launch interactive TUI
  quakemap filter [flags]      Print the earthquakes inside one country
  quakemap export [flags]      Write the filtered earthquakes to csv, geojson or sqlite
  quakemap countries [flags]   List selectable countries
  quakemap version             Show version

Datasets and logging are configured through QUAKEMAP_* environment variables
or a .env file; flags override them. Run 'quakemap filter --help' for flags.
`)
}
