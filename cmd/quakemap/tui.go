package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rendis/quakemap/internal/config"
	"github.com/rendis/quakemap/internal/observability"
	"github.com/rendis/quakemap/internal/tui"
)

func runTUI(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var exportDir, recentPath string
	fs := flag.NewFlagSet("quakemap", flag.ExitOnError)
	bindConfigFlags(fs, cfg)
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Session log file")
	fs.StringVar(&exportDir, "export-dir", ".", "Directory the e key exports CSV files to")
	fs.StringVar(&recentPath, "recent", tui.DefaultRecentPath(), "File remembering recently picked countries")
	fs.Usage = printUsage
	if err := fs.Parse(args); err != nil {
		return err
	}

	// the TUI owns the terminal, so logs go to a file
	logFile, err := observability.OpenLogFile(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()
	fmt.Fprintf(os.Stderr, "Log: %s\n", cfg.LogFile)

	s, err := openSession(cfg, logFile)
	if err != nil {
		return err
	}
	defer s.close()

	s.logger.Info("session start", "countries_path", cfg.CountriesPath, "earthquakes_path", cfg.EarthquakesPath)
	return tui.Run(s.engine, s.clock, exportDir, recentPath, s.logger)
}
