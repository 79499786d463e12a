package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rendis/quakemap/internal/config"
	"github.com/rendis/quakemap/internal/engine/dataset"
	"github.com/rendis/quakemap/internal/engine/filter"
	"github.com/rendis/quakemap/internal/observability"
)

// bindConfigFlags lets flags override the environment configuration.
func bindConfigFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.CountriesPath, "countries", cfg.CountriesPath, "Country boundaries GeoJSON")
	fs.StringVar(&cfg.EarthquakesPath, "earthquakes", cfg.EarthquakesPath, "Earthquake events GeoJSON")
	fs.StringVar(&cfg.NameProperty, "name-property", cfg.NameProperty, "Country property holding the display name")
	fs.BoolVar(&cfg.UseIndex, "index", cfg.UseIndex, "Use a spatial index for candidate events")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Serve /metrics, /healthz and /readyz on this address")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
}

// session holds what every subcommand needs: the loaded datasets wrapped in a
// filter engine, plus the optional metrics endpoint.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	engine *filter.Engine
	server *observability.Server
	clock  clockwork.Clock
}

func openSession(cfg *config.Config, logOut io.Writer) (*session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &session{
		cfg:    cfg,
		logger: observability.NewLogger(cfg, logOut),
		clock:  clockwork.NewRealClock(),
	}

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	var ready atomic.Bool
	if cfg.MetricsAddr != "" {
		s.server = observability.NewServer(cfg.MetricsAddr, reg, ready.Load, s.logger)
		go func() {
			if err := s.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	start := s.clock.Now()
	ds, err := dataset.Load(cfg.CountriesPath, cfg.EarthquakesPath, dataset.Options{
		Countries: dataset.CountryOptions{
			IDProperties: cfg.IDProperties,
			NameProperty: cfg.NameProperty,
		},
	})
	if err != nil {
		s.close()
		return nil, fmt.Errorf("loading datasets: %w", err)
	}
	s.logger.Info("datasets loaded",
		"countries", len(ds.Countries),
		"events", len(ds.Earthquakes),
		"located", ds.Located(),
		"seconds", s.clock.Since(start).Seconds(),
	)

	s.engine = filter.New(ds,
		filter.WithIndex(cfg.UseIndex),
		filter.WithLogger(s.logger),
		filter.WithMetrics(metrics),
		filter.WithClock(s.clock),
	)
	ready.Store(true)
	return s, nil
}

func (s *session) close() {
	if s.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Warn("metrics server shutdown", "error", err)
	}
}
