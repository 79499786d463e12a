package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Filter outcomes used as the "outcome" label of FilterRuns.
const (
	OutcomeReset    = "reset"
	OutcomeFiltered = "filtered"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid_geometry"
	OutcomeCanceled = "canceled"
)

// Metrics holds the Prometheus collectors for the filter engine.
type Metrics struct {
	FilterRuns          *prometheus.CounterVec // labels: outcome
	FilterDuration      prometheus.Histogram
	EventsClassified    prometheus.Counter
	EventsDisplayed     prometheus.Gauge
	DatasetEvents       prometheus.Gauge
	DatasetCountries    prometheus.Gauge
	StaleResultsDropped prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.FilterRuns,
		m.FilterDuration,
		m.EventsClassified,
		m.EventsDisplayed,
		m.DatasetEvents,
		m.DatasetCountries,
		m.StaleResultsDropped,
	)
	return m
}

// NewMetricsForTesting creates unregistered collectors so tests can build as
// many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FilterRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quakemap",
			Name:      "filter_runs_total",
			Help:      "Filter evaluations by outcome.",
		}, []string{"outcome"}),
		FilterDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quakemap",
			Name:      "filter_duration_seconds",
			Help:      "Duration of one filter evaluation.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		EventsClassified: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakemap",
			Name:      "events_classified_total",
			Help:      "Point-in-polygon tests performed.",
		}),
		EventsDisplayed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quakemap",
			Name:      "events_displayed",
			Help:      "Earthquakes in the most recent filter result.",
		}),
		DatasetEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quakemap",
			Name:      "dataset_events",
			Help:      "Earthquakes loaded at startup.",
		}),
		DatasetCountries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quakemap",
			Name:      "dataset_countries",
			Help:      "Countries loaded at startup.",
		}),
		StaleResultsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakemap",
			Name:      "stale_results_dropped_total",
			Help:      "Background filter results discarded because a newer selection arrived.",
		}),
	}
}
