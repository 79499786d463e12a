package filter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"

	"github.com/rendis/quakemap/internal/engine/dataset"
	"github.com/rendis/quakemap/internal/engine/geo"
	"github.com/rendis/quakemap/internal/model"
	"github.com/rendis/quakemap/internal/observability"
)

// how many events are classified between context checks
const cancelCheckEvery = 1024

var worldBound = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

// Apply evaluates one selection against the full collections with a plain
// scan of every event.
func Apply(events []model.Earthquake, countries []model.Country, sel model.Selection) (model.FilterResult, error) {
	e := New(&dataset.Dataset{Countries: countries, Earthquakes: events})
	return e.Apply(context.Background(), sel)
}

// Engine evaluates selections against one immutable dataset.
type Engine struct {
	ds      *dataset.Dataset
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock

	useIndex  bool
	index     *quadtree.Quadtree
	unindexed []int // located events the world-bounded index rejected
}

// Option configures an Engine.
type Option func(*Engine)

// WithIndex builds a quadtree over located events so a selection only
// classifies events inside the country's bounding box.
func WithIndex(enabled bool) Option {
	return func(e *Engine) { e.useIndex = enabled }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// New creates an engine for ds. ds must not be modified afterwards.
func New(ds *dataset.Dataset, opts ...Option) *Engine {
	e := &Engine{
		ds:     ds,
		logger: slog.New(slog.DiscardHandler),
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.useIndex {
		e.buildIndex()
	}
	if e.metrics != nil {
		e.metrics.DatasetEvents.Set(float64(len(ds.Earthquakes)))
		e.metrics.DatasetCountries.Set(float64(len(ds.Countries)))
	}
	return e
}

// Dataset returns the collections the engine was built with.
func (e *Engine) Dataset() *dataset.Dataset { return e.ds }

// Apply evaluates sel.
//
// ANY, and keys that resolve to no country, return the full collections with
// a nil center. A resolved country yields the events inside its boundary in
// collection order, a singleton country list and its centroid. A malformed
// boundary fails the whole evaluation with geo.ErrInvalidGeometry.
func (e *Engine) Apply(ctx context.Context, sel model.Selection) (model.FilterResult, error) {
	start := e.clock.Now()
	res, classified, err := e.apply(ctx, sel)
	e.observe(sel, res, classified, err, e.clock.Since(start).Seconds())
	return res, err
}

func (e *Engine) apply(ctx context.Context, sel model.Selection) (model.FilterResult, int, error) {
	if sel.IsAll() {
		return e.reset(sel, false), 0, nil
	}

	country, ok := geo.Resolve(e.ds.Countries, sel.Key())
	if !ok {
		return e.reset(sel, true), 0, nil
	}

	center, err := geo.Center(country.Geometry)
	if err != nil {
		return model.FilterResult{}, 0, fmt.Errorf("centering %s (%s): %w", country.Name, country.ID, err)
	}
	cls, err := geo.NewClassifier(country.Geometry)
	if err != nil {
		return model.FilterResult{}, 0, fmt.Errorf("classifying %s (%s): %w", country.Name, country.ID, err)
	}

	quakes, classified, err := e.classify(ctx, cls)
	if err != nil {
		return model.FilterResult{}, classified, err
	}

	return model.FilterResult{
		Selection:   sel,
		Country:     &country,
		Earthquakes: quakes,
		Countries:   []model.Country{country},
		Center:      &center,
	}, classified, nil
}

func (e *Engine) reset(sel model.Selection, notFound bool) model.FilterResult {
	return model.FilterResult{
		Selection:   sel,
		Earthquakes: e.ds.Earthquakes,
		Countries:   e.ds.Countries,
		NotFound:    notFound,
	}
}

// classify returns the located events inside cls in collection order and the
// number of exact containment tests performed.
func (e *Engine) classify(ctx context.Context, cls *geo.Classifier) ([]model.Earthquake, int, error) {
	out := make([]model.Earthquake, 0)
	bound := cls.Bound()
	classified, seen := 0, 0

	test := func(i int) error {
		seen++
		if seen%cancelCheckEvery == 1 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		q := e.ds.Earthquakes[i]
		if !q.Located || !bound.Contains(q.Point) {
			return nil
		}
		classified++
		if cls.Contains(q.Point) {
			out = append(out, q)
		}
		return nil
	}

	if e.index != nil {
		for _, i := range e.candidates(bound) {
			if err := test(i); err != nil {
				return nil, classified, err
			}
		}
		return out, classified, nil
	}

	for i := range e.ds.Earthquakes {
		if err := test(i); err != nil {
			return nil, classified, err
		}
	}
	return out, classified, nil
}

func (e *Engine) observe(sel model.Selection, res model.FilterResult, classified int, err error, seconds float64) {
	outcome := observability.OutcomeFiltered
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		outcome = observability.OutcomeCanceled
	case err != nil:
		outcome = observability.OutcomeInvalid
	case res.NotFound:
		outcome = observability.OutcomeNotFound
	case sel.IsAll():
		outcome = observability.OutcomeReset
	}

	if e.metrics != nil {
		e.metrics.FilterRuns.WithLabelValues(outcome).Inc()
		e.metrics.FilterDuration.Observe(seconds)
		e.metrics.EventsClassified.Add(float64(classified))
		if err == nil {
			e.metrics.EventsDisplayed.Set(float64(len(res.Earthquakes)))
		}
	}

	switch outcome {
	case observability.OutcomeInvalid:
		e.logger.Error("filter failed", "selection", sel.Key(), "error", err)
	case observability.OutcomeCanceled:
		e.logger.Debug("filter canceled", "selection", sel.Key())
	case observability.OutcomeNotFound:
		e.logger.Warn("country not found, showing all", "selection", sel.Key())
	default:
		e.logger.Info("filter applied",
			"selection", sel.Key(),
			"outcome", outcome,
			"events", len(res.Earthquakes),
			"classified", classified,
			"seconds", seconds,
		)
	}
}

// indexedQuake adapts an event index to orb.Pointer for the quadtree.
type indexedQuake struct {
	idx   int
	point orb.Point
}

func (q indexedQuake) Point() orb.Point { return q.point }

func (e *Engine) buildIndex() {
	e.index = quadtree.New(worldBound)
	indexed := 0
	for i, q := range e.ds.Earthquakes {
		if !q.Located {
			continue
		}
		if err := e.index.Add(indexedQuake{idx: i, point: q.Point}); err != nil {
			e.unindexed = append(e.unindexed, i)
			continue
		}
		indexed++
	}
	e.logger.Debug("event index built", "indexed", indexed, "unindexed", len(e.unindexed))
}

// candidates returns, in collection order, the indices of events that may lie
// inside bound.
func (e *Engine) candidates(bound orb.Bound) []int {
	found := e.index.InBound(nil, bound.Pad(1e-9))
	idx := make([]int, 0, len(found)+len(e.unindexed))
	for _, p := range found {
		idx = append(idx, p.(indexedQuake).idx)
	}
	idx = append(idx, e.unindexed...)
	sort.Ints(idx)
	return idx
}
