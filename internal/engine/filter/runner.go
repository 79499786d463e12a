package filter

import (
	"context"
	"sync"

	"github.com/rendis/quakemap/internal/model"
)

// Runner lets a UI evaluate selections off its event loop.
//
// Every Submit supersedes the previous one: its context is canceled and its
// outcome will be refused by Accept. Outcomes are only ever accepted in
// submission order, so a slow stale scan cannot overwrite a newer result.
type Runner struct {
	engine *Engine

	mu      sync.Mutex
	issued  uint64
	applied uint64
	cancel  context.CancelFunc
}

// Ticket is one submitted evaluation.
type Ticket struct {
	Seq       uint64
	Selection model.Selection

	ctx    context.Context
	engine *Engine
}

// Outcome is the result of running a Ticket.
type Outcome struct {
	Seq       uint64
	Selection model.Selection
	Result    model.FilterResult
	Err       error
}

func NewRunner(e *Engine) *Runner {
	return &Runner{engine: e}
}

// Submit registers sel as the latest selection and returns the ticket to run.
func (r *Runner) Submit(sel model.Selection) Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.issued++

	return Ticket{Seq: r.issued, Selection: sel, ctx: ctx, engine: r.engine}
}

// Run evaluates the ticket. It is safe to call from any goroutine.
func (t Ticket) Run() Outcome {
	res, err := t.engine.Apply(t.ctx, t.Selection)
	return Outcome{Seq: t.Seq, Selection: t.Selection, Result: res, Err: err}
}

// Accept reports whether o belongs to the latest submission and has not been
// accepted before. Callers apply the outcome only when Accept returns true.
func (r *Runner) Accept(o Outcome) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o.Seq != r.issued || o.Seq <= r.applied {
		if m := r.engine.metrics; m != nil {
			m.StaleResultsDropped.Inc()
		}
		return false
	}
	r.applied = o.Seq
	return true
}

// Close cancels any in-flight evaluation.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}
