// Package executor runs a collection.Collection to completion, once per
// call, on a bounded pool of goroutines that includes the caller.
package executor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/celerity/internal/collection"
	"github.com/specialistvlad/celerity/internal/ctxlog"
	"github.com/specialistvlad/celerity/internal/profiler"
)

// State is the phase of an executor.
type State int32

const (
	// Idle means no pass is in flight.
	Idle State = iota
	// Running means tasks are being dispatched.
	Running
	// Draining means every task has completed and workers are exiting.
	Draining
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Draining:
		return "draining"
	default:
		return "unknown"
	}
}

// Observer is told how long each task body took. It is called from worker
// goroutines and must be safe for concurrent use.
type Observer interface {
	ObserveTask(name string, d time.Duration)
}

// Option configures an Executor.
type Option func(*Executor)

// WithObserver reports task durations to o.
func WithObserver(o Observer) Option {
	return func(e *Executor) { e.observer = o }
}

// WithProfiler opens a profiler zone around every task body.
func WithProfiler(p profiler.Profiler) Option {
	return func(e *Executor) {
		if p != nil {
			e.profiler = p
		}
	}
}

// Executor runs one collection. Run calls on the same Executor must not
// overlap; different executors are independent.
type Executor struct {
	collection      *collection.Collection
	roots           []int
	maxChildThreads int

	state     atomic.Int32
	pending   []atomic.Int32
	completed atomic.Int32

	observer Observer
	profiler profiler.Profiler
}

// New creates an executor for c. maxChildThreads is the number of goroutines
// started in addition to the caller; negative values mean zero.
func New(c *collection.Collection, maxChildThreads int, opts ...Option) *Executor {
	e := &Executor{
		collection:      c,
		roots:           c.Roots(),
		maxChildThreads: max(maxChildThreads, 0),
		pending:         make([]atomic.Int32, c.Len()),
		profiler:        profiler.Nop{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current phase.
func (e *Executor) State() State {
	return State(e.state.Load())
}

// MaxChildThreads returns the number of helper goroutines a pass may use.
func (e *Executor) MaxChildThreads() int {
	return e.maxChildThreads
}

// Collection returns the collection being executed.
func (e *Executor) Collection() *collection.Collection {
	return e.collection
}

// Run executes every task exactly once, honouring the dependants of each
// item, and returns when all of them have completed. A pass cannot be
// cancelled; ctx only supplies the logger. Run panics if another Run on the
// same executor is in progress.
func (e *Executor) Run(ctx context.Context) {
	if !e.state.CompareAndSwap(int32(Idle), int32(Running)) {
		panic("executor: Run called while a pass is already in progress")
	}
	defer e.state.Store(int32(Idle))

	total := e.collection.Len()
	if total == 0 {
		return
	}

	for i := range e.pending {
		e.pending[i].Store(int32(e.collection.At(i).DependencyCount))
	}
	e.completed.Store(0)

	// Every task is sent exactly once, so a buffer of total never blocks.
	ready := make(chan int, total)
	for _, idx := range e.roots {
		ready <- idx
	}

	children := min(e.maxChildThreads, total-1)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting pass.", "tasks", total, "roots", len(e.roots), "childThreads", children)

	var wg sync.WaitGroup
	wg.Add(children)
	for i := 1; i <= children; i++ {
		go func() {
			defer wg.Done()
			e.worker(ready, total)
		}()
	}

	// The calling goroutine is worker zero.
	e.worker(ready, total)
	wg.Wait()
	logger.Debug("Pass completed.", "tasks", total)
}

// worker is the core processing loop shared by the caller and the child
// goroutines. It exits when the last task completes and closes ready.
func (e *Executor) worker(ready chan int, total int) {
	for idx := range ready {
		item := e.collection.At(idx)
		e.runTask(item)

		// Dependants are unlocked before this task counts as completed, so
		// ready is never closed while a send is still due.
		for _, d := range item.Dependants {
			if e.pending[d].Add(-1) == 0 {
				ready <- d
			}
		}

		if int(e.completed.Add(1)) == total {
			e.state.Store(int32(Draining))
			close(ready)
		}
	}
}

func (e *Executor) runTask(item *collection.Item) {
	zone := e.profiler.Begin(item.Name)
	start := time.Now()
	item.Body.Run()
	elapsed := time.Since(start)
	zone.End()
	if e.observer != nil {
		e.observer.ObserveTask(item.Name, elapsed)
	}
}
