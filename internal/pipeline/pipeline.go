package pipeline

import (
	"context"
	"time"

	"github.com/specialistvlad/celerity/internal/collection"
	"github.com/specialistvlad/celerity/internal/executor"
	"github.com/specialistvlad/celerity/internal/profiler"
)

// Observer is told how long each pass took. If it also implements
// executor.Observer it receives task timings too.
type Observer interface {
	ObservePass(d time.Duration)
}

// Pipeline owns one collection and the executor that runs it.
type Pipeline struct {
	id         string
	kind       Type
	collection *collection.Collection
	executor   *executor.Executor
	profiler   profiler.Profiler
	observer   Observer

	beginMarker string
	endMarker   string
}

// ID returns the pipeline name.
func (p *Pipeline) ID() string { return p.id }

// Type returns the update rate tag.
func (p *Pipeline) Type() Type { return p.kind }

// Collection returns the resolved task graph.
func (p *Pipeline) Collection() *collection.Collection { return p.collection }

// MaxChildThreads returns the number of helper goroutines a pass may use.
func (p *Pipeline) MaxChildThreads() int { return p.executor.MaxChildThreads() }

// Execute runs one pass and blocks until every task has run exactly once.
// It emits the "<id>Begin" and "<id>End" profiler markers around the pass.
// Concurrent Execute calls on the same pipeline panic.
func (p *Pipeline) Execute(ctx context.Context) {
	p.profiler.Mark(p.beginMarker)
	start := time.Now()
	p.executor.Run(ctx)
	elapsed := time.Since(start)
	p.profiler.Mark(p.endMarker)
	if p.observer != nil {
		p.observer.ObservePass(elapsed)
	}
}
