package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"github.com/specialistvlad/celerity/internal/collection"
	"github.com/specialistvlad/celerity/internal/ctxlog"
	"github.com/specialistvlad/celerity/internal/executor"
	"github.com/specialistvlad/celerity/internal/flow"
	"github.com/specialistvlad/celerity/internal/profiler"
	"github.com/specialistvlad/celerity/internal/registry"
	"github.com/specialistvlad/celerity/internal/task"
)

// DefaultChildThreads leaves one CPU for the calling goroutine.
func DefaultChildThreads() int {
	return max(runtime.NumCPU()-1, 0)
}

// Builder accumulates the declarations of one pipeline. It is not safe for
// concurrent use.
type Builder struct {
	id              string
	kind            Type
	maxChildThreads int
	symbols         *registry.Symbols
	profiler        profiler.Profiler
	taskZones       bool
	observer        Observer

	// entries keep tasks and checkpoints in declaration order.
	entries []entry
}

type entry struct {
	task       *task.Builder
	checkpoint *task.CheckpointBuilder
}

// NewBuilder starts a pipeline named id.
func NewBuilder(id string, kind Type) *Builder {
	return &Builder{
		id:              id,
		kind:            kind,
		maxChildThreads: DefaultChildThreads(),
		profiler:        profiler.Nop{},
	}
}

// MaxChildThreads sets how many goroutines besides the caller a pass may use.
func (b *Builder) MaxChildThreads(n int) *Builder {
	b.maxChildThreads = n
	return b
}

// WithSymbols shares a symbol table for resource ids.
func (b *Builder) WithSymbols(s *registry.Symbols) *Builder {
	b.symbols = s
	return b
}

// WithProfiler sets the marker sink. With taskZones every task body is
// additionally wrapped in a zone.
func (b *Builder) WithProfiler(p profiler.Profiler, taskZones bool) *Builder {
	if p == nil {
		p = profiler.Nop{}
	}
	b.profiler = p
	b.taskZones = taskZones
	return b
}

// WithObserver reports pass timings, and task timings when o implements
// executor.Observer.
func (b *Builder) WithObserver(o Observer) *Builder {
	b.observer = o
	return b
}

// AddCheckpoint declares a checkpoint. Declaring the same name again is
// allowed as long as the positions agree.
func (b *Builder) AddCheckpoint(name string) *task.CheckpointBuilder {
	cb := task.NewCheckpointBuilder(name)
	b.entries = append(b.entries, entry{checkpoint: cb})
	return cb
}

// AddTask declares a task. The returned builder is read when the pipeline is built.
func (b *Builder) AddTask(name string) *task.Builder {
	tb := task.NewBuilder(name)
	b.entries = append(b.entries, entry{task: tb})
	return tb
}

// BuildCollection resolves the declarations without creating an executor.
func (b *Builder) BuildCollection(ctx context.Context) (*collection.Collection, error) {
	decls := make([]flow.Declaration, len(b.entries))
	for i, e := range b.entries {
		if e.task != nil {
			decls[i] = flow.TaskDecl(e.task.Descriptor())
		} else {
			decls[i] = flow.CheckpointDecl(e.checkpoint.Declaration())
		}
	}
	c, err := flow.New(b.symbols).Resolve(ctx, decls)
	if err != nil {
		return nil, fmt.Errorf("pipeline '%s': %w", b.id, err)
	}
	return c, nil
}

// Build resolves the declarations and constructs the pipeline.
func (b *Builder) Build(ctx context.Context) (*Pipeline, error) {
	ctx, logger := ctxlog.With(ctx, "pipeline", b.id)

	c, err := b.BuildCollection(ctx)
	if err != nil {
		return nil, err
	}

	var opts []executor.Option
	if b.taskZones {
		opts = append(opts, executor.WithProfiler(b.profiler))
	}
	if to, ok := b.observer.(executor.Observer); ok {
		opts = append(opts, executor.WithObserver(to))
	}

	p := &Pipeline{
		id:          b.id,
		kind:        b.kind,
		collection:  c,
		executor:    executor.New(c, b.maxChildThreads, opts...),
		profiler:    b.profiler,
		observer:    b.observer,
		beginMarker: b.id + "Begin",
		endMarker:   b.id + "End",
	}
	logger.Info("Pipeline built.", "type", b.kind, "tasks", c.Len(), "childThreads", p.MaxChildThreads())
	return p, nil
}
