package pipeline

import (
	"context"
	"fmt"

	"github.com/specialistvlad/celerity/internal/config"
	"github.com/specialistvlad/celerity/internal/metrics"
	"github.com/specialistvlad/celerity/internal/profiler"
	"github.com/specialistvlad/celerity/internal/registry"
	"github.com/specialistvlad/celerity/internal/task"
)

// Options are the application-wide settings applied to pipelines built from
// configuration.
type Options struct {
	// ChildThreads is used when a pipeline does not set max_child_threads.
	ChildThreads int
	Profiler     profiler.Profiler
	TaskZones    bool
	// Metrics may be nil.
	Metrics *metrics.Exporter
}

// FromConfig builds the pipeline declared by cfg, instantiating task bodies
// from the registry.
func FromConfig(ctx context.Context, cfg *config.Pipeline, reg *registry.Registry, opts Options) (*Pipeline, error) {
	kind, err := ParseType(cfg.Type)
	if err != nil {
		return nil, fmt.Errorf("pipeline '%s': %w", cfg.Name, err)
	}

	threads := opts.ChildThreads
	if cfg.MaxChildThreads != nil {
		threads = *cfg.MaxChildThreads
	}

	b := NewBuilder(cfg.Name, kind).
		MaxChildThreads(threads).
		WithSymbols(reg.Symbols()).
		WithProfiler(opts.Profiler, opts.TaskZones)
	if opts.Metrics != nil {
		b.WithObserver(opts.Metrics.Pipeline(cfg.Name, kind.String()))
	}

	for _, cp := range cfg.Checkpoints {
		b.AddCheckpoint(cp.Name).After(refStrings(cp.After)...).Before(refStrings(cp.Before)...)
	}
	for _, t := range cfg.Tasks {
		body, err := reg.NewTask(ctx, t.Handler, t.Name)
		if err != nil {
			return nil, fmt.Errorf("pipeline '%s', task '%s': %w", cfg.Name, t.Name, err)
		}
		b.AddTask(t.Name).
			DependOn(refStrings(t.DependsOn)...).
			MakeDependencyOf(refStrings(t.DependencyOf)...).
			Reads(t.Reads...).
			Writes(t.Writes...).
			SetExecutor(body)
	}
	return b.Build(ctx)
}

// FromModel builds every pipeline in the model, in declaration order.
func FromModel(ctx context.Context, model *config.Model, reg *registry.Registry, opts Options) ([]*Pipeline, error) {
	out := make([]*Pipeline, 0, len(model.Pipelines))
	for _, cfg := range model.Pipelines {
		p, err := FromConfig(ctx, cfg, reg, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func refStrings(refs []task.Ref) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.String()
	}
	return out
}
