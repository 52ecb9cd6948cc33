// Package diagnostics provides tasks that report on the state of a running
// world.
package diagnostics

import (
	"context"

	"github.com/specialistvlad/celerity/internal/ctxlog"
	"github.com/specialistvlad/celerity/internal/registry"
	"github.com/specialistvlad/celerity/internal/task"
)

// Handler names.
const (
	ReportHandler = "diagnostics.report"
	NoopHandler   = "diagnostics.noop"
)

// Source is anything that can summarize itself as slog key/value pairs.
type Source interface {
	Summary() []any
}

// Config controls the reporter.
type Config struct {
	// Every is the number of passes between two reports; values below 1 report every pass.
	Every   int
	Sources []Source
}

// Module implements the registry.Module interface for this package.
type Module struct {
	cfg Config
}

// NewModule creates the diagnostics module.
func NewModule(cfg Config) *Module {
	if cfg.Every < 1 {
		cfg.Every = 1
	}
	return &Module{cfg: cfg}
}

// Register registers the handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask(ReportHandler, &registry.RegisteredTask{
		Description: "Logs a summary of every source periodically.",
		New:         m.newReport,
	})
	r.RegisterFunc(NoopHandler, "Does nothing. A placeholder for ordering-only tasks.", func() {})
}

func (m *Module) newReport(ctx context.Context, taskName string) task.Runnable {
	logger := ctxlog.FromContext(ctx).With("task", taskName)
	var passes uint64
	return task.Func(func() {
		passes++
		if passes%uint64(m.cfg.Every) != 0 {
			return
		}
		args := []any{"pass", passes}
		for _, s := range m.cfg.Sources {
			args = append(args, s.Summary()...)
		}
		logger.Info("Frame report.", args...)
	})
}
