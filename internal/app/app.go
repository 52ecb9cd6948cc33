package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/celerity/internal/config"
	"github.com/specialistvlad/celerity/internal/critical"
	"github.com/specialistvlad/celerity/internal/ctxlog"
	"github.com/specialistvlad/celerity/internal/metrics"
	"github.com/specialistvlad/celerity/internal/pipeline"
	"github.com/specialistvlad/celerity/internal/registry"
	"github.com/specialistvlad/celerity/internal/world"
)

// metricsNamespace prefixes every exported collector.
const metricsNamespace = "celerity"

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	model    *config.Model

	pipelines       []*pipeline.Pipeline
	world           *world.World
	metricsRegistry *prometheus.Registry
	closers         []func()
}

// NewApp loads the pipeline declarations, registers the Go modules, and
// builds every pipeline. Nothing runs until Run is called. When no modules
// are given the core modules are used.
func NewApp(ctx context.Context, outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:            outW,
		logger:          logger,
		config:          cfg,
		metricsRegistry: prometheus.NewRegistry(),
	}

	// Load all configuration into the format-agnostic model first.
	model, err := loader.Load(ctx, cfg.PipelinePaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if len(model.Pipelines) == 0 {
		return nil, fmt.Errorf("no pipelines declared in %s", strings.Join(cfg.PipelinePaths, ", "))
	}
	a.model = model
	logger.Debug("Configuration loaded and translated into unified model.", "pipelines", len(model.Pipelines))

	// Create and populate the registry with Go task handlers.
	a.registry = registry.New()
	if len(modules) == 0 {
		modules = coreModules(cfg)
	}
	for _, mod := range modules {
		mod.Register(a.registry)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	if err := a.registry.Validate(ctx, model); err != nil {
		return nil, err
	}
	logger.Debug("Registry validation passed.")

	exporter, err := metrics.NewExporter(metricsNamespace, a.metricsRegistry, metrics.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	prof, err := a.newProfiler(ctx)
	if err != nil {
		return nil, err
	}

	threads := cfg.Workers
	if threads < 0 {
		threads = pipeline.DefaultChildThreads()
	}

	// Task constructors pick the reporter up from the context.
	buildCtx := critical.WithReporter(ctx, critical.New(logger, nil))
	pipelines, err := pipeline.FromModel(buildCtx, model, a.registry, pipeline.Options{
		ChildThreads: threads,
		Profiler:     prof,
		TaskZones:    cfg.TaskZones,
		Metrics:      exporter,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.pipelines = pipelines

	a.world, err = world.New(pipelines, cfg.FixedStep, cfg.MaxFixedSteps)
	if err != nil {
		a.Close()
		return nil, err
	}

	logger.Info("Pipelines ready.", "count", len(pipelines), "handlers", a.registry.HandlerNames())
	return a, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded configuration model.
func (a *App) Model() *config.Model {
	return a.model
}

// Pipelines returns the built pipelines in declaration order.
func (a *App) Pipelines() []*pipeline.Pipeline {
	return a.pipelines
}

// World returns the frame driver owning the pipelines.
func (a *App) World() *world.World {
	return a.world
}

// Gatherer exposes the application's metrics registry.
func (a *App) Gatherer() prometheus.Gatherer {
	return a.metricsRegistry
}

// Close releases connections opened by NewApp. It is safe to call twice.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
