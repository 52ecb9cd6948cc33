package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/celerity/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

// Run drives the frame loop until the configured number of frames has run
// or ctx is cancelled. The health check server, when enabled, runs alongside
// it and is shut down when the loop ends. Cancellation is a clean stop.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	defer a.Close()
	a.logger.Debug("App.Run method started.")

	if a.config.Describe {
		if err := a.Describe(); err != nil {
			return err
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	if a.config.HealthcheckPort > 0 {
		srv := a.newServer()
		g.Go(func() error { return a.serve(gctx, srv) })
	} else {
		a.logger.Debug("Health check server not started: disabled")
	}

	g.Go(func() error {
		defer cancel()
		a.logger.Info("🚀 Starting frame loop...", "frames", a.config.Frames, "interval", a.config.FrameInterval)
		err := a.world.Run(gctx, a.config.FrameInterval, a.config.Frames)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("frame loop failed: %w", err)
		}
		a.logger.Info("🏁 Frame loop finished.")
		return nil
	})

	err := g.Wait()
	a.logger.Debug("App.Run method finished.")
	return err
}

// Describe writes the resolved schedule of every pipeline to the output.
func (a *App) Describe() error {
	for _, p := range a.pipelines {
		if _, err := fmt.Fprintf(a.outW, "pipeline %s (%s, %d child threads)\n", p.ID(), p.Type(), p.MaxChildThreads()); err != nil {
			return err
		}
		if err := p.Collection().Describe(a.outW); err != nil {
			return fmt.Errorf("failed to describe pipeline '%s': %w", p.ID(), err)
		}
		if _, err := fmt.Fprintln(a.outW); err != nil {
			return err
		}
	}
	return nil
}
