// Package world drives pipelines frame by frame. Fixed pipelines advance in
// fixed simulation steps fed by an accumulator, Normal pipelines run once
// per frame after them, Custom pipelines run only on request.
package world

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/celerity/internal/ctxlog"
	"github.com/specialistvlad/celerity/internal/pipeline"
)

// DefaultMaxFixedSteps bounds fixed-step catch-up in a single frame.
const DefaultMaxFixedSteps = 8

// FrameStats describes one completed frame.
type FrameStats struct {
	Frame      uint64
	FixedSteps int
	// Dropped is simulation time discarded because catch-up hit the step limit.
	Dropped time.Duration
	// Alpha is the leftover fraction of a fixed step, for interpolation.
	Alpha float64
}

// World owns the pipelines of an application. It is driven from a single
// goroutine; Frame and ExecuteCustom must not be called concurrently.
type World struct {
	fixed  []*pipeline.Pipeline
	normal []*pipeline.Pipeline
	custom map[string]*pipeline.Pipeline
	all    map[string]*pipeline.Pipeline

	fixedStep     time.Duration
	maxFixedSteps int
	accumulator   time.Duration
	frame         uint64
}

// New groups pipelines by type. fixedStep must be positive when any Fixed
// pipeline is present; maxFixedSteps <= 0 means DefaultMaxFixedSteps.
func New(pipelines []*pipeline.Pipeline, fixedStep time.Duration, maxFixedSteps int) (*World, error) {
	if maxFixedSteps <= 0 {
		maxFixedSteps = DefaultMaxFixedSteps
	}
	w := &World{
		custom:        make(map[string]*pipeline.Pipeline),
		all:           make(map[string]*pipeline.Pipeline),
		fixedStep:     fixedStep,
		maxFixedSteps: maxFixedSteps,
	}
	for _, p := range pipelines {
		if _, dup := w.all[p.ID()]; dup {
			return nil, fmt.Errorf("duplicate pipeline '%s'", p.ID())
		}
		w.all[p.ID()] = p
		switch p.Type() {
		case pipeline.Fixed:
			w.fixed = append(w.fixed, p)
		case pipeline.Custom:
			w.custom[p.ID()] = p
		default:
			w.normal = append(w.normal, p)
		}
	}
	if len(w.fixed) > 0 && fixedStep <= 0 {
		return nil, fmt.Errorf("fixed step must be positive, got %s", fixedStep)
	}
	return w, nil
}

// Pipeline returns the pipeline with the given id.
func (w *World) Pipeline(id string) (*pipeline.Pipeline, bool) {
	p, ok := w.all[id]
	return p, ok
}

// Frame advances the world by dt: as many fixed steps as the accumulator
// allows, then every Normal pipeline once.
func (w *World) Frame(ctx context.Context, dt time.Duration) FrameStats {
	w.frame++
	stats := FrameStats{Frame: w.frame}

	if len(w.fixed) > 0 {
		w.accumulator += dt
		for w.accumulator >= w.fixedStep && stats.FixedSteps < w.maxFixedSteps {
			for _, p := range w.fixed {
				p.Execute(ctx)
			}
			w.accumulator -= w.fixedStep
			stats.FixedSteps++
		}
		if w.accumulator >= w.fixedStep {
			stats.Dropped = w.accumulator - w.accumulator%w.fixedStep
			w.accumulator %= w.fixedStep
			ctxlog.FromContext(ctx).Warn("Fixed step catch-up limit reached, dropping simulation time.",
				"frame", w.frame, "dropped", stats.Dropped)
		}
		stats.Alpha = float64(w.accumulator) / float64(w.fixedStep)
	}

	for _, p := range w.normal {
		p.Execute(ctx)
	}
	return stats
}

// ExecuteCustom runs one pass of the named Custom pipeline.
func (w *World) ExecuteCustom(ctx context.Context, id string) error {
	p, ok := w.custom[id]
	if !ok {
		return fmt.Errorf("no custom pipeline '%s'", id)
	}
	p.Execute(ctx)
	return nil
}

// Run calls Frame every interval until frames frames have run or ctx is
// done. frames <= 0 runs until ctx is done. dt is measured wall time.
func (w *World) Run(ctx context.Context, interval time.Duration, frames int) error {
	logger := ctxlog.FromContext(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for n := 0; frames <= 0 || n < frames; n++ {
		select {
		case <-ctx.Done():
			logger.Info("Frame loop stopped.", "frames", n)
			return ctx.Err()
		case now := <-ticker.C:
			stats := w.Frame(ctx, now.Sub(last))
			last = now
			logger.Debug("Frame completed.", "frame", stats.Frame, "fixedSteps", stats.FixedSteps)
		}
	}
	logger.Info("Frame loop finished.", "frames", frames)
	return nil
}
