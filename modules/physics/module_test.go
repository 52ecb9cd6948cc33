package physics

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/specialistvlad/celerity/internal/critical"
	"github.com/specialistvlad/celerity/internal/pipeline"
	"github.com/specialistvlad/celerity/internal/registry"
	"github.com/specialistvlad/celerity/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBodies(t *testing.T, m *Module, ctx context.Context) (gravity, drag, integrate task.Runnable) {
	t.Helper()
	reg := registry.New()
	m.Register(reg)

	var err error
	gravity, err = reg.NewTask(ctx, GravityHandler, "gravity")
	require.NoError(t, err)
	drag, err = reg.NewTask(ctx, DragHandler, "drag")
	require.NoError(t, err)
	integrate, err = reg.NewTask(ctx, IntegrateHandler, "integrate")
	require.NoError(t, err)
	return gravity, drag, integrate
}

func TestStep(t *testing.T) {
	m := NewModule(Config{Step: time.Second, Gravity: 10, Drag: 0.5, Bodies: 1})
	m.Store().Reset([]Body{{Y: 100}})
	gravity, drag, integrate := newBodies(t, m, context.Background())

	gravity.Run()
	assert.Equal(t, -10.0, m.Store().Bodies()[0].VY)
	drag.Run()
	assert.Equal(t, -5.0, m.Store().Bodies()[0].VY)
	integrate.Run()
	assert.Equal(t, 95.0, m.Store().Bodies()[0].Y)
}

func TestIntegrate_BouncesOffFloor(t *testing.T) {
	m := NewModule(Config{Step: time.Second})
	m.Store().Reset([]Body{{Y: 1, VY: -3}})
	_, _, integrate := newBodies(t, m, context.Background())

	integrate.Run()
	assert.Equal(t, Body{Y: 2, VY: 3}, m.Store().Bodies()[0])
}

func TestIntegrate_NonFiniteIsCritical(t *testing.T) {
	var buf bytes.Buffer
	var codes []int
	reporter := critical.New(slog.New(slog.NewTextHandler(&buf, nil)), func(code int) { codes = append(codes, code) })
	ctx := critical.WithReporter(context.Background(), reporter)

	m := NewModule(Config{})
	m.Store().Reset([]Body{{Y: 1}, {Y: math.Inf(1)}})
	_, _, integrate := newBodies(t, m, ctx)

	integrate.Run()
	assert.Equal(t, []int{critical.ExitCode}, codes)
	assert.Contains(t, buf.String(), "body position is not finite")
	assert.Contains(t, buf.String(), "task=integrate body=1")
}

func TestDefaults(t *testing.T) {
	m := NewModule(Config{})
	assert.Equal(t, defaultBodies, m.Store().Len())
	assert.Equal(t, defaultStep, m.cfg.Step)
	assert.Len(t, m.Store().Summary(), 6)
	assert.Equal(t, []any{"bodies", 0}, NewStore(0).Summary())
}

// Running the tasks through a pipeline matches running them in declaration
// order, whatever the worker count.
func TestPipelineMatchesSequentialRun(t *testing.T) {
	const passes = 50
	ctx := context.Background()

	want := NewModule(Config{Bodies: 32})
	g, d, i := newBodies(t, want, ctx)
	for range passes {
		g.Run()
		d.Run()
		i.Run()
	}

	for _, threads := range []int{0, 1, 4} {
		m := NewModule(Config{Bodies: 32})
		g, d, i := newBodies(t, m, ctx)

		b := pipeline.NewBuilder("physics", pipeline.Fixed).MaxChildThreads(threads)
		b.AddTask("gravity").Writes(Velocity).SetExecutor(g)
		b.AddTask("drag").Writes(Velocity).SetExecutor(d)
		b.AddTask("integrate").Reads(Velocity).Writes(Position).SetExecutor(i)
		p, err := b.Build(ctx)
		require.NoError(t, err)

		for range passes {
			p.Execute(ctx)
		}
		assert.Equal(t, want.Store().Bodies(), m.Store().Bodies(), "threads=%d", threads)
	}
}
