// Package physics is a small demo module: gravity, drag and integration
// tasks over an in-memory body store. Gravity and drag write the velocity
// resource, integrate reads it and writes position.
package physics

import (
	"context"
	"math"
	"time"

	"github.com/specialistvlad/celerity/internal/critical"
	"github.com/specialistvlad/celerity/internal/registry"
	"github.com/specialistvlad/celerity/internal/task"
)

// Resources the physics tasks touch.
const (
	Velocity task.ResourceID = "velocity"
	Position task.ResourceID = "position"
)

// Handler names.
const (
	GravityHandler   = "physics.gravity"
	DragHandler      = "physics.drag"
	IntegrateHandler = "physics.integrate"
)

const (
	defaultStep    = time.Second / 60
	defaultGravity = 9.81
	defaultDrag    = 0.1
	defaultBodies  = 16
)

// Config tunes the simulation. Zero values select the defaults.
type Config struct {
	// Step is the simulated time of one pass, normally the fixed step.
	Step    time.Duration
	Gravity float64
	// Drag is the fraction of velocity lost per simulated second.
	Drag   float64
	Bodies int
}

// Module implements the registry.Module interface for this package.
type Module struct {
	cfg   Config
	store *Store
}

// NewModule creates the module and its body store.
func NewModule(cfg Config) *Module {
	if cfg.Step <= 0 {
		cfg.Step = defaultStep
	}
	if cfg.Gravity == 0 {
		cfg.Gravity = defaultGravity
	}
	if cfg.Drag == 0 {
		cfg.Drag = defaultDrag
	}
	if cfg.Bodies <= 0 {
		cfg.Bodies = defaultBodies
	}
	return &Module{cfg: cfg, store: NewStore(cfg.Bodies)}
}

// Store returns the body store the tasks operate on.
func (m *Module) Store() *Store {
	return m.store
}

// Register registers the handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask(GravityHandler, &registry.RegisteredTask{
		Description: "Accelerates every body downwards. Writes velocity.",
		New:         m.newGravity,
	})
	r.RegisterTask(DragHandler, &registry.RegisteredTask{
		Description: "Damps every body's velocity. Writes velocity.",
		New:         m.newDrag,
	})
	r.RegisterTask(IntegrateHandler, &registry.RegisteredTask{
		Description: "Moves bodies by their velocity and bounces them off the floor. Reads velocity, writes position.",
		New:         m.newIntegrate,
	})
}

func (m *Module) dt() float64 {
	return m.cfg.Step.Seconds()
}

func (m *Module) newGravity(context.Context, string) task.Runnable {
	dv := m.cfg.Gravity * m.dt()
	return task.Func(func() {
		for i := range m.store.bodies {
			m.store.bodies[i].VY -= dv
		}
	})
}

func (m *Module) newDrag(context.Context, string) task.Runnable {
	keep := math.Max(0, 1-m.cfg.Drag*m.dt())
	return task.Func(func() {
		for i := range m.store.bodies {
			m.store.bodies[i].VX *= keep
			m.store.bodies[i].VY *= keep
		}
	})
}

func (m *Module) newIntegrate(ctx context.Context, taskName string) task.Runnable {
	reporter := critical.FromContext(ctx)
	dt := m.dt()
	return task.Func(func() {
		for i := range m.store.bodies {
			b := &m.store.bodies[i]
			b.X += b.VX * dt
			b.Y += b.VY * dt
			if b.Y < 0 {
				b.Y = -b.Y
				b.VY = -b.VY
			}
			if math.IsNaN(b.X) || math.IsNaN(b.Y) || math.IsInf(b.X, 0) || math.IsInf(b.Y, 0) {
				reporter.Fatal(taskName, "body position is not finite", "body", i, "x", b.X, "y", b.Y)
				return
			}
		}
	})
}
