package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	prom "github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/specialistvlad/celerity/internal/config"
	"github.com/specialistvlad/celerity/internal/flow"
	"github.com/specialistvlad/celerity/internal/metrics"
	"github.com/specialistvlad/celerity/internal/profiler"
	"github.com/specialistvlad/celerity/internal/registry"
	"github.com/specialistvlad/celerity/internal/task"
	"github.com/specialistvlad/celerity/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type markRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *markRecorder) Mark(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, name)
}

func (r *markRecorder) Begin(string) profiler.Zone { return profiler.Nop{}.Begin("") }

func physicsBuilder(log *testutil.ExecutionLog) *Builder {
	b := NewBuilder("update", Normal).MaxChildThreads(2)
	b.AddTask("Gravity").Writes("Velocity").SetExecutor(log.Body("Gravity"))
	b.AddTask("Drag").Writes("Velocity").SetExecutor(log.Body("Drag"))
	b.AddTask("Integrate").Reads("Velocity").Writes("Position").SetExecutor(log.Body("Integrate"))
	return b
}

func TestBuildAndExecute(t *testing.T) {
	log := &testutil.ExecutionLog{}
	marks := &markRecorder{}
	p, err := physicsBuilder(log).WithProfiler(marks, false).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "update", p.ID())
	assert.Equal(t, Normal, p.Type())
	assert.Equal(t, 2, p.MaxChildThreads())
	assert.Equal(t, []string{"Gravity", "Drag", "Integrate"}, p.Collection().Names())

	p.Execute(context.Background())
	p.Execute(context.Background())

	// The three tasks conflict pairwise, so the order is fully determined.
	want := []string{"Gravity", "Drag", "Integrate", "Gravity", "Drag", "Integrate"}
	if diff := cmp.Diff(want, log.Entries()); diff != "" {
		t.Errorf("execution order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"updateBegin", "updateEnd", "updateBegin", "updateEnd"}, marks.events)
}

func TestBuildCollectionIsStable(t *testing.T) {
	first, err := physicsBuilder(&testutil.ExecutionLog{}).BuildCollection(context.Background())
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		c, err := physicsBuilder(&testutil.ExecutionLog{}).BuildCollection(context.Background())
		require.NoError(t, err)
		require.Equal(t, first.Names(), c.Names())
		require.Equal(t, first.Synthesized(), c.Synthesized())
	}
}

func TestBuildWithCheckpoints(t *testing.T) {
	log := &testutil.ExecutionLog{}
	b := NewBuilder("render", Custom).MaxChildThreads(0)
	b.AddCheckpoint("physics").After("integrate")
	b.AddTask("draw").DependOn("checkpoint.physics").SetExecutor(log.Body("draw"))
	b.AddTask("integrate").SetExecutor(log.Body("integrate"))

	p, err := b.Build(context.Background())
	require.NoError(t, err)
	p.Execute(context.Background())
	assert.Equal(t, []string{"integrate", "draw"}, log.Entries())
	assert.Equal(t, Custom, p.Type())
}

func TestBuildFailsOnResolutionError(t *testing.T) {
	b := NewBuilder("update", Normal)
	b.AddTask("A").DependOn("NoSuchCheckpoint").SetFunc(func() {})

	p, err := b.Build(context.Background())
	assert.Nil(t, p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, flow.ErrUnknownReference))
	assert.ErrorContains(t, err, "pipeline 'update'")
	assert.ErrorContains(t, err, "NoSuchCheckpoint")

	var buildErr *flow.BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, []string{"NoSuchCheckpoint", "A"}, buildErr.Names)
}

func TestBuildFailsOnCycle(t *testing.T) {
	b := NewBuilder("update", Normal)
	b.AddTask("A").DependOn("B").SetFunc(func() {})
	b.AddTask("B").DependOn("C").SetFunc(func() {})
	b.AddTask("C").DependOn("A").SetFunc(func() {})

	_, err := b.BuildCollection(context.Background())
	assert.True(t, errors.Is(err, flow.ErrCycle))
}

type passObserver struct {
	mu     sync.Mutex
	passes int
	tasks  map[string]int
}

func (o *passObserver) ObservePass(time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.passes++
}

func (o *passObserver) ObserveTask(name string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tasks[name]++
}

func TestObserver(t *testing.T) {
	obs := &passObserver{tasks: make(map[string]int)}
	p, err := physicsBuilder(&testutil.ExecutionLog{}).WithObserver(obs).Build(context.Background())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		p.Execute(context.Background())
	}
	assert.Equal(t, 3, obs.passes)
	assert.Equal(t, map[string]int{"Gravity": 3, "Drag": 3, "Integrate": 3}, obs.tasks)
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
		err  bool
	}{
		{"", Normal, false},
		{"normal", Normal, false},
		{"Fixed", Fixed, false},
		{" custom ", Custom, false},
		{"sometimes", Normal, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in)
			if tt.err {
				assert.ErrorContains(t, err, "unknown pipeline type")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, must(ParseType(got.String())))
		})
	}
	assert.Equal(t, "Type(7)", Type(7).String())
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func TestFromConfig(t *testing.T) {
	log := &testutil.ExecutionLog{}
	reg := registry.New()
	reg.RegisterTask("test.log", &registry.RegisteredTask{
		New: func(_ context.Context, taskName string) task.Runnable { return log.Body(taskName) },
	})

	threads := 1
	cfg := &config.Pipeline{
		Name:            "fixed_update",
		Type:            "fixed",
		MaxChildThreads: &threads,
		Checkpoints: []*task.Checkpoint{
			{Name: "forces", After: []task.Ref{task.ParseRef("gravity"), task.ParseRef("drag")}},
		},
		Tasks: []*config.Task{
			{Name: "integrate", Handler: "test.log", DependsOn: []task.Ref{task.ParseRef("checkpoint.forces")}, Writes: []task.ResourceID{"position"}},
			{Name: "gravity", Handler: "test.log", Writes: []task.ResourceID{"velocity"}},
			{Name: "drag", Handler: "test.log", Writes: []task.ResourceID{"velocity"}},
			{Name: "report", Handler: "test.log", Reads: []task.ResourceID{"position"}},
		},
	}

	promReg := prom.NewRegistry()
	exporter, err := metrics.NewExporter("celerity", promReg, metrics.Options{})
	require.NoError(t, err)

	p, err := FromConfig(context.Background(), cfg, reg, Options{ChildThreads: 5, Metrics: exporter})
	require.NoError(t, err)
	assert.Equal(t, Fixed, p.Type())
	assert.Equal(t, 1, p.MaxChildThreads(), "declared value wins over the default")
	assert.Equal(t, []string{"gravity", "drag", "integrate", "report"}, p.Collection().Names())

	p.Execute(context.Background())
	assert.Len(t, log.Entries(), 4)

	n, err := promtestutil.GatherAndCount(promReg, "celerity_pipeline_passes_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, ok := reg.Symbols().Lookup("velocity")
	assert.True(t, ok, "resources are interned in the registry's table")
}

func TestFromConfigErrors(t *testing.T) {
	reg := registry.New()

	_, err := FromConfig(context.Background(), &config.Pipeline{Name: "p", Type: "weird"}, reg, Options{})
	assert.ErrorContains(t, err, "unknown pipeline type")

	_, err = FromConfig(context.Background(), &config.Pipeline{
		Name:  "p",
		Tasks: []*config.Task{{Name: "t", Handler: "missing"}},
	}, reg, Options{})
	assert.ErrorContains(t, err, "pipeline 'p', task 't': task handler 'missing' not registered")
}

func TestFromModel(t *testing.T) {
	reg := registry.New()
	reg.RegisterFunc("noop", "", func() {})

	model := &config.Model{Pipelines: []*config.Pipeline{
		{Name: "update", Tasks: []*config.Task{{Name: "a", Handler: "noop"}}},
		{Name: "tick", Type: "fixed"},
	}}
	ps, err := FromModel(context.Background(), model, reg, Options{ChildThreads: 2})
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "update", ps[0].ID())
	assert.Equal(t, 2, ps[0].MaxChildThreads())
	assert.Equal(t, Fixed, ps[1].Type())
}
