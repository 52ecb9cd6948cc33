package registry

import (
	"context"
	"sync"
	"testing"

	"github.com/specialistvlad/celerity/internal/config"
	"github.com/specialistvlad/celerity/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterTask(t *testing.T) {
	r := New()
	calls := 0
	r.RegisterFunc("counter", "counts", func() { calls++ })

	h, ok := r.Handler("counter")
	require.True(t, ok)
	assert.Equal(t, "counts", h.Description)

	body, err := r.NewTask(context.Background(), "counter", "count")
	require.NoError(t, err)
	body.Run()
	assert.Equal(t, 1, calls)

	assert.Panics(t, func() { r.RegisterFunc("counter", "again", func() {}) })
	assert.Panics(t, func() { r.RegisterTask("empty", &RegisteredTask{}) })
}

func TestNewTaskUnknown(t *testing.T) {
	r := New()
	_, err := r.NewTask(context.Background(), "missing", "m")
	assert.ErrorContains(t, err, "task handler 'missing' not registered")
}

func TestNewTaskIndependentBodies(t *testing.T) {
	r := New()
	constructed := 0
	r.RegisterTask("fresh", &RegisteredTask{
		New: func(_ context.Context, taskName string) task.Runnable {
			assert.Equal(t, "a", taskName)
			constructed++
			return task.Func(func() {})
		},
	})

	_, err := r.NewTask(context.Background(), "fresh", "a")
	require.NoError(t, err)
	_, err = r.NewTask(context.Background(), "fresh", "a")
	require.NoError(t, err)
	assert.Equal(t, 2, constructed)
}

func TestHandlerNamesSorted(t *testing.T) {
	r := New()
	r.RegisterFunc("b", "", func() {})
	r.RegisterFunc("a", "", func() {})
	assert.Equal(t, []string{"a", "b"}, r.HandlerNames())
}

func TestValidate(t *testing.T) {
	r := New()
	r.RegisterFunc("physics.gravity", "", func() {})

	model := &config.Model{Pipelines: []*config.Pipeline{{
		Name: "update",
		Tasks: []*config.Task{
			{Name: "gravity", Handler: "physics.gravity"},
			{Name: "drag", Handler: "physics.drag", Source: "main.hcl:4"},
			{Name: "orphan"},
		},
	}}}

	err := r.Validate(context.Background(), model)
	require.Error(t, err)
	assert.ErrorContains(t, err, "task 'drag': handler 'physics.drag' is not registered (main.hcl:4)")
	assert.ErrorContains(t, err, "task 'orphan': no handler declared")

	model.Pipelines[0].Tasks = model.Pipelines[0].Tasks[:1]
	assert.NoError(t, r.Validate(context.Background(), model))
}

func TestSymbols(t *testing.T) {
	s := NewSymbols()
	assert.Equal(t, 0, s.Intern("velocity"))
	assert.Equal(t, 1, s.Intern("position"))
	assert.Equal(t, 0, s.Intern("velocity"))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "position", s.Name(1))

	_, ok := s.Lookup("mass")
	assert.False(t, ok)
	assert.Equal(t, 2, s.Len(), "lookup does not intern")
}

func TestSymbolsConcurrentIntern(t *testing.T) {
	s := NewSymbols()
	names := []string{"a", "b", "c", "d"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, n := range names {
				s.Intern(n)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, len(names), s.Len())
	seen := make(map[int]bool)
	for _, n := range names {
		id, ok := s.Lookup(n)
		require.True(t, ok)
		assert.False(t, seen[id], "ids are unique")
		seen[id] = true
	}
}
