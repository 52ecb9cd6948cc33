package world

import (
	"context"
	"testing"
	"time"

	"github.com/specialistvlad/celerity/internal/pipeline"
	"github.com/specialistvlad/celerity/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func single(t *testing.T, id string, kind pipeline.Type, log *testutil.ExecutionLog) *pipeline.Pipeline {
	t.Helper()
	b := pipeline.NewBuilder(id, kind).MaxChildThreads(0)
	b.AddTask(id + ".task").SetExecutor(log.Body(id))
	p, err := b.Build(context.Background())
	require.NoError(t, err)
	return p
}

func TestFrameFixedAccumulator(t *testing.T) {
	log := &testutil.ExecutionLog{}
	w, err := New([]*pipeline.Pipeline{
		single(t, "update", pipeline.Normal, log),
		single(t, "physics", pipeline.Fixed, log),
	}, 10*time.Millisecond, 4)
	require.NoError(t, err)

	ctx := context.Background()

	stats := w.Frame(ctx, 5*time.Millisecond)
	assert.Equal(t, 0, stats.FixedSteps)
	assert.InDelta(t, 0.5, stats.Alpha, 1e-9)
	assert.Equal(t, []string{"update"}, log.Entries())

	log.Reset()
	stats = w.Frame(ctx, 25*time.Millisecond)
	assert.Equal(t, 3, stats.FixedSteps)
	assert.Equal(t, uint64(2), stats.Frame)
	assert.Equal(t, []string{"physics", "physics", "physics", "update"}, log.Entries(), "fixed steps run before the normal pipeline")
	assert.Zero(t, stats.Dropped)
}

func TestFrameCatchUpLimit(t *testing.T) {
	log := &testutil.ExecutionLog{}
	w, err := New([]*pipeline.Pipeline{single(t, "physics", pipeline.Fixed, log)}, 10*time.Millisecond, 2)
	require.NoError(t, err)

	stats := w.Frame(context.Background(), 55*time.Millisecond)
	assert.Equal(t, 2, stats.FixedSteps)
	assert.Equal(t, 30*time.Millisecond, stats.Dropped)
	assert.InDelta(t, 0.5, stats.Alpha, 1e-9)
	assert.Equal(t, 2, log.Count("physics"))
}

func TestExecuteCustom(t *testing.T) {
	log := &testutil.ExecutionLog{}
	w, err := New([]*pipeline.Pipeline{
		single(t, "update", pipeline.Normal, log),
		single(t, "reload", pipeline.Custom, log),
	}, 0, 0)
	require.NoError(t, err)

	w.Frame(context.Background(), time.Millisecond)
	assert.Equal(t, 0, log.Count("reload"), "custom pipelines never run on their own")

	require.NoError(t, w.ExecuteCustom(context.Background(), "reload"))
	assert.Equal(t, 1, log.Count("reload"))

	assert.ErrorContains(t, w.ExecuteCustom(context.Background(), "update"), "no custom pipeline 'update'")

	p, ok := w.Pipeline("update")
	require.True(t, ok)
	assert.Equal(t, pipeline.Normal, p.Type())
}

func TestNewValidation(t *testing.T) {
	log := &testutil.ExecutionLog{}
	_, err := New([]*pipeline.Pipeline{single(t, "physics", pipeline.Fixed, log)}, 0, 0)
	assert.ErrorContains(t, err, "fixed step must be positive")

	_, err = New([]*pipeline.Pipeline{
		single(t, "a", pipeline.Normal, log),
		single(t, "a", pipeline.Custom, log),
	}, time.Millisecond, 0)
	assert.ErrorContains(t, err, "duplicate pipeline 'a'")
}

func TestRun(t *testing.T) {
	log := &testutil.ExecutionLog{}
	w, err := New([]*pipeline.Pipeline{single(t, "update", pipeline.Normal, log)}, 0, 0)
	require.NoError(t, err)

	require.NoError(t, w.Run(context.Background(), time.Millisecond, 3))
	assert.Equal(t, 3, log.Count("update"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Run(ctx, time.Hour, 0), context.Canceled)
}
