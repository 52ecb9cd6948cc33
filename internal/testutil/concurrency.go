package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/specialistvlad/celerity/internal/registry"
	"github.com/specialistvlad/celerity/internal/task"
)

// SleeperHandler is the handler name registered by MockSleeperModule.
const SleeperHandler = "test.sleep"

// MockSleeperModule is a shared, self-contained module for concurrency tests.
// It records the execution interval of each task that uses it.
type MockSleeperModule struct {
	executionTimes map[string]ExecutionRecord
	mu             sync.Mutex
	sleepDuration  time.Duration
}

// NewMockSleeperModule creates a new sleeper module for testing.
func NewMockSleeperModule(sleep time.Duration) *MockSleeperModule {
	return &MockSleeperModule{
		executionTimes: make(map[string]ExecutionRecord),
		sleepDuration:  sleep,
	}
}

// Body returns a task body that sleeps and records its interval under name.
func (m *MockSleeperModule) Body(name string) task.Runnable {
	return task.Func(func() {
		startTime := time.Now()
		time.Sleep(m.sleepDuration)
		endTime := time.Now()

		m.mu.Lock()
		m.executionTimes[name] = ExecutionRecord{Start: startTime, End: endTime}
		m.mu.Unlock()
	})
}

// Record returns the last recorded interval of name.
func (m *MockSleeperModule) Record(name string) (ExecutionRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.executionTimes[name]
	return r, ok
}

// Register registers the sleeper handler.
func (m *MockSleeperModule) Register(r *registry.Registry) {
	r.RegisterTask(SleeperHandler, &registry.RegisteredTask{
		Description: "sleeps and records its execution interval",
		New: func(_ context.Context, taskName string) task.Runnable {
			return m.Body(taskName)
		},
	})
}

// Gate is a task body that blocks until released. It lets tests hold a pass open.
type Gate struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

// NewGate creates a closed gate.
func NewGate() *Gate {
	return &Gate{entered: make(chan struct{}), release: make(chan struct{})}
}

// Run signals entry and blocks until Release.
func (g *Gate) Run() {
	g.once.Do(func() { close(g.entered) })
	<-g.release
}

// Entered is closed once Run has started.
func (g *Gate) Entered() <-chan struct{} {
	return g.entered
}

// Release lets Run return.
func (g *Gate) Release() {
	close(g.release)
}
