package testutil

import (
	"context"
	"sync"

	"github.com/specialistvlad/celerity/internal/registry"
	"github.com/specialistvlad/celerity/internal/task"
)

// ExecutionLog records task names in the order their bodies ran.
type ExecutionLog struct {
	mu      sync.Mutex
	entries []string
}

// Record appends name to the log.
func (l *ExecutionLog) Record(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, name)
}

// Body returns a task body that records name.
func (l *ExecutionLog) Body(name string) task.Runnable {
	return task.Func(func() { l.Record(name) })
}

// Entries returns a copy of the log.
func (l *ExecutionLog) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

// Count returns how many times name was recorded.
func (l *ExecutionLog) Count(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e == name {
			n++
		}
	}
	return n
}

// Position returns the index of the first entry for name at or after from, or -1.
func (l *ExecutionLog) Position(name string, from int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := from; i < len(l.entries); i++ {
		if l.entries[i] == name {
			return i
		}
	}
	return -1
}

// Reset clears the log.
func (l *ExecutionLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// LogHandler is the handler name registered by ExecutionLog.
const LogHandler = "test.log"

// Register registers a handler whose bodies record their task name in l.
func (l *ExecutionLog) Register(r *registry.Registry) {
	r.RegisterTask(LogHandler, &registry.RegisteredTask{
		Description: "records the task name in an execution log",
		New: func(_ context.Context, taskName string) task.Runnable {
			return l.Body(taskName)
		},
	})
}
