package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/celerity/internal/task"
)

// RegisteredTask holds the compiled Go part of a task declared in a pipeline file.
type RegisteredTask struct {
	// Description is shown by the CLI when describing a pipeline.
	Description string
	// New creates the task body for the task named taskName. It is called
	// once per declared task, so a handler referenced by several tasks gets
	// independent bodies.
	New func(ctx context.Context, taskName string) task.Runnable
}

// RegisterTask registers a Go task body factory under name.
func (r *Registry) RegisterTask(name string, handler *RegisteredTask) {
	if _, exists := r.handlers[name]; exists {
		panic(fmt.Sprintf("task handler with name '%s' already registered", name))
	}
	if handler == nil || handler.New == nil {
		panic(fmt.Sprintf("task handler '%s' has no constructor", name))
	}
	slog.Debug("Registering task handler.", "name", name)
	r.handlers[name] = handler
}

// RegisterFunc is a shorthand for handlers whose body is a single shared function.
func (r *Registry) RegisterFunc(name, description string, fn func()) {
	r.RegisterTask(name, &RegisteredTask{
		Description: description,
		New:         func(context.Context, string) task.Runnable { return task.Func(fn) },
	})
}
