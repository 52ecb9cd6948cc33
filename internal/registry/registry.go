package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/specialistvlad/celerity/internal/ctxlog"
	"github.com/specialistvlad/celerity/internal/task"
)

// Module is the interface that all task modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds all the registered task handlers and the symbol table for a
// single application instance.
type Registry struct {
	handlers map[string]*RegisteredTask
	symbols  *Symbols
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		handlers: make(map[string]*RegisteredTask),
		symbols:  NewSymbols(),
	}
}

// Symbols returns the registry's interning table.
func (r *Registry) Symbols() *Symbols {
	return r.symbols
}

// Handler looks up a registered handler by name.
func (r *Registry) Handler(name string) (*RegisteredTask, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// HandlerNames returns the registered handler names in sorted order.
func (r *Registry) HandlerNames() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewTask instantiates the body of the named handler for the task taskName.
func (r *Registry) NewTask(ctx context.Context, name, taskName string) (task.Runnable, error) {
	h, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("task handler '%s' not registered", name)
	}
	body := h.New(ctx, taskName)
	if body == nil {
		return nil, fmt.Errorf("task handler '%s' returned a nil body", name)
	}
	ctxlog.FromContext(ctx).Debug("Instantiated task handler.", "handler", name, "task", taskName)
	return body, nil
}
