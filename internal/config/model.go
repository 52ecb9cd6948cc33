package config

import "github.com/specialistvlad/celerity/internal/task"

// Model is the unified, format-agnostic representation of every pipeline
// declared in the loaded configuration, in declaration order.
type Model struct {
	Pipelines []*Pipeline
}

// Pipeline returns the declared pipeline with the given name.
func (m *Model) Pipeline(name string) (*Pipeline, bool) {
	for _, p := range m.Pipelines {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Pipeline is the format-agnostic representation of a `pipeline` block.
type Pipeline struct {
	Name string
	// Type is the raw update-rate tag ("normal", "fixed" or "custom").
	Type string
	// MaxChildThreads is nil when the declaration leaves it to the application default.
	MaxChildThreads *int
	Checkpoints     []*task.Checkpoint
	Tasks           []*Task
	// Source is a human-readable location of the declaration.
	Source string
}

// Task is the format-agnostic representation of a `task` block.
type Task struct {
	Name string
	// Handler names the registered Go body.
	Handler      string
	DependsOn    []task.Ref
	DependencyOf []task.Ref
	Reads        []task.ResourceID
	Writes       []task.ResourceID
	Source       string
}
