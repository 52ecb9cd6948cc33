// Package task defines the declarations the scheduler consumes: task
// descriptors with their dependency references, resource accesses and
// executable bodies, and the checkpoints tasks are ordered against.
package task

import (
	"fmt"
	"reflect"
	"strings"
)

// Runnable is the executable body of a task. Run must not block on I/O and
// must not panic; unrecoverable conditions go through the critical reporter.
type Runnable interface {
	Run()
}

// Func adapts an ordinary function to the Runnable interface.
type Func func()

// Run calls f.
func (f Func) Run() { f() }

// AccessMode is the way a task touches a resource.
type AccessMode int

const (
	// Read declares shared, read-only access.
	Read AccessMode = iota
	// Write declares exclusive access.
	Write
)

func (m AccessMode) String() string {
	switch m {
	case Read:
		return "read"
	case Write:
		return "write"
	default:
		return fmt.Sprintf("AccessMode(%d)", int(m))
	}
}

// ResourceID identifies a logical storage, typically "all objects of type X".
type ResourceID string

// ResourceOf returns the resource handle for the Go type T.
func ResourceOf[T any]() ResourceID {
	return ResourceID(reflect.TypeFor[T]().String())
}

// ResourceAccess is one declared access of a task.
type ResourceAccess struct {
	Resource ResourceID
	Mode     AccessMode
}

// Conflicts reports whether two accesses on the same resource cannot run
// concurrently. Read/read is the only compatible pair.
func (a ResourceAccess) Conflicts(b ResourceAccess) bool {
	return a.Resource == b.Resource && (a.Mode == Write || b.Mode == Write)
}

// NodeKind distinguishes the two kinds of graph nodes.
type NodeKind int

const (
	// KindAny matches either a task or a checkpoint.
	KindAny NodeKind = iota
	// KindTask is an executable task.
	KindTask
	// KindCheckpoint is a structural synchronization point.
	KindCheckpoint
)

func (k NodeKind) String() string {
	switch k {
	case KindTask:
		return "task"
	case KindCheckpoint:
		return "checkpoint"
	default:
		return "node"
	}
}

// Ref is a reference from one declaration to another node, optionally
// qualified by kind.
type Ref struct {
	Kind NodeKind
	Name string
}

// ParseRef parses "name", "task.name" or "checkpoint.name".
func ParseRef(s string) Ref {
	if name, ok := strings.CutPrefix(s, "task."); ok {
		return Ref{Kind: KindTask, Name: name}
	}
	if name, ok := strings.CutPrefix(s, "checkpoint."); ok {
		return Ref{Kind: KindCheckpoint, Name: name}
	}
	return Ref{Kind: KindAny, Name: s}
}

func (r Ref) String() string {
	if r.Kind == KindAny {
		return r.Name
	}
	return r.Kind.String() + "." + r.Name
}

// Descriptor is the immutable description of one task.
type Descriptor struct {
	Name string
	// DependsOn lists nodes that must complete before this task starts.
	DependsOn []Ref
	// DependencyOf lists nodes that may only start after this task completes.
	DependencyOf []Ref
	Accesses     []ResourceAccess
	Body         Runnable
}

// Checkpoint is a declaration of a named synchronization point and,
// optionally, its position relative to other nodes.
type Checkpoint struct {
	Name   string
	After  []Ref
	Before []Ref
}

// HasPosition reports whether the declaration places the checkpoint in the graph.
func (c *Checkpoint) HasPosition() bool {
	return len(c.After) > 0 || len(c.Before) > 0
}

// SamePosition reports whether two declarations place the checkpoint identically.
func (c *Checkpoint) SamePosition(o *Checkpoint) bool {
	return sameRefSet(c.After, o.After) && sameRefSet(c.Before, o.Before)
}

func sameRefSet(a, b []Ref) bool {
	set := make(map[Ref]struct{}, len(a))
	for _, r := range a {
		set[r] = struct{}{}
	}
	other := make(map[Ref]struct{}, len(b))
	for _, r := range b {
		if _, ok := set[r]; !ok {
			return false
		}
		other[r] = struct{}{}
	}
	return len(set) == len(other)
}
