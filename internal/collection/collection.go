// Package collection holds the finalized, read-only form of a resolved task
// graph: tasks in a topological order, each with the indices of the tasks
// that may only start after it completes.
package collection

import (
	"fmt"

	"github.com/specialistvlad/celerity/internal/task"
)

// Item is one task of a Collection.
type Item struct {
	Name string
	Body task.Runnable
	// Dependants are indices of later items that wait for this one. Sorted ascending.
	Dependants []int
	// DependencyCount is the number of items listing this one as a dependant.
	DependencyCount int
}

// Edge is an ordering the resolver added because two tasks declared
// conflicting access to Resource.
type Edge struct {
	From     string
	To       string
	Resource task.ResourceID
}

// Collection is immutable after New and safe to share between goroutines.
type Collection struct {
	items       []Item
	index       map[string]int
	roots       []int
	synthesized []Edge
}

// New validates items and finalizes them into a Collection. Every dependant
// index must point at a strictly later item, which also rules out cycles.
// DependencyCount is computed here; any value set by the caller is ignored.
func New(items []Item, synthesized []Edge) (*Collection, error) {
	c := &Collection{
		items:       make([]Item, len(items)),
		index:       make(map[string]int, len(items)),
		synthesized: append([]Edge(nil), synthesized...),
	}

	for i, it := range items {
		if _, dup := c.index[it.Name]; dup {
			return nil, fmt.Errorf("collection: duplicate item %q", it.Name)
		}
		if it.Body == nil {
			return nil, fmt.Errorf("collection: item %q has no body", it.Name)
		}
		c.index[it.Name] = i
		c.items[i] = Item{Name: it.Name, Body: it.Body, Dependants: append([]int(nil), it.Dependants...)}
	}

	for i := range c.items {
		seen := make(map[int]struct{}, len(c.items[i].Dependants))
		for _, d := range c.items[i].Dependants {
			if d <= i || d >= len(c.items) {
				return nil, fmt.Errorf("collection: item %q lists invalid dependant index %d", c.items[i].Name, d)
			}
			if _, dup := seen[d]; dup {
				return nil, fmt.Errorf("collection: item %q lists dependant %d twice", c.items[i].Name, d)
			}
			seen[d] = struct{}{}
			c.items[d].DependencyCount++
		}
	}

	for i := range c.items {
		if c.items[i].DependencyCount == 0 {
			c.roots = append(c.roots, i)
		}
	}
	return c, nil
}

// Len returns the number of tasks.
func (c *Collection) Len() int {
	return len(c.items)
}

// At returns the i-th item. The item must not be modified.
func (c *Collection) At(i int) *Item {
	return &c.items[i]
}

// Index returns the position of the named task.
func (c *Collection) Index(name string) (int, bool) {
	i, ok := c.index[name]
	return i, ok
}

// Names returns the task names in collection order.
func (c *Collection) Names() []string {
	names := make([]string, len(c.items))
	for i := range c.items {
		names[i] = c.items[i].Name
	}
	return names
}

// Roots returns the indices of tasks that are ready at the start of a pass.
func (c *Collection) Roots() []int {
	return append([]int(nil), c.roots...)
}

// Synthesized returns the edges the resolver inferred from resource conflicts.
func (c *Collection) Synthesized() []Edge {
	return append([]Edge(nil), c.synthesized...)
}

// DependsOn reports whether task b transitively waits for task a.
func (c *Collection) DependsOn(b, a string) bool {
	ia, ok := c.index[a]
	if !ok {
		return false
	}
	ib, ok := c.index[b]
	if !ok || ib <= ia {
		return false
	}
	visited := make([]bool, len(c.items))
	stack := []int{ia}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range c.items[i].Dependants {
			if d == ib {
				return true
			}
			if d < ib && !visited[d] {
				visited[d] = true
				stack = append(stack, d)
			}
		}
	}
	return false
}
