package dag

import (
	"fmt"
	"strings"
)

// CycleError reports a cycle found in the graph. Path starts and ends with
// the same node, e.g. [a b c a].
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected: %s", strings.Join(e.Path, " -> "))
}

// DetectCycles checks the graph for any cycles. It returns a *CycleError
// naming the first cycle found. Nodes and edges are visited in insertion
// order, so the reported cycle is the same on every call.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	if path := g.findCycle(); path != nil {
		return &CycleError{Path: path}
	}
	return nil
}

// findCycle is a depth-first search with three node colours: done nodes
// are fully visited and not part of a cycle, nodes on the stack belong to the
// current traversal, everything else is unvisited. Callers hold the lock.
func (g *Graph) findCycle() []string {
	done := make([]bool, len(g.order))
	onStack := make([]bool, len(g.order))
	var stack []*node

	var visit func(n *node) []string
	visit = func(n *node) []string {
		if done[n.index] {
			return nil
		}
		if onStack[n.index] {
			// Unwind the stack back to n to report the loop.
			start := len(stack) - 1
			for stack[start] != n {
				start--
			}
			path := make([]string, 0, len(stack)-start+1)
			for _, s := range stack[start:] {
				path = append(path, s.id)
			}
			return append(path, n.id)
		}

		onStack[n.index] = true
		stack = append(stack, n)
		for _, dependent := range sortedNodes(n.dependents) {
			if path := visit(dependent); path != nil {
				return path
			}
		}
		stack = stack[:len(stack)-1]
		onStack[n.index] = false
		done[n.index] = true
		return nil
	}

	for _, n := range g.order {
		if path := visit(n); path != nil {
			return path
		}
	}
	return nil
}
