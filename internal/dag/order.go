package dag

import "container/heap"

// TopologicalOrder returns every node such that each node appears after all
// of its dependencies. Among nodes that are ready at the same time the one
// added first wins, so the order is fully determined by the graph and its
// insertion order. A cyclic graph yields a *CycleError.
func (g *Graph) TopologicalOrder() ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	pending := make([]int, len(g.order))
	ready := &indexHeap{}
	for _, n := range g.order {
		pending[n.index] = len(n.deps)
		if pending[n.index] == 0 {
			*ready = append(*ready, n.index)
		}
	}
	heap.Init(ready)

	out := make([]string, 0, len(g.order))
	for ready.Len() > 0 {
		n := g.order[heap.Pop(ready).(int)]
		out = append(out, n.id)
		for _, dependent := range n.dependents {
			pending[dependent.index]--
			if pending[dependent.index] == 0 {
				heap.Push(ready, dependent.index)
			}
		}
	}

	if len(out) != len(g.order) {
		return nil, &CycleError{Path: g.findCycle()}
	}
	return out, nil
}

// indexHeap is a min-heap of insertion indices.
type indexHeap []int

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *indexHeap) Push(x any) { *h = append(*h, x.(int)) }

func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
