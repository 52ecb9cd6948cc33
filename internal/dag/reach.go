package dag

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// Reachability is the transitive closure of a graph, one bit row per node:
// bit j of row i is set when node j can be reached from node i through at
// least one edge. Rows are indexed by insertion index.
//
// A Reachability is a snapshot. Link keeps it closed under new edges without
// touching the graph it was computed from.
type Reachability struct {
	ids   []string
	index map[string]int
	rows  []*bitset.BitSet
}

// Reachability computes the transitive closure of the graph. It fails with a
// *CycleError if the graph is cyclic.
func (g *Graph) Reachability() (*Reachability, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	g.mutex.RLock()
	defer g.mutex.RUnlock()

	size := uint(len(g.order))
	r := &Reachability{
		ids:   make([]string, len(g.order)),
		index: make(map[string]int, len(g.order)),
		rows:  make([]*bitset.BitSet, len(g.order)),
	}
	for _, n := range g.order {
		r.ids[n.index] = n.id
		r.index[n.id] = n.index
		r.rows[n.index] = bitset.New(size)
	}

	// Reverse topological order: every dependent row is final before it is merged.
	for i := len(order) - 1; i >= 0; i-- {
		n := g.nodes[order[i]]
		row := r.rows[n.index]
		for _, dependent := range n.dependents {
			row.Set(uint(dependent.index))
			row.InPlaceUnion(r.rows[dependent.index])
		}
	}
	return r, nil
}

// Len returns the number of nodes covered.
func (r *Reachability) Len() int {
	return len(r.rows)
}

// Reaches reports whether to is reachable from from. Unknown ids are never reachable.
func (r *Reachability) Reaches(from, to string) bool {
	i, ok := r.index[from]
	if !ok {
		return false
	}
	j, ok := r.index[to]
	if !ok {
		return false
	}
	return r.ReachesIndex(i, j)
}

// ReachesIndex is Reaches by insertion index.
func (r *Reachability) ReachesIndex(from, to int) bool {
	return r.rows[from].Test(uint(to))
}

// Ordered reports whether a path exists between a and b in either direction.
func (r *Reachability) Ordered(a, b string) bool {
	return r.Reaches(a, b) || r.Reaches(b, a)
}

// Link records the edge from -> to and updates every affected row so the
// relation stays transitively closed. Linking would close a cycle when to
// already reaches from; that is reported as an error and nothing changes.
func (r *Reachability) Link(from, to string) error {
	u, ok := r.index[from]
	if !ok {
		return fmt.Errorf("source node not found: %s", from)
	}
	v, ok := r.index[to]
	if !ok {
		return fmt.Errorf("destination node not found: %s", to)
	}
	if u == v || r.rows[v].Test(uint(u)) {
		return &CycleError{Path: []string{from, to, from}}
	}

	for x, row := range r.rows {
		if x == u || row.Test(uint(u)) {
			row.Set(uint(v))
			row.InPlaceUnion(r.rows[v])
		}
	}
	return nil
}

// Descendants returns every node reachable from id, in insertion order.
func (r *Reachability) Descendants(id string) []string {
	i, ok := r.index[id]
	if !ok {
		return nil
	}
	row := r.rows[i]
	out := make([]string, 0, row.Count())
	for j, ok := row.NextSet(0); ok; j, ok = row.NextSet(j + 1) {
		out = append(out, r.ids[j])
	}
	return out
}
