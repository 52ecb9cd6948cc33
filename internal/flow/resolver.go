package flow

import (
	"context"
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/specialistvlad/celerity/internal/collection"
	"github.com/specialistvlad/celerity/internal/ctxlog"
	"github.com/specialistvlad/celerity/internal/dag"
	"github.com/specialistvlad/celerity/internal/registry"
	"github.com/specialistvlad/celerity/internal/task"
)

// Declaration is either a task or a checkpoint, in the order the builder saw it.
type Declaration struct {
	Task       *task.Descriptor
	Checkpoint *task.Checkpoint
}

// TaskDecl wraps a task descriptor.
func TaskDecl(d *task.Descriptor) Declaration { return Declaration{Task: d} }

// CheckpointDecl wraps a checkpoint declaration.
func CheckpointDecl(c *task.Checkpoint) Declaration { return Declaration{Checkpoint: c} }

// Resolver turns declarations into collections. Resource ids are interned in
// the shared symbol table so bit positions are stable across pipelines.
type Resolver struct {
	symbols *registry.Symbols
}

// New creates a resolver. A nil table gets a private one.
func New(symbols *registry.Symbols) *Resolver {
	if symbols == nil {
		symbols = registry.NewSymbols()
	}
	return &Resolver{symbols: symbols}
}

// nodeInfo is one task or checkpoint; its position in resolution.nodes is
// also its dag insertion index.
type nodeInfo struct {
	name       string
	kind       task.NodeKind
	task       *task.Descriptor
	checkpoint *task.Checkpoint
}

// resolution is the working state of a single Resolve call.
type resolution struct {
	symbols *registry.Symbols
	nodes   []*nodeInfo
	byName  map[string]*nodeInfo
	tasks   []*nodeInfo

	graph *dag.Graph
	reach *dag.Reachability

	// writes and access (reads plus writes) are indexed like tasks.
	writes []*bitset.BitSet
	access []*bitset.BitSet

	synthesized []collection.Edge
}

// Resolve builds the collection for decls. See the package documentation
// for the algorithm.
func (r *Resolver) Resolve(ctx context.Context, decls []Declaration) (*collection.Collection, error) {
	logger := ctxlog.FromContext(ctx)

	s := &resolution{
		symbols: r.symbols,
		byName:  make(map[string]*nodeInfo, len(decls)),
		graph:   dag.New(),
	}
	if err := s.register(decls); err != nil {
		return nil, err
	}
	if err := s.link(); err != nil {
		return nil, err
	}

	reach, err := s.graph.Reachability()
	if err != nil {
		return nil, fromGraphError(err)
	}
	s.reach = reach

	s.indexResources()
	if err := s.inferConflicts(ctx); err != nil {
		return nil, err
	}

	// Inferred edges only join unordered tasks; this guards that invariant.
	if err := s.graph.DetectCycles(); err != nil {
		return nil, fromGraphError(err)
	}

	c, err := s.linearize()
	if err != nil {
		return nil, err
	}
	logger.Debug("Resolved task graph.",
		"tasks", len(s.tasks),
		"checkpoints", len(s.nodes)-len(s.tasks),
		"conflictEdges", len(s.synthesized),
	)
	return c, nil
}

// register creates one node per distinct name, in declaration order.
func (s *resolution) register(decls []Declaration) error {
	for _, d := range decls {
		switch {
		case d.Task != nil:
			if err := s.registerTask(d.Task); err != nil {
				return err
			}
		case d.Checkpoint != nil:
			if err := s.registerCheckpoint(d.Checkpoint); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *resolution) registerTask(d *task.Descriptor) error {
	if d.Name == "" {
		return buildErrorf(ErrEmptyName, nil, "task declared without a name")
	}
	if prev, ok := s.byName[d.Name]; ok {
		return buildErrorf(ErrDuplicateName, []string{d.Name}, "task %q collides with an earlier %s of the same name", d.Name, prev.kind)
	}
	if d.Body == nil {
		return buildErrorf(ErrMissingBody, []string{d.Name}, "task %q has no executor", d.Name)
	}
	s.addNode(&nodeInfo{name: d.Name, kind: task.KindTask, task: d})
	return nil
}

// registerCheckpoint accepts repeated declarations of a checkpoint as long
// as they do not place it differently.
func (s *resolution) registerCheckpoint(c *task.Checkpoint) error {
	if c.Name == "" {
		return buildErrorf(ErrEmptyName, nil, "checkpoint declared without a name")
	}
	prev, ok := s.byName[c.Name]
	if !ok {
		s.addNode(&nodeInfo{name: c.Name, kind: task.KindCheckpoint, checkpoint: c})
		return nil
	}
	if prev.kind != task.KindCheckpoint {
		return buildErrorf(ErrDuplicateName, []string{c.Name}, "checkpoint %q collides with an earlier task of the same name", c.Name)
	}
	if !c.HasPosition() {
		return nil
	}
	if prev.checkpoint.HasPosition() && !prev.checkpoint.SamePosition(c) {
		return buildErrorf(ErrConflictingCheckpoint, []string{c.Name}, "checkpoint %q is declared twice with different positions", c.Name)
	}
	prev.checkpoint = c
	return nil
}

func (s *resolution) addNode(n *nodeInfo) {
	s.nodes = append(s.nodes, n)
	s.byName[n.name] = n
	if n.kind == task.KindTask {
		s.tasks = append(s.tasks, n)
	}
	s.graph.AddNode(n.name)
}

// link turns every reference into an edge pointing from the node that runs
// first to the node that waits.
func (s *resolution) link() error {
	for _, n := range s.nodes {
		var before, after []task.Ref
		if n.kind == task.KindTask {
			before, after = n.task.DependsOn, n.task.DependencyOf
		} else {
			before, after = n.checkpoint.After, n.checkpoint.Before
		}

		for _, ref := range before {
			dep, err := s.lookup(n, ref)
			if err != nil {
				return err
			}
			if err := s.edge(dep, n); err != nil {
				return err
			}
		}
		for _, ref := range after {
			dep, err := s.lookup(n, ref)
			if err != nil {
				return err
			}
			if err := s.edge(n, dep); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *resolution) lookup(owner *nodeInfo, ref task.Ref) (*nodeInfo, error) {
	n, ok := s.byName[ref.Name]
	if !ok || (ref.Kind != task.KindAny && ref.Kind != n.kind) {
		return nil, buildErrorf(ErrUnknownReference, []string{ref.Name, owner.name},
			"%s %q references unknown %s %q", owner.kind, owner.name, ref.Kind, ref.Name)
	}
	return n, nil
}

func (s *resolution) edge(from, to *nodeInfo) error {
	if from == to {
		return cycleError([]string{from.name, to.name})
	}
	return s.graph.AddEdge(from.name, to.name)
}

// indexResources interns every resource and builds the per-task bitsets.
func (s *resolution) indexResources() {
	s.writes = make([]*bitset.BitSet, len(s.tasks))
	s.access = make([]*bitset.BitSet, len(s.tasks))
	for _, t := range s.tasks {
		for _, a := range t.task.Accesses {
			s.symbols.Intern(string(a.Resource))
		}
	}

	size := uint(s.symbols.Len())
	for i, t := range s.tasks {
		s.writes[i] = bitset.New(size)
		s.access[i] = bitset.New(size)
		for _, a := range t.task.Accesses {
			id := uint(s.symbols.Intern(string(a.Resource)))
			s.access[i].Set(id)
			if a.Mode == task.Write {
				s.writes[i].Set(id)
			}
		}
	}
}

// conflict reports whether tasks i and j cannot run concurrently, and the
// lowest-id resource they fight over.
func (s *resolution) conflict(i, j int) (task.ResourceID, bool) {
	if s.writes[i].IntersectionCardinality(s.access[j]) == 0 &&
		s.writes[j].IntersectionCardinality(s.access[i]) == 0 {
		return "", false
	}
	shared := s.writes[i].Intersection(s.access[j])
	shared.InPlaceUnion(s.writes[j].Intersection(s.access[i]))
	id, _ := shared.NextSet(0)
	return task.ResourceID(s.symbols.Name(int(id))), true
}

// inferConflicts orders every unordered conflicting pair, earlier
// declaration first.
func (s *resolution) inferConflicts(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	for i := range s.tasks {
		for j := i + 1; j < len(s.tasks); j++ {
			a, b := s.tasks[i].name, s.tasks[j].name
			if s.reach.Ordered(a, b) {
				continue
			}
			res, ok := s.conflict(i, j)
			if !ok {
				continue
			}
			if err := s.reach.Link(a, b); err != nil {
				return fromGraphError(err)
			}
			if err := s.graph.AddEdge(a, b); err != nil {
				return err
			}
			s.synthesized = append(s.synthesized, collection.Edge{From: a, To: b, Resource: res})
			logger.Debug("Ordered conflicting tasks.", "first", a, "then", b, "resource", res)
		}
	}
	return nil
}

// linearize produces the collection from the final graph.
func (s *resolution) linearize() (*collection.Collection, error) {
	order, err := s.graph.TopologicalOrder()
	if err != nil {
		return nil, fromGraphError(err)
	}

	position := make(map[string]int, len(s.tasks))
	for _, id := range order {
		if s.byName[id].kind == task.KindTask {
			position[id] = len(position)
		}
	}

	items := make([]collection.Item, len(s.tasks))
	for _, id := range order {
		n := s.byName[id]
		if n.kind != task.KindTask {
			continue
		}
		successors := s.reduce(s.taskSuccessors(id))
		dependants := make([]int, len(successors))
		for k, succ := range successors {
			dependants[k] = position[succ]
		}
		sort.Ints(dependants)
		items[position[id]] = collection.Item{Name: id, Body: n.task.Body, Dependants: dependants}
	}
	return collection.New(items, s.synthesized)
}

// taskSuccessors returns the tasks reachable from id through checkpoint
// nodes only.
func (s *resolution) taskSuccessors(id string) []string {
	seen := make(map[string]bool)
	var out []string
	queue, _ := s.graph.Dependents(id)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true
		if s.byName[next].kind == task.KindTask {
			out = append(out, next)
			continue
		}
		more, _ := s.graph.Dependents(next)
		queue = append(queue, more...)
	}
	return out
}

// reduce drops successors already implied by another successor.
func (s *resolution) reduce(successors []string) []string {
	out := successors[:0:0]
	for _, a := range successors {
		implied := false
		for _, b := range successors {
			if a != b && s.reach.Reaches(b, a) {
				implied = true
				break
			}
		}
		if !implied {
			out = append(out, a)
		}
	}
	return out
}
