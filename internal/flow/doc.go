// Package flow resolves task and checkpoint declarations into a
// collection.Collection.
//
// Resolution happens in stages:
//
//  1. Declarations are registered as graph nodes in declaration order and
//     their DependOn/MakeDependencyOf and checkpoint After/Before references
//     become edges. Unknown references, duplicate names and cycles fail here.
//  2. The transitive closure of that explicit graph is computed as one bitset
//     row per node.
//  3. Task pairs are visited in declaration order. A pair that the graph does
//     not order yet and whose resource accesses conflict gets an edge from the
//     earlier task to the later one, and the closure is updated on the spot.
//     Because an edge is only added between unordered tasks, inferred edges
//     can never close a cycle.
//  4. Tasks are linearized by a topological sort that prefers the earliest
//     declared ready node. Each task's dependants are the tasks reachable
//     through checkpoints alone, minus those already implied by another
//     dependant.
//
// All failures are returned as *BuildError before anything executes.
package flow
