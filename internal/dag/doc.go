// Package dag is a small directed-graph toolkit used by the dependency
// resolver. Nodes are identified by string ids and remember the order in
// which they were added; every query that returns several nodes returns them
// in that order, so graph algorithms built on top are deterministic.
//
// Besides edge bookkeeping the package offers cycle detection with a witness
// path, a topological order that breaks ties by insertion order, and a
// bitset-backed reachability relation that can be extended edge by edge.
package dag
