package stategraph

import (
	"maps"
	"slices"
)

// CompiledGraph is an immutable, executable graph.
// It is created by calling Compile() on a Graph builder.
//
// CompiledGraph is safe for concurrent Run() calls; runs share no
// mutable state.
type CompiledGraph[S, U any] struct {
	reduce           Reducer[S, U]
	nodes            map[string]NodeFunc[S, U]
	edges            map[string][]string
	conditionalEdges map[string]RouterFunc[S]
	entryPoint       string
	predecessors     map[string][]string
}

// EntryPoint returns the entry node ID.
func (cg *CompiledGraph[S, U]) EntryPoint() string {
	return cg.entryPoint
}

// NodeIDs returns all node identifiers in sorted order.
func (cg *CompiledGraph[S, U]) NodeIDs() []string {
	return slices.Sorted(maps.Keys(cg.nodes))
}

// HasNode checks if a node exists in the graph.
func (cg *CompiledGraph[S, U]) HasNode(id string) bool {
	_, exists := cg.nodes[id]
	return exists
}

// Successors returns the targets of the node's simple edges.
// Conditional targets are decided at runtime and are not included.
func (cg *CompiledGraph[S, U]) Successors(id string) []string {
	if id == END {
		return nil
	}
	return cg.edges[id]
}

// Predecessors returns the node IDs that have simple edges to the given node.
func (cg *CompiledGraph[S, U]) Predecessors(id string) []string {
	return cg.predecessors[id]
}

// IsConditional returns true if the node has a conditional edge.
func (cg *CompiledGraph[S, U]) IsConditional(id string) bool {
	_, exists := cg.conditionalEdges[id]
	return exists
}
