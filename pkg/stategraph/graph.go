package stategraph

import (
	"fmt"
	"strings"
	"sync"
)

// Graph is a mutable builder for a state graph.
// Use NewGraph to create one, then chain AddNode, AddEdge,
// AddConditionalEdge and SetEntry calls to define the workflow.
//
// Graph is NOT thread-safe during building. Build it on one goroutine,
// then call Compile() to get an immutable CompiledGraph that can be shared.
//
// Example:
//
//	graph := stategraph.NewGraph[PlanState, PlanUpdate](mergePlan).
//	    AddNode("planner", planner).
//	    AddNode("executor", executor).
//	    AddEdge("planner", "executor").
//	    AddConditionalEdge("executor", route).
//	    SetEntry("planner")
//
//	compiled, err := graph.Compile()
type Graph[S, U any] struct {
	mu               sync.RWMutex
	reduce           Reducer[S, U]
	nodes            map[string]NodeFunc[S, U]
	edges            map[string][]string
	conditionalEdges map[string]RouterFunc[S]
	entryPoint       string
}

// NewGraph creates a graph builder for state type S and update type U.
// reduce merges every node's update into the state.
//
// Panics if reduce is nil.
func NewGraph[S, U any](reduce Reducer[S, U]) *Graph[S, U] {
	if reduce == nil {
		panic("stategraph: reducer cannot be nil")
	}
	return &Graph[S, U]{
		reduce:           reduce,
		nodes:            make(map[string]NodeFunc[S, U]),
		edges:            make(map[string][]string),
		conditionalEdges: make(map[string]RouterFunc[S]),
	}
}

// AddNode adds a named node to the graph.
//
// Panics if:
//   - id is empty
//   - id is the reserved word "END" or "__end__" (case-insensitive)
//   - id contains whitespace (space, tab, newline)
//   - fn is nil
//   - id already exists in the graph
func (g *Graph[S, U]) AddNode(id string, fn NodeFunc[S, U]) *Graph[S, U] {
	if id == "" {
		panic("stategraph: node ID cannot be empty")
	}

	idLower := strings.ToLower(id)
	if idLower == "end" || idLower == END {
		panic("stategraph: node ID cannot be reserved word 'END'")
	}

	if strings.ContainsAny(id, " \t\n\r") {
		panic("stategraph: node ID cannot contain whitespace")
	}

	if fn == nil {
		panic("stategraph: node function cannot be nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[id]; exists {
		panic(fmt.Sprintf("stategraph: duplicate node ID: %s", id))
	}

	g.nodes[id] = fn
	return g
}

// AddEdge adds an unconditional edge from one node to another.
// The target can be a node ID or END.
//
// Edge validation happens at Compile() time, so edges can be added
// in any order.
func (g *Graph[S, U]) AddEdge(from, to string) *Graph[S, U] {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.edges[from] = append(g.edges[from], to)
	return g
}

// AddConditionalEdge adds a conditional edge where router picks the
// next node at runtime from the post-merge state.
//
// A node can have either a simple edge or a conditional edge. If both
// are present, the conditional edge takes precedence.
func (g *Graph[S, U]) AddConditionalEdge(from string, router RouterFunc[S]) *Graph[S, U] {
	if router == nil {
		panic("stategraph: router function cannot be nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.conditionalEdges[from] = router
	return g
}

// SetEntry designates the entry point node.
func (g *Graph[S, U]) SetEntry(id string) *Graph[S, U] {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.entryPoint = id
	return g
}
