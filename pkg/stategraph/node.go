package stategraph

// END is the terminal node identifier.
// Use this as an edge target to indicate the graph should terminate.
const END = "__end__"

// NodeFunc is the signature for all node functions.
// Nodes receive the execution context and a read-only view of the current
// state, and return a partial update that the graph's Reducer merges into
// the state. A node never mutates the state it receives.
//
// Example:
//
//	func plan(ctx stategraph.Context, s PlanState) (PlanUpdate, error) {
//	    return PlanUpdate{Plan: stategraph.Some(steps)}, nil
//	}
type NodeFunc[S, U any] func(ctx Context, state S) (U, error)

// RouterFunc determines the next node based on the post-merge state.
// It is used for conditional edges where the next node depends on runtime state.
//
// The router should return a valid node ID or stategraph.END.
// Returning an empty string or an unknown node ID will cause a runtime error.
type RouterFunc[S any] func(ctx Context, state S) string

// Reducer merges a node's partial update into the current state and
// returns the new state. It must be a pure function: the same inputs
// always produce the same state, and the input state is left untouched.
type Reducer[S, U any] func(state S, update U) S

// Replace is a Reducer for graphs whose nodes return the whole next state.
func Replace[S any](_ S, update S) S {
	return update
}
