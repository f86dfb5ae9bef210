// Package stategraph is a small state-machine engine for LLM workflows.
//
// A workflow is data: a set of named nodes, unconditional edges,
// conditional edges driven by router functions, and an entry point.
// Running a compiled graph threads a single state value through the
// nodes strictly one at a time.
//
// # State and updates
//
// Nodes never mutate state. Each node returns a partial update of type U
// and the graph's Reducer merges it into the state S:
//
//	type State struct {
//	    Plan  []string
//	    Steps []string
//	}
//
//	type Update struct {
//	    Plan  stategraph.Optional[[]string] // replace when set
//	    Steps []string                      // appended
//	}
//
//	func merge(s State, u Update) State {
//	    s.Plan = u.Plan.Apply(s.Plan)
//	    s.Steps = stategraph.AppendOnly(s.Steps, u.Steps...)
//	    return s
//	}
//
// Routers see the merged state, never the raw update.
//
// # Bounds
//
// Every run is bounded by WithMaxSteps. A run that would invoke one node
// more than allowed stops with a *RecursionLimitError, which matches
// ErrRecursionLimit under errors.Is. Workflows that need their own loop
// caps encode them in their routers.
//
// # Errors
//
// Node failures come back wrapped in *NodeError, panics as *PanicError,
// context cancellation as *CancellationError, bad router output as
// *RouterError. The state returned alongside an error is the last
// successfully merged state.
//
// # Observability
//
// Logging, OpenTelemetry metrics and tracing are opt-in per run via
// WithObservabilityLogger, WithMetrics and WithTracing. WithCheckpointing
// records an append-only audit trail of post-node snapshots.
package stategraph
