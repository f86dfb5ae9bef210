package stategraph

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph building and compilation.
var (
	// ErrNoEntryPoint indicates SetEntry() was not called before Compile().
	ErrNoEntryPoint = errors.New("entry point not set")

	// ErrEntryNotFound indicates the entry point references a non-existent node.
	ErrEntryNotFound = errors.New("entry point node not found")

	// ErrNodeNotFound indicates an edge references a non-existent node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoPathToEnd indicates no path exists from the entry point to END.
	ErrNoPathToEnd = errors.New("no path to END from entry")

	// ErrAmbiguousEdge indicates a node without a router has several outgoing edges.
	ErrAmbiguousEdge = errors.New("multiple unconditional edges")
)

// Sentinel errors for execution.
var (
	// ErrRecursionLimit indicates the run hit its step bound before reaching END.
	ErrRecursionLimit = errors.New("recursion limit exceeded")

	// ErrNilContext indicates Run() was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrInvalidRouterResult indicates a router function returned an empty string.
	ErrInvalidRouterResult = errors.New("router returned empty string")

	// ErrRouterTargetNotFound indicates a router function returned an unknown node ID.
	ErrRouterTargetNotFound = errors.New("router returned unknown node")
)

// CheckpointError wraps errors from audit checkpoint writes.
type CheckpointError struct {
	// NodeID is the node whose snapshot failed.
	NodeID string
	// Op is the operation that failed ("serialize", "marshal", "append").
	Op string
	// Err is the underlying error.
	Err error
}

func (e *CheckpointError) Error() string {
	return fmt.Sprintf("checkpoint %s at node %s: %v", e.Op, e.NodeID, e.Err)
}

func (e *CheckpointError) Unwrap() error {
	return e.Err
}

// NodeError wraps an error with node context.
// The original error stays reachable through errors.Is and errors.As.
type NodeError struct {
	// NodeID is the identifier of the node that failed.
	NodeID string
	// Op is the operation that failed (e.g., "execute").
	Op string
	// Err is the underlying error from the node.
	Err error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %s: %v", e.NodeID, e.Op, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// PanicError captures panic information from node execution.
type PanicError struct {
	// NodeID is the identifier of the node that panicked.
	NodeID string
	// Value is the value passed to panic().
	Value any
	// Stack is the full stack trace at the point of panic.
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("node %s panicked: %v", e.NodeID, e.Value)
}

// CancellationError captures the state when execution was cancelled.
type CancellationError struct {
	// NodeID is the node that was about to execute.
	NodeID string
	// State is the last merged state (type-assert to the graph's state type).
	State any
	// Cause is context.Canceled or context.DeadlineExceeded.
	Cause error
}

func (e *CancellationError) Error() string {
	return fmt.Sprintf("cancelled before node %s: %v", e.NodeID, e.Cause)
}

func (e *CancellationError) Unwrap() error {
	return e.Cause
}

// RouterError wraps errors from conditional edge routing.
type RouterError struct {
	// FromNode is the node with the conditional edge.
	FromNode string
	// Returned is the value the router returned.
	Returned string
	// Err is the underlying error.
	Err error
}

func (e *RouterError) Error() string {
	return fmt.Sprintf("router from %s returned %q: %v", e.FromNode, e.Returned, e.Err)
}

func (e *RouterError) Unwrap() error {
	return e.Err
}

// RecursionLimitError reports a run that would have exceeded its step
// bound. The node named by NextNodeID was never invoked.
type RecursionLimitError struct {
	// Limit is the configured step bound.
	Limit int
	// NextNodeID is the node that would have executed next.
	NextNodeID string
	// State is the state after the last executed node.
	State any
}

func (e *RecursionLimitError) Error() string {
	return fmt.Sprintf("recursion limit of %d reached without hitting END (next node %s)", e.Limit, e.NextNodeID)
}

// Unwrap returns ErrRecursionLimit for errors.Is support.
func (e *RecursionLimitError) Unwrap() error {
	return ErrRecursionLimit
}
