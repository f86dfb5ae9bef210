package stategraph

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Context provides execution context to nodes and routers.
// It extends context.Context with run metadata and a logger.
//
// Context is immutable. The executor derives a per-node context with
// NodeID set and the logger enriched with run_id and node_id.
type Context interface {
	context.Context

	// Logger never returns nil; it defaults to slog.Default().
	Logger() *slog.Logger

	// RunID identifies this run. Auto-generated if not configured.
	RunID() string

	// NodeID is the node currently executing, empty outside a node.
	NodeID() string
}

type executionContext struct {
	context.Context

	logger *slog.Logger
	runID  string
	nodeID string
}

func (c *executionContext) Logger() *slog.Logger { return c.logger }

func (c *executionContext) RunID() string { return c.runID }

func (c *executionContext) NodeID() string { return c.nodeID }

// ContextOption configures a Context.
type ContextOption func(*executionContext)

// WithLogger sets the logger handed to nodes.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *executionContext) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRunID sets the run identifier. A UUID is generated when unset.
// The run ID keys log lines, spans and audit checkpoints.
func WithRunID(id string) ContextOption {
	return func(c *executionContext) {
		if id != "" {
			c.runID = id
		}
	}
}

// NewContext creates an execution context from a standard context.
//
// Example:
//
//	ctx := stategraph.NewContext(context.Background(),
//	    stategraph.WithLogger(logger),
//	    stategraph.WithRunID("run-123"))
func NewContext(ctx context.Context, opts ...ContextOption) Context {
	ec := &executionContext{
		Context: ctx,
		logger:  slog.Default(),
		runID:   uuid.NewString(),
	}

	for _, opt := range opts {
		opt(ec)
	}

	return ec
}

// withNodeID derives the context handed to a single node invocation.
func (c *executionContext) withNodeID(nodeID string) *executionContext {
	return &executionContext{
		Context: c.Context,
		logger:  c.logger.With("run_id", c.runID, "node_id", nodeID),
		runID:   c.runID,
		nodeID:  nodeID,
	}
}

// withStd returns a copy bound to a different standard context, used to
// carry tracing spans into nodes.
func (c *executionContext) withStd(std context.Context) *executionContext {
	cp := *c
	cp.Context = std
	return &cp
}
