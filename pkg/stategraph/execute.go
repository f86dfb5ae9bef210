package stategraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/wjs2063/tripgraph/pkg/stategraph/checkpoint"
	"github.com/wjs2063/tripgraph/pkg/stategraph/observability"
)

// Run executes the graph from its entry point with the given initial state.
//
// Each step invokes the current node, merges its update into the state
// with the graph's Reducer, then resolves the next node from the merged
// state. The run ends when END is reached.
//
// On error, the returned state is the last successfully merged state;
// an update from a failing node is never merged.
//
// Example:
//
//	ctx := stategraph.NewContext(context.Background())
//	final, err := compiled.Run(ctx, initial, stategraph.WithMaxSteps(20))
func (cg *CompiledGraph[S, U]) Run(ctx Context, state S, opts ...RunOption) (result S, runErr error) {
	if ctx == nil {
		return state, ErrNilContext
	}

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ec := asExecutionContext(ctx)
	runID := ec.RunID()
	startTime := time.Now()

	log := observability.NewRunLog(cfg.logger, cfg.graphName, runID)
	log.Started()

	if cfg.tracingEnabled {
		var runSpan trace.Span
		var spanCtx context.Context
		spanCtx, runSpan = cfg.spans.StartRunSpan(ec, cfg.graphName, runID)
		ec = ec.withStd(spanCtx)
		defer func() {
			cfg.spans.EndSpanWithError(runSpan, runErr)
		}()
	}

	var steps int
	result, steps, runErr = cg.loop(ec, state, &cfg, log)

	duration := time.Since(startTime)
	cfg.metrics.RecordGraphRun(ec, cfg.graphName, runErr == nil, duration)

	log.Finished(duration, steps, runErr, lastNodeOf(runErr))

	return result, runErr
}

// loop is the sequential step loop. Returns the final state and the
// number of nodes that completed.
func (cg *CompiledGraph[S, U]) loop(ctx *executionContext, state S, cfg *runConfig, log observability.RunLog) (S, int, error) {
	current := cg.entryPoint
	steps := 0
	sequence := 0

	for current != END {
		if steps >= cfg.maxSteps {
			return state, steps, &RecursionLimitError{
				Limit:      cfg.maxSteps,
				NextNodeID: current,
				State:      state,
			}
		}

		select {
		case <-ctx.Done():
			return state, steps, &CancellationError{
				NodeID: current,
				State:  state,
				Cause:  ctx.Err(),
			}
		default:
		}

		log.NodeStarted(current)

		nodeCtx := ctx
		var nodeSpan trace.Span
		if cfg.tracingEnabled {
			var spanCtx context.Context
			spanCtx, nodeSpan = cfg.spans.StartNodeSpan(ctx, current)
			nodeCtx = ctx.withStd(spanCtx)
		}

		nodeStart := time.Now()
		update, nodeErr := cg.executeNode(nodeCtx, current, state)
		nodeDuration := time.Since(nodeStart)

		cfg.metrics.RecordNodeExecution(nodeCtx, current, nodeDuration, nodeErr)
		if cfg.tracingEnabled {
			cfg.spans.EndSpanWithError(nodeSpan, nodeErr)
		}

		log.NodeFinished(current, nodeDuration, nodeErr)
		if nodeErr != nil {
			return state, steps, nodeErr
		}

		state = cg.reduce(state, update)
		steps++

		next, err := cg.nextNode(ctx, state, current)
		if err != nil {
			return state, steps, err
		}

		if cfg.checkpointStore != nil {
			sequence++
			if err := saveCheckpoint(ctx, cfg, log, current, next, sequence, state); err != nil {
				return state, steps, err
			}
		}

		current = next
	}

	return state, steps, nil
}

// executeNode invokes a single node with panic recovery.
func (cg *CompiledGraph[S, U]) executeNode(ctx *executionContext, nodeID string, state S) (update U, err error) {
	fn, exists := cg.nodes[nodeID]
	if !exists {
		return update, &NodeError{
			NodeID: nodeID,
			Op:     "lookup",
			Err:    fmt.Errorf("node not found: %s", nodeID),
		}
	}

	defer func() {
		if r := recover(); r != nil {
			var zero U
			update = zero
			err = &PanicError{
				NodeID: nodeID,
				Value:  r,
				Stack:  string(debug.Stack()),
			}
		}
	}()

	update, err = fn(ctx.withNodeID(nodeID), state)
	if err != nil {
		return update, &NodeError{
			NodeID: nodeID,
			Op:     "execute",
			Err:    err,
		}
	}

	return update, nil
}

// nextNode resolves the successor of current from the post-merge state.
// A conditional edge wins over simple edges.
func (cg *CompiledGraph[S, U]) nextNode(ctx *executionContext, state S, current string) (string, error) {
	if router, exists := cg.conditionalEdges[current]; exists {
		next := router(ctx.withNodeID(current), state)

		if next == "" {
			return "", &RouterError{
				FromNode: current,
				Returned: next,
				Err:      ErrInvalidRouterResult,
			}
		}

		if next != END && !cg.HasNode(next) {
			return "", &RouterError{
				FromNode: current,
				Returned: next,
				Err:      ErrRouterTargetNotFound,
			}
		}

		return next, nil
	}

	edges := cg.edges[current]
	if len(edges) == 0 {
		return "", &NodeError{
			NodeID: current,
			Op:     "routing",
			Err:    fmt.Errorf("no outgoing edge from node %s", current),
		}
	}

	return edges[0], nil
}

// saveCheckpoint appends an audit snapshot of the merged state.
func saveCheckpoint[S any](ctx *executionContext, cfg *runConfig, log observability.RunLog, nodeID, nextNode string, sequence int, state S) error {
	fail := func(op string, err error) error {
		if cfg.checkpointFailureFatal {
			return &CheckpointError{NodeID: nodeID, Op: op, Err: err}
		}
		log.CheckpointFailed(nodeID, op, err)
		return nil
	}

	stateBytes, err := json.Marshal(state)
	if err != nil {
		return fail("serialize", err)
	}

	data, err := checkpoint.New(ctx.runID, nodeID, sequence, stateBytes, nextNode).Marshal()
	if err != nil {
		return fail("marshal", err)
	}

	if err := cfg.checkpointStore.Append(ctx.runID, nodeID, data); err != nil {
		return fail("append", err)
	}

	log.Checkpointed(nodeID, nextNode, len(data))
	cfg.metrics.RecordCheckpoint(ctx, nodeID, int64(len(data)))
	return nil
}

// asExecutionContext adapts any Context implementation to the executor's
// internal representation.
func asExecutionContext(ctx Context) *executionContext {
	if ec, ok := ctx.(*executionContext); ok {
		return ec
	}
	logger := ctx.Logger()
	if logger == nil {
		logger = slog.Default()
	}
	return &executionContext{
		Context: ctx,
		logger:  logger,
		runID:   ctx.RunID(),
		nodeID:  ctx.NodeID(),
	}
}

// lastNodeOf extracts the node a run stopped at, for logging.
func lastNodeOf(err error) string {
	var (
		nodeErr   *NodeError
		panicErr  *PanicError
		limitErr  *RecursionLimitError
		cancelErr *CancellationError
		routerErr *RouterError
	)
	switch {
	case errors.As(err, &nodeErr):
		return nodeErr.NodeID
	case errors.As(err, &panicErr):
		return panicErr.NodeID
	case errors.As(err, &limitErr):
		return limitErr.NextNodeID
	case errors.As(err, &cancelErr):
		return cancelErr.NodeID
	case errors.As(err, &routerErr):
		return routerErr.FromNode
	}
	return ""
}
