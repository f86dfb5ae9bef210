package stategraph

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRun_LinearFlow tests basic linear execution.
func TestRun_LinearFlow(t *testing.T) {
	compiled, err := newCounterGraph().
		AddNode("inc1", increment).
		AddNode("inc2", increment).
		AddNode("inc3", increment).
		AddEdge("inc1", "inc2").
		AddEdge("inc2", "inc3").
		AddEdge("inc3", END).
		SetEntry("inc1").
		Compile()
	require.NoError(t, err)

	result, err := compiled.Run(testCtx(), Counter{Value: 0})

	require.NoError(t, err)
	assert.Equal(t, 3, result.Value)
}

// TestRun_UpdatesAreMerged verifies append-only and replace fields merge
// through the reducer.
func TestRun_UpdatesAreMerged(t *testing.T) {
	var executed []string

	compiled, err := newStateGraph().
		AddNode("a", makeTrackingNode("a", &executed)).
		AddNode("b", makeTrackingNode("b", &executed)).
		AddNode("count", countNode).
		AddEdge("a", "b").
		AddEdge("b", "count").
		AddEdge("count", END).
		SetEntry("a").
		Compile()
	require.NoError(t, err)

	result, err := compiled.Run(testCtx(), State{Progress: []string{"seed"}, Output: "kept"})

	require.NoError(t, err)
	assert.Equal(t, []string{"seed", "a", "b"}, result.Progress)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, "kept", result.Output)
	assert.Equal(t, []string{"a", "b"}, executed)
}

// TestRun_NodeSeesMergedState verifies each node reads the state left by
// its predecessor.
func TestRun_NodeSeesMergedState(t *testing.T) {
	var seen []int

	observe := func(ctx Context, s State) (Update, error) {
		seen = append(seen, s.Count)
		return Update{Count: Some(s.Count + 10)}, nil
	}

	compiled, err := newStateGraph().
		AddNode("first", observe).
		AddNode("second", observe).
		AddEdge("first", "second").
		AddEdge("second", END).
		SetEntry("first").
		Compile()
	require.NoError(t, err)

	result, err := compiled.Run(testCtx(), State{Count: 1})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 11}, seen)
	assert.Equal(t, 21, result.Count)
}

// TestRun_RouterSeesPostMergeState verifies routing happens after merge.
func TestRun_RouterSeesPostMergeState(t *testing.T) {
	var executed []string

	finish := func(ctx Context, s State) (Update, error) {
		return Update{Done: Some(true)}, nil
	}
	router := func(ctx Context, s State) string {
		if s.Done {
			return "after"
		}
		return END
	}

	compiled, err := newStateGraph().
		AddNode("finish", finish).
		AddNode("after", makeTrackingNode("after", &executed)).
		AddConditionalEdge("finish", router).
		AddEdge("after", END).
		SetEntry("finish").
		Compile()
	require.NoError(t, err)

	_, err = compiled.Run(testCtx(), State{})

	require.NoError(t, err)
	assert.Equal(t, []string{"after"}, executed)
}

func TestRun_ConditionalEdge(t *testing.T) {
	router := func(ctx Context, s State) string {
		if s.GoLeft {
			return "left"
		}
		return "right"
	}

	for _, tc := range []struct {
		name   string
		goLeft bool
		want   []string
	}{
		{"left", true, []string{"start", "left"}},
		{"right", false, []string{"start", "right"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var executed []string
			compiled, err := newStateGraph().
				AddNode("start", makeTrackingNode("start", &executed)).
				AddNode("left", makeTrackingNode("left", &executed)).
				AddNode("right", makeTrackingNode("right", &executed)).
				AddConditionalEdge("start", router).
				AddEdge("left", END).
				AddEdge("right", END).
				SetEntry("start").
				Compile()
			require.NoError(t, err)

			_, err = compiled.Run(testCtx(), State{GoLeft: tc.goLeft})

			require.NoError(t, err)
			assert.Equal(t, tc.want, executed)
		})
	}
}

// TestRun_Loop tests looping behavior with conditional exit.
func TestRun_Loop(t *testing.T) {
	router := func(ctx Context, s State) string {
		if s.Count >= 3 {
			return END
		}
		return "loop"
	}

	compiled, err := newStateGraph().
		AddNode("loop", countNode).
		AddConditionalEdge("loop", router).
		SetEntry("loop").
		Compile()
	require.NoError(t, err)

	result, err := compiled.Run(testCtx(), State{})

	require.NoError(t, err)
	assert.Equal(t, 3, result.Count)
}

// TestRun_NodeError_UpdateNotMerged verifies a failing node leaves no trace
// in the state.
func TestRun_NodeError_UpdateNotMerged(t *testing.T) {
	var executed []string
	errBoom := errors.New("boom")

	compiled, err := newStateGraph().
		AddNode("ok", makeTrackingNode("ok", &executed)).
		AddNode("fail", makeFailingNode(errBoom)).
		AddEdge("ok", "fail").
		AddEdge("fail", END).
		SetEntry("ok").
		Compile()
	require.NoError(t, err)

	result, err := compiled.Run(testCtx(), State{})

	require.Error(t, err)
	var nodeErr *NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, "fail", nodeErr.NodeID)
	assert.Equal(t, "execute", nodeErr.Op)
	assert.ErrorIs(t, err, errBoom)

	assert.Equal(t, []string{"ok"}, result.Progress)
	assert.Empty(t, result.Output)
}

func TestRun_PanicRecovery(t *testing.T) {
	compiled, err := newStateGraph().
		AddNode("panic", makePanicNode("unexpected error")).
		AddEdge("panic", END).
		SetEntry("panic").
		Compile()
	require.NoError(t, err)

	result, err := compiled.Run(testCtx(), State{Count: 4})

	var panicErr *PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "panic", panicErr.NodeID)
	assert.Equal(t, "unexpected error", panicErr.Value)
	assert.Contains(t, panicErr.Stack, "makePanicNode")
	assert.Equal(t, 4, result.Count)
}

// TestRun_CancellationBetweenNodes tests cancellation is checked between nodes.
func TestRun_CancellationBetweenNodes(t *testing.T) {
	var executed []string
	ctx, cancel := context.WithCancel(context.Background())

	cancelAfterFirst := func(ctx Context, s State) (Update, error) {
		executed = append(executed, "first")
		cancel()
		return Update{Progress: []string{"first"}}, nil
	}

	compiled, err := newStateGraph().
		AddNode("first", cancelAfterFirst).
		AddNode("second", makeTrackingNode("second", &executed)).
		AddEdge("first", "second").
		AddEdge("second", END).
		SetEntry("first").
		Compile()
	require.NoError(t, err)

	result, err := compiled.Run(NewContext(ctx), State{})

	assert.ErrorIs(t, err, context.Canceled)
	var cancelErr *CancellationError
	require.ErrorAs(t, err, &cancelErr)
	assert.Equal(t, "second", cancelErr.NodeID)
	assert.Equal(t, []string{"first"}, executed)
	assert.Equal(t, []string{"first"}, result.Progress)
}

// TestRun_NodeHonorsDeadline verifies a node sees the run's deadline.
func TestRun_NodeHonorsDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	waitNode := func(ctx Context, s State) (Update, error) {
		select {
		case <-ctx.Done():
			return Update{}, ctx.Err()
		case <-time.After(time.Second):
			return Update{}, nil
		}
	}

	compiled, err := newStateGraph().
		AddNode("wait", waitNode).
		AddEdge("wait", END).
		SetEntry("wait").
		Compile()
	require.NoError(t, err)

	_, err = compiled.Run(NewContext(ctx), State{})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestRun_RecursionLimit_ExactlyNSteps verifies N nodes run and the
// attempt to run node N+1 fails.
func TestRun_RecursionLimit_ExactlyNSteps(t *testing.T) {
	calls := 0
	loopNode := func(ctx Context, s State) (Update, error) {
		calls++
		return Update{Count: Some(s.Count + 1)}, nil
	}

	compiled, err := newStateGraph().
		AddNode("loop", loopNode).
		AddConditionalEdge("loop", func(Context, State) string { return "loop" }).
		SetEntry("loop").
		Compile()
	require.NoError(t, err)

	result, err := compiled.Run(testCtx(), State{}, WithMaxSteps(10))

	require.ErrorIs(t, err, ErrRecursionLimit)
	var limitErr *RecursionLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 10, limitErr.Limit)
	assert.Equal(t, "loop", limitErr.NextNodeID)
	assert.Equal(t, 10, calls)
	assert.Equal(t, 10, result.Count)
	assert.Equal(t, 10, limitErr.State.(State).Count)
}

// TestRun_RecursionLimit_EndOnLastStep verifies reaching END on the final
// allowed step is a success.
func TestRun_RecursionLimit_EndOnLastStep(t *testing.T) {
	compiled, err := newCounterGraph().
		AddNode("a", increment).
		AddNode("b", increment).
		AddEdge("a", "b").
		AddEdge("b", END).
		SetEntry("a").
		Compile()
	require.NoError(t, err)

	result, err := compiled.Run(testCtx(), Counter{}, WithMaxSteps(2))

	require.NoError(t, err)
	assert.Equal(t, 2, result.Value)

	_, err = compiled.Run(testCtx(), Counter{}, WithMaxSteps(1))
	assert.ErrorIs(t, err, ErrRecursionLimit)
}

func TestRun_NilContext_Error(t *testing.T) {
	compiled, err := newCounterGraph().
		AddNode("a", increment).
		AddEdge("a", END).
		SetEntry("a").
		Compile()
	require.NoError(t, err)

	_, err = compiled.Run(nil, Counter{})

	assert.ErrorIs(t, err, ErrNilContext)
}

func TestRun_RouterReturnsEmpty_Error(t *testing.T) {
	compiled, err := newStateGraph().
		AddNode("route", noop).
		AddConditionalEdge("route", func(Context, State) string { return "" }).
		SetEntry("route").
		Compile()
	require.NoError(t, err)

	_, err = compiled.Run(testCtx(), State{})

	var routerErr *RouterError
	require.ErrorAs(t, err, &routerErr)
	assert.Equal(t, "route", routerErr.FromNode)
	assert.ErrorIs(t, err, ErrInvalidRouterResult)
}

func TestRun_RouterReturnsUnknown_Error(t *testing.T) {
	compiled, err := newStateGraph().
		AddNode("route", noop).
		AddConditionalEdge("route", func(Context, State) string { return "nonexistent" }).
		SetEntry("route").
		Compile()
	require.NoError(t, err)

	_, err = compiled.Run(testCtx(), State{})

	var routerErr *RouterError
	require.ErrorAs(t, err, &routerErr)
	assert.Equal(t, "nonexistent", routerErr.Returned)
	assert.ErrorIs(t, err, ErrRouterTargetNotFound)
}

// TestRun_ContextPropagated tests run and node metadata reach nodes.
func TestRun_ContextPropagated(t *testing.T) {
	var captured Context

	capture := func(ctx Context, s State) (Update, error) {
		captured = ctx
		return Update{}, nil
	}

	compiled, err := newStateGraph().
		AddNode("capture", capture).
		AddEdge("capture", END).
		SetEntry("capture").
		Compile()
	require.NoError(t, err)

	_, err = compiled.Run(NewContext(context.Background(), WithRunID("test-123")), State{})

	require.NoError(t, err)
	assert.Equal(t, "test-123", captured.RunID())
	assert.Equal(t, "capture", captured.NodeID())
	assert.NotNil(t, captured.Logger())
}

// TestRun_InitialStateNotMutated tests the caller's state is untouched.
func TestRun_InitialStateNotMutated(t *testing.T) {
	var executed []string

	compiled, err := newStateGraph().
		AddNode("a", makeTrackingNode("a", &executed)).
		AddEdge("a", END).
		SetEntry("a").
		Compile()
	require.NoError(t, err)

	progress := make([]string, 1, 4)
	progress[0] = "seed"
	initial := State{Progress: progress}

	result, err := compiled.Run(testCtx(), initial)

	require.NoError(t, err)
	assert.Equal(t, []string{"seed", "a"}, result.Progress)
	assert.Equal(t, []string{"seed"}, initial.Progress)
	assert.Empty(t, progress[:2][1])
}

// TestRun_ConcurrentRunsAreIsolated runs one compiled graph from many
// goroutines.
func TestRun_ConcurrentRunsAreIsolated(t *testing.T) {
	router := func(ctx Context, s State) string {
		if s.Count >= 5 {
			return END
		}
		return "loop"
	}

	compiled, err := newStateGraph().
		AddNode("loop", countNode).
		AddConditionalEdge("loop", router).
		SetEntry("loop").
		Compile()
	require.NoError(t, err)

	const runs = 20
	var wg sync.WaitGroup
	results := make([]State, runs)
	errs := make([]error, runs)
	wg.Add(runs)
	for i := 0; i < runs; i++ {
		go func() {
			defer wg.Done()
			results[i], errs[i] = compiled.Run(testCtx(), State{})
		}()
	}
	wg.Wait()

	for i := 0; i < runs; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 5, results[i].Count)
	}
}

// customContext is a Context implementation outside this package.
type customContext struct {
	context.Context
}

func (customContext) Logger() *slog.Logger { return nil }
func (customContext) RunID() string        { return "custom-run" }
func (customContext) NodeID() string       { return "" }

func TestRun_ForeignContextImplementation(t *testing.T) {
	var runID string
	capture := func(ctx Context, s State) (Update, error) {
		runID = ctx.RunID()
		return Update{}, nil
	}

	compiled, err := newStateGraph().
		AddNode("capture", capture).
		AddEdge("capture", END).
		SetEntry("capture").
		Compile()
	require.NoError(t, err)

	_, err = compiled.Run(customContext{context.Background()}, State{})

	require.NoError(t, err)
	assert.Equal(t, "custom-run", runID)
}

func TestContext_DefaultValues(t *testing.T) {
	ctx := NewContext(context.Background())

	assert.NotNil(t, ctx.Logger())
	assert.NotEmpty(t, ctx.RunID())
	assert.Empty(t, ctx.NodeID())
}

func TestContext_ValuesFromParent(t *testing.T) {
	type keyType string
	key := keyType("custom")

	ctx := NewContext(context.WithValue(context.Background(), key, "value"))

	assert.Equal(t, "value", ctx.Value(key))
}
