package stategraph

import (
	"context"
)

// Counter is a whole-state graph: nodes return the next state.
type Counter struct {
	Value int
}

func newCounterGraph() *Graph[Counter, Counter] {
	return NewGraph[Counter, Counter](Replace[Counter])
}

func increment(ctx Context, s Counter) (Counter, error) {
	s.Value++
	return s, nil
}

// State is a partial-update graph state with one append-only field.
type State struct {
	Progress []string `json:"progress"`
	Count    int      `json:"count"`
	GoLeft   bool     `json:"go_left"`
	Done     bool     `json:"done"`
	Output   string   `json:"output"`
}

type Update struct {
	Progress []string
	Count    Optional[int]
	Done     Optional[bool]
	Output   Optional[string]
}

func mergeState(s State, u Update) State {
	s.Progress = AppendOnly(s.Progress, u.Progress...)
	s.Count = u.Count.Apply(s.Count)
	s.Done = u.Done.Apply(s.Done)
	s.Output = u.Output.Apply(s.Output)
	return s
}

func newStateGraph() *Graph[State, Update] {
	return NewGraph[State, Update](mergeState)
}

func noop(ctx Context, s State) (Update, error) {
	return Update{}, nil
}

// makeTrackingNode creates a node that records its execution.
func makeTrackingNode(name string, tracker *[]string) NodeFunc[State, Update] {
	return func(ctx Context, s State) (Update, error) {
		*tracker = append(*tracker, name)
		return Update{Progress: []string{name}}, nil
	}
}

// makeFailingNode creates a node that returns an update together with err.
func makeFailingNode(err error) NodeFunc[State, Update] {
	return func(ctx Context, s State) (Update, error) {
		return Update{Progress: []string{"failed"}, Output: Some("partial")}, err
	}
}

func makePanicNode(value any) NodeFunc[State, Update] {
	return func(ctx Context, s State) (Update, error) {
		panic(value)
	}
}

func countNode(ctx Context, s State) (Update, error) {
	return Update{Count: Some(s.Count + 1)}, nil
}

func testCtx() Context {
	return NewContext(context.Background())
}
