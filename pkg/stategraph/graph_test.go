package stategraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewGraph(t *testing.T) {
	graph := newCounterGraph()
	assert.NotNil(t, graph.nodes)
	assert.NotNil(t, graph.edges)
	assert.NotNil(t, graph.conditionalEdges)
	assert.Empty(t, graph.entryPoint)
}

func TestNewGraph_NilReducer_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "stategraph: reducer cannot be nil", func() {
		NewGraph[Counter, Counter](nil)
	})
}

// TestGraph_AddNode_Chaining tests fluent API chaining.
func TestGraph_AddNode_Chaining(t *testing.T) {
	graph := newCounterGraph()
	assert.Same(t, graph, graph.AddNode("a", increment))
	assert.Same(t, graph, graph.AddEdge("a", END))
	assert.Same(t, graph, graph.SetEntry("a"))
	assert.Contains(t, graph.nodes, "a")
}

func TestGraph_AddNode_EmptyID_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "stategraph: node ID cannot be empty", func() {
		newCounterGraph().AddNode("", increment)
	})
}

func TestGraph_AddNode_ReservedID_Panics(t *testing.T) {
	for _, id := range []string{"END", "end", "End", "__end__", "__END__"} {
		t.Run(id, func(t *testing.T) {
			assert.PanicsWithValue(t, "stategraph: node ID cannot be reserved word 'END'", func() {
				newCounterGraph().AddNode(id, increment)
			})
		})
	}
}

func TestGraph_AddNode_WhitespaceID_Panics(t *testing.T) {
	testCases := []struct {
		name string
		id   string
	}{
		{"space", "node a"},
		{"tab", "node\ta"},
		{"newline", "node\na"},
		{"trailing space", "node "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.PanicsWithValue(t, "stategraph: node ID cannot contain whitespace", func() {
				newCounterGraph().AddNode(tc.id, increment)
			})
		})
	}
}

func TestGraph_AddNode_NilFunc_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "stategraph: node function cannot be nil", func() {
		newCounterGraph().AddNode("a", nil)
	})
}

func TestGraph_AddNode_DuplicateID_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "stategraph: duplicate node ID: a", func() {
		newCounterGraph().
			AddNode("a", increment).
			AddNode("a", increment)
	})
}

func TestGraph_AddConditionalEdge_NilRouter_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "stategraph: router function cannot be nil", func() {
		newCounterGraph().AddConditionalEdge("check", nil)
	})
}

func TestGraph_SetEntry_CanBeOverwritten(t *testing.T) {
	graph := newCounterGraph().
		SetEntry("first").
		SetEntry("second")

	assert.Equal(t, "second", graph.entryPoint)
}
