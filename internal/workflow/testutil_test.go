package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wjs2063/tripgraph/pkg/llm"
	"github.com/wjs2063/tripgraph/pkg/stategraph"
)

func testPrompts(t *testing.T) *Prompts {
	t.Helper()
	p, err := DefaultPrompts("English")
	require.NoError(t, err)
	return p
}

func testDeps(t *testing.T, c *llm.ScriptedCompleter, a *llm.ScriptedAgent) Deps {
	t.Helper()
	return Deps{Completer: c, Agent: a, Prompts: testPrompts(t)}
}

func testCtx() stategraph.Context {
	return stategraph.NewContext(context.Background())
}

// lastUserMessage returns the final message content of a recorded request.
func lastUserMessage(req llm.Request) string {
	if len(req.Messages) == 0 {
		return ""
	}
	return req.Messages[len(req.Messages)-1].Content
}
