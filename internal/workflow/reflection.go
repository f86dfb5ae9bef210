package workflow

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/wjs2063/tripgraph/pkg/llm"
	"github.com/wjs2063/tripgraph/pkg/stategraph"
)

// Self-Reflection node IDs.
const (
	NodeResearcher = "researcher"
	NodeGrader     = "grader"
	NodeGenerator  = "generator"
)

// MaxReflectionCycles caps grading cycles. It is independent of the
// engine step bound and cannot be configured.
const MaxReflectionCycles = 3

type reflection struct {
	Deps
}

// NewReflection builds researcher -> grader, looping back to the
// researcher until the grader is satisfied or MaxReflectionCycles is
// reached, then generator -> END.
func NewReflection(deps Deps) (*stategraph.CompiledGraph[ReflectionState, ReflectionUpdate], error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	w := &reflection{Deps: deps}

	return stategraph.NewGraph[ReflectionState, ReflectionUpdate](mergeReflection).
		AddNode(NodeResearcher, w.research).
		AddNode(NodeGrader, w.grade).
		AddNode(NodeGenerator, w.generate).
		AddEdge(NodeResearcher, NodeGrader).
		AddConditionalEdge(NodeGrader, routeAfterGrade).
		AddEdge(NodeGenerator, stategraph.END).
		SetEntry(NodeResearcher).
		Compile()
}

func (w *reflection) research(ctx stategraph.Context, s ReflectionState) (ReflectionUpdate, error) {
	queries := s.SearchQueries
	if len(queries) == 0 {
		queries = []string{s.Input}
	}

	results := make([]string, 0, len(queries))
	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return ReflectionUpdate{}, err
		}

		task, err := w.Prompts.RenderText(ctx, PromptResearcher, map[string]any{"query": q})
		if err != nil {
			return ReflectionUpdate{}, err
		}
		answer, err := w.Agent.Run(ctx, task)
		if err != nil {
			return ReflectionUpdate{}, err
		}
		results = append(results, fmt.Sprintf("Query: %s\nResult: %s", q, answer))
	}

	ctx.Logger().Debug("research finished", slog.Int("queries", len(queries)))
	return ReflectionUpdate{
		Results:       results,
		SearchQueries: stategraph.Some([]string{}),
	}, nil
}

func (w *reflection) grade(ctx stategraph.Context, s ReflectionState) (ReflectionUpdate, error) {
	msgs, err := w.Prompts.Render(ctx, PromptGrader, map[string]any{
		"input":   s.Input,
		"results": s.Results,
	})
	if err != nil {
		return ReflectionUpdate{}, err
	}

	reply, err := llm.CompleteInto[gradeReply](ctx, w.Completer, llm.Request{Messages: msgs}, "grade")
	if err != nil {
		return ReflectionUpdate{}, err
	}

	next := cleanSteps(reply.NextQueries)
	ctx.Logger().Debug("graded",
		slog.Bool("sufficient", reply.IsSufficient),
		slog.Int("cycle", s.RetryCount+1),
		slog.Int("next_queries", len(next)),
	)
	return ReflectionUpdate{
		IsSufficient:  stategraph.Some(reply.IsSufficient),
		Critique:      stategraph.Some(reply.Critique),
		SearchQueries: stategraph.Some(next),
		RetryCount:    stategraph.Some(s.RetryCount + 1),
	}, nil
}

func (w *reflection) generate(ctx stategraph.Context, s ReflectionState) (ReflectionUpdate, error) {
	msgs, err := w.Prompts.Render(ctx, PromptGenerator, map[string]any{
		"input":    s.Input,
		"results":  s.Results,
		"critique": s.Critique,
	})
	if err != nil {
		return ReflectionUpdate{}, err
	}

	resp, err := w.Completer.Complete(ctx, llm.Request{Messages: msgs})
	if err != nil {
		return ReflectionUpdate{}, err
	}
	answer := strings.TrimSpace(resp.Content)
	if answer == "" {
		return ReflectionUpdate{}, ErrEmptyAnswer
	}
	return ReflectionUpdate{Response: stategraph.Some(answer)}, nil
}

func routeAfterGrade(_ stategraph.Context, s ReflectionState) string {
	if s.IsSufficient || s.RetryCount >= MaxReflectionCycles {
		return NodeGenerator
	}
	return NodeResearcher
}
