package workflow

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/wjs2063/tripgraph/pkg/llm"
	"github.com/wjs2063/tripgraph/pkg/stategraph"
)

// Plan-and-Execute node IDs.
const (
	NodePlanner   = "planner"
	NodeExecutor  = "executor"
	NodeReplanner = "replanner"
)

// Deps are the capability handles workflow nodes call.
type Deps struct {
	Completer llm.Completer
	Agent     llm.Agent
	Prompts   *Prompts
}

func (d Deps) validate() error {
	switch {
	case d.Completer == nil:
		return fmt.Errorf("workflow: completer is required")
	case d.Agent == nil:
		return fmt.Errorf("workflow: agent is required")
	case d.Prompts == nil:
		return fmt.Errorf("workflow: prompts are required")
	}
	return nil
}

type planExecute struct {
	Deps
}

// NewPlanExecute builds planner -> executor -> replanner, looping back to
// the executor until the replanner produces a response.
func NewPlanExecute(deps Deps) (*stategraph.CompiledGraph[PlanExecuteState, PlanExecuteUpdate], error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	w := &planExecute{Deps: deps}

	return stategraph.NewGraph[PlanExecuteState, PlanExecuteUpdate](mergePlanExecute).
		AddNode(NodePlanner, w.plan).
		AddNode(NodeExecutor, w.execute).
		AddNode(NodeReplanner, w.replan).
		AddEdge(NodePlanner, NodeExecutor).
		AddEdge(NodeExecutor, NodeReplanner).
		AddConditionalEdge(NodeReplanner, routeAfterReplan).
		SetEntry(NodePlanner).
		Compile()
}

func (w *planExecute) plan(ctx stategraph.Context, s PlanExecuteState) (PlanExecuteUpdate, error) {
	msgs, err := w.Prompts.Render(ctx, PromptPlanner, map[string]any{"input": s.Input})
	if err != nil {
		return PlanExecuteUpdate{}, err
	}

	reply, err := llm.CompleteInto[planReply](ctx, w.Completer, llm.Request{Messages: msgs}, "plan")
	if err != nil {
		return PlanExecuteUpdate{}, err
	}

	steps := cleanSteps(reply.Steps)
	if len(steps) == 0 {
		return PlanExecuteUpdate{}, ErrEmptyPlan
	}

	ctx.Logger().Debug("plan created", slog.Int("steps", len(steps)))
	return PlanExecuteUpdate{
		Plan:     stategraph.Some(steps),
		AllPlans: [][]string{steps},
	}, nil
}

func (w *planExecute) execute(ctx stategraph.Context, s PlanExecuteState) (PlanExecuteUpdate, error) {
	if len(s.Plan) == 0 {
		return PlanExecuteUpdate{}, ErrNoPendingStep
	}

	task := s.Plan[0]
	result, err := w.Agent.Run(ctx, task)
	if err != nil {
		return PlanExecuteUpdate{}, err
	}

	return PlanExecuteUpdate{
		PastSteps: []StepResult{{Task: task, Result: result}},
		Plan:      stategraph.Some(slices.Clone(s.Plan[1:])),
	}, nil
}

func (w *planExecute) replan(ctx stategraph.Context, s PlanExecuteState) (PlanExecuteUpdate, error) {
	msgs, err := w.Prompts.Render(ctx, PromptReplanner, map[string]any{
		"input":      s.Input,
		"plan":       s.Plan,
		"past_steps": s.PastSteps,
	})
	if err != nil {
		return PlanExecuteUpdate{}, err
	}

	reply, err := llm.CompleteInto[actReply](ctx, w.Completer, llm.Request{Messages: msgs}, "act")
	if err != nil {
		return PlanExecuteUpdate{}, err
	}
	d, err := reply.decision()
	if err != nil {
		return PlanExecuteUpdate{}, err
	}

	ctx.Logger().Debug("replanned", slog.String("decision", string(d.Kind)))
	if d.Kind == DecisionFinalAnswer {
		return PlanExecuteUpdate{Response: stategraph.Some(d.Response)}, nil
	}
	return PlanExecuteUpdate{
		Plan:     stategraph.Some(d.Steps),
		AllPlans: [][]string{d.Steps},
	}, nil
}

func routeAfterReplan(_ stategraph.Context, s PlanExecuteState) string {
	if s.Response != "" {
		return stategraph.END
	}
	return NodeExecutor
}
