package workflow

import (
	"slices"

	"github.com/wjs2063/tripgraph/pkg/stategraph"
)

// StepResult is one executed plan step and the agent's answer to it.
type StepResult struct {
	Task   string `json:"task"`
	Result string `json:"result"`
}

// PlanExecuteState is the record threaded through a Plan-and-Execute run.
type PlanExecuteState struct {
	Input string `json:"input"`
	// Plan holds the pending steps, consumed from the front.
	Plan []string `json:"plan"`
	// AllPlans logs every plan ever proposed. Nothing reads it back.
	AllPlans  [][]string   `json:"all_plans"`
	PastSteps []StepResult `json:"past_steps"`
	// Response is empty until the run has an answer.
	Response string `json:"response"`
}

// PlanExecuteUpdate is a node's partial update. Unset Optionals leave
// their field alone; slice fields are appended.
type PlanExecuteUpdate struct {
	Plan      stategraph.Optional[[]string]
	AllPlans  [][]string
	PastSteps []StepResult
	Response  stategraph.Optional[string]
}

func mergePlanExecute(s PlanExecuteState, u PlanExecuteUpdate) PlanExecuteState {
	if plan, ok := u.Plan.Get(); ok {
		s.Plan = slices.Clone(plan)
	}
	s.AllPlans = stategraph.AppendOnly(s.AllPlans, u.AllPlans...)
	s.PastSteps = stategraph.AppendOnly(s.PastSteps, u.PastSteps...)
	s.Response = u.Response.Apply(s.Response)
	return s
}

// ReflectionState is the record threaded through a Self-Reflection run.
type ReflectionState struct {
	Input string `json:"input"`
	// SearchQueries is the next research batch; empty means none requested.
	SearchQueries []string `json:"search_queries"`
	// Results gets one "Query: ...\nResult: ..." entry per researched query.
	Results      []string `json:"results"`
	IsSufficient bool     `json:"is_sufficient"`
	Critique     string   `json:"critique"`
	// RetryCount is the number of completed grading cycles.
	RetryCount int    `json:"retry_count"`
	Response   string `json:"response"`
}

// ReflectionUpdate is a node's partial update for a Self-Reflection run.
type ReflectionUpdate struct {
	SearchQueries stategraph.Optional[[]string]
	Results       []string
	IsSufficient  stategraph.Optional[bool]
	Critique      stategraph.Optional[string]
	RetryCount    stategraph.Optional[int]
	Response      stategraph.Optional[string]
}

func mergeReflection(s ReflectionState, u ReflectionUpdate) ReflectionState {
	if queries, ok := u.SearchQueries.Get(); ok {
		s.SearchQueries = slices.Clone(queries)
	}
	s.Results = stategraph.AppendOnly(s.Results, u.Results...)
	s.IsSufficient = u.IsSufficient.Apply(s.IsSufficient)
	s.Critique = u.Critique.Apply(s.Critique)
	// retry_count only moves forward
	if n, ok := u.RetryCount.Get(); ok && n > s.RetryCount {
		s.RetryCount = n
	}
	s.Response = u.Response.Apply(s.Response)
	return s
}
