package workflow

import (
	"fmt"
	"strings"

	"github.com/wjs2063/tripgraph/pkg/llm"
)

// DecisionKind tags what the replanner decided.
type DecisionKind string

const (
	DecisionPlan        DecisionKind = "plan"
	DecisionFinalAnswer DecisionKind = "final_answer"
)

// Decision is the replanner's verdict: either a revised plan (Steps) or
// a final answer (Response), selected by Kind.
type Decision struct {
	Kind     DecisionKind
	Steps    []string
	Response string
}

// planReply is the structured planner reply.
type planReply struct {
	Steps []string `json:"steps"`
}

// actReply is the structured replanner reply.
type actReply struct {
	Action actChoice `json:"action"`
}

type actChoice struct {
	Kind     string   `json:"kind"`
	Steps    []string `json:"steps,omitempty"`
	Response string   `json:"response,omitempty"`
}

// decision validates the reply. A missing kind is inferred from which
// payload is present.
func (r actReply) decision() (Decision, error) {
	a := r.Action
	kind := DecisionKind(strings.ToLower(strings.TrimSpace(a.Kind)))
	if kind == "" {
		switch {
		case strings.TrimSpace(a.Response) != "":
			kind = DecisionFinalAnswer
		case len(a.Steps) > 0:
			kind = DecisionPlan
		}
	}

	switch kind {
	case DecisionFinalAnswer:
		text := strings.TrimSpace(a.Response)
		if text == "" {
			return Decision{}, malformed("act", "final answer without response")
		}
		return Decision{Kind: DecisionFinalAnswer, Response: text}, nil
	case DecisionPlan:
		steps := cleanSteps(a.Steps)
		if len(steps) == 0 {
			return Decision{}, malformed("act", "revised plan without steps")
		}
		return Decision{Kind: DecisionPlan, Steps: steps}, nil
	default:
		return Decision{}, malformed("act", fmt.Sprintf("unknown decision kind %q", a.Kind))
	}
}

// gradeReply is the structured grader reply.
type gradeReply struct {
	IsSufficient bool     `json:"is_sufficient"`
	Critique     string   `json:"critique"`
	NextQueries  []string `json:"next_queries"`
}

// cleanSteps drops blank entries, keeping order.
func cleanSteps(steps []string) []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func malformed(name, detail string) error {
	return &llm.CapabilityError{Op: "decode", Err: fmt.Errorf("%w: %s: %s", llm.ErrMalformedOutput, name, detail)}
}
