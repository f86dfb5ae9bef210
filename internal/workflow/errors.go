package workflow

import "errors"

var (
	// ErrEmptyPlan is returned when the planner proposes no steps.
	ErrEmptyPlan = errors.New("planner returned an empty plan")

	// ErrNoPendingStep is returned when the executor runs with nothing left to do.
	ErrNoPendingStep = errors.New("executor entered with an empty plan")

	// ErrEmptyAnswer is returned when a final answer comes back blank.
	ErrEmptyAnswer = errors.New("model returned an empty answer")

	// ErrUnknownWorkflow is returned by Service.Invoke for an unregistered name.
	ErrUnknownWorkflow = errors.New("unknown workflow")

	// ErrEmptyInput is returned by Service.Invoke when the question is blank.
	ErrEmptyInput = errors.New("input is required")

	// ErrInvalidMaxSteps is returned for a step bound above stategraph.MaxStepsLimit.
	ErrInvalidMaxSteps = errors.New("max steps out of range")

	// ErrAuditDisabled is returned by Service.Trail when no audit store is set.
	ErrAuditDisabled = errors.New("audit trail is disabled")
)
