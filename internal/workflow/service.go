package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/wjs2063/tripgraph/internal/logging"
	"github.com/wjs2063/tripgraph/pkg/stategraph"
	"github.com/wjs2063/tripgraph/pkg/stategraph/checkpoint"
)

// Workflow names accepted by Service.Invoke.
const (
	PlanAndExecute = "plan-and-execute"
	SelfReflection = "self-reflection"
)

// Result is the outcome of one workflow run.
type Result struct {
	Workflow string `json:"workflow"`
	RunID    string `json:"run_id"`
	Response string `json:"response"`
	// State is the final PlanExecuteState or ReflectionState.
	State any `json:"state"`
}

// runner executes one workflow from a question.
type runner func(ctx stategraph.Context, input string, opts []stategraph.RunOption) (response string, state any, err error)

// Service runs named workflows. It is safe for concurrent use; runs
// share no state.
type Service struct {
	runners         map[string]runner
	logger          *slog.Logger
	defaultMaxSteps int
	runOpts         []stategraph.RunOption
	audit           checkpoint.Store
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger handed to nodes and run logging.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// WithDefaultMaxSteps sets the step bound used when Invoke gets maxSteps <= 0.
func WithDefaultMaxSteps(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.defaultMaxSteps = n
		}
	}
}

// WithAuditStore records a snapshot after every node of every run.
func WithAuditStore(store checkpoint.Store) ServiceOption {
	return func(s *Service) { s.audit = store }
}

// WithRunOptions adds engine options applied to every run, such as
// stategraph.WithMetrics or stategraph.WithTracing.
func WithRunOptions(opts ...stategraph.RunOption) ServiceOption {
	return func(s *Service) { s.runOpts = append(s.runOpts, opts...) }
}

// NewService compiles both workflows over the same capabilities.
func NewService(deps Deps, opts ...ServiceOption) (*Service, error) {
	planExec, err := NewPlanExecute(deps)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", PlanAndExecute, err)
	}
	refl, err := NewReflection(deps)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", SelfReflection, err)
	}

	s := &Service{
		logger:          slog.Default(),
		defaultMaxSteps: stategraph.DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.runners = map[string]runner{
		PlanAndExecute: func(ctx stategraph.Context, input string, opts []stategraph.RunOption) (string, any, error) {
			final, err := planExec.Run(ctx, PlanExecuteState{Input: input}, opts...)
			return final.Response, final, err
		},
		SelfReflection: func(ctx stategraph.Context, input string, opts []stategraph.RunOption) (string, any, error) {
			final, err := refl.Run(ctx, ReflectionState{Input: input}, opts...)
			return final.Response, final, err
		},
	}
	return s, nil
}

// Workflows lists the registered workflow names.
func (s *Service) Workflows() []string {
	names := make([]string, 0, len(s.runners))
	for name := range s.runners {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Invoke runs the named workflow on input. maxSteps bounds node
// invocations; zero or less uses the service default.
func (s *Service) Invoke(ctx context.Context, name, input string, maxSteps int) (*Result, error) {
	run, ok := s.runners[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWorkflow, name)
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}
	if maxSteps <= 0 {
		maxSteps = s.defaultMaxSteps
	}
	if maxSteps > stategraph.MaxStepsLimit {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrInvalidMaxSteps, maxSteps, stategraph.MaxStepsLimit)
	}

	runID := uuid.NewString()
	logger := logging.FromContext(ctx, s.logger).With(slog.String("workflow", name))
	sgCtx := stategraph.NewContext(ctx, stategraph.WithLogger(logger), stategraph.WithRunID(runID))

	opts := append(slices.Clone(s.runOpts),
		stategraph.WithMaxSteps(maxSteps),
		stategraph.WithGraphName(name),
		stategraph.WithObservabilityLogger(logger),
	)
	if s.audit != nil {
		opts = append(opts, stategraph.WithCheckpointing(s.audit))
	}

	response, state, err := run(sgCtx, input, opts)
	if err != nil {
		return nil, fmt.Errorf("%s run %s: %w", name, runID, err)
	}
	return &Result{Workflow: name, RunID: runID, Response: response, State: state}, nil
}

// TrailEntry is one audited step of a run.
type TrailEntry struct {
	checkpoint.Info
	NextNode string          `json:"next_node"`
	State    json.RawMessage `json:"state"`
}

// Trail returns the audited steps of a run in execution order. An
// unknown run yields an empty trail.
func (s *Service) Trail(runID string) ([]TrailEntry, error) {
	if s.audit == nil {
		return nil, ErrAuditDisabled
	}
	return ReadTrail(s.audit, runID)
}

// ReadTrail decodes every snapshot store holds for runID.
func ReadTrail(store checkpoint.Store, runID string) ([]TrailEntry, error) {
	infos, err := store.List(runID)
	if err != nil {
		return nil, fmt.Errorf("list run %s: %w", runID, err)
	}

	entries := make([]TrailEntry, 0, len(infos))
	for _, info := range infos {
		data, err := store.Load(runID, info.Sequence)
		if err != nil {
			if errors.Is(err, checkpoint.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("load run %s step %d: %w", runID, info.Sequence, err)
		}
		cp, err := checkpoint.Unmarshal(data)
		if err != nil {
			return nil, fmt.Errorf("decode run %s step %d: %w", runID, info.Sequence, err)
		}
		entries = append(entries, TrailEntry{Info: info, NextNode: cp.NextNode, State: cp.State})
	}
	return entries, nil
}
