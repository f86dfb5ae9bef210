package stategraph

import (
	"fmt"
	"log/slog"

	"github.com/wjs2063/tripgraph/pkg/stategraph/checkpoint"
	"github.com/wjs2063/tripgraph/pkg/stategraph/observability"
)

const (
	// DefaultMaxSteps is the step bound used when WithMaxSteps is not given.
	DefaultMaxSteps = 25

	// MaxStepsLimit is the largest step bound WithMaxSteps accepts.
	MaxStepsLimit = 10000
)

// runConfig holds configuration for a single Run.
type runConfig struct {
	maxSteps int

	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool
	graphName      string

	checkpointStore        checkpoint.Store
	checkpointFailureFatal bool
}

func defaultRunConfig() runConfig {
	return runConfig{
		maxSteps:  DefaultMaxSteps,
		metrics:   observability.NoopMetrics{},
		spans:     observability.NoopSpanManager{},
		graphName: "stategraph",
	}
}

// RunOption configures execution behavior.
type RunOption func(*runConfig)

// WithMaxSteps bounds the number of node invocations in one run.
// Default: DefaultMaxSteps.
//
// When the run would invoke node n+1, Run returns a *RecursionLimitError
// instead.
//
// Panics if n is not positive or exceeds MaxStepsLimit.
func WithMaxSteps(n int) RunOption {
	if n <= 0 {
		panic("stategraph: max steps must be > 0")
	}
	if n > MaxStepsLimit {
		panic(fmt.Sprintf("stategraph: max steps exceeds limit (%d)", MaxStepsLimit))
	}
	return func(c *runConfig) {
		c.maxSteps = n
	}
}

// WithObservabilityLogger enables run and node lifecycle logging.
func WithObservabilityLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics using the global meter provider.
func WithMetrics(enabled bool) RunOption {
	return func(c *runConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry spans using the global tracer provider.
func WithTracing(enabled bool) RunOption {
	return func(c *runConfig) {
		c.tracingEnabled = enabled
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithGraphName labels spans and logs with the workflow name.
func WithGraphName(name string) RunOption {
	return func(c *runConfig) {
		if name != "" {
			c.graphName = name
		}
	}
}

// WithCheckpointing appends a JSON snapshot of the state to store after
// every successful node. Snapshots form an audit trail keyed by the
// context's run ID; runs are never resumed from them.
func WithCheckpointing(store checkpoint.Store) RunOption {
	return func(c *runConfig) {
		c.checkpointStore = store
	}
}

// WithCheckpointFailureFatal makes a failed snapshot abort the run.
// By default failures are logged and the run continues.
func WithCheckpointFailureFatal(fatal bool) RunOption {
	return func(c *runConfig) {
		c.checkpointFailureFatal = fatal
	}
}
