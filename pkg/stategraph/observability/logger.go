// Package observability provides run logging, metrics and tracing for
// stategraph runs.
//
// Logging goes through log/slog; metrics and tracing through the global
// OpenTelemetry providers. Every recorder has a no-op counterpart for
// disabled runs.
package observability

import (
	"log/slog"
	"time"
)

// RunLog writes the lifecycle events of one graph run. Every record
// carries the graph name and run id. The zero value and a RunLog built
// from a nil logger discard everything.
type RunLog struct {
	logger *slog.Logger
}

// NewRunLog binds logger to one run.
func NewRunLog(logger *slog.Logger, graphName, runID string) RunLog {
	if logger == nil {
		return RunLog{}
	}
	return RunLog{logger: logger.With(
		slog.String("graph", graphName),
		slog.String("run_id", runID),
	)}
}

func (l RunLog) Started() {
	if l.logger == nil {
		return
	}
	l.logger.Info("graph run starting")
}

// Finished logs the run outcome. lastNode is reported on failure only.
func (l RunLog) Finished(elapsed time.Duration, steps int, err error, lastNode string) {
	if l.logger == nil {
		return
	}
	if err != nil {
		l.logger.Error("graph run failed",
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", elapsed.Milliseconds()),
			slog.Int("steps", steps),
			slog.String("last_node", lastNode),
		)
		return
	}
	l.logger.Info("graph run completed",
		slog.Int64("duration_ms", elapsed.Milliseconds()),
		slog.Int("steps", steps),
	)
}

func (l RunLog) NodeStarted(nodeID string) {
	if l.logger == nil {
		return
	}
	l.logger.Debug("node starting", slog.String("node_id", nodeID))
}

func (l RunLog) NodeFinished(nodeID string, elapsed time.Duration, err error) {
	if l.logger == nil {
		return
	}
	if err != nil {
		l.logger.Error("node failed",
			slog.String("node_id", nodeID),
			slog.String("error", err.Error()),
		)
		return
	}
	l.logger.Debug("node completed",
		slog.String("node_id", nodeID),
		slog.Int64("duration_ms", elapsed.Milliseconds()),
	)
}

// Checkpointed logs an audit snapshot write.
func (l RunLog) Checkpointed(nodeID, nextNode string, sizeBytes int) {
	if l.logger == nil {
		return
	}
	l.logger.Debug("checkpoint appended",
		slog.String("node_id", nodeID),
		slog.String("next_node", nextNode),
		slog.Int("size_bytes", sizeBytes),
	)
}

// CheckpointFailed logs a snapshot failure the run tolerates.
func (l RunLog) CheckpointFailed(nodeID, op string, err error) {
	if l.logger == nil {
		return
	}
	l.logger.Warn("checkpoint failed",
		slog.String("node_id", nodeID),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}
