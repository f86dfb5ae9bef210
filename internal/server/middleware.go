package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/google/uuid"

	"github.com/wjs2063/tripgraph/internal/logging"
)

// TraceIDHeader carries the per-request trace id back to the caller.
const TraceIDHeader = "X-Trace-Id"

const traceIDKey = logging.TraceIDKey

// traceID tags every request with a fresh id, carries it in the request
// context for downstream logging and logs the outcome.
func traceID(logger *slog.Logger) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		id := uuid.NewString()
		c.Set(traceIDKey, id)
		c.Header(TraceIDHeader, id)

		start := time.Now()
		c.Next(logging.WithTraceID(ctx, id))

		logger.Info("request handled",
			slog.String(traceIDKey, id),
			slog.String("method", string(c.Method())),
			slog.String("path", string(c.Path())),
			slog.Int("status", c.Response.StatusCode()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	}
}

// requestLogger returns logger enriched with the request trace id.
func requestLogger(logger *slog.Logger, c *app.RequestContext) *slog.Logger {
	return logger.With(slog.String(traceIDKey, c.GetString(traceIDKey)))
}
