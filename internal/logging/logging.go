// Package logging carries a request trace id through context.Context and
// stamps it on every slog record logged with that context.
package logging

import (
	"context"
	"log/slog"
)

// TraceIDKey is the attribute name of the trace id.
const TraceIDKey = "trace_id"

type traceIDCtxKey struct{}

// WithTraceID returns a copy of ctx carrying id.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDCtxKey{}, id)
}

// TraceID returns the trace id carried by ctx, or "".
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceIDCtxKey{}).(string)
	return id
}

// Handler adds the context trace id to records passed through the
// *Context logging methods.
type Handler struct {
	inner slog.Handler
}

// NewHandler wraps inner.
func NewHandler(inner slog.Handler) *Handler {
	return &Handler{inner: inner}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if id := TraceID(ctx); id != "" {
		r = r.Clone()
		r.AddAttrs(slog.String(TraceIDKey, id))
	}
	return h.inner.Handle(ctx, r)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{inner: h.inner.WithAttrs(attrs)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{inner: h.inner.WithGroup(name)}
}

// FromContext returns logger tagged with the trace id carried by ctx.
// Use it for loggers handed to code that logs without a context.
func FromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if id := TraceID(ctx); id != "" {
		return logger.With(slog.String(TraceIDKey, id))
	}
	return logger
}
