package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTracingTest installs an in-memory tracer provider for the test.
func setupTracingTest(t *testing.T) *tracetest.InMemoryExporter {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	tracer = otel.Tracer(instrumentationName)

	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		tracer = otel.Tracer(instrumentationName)
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("shutting down tracer provider: %v", err)
		}
	})

	return exporter
}

func TestSpanManager_RunAndNodeSpans(t *testing.T) {
	exporter := setupTracingTest(t)
	spans := NewSpanManager()

	ctx, runSpan := spans.StartRunSpan(context.Background(), "self-reflection", "run-7")
	_, nodeSpan := spans.StartNodeSpan(ctx, "grader")
	spans.EndSpanWithError(nodeSpan, nil)
	spans.EndSpanWithError(runSpan, nil)

	got := exporter.GetSpans()
	require.Len(t, got, 2)

	var run, node tracetest.SpanStub
	for _, s := range got {
		switch s.Name {
		case "stategraph.run":
			run = s
		case "stategraph.node.grader":
			node = s
		}
	}

	assert.Equal(t, run.SpanContext.SpanID(), node.Parent.SpanID())
	assert.Equal(t, codes.Ok, run.Status.Code)

	attrs := map[string]string{}
	for _, kv := range run.Attributes {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}
	assert.Equal(t, "self-reflection", attrs["graph.name"])
	assert.Equal(t, "run-7", attrs["run.id"])
}

func TestSpanManager_EndWithError(t *testing.T) {
	exporter := setupTracingTest(t)
	spans := NewSpanManager()

	_, span := spans.StartNodeSpan(context.Background(), "executor")
	spans.EndSpanWithError(span, errors.New("agent failed"))

	got := exporter.GetSpans()
	require.Len(t, got, 1)
	assert.Equal(t, codes.Error, got[0].Status.Code)
	assert.Equal(t, "agent failed", got[0].Status.Description)
	require.NotEmpty(t, got[0].Events)
	assert.Equal(t, "exception", got[0].Events[0].Name)
}

func TestSpanManager_EndNilSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		NewSpanManager().EndSpanWithError(nil, errors.New("x"))
	})
}
