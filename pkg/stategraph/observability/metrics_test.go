package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest installs a manual-reader meter provider for the test.
func setupMetricsTest(t *testing.T) *sdkmetric.ManualReader {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	original := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	t.Cleanup(func() {
		otel.SetMeterProvider(original)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("shutting down meter provider: %v", err)
		}
	})

	return reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumOf(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum[int64], got %T", m.Data)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewMetricsRecorder_NotNoop(t *testing.T) {
	setupMetricsTest(t)

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)

	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop)
}

func TestRecordNodeExecution_CountsErrors(t *testing.T) {
	reader := setupMetricsTest(t)

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordNodeExecution(ctx, "executor", 20*time.Millisecond, nil)
	m.RecordNodeExecution(ctx, "executor", 30*time.Millisecond, errors.New("tool failed"))

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), sumOf(t, findMetric(rm, "stategraph.node.executions")))
	assert.Equal(t, int64(1), sumOf(t, findMetric(rm, "stategraph.node.errors")))

	latency := findMetric(rm, "stategraph.node.latency_ms")
	require.NotNil(t, latency)
	hist, ok := latency.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
}

func TestRecordGraphRun_TagsGraphAndOutcome(t *testing.T) {
	reader := setupMetricsTest(t)

	m, err := newOtelMetrics()
	require.NoError(t, err)

	m.RecordGraphRun(context.Background(), "self-reflection", true, time.Second)
	m.RecordGraphRun(context.Background(), "self-reflection", false, time.Second)

	rm := collectMetrics(t, reader)
	runs := findMetric(rm, "stategraph.graph.runs")
	require.NotNil(t, runs)

	sum := runs.Data.(metricdata.Sum[int64])
	assert.Len(t, sum.DataPoints, 2)
	for _, dp := range sum.DataPoints {
		graph, ok := dp.Attributes.Value("graph")
		require.True(t, ok)
		assert.Equal(t, "self-reflection", graph.AsString())
	}
}

func TestRecordCheckpoint_Size(t *testing.T) {
	reader := setupMetricsTest(t)

	m, err := newOtelMetrics()
	require.NoError(t, err)

	m.RecordCheckpoint(context.Background(), "planner", 512)

	size := findMetric(collectMetrics(t, reader), "stategraph.checkpoint.size_bytes")
	require.NotNil(t, size)
	hist, ok := size.Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, int64(512), hist.DataPoints[0].Sum)
}
