package results

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupOTel installs test providers and restores the originals on cleanup.
func setupOTel(t *testing.T) (*sdkmetric.ManualReader, *tracetest.InMemoryExporter) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	origMP, origTP := otel.GetMeterProvider(), otel.GetTracerProvider()
	otel.SetMeterProvider(mp)
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetMeterProvider(origMP)
		otel.SetTracerProvider(origTP)
		if err := mp.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down tracer provider: %v", err)
		}
	})
	return reader, exporter
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
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

func TestOTelSink_RecordYear_CountersAndSpan(t *testing.T) {
	reader, exporter := setupOTel(t)
	s, err := NewOTelSink(context.Background(), "run-1")
	require.NoError(t, err)

	require.NoError(t, s.RecordYear(testSummary(2011)))
	require.NoError(t, s.RecordYear(testSummary(2012)))

	rm := collect(t, reader)
	m := findMetric(rm, "urban_sim.events.attempted")
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "Expected Sum type")
	byType := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value("event_type")
		byType[v.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"death": 2400, "relocation": 1800}, byType)

	hist := findMetric(rm, "urban_sim.year.duration_ms")
	require.NotNil(t, hist)
	_, ok = hist.Data.(metricdata.Histogram[float64])
	assert.True(t, ok, "Expected Histogram type")

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "urban_sim.year", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Len(t, spans[0].Events, 2)
	assert.Equal(t, testSummary(2011).Duration(), spans[0].EndTime.Sub(spans[0].StartTime))
}

func TestOTelSink_RecordMarket_Gauges(t *testing.T) {
	reader, _ := setupOTel(t)
	s, err := NewOTelSink(context.Background(), "run-2")
	require.NoError(t, err)

	require.NoError(t, s.RecordMarket(testReport(2011)))

	rm := collect(t, reader)
	m := findMetric(rm, "urban_sim.market.vacancy_rate")
	require.NotNil(t, m)
	gauge, ok := m.Data.(metricdata.Gauge[float64])
	require.True(t, ok, "Expected Gauge type")
	assert.Len(t, gauge.DataPoints, 2)

	q := findMetric(rm, "urban_sim.dwellings.quality_share")
	require.NotNil(t, q)
	qg := q.Data.(metricdata.Gauge[float64])
	assert.Len(t, qg.DataPoints, 4)
}

func TestOTelSink_RecordAbort_ErrorSpan(t *testing.T) {
	_, exporter := setupOTel(t)
	s, err := NewOTelSink(context.Background(), "run-3")
	require.NoError(t, err)

	s.RecordAbort(errors.New("household 4 has no adult"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "household 4 has no adult", spans[0].Status.Description)
}
