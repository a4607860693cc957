package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/urban-sim/urban-sim/sim"
	"github.com/urban-sim/urban-sim/sim/results"
)

func TestTelemetryCollector_ReportsCountersAndSpans(t *testing.T) {
	// GIVEN a collector installed as the global provider
	origMP, origTP := otel.GetMeterProvider(), otel.GetTracerProvider()
	tel := newTelemetryCollector()
	t.Cleanup(func() {
		tel.shutdown(context.Background())
		otel.SetMeterProvider(origMP)
		otel.SetTracerProvider(origTP)
	})
	sink, err := results.NewOTelSink(context.Background(), "test-run")
	require.NoError(t, err)

	// WHEN one year summary is recorded
	started := time.Now()
	require.NoError(t, sink.RecordYear(sim.YearSummary{
		Year: 2011, Started: started, Finished: started.Add(5 * time.Millisecond),
		Counts:         []sim.EventCount{{Type: sim.EventDeath, Attempted: 1200, Succeeded: 30}},
		TotalAttempted: 1200, TotalSucceeded: 30,
	}))
	out := captureStdout(t, tel.report)

	// THEN the report shows counter totals and the year span
	assert.Contains(t, out, "=== Telemetry ===")
	assert.Contains(t, out, "urban_sim.events.attempted")
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "urban_sim.year")
}
