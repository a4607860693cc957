package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// telemetryCollector installs in-process meter and tracer providers and
// prints what they captured once the run is over.
type telemetryCollector struct {
	reader  *sdkmetric.ManualReader
	spans   *tracetest.SpanRecorder
	meters  *sdkmetric.MeterProvider
	tracers *sdktrace.TracerProvider
}

func newTelemetryCollector() *telemetryCollector {
	c := &telemetryCollector{
		reader: sdkmetric.NewManualReader(),
		spans:  tracetest.NewSpanRecorder(),
	}
	c.meters = sdkmetric.NewMeterProvider(sdkmetric.WithReader(c.reader))
	c.tracers = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(c.spans))
	otel.SetMeterProvider(c.meters)
	otel.SetTracerProvider(c.tracers)
	return c
}

// report writes event counter totals and year span timings to stdout.
func (c *telemetryCollector) report() {
	var rm metricdata.ResourceMetrics
	if err := c.reader.Collect(context.Background(), &rm); err != nil {
		logrus.Warnf("Collecting telemetry: %v", err)
		return
	}
	fmt.Fprintf(os.Stdout, "=== Telemetry ===\n")
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			fmt.Fprintf(os.Stdout, "%-28s: %s\n", m.Name, humanize.Comma(total))
		}
	}

	ended := c.spans.Ended()
	sort.Slice(ended, func(i, j int) bool { return ended[i].StartTime().Before(ended[j].StartTime()) })
	for _, s := range ended {
		fmt.Fprintf(os.Stdout, "span %-16s %8s  status=%s\n",
			s.Name(), s.EndTime().Sub(s.StartTime()).Round(time.Microsecond), s.Status().Code)
	}
}

func (c *telemetryCollector) shutdown(ctx context.Context) {
	if err := c.meters.Shutdown(ctx); err != nil {
		logrus.Warnf("Error shutting down meter provider: %v", err)
	}
	if err := c.tracers.Shutdown(ctx); err != nil {
		logrus.Warnf("Error shutting down tracer provider: %v", err)
	}
}
