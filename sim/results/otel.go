package results

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/urban-sim/urban-sim/sim"
)

const instrumentationName = "urban-sim"

// OTelSink exports year summaries and market reports as OpenTelemetry
// metrics, and each finished year as one span. It uses the global meter and
// tracer providers, so configure them before calling NewOTelSink.
type OTelSink struct {
	ctx    context.Context
	runID  string
	tracer trace.Tracer

	attempted    metric.Int64Counter
	succeeded    metric.Int64Counter
	yearDuration metric.Float64Histogram
	vacancyRate  metric.Float64Gauge
	averagePrice metric.Float64Gauge
	qualityShare metric.Float64Gauge
}

// NewOTelSink creates the instruments. ctx is the parent of every year span.
func NewOTelSink(ctx context.Context, runID string) (*OTelSink, error) {
	meter := otel.Meter(instrumentationName)
	s := &OTelSink{ctx: ctx, runID: runID, tracer: otel.Tracer(instrumentationName)}

	var err error
	if s.attempted, err = meter.Int64Counter("urban_sim.events.attempted",
		metric.WithDescription("Number of handled event proposals"),
	); err != nil {
		return nil, err
	}
	if s.succeeded, err = meter.Int64Counter("urban_sim.events.succeeded",
		metric.WithDescription("Number of event proposals that changed state"),
	); err != nil {
		return nil, err
	}
	if s.yearDuration, err = meter.Float64Histogram("urban_sim.year.duration_ms",
		metric.WithDescription("Wall-clock time of one simulated year in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if s.vacancyRate, err = meter.Float64Gauge("urban_sim.market.vacancy_rate",
		metric.WithDescription("Vacancy rate of a submarket after the price update"),
	); err != nil {
		return nil, err
	}
	if s.averagePrice, err = meter.Float64Gauge("urban_sim.market.average_price",
		metric.WithDescription("Average dwelling price of a submarket"),
	); err != nil {
		return nil, err
	}
	if s.qualityShare, err = meter.Float64Gauge("urban_sim.dwellings.quality_share",
		metric.WithDescription("Share of dwellings at a quality level"),
	); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *OTelSink) RecordYear(summary sim.YearSummary) error {
	_, span := s.tracer.Start(s.ctx, "urban_sim.year",
		trace.WithTimestamp(summary.Started),
		trace.WithAttributes(
			attribute.Int("year", summary.Year),
			attribute.String("run.id", s.runID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	for _, c := range summary.Counts {
		attrs := metric.WithAttributes(attribute.String("event_type", string(c.Type)))
		s.attempted.Add(s.ctx, int64(c.Attempted), attrs)
		s.succeeded.Add(s.ctx, int64(c.Succeeded), attrs)
		span.AddEvent("event_count", trace.WithAttributes(
			attribute.String("event_type", string(c.Type)),
			attribute.Int("attempted", c.Attempted),
			attribute.Int("succeeded", c.Succeeded),
		))
	}
	s.yearDuration.Record(s.ctx, float64(summary.Duration().Milliseconds()),
		metric.WithAttributes(attribute.Int("year", summary.Year)))
	span.SetAttributes(
		attribute.Int("events.attempted", summary.TotalAttempted),
		attribute.Int("events.succeeded", summary.TotalSucceeded),
	)
	endSpan(span, nil, summary.Finished)
	return nil
}

func (s *OTelSink) RecordMarket(r MarketReport) error {
	for _, st := range r.Stats {
		attrs := metric.WithAttributes(
			attribute.Int("region", st.Region),
			attribute.String("dwelling_type", st.Type.String()),
		)
		s.vacancyRate.Record(s.ctx, st.VacancyRate, attrs)
		s.averagePrice.Record(s.ctx, st.AveragePrice, attrs)
	}
	for level := 1; level < len(r.QualityShares); level++ {
		s.qualityShare.Record(s.ctx, r.QualityShares[level],
			metric.WithAttributes(attribute.String("level", strconv.Itoa(level))))
	}
	return nil
}

// endSpan completes a span, optionally recording an error.
func endSpan(span trace.Span, err error, at time.Time) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(at))
}

// RecordAbort marks the run as failed with a zero-length span carrying err.
func (s *OTelSink) RecordAbort(err error) {
	_, span := s.tracer.Start(s.ctx, "urban_sim.abort",
		trace.WithAttributes(attribute.String("run.id", s.runID)))
	endSpan(span, err, time.Now())
}
