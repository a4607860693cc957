// Package results holds the receivers of per-year output: a log report, a
// SQLite store and an OpenTelemetry exporter. Each implements
// sim.ResultSink for event counts and MarketSink for housing market reports.
package results

import (
	"fmt"

	"github.com/urban-sim/urban-sim/sim"
	"github.com/urban-sim/urban-sim/sim/housing"
	"github.com/urban-sim/urban-sim/sim/registry"
)

// MarketReport is the housing market state at the end of a year.
type MarketReport struct {
	Year  int
	Stats []housing.MarketStats
	// QualityShares is indexed by quality level; index 0 is unused.
	QualityShares []float64
}

// MarketSink receives one MarketReport per finished year.
type MarketSink interface {
	RecordMarket(MarketReport) error
}

// StatsSource publishes the latest submarket statistics.
type StatsSource interface {
	LastStats() []housing.MarketStats
}

// MarketListener forwards the price updater's statistics to market sinks.
// It must be registered after the price updater so its EndYear sees the
// current year's update.
type MarketListener struct {
	sim.BaseListener
	reg    *registry.Registry
	source StatsSource
	sinks  []MarketSink
}

// NewMarketListener creates the listener.
func NewMarketListener(reg *registry.Registry, source StatsSource, sinks ...MarketSink) *MarketListener {
	return &MarketListener{reg: reg, source: source, sinks: sinks}
}

// AddSink appends a market sink.
func (l *MarketListener) AddSink(s MarketSink) {
	l.sinks = append(l.sinks, s)
}

// EndYear builds the report and hands it to every sink. A sink failure
// aborts the run.
func (l *MarketListener) EndYear(year int) {
	report := MarketReport{
		Year:          year,
		Stats:         l.source.LastStats(),
		QualityShares: l.reg.Quality().Shares(),
	}
	for _, s := range l.sinks {
		if err := s.RecordMarket(report); err != nil {
			panic(fmt.Sprintf("recording market %d: %v", year, err))
		}
	}
}
