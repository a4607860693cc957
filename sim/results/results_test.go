package results

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urban-sim/urban-sim/sim"
	"github.com/urban-sim/urban-sim/sim/housing"
	"github.com/urban-sim/urban-sim/sim/internal/testutil"
	"github.com/urban-sim/urban-sim/sim/registry"
)

func testSummary(year int) sim.YearSummary {
	started := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	return sim.YearSummary{
		Year: year,
		Counts: []sim.EventCount{
			{Type: sim.EventDeath, Attempted: 1200, Succeeded: 12},
			{Type: sim.EventRelocation, Attempted: 900, Succeeded: 45},
		},
		TotalAttempted: 2100,
		TotalSucceeded: 57,
		Started:        started,
		Finished:       started.Add(250 * time.Millisecond),
	}
}

func testReport(year int) MarketReport {
	return MarketReport{
		Year: year,
		Stats: []housing.MarketStats{
			{Year: year, Region: 0, Type: registry.SFD, Total: 100, Vacant: 3, VacancyRate: 0.03, ChangeRate: 1.0, AveragePrice: 1500},
			{Year: year, Region: 1, Type: registry.MF234, Total: 40, Vacant: 8, VacancyRate: 0.2, ChangeRate: 0.95, AveragePrice: 855.5},
		},
		QualityShares: []float64{0, 0.1, 0.4, 0.3, 0.2},
	}
}

type fixedStats []housing.MarketStats

func (f fixedStats) LastStats() []housing.MarketStats { return f }

type recordingMarketSink struct {
	reports []MarketReport
	err     error
}

func (s *recordingMarketSink) RecordMarket(r MarketReport) error {
	s.reports = append(s.reports, r)
	return s.err
}

func TestMarketListener_ForwardsStatsAndShares(t *testing.T) {
	reg := testutil.Market{Dwellings: 4, QualityLevels: 2}.Build(t)
	sink := &recordingMarketSink{}
	l := NewMarketListener(reg, fixedStats(testReport(2011).Stats), sink)

	l.EndYear(2011)

	require.Len(t, sink.reports, 1)
	assert.Equal(t, 2011, sink.reports[0].Year)
	assert.Len(t, sink.reports[0].Stats, 2)
	assert.Equal(t, []float64{0, 0.5, 0.5}, sink.reports[0].QualityShares)
}

func TestMarketListener_SinkErrorPanics(t *testing.T) {
	reg := testutil.Market{Dwellings: 1}.Build(t)
	l := NewMarketListener(reg, fixedStats(nil))
	l.AddSink(&recordingMarketSink{err: errors.New("disk full")})

	assert.PanicsWithValue(t, "recording market 2011: disk full", func() { l.EndYear(2011) })
}

func TestLogSink_WritesReport(t *testing.T) {
	var buf bytes.Buffer
	logrus.SetOutput(&buf)
	defer logrus.SetOutput(logrusOutput)
	s := NewLogSink(logrus.WarnLevel)

	require.NoError(t, s.RecordYear(testSummary(2011)))
	require.NoError(t, s.RecordMarket(testReport(2011)))

	out := buf.String()
	assert.Contains(t, out, "=== Year 2011 ===")
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "8 of 40 vacant (20.0%)")
	assert.Contains(t, out, "dwelling_type=MF234")
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	// GIVEN a fresh store on disk
	path := filepath.Join(t.TempDir(), "results.db")
	store, err := Open(path, RunInfo{Seed: 42, StartYear: 2011, EndYear: 2012, Scenario: "demo"})
	require.NoError(t, err)
	defer store.Close()

	// WHEN two years are recorded
	for _, year := range []int{2011, 2012} {
		require.NoError(t, store.RecordYear(testSummary(year)))
		require.NoError(t, store.RecordMarket(testReport(year)))
	}

	// THEN the run row counts both years
	run, err := store.Run()
	require.NoError(t, err)
	assert.Equal(t, store.RunID(), run.ID)
	assert.Equal(t, int64(42), run.Seed)
	assert.Equal(t, 2, run.Years)

	// AND the counts are stored per year and type
	counts, err := store.EventCounts()
	require.NoError(t, err)
	require.Len(t, counts, 4)
	assert.Equal(t, EventCountRow{RunID: store.RunID(), Year: 2011, EventType: "death", Attempted: 1200, Succeeded: 12}, counts[0])

	// AND market rows and quality shares come back in order
	rows, err := store.MarketStats(2012)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "MF234", rows[1].DwellingType)
	assert.InDelta(t, 855.5, rows[1].AveragePrice, 1e-9)
	shares, err := store.QualityShares(2012)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.1, 0.4, 0.3, 0.2}, shares)
}

func TestSQLiteStore_InMemory_DuplicateYearFails(t *testing.T) {
	store, err := Open(":memory:", RunInfo{Seed: 1, StartYear: 2011, EndYear: 2011})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.RecordYear(testSummary(2011)))
	assert.Error(t, store.RecordYear(testSummary(2011)), "primary key rejects a repeated year")

	run, err := store.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, run.Years, "failed transaction is rolled back")
}
