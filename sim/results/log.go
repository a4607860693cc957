package results

import (
	"bytes"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/urban-sim/urban-sim/sim"
)

// LogSink writes year summaries and market reports through logrus.
type LogSink struct {
	level logrus.Level
}

// NewLogSink creates a sink that logs at level.
func NewLogSink(level logrus.Level) *LogSink {
	return &LogSink{level: level}
}

func (s *LogSink) RecordYear(summary sim.YearSummary) error {
	var buf bytes.Buffer
	summary.Print(&buf)
	logrus.StandardLogger().Log(s.level, "\n"+buf.String())
	return nil
}

func (s *LogSink) RecordMarket(r MarketReport) error {
	for _, st := range r.Stats {
		logrus.WithFields(logrus.Fields{
			"year":          r.Year,
			"region":        st.Region,
			"dwelling_type": st.Type.String(),
		}).Logf(s.level, "%s of %s vacant (%.1f%%), price x%.4f, avg %s",
			humanize.Comma(int64(st.Vacant)), humanize.Comma(int64(st.Total)),
			100*st.VacancyRate, st.ChangeRate, humanize.CommafWithDigits(st.AveragePrice, 0))
	}
	return nil
}
