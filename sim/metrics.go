// Tracks per-year event outcome counts for reporting.

package sim

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

// EventCount is the attempted/succeeded tally of one event type in one year.
type EventCount struct {
	Type      EventType
	Attempted int
	Succeeded int
}

// Rejected returns the number of stale or probability-rejected events.
func (c EventCount) Rejected() int { return c.Attempted - c.Succeeded }

// YearSummary is emitted after every finished year. Counts holds one entry per
// active event type, in canonical order, including types with zero attempts.
type YearSummary struct {
	Year           int
	Counts         []EventCount
	TotalAttempted int
	TotalSucceeded int
	Started        time.Time
	Finished       time.Time
}

// Count returns the tally for one event type.
func (s YearSummary) Count(t EventType) (EventCount, bool) {
	for _, c := range s.Counts {
		if c.Type == t {
			return c, true
		}
	}
	return EventCount{Type: t}, false
}

// Duration is the wall-clock time the year took.
func (s YearSummary) Duration() time.Duration {
	return s.Finished.Sub(s.Started)
}

// Print writes a human-readable table of the summary.
func (s YearSummary) Print(w io.Writer) {
	fmt.Fprintf(w, "=== Year %d ===\n", s.Year)
	for _, c := range s.Counts {
		rate := 0.0
		if c.Attempted > 0 {
			rate = 100 * float64(c.Succeeded) / float64(c.Attempted)
		}
		fmt.Fprintf(w, "%-16s: %10s attempted %10s succeeded (%5.1f%%)\n",
			c.Type, humanize.Comma(int64(c.Attempted)), humanize.Comma(int64(c.Succeeded)), rate)
	}
	fmt.Fprintf(w, "%-16s: %10s attempted %10s succeeded in %s\n",
		"total", humanize.Comma(int64(s.TotalAttempted)), humanize.Comma(int64(s.TotalSucceeded)),
		s.Duration().Round(time.Millisecond))
}
