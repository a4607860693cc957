package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/urban-sim/urban-sim/sim"
	"github.com/urban-sim/urban-sim/sim/trace"
)

// loadScenario reads a scenario file with strict field checking, or returns
// the defaults when path is empty.
func loadScenario(path string) (*sim.Properties, error) {
	if path == "" {
		return sim.DefaultProperties(), nil
	}
	props, err := sim.LoadProperties(path)
	if err != nil {
		return nil, fmt.Errorf("loading scenario %s: %w", path, err)
	}
	return props, nil
}

// runLabel names a run in telemetry when no results store assigns an id.
func runLabel(props *sim.Properties) string {
	return fmt.Sprintf("seed-%d-%d-%d", props.Seed, props.StartYear, props.EndYear)
}

func printTraceSummary(s *trace.TraceSummary) {
	fmt.Fprintf(os.Stdout, "=== Event Trace ===\n")
	fmt.Fprintf(os.Stdout, "%s events over %d years, %s applied, %s rejected\n",
		humanize.Comma(int64(s.TotalEvents)), s.Years, humanize.Comma(int64(s.Applied)), humanize.Comma(int64(s.Rejected)))
	for _, ts := range s.PerType {
		fmt.Fprintf(os.Stdout, "%-16s: %10s handled %10s applied (%5.1f%%)\n",
			ts.Type, humanize.Comma(int64(ts.Handled)), humanize.Comma(int64(ts.Applied)), 100*ts.AcceptanceRate)
	}
}
