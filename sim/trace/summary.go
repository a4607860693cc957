package trace

import "sort"

// TypeSummary holds per-event-type outcome counts.
type TypeSummary struct {
	Type           string
	Handled        int
	Applied        int
	AcceptanceRate float64
}

// TraceSummary aggregates statistics from an EventTrace.
type TraceSummary struct {
	TotalEvents int
	Applied     int
	Rejected    int
	Years       int
	PerType     []TypeSummary // sorted by type name
}

// Summarize computes aggregate statistics from an EventTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(et *EventTrace) *TraceSummary {
	summary := &TraceSummary{}
	if et == nil {
		return summary
	}

	summary.TotalEvents = len(et.Events)
	years := make(map[int]bool)
	byType := make(map[string]*TypeSummary)
	for _, r := range et.Events {
		years[r.Year] = true
		ts, ok := byType[r.Type]
		if !ok {
			ts = &TypeSummary{Type: r.Type}
			byType[r.Type] = ts
		}
		ts.Handled++
		if r.Applied {
			ts.Applied++
			summary.Applied++
		} else {
			summary.Rejected++
		}
	}
	summary.Years = len(years)

	for _, ts := range byType {
		ts.AcceptanceRate = float64(ts.Applied) / float64(ts.Handled)
		summary.PerType = append(summary.PerType, *ts)
	}
	sort.Slice(summary.PerType, func(i, j int) bool {
		return summary.PerType[i].Type < summary.PerType[j].Type
	})

	return summary
}
