// Package trace provides per-event outcome recording for run analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// EventRecord captures the outcome of one handled event.
type EventRecord struct {
	Year    int
	Seq     int // position in the year's shuffled buffer
	Type    string
	Subject int
	Object  int
	Applied bool
}
