package trace

// TraceLevel controls the verbosity of event tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEvents captures the outcome of every handled event.
	TraceLevelEvents TraceLevel = "events"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelEvents: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
	// MaxRecords caps memory use on long runs; 0 means unbounded.
	MaxRecords int
}

// EventTrace collects event outcome records during a run.
type EventTrace struct {
	Config  TraceConfig
	Events  []EventRecord
	Dropped int
}

// NewEventTrace creates an EventTrace ready for recording.
func NewEventTrace(config TraceConfig) *EventTrace {
	return &EventTrace{
		Config: config,
		Events: make([]EventRecord, 0),
	}
}

// Enabled reports whether records are being collected.
func (et *EventTrace) Enabled() bool {
	return et != nil && et.Config.Level == TraceLevelEvents
}

// RecordEvent appends an event outcome record. Records past MaxRecords are
// counted in Dropped instead.
func (et *EventTrace) RecordEvent(record EventRecord) {
	if et.Config.MaxRecords > 0 && len(et.Events) >= et.Config.MaxRecords {
		et.Dropped++
		return
	}
	et.Events = append(et.Events, record)
}

// ForYear returns the records of one simulated year, in processing order.
func (et *EventTrace) ForYear(year int) []EventRecord {
	var out []EventRecord
	for _, r := range et.Events {
		if r.Year == year {
			out = append(out, r)
		}
	}
	return out
}
