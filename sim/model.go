package sim

import "math/rand"

// EventModel owns exactly one event type. PrepareYear proposes events against
// the state as it stands after all listeners ran; HandleEvent re-validates
// live state, makes one probability draw from rng and applies the event.
// A false return means stale or rejected and is never an error.
type EventModel interface {
	Setup() error
	PrepareYear(year int) []Event
	HandleEvent(ev Event, rng *rand.Rand) bool
	EndYear(year int)
	EndSimulation()
}

// AnnualListener is a yearly recomputation hook with no event semantics.
type AnnualListener interface {
	Setup() error
	PrepareYear(year int)
	EndYear(year int)
	EndSimulation()
}

// InvariantChecker verifies whole-state consistency at the end of every year.
type InvariantChecker interface {
	CheckInvariants() error
}

// ResultSink receives the per-year summary after every finished year.
type ResultSink interface {
	RecordYear(summary YearSummary) error
}

// BaseListener provides no-op implementations of AnnualListener so that
// listeners only override the hooks they use.
type BaseListener struct{}

func (BaseListener) Setup() error { return nil }
func (BaseListener) PrepareYear(int) {}
func (BaseListener) EndYear(int) {}
func (BaseListener) EndSimulation() {}

// BaseModel provides no-op lifecycle hooks for event models.
type BaseModel struct{}

func (BaseModel) Setup() error { return nil }
func (BaseModel) EndYear(int) {}
func (BaseModel) EndSimulation() {}
