package sim

import "fmt"

// NoID marks an absent entity reference in an Event.
const NoID = -1

// EventType tags an event with the model that owns it.
type EventType string

const (
	EventBirth         EventType = "birth"
	EventDeath         EventType = "death"
	EventMarriage      EventType = "marriage"
	EventDivorce       EventType = "divorce"
	EventLeaveParents  EventType = "leave_parents"
	EventEmigration    EventType = "emigration"
	EventImmigration   EventType = "immigration"
	EventRelocation    EventType = "relocation"
	EventRenovation    EventType = "renovation"
	EventConstruction  EventType = "construction"
	EventDriverLicense EventType = "driver_license"
	EventCarOwnership  EventType = "car_ownership"
	EventEmployment    EventType = "employment"
)

// allEventTypes is the canonical order used for reporting.
var allEventTypes = []EventType{
	EventBirth, EventDeath, EventMarriage, EventDivorce, EventLeaveParents,
	EventEmigration, EventImmigration, EventRelocation, EventRenovation,
	EventConstruction, EventDriverLicense, EventCarOwnership, EventEmployment,
}

// ValidEventTypes is the set of recognized event type names.
var ValidEventTypes = func() map[string]bool {
	m := make(map[string]bool, len(allEventTypes))
	for _, t := range allEventTypes {
		m[string(t)] = true
	}
	return m
}()

// IsValidEventType returns true if name is a recognized event type.
func IsValidEventType(name string) bool {
	return ValidEventTypes[name]
}

// AllEventTypes returns every event type in canonical order.
func AllEventTypes() []EventType {
	out := make([]EventType, len(allEventTypes))
	copy(out, allEventTypes)
	return out
}

// Event is an immutable proposal made during PrepareYear. It carries entity
// ids only: the entities may be gone by the time the event is handled.
type Event struct {
	typ     EventType
	subject int
	object  int
}

// NewEvent creates an event about a single entity.
func NewEvent(t EventType, subject int) Event {
	return Event{typ: t, subject: subject, object: NoID}
}

// NewPairEvent creates an event relating two entities (e.g. a marriage).
func NewPairEvent(t EventType, subject, object int) Event {
	return Event{typ: t, subject: subject, object: object}
}

// Type returns the event's type tag.
func (e Event) Type() EventType { return e.typ }

// Subject returns the primary entity id.
func (e Event) Subject() int { return e.subject }

// Object returns the secondary entity id, or NoID.
func (e Event) Object() int { return e.object }

func (e Event) String() string {
	if e.object == NoID {
		return fmt.Sprintf("%s(%d)", e.typ, e.subject)
	}
	return fmt.Sprintf("%s(%d,%d)", e.typ, e.subject, e.object)
}
