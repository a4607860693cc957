package sim

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestYearSummary_Print_HumanizedCounts(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := YearSummary{
		Year: 2011,
		Counts: []EventCount{
			{Type: EventRelocation, Attempted: 12345, Succeeded: 6000},
			{Type: EventDivorce},
		},
		TotalAttempted: 12345,
		TotalSucceeded: 6000,
		Started:        start,
		Finished:       start.Add(1500 * time.Millisecond),
	}
	var buf bytes.Buffer
	s.Print(&buf)

	out := buf.String()
	assert.Contains(t, out, "=== Year 2011 ===")
	assert.Contains(t, out, "12,345")
	assert.Contains(t, out, "6,000")
	assert.Contains(t, out, "( 48.6%)")
	assert.Contains(t, out, "divorce")
	assert.Contains(t, out, "1.5s")
	assert.Equal(t, 1500*time.Millisecond, s.Duration())
}

func TestYearSummary_Count_MissingType(t *testing.T) {
	s := YearSummary{Counts: []EventCount{{Type: EventDeath, Attempted: 3, Succeeded: 1}}}
	c, ok := s.Count(EventDeath)
	assert.True(t, ok)
	assert.Equal(t, 2, c.Rejected())
	_, ok = s.Count(EventBirth)
	assert.False(t, ok)
}

func TestEvent_Accessors(t *testing.T) {
	ev := NewPairEvent(EventMarriage, 3, 9)
	assert.Equal(t, EventMarriage, ev.Type())
	assert.Equal(t, 3, ev.Subject())
	assert.Equal(t, 9, ev.Object())
	assert.Equal(t, "marriage(3,9)", ev.String())

	single := NewEvent(EventDeath, 4)
	assert.Equal(t, NoID, single.Object())
	assert.Equal(t, "death(4)", single.String())
}

func TestAllEventTypes_AllValid(t *testing.T) {
	types := AllEventTypes()
	assert.Len(t, types, 13)
	for _, et := range types {
		assert.True(t, IsValidEventType(string(et)), et)
	}
	assert.False(t, IsValidEventType("teleport"))
	types[0] = "mutated"
	assert.Equal(t, EventBirth, AllEventTypes()[0])
}
