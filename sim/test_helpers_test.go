package sim

import (
	"fmt"
	"math/rand"
)

// callLog records lifecycle calls across listeners and models in order.
type callLog struct {
	calls []string
}

func (l *callLog) add(format string, args ...any) {
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

// recordingListener logs every lifecycle hook.
type recordingListener struct {
	name string
	log  *callLog
}

func (r *recordingListener) Setup() error {
	r.log.add("%s.setup", r.name)
	return nil
}
func (r *recordingListener) PrepareYear(year int) { r.log.add("%s.prepare.%d", r.name, year) }
func (r *recordingListener) EndYear(year int)     { r.log.add("%s.end.%d", r.name, year) }
func (r *recordingListener) EndSimulation()       { r.log.add("%s.endsim", r.name) }

// countingModel proposes n events per year with subjects 0..n-1, accepts
// events whose draw is below accept, and counts HandleEvent calls per subject.
type countingModel struct {
	typ      EventType
	n        int
	accept   float64
	log      *callLog
	handled  map[int]int
	order    []Event
	panicOn  int // subject that triggers a panic; NoID disables
	setupErr error
}

func newCountingModel(t EventType, n int, accept float64, log *callLog) *countingModel {
	return &countingModel{typ: t, n: n, accept: accept, log: log, handled: make(map[int]int), panicOn: NoID}
}

func (m *countingModel) Setup() error {
	if m.log != nil {
		m.log.add("%s.setup", m.typ)
	}
	return m.setupErr
}

func (m *countingModel) PrepareYear(year int) []Event {
	if m.log != nil {
		m.log.add("%s.prepare.%d", m.typ, year)
	}
	events := make([]Event, m.n)
	for i := range events {
		events[i] = NewEvent(m.typ, i)
	}
	return events
}

func (m *countingModel) HandleEvent(ev Event, rng *rand.Rand) bool {
	if ev.Subject() == m.panicOn {
		panic(fmt.Sprintf("corrupt state at %d", ev.Subject()))
	}
	m.handled[ev.Subject()]++
	m.order = append(m.order, ev)
	return rng.Float64() < m.accept
}

func (m *countingModel) EndYear(year int) {
	if m.log != nil {
		m.log.add("%s.end.%d", m.typ, year)
	}
}

func (m *countingModel) EndSimulation() {
	if m.log != nil {
		m.log.add("%s.endsim", m.typ)
	}
}

// collectingSink keeps every summary it receives.
type collectingSink struct {
	summaries []YearSummary
	err       error
}

func (c *collectingSink) RecordYear(s YearSummary) error {
	c.summaries = append(c.summaries, s)
	return c.err
}

type failingChecker struct{ err error }

func (f failingChecker) CheckInvariants() error { return f.err }
