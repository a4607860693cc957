// sim/scheduler.go
package sim

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/urban-sim/urban-sim/sim/trace"
)

// EventRules switches event types on or off for a run.
type EventRules map[EventType]bool

// Enabled reports whether events of type t are proposed this run.
func (r EventRules) Enabled(t EventType) bool { return r[t] }

// AllEnabled returns rules with every known event type switched on.
func AllEnabled() EventRules {
	r := make(EventRules, len(allEventTypes))
	for _, t := range allEventTypes {
		r[t] = true
	}
	return r
}

// ErrAborted is wrapped by every error returned after a run has aborted.
var ErrAborted = errors.New("simulation aborted")

type schedulerState int

const (
	stateRegistering schedulerState = iota
	stateReady
	stateEnded
	stateAborted
)

// Scheduler drives the yearly propose / shuffle / apply cycle. It owns the
// single random stream every model draws from.
type Scheduler struct {
	rng       *rand.Rand
	rules     EventRules
	models    map[EventType]EventModel
	order     []EventType // registration order
	listeners []AnnualListener
	checkers  []InvariantChecker
	sinks     []ResultSink
	trace     *trace.EventTrace

	buffer    []Event
	attempted map[EventType]int
	succeeded map[EventType]int

	state     schedulerState
	abortErr  error
	lastYear  int
	hasYear   bool
	summaries []YearSummary
}

// NewScheduler creates a scheduler whose event stream is the events
// subsystem of rng.
func NewScheduler(rng *PartitionedRNG, rules EventRules) *Scheduler {
	if rules == nil {
		rules = EventRules{}
	}
	return &Scheduler{
		rng:       rng.ForSubsystem(SubsystemEvents),
		rules:     rules,
		models:    make(map[EventType]EventModel),
		attempted: make(map[EventType]int),
		succeeded: make(map[EventType]int),
	}
}

// RegisterEventModel makes model the owner of event type t.
func (s *Scheduler) RegisterEventModel(t EventType, model EventModel) error {
	if s.state != stateRegistering {
		return fmt.Errorf("cannot register event model %q after setup", t)
	}
	if !IsValidEventType(string(t)) {
		return fmt.Errorf("unknown event type %q", t)
	}
	if model == nil {
		return fmt.Errorf("nil event model for %q", t)
	}
	if _, dup := s.models[t]; dup {
		return fmt.Errorf("event type %q already has a model", t)
	}
	s.models[t] = model
	s.order = append(s.order, t)
	return nil
}

// RegisterAnnualListener appends a listener; listeners run in registration order.
func (s *Scheduler) RegisterAnnualListener(l AnnualListener) {
	s.listeners = append(s.listeners, l)
}

// RegisterInvariantChecker adds a whole-state check run at the end of every year.
func (s *Scheduler) RegisterInvariantChecker(c InvariantChecker) {
	s.checkers = append(s.checkers, c)
}

// AddResultSink adds a receiver for per-year summaries.
func (s *Scheduler) AddResultSink(sink ResultSink) {
	s.sinks = append(s.sinks, sink)
}

// SetTrace attaches an event outcome trace; nil or level none disables it.
func (s *Scheduler) SetTrace(t *trace.EventTrace) {
	s.trace = t
}

// ActiveTypes returns the enabled event types with a registered model, in
// registration order.
func (s *Scheduler) ActiveTypes() []EventType {
	var out []EventType
	for _, t := range s.order {
		if s.rules.Enabled(t) {
			out = append(out, t)
		}
	}
	return out
}

// Setup validates the configuration and calls Setup on every listener, then
// every active model. It must be called exactly once before the first year.
func (s *Scheduler) Setup() error {
	if s.state != stateRegistering {
		return fmt.Errorf("setup called twice")
	}
	for _, t := range allEventTypes {
		if s.rules.Enabled(t) {
			if _, ok := s.models[t]; !ok {
				return fmt.Errorf("event type %q is enabled but has no registered model", t)
			}
		}
	}
	for t := range s.rules {
		if !IsValidEventType(string(t)) {
			return fmt.Errorf("unknown event type %q in event rules", t)
		}
	}
	for _, t := range s.order {
		if !s.rules.Enabled(t) {
			logrus.Debugf("event type %s is disabled; its model will not run", t)
		}
	}

	for i, l := range s.listeners {
		if err := l.Setup(); err != nil {
			return fmt.Errorf("setting up listener %d (%T): %w", i, l, err)
		}
	}
	for _, t := range s.ActiveTypes() {
		if err := s.models[t].Setup(); err != nil {
			return fmt.Errorf("setting up %s model: %w", t, err)
		}
	}
	s.state = stateReady
	logrus.Infof("Scheduler ready: %d listeners, active event types %v", len(s.listeners), s.ActiveTypes())
	return nil
}

// Simulate runs one year: prepare, process, finish. Years must be strictly
// increasing. A panic raised by a model or the registry aborts the run and is
// returned as an error; no further years can be simulated afterwards.
func (s *Scheduler) Simulate(year int) (err error) {
	switch s.state {
	case stateRegistering:
		return fmt.Errorf("simulate(%d) called before setup", year)
	case stateEnded:
		return fmt.Errorf("simulate(%d) called after end of simulation", year)
	case stateAborted:
		return fmt.Errorf("simulate(%d): %w", year, s.abortErr)
	}
	if s.hasYear && year <= s.lastYear {
		return fmt.Errorf("simulate(%d): years must be strictly increasing, last was %d", year, s.lastYear)
	}
	s.lastYear, s.hasYear = year, true

	defer func() {
		if r := recover(); r != nil {
			err = s.abort(fmt.Errorf("year %d: %v", year, r))
		}
	}()

	started := time.Now()
	s.prepareYear(year)
	s.processEvents(year)
	return s.finishYear(year, started)
}

func (s *Scheduler) abort(cause error) error {
	s.state = stateAborted
	s.abortErr = fmt.Errorf("%w: %w", ErrAborted, cause)
	s.buffer = s.buffer[:0]
	logrus.Errorf("Simulation aborted: %v", cause)
	return s.abortErr
}

func (s *Scheduler) prepareYear(year int) {
	logrus.Infof("=== Preparing year %d ===", year)
	for _, l := range s.listeners {
		l.PrepareYear(year)
	}
	for _, t := range s.ActiveTypes() {
		events := s.models[t].PrepareYear(year)
		for _, ev := range events {
			if ev.Type() != t {
				panic(fmt.Sprintf("%s model proposed a %s event", t, ev.Type()))
			}
		}
		s.buffer = append(s.buffer, events...)
	}
	s.rng.Shuffle(len(s.buffer), func(i, j int) {
		s.buffer[i], s.buffer[j] = s.buffer[j], s.buffer[i]
	})
	logrus.Infof("Year %d: %d events proposed", year, len(s.buffer))
}

func (s *Scheduler) processEvents(year int) {
	tracing := s.trace.Enabled()
	for i, ev := range s.buffer {
		t := ev.Type()
		s.attempted[t]++
		applied := s.models[t].HandleEvent(ev, s.rng)
		if applied {
			s.succeeded[t]++
		}
		logrus.Debugf("[year %d #%d] %s applied=%v", year, i, ev, applied)
		if tracing {
			s.trace.RecordEvent(trace.EventRecord{
				Year: year, Seq: i, Type: string(t),
				Subject: ev.Subject(), Object: ev.Object(), Applied: applied,
			})
		}
	}
}

func (s *Scheduler) finishYear(year int, started time.Time) error {
	for _, l := range s.listeners {
		l.EndYear(year)
	}
	for _, t := range s.ActiveTypes() {
		s.models[t].EndYear(year)
	}
	for _, c := range s.checkers {
		if err := c.CheckInvariants(); err != nil {
			return s.abort(fmt.Errorf("invariant violation after year %d: %w", year, err))
		}
	}

	summary := YearSummary{Year: year, Started: started}
	for _, t := range allEventTypes {
		if _, ok := s.models[t]; !ok || !s.rules.Enabled(t) {
			continue
		}
		c := EventCount{Type: t, Attempted: s.attempted[t], Succeeded: s.succeeded[t]}
		summary.Counts = append(summary.Counts, c)
		summary.TotalAttempted += c.Attempted
		summary.TotalSucceeded += c.Succeeded
	}
	summary.Finished = time.Now()
	s.summaries = append(s.summaries, summary)

	for _, c := range summary.Counts {
		logrus.Infof("Year %d %-15s attempted=%d succeeded=%d", year, c.Type, c.Attempted, c.Succeeded)
	}
	logrus.Infof("Year %d finished: %d/%d events applied", year, summary.TotalSucceeded, summary.TotalAttempted)

	s.buffer = s.buffer[:0]
	clear(s.attempted)
	clear(s.succeeded)

	for _, sink := range s.sinks {
		if err := sink.RecordYear(summary); err != nil {
			return s.abort(fmt.Errorf("recording year %d: %w", year, err))
		}
	}
	return nil
}

// EndSimulation calls EndSimulation on every listener, then every active
// model, exactly once.
func (s *Scheduler) EndSimulation() (err error) {
	switch s.state {
	case stateRegistering:
		return fmt.Errorf("end of simulation before setup")
	case stateEnded:
		return fmt.Errorf("end of simulation called twice")
	case stateAborted:
		return s.abortErr
	}
	defer func() {
		if r := recover(); r != nil {
			err = s.abort(fmt.Errorf("end of simulation: %v", r))
		}
	}()
	for _, l := range s.listeners {
		l.EndSimulation()
	}
	for _, t := range s.ActiveTypes() {
		s.models[t].EndSimulation()
	}
	s.state = stateEnded
	logrus.Infof("Simulation ended after %d years", len(s.summaries))
	return nil
}

// Summaries returns the summaries of all finished years.
func (s *Scheduler) Summaries() []YearSummary {
	out := make([]YearSummary, len(s.summaries))
	copy(out, s.summaries)
	return out
}

// Err returns the abort error, or nil if the run is healthy.
func (s *Scheduler) Err() error {
	return s.abortErr
}
