// Package scenario wires a validated Properties file and a loaded population
// into a ready scheduler: every event model, the annual listeners, the
// registry invariant check and the optional event trace.
package scenario

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/urban-sim/urban-sim/sim"
	"github.com/urban-sim/urban-sim/sim/accessibility"
	"github.com/urban-sim/urban-sim/sim/economy"
	"github.com/urban-sim/urban-sim/sim/geo"
	"github.com/urban-sim/urban-sim/sim/housing"
	"github.com/urban-sim/urban-sim/sim/lifecourse"
	"github.com/urban-sim/urban-sim/sim/registry"
	"github.com/urban-sim/urban-sim/sim/results"
	"github.com/urban-sim/urban-sim/sim/synth"
	"github.com/urban-sim/urban-sim/sim/trace"
)

// Run is an assembled simulation.
type Run struct {
	Props     *sim.Properties
	Scheduler *sim.Scheduler
	Registry  *registry.Registry
	Geography *geo.Geography

	Prices        *housing.PriceUpdater
	Market        *results.MarketListener
	Accessibility *accessibility.Listener
	Jobs          *economy.JobForecast
	Immigration   *lifecourse.ImmigrationModel
	Trace         *trace.EventTrace
}

// Build assembles a run. Listeners run in the order aging, job forecast,
// accessibility, price updater, market report; models are registered for
// every event type and the event rules decide which of them run.
func Build(props *sim.Properties, pop *synth.Population, rng *sim.PartitionedRNG) (*Run, error) {
	if err := props.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	reg, g := pop.Registry, pop.Geography

	calcs, err := lifecourse.NewCalculators(props.Demography.Probabilities)
	if err != nil {
		return nil, err
	}
	curves, err := housing.Curves(props.Housing)
	if err != nil {
		return nil, err
	}
	construction, err := housing.NewConstructionModel(reg, g, props.Housing)
	if err != nil {
		return nil, err
	}

	r := &Run{
		Props:         props,
		Scheduler:     sim.NewScheduler(rng, props.Rules()),
		Registry:      reg,
		Geography:     g,
		Prices:        housing.NewPriceUpdater(reg, curves),
		Accessibility: accessibility.NewListener(reg, g, geo.NewEuclideanTravelTimes(g, nil), props.Accessibility),
		Jobs:          economy.NewJobForecast(reg, props.Economy),
	}
	r.Market = results.NewMarketListener(reg, r.Prices)

	s := r.Scheduler
	s.RegisterAnnualListener(lifecourse.NewAgingListener(reg, props.Demography))
	s.RegisterAnnualListener(r.Jobs)
	s.RegisterAnnualListener(r.Accessibility)
	s.RegisterAnnualListener(r.Prices)
	s.RegisterAnnualListener(r.Market)
	s.RegisterInvariantChecker(reg)

	search := housing.NewSearch(reg)
	demo := props.Demography
	r.Immigration = lifecourse.NewImmigrationModel(reg, search, props.Migration, demo.SchoolAge)
	models := []struct {
		t sim.EventType
		m sim.EventModel
	}{
		{sim.EventBirth, lifecourse.NewBirthModel(reg, calcs.Birth, demo.MinFertileAge, demo.MaxFertileAge)},
		{sim.EventDeath, lifecourse.NewDeathModel(reg, calcs.Death)},
		{sim.EventMarriage, lifecourse.NewMarriageModel(reg, calcs.Marriage)},
		{sim.EventDivorce, lifecourse.NewDivorceModel(reg, search, calcs.Divorce)},
		{sim.EventLeaveParents, lifecourse.NewLeaveParentsModel(reg, search, calcs.LeaveParents)},
		{sim.EventEmigration, lifecourse.NewEmigrationModel(reg, calcs.Emigration)},
		{sim.EventImmigration, r.Immigration},
		{sim.EventRelocation, housing.NewRelocationModel(reg, search, props.Housing.Relocation)},
		{sim.EventRenovation, housing.NewRenovationModel(reg, props.Housing.Renovation)},
		{sim.EventConstruction, construction},
		{sim.EventDriverLicense, lifecourse.NewDriverLicenseModel(reg, calcs.DriverLicense, demo.LicenseAge)},
		{sim.EventCarOwnership, lifecourse.NewCarOwnershipModel(reg, calcs.CarGain, calcs.CarLoss)},
		{sim.EventEmployment, lifecourse.NewEmploymentModel(reg, calcs.Employment, demo.RetirementAge)},
	}
	for _, m := range models {
		if err := s.RegisterEventModel(m.t, m.m); err != nil {
			return nil, err
		}
	}

	if trace.TraceLevel(props.TraceLevel) == trace.TraceLevelEvents {
		r.Trace = trace.NewEventTrace(trace.TraceConfig{Level: trace.TraceLevelEvents})
		s.SetTrace(r.Trace)
	}
	return r, nil
}

// AddSink attaches a receiver of both year summaries and market reports.
func (r *Run) AddSink(sink interface {
	sim.ResultSink
	results.MarketSink
}) {
	r.Scheduler.AddResultSink(sink)
	r.Market.AddSink(sink)
}

// Execute sets the scheduler up, simulates every year from StartYear to
// EndYear and ends the simulation. It stops at the first error.
func (r *Run) Execute() error {
	if err := r.Scheduler.Setup(); err != nil {
		return err
	}
	for year := r.Props.StartYear; year <= r.Props.EndYear; year++ {
		if err := r.Scheduler.Simulate(year); err != nil {
			return err
		}
	}
	if err := r.Scheduler.EndSimulation(); err != nil {
		return err
	}
	logrus.Infof("Run finished: %d households, %d persons, %d dwellings (%d vacant)",
		r.Registry.HouseholdCount(), r.Registry.PersonCount(), r.Registry.DwellingCount(), r.Registry.Vacancies().Len())
	return nil
}

// Load generates the synthetic population of props and builds a run on it.
func Load(props *sim.Properties) (*Run, error) {
	if err := props.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(props.Seed))
	pop, err := synth.Generate(props, rng)
	if err != nil {
		return nil, err
	}
	return Build(props, pop, rng)
}
