package lifecourse

import (
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/urban-sim/urban-sim/sim"
	"github.com/urban-sim/urban-sim/sim/housing"
	"github.com/urban-sim/urban-sim/sim/probability"
	"github.com/urban-sim/urban-sim/sim/registry"
)

// EmigrationModel proposes one event per household. An emigrating household
// leaves with all its members and vacates its dwelling.
type EmigrationModel struct {
	sim.BaseModel
	reg  *registry.Registry
	calc probability.Calculator
}

func NewEmigrationModel(reg *registry.Registry, calc probability.Calculator) *EmigrationModel {
	return &EmigrationModel{reg: reg, calc: calc}
}

func (m *EmigrationModel) PrepareYear(int) []sim.Event {
	ids := m.reg.HouseholdIDs()
	events := make([]sim.Event, len(ids))
	for i, id := range ids {
		events[i] = sim.NewEvent(sim.EventEmigration, id)
	}
	return events
}

func (m *EmigrationModel) HandleEvent(ev sim.Event, rng *rand.Rand) bool {
	h, ok := m.reg.Household(ev.Subject())
	if !ok {
		return false
	}
	if !accept(rng, m.calc, householdAttributes(m.reg, h)) {
		return false
	}
	mustRemoved("emigration")(m.reg.RemoveHousehold(h.ID))
	return true
}

// ImmigrationModel proposes a fixed number of arrivals per year,
// round(N·(1+growth)^(year-first)). Each arrival is a new household of one
// to MaxHouseholdSize members that needs a vacant dwelling to settle.
type ImmigrationModel struct {
	sim.BaseModel
	reg       *registry.Registry
	search    *housing.Search
	cfg       sim.MigrationConfig
	schoolAge int

	firstYear int
	started   bool
}

func NewImmigrationModel(reg *registry.Registry, search *housing.Search, cfg sim.MigrationConfig, schoolAge int) *ImmigrationModel {
	return &ImmigrationModel{reg: reg, search: search, cfg: cfg, schoolAge: schoolAge}
}

// Arrivals returns the number of immigrant households proposed in year.
func (m *ImmigrationModel) Arrivals(year int) int {
	if !m.started {
		return m.cfg.ImmigrantsPerYear
	}
	n := float64(m.cfg.ImmigrantsPerYear) * math.Pow(1+m.cfg.ImmigrantGrowth, float64(year-m.firstYear))
	return max(0, int(math.Round(n)))
}

func (m *ImmigrationModel) PrepareYear(year int) []sim.Event {
	if !m.started {
		m.firstYear, m.started = year, true
	}
	n := m.Arrivals(year)
	events := make([]sim.Event, n)
	for k := range events {
		events[k] = sim.NewEvent(sim.EventImmigration, k)
	}
	logrus.Debugf("immigration: %d arrivals proposed for %d", n, year)
	return events
}

func (m *ImmigrationModel) HandleEvent(_ sim.Event, rng *rand.Rand) bool {
	size := 1 + rng.Intn(max(1, m.cfg.MaxHouseholdSize))
	dwelling, ok := m.search.Find(rng, sim.NoID, registry.AnyRegion)
	if !ok {
		return false
	}
	h := registry.NewHousehold(m.reg.NextHouseholdID())
	must("immigration", m.reg.AddHousehold(h))

	head := registry.NewPerson(m.reg.NextPersonID(), 20+rng.Intn(40), drawSex(rng), registry.RoleSingle, registry.Unemployed)
	must("immigration", m.reg.AddPerson(head, h.ID))
	if size >= 2 {
		spouse := registry.NewPerson(m.reg.NextPersonID(), 20+rng.Intn(40), head.Sex.Opposite(), registry.RoleSingle, registry.Unemployed)
		must("immigration", m.reg.AddPerson(spouse, h.ID))
		must("immigration", m.reg.Marry(head.ID, spouse.ID))
	}
	for i := 2; i < size; i++ {
		age := rng.Intn(registry.AdultAge)
		occupation := registry.Toddler
		if age >= m.schoolAge {
			occupation = registry.Student
		}
		child := registry.NewPerson(m.reg.NextPersonID(), age, drawSex(rng), registry.RoleChild, occupation)
		must("immigration", m.reg.AddPerson(child, h.ID))
	}
	must("immigration", m.reg.MoveHousehold(h.ID, dwelling))
	return true
}

func drawSex(rng *rand.Rand) registry.Sex {
	if rng.Intn(2) == 1 {
		return registry.Female
	}
	return registry.Male
}
