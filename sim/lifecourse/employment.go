package lifecourse

import (
	"math/rand"

	"github.com/urban-sim/urban-sim/sim"
	"github.com/urban-sim/urban-sim/sim/probability"
	"github.com/urban-sim/urban-sim/sim/registry"
)

// EmploymentModel proposes one event per unemployed working-age adult. An
// accepted event assigns a vacant job drawn uniformly from the jobs that were
// vacant when the year was prepared.
type EmploymentModel struct {
	sim.BaseModel
	reg           *registry.Registry
	calc          probability.Calculator
	retirementAge int

	vacant []int
}

func NewEmploymentModel(reg *registry.Registry, calc probability.Calculator, retirementAge int) *EmploymentModel {
	return &EmploymentModel{reg: reg, calc: calc, retirementAge: retirementAge}
}

func (m *EmploymentModel) seeking(p *registry.Person) bool {
	return p.Occupation == registry.Unemployed && p.Adult() && p.Age < m.retirementAge &&
		p.JobID() == registry.NoID
}

func (m *EmploymentModel) PrepareYear(int) []sim.Event {
	m.vacant = m.vacant[:0]
	for _, id := range m.reg.JobIDs() {
		if j, _ := m.reg.Job(id); j.Vacant() {
			m.vacant = append(m.vacant, id)
		}
	}
	var events []sim.Event
	for _, id := range m.reg.PersonIDs() {
		if p, _ := m.reg.Person(id); m.seeking(p) {
			events = append(events, sim.NewEvent(sim.EventEmployment, id))
		}
	}
	return events
}

// VacantJobs returns the number of jobs still open this year.
func (m *EmploymentModel) VacantJobs() int { return len(m.vacant) }

func (m *EmploymentModel) HandleEvent(ev sim.Event, rng *rand.Rand) bool {
	p, ok := m.reg.Person(ev.Subject())
	if !ok || !m.seeking(p) {
		return false
	}
	if !accept(rng, m.calc, personAttributes(m.reg, p)) {
		return false
	}
	for len(m.vacant) > 0 {
		i := rng.Intn(len(m.vacant))
		id := m.vacant[i]
		last := len(m.vacant) - 1
		m.vacant[i] = m.vacant[last]
		m.vacant = m.vacant[:last]
		if j, ok := m.reg.Job(id); ok && j.Vacant() {
			must("employment", m.reg.AssignJob(p.ID, id))
			return true
		}
	}
	return false
}
