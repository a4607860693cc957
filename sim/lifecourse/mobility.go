package lifecourse

import (
	"math/rand"

	"github.com/urban-sim/urban-sim/sim"
	"github.com/urban-sim/urban-sim/sim/probability"
	"github.com/urban-sim/urban-sim/sim/registry"
)

// DriverLicenseModel proposes one event per unlicensed person at or above
// the license age.
type DriverLicenseModel struct {
	sim.BaseModel
	reg        *registry.Registry
	calc       probability.Calculator
	licenseAge int
}

func NewDriverLicenseModel(reg *registry.Registry, calc probability.Calculator, licenseAge int) *DriverLicenseModel {
	return &DriverLicenseModel{reg: reg, calc: calc, licenseAge: licenseAge}
}

func (m *DriverLicenseModel) eligible(p *registry.Person) bool {
	return !p.DriverLicense && p.Age >= m.licenseAge
}

func (m *DriverLicenseModel) PrepareYear(int) []sim.Event {
	var events []sim.Event
	for _, id := range m.reg.PersonIDs() {
		if p, _ := m.reg.Person(id); m.eligible(p) {
			events = append(events, sim.NewEvent(sim.EventDriverLicense, id))
		}
	}
	return events
}

func (m *DriverLicenseModel) HandleEvent(ev sim.Event, rng *rand.Rand) bool {
	p, ok := m.reg.Person(ev.Subject())
	if !ok || !m.eligible(p) {
		return false
	}
	if !accept(rng, m.calc, personAttributes(m.reg, p)) {
		return false
	}
	p.DriverLicense = true
	return true
}

// CarOwnershipModel proposes one event per household. A household with more
// licenses than autos may gain an auto; one with more autos than licenses may
// lose one. Balanced households are left alone without a draw.
type CarOwnershipModel struct {
	sim.BaseModel
	reg  *registry.Registry
	gain probability.Calculator
	loss probability.Calculator
}

func NewCarOwnershipModel(reg *registry.Registry, gain, loss probability.Calculator) *CarOwnershipModel {
	return &CarOwnershipModel{reg: reg, gain: gain, loss: loss}
}

func (m *CarOwnershipModel) PrepareYear(int) []sim.Event {
	ids := m.reg.HouseholdIDs()
	events := make([]sim.Event, len(ids))
	for i, id := range ids {
		events[i] = sim.NewEvent(sim.EventCarOwnership, id)
	}
	return events
}

func (m *CarOwnershipModel) HandleEvent(ev sim.Event, rng *rand.Rand) bool {
	h, ok := m.reg.Household(ev.Subject())
	if !ok {
		return false
	}
	a := householdAttributes(m.reg, h)
	switch {
	case a.Licenses > a.Autos:
		if !accept(rng, m.gain, a) {
			return false
		}
		h.Autos++
	case a.Autos > a.Licenses:
		if !accept(rng, m.loss, a) {
			return false
		}
		h.Autos--
	default:
		return false
	}
	return true
}
