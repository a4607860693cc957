package housing

import (
	"fmt"
	"math/rand"

	"github.com/urban-sim/urban-sim/sim"
	"github.com/urban-sim/urban-sim/sim/registry"
)

// RelocationModel moves housed households to another vacant dwelling. A
// household stays in its region with probability LocalShare and searches the
// whole market otherwise. Finding nothing is a failed relocation.
type RelocationModel struct {
	sim.BaseModel
	reg    *registry.Registry
	search *Search
	cfg    sim.RelocationConfig
}

// NewRelocationModel creates the model.
func NewRelocationModel(reg *registry.Registry, search *Search, cfg sim.RelocationConfig) *RelocationModel {
	return &RelocationModel{reg: reg, search: search, cfg: cfg}
}

func (m *RelocationModel) PrepareYear(int) []sim.Event {
	var events []sim.Event
	for _, id := range m.reg.HouseholdIDs() {
		h, _ := m.reg.Household(id)
		if h.DwellingID() != registry.NoID {
			events = append(events, sim.NewEvent(sim.EventRelocation, id))
		}
	}
	return events
}

func (m *RelocationModel) HandleEvent(ev sim.Event, rng *rand.Rand) bool {
	h, ok := m.reg.Household(ev.Subject())
	if !ok || h.DwellingID() == registry.NoID {
		return false
	}
	if rng.Float64() >= m.cfg.Probability {
		return false
	}
	current, _ := m.reg.Dwelling(h.DwellingID())
	region := registry.AnyRegion
	if rng.Float64() < m.cfg.LocalShare {
		region = m.reg.RegionOf(current.Zone)
	}
	target, ok := m.search.Find(rng, h.ID, region)
	if !ok {
		return false
	}
	if err := m.reg.MoveHousehold(h.ID, target); err != nil {
		panic(fmt.Sprintf("relocation: %v", err))
	}
	return true
}
