package lifecourse

import (
	"math/rand"

	"github.com/urban-sim/urban-sim/sim"
	"github.com/urban-sim/urban-sim/sim/housing"
	"github.com/urban-sim/urban-sim/sim/probability"
	"github.com/urban-sim/urban-sim/sim/registry"
)

// === Death ===

// DeathModel proposes one death event per person. The household of the
// deceased is dissolved when no adult remains.
type DeathModel struct {
	sim.BaseModel
	reg  *registry.Registry
	calc probability.Calculator
}

func NewDeathModel(reg *registry.Registry, calc probability.Calculator) *DeathModel {
	return &DeathModel{reg: reg, calc: calc}
}

func (m *DeathModel) PrepareYear(int) []sim.Event {
	ids := m.reg.PersonIDs()
	events := make([]sim.Event, len(ids))
	for i, id := range ids {
		events[i] = sim.NewEvent(sim.EventDeath, id)
	}
	return events
}

func (m *DeathModel) HandleEvent(ev sim.Event, rng *rand.Rand) bool {
	p, ok := m.reg.Person(ev.Subject())
	if !ok {
		return false
	}
	if !accept(rng, m.calc, personAttributes(m.reg, p)) {
		return false
	}
	mustRemoved("death")(m.reg.RemovePerson(p.ID))
	return true
}

// === Birth ===

// BirthModel proposes one birth event per woman of fertile age. The child
// joins the mother's household.
type BirthModel struct {
	sim.BaseModel
	reg      *registry.Registry
	calc     probability.Calculator
	min, max int
}

func NewBirthModel(reg *registry.Registry, calc probability.Calculator, minAge, maxAge int) *BirthModel {
	return &BirthModel{reg: reg, calc: calc, min: minAge, max: maxAge}
}

func (m *BirthModel) fertile(p *registry.Person) bool {
	return p.Sex == registry.Female && p.Age >= m.min && p.Age <= m.max
}

func (m *BirthModel) PrepareYear(int) []sim.Event {
	var events []sim.Event
	for _, id := range m.reg.PersonIDs() {
		if p, _ := m.reg.Person(id); m.fertile(p) {
			events = append(events, sim.NewEvent(sim.EventBirth, id))
		}
	}
	return events
}

func (m *BirthModel) HandleEvent(ev sim.Event, rng *rand.Rand) bool {
	mother, ok := m.reg.Person(ev.Subject())
	if !ok || !m.fertile(mother) {
		return false
	}
	if !accept(rng, m.calc, personAttributes(m.reg, mother)) {
		return false
	}
	child := registry.NewPerson(m.reg.NextPersonID(), 0, drawSex(rng), registry.RoleChild, registry.Toddler)
	must("birth", m.reg.AddPerson(child, mother.HouseholdID()))
	return true
}

// === Marriage ===

// maxPartnerTries bounds the partner search of one marriage event.
const maxPartnerTries = 20

// MarriageModel proposes one event per single adult. The partner is drawn
// uniformly from this year's proposers and moves into the proposer's
// household, taking along their children when they were the only adult.
type MarriageModel struct {
	sim.BaseModel
	reg  *registry.Registry
	calc probability.Calculator
	pool []int
}

func NewMarriageModel(reg *registry.Registry, calc probability.Calculator) *MarriageModel {
	return &MarriageModel{reg: reg, calc: calc}
}

func eligibleForMarriage(p *registry.Person) bool {
	return p.Adult() && p.PartnerID() == registry.NoID
}

func (m *MarriageModel) PrepareYear(int) []sim.Event {
	m.pool = m.pool[:0]
	var events []sim.Event
	for _, id := range m.reg.PersonIDs() {
		if p, _ := m.reg.Person(id); eligibleForMarriage(p) {
			m.pool = append(m.pool, id)
			events = append(events, sim.NewEvent(sim.EventMarriage, id))
		}
	}
	return events
}

func (m *MarriageModel) findPartner(rng *rand.Rand, p *registry.Person) (*registry.Person, bool) {
	if len(m.pool) == 0 {
		return nil, false
	}
	for try := 0; try < maxPartnerTries; try++ {
		c, ok := m.reg.Person(m.pool[rng.Intn(len(m.pool))])
		if ok && c.ID != p.ID && c.Sex == p.Sex.Opposite() && eligibleForMarriage(c) &&
			c.HouseholdID() != p.HouseholdID() {
			return c, true
		}
	}
	return nil, false
}

func (m *MarriageModel) HandleEvent(ev sim.Event, rng *rand.Rand) bool {
	p, ok := m.reg.Person(ev.Subject())
	if !ok || !eligibleForMarriage(p) {
		return false
	}
	if !accept(rng, m.calc, personAttributes(m.reg, p)) {
		return false
	}
	partner, ok := m.findPartner(rng, p)
	if !ok {
		return false
	}
	from, to := partner.HouseholdID(), p.HouseholdID()
	if m.reg.AdultCount(from) == 1 {
		for _, member := range m.reg.Members(from) {
			if member.ID != partner.ID {
				mustRemoved("marriage")(m.reg.MovePersonToHousehold(member.ID, to))
			}
		}
	}
	mustRemoved("marriage")(m.reg.MovePersonToHousehold(partner.ID, to))
	must("marriage", m.reg.Marry(p.ID, partner.ID))
	return true
}

// === Divorce ===

// DivorceModel proposes one event per couple (the lower id proposes). One
// partner, drawn at random, forms a new household in a vacant dwelling;
// without a vacant dwelling the divorce does not happen.
type DivorceModel struct {
	sim.BaseModel
	reg    *registry.Registry
	search *housing.Search
	calc   probability.Calculator
}

func NewDivorceModel(reg *registry.Registry, search *housing.Search, calc probability.Calculator) *DivorceModel {
	return &DivorceModel{reg: reg, search: search, calc: calc}
}

func (m *DivorceModel) PrepareYear(int) []sim.Event {
	var events []sim.Event
	for _, id := range m.reg.PersonIDs() {
		p, _ := m.reg.Person(id)
		if p.PartnerID() != registry.NoID && p.ID < p.PartnerID() {
			events = append(events, sim.NewEvent(sim.EventDivorce, id))
		}
	}
	return events
}

func (m *DivorceModel) HandleEvent(ev sim.Event, rng *rand.Rand) bool {
	p, ok := m.reg.Person(ev.Subject())
	if !ok || p.PartnerID() == registry.NoID {
		return false
	}
	if !accept(rng, m.calc, personAttributes(m.reg, p)) {
		return false
	}
	leaver := p
	if rng.Intn(2) == 1 {
		leaver, _ = m.reg.Person(p.PartnerID())
	}
	dwelling, ok := m.search.Find(rng, leaver.HouseholdID(), registry.AnyRegion)
	if !ok {
		return false
	}
	must("divorce", m.reg.Divorce(p.ID))
	h := m.reg.NewHousehold()
	mustRemoved("divorce")(m.reg.MovePersonToHousehold(leaver.ID, h.ID))
	must("divorce", m.reg.MoveHousehold(h.ID, dwelling))
	return true
}

// === Leave parental household ===

// LeaveParentsModel proposes one event per adult child living with other
// adults. The child forms a single-person household in a vacant dwelling.
type LeaveParentsModel struct {
	sim.BaseModel
	reg    *registry.Registry
	search *housing.Search
	calc   probability.Calculator
}

func NewLeaveParentsModel(reg *registry.Registry, search *housing.Search, calc probability.Calculator) *LeaveParentsModel {
	return &LeaveParentsModel{reg: reg, search: search, calc: calc}
}

func (m *LeaveParentsModel) canLeave(p *registry.Person) bool {
	return p.Role == registry.RoleChild && p.Adult() && m.reg.AdultCount(p.HouseholdID()) > 1
}

func (m *LeaveParentsModel) PrepareYear(int) []sim.Event {
	var events []sim.Event
	for _, id := range m.reg.PersonIDs() {
		if p, _ := m.reg.Person(id); m.canLeave(p) {
			events = append(events, sim.NewEvent(sim.EventLeaveParents, id))
		}
	}
	return events
}

func (m *LeaveParentsModel) HandleEvent(ev sim.Event, rng *rand.Rand) bool {
	p, ok := m.reg.Person(ev.Subject())
	if !ok || !m.canLeave(p) {
		return false
	}
	if !accept(rng, m.calc, personAttributes(m.reg, p)) {
		return false
	}
	dwelling, ok := m.search.Find(rng, p.HouseholdID(), registry.AnyRegion)
	if !ok {
		return false
	}
	h := m.reg.NewHousehold()
	mustRemoved("leave_parents")(m.reg.MovePersonToHousehold(p.ID, h.ID))
	p.Role = registry.RoleSingle
	must("leave_parents", m.reg.MoveHousehold(h.ID, dwelling))
	return true
}
