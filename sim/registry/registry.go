package registry

import (
	"fmt"
	"maps"
	"slices"
)

// Registry is the arena of all simulated entities. Every method that changes
// a link updates both ends and the derived indices before it returns, so the
// next event never observes a half-applied mutation.
type Registry struct {
	regionOf func(zone int) int

	persons    map[int]*Person
	households map[int]*Household
	dwellings  map[int]*Dwelling
	jobs       map[int]*Job
	schools    map[int]*School

	vacancies *VacancyIndex
	quality   *QualityTracker

	nextPersonID    int
	nextHouseholdID int
	nextDwellingID  int
	nextJobID       int
}

// New creates an empty registry. regionOf maps a zone to its region; a nil
// regionOf puts every zone in region 0.
// Panics if qualityLevels < 1.
func New(qualityLevels int, regionOf func(zone int) int) *Registry {
	if qualityLevels < 1 {
		panic(fmt.Sprintf("registry: quality levels must be >= 1, got %d", qualityLevels))
	}
	if regionOf == nil {
		regionOf = func(int) int { return 0 }
	}
	return &Registry{
		regionOf:   regionOf,
		persons:    make(map[int]*Person),
		households: make(map[int]*Household),
		dwellings:  make(map[int]*Dwelling),
		jobs:       make(map[int]*Job),
		schools:    make(map[int]*School),
		vacancies:  newVacancyIndex(),
		quality:    newQualityTracker(qualityLevels),
	}
}

// Vacancies returns the vacancy index (read-only for callers).
func (r *Registry) Vacancies() *VacancyIndex { return r.vacancies }

// Quality returns the quality-share tracker (read-only for callers, except
// FreezeInitialShares).
func (r *Registry) Quality() *QualityTracker { return r.quality }

// RegionOf maps a zone to its region.
func (r *Registry) RegionOf(zone int) int { return r.regionOf(zone) }

// MarketKeyOf returns the submarket a dwelling belongs to.
func (r *Registry) MarketKeyOf(d *Dwelling) MarketKey {
	return MarketKey{Region: r.regionOf(d.Zone), Type: d.Type}
}

// === Lookups ===

func (r *Registry) Person(id int) (*Person, bool) {
	p, ok := r.persons[id]
	return p, ok
}

func (r *Registry) Household(id int) (*Household, bool) {
	h, ok := r.households[id]
	return h, ok
}

func (r *Registry) Dwelling(id int) (*Dwelling, bool) {
	d, ok := r.dwellings[id]
	return d, ok
}

func (r *Registry) Job(id int) (*Job, bool) {
	j, ok := r.jobs[id]
	return j, ok
}

func (r *Registry) School(id int) (*School, bool) {
	s, ok := r.schools[id]
	return s, ok
}

// Sorted id listings. Map iteration order is random, so every caller that
// proposes events must go through these to stay reproducible.
func (r *Registry) PersonIDs() []int    { return slices.Sorted(maps.Keys(r.persons)) }
func (r *Registry) HouseholdIDs() []int { return slices.Sorted(maps.Keys(r.households)) }
func (r *Registry) DwellingIDs() []int  { return slices.Sorted(maps.Keys(r.dwellings)) }
func (r *Registry) JobIDs() []int       { return slices.Sorted(maps.Keys(r.jobs)) }
func (r *Registry) SchoolIDs() []int    { return slices.Sorted(maps.Keys(r.schools)) }

func (r *Registry) PersonCount() int    { return len(r.persons) }
func (r *Registry) HouseholdCount() int { return len(r.households) }
func (r *Registry) DwellingCount() int  { return len(r.dwellings) }
func (r *Registry) JobCount() int       { return len(r.jobs) }

// Members returns the persons of a household in membership order.
func (r *Registry) Members(householdID int) []*Person {
	h, ok := r.households[householdID]
	if !ok {
		return nil
	}
	out := make([]*Person, 0, len(h.personIDs))
	for _, id := range h.personIDs {
		out = append(out, r.persons[id])
	}
	return out
}

// AdultCount returns the number of adult members of a household.
func (r *Registry) AdultCount(householdID int) int {
	n := 0
	for _, p := range r.Members(householdID) {
		if p.Adult() {
			n++
		}
	}
	return n
}

// === ID allocation ===

func (r *Registry) NextPersonID() int {
	id := r.nextPersonID
	r.nextPersonID++
	return id
}

func (r *Registry) NextHouseholdID() int {
	id := r.nextHouseholdID
	r.nextHouseholdID++
	return id
}

func (r *Registry) NextDwellingID() int {
	id := r.nextDwellingID
	r.nextDwellingID++
	return id
}

func (r *Registry) NextJobID() int {
	id := r.nextJobID
	r.nextJobID++
	return id
}

// === Bulk load ===

// AddDwelling inserts a vacant dwelling and registers it with the vacancy
// index and the quality tracker.
func (r *Registry) AddDwelling(d *Dwelling) error {
	if _, exists := r.dwellings[d.ID]; exists {
		return fmt.Errorf("dwelling %d already exists", d.ID)
	}
	if !d.Type.Valid() {
		return fmt.Errorf("dwelling %d: invalid type %v", d.ID, d.Type)
	}
	if !r.quality.Valid(d.quality) {
		return fmt.Errorf("dwelling %d: quality %d outside 1..%d", d.ID, d.quality, r.quality.Levels())
	}
	if d.residentID != NoID {
		return fmt.Errorf("dwelling %d: must be added vacant, use OccupyDwelling", d.ID)
	}
	r.dwellings[d.ID] = d
	r.vacancies.addDwelling(r.MarketKeyOf(d), d.ID, true)
	r.quality.add(d.quality)
	r.nextDwellingID = max(r.nextDwellingID, d.ID+1)
	return nil
}

// AddHousehold inserts an empty, homeless household.
func (r *Registry) AddHousehold(h *Household) error {
	if _, exists := r.households[h.ID]; exists {
		return fmt.Errorf("household %d already exists", h.ID)
	}
	if len(h.personIDs) != 0 || h.dwellingID != NoID {
		return fmt.Errorf("household %d: must be added empty and homeless", h.ID)
	}
	r.households[h.ID] = h
	r.nextHouseholdID = max(r.nextHouseholdID, h.ID+1)
	return nil
}

// AddPerson inserts a person as a member of an existing household.
func (r *Registry) AddPerson(p *Person, householdID int) error {
	if _, exists := r.persons[p.ID]; exists {
		return fmt.Errorf("person %d already exists", p.ID)
	}
	h, ok := r.households[householdID]
	if !ok {
		return fmt.Errorf("person %d: household %d does not exist", p.ID, householdID)
	}
	if p.Age < 0 {
		return fmt.Errorf("person %d: negative age %d", p.ID, p.Age)
	}
	p.householdID = householdID
	p.partnerID, p.jobID, p.schoolID = NoID, NoID, NoID
	h.personIDs = append(h.personIDs, p.ID)
	r.persons[p.ID] = p
	r.nextPersonID = max(r.nextPersonID, p.ID+1)
	return nil
}

// AddJob inserts a vacant job.
func (r *Registry) AddJob(j *Job) error {
	if _, exists := r.jobs[j.ID]; exists {
		return fmt.Errorf("job %d already exists", j.ID)
	}
	j.workerID = NoID
	r.jobs[j.ID] = j
	r.nextJobID = max(r.nextJobID, j.ID+1)
	return nil
}

// RemoveJob deletes a vacant job.
func (r *Registry) RemoveJob(id int) error {
	j, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("job %d does not exist", id)
	}
	if !j.Vacant() {
		return fmt.Errorf("job %d is held by person %d", id, j.workerID)
	}
	delete(r.jobs, id)
	return nil
}

// AddSchool inserts a school with no enrolled students.
func (r *Registry) AddSchool(s *School) error {
	if _, exists := r.schools[s.ID]; exists {
		return fmt.Errorf("school %d already exists", s.ID)
	}
	s.enrolled = 0
	r.schools[s.ID] = s
	return nil
}

// === Housing links ===

// MoveHousehold moves a household into a vacant dwelling, vacating the
// dwelling it currently occupies, if any.
func (r *Registry) MoveHousehold(householdID, dwellingID int) error {
	h, ok := r.households[householdID]
	if !ok {
		return fmt.Errorf("household %d does not exist", householdID)
	}
	d, ok := r.dwellings[dwellingID]
	if !ok {
		return fmt.Errorf("dwelling %d does not exist", dwellingID)
	}
	if !d.Vacant() {
		return fmt.Errorf("dwelling %d is occupied by household %d", dwellingID, d.residentID)
	}
	if h.dwellingID != NoID {
		r.vacate(h)
	}
	d.residentID = h.ID
	h.dwellingID = d.ID
	r.vacancies.markOccupied(r.MarketKeyOf(d), d.ID)
	return nil
}

// OccupyDwelling is MoveHousehold under its bulk-load name.
func (r *Registry) OccupyDwelling(householdID, dwellingID int) error {
	return r.MoveHousehold(householdID, dwellingID)
}

// VacateDwelling makes a household homeless and its dwelling vacant.
func (r *Registry) VacateDwelling(householdID int) error {
	h, ok := r.households[householdID]
	if !ok {
		return fmt.Errorf("household %d does not exist", householdID)
	}
	if h.dwellingID == NoID {
		return fmt.Errorf("household %d has no dwelling", householdID)
	}
	r.vacate(h)
	return nil
}

func (r *Registry) vacate(h *Household) {
	d, ok := r.dwellings[h.dwellingID]
	if !ok || d.residentID != h.ID {
		panic(fmt.Sprintf("registry: household %d points at dwelling %d which does not point back", h.ID, h.dwellingID))
	}
	d.residentID = NoID
	h.dwellingID = NoID
	r.vacancies.markVacant(r.MarketKeyOf(d), d.ID)
}

// SetDwellingQuality changes a dwelling's quality and the tracker together.
func (r *Registry) SetDwellingQuality(dwellingID, quality int) error {
	d, ok := r.dwellings[dwellingID]
	if !ok {
		return fmt.Errorf("dwelling %d does not exist", dwellingID)
	}
	if !r.quality.Valid(quality) {
		return fmt.Errorf("dwelling %d: quality %d outside 1..%d", dwellingID, quality, r.quality.Levels())
	}
	if quality == d.quality {
		return nil
	}
	r.quality.move(d.quality, quality)
	d.quality = quality
	return nil
}

// SetDwellingPrice sets a dwelling's price. Prices stay >= 1.
func (r *Registry) SetDwellingPrice(dwellingID, price int) error {
	d, ok := r.dwellings[dwellingID]
	if !ok {
		return fmt.Errorf("dwelling %d does not exist", dwellingID)
	}
	d.Price = max(price, 1)
	return nil
}

// === Household membership ===

// NewHousehold allocates and inserts an empty, homeless household.
func (r *Registry) NewHousehold() *Household {
	h := NewHousehold(r.NextHouseholdID())
	r.households[h.ID] = h
	return h
}

// MovePersonToHousehold moves a person between households. The household the
// person leaves is dissolved if no adult remains; the ids of persons removed
// by that dissolution are returned.
func (r *Registry) MovePersonToHousehold(personID, householdID int) ([]int, error) {
	p, ok := r.persons[personID]
	if !ok {
		return nil, fmt.Errorf("person %d does not exist", personID)
	}
	to, ok := r.households[householdID]
	if !ok {
		return nil, fmt.Errorf("household %d does not exist", householdID)
	}
	from := p.householdID
	if from == householdID {
		return nil, nil
	}
	r.detachFromHousehold(p)
	p.householdID = to.ID
	to.personIDs = append(to.personIDs, p.ID)
	return r.dissolveIfOrphaned(from), nil
}

// RemovePerson deletes a person (death or emigration), clearing partner, job
// and school links, then dissolves the household if no adult remains. The
// returned ids include personID and any minors removed with the household.
func (r *Registry) RemovePerson(personID int) ([]int, error) {
	p, ok := r.persons[personID]
	if !ok {
		return nil, fmt.Errorf("person %d does not exist", personID)
	}
	hhID := p.householdID
	r.deletePerson(p)
	return append([]int{personID}, r.dissolveIfOrphaned(hhID)...), nil
}

// RemoveHousehold deletes a household with all its members and vacates its
// dwelling. The removed person ids are returned.
func (r *Registry) RemoveHousehold(householdID int) ([]int, error) {
	h, ok := r.households[householdID]
	if !ok {
		return nil, fmt.Errorf("household %d does not exist", householdID)
	}
	return r.dissolve(h), nil
}

func (r *Registry) deletePerson(p *Person) {
	if p.partnerID != NoID {
		if partner, ok := r.persons[p.partnerID]; ok {
			partner.partnerID = NoID
			partner.Role = RoleSingle
		}
		p.partnerID = NoID
	}
	r.releaseJob(p)
	r.leaveSchool(p)
	r.detachFromHousehold(p)
	delete(r.persons, p.ID)
}

func (r *Registry) detachFromHousehold(p *Person) {
	h, ok := r.households[p.householdID]
	if !ok {
		panic(fmt.Sprintf("registry: person %d points at missing household %d", p.ID, p.householdID))
	}
	i := slices.Index(h.personIDs, p.ID)
	if i < 0 {
		panic(fmt.Sprintf("registry: household %d does not list member %d", h.ID, p.ID))
	}
	h.personIDs = slices.Delete(h.personIDs, i, i+1)
	p.householdID = NoID
}

// dissolveIfOrphaned removes a household that has no adult member left,
// together with any remaining minors.
func (r *Registry) dissolveIfOrphaned(householdID int) []int {
	h, ok := r.households[householdID]
	if !ok {
		return nil
	}
	if r.AdultCount(householdID) > 0 {
		return nil
	}
	return r.dissolve(h)
}

func (r *Registry) dissolve(h *Household) []int {
	removed := h.PersonIDs()
	for _, id := range removed {
		r.deletePerson(r.persons[id])
	}
	if h.dwellingID != NoID {
		r.vacate(h)
	}
	delete(r.households, h.ID)
	return removed
}

// === Partnership ===

// Marry links two unpartnered persons as a married couple.
func (r *Registry) Marry(aID, bID int) error {
	a, ok := r.persons[aID]
	if !ok {
		return fmt.Errorf("person %d does not exist", aID)
	}
	b, ok := r.persons[bID]
	if !ok {
		return fmt.Errorf("person %d does not exist", bID)
	}
	if aID == bID {
		return fmt.Errorf("person %d cannot marry themselves", aID)
	}
	if a.partnerID != NoID || b.partnerID != NoID {
		return fmt.Errorf("persons %d and %d must both be unpartnered", aID, bID)
	}
	a.partnerID, b.partnerID = bID, aID
	a.Role, b.Role = RoleMarried, RoleMarried
	return nil
}

// Divorce clears the partnership of a person on both sides.
func (r *Registry) Divorce(personID int) error {
	p, ok := r.persons[personID]
	if !ok {
		return fmt.Errorf("person %d does not exist", personID)
	}
	partner, ok := r.persons[p.partnerID]
	if !ok {
		return fmt.Errorf("person %d has no partner", personID)
	}
	p.partnerID, partner.partnerID = NoID, NoID
	p.Role, partner.Role = RoleSingle, RoleSingle
	return nil
}

// === Jobs and schools ===

// AssignJob gives a vacant job to a person without one.
func (r *Registry) AssignJob(personID, jobID int) error {
	p, ok := r.persons[personID]
	if !ok {
		return fmt.Errorf("person %d does not exist", personID)
	}
	j, ok := r.jobs[jobID]
	if !ok {
		return fmt.Errorf("job %d does not exist", jobID)
	}
	if !j.Vacant() {
		return fmt.Errorf("job %d is held by person %d", jobID, j.workerID)
	}
	if p.jobID != NoID {
		return fmt.Errorf("person %d already holds job %d", personID, p.jobID)
	}
	j.workerID = p.ID
	p.jobID = j.ID
	p.Occupation = Employed
	p.Income = j.Wage
	return nil
}

// ReleaseJob frees the job of a person, if any.
func (r *Registry) ReleaseJob(personID int) error {
	p, ok := r.persons[personID]
	if !ok {
		return fmt.Errorf("person %d does not exist", personID)
	}
	r.releaseJob(p)
	return nil
}

func (r *Registry) releaseJob(p *Person) {
	if p.jobID == NoID {
		return
	}
	if j, ok := r.jobs[p.jobID]; ok {
		j.workerID = NoID
	}
	p.jobID = NoID
	p.Income = 0
	if p.Occupation == Employed {
		p.Occupation = Unemployed
	}
}

// EnrollSchool enrols a person in a school with spare capacity.
func (r *Registry) EnrollSchool(personID, schoolID int) error {
	p, ok := r.persons[personID]
	if !ok {
		return fmt.Errorf("person %d does not exist", personID)
	}
	s, ok := r.schools[schoolID]
	if !ok {
		return fmt.Errorf("school %d does not exist", schoolID)
	}
	if s.Capacity > 0 && s.enrolled >= s.Capacity {
		return fmt.Errorf("school %d is full", schoolID)
	}
	r.leaveSchool(p)
	s.enrolled++
	p.schoolID = s.ID
	return nil
}

// LeaveSchool unenrols a person, if enrolled.
func (r *Registry) LeaveSchool(personID int) error {
	p, ok := r.persons[personID]
	if !ok {
		return fmt.Errorf("person %d does not exist", personID)
	}
	r.leaveSchool(p)
	return nil
}

func (r *Registry) leaveSchool(p *Person) {
	if p.schoolID == NoID {
		return
	}
	if s, ok := r.schools[p.schoolID]; ok {
		s.enrolled--
	}
	p.schoolID = NoID
}
