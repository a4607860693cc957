package registry

import "slices"

// Point is an optional coordinate inside a zone (projected metres).
type Point struct {
	X float64
	Y float64
}

// Person is a synthetic resident. Link fields are owned by the Registry.
type Person struct {
	ID            int
	Age           int
	Sex           Sex
	Role          Role
	Occupation    Occupation
	DriverLicense bool
	Income        int

	householdID int
	partnerID   int
	jobID       int
	schoolID    int
}

// NewPerson returns a person with all links unset.
func NewPerson(id, age int, sex Sex, role Role, occupation Occupation) *Person {
	return &Person{
		ID:          id,
		Age:         age,
		Sex:         sex,
		Role:        role,
		Occupation:  occupation,
		householdID: NoID,
		partnerID:   NoID,
		jobID:       NoID,
		schoolID:    NoID,
	}
}

func (p *Person) HouseholdID() int { return p.householdID }
func (p *Person) PartnerID() int   { return p.partnerID }
func (p *Person) JobID() int       { return p.jobID }
func (p *Person) SchoolID() int    { return p.schoolID }

// Adult reports whether the person counts as an adult.
func (p *Person) Adult() bool { return p.Age >= AdultAge }

// Household groups persons sharing one dwelling.
type Household struct {
	ID    int
	Autos int

	personIDs  []int
	dwellingID int
}

// NewHousehold returns an empty, homeless household.
func NewHousehold(id int) *Household {
	return &Household{ID: id, dwellingID: NoID}
}

// PersonIDs returns a copy of the member ids in insertion order.
func (h *Household) PersonIDs() []int { return slices.Clone(h.personIDs) }

// Size returns the number of members.
func (h *Household) Size() int { return len(h.personIDs) }

// DwellingID returns the occupied dwelling or NoID.
func (h *Household) DwellingID() int { return h.dwellingID }

// Dwelling is a housing unit. Quality and resident are owned by the Registry
// because they feed the quality tracker and the vacancy index.
type Dwelling struct {
	ID         int
	Zone       int
	Point      *Point
	Type       DwellingType
	Price      int
	FloorSpace int
	Bedrooms   int
	YearBuilt  int

	quality    int
	residentID int
}

// NewDwelling returns a vacant dwelling.
func NewDwelling(id, zone int, dwellingType DwellingType, quality, price int) *Dwelling {
	return &Dwelling{
		ID:         id,
		Zone:       zone,
		Type:       dwellingType,
		Price:      price,
		quality:    quality,
		residentID: NoID,
	}
}

func (d *Dwelling) Quality() int    { return d.quality }
func (d *Dwelling) ResidentID() int { return d.residentID }
func (d *Dwelling) Vacant() bool    { return d.residentID == NoID }

// Job is a workplace slot.
type Job struct {
	ID   int
	Zone int
	Wage int

	workerID int
}

// NewJob returns a vacant job.
func NewJob(id, zone, wage int) *Job {
	return &Job{ID: id, Zone: zone, Wage: wage, workerID: NoID}
}

func (j *Job) WorkerID() int { return j.workerID }
func (j *Job) Vacant() bool  { return j.workerID == NoID }

// School has a capacity of enrolled students.
type School struct {
	ID       int
	Zone     int
	Capacity int

	enrolled int
}

func (s *School) Enrolled() int { return s.enrolled }
