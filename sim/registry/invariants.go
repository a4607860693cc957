package registry

import (
	"errors"
	"fmt"
)

// CheckInvariants walks the whole registry and reports every broken link or
// inconsistent derived index. A non-nil result means the state is corrupt and
// the run must stop.
func (r *Registry) CheckInvariants() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	for _, id := range r.HouseholdIDs() {
		h := r.households[id]
		if len(h.personIDs) == 0 {
			fail("household %d has no members", id)
		} else if r.AdultCount(id) == 0 {
			fail("household %d has no adult member", id)
		}
		for _, pid := range h.personIDs {
			p, ok := r.persons[pid]
			if !ok {
				fail("household %d lists missing person %d", id, pid)
			} else if p.householdID != id {
				fail("household %d lists person %d who belongs to household %d", id, pid, p.householdID)
			}
		}
		if h.dwellingID != NoID {
			d, ok := r.dwellings[h.dwellingID]
			if !ok {
				fail("household %d points at missing dwelling %d", id, h.dwellingID)
			} else if d.residentID != id {
				fail("household %d points at dwelling %d whose resident is %d", id, d.ID, d.residentID)
			}
		}
	}

	for _, id := range r.PersonIDs() {
		p := r.persons[id]
		h, ok := r.households[p.householdID]
		if !ok {
			fail("person %d belongs to missing household %d", id, p.householdID)
		} else if !containsID(h.personIDs, id) {
			fail("person %d is not listed by household %d", id, h.ID)
		}
		if p.partnerID != NoID {
			partner, ok := r.persons[p.partnerID]
			if !ok || partner.partnerID != id {
				fail("person %d has a partner link to %d that is not mutual", id, p.partnerID)
			}
		}
		if p.jobID != NoID {
			j, ok := r.jobs[p.jobID]
			if !ok || j.workerID != id {
				fail("person %d holds job %d that does not point back", id, p.jobID)
			}
		}
	}

	for _, id := range r.JobIDs() {
		j := r.jobs[id]
		if j.workerID == NoID {
			continue
		}
		if p, ok := r.persons[j.workerID]; !ok || p.jobID != id {
			fail("job %d is held by %d who does not hold it", id, j.workerID)
		}
	}

	levelCounts := make([]int, r.quality.Levels()+1)
	vacant := 0
	for _, id := range r.DwellingIDs() {
		d := r.dwellings[id]
		key := r.MarketKeyOf(d)
		listed := r.vacancies.Contains(key, id)
		switch {
		case d.Vacant() && !listed:
			fail("vacant dwelling %d missing from vacancy index %v", id, key)
		case !d.Vacant() && listed:
			fail("occupied dwelling %d listed in vacancy index %v", id, key)
		}
		if d.Vacant() {
			vacant++
		} else if h, ok := r.households[d.residentID]; !ok || h.dwellingID != id {
			fail("dwelling %d names resident %d who does not point back", id, d.residentID)
		}
		if r.quality.Valid(d.quality) {
			levelCounts[d.quality]++
		} else {
			fail("dwelling %d has quality %d outside 1..%d", id, d.quality, r.quality.Levels())
		}
	}
	if vacant != r.vacancies.Len() {
		fail("vacancy index holds %d dwellings but %d are vacant", r.vacancies.Len(), vacant)
	}
	if r.quality.Total() != len(r.dwellings) {
		fail("quality tracker totals %d but registry holds %d dwellings", r.quality.Total(), len(r.dwellings))
	}
	for level := 1; level <= r.quality.Levels(); level++ {
		if c := r.quality.Count(level); c != levelCounts[level] || c < 0 {
			fail("quality tracker counts %d at level %d, registry holds %d", c, level, levelCounts[level])
		}
	}

	return errors.Join(errs...)
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
