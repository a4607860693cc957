package lifecourse

import (
	"github.com/sirupsen/logrus"

	"github.com/urban-sim/urban-sim/sim"
	"github.com/urban-sim/urban-sim/sim/registry"
)

// AgingListener advances every person by one year before events are
// proposed, and applies the age-driven occupation transitions.
type AgingListener struct {
	sim.BaseListener
	reg *registry.Registry
	cfg sim.DemographyConfig
}

func NewAgingListener(reg *registry.Registry, cfg sim.DemographyConfig) *AgingListener {
	return &AgingListener{reg: reg, cfg: cfg}
}

func (l *AgingListener) PrepareYear(year int) {
	retired, enrolled := 0, 0
	for _, id := range l.reg.PersonIDs() {
		p, _ := l.reg.Person(id)
		p.Age++
		switch {
		case p.Occupation == registry.Employed && p.Age >= l.cfg.RetirementAge:
			must("aging", l.reg.ReleaseJob(p.ID))
			p.Occupation = registry.Retiree
			retired++
		case p.Occupation == registry.Unemployed && p.Age >= l.cfg.RetirementAge:
			p.Occupation = registry.Retiree
		case p.Occupation == registry.Toddler && p.Age >= l.cfg.SchoolAge:
			p.Occupation = registry.Student
			if l.enroll(p) {
				enrolled++
			}
		case p.Occupation == registry.Student && p.Adult():
			must("aging", l.reg.LeaveSchool(p.ID))
			p.Occupation = registry.Unemployed
		}
	}
	logrus.Debugf("aging %d: %d retired, %d enrolled", year, retired, enrolled)
}

// enroll places a new student in the first school with spare capacity.
func (l *AgingListener) enroll(p *registry.Person) bool {
	for _, id := range l.reg.SchoolIDs() {
		s, _ := l.reg.School(id)
		if s.Capacity == 0 || s.Enrolled() < s.Capacity {
			must("aging", l.reg.EnrollSchool(p.ID, id))
			return true
		}
	}
	return false
}
