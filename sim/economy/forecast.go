// Package economy holds the exogenous job forecast.
package economy

import (
	"math"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/urban-sim/urban-sim/sim"
	"github.com/urban-sim/urban-sim/sim/registry"
)

// defaultWage is used for new jobs in a zone that has none to copy from.
const defaultWage = 40000

// JobForecast changes the job stock of every zone by JobGrowthRate at the
// start of each year. Fractional jobs carry over per zone. A shrinking zone
// loses vacant jobs only; held jobs are never destroyed.
type JobForecast struct {
	sim.BaseListener
	reg  *registry.Registry
	rate float64

	carry   map[int]float64
	added   int
	removed int
}

// NewJobForecast creates the listener.
func NewJobForecast(reg *registry.Registry, cfg sim.EconomyConfig) *JobForecast {
	return &JobForecast{reg: reg, rate: cfg.JobGrowthRate, carry: make(map[int]float64)}
}

type zoneJobs struct {
	ids    []int
	vacant []int
	wages  int
}

func (f *JobForecast) byZone() (map[int]*zoneJobs, []int) {
	zones := make(map[int]*zoneJobs)
	for _, id := range f.reg.JobIDs() {
		j, _ := f.reg.Job(id)
		z, ok := zones[j.Zone]
		if !ok {
			z = &zoneJobs{}
			zones[j.Zone] = z
		}
		z.ids = append(z.ids, id)
		z.wages += j.Wage
		if j.Vacant() {
			z.vacant = append(z.vacant, id)
		}
	}
	keys := make([]int, 0, len(zones))
	for k := range zones {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return zones, keys
}

func (f *JobForecast) PrepareYear(year int) {
	f.added, f.removed = 0, 0
	zones, keys := f.byZone()
	for _, zone := range keys {
		z := zones[zone]
		f.carry[zone] += float64(len(z.ids)) * f.rate
		delta := int(math.Trunc(f.carry[zone]))
		f.carry[zone] -= float64(delta)
		switch {
		case delta > 0:
			wage := defaultWage
			if len(z.ids) > 0 {
				wage = z.wages / len(z.ids)
			}
			for range delta {
				if err := f.reg.AddJob(registry.NewJob(f.reg.NextJobID(), zone, wage)); err != nil {
					panic("job forecast: " + err.Error())
				}
				f.added++
			}
		case delta < 0:
			// newest vacant jobs go first
			for k := 0; k < -delta && k < len(z.vacant); k++ {
				if err := f.reg.RemoveJob(z.vacant[len(z.vacant)-1-k]); err != nil {
					panic("job forecast: " + err.Error())
				}
				f.removed++
			}
		}
	}
	logrus.Infof("Job forecast %d: +%d -%d jobs, %d total", year, f.added, f.removed, f.reg.JobCount())
}

// LastChange returns the jobs added and removed at the start of the latest year.
func (f *JobForecast) LastChange() (added, removed int) {
	return f.added, f.removed
}
