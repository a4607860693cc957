// Package accessibility recomputes zonal job accessibility once a year.
package accessibility

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/urban-sim/urban-sim/sim"
	"github.com/urban-sim/urban-sim/sim/geo"
	"github.com/urban-sim/urban-sim/sim/registry"
)

// ZoneLister lists the zones of the study area.
type ZoneLister interface {
	ZoneIDs() []int
}

// Listener computes, at the start of every year,
//
//	A_i = Σ_j jobs_j · exp(beta · minutes(i, j))
//
// for every zone i, with travel times from the configured provider.
type Listener struct {
	sim.BaseListener
	reg    *registry.Registry
	zones  ZoneLister
	travel geo.TravelTimes
	beta   float64
	mode   geo.Mode
	at     time.Duration

	values map[int]float64
	year   int
}

// NewListener creates the listener.
func NewListener(reg *registry.Registry, zones ZoneLister, travel geo.TravelTimes, cfg sim.AccessibilityConfig) *Listener {
	return &Listener{
		reg:    reg,
		zones:  zones,
		travel: travel,
		beta:   cfg.Beta,
		mode:   geo.Mode(cfg.Mode),
		at:     time.Duration(cfg.TimeOfDayHours * float64(time.Hour)),
		values: make(map[int]float64),
	}
}

// JobsByZone counts all jobs per zone, occupied or not.
func JobsByZone(reg *registry.Registry) map[int]int {
	jobs := make(map[int]int)
	for _, id := range reg.JobIDs() {
		j, _ := reg.Job(id)
		jobs[j.Zone]++
	}
	return jobs
}

func (l *Listener) PrepareYear(year int) {
	jobs := JobsByZone(l.reg)
	zones := l.zones.ZoneIDs()
	clear(l.values)
	for _, i := range zones {
		sum := 0.0
		for _, j := range zones {
			n := jobs[j]
			if n == 0 {
				continue
			}
			minutes := l.travel.TravelTime(i, j, l.at, l.mode).Minutes()
			sum += float64(n) * math.Exp(l.beta*minutes)
		}
		l.values[i] = sum
	}
	l.year = year
	logrus.Debugf("accessibility %d: recomputed %d zones", year, len(zones))
}

// Accessibility returns the value of a zone from the latest computation.
func (l *Listener) Accessibility(zone int) float64 {
	return l.values[zone]
}

// Year returns the year of the latest computation, 0 before the first.
func (l *Listener) Year() int {
	return l.year
}
