package geo

import (
	"fmt"
	"time"
)

// ModeSpeed holds the network speed (metres per minute) and a detour factor
// applied to crow-fly distance.
type ModeSpeed struct {
	MetresPerMinute float64
	Detour          float64
}

// DefaultModeSpeeds are rough urban averages.
var DefaultModeSpeeds = map[Mode]ModeSpeed{
	ModeCar:     {MetresPerMinute: 500, Detour: 1.3},
	ModeTransit: {MetresPerMinute: 300, Detour: 1.4},
	ModeWalk:    {MetresPerMinute: 80, Detour: 1.2},
}

// EuclideanTravelTimes approximates travel times from zone centroid distances.
// It stands in for a transport model when none is attached.
type EuclideanTravelTimes struct {
	geo       *Geography
	speeds    map[Mode]ModeSpeed
	intrazone time.Duration
	peak      PeakWindow
}

// PeakWindow slows car travel by Factor between From and To (time of day).
type PeakWindow struct {
	From   time.Duration
	To     time.Duration
	Factor float64
}

// NewEuclideanTravelTimes creates the provider. Speeds for modes missing in
// speeds fall back to DefaultModeSpeeds.
func NewEuclideanTravelTimes(g *Geography, speeds map[Mode]ModeSpeed) *EuclideanTravelTimes {
	merged := make(map[Mode]ModeSpeed, len(DefaultModeSpeeds))
	for m, s := range DefaultModeSpeeds {
		merged[m] = s
	}
	for m, s := range speeds {
		merged[m] = s
	}
	return &EuclideanTravelTimes{
		geo:       g,
		speeds:    merged,
		intrazone: 5 * time.Minute,
		peak:      PeakWindow{From: 7 * time.Hour, To: 9 * time.Hour, Factor: 1.25},
	}
}

// TravelTime implements TravelTimes. Unknown zones or modes panic: they
// indicate a wiring error, not a data condition.
func (e *EuclideanTravelTimes) TravelTime(origin, dest int, timeOfDay time.Duration, mode Mode) time.Duration {
	if origin == dest {
		return e.intrazone
	}
	o, ok := e.geo.Zone(origin)
	if !ok {
		panic(fmt.Sprintf("EuclideanTravelTimes: unknown origin zone %d", origin))
	}
	d, ok := e.geo.Zone(dest)
	if !ok {
		panic(fmt.Sprintf("EuclideanTravelTimes: unknown destination zone %d", dest))
	}
	speed, ok := e.speeds[mode]
	if !ok || speed.MetresPerMinute <= 0 {
		panic(fmt.Sprintf("EuclideanTravelTimes: no speed for mode %q", mode))
	}
	minutes := o.Centroid.Distance(d.Centroid) * speed.Detour / speed.MetresPerMinute
	if mode == ModeCar && timeOfDay >= e.peak.From && timeOfDay < e.peak.To {
		minutes *= e.peak.Factor
	}
	return e.intrazone + time.Duration(minutes*float64(time.Minute))
}
