// Package geo holds the zone system (zones, regions, centroids) and the
// travel-time provider contract consumed by accessibility listeners.
package geo

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// Mode is a travel mode.
type Mode string

const (
	ModeCar     Mode = "car"
	ModeTransit Mode = "transit"
	ModeWalk    Mode = "walk"
)

// ValidModes is the set of recognized travel modes.
var ValidModes = map[Mode]bool{ModeCar: true, ModeTransit: true, ModeWalk: true}

// TravelTimes returns the zone-to-zone travel time for a mode at a time of day.
// Implementations are supplied by a transport model; the simulation never
// computes routes itself.
type TravelTimes interface {
	TravelTime(origin, dest int, timeOfDay time.Duration, mode Mode) time.Duration
}

// Zone is a traffic analysis zone.
type Zone struct {
	ID       int
	Region   int
	Centroid Point
}

// Point is a projected coordinate in metres.
type Point struct {
	X float64
	Y float64
}

// Distance returns the Euclidean distance in metres.
func (p Point) Distance(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Geography is the zone system of a study area.
type Geography struct {
	zones   map[int]Zone
	regions map[int][]int // region -> sorted zone ids
}

// NewGeography builds a geography from its zones. Duplicate zone ids are an error.
func NewGeography(zones []Zone) (*Geography, error) {
	g := &Geography{
		zones:   make(map[int]Zone, len(zones)),
		regions: make(map[int][]int),
	}
	for _, z := range zones {
		if _, dup := g.zones[z.ID]; dup {
			return nil, fmt.Errorf("duplicate zone %d", z.ID)
		}
		g.zones[z.ID] = z
		ids := g.regions[z.Region]
		i, _ := slices.BinarySearch(ids, z.ID)
		g.regions[z.Region] = slices.Insert(ids, i, z.ID)
	}
	return g, nil
}

// Zone looks up a zone.
func (g *Geography) Zone(id int) (Zone, bool) {
	z, ok := g.zones[id]
	return z, ok
}

// RegionOf maps a zone to its region. Unknown zones map to region -1.
func (g *Geography) RegionOf(zone int) int {
	z, ok := g.zones[zone]
	if !ok {
		return -1
	}
	return z.Region
}

// ZoneIDs returns all zone ids in ascending order.
func (g *Geography) ZoneIDs() []int {
	ids := make([]int, 0, len(g.zones))
	for id := range g.zones {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Regions returns all region ids in ascending order.
func (g *Geography) Regions() []int {
	ids := make([]int, 0, len(g.regions))
	for id := range g.regions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// ZonesInRegion returns the sorted zone ids of a region.
func (g *Geography) ZonesInRegion(region int) []int {
	return slices.Clone(g.regions[region])
}
