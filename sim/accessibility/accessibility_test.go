package accessibility

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urban-sim/urban-sim/sim"
	"github.com/urban-sim/urban-sim/sim/geo"
	"github.com/urban-sim/urban-sim/sim/internal/testutil"
	"github.com/urban-sim/urban-sim/sim/registry"
)

// fixedTimes charges 10 minutes inside a zone and 30 between zones.
type fixedTimes struct {
	calls int
}

func (f *fixedTimes) TravelTime(origin, dest int, _ time.Duration, _ geo.Mode) time.Duration {
	f.calls++
	if origin == dest {
		return 10 * time.Minute
	}
	return 30 * time.Minute
}

type zoneList []int

func (z zoneList) ZoneIDs() []int { return z }

func TestListener_ExponentialDecay(t *testing.T) {
	// GIVEN 3 jobs in zone 0 and 1 job in zone 1
	reg := testutil.Market{Regions: 1, ZonesPerRegion: 2, Dwellings: 2}.Build(t)
	for i, zone := range []int{0, 0, 0, 1} {
		require.NoError(t, reg.AddJob(registry.NewJob(i, zone, 30000)))
	}
	travel := &fixedTimes{}
	l := NewListener(reg, zoneList{0, 1}, travel, sim.AccessibilityConfig{Beta: -0.1, Mode: "car", TimeOfDayHours: 8})

	// WHEN the year starts
	l.PrepareYear(2011)

	// THEN A_i follows the decay formula
	testutil.AssertFloat64Equal(t, "A_0", 3*math.Exp(-1)+math.Exp(-3), l.Accessibility(0), 1e-12)
	testutil.AssertFloat64Equal(t, "A_1", 3*math.Exp(-3)+math.Exp(-1), l.Accessibility(1), 1e-12)
	assert.Equal(t, 2011, l.Year())
	assert.Equal(t, 4, travel.calls)
}

func TestListener_RecomputesAfterJobChange(t *testing.T) {
	reg := testutil.Market{Dwellings: 1}.Build(t)
	l := NewListener(reg, zoneList{0}, &fixedTimes{}, sim.AccessibilityConfig{Beta: -0.1, Mode: "car"})

	l.PrepareYear(2011)
	assert.Zero(t, l.Accessibility(0))

	require.NoError(t, reg.AddJob(registry.NewJob(0, 0, 30000)))
	l.PrepareYear(2012)
	testutil.AssertFloat64Equal(t, "A_0", math.Exp(-1), l.Accessibility(0), 1e-12)
}

func TestListener_EuclideanProvider(t *testing.T) {
	g, err := geo.NewGeography([]geo.Zone{
		{ID: 0, Centroid: geo.Point{}},
		{ID: 1, Centroid: geo.Point{X: 10000}},
	})
	require.NoError(t, err)
	reg := testutil.Market{Regions: 1, ZonesPerRegion: 2, Dwellings: 2}.Build(t)
	require.NoError(t, reg.AddJob(registry.NewJob(0, 1, 30000)))
	l := NewListener(reg, g, geo.NewEuclideanTravelTimes(g, nil), sim.AccessibilityConfig{Beta: -0.05, Mode: "walk", TimeOfDayHours: 12})

	l.PrepareYear(2011)

	// the job zone itself is closer to the job than its neighbour
	assert.Greater(t, l.Accessibility(1), l.Accessibility(0))
	assert.Greater(t, l.Accessibility(0), 0.0)
}
