package housing

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urban-sim/urban-sim/sim"
	"github.com/urban-sim/urban-sim/sim/internal/testutil"
	"github.com/urban-sim/urban-sim/sim/registry"
)

func newConstruction(t *testing.T, reg *registry.Registry, zones ZoneLister, mutate func(*sim.HousingConfig)) *ConstructionModel {
	t.Helper()
	cfg := sim.DefaultProperties().Housing
	cfg.Construction = sim.ConstructionConfig{Probability: 1, ShortageShare: 1, MaxPerRegion: 0}
	if mutate != nil {
		mutate(&cfg)
	}
	m, err := NewConstructionModel(reg, zones, cfg)
	require.NoError(t, err)
	return m
}

func TestConstruction_Shortage_ProposesMissingShare(t *testing.T) {
	// GIVEN 100 MF234 dwellings, 1 vacant, structural rate 0.05
	market := testutil.Market{Dwellings: 100, Households: 99, Type: registry.MF234, Price: 800}
	reg := market.Build(t)
	m := newConstruction(t, reg, market, func(c *sim.HousingConfig) { c.Construction.ShortageShare = 0.5 })

	// WHEN the year is prepared
	events := m.PrepareYear(2011)

	// THEN ceil(0.5 * (5 - 1)) = 2 events for region 0, type MF234
	require.Len(t, events, 2)
	assert.Equal(t, sim.EventConstruction, events[0].Type())
	assert.Equal(t, 0, events[0].Subject())
	assert.Equal(t, int(registry.MF234), events[0].Object())
}

func TestConstruction_NoShortage_NoEvents(t *testing.T) {
	market := testutil.Market{Dwellings: 20, Households: 10, Type: registry.SFD}
	reg := market.Build(t)
	m := newConstruction(t, reg, market, nil)
	assert.Empty(t, m.PrepareYear(2011))
}

func TestConstruction_MaxPerRegion_Caps(t *testing.T) {
	market := testutil.Market{Dwellings: 100, Households: 100, Type: registry.MF5plus}
	reg := market.Build(t)
	m := newConstruction(t, reg, market, func(c *sim.HousingConfig) { c.Construction.MaxPerRegion = 3 })
	assert.Len(t, m.PrepareYear(2011), 3)
}

func TestConstruction_HandleEvent_AddsTopQualityVacantDwelling(t *testing.T) {
	// GIVEN a full market of two zones priced at 1200
	market := testutil.Market{ZonesPerRegion: 2, Dwellings: 10, Households: 10, Type: registry.SFA, Price: 1200}
	reg := market.Build(t)
	m := newConstruction(t, reg, market, nil)
	events := m.PrepareYear(2015)
	require.NotEmpty(t, events)

	// WHEN one construction event is applied
	applied := m.HandleEvent(events[0], rand.New(rand.NewSource(5)))

	// THEN a vacant, top-quality dwelling at the regional average price exists
	require.True(t, applied)
	assert.Equal(t, 11, reg.DwellingCount())
	d, ok := reg.Dwelling(10)
	require.True(t, ok)
	assert.True(t, d.Vacant())
	assert.Equal(t, 4, d.Quality())
	assert.Equal(t, 1200, d.Price)
	assert.Equal(t, 2015, d.YearBuilt)
	assert.Contains(t, []int{0, 1}, d.Zone)
	assert.Equal(t, 11, reg.Quality().Total())
	testutil.RequireInvariants(t, reg)
}

func TestConstruction_ProbabilityZero_Rejects(t *testing.T) {
	market := testutil.Market{Dwellings: 10, Households: 10, Type: registry.SFD}
	reg := market.Build(t)
	m := newConstruction(t, reg, market, func(c *sim.HousingConfig) { c.Construction.Probability = 0 })
	for _, ev := range m.PrepareYear(2011) {
		assert.False(t, m.HandleEvent(ev, rand.New(rand.NewSource(1))))
	}
	assert.Equal(t, 10, reg.DwellingCount())
}

func TestConstruction_RegionWithoutZones_Rejects(t *testing.T) {
	market := testutil.Market{Dwellings: 10, Households: 10, Type: registry.SFD}
	reg := market.Build(t)
	m := newConstruction(t, reg, market, nil)
	ev := sim.NewPairEvent(sim.EventConstruction, 7, int(registry.SFD))
	assert.False(t, m.HandleEvent(ev, rand.New(rand.NewSource(1))))
}
