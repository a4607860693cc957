package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urban-sim/urban-sim/sim"
	"github.com/urban-sim/urban-sim/sim/internal/testutil"
	"github.com/urban-sim/urban-sim/sim/registry"
)

func addJobs(t *testing.T, reg *registry.Registry, zone, n, wage int) {
	t.Helper()
	for range n {
		require.NoError(t, reg.AddJob(registry.NewJob(reg.NextJobID(), zone, wage)))
	}
}

func TestJobForecast_GrowthCarriesFractions(t *testing.T) {
	// GIVEN 50 jobs in one zone and 10% growth
	reg := testutil.Market{Dwellings: 1}.Build(t)
	addJobs(t, reg, 0, 50, 30000)
	f := NewJobForecast(reg, sim.EconomyConfig{JobGrowthRate: 0.1})

	// WHEN two years start
	f.PrepareYear(2011)
	added, _ := f.LastChange()
	assert.Equal(t, 5, added)
	f.PrepareYear(2012)

	// THEN 55 * 0.1 = 5.5 adds 5 and carries 0.5
	added, _ = f.LastChange()
	assert.Equal(t, 5, added)
	assert.Equal(t, 60, reg.JobCount())
	f.PrepareYear(2013)
	added, _ = f.LastChange()
	assert.Equal(t, 6, added, "6.0 + 0.5 carried")

	// AND new jobs copy the zone's average wage
	j, _ := reg.Job(reg.JobIDs()[len(reg.JobIDs())-1])
	assert.Equal(t, 30000, j.Wage)
	assert.Equal(t, 0, j.Zone)
}

func TestJobForecast_DeclineRemovesVacantOnly(t *testing.T) {
	// GIVEN 10 jobs of which 9 are held and a 50% decline
	reg := testutil.Market{Dwellings: 9, Households: 9}.Build(t)
	addJobs(t, reg, 0, 10, 30000)
	for p := 0; p < 9; p++ {
		require.NoError(t, reg.AssignJob(p, p))
	}
	f := NewJobForecast(reg, sim.EconomyConfig{JobGrowthRate: -0.5})

	// WHEN the year starts
	f.PrepareYear(2011)

	// THEN only the single vacant job is removed
	_, removed := f.LastChange()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 9, reg.JobCount())
	testutil.RequireInvariants(t, reg)
}

func TestJobForecast_ZeroRate_NoChange(t *testing.T) {
	reg := testutil.Market{Dwellings: 1}.Build(t)
	addJobs(t, reg, 0, 7, 30000)
	f := NewJobForecast(reg, sim.EconomyConfig{})
	f.PrepareYear(2011)
	added, removed := f.LastChange()
	assert.Zero(t, added)
	assert.Zero(t, removed)
	assert.Equal(t, 7, reg.JobCount())
}
