package lifecourse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urban-sim/urban-sim/sim"
	"github.com/urban-sim/urban-sim/sim/internal/testutil"
	"github.com/urban-sim/urban-sim/sim/registry"
)

func TestAging_Transitions(t *testing.T) {
	// GIVEN a 64-year-old worker, a 5-year-old toddler and a 17-year-old student
	reg := testutil.Market{Dwellings: 1, Households: 1}.Build(t)
	require.NoError(t, reg.AddJob(registry.NewJob(0, 0, 40000)))
	require.NoError(t, reg.AddSchool(&registry.School{ID: 0, Zone: 0, Capacity: 1}))
	worker, _ := reg.Person(0)
	worker.Age = 64
	require.NoError(t, reg.AssignJob(0, 0))
	toddler := addMember(t, reg, 0, 5, registry.Male, registry.RoleChild, registry.Toddler)
	student := addMember(t, reg, 0, 17, registry.Female, registry.RoleChild, registry.Student)

	cfg := sim.DefaultProperties().Demography
	l := NewAgingListener(reg, cfg)

	// WHEN a year starts
	l.PrepareYear(2011)

	// THEN everyone is a year older
	assert.Equal(t, 65, worker.Age)
	assert.Equal(t, 6, toddler.Age)
	assert.Equal(t, 18, student.Age)

	// AND the worker retired and freed the job
	assert.Equal(t, registry.Retiree, worker.Occupation)
	assert.Equal(t, registry.NoID, worker.JobID())
	j, _ := reg.Job(0)
	assert.True(t, j.Vacant())

	// AND the toddler started school, the student left it
	assert.Equal(t, registry.Student, toddler.Occupation)
	assert.Equal(t, 0, toddler.SchoolID())
	assert.Equal(t, registry.Unemployed, student.Occupation)
	assert.Equal(t, registry.NoID, student.SchoolID())
	testutil.RequireInvariants(t, reg)
}

func TestAging_FullSchool_StillStudent(t *testing.T) {
	reg := testutil.Market{Dwellings: 1, Households: 1}.Build(t)
	require.NoError(t, reg.AddSchool(&registry.School{ID: 0, Capacity: 1}))
	first := addMember(t, reg, 0, 5, registry.Male, registry.RoleChild, registry.Toddler)
	second := addMember(t, reg, 0, 5, registry.Female, registry.RoleChild, registry.Toddler)

	NewAgingListener(reg, sim.DefaultProperties().Demography).PrepareYear(2011)

	assert.Equal(t, 0, first.SchoolID())
	assert.Equal(t, registry.Student, second.Occupation)
	assert.Equal(t, registry.NoID, second.SchoolID())
	s, _ := reg.School(0)
	assert.Equal(t, 1, s.Enrolled())
}
