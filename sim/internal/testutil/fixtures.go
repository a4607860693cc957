// Package testutil provides shared test infrastructure for the urban-sim
// packages: small deterministic registries, scenario fixtures and float
// assertion helpers.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/urban-sim/urban-sim/sim/registry"
)

// Market describes a small housing market. Dwelling i sits in zone
// i % (Regions*ZonesPerRegion) and has quality 1 + i % QualityLevels.
// Household i is a single adult living in dwelling i.
type Market struct {
	Regions        int
	ZonesPerRegion int
	Dwellings      int
	Households     int
	QualityLevels  int
	Type           registry.DwellingType
	Price          int
}

func (m Market) withDefaults() Market {
	if m.Regions == 0 {
		m.Regions = 1
	}
	if m.ZonesPerRegion == 0 {
		m.ZonesPerRegion = 1
	}
	if m.QualityLevels == 0 {
		m.QualityLevels = 4
	}
	if m.Price == 0 {
		m.Price = 1000
	}
	return m
}

// RegionOf maps a fixture zone to its region.
func (m Market) RegionOf(zone int) int {
	m = m.withDefaults()
	return zone / m.ZonesPerRegion
}

// ZonesInRegion lists the fixture zones of a region.
func (m Market) ZonesInRegion(region int) []int {
	m = m.withDefaults()
	if region < 0 || region >= m.Regions {
		return nil
	}
	zones := make([]int, m.ZonesPerRegion)
	for i := range zones {
		zones[i] = region*m.ZonesPerRegion + i
	}
	return zones
}

// Build creates the registry, failing the test on any load error.
func (m Market) Build(t testing.TB) *registry.Registry {
	t.Helper()
	m = m.withDefaults()
	if m.Households > m.Dwellings {
		t.Fatalf("market fixture: %d households for %d dwellings", m.Households, m.Dwellings)
	}
	reg := registry.New(m.QualityLevels, m.RegionOf)
	zones := m.Regions * m.ZonesPerRegion
	for i := 0; i < m.Dwellings; i++ {
		d := registry.NewDwelling(i, i%zones, m.Type, 1+i%m.QualityLevels, m.Price)
		if err := reg.AddDwelling(d); err != nil {
			t.Fatalf("market fixture: %v", err)
		}
	}
	for i := 0; i < m.Households; i++ {
		if err := reg.AddHousehold(registry.NewHousehold(i)); err != nil {
			t.Fatalf("market fixture: %v", err)
		}
		sex := registry.Male
		if i%2 == 1 {
			sex = registry.Female
		}
		p := registry.NewPerson(i, 30+i%40, sex, registry.RoleSingle, registry.Unemployed)
		if err := reg.AddPerson(p, i); err != nil {
			t.Fatalf("market fixture: %v", err)
		}
		if err := reg.OccupyDwelling(i, i); err != nil {
			t.Fatalf("market fixture: %v", err)
		}
	}
	return reg
}

// RequireInvariants fails the test if the registry is inconsistent.
func RequireInvariants(t testing.TB, reg *registry.Registry) {
	t.Helper()
	if err := reg.CheckInvariants(); err != nil {
		t.Fatalf("registry invariants violated: %v", err)
	}
}

// LoadScenario reads a scenario YAML from the repository's testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadScenario(t testing.TB, name string) []byte {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read scenario fixture: %v", err)
	}
	return data
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t testing.TB, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
