package geo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGeography(t *testing.T) *Geography {
	t.Helper()
	g, err := NewGeography([]Zone{
		{ID: 3, Region: 1, Centroid: Point{X: 0, Y: 5000}},
		{ID: 1, Region: 0, Centroid: Point{X: 0, Y: 0}},
		{ID: 2, Region: 0, Centroid: Point{X: 3000, Y: 4000}},
	})
	require.NoError(t, err)
	return g
}

func TestGeography_RegionsAndZonesSorted(t *testing.T) {
	g := testGeography(t)
	assert.Equal(t, []int{1, 2, 3}, g.ZoneIDs())
	assert.Equal(t, []int{0, 1}, g.Regions())
	assert.Equal(t, []int{1, 2}, g.ZonesInRegion(0))
	assert.Equal(t, 1, g.RegionOf(3))
	assert.Equal(t, -1, g.RegionOf(99))
}

func TestNewGeography_DuplicateZone_ReturnsError(t *testing.T) {
	_, err := NewGeography([]Zone{{ID: 1}, {ID: 1}})
	assert.Error(t, err)
}

func TestEuclideanTravelTimes_IntrazoneAndPeak(t *testing.T) {
	g := testGeography(t)
	tt := NewEuclideanTravelTimes(g, map[Mode]ModeSpeed{ModeCar: {MetresPerMinute: 500, Detour: 1.0}})

	assert.Equal(t, 5*time.Minute, tt.TravelTime(1, 1, 0, ModeCar))

	// 5000 m at 500 m/min = 10 min + 5 min intrazone
	offPeak := tt.TravelTime(1, 2, 12*time.Hour, ModeCar)
	assert.Equal(t, 15*time.Minute, offPeak)

	peak := tt.TravelTime(1, 2, 8*time.Hour, ModeCar)
	assert.Equal(t, 5*time.Minute+12*time.Minute+30*time.Second, peak)

	walk := tt.TravelTime(1, 2, 8*time.Hour, ModeWalk)
	assert.Greater(t, walk, peak)
}

func TestEuclideanTravelTimes_UnknownZone_Panics(t *testing.T) {
	tt := NewEuclideanTravelTimes(testGeography(t), nil)
	assert.Panics(t, func() { tt.TravelTime(1, 42, 0, ModeCar) })
}
