package registry

import (
	"fmt"
	"math/rand"
	"slices"
)

// AnyRegion selects every region in vacancy queries and draws.
const AnyRegion = -1

// MarketKey identifies one submarket: a region and a dwelling type.
type MarketKey struct {
	Region int
	Type   DwellingType
}

func (k MarketKey) less(o MarketKey) bool {
	if k.Region != o.Region {
		return k.Region < o.Region
	}
	return k.Type < o.Type
}

// VacancyIndex keeps, per submarket, the sorted ids of vacant dwellings and the
// total dwelling count. It is mutated only by the Registry, in the same step
// that changes a dwelling's resident.
type VacancyIndex struct {
	keys   []MarketKey // sorted, every submarket that ever held a dwelling
	vacant map[MarketKey][]int
	total  map[MarketKey]int
	count  int
}

func newVacancyIndex() *VacancyIndex {
	return &VacancyIndex{
		vacant: make(map[MarketKey][]int),
		total:  make(map[MarketKey]int),
	}
}

func (v *VacancyIndex) addDwelling(key MarketKey, id int, vacant bool) {
	if _, ok := v.total[key]; !ok {
		i, _ := slices.BinarySearchFunc(v.keys, key, compareKeys)
		v.keys = slices.Insert(v.keys, i, key)
	}
	v.total[key]++
	if vacant {
		v.markVacant(key, id)
	}
}

func (v *VacancyIndex) markVacant(key MarketKey, id int) {
	ids := v.vacant[key]
	i, found := slices.BinarySearch(ids, id)
	if found {
		panic(fmt.Sprintf("vacancy index: dwelling %d already vacant in %v", id, key))
	}
	v.vacant[key] = slices.Insert(ids, i, id)
	v.count++
	if len(v.vacant[key]) > v.total[key] {
		panic(fmt.Sprintf("vacancy index: %d vacant exceeds %d total in %v", len(v.vacant[key]), v.total[key], key))
	}
}

func (v *VacancyIndex) markOccupied(key MarketKey, id int) {
	ids := v.vacant[key]
	i, found := slices.BinarySearch(ids, id)
	if !found {
		panic(fmt.Sprintf("vacancy index: dwelling %d is not vacant in %v", id, key))
	}
	v.vacant[key] = slices.Delete(ids, i, i+1)
	v.count--
	if v.count < 0 {
		panic("vacancy index: negative vacancy count")
	}
}

// Contains reports whether dwelling id is listed as vacant in the submarket.
func (v *VacancyIndex) Contains(key MarketKey, id int) bool {
	_, found := slices.BinarySearch(v.vacant[key], id)
	return found
}

// Len returns the number of vacant dwellings across all submarkets.
func (v *VacancyIndex) Len() int { return v.count }

// Keys returns every submarket in (region, type) order.
func (v *VacancyIndex) Keys() []MarketKey { return slices.Clone(v.keys) }

// Vacant returns the number of vacant dwellings in a submarket.
func (v *VacancyIndex) Vacant(key MarketKey) int { return len(v.vacant[key]) }

// Total returns the number of dwellings in a submarket.
func (v *VacancyIndex) Total(key MarketKey) int { return v.total[key] }

// VacantIDs returns a copy of the sorted vacant ids of a submarket.
func (v *VacancyIndex) VacantIDs(key MarketKey) []int { return slices.Clone(v.vacant[key]) }

// VacancyRate returns vacant/total for a submarket. ok is false when the
// submarket holds no dwellings, so callers never divide by zero.
func (v *VacancyIndex) VacancyRate(key MarketKey) (rate float64, ok bool) {
	total := v.total[key]
	if total == 0 {
		return 0, false
	}
	return float64(len(v.vacant[key])) / float64(total), true
}

// RegionVacant returns the vacant count of a region across dwelling types,
// or of everything for AnyRegion.
func (v *VacancyIndex) RegionVacant(region int) int {
	if region == AnyRegion {
		return v.count
	}
	n := 0
	for _, k := range v.keys {
		if k.Region == region {
			n += len(v.vacant[k])
		}
	}
	return n
}

// Draw picks a vacant dwelling of the region (or AnyRegion) with uniform
// weight. It consumes exactly one draw from rng when a candidate exists and
// none otherwise.
func (v *VacancyIndex) Draw(rng *rand.Rand, region int) (int, bool) {
	n := v.RegionVacant(region)
	if n == 0 {
		return NoID, false
	}
	k := rng.Intn(n)
	for _, key := range v.keys {
		if region != AnyRegion && key.Region != region {
			continue
		}
		ids := v.vacant[key]
		if k < len(ids) {
			return ids[k], true
		}
		k -= len(ids)
	}
	panic("vacancy index: draw ran past the vacant count")
}

func compareKeys(a, b MarketKey) int {
	switch {
	case a.less(b):
		return -1
	case b.less(a):
		return 1
	default:
		return 0
	}
}
