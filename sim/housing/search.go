// Package housing implements the housing market: dwelling search, the
// vacancy-driven price curve, and the renovation, construction and relocation
// event models.
package housing

import (
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/urban-sim/urban-sim/sim/registry"
)

// Search finds vacant dwellings for households that need to move.
type Search struct {
	reg *registry.Registry
}

// NewSearch creates a search over the registry's vacancy index.
func NewSearch(reg *registry.Registry) *Search {
	return &Search{reg: reg}
}

// Find draws a vacant dwelling in region (or registry.AnyRegion) with uniform
// weight. ok is false when no dwelling is vacant there; that is an expected
// market outcome, not an error.
func (s *Search) Find(rng *rand.Rand, householdID, region int) (dwellingID int, ok bool) {
	dwellingID, ok = s.reg.Vacancies().Draw(rng, region)
	if !ok {
		logrus.Debugf("housing search: no vacant dwelling in region %d for household %d", region, householdID)
	}
	return dwellingID, ok
}
