package housing

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/urban-sim/urban-sim/sim"
	"github.com/urban-sim/urban-sim/sim/registry"
)

// MarketStats describes one (region, dwelling type) submarket after the
// year's price update.
type MarketStats struct {
	Year         int
	Region       int
	Type         registry.DwellingType
	Total        int
	Vacant       int
	VacancyRate  float64
	ChangeRate   float64
	AveragePrice float64
}

// Curves builds one price curve per dwelling type from the housing config.
func Curves(cfg sim.HousingConfig) (map[registry.DwellingType]PriceCurve, error) {
	curves := make(map[registry.DwellingType]PriceCurve, len(cfg.StructuralVacancy))
	for name, rate := range cfg.StructuralVacancy {
		t, err := registry.DwellingTypeFromName(name)
		if err != nil {
			return nil, err
		}
		curves[t] = NewPriceCurve(rate, cfg.Pricing)
	}
	for _, t := range registry.DwellingTypes() {
		if _, ok := curves[t]; !ok {
			return nil, fmt.Errorf("no structural vacancy rate for dwelling type %s", t)
		}
	}
	return curves, nil
}

// PriceUpdater is the annual listener that applies the price curve to every
// submarket at the end of each year.
type PriceUpdater struct {
	sim.BaseListener
	reg    *registry.Registry
	curves map[registry.DwellingType]PriceCurve
	last   []MarketStats
}

// NewPriceUpdater creates the listener.
func NewPriceUpdater(reg *registry.Registry, curves map[registry.DwellingType]PriceCurve) *PriceUpdater {
	return &PriceUpdater{reg: reg, curves: curves}
}

// Setup checks every dwelling type has a curve.
func (u *PriceUpdater) Setup() error {
	for _, t := range registry.DwellingTypes() {
		if _, ok := u.curves[t]; !ok {
			return fmt.Errorf("price updater: no curve for dwelling type %s", t)
		}
	}
	return nil
}

// EndYear evaluates the curve per submarket and multiplies every dwelling's
// price by the change rate, rounding to whole currency units.
func (u *PriceUpdater) EndYear(year int) {
	byKey := make(map[registry.MarketKey][]*registry.Dwelling)
	for _, id := range u.reg.DwellingIDs() {
		d, _ := u.reg.Dwelling(id)
		key := u.reg.MarketKeyOf(d)
		byKey[key] = append(byKey[key], d)
	}

	vac := u.reg.Vacancies()
	u.last = u.last[:0]
	for _, key := range vac.Keys() {
		dwellings := byKey[key]
		total, vacant := vac.Total(key), vac.Vacant(key)
		stats := MarketStats{Year: year, Region: key.Region, Type: key.Type, Total: total, Vacant: vacant, ChangeRate: 1}
		if total > 0 {
			stats.VacancyRate = float64(vacant) / float64(total)
			stats.ChangeRate = u.curves[key.Type].RateFor(vacant, total)
		}
		sum := 0
		for _, d := range dwellings {
			price := max(1, int(math.Round(float64(d.Price)*stats.ChangeRate)))
			if err := u.reg.SetDwellingPrice(d.ID, price); err != nil {
				panic(fmt.Sprintf("price updater: %v", err))
			}
			sum += d.Price
		}
		if len(dwellings) > 0 {
			stats.AveragePrice = float64(sum) / float64(len(dwellings))
		}
		u.last = append(u.last, stats)
		logrus.Debugf("Year %d region %d %s: vacancy %.3f change %.4f avg price %.0f",
			year, key.Region, key.Type, stats.VacancyRate, stats.ChangeRate, stats.AveragePrice)
	}
}

// LastStats returns the submarket statistics of the most recent update,
// ordered by region then dwelling type.
func (u *PriceUpdater) LastStats() []MarketStats {
	out := make([]MarketStats, len(u.last))
	copy(out, u.last)
	return out
}
