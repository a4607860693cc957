package housing

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/urban-sim/urban-sim/sim"
	"github.com/urban-sim/urban-sim/sim/registry"
)

// ZoneLister returns the zones of a region in ascending order.
type ZoneLister interface {
	ZonesInRegion(region int) []int
}

// ConstructionModel adds dwellings to submarkets whose vacancy is below the
// structural rate. One event is proposed per missing dwelling share; the
// event subject is the region and the object the dwelling type.
type ConstructionModel struct {
	sim.BaseModel
	reg        *registry.Registry
	zones      ZoneLister
	cfg        sim.ConstructionConfig
	structural map[registry.DwellingType]float64
	basePrices map[registry.DwellingType]int

	year      int
	avgPrices map[registry.MarketKey]int
}

// NewConstructionModel creates the model.
func NewConstructionModel(reg *registry.Registry, zones ZoneLister, housing sim.HousingConfig) (*ConstructionModel, error) {
	m := &ConstructionModel{
		reg:        reg,
		zones:      zones,
		cfg:        housing.Construction,
		structural: make(map[registry.DwellingType]float64),
		basePrices: make(map[registry.DwellingType]int),
	}
	for name, rate := range housing.StructuralVacancy {
		t, err := registry.DwellingTypeFromName(name)
		if err != nil {
			return nil, err
		}
		m.structural[t] = rate
	}
	for name, price := range housing.BasePrices {
		t, err := registry.DwellingTypeFromName(name)
		if err != nil {
			return nil, err
		}
		m.basePrices[t] = price
	}
	return m, nil
}

// Shortage returns how many dwellings to propose for a submarket.
func (m *ConstructionModel) Shortage(key registry.MarketKey) int {
	vac := m.reg.Vacancies()
	total := vac.Total(key)
	if total == 0 {
		return 0
	}
	target := m.structural[key.Type] * float64(total)
	missing := target - float64(vac.Vacant(key))
	if missing <= 0 {
		return 0
	}
	return int(math.Ceil(m.cfg.ShortageShare * missing))
}

func (m *ConstructionModel) PrepareYear(year int) []sim.Event {
	m.year = year
	m.avgPrices = m.averagePrices()
	perRegion := make(map[int]int)
	var events []sim.Event
	for _, key := range m.reg.Vacancies().Keys() {
		n := m.Shortage(key)
		if m.cfg.MaxPerRegion > 0 {
			n = min(n, m.cfg.MaxPerRegion-perRegion[key.Region])
		}
		for i := 0; i < n; i++ {
			events = append(events, sim.NewPairEvent(sim.EventConstruction, key.Region, int(key.Type)))
		}
		perRegion[key.Region] += max(n, 0)
	}
	return events
}

func (m *ConstructionModel) averagePrices() map[registry.MarketKey]int {
	sums := make(map[registry.MarketKey]int)
	counts := make(map[registry.MarketKey]int)
	for _, id := range m.reg.DwellingIDs() {
		d, _ := m.reg.Dwelling(id)
		key := m.reg.MarketKeyOf(d)
		sums[key] += d.Price
		counts[key]++
	}
	out := make(map[registry.MarketKey]int, len(sums))
	for key, sum := range sums {
		out[key] = int(math.Round(float64(sum) / float64(counts[key])))
	}
	return out
}

func (m *ConstructionModel) HandleEvent(ev sim.Event, rng *rand.Rand) bool {
	region, dwellingType := ev.Subject(), registry.DwellingType(ev.Object())
	if !dwellingType.Valid() {
		panic(fmt.Sprintf("construction: event %s carries invalid dwelling type", ev))
	}
	zones := m.zones.ZonesInRegion(region)
	if len(zones) == 0 {
		logrus.Warnf("construction: region %d has no zones", region)
		return false
	}
	if rng.Float64() >= m.cfg.Probability {
		return false
	}
	zone := zones[rng.Intn(len(zones))]

	price, ok := m.avgPrices[registry.MarketKey{Region: region, Type: dwellingType}]
	if !ok {
		price = m.basePrices[dwellingType]
	}
	d := registry.NewDwelling(m.reg.NextDwellingID(), zone, dwellingType, m.reg.Quality().Levels(), max(price, 1))
	d.YearBuilt = m.year
	d.Bedrooms, d.FloorSpace = defaultSize(dwellingType)
	if err := m.reg.AddDwelling(d); err != nil {
		panic(fmt.Sprintf("construction: %v", err))
	}
	return true
}

// defaultSize returns typical bedrooms and floor space (m²) for new dwellings.
func defaultSize(t registry.DwellingType) (bedrooms, floorSpace int) {
	switch t {
	case registry.SFD:
		return 4, 160
	case registry.SFA:
		return 3, 120
	case registry.MF234:
		return 2, 85
	case registry.MF5plus:
		return 2, 70
	default:
		return 2, 60
	}
}
