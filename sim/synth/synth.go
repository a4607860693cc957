// Package synth generates a synthetic study area: zones and regions, a
// housing stock priced over a smooth noise surface, households with persons,
// jobs and schools. It stands in for the external population readers and
// loads everything through the registry's bulk-load operations.
package synth

import (
	"fmt"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
	"github.com/sirupsen/logrus"

	"github.com/urban-sim/urban-sim/sim"
	"github.com/urban-sim/urban-sim/sim/geo"
	"github.com/urban-sim/urban-sim/sim/registry"
)

// ZoneSpacing is the distance between neighbouring zone centroids in metres.
const ZoneSpacing = 2000.0

// typeShares is the share of each dwelling type in the generated stock.
var typeShares = []struct {
	t     registry.DwellingType
	share float64
}{
	{registry.SFD, 0.45},
	{registry.SFA, 0.10},
	{registry.MF234, 0.15},
	{registry.MF5plus, 0.25},
	{registry.MH, 0.05},
}

// householdSizeShares[i] is the share of households with i+1 members.
var householdSizeShares = []float64{0.30, 0.35, 0.20, 0.15}

const (
	licenseShare    = 0.8
	employmentShare = 0.7
)

// Population is a generated study area.
type Population struct {
	Geography *geo.Geography
	Registry  *registry.Registry
	// PriceFactor is the zone price multiplier sampled from the noise surface.
	PriceFactor map[int]float64
}

type generator struct {
	props *sim.Properties
	rng   *rand.Rand
	pop   *Population
}

// Generate builds a population from the synthetic section of props. All
// draws come from the synthesis stream of rng, so a seed always yields the
// same population and the event stream is left untouched.
func Generate(props *sim.Properties, rng *sim.PartitionedRNG) (*Population, error) {
	g := &generator{props: props, rng: rng.ForSubsystem(sim.SubsystemSynthesis), pop: &Population{}}
	steps := []struct {
		name string
		fn   func() error
	}{
		{"zones", g.zones},
		{"dwellings", g.dwellings},
		{"households", g.households},
		{"jobs", g.jobs},
		{"schools", g.schools},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			return nil, fmt.Errorf("synthesizing %s: %w", s.name, err)
		}
	}
	reg := g.pop.Registry
	logrus.Infof("Synthetic population: %d zones, %d dwellings (%d vacant), %d households, %d persons, %d jobs",
		len(g.pop.Geography.ZoneIDs()), reg.DwellingCount(), reg.Vacancies().Len(),
		reg.HouseholdCount(), reg.PersonCount(), reg.JobCount())
	return g.pop, nil
}

// zones lays zones on a square grid. Regions are contiguous blocks of zone
// ids; the price surface is two-octave noise over the centroids.
func (g *generator) zones() error {
	cfg := g.props.Synthetic
	cols := int(math.Ceil(math.Sqrt(float64(cfg.Zones))))
	noise := opensimplex.NewNormalized(g.rng.Int63())
	zones := make([]geo.Zone, cfg.Zones)
	g.pop.PriceFactor = make(map[int]float64, cfg.Zones)
	for i := range zones {
		x, y := float64(i%cols), float64(i/cols)
		zones[i] = geo.Zone{
			ID:       i,
			Region:   i * cfg.Regions / cfg.Zones,
			Centroid: geo.Point{X: x * ZoneSpacing, Y: y * ZoneSpacing},
		}
		g.pop.PriceFactor[i] = 0.75 + 0.5*octaveNoise(noise, x, y, 2, 0.35, 0.5)
	}
	geography, err := geo.NewGeography(zones)
	if err != nil {
		return err
	}
	g.pop.Geography = geography
	g.pop.Registry = registry.New(g.props.Housing.QualityLevels, geography.RegionOf)
	return nil
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total, amplitude, maxVal := 0.0, 1.0, 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}

func (g *generator) drawType() registry.DwellingType {
	u := g.rng.Float64()
	for _, ts := range typeShares {
		if u < ts.share {
			return ts.t
		}
		u -= ts.share
	}
	return typeShares[len(typeShares)-1].t
}

// Price returns the generated price of a dwelling: the type's base price
// scaled by the zone factor and by quality.
func Price(base int, zoneFactor float64, quality int) int {
	return max(1, int(math.Round(float64(base)*zoneFactor*(0.8+0.1*float64(quality)))))
}

func (g *generator) dwellings() error {
	cfg := g.props.Synthetic
	levels := g.props.Housing.QualityLevels
	reg := g.pop.Registry
	for i := 0; i < cfg.Households+cfg.VacantDwellings; i++ {
		zone := g.rng.Intn(cfg.Zones)
		t := g.drawType()
		quality := 1 + g.rng.Intn(levels)
		d := registry.NewDwelling(reg.NextDwellingID(), zone, t, quality,
			Price(g.props.Housing.BasePrices[t.String()], g.pop.PriceFactor[zone], quality))
		d.Bedrooms = 1 + g.rng.Intn(4)
		d.FloorSpace = 35 + 25*d.Bedrooms + g.rng.Intn(30)
		d.YearBuilt = g.props.StartYear - 1 - g.rng.Intn(70)
		if err := reg.AddDwelling(d); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) drawSex() registry.Sex {
	if g.rng.Intn(2) == 1 {
		return registry.Female
	}
	return registry.Male
}

func (g *generator) adult(age int, sex registry.Sex) *registry.Person {
	demo := g.props.Demography
	occ := registry.Unemployed
	if age >= demo.RetirementAge {
		occ = registry.Retiree
	}
	p := registry.NewPerson(g.pop.Registry.NextPersonID(), age, sex, registry.RoleSingle, occ)
	p.DriverLicense = age >= demo.LicenseAge && g.rng.Float64() < licenseShare
	return p
}

func (g *generator) drawSize() int {
	u := g.rng.Float64()
	for i, share := range householdSizeShares {
		if u < share {
			return i + 1
		}
		u -= share
	}
	return len(householdSizeShares)
}

// households creates one household per occupied dwelling. Dwelling ids
// 0..Households-1 are occupied; the rest stay vacant.
func (g *generator) households() error {
	reg := g.pop.Registry
	demo := g.props.Demography
	for dw := 0; dw < g.props.Synthetic.Households; dw++ {
		h := registry.NewHousehold(reg.NextHouseholdID())
		if err := reg.AddHousehold(h); err != nil {
			return err
		}
		size := g.drawSize()
		head := g.adult(registry.AdultAge+g.rng.Intn(62), g.drawSex())
		if err := reg.AddPerson(head, h.ID); err != nil {
			return err
		}
		licenses := 0
		if head.DriverLicense {
			licenses++
		}
		if size >= 2 {
			age := max(registry.AdultAge, head.Age-5+g.rng.Intn(11))
			spouse := g.adult(age, head.Sex.Opposite())
			if err := reg.AddPerson(spouse, h.ID); err != nil {
				return err
			}
			if err := reg.Marry(head.ID, spouse.ID); err != nil {
				return err
			}
			if spouse.DriverLicense {
				licenses++
			}
		}
		for i := 2; i < size; i++ {
			age := g.rng.Intn(registry.AdultAge)
			occ := registry.Toddler
			if age >= demo.SchoolAge {
				occ = registry.Student
			}
			child := registry.NewPerson(reg.NextPersonID(), age, g.drawSex(), registry.RoleChild, occ)
			if err := reg.AddPerson(child, h.ID); err != nil {
				return err
			}
		}
		h.Autos = min(licenses, g.rng.Intn(3))
		if err := reg.OccupyDwelling(h.ID, dw); err != nil {
			return err
		}
	}
	return nil
}

// jobs creates JobsPerWorker jobs per working-age adult and fills a share of
// them.
func (g *generator) jobs() error {
	reg := g.pop.Registry
	cfg := g.props.Synthetic
	var workers []int
	for _, id := range reg.PersonIDs() {
		p, _ := reg.Person(id)
		if p.Adult() && p.Occupation == registry.Unemployed {
			workers = append(workers, id)
		}
	}
	n := int(math.Round(cfg.JobsPerWorker * float64(len(workers))))
	for i := 0; i < n; i++ {
		j := registry.NewJob(reg.NextJobID(), g.rng.Intn(cfg.Zones), 25000+g.rng.Intn(50000))
		if err := reg.AddJob(j); err != nil {
			return err
		}
	}
	next := 0
	for _, id := range workers {
		if next >= n {
			break
		}
		if g.rng.Float64() < employmentShare {
			if err := reg.AssignJob(id, next); err != nil {
				return err
			}
			next++
		}
	}
	return nil
}

// schools spreads the students over the schools with some spare capacity.
func (g *generator) schools() error {
	reg := g.pop.Registry
	cfg := g.props.Synthetic
	if cfg.Schools == 0 {
		return nil
	}
	var students []int
	for _, id := range reg.PersonIDs() {
		if p, _ := reg.Person(id); p.Occupation == registry.Student {
			students = append(students, id)
		}
	}
	capacity := (len(students)+cfg.Schools-1)/cfg.Schools + 10
	for i := 0; i < cfg.Schools; i++ {
		s := &registry.School{ID: i, Zone: g.rng.Intn(cfg.Zones), Capacity: capacity}
		if err := reg.AddSchool(s); err != nil {
			return err
		}
	}
	for i, id := range students {
		if err := reg.EnrollSchool(id, i%cfg.Schools); err != nil {
			return err
		}
	}
	return nil
}
