package sim

import (
	"bytes"
	"fmt"
	"maps"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/urban-sim/urban-sim/sim/probability"
	"github.com/urban-sim/urban-sim/sim/registry"
	"github.com/urban-sim/urban-sim/sim/trace"
)

// Properties is the scenario configuration, loadable from a YAML file.
// All sections must be listed to satisfy KnownFields(true) strict parsing.
type Properties struct {
	Seed          int64               `yaml:"seed"`
	StartYear     int                 `yaml:"start_year"`
	EndYear       int                 `yaml:"end_year"`
	EventRules    map[string]bool     `yaml:"event_rules"`
	TraceLevel    string              `yaml:"trace_level"`
	Housing       HousingConfig       `yaml:"housing"`
	Demography    DemographyConfig    `yaml:"demography"`
	Migration     MigrationConfig     `yaml:"migration"`
	Economy       EconomyConfig       `yaml:"economy"`
	Accessibility AccessibilityConfig `yaml:"accessibility"`
	Synthetic     SyntheticConfig     `yaml:"synthetic"`
}

// HousingConfig groups the housing market parameters.
type HousingConfig struct {
	QualityLevels     int                `yaml:"quality_levels"`
	StructuralVacancy map[string]float64 `yaml:"structural_vacancy"` // dwelling type name -> target vacancy rate
	BasePrices        map[string]int     `yaml:"base_prices"`        // dwelling type name -> price of new dwellings
	Pricing           PricingConfig      `yaml:"pricing"`
	Renovation        RenovationConfig   `yaml:"renovation"`
	Construction      ConstructionConfig `yaml:"construction"`
	Relocation        RelocationConfig   `yaml:"relocation"`
}

// PricingConfig holds the change-rate curve parameters. Inflection points are
// multiples of the structural vacancy rate; slopes are change-rate per unit of
// vacancy rate and must be non-positive.
type PricingConfig struct {
	InflectionLow                float64 `yaml:"inflection_low"`
	InflectionHigh               float64 `yaml:"inflection_high"`
	SlopeLow                     float64 `yaml:"slope_low"`
	SlopeMain                    float64 `yaml:"slope_main"`
	SlopeHigh                    float64 `yaml:"slope_high"`
	MaxDelta                     float64 `yaml:"max_delta"`
	MaxVacancyRateForPriceChange float64 `yaml:"max_vacancy_rate_for_price_change"`
}

// RenovationConfig holds one row of [-2, -1, 0, +1, +2] transition weights
// per quality level, lowest level first.
type RenovationConfig struct {
	Probabilities [][]float64 `yaml:"probabilities"`
	ShareEpsilon  float64     `yaml:"share_epsilon"`
}

// ConstructionConfig controls new dwellings in markets short of supply.
type ConstructionConfig struct {
	Probability   float64 `yaml:"probability"`
	ShortageShare float64 `yaml:"shortage_share"`
	MaxPerRegion  int     `yaml:"max_per_region"`
}

// RelocationConfig controls voluntary moves.
type RelocationConfig struct {
	Probability float64 `yaml:"probability"`
	LocalShare  float64 `yaml:"local_share"`
}

// DemographyConfig groups age thresholds and life-event probabilities.
type DemographyConfig struct {
	MinFertileAge int                    `yaml:"min_fertile_age"`
	MaxFertileAge int                    `yaml:"max_fertile_age"`
	LicenseAge    int                    `yaml:"license_age"`
	SchoolAge     int                    `yaml:"school_age"`
	RetirementAge int                    `yaml:"retirement_age"`
	Probabilities DemographyProbabilities `yaml:"probabilities"`
}

// DemographyProbabilities holds one calculator per life event.
type DemographyProbabilities struct {
	Birth         probability.Spec `yaml:"birth"`
	Death         probability.Spec `yaml:"death"`
	Marriage      probability.Spec `yaml:"marriage"`
	Divorce       probability.Spec `yaml:"divorce"`
	LeaveParents  probability.Spec `yaml:"leave_parents"`
	Emigration    probability.Spec `yaml:"emigration"`
	DriverLicense probability.Spec `yaml:"driver_license"`
	CarGain       probability.Spec `yaml:"car_gain"`
	CarLoss       probability.Spec `yaml:"car_loss"`
	Employment    probability.Spec `yaml:"employment"`
}

// Named returns the calculators keyed by event name, for validation.
func (d DemographyProbabilities) Named() map[string]probability.Spec {
	return map[string]probability.Spec{
		"birth": d.Birth, "death": d.Death, "marriage": d.Marriage, "divorce": d.Divorce,
		"leave_parents": d.LeaveParents, "emigration": d.Emigration,
		"driver_license": d.DriverLicense, "car_gain": d.CarGain, "car_loss": d.CarLoss,
		"employment": d.Employment,
	}
}

// MigrationConfig controls immigration volume.
type MigrationConfig struct {
	ImmigrantsPerYear int     `yaml:"immigrants_per_year"`
	ImmigrantGrowth   float64 `yaml:"immigrant_growth"`
	MaxHouseholdSize  int     `yaml:"max_household_size"`
}

// EconomyConfig controls the exogenous job forecast.
type EconomyConfig struct {
	JobGrowthRate float64 `yaml:"job_growth_rate"`
}

// AccessibilityConfig controls the annual accessibility recomputation.
type AccessibilityConfig struct {
	Beta           float64 `yaml:"beta"`
	Mode           string  `yaml:"mode"`
	TimeOfDayHours float64 `yaml:"time_of_day_hours"`
}

// SyntheticConfig sizes the generated demo population.
type SyntheticConfig struct {
	Households      int     `yaml:"households"`
	VacantDwellings int     `yaml:"vacant_dwellings"`
	Zones           int     `yaml:"zones"`
	Regions         int     `yaml:"regions"`
	JobsPerWorker   float64 `yaml:"jobs_per_worker"`
	Schools         int     `yaml:"schools"`
}

// DefaultProperties returns a complete, valid scenario.
func DefaultProperties() *Properties {
	rules := make(map[string]bool, len(allEventTypes))
	for _, t := range allEventTypes {
		rules[string(t)] = true
	}
	return &Properties{
		Seed:       42,
		StartYear:  2011,
		EndYear:    2020,
		EventRules: rules,
		TraceLevel: string(trace.TraceLevelNone),
		Housing: HousingConfig{
			QualityLevels: 4,
			StructuralVacancy: map[string]float64{
				"SFD": 0.03, "SFA": 0.03, "MF234": 0.05, "MF5plus": 0.05, "MH": 0.05,
			},
			BasePrices: map[string]int{
				"SFD": 1500, "SFA": 1200, "MF234": 900, "MF5plus": 800, "MH": 500,
			},
			Pricing: PricingConfig{
				InflectionLow:                0.5,
				InflectionHigh:               1.5,
				SlopeLow:                     -10,
				SlopeMain:                    -1,
				SlopeHigh:                    -0.5,
				MaxDelta:                     0.05,
				MaxVacancyRateForPriceChange: 0.15,
			},
			Renovation: RenovationConfig{
				Probabilities: [][]float64{
					{0.00, 0.00, 0.90, 0.08, 0.02},
					{0.00, 0.05, 0.88, 0.06, 0.01},
					{0.01, 0.06, 0.88, 0.05, 0.00},
					{0.02, 0.08, 0.90, 0.00, 0.00},
				},
				ShareEpsilon: 0.0001,
			},
			Construction: ConstructionConfig{Probability: 0.5, ShortageShare: 0.5, MaxPerRegion: 50},
			Relocation:   RelocationConfig{Probability: 0.05, LocalShare: 0.7},
		},
		Demography: DemographyConfig{
			MinFertileAge: 15,
			MaxFertileAge: 45,
			LicenseAge:    17,
			SchoolAge:     6,
			RetirementAge: 65,
			Probabilities: DemographyProbabilities{
				Birth: probability.Spec{Type: "age_table",
					Ages: []float64{15, 25, 35, 45}, Values: []float64{0.02, 0.10, 0.06, 0.0}},
				Death: probability.Spec{Type: "age_table",
					Ages:         []float64{0, 40, 60, 80, 100},
					Values:       []float64{0.001, 0.002, 0.01, 0.06, 0.3},
					FemaleValues: []float64{0.001, 0.0015, 0.008, 0.05, 0.28}},
				Marriage: probability.ConstantSpec(0.05),
				Divorce:  probability.ConstantSpec(0.02),
				LeaveParents: probability.Spec{Type: "age_table",
					Ages: []float64{18, 25, 35}, Values: []float64{0.05, 0.2, 0.3}},
				Emigration:    probability.ConstantSpec(0.005),
				DriverLicense: probability.ConstantSpec(0.3),
				CarGain:       probability.ConstantSpec(0.2),
				CarLoss:       probability.ConstantSpec(0.1),
				Employment:    probability.ConstantSpec(0.4),
			},
		},
		Migration:     MigrationConfig{ImmigrantsPerYear: 10, ImmigrantGrowth: 0, MaxHouseholdSize: 4},
		Economy:       EconomyConfig{JobGrowthRate: 0.01},
		Accessibility: AccessibilityConfig{Beta: -0.1, Mode: "car", TimeOfDayHours: 8},
		Synthetic: SyntheticConfig{
			Households:      100,
			VacantDwellings: 20,
			Zones:           16,
			Regions:         4,
			JobsPerWorker:   1.1,
			Schools:         2,
		},
	}
}

// LoadProperties reads a scenario file over DefaultProperties. event_rules,
// when present, replaces the default rule set instead of merging with it.
func LoadProperties(path string) (*Properties, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseProperties(data)
}

// ParseProperties decodes YAML scenario bytes with strict field checking.
func ParseProperties(data []byte) (*Properties, error) {
	p := DefaultProperties()
	defaultRules := p.EventRules
	p.EventRules = nil
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(p); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if p.EventRules == nil {
		p.EventRules = defaultRules
	}
	return p, nil
}

// Rules converts the event_rules section to scheduler rules.
func (p *Properties) Rules() EventRules {
	r := make(EventRules, len(p.EventRules))
	for name, on := range p.EventRules {
		r[EventType(name)] = on
	}
	return r
}

// Validate checks names and parameter ranges. It returns the first problem found.
func (p *Properties) Validate() error {
	if p.EndYear < p.StartYear {
		return fmt.Errorf("end_year %d before start_year %d", p.EndYear, p.StartYear)
	}
	for _, name := range slices.Sorted(maps.Keys(p.EventRules)) {
		if !IsValidEventType(name) {
			return fmt.Errorf("unknown event type %q in event_rules", name)
		}
	}
	if !trace.IsValidTraceLevel(p.TraceLevel) {
		return fmt.Errorf("unknown trace_level %q", p.TraceLevel)
	}
	if err := p.Housing.validate(); err != nil {
		return fmt.Errorf("housing: %w", err)
	}
	if err := p.Demography.validate(); err != nil {
		return fmt.Errorf("demography: %w", err)
	}
	if !finite(p.Migration.ImmigrantGrowth, p.Economy.JobGrowthRate, p.Accessibility.Beta,
		p.Accessibility.TimeOfDayHours, p.Synthetic.JobsPerWorker) {
		return fmt.Errorf("migration, economy, accessibility and synthetic rates must be finite numbers")
	}
	if p.Migration.ImmigrantsPerYear < 0 {
		return fmt.Errorf("migration.immigrants_per_year must be non-negative, got %d", p.Migration.ImmigrantsPerYear)
	}
	if p.Migration.ImmigrantGrowth <= -1 {
		return fmt.Errorf("migration.immigrant_growth must be > -1, got %f", p.Migration.ImmigrantGrowth)
	}
	if p.Migration.MaxHouseholdSize < 1 {
		return fmt.Errorf("migration.max_household_size must be >= 1, got %d", p.Migration.MaxHouseholdSize)
	}
	if p.Economy.JobGrowthRate <= -1 {
		return fmt.Errorf("economy.job_growth_rate must be > -1, got %f", p.Economy.JobGrowthRate)
	}
	if p.Accessibility.Beta > 0 {
		return fmt.Errorf("accessibility.beta must be non-positive, got %f", p.Accessibility.Beta)
	}
	if !map[string]bool{"car": true, "transit": true, "walk": true}[p.Accessibility.Mode] {
		return fmt.Errorf("unknown accessibility.mode %q", p.Accessibility.Mode)
	}
	if p.Accessibility.TimeOfDayHours < 0 || p.Accessibility.TimeOfDayHours >= 24 {
		return fmt.Errorf("accessibility.time_of_day_hours must be in [0,24), got %f", p.Accessibility.TimeOfDayHours)
	}
	s := p.Synthetic
	if s.Households < 0 || s.VacantDwellings < 0 || s.Schools < 0 || s.JobsPerWorker < 0 {
		return fmt.Errorf("synthetic sizes must be non-negative")
	}
	if s.Zones < 1 || s.Regions < 1 || s.Regions > s.Zones {
		return fmt.Errorf("synthetic needs 1 <= regions <= zones, got regions=%d zones=%d", s.Regions, s.Zones)
	}
	return nil
}

func (h HousingConfig) validate() error {
	if h.QualityLevels < 1 {
		return fmt.Errorf("quality_levels must be >= 1, got %d", h.QualityLevels)
	}
	for _, name := range slices.Sorted(maps.Keys(h.StructuralVacancy)) {
		if _, err := registry.DwellingTypeFromName(name); err != nil {
			return fmt.Errorf("structural_vacancy: %w", err)
		}
		if v := h.StructuralVacancy[name]; !inUnit(v) || v >= 1 {
			return fmt.Errorf("structural_vacancy[%s] must be in [0,1), got %f", name, v)
		}
	}
	for _, t := range registry.DwellingTypes() {
		if _, ok := h.StructuralVacancy[t.String()]; !ok {
			return fmt.Errorf("structural_vacancy missing dwelling type %s", t)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(h.BasePrices)) {
		if _, err := registry.DwellingTypeFromName(name); err != nil {
			return fmt.Errorf("base_prices: %w", err)
		}
		if h.BasePrices[name] < 1 {
			return fmt.Errorf("base_prices[%s] must be >= 1, got %d", name, h.BasePrices[name])
		}
	}
	maxStructural := 0.0
	for _, v := range h.StructuralVacancy {
		maxStructural = math.Max(maxStructural, v)
	}
	if err := h.Pricing.Validate(maxStructural); err != nil {
		return fmt.Errorf("pricing: %w", err)
	}

	r := h.Renovation
	if len(r.Probabilities) != h.QualityLevels {
		return fmt.Errorf("renovation.probabilities has %d rows, want one per quality level (%d)", len(r.Probabilities), h.QualityLevels)
	}
	for i, row := range r.Probabilities {
		if len(row) != 5 {
			return fmt.Errorf("renovation.probabilities[%d] has %d entries, want 5", i, len(row))
		}
		sum := 0.0
		for _, v := range row {
			if v < 0 || math.IsNaN(v) {
				return fmt.Errorf("renovation.probabilities[%d] has negative entry %f", i, v)
			}
			sum += v
		}
		if sum <= 0 {
			return fmt.Errorf("renovation.probabilities[%d] must sum to a positive number", i)
		}
	}
	if !finite(r.ShareEpsilon) || r.ShareEpsilon <= 0 {
		return fmt.Errorf("renovation.share_epsilon must be positive, got %f", r.ShareEpsilon)
	}

	c := h.Construction
	if !inUnit(c.Probability) || !inUnit(c.ShortageShare) {
		return fmt.Errorf("construction probability and shortage_share must be in [0,1]")
	}
	if c.MaxPerRegion < 0 {
		return fmt.Errorf("construction.max_per_region must be non-negative, got %d", c.MaxPerRegion)
	}
	if !inUnit(h.Relocation.Probability) || !inUnit(h.Relocation.LocalShare) {
		return fmt.Errorf("relocation probability and local_share must be in [0,1]")
	}
	return nil
}

// Validate checks the curve is non-increasing, continuous and bounded for
// every structural vacancy rate up to maxStructural.
func (c PricingConfig) Validate(maxStructural float64) error {
	if !finite(c.InflectionLow, c.InflectionHigh, c.SlopeLow, c.SlopeMain, c.SlopeHigh,
		c.MaxDelta, c.MaxVacancyRateForPriceChange) {
		return fmt.Errorf("curve parameters must be finite numbers, got %+v", c)
	}
	if c.SlopeLow > 0 || c.SlopeMain > 0 || c.SlopeHigh > 0 {
		return fmt.Errorf("slopes must be non-positive, got low=%f main=%f high=%f", c.SlopeLow, c.SlopeMain, c.SlopeHigh)
	}
	if c.InflectionLow <= 0 || c.InflectionLow > 1 {
		return fmt.Errorf("inflection_low must be in (0,1], got %f", c.InflectionLow)
	}
	if c.InflectionHigh < 1 {
		return fmt.Errorf("inflection_high must be >= 1, got %f", c.InflectionHigh)
	}
	if c.MaxDelta < 0 || c.MaxDelta >= 1 {
		return fmt.Errorf("max_delta must be in [0,1), got %f", c.MaxDelta)
	}
	if c.MaxVacancyRateForPriceChange <= maxStructural*c.InflectionHigh || c.MaxVacancyRateForPriceChange > 1 {
		return fmt.Errorf("max_vacancy_rate_for_price_change must be in (%f,1], got %f",
			maxStructural*c.InflectionHigh, c.MaxVacancyRateForPriceChange)
	}
	return nil
}

func (d DemographyConfig) validate() error {
	if d.MinFertileAge < 0 || d.MaxFertileAge < d.MinFertileAge {
		return fmt.Errorf("fertile ages must satisfy 0 <= min <= max, got %d..%d", d.MinFertileAge, d.MaxFertileAge)
	}
	if d.LicenseAge < 0 || d.SchoolAge < 0 || d.RetirementAge < registry.AdultAge {
		return fmt.Errorf("license_age, school_age must be non-negative and retirement_age >= %d", registry.AdultAge)
	}
	named := d.Probabilities.Named()
	for _, name := range slices.Sorted(maps.Keys(named)) {
		if _, err := named[name].Build(); err != nil {
			return fmt.Errorf("probabilities.%s: %w", name, err)
		}
	}
	return nil
}

func inUnit(v float64) bool { return v >= 0 && v <= 1 }

// finite reports whether no value is NaN or infinite.
func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

