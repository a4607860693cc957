package sim

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProperties_AreValid(t *testing.T) {
	p := DefaultProperties()
	require.NoError(t, p.Validate())
	assert.Len(t, p.Rules(), len(AllEventTypes()))
}

func TestLoadProperties_EventRulesReplaceDefaults(t *testing.T) {
	// GIVEN a scenario enabling only death and relocation
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	yaml := `
seed: 7
start_year: 2000
end_year: 2001
event_rules:
  death: true
  relocation: true
housing:
  structural_vacancy:
    SFD: 0.04
  pricing:
    max_delta: 0.1
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	// WHEN loaded
	p, err := LoadProperties(path)
	require.NoError(t, err)
	require.NoError(t, p.Validate())

	// THEN only the listed rules are on and unspecified values keep defaults
	rules := p.Rules()
	assert.True(t, rules.Enabled(EventDeath))
	assert.True(t, rules.Enabled(EventRelocation))
	assert.False(t, rules.Enabled(EventBirth))
	assert.Equal(t, int64(7), p.Seed)
	assert.Equal(t, 0.04, p.Housing.StructuralVacancy["SFD"])
	assert.Equal(t, 0.05, p.Housing.StructuralVacancy["MF234"])
	assert.Equal(t, 0.1, p.Housing.Pricing.MaxDelta)
	assert.Equal(t, 1.5, p.Housing.Pricing.InflectionHigh)
}

func TestParseProperties_CalculatorReplacedWhole(t *testing.T) {
	p, err := ParseProperties([]byte(`
demography:
  probabilities:
    death:
      type: age_table
      ages: [0, 100]
      values: [0.01, 0.5]
`))
	require.NoError(t, err)
	assert.Nil(t, p.Demography.Probabilities.Death.FemaleValues)
	assert.NoError(t, p.Validate())
}

func TestParseProperties_UnknownField_ReturnsError(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"top level typo", "sead: 1\n"},
		{"nested typo", "housing:\n  quality_level: 3\n"},
		{"calculator typo", "demography:\n  probabilities:\n    death: {type: constant, valeu: 0.1}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProperties([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestProperties_Validate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Properties)
	}{
		{"end before start", func(p *Properties) { p.EndYear = p.StartYear - 1 }},
		{"unknown event type", func(p *Properties) { p.EventRules["teleport"] = true }},
		{"unknown trace level", func(p *Properties) { p.TraceLevel = "verbose" }},
		{"zero quality levels", func(p *Properties) { p.Housing.QualityLevels = 0 }},
		{"renovation rows mismatch", func(p *Properties) { p.Housing.QualityLevels = 5 }},
		{"unknown dwelling type", func(p *Properties) { p.Housing.StructuralVacancy["castle"] = 0.1 }},
		{"missing dwelling type", func(p *Properties) { delete(p.Housing.StructuralVacancy, "MH") }},
		{"structural vacancy of one", func(p *Properties) { p.Housing.StructuralVacancy["SFD"] = 1 }},
		{"positive slope", func(p *Properties) { p.Housing.Pricing.SlopeMain = 0.5 }},
		{"inflection low above one", func(p *Properties) { p.Housing.Pricing.InflectionLow = 1.2 }},
		{"inflection high below one", func(p *Properties) { p.Housing.Pricing.InflectionHigh = 0.9 }},
		{"max delta one", func(p *Properties) { p.Housing.Pricing.MaxDelta = 1 }},
		{"max vacancy inside curve", func(p *Properties) { p.Housing.Pricing.MaxVacancyRateForPriceChange = 0.05 }},
		{"renovation row all zero", func(p *Properties) { p.Housing.Renovation.Probabilities[0] = []float64{0, 0, 0, 0, 0} }},
		{"renovation row short", func(p *Properties) { p.Housing.Renovation.Probabilities[1] = []float64{1} }},
		{"zero epsilon", func(p *Properties) { p.Housing.Renovation.ShareEpsilon = 0 }},
		{"NaN max delta", func(p *Properties) { p.Housing.Pricing.MaxDelta = math.NaN() }},
		{"NaN main slope", func(p *Properties) { p.Housing.Pricing.SlopeMain = math.NaN() }},
		{"NaN inflection low", func(p *Properties) { p.Housing.Pricing.InflectionLow = math.NaN() }},
		{"infinite inflection high", func(p *Properties) { p.Housing.Pricing.InflectionHigh = math.Inf(1) }},
		{"NaN max vacancy", func(p *Properties) { p.Housing.Pricing.MaxVacancyRateForPriceChange = math.NaN() }},
		{"NaN epsilon", func(p *Properties) { p.Housing.Renovation.ShareEpsilon = math.NaN() }},
		{"NaN structural vacancy", func(p *Properties) { p.Housing.StructuralVacancy["SFA"] = math.NaN() }},
		{"NaN construction probability", func(p *Properties) { p.Housing.Construction.Probability = math.NaN() }},
		{"NaN relocation share", func(p *Properties) { p.Housing.Relocation.LocalShare = math.NaN() }},
		{"NaN immigrant growth", func(p *Properties) { p.Migration.ImmigrantGrowth = math.NaN() }},
		{"NaN beta", func(p *Properties) { p.Accessibility.Beta = math.NaN() }},
		{"bad calculator", func(p *Properties) { p.Demography.Probabilities.Death.Type = "oracle" }},
		{"constant above one", func(p *Properties) { p.Demography.Probabilities.Marriage.Value = 1.5 }},
		{"negative immigrants", func(p *Properties) { p.Migration.ImmigrantsPerYear = -1 }},
		{"positive beta", func(p *Properties) { p.Accessibility.Beta = 0.2 }},
		{"unknown mode", func(p *Properties) { p.Accessibility.Mode = "bike" }},
		{"more regions than zones", func(p *Properties) { p.Synthetic.Regions = p.Synthetic.Zones + 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultProperties()
			tt.mutate(p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestParseProperties_NaNCurveParameter_FailsValidation(t *testing.T) {
	for _, field := range []string{"max_delta", "slope_main", "inflection_low"} {
		t.Run(field, func(t *testing.T) {
			// GIVEN a scenario that sets a curve parameter to .nan
			p, err := ParseProperties([]byte("housing:\n  pricing:\n    " + field + ": .nan\n"))
			require.NoError(t, err)

			// THEN validation rejects it
			err = p.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "finite")
		})
	}
}
