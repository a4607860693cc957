package probability

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// Spec is the YAML form of a calculator.
type Spec struct {
	Type              string    `yaml:"type"`
	Value             float64   `yaml:"value,omitempty"`
	Ages              []float64 `yaml:"ages,omitempty"`
	Values            []float64 `yaml:"values,omitempty"`
	FemaleValues      []float64 `yaml:"female_values,omitempty"`
	Intercept         float64   `yaml:"intercept,omitempty"`
	AgeCoefficient    float64   `yaml:"age_coefficient,omitempty"`
	IncomeCoefficient float64   `yaml:"income_coefficient,omitempty"`
}

// ValidTypes is the set of recognized calculator types.
var ValidTypes = map[string]bool{"constant": true, "age_table": true, "logistic": true}

// ConstantSpec is shorthand for a constant calculator spec.
func ConstantSpec(p float64) Spec { return Spec{Type: "constant", Value: p} }

// Build turns a spec into a calculator, validating its parameters.
func (s Spec) Build() (Calculator, error) {
	switch s.Type {
	case "constant":
		if math.IsNaN(s.Value) || s.Value < 0 || s.Value > 1 {
			return nil, fmt.Errorf("constant probability %f outside [0,1]", s.Value)
		}
		return Constant(s.Value), nil
	case "age_table":
		return NewAgeTable(s.Ages, s.Values, s.FemaleValues)
	case "logistic":
		for _, v := range []float64{s.Intercept, s.AgeCoefficient, s.IncomeCoefficient} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("logistic coefficients must be finite")
			}
		}
		return Logistic{Intercept: s.Intercept, AgeCoefficient: s.AgeCoefficient, IncomeCoefficient: s.IncomeCoefficient}, nil
	default:
		return nil, fmt.Errorf("unknown calculator type %q; valid: constant, age_table, logistic", s.Type)
	}
}

var specFields = map[string]bool{
	"type": true, "value": true, "ages": true, "values": true, "female_values": true,
	"intercept": true, "age_coefficient": true, "income_coefficient": true,
}

// UnmarshalYAML replaces the whole spec instead of merging into defaults, so a
// scenario switching a calculator's type never inherits stale knots.
func (s *Spec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(value.Content); i += 2 {
			key := value.Content[i]
			if !specFields[key.Value] {
				return fmt.Errorf("line %d: field %s not found in calculator", key.Line, key.Value)
			}
		}
	}
	type plain Spec
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*s = Spec(p)
	return nil
}
