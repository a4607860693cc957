// Package probability provides the configuration-driven calculators that turn
// entity attributes into event probabilities. Calculators are pure lookups;
// they never draw random numbers.
package probability

import (
	"fmt"
	"math"
	"slices"

	"github.com/urban-sim/urban-sim/sim/registry"
)

// Attributes is the snapshot of entity attributes a calculator may read.
type Attributes struct {
	Age           int
	Sex           registry.Sex
	HouseholdSize int
	Income        int
	Autos         int
	Licenses      int
	Quality       int
}

// Calculator maps attributes to a probability in [0, 1].
type Calculator interface {
	Probability(a Attributes) float64
}

// Constant returns the same probability for everyone.
type Constant float64

func (c Constant) Probability(Attributes) float64 { return clamp01(float64(c)) }

// AgeTable interpolates linearly between age knots, optionally with a
// separate curve for women. Ages outside the knots take the nearest end value.
type AgeTable struct {
	ages         []float64
	values       []float64
	femaleValues []float64
}

// NewAgeTable validates the knots: ascending ages, one value per age, values in [0,1].
func NewAgeTable(ages, values, femaleValues []float64) (*AgeTable, error) {
	if len(ages) == 0 {
		return nil, fmt.Errorf("age table needs at least one knot")
	}
	if len(values) != len(ages) {
		return nil, fmt.Errorf("age table has %d ages but %d values", len(ages), len(values))
	}
	if femaleValues != nil && len(femaleValues) != len(ages) {
		return nil, fmt.Errorf("age table has %d ages but %d female values", len(ages), len(femaleValues))
	}
	if !slices.IsSorted(ages) {
		return nil, fmt.Errorf("age table knots must be ascending")
	}
	for _, v := range append(slices.Clone(values), femaleValues...) {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return nil, fmt.Errorf("age table value %f outside [0,1]", v)
		}
	}
	return &AgeTable{ages: ages, values: values, femaleValues: femaleValues}, nil
}

func (t *AgeTable) Probability(a Attributes) float64 {
	values := t.values
	if a.Sex == registry.Female && t.femaleValues != nil {
		values = t.femaleValues
	}
	return Interpolate(t.ages, values, float64(a.Age))
}

// Logistic evaluates 1 / (1 + exp(-(Intercept + AgeCoefficient*age + IncomeCoefficient*income/1000))).
type Logistic struct {
	Intercept         float64
	AgeCoefficient    float64
	IncomeCoefficient float64
}

func (l Logistic) Probability(a Attributes) float64 {
	u := l.Intercept + l.AgeCoefficient*float64(a.Age) + l.IncomeCoefficient*float64(a.Income)/1000
	return 1 / (1 + math.Exp(-u))
}

// Interpolate evaluates the piecewise-linear function through (xs, ys) at x,
// holding the end values outside the knot range. xs must be ascending.
func Interpolate(xs, ys []float64, x float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	if x <= xs[0] {
		return ys[0]
	}
	last := len(xs) - 1
	if x >= xs[last] {
		return ys[last]
	}
	i, _ := slices.BinarySearch(xs, x)
	// xs[i-1] < x <= xs[i]
	x0, x1 := xs[i-1], xs[i]
	if x1 == x0 {
		return ys[i]
	}
	w := (x - x0) / (x1 - x0)
	return ys[i-1] + w*(ys[i]-ys[i-1])
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
