// Package lifecourse implements the demographic, mobility and labour event
// models and the aging listener. Every model follows the same contract:
// re-validate live state, make one uniform draw against a calculator, mutate.
package lifecourse

import (
	"fmt"
	"math/rand"

	"github.com/urban-sim/urban-sim/sim"
	"github.com/urban-sim/urban-sim/sim/probability"
	"github.com/urban-sim/urban-sim/sim/registry"
)

// Calculators holds one probability calculator per life event.
type Calculators struct {
	Birth         probability.Calculator
	Death         probability.Calculator
	Marriage      probability.Calculator
	Divorce       probability.Calculator
	LeaveParents  probability.Calculator
	Emigration    probability.Calculator
	DriverLicense probability.Calculator
	CarGain       probability.Calculator
	CarLoss       probability.Calculator
	Employment    probability.Calculator
}

// NewCalculators builds the calculators from their configured specs.
func NewCalculators(p sim.DemographyProbabilities) (*Calculators, error) {
	c := &Calculators{}
	targets := []struct {
		name string
		spec probability.Spec
		dst  *probability.Calculator
	}{
		{"birth", p.Birth, &c.Birth},
		{"death", p.Death, &c.Death},
		{"marriage", p.Marriage, &c.Marriage},
		{"divorce", p.Divorce, &c.Divorce},
		{"leave_parents", p.LeaveParents, &c.LeaveParents},
		{"emigration", p.Emigration, &c.Emigration},
		{"driver_license", p.DriverLicense, &c.DriverLicense},
		{"car_gain", p.CarGain, &c.CarGain},
		{"car_loss", p.CarLoss, &c.CarLoss},
		{"employment", p.Employment, &c.Employment},
	}
	for _, t := range targets {
		calc, err := t.spec.Build()
		if err != nil {
			return nil, fmt.Errorf("%s probability: %w", t.name, err)
		}
		*t.dst = calc
	}
	return c, nil
}

// personAttributes snapshots a person and their household for a calculator.
func personAttributes(reg *registry.Registry, p *registry.Person) probability.Attributes {
	a := probability.Attributes{Age: p.Age, Sex: p.Sex, Income: p.Income}
	if h, ok := reg.Household(p.HouseholdID()); ok {
		fillHousehold(reg, h, &a)
	}
	return a
}

// householdAttributes snapshots a household; Age is the oldest member's age.
func householdAttributes(reg *registry.Registry, h *registry.Household) probability.Attributes {
	var a probability.Attributes
	fillHousehold(reg, h, &a)
	for _, m := range reg.Members(h.ID) {
		a.Age = max(a.Age, m.Age)
		a.Income += m.Income
	}
	return a
}

func fillHousehold(reg *registry.Registry, h *registry.Household, a *probability.Attributes) {
	a.HouseholdSize = h.Size()
	a.Autos = h.Autos
	for _, m := range reg.Members(h.ID) {
		if m.DriverLicense {
			a.Licenses++
		}
	}
	if d, ok := reg.Dwelling(h.DwellingID()); ok {
		a.Quality = d.Quality()
	}
}

// accept makes the single probability draw of an event.
func accept(rng *rand.Rand, calc probability.Calculator, a probability.Attributes) bool {
	return rng.Float64() < calc.Probability(a)
}

// must turns a registry error after re-validation into a panic: the model
// checked the precondition, so a failure means corrupted state.
func must(model string, err error) {
	if err != nil {
		panic(fmt.Sprintf("%s: %v", model, err))
	}
}

func mustRemoved(model string) func([]int, error) {
	return func(_ []int, err error) { must(model, err) }
}
