package housing

import (
	"math"

	"github.com/urban-sim/urban-sim/sim"
)

// PriceCurve maps a submarket's vacancy rate to a yearly price change rate.
// Around the structural vacancy rate s it has three linear regimes joined at
// s*InflectionLow and s*InflectionHigh, is clamped to [1-MaxDelta, 1+MaxDelta]
// and is held constant above MaxVacancyRateForPriceChange.
type PriceCurve struct {
	Structural float64
	sim.PricingConfig
}

// NewPriceCurve creates the curve of one dwelling type.
func NewPriceCurve(structural float64, cfg sim.PricingConfig) PriceCurve {
	return PriceCurve{Structural: structural, PricingConfig: cfg}
}

// LowInflection returns the vacancy rate where the low regime ends.
func (c PriceCurve) LowInflection() float64 { return c.Structural * c.InflectionLow }

// HighInflection returns the vacancy rate where the high regime starts.
func (c PriceCurve) HighInflection() float64 { return c.Structural * c.InflectionHigh }

// raw evaluates the unclamped piecewise-linear curve. Each regime is anchored
// on its neighbour so the curve is continuous at both inflection points, and
// the main regime passes through 1 at the structural rate.
func (c PriceCurve) raw(v float64) float64 {
	s, lo, hi := c.Structural, c.LowInflection(), c.HighInflection()
	switch {
	case v < lo:
		return 1 - lo*c.SlopeLow - s*c.SlopeMain + lo*c.SlopeMain + c.SlopeLow*v
	case v < hi:
		return 1 - s*c.SlopeMain + c.SlopeMain*v
	default:
		return 1 - c.SlopeHigh*hi - s*c.SlopeMain + hi*c.SlopeMain + c.SlopeHigh*v
	}
}

func (c PriceCurve) clamp(r float64) float64 {
	return math.Max(1-c.MaxDelta, math.Min(1+c.MaxDelta, r))
}

// ChangeRate returns the multiplicative price change for a vacancy rate.
func (c PriceCurve) ChangeRate(vacancyRate float64) float64 {
	if vacancyRate >= c.MaxVacancyRateForPriceChange {
		return math.Min(1, c.clamp(c.raw(c.MaxVacancyRateForPriceChange)))
	}
	return c.clamp(c.raw(vacancyRate))
}

// RateFor computes the change rate from counts. An empty submarket does not
// change.
func (c PriceCurve) RateFor(vacant, total int) float64 {
	if total <= 0 {
		return 1
	}
	return c.ChangeRate(float64(vacant) / float64(total))
}

// CurvePoint is one sample of the curve.
type CurvePoint struct {
	VacancyRate float64
	ChangeRate  float64
}

// Table samples the curve over [0, 1] in steps of step.
func (c PriceCurve) Table(step float64) []CurvePoint {
	if step <= 0 || step > 1 {
		step = 0.01
	}
	n := int(math.Round(1 / step))
	out := make([]CurvePoint, 0, n+1)
	for i := 0; i <= n; i++ {
		v := math.Min(1, float64(i)*step)
		out = append(out, CurvePoint{VacancyRate: v, ChangeRate: c.ChangeRate(v)})
	}
	return out
}
