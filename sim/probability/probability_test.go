package probability

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urban-sim/urban-sim/sim/registry"
)

func TestInterpolate_InsideAndOutsideKnots(t *testing.T) {
	xs := []float64{0, 10, 20}
	ys := []float64{0, 1, 0.5}
	tests := []struct {
		x, want float64
	}{
		{-5, 0},
		{0, 0},
		{5, 0.5},
		{10, 1},
		{15, 0.75},
		{20, 0.5},
		{99, 0.5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Interpolate(xs, ys, tt.x), 1e-12, "x=%v", tt.x)
	}
}

func TestAgeTable_FemaleCurve(t *testing.T) {
	table, err := NewAgeTable([]float64{20, 40}, []float64{0.1, 0.3}, []float64{0.2, 0.4})
	require.NoError(t, err)

	assert.InDelta(t, 0.2, table.Probability(Attributes{Age: 30, Sex: registry.Male}), 1e-12)
	assert.InDelta(t, 0.3, table.Probability(Attributes{Age: 30, Sex: registry.Female}), 1e-12)
}

func TestNewAgeTable_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		ages   []float64
		values []float64
	}{
		{"empty", nil, nil},
		{"length mismatch", []float64{1, 2}, []float64{0.1}},
		{"descending", []float64{2, 1}, []float64{0.1, 0.2}},
		{"above one", []float64{1}, []float64{1.5}},
		{"negative", []float64{1}, []float64{-0.1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAgeTable(tt.ages, tt.values, nil)
			assert.Error(t, err)
		})
	}
}

func TestSpec_Build(t *testing.T) {
	c, err := ConstantSpec(0.25).Build()
	require.NoError(t, err)
	assert.Equal(t, 0.25, c.Probability(Attributes{}))

	_, err = Spec{Type: "constant", Value: 2}.Build()
	assert.Error(t, err)

	_, err = Spec{Type: "lookup"}.Build()
	assert.Error(t, err)

	l, err := Spec{Type: "logistic", Intercept: 0}.Build()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, l.Probability(Attributes{Age: 50}), 1e-12)

	_, err = Spec{Type: "logistic", Intercept: math.Inf(1)}.Build()
	assert.Error(t, err)
}
