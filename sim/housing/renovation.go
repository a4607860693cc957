package housing

import (
	"fmt"
	"math/rand"

	"github.com/urban-sim/urban-sim/sim"
	"github.com/urban-sim/urban-sim/sim/registry"
)

// qualityOffsets are the transitions of the five-way renovation draw.
var qualityOffsets = [5]int{-2, -1, 0, 1, 2}

// RenovationModel proposes one renovation event per dwelling and moves its
// quality by -2..+2 levels. The ±1/±2 weights are scaled by the ratio of the
// destination level's base-year share to its current share, pulling the
// distribution back towards the base year. The no-change weight is left
// unscaled.
type RenovationModel struct {
	sim.BaseModel
	reg     *registry.Registry
	weights [][]float64 // per quality level (index level-1), offsets -2..+2
	epsilon float64
}

// NewRenovationModel creates the model from the renovation config.
func NewRenovationModel(reg *registry.Registry, cfg sim.RenovationConfig) *RenovationModel {
	return &RenovationModel{reg: reg, weights: cfg.Probabilities, epsilon: cfg.ShareEpsilon}
}

// Setup freezes the base-year quality shares and checks the weight table.
func (m *RenovationModel) Setup() error {
	levels := m.reg.Quality().Levels()
	if len(m.weights) != levels {
		return fmt.Errorf("renovation: %d weight rows for %d quality levels", len(m.weights), levels)
	}
	for i, row := range m.weights {
		if len(row) != len(qualityOffsets) {
			return fmt.Errorf("renovation: row %d has %d weights, want %d", i, len(row), len(qualityOffsets))
		}
	}
	if m.epsilon <= 0 {
		return fmt.Errorf("renovation: share epsilon must be positive")
	}
	m.reg.Quality().FreezeInitialShares()
	return nil
}

func (m *RenovationModel) PrepareYear(int) []sim.Event {
	ids := m.reg.DwellingIDs()
	events := make([]sim.Event, len(ids))
	for i, id := range ids {
		events[i] = sim.NewEvent(sim.EventRenovation, id)
	}
	return events
}

// TransitionWeights returns the re-weighted five-way weights for a dwelling
// at the given quality. Destinations outside the quality scale get zero.
func (m *RenovationModel) TransitionWeights(quality int) [5]float64 {
	q := m.reg.Quality()
	var w [5]float64
	for i, off := range qualityOffsets {
		base := m.weights[quality-1][i]
		if off == 0 {
			w[i] = base
			continue
		}
		dest := quality + off
		if !q.Valid(dest) {
			continue
		}
		current := max(q.Share(dest), m.epsilon)
		w[i] = base * q.InitialShare(dest) / current
	}
	return w
}

func (m *RenovationModel) HandleEvent(ev sim.Event, rng *rand.Rand) bool {
	d, ok := m.reg.Dwelling(ev.Subject())
	if !ok {
		return false
	}
	quality := d.Quality()
	w := m.TransitionWeights(quality)
	sum := 0.0
	for _, x := range w {
		sum += x
	}
	if sum <= 0 {
		return false
	}
	u := rng.Float64() * sum
	choice := len(w) - 1
	for i, x := range w {
		if u < x {
			choice = i
			break
		}
		u -= x
	}
	// guard against rounding landing on a zero-weight tail
	for w[choice] == 0 {
		choice--
	}
	if qualityOffsets[choice] == 0 {
		return false
	}
	if err := m.reg.SetDwellingQuality(d.ID, quality+qualityOffsets[choice]); err != nil {
		panic(fmt.Sprintf("renovation: %v", err))
	}
	return true
}
