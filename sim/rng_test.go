package sim

import (
	"hash/fnv"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draws(r *rand.Rand, n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = r.Int63()
	}
	return out
}

func TestPartitionedRNG_SameKey_SameStreams(t *testing.T) {
	a := NewPartitionedRNG(NewSimulationKey(42))
	b := NewPartitionedRNG(NewSimulationKey(42))

	assert.Equal(t, draws(a.ForSubsystem(SubsystemEvents), 5), draws(b.ForSubsystem(SubsystemEvents), 5))
	assert.Equal(t, draws(a.ForSubsystem(SubsystemSynthesis), 5), draws(b.ForSubsystem(SubsystemSynthesis), 5))
}

func TestPartitionedRNG_SynthesisDoesNotShiftEvents(t *testing.T) {
	// GIVEN two runs with the same key
	a := NewPartitionedRNG(NewSimulationKey(7))
	b := NewPartitionedRNG(NewSimulationKey(7))

	// WHEN only one of them generates a population first
	_ = draws(a.ForSubsystem(SubsystemSynthesis), 1000)

	// THEN both event streams still start at the same draw
	assert.Equal(t, draws(a.ForSubsystem(SubsystemEvents), 10), draws(b.ForSubsystem(SubsystemEvents), 10))
}

func TestPartitionedRNG_EventsSeededWithKey(t *testing.T) {
	for _, seed := range []int64{0, 42, -1} {
		p := NewPartitionedRNG(NewSimulationKey(seed))
		direct := rand.New(rand.NewSource(seed))
		assert.Equal(t, draws(direct, 5), draws(p.ForSubsystem(SubsystemEvents), 5), "seed %d", seed)
	}
}

func TestPartitionedRNG_OtherStreamsSeededWithHashedName(t *testing.T) {
	h := fnv.New64a()
	h.Write([]byte(SubsystemSynthesis))
	want := rand.New(rand.NewSource(42 ^ int64(h.Sum64())))

	p := NewPartitionedRNG(NewSimulationKey(42))

	assert.Equal(t, draws(want, 5), draws(p.ForSubsystem(SubsystemSynthesis), 5))
}

func TestPartitionedRNG_ReturnsCachedStream(t *testing.T) {
	p := NewPartitionedRNG(NewSimulationKey(3))
	first := p.ForSubsystem(SubsystemEvents)
	_ = first.Int63()

	again := p.ForSubsystem(SubsystemEvents)

	require.Same(t, first, again)
	assert.Equal(t, NewSimulationKey(3), p.Key())
}

func TestPartitionedRNG_DifferentKeys_DifferentEvents(t *testing.T) {
	a := NewPartitionedRNG(NewSimulationKey(1))
	b := NewPartitionedRNG(NewSimulationKey(2))

	assert.NotEqual(t, draws(a.ForSubsystem(SubsystemEvents), 5), draws(b.ForSubsystem(SubsystemEvents), 5))
}
