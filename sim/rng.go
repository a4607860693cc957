package sim

import (
	"hash/fnv"
	"math/rand"
)

// SimulationKey is the seed of a run. A run is reproducible from its key,
// its initial registry and the models registered on the scheduler.
type SimulationKey int64

// NewSimulationKey wraps a scenario seed.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// Random stream names.
const (
	// SubsystemEvents shuffles the yearly proposal buffer and feeds every
	// HandleEvent draw. It is seeded with the key itself.
	SubsystemEvents = "events"

	// SubsystemSynthesis feeds the synthetic population loader, which must
	// not consume draws from the event stream.
	SubsystemSynthesis = "synthesis"
)

// PartitionedRNG hands out one *rand.Rand per named stream. The events stream
// uses the key as its seed; any other stream uses key XOR fnv1a(name), so
// adding a stream never shifts the draws of another.
//
// Not safe for concurrent use.
type PartitionedRNG struct {
	key     SimulationKey
	streams map[string]*rand.Rand
}

// NewPartitionedRNG creates the stream set for key. Streams are created on
// first use.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{key: key, streams: make(map[string]*rand.Rand)}
}

// ForSubsystem returns the stream called name, creating it on first use.
// Repeated calls return the same instance, so draws continue where the last
// caller left off.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if r, ok := p.streams[name]; ok {
		return r
	}
	r := rand.New(rand.NewSource(p.seedFor(name)))
	p.streams[name] = r
	return r
}

func (p *PartitionedRNG) seedFor(name string) int64 {
	if name == SubsystemEvents {
		return int64(p.key)
	}
	h := fnv.New64a()
	h.Write([]byte(name))
	return int64(p.key) ^ int64(h.Sum64())
}

// Key returns the run key.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}
