package registry

import "fmt"

// QualityTracker counts dwellings per quality level (1..Levels). Counts are
// maintained incrementally; the base-year shares are frozen once so that the
// renovation model can pull the current distribution back towards them.
type QualityTracker struct {
	counts  []int // index 0 unused
	initial []float64
	frozen  bool
	total   int
}

func newQualityTracker(levels int) *QualityTracker {
	return &QualityTracker{
		counts:  make([]int, levels+1),
		initial: make([]float64, levels+1),
	}
}

// Levels returns the number of quality levels.
func (q *QualityTracker) Levels() int { return len(q.counts) - 1 }

// Valid reports whether level is inside 1..Levels.
func (q *QualityTracker) Valid(level int) bool { return level >= 1 && level < len(q.counts) }

func (q *QualityTracker) add(level int) {
	if !q.Valid(level) {
		panic(fmt.Sprintf("quality tracker: level %d outside 1..%d", level, q.Levels()))
	}
	q.counts[level]++
	q.total++
}

func (q *QualityTracker) move(from, to int) {
	if !q.Valid(from) || !q.Valid(to) {
		panic(fmt.Sprintf("quality tracker: move %d->%d outside 1..%d", from, to, q.Levels()))
	}
	if q.counts[from] == 0 {
		panic(fmt.Sprintf("quality tracker: negative count at level %d", from))
	}
	q.counts[from]--
	q.counts[to]++
}

// Count returns the number of dwellings at a level.
func (q *QualityTracker) Count(level int) int {
	if !q.Valid(level) {
		return 0
	}
	return q.counts[level]
}

// Total returns the number of tracked dwellings.
func (q *QualityTracker) Total() int { return q.total }

// Share returns the current share of dwellings at a level (0 when empty).
func (q *QualityTracker) Share(level int) float64 {
	if q.total == 0 || !q.Valid(level) {
		return 0
	}
	return float64(q.counts[level]) / float64(q.total)
}

// FreezeInitialShares records the current shares as the base-year
// distribution. Later calls are no-ops.
func (q *QualityTracker) FreezeInitialShares() {
	if q.frozen {
		return
	}
	for level := 1; level < len(q.counts); level++ {
		q.initial[level] = q.Share(level)
	}
	q.frozen = true
}

// InitialShare returns the frozen base-year share of a level.
func (q *QualityTracker) InitialShare(level int) float64 {
	if !q.Valid(level) {
		return 0
	}
	return q.initial[level]
}

// Shares returns the current shares indexed by level (index 0 unused).
func (q *QualityTracker) Shares() []float64 {
	out := make([]float64, len(q.counts))
	for level := 1; level < len(q.counts); level++ {
		out[level] = q.Share(level)
	}
	return out
}
