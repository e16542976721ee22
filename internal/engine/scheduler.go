package engine

import (
	"math"
	"math/rand"
	"sort"
	"time"
)

// MinEventGap is the minimum spacing between two scheduled news
// events. Enforced at construction so events never coalesce when the
// loop consumes them.
const MinEventGap = 100 * time.Millisecond

// eventsPerDensity converts the density parameter into an event count.
const eventsPerDensity = 4.0

// DefaultDensityTable maps round (1..10) to event density. Monotonic:
// later rounds are busier.
var DefaultDensityTable = []float64{0.5, 0.7, 0.9, 1.1, 1.3, 1.5, 1.7, 1.9, 2.1, 2.4}

// Scheduler decides how many news events a round gets and when they
// fire. The density policy table comes from configuration.
type Scheduler struct {
	rand    *rand.Rand
	density []float64 // indexed by round-1
}

// NewScheduler creates a scheduler. A nil or empty table falls back to
// DefaultDensityTable.
func NewScheduler(r *rand.Rand, densityTable []float64) *Scheduler {
	if len(densityTable) == 0 {
		densityTable = DefaultDensityTable
	}
	return &Scheduler{rand: r, density: densityTable}
}

// DensityForRound returns the event density for a round, clamped to the
// table bounds.
func (s *Scheduler) DensityForRound(round int) float64 {
	if round < 1 {
		round = 1
	}
	if round > len(s.density) {
		round = len(s.density)
	}
	return s.density[round-1]
}

// EventCountForDensity converts density into a whole event count, at
// least one per round.
func (s *Scheduler) EventCountForDensity(density float64) int {
	n := int(math.Round(density * eventsPerDensity))
	if n < 1 {
		n = 1
	}
	return n
}

// ScheduleOffsets draws count offsets strictly inside (0, roundDuration),
// sorted ascending, no two closer than MinEventGap. Higher density
// shifts the draw window earlier so busy rounds front-load their events.
func (s *Scheduler) ScheduleOffsets(count int, roundDuration time.Duration, density float64) []time.Duration {
	if count <= 0 || roundDuration <= 2*MinEventGap {
		return nil
	}

	window := roundDuration - 2*MinEventGap
	if density > 1 {
		// Compress the window so extra events cluster before the round tail.
		compressed := time.Duration(float64(window) / math.Sqrt(density))
		if compressed > time.Duration(count)*2*MinEventGap {
			window = compressed
		}
	}

	offsets := make([]time.Duration, 0, count)
	maxAttempts := count * 100
	for attempt := 0; attempt < maxAttempts && len(offsets) < count; attempt++ {
		candidate := MinEventGap + time.Duration(s.rand.Int63n(int64(window)))
		ok := true
		for _, o := range offsets {
			if absDuration(candidate-o) < MinEventGap {
				ok = false
				break
			}
		}
		if ok {
			offsets = append(offsets, candidate)
		}
	}

	// Rejection sampling can starve on tiny rounds; fall back to an even
	// spread. The spread keeps the gap invariant by construction, so when
	// the span cannot fit count events MinEventGap apart the excess
	// events are dropped rather than packed closer.
	if len(offsets) < count {
		span := roundDuration - 2*MinEventGap
		if fit := int(span / MinEventGap); count > fit {
			count = fit
		}
		if count < 1 {
			count = 1
		}
		offsets = offsets[:0]
		for i := 0; i < count; i++ {
			offsets = append(offsets, MinEventGap+time.Duration(int64(span)*int64(i)/int64(count)))
		}
	}

	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })
	return offsets
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
