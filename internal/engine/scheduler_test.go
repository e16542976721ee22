package engine

import (
	"math/rand"
	"testing"
	"time"
)

func testScheduler(seed int64) *Scheduler {
	return NewScheduler(rand.New(rand.NewSource(seed)), nil)
}

func TestDensityForRoundMonotonic(t *testing.T) {
	s := testScheduler(1)
	prev := 0.0
	for round := 1; round <= 10; round++ {
		d := s.DensityForRound(round)
		if d <= prev {
			t.Errorf("Expected density to rise at round %d, got %v after %v", round, d, prev)
		}
		prev = d
	}
}

func TestDensityForRoundClamped(t *testing.T) {
	s := testScheduler(1)
	if got := s.DensityForRound(0); got != s.DensityForRound(1) {
		t.Errorf("Expected round 0 clamped to round 1, got %v", got)
	}
	if got := s.DensityForRound(99); got != s.DensityForRound(10) {
		t.Errorf("Expected round 99 clamped to round 10, got %v", got)
	}
}

func TestEventCountForDensity(t *testing.T) {
	s := testScheduler(1)
	cases := []struct {
		density float64
		want    int
	}{
		{0.5, 2},
		{1.0, 4},
		{2.4, 10},
		{0.01, 1}, // never zero events
	}
	for _, c := range cases {
		if got := s.EventCountForDensity(c.density); got != c.want {
			t.Errorf("Expected %d events for density %v, got %d", c.want, c.density, got)
		}
	}
}

func TestScheduleOffsetsInvariants(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		s := testScheduler(seed)
		round := 60 * time.Second
		offsets := s.ScheduleOffsets(10, round, 2.4)

		if len(offsets) != 10 {
			t.Fatalf("seed %d: Expected 10 offsets, got %d", seed, len(offsets))
		}
		for i, o := range offsets {
			if o < MinEventGap || o > round-MinEventGap {
				t.Errorf("seed %d: offset %v outside round window", seed, o)
			}
			if i > 0 {
				if gap := o - offsets[i-1]; gap < MinEventGap {
					t.Errorf("seed %d: gap %v below minimum between %d and %d", seed, gap, i-1, i)
				}
			}
		}
	}
}

func TestScheduleOffsetsStarvedRoundKeepsGap(t *testing.T) {
	// A one-second round cannot fit 10 events 100ms apart; the fallback
	// must drop events rather than pack them closer.
	for seed := int64(1); seed <= 20; seed++ {
		s := testScheduler(seed)
		round := time.Second
		offsets := s.ScheduleOffsets(10, round, 2.4)

		if len(offsets) == 0 || len(offsets) > 8 {
			t.Fatalf("seed %d: Expected 1..8 offsets for a 1s round, got %d", seed, len(offsets))
		}
		for i, o := range offsets {
			if o < MinEventGap || o > round-MinEventGap {
				t.Errorf("seed %d: offset %v outside round window", seed, o)
			}
			if i > 0 {
				if gap := o - offsets[i-1]; gap < MinEventGap {
					t.Errorf("seed %d: gap %v below minimum between %d and %d", seed, gap, i-1, i)
				}
			}
		}
	}
}

func TestScheduleOffsetsTinyRound(t *testing.T) {
	s := testScheduler(3)
	if got := s.ScheduleOffsets(4, 150*time.Millisecond, 1.0); got != nil {
		t.Errorf("Expected nil for a round shorter than two gaps, got %v", got)
	}
}

func TestScheduleOffsetsZeroCount(t *testing.T) {
	s := testScheduler(3)
	if got := s.ScheduleOffsets(0, time.Minute, 1.0); got != nil {
		t.Errorf("Expected nil for zero count, got %v", got)
	}
}
