package engine

import "testing"

func TestTrendIndicatorNeutralUntilWarm(t *testing.T) {
	ind := NewTrendIndicator(3, 6)

	for i := 0; i < 5; i++ {
		if got := ind.Observe(100); got != TrendNeutral {
			t.Fatalf("Expected neutral before warm-up, got %s at tick %d", got, i)
		}
	}
}

func TestTrendIndicatorGoldenCross(t *testing.T) {
	ind := NewTrendIndicator(3, 6)

	for i := 0; i < 8; i++ {
		ind.Observe(100)
	}
	var got TrendSignal
	for _, p := range []float64{101, 103, 106, 110} {
		got = ind.Observe(p)
	}
	if got != TrendBullish {
		t.Errorf("Expected bullish after rally, got %s", got)
	}
}

func TestTrendIndicatorDeadCross(t *testing.T) {
	ind := NewTrendIndicator(3, 6)

	for i := 0; i < 8; i++ {
		ind.Observe(100)
	}
	var got TrendSignal
	for _, p := range []float64{99, 97, 94, 90} {
		got = ind.Observe(p)
	}
	if got != TrendBearish {
		t.Errorf("Expected bearish after selloff, got %s", got)
	}
}

func TestTrendIndicatorSignalHolds(t *testing.T) {
	ind := NewTrendIndicator(3, 6)

	for i := 0; i < 8; i++ {
		ind.Observe(100)
	}
	for _, p := range []float64{101, 103, 106, 110} {
		ind.Observe(p)
	}
	// No new cross: signal persists.
	ind.Observe(110)
	if got := ind.Signal(); got != TrendBullish {
		t.Errorf("Expected signal to hold without a cross, got %s", got)
	}
}

func TestTrendIndicatorRejectsBadPeriods(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for shortPeriod >= longPeriod")
		}
	}()
	NewTrendIndicator(6, 6)
}
