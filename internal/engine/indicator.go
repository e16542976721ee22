package engine

// TrendSignal is the analyst read on an asset's recent price action.
type TrendSignal string

const (
	TrendBullish TrendSignal = "bullish"
	TrendBearish TrendSignal = "bearish"
	TrendNeutral TrendSignal = "neutral"
)

// Session-wide SMA periods, in price ticks.
const (
	trendShortPeriod = 5
	trendLongPeriod  = 12
)

// TrendIndicator tracks a short and a long simple moving average over
// the tick stream and reports crossovers. It is stateful and
// deterministic; the ring buffer keeps the hot path allocation-free.
type TrendIndicator struct {
	shortPeriod int
	longPeriod  int

	prices []float64
	head   int // next write position
	count  int
	sum    float64 // running sum over the long period

	prevShortSMA float64
	prevLongSMA  float64
	signal       TrendSignal
}

// NewTrendIndicator creates an indicator. shortPeriod must be less
// than longPeriod.
func NewTrendIndicator(shortPeriod, longPeriod int) *TrendIndicator {
	if shortPeriod >= longPeriod {
		panic("TrendIndicator: shortPeriod must be less than longPeriod")
	}
	return &TrendIndicator{
		shortPeriod: shortPeriod,
		longPeriod:  longPeriod,
		prices:      make([]float64, longPeriod),
		signal:      TrendNeutral,
	}
}

// Observe feeds one price tick and returns the current signal. The
// signal flips on a crossover and holds until the next one.
func (t *TrendIndicator) Observe(price float64) TrendSignal {
	if t.count == t.longPeriod {
		t.sum -= t.prices[t.head] // head points at the oldest value when full
	}
	t.prices[t.head] = price
	t.sum += price
	t.head = (t.head + 1) % t.longPeriod
	if t.count < t.longPeriod {
		t.count++
	}

	if t.count < t.longPeriod {
		return t.signal
	}

	currLong := t.sum / float64(t.longPeriod)
	currShort := t.shortSMA()

	if t.prevShortSMA != 0 && t.prevLongSMA != 0 {
		// Golden cross: short rises through long.
		if t.prevShortSMA <= t.prevLongSMA && currShort > currLong {
			t.signal = TrendBullish
		}
		// Dead cross: short falls through long.
		if t.prevShortSMA >= t.prevLongSMA && currShort < currLong {
			t.signal = TrendBearish
		}
	}

	t.prevShortSMA = currShort
	t.prevLongSMA = currLong
	return t.signal
}

// Signal returns the last computed signal without observing a tick.
func (t *TrendIndicator) Signal() TrendSignal {
	return t.signal
}

func (t *TrendIndicator) shortSMA() float64 {
	var sum float64
	idx := t.head
	for i := 0; i < t.shortPeriod; i++ {
		idx--
		if idx < 0 {
			idx = t.longPeriod - 1
		}
		sum += t.prices[idx]
	}
	return sum / float64(t.shortPeriod)
}
