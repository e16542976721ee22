package engine

import (
	"math"
	"math/rand"
	"time"

	"github.com/NgoTomek/PortfolioPanic/internal/domain"
)

// PriceFloor is the minimum price any asset can reach. Prices never hit
// zero, so positions always retain a market value.
const PriceFloor = 0.01

// Trend-series deviation scales. Chart backfill stays close to the
// interpolated trend; the sparkline preview amplifies texture for small
// renders. Both call sites stay distinct on purpose.
const (
	ChartTrendScale     = 0.3
	SparklineTrendScale = 0.6
)

// PriceModel applies stochastic price updates. All randomness flows
// through the injected source so tests can fix the seed.
type PriceModel struct {
	rand *rand.Rand
}

// NewPriceModel creates a model backed by the given random source.
func NewPriceModel(r *rand.Rand) *PriceModel {
	return &PriceModel{rand: r}
}

// UpdatePrice advances the asset one tick: a log-return composed of the
// market drift and volatility-scaled noise, floored at PriceFloor.
// Returns the new price.
func (m *PriceModel) UpdatePrice(a *domain.Asset, drift float64) float64 {
	noise := m.rand.Float64()*2 - 1
	ret := drift + a.Volatility*noise

	a.PreviousPrice = a.Price
	a.Price = a.Price * math.Exp(ret)
	if a.Price < PriceFloor {
		a.Price = PriceFloor
	}
	return a.Price
}

// ApplyShock multiplies the price by (1 + signed magnitude), used for
// news impact. Floored like a normal tick.
func (m *PriceModel) ApplyShock(a *domain.Asset, signedMagnitude float64) float64 {
	a.PreviousPrice = a.Price
	a.Price = a.Price * (1 + signedMagnitude)
	if a.Price < PriceFloor {
		a.Price = PriceFloor
	}
	return a.Price
}

// ProjectTrendSeries builds an n-point path from start to end: linear
// interpolation as the base trend, the first half pure-interpolated, the
// second half carrying random deviation that fades toward the endpoint.
// Deviation magnitude is volatility*price*scale. The first and last
// values equal start and end exactly.
//
// Timestamps are spaced by step and end at endAt.
func (m *PriceModel) ProjectTrendSeries(start, end, volatility float64, n int, scale float64, endAt time.Time, step time.Duration) []domain.HistoryPoint {
	if n < 2 {
		n = 2
	}
	out := make([]domain.HistoryPoint, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		base := start + (end-start)*t

		value := base
		if i > 0 && i < n-1 && i > n/2 {
			fade := 1 - t
			dev := (m.rand.Float64()*2 - 1) * volatility * base * scale * fade
			value = base + dev
			if value < PriceFloor {
				value = PriceFloor
			}
		}

		out[i] = domain.HistoryPoint{
			Timestamp: endAt.Add(-time.Duration(n-1-i) * step),
			Value:     value,
		}
	}
	return out
}
