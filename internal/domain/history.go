package domain

import "time"

// Default series caps: per-asset sparklines stay short, the portfolio
// curve keeps a longer window.
const (
	AssetHistoryCap     = 50
	PortfolioHistoryCap = 200
)

// HistoryPoint is one sample of a time series.
type HistoryPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Series is a bounded, chronologically ordered value series with
// incrementally tracked min/max. Eviction drops the single oldest point
// and recomputes min/max by full rescan.
type Series struct {
	cap    int
	points []HistoryPoint
	min    float64
	max    float64
}

// NewSeries creates a series with the given cap.
func NewSeries(cap int) *Series {
	if cap <= 0 {
		cap = AssetHistoryCap
	}
	return &Series{cap: cap, points: make([]HistoryPoint, 0, cap)}
}

// Append adds a point. Duplicate timestamps are allowed; ordering is
// preserved by construction (appends are monotonic in wall time).
func (s *Series) Append(ts time.Time, value float64) {
	s.points = append(s.points, HistoryPoint{Timestamp: ts, Value: value})
	if len(s.points) == 1 {
		s.min, s.max = value, value
	} else {
		if value < s.min {
			s.min = value
		}
		if value > s.max {
			s.max = value
		}
	}
	if len(s.points) > s.cap {
		s.points = s.points[1:]
		s.rescan()
	}
}

func (s *Series) rescan() {
	if len(s.points) == 0 {
		s.min, s.max = 0, 0
		return
	}
	s.min, s.max = s.points[0].Value, s.points[0].Value
	for _, p := range s.points[1:] {
		if p.Value < s.min {
			s.min = p.Value
		}
		if p.Value > s.max {
			s.max = p.Value
		}
	}
}

// Len returns the number of stored points.
func (s *Series) Len() int { return len(s.points) }

// Min returns the tracked minimum value.
func (s *Series) Min() float64 { return s.min }

// Max returns the tracked maximum value.
func (s *Series) Max() float64 { return s.max }

// Last returns the most recent point, or false when empty.
func (s *Series) Last() (HistoryPoint, bool) {
	if len(s.points) == 0 {
		return HistoryPoint{}, false
	}
	return s.points[len(s.points)-1], true
}

// Points returns a copy of the series in chronological order.
func (s *Series) Points() []HistoryPoint {
	out := make([]HistoryPoint, len(s.points))
	copy(out, s.points)
	return out
}
