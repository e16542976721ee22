package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/NgoTomek/PortfolioPanic/internal/domain"
)

const (
	backfillPoints   = 20
	sparklinePoints  = 10
	backfillInterval = time.Second
)

// AssetView pairs an asset with its chart and sparkline series.
type AssetView struct {
	Asset     domain.Asset          `json:"asset"`
	History   []domain.HistoryPoint `json:"history"`
	Sparkline []domain.HistoryPoint `json:"sparkline"`
	Sentiment TrendSignal           `json:"sentiment"`
}

// HoldingView is one portfolio position at snapshot time.
type HoldingView struct {
	AssetID       string `json:"asset_id"`
	Quantity      string `json:"quantity"`
	ShortQuantity string `json:"short_quantity"`
	AvgShortPrice string `json:"avg_short_price"`
	MarketValue   string `json:"market_value"`
}

// Snapshot is a self-contained view of the session for rendering. It
// shares no mutable state with the session.
type Snapshot struct {
	User          string                `json:"user"`
	State         GameState             `json:"state"`
	Round         int                   `json:"round"`
	TimeRemaining time.Duration         `json:"time_remaining"`
	Clock         time.Duration         `json:"clock"`
	MarketHealth  float64               `json:"market_health"`
	EventDensity  float64               `json:"event_density"`
	LastNewsAt    time.Duration         `json:"last_news_at"`
	Cash          string                `json:"cash"`
	NetWorth      string                `json:"net_worth"`
	Holdings      []HoldingView         `json:"holdings"`
	Assets        []AssetView           `json:"assets"`
	ActiveNews    []domain.NewsItem     `json:"active_news"`
	Missions      []domain.Mission      `json:"missions"`
	Achievements  []string              `json:"achievements"`
	History       []domain.HistoryPoint `json:"history"`
}

// Snapshot captures the current session state for presentation.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		User:          s.user,
		State:         s.state,
		Round:         s.round,
		TimeRemaining: s.timeRemaining,
		Clock:         s.clock,
		MarketHealth:  s.marketHealth,
		EventDensity:  s.eventDensity,
		LastNewsAt:    s.lastNewsAt,
		Cash:          s.portfolio.Cash.String(),
		NetWorth:      s.netWorth().String(),
		Achievements:  s.achievements.Unlocked(),
		History:       s.portfolioHist.Points(),
	}

	for _, h := range s.portfolio.Snapshot() {
		hv := HoldingView{
			AssetID:       h.AssetID,
			Quantity:      h.Quantity.String(),
			ShortQuantity: h.ShortQuantity.String(),
			AvgShortPrice: h.AvgShortPrice.String(),
		}
		if a, ok := s.assetIdx[h.AssetID]; ok {
			hv.MarketValue = h.MarketValue(decimal.NewFromFloat(a.Price)).String()
		}
		snap.Holdings = append(snap.Holdings, hv)
	}

	for _, a := range s.assets {
		view := AssetView{Asset: *a}
		if hist, ok := s.assetHist[a.ID]; ok {
			view.History = hist.Points()
		}
		view.Sparkline = s.sparklineFor(a)
		if ind, ok := s.indicators[a.ID]; ok {
			view.Sentiment = ind.Signal()
		}
		snap.Assets = append(snap.Assets, view)
	}

	snap.ActiveNews = append(snap.ActiveNews, s.activeNews...)
	for _, m := range s.missions {
		snap.Missions = append(snap.Missions, *m)
	}
	return snap
}

// sparklineFor projects a short series from the previous price to the
// current one. The endpoints are exact so the sparkline always agrees
// with the displayed change. Lock held.
func (s *Session) sparklineFor(a *domain.Asset) []domain.HistoryPoint {
	start := a.PreviousPrice
	if start <= 0 {
		start = a.Price
	}
	return s.model.ProjectTrendSeries(start, a.Price, a.Volatility,
		sparklinePoints, SparklineTrendScale, time.Now(), backfillInterval)
}

// backfillHistory seeds each asset's chart with a projected run-up to
// its configured starting price, so the UI never opens on an empty
// chart. Lock held.
func (s *Session) backfillHistory() {
	now := time.Now()
	for _, a := range s.assets {
		points := s.model.ProjectTrendSeries(a.Price*0.9, a.Price, a.Volatility,
			backfillPoints, ChartTrendScale, now, backfillInterval)
		hist := s.assetHist[a.ID]
		for _, p := range points {
			hist.Append(p.Timestamp, p.Value)
		}
	}
}
