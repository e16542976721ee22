package engine

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NgoTomek/PortfolioPanic/internal/domain"
	"github.com/NgoTomek/PortfolioPanic/internal/news"
	"github.com/NgoTomek/PortfolioPanic/internal/notify"
)

// GameState is the phase of the round/game state machine.
type GameState string

const (
	StateNotStarted      GameState = "not_started"
	StateRunning         GameState = "running"
	StatePaused          GameState = "paused"
	StateRoundTransition GameState = "round_transition"
	StateGameOver        GameState = "game_over"
)

// Session is the single live game: all mutable state lives here, owned
// exclusively by whoever holds the mutex. The frame loop and the
// command API both go through it, so within-frame ordering is fixed:
// countdown, price tick, due tasks (news/expiry), net-worth snapshot,
// missions.
type Session struct {
	mu   sync.Mutex
	cfg  Config
	log  *slog.Logger
	rand *rand.Rand

	model   *PriceModel
	sched   *Scheduler
	newsEng *news.Engine
	tasks   *TaskQueue
	sink    notify.Sink

	state         GameState
	round         int
	timeRemaining time.Duration
	clock         time.Duration // accumulates only while Running
	marketHealth  float64       // 0..100 random walk
	eventDensity  float64
	lastNewsAt    time.Duration

	user      string
	assets    []*domain.Asset
	assetIdx  map[string]*domain.Asset
	portfolio *domain.Portfolio

	activeNews   []domain.NewsItem
	missions     []*domain.Mission
	achievements *domain.AchievementSet

	portfolioHist *domain.Series
	assetHist     map[string]*domain.Series
	indicators    map[string]*TrendIndicator

	roundStartNetWorth decimal.Decimal
	finalNetWorth      decimal.Decimal
	tradeCount         int
	shortTrades        int

	priceAccum   time.Duration
	snapAccum    time.Duration
	missionAccum time.Duration

	// onGameOver runs after the session reaches its terminal state,
	// still under the session lock. Used by the service layer to hand
	// the final score to the persistence collaborator.
	onGameOver func(user string, netWorth decimal.Decimal)

	// onNews runs for every emitted item, follow-ups included, under
	// the session lock. It must not call back into the session.
	onNews func(item domain.NewsItem)
}

// NewSession builds a session in the NotStarted state. A nil sink
// discards notifications; a nil logger uses slog.Default.
func NewSession(cfg Config, logger *slog.Logger, sink notify.Sink) *Session {
	cfg.normalize()
	if logger == nil {
		logger = slog.Default()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))

	s := &Session{
		cfg:          cfg,
		log:          logger,
		rand:         r,
		model:        NewPriceModel(r),
		sched:        NewScheduler(r, cfg.DensityTable),
		newsEng:      news.NewEngine(cfg.News, r, nil),
		tasks:        NewTaskQueue(),
		sink:         sink,
		state:        StateNotStarted,
		marketHealth: 50,
		assetIdx:     make(map[string]*domain.Asset),
		assetHist:    make(map[string]*domain.Series),
		indicators:   make(map[string]*TrendIndicator),
		achievements: domain.NewAchievementSet(),
	}

	for _, spec := range cfg.Assets {
		a := &domain.Asset{
			ID:            spec.ID,
			Name:          spec.Name,
			Category:      spec.Category,
			Price:         spec.StartPrice,
			PreviousPrice: spec.StartPrice,
			Volatility:    spec.Volatility,
		}
		s.assets = append(s.assets, a)
		s.assetIdx[a.ID] = a
		s.assetHist[a.ID] = domain.NewSeries(domain.AssetHistoryCap)
		s.indicators[a.ID] = NewTrendIndicator(trendShortPeriod, trendLongPeriod)
	}
	s.portfolio = domain.NewPortfolio(cfg.StartingCash)
	s.portfolioHist = domain.NewSeries(domain.PortfolioHistoryCap)

	return s
}

// SetGameOverHook installs the terminal callback. Must be called before
// Start.
func (s *Session) SetGameOverHook(fn func(user string, netWorth decimal.Decimal)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onGameOver = fn
}

// SetNewsHook installs the per-item news callback. Must be called
// before Start.
func (s *Session) SetNewsHook(fn func(item domain.NewsItem)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onNews = fn
}

// Start moves NotStarted to Running: seeds chart history, schedules the
// first round's news, and issues the opening missions.
func (s *Session) Start(user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateNotStarted {
		return fmt.Errorf("start: %w (state %s)", domain.ErrInvalidState, s.state)
	}

	s.user = user
	s.state = StateRunning
	s.round = 1
	s.timeRemaining = s.cfg.RoundDuration
	s.eventDensity = s.sched.DensityForRound(1)
	s.roundStartNetWorth = s.cfg.StartingCash

	s.backfillHistory()
	s.scheduleRoundEvents()
	s.seedMissions()

	s.log.Info("game started",
		slog.String("user", user),
		slog.Int("assets", len(s.assets)),
		slog.String("cash", s.cfg.StartingCash.String()))
	s.publish(notify.Event{Kind: notify.GameStarted, Round: 1, Message: "Markets are open"})
	return nil
}

// End forces the game over from any non-terminal state.
func (s *Session) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateGameOver {
		return fmt.Errorf("end: %w (already over)", domain.ErrInvalidState)
	}
	s.gameOver()
	return nil
}

// PauseToggle flips Running and Paused. The game clock freezes while
// paused, which also suspends every pending scheduled task.
func (s *Session) PauseToggle() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateRunning:
		s.state = StatePaused
	case StatePaused:
		s.state = StateRunning
	default:
		return fmt.Errorf("pause: %w (state %s)", domain.ErrInvalidState, s.state)
	}
	return nil
}

// NextRound resumes play from the round-transition screen.
func (s *Session) NextRound() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRoundTransition {
		return fmt.Errorf("next round: %w (state %s)", domain.ErrInvalidState, s.state)
	}
	s.state = StateRunning
	return nil
}

// Advance moves the simulation forward by dt of wall time. Only Running
// sessions mutate; every other phase is inert.
func (s *Session) Advance(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning || dt <= 0 {
		return
	}

	s.clock += dt
	s.timeRemaining -= dt
	s.stepHealth(dt)

	s.priceAccum += dt
	for s.priceAccum >= s.cfg.PriceTickInterval {
		s.priceAccum -= s.cfg.PriceTickInterval
		s.priceTick()
	}

	// News impact lands before the net-worth snapshot so both reflect
	// the same tick.
	for _, t := range s.tasks.PopDue(s.clock) {
		t.Fire()
	}

	s.snapAccum += dt
	if s.snapAccum >= s.cfg.SnapshotInterval {
		s.snapAccum = 0
		s.recordNetWorth()
	}

	s.missionAccum += dt
	if s.missionAccum >= s.cfg.MissionInterval {
		s.missionAccum = 0
		s.evaluateMissions()
		s.checkAchievements()
	}

	if s.timeRemaining <= 0 {
		s.endOfRound()
	}
}

// --- frame internals (lock held) ---

func (s *Session) stepHealth(dt time.Duration) {
	step := (s.rand.Float64()*2 - 1) * s.cfg.HealthStep * dt.Seconds()
	s.marketHealth += step
	if s.marketHealth < 0 {
		s.marketHealth = 0
	}
	if s.marketHealth > 100 {
		s.marketHealth = 100
	}
}

func (s *Session) priceTick() {
	drift := (s.marketHealth - 50) / 50 * s.cfg.DriftScale
	now := time.Now()
	for _, a := range s.assets {
		s.model.UpdatePrice(a, drift)
		s.assetHist[a.ID].Append(now, a.Price)
		s.indicators[a.ID].Observe(a.Price)
	}
}

func (s *Session) recordNetWorth() {
	nw, _ := s.netWorth().Float64()
	s.portfolioHist.Append(time.Now(), nw)
}

func (s *Session) netWorth() decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(s.assets))
	for _, a := range s.assets {
		prices[a.ID] = decimal.NewFromFloat(a.Price)
	}
	return s.portfolio.NetWorth(prices)
}

func (s *Session) endOfRound() {
	s.settleRoundMissions()

	if s.round >= s.cfg.Rounds {
		s.gameOver()
		return
	}

	s.round++
	s.timeRemaining = s.cfg.RoundDuration
	s.eventDensity = s.sched.DensityForRound(s.round)
	s.roundStartNetWorth = s.netWorth()
	s.scheduleRoundEvents()
	s.seedRoundMission()
	s.state = StateRoundTransition

	s.log.Info("round advanced",
		slog.Int("round", s.round),
		slog.Float64("density", s.eventDensity))
	s.publish(notify.Event{
		Kind:    notify.RoundChanged,
		Round:   s.round,
		Message: fmt.Sprintf("Round %d begins", s.round),
	})
}

func (s *Session) gameOver() {
	s.finalNetWorth = s.netWorth()
	s.state = StateGameOver
	s.tasks.Clear()

	s.log.Info("game over",
		slog.String("user", s.user),
		slog.String("net_worth", s.finalNetWorth.String()),
		slog.Int("trades", s.tradeCount))
	s.publish(notify.Event{
		Kind:     notify.GameOver,
		Round:    s.round,
		NetWorth: s.finalNetWorth.String(),
	})
	if s.onGameOver != nil {
		s.onGameOver(s.user, s.finalNetWorth)
	}
}

// --- news wiring (lock held) ---

func (s *Session) scheduleRoundEvents() {
	count := s.sched.EventCountForDensity(s.eventDensity)
	offsets := s.sched.ScheduleOffsets(count, s.cfg.RoundDuration, s.eventDensity)
	for _, off := range offsets {
		highImpact := s.rand.Float64() < s.cfg.HighImpactChance
		s.tasks.Schedule(s.clock+off, TaskNews, func() {
			s.emitNews(highImpact)
		})
	}
	s.log.Debug("round events scheduled",
		slog.Int("round", s.round),
		slog.Int("count", len(offsets)))
}

func (s *Session) emitNews(highImpact bool) {
	item := s.newsEng.Generate(s.assets, s.round, highImpact, s.clock)
	s.pushNews(item)
}

func (s *Session) pushNews(item domain.NewsItem) {
	s.activeNews = append(s.activeNews, item)
	s.lastNewsAt = s.clock

	id := item.ID
	s.tasks.Schedule(item.ExpiresAt, TaskExpiry, func() {
		s.removeNews(id)
	})

	if item.Chainable && item.ChainSeq == 1 {
		orig := item
		s.tasks.Schedule(s.clock+s.newsEng.ChainDelay(), TaskFollowUp, func() {
			follow := s.newsEng.FollowUp(orig, s.assets, s.round, s.clock)
			s.pushNews(follow)
		})
	}

	if item.IsBreaking() {
		s.publish(notify.Event{
			Kind:      notify.BreakingNews,
			Round:     s.round,
			Message:   item.Title,
			Magnitude: item.Magnitude,
		})
	}
	s.log.Debug("news emitted",
		slog.String("id", item.ID),
		slog.Float64("magnitude", item.Magnitude),
		slog.Int("chain_seq", item.ChainSeq))
	if s.onNews != nil {
		s.onNews(item)
	}
}

func (s *Session) removeNews(id string) {
	for i, n := range s.activeNews {
		if n.ID == id {
			s.activeNews = append(s.activeNews[:i], s.activeNews[i+1:]...)
			return
		}
	}
}

func (s *Session) publish(ev notify.Event) {
	if s.sink == nil {
		return
	}
	ev.At = time.Now()
	s.sink.Publish(ev)
}
