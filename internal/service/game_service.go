package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NgoTomek/PortfolioPanic/internal/domain"
	"github.com/NgoTomek/PortfolioPanic/internal/engine"
	"github.com/NgoTomek/PortfolioPanic/internal/infra"
	"github.com/NgoTomek/PortfolioPanic/internal/infra/storage"
	"github.com/NgoTomek/PortfolioPanic/internal/notify"
)

// Store is the persistence surface the game service needs: final
// scores plus small key-value settings such as the last player name.
type Store interface {
	SaveScore(score *storage.HighScore) error
	TopScores(limit int) ([]storage.HighScore, error)
	ScoresForUser(user string) ([]storage.HighScore, error)
	SaveSetting(key, value string) error
	LoadSettings() (map[string]string, error)
}

// lastUserKey is the settings key holding the most recent player name.
const lastUserKey = "last_user"

// defaultUser names sessions started without a player name.
const defaultUser = "player"

// GameService owns the live session lifecycle: starting games, routing
// commands, and persisting the final score when a game ends. One
// session runs at a time; starting a new game replaces a finished one.
type GameService struct {
	log        *slog.Logger
	cfg        engine.Config
	store      Store
	metrics    *infra.Metrics
	dispatcher *notify.Dispatcher

	mu      sync.Mutex
	session *engine.Session
	cancel  context.CancelFunc

	// trades is atomic: the game-over hook reads it while the session
	// lock is held, so it must not touch g.mu.
	trades atomic.Int64
}

// NewGameService creates the service. store may be nil, in which case
// finished games are not persisted.
func NewGameService(cfg engine.Config, logger *slog.Logger, store Store, metrics *infra.Metrics) *GameService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = infra.GlobalMetrics
	}
	return &GameService{
		log:        logger,
		cfg:        cfg,
		store:      store,
		metrics:    metrics,
		dispatcher: notify.NewDispatcher(256),
	}
}

// Events returns the notification stream for the UI boundary.
func (g *GameService) Events() <-chan notify.Event {
	return g.dispatcher.Events()
}

// NewGame starts a fresh session for the given player. An in-flight
// game must end before another can start.
func (g *GameService) NewGame(ctx context.Context, user string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session != nil && g.session.State() != engine.StateGameOver {
		return fmt.Errorf("new game: a session is already running")
	}
	if g.cancel != nil {
		g.cancel()
	}

	s := engine.NewSession(g.cfg, g.log, g.dispatcher)
	s.SetGameOverHook(g.persistScore)
	s.SetNewsHook(func(domain.NewsItem) {
		g.metrics.RecordNews()
	})

	if err := s.Start(user); err != nil {
		return err
	}
	g.session = s
	g.trades.Store(0)

	runCtx, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	go s.Run(runCtx, func(elapsed time.Duration) {
		g.metrics.RecordFrame(elapsed.Nanoseconds())
	})

	if g.store != nil {
		if err := g.store.SaveSetting(lastUserKey, user); err != nil {
			g.log.Warn("failed to remember player name", slog.String("error", err.Error()))
		}
	}

	g.log.Info("new game", slog.String("user", user))
	return nil
}

// LastUser returns the player name of the most recently started game,
// or the default name when none was recorded.
func (g *GameService) LastUser() string {
	if g.store == nil {
		return defaultUser
	}
	settings, err := g.store.LoadSettings()
	if err != nil {
		g.log.Warn("failed to load settings", slog.String("error", err.Error()))
		return defaultUser
	}
	if user := settings[lastUserKey]; user != "" {
		return user
	}
	return defaultUser
}

// persistScore runs when a session reaches game over. Persistence
// failures are logged, never surfaced to the game.
func (g *GameService) persistScore(user string, netWorth decimal.Decimal) {
	if g.store == nil {
		return
	}
	score := &storage.HighScore{
		User:          user,
		FinalNetWorth: netWorth.String(),
		Rounds:        g.cfg.Rounds,
		Trades:        int(g.trades.Load()),
	}
	if err := g.store.SaveScore(score); err != nil {
		g.metrics.RecordError()
		g.log.Error("failed to persist score",
			slog.String("user", user),
			slog.String("error", err.Error()))
		return
	}
	g.log.Info("score persisted",
		slog.String("user", user),
		slog.String("net_worth", netWorth.String()))
}

// Trade executes a trade on the live session.
func (g *GameService) Trade(assetID, action string, amount decimal.Decimal) (engine.TradeResult, error) {
	s, err := g.live()
	if err != nil {
		return engine.TradeResult{}, err
	}
	act, err := engine.ParseTradeAction(action)
	if err != nil {
		g.metrics.RecordTradeRejected()
		return engine.TradeResult{}, err
	}

	res, err := s.ExecuteTrade(assetID, act, amount)
	if err != nil {
		g.metrics.RecordTradeRejected()
		return res, err
	}
	g.metrics.RecordTrade()
	g.trades.Add(1)
	return res, nil
}

// PauseToggle flips the live session between running and paused.
func (g *GameService) PauseToggle() error {
	s, err := g.live()
	if err != nil {
		return err
	}
	return s.PauseToggle()
}

// NextRound resumes play from the round transition screen.
func (g *GameService) NextRound() error {
	s, err := g.live()
	if err != nil {
		return err
	}
	return s.NextRound()
}

// EndGame force-ends the live session.
func (g *GameService) EndGame() error {
	s, err := g.live()
	if err != nil {
		return err
	}
	return s.End()
}

// Snapshot returns the current session view, or false when no game has
// been started yet.
func (g *GameService) Snapshot() (engine.Snapshot, bool) {
	g.mu.Lock()
	s := g.session
	g.mu.Unlock()

	if s == nil {
		return engine.Snapshot{}, false
	}
	return s.Snapshot(), true
}

// UpdateMissionProgress re-evaluates mission progress on demand.
func (g *GameService) UpdateMissionProgress(id string) error {
	s, err := g.live()
	if err != nil {
		return err
	}
	return s.UpdateMissionProgress(id)
}

// CompleteMission forces a mission complete.
func (g *GameService) CompleteMission(id string) error {
	s, err := g.live()
	if err != nil {
		return err
	}
	return s.CompleteMission(id)
}

// FailMission forces a mission failed.
func (g *GameService) FailMission(id string) error {
	s, err := g.live()
	if err != nil {
		return err
	}
	return s.FailMission(id)
}

// UnlockAchievement unlocks an achievement by id.
func (g *GameService) UnlockAchievement(id string) error {
	s, err := g.live()
	if err != nil {
		return err
	}
	return s.UnlockAchievement(id)
}

// Leaderboard returns the top scores.
func (g *GameService) Leaderboard(limit int) ([]storage.HighScore, error) {
	if g.store == nil {
		return nil, nil
	}
	return g.store.TopScores(limit)
}

// UserScores returns one player's score history, newest first.
func (g *GameService) UserScores(user string) ([]storage.HighScore, error) {
	if g.store == nil {
		return nil, nil
	}
	return g.store.ScoresForUser(user)
}

// Close stops the running session loop and the notification stream.
func (g *GameService) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.dispatcher.Close()
}

func (g *GameService) live() (*engine.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return nil, fmt.Errorf("no game in progress")
	}
	return g.session, nil
}
