package engine

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/NgoTomek/PortfolioPanic/internal/domain"
	"github.com/NgoTomek/PortfolioPanic/internal/notify"
)

// Game-scoped mission ids. Round-bound missions use roundMissionID.
const (
	missionFirstTrade  = "first-trade"
	missionShortSeller = "short-seller"
	missionDiversified = "diversified"
	missionDoubleUp    = "double-up"
)

func roundMissionID(round int) string {
	return fmt.Sprintf("round-profit-%d", round)
}

// seedMissions issues the opening mission set. Lock held.
func (s *Session) seedMissions() {
	s.missions = []*domain.Mission{
		{ID: missionFirstTrade, Title: "Make your first trade", Reward: "Trader badge", Status: domain.MissionActive},
		{ID: missionShortSeller, Title: "Open a short position", Reward: "Bear badge", Status: domain.MissionActive},
		{ID: missionDiversified, Title: "Hold 3 different assets", Reward: "Spread badge", Status: domain.MissionActive},
		{ID: missionDoubleUp, Title: "Double your starting cash", Reward: "Whale badge", Status: domain.MissionActive},
	}
	s.seedRoundMission()
}

// seedRoundMission issues the per-round profit objective. Lock held.
func (s *Session) seedRoundMission() {
	s.missions = append(s.missions, &domain.Mission{
		ID:         roundMissionID(s.round),
		Title:      fmt.Sprintf("End round %d in profit", s.round),
		Reward:     "Momentum badge",
		Status:     domain.MissionActive,
		RoundBound: true,
		Round:      s.round,
	})
}

// evaluateMissions runs every active mission's progress predicate.
// Terminal missions are skipped. Lock held.
func (s *Session) evaluateMissions() {
	nw := s.netWorth()
	for _, m := range s.missions {
		if m.IsTerminal() {
			continue
		}
		switch m.ID {
		case missionFirstTrade:
			if s.tradeCount > 0 {
				s.completeMission(m)
			}
		case missionShortSeller:
			if s.shortTrades > 0 {
				s.completeMission(m)
			}
		case missionDiversified:
			n := s.longPositionCount()
			m.Progress = clamp01(float64(n) / 3)
			if n >= 3 {
				s.completeMission(m)
			}
		case missionDoubleUp:
			target := s.cfg.StartingCash.Mul(decimal.NewFromInt(2))
			ratio, _ := nw.Div(target).Float64()
			m.Progress = clamp01(ratio)
			if nw.GreaterThanOrEqual(target) {
				s.completeMission(m)
			}
		default:
			if m.RoundBound && m.Round == s.round {
				s.updateRoundMissionProgress(m, nw)
			}
		}
	}
}

func (s *Session) updateRoundMissionProgress(m *domain.Mission, nw decimal.Decimal) {
	if s.roundStartNetWorth.IsZero() {
		return
	}
	if nw.GreaterThan(s.roundStartNetWorth) {
		m.Progress = 1
	} else {
		ratio, _ := nw.Div(s.roundStartNetWorth).Float64()
		m.Progress = clamp01(ratio)
	}
}

// settleRoundMissions resolves the current round's bound mission at the
// round boundary: profit completes it, anything else fails it. Lock
// held.
func (s *Session) settleRoundMissions() {
	nw := s.netWorth()
	for _, m := range s.missions {
		if m.IsTerminal() || !m.RoundBound || m.Round != s.round {
			continue
		}
		if nw.GreaterThan(s.roundStartNetWorth) {
			s.completeMission(m)
		} else {
			m.Fail()
		}
	}
}

func (s *Session) completeMission(m *domain.Mission) {
	m.Complete()
	s.log.Info("mission completed", slog.String("id", m.ID))
	s.publish(notify.Event{
		Kind:      notify.MissionCompleted,
		Round:     s.round,
		MissionID: m.ID,
		Message:   m.Title,
	})
}

func (s *Session) longPositionCount() int {
	n := 0
	for _, h := range s.portfolio.Snapshot() {
		if h.Quantity.IsPositive() {
			n++
		}
	}
	return n
}

// checkAchievements runs the ambient one-shot unlock predicates. Trade
// achievements unlock inline in ExecuteTrade. Lock held.
func (s *Session) checkAchievements() {
	nw := s.netWorth()
	if nw.GreaterThanOrEqual(s.cfg.StartingCash.Mul(decimal.NewFromInt(2))) {
		s.unlock(domain.AchievementDoubledUp)
	}
	if s.longPositionCount() >= 3 {
		s.unlock(domain.AchievementDiversified)
	}
	if s.round >= 5 {
		s.unlock(domain.AchievementSurvivor)
	}
}

func (s *Session) unlock(id string) {
	if s.achievements.Unlock(id) {
		s.log.Info("achievement unlocked", slog.String("id", id))
	}
}

// --- boundary commands ---

// UnlockAchievement is the external unlock path. Idempotent.
func (s *Session) UnlockAchievement(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateGameOver || s.state == StateNotStarted {
		return fmt.Errorf("unlock achievement: %w", domain.ErrInvalidState)
	}
	s.unlock(id)
	return nil
}

// UpdateMissionProgress re-evaluates one mission, or all active
// missions when id is empty.
func (s *Session) UpdateMissionProgress(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateGameOver || s.state == StateNotStarted {
		return fmt.Errorf("update mission: %w", domain.ErrInvalidState)
	}
	if id == "" {
		s.evaluateMissions()
		return nil
	}
	for _, m := range s.missions {
		if m.ID == id {
			if !m.IsTerminal() {
				s.evaluateMissions()
			}
			return nil
		}
	}
	return fmt.Errorf("update mission: unknown mission %q", id)
}

// CompleteMission forces a mission into the completed state.
func (s *Session) CompleteMission(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finishMission(id, true)
}

// FailMission forces a mission into the failed state.
func (s *Session) FailMission(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finishMission(id, false)
}

func (s *Session) finishMission(id string, completed bool) error {
	if s.state == StateGameOver || s.state == StateNotStarted {
		return fmt.Errorf("finish mission: %w", domain.ErrInvalidState)
	}
	for _, m := range s.missions {
		if m.ID != id {
			continue
		}
		if m.IsTerminal() {
			return nil
		}
		if completed {
			s.completeMission(m)
		} else {
			m.Fail()
		}
		return nil
	}
	return fmt.Errorf("finish mission: unknown mission %q", id)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
