package engine

import (
	"context"
	"time"
)

// FrameFunc observes one completed frame and how long it took to
// process. Used by the service layer for latency metrics.
type FrameFunc func(elapsed time.Duration)

// Run drives the session in real time until the context is cancelled
// or the game ends. Each tick advances the simulation by the wall
// time actually elapsed, so a stalled scheduler produces one large
// step instead of lost time.
func (s *Session) Run(ctx context.Context, onFrame FrameFunc) {
	ticker := time.NewTicker(s.cfg.FrameInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now

			s.Advance(dt)
			if onFrame != nil {
				onFrame(time.Since(now))
			}
			if s.State() == StateGameOver {
				return
			}
		}
	}
}

// State returns the current game state.
func (s *Session) State() GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
