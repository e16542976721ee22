package domain

// MissionStatus is the lifecycle state of a mission.
type MissionStatus string

const (
	MissionActive    MissionStatus = "active"
	MissionCompleted MissionStatus = "completed"
	MissionFailed    MissionStatus = "failed"
)

// Mission is a per-round or per-game objective. Progress is normalized
// 0..1; terminal missions are never re-evaluated.
type Mission struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Reward     string        `json:"reward"`
	Status     MissionStatus `json:"status"`
	Progress   float64       `json:"progress"` // 0..1
	RoundBound bool          `json:"round_bound"`
	Round      int           `json:"round,omitempty"` // round it was issued in, when RoundBound
}

// IsTerminal reports whether the mission reached a final state.
func (m *Mission) IsTerminal() bool {
	return m.Status == MissionCompleted || m.Status == MissionFailed
}

// Complete marks the mission completed. No-op on terminal missions.
func (m *Mission) Complete() {
	if m.IsTerminal() {
		return
	}
	m.Progress = 1
	m.Status = MissionCompleted
}

// Fail marks the mission failed. No-op on terminal missions.
func (m *Mission) Fail() {
	if m.IsTerminal() {
		return
	}
	m.Status = MissionFailed
}

// Achievement identifiers form a fixed set; unlocks are one-shot.
const (
	AchievementFirstTrade  = "first_trade"
	AchievementFirstShort  = "first_short"
	AchievementDoubledUp   = "doubled_up"
	AchievementDiversified = "diversified"
	AchievementSurvivor    = "survivor"
)

// AchievementSet tracks idempotent one-shot unlocks in unlock order.
type AchievementSet struct {
	unlocked map[string]bool
	order    []string
}

// NewAchievementSet creates an empty set.
func NewAchievementSet() *AchievementSet {
	return &AchievementSet{unlocked: make(map[string]bool)}
}

// Unlock records the achievement and reports whether it was newly
// unlocked. Unlocking twice is a no-op.
func (s *AchievementSet) Unlock(id string) bool {
	if s.unlocked[id] {
		return false
	}
	s.unlocked[id] = true
	s.order = append(s.order, id)
	return true
}

// IsUnlocked reports whether the achievement has been unlocked.
func (s *AchievementSet) IsUnlocked(id string) bool {
	return s.unlocked[id]
}

// Unlocked returns the unlocked ids in unlock order.
func (s *AchievementSet) Unlocked() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
