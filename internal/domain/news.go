package domain

import "time"

// NewsDirection is the sign of a news item's price impact.
type NewsDirection int

const (
	NewsDown NewsDirection = -1
	NewsUp   NewsDirection = 1
)

// NewsLifetime is how long an emitted item stays on the active list.
const NewsLifetime = 15 * time.Second

// NewsItem is a market event that has already been applied to prices.
// Title and body come from the content collaborator; the core owns
// magnitude, direction, impacted assets, and timing.
type NewsItem struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Body       string        `json:"body"`
	Magnitude  float64       `json:"magnitude"` // 0..1 impact strength
	Direction  NewsDirection `json:"direction"`
	AssetIDs   []string      `json:"asset_ids"`
	ChainID    string        `json:"chain_id,omitempty"` // set when part of a chain
	ChainSeq   int           `json:"chain_seq,omitempty"`
	CreatedAt  time.Duration `json:"created_at"` // game clock at emission
	ExpiresAt  time.Duration `json:"expires_at"` // CreatedAt + NewsLifetime
	Chainable  bool          `json:"-"` // original item that spawns a follow-up
	HighImpact bool          `json:"high_impact"`
}

// IsBreaking reports whether the item warrants a breaking-news
// notification at the presentation boundary.
func (n *NewsItem) IsBreaking() bool {
	return n.Magnitude > 0.7
}
