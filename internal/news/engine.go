package news

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/NgoTomek/PortfolioPanic/internal/domain"
)

// Follow-up timing and amplification for chained items.
const (
	ChainDelayMin   = 5 * time.Second
	ChainDelayMax   = 15 * time.Second
	ChainAmplifier  = 1.5
	maxImpactedMany = 3
)

// priceFloor mirrors the engine's clamp so a shock can never take a
// price to zero.
const priceFloor = 0.01

// ContentGenerator supplies the human-readable copy for a news item.
// The core owns everything else: magnitude, direction, impacted assets,
// and timing.
type ContentGenerator interface {
	Generate(assets []domain.Asset, round int, highImpact bool) (title, body string)
}

// Config tunes the stochastic shape of generated news.
type Config struct {
	// ImpactScale converts magnitude (0..1) into a price move fraction.
	ImpactScale float64
	// ChainProbability is the chance a fresh item spawns a follow-up.
	ChainProbability float64
}

// DefaultConfig returns the tuning used by the stock game.
func DefaultConfig() Config {
	return Config{
		ImpactScale:      0.2,
		ChainProbability: 0.3,
	}
}

// Engine generates news items and applies their immediate price impact.
// It is driven entirely by the session; it owns no timers of its own.
type Engine struct {
	cfg     Config
	rand    *rand.Rand
	content ContentGenerator
}

// NewEngine creates a news engine. A nil content generator falls back to
// the built-in templates.
func NewEngine(cfg Config, r *rand.Rand, content ContentGenerator) *Engine {
	if cfg.ImpactScale <= 0 {
		cfg.ImpactScale = DefaultConfig().ImpactScale
	}
	if cfg.ChainProbability < 0 {
		cfg.ChainProbability = 0
	}
	if content == nil {
		content = TemplateContent{}
	}
	return &Engine{cfg: cfg, rand: r, content: content}
}

// Generate produces a fresh news item against the asset universe,
// applies its price impact immediately, and marks it chainable with the
// configured probability. clock is the session game clock at emission.
func (e *Engine) Generate(assets []*domain.Asset, round int, highImpact bool, clock time.Duration) domain.NewsItem {
	impacted := e.pickImpacted(assets)

	magnitude := e.drawMagnitude(highImpact)
	direction := domain.NewsUp
	if e.rand.Float64() < 0.5 {
		direction = domain.NewsDown
	}

	item := domain.NewsItem{
		ID:         uuid.NewString(),
		Magnitude:  magnitude,
		Direction:  direction,
		AssetIDs:   assetIDs(impacted),
		CreatedAt:  clock,
		ExpiresAt:  clock + domain.NewsLifetime,
		HighImpact: highImpact,
		Chainable:  e.rand.Float64() < e.cfg.ChainProbability,
	}
	if item.Chainable {
		item.ChainID = uuid.NewString()
		item.ChainSeq = 1
	}

	item.Title, item.Body = e.content.Generate(deref(impacted), round, highImpact)

	e.applyImpact(impacted, item)
	return item
}

// FollowUp builds the chained continuation of orig: amplified magnitude,
// same chain id and impacted assets, sequence 2. The caller schedules
// it; this applies the impact at fire time.
func (e *Engine) FollowUp(orig domain.NewsItem, assets []*domain.Asset, round int, clock time.Duration) domain.NewsItem {
	impacted := make([]*domain.Asset, 0, len(orig.AssetIDs))
	for _, a := range assets {
		for _, id := range orig.AssetIDs {
			if a.ID == id {
				impacted = append(impacted, a)
			}
		}
	}

	item := domain.NewsItem{
		ID:         uuid.NewString(),
		Magnitude:  orig.Magnitude * ChainAmplifier,
		Direction:  orig.Direction,
		AssetIDs:   append([]string(nil), orig.AssetIDs...),
		ChainID:    orig.ChainID,
		ChainSeq:   2,
		CreatedAt:  clock,
		ExpiresAt:  clock + domain.NewsLifetime,
		HighImpact: true,
	}
	item.Title, item.Body = e.content.Generate(deref(impacted), round, true)

	e.applyImpact(impacted, item)
	return item
}

// ChainDelay draws the follow-up delay in [ChainDelayMin, ChainDelayMax].
func (e *Engine) ChainDelay() time.Duration {
	span := int64(ChainDelayMax - ChainDelayMin)
	return ChainDelayMin + time.Duration(e.rand.Int63n(span+1))
}

func (e *Engine) pickImpacted(assets []*domain.Asset) []*domain.Asset {
	n := len(assets)
	if n == 0 {
		return nil
	}
	k := 1
	if n > 1 {
		limit := maxImpactedMany
		if n < limit {
			limit = n
		}
		k += e.rand.Intn(limit)
	}

	idx := e.rand.Perm(n)[:k]
	picked := make([]*domain.Asset, k)
	for i, j := range idx {
		picked[i] = assets[j]
	}
	return picked
}

// drawMagnitude samples impact strength in (0,1]. High-impact requests
// skew the draw toward the top of the range.
func (e *Engine) drawMagnitude(highImpact bool) float64 {
	u := e.rand.Float64()
	if highImpact {
		return 0.5 + 0.5*math.Sqrt(u)
	}
	return 0.15 + 0.45*u
}

func (e *Engine) applyImpact(impacted []*domain.Asset, item domain.NewsItem) {
	move := item.Magnitude * e.cfg.ImpactScale * float64(item.Direction)
	for _, a := range impacted {
		a.PreviousPrice = a.Price
		a.Price = a.Price * (1 + move)
		if a.Price < priceFloor {
			a.Price = priceFloor
		}
	}
}

func assetIDs(assets []*domain.Asset) []string {
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = a.ID
	}
	return out
}

func deref(assets []*domain.Asset) []domain.Asset {
	out := make([]domain.Asset, len(assets))
	for i, a := range assets {
		out[i] = *a
	}
	return out
}
