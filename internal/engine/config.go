package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/NgoTomek/PortfolioPanic/internal/domain"
	"github.com/NgoTomek/PortfolioPanic/internal/news"
)

// AssetSpec describes one instrument in the session universe.
type AssetSpec struct {
	ID         string
	Name       string
	Category   domain.Category
	StartPrice float64
	Volatility float64
}

// Config holds every tuning knob of a game session. The infra layer
// maps its YAML config onto this; tests construct it directly.
type Config struct {
	Rounds        int
	RoundDuration time.Duration
	StartingCash  decimal.Decimal

	// MarginRatio is the fraction of short notional that must be held
	// in cash when the short is opened. Cash is not debited at open;
	// P&L is realized at cover. Zero is honored (margin-free shorts);
	// negative means unset.
	MarginRatio decimal.Decimal

	FrameInterval     time.Duration // loop wake-up cadence
	PriceTickInterval time.Duration // stochastic price step cadence
	SnapshotInterval  time.Duration // net-worth history cadence
	MissionInterval   time.Duration // mission/achievement eval cadence

	HealthStep float64 // market health random-walk amplitude per second
	DriftScale float64 // max |drift| contributed by market health

	// HighImpactChance is the probability a scheduled round event is
	// requested as high-impact. Zero is honored (no high-impact draws);
	// negative means unset.
	HighImpactChance float64

	DensityTable []float64
	News         news.Config
	Assets       []AssetSpec

	// Seed fixes the random source; 0 seeds from the wall clock.
	Seed int64
}

// DefaultConfig returns the stock game tuning.
func DefaultConfig() Config {
	return Config{
		Rounds:            10,
		RoundDuration:     60 * time.Second,
		StartingCash:      decimal.NewFromInt(10000),
		MarginRatio:       decimal.NewFromFloat(0.5),
		FrameInterval:     100 * time.Millisecond,
		PriceTickInterval: time.Second,
		SnapshotInterval:  time.Second,
		MissionInterval:   time.Second,
		HealthStep:        4.0,
		DriftScale:        0.01,
		HighImpactChance:  0.2,
		DensityTable:      DefaultDensityTable,
		News:              news.DefaultConfig(),
		Assets: []AssetSpec{
			{ID: "TECH", Name: "ByteWorks", Category: domain.CategoryStock, StartPrice: 100, Volatility: 0.04},
			{ID: "BANK", Name: "Vault & Sons", Category: domain.CategoryStock, StartPrice: 80, Volatility: 0.03},
			{ID: "GOLD", Name: "Bullion Trust", Category: domain.CategoryCommodity, StartPrice: 2000, Volatility: 0.02},
			{ID: "OIL", Name: "Crude Futures", Category: domain.CategoryCommodity, StartPrice: 75, Volatility: 0.05},
			{ID: "COIN", Name: "Bitter", Category: domain.CategoryCrypto, StartPrice: 45000, Volatility: 0.09},
			{ID: "HOME", Name: "Brickstone REIT", Category: domain.CategoryRealEstate, StartPrice: 250, Volatility: 0.015},
		},
	}
}

// normalize fills unset fields with defaults so partially built configs
// (tests, YAML with omissions) behave. MarginRatio and HighImpactChance
// use a negative sentinel for unset because zero is a meaningful
// setting for both.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Rounds <= 0 {
		c.Rounds = def.Rounds
	}
	if c.RoundDuration <= 0 {
		c.RoundDuration = def.RoundDuration
	}
	if c.StartingCash.IsZero() {
		c.StartingCash = def.StartingCash
	}
	if c.MarginRatio.IsNegative() {
		c.MarginRatio = def.MarginRatio
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = def.FrameInterval
	}
	if c.PriceTickInterval <= 0 {
		c.PriceTickInterval = def.PriceTickInterval
	}
	if c.SnapshotInterval <= 0 {
		c.SnapshotInterval = def.SnapshotInterval
	}
	if c.MissionInterval <= 0 {
		c.MissionInterval = def.MissionInterval
	}
	if c.HealthStep <= 0 {
		c.HealthStep = def.HealthStep
	}
	if c.DriftScale <= 0 {
		c.DriftScale = def.DriftScale
	}
	if c.HighImpactChance < 0 {
		c.HighImpactChance = def.HighImpactChance
	}
	if len(c.DensityTable) == 0 {
		c.DensityTable = def.DensityTable
	}
	if len(c.Assets) == 0 {
		c.Assets = def.Assets
	}
}
