package infra

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/NgoTomek/PortfolioPanic/internal/domain"
	"github.com/NgoTomek/PortfolioPanic/internal/engine"
)

// Config holds the full application configuration. Loaded from YAML,
// then overridden by environment variables, then validated.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Game struct {
		Rounds           int             `yaml:"rounds"`
		RoundDurationSec int             `yaml:"round_duration_sec"`
		StartingCash     decimal.Decimal `yaml:"starting_cash"`
		// Pointers so an absent key falls back to the engine default
		// while an explicit zero is honored.
		MarginRatio      *decimal.Decimal `yaml:"margin_ratio"`
		HighImpactChance *float64         `yaml:"high_impact_chance"`
		DensityTable     []float64       `yaml:"density_table"`
		Seed             int64           `yaml:"seed"`
		Assets           []AssetConfig   `yaml:"assets"`
	} `yaml:"game"`

	Server struct {
		Addr             string `yaml:"addr"`
		UpdateIntervalMS int    `yaml:"update_interval_ms"`
	} `yaml:"server"`

	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// AssetConfig is one tradable instrument in the YAML universe.
type AssetConfig struct {
	ID         string  `yaml:"id"`
	Name       string  `yaml:"name"`
	Category   string  `yaml:"category"`
	StartPrice float64 `yaml:"start_price"`
	Volatility float64 `yaml:"volatility"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Game.Rounds < 1 {
		return fmt.Errorf("at least one round is required")
	}
	if c.Game.RoundDurationSec <= 0 {
		return fmt.Errorf("round duration must be positive")
	}
	if mr := c.Game.MarginRatio; mr != nil && (mr.IsNegative() || mr.GreaterThan(decimal.NewFromInt(1))) {
		return fmt.Errorf("margin ratio must be within [0, 1]: %s", mr)
	}
	if hc := c.Game.HighImpactChance; hc != nil && (*hc < 0 || *hc > 1) {
		return fmt.Errorf("high impact chance must be within [0, 1]: %v", *hc)
	}
	if c.Game.StartingCash.IsNegative() {
		return fmt.Errorf("starting cash must not be negative")
	}
	for i, a := range c.Game.Assets {
		if a.ID == "" {
			return fmt.Errorf("asset %d: id is required", i)
		}
		if a.StartPrice <= 0 {
			return fmt.Errorf("asset %s: start price must be positive", a.ID)
		}
		if a.Volatility < 0 {
			return fmt.Errorf("asset %s: volatility must not be negative", a.ID)
		}
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server address is required")
	}
	if c.Server.UpdateIntervalMS <= 0 {
		return fmt.Errorf("update interval must be positive")
	}
	return nil
}

// EngineConfig maps the YAML game section onto the engine's tuning
// struct. Fields left at zero fall back to the engine defaults.
func (c *Config) EngineConfig() engine.Config {
	def := engine.DefaultConfig()
	ec := engine.Config{
		Rounds:           c.Game.Rounds,
		RoundDuration:    time.Duration(c.Game.RoundDurationSec) * time.Second,
		StartingCash:     c.Game.StartingCash,
		MarginRatio:      def.MarginRatio,
		HighImpactChance: def.HighImpactChance,
		DensityTable:     c.Game.DensityTable,
		Seed:             c.Game.Seed,
	}
	if c.Game.MarginRatio != nil {
		ec.MarginRatio = *c.Game.MarginRatio
	}
	if c.Game.HighImpactChance != nil {
		ec.HighImpactChance = *c.Game.HighImpactChance
	}
	for _, a := range c.Game.Assets {
		ec.Assets = append(ec.Assets, engine.AssetSpec{
			ID:         a.ID,
			Name:       a.Name,
			Category:   domain.Category(a.Category),
			StartPrice: a.StartPrice,
			Volatility: a.Volatility,
		})
	}
	return ec
}

// overrideWithEnv applies environment overrides for deploy-sensitive
// values.
func overrideWithEnv(cfg *Config) {
	if addr := os.Getenv("PANIC_LISTEN_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if path := os.Getenv("PANIC_DB_PATH"); path != "" {
		cfg.Storage.Path = path
	}
	if level := os.Getenv("PANIC_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}
