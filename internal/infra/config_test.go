package infra

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/NgoTomek/PortfolioPanic/internal/engine"
)

const testYAML = `
app:
  name: "Portfolio Panic"
  version: "test"
game:
  rounds: 5
  round_duration_sec: 30
  starting_cash: 5000
  margin_ratio: 0.5
  assets:
    - { id: TECH, name: ByteWorks, category: stock, start_price: 100, volatility: 0.04 }
server:
  addr: ":9090"
  update_interval_ms: 100
logging:
  level: debug
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Game.Rounds != 5 {
		t.Errorf("Expected 5 rounds, got %d", cfg.Game.Rounds)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Expected :9090, got %s", cfg.Server.Addr)
	}
	if len(cfg.Game.Assets) != 1 || cfg.Game.Assets[0].ID != "TECH" {
		t.Errorf("Expected one TECH asset, got %+v", cfg.Game.Assets)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("PANIC_LISTEN_ADDR", ":7777")
	t.Setenv("PANIC_LOG_LEVEL", "warn")

	cfg, err := LoadConfig(writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Addr != ":7777" {
		t.Errorf("Expected env override :7777, got %s", cfg.Server.Addr)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Expected env override warn, got %s", cfg.Logging.Level)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"zero rounds", `
game:
  rounds: 0
  round_duration_sec: 30
server: { addr: ":8080", update_interval_ms: 100 }
`},
		{"missing addr", `
game:
  rounds: 5
  round_duration_sec: 30
server: { update_interval_ms: 100 }
`},
		{"bad asset price", `
game:
  rounds: 5
  round_duration_sec: 30
  assets:
    - { id: TECH, start_price: 0 }
server: { addr: ":8080", update_interval_ms: 100 }
`},
		{"margin ratio above one", `
game:
  rounds: 5
  round_duration_sec: 30
  margin_ratio: 1.5
server: { addr: ":8080", update_interval_ms: 100 }
`},
		{"high impact chance above one", `
game:
  rounds: 5
  round_duration_sec: 30
  high_impact_chance: 2
server: { addr: ":8080", update_interval_ms: 100 }
`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, c.yaml)); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestEngineConfigMapping(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	ec := cfg.EngineConfig()
	if ec.Rounds != 5 {
		t.Errorf("Expected 5 rounds, got %d", ec.Rounds)
	}
	if ec.RoundDuration != 30*time.Second {
		t.Errorf("Expected 30s rounds, got %v", ec.RoundDuration)
	}
	if len(ec.Assets) != 1 || ec.Assets[0].StartPrice != 100 {
		t.Errorf("Expected mapped asset, got %+v", ec.Assets)
	}
}

func TestEngineConfigExplicitZeros(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
game:
  rounds: 5
  round_duration_sec: 30
  margin_ratio: 0
  high_impact_chance: 0
server: { addr: ":8080", update_interval_ms: 100 }
`))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	ec := cfg.EngineConfig()
	if !ec.MarginRatio.IsZero() {
		t.Errorf("Expected explicit zero margin ratio, got %s", ec.MarginRatio)
	}
	if ec.HighImpactChance != 0 {
		t.Errorf("Expected explicit zero high impact chance, got %v", ec.HighImpactChance)
	}
}

func TestEngineConfigAbsentRatiosDefault(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
game:
  rounds: 5
  round_duration_sec: 30
server: { addr: ":8080", update_interval_ms: 100 }
`))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	def := engine.DefaultConfig()
	ec := cfg.EngineConfig()
	if !ec.MarginRatio.Equal(def.MarginRatio) {
		t.Errorf("Expected default margin ratio %s, got %s", def.MarginRatio, ec.MarginRatio)
	}
	if ec.HighImpactChance != def.HighImpactChance {
		t.Errorf("Expected default high impact chance %v, got %v", def.HighImpactChance, ec.HighImpactChance)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
