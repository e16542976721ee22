package app

import (
	"log/slog"
	"time"

	"github.com/NgoTomek/PortfolioPanic/internal/infra"
	"github.com/NgoTomek/PortfolioPanic/internal/infra/storage"
	"github.com/NgoTomek/PortfolioPanic/internal/service"
	"github.com/NgoTomek/PortfolioPanic/internal/transport"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config  *infra.Config
	Storage *storage.Storage
	Game    *service.GameService
	Server  *transport.Server
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (Config, Logger, DB)
// and wires the game service to the websocket boundary.
func (b *Bootstrap) Initialize(configPath string) error {
	slog.Info("🚀 Bootstrapping Portfolio Panic...")

	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	var store *storage.Storage
	if cfg.Storage.Path != "" {
		store, err = storage.NewStorageAt(cfg.Storage.Path)
	} else {
		store, err = storage.NewStorage()
	}
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized")

	// 4. Game service and websocket boundary
	var gameStore service.Store = store
	b.Game = service.NewGameService(cfg.EngineConfig(), logger, gameStore, infra.GlobalMetrics)

	interval := time.Duration(cfg.Server.UpdateIntervalMS) * time.Millisecond
	b.Server = transport.NewServer(b.Game, logger, infra.GlobalMetrics, interval)
	slog.Info("✅ Game service ready")

	return nil
}

// Shutdown releases resources in reverse initialization order.
func (b *Bootstrap) Shutdown() {
	if b.Game != nil {
		b.Game.Close()
	}
	slog.Info("👋 Shutdown complete")
}
