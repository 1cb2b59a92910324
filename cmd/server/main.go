package main

import (
	"fmt"
	"os"

	"backendrouter/internal/config"
	"backendrouter/internal/inventory"
	"backendrouter/internal/router"
	"backendrouter/internal/server"
	"backendrouter/pkg/logger"
	"backendrouter/pkg/strategy"
)

func main() {
	cfg, err := config.LoadLocalConfig()
	if err != nil {
		logger.Fatalf("Fatal parsing config: %v", err)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Fatalf("Fatal parsing config: %v", err)
	}
	logger.SetLogger(logger.New(os.Stdout, level))

	backends, err := inventory.FromConfig(cfg)
	if err != nil {
		logger.Fatalf("Fatal building inventory: %v", err)
	}
	acceptors, err := strategy.CompileAll(cfg.Acceptors, logger.Default())
	if err != nil {
		logger.Fatalf("Fatal compiling acceptors: %v", err)
	}
	logger.Info("Inventory loaded", "backends", len(backends), "acceptors", len(acceptors))

	engine := router.NewEngine(backends, cfg.Names, logger.Default())

	srv := server.NewServer(engine, acceptors)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	if err := srv.Start(addr); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
}
