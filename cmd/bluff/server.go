package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lox/bluff/cmd/bluff/shared"
	"github.com/lox/bluff/internal/randutil"
	"github.com/lox/bluff/internal/server"
	"golang.org/x/sync/errgroup"
)

// ServerCmd runs the game server. Flags override the environment, which
// overrides the config file.
type ServerCmd struct {
	Config    string `short:"c" default:"bluff-server.hcl" help:"Path to HCL configuration file"`
	Addr      string `short:"a" help:"Address to bind to (overrides config)"`
	Port      int    `short:"p" help:"Port to listen on (overrides config)"`
	LogLevel  string `short:"l" help:"Log level (overrides config)"`
	StaticDir string `help:"Directory of static assets served at / (overrides config)"`
	AceClaims bool   `help:"Allow Aces to be claimed"`
	Seed      *int64 `help:"Deterministic seed for dealing (optional)"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}

	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.StaticDir != "" {
		cfg.Server.StaticDir = c.StaticDir
	}
	if c.AceClaims {
		cfg.Game.AllowAceClaims = true
	}
	if c.Seed != nil {
		cfg.Game.Seed = *c.Seed
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := shared.SetupLogger(os.Stderr, cfg.Server.LogLevel)

	rules, err := cfg.Game.Rules()
	if err != nil {
		return err
	}
	ttl, _ := cfg.Game.FinishedTTLDuration()
	interval, _ := cfg.Game.ReapIntervalDuration()

	seed := cfg.Game.Seed
	if seed == 0 {
		seed = randutil.NewSeed()
		logger.Info("Using random seed", "seed", seed)
	} else {
		logger.Info("Using deterministic seed", "seed", seed)
	}

	srv := server.NewServer(cfg.Addr(), logger,
		server.WithStaticDir(cfg.Server.StaticDir),
		server.WithAllowedOrigins(cfg.Server.AllowedOrigins))
	gs := server.NewGameService(srv, logger,
		server.WithRules(rules),
		server.WithMaxPlayers(cfg.Game.MaxPlayers),
		server.WithFinishedTTL(ttl, interval),
		server.WithSeeder(randutil.NewSeeder(seed)))
	srv.SetGameService(gs)

	logger.Info("Starting Bluff server",
		"addr", cfg.Addr(),
		"maxPlayers", cfg.Game.MaxPlayers,
		"winMode", rules.WinMode,
		"aceClaims", rules.AllowDangerousClaims,
		"finishedTTL", ttl)

	ctx, cancel := shared.SetupSignalHandler(context.Background(), logger)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error { return gs.Run(ctx) })
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
