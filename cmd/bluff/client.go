package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lox/bluff/cmd/bluff/shared"
	"github.com/lox/bluff/internal/bot"
	"github.com/lox/bluff/internal/client"
	"github.com/lox/bluff/internal/game"
	"github.com/lox/bluff/internal/randutil"
)

type ClientCmd struct {
	Config   string `short:"c" default:"bluff-client.hcl" help:"Path to HCL configuration file"`
	Server   string `short:"s" help:"Server URL (overrides config)"`
	Name     string `short:"n" help:"Display name (overrides config)"`
	Bot      string `short:"b" help:"Let a built-in strategy play: bluffer, cautious or honest"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	NoColor  bool   `help:"Disable colored output"`
}

func (c *ClientCmd) Run() error {
	cfg, err := client.LoadClientConfig(c.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}

	if c.Server != "" {
		cfg.Server.URL = c.Server
	}
	if c.Name != "" {
		cfg.Player.Name = c.Name
	}
	if c.Bot != "" {
		cfg.Player.Bot = c.Bot
	}
	if c.LogLevel != "" {
		cfg.UI.LogLevel = c.LogLevel
	}
	if c.NoColor {
		cfg.UI.NoColor = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// The terminal belongs to the REPL, so logs go to a file.
	logFile, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()
	logger := shared.SetupLogger(logFile, cfg.UI.LogLevel)

	if cfg.UI.NoColor {
		client.DisableColor()
	}

	var opts []client.REPLOption
	if cfg.Player.Bot != "" {
		strategy, err := bot.New(cfg.Player.Bot, randutil.New(randutil.NewSeed()), logger)
		if err != nil {
			return err
		}
		opts = append(opts, client.WithAutoplay(strategy, game.DefaultRules()))
	}

	conn := client.NewClient(cfg.Server.URL, logger)
	repl := client.NewREPL(conn, os.Stdout, logger, opts...)

	ctx, cancel := shared.SetupSignalHandler(context.Background(), logger)
	defer cancel()

	dialCtx, dialCancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ConnectTimeout)*time.Second)
	err = conn.Connect(dialCtx)
	dialCancel()
	if err != nil {
		return err
	}
	defer func() { _ = conn.Disconnect() }()

	if cfg.Player.Name != "" {
		if err := conn.SetName(cfg.Player.Name); err != nil {
			return err
		}
	}
	if err := conn.ListGames(); err != nil {
		return err
	}
	return repl.Run(ctx, os.Stdin)
}
