package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lox/bluff/cmd/bluff/shared"
	"github.com/lox/bluff/internal/fileutil"
	"github.com/lox/bluff/internal/game"
	"github.com/lox/bluff/internal/randutil"
	"github.com/lox/bluff/internal/simulator"
)

type SimulateCmd struct {
	Games     int      `short:"g" default:"1000" help:"Number of games to play"`
	Players   int      `short:"p" default:"4" help:"Players per game"`
	Bots      []string `short:"b" help:"Strategies to seat, rotated each game (default: all)"`
	Seed      int64    `default:"0" help:"RNG seed (0 for random)"`
	Workers   int      `short:"w" default:"4" help:"Games played in parallel"`
	MaxTurns  int      `default:"5000" help:"Turns before a game is counted as stalled"`
	AceClaims bool     `help:"Allow Aces to be claimed"`
	WinMode   string   `default:"provisional" enum:"provisional,immediate" help:"When an empty hand wins"`
	Output    string   `short:"o" help:"Write the full JSON report to this file"`
	Verbose   bool     `help:"Verbose logging"`
}

func (c *SimulateCmd) Run() error {
	level := "warn"
	if c.Verbose {
		level = "debug"
	}
	logger := shared.SetupLogger(os.Stderr, level)

	rules := game.DefaultRules()
	mode, err := game.ParseWinMode(c.WinMode)
	if err != nil {
		return err
	}
	rules.WinMode = mode
	rules.AllowDangerousClaims = c.AceClaims

	seed := c.Seed
	if seed == 0 {
		seed = randutil.NewSeed()
	}

	sim, err := simulator.New(simulator.Config{
		Games:      c.Games,
		Players:    c.Players,
		Strategies: c.Bots,
		Seed:       seed,
		Workers:    c.Workers,
		MaxTurns:   c.MaxTurns,
		Rules:      rules,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	ctx, cancel := shared.SetupSignalHandler(context.Background(), logger)
	defer cancel()

	report, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Print(simulator.Summary(report))
	if report.Stats.Stalled > 0 {
		fmt.Printf("Rerun with --seed %d to reproduce the stalled games\n", seed)
	}

	if c.Output != "" {
		if err := fileutil.WriteJSONAtomic(c.Output, report, 0o644); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", c.Output)
	}
	return nil
}
