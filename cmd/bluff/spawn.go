package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/lox/bluff/cmd/bluff/shared"
	"github.com/lox/bluff/internal/game"
	"github.com/lox/bluff/internal/randutil"
	"github.com/lox/bluff/internal/server"
	"github.com/lox/bluff/internal/spawner"
)

// SpawnCmd fills tables with bots, against a running server or an embedded one
type SpawnCmd struct {
	Server    string   `short:"s" help:"Server URL to spawn into (default: start an embedded server)"`
	Addr      string   `short:"a" default:"127.0.0.1:3000" help:"Embedded server address"`
	Tables    int      `short:"t" default:"1" help:"Number of tables to fill"`
	Bots      []string `short:"b" default:"honest,cautious,bluffer" help:"Strategies seated at each table"`
	Seed      int64    `default:"0" help:"Seed for bot decisions and dealing (0 for random)"`
	AceClaims bool     `help:"Allow Aces to be claimed"`
	LogLevel  string   `short:"l" default:"info" enum:"debug,info,warn,error" help:"Log level"`
}

func (c *SpawnCmd) Run() error {
	logger := shared.SetupLogger(os.Stderr, c.LogLevel)

	if c.Tables <= 0 {
		return fmt.Errorf("tables must be positive, got %d", c.Tables)
	}
	seed := c.Seed
	if seed == 0 {
		seed = randutil.NewSeed()
	}
	rules := game.DefaultRules()
	rules.AllowDangerousClaims = c.AceClaims

	ctx, cancel := shared.SetupSignalHandler(context.Background(), logger)
	defer cancel()

	serverURL := c.Server
	if serverURL == "" {
		ln, err := net.Listen("tcp", c.Addr)
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		srv := server.NewServer(c.Addr, logger)
		gs := server.NewGameService(srv, logger,
			server.WithRules(rules),
			server.WithSeeder(randutil.NewSeeder(seed)))
		srv.SetGameService(gs)

		httpServer := &http.Server{Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Embedded server failed", "error", err)
				cancel()
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
			_ = httpServer.Shutdown(shutdownCtx)
		}()

		serverURL = "http://" + ln.Addr().String()
		logger.Info("Embedded server listening", "url", serverURL, "seed", seed)
	}

	sp := spawner.New(serverURL, logger, spawner.WithSeed(seed), spawner.WithRules(rules))
	defer sp.StopAll()

	for range c.Tables {
		if _, err := sp.SpawnTable(ctx, c.Bots); err != nil {
			return err
		}
	}

	for remaining := c.Tables; remaining > 0; remaining-- {
		select {
		case result := <-sp.Results():
			fmt.Printf("%s: winner %q loser %q (%s)\n", result.GameID, result.Winner, result.Loser, result.Reason)
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}
