package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lox/bluff/internal/client"
	"github.com/lox/bluff/internal/server"
)

type GamesCmd struct {
	Server  string        `short:"s" default:"http://localhost:3000" help:"Server URL"`
	Timeout time.Duration `default:"5s" help:"Request timeout"`
	JSON    bool          `help:"Print the raw JSON listing"`
}

func (c *GamesCmd) Run() error {
	games, err := fetchGames(context.Background(), c.Server, c.Timeout)
	if err != nil {
		return err
	}
	if c.JSON {
		out, err := json.MarshalIndent(server.GamesListData{Games: games}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	fmt.Println(client.RenderGames(games))
	return nil
}

func fetchGames(ctx context.Context, serverURL string, timeout time.Duration) ([]server.GameSummary, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/games"

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch games: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch games: %s", resp.Status)
	}

	var data server.GamesListData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode games: %w", err)
	}
	return data.Games, nil
}
