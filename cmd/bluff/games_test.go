package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/bluff/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchGames(t *testing.T) {
	logger := log.New(io.Discard)
	srv := server.NewServer("", logger)
	gs := server.NewGameService(srv, logger)
	srv.SetGameService(gs)

	gs.Connect("p1", "alice")
	id, err := gs.CreateGame("p1")
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Shutdown(context.Background())
	})

	games, err := fetchGames(context.Background(), ts.URL, time.Second)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, id, games[0].ID)
	assert.Equal(t, 1, games[0].PlayerCount)
}

func TestFetchGamesBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(ts.Close)

	_, err := fetchGames(context.Background(), ts.URL, time.Second)
	assert.ErrorContains(t, err, "404")
}
