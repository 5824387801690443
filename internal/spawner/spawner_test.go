package spawner

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/bluff/internal/game"
	"github.com/lox/bluff/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) (*httptest.Server, *server.GameService) {
	t.Helper()
	logger := log.New(io.Discard)
	srv := server.NewServer("", logger)
	gs := server.NewGameService(srv, logger)
	srv.SetGameService(gs)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Shutdown(context.Background())
	})
	return ts, gs
}

func TestSpawnTable(t *testing.T) {
	ts, gs := startServer(t)
	s := New(ts.URL, log.New(io.Discard), WithSeed(7), WithTimeout(5*time.Second))
	t.Cleanup(s.StopAll)

	gameID, err := s.SpawnTable(context.Background(), []string{"honest", "cautious", "bluffer"})
	require.NoError(t, err)
	assert.Equal(t, 3, s.ActiveCount())

	bots := s.Bots()
	require.Len(t, bots, 3)
	assert.Equal(t, "honest-1", bots[0].Name)
	assert.Equal(t, "bluffer", bots[2].Strategy)

	games := gs.ListGames()
	require.Len(t, games, 1)
	assert.Equal(t, gameID, games[0].ID)
	assert.Equal(t, 3, games[0].PlayerCount)

	// Everyone readied, so the game starts without a start command.
	for _, b := range bots {
		require.Eventually(t, func() bool {
			snap := b.Snapshot()
			return snap.Game != nil && snap.Game.State != game.StateWaiting
		}, 5*time.Second, 10*time.Millisecond, b.Name)
	}

	s.StopAll()
	assert.Equal(t, 0, s.ActiveCount())
	assert.Empty(t, s.Bots())
}

func TestSpawnTableErrors(t *testing.T) {
	ts, _ := startServer(t)
	s := New(ts.URL, log.New(io.Discard), WithTimeout(time.Second))

	_, err := s.SpawnTable(context.Background(), []string{"honest"})
	assert.ErrorContains(t, err, "need at least 2 bots")

	_, err = s.SpawnTable(context.Background(), []string{"honest", "psychic"})
	assert.ErrorContains(t, err, "unknown bot")
	assert.Equal(t, 0, s.ActiveCount())

	s = New("http://127.0.0.1:1", log.New(io.Discard), WithTimeout(time.Second))
	_, err = s.SpawnTable(context.Background(), []string{"honest", "cautious"})
	assert.ErrorContains(t, err, "connect honest-1")
}
