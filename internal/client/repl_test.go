package client

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/bluff/internal/bot"
	"github.com/lox/bluff/internal/deck"
	"github.com/lox/bluff/internal/game"
	"github.com/lox/bluff/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	DisableColor()
	os.Exit(m.Run())
}

// syncBuffer is a bytes.Buffer safe for the read goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func quiet() *log.Logger {
	return log.New(io.Discard)
}

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := server.NewServer("", quiet())
	srv.SetGameService(server.NewGameService(srv, quiet()))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Shutdown(context.Background())
	})
	return ts
}

func connect(t *testing.T, ts *httptest.Server, opts ...REPLOption) (*Client, *REPL, *syncBuffer) {
	t.Helper()
	c := NewClient(ts.URL, quiet())
	out := &syncBuffer{}
	r := NewREPL(c, out, quiet(), opts...)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	t.Cleanup(func() { _ = c.Disconnect() })

	require.Eventually(t, func() bool { return r.Tracker().Snapshot().PlayerID != "" },
		5*time.Second, 10*time.Millisecond)
	return c, r, out
}

func TestTrackerApply(t *testing.T) {
	tr := &Tracker{}
	apply := func(mt server.MessageType, data any) {
		msg, err := server.NewMessage(mt, data)
		require.NoError(t, err)
		tr.Apply(msg)
	}

	apply(server.MessageTypeWelcome, server.WelcomeData{PlayerID: "p1", Name: "Player-p1"})
	apply(server.MessageTypeNameChanged, server.NameChangedData{Name: "Alice"})
	apply(server.MessageTypeGameJoined, server.GameJoinedData{GameID: "g1", Host: "Alice"})
	apply(server.MessageTypeGameState, game.PlayerState{
		PublicState: game.PublicState{GameID: "g1", State: game.StatePlaying},
		Hand:        []deck.Card{deck.NewCard(deck.Hearts, deck.Ace)},
	})

	snap := tr.Snapshot()
	assert.Equal(t, "p1", snap.PlayerID)
	assert.Equal(t, "Alice", snap.Name)
	assert.Equal(t, "g1", snap.GameID)
	require.NotNil(t, snap.Game)
	assert.Equal(t, "14_hearts", snap.Game.Hand[0].ID())

	apply(server.MessageTypeGameLeft, server.GameLeftData{GameID: "g1"})
	snap = tr.Snapshot()
	assert.Empty(t, snap.GameID)
	assert.Nil(t, snap.Game)
}

func TestRenderState(t *testing.T) {
	st := &game.PlayerState{
		PublicState: game.PublicState{
			GameID: "g1",
			State:  game.StatePlaying,
			Players: []game.PlayerSummary{
				{ID: "p1", Name: "Alice", CardCount: 2},
				{ID: "p2", Name: "Bob", CardCount: 0},
			},
			CenterPileCount: 3,
			LastClaim:       &game.ClaimSummary{Rank: deck.Seven, Count: 3, PlayerName: "Bob"},
			PendingWinner:   "Bob",
		},
		Hand:            []deck.Card{deck.NewCard(deck.Hearts, deck.Ace), deck.NewCard(deck.Spades, deck.Two)},
		IsCurrentPlayer: true,
		CanCallBluff:    true,
	}

	out := RenderState(st)
	assert.Contains(t, out, "▶ Alice: 2 cards")
	assert.Contains(t, out, "Claim: 3 Sevens by Bob")
	assert.Contains(t, out, "Bob is out of cards")
	assert.Contains(t, out, "1: A♥")
	assert.Contains(t, out, "2: 2♠")
	assert.Contains(t, out, "or /bluff")
}

func TestREPLLocalCommands(t *testing.T) {
	c := NewClient("http://localhost:0", quiet())
	out := &syncBuffer{}
	r := NewREPL(c, out, quiet())

	quit, err := r.Execute("/help")
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Contains(t, out.String(), "/play <cards...> as <rank>")

	_, err = r.Execute("/hand")
	assert.ErrorContains(t, err, "not in a game")

	_, err = r.Execute("/list")
	assert.ErrorIs(t, err, ErrNotConnected)

	quit, err = r.Execute("/quit")
	require.NoError(t, err)
	assert.True(t, quit)
}

func TestREPLRunStopsOnQuit(t *testing.T) {
	c := NewClient("http://localhost:0", quiet())
	out := &syncBuffer{}
	r := NewREPL(c, out, quiet())

	err := r.Run(context.Background(), strings.NewReader("/dance\n\n/quit\n/help\n"))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "unknown command")
	assert.NotContains(t, out.String(), "Commands:")
}

func TestEndToEndAutoplay(t *testing.T) {
	ts := startServer(t)
	rules := game.DefaultRules()

	alice, aliceREPL, aliceOut := connect(t, ts, WithAutoplay(bot.NewHonestBot(quiet()), rules))
	_, bobREPL, _ := connect(t, ts, WithAutoplay(bot.NewCautiousBot(quiet()), rules))

	_, err := aliceREPL.Execute("/name Alice")
	require.NoError(t, err)
	_, err = aliceREPL.Execute("/create")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return aliceREPL.Tracker().Snapshot().GameID != "" },
		5*time.Second, 10*time.Millisecond)
	gameID := aliceREPL.Tracker().Snapshot().GameID

	_, err = bobREPL.Execute("/join " + gameID)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return bobREPL.Tracker().Snapshot().GameID == gameID },
		5*time.Second, 10*time.Millisecond)

	_, err = aliceREPL.Execute("/ready")
	require.NoError(t, err)
	_, err = bobREPL.Execute("/ready")
	require.NoError(t, err)

	// the bots take turns on their own once the game starts
	require.Eventually(t, func() bool {
		st := aliceREPL.Tracker().Snapshot().Game
		return st != nil && st.State != game.StateWaiting && strings.Contains(aliceOut.String(), "bot: ")
	}, 5*time.Second, 10*time.Millisecond)

	assert.Contains(t, aliceOut.String(), "Connected as")
	assert.True(t, alice.IsConnected())
}
