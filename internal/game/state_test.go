package game

import (
	"encoding/json"
	"testing"

	"github.com/lox/bluff/internal/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicStateHidesHands(t *testing.T) {
	s := newPlayingSession(t, "7s 7h 3d", "Ks 2c 9d")
	_, err := s.PlayCards("p1", ids(cards(t, "7s 7h")...), deck.Seven)
	require.NoError(t, err)

	data, err := json.Marshal(s.PublicState())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "hand")
	for _, p := range raw["players"].([]any) {
		assert.NotContains(t, p.(map[string]any), "hand")
	}
	assert.NotContains(t, string(data), "_spades")
}

func TestPublicStateShape(t *testing.T) {
	s := newPlayingSession(t, "7s 7h 3d", "Ks 2c 9d")
	_, err := s.PlayCards("p1", ids(cards(t, "7s 7h")...), deck.Seven)
	require.NoError(t, err)

	ps := s.PublicState()
	assert.Equal(t, "test", ps.GameID)
	assert.Equal(t, StatePlaying, ps.State)
	assert.Equal(t, 1, ps.CurrentPlayerIndex)
	assert.Equal(t, "Bob", ps.CurrentPlayerName)
	assert.Equal(t, 2, ps.CenterPileCount)
	assert.True(t, ps.CanCallBluff)
	assert.Equal(t, []PlayerSummary{
		{ID: "p1", Name: "Alice", CardCount: 1, SeatIndex: 0},
		{ID: "p2", Name: "Bob", CardCount: 3, SeatIndex: 1},
	}, ps.Players)

	data, err := json.Marshal(ps.LastClaim)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rank":"7","count":2,"playerName":"Alice"}`, string(data))

	require.NotNil(t, ps.LastAction)
	assert.Equal(t, EventCardsPlayed, ps.LastAction.Type)
	assert.Empty(t, ps.Winner)
	assert.Empty(t, ps.Loser)
}

func TestPlayerStatePersonalized(t *testing.T) {
	s := newPlayingSession(t, "7s 3d 7h", "Ks 2c 9d")
	_, err := s.PlayCards("p1", ids(c(t, "3d")), deck.Seven)
	require.NoError(t, err)

	alice, ok := s.PlayerState("p1")
	require.True(t, ok)
	assert.Equal(t, cards(t, "7s 7h"), alice.Hand)
	assert.False(t, alice.IsCurrentPlayer)
	assert.False(t, alice.CanCallBluff)
	assert.True(t, alice.PublicState.CanCallBluff)

	bob, ok := s.PlayerState("p2")
	require.True(t, ok)
	assert.Equal(t, cards(t, "2c 9d Ks"), bob.Hand)
	assert.True(t, bob.IsCurrentPlayer)
	assert.True(t, bob.CanCallBluff)

	data, err := json.Marshal(alice)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, false, raw["canCallBluff"], "personal flag wins over the public one")
	assert.Len(t, raw["hand"], 2)
	assert.Equal(t, "Alice", raw["lastClaim"].(map[string]any)["playerName"])

	stranger, ok := s.PlayerState("ghost")
	assert.False(t, ok)
	assert.Empty(t, stranger.Hand)
	assert.Equal(t, "Bob", stranger.CurrentPlayerName)
}

func TestPublicStateTerminal(t *testing.T) {
	s := newPlayingSession(t, "Ks", "2s 3s")
	_, err := s.PlayCards("p1", ids(c(t, "Ks")), deck.King)
	require.NoError(t, err)
	assert.Equal(t, "Alice", s.PublicState().PendingWinner)

	_, err = s.CallBluff("p2")
	require.NoError(t, err)

	ps := s.PublicState()
	assert.Equal(t, StateFinished, ps.State)
	assert.Equal(t, "Alice", ps.Winner)
	assert.Empty(t, ps.Loser)
	assert.Empty(t, ps.PendingWinner)
	assert.Nil(t, ps.LastClaim)
	assert.Empty(t, ps.CurrentPlayerName)
	assert.Equal(t, EventGameWon, ps.LastAction.Type)
}
