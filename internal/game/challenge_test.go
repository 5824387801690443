package game

import (
	"testing"

	"github.com/lox/bluff/internal/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventTypes(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}

func TestCallBluffValidation(t *testing.T) {
	t.Run("not playing", func(t *testing.T) {
		s := newWaitingSession(t, 2)
		_, err := s.CallBluff("p1")
		assert.ErrorIs(t, err, ErrGameNotPlaying)
	})

	t.Run("no claim", func(t *testing.T) {
		s := newPlayingSession(t, "7s", "8s")
		_, err := s.CallBluff("p1")
		assert.ErrorIs(t, err, ErrNoActiveClaim)
	})

	t.Run("only the next player may call", func(t *testing.T) {
		s := newPlayingSession(t, "7s 8h", "8s 9h", "9s 10h")
		_, err := s.PlayCards("p1", ids(c(t, "7s")), deck.Seven)
		require.NoError(t, err)
		before := snapshot(t, s)

		for _, id := range []string{"p1", "p3"} {
			_, err = s.CallBluff(id)
			assert.ErrorIs(t, err, ErrNotYourTurn, id)
		}
		assert.Equal(t, before, snapshot(t, s))

		_, err = s.CallBluff("ghost")
		assert.ErrorIs(t, err, ErrPlayerNotFound)
	})

	t.Run("claim cleared after resolution", func(t *testing.T) {
		s := newPlayingSession(t, "7s 8h", "8s 9h")
		_, err := s.PlayCards("p1", ids(c(t, "7s")), deck.Seven)
		require.NoError(t, err)
		_, err = s.CallBluff("p2")
		require.NoError(t, err)

		_, err = s.CallBluff("p1")
		assert.ErrorIs(t, err, ErrNoActiveClaim)
	})
}

func TestBluffCaught(t *testing.T) {
	s := newPlayingSession(t, "7s 3h 9c Kd 2s", "4s 5h 6c 8d 10s")

	_, err := s.PlayCards("p1", ids(cards(t, "7s 3h")...), deck.Seven)
	require.NoError(t, err)
	claim := s.Claim()
	require.NotNil(t, claim)
	assert.Equal(t, deck.Seven, claim.Rank)
	assert.Equal(t, 2, claim.Count)

	out, err := s.CallBluff("p2")
	require.NoError(t, err)

	assert.False(t, out.Truthful)
	assert.Equal(t, 1, out.ActualCount)
	assert.Equal(t, "p1", out.ReceiverID)
	assert.Equal(t, 2, out.PileSize)
	assert.Equal(t, cards(t, "7s 3h"), out.Revealed)
	assert.Equal(t, []EventType{EventBluffCaught}, eventTypes(out.Events))

	assert.Equal(t, StatePlaying, s.State())
	assert.Equal(t, 5, s.Player("p1").CardCount())
	assert.Equal(t, 0, s.PileSize())
	assert.Nil(t, s.Claim())
	assert.False(t, s.CanCallBluff())
	assert.Equal(t, "Bob", s.CurrentPlayer().Name, "the caller was right and plays next")
	assert.Equal(t, "p2", out.NextPlayerID)
	requireConserved(t, s)
}

func TestChallengeFailed(t *testing.T) {
	s := newPlayingSession(t, "7s 7h 9c", "4s 5h 6c")

	_, err := s.PlayCards("p1", ids(cards(t, "7s 7h")...), deck.Seven)
	require.NoError(t, err)

	out, err := s.CallBluff("p2")
	require.NoError(t, err)

	assert.True(t, out.Truthful)
	assert.Equal(t, 2, out.ActualCount)
	assert.Equal(t, "p2", out.ReceiverID)
	assert.Equal(t, 5, s.Player("p2").CardCount())
	assert.Equal(t, "Alice", s.CurrentPlayer().Name, "the truthful claimant plays next")
	assert.Equal(t, []EventType{EventChallengeFailed}, eventTypes(out.Events))
	requireConserved(t, s)
}

// A challenge inspects only the most recent play, not the whole pile.
func TestChallengeInspectsLastPlayOnly(t *testing.T) {
	s := newPlayingSession(t, "3s 8h", "7h 9d", "4c 5c")

	_, err := s.PlayCards("p1", ids(c(t, "3s")), deck.Seven)
	require.NoError(t, err)
	_, err = s.PlayCards("p2", ids(c(t, "7h")), deck.Seven)
	require.NoError(t, err)

	out, err := s.CallBluff("p3")
	require.NoError(t, err)

	assert.True(t, out.Truthful, "Bob's own play was honest even though Alice lied earlier")
	assert.Equal(t, 2, out.ClaimedCount)
	assert.Equal(t, cards(t, "7h"), out.Revealed)
	assert.Equal(t, "p3", out.ReceiverID)
	assert.Equal(t, 2, out.PileSize)
	assert.Equal(t, 4, s.Player("p3").CardCount())
	assert.Equal(t, "Bob", s.CurrentPlayer().Name)
}

func TestPileConservation(t *testing.T) {
	s := newPlayingSession(t, "2s 3s 4s", "5s 6s 7s", "8s 9s 10s")

	_, err := s.PlayCards("p1", ids(cards(t, "2s 3s")...), deck.Two)
	require.NoError(t, err)
	_, err = s.PlayCards("p2", ids(c(t, "5s")), deck.Two)
	require.NoError(t, err)

	pile := s.PileSize()
	before := s.Player("p2").CardCount()
	out, err := s.CallBluff("p3")
	require.NoError(t, err)

	require.Equal(t, "p2", out.ReceiverID)
	assert.Equal(t, pile, s.Player("p2").CardCount()-before)
	assert.Equal(t, 0, s.PileSize())
	requireConserved(t, s)
}

func TestPendingWinConfirmedByFailedChallenge(t *testing.T) {
	s := newPlayingSession(t, "Ks", "2s 3s")

	_, err := s.PlayCards("p1", ids(c(t, "Ks")), deck.King)
	require.NoError(t, err)

	out, err := s.CallBluff("p2")
	require.NoError(t, err)

	assert.True(t, out.Truthful)
	assert.Equal(t, StateFinished, s.State())
	require.NotNil(t, s.Winner())
	assert.Equal(t, "Alice", s.Winner().Name)
	assert.Equal(t, 3, s.Player("p2").CardCount())
	assert.Equal(t, []EventType{EventChallengeFailed, EventGameWon}, eventTypes(out.Events))
	assert.Equal(t, WinReasonChallengeFailed, out.Events[1].Reason)
}

func TestPendingWinClearedByCaughtBluff(t *testing.T) {
	s := newPlayingSession(t, "3s", "2s 4s")

	_, err := s.PlayCards("p1", ids(c(t, "3s")), deck.King)
	require.NoError(t, err)
	require.NotNil(t, s.PendingWinner())

	out, err := s.CallBluff("p2")
	require.NoError(t, err)

	assert.False(t, out.Truthful)
	assert.Equal(t, StatePlaying, s.State())
	assert.Nil(t, s.PendingWinner())
	assert.Nil(t, s.Winner())
	assert.Equal(t, 1, s.Player("p1").CardCount())
	assert.Equal(t, []EventType{EventBluffCaught, EventPendingWinCleared}, eventTypes(out.Events))
	assert.Equal(t, "Bob", s.CurrentPlayer().Name)
}

func TestQuadsFromPileAreDiscarded(t *testing.T) {
	s := newPlayingSession(t, "7s 7h 2c", "7d 7c 3c 4c")

	_, err := s.PlayCards("p1", ids(cards(t, "7s 7h")...), deck.Seven)
	require.NoError(t, err)

	out, err := s.CallBluff("p2")
	require.NoError(t, err)

	assert.True(t, out.Truthful)
	require.Equal(t, []EventType{EventChallengeFailed, EventQuadsRemoved}, eventTypes(out.Events))
	assert.Equal(t, deck.Seven, out.Events[1].Rank)
	assert.Equal(t, cards(t, "3c 4c"), s.Player("p2").Hand())
	assert.Equal(t, 4, s.Discarded())
	assert.Equal(t, StatePlaying, s.State())
	requireConserved(t, s)
}

func TestCollectingFourAcesLoses(t *testing.T) {
	s := newPlayingSession(t, "As Ah 2c", "6s 3c", "Ad Ac 4c")

	_, err := s.PlayCards("p1", ids(cards(t, "As Ah")...), deck.Six)
	require.NoError(t, err)
	_, err = s.PlayCards("p2", ids(c(t, "6s")), deck.Six)
	require.NoError(t, err)

	out, err := s.CallBluff("p3")
	require.NoError(t, err)

	assert.True(t, out.Truthful)
	assert.Equal(t, []EventType{EventChallengeFailed, EventPlayerLostAces}, eventTypes(out.Events))
	assert.Equal(t, StateFinished, s.State())
	require.NotNil(t, s.Loser())
	assert.Equal(t, "Carol", s.Loser().Name)
	assert.Nil(t, s.Winner())

	_, err = s.PlayCards("p2", ids(c(t, "3c")), deck.Six)
	assert.ErrorIs(t, err, ErrGameNotPlaying)
}
