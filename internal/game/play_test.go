package game

import (
	"testing"

	"github.com/lox/bluff/internal/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(t *testing.T, s *Session) []PlayerState {
	t.Helper()
	var out []PlayerState
	for _, p := range s.Players() {
		st, ok := s.PlayerState(p.ID)
		require.True(t, ok)
		out = append(out, st)
	}
	return out
}

func TestPlayCardsValidation(t *testing.T) {
	tests := []struct {
		name     string
		playerID string
		cardIDs  []string
		rank     deck.Rank
		want     error
	}{
		{name: "unknown player", playerID: "ghost", cardIDs: []string{"7_spades"}, rank: deck.Seven, want: ErrPlayerNotFound},
		{name: "not your turn", playerID: "p2", cardIDs: []string{"13_spades"}, rank: deck.King, want: ErrNotYourTurn},
		{name: "no cards", playerID: "p1", cardIDs: nil, rank: deck.Seven, want: ErrNoCardsSelected},
		{name: "card not held", playerID: "p1", cardIDs: []string{"13_spades"}, rank: deck.King, want: ErrCardsNotOwned},
		{name: "duplicate card", playerID: "p1", cardIDs: []string{"7_spades", "7_spades"}, rank: deck.Seven, want: ErrCardsNotOwned},
		{name: "malformed id", playerID: "p1", cardIDs: []string{"seven"}, rank: deck.Seven, want: ErrCardsNotOwned},
		{name: "dangerous claim", playerID: "p1", cardIDs: []string{"7_spades"}, rank: deck.Ace, want: ErrInvalidClaim},
		{name: "rank outside deck", playerID: "p1", cardIDs: []string{"7_spades"}, rank: deck.Rank(1), want: ErrInvalidClaim},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newPlayingSession(t, "7s 7h 3d", "Ks 2c 9d")
			before := snapshot(t, s)

			_, err := s.PlayCards(tt.playerID, tt.cardIDs, tt.rank)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, snapshot(t, s), "rejected play must not change state")
		})
	}
}

func TestPlayCardsNotPlaying(t *testing.T) {
	s := newWaitingSession(t, 2)
	_, err := s.PlayCards("p1", []string{"7_spades"}, deck.Seven)
	assert.ErrorIs(t, err, ErrGameNotPlaying)
}

func TestPlayCardsDangerousClaimAllowed(t *testing.T) {
	s := newPlayingSession(t, "7s 7h 3d", "Ks 2c 9d")
	s.rules.AllowDangerousClaims = true

	out, err := s.PlayCards("p1", ids(c(t, "7s")), deck.Ace)
	require.NoError(t, err)
	assert.Equal(t, deck.Ace, out.Rank)
}

func TestPlayCardsCumulativeClaim(t *testing.T) {
	s := newPlayingSession(t, "7s 7h 3d", "Ks 2c 9d", "4s 4h 5c")

	out, err := s.PlayCards("p1", ids(cards(t, "7s 3d")...), deck.Seven)
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, 2, out.CardsPlayed)
	assert.Equal(t, 2, out.TotalClaimed)
	assert.Equal(t, "p2", out.NextPlayerID)
	require.Len(t, out.Events, 1)
	assert.Equal(t, EventCardsPlayed, out.Events[0].Type)

	claim := s.Claim()
	require.NotNil(t, claim)
	assert.Equal(t, deck.Seven, claim.Rank)
	assert.Equal(t, 2, claim.Count)
	assert.Equal(t, "Alice", claim.Claimant.Name)
	assert.True(t, s.CanCallBluff())

	_, err = s.PlayCards("p2", ids(c(t, "Ks")), deck.King)
	require.ErrorIs(t, err, ErrRankMismatch, "rank is fixed for the round")

	out, err = s.PlayCards("p2", ids(c(t, "Ks")), deck.Seven)
	require.NoError(t, err)
	assert.Equal(t, 3, out.TotalClaimed)
	assert.Equal(t, "p3", out.NextPlayerID)

	claim = s.Claim()
	assert.Equal(t, 3, claim.Count)
	assert.Equal(t, "Bob", claim.Claimant.Name)
	assert.Equal(t, cards(t, "Ks"), claim.LastPlay)
	assert.Equal(t, 3, s.PileSize())
	assert.Equal(t, cards(t, "7h"), s.Player("p1").Hand())
	requireConserved(t, s)

	// play wraps back to seat 0
	_, err = s.PlayCards("p3", ids(c(t, "4s")), deck.Seven)
	require.NoError(t, err)
	assert.Equal(t, "Alice", s.CurrentPlayer().Name)
}

func TestPlayCardsImmediateWin(t *testing.T) {
	s := newPlayingSession(t, "Ks", "2s 3s")
	s.rules.WinMode = WinImmediate

	out, err := s.PlayCards("p1", ids(c(t, "Ks")), deck.King)
	require.NoError(t, err)

	assert.Equal(t, StateFinished, s.State())
	require.NotNil(t, s.Winner())
	assert.Equal(t, "Alice", s.Winner().Name)
	assert.Nil(t, s.PendingWinner())
	last := out.Events[len(out.Events)-1]
	assert.Equal(t, EventGameWon, last.Type)
	assert.Equal(t, WinReasonHandEmptied, last.Reason)

	_, err = s.CallBluff("p2")
	assert.ErrorIs(t, err, ErrGameNotPlaying)
}

func TestPendingWinAcceptedByPlay(t *testing.T) {
	s := newPlayingSession(t, "Ks", "2s 3s")

	out, err := s.PlayCards("p1", ids(c(t, "Ks")), deck.King)
	require.NoError(t, err)
	assert.Equal(t, StatePlaying, s.State())
	require.NotNil(t, s.PendingWinner())
	assert.Equal(t, "Alice", s.PendingWinner().Name)
	assert.Equal(t, "Bob", s.CurrentPlayer().Name)
	assert.Equal(t, EventPendingWin, out.Events[len(out.Events)-1].Type)

	// invalid moves are still rejected and do not end the game
	_, err = s.PlayCards("p2", ids(c(t, "2s")), deck.Two)
	require.ErrorIs(t, err, ErrRankMismatch)
	assert.Equal(t, StatePlaying, s.State())

	out, err = s.PlayCards("p2", ids(c(t, "2s")), deck.King)
	require.NoError(t, err)
	assert.False(t, out.Applied)

	assert.Equal(t, StateFinished, s.State())
	require.NotNil(t, s.Winner())
	assert.Equal(t, "Alice", s.Winner().Name)
	assert.Nil(t, s.Loser())
	assert.Equal(t, 2, s.Player("p2").CardCount(), "accepted play leaves the hand alone")
	last := out.Events[len(out.Events)-1]
	assert.Equal(t, EventGameWon, last.Type)
	assert.Equal(t, WinReasonAccepted, last.Reason)
}
