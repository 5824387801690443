package game

import (
	rand "math/rand/v2"
	"strings"
	"testing"

	"github.com/lox/bluff/internal/deck"
	"github.com/lox/bluff/internal/randutil"
	"github.com/stretchr/testify/require"
)

var testNames = []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank"}

func playerID(seat int) string {
	return "p" + string(rune('1'+seat))
}

// c parses shorthand like "Kh", "10s" or "As" into a card.
func c(t testing.TB, s string) deck.Card {
	t.Helper()
	rank, err := deck.ParseRank(s[:len(s)-1])
	require.NoError(t, err)
	suit, err := deck.ParseSuit(s[len(s)-1:])
	require.NoError(t, err)
	return deck.NewCard(suit, rank)
}

func cards(t testing.TB, specs string) []deck.Card {
	t.Helper()
	var out []deck.Card
	for _, f := range strings.Fields(specs) {
		out = append(out, c(t, f))
	}
	return out
}

func ids(cs ...deck.Card) []string {
	out := make([]string, len(cs))
	for i, card := range cs {
		out[i] = card.ID()
	}
	return out
}

// newWaitingSession seats n players named after testNames.
func newWaitingSession(t testing.TB, n int, opts ...Option) *Session {
	t.Helper()
	s := NewSession("test", randutil.New(1), opts...)
	for i := range n {
		_, err := s.AddPlayer(playerID(i), testNames[i])
		require.NoError(t, err)
	}
	return s
}

// newPlayingSession puts a session straight into play with fixed hands, one
// shorthand string per seat. Seat 0 moves first.
func newPlayingSession(t testing.TB, hands ...string) *Session {
	t.Helper()
	s := newWaitingSession(t, len(hands))
	total := 0
	for i, h := range hands {
		s.players[i].hand = cards(t, h)
		total += len(s.players[i].hand)
	}
	s.state = StatePlaying
	s.deckSize = total
	return s
}

// stackedSource deals the given decks in order, one per StartGame attempt.
func stackedSource(t testing.TB, decks ...[]deck.Card) (DeckSource, *int) {
	calls := 0
	return func(Rules, *rand.Rand) (*deck.Deck, error) {
		require.Less(t, calls, len(decks), "unexpected extra deal")
		d := deck.NewStacked(decks[calls])
		calls++
		return d, nil
	}, &calls
}

func requireConserved(t testing.TB, s *Session) {
	t.Helper()
	require.NoError(t, s.VerifyCardConservation())
}

// fullDeck returns the 52 cards in a fixed order.
func fullDeck() []deck.Card {
	var out []deck.Card
	for _, suit := range deck.Suits {
		for _, rank := range deck.StandardRanks() {
			out = append(out, deck.NewCard(suit, rank))
		}
	}
	return out
}
