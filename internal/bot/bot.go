// Package bot provides computer players that choose moves from the same
// personalized projection a human client receives.
package bot

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lox/bluff/internal/deck"
	"github.com/lox/bluff/internal/game"
)

// Decision is a move: either a challenge or a play of CardIDs claimed as Rank.
type Decision struct {
	CallBluff bool
	CardIDs   []string
	Rank      deck.Rank
	Reasoning string
}

func (d Decision) String() string {
	if d.CallBluff {
		return "call bluff"
	}
	return fmt.Sprintf("play %d as %s", len(d.CardIDs), d.Rank.Plural())
}

// Strategy picks a move for the player whose turn it is.
type Strategy interface {
	MakeDecision(state game.PlayerState, rules game.Rules) Decision
}

var strategies = map[string]func(*rand.Rand, *log.Logger) Strategy{
	"honest":   func(_ *rand.Rand, l *log.Logger) Strategy { return NewHonestBot(l) },
	"cautious": func(_ *rand.Rand, l *log.Logger) Strategy { return NewCautiousBot(l) },
	"bluffer":  func(r *rand.Rand, l *log.Logger) Strategy { return NewBlufferBot(r, l) },
}

// Names lists the registered strategies
func Names() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New builds the named strategy
func New(name string, rng *rand.Rand, logger *log.Logger) (Strategy, error) {
	build, ok := strategies[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown bot %q (want one of %s)", name, strings.Join(Names(), ", "))
	}
	return build(rng, logger.WithPrefix(name)), nil
}

// groupByRank buckets a hand by rank.
func groupByRank(hand []deck.Card) map[deck.Rank][]deck.Card {
	groups := make(map[deck.Rank][]deck.Card)
	for _, c := range hand {
		groups[c.Rank] = append(groups[c.Rank], c)
	}
	return groups
}

func cardIDs(cards []deck.Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID()
	}
	return ids
}

// lastPlayCount is how many cards the most recent play put down, or 0 when
// the last action was not a play.
func lastPlayCount(state game.PlayerState) int {
	if a := state.LastAction; a != nil && a.Type == game.EventCardsPlayed {
		return a.Count
	}
	return 0
}

// mustChallenge reports whether letting the claim stand would hand an
// opponent the win.
func mustChallenge(state game.PlayerState) bool {
	return state.CanCallBluff && state.PendingWinner != ""
}

// opening picks the largest claimable group to start a round with, lowest
// rank first on ties. ok is false when nothing in hand may be claimed.
func opening(hand []deck.Card, rules game.Rules) (deck.Rank, []deck.Card, bool) {
	groups := groupByRank(hand)
	var (
		best  deck.Rank
		cards []deck.Card
	)
	for _, rank := range rules.ClaimableRanks() {
		if g := groups[rank]; len(g) > len(cards) {
			best, cards = rank, g
		}
	}
	return best, cards, len(cards) > 0
}

// forcedLie covers a hand holding only unclaimable cards: one card goes
// down under the lowest claimable rank.
func forcedLie(hand []deck.Card, rules game.Rules) Decision {
	ranks := rules.ClaimableRanks()
	if len(hand) == 0 || len(ranks) == 0 {
		return Decision{Reasoning: "nothing to play"}
	}
	return Decision{
		CardIDs:   []string{hand[0].ID()},
		Rank:      ranks[0],
		Reasoning: "no claimable cards, forced to bluff",
	}
}

// junk returns up to n cards not of rank, dangerous cards first, then the
// lowest.
func junk(hand []deck.Card, rank deck.Rank, rules game.Rules, n int) []deck.Card {
	var dangerous, rest []deck.Card
	for _, c := range hand {
		switch {
		case c.Rank == rank:
		case c.Rank == rules.DangerousRank:
			dangerous = append(dangerous, c)
		default:
			rest = append(rest, c)
		}
	}
	out := append(dangerous, rest...)
	if len(out) > n {
		out = out[:n]
	}
	return out
}
