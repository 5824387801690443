package bot

import (
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/bluff/internal/deck"
	"github.com/lox/bluff/internal/game"
)

// BlufferBot pads its plays with junk, dumping dangerous cards first, and
// challenges at random.
type BlufferBot struct {
	rng    *rand.Rand
	logger *log.Logger

	BluffRate float64
	CallRate  float64
}

// NewBlufferBot creates a new BlufferBot instance
func NewBlufferBot(rng *rand.Rand, logger *log.Logger) *BlufferBot {
	return &BlufferBot{rng: rng, logger: logger, BluffRate: 0.6, CallRate: 0.3}
}

func (b *BlufferBot) MakeDecision(state game.PlayerState, rules game.Rules) Decision {
	d := b.decide(state, rules)
	b.logger.Debug("Decision", "move", d, "reasoning", d.Reasoning)
	return d
}

func (b *BlufferBot) decide(state game.PlayerState, rules game.Rules) Decision {
	if mustChallenge(state) {
		return Decision{CallBluff: true, Reasoning: "challenging a winning claim"}
	}

	var (
		rank    deck.Rank
		genuine []deck.Card
	)
	if claim := state.LastClaim; claim != nil {
		if state.CanCallBluff && b.rng.Float64() < b.CallRate {
			return Decision{CallBluff: true, Reasoning: "gut feeling"}
		}
		rank = claim.Rank
		genuine = groupByRank(state.Hand)[rank]
	} else {
		var ok bool
		rank, genuine, ok = opening(state.Hand, rules)
		if !ok {
			return forcedLie(state.Hand, rules)
		}
	}

	extra := 0
	if len(genuine) == 0 || b.rng.Float64() < b.BluffRate {
		extra = 1 + b.rng.IntN(2)
	}
	padding := junk(state.Hand, rank, rules, extra)

	play := append(append([]deck.Card(nil), genuine...), padding...)
	reasoning := "playing straight"
	if len(padding) > 0 {
		reasoning = "padding the play"
	}
	return Decision{CardIDs: cardIDs(play), Rank: rank, Reasoning: reasoning}
}
