package bot

import (
	"github.com/charmbracelet/log"
	"github.com/lox/bluff/internal/game"
)

// suspiciousPlay is the size of a single play the cautious bot refuses to
// believe.
const suspiciousPlay = 3

// CautiousBot challenges claims its own hand proves false and large plays,
// and otherwise bluffs one card at a time.
type CautiousBot struct {
	logger *log.Logger
}

// NewCautiousBot creates a new CautiousBot instance
func NewCautiousBot(logger *log.Logger) *CautiousBot {
	return &CautiousBot{logger: logger}
}

func (c *CautiousBot) MakeDecision(state game.PlayerState, rules game.Rules) Decision {
	d := c.decide(state, rules)
	c.logger.Debug("Decision", "move", d, "reasoning", d.Reasoning)
	return d
}

func (c *CautiousBot) decide(state game.PlayerState, rules game.Rules) Decision {
	if mustChallenge(state) {
		return Decision{CallBluff: true, Reasoning: "challenging a winning claim"}
	}

	claim := state.LastClaim
	if claim == nil {
		if rank, cards, ok := opening(state.Hand, rules); ok {
			return Decision{CardIDs: cardIDs(cards), Rank: rank, Reasoning: "opening with largest group"}
		}
		return forcedLie(state.Hand, rules)
	}

	held := groupByRank(state.Hand)[claim.Rank]
	last := lastPlayCount(state)
	if state.CanCallBluff {
		if len(held)+last > game.QuadSize {
			return Decision{CallBluff: true, Reasoning: "my hand proves the claim false"}
		}
		if last >= suspiciousPlay {
			return Decision{CallBluff: true, Reasoning: "play too large to believe"}
		}
	}
	if len(held) > 0 {
		return Decision{CardIDs: cardIDs(held), Rank: claim.Rank, Reasoning: "following with real cards"}
	}

	lie := junk(state.Hand, claim.Rank, rules, 1)
	return Decision{CardIDs: cardIDs(lie), Rank: claim.Rank, Reasoning: "small bluff"}
}
