package bot

import (
	"github.com/charmbracelet/log"
	"github.com/lox/bluff/internal/game"
)

// HonestBot only lies when it has no other legal move, and challenges
// whenever it cannot follow the claimed rank.
type HonestBot struct {
	logger *log.Logger
}

// NewHonestBot creates a new HonestBot instance
func NewHonestBot(logger *log.Logger) *HonestBot {
	return &HonestBot{logger: logger}
}

func (h *HonestBot) MakeDecision(state game.PlayerState, rules game.Rules) Decision {
	d := h.decide(state, rules)
	h.logger.Debug("Decision", "move", d, "reasoning", d.Reasoning)
	return d
}

func (h *HonestBot) decide(state game.PlayerState, rules game.Rules) Decision {
	if mustChallenge(state) {
		return Decision{CallBluff: true, Reasoning: "challenging a winning claim"}
	}

	if claim := state.LastClaim; claim != nil {
		if held := groupByRank(state.Hand)[claim.Rank]; len(held) > 0 {
			return Decision{CardIDs: cardIDs(held), Rank: claim.Rank, Reasoning: "following with real cards"}
		}
		if state.CanCallBluff {
			return Decision{CallBluff: true, Reasoning: "cannot follow honestly"}
		}
		return Decision{
			CardIDs:   []string{state.Hand[0].ID()},
			Rank:      claim.Rank,
			Reasoning: "cannot follow, forced to bluff",
		}
	}

	if rank, cards, ok := opening(state.Hand, rules); ok {
		return Decision{CardIDs: cardIDs(cards), Rank: rank, Reasoning: "opening with largest group"}
	}
	return forcedLie(state.Hand, rules)
}
