package game

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lox/bluff/internal/deck"
)

// MinPlayers is the smallest table that can start a game.
const MinPlayers = 2

// QuadSize is the number of same-rank cards that trigger the quad rule.
const QuadSize = 4

// State is the lifecycle phase of a session
type State string

const (
	StateWaiting  State = "waiting"
	StatePlaying  State = "playing"
	StateFinished State = "finished"
)

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// WinMode selects how emptying a hand ends the game.
type WinMode int

const (
	// WinProvisional marks the player as pending winner until the next
	// player plays on or challenges unsuccessfully.
	WinProvisional WinMode = iota
	// WinImmediate ends the game as soon as a hand is emptied.
	WinImmediate
)

func (m WinMode) String() string {
	switch m {
	case WinProvisional:
		return "provisional"
	case WinImmediate:
		return "immediate"
	default:
		return fmt.Sprintf("WinMode(%d)", int(m))
	}
}

// ParseWinMode parses "provisional" or "immediate"
func ParseWinMode(s string) (WinMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "provisional":
		return WinProvisional, nil
	case "immediate":
		return WinImmediate, nil
	}
	return 0, fmt.Errorf("unknown win mode %q", s)
}

// Rules configures a session.
type Rules struct {
	// Ranks used to build the deck.
	Ranks []deck.Rank
	// DangerousRank loses the game when a player holds four of it.
	DangerousRank deck.Rank
	// AllowDangerousClaims permits claiming the dangerous rank.
	AllowDangerousClaims bool
	// RedealAttempts bounds how often a deal is retried when a player is
	// dealt four of the dangerous rank.
	RedealAttempts int
	WinMode        WinMode
}

// DefaultRules returns the standard 52-card game with Aces dangerous.
func DefaultRules() Rules {
	return Rules{
		Ranks:          deck.StandardRanks(),
		DangerousRank:  deck.Ace,
		RedealAttempts: 10,
		WinMode:        WinProvisional,
	}
}

// DeckSize returns the number of cards a deck built from these rules holds.
func (r Rules) DeckSize() int {
	return len(r.Ranks) * len(deck.Suits)
}

func (r Rules) hasRank(rank deck.Rank) bool {
	return slices.Contains(r.Ranks, rank)
}

// Claimable reports whether rank may be named in a claim.
func (r Rules) Claimable(rank deck.Rank) bool {
	if !r.hasRank(rank) {
		return false
	}
	return rank != r.DangerousRank || r.AllowDangerousClaims
}

// ClaimableRanks lists the ranks that may open a claim, lowest first.
func (r Rules) ClaimableRanks() []deck.Rank {
	ranks := make([]deck.Rank, 0, len(r.Ranks))
	for _, rank := range r.Ranks {
		if r.Claimable(rank) {
			ranks = append(ranks, rank)
		}
	}
	slices.Sort(ranks)
	return ranks
}
