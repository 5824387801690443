package game

import "github.com/lox/bluff/internal/deck"

// EventType identifies something that happened in a session
type EventType string

const (
	EventGameStarted       EventType = "game_started"
	EventPlayerLeft        EventType = "player_left"
	EventCardsPlayed       EventType = "cards_played"
	EventBluffCaught       EventType = "bluff_caught"
	EventChallengeFailed   EventType = "challenge_failed"
	EventQuadsRemoved      EventType = "quads_removed"
	EventPlayerLostAces    EventType = "player_lost_aces"
	EventPendingWin        EventType = "pending_win"
	EventPendingWinCleared EventType = "pending_win_cleared"
	EventGameWon           EventType = "game_won"
	EventGameReset         EventType = "game_reset"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Reasons attached to EventGameWon.
const (
	WinReasonAccepted        = "accepted"
	WinReasonChallengeFailed = "challenge_failed"
	WinReasonHandEmptied     = "hand_emptied"
	WinReasonQuads           = "quads_discarded"
	WinReasonForfeit         = "forfeit"
	WinReasonUncontested     = "uncontested"
)

// Event describes one consequence of a command. The most recent event is
// exposed as the session's last action.
type Event struct {
	Type     EventType `json:"type"`
	PlayerID string    `json:"playerId,omitempty"`
	Player   string    `json:"player,omitempty"`
	Rank     deck.Rank `json:"rank,omitempty"`
	Count    int       `json:"count,omitempty"`
	Reason   string    `json:"reason,omitempty"`
	Message  string    `json:"message"`
}
