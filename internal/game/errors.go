package game

import (
	"errors"

	"github.com/lox/bluff/internal/deck"
)

// Rule violations. All are recoverable: the session is left untouched.
var (
	ErrInsufficientPlayers = errors.New("not enough players")
	ErrAlreadyStarted      = errors.New("game already started")
	ErrGameNotPlaying      = errors.New("game is not in progress")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrNoCardsSelected     = errors.New("no cards selected")
	ErrCardsNotOwned       = errors.New("cards not in hand")
	ErrRankMismatch        = errors.New("claimed rank does not match the current claim")
	ErrInvalidClaim        = errors.New("invalid claim")
	ErrNoActiveClaim       = errors.New("no claim to challenge")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrInvalidName         = errors.New("invalid player name")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrInsufficientPlayers, "insufficient_players"},
	{ErrAlreadyStarted, "already_started"},
	{ErrGameNotPlaying, "game_not_playing"},
	{ErrNotYourTurn, "not_your_turn"},
	{ErrNoCardsSelected, "no_cards_selected"},
	{ErrCardsNotOwned, "cards_not_owned"},
	{ErrRankMismatch, "rank_mismatch"},
	{ErrInvalidClaim, "invalid_claim"},
	{ErrNoActiveClaim, "no_active_claim"},
	{ErrPlayerNotFound, "player_not_found"},
	{ErrInvalidName, "invalid_name"},
	{deck.ErrInvalidRank, "invalid_claim"},
	{deck.ErrInvalidCard, "cards_not_owned"},
	{deck.ErrEmptyDeck, "empty_deck"},
	{deck.ErrConfiguration, "configuration_error"},
}

// Code maps an error to a stable snake_case code suitable for clients.
// Unknown errors map to "internal_error".
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal_error"
}
