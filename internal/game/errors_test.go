package game

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lox/bluff/internal/deck"
	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrNotYourTurn, "not_your_turn"},
		{fmt.Errorf("%w: current claim is Kings", ErrRankMismatch), "rank_mismatch"},
		{fmt.Errorf("%w: need 2", ErrInsufficientPlayers), "insufficient_players"},
		{ErrNoActiveClaim, "no_active_claim"},
		{deck.ErrInvalidRank, "invalid_claim"},
		{deck.ErrEmptyDeck, "empty_deck"},
		{errors.New("boom"), "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Code(tt.err))
		})
	}
}
