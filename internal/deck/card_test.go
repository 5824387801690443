package deck

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRank(t *testing.T) {
	tests := []struct {
		input   string
		want    Rank
		wantErr bool
	}{
		{input: "2", want: Two},
		{input: "10", want: Ten},
		{input: "T", want: Ten},
		{input: "j", want: Jack},
		{input: "Q", want: Queen},
		{input: "King", want: King},
		{input: "A", want: Ace},
		{input: "14", want: Ace},
		{input: "11", want: Jack},
		{input: "1", wantErr: true},
		{input: "15", wantErr: true},
		{input: "X", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRank(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidRank)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRankLabels(t *testing.T) {
	assert.Equal(t, "10", Ten.String())
	assert.Equal(t, "A", Ace.String())
	assert.Equal(t, "7", Seven.String())
	assert.Equal(t, "Aces", Ace.Plural())
	assert.Equal(t, "Sixes", Six.Plural())
	assert.Equal(t, "?", Rank(1).String())
}

func TestCardID(t *testing.T) {
	card := NewCard(Hearts, Ace)
	assert.Equal(t, "14_hearts", card.ID())
	assert.Equal(t, "A♥", card.String())

	parsed, err := ParseCardID("14_hearts")
	require.NoError(t, err)
	assert.Equal(t, card, parsed)

	for _, bad := range []string{"", "14", "1_hearts", "14_h", "14_stars", "x_clubs"} {
		_, err := ParseCardID(bad)
		assert.ErrorIs(t, err, ErrInvalidCard, bad)
	}
}

func TestCardJSON(t *testing.T) {
	data, err := json.Marshal(NewCard(Clubs, Ten))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"10_clubs","rank":"10","suit":"clubs","numericRank":10}`, string(data))

	var card Card
	require.NoError(t, json.Unmarshal([]byte(`{"id":"12_spades"}`), &card))
	assert.Equal(t, NewCard(Spades, Queen), card)
}

func TestRankText(t *testing.T) {
	data, err := json.Marshal(map[string]Rank{"rank": King})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rank":"K"}`, string(data))

	var decoded struct {
		Rank Rank `json:"rank"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"rank":"9"}`), &decoded))
	assert.Equal(t, Nine, decoded.Rank)
}

func TestSortCards(t *testing.T) {
	cards := []Card{
		NewCard(Clubs, King),
		NewCard(Spades, Two),
		NewCard(Hearts, King),
		NewCard(Diamonds, Ace),
	}
	SortCards(cards)
	assert.Equal(t, []Card{
		NewCard(Spades, Two),
		NewCard(Hearts, King),
		NewCard(Clubs, King),
		NewCard(Diamonds, Ace),
	}, cards)
}
