package deck

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var (
	ErrInvalidRank = errors.New("invalid rank")
	ErrInvalidCard = errors.New("invalid card")
)

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// Suits lists every suit in deck construction order.
var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

// String returns the lowercase suit name used in card ids and JSON
func (s Suit) String() string {
	switch s {
	case Spades:
		return "spades"
	case Hearts:
		return "hearts"
	case Diamonds:
		return "diamonds"
	case Clubs:
		return "clubs"
	default:
		return "?"
	}
}

// Symbol returns the unicode glyph for the suit
func (s Suit) Symbol() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Valid reports whether s is one of the four suits
func (s Suit) Valid() bool {
	return s >= Spades && s <= Clubs
}

// ParseSuit parses a suit name ("hearts") or its initial ("h").
func ParseSuit(s string) (Suit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spades", "s":
		return Spades, nil
	case "hearts", "h":
		return Hearts, nil
	case "diamonds", "d":
		return Diamonds, nil
	case "clubs", "c":
		return Clubs, nil
	}
	return 0, fmt.Errorf("%w: unknown suit %q", ErrInvalidCard, s)
}

// Rank represents a card rank. Aces are high.
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// StandardRanks returns the thirteen ranks of a standard deck, lowest first.
func StandardRanks() []Rank {
	ranks := make([]Rank, 0, 13)
	for r := Two; r <= Ace; r++ {
		ranks = append(ranks, r)
	}
	return ranks
}

// String returns the short label of a rank ("2".."10", "J", "Q", "K", "A")
func (r Rank) String() string {
	switch r {
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	}
	if r.Valid() {
		return strconv.Itoa(int(r))
	}
	return "?"
}

var rankNames = map[Rank]string{
	Two: "Two", Three: "Three", Four: "Four", Five: "Five", Six: "Six",
	Seven: "Seven", Eight: "Eight", Nine: "Nine", Ten: "Ten",
	Jack: "Jack", Queen: "Queen", King: "King", Ace: "Ace",
}

// Name returns the English name of the rank ("Seven", "Ace")
func (r Rank) Name() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return "Unknown"
}

// Plural returns the plural English name ("Sixes", "Kings")
func (r Rank) Plural() string {
	if r == Six {
		return "Sixes"
	}
	return r.Name() + "s"
}

// Valid reports whether r is between Two and Ace
func (r Rank) Valid() bool {
	return r >= Two && r <= Ace
}

// ParseRank accepts rank labels ("7", "10", "T", "J", "A") and numeric
// weights ("11", "14").
func ParseRank(s string) (Rank, error) {
	label := strings.ToUpper(strings.TrimSpace(s))
	switch label {
	case "T":
		return Ten, nil
	case "J", "JACK":
		return Jack, nil
	case "Q", "QUEEN":
		return Queen, nil
	case "K", "KING":
		return King, nil
	case "A", "ACE":
		return Ace, nil
	}
	n, err := strconv.Atoi(label)
	if err != nil || !Rank(n).Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRank, s)
	}
	return Rank(n), nil
}

// MarshalText encodes the rank as its short label
func (r Rank) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRank, int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a rank from any form ParseRank accepts
func (r *Rank) UnmarshalText(text []byte) error {
	parsed, err := ParseRank(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Card represents a playing card
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the display form of a card (e.g., "A♠")
func (c Card) String() string {
	return c.Rank.String() + c.Suit.Symbol()
}

// ID returns the stable identifier of a card, "<numericRank>_<suit>" (e.g. "14_hearts")
func (c Card) ID() string {
	return strconv.Itoa(int(c.Rank)) + "_" + c.Suit.String()
}

// ParseCardID is the inverse of Card.ID
func ParseCardID(id string) (Card, error) {
	rankPart, suitPart, ok := strings.Cut(id, "_")
	if !ok {
		return Card{}, fmt.Errorf("%w: malformed id %q", ErrInvalidCard, id)
	}
	n, err := strconv.Atoi(rankPart)
	if err != nil || !Rank(n).Valid() {
		return Card{}, fmt.Errorf("%w: bad rank in id %q", ErrInvalidCard, id)
	}
	suit, err := ParseSuit(suitPart)
	if err != nil || len(suitPart) == 1 {
		return Card{}, fmt.Errorf("%w: bad suit in id %q", ErrInvalidCard, id)
	}
	return Card{Suit: suit, Rank: Rank(n)}, nil
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// Value returns the numeric weight of the card
func (c Card) Value() int {
	return int(c.Rank)
}

// Compare orders cards by rank, then suit.
func (c Card) Compare(other Card) int {
	if c.Rank != other.Rank {
		return int(c.Rank) - int(other.Rank)
	}
	return int(c.Suit) - int(other.Suit)
}

// SortCards sorts cards in place by rank then suit
func SortCards(cards []Card) {
	slices.SortFunc(cards, Card.Compare)
}

type cardJSON struct {
	ID          string `json:"id"`
	Rank        string `json:"rank"`
	Suit        string `json:"suit"`
	NumericRank int    `json:"numericRank"`
}

// MarshalJSON encodes the card as {id, rank, suit, numericRank}
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(cardJSON{
		ID:          c.ID(),
		Rank:        c.Rank.String(),
		Suit:        c.Suit.String(),
		NumericRank: int(c.Rank),
	})
}

// UnmarshalJSON decodes a card from its id field
func (c *Card) UnmarshalJSON(data []byte) error {
	var raw cardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	card, err := ParseCardID(raw.ID)
	if err != nil {
		return err
	}
	*c = card
	return nil
}
