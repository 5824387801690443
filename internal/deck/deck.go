package deck

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"slices"
)

var (
	ErrEmptyDeck     = errors.New("deck is empty")
	ErrConfiguration = errors.New("invalid deck configuration")
)

// Deck represents an ordered pile of cards. Cards are drawn from the end.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New creates a deck holding every combination of the given ranks and the four
// suits exactly once. The rng drives Shuffle and must not be shared across
// goroutines.
func New(ranks []Rank, rng *rand.Rand) (*Deck, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrConfiguration)
	}
	if len(ranks) == 0 {
		return nil, fmt.Errorf("%w: no ranks", ErrConfiguration)
	}

	seen := make(map[Rank]bool, len(ranks))
	for _, r := range ranks {
		if !r.Valid() {
			return nil, fmt.Errorf("%w: rank %d out of range", ErrConfiguration, int(r))
		}
		if seen[r] {
			return nil, fmt.Errorf("%w: duplicate rank %s", ErrConfiguration, r)
		}
		seen[r] = true
	}

	d := &Deck{
		cards: make([]Card, 0, len(ranks)*len(Suits)),
		rng:   rng,
	}
	for _, suit := range Suits {
		for _, rank := range ranks {
			d.cards = append(d.cards, NewCard(suit, rank))
		}
	}
	return d, nil
}

// NewStacked returns a deck that deals the given cards in order, first card
// first. Shuffle is a no-op on a stacked deck.
func NewStacked(cards []Card) *Deck {
	stacked := slices.Clone(cards)
	slices.Reverse(stacked)
	return &Deck{cards: stacked}
}

// Shuffle randomizes the order of cards in the deck (Fisher-Yates)
func (d *Deck) Shuffle() {
	if d.rng == nil {
		return
	}
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the last card of the deck
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrEmptyDeck
	}
	last := len(d.cards) - 1
	card := d.cards[last]
	d.cards = d.cards[:last]
	return card, nil
}

// Size returns the number of cards left in the deck
func (d *Deck) Size() int {
	return len(d.cards)
}

// IsEmpty returns true if the deck has no cards left
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// Cards returns a copy of the remaining cards in storage order
func (d *Deck) Cards() []Card {
	return slices.Clone(d.cards)
}
