package game

import (
	"fmt"
	"slices"

	"github.com/lox/bluff/internal/deck"
)

// Player is a seated participant of a session
type Player struct {
	ID    string
	Name  string
	Seat  int
	Ready bool
	hand  []deck.Card
}

// Hand returns a sorted copy of the player's cards
func (p *Player) Hand() []deck.Card {
	hand := slices.Clone(p.hand)
	deck.SortCards(hand)
	return hand
}

// CardCount returns the number of cards held
func (p *Player) CardCount() int {
	return len(p.hand)
}

// HasCard reports whether the player holds card
func (p *Player) HasCard(card deck.Card) bool {
	return slices.Contains(p.hand, card)
}

// CountRank returns how many cards of rank the player holds
func (p *Player) CountRank(rank deck.Rank) int {
	n := 0
	for _, c := range p.hand {
		if c.Rank == rank {
			n++
		}
	}
	return n
}

// resolve maps card ids to cards in the hand. Unknown, malformed or repeated
// ids are rejected with ErrCardsNotOwned.
func (p *Player) resolve(ids []string) ([]deck.Card, error) {
	cards := make([]deck.Card, 0, len(ids))
	seen := make(map[deck.Card]bool, len(ids))
	for _, id := range ids {
		card, err := deck.ParseCardID(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCardsNotOwned, err)
		}
		if seen[card] {
			return nil, fmt.Errorf("%w: %s listed twice", ErrCardsNotOwned, id)
		}
		if !p.HasCard(card) {
			return nil, fmt.Errorf("%w: %s", ErrCardsNotOwned, id)
		}
		seen[card] = true
		cards = append(cards, card)
	}
	return cards, nil
}

func (p *Player) addCards(cards ...deck.Card) {
	p.hand = append(p.hand, cards...)
}

// removeCards drops cards already validated to be in the hand.
func (p *Player) removeCards(cards []deck.Card) {
	p.hand = slices.DeleteFunc(p.hand, func(c deck.Card) bool {
		return slices.Contains(cards, c)
	})
}

// lowestQuad returns the lowest rank other than skip held QuadSize or more times.
func (p *Player) lowestQuad(skip deck.Rank) (deck.Rank, bool) {
	counts := make(map[deck.Rank]int)
	for _, c := range p.hand {
		counts[c.Rank]++
	}
	var best deck.Rank
	found := false
	for rank, n := range counts {
		if rank == skip || n < QuadSize {
			continue
		}
		if !found || rank < best {
			best, found = rank, true
		}
	}
	return best, found
}

// removeRank discards up to n cards of rank and returns them.
func (p *Player) removeRank(rank deck.Rank, n int) []deck.Card {
	var removed []deck.Card
	p.hand = slices.DeleteFunc(p.hand, func(c deck.Card) bool {
		if c.Rank == rank && len(removed) < n {
			removed = append(removed, c)
			return true
		}
		return false
	})
	return removed
}
