package game

import "github.com/lox/bluff/internal/deck"

// PlayerSummary is the public view of a seated player
type PlayerSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CardCount int    `json:"cardCount"`
	SeatIndex int    `json:"seatIndex"`
	Ready     bool   `json:"ready"`
}

// ClaimSummary is the public view of the outstanding claim
type ClaimSummary struct {
	Rank       deck.Rank `json:"rank"`
	Count      int       `json:"count"`
	PlayerName string    `json:"playerName"`
}

// PublicState is the projection every member of a game may see. It never
// contains hands.
type PublicState struct {
	GameID             string          `json:"gameId"`
	State              State           `json:"state"`
	Players            []PlayerSummary `json:"players"`
	CurrentPlayerIndex int             `json:"currentPlayerIndex"`
	CurrentPlayerName  string          `json:"currentPlayerName"`
	CenterPileCount    int             `json:"centerPileCount"`
	LastClaim          *ClaimSummary   `json:"lastClaim"`
	LastAction         *Event          `json:"lastAction"`
	Winner             string          `json:"winner"`
	Loser              string          `json:"loser"`
	PendingWinner      string          `json:"pendingWinner"`
	CanCallBluff       bool            `json:"canCallBluff"`
}

// PlayerState is the projection sent to one player: the public state plus
// their own hand. CanCallBluff is personalized and shadows the public flag.
type PlayerState struct {
	PublicState
	Hand            []deck.Card `json:"hand"`
	IsCurrentPlayer bool        `json:"isCurrentPlayer"`
	CanCallBluff    bool        `json:"canCallBluff"`
}

// PublicState builds the shared projection
func (s *Session) PublicState() PublicState {
	ps := PublicState{
		GameID:             s.id,
		State:              s.state,
		Players:            make([]PlayerSummary, 0, len(s.players)),
		CurrentPlayerIndex: s.current,
		CenterPileCount:    len(s.pile),
		LastAction:         s.LastAction(),
		CanCallBluff:       s.canCallBluff,
	}
	for _, p := range s.players {
		ps.Players = append(ps.Players, PlayerSummary{
			ID:        p.ID,
			Name:      p.Name,
			CardCount: len(p.hand),
			SeatIndex: p.Seat,
			Ready:     p.Ready,
		})
	}
	if cur := s.CurrentPlayer(); cur != nil {
		ps.CurrentPlayerName = cur.Name
	}
	if s.claim != nil && s.canCallBluff {
		ps.LastClaim = &ClaimSummary{
			Rank:       s.claim.Rank,
			Count:      s.claim.Count,
			PlayerName: s.claim.Claimant.Name,
		}
	}
	if s.winner != nil {
		ps.Winner = s.winner.Name
	}
	if s.loser != nil {
		ps.Loser = s.loser.Name
	}
	if s.pendingWinner != nil {
		ps.PendingWinner = s.pendingWinner.Name
	}
	return ps
}

// PlayerState builds the projection for one player. The second result is
// false when the player is not seated, in which case only the public part is
// filled in.
func (s *Session) PlayerState(playerID string) (PlayerState, bool) {
	st := PlayerState{PublicState: s.PublicState(), Hand: []deck.Card{}}
	p := s.Player(playerID)
	if p == nil {
		return st, false
	}
	st.Hand = p.Hand()
	st.IsCurrentPlayer = s.CurrentPlayer() == p
	st.CanCallBluff = s.canCallBluff && st.IsCurrentPlayer
	return st, true
}
