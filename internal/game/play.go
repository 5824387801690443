package game

import (
	"fmt"
	"slices"

	"github.com/lox/bluff/internal/deck"
)

// PlayOutcome reports the effect of a PlayCards command.
type PlayOutcome struct {
	PlayerID    string
	CardsPlayed int
	Rank        deck.Rank
	// TotalClaimed is the cumulative claim count after the play.
	TotalClaimed int
	// Applied is false when the play only confirmed a pending win; the
	// cards stay in the player's hand and the game is over.
	Applied      bool
	NextPlayerID string
	Events       []Event
}

// ChallengeOutcome reports the resolution of a CallBluff command.
type ChallengeOutcome struct {
	CallerID     string    `json:"callerId"`
	Caller       string    `json:"caller"`
	ClaimantID   string    `json:"claimantId"`
	Claimant     string    `json:"claimant"`
	ClaimedRank  deck.Rank `json:"claimedRank"`
	ClaimedCount int       `json:"claimedCount"`
	// Revealed is the most recent play, the cards the challenge inspects.
	Revealed     []deck.Card `json:"revealed"`
	ActualCount  int         `json:"actualCount"`
	Truthful     bool        `json:"truthful"`
	ReceiverID   string      `json:"receiverId"`
	Receiver     string      `json:"receiver"`
	PileSize     int         `json:"pileSize"`
	NextPlayerID string      `json:"nextPlayerId,omitempty"`
	Events       []Event     `json:"events"`
}

// PlayCards places cards from the current player's hand face down on the pile
// while claiming they are all of rank claimed.
func (s *Session) PlayCards(playerID string, cardIDs []string, claimed deck.Rank) (*PlayOutcome, error) {
	if s.state != StatePlaying {
		return nil, ErrGameNotPlaying
	}
	player := s.Player(playerID)
	if player == nil {
		return nil, ErrPlayerNotFound
	}
	if s.players[s.current] != player {
		return nil, ErrNotYourTurn
	}
	if len(cardIDs) == 0 {
		return nil, ErrNoCardsSelected
	}
	cards, err := player.resolve(cardIDs)
	if err != nil {
		return nil, err
	}
	if s.claim != nil && s.claim.Rank != claimed {
		return nil, fmt.Errorf("%w: current claim is %s, got %s", ErrRankMismatch, s.claim.Rank.Plural(), claimed)
	}
	if !s.rules.Claimable(claimed) {
		return nil, fmt.Errorf("%w: cannot claim %s", ErrInvalidClaim, claimed)
	}

	outcome := &PlayOutcome{
		PlayerID:    player.ID,
		CardsPlayed: len(cards),
		Rank:        claimed,
	}

	// Playing on instead of challenging accepts the pending winner's claim.
	if pending := s.pendingWinner; pending != nil && pending != player {
		outcome.TotalClaimed = s.claim.Count
		outcome.Events = s.finishWin(pending, WinReasonAccepted)
		return outcome, nil
	}

	player.removeCards(cards)
	s.pile = append(s.pile, cards...)
	if s.claim == nil {
		s.claim = &Claim{Rank: claimed}
	}
	s.claim.Count += len(cards)
	s.claim.Claimant = player
	s.claim.LastPlay = slices.Clone(cards)
	s.canCallBluff = true

	outcome.Applied = true
	outcome.TotalClaimed = s.claim.Count
	outcome.Events = append(outcome.Events, s.record(Event{
		Type:     EventCardsPlayed,
		PlayerID: player.ID,
		Player:   player.Name,
		Rank:     claimed,
		Count:    len(cards),
		Message:  fmt.Sprintf("%s played %d card(s), claiming %d %s in total.", player.Name, len(cards), s.claim.Count, claimed.Plural()),
	}))

	if player.CardCount() == 0 {
		if s.rules.WinMode == WinImmediate {
			outcome.Events = append(outcome.Events, s.finishWin(player, WinReasonHandEmptied)...)
			return outcome, nil
		}
		s.pendingWinner = player
		outcome.Events = append(outcome.Events, s.record(Event{
			Type:     EventPendingWin,
			PlayerID: player.ID,
			Player:   player.Name,
			Message:  fmt.Sprintf("%s has no cards left! Call the bluff or the win stands.", player.Name),
		}))
	}

	next, ok := s.seatWithCards(s.current, false)
	if !ok || next == s.current {
		// nobody left to contest the claim
		if s.pendingWinner != nil {
			outcome.Events = append(outcome.Events, s.finishWin(s.pendingWinner, WinReasonUncontested)...)
			return outcome, nil
		}
	}
	s.current = next
	outcome.NextPlayerID = s.players[s.current].ID
	return outcome, nil
}

// CallBluff lets the current player challenge the most recent play.
func (s *Session) CallBluff(callerID string) (*ChallengeOutcome, error) {
	if s.state != StatePlaying {
		return nil, ErrGameNotPlaying
	}
	caller := s.Player(callerID)
	if caller == nil {
		return nil, ErrPlayerNotFound
	}
	if !s.canCallBluff || s.claim == nil {
		return nil, ErrNoActiveClaim
	}
	if s.players[s.current] != caller {
		return nil, ErrNotYourTurn
	}

	claim := s.claim
	claimant := claim.Claimant
	actual := 0
	for _, c := range claim.LastPlay {
		if c.Rank == claim.Rank {
			actual++
		}
	}
	truthful := actual >= len(claim.LastPlay)

	receiver, next := caller, claimant
	if !truthful {
		receiver, next = claimant, caller
	}

	out := &ChallengeOutcome{
		CallerID:     caller.ID,
		Caller:       caller.Name,
		ClaimantID:   claimant.ID,
		Claimant:     claimant.Name,
		ClaimedRank:  claim.Rank,
		ClaimedCount: claim.Count,
		Revealed:     slices.Clone(claim.LastPlay),
		ActualCount:  actual,
		Truthful:     truthful,
		ReceiverID:   receiver.ID,
		Receiver:     receiver.Name,
		PileSize:     len(s.pile),
	}

	receiver.addCards(s.pile...)
	s.pile = nil
	s.claim = nil
	s.canCallBluff = false

	if truthful {
		out.Events = append(out.Events, s.record(Event{
			Type:     EventChallengeFailed,
			PlayerID: caller.ID,
			Player:   caller.Name,
			Rank:     claim.Rank,
			Count:    out.PileSize,
			Message:  fmt.Sprintf("%s told the truth! %s picks up %d card(s).", claimant.Name, caller.Name, out.PileSize),
		}))
	} else {
		out.Events = append(out.Events, s.record(Event{
			Type:     EventBluffCaught,
			PlayerID: claimant.ID,
			Player:   claimant.Name,
			Rank:     claim.Rank,
			Count:    out.PileSize,
			Message: fmt.Sprintf("%s was bluffing! Only %d of %d card(s) were %s. %s picks up %d card(s).",
				claimant.Name, actual, len(claim.LastPlay), claim.Rank.Plural(), claimant.Name, out.PileSize),
		}))
	}

	out.Events = append(out.Events, s.reconcile(receiver)...)
	if s.state != StatePlaying {
		return out, nil
	}

	if pending := s.pendingWinner; pending != nil && pending == claimant {
		if truthful {
			out.Events = append(out.Events, s.finishWin(pending, WinReasonChallengeFailed)...)
			return out, nil
		}
		s.pendingWinner = nil
		out.Events = append(out.Events, s.record(Event{
			Type:     EventPendingWinCleared,
			PlayerID: pending.ID,
			Player:   pending.Name,
			Message:  fmt.Sprintf("%s takes the pile back and is no longer winning.", pending.Name),
		}))
	}

	s.current = next.Seat
	if next.CardCount() == 0 {
		if i, ok := s.seatWithCards(s.current, false); ok {
			s.current = i
		}
	}
	out.NextPlayerID = s.players[s.current].ID
	return out, nil
}

// reconcile applies the quad rule to p's hand until no quad remains.
func (s *Session) reconcile(p *Player) []Event {
	var events []Event
	danger := s.rules.DangerousRank
	for s.state == StatePlaying {
		if p.CountRank(danger) >= QuadSize {
			s.state = StateFinished
			s.loser = p
			s.winner = nil
			s.pendingWinner = nil
			s.canCallBluff = false
			return append(events, s.record(Event{
				Type:     EventPlayerLostAces,
				PlayerID: p.ID,
				Player:   p.Name,
				Rank:     danger,
				Count:    QuadSize,
				Message:  fmt.Sprintf("%s holds four %s and loses the game!", p.Name, danger.Plural()),
			}))
		}

		rank, ok := p.lowestQuad(danger)
		if !ok {
			break
		}
		removed := p.removeRank(rank, QuadSize)
		s.discarded += len(removed)
		events = append(events, s.record(Event{
			Type:     EventQuadsRemoved,
			PlayerID: p.ID,
			Player:   p.Name,
			Rank:     rank,
			Count:    len(removed),
			Message:  fmt.Sprintf("%s discards four %s.", p.Name, rank.Plural()),
		}))

		if p.CardCount() == 0 {
			events = append(events, s.finishWin(p, WinReasonQuads)...)
		}
	}
	return events
}

func (s *Session) finishWin(p *Player, reason string) []Event {
	s.state = StateFinished
	s.winner = p
	s.loser = nil
	s.pendingWinner = nil
	s.canCallBluff = false
	return []Event{s.record(Event{
		Type:     EventGameWon,
		PlayerID: p.ID,
		Player:   p.Name,
		Reason:   reason,
		Message:  fmt.Sprintf("%s wins the game!", p.Name),
	})}
}
