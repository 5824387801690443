package game

import (
	"fmt"
	rand "math/rand/v2"
	"slices"
	"strings"

	"github.com/lox/bluff/internal/deck"
)

// DeckSource builds the deck for a new deal.
type DeckSource func(rules Rules, rng *rand.Rand) (*deck.Deck, error)

func standardDeck(rules Rules, rng *rand.Rand) (*deck.Deck, error) {
	return deck.New(rules.Ranks, rng)
}

// Claim is the outstanding assertion about the cards in the center pile.
type Claim struct {
	Rank     deck.Rank
	Count    int
	Claimant *Player
	LastPlay []deck.Card
}

// Session is one game of Bluff. It is not safe for concurrent use.
type Session struct {
	id         string
	rules      Rules
	rng        *rand.Rand
	deckSource DeckSource

	players       []*Player
	current       int
	state         State
	winner        *Player
	loser         *Player
	pendingWinner *Player
	claim         *Claim
	canCallBluff  bool
	pile          []deck.Card
	discarded     int
	deckSize      int
	lastAction    *Event
}

// Option configures a Session during creation.
type Option func(*Session)

// WithRules replaces the default rules
func WithRules(rules Rules) Option {
	return func(s *Session) { s.rules = rules }
}

// WithDeckSource replaces how decks are built for each deal
func WithDeckSource(src DeckSource) Option {
	return func(s *Session) { s.deckSource = src }
}

// NewSession creates an empty session in the waiting state. The RNG is owned
// by the session from now on.
func NewSession(id string, rng *rand.Rand, opts ...Option) *Session {
	s := &Session{
		id:         id,
		rules:      DefaultRules(),
		rng:        rng,
		deckSource: standardDeck,
		state:      StateWaiting,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier
func (s *Session) ID() string { return s.id }

// State returns the lifecycle phase
func (s *Session) State() State { return s.state }

// Rules returns the rules the session was created with
func (s *Session) Rules() Rules { return s.rules }

// Players returns the seated players in seat order
func (s *Session) Players() []*Player { return slices.Clone(s.players) }

// PlayerCount returns the number of seated players
func (s *Session) PlayerCount() int { return len(s.players) }

// Player returns the player with the given id, or nil
func (s *Session) Player(id string) *Player {
	if i := s.indexOf(id); i >= 0 {
		return s.players[i]
	}
	return nil
}

// CurrentPlayer returns the player whose turn it is, or nil outside play
func (s *Session) CurrentPlayer() *Player {
	if s.state != StatePlaying || len(s.players) == 0 {
		return nil
	}
	return s.players[s.current]
}

func (s *Session) Winner() *Player        { return s.winner }
func (s *Session) Loser() *Player         { return s.loser }
func (s *Session) PendingWinner() *Player { return s.pendingWinner }
func (s *Session) CanCallBluff() bool     { return s.canCallBluff }
func (s *Session) PileSize() int          { return len(s.pile) }
func (s *Session) Discarded() int         { return s.discarded }

// Claim returns a copy of the outstanding claim, or nil
func (s *Session) Claim() *Claim {
	if s.claim == nil {
		return nil
	}
	c := *s.claim
	c.LastPlay = slices.Clone(s.claim.LastPlay)
	return &c
}

// LastAction returns the most recent event, or nil
func (s *Session) LastAction() *Event {
	if s.lastAction == nil {
		return nil
	}
	ev := *s.lastAction
	return &ev
}

// AddPlayer seats a new player. Adding an id that is already seated updates
// the name and returns the existing player.
func (s *Session) AddPlayer(id, name string) (*Player, error) {
	if s.state != StateWaiting {
		return nil, ErrAlreadyStarted
	}
	name = strings.TrimSpace(name)
	if p := s.Player(id); p != nil {
		if name != "" {
			p.Name = name
		}
		return p, nil
	}
	if name == "" {
		name = fmt.Sprintf("Player %d", len(s.players)+1)
	}
	p := &Player{ID: id, Name: name, Seat: len(s.players)}
	s.players = append(s.players, p)
	return p, nil
}

// SetName renames a seated player
func (s *Session) SetName(id, name string) error {
	p := s.Player(id)
	if p == nil {
		return ErrPlayerNotFound
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	p.Name = name
	return nil
}

// SetReady sets a player's lobby ready flag
func (s *Session) SetReady(id string, ready bool) error {
	if s.state == StatePlaying {
		return ErrAlreadyStarted
	}
	p := s.Player(id)
	if p == nil {
		return ErrPlayerNotFound
	}
	p.Ready = ready
	return nil
}

// ToggleReady flips a player's ready flag and returns the new value
func (s *Session) ToggleReady(id string) (bool, error) {
	p := s.Player(id)
	if p == nil {
		return false, ErrPlayerNotFound
	}
	if err := s.SetReady(id, !p.Ready); err != nil {
		return false, err
	}
	return p.Ready, nil
}

// AllReady reports whether enough players are seated and all are ready
func (s *Session) AllReady() bool {
	if len(s.players) < MinPlayers {
		return false
	}
	for _, p := range s.players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// RemovePlayer unseats a player in any state. While playing, the player's
// cards leave the game, a claim they made is withdrawn and, when fewer than
// MinPlayers remain, the last player standing wins by forfeit.
func (s *Session) RemovePlayer(id string) (bool, []Event) {
	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}
	p := s.players[idx]
	s.players = slices.Delete(s.players, idx, idx+1)
	for i := idx; i < len(s.players); i++ {
		s.players[i].Seat = i
	}

	events := []Event{s.record(Event{
		Type:     EventPlayerLeft,
		PlayerID: p.ID,
		Player:   p.Name,
		Message:  p.Name + " left the game.",
	})}

	if s.state != StatePlaying {
		if s.current >= len(s.players) {
			s.current = 0
		}
		return true, events
	}

	s.discarded += len(p.hand)
	p.hand = nil
	if s.claim != nil && s.claim.Claimant == p {
		s.claim = nil
		s.canCallBluff = false
	}
	if s.pendingWinner == p {
		s.pendingWinner = nil
	}

	switch len(s.players) {
	case 0:
		s.clearRound()
		s.state = StateWaiting
		return true, events
	case 1:
		return true, append(events, s.finishWin(s.players[0], WinReasonForfeit)...)
	}

	switch {
	case idx < s.current:
		s.current--
	case idx == s.current:
		// the next seat slid into idx; resume from there
		s.current = idx % len(s.players)
		if next, ok := s.seatWithCards(s.current, true); ok {
			s.current = next
		}
	}
	return true, events
}

// StartGame deals a fresh deck. It is allowed from waiting and from finished,
// in which case the previous result is discarded.
func (s *Session) StartGame() ([]Event, error) {
	if s.state == StatePlaying {
		return nil, ErrAlreadyStarted
	}
	if len(s.players) < MinPlayers {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrInsufficientPlayers, MinPlayers, len(s.players))
	}

	hands, size, err := s.deal()
	if err != nil {
		return nil, err
	}

	s.clearRound()
	for i, p := range s.players {
		p.hand = hands[i]
		p.Ready = true
	}
	s.deckSize = size
	s.state = StatePlaying

	first := s.players[0]
	events := []Event{s.record(Event{
		Type:     EventGameStarted,
		PlayerID: first.ID,
		Player:   first.Name,
		Count:    size,
		Message:  fmt.Sprintf("Game started! %s goes first.", first.Name),
	})}

	for _, p := range s.players {
		events = append(events, s.reconcile(p)...)
		if s.state != StatePlaying {
			return events, nil
		}
	}
	if s.players[s.current].CardCount() == 0 {
		if next, ok := s.seatWithCards(s.current, false); ok {
			s.current = next
		}
	}
	return events, nil
}

// Reset returns a session to the waiting state, keeping its players.
func (s *Session) Reset() []Event {
	s.clearRound()
	s.state = StateWaiting
	s.deckSize = 0
	for _, p := range s.players {
		p.hand = nil
		p.Ready = false
	}
	return []Event{s.record(Event{Type: EventGameReset, Message: "Game reset. Waiting for players."})}
}

// VerifyCardConservation checks that every card dealt is still accounted for
// in a hand, the pile or the discard count.
func (s *Session) VerifyCardConservation() error {
	if s.state != StatePlaying {
		return nil
	}
	total := len(s.pile) + s.discarded
	for _, p := range s.players {
		total += len(p.hand)
	}
	if total != s.deckSize {
		return fmt.Errorf("card conservation violated: %d accounted for, deck had %d", total, s.deckSize)
	}
	return nil
}

// deal builds hands without touching session state, retrying when a hand
// receives four of the dangerous rank.
func (s *Session) deal() ([][]deck.Card, int, error) {
	var hands [][]deck.Card
	var size int
	for attempt := 0; attempt <= max(s.rules.RedealAttempts, 0); attempt++ {
		d, err := s.deckSource(s.rules, s.rng)
		if err != nil {
			return nil, 0, err
		}
		size = d.Size()
		d.Shuffle()

		hands = make([][]deck.Card, len(s.players))
		for i := 0; !d.IsEmpty(); i = (i + 1) % len(s.players) {
			card, err := d.Draw()
			if err != nil {
				return nil, 0, err
			}
			hands[i] = append(hands[i], card)
		}

		if !s.dealtDangerousQuad(hands) {
			break
		}
	}
	return hands, size, nil
}

func (s *Session) dealtDangerousQuad(hands [][]deck.Card) bool {
	for _, hand := range hands {
		n := 0
		for _, c := range hand {
			if c.Rank == s.rules.DangerousRank {
				n++
			}
		}
		if n >= QuadSize {
			return true
		}
	}
	return false
}

func (s *Session) clearRound() {
	s.current = 0
	s.winner = nil
	s.loser = nil
	s.pendingWinner = nil
	s.claim = nil
	s.canCallBluff = false
	s.pile = nil
	s.discarded = 0
	s.lastAction = nil
}

func (s *Session) indexOf(id string) int {
	return slices.IndexFunc(s.players, func(p *Player) bool { return p.ID == id })
}

// seatWithCards finds the first seat after from (or at from when inclusive)
// whose player still holds cards.
func (s *Session) seatWithCards(from int, inclusive bool) (int, bool) {
	n := len(s.players)
	start := 1
	if inclusive {
		start = 0
	}
	for step := start; step < n+start; step++ {
		i := (from + step) % n
		if s.players[i].CardCount() > 0 {
			return i, true
		}
	}
	return from, false
}

func (s *Session) record(ev Event) Event {
	s.lastAction = &ev
	return ev
}
