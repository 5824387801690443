package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/bluff/internal/deck"
	"github.com/lox/bluff/internal/game"
	"github.com/lox/bluff/internal/gameid"
	"github.com/lox/bluff/internal/randutil"
)

// Service-level errors, on top of the engine's rule violations.
var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameFull     = errors.New("game is full")
	ErrNotInGame    = errors.New("not in a game")
)

// MaxNameLength bounds display names in runes.
const MaxNameLength = 24

// ErrorCode maps an error to the code sent in error messages
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrGameNotFound):
		return "game_not_found"
	case errors.Is(err, ErrGameFull):
		return "game_full"
	case errors.Is(err, ErrNotInGame):
		return "not_in_game"
	}
	return game.Code(err)
}

// Notifier delivers messages to connected players
type Notifier interface {
	SendToPlayer(playerID string, msg *Message) error
	Broadcast(msg *Message)
}

// GameService turns player commands into session operations and fans the
// results out through a Notifier.
type GameService struct {
	store    *GameStore
	notifier Notifier
	logger   *log.Logger
	clock    quartz.Clock
	seeds    *randutil.Seeder
	ids      *gameid.Generator

	rules        game.Rules
	maxPlayers   int
	finishedTTL  time.Duration
	reapInterval time.Duration

	mu    sync.RWMutex
	names map[string]string // playerID -> display name
	seats map[string]string // playerID -> gameID
}

// ServiceOption configures a GameService
type ServiceOption func(*GameService)

func WithClock(clock quartz.Clock) ServiceOption {
	return func(gs *GameService) { gs.clock = clock }
}

func WithRules(rules game.Rules) ServiceOption {
	return func(gs *GameService) { gs.rules = rules }
}

func WithMaxPlayers(n int) ServiceOption {
	return func(gs *GameService) { gs.maxPlayers = n }
}

// WithFinishedTTL removes finished games idle for longer than ttl. Zero
// keeps them until their last player leaves.
func WithFinishedTTL(ttl, interval time.Duration) ServiceOption {
	return func(gs *GameService) {
		gs.finishedTTL = ttl
		gs.reapInterval = interval
	}
}

func WithSeeder(seeds *randutil.Seeder) ServiceOption {
	return func(gs *GameService) { gs.seeds = seeds }
}

func WithIDGenerator(ids *gameid.Generator) ServiceOption {
	return func(gs *GameService) { gs.ids = ids }
}

// NewGameService creates a game service delivering through notifier
func NewGameService(notifier Notifier, logger *log.Logger, opts ...ServiceOption) *GameService {
	gs := &GameService{
		store:        NewGameStore(),
		notifier:     notifier,
		logger:       logger.WithPrefix("games"),
		clock:        quartz.NewReal(),
		seeds:        randutil.NewSeeder(0),
		ids:          gameid.NewGenerator(nil),
		rules:        game.DefaultRules(),
		maxPlayers:   8,
		reapInterval: time.Minute,
		names:        make(map[string]string),
		seats:        make(map[string]string),
	}
	for _, opt := range opts {
		opt(gs)
	}
	return gs
}

// Store exposes the table registry
func (gs *GameService) Store() *GameStore {
	return gs.store
}

// ListGames returns a snapshot of all games
func (gs *GameService) ListGames() []GameSummary {
	return gs.store.Summaries(gs.maxPlayers)
}

// PlayerName returns the display name of a connected player
func (gs *GameService) PlayerName(playerID string) string {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.names[playerID]
}

// PlayerGame returns the game a player is seated in, if any
func (gs *GameService) PlayerGame(playerID string) (string, bool) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	id, ok := gs.seats[playerID]
	return id, ok
}

// Connect registers a player and greets them
func (gs *GameService) Connect(playerID, name string) {
	gs.mu.Lock()
	gs.names[playerID] = name
	gs.mu.Unlock()

	gs.logger.Info("Player connected", "player", name, "id", playerID)

	var out outbox
	gs.queue(&out, playerID, MessageTypeWelcome, WelcomeData{PlayerID: playerID, Name: name})
	gs.queue(&out, playerID, MessageTypeGamesList, GamesListData{Games: gs.ListGames()})
	gs.flush(out)
}

// Disconnect removes a player from their game and forgets them
func (gs *GameService) Disconnect(playerID string) {
	if err := gs.LeaveGame(playerID); err != nil && !errors.Is(err, ErrNotInGame) {
		gs.logger.Warn("Failed to leave game on disconnect", "id", playerID, "error", err)
	}

	gs.mu.Lock()
	name := gs.names[playerID]
	delete(gs.names, playerID)
	gs.mu.Unlock()

	gs.logger.Info("Player disconnected", "player", name, "id", playerID)
}

// SendGamesList sends the lobby list to one player
func (gs *GameService) SendGamesList(playerID string) {
	var out outbox
	gs.queue(&out, playerID, MessageTypeGamesList, GamesListData{Games: gs.ListGames()})
	gs.flush(out)
}

// SetName changes a player's display name, in the lobby and in their game
func (gs *GameService) SetName(playerID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is empty", game.ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: longer than %d characters", game.ErrInvalidName, MaxNameLength)
	}

	gs.mu.Lock()
	old := gs.names[playerID]
	gs.names[playerID] = name
	gameID, seated := gs.seats[playerID]
	gs.mu.Unlock()

	var out outbox
	gs.queue(&out, playerID, MessageTypeNameChanged, NameChangedData{Name: name})

	if seated {
		if table, ok := gs.store.Get(gameID); ok {
			table.mu.Lock()
			if err := table.session.SetName(playerID, name); err == nil {
				gs.queueAll(&out, table.session, MessageTypeServerMessage, ServerMessageData{
					Level: LevelInfo,
					Text:  fmt.Sprintf("%s is now known as %s.", old, name),
				})
				gs.queueLobby(&out, table.session)
				gs.queueState(&out, table.session)
			}
			table.mu.Unlock()
		}
	}

	gs.flush(out)
	gs.logger.Debug("Name changed", "from", old, "to", name)
	return nil
}

// CreateGame opens a new game hosted by playerID and seats them in it
func (gs *GameService) CreateGame(playerID string) (string, error) {
	if _, seated := gs.PlayerGame(playerID); seated {
		if err := gs.LeaveGame(playerID); err != nil {
			return "", err
		}
	}

	id := gs.ids.Generate()
	session := game.NewSession(id, randutil.New(gs.seeds.Next()), game.WithRules(gs.rules))
	host := gs.PlayerName(playerID)
	gs.store.Add(NewTable(session, host, gs.clock.Now()))

	gs.logger.Info("Game created", "game", id, "host", host)

	if err := gs.JoinGame(playerID, id); err != nil {
		gs.store.Delete(id)
		return "", err
	}
	return id, nil
}

// JoinGame seats a player in a waiting game
func (gs *GameService) JoinGame(playerID, gameID string) error {
	table, ok := gs.store.Get(gameID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	// Only give up the current seat once the target can take us.
	if current, seated := gs.PlayerGame(playerID); seated && current != gameID {
		table.mu.Lock()
		err := gs.joinable(table, playerID)
		table.mu.Unlock()
		if err != nil {
			return err
		}
		if err := gs.LeaveGame(playerID); err != nil {
			return err
		}
	}
	name := gs.PlayerName(playerID)

	var out outbox
	table.mu.Lock()
	if table.closed {
		table.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	s := table.session
	if s.Player(playerID) == nil && s.PlayerCount() >= gs.maxPlayers {
		table.mu.Unlock()
		return fmt.Errorf("%w: %d players", ErrGameFull, gs.maxPlayers)
	}
	if _, err := s.AddPlayer(playerID, name); err != nil {
		table.mu.Unlock()
		return err
	}

	gs.mu.Lock()
	gs.seats[playerID] = gameID
	gs.mu.Unlock()

	gs.queue(&out, playerID, MessageTypeGameJoined, GameJoinedData{GameID: gameID, Host: table.Host})
	gs.queueAll(&out, s, MessageTypeServerMessage, ServerMessageData{Level: LevelInfo, Text: name + " joined the game."})
	gs.queueLobby(&out, s)
	gs.queueState(&out, s)
	table.mu.Unlock()

	gs.logger.Info("Player joined game", "game", gameID, "player", name)
	gs.flush(out)
	gs.broadcastGamesList()
	return nil
}

// joinable reports why playerID cannot be seated at table. Callers hold
// table.mu.
func (gs *GameService) joinable(table *Table, playerID string) error {
	if table.closed {
		return fmt.Errorf("%w: %s", ErrGameNotFound, table.ID)
	}
	s := table.session
	if s.State() != game.StateWaiting {
		return game.ErrAlreadyStarted
	}
	if s.Player(playerID) == nil && s.PlayerCount() >= gs.maxPlayers {
		return fmt.Errorf("%w: %d players", ErrGameFull, gs.maxPlayers)
	}
	return nil
}

// LeaveGame removes a player from their game. Empty games are deleted.
func (gs *GameService) LeaveGame(playerID string) error {
	gs.mu.Lock()
	gameID, seated := gs.seats[playerID]
	delete(gs.seats, playerID)
	gs.mu.Unlock()
	if !seated {
		return ErrNotInGame
	}

	var out outbox
	gs.queue(&out, playerID, MessageTypeGameLeft, GameLeftData{GameID: gameID})

	if table, ok := gs.store.Get(gameID); ok {
		table.mu.Lock()
		s := table.session
		removed, events := s.RemovePlayer(playerID)
		if removed {
			if s.PlayerCount() == 0 {
				table.closed = true
				gs.store.Delete(gameID)
				gs.logger.Info("Game removed", "game", gameID, "reason", "empty")
			} else {
				gs.queueAll(&out, s, MessageTypeServerMessage, ServerMessageData{
					Level: LevelWarning,
					Text:  gs.PlayerName(playerID) + " left the game.",
				})
				gs.queueEvents(&out, s, events)
				gs.queueLobby(&out, s)
				gs.queueState(&out, s)
				gs.markFinished(table)
			}
		}
		table.mu.Unlock()
	}

	gs.logger.Info("Player left game", "game", gameID, "id", playerID)
	gs.flush(out)
	gs.broadcastGamesList()
	return nil
}

// ToggleReady flips a player's ready flag and starts the game once every
// seated player is ready.
func (gs *GameService) ToggleReady(playerID string) error {
	return gs.withTable(playerID, func(table *Table, out *outbox) error {
		s := table.session
		ready, err := s.ToggleReady(playerID)
		if err != nil {
			return err
		}
		gs.logger.Debug("Ready toggled", "game", table.ID, "id", playerID, "ready", ready)
		gs.queueLobby(out, s)
		if s.State() != game.StatePlaying && s.AllReady() {
			return gs.start(table, out)
		}
		return nil
	})
}

// StartGame starts (or restarts) the player's game
func (gs *GameService) StartGame(playerID string) error {
	return gs.withTable(playerID, func(table *Table, out *outbox) error {
		return gs.start(table, out)
	})
}

// ResetGame returns a finished game to the lobby
func (gs *GameService) ResetGame(playerID string) error {
	return gs.withTable(playerID, func(table *Table, out *outbox) error {
		s := table.session
		if s.State() == game.StatePlaying {
			return game.ErrAlreadyStarted
		}
		events := s.Reset()
		gs.markFinished(table)
		gs.queueEvents(out, s, events)
		gs.queueLobby(out, s)
		gs.queueState(out, s)
		gs.logger.Info("Game reset", "game", table.ID)
		return nil
	})
}

// PlayCards plays cards for a player. rankLabel accepts anything
// deck.ParseRank does.
func (gs *GameService) PlayCards(playerID string, cardIDs []string, rankLabel string) error {
	rank, err := deck.ParseRank(rankLabel)
	if err != nil {
		return fmt.Errorf("%w: %v", game.ErrInvalidClaim, err)
	}

	return gs.withTable(playerID, func(table *Table, out *outbox) error {
		s := table.session
		result, err := s.PlayCards(playerID, cardIDs, rank)
		if err != nil {
			return err
		}

		if result.Applied {
			p := s.Player(playerID)
			gs.queueAll(out, s, MessageTypeCardsPlayed, CardsPlayedData{
				PlayerID:     playerID,
				Player:       p.Name,
				Count:        result.CardsPlayed,
				Rank:         result.Rank,
				TotalClaimed: result.TotalClaimed,
			})
		}
		gs.queueEvents(out, s, result.Events)
		gs.queueState(out, s)
		gs.markFinished(table)

		gs.logger.Debug("Cards played", "game", table.ID, "id", playerID,
			"count", result.CardsPlayed, "rank", rank, "applied", result.Applied)
		return nil
	})
}

// CallBluff challenges the last play on behalf of a player
func (gs *GameService) CallBluff(playerID string) error {
	return gs.withTable(playerID, func(table *Table, out *outbox) error {
		s := table.session
		result, err := s.CallBluff(playerID)
		if err != nil {
			return err
		}

		gs.queueAll(out, s, MessageTypeBluffResolved, result)
		gs.queueEvents(out, s, result.Events)
		gs.queueState(out, s)
		gs.markFinished(table)

		gs.logger.Debug("Bluff called", "game", table.ID, "caller", result.Caller,
			"claimant", result.Claimant, "truthful", result.Truthful, "pile", result.PileSize)
		return nil
	})
}

// Run reaps expired games until ctx is cancelled.
func (gs *GameService) Run(ctx context.Context) error {
	if gs.finishedTTL <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := gs.clock.NewTicker(gs.reapInterval, "reaper")
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			gs.Reap()
		}
	}
}

// Reap removes finished games that have been idle longer than the TTL and
// returns how many were removed.
func (gs *GameService) Reap() int {
	if gs.finishedTTL <= 0 {
		return 0
	}

	now := gs.clock.Now()
	var out outbox
	reaped := 0
	for _, table := range gs.store.List() {
		table.mu.Lock()
		if !table.finishedAt.IsZero() && now.Sub(table.finishedAt) >= gs.finishedTTL {
			table.closed = true
			gs.store.Delete(table.ID)
			reaped++

			gs.mu.Lock()
			for _, p := range table.session.Players() {
				delete(gs.seats, p.ID)
				gs.queue(&out, p.ID, MessageTypeGameLeft, GameLeftData{GameID: table.ID, Reason: "expired"})
			}
			gs.mu.Unlock()

			gs.logger.Info("Game removed", "game", table.ID, "reason", "expired")
		}
		table.mu.Unlock()
	}

	gs.flush(out)
	if reaped > 0 {
		gs.broadcastGamesList()
	}
	return reaped
}

// withTable runs fn on the caller's table while holding its lock, then
// delivers the queued messages.
func (gs *GameService) withTable(playerID string, fn func(*Table, *outbox) error) error {
	gameID, seated := gs.PlayerGame(playerID)
	if !seated {
		return ErrNotInGame
	}
	table, ok := gs.store.Get(gameID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	var out outbox
	table.mu.Lock()
	if table.closed {
		table.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	before := table.session.State()
	err := fn(table, &out)
	after := table.session.State()
	table.mu.Unlock()

	if err != nil {
		return err
	}
	gs.flush(out)
	if before != after {
		gs.broadcastGamesList()
	}
	return nil
}

func (gs *GameService) start(table *Table, out *outbox) error {
	s := table.session
	events, err := s.StartGame()
	if err != nil {
		return err
	}
	gs.markFinished(table)

	gs.queueAll(out, s, MessageTypeServerMessage, ServerMessageData{Level: LevelSuccess, Text: "The game has started!"})
	gs.queueEvents(out, s, events)
	gs.queueLobby(out, s)
	gs.queueState(out, s)

	gs.logger.Info("Game started", "game", table.ID, "players", s.PlayerCount())
	return nil
}

// markFinished records when a table entered the finished state.
func (gs *GameService) markFinished(table *Table) {
	switch {
	case table.session.State() != game.StateFinished:
		table.finishedAt = time.Time{}
	case table.finishedAt.IsZero():
		table.finishedAt = gs.clock.Now()
		if w := table.session.Winner(); w != nil {
			gs.logger.Info("Game finished", "game", table.ID, "winner", w.Name)
		} else if l := table.session.Loser(); l != nil {
			gs.logger.Info("Game finished", "game", table.ID, "loser", l.Name)
		}
	}
}

func (gs *GameService) broadcastGamesList() {
	msg, err := gs.message(MessageTypeGamesList, GamesListData{Games: gs.ListGames()})
	if err != nil {
		gs.logger.Error("Failed to create games list", "error", err)
		return
	}
	gs.notifier.Broadcast(msg)
}

func (gs *GameService) message(t MessageType, data any) (*Message, error) {
	return NewMessageAt(gs.clock.Now(), t, data)
}

// outbox collects messages while a table lock is held so they can be sent
// after it is released.
type outbox []delivery

type delivery struct {
	playerID string
	msg      *Message
}

func (gs *GameService) queue(out *outbox, playerID string, t MessageType, data any) {
	msg, err := gs.message(t, data)
	if err != nil {
		gs.logger.Error("Failed to create message", "type", t, "error", err)
		return
	}
	*out = append(*out, delivery{playerID: playerID, msg: msg})
}

// queueAll sends the same message to every member of the session.
func (gs *GameService) queueAll(out *outbox, s *game.Session, t MessageType, data any) {
	msg, err := gs.message(t, data)
	if err != nil {
		gs.logger.Error("Failed to create message", "type", t, "error", err)
		return
	}
	for _, p := range s.Players() {
		*out = append(*out, delivery{playerID: p.ID, msg: msg})
	}
}

func (gs *GameService) queueEvents(out *outbox, s *game.Session, events []game.Event) {
	for _, ev := range events {
		gs.queueAll(out, s, MessageTypeGameEvent, ev)
	}
}

func (gs *GameService) queueLobby(out *outbox, s *game.Session) {
	ps := s.PublicState()
	gs.queueAll(out, s, MessageTypeLobbyUpdate, LobbyUpdateData{
		GameID:   s.ID(),
		Players:  ps.Players,
		AllReady: s.AllReady(),
	})
}

// queueState sends each member their personalized view.
func (gs *GameService) queueState(out *outbox, s *game.Session) {
	for _, p := range s.Players() {
		st, _ := s.PlayerState(p.ID)
		gs.queue(out, p.ID, MessageTypeGameState, st)
	}
}

func (gs *GameService) flush(out outbox) {
	for _, d := range out {
		if err := gs.notifier.SendToPlayer(d.playerID, d.msg); err != nil {
			gs.logger.Debug("Failed to deliver message", "id", d.playerID, "type", d.msg.Type, "error", err)
		}
	}
}
