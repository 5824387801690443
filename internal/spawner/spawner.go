// Package spawner seats in-process bot clients at Bluff tables for demos and
// load testing.
package spawner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/bluff/internal/bot"
	"github.com/lox/bluff/internal/client"
	"github.com/lox/bluff/internal/game"
	"github.com/lox/bluff/internal/randutil"
	"github.com/lox/bluff/internal/server"
)

// TableResult is reported once per spawned table when its game finishes
type TableResult struct {
	GameID string
	Winner string
	Loser  string
	Reason string
}

// Bot is one connected client driven by a strategy
type Bot struct {
	Name     string
	Strategy string
	client   *client.Client
	repl     *client.REPL
}

// Snapshot returns the bot's current view of the server
func (b *Bot) Snapshot() client.Snapshot {
	return b.repl.Tracker().Snapshot()
}

// await registers for the next message of type t. Register before sending
// the command that triggers it.
func (b *Bot) await(t server.MessageType) <-chan *server.Message {
	ch := make(chan *server.Message, 1)
	b.client.AddEventHandler(t, func(msg *server.Message) {
		select {
		case ch <- msg:
		default:
		}
	})
	return ch
}

// Spawner manages the lifecycle of bot clients.
type Spawner struct {
	serverURL string
	logger    *log.Logger
	seeds     *randutil.Seeder
	rules     game.Rules
	timeout   time.Duration
	results   chan TableResult

	mu     sync.Mutex
	bots   []*Bot
	botSeq int
}

// Option configures a Spawner
type Option func(*Spawner)

// WithSeed makes bot decisions reproducible
func WithSeed(seed int64) Option {
	return func(s *Spawner) { s.seeds = randutil.NewSeeder(seed) }
}

// WithRules sets the rules the bots assume. They must match the server's.
func WithRules(rules game.Rules) Option {
	return func(s *Spawner) { s.rules = rules }
}

// WithTimeout bounds each connect and seating step
func WithTimeout(d time.Duration) Option {
	return func(s *Spawner) { s.timeout = d }
}

// New creates a spawner for the server at serverURL
func New(serverURL string, logger *log.Logger, opts ...Option) *Spawner {
	s := &Spawner{
		serverURL: serverURL,
		logger:    logger.WithPrefix("spawner"),
		seeds:     randutil.NewSeeder(randutil.NewSeed()),
		rules:     game.DefaultRules(),
		timeout:   10 * time.Second,
		results:   make(chan TableResult, 64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Results delivers one TableResult per finished table. Results are dropped
// when nobody reads them.
func (s *Spawner) Results() <-chan TableResult {
	return s.results
}

// SpawnTable connects one bot per strategy, seats them all in a new game and
// readies them, which starts it. The first bot hosts. Returns the game id.
func (s *Spawner) SpawnTable(ctx context.Context, strategies []string) (string, error) {
	if len(strategies) < game.MinPlayers {
		return "", fmt.Errorf("need at least %d bots, got %d", game.MinPlayers, len(strategies))
	}

	bots := make([]*Bot, 0, len(strategies))
	for _, name := range strategies {
		b, err := s.connect(ctx, name)
		if err != nil {
			stop(bots)
			return "", err
		}
		bots = append(bots, b)
	}

	gameID, err := s.seat(ctx, bots)
	if err != nil {
		stop(bots)
		return "", err
	}
	s.watch(gameID, bots[0])

	for _, b := range bots {
		if err := b.client.ToggleReady(); err != nil {
			stop(bots)
			return "", fmt.Errorf("ready %s: %w", b.Name, err)
		}
	}

	s.mu.Lock()
	s.bots = append(s.bots, bots...)
	s.mu.Unlock()

	s.logger.Info("Spawned table", "game", gameID, "bots", len(bots))
	return gameID, nil
}

func (s *Spawner) connect(ctx context.Context, strategyName string) (*Bot, error) {
	s.mu.Lock()
	s.botSeq++
	name := fmt.Sprintf("%s-%d", strategyName, s.botSeq)
	s.mu.Unlock()

	logger := s.logger.With("bot", name)
	strategy, err := bot.New(strategyName, randutil.New(s.seeds.Next()), logger)
	if err != nil {
		return nil, err
	}

	c := client.NewClient(s.serverURL, logger)
	b := &Bot{
		Name:     name,
		Strategy: strategyName,
		client:   c,
		repl:     client.NewREPL(c, io.Discard, logger, client.WithAutoplay(strategy, s.rules)),
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	welcome := b.await(server.MessageTypeWelcome)
	if err := c.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect %s: %w", name, err)
	}
	if _, err := receive(ctx, welcome); err != nil {
		_ = c.Disconnect()
		return nil, fmt.Errorf("connect %s: %w", name, err)
	}
	if err := c.SetName(name); err != nil {
		_ = c.Disconnect()
		return nil, err
	}
	return b, nil
}

// seat creates a game with the first bot and joins the rest to it
func (s *Spawner) seat(ctx context.Context, bots []*Bot) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	host := bots[0]
	joined := host.await(server.MessageTypeGameJoined)
	if err := host.client.CreateGame(); err != nil {
		return "", err
	}
	data, err := receiveJoined(ctx, joined)
	if err != nil {
		return "", fmt.Errorf("create game: %w", err)
	}
	gameID := data.GameID

	for _, b := range bots[1:] {
		joined := b.await(server.MessageTypeGameJoined)
		if err := b.client.JoinGame(gameID); err != nil {
			return "", err
		}
		if _, err := receiveJoined(ctx, joined); err != nil {
			return "", fmt.Errorf("join %s: %w", b.Name, err)
		}
	}
	return gameID, nil
}

// watch reports the table's result once the host sees the game finish
func (s *Spawner) watch(gameID string, host *Bot) {
	var once sync.Once
	host.client.AddEventHandler(server.MessageTypeGameState, func(msg *server.Message) {
		var st game.PlayerState
		if err := json.Unmarshal(msg.Data, &st); err != nil || st.GameID != gameID || st.State != game.StateFinished {
			return
		}
		once.Do(func() {
			result := TableResult{GameID: gameID, Winner: st.Winner, Loser: st.Loser}
			if st.LastAction != nil {
				result.Reason = st.LastAction.Reason
			}
			s.logger.Info("Table finished", "game", gameID, "winner", result.Winner, "loser", result.Loser)
			select {
			case s.results <- result:
			default:
			}
		})
	})
}

// Bots returns the spawned bots
func (s *Spawner) Bots() []*Bot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Bot(nil), s.bots...)
}

// ActiveCount returns how many bots are still connected
func (s *Spawner) ActiveCount() int {
	count := 0
	for _, b := range s.Bots() {
		if b.client.IsConnected() {
			count++
		}
	}
	return count
}

// StopAll disconnects every bot
func (s *Spawner) StopAll() {
	s.mu.Lock()
	bots := s.bots
	s.bots = nil
	s.mu.Unlock()

	stop(bots)
	s.logger.Info("Stopped bots", "count", len(bots))
}

func stop(bots []*Bot) {
	for _, b := range bots {
		_ = b.client.Disconnect()
	}
}

func receive(ctx context.Context, ch <-chan *server.Message) (*server.Message, error) {
	select {
	case msg := <-ch:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func receiveJoined(ctx context.Context, ch <-chan *server.Message) (server.GameJoinedData, error) {
	var data server.GameJoinedData
	msg, err := receive(ctx, ch)
	if err != nil {
		return data, err
	}
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return data, fmt.Errorf("decode game_joined: %w", err)
	}
	return data, nil
}
