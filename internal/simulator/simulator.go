// Package simulator plays bot-only games against the engine in parallel and
// checks card conservation after every command.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lox/bluff/internal/bot"
	"github.com/lox/bluff/internal/game"
	"github.com/lox/bluff/internal/randutil"
	"github.com/lox/bluff/internal/statistics"
	"golang.org/x/sync/errgroup"
)

// ReasonStalled marks a game that hit the turn limit
const ReasonStalled = "stalled"

// Config holds configuration for running simulations
type Config struct {
	Games      int
	Players    int
	Strategies []string // rotated around the table, one seat further each game
	Seed       int64
	Workers    int
	MaxTurns   int
	Rules      game.Rules
	Logger     *log.Logger
}

func (c *Config) applyDefaults() {
	if c.Players == 0 {
		c.Players = 4
	}
	if len(c.Strategies) == 0 {
		c.Strategies = bot.Names()
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.MaxTurns == 0 {
		c.MaxTurns = 5000
	}
	if c.Rules.Ranks == nil {
		c.Rules = game.DefaultRules()
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.Games <= 0 {
		return fmt.Errorf("games must be positive, got %d", c.Games)
	}
	if c.Players < game.MinPlayers {
		return fmt.Errorf("need at least %d players, got %d", game.MinPlayers, c.Players)
	}
	for _, name := range c.Strategies {
		if _, err := bot.New(name, nil, c.Logger); err != nil {
			return err
		}
	}
	return nil
}

// Simulator runs bot games
type Simulator struct {
	config Config
	logger *log.Logger
}

// New creates a new simulator with the given configuration
func New(config Config) (*Simulator, error) {
	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{config: config, logger: config.Logger.WithPrefix("simulator")}, nil
}

// Report is the outcome of a simulation run
type Report struct {
	Seed    int64                   `json:"seed"`
	Players int                     `json:"players"`
	Results []statistics.GameResult `json:"results"`
	Stats   *statistics.Statistics  `json:"stats"`
}

// Run plays every game and aggregates the results in game order, so a fixed
// seed gives the same report regardless of worker count.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	cfg := s.config
	results := make([]statistics.GameResult, cfg.Games)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := range cfg.Games {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := s.playGame(i)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := statistics.New()
	for i, result := range results {
		stats.Add(result, s.seats(i))
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	s.logger.Info("Simulation complete", "games", stats.Games, "stalled", stats.Stalled,
		"meanTurns", fmt.Sprintf("%.1f", stats.Mean()))
	return &Report{Seed: cfg.Seed, Players: cfg.Players, Results: results, Stats: stats}, nil
}

// seats returns the strategy at each seat for game i.
func (s *Simulator) seats(i int) []string {
	names := s.config.Strategies
	seats := make([]string, s.config.Players)
	for seat := range seats {
		seats[seat] = names[(seat+i)%len(names)]
	}
	return seats
}

func (s *Simulator) gameSeed(i int) int64 {
	return s.config.Seed + int64(i)
}

// playGame plays game i to completion or the turn limit.
func (s *Simulator) playGame(i int) (statistics.GameResult, error) {
	cfg := s.config
	seed := s.gameSeed(i)
	result := statistics.GameResult{Seed: seed, WinnerSeat: -1}

	session := game.NewSession(fmt.Sprintf("sim-%d", i), randutil.New(seed), game.WithRules(cfg.Rules))
	botRng := randutil.New(^seed)

	seats := s.seats(i)
	strategies := make(map[string]bot.Strategy, len(seats))
	names := make(map[string]string, len(seats))
	for seat, name := range seats {
		id := fmt.Sprintf("bot-%d", seat+1)
		strategy, err := bot.New(name, botRng, cfg.Logger)
		if err != nil {
			return result, err
		}
		if _, err := session.AddPlayer(id, fmt.Sprintf("%s-%d", name, seat+1)); err != nil {
			return result, err
		}
		strategies[id] = strategy
		names[id] = name
	}

	if _, err := session.StartGame(); err != nil {
		return result, fmt.Errorf("game %d (seed %d): start: %w", i, seed, err)
	}
	if err := session.VerifyCardConservation(); err != nil {
		return result, fmt.Errorf("game %d (seed %d): after deal: %w", i, seed, err)
	}

	for session.State() == game.StatePlaying {
		if result.Turns >= cfg.MaxTurns {
			result.Stalled = true
			result.Reason = ReasonStalled
			s.logger.Debug("Game stalled", "game", i, "seed", seed, "turns", result.Turns)
			return result, nil
		}

		current := session.CurrentPlayer()
		state, _ := session.PlayerState(current.ID)
		decision := strategies[current.ID].MakeDecision(state, cfg.Rules)

		if err := s.apply(session, current.ID, decision, &result); err != nil {
			return result, fmt.Errorf("game %d (seed %d) turn %d: %s %s: %w",
				i, seed, result.Turns, current.Name, decision, err)
		}
		result.Turns++

		if err := session.VerifyCardConservation(); err != nil {
			return result, fmt.Errorf("game %d (seed %d) turn %d: %w", i, seed, result.Turns, err)
		}
	}

	if w := session.Winner(); w != nil {
		result.Winner = names[w.ID]
		result.WinnerSeat = w.Seat
		result.Reason = winReason(session)
	}
	if l := session.Loser(); l != nil {
		result.Loser = names[l.ID]
	}
	return result, nil
}

func (s *Simulator) apply(session *game.Session, playerID string, d bot.Decision, result *statistics.GameResult) error {
	if d.CallBluff {
		outcome, err := session.CallBluff(playerID)
		if err != nil {
			return err
		}
		result.Challenges++
		if !outcome.Truthful {
			result.Caught++
		}
		result.MaxPile = max(result.MaxPile, outcome.PileSize)
		return nil
	}
	if len(d.CardIDs) == 0 {
		return errors.New("bot returned an empty move")
	}
	_, err := session.PlayCards(playerID, d.CardIDs, d.Rank)
	return err
}

// winReason reads the reason off the game_won event.
func winReason(session *game.Session) string {
	if a := session.LastAction(); a != nil && a.Type == game.EventGameWon {
		return a.Reason
	}
	return ""
}

// Summary renders a short human-readable report
func Summary(r *Report) string {
	stats := r.Stats
	var b strings.Builder
	fmt.Fprintf(&b, "Games: %d (%d finished, %d stalled), %d players, seed %d\n",
		stats.Games, stats.Finished, stats.Stalled, r.Players, r.Seed)
	fmt.Fprintf(&b, "Turns: mean %.1f, median %.1f, p95 %.1f\n",
		stats.Mean(), stats.Median(), stats.Percentile(0.95))
	fmt.Fprintf(&b, "Challenges: %d, caught %d (%.1f%%), largest pile %d\n",
		stats.Challenges, stats.Caught, stats.CatchRate()*100, stats.MaxPile)
	for _, name := range sortedKeys(stats.Strategies) {
		st := stats.Strategies[name]
		fmt.Fprintf(&b, "  %-10s seats %5d  wins %5d (%.1f%%)  lost to quads %d\n",
			name, st.Seats, st.Wins, st.WinRate()*100, st.Losses)
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
