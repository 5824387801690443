// Package statistics aggregates the outcomes of simulated games.
package statistics

import (
	"fmt"
	"math"
	"sort"
)

// GameResult is the outcome of one simulated game
type GameResult struct {
	Seed int64 `json:"seed"`
	// Winner and Loser are strategy names; WinnerSeat is -1 without a winner.
	Winner     string `json:"winner,omitempty"`
	WinnerSeat int    `json:"winnerSeat"`
	Loser      string `json:"loser,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Turns      int    `json:"turns"`
	Challenges int    `json:"challenges"`
	// Caught counts challenges that exposed a lie.
	Caught  int `json:"caught"`
	MaxPile int `json:"maxPile"`
	// Stalled games hit the turn limit.
	Stalled bool `json:"stalled,omitempty"`
}

// StrategyStats tracks results for one strategy
type StrategyStats struct {
	Seats  int `json:"seats"`
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// WinRate is wins per seat played
func (s StrategyStats) WinRate() float64 {
	if s.Seats == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Seats)
}

// Statistics tracks simulation results. Turn counts feed the distribution
// helpers.
type Statistics struct {
	Games    int       `json:"games"`
	SumTurns float64   `json:"-"`
	SumTurn2 float64   `json:"-"` // sum of squares for variance
	Turns    []float64 `json:"-"`

	Finished   int `json:"finished"`
	Stalled    int `json:"stalled"`
	Challenges int `json:"challenges"`
	Caught     int `json:"caught"`
	MaxPile    int `json:"maxPile"`

	Reasons    map[string]int            `json:"reasons"`
	Strategies map[string]*StrategyStats `json:"strategies"`
	SeatWins   map[int]int               `json:"seatWins"`
}

// New returns empty statistics
func New() *Statistics {
	return &Statistics{
		Reasons:    make(map[string]int),
		Strategies: make(map[string]*StrategyStats),
		SeatWins:   make(map[int]int),
	}
}

// Add incorporates a game result. seats lists the strategy at each seat.
func (s *Statistics) Add(result GameResult, seats []string) {
	turns := float64(result.Turns)
	s.Games++
	s.SumTurns += turns
	s.SumTurn2 += turns * turns
	s.Turns = append(s.Turns, turns)

	if result.Stalled {
		s.Stalled++
	} else {
		s.Finished++
	}
	if result.Reason != "" {
		s.Reasons[result.Reason]++
	}
	s.Challenges += result.Challenges
	s.Caught += result.Caught
	s.MaxPile = max(s.MaxPile, result.MaxPile)

	for _, name := range seats {
		s.strategy(name).Seats++
	}
	if result.Winner != "" {
		s.strategy(result.Winner).Wins++
		s.SeatWins[result.WinnerSeat]++
	}
	if result.Loser != "" {
		s.strategy(result.Loser).Losses++
	}
}

func (s *Statistics) strategy(name string) *StrategyStats {
	st, ok := s.Strategies[name]
	if !ok {
		st = &StrategyStats{}
		s.Strategies[name] = st
	}
	return st
}

// CatchRate is the share of challenges that exposed a bluff
func (s *Statistics) CatchRate() float64 {
	if s.Challenges == 0 {
		return 0
	}
	return float64(s.Caught) / float64(s.Challenges)
}

// Mean returns the mean game length in turns
func (s *Statistics) Mean() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.SumTurns / float64(s.Games)
}

// Variance returns the sample variance of game length
func (s *Statistics) Variance() float64 {
	if s.Games < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumTurn2 - float64(s.Games)*mean*mean) / float64(s.Games-1)
}

// StdDev returns the sample standard deviation of game length
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// Median returns the median game length
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the game length at p (0.0 to 1.0), interpolating
// between neighbours.
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Turns) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Turns))
	copy(sorted, s.Turns)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Validate checks the counters agree with each other
func (s *Statistics) Validate() error {
	if s.Games <= 0 {
		return fmt.Errorf("invalid games count: %d", s.Games)
	}
	if len(s.Turns) != s.Games {
		return fmt.Errorf("turns length (%d) does not match games count (%d)", len(s.Turns), s.Games)
	}
	if s.Finished+s.Stalled != s.Games {
		return fmt.Errorf("finished (%d) + stalled (%d) does not match games (%d)", s.Finished, s.Stalled, s.Games)
	}
	if s.Caught > s.Challenges {
		return fmt.Errorf("caught bluffs (%d) exceed challenges (%d)", s.Caught, s.Challenges)
	}
	wins := 0
	for _, st := range s.Strategies {
		wins += st.Wins
	}
	if wins > s.Finished {
		return fmt.Errorf("wins (%d) exceed finished games (%d)", wins, s.Finished)
	}
	return nil
}
