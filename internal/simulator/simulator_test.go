package simulator

import (
	"context"
	"testing"

	"github.com/lox/bluff/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunIsDeterministicAcrossWorkers(t *testing.T) {
	run := func(workers int) *Report {
		sim, err := New(Config{Games: 24, Players: 3, Seed: 99, Workers: workers})
		require.NoError(t, err)
		report, err := sim.Run(context.Background())
		require.NoError(t, err)
		return report
	}

	serial := run(1)
	parallel := run(4)
	assert.Equal(t, serial.Results, parallel.Results)
	assert.Equal(t, 24, serial.Stats.Games)
	require.NoError(t, serial.Stats.Validate())
}

func TestRunEveryStrategyMix(t *testing.T) {
	mixes := [][]string{
		{"honest"},
		{"cautious"},
		{"bluffer"},
		{"honest", "bluffer"},
		{"cautious", "bluffer", "honest"},
	}
	for _, mix := range mixes {
		for _, players := range []int{2, 5} {
			sim, err := New(Config{Games: 10, Players: players, Strategies: mix, Seed: 7, Workers: 2})
			require.NoError(t, err)

			report, err := sim.Run(context.Background())
			require.NoError(t, err, "mix %v with %d players", mix, players)

			for _, r := range report.Results {
				if r.Stalled {
					continue
				}
				assert.True(t, r.Winner != "" || r.Loser != "", "finished games have a winner or a loser: %+v", r)
			}
		}
	}
}

func TestImmediateWinRules(t *testing.T) {
	rules := game.DefaultRules()
	rules.WinMode = game.WinImmediate
	rules.AllowDangerousClaims = true

	sim, err := New(Config{Games: 10, Players: 4, Seed: 3, Rules: rules})
	require.NoError(t, err)
	report, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, report.Stats.Reasons, game.WinReasonAccepted)
	assert.Contains(t, Summary(report), "Games: 10")
}

func TestConfigValidation(t *testing.T) {
	_, err := New(Config{Games: 0})
	assert.ErrorContains(t, err, "games must be positive")

	_, err = New(Config{Games: 1, Players: 1})
	assert.ErrorContains(t, err, "at least 2 players")

	_, err = New(Config{Games: 1, Strategies: []string{"psychic"}})
	assert.ErrorContains(t, err, "unknown bot")
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim, err := New(Config{Games: 5})
	require.NoError(t, err)
	_, err = sim.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
