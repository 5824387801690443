package server

import (
	"testing"
	"time"

	"github.com/lox/bluff/internal/game"
	"github.com/lox/bluff/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable(id string, created time.Time) *Table {
	return NewTable(game.NewSession(id, randutil.New(1)), "host", created)
}

func TestGameStoreListOrder(t *testing.T) {
	store := NewGameStore()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	store.Add(newTable("c", base.Add(time.Minute)))
	store.Add(newTable("b", base))
	store.Add(newTable("a", base))

	var ids []string
	for _, table := range store.List() {
		ids = append(ids, table.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.Equal(t, 3, store.Len())
}

func TestGameStoreGetDelete(t *testing.T) {
	store := NewGameStore()
	store.Add(newTable("g1", time.Now()))

	table, ok := store.Get("g1")
	require.True(t, ok)
	assert.Equal(t, "g1", table.ID)

	removed, ok := store.Delete("g1")
	require.True(t, ok)
	assert.Same(t, table, removed)

	_, ok = store.Delete("g1")
	assert.False(t, ok)
	_, ok = store.Get("g1")
	assert.False(t, ok)
}

func TestTableSummary(t *testing.T) {
	created := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	table := newTable("g1", created)
	_, err := table.session.AddPlayer("p1", "Alice")
	require.NoError(t, err)

	assert.Equal(t, GameSummary{
		ID:          "g1",
		Host:        "host",
		PlayerCount: 1,
		MaxPlayers:  6,
		State:       game.StateWaiting,
		CreatedAt:   created,
	}, table.Summary(6))
}
