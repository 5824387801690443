package server

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/lox/bluff/internal/game"
)

// Table wraps one session. Its mutex is the session's single writer: every
// command and projection happens while holding it.
type Table struct {
	ID        string
	Host      string
	CreatedAt time.Time

	mu         sync.Mutex
	session    *game.Session
	finishedAt time.Time
	closed     bool
}

// NewTable wraps a session created by the caller
func NewTable(session *game.Session, host string, createdAt time.Time) *Table {
	return &Table{
		ID:        session.ID(),
		Host:      host,
		CreatedAt: createdAt,
		session:   session,
	}
}

// GameSummary holds lightweight metadata for lobby listings.
type GameSummary struct {
	ID          string     `json:"id"`
	Host        string     `json:"host"`
	PlayerCount int        `json:"playerCount"`
	MaxPlayers  int        `json:"maxPlayers"`
	State       game.State `json:"state"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Summary snapshots the table for listings
func (t *Table) Summary(maxPlayers int) GameSummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return GameSummary{
		ID:          t.ID,
		Host:        t.Host,
		PlayerCount: t.session.PlayerCount(),
		MaxPlayers:  maxPlayers,
		State:       t.session.State(),
		CreatedAt:   t.CreatedAt,
	}
}

// GameStore tracks the live tables. It is owned by the transport layer.
type GameStore struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

// NewGameStore constructs an empty store.
func NewGameStore() *GameStore {
	return &GameStore{tables: make(map[string]*Table)}
}

// Add registers a table, replacing any table with the same ID.
func (gs *GameStore) Add(t *Table) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.tables[t.ID] = t
}

// Get retrieves a table by ID.
func (gs *GameStore) Get(id string) (*Table, bool) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	t, ok := gs.tables[id]
	return t, ok
}

// Delete removes a table by ID and returns it.
func (gs *GameStore) Delete(id string) (*Table, bool) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	t, ok := gs.tables[id]
	if ok {
		delete(gs.tables, id)
	}
	return t, ok
}

// Len returns the number of tables.
func (gs *GameStore) Len() int {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return len(gs.tables)
}

// List returns the tables ordered by creation, oldest first.
func (gs *GameStore) List() []*Table {
	gs.mu.RLock()
	tables := make([]*Table, 0, len(gs.tables))
	for _, t := range gs.tables {
		tables = append(tables, t)
	}
	gs.mu.RUnlock()

	slices.SortFunc(tables, func(a, b *Table) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return tables
}

// Summaries returns a snapshot of every table. Callers must not hold a
// table lock.
func (gs *GameStore) Summaries(maxPlayers int) []GameSummary {
	tables := gs.List()
	summaries := make([]GameSummary, 0, len(tables))
	for _, t := range tables {
		summaries = append(summaries, t.Summary(maxPlayers))
	}
	return summaries
}
