package client

import (
	"encoding/json"
	"sync"

	"github.com/lox/bluff/internal/game"
	"github.com/lox/bluff/internal/server"
)

// Snapshot is what the client currently knows about itself and its game
type Snapshot struct {
	PlayerID string
	Name     string
	GameID   string
	Games    []server.GameSummary
	Lobby    *server.LobbyUpdateData
	Game     *game.PlayerState
}

// Tracker folds server messages into a Snapshot
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a tracker listening on c
func NewTracker(c *Client) *Tracker {
	t := &Tracker{}
	c.AddEventHandler(server.MessageTypeWelcome, t.Apply)
	c.AddEventHandler(server.MessageTypeNameChanged, t.Apply)
	c.AddEventHandler(server.MessageTypeGamesList, t.Apply)
	c.AddEventHandler(server.MessageTypeGameJoined, t.Apply)
	c.AddEventHandler(server.MessageTypeGameLeft, t.Apply)
	c.AddEventHandler(server.MessageTypeLobbyUpdate, t.Apply)
	c.AddEventHandler(server.MessageTypeGameState, t.Apply)
	return t
}

// Snapshot returns a copy of the current view
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap
}

// Apply updates the view from one message. Unknown types are ignored.
func (t *Tracker) Apply(msg *server.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch msg.Type {
	case server.MessageTypeWelcome:
		var data server.WelcomeData
		if json.Unmarshal(msg.Data, &data) == nil {
			t.snap.PlayerID = data.PlayerID
			t.snap.Name = data.Name
		}
	case server.MessageTypeNameChanged:
		var data server.NameChangedData
		if json.Unmarshal(msg.Data, &data) == nil {
			t.snap.Name = data.Name
		}
	case server.MessageTypeGamesList:
		var data server.GamesListData
		if json.Unmarshal(msg.Data, &data) == nil {
			t.snap.Games = data.Games
		}
	case server.MessageTypeGameJoined:
		var data server.GameJoinedData
		if json.Unmarshal(msg.Data, &data) == nil {
			t.snap.GameID = data.GameID
			t.snap.Lobby = nil
			t.snap.Game = nil
		}
	case server.MessageTypeGameLeft:
		t.snap.GameID = ""
		t.snap.Lobby = nil
		t.snap.Game = nil
	case server.MessageTypeLobbyUpdate:
		var data server.LobbyUpdateData
		if json.Unmarshal(msg.Data, &data) == nil {
			t.snap.Lobby = &data
		}
	case server.MessageTypeGameState:
		var data game.PlayerState
		if json.Unmarshal(msg.Data, &data) == nil {
			t.snap.Game = &data
		}
	}
}
