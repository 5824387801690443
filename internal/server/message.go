package server

import (
	"encoding/json"
	"time"

	"github.com/lox/bluff/internal/deck"
	"github.com/lox/bluff/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	return NewMessageAt(time.Now(), messageType, data)
}

// NewMessageAt creates a new message stamped with ts
func NewMessageAt(ts time.Time, messageType MessageType, data any) (*Message, error) {
	msg := &Message{Type: messageType, Timestamp: ts}
	if data == nil {
		return msg, nil
	}
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	msg.Data = dataBytes
	return msg, nil
}

// Client → Server Messages

type SetNameData struct {
	Name string `json:"name"`
}

type JoinGameData struct {
	GameID string `json:"gameId"`
}

type PlayCardsData struct {
	CardIDs []string `json:"cardIds"`
	Rank    string   `json:"rank"`
}

// Server → Client Messages

type WelcomeData struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type NameChangedData struct {
	Name string `json:"name"`
}

type GamesListData struct {
	Games []GameSummary `json:"games"`
}

type GameJoinedData struct {
	GameID string `json:"gameId"`
	Host   string `json:"host"`
}

type GameLeftData struct {
	GameID string `json:"gameId"`
	Reason string `json:"reason,omitempty"`
}

type LobbyUpdateData struct {
	GameID   string               `json:"gameId"`
	Players  []game.PlayerSummary `json:"players"`
	AllReady bool                 `json:"allReady"`
}

type CardsPlayedData struct {
	PlayerID     string    `json:"playerId"`
	Player       string    `json:"player"`
	Count        int       `json:"count"`
	Rank         deck.Rank `json:"rank"`
	TotalClaimed int       `json:"totalClaimed"`
}

// Levels for ServerMessageData
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarning = "warning"
)

type ServerMessageData struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
