// Package client is the websocket client behind the terminal line client
// and remote bots.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/bluff/internal/deck"
	"github.com/lox/bluff/internal/server"
)

// ErrNotConnected is returned when sending without a live connection
var ErrNotConnected = errors.New("not connected")

// EventHandler handles one incoming message
type EventHandler func(*server.Message)

// Client is a websocket connection to a bluff server
type Client struct {
	serverURL string
	conn      *websocket.Conn
	send      chan *server.Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	connected bool
	closeOnce sync.Once

	handlers map[server.MessageType][]EventHandler
}

// NewClient creates a new client for serverURL (http, https, ws or wss)
func NewClient(serverURL string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		serverURL: serverURL,
		send:      make(chan *server.Message, 256),
		logger:    logger.WithPrefix("client"),
		ctx:       ctx,
		cancel:    cancel,
		handlers:  make(map[server.MessageType][]EventHandler),
	}
}

// WebSocketURL converts a server URL to its /ws endpoint
func WebSocketURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid server URL %q: unsupported scheme %q", serverURL, u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String(), nil
}

// Connect dials the server and starts the pumps
func (c *Client) Connect(ctx context.Context) error {
	wsURL, err := WebSocketURL(c.serverURL)
	if err != nil {
		return err
	}
	c.logger.Info("Connecting to server", "url", wsURL)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()

	c.logger.Info("Connected to server")
	return nil
}

// Done is closed once the client disconnects
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Disconnect closes the connection
func (c *Client) Disconnect() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.conn != nil {
			_ = c.conn.Close()
		}
		c.connected = false
		c.logger.Info("Disconnected from server")
	})
	return nil
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SendMessage queues a message for the server
func (c *Client) SendMessage(msg *server.Message) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrNotConnected
	default:
		return fmt.Errorf("send buffer full")
	}
}

func (c *Client) readPump() {
	defer func() { _ = c.Disconnect() }()

	for {
		var msg server.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		c.logger.Debug("Received message", "type", msg.Type)
		c.dispatch(&msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.Disconnect()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return
		}
	}
}

// dispatch runs handlers in arrival order on the read goroutine.
func (c *Client) dispatch(msg *server.Message) {
	c.mu.RLock()
	handlers := append([]EventHandler(nil), c.handlers[msg.Type]...)
	c.mu.RUnlock()

	if len(handlers) == 0 {
		c.logger.Debug("No handler for message type", "type", msg.Type)
	}
	for _, handler := range handlers {
		handler(msg)
	}
}

// AddEventHandler adds a handler for a message type
func (c *Client) AddEventHandler(messageType server.MessageType, handler EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[messageType] = append(c.handlers[messageType], handler)
}

// WaitForMessage waits for the next message of a type
func (c *Client) WaitForMessage(ctx context.Context, messageType server.MessageType) (*server.Message, error) {
	ch := make(chan *server.Message, 1)
	c.AddEventHandler(messageType, func(msg *server.Message) {
		select {
		case ch <- msg:
		default:
		}
	})

	select {
	case msg := <-ch:
		return msg, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for %s: %w", messageType, ctx.Err())
	case <-c.ctx.Done():
		return nil, ErrNotConnected
	}
}

func (c *Client) command(t server.MessageType, data any) error {
	msg, err := server.NewMessage(t, data)
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// SetName changes the display name
func (c *Client) SetName(name string) error {
	return c.command(server.MessageTypeSetName, server.SetNameData{Name: name})
}

// ListGames requests the lobby list
func (c *Client) ListGames() error {
	return c.command(server.MessageTypeListGames, nil)
}

// CreateGame opens and joins a new game
func (c *Client) CreateGame() error {
	return c.command(server.MessageTypeCreateGame, nil)
}

// JoinGame joins a waiting game
func (c *Client) JoinGame(gameID string) error {
	return c.command(server.MessageTypeJoinGame, server.JoinGameData{GameID: gameID})
}

// LeaveGame leaves the current game
func (c *Client) LeaveGame() error {
	return c.command(server.MessageTypeLeaveGame, nil)
}

// ToggleReady flips the ready flag
func (c *Client) ToggleReady() error {
	return c.command(server.MessageTypeToggleReady, nil)
}

// StartGame starts the current game
func (c *Client) StartGame() error {
	return c.command(server.MessageTypeStartGame, nil)
}

// PlayCards plays cards claiming rank
func (c *Client) PlayCards(cardIDs []string, rank deck.Rank) error {
	return c.command(server.MessageTypePlayCards, server.PlayCardsData{CardIDs: cardIDs, Rank: rank.String()})
}

// CallBluff challenges the last play
func (c *Client) CallBluff() error {
	return c.command(server.MessageTypeCallBluff, nil)
}

// ResetGame returns a finished game to the lobby
func (c *Client) ResetGame() error {
	return c.command(server.MessageTypeResetGame, nil)
}
