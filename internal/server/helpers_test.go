package server

import (
	"encoding/json"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/bluff/internal/game"
	"github.com/stretchr/testify/require"
)

// recorder is a Notifier that keeps every message per recipient.
type recorder struct {
	mu        sync.Mutex
	sent      map[string][]*Message
	broadcast []*Message
}

func newRecorder() *recorder {
	return &recorder{sent: make(map[string][]*Message)}
}

func (r *recorder) SendToPlayer(playerID string, msg *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent[playerID] = append(r.sent[playerID], msg)
	return nil
}

func (r *recorder) Broadcast(msg *Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcast = append(r.broadcast, msg)
}

func (r *recorder) messages(playerID string, t MessageType) []*Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Message
	for _, m := range r.sent[playerID] {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

func (r *recorder) last(tb testing.TB, playerID string, t MessageType) *Message {
	tb.Helper()
	msgs := r.messages(playerID, t)
	require.NotEmpty(tb, msgs, "no %s message for %s", t, playerID)
	return msgs[len(msgs)-1]
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = make(map[string][]*Message)
	r.broadcast = nil
}

func decodeData[T any](tb testing.TB, msg *Message) T {
	tb.Helper()
	var v T
	require.NoError(tb, json.Unmarshal(msg.Data, &v))
	return v
}

func (r *recorder) state(tb testing.TB, playerID string) game.PlayerState {
	tb.Helper()
	return decodeData[game.PlayerState](tb, r.last(tb, playerID, MessageTypeGameState))
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestService(t *testing.T, opts ...ServiceOption) (*GameService, *recorder) {
	t.Helper()
	rec := newRecorder()
	gs := NewGameService(rec, testLogger(), opts...)
	return gs, rec
}
