package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lox/bluff/internal/bot"
	"github.com/lox/bluff/internal/deck"
	"github.com/lox/bluff/internal/game"
	"github.com/lox/bluff/internal/server"
)

// REPL is the interactive line client. It prints server messages as they
// arrive and turns typed commands into requests.
type REPL struct {
	client  *Client
	tracker *Tracker
	logger  *log.Logger

	outMu sync.Mutex
	out   io.Writer

	strategy bot.Strategy
	rules    game.Rules
}

// REPLOption configures a REPL
type REPLOption func(*REPL)

// WithAutoplay lets strategy take every turn
func WithAutoplay(strategy bot.Strategy, rules game.Rules) REPLOption {
	return func(r *REPL) {
		r.strategy = strategy
		r.rules = rules
	}
}

// NewREPL wires a REPL to c. Call before Connect so no message is missed.
func NewREPL(c *Client, out io.Writer, logger *log.Logger, opts ...REPLOption) *REPL {
	r := &REPL{
		client:  c,
		tracker: NewTracker(c),
		logger:  logger.WithPrefix("repl"),
		out:     out,
		rules:   game.DefaultRules(),
	}
	for _, opt := range opts {
		opt(r)
	}

	c.AddEventHandler(server.MessageTypeWelcome, r.onWelcome)
	c.AddEventHandler(server.MessageTypeNameChanged, r.onNameChanged)
	c.AddEventHandler(server.MessageTypeGamesList, r.onGamesList)
	c.AddEventHandler(server.MessageTypeGameJoined, r.onGameJoined)
	c.AddEventHandler(server.MessageTypeGameLeft, r.onGameLeft)
	c.AddEventHandler(server.MessageTypeLobbyUpdate, r.onLobby)
	c.AddEventHandler(server.MessageTypeGameState, r.onGameState)
	c.AddEventHandler(server.MessageTypeGameEvent, r.onGameEvent)
	c.AddEventHandler(server.MessageTypeBluffResolved, r.onBluffResolved)
	c.AddEventHandler(server.MessageTypeServerMessage, r.onServerMessage)
	c.AddEventHandler(server.MessageTypeError, r.onError)
	return r
}

// Tracker exposes the client's current view
func (r *REPL) Tracker() *Tracker {
	return r.tracker
}

// Run reads commands from in until /quit, EOF, disconnect or ctx is done.
func (r *REPL) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	r.println(dimStyle.Render("Type /help for commands."))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.client.Done():
			return ErrNotConnected
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			quit, err := r.Execute(line)
			if err != nil {
				r.println(errorStyle.Render(err.Error()))
			}
			if quit {
				return nil
			}
		}
	}
}

// Execute runs one command line
func (r *REPL) Execute(line string) (quit bool, err error) {
	cmd, err := ParseCommand(line)
	if err != nil {
		return false, err
	}

	c := r.client
	switch cmd.Kind {
	case CmdQuit:
		return true, nil
	case CmdHelp:
		r.println(Help)
		return false, nil
	case CmdHand:
		snap := r.tracker.Snapshot()
		if snap.Game == nil {
			return false, fmt.Errorf("not in a game")
		}
		r.println(RenderState(snap.Game))
		return false, nil
	case CmdName:
		return false, c.SetName(cmd.Arg)
	case CmdList:
		return false, c.ListGames()
	case CmdCreate:
		return false, c.CreateGame()
	case CmdJoin:
		return false, c.JoinGame(cmd.Arg)
	case CmdLeave:
		return false, c.LeaveGame()
	case CmdReady:
		return false, c.ToggleReady()
	case CmdStart:
		return false, c.StartGame()
	case CmdBluff:
		return false, c.CallBluff()
	case CmdReset:
		return false, c.ResetGame()
	case CmdPlay:
		var hand []deck.Card
		if snap := r.tracker.Snapshot(); snap.Game != nil {
			hand = snap.Game.Hand
		}
		ids, err := ResolveCards(cmd.Cards, hand)
		if err != nil {
			return false, err
		}
		return false, c.PlayCards(ids, cmd.Rank)
	}
	return false, fmt.Errorf("unhandled command %q", cmd.Kind)
}

func (r *REPL) println(s string) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	_, _ = fmt.Fprintln(r.out, s)
}

func decode[T any](r *REPL, msg *server.Message) (T, bool) {
	var v T
	if err := json.Unmarshal(msg.Data, &v); err != nil {
		r.logger.Warn("Failed to decode message", "type", msg.Type, "error", err)
		return v, false
	}
	return v, true
}

func (r *REPL) onWelcome(msg *server.Message) {
	if data, ok := decode[server.WelcomeData](r, msg); ok {
		r.println(successStyle.Render("Connected as " + data.Name))
	}
}

func (r *REPL) onNameChanged(msg *server.Message) {
	if data, ok := decode[server.NameChangedData](r, msg); ok {
		r.println("You are now " + data.Name)
	}
}

func (r *REPL) onGamesList(msg *server.Message) {
	// the list is rebroadcast on every change; only show it from the lobby
	if r.tracker.Snapshot().GameID != "" {
		return
	}
	if data, ok := decode[server.GamesListData](r, msg); ok {
		r.println(RenderGames(data.Games))
	}
}

func (r *REPL) onGameJoined(msg *server.Message) {
	if data, ok := decode[server.GameJoinedData](r, msg); ok {
		r.println(successStyle.Render(fmt.Sprintf("Joined game %s hosted by %s. /ready when set.", data.GameID, data.Host)))
	}
}

func (r *REPL) onGameLeft(msg *server.Message) {
	if data, ok := decode[server.GameLeftData](r, msg); ok {
		text := "Left game " + data.GameID
		if data.Reason != "" {
			text += " (" + data.Reason + ")"
		}
		r.println(warningStyle.Render(text))
	}
}

func (r *REPL) onLobby(msg *server.Message) {
	data, ok := decode[server.LobbyUpdateData](r, msg)
	if !ok {
		return
	}
	if st := r.tracker.Snapshot().Game; st != nil && st.State == game.StatePlaying {
		return
	}
	r.println(RenderLobby(&data))
}

func (r *REPL) onGameState(msg *server.Message) {
	st, ok := decode[game.PlayerState](r, msg)
	if !ok || st.State == game.StateWaiting {
		return
	}
	r.println(RenderState(&st))
	r.autoplay(st)
}

func (r *REPL) onGameEvent(msg *server.Message) {
	if ev, ok := decode[game.Event](r, msg); ok {
		r.println(RenderEvent(ev))
	}
}

func (r *REPL) onBluffResolved(msg *server.Message) {
	res, ok := decode[game.ChallengeOutcome](r, msg)
	if !ok {
		return
	}
	cards := make([]string, len(res.Revealed))
	for i, c := range res.Revealed {
		cards[i] = RenderCard(c)
	}
	r.println(fmt.Sprintf("%s called %s's claim of %s: %s", res.Caller, res.Claimant,
		res.ClaimedRank.Plural(), strings.Join(cards, " ")))
}

func (r *REPL) onServerMessage(msg *server.Message) {
	if data, ok := decode[server.ServerMessageData](r, msg); ok {
		r.println(RenderServerMessage(data))
	}
}

func (r *REPL) onError(msg *server.Message) {
	if data, ok := decode[server.ErrorData](r, msg); ok {
		r.println(RenderError(data))
	}
}

// autoplay answers our turn with the configured strategy.
func (r *REPL) autoplay(st game.PlayerState) {
	if r.strategy == nil || !st.IsCurrentPlayer || st.State != game.StatePlaying {
		return
	}
	d := r.strategy.MakeDecision(st, r.rules)
	r.println(dimStyle.Render(fmt.Sprintf("bot: %s (%s)", d, d.Reasoning)))

	var err error
	switch {
	case d.CallBluff:
		err = r.client.CallBluff()
	case len(d.CardIDs) > 0:
		err = r.client.PlayCards(d.CardIDs, d.Rank)
	default:
		return
	}
	if err != nil {
		r.logger.Warn("Autoplay failed", "error", err)
	}
}
