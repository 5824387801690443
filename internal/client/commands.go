package client

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/bluff/internal/deck"
)

// Command kinds accepted by the line client
const (
	CmdName   = "name"
	CmdList   = "list"
	CmdCreate = "create"
	CmdJoin   = "join"
	CmdLeave  = "leave"
	CmdReady  = "ready"
	CmdStart  = "start"
	CmdPlay   = "play"
	CmdBluff  = "bluff"
	CmdReset  = "reset"
	CmdHand   = "hand"
	CmdHelp   = "help"
	CmdQuit   = "quit"
)

// ErrUsage wraps malformed commands
var ErrUsage = errors.New("usage")

// Help lists the commands
const Help = `Commands:
  /name <name>               change your name
  /list                      list games
  /create                    create a game
  /join <id>                 join a game
  /leave                     leave your game
  /ready                     toggle ready
  /start                     start the game
  /play <cards...> as <rank> play cards by hand position (1 3) or id (14_hearts, Kh)
  /bluff                     call bluff on the last play
  /reset                     return a finished game to the lobby
  /hand                      show the game again
  /quit                      exit`

// Command is a parsed line
type Command struct {
	Kind  string
	Arg   string
	Cards []string // selectors, resolved against the hand by ResolveCards
	Rank  deck.Rank
}

// ParseCommand parses one input line
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty command", ErrUsage)
	}
	kind := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	args := fields[1:]

	switch kind {
	case CmdList, CmdCreate, CmdLeave, CmdReady, CmdStart, CmdBluff, CmdReset, CmdHand, CmdHelp, CmdQuit:
		return Command{Kind: kind}, nil
	case "exit":
		return Command{Kind: CmdQuit}, nil
	case "call":
		return Command{Kind: CmdBluff}, nil
	case CmdName:
		if len(args) == 0 {
			return Command{}, fmt.Errorf("%w: /name <name>", ErrUsage)
		}
		return Command{Kind: kind, Arg: strings.Join(args, " ")}, nil
	case CmdJoin:
		if len(args) != 1 {
			return Command{}, fmt.Errorf("%w: /join <id>", ErrUsage)
		}
		return Command{Kind: kind, Arg: args[0]}, nil
	case CmdPlay:
		return parsePlay(args)
	}
	return Command{}, fmt.Errorf("%w: unknown command %q, try /help", ErrUsage, fields[0])
}

func parsePlay(args []string) (Command, error) {
	usage := fmt.Errorf("%w: /play <cards...> as <rank>", ErrUsage)
	as := -1
	for i, a := range args {
		if strings.EqualFold(a, "as") {
			as = i
		}
	}
	if as < 1 || as != len(args)-2 {
		return Command{}, usage
	}
	rank, err := deck.ParseRank(args[as+1])
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdPlay, Cards: args[:as], Rank: rank}, nil
}

// ResolveCards turns selectors into card ids. A selector is a 1-based hand
// position, a card id like "14_hearts", or a rank and suit initial like "Ah"
// or "10s".
func ResolveCards(selectors []string, hand []deck.Card) ([]string, error) {
	ids := make([]string, 0, len(selectors))
	for _, sel := range selectors {
		if n, err := strconv.Atoi(sel); err == nil {
			if n < 1 || n > len(hand) {
				return nil, fmt.Errorf("no card at position %d", n)
			}
			ids = append(ids, hand[n-1].ID())
			continue
		}
		if c, err := deck.ParseCardID(sel); err == nil {
			ids = append(ids, c.ID())
			continue
		}
		c, err := parseShortCard(sel)
		if err != nil {
			return nil, err
		}
		ids = append(ids, c.ID())
	}
	return ids, nil
}

func parseShortCard(s string) (deck.Card, error) {
	if len(s) < 2 {
		return deck.Card{}, fmt.Errorf("%w: %q", deck.ErrInvalidCard, s)
	}
	rank, err := deck.ParseRank(s[:len(s)-1])
	if err != nil {
		return deck.Card{}, fmt.Errorf("%w: %q", deck.ErrInvalidCard, s)
	}
	suit, err := deck.ParseSuit(s[len(s)-1:])
	if err != nil {
		return deck.Card{}, fmt.Errorf("%w: %q", deck.ErrInvalidCard, s)
	}
	return deck.NewCard(suit, rank), nil
}
