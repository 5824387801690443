package client

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/bluff/internal/deck"
	"github.com/lox/bluff/internal/game"
	"github.com/lox/bluff/internal/server"
	"github.com/muesli/termenv"
)

var (
	redCardStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true)
	blackCardStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0E0E0")).Bold(true)
	headerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	turnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444")).Bold(true)
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B"))
	warningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C"))
)

// DisableColor renders everything as plain text
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// RenderCard renders a card like "A♥" in its suit colour
func RenderCard(c deck.Card) string {
	if c.IsRed() {
		return redCardStyle.Render(c.String())
	}
	return blackCardStyle.Render(c.String())
}

// RenderHand numbers the cards so they can be picked by index
func RenderHand(hand []deck.Card) string {
	if len(hand) == 0 {
		return dimStyle.Render("(no cards)")
	}
	parts := make([]string, len(hand))
	for i, c := range hand {
		parts[i] = fmt.Sprintf("%s %s", dimStyle.Render(fmt.Sprintf("%d:", i+1)), RenderCard(c))
	}
	return strings.Join(parts, "  ")
}

// RenderGames renders the lobby list
func RenderGames(games []server.GameSummary) string {
	if len(games) == 0 {
		return dimStyle.Render("No games. Use /create to start one.")
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("Games"))
	for _, g := range games {
		fmt.Fprintf(&b, "\n  %s  host %s  %d/%d players  %s", g.ID, g.Host, g.PlayerCount, g.MaxPlayers, g.State)
	}
	return b.String()
}

// RenderLobby renders who is seated and ready
func RenderLobby(lobby *server.LobbyUpdateData) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Lobby " + lobby.GameID))
	for _, p := range lobby.Players {
		mark := dimStyle.Render("waiting")
		if p.Ready {
			mark = successStyle.Render("ready")
		}
		fmt.Fprintf(&b, "\n  %s  %s", p.Name, mark)
	}
	return b.String()
}

// RenderState renders a personalized game view
func RenderState(st *game.PlayerState) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Game %s (%s)", st.GameID, st.State)))

	for i, p := range st.Players {
		line := fmt.Sprintf("%s: %d cards", p.Name, p.CardCount)
		if st.State == game.StatePlaying && i == st.CurrentPlayerIndex {
			line = turnStyle.Render("▶ " + line)
		} else {
			line = "  " + line
		}
		b.WriteString("\n  " + line)
	}

	fmt.Fprintf(&b, "\n  Pile: %d cards", st.CenterPileCount)
	if c := st.LastClaim; c != nil {
		fmt.Fprintf(&b, "  Claim: %d %s by %s", c.Count, c.Rank.Plural(), c.PlayerName)
	}
	if st.PendingWinner != "" {
		b.WriteString("\n  " + warningStyle.Render(st.PendingWinner+" is out of cards: call the bluff or the win stands"))
	}
	switch {
	case st.Winner != "":
		b.WriteString("\n  " + successStyle.Render(st.Winner+" wins!"))
	case st.Loser != "":
		b.WriteString("\n  " + errorStyle.Render(st.Loser+" loses!"))
	}

	b.WriteString("\n  Hand: " + RenderHand(st.Hand))
	if st.IsCurrentPlayer {
		prompt := "Your turn: /play <cards> as <rank>"
		if st.CanCallBluff {
			prompt += " or /bluff"
		}
		b.WriteString("\n  " + turnStyle.Render(prompt))
	}
	return b.String()
}

// RenderEvent renders a game event line
func RenderEvent(ev game.Event) string {
	switch ev.Type {
	case game.EventBluffCaught, game.EventPlayerLostAces:
		return errorStyle.Render(ev.Message)
	case game.EventGameWon, game.EventChallengeFailed:
		return successStyle.Render(ev.Message)
	case game.EventPendingWin, game.EventPendingWinCleared:
		return warningStyle.Render(ev.Message)
	}
	return ev.Message
}

// RenderServerMessage renders a server notice in its level colour
func RenderServerMessage(m server.ServerMessageData) string {
	switch m.Level {
	case server.LevelSuccess:
		return successStyle.Render(m.Text)
	case server.LevelWarning:
		return warningStyle.Render(m.Text)
	}
	return m.Text
}

// RenderError renders an error message
func RenderError(e server.ErrorData) string {
	return errorStyle.Render(fmt.Sprintf("Error (%s): %s", e.Code, e.Message))
}
