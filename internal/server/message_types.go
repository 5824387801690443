package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
const (
	// Client to server messages
	MessageTypeSetName     MessageType = "set_name"
	MessageTypeListGames   MessageType = "list_games"
	MessageTypeCreateGame  MessageType = "create_game"
	MessageTypeJoinGame    MessageType = "join_game"
	MessageTypeLeaveGame   MessageType = "leave_game"
	MessageTypeToggleReady MessageType = "toggle_ready"
	MessageTypeStartGame   MessageType = "start_game"
	MessageTypePlayCards   MessageType = "play_cards"
	MessageTypeCallBluff   MessageType = "call_bluff"
	MessageTypeResetGame   MessageType = "reset_game"

	// Server to client messages
	MessageTypeWelcome       MessageType = "welcome"
	MessageTypeNameChanged   MessageType = "name_changed"
	MessageTypeGamesList     MessageType = "games_list"
	MessageTypeGameJoined    MessageType = "game_joined"
	MessageTypeGameLeft      MessageType = "game_left"
	MessageTypeLobbyUpdate   MessageType = "lobby_update"
	MessageTypeGameState     MessageType = "game_state"
	MessageTypeCardsPlayed   MessageType = "cards_played"
	MessageTypeBluffResolved MessageType = "bluff_resolved"
	MessageTypeGameEvent     MessageType = "game_event"
	MessageTypeServerMessage MessageType = "server_message"
	MessageTypeError         MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
