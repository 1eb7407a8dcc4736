package domain

// Turn roles. Turns in a session alternate user/assistant.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultMaxTurns is the default per-session history bound: 20 turns,
// i.e. the 10 most recent exchanges.
const DefaultMaxTurns = 20

// ConversationTurn is one message in a session's history.
type ConversationTurn struct {
	// Role is RoleUser or RoleAssistant.
	Role string `json:"role"`

	// Text is the message content.
	Text string `json:"text"`
}
