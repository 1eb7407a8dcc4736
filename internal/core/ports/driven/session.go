package driven

import "github.com/bayani-labs/lakbay/internal/core/domain"

// SessionStore owns the per-session conversation history.
// Session IDs are opaque caller-supplied tokens; no validation is
// performed here.
//
// History is bounded: once a session exceeds its turn limit the oldest
// turns are dropped first, in user/assistant pairs, so the history always
// starts with a user turn.
//
// Concurrent appends to the same session are serialized; operations on
// different sessions must not contend.
type SessionStore interface {
	// Context returns the session's turns in order, oldest first.
	// An unknown session yields an empty slice.
	Context(sessionID string) []domain.ConversationTurn

	// AppendExchange appends one user turn and one assistant turn
	// atomically, then enforces the bound.
	AppendExchange(sessionID string, userText, assistantText string)

	// Len returns the current number of turns for the session.
	Len(sessionID string) int

	// Close stops background eviction.
	Close() error
}
