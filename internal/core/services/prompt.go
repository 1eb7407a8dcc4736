package services

import (
	"strings"

	"github.com/bayani-labs/lakbay/internal/core/domain"
	"github.com/bayani-labs/lakbay/internal/core/ports/driven"
)

// defaultPersona is the persona/style preamble used when no PromptStore
// override is configured.
const defaultPersona = `You are a friendly, conversational expert on travel in the Philippines. Share your knowledge naturally and personally, as if talking to a friend planning a trip.

When you answer:
- Speak in a warm, professional and conversational tone.
- Avoid phrases like "the available information indicates" or "according to the data".
- Mention prices in euros and name specific locations as if you know them.
- For lists (hotels, resorts, beaches), group by category, include prices and ratings, and separate entries with line breaks.
- Start with a friendly introduction and end with a personal recommendation.
- Ground every claim in the information provided; do not invent details.`

// PromptBuilder composes the grounding prompt sent to the generation
// capability. Composition is a pure function of its inputs: the same
// persona, history, chunks and message always produce the same prompt.
type PromptBuilder struct {
	persona string
}

// NewPromptBuilder creates a prompt builder. If store is non-nil and holds
// a persona prompt, it overrides the built-in default.
func NewPromptBuilder(store driven.PromptStore) *PromptBuilder {
	persona := defaultPersona
	if store != nil {
		if p, err := store.Load(driven.PromptPersona); err == nil && strings.TrimSpace(p) != "" {
			persona = strings.TrimSpace(p)
		}
	}
	return &PromptBuilder{persona: persona}
}

// Persona returns the active persona preamble.
func (b *PromptBuilder) Persona() string {
	return b.persona
}

// Build produces the grounding prompt from the retrieved chunks, the
// session's prior turns and the user's message.
func (b *PromptBuilder) Build(
	history []domain.ConversationTurn,
	results []domain.SearchResult,
	message string,
) string {
	var sb strings.Builder

	sb.WriteString(b.persona)
	sb.WriteString("\n\nAvailable information:\n")
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(r.Chunk.Text)
	}

	if len(history) > 0 {
		sb.WriteString("\n\nConversation so far:\n")
		for _, turn := range history {
			switch turn.Role {
			case domain.RoleAssistant:
				sb.WriteString("Assistant: ")
			default:
				sb.WriteString("User: ")
			}
			sb.WriteString(turn.Text)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\nUser question: ")
	sb.WriteString(message)
	sb.WriteString("\n\nAnswer naturally and conversationally, using line breaks and lists to keep the reply readable.")

	return sb.String()
}
