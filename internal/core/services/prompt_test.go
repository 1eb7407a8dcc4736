package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayani-labs/lakbay/internal/core/domain"
)

// stubPromptStore implements driven.PromptStore for testing.
type stubPromptStore struct {
	prompts map[string]string
	loadErr error
}

func (s *stubPromptStore) Load(name string) (string, error) {
	if s.loadErr != nil {
		return "", s.loadErr
	}
	return s.prompts[name], nil
}

func TestPromptBuilderDefaultPersona(t *testing.T) {
	b := NewPromptBuilder(nil)
	assert.Equal(t, defaultPersona, b.Persona())
}

func TestPromptBuilderPersonaOverride(t *testing.T) {
	store := &stubPromptStore{prompts: map[string]string{"persona": "You are a pirate guide."}}
	b := NewPromptBuilder(store)
	assert.Equal(t, "You are a pirate guide.", b.Persona())
}

func TestPromptBuilderStoreErrorFallsBack(t *testing.T) {
	store := &stubPromptStore{loadErr: errors.New("unreadable")}
	b := NewPromptBuilder(store)
	assert.Equal(t, defaultPersona, b.Persona())
}

func TestBuildContainsAllParts(t *testing.T) {
	b := NewPromptBuilder(nil)

	history := []domain.ConversationTurn{
		{Role: domain.RoleUser, Text: "Where should I dive?"},
		{Role: domain.RoleAssistant, Text: "Coron has the best wrecks."},
	}
	results := []domain.SearchResult{
		{Chunk: domain.Chunk{Text: "Coron\nWreck diving on Japanese ships."}},
		{Chunk: domain.Chunk{Text: "El Nido\nLagoons and limestone cliffs."}},
	}

	prompt := b.Build(history, results, "How do I get there?")

	assert.Contains(t, prompt, b.Persona())
	assert.Contains(t, prompt, "Available information:")
	assert.Contains(t, prompt, "Coron\nWreck diving on Japanese ships.")
	assert.Contains(t, prompt, "El Nido\nLagoons and limestone cliffs.")
	assert.Contains(t, prompt, "Conversation so far:")
	assert.Contains(t, prompt, "User: Where should I dive?")
	assert.Contains(t, prompt, "Assistant: Coron has the best wrecks.")
	assert.Contains(t, prompt, "User question: How do I get there?")
}

func TestBuildWithoutHistoryOmitsConversation(t *testing.T) {
	b := NewPromptBuilder(nil)
	prompt := b.Build(nil, []domain.SearchResult{{Chunk: domain.Chunk{Text: "Chunk text."}}}, "Hello")
	assert.NotContains(t, prompt, "Conversation so far:")
}

func TestBuildIsDeterministic(t *testing.T) {
	b := NewPromptBuilder(nil)

	history := []domain.ConversationTurn{{Role: domain.RoleUser, Text: "hi"}}
	results := []domain.SearchResult{{Chunk: domain.Chunk{Text: "chunk"}}}

	first := b.Build(history, results, "question")
	second := b.Build(history, results, "question")
	require.Equal(t, first, second)
}

func TestBuildPreservesChunkOrder(t *testing.T) {
	b := NewPromptBuilder(nil)
	results := []domain.SearchResult{
		{Chunk: domain.Chunk{Text: "FIRST"}},
		{Chunk: domain.Chunk{Text: "SECOND"}},
	}

	prompt := b.Build(nil, results, "q")
	assert.Less(t, strings.Index(prompt, "FIRST"), strings.Index(prompt, "SECOND"))
}
