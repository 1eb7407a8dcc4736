package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bayani-labs/lakbay/internal/core/domain"
	"github.com/bayani-labs/lakbay/internal/core/ports/driven"
	"github.com/bayani-labs/lakbay/internal/core/ports/driving"
	"github.com/bayani-labs/lakbay/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// NoInformationReply is returned when retrieval finds nothing relevant.
// It is never cached and never appended to the session's history.
const NoInformationReply = "I'm sorry, I don't have any specific information about that in my knowledge base."

// Default sampling configuration for grounded answers.
var defaultGenerateOptions = driven.GenerateOptions{
	Temperature: 0.7,
	TopP:        0.95,
	TopK:        40,
}

// ChatService orchestrates retrieval-grounded question answering:
// RETRIEVE -> COMPOSE -> GENERATE -> (STREAM)* -> FINALIZE.
type ChatService struct {
	search    driving.SearchService
	generator driven.GenerationService
	sessions  driven.SessionStore
	prompts   *PromptBuilder
	genOpts   driven.GenerateOptions
	topK      int
}

// ChatOption configures the chat orchestrator.
type ChatOption func(*ChatService)

// WithGenerateOptions overrides the default sampling options. Zero
// fields keep their defaults.
func WithGenerateOptions(opts driven.GenerateOptions) ChatOption {
	return func(s *ChatService) {
		if opts.Temperature > 0 {
			s.genOpts.Temperature = opts.Temperature
		}
		if opts.TopP > 0 {
			s.genOpts.TopP = opts.TopP
		}
		if opts.TopK > 0 {
			s.genOpts.TopK = opts.TopK
		}
		if opts.MaxTokens > 0 {
			s.genOpts.MaxTokens = opts.MaxTokens
		}
	}
}

// WithTopK overrides the number of chunks retrieved per answer.
func WithTopK(topK int) ChatOption {
	return func(s *ChatService) {
		if topK > 0 {
			s.topK = topK
		}
	}
}

// NewChatService creates a new chat orchestrator.
func NewChatService(
	search driving.SearchService,
	generator driven.GenerationService,
	sessions driven.SessionStore,
	prompts *PromptBuilder,
	opts ...ChatOption,
) *ChatService {
	s := &ChatService{
		search:    search,
		generator: generator,
		sessions:  sessions,
		prompts:   prompts,
		genOpts:   defaultGenerateOptions,
		topK:      domain.DefaultTopK,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer retrieves grounding chunks for message, generates a reply and
// records the exchange in the session's history.
func (s *ChatService) Answer(
	ctx context.Context, message, sessionID string, onFragment func(string),
) (string, error) {
	logger.Section("Chat Answer")

	message = strings.TrimSpace(message)
	if message == "" {
		return "", domain.ErrEmptyMessage
	}
	logger.Debug("Message: %q, session: %q", message, sessionID)

	// RETRIEVE
	results, err := s.search.Search(ctx, message, domain.SearchOptions{TopK: s.topK})
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		logger.Info("No relevant chunks; returning fixed reply")
		return NoInformationReply, nil
	}
	logger.Debug("Retrieved %d chunks", len(results))

	// COMPOSE
	history := s.sessions.Context(sessionID)
	prompt := s.prompts.Build(history, results, message)
	logger.Debug("Prompt: %d bytes, history: %d turns", len(prompt), len(history))

	// GENERATE
	var fullText string
	if onFragment == nil {
		fullText, err = s.generator.Generate(ctx, prompt, history, s.genOpts)
		if err != nil {
			logger.Warn("Generation failed: %v", err)
			return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
		}
	} else {
		fullText, err = s.streamAnswer(ctx, prompt, history, onFragment)
		if err != nil {
			return "", err
		}
	}

	// FINALIZE: the history mutates only after generation succeeded, so a
	// failed or abandoned generation leaves the session unchanged.
	s.sessions.AppendExchange(sessionID, message, fullText)
	logger.Info("Answer: %d bytes", len(fullText))

	return fullText, nil
}

// streamAnswer pulls the token stream, forwarding fragments in arrival
// order, and returns the accumulated text.
func (s *ChatService) streamAnswer(
	ctx context.Context,
	prompt string,
	history []domain.ConversationTurn,
	onFragment func(string),
) (string, error) {
	stream, err := s.generator.GenerateStream(ctx, prompt, history, s.genOpts)
	if err != nil {
		logger.Warn("Generation stream failed to open: %v", err)
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		fragment, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Warn("Generation stream failed mid-answer: %v", err)
			return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
		}
		sb.WriteString(fragment)
		onFragment(fragment)
	}

	return sb.String(), nil
}
