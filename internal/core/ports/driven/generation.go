package driven

import (
	"context"

	"github.com/bayani-labs/lakbay/internal/core/domain"
)

// GenerationService produces answers from a grounded prompt and
// conversational history.
//
// Implementations may include:
//   - Gemini (gemini-1.5-flash)
//   - Anthropic (Claude)
type GenerationService interface {
	// Generate produces the full answer text in one call.
	Generate(ctx context.Context, prompt string, history []domain.ConversationTurn, opts GenerateOptions) (string, error)

	// GenerateStream produces the answer as an incremental stream of text
	// fragments. The returned stream must be closed by the caller; closing
	// early abandons the in-flight generation.
	GenerateStream(ctx context.Context, prompt string, history []domain.ConversationTurn, opts GenerateOptions) (TokenStream, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test
	// request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// TokenStream is a pull iterator over generated text fragments.
// Fragments arrive in generation order and are never reordered or batched.
// Cancellation and backpressure are expressed by the consumer: stop pulling
// and call Close.
type TokenStream interface {
	// Next returns the next fragment. It returns io.EOF after the final
	// fragment, and any other error if generation fails mid-stream.
	Next() (string, error)

	// Close releases the underlying connection. Safe to call at any point.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// TopP is the nucleus sampling probability mass.
	TopP float64

	// TopK limits sampling to the K most likely tokens.
	TopK int

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int
}
