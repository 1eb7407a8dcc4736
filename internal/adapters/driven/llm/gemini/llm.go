// Package gemini provides a generation service adapter using the Google
// Generative Language API. Streaming uses the streamGenerateContent
// endpoint with server-sent events.
package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bayani-labs/lakbay/internal/core/domain"
	"github.com/bayani-labs/lakbay/internal/core/ports/driven"
)

// Ensure GenerationService implements the interface.
var _ driven.GenerationService = (*GenerationService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-1.5-flash"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Gemini generation service.
type Config struct {
	// APIKey is the Google AI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://generativelanguage.googleapis.com).
	BaseURL string

	// Model is the generation model to use (default: gemini-1.5-flash).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// GenerationService generates answers using the Gemini API.
type GenerationService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// generateRequest is the generateContent request format.
type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
	TopK            *int     `json:"topK,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

// generateResponse is the generateContent response format. Streaming
// chunks use the same shape, one object per SSE data line.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewGenerationService creates a new Gemini generation service.
func NewGenerationService(cfg Config) (*GenerationService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &GenerationService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// buildContents converts conversational history plus the grounded prompt
// into the API's alternating role format. The API names the assistant
// role "model".
func buildContents(prompt string, history []domain.ConversationTurn) []content {
	contents := make([]content, 0, len(history)+1)
	for _, turn := range history {
		role := "user"
		if turn.Role == domain.RoleAssistant {
			role = "model"
		}
		contents = append(contents, content{
			Role:  role,
			Parts: []part{{Text: turn.Text}},
		})
	}
	contents = append(contents, content{
		Role:  "user",
		Parts: []part{{Text: prompt}},
	})
	return contents
}

func buildGenerationConfig(opts driven.GenerateOptions) *generationConfig {
	cfg := &generationConfig{}
	if opts.Temperature > 0 {
		cfg.Temperature = &opts.Temperature
	}
	if opts.TopP > 0 {
		cfg.TopP = &opts.TopP
	}
	if opts.TopK > 0 {
		cfg.TopK = &opts.TopK
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = &opts.MaxTokens
	}
	return cfg
}

// Generate produces the full answer text in one call.
func (s *GenerationService) Generate(ctx context.Context, prompt string, history []domain.ConversationTurn, opts driven.GenerateOptions) (string, error) {
	reqBody := generateRequest{
		Contents:         buildContents(prompt, history),
		GenerationConfig: buildGenerationConfig(opts),
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", s.baseURL, s.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if genResp.Error != nil {
		return "", fmt.Errorf("gemini error: %s", genResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, string(body))
	}
	if len(genResp.Candidates) == 0 {
		return "", fmt.Errorf("gemini: no candidates returned")
	}

	var answer strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		answer.WriteString(p.Text)
	}
	return answer.String(), nil
}

// GenerateStream produces the answer as an incremental stream of text
// fragments via the SSE streaming endpoint.
func (s *GenerationService) GenerateStream(ctx context.Context, prompt string, history []domain.ConversationTurn, opts driven.GenerateOptions) (driven.TokenStream, error) {
	reqBody := generateRequest{
		Contents:         buildContents(prompt, history),
		GenerationConfig: buildGenerationConfig(opts),
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse", s.baseURL, s.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("gemini error (status %d): failed to read response", resp.StatusCode)
		}
		return nil, fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, string(body))
	}

	return &tokenStream{
		body:    resp.Body,
		scanner: bufio.NewScanner(resp.Body),
	}, nil
}

// tokenStream reads SSE data lines from the streaming endpoint. Each data
// line carries one generateContent-shaped JSON chunk.
type tokenStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

// Next returns the next text fragment, or io.EOF after the last one.
func (t *tokenStream) Next() (string, error) {
	if t.done {
		return "", io.EOF
	}

	for t.scanner.Scan() {
		line := strings.TrimSpace(t.scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}

		var chunk generateResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			t.done = true
			return "", fmt.Errorf("decode stream chunk: %w", err)
		}
		if chunk.Error != nil {
			t.done = true
			return "", fmt.Errorf("gemini error: %s", chunk.Error.Message)
		}
		if len(chunk.Candidates) == 0 {
			continue
		}

		var fragment strings.Builder
		for _, p := range chunk.Candidates[0].Content.Parts {
			fragment.WriteString(p.Text)
		}
		if fragment.Len() == 0 {
			continue
		}
		return fragment.String(), nil
	}

	t.done = true
	if err := t.scanner.Err(); err != nil {
		return "", fmt.Errorf("read stream: %w", err)
	}
	return "", io.EOF
}

// Close releases the underlying connection.
func (t *tokenStream) Close() error {
	t.done = true
	return t.body.Close()
}

// ModelName returns the name of the generation model being used.
func (s *GenerationService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by listing models.
func (s *GenerationService) Ping(ctx context.Context) error {
	url := s.baseURL + "/v1beta/models?pageSize=1"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("gemini: failed to create ping request: %w", err)
	}
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("gemini: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("gemini: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *GenerationService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
