// Package file provides file-based configuration and prompt storage.
//
// Configuration lives in a TOML file under the lakbay config directory
// (~/.lakbay by default). Missing files and missing keys fall back to
// built-in defaults, so a fresh install works with nothing but an API key
// in the environment.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultConfigFileName = "config.toml"

	DefaultEmbeddingProvider  = "gemini"
	DefaultGenerationProvider = "gemini"

	DefaultIndexBackend = "jsonl"

	DefaultCorpusDir = "corpus"
)

// Duration is a time.Duration that unmarshals from TOML duration strings
// like "10m" or "90s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the full lakbay configuration.
type Config struct {
	Embedding  EmbeddingConfig  `toml:"embedding"`
	Generation GenerationConfig `toml:"generation"`
	Index      IndexConfig      `toml:"index"`
	Cache      CacheConfig      `toml:"cache"`
	Session    SessionConfig    `toml:"session"`
	Corpus     CorpusConfig     `toml:"corpus"`
	Search     SearchConfig     `toml:"search"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is "gemini" or "ollama".
	Provider string `toml:"provider"`

	// APIKey overrides the GEMINI_API_KEY environment variable.
	APIKey string `toml:"api_key"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `toml:"base_url"`

	// Model overrides the provider's default embedding model.
	Model string `toml:"model"`
}

// GenerationConfig selects and configures the generation provider.
type GenerationConfig struct {
	// Provider is "gemini" or "anthropic".
	Provider string `toml:"provider"`

	// APIKey overrides the provider's API key environment variable.
	APIKey string `toml:"api_key"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `toml:"base_url"`

	// Model overrides the provider's default generation model.
	Model string `toml:"model"`

	// Temperature, TopP and TopK override the default sampling options
	// when non-zero.
	Temperature float64 `toml:"temperature"`
	TopP        float64 `toml:"top_p"`
	TopK        int     `toml:"top_k"`

	// MaxTokens caps the answer length when non-zero.
	MaxTokens int `toml:"max_tokens"`
}

// IndexConfig configures embedding index persistence.
type IndexConfig struct {
	// Backend is "jsonl" or "sqlite".
	Backend string `toml:"backend"`

	// Path overrides the default index file location.
	Path string `toml:"path"`
}

// CacheConfig configures the response cache.
type CacheConfig struct {
	// Enabled toggles response caching.
	Enabled bool `toml:"enabled"`

	// TTL is how long a cached response stays fresh.
	TTL Duration `toml:"ttl"`

	// SweepInterval is how often expired entries are purged.
	SweepInterval Duration `toml:"sweep_interval"`
}

// SessionConfig configures the conversation context store.
type SessionConfig struct {
	// MaxTurns bounds each session's history.
	MaxTurns int `toml:"max_turns"`

	// TTL is how long an idle session survives. Zero disables eviction.
	TTL Duration `toml:"ttl"`
}

// CorpusConfig configures corpus ingestion.
type CorpusConfig struct {
	// Dir is the directory holding corpus source files.
	Dir string `toml:"dir"`

	// SitemapURL is the sitemap fetched by the fetch command.
	SitemapURL string `toml:"sitemap_url"`
}

// SearchConfig configures retrieval.
type SearchConfig struct {
	// TopK is the default number of results to retrieve.
	TopK int `toml:"top_k"`
}

// DefaultDir returns the default lakbay config directory (~/.lakbay).
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".lakbay"), nil
}

// defaults returns a Config with every built-in default applied.
func defaults() Config {
	return Config{
		Embedding: EmbeddingConfig{
			Provider: DefaultEmbeddingProvider,
		},
		Generation: GenerationConfig{
			Provider: DefaultGenerationProvider,
		},
		Index: IndexConfig{
			Backend: DefaultIndexBackend,
		},
		Cache: CacheConfig{
			Enabled:       true,
			TTL:           Duration{10 * time.Minute},
			SweepInterval: Duration{2 * time.Minute},
		},
		Session: SessionConfig{
			MaxTurns: 20,
			TTL:      Duration{30 * time.Minute},
		},
		Corpus: CorpusConfig{
			Dir: DefaultCorpusDir,
		},
		Search: SearchConfig{
			TopK: 5,
		},
	}
}

// Load reads configuration from the TOML file in configDir, applying
// defaults for anything the file omits. A missing file is not an error;
// it yields the defaults. If configDir is empty, DefaultDir is used.
func Load(configDir string) (Config, string, error) {
	if configDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return Config{}, "", err
		}
		configDir = dir
	}

	cfg := defaults()
	path := filepath.Join(configDir, DefaultConfigFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, configDir, nil
		}
		return Config{}, "", fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, "", fmt.Errorf("parse %s: %w", path, err)
	}

	// Re-apply defaults the file may have blanked.
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = DefaultEmbeddingProvider
	}
	if cfg.Generation.Provider == "" {
		cfg.Generation.Provider = DefaultGenerationProvider
	}
	if cfg.Index.Backend == "" {
		cfg.Index.Backend = DefaultIndexBackend
	}
	if cfg.Corpus.Dir == "" {
		cfg.Corpus.Dir = DefaultCorpusDir
	}
	if cfg.Search.TopK <= 0 {
		cfg.Search.TopK = 5
	}

	return cfg, configDir, nil
}

// Save writes the configuration to the TOML file in configDir, creating
// the directory if needed.
func Save(configDir string, cfg Config) error {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	// Write with restricted permissions; the file may carry API keys.
	path := filepath.Join(configDir, DefaultConfigFileName)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// IndexPath resolves the index file location for the configured backend.
func (c Config) IndexPath(configDir string) string {
	if c.Index.Path != "" {
		return c.Index.Path
	}
	switch c.Index.Backend {
	case "sqlite":
		return filepath.Join(configDir, "index.db")
	default:
		return filepath.Join(configDir, "embeddings.jsonl")
	}
}

// EmbeddingAPIKey resolves the embedding API key: the config value wins,
// then the GEMINI_API_KEY environment variable.
func (c Config) EmbeddingAPIKey() string {
	if c.Embedding.APIKey != "" {
		return c.Embedding.APIKey
	}
	return os.Getenv("GEMINI_API_KEY")
}

// GenerationAPIKey resolves the generation API key: the config value
// wins, then the provider's environment variable.
func (c Config) GenerationAPIKey() string {
	if c.Generation.APIKey != "" {
		return c.Generation.APIKey
	}
	switch c.Generation.Provider {
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	default:
		return os.Getenv("GEMINI_API_KEY")
	}
}
