// Package cli provides the lakbay command-line interface.
//
// Commands wire the core services lazily: the config file is loaded once
// in the root command's persistent pre-run, and each command builds only
// the adapters it needs, so `lakbay version` works without an API key.
package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	cachemem "github.com/bayani-labs/lakbay/internal/adapters/driven/cache/memory"
	configfile "github.com/bayani-labs/lakbay/internal/adapters/driven/config/file"
	embgemini "github.com/bayani-labs/lakbay/internal/adapters/driven/embedding/gemini"
	"github.com/bayani-labs/lakbay/internal/adapters/driven/embedding/ollama"
	"github.com/bayani-labs/lakbay/internal/adapters/driven/index/jsonfile"
	"github.com/bayani-labs/lakbay/internal/adapters/driven/index/sqlite"
	"github.com/bayani-labs/lakbay/internal/adapters/driven/llm/anthropic"
	llmgemini "github.com/bayani-labs/lakbay/internal/adapters/driven/llm/gemini"
	"github.com/bayani-labs/lakbay/internal/adapters/driven/vector/linear"
	"github.com/bayani-labs/lakbay/internal/core/domain"
	"github.com/bayani-labs/lakbay/internal/core/ports/driven"
	"github.com/bayani-labs/lakbay/internal/core/ports/driving"
	"github.com/bayani-labs/lakbay/internal/core/services"
	"github.com/bayani-labs/lakbay/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose       bool
	configDirFlag string
)

// cfg and configDir are populated by the persistent pre-run before any
// command executes.
var (
	cfg       configfile.Config
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "lakbay",
	Short: "Retrieval-grounded travel chatbot for the Philippines",
	Long: `Lakbay answers questions about travelling the Philippines, grounded
in a local corpus of travel pages.

Typical workflow:
  lakbay fetch              # download corpus pages from a sitemap
  lakbay ingest             # chunk and embed the corpus into the index
  lakbay search "el nido"   # inspect raw retrieval results
  lakbay chat               # converse with the grounded assistant`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)

		loaded, dir, err := configfile.Load(configDirFlag)
		if err != nil {
			return err
		}
		cfg = loaded
		configDir = dir
		logger.Debug("Config directory: %s", configDir)
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "config directory (default ~/.lakbay)")
}

// buildIndexStore creates the configured index persistence backend.
func buildIndexStore() (driven.IndexStore, error) {
	path := cfg.IndexPath(configDir)
	switch cfg.Index.Backend {
	case "jsonl":
		return jsonfile.New(path), nil
	case "sqlite":
		return sqlite.New(path)
	default:
		return nil, fmt.Errorf("unknown index backend %q (want jsonl or sqlite)", cfg.Index.Backend)
	}
}

// buildEmbedder creates the configured embedding provider.
func buildEmbedder() (driven.EmbeddingService, error) {
	switch cfg.Embedding.Provider {
	case "gemini":
		return embgemini.NewEmbeddingService(embgemini.Config{
			APIKey:  cfg.EmbeddingAPIKey(),
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.Model,
		})
	case "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.Model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q (want gemini or ollama)", cfg.Embedding.Provider)
	}
}

// buildGenerator creates the configured generation provider.
func buildGenerator() (driven.GenerationService, error) {
	switch cfg.Generation.Provider {
	case "gemini":
		return llmgemini.NewGenerationService(llmgemini.Config{
			APIKey:  cfg.GenerationAPIKey(),
			BaseURL: cfg.Generation.BaseURL,
			Model:   cfg.Generation.Model,
		})
	case "anthropic":
		return anthropic.NewGenerationService(anthropic.Config{
			APIKey:  cfg.GenerationAPIKey(),
			BaseURL: cfg.Generation.BaseURL,
			Model:   cfg.Generation.Model,
		})
	default:
		return nil, fmt.Errorf("unknown generation provider %q (want gemini or anthropic)", cfg.Generation.Provider)
	}
}

// buildSearchService loads the index into memory and assembles the
// retrieval pipeline. The returned cleanup releases the embedder.
func buildSearchService(ctx context.Context, cacheEnabled bool) (driving.SearchService, func(), error) {
	store, err := buildIndexStore()
	if err != nil {
		return nil, nil, err
	}
	chunks, err := store.Load(ctx)
	store.Close() // index is fully in memory from here
	if err != nil {
		if errors.Is(err, domain.ErrIndexUnavailable) {
			return nil, nil, fmt.Errorf("no embedding index found; run 'lakbay ingest' first (%w)", err)
		}
		return nil, nil, err
	}
	logger.Debug("Loaded %d chunks from index", len(chunks))

	embedder, err := buildEmbedder()
	if err != nil {
		return nil, nil, err
	}

	cache := cachemem.New(
		cfg.Cache.TTL.Duration,
		cfg.Cache.SweepInterval.Duration,
		cacheEnabled && cfg.Cache.Enabled,
	)

	svc := services.NewSearchService(linear.New(chunks), embedder, cache)
	cleanup := func() { embedder.Close() }
	return svc, cleanup, nil
}

// buildPromptBuilder creates the prompt builder backed by the
// user-editable prompts directory.
func buildPromptBuilder() *services.PromptBuilder {
	store, err := configfile.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		logger.Warn("Prompt store unavailable, using built-in persona: %v", err)
		return services.NewPromptBuilder(nil)
	}
	return services.NewPromptBuilder(store)
}
