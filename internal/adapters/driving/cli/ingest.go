package cli

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/bayani-labs/lakbay/internal/core/ports/driven"
	"github.com/bayani-labs/lakbay/internal/core/ports/driving"
	"github.com/bayani-labs/lakbay/internal/core/services"
	"github.com/bayani-labs/lakbay/internal/corpus/html"
	"github.com/bayani-labs/lakbay/internal/corpus/markdown"
	"github.com/bayani-labs/lakbay/internal/logger"
)

// watchDebounce batches rapid file events (editors write in bursts) into
// one ingestion run.
const watchDebounce = 2 * time.Second

var ingestWatch bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Chunk and embed the corpus into the index",
	Long: `Splits every supported corpus file (Markdown, HTML) into titled
sections, embeds each section, and appends the chunks to the embedding
index. Sources already in the index are skipped, so an interrupted run
resumes where it left off.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep watching the corpus directory for new files")
	rootCmd.AddCommand(ingestCmd)
}

func corpusSplitters() []driven.SectionSplitter {
	return []driven.SectionSplitter{
		markdown.New(),
		html.New(),
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	dir := cfg.Corpus.Dir
	if len(args) == 1 {
		dir = args[0]
	}

	store, err := buildIndexStore()
	if err != nil {
		return err
	}
	defer store.Close()

	embedder, err := buildEmbedder()
	if err != nil {
		return err
	}
	defer embedder.Close()

	svc := services.NewIngestService(store, embedder, corpusSplitters())

	stats, err := svc.Ingest(cmd.Context(), dir)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	printIngestStats(cmd, stats)

	if !ingestWatch {
		return nil
	}
	return watchCorpus(cmd, svc, dir)
}

func printIngestStats(cmd *cobra.Command, stats driving.IngestStats) {
	cmd.Printf("Ingested %d chunks from %d sources (%d sources already indexed, %d chunks failed)\n",
		stats.ChunksAdded, stats.SourcesSeen-stats.SourcesSkipped, stats.SourcesSkipped, stats.ChunksFailed)
}

// watchCorpus re-runs ingestion whenever files appear or change in the
// corpus directory. Events are debounced; already-indexed sources are
// skipped by the service, so repeated runs are cheap.
func watchCorpus(cmd *cobra.Command, svc driving.IngestService, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	cmd.Printf("Watching %s for changes (Ctrl-C to stop)\n", dir)

	ctx := cmd.Context()
	var timer *time.Timer
	pending := make(chan struct{}, 1)

	schedule := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(watchDebounce, func() {
			select {
			case pending <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) {
				logger.Debug("Corpus change: %s", event)
				schedule()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error: %v", err)
		case <-pending:
			stats, err := svc.Ingest(ctx, dir)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Warn("Ingest failed: %v", err)
				continue
			}
			printIngestStats(cmd, stats)
		}
	}
}
