// Package jsonfile persists the embedding index as a JSON Lines file:
// one chunk record per line, appended and synced per chunk.
//
// The format survives interruption by construction - a crash mid-write
// leaves at most one truncated trailing line, which Load tolerates.
package jsonfile

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/bayani-labs/lakbay/internal/core/domain"
	"github.com/bayani-labs/lakbay/internal/core/ports/driven"
	"github.com/bayani-labs/lakbay/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.IndexStore = (*Store)(nil)

// Store reads and appends chunk records in a single JSONL artifact.
type Store struct {
	mu   sync.Mutex
	path string
	file *os.File // opened lazily on first Append
}

// New creates a store for the artifact at path. No I/O is performed until
// Load, Sources or Append is called.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the artifact path.
func (s *Store) Path() string {
	return s.path
}

// Load reads every chunk record in insertion order.
func (s *Store) Load(ctx context.Context) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chunks, err := s.read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	return chunks, nil
}

// Sources returns the set of source IDs already present in the artifact.
// A missing artifact yields an empty set so ingestion can start fresh.
func (s *Store) Sources(ctx context.Context) (map[string]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sources := make(map[string]bool)
	chunks, err := s.read()
	if err != nil {
		if os.IsNotExist(err) {
			return sources, nil
		}
		return nil, fmt.Errorf("read index: %w", err)
	}
	for _, chunk := range chunks {
		sources[chunk.SourceID] = true
	}
	return sources, nil
}

// Append persists a single chunk record and syncs it to disk.
func (s *Store) Append(ctx context.Context, chunk domain.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("open index for append: %w", err)
		}
		s.file = f
	}

	line, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("marshal chunk: %w", err)
	}
	line = append(line, '\n')

	if _, err := s.file.Write(line); err != nil {
		return fmt.Errorf("append chunk: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("sync index: %w", err)
	}
	return nil
}

// Close closes the append handle if one is open.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// read parses the artifact. A malformed final line without a trailing
// newline is treated as an interrupted append and dropped; a malformed
// line anywhere else means the artifact is corrupt.
func (s *Store) read() ([]domain.Chunk, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var chunks []domain.Chunk
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadBytes('\n')
		atEOF := err == io.EOF
		if err != nil && !atEOF {
			return nil, fmt.Errorf("read index: %w", err)
		}

		trimmed := bytes.TrimSpace(line)
		if len(trimmed) > 0 {
			var chunk domain.Chunk
			if uerr := json.Unmarshal(trimmed, &chunk); uerr != nil {
				if atEOF {
					// Interrupted append: drop the partial trailing record.
					logger.Warn("Dropping truncated trailing index record")
					return chunks, nil
				}
				return nil, fmt.Errorf("malformed index record %d: %w", len(chunks)+1, uerr)
			}
			chunks = append(chunks, chunk)
		}

		if atEOF {
			return chunks, nil
		}
	}
}
