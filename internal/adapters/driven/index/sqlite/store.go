// Package sqlite persists the embedding index in a SQLite database.
// Each chunk is one row, inserted and committed individually, giving the
// same crash-bounded durability as the JSONL backend.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/bayani-labs/lakbay/internal/core/domain"
	"github.com/bayani-labs/lakbay/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.IndexStore = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	source_id     TEXT    NOT NULL,
	section_index INTEGER NOT NULL,
	title         TEXT    NOT NULL,
	text          TEXT    NOT NULL,
	vector        BLOB    NOT NULL,
	PRIMARY KEY (source_id, section_index)
);
CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source_id);
`

// Store reads and appends chunk rows in a SQLite index database.
type Store struct {
	db *sql.DB
	// existed records whether the database file was present before this
	// process opened it. Serving a freshly created (empty) database would
	// silently mask data loss, so Load refuses it.
	existed bool
}

// New opens (or creates) the index database at path.
func New(path string) (*Store, error) {
	_, statErr := os.Stat(path)
	existed := statErr == nil

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open index database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialise index schema: %w", err)
	}

	return &Store{db: db, existed: existed}, nil
}

// Load reads every chunk row in insertion order.
func (s *Store) Load(ctx context.Context) ([]domain.Chunk, error) {
	if !s.existed {
		return nil, fmt.Errorf("%w: index database does not exist", domain.ErrIndexUnavailable)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT source_id, section_index, title, text, vector FROM chunks ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var chunk domain.Chunk
		var blob []byte
		if err := rows.Scan(&chunk.SourceID, &chunk.SectionIndex,
			&chunk.Title, &chunk.Text, &blob); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
		}
		chunk.Vector = bytesToFloat32Slice(blob)
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}

	return chunks, nil
}

// Sources returns the set of source IDs already present in the index.
func (s *Store) Sources(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT source_id FROM chunks`)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	sources := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources[id] = true
	}
	return sources, rows.Err()
}

// Append inserts a single chunk row. Re-ingesting an existing identity
// replaces the previous record.
func (s *Store) Append(ctx context.Context, chunk domain.Chunk) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO chunks (source_id, section_index, title, text, vector)
		 VALUES (?, ?, ?, ?, ?)`,
		chunk.SourceID, chunk.SectionIndex, chunk.Title, chunk.Text,
		float32SliceToBytes(chunk.Vector))
	if err != nil {
		return fmt.Errorf("insert chunk: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return []byte{}
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
