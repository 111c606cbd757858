package ledger

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists appended blocks to sqlite so the violation trail
// survives process restarts. Appends are single-writer, matching the
// channel discipline.
type Store struct {
	db *sql.DB
}

const storeSchema = `
	CREATE TABLE IF NOT EXISTS blocks (
		channel       TEXT NOT NULL,
		idx           INTEGER NOT NULL,
		timestamp     TEXT NOT NULL,
		data          TEXT NOT NULL,
		previous_hash TEXT NOT NULL,
		hash          TEXT NOT NULL,
		PRIMARY KEY (channel, idx)
	);
	CREATE INDEX IF NOT EXISTS blocks_channel_idx ON blocks (channel);
`

// OpenStore opens (creating if necessary) the block store at path.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open block store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping block store: %w", err)
	}
	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create block store schema: %w", err)
	}

	log.Printf("Block store initialized at %s", path)
	return &Store{db: db}, nil
}

// Append persists one block under the named channel.
func (s *Store) Append(channel string, b Block) error {
	data, err := json.Marshal(b.Data)
	if err != nil {
		return fmt.Errorf("failed to encode block payload: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT INTO blocks (channel, idx, timestamp, data, previous_hash, hash) VALUES (?, ?, ?, ?, ?, ?)",
		channel, b.Index, b.Timestamp, string(data), b.PrevHash, b.Hash,
	)
	if err != nil {
		return fmt.Errorf("failed to persist block %d on channel %s: %w", b.Index, channel, err)
	}
	return nil
}

// LoadChannel reads back the persisted chain for a channel, ordered by
// block index.
func (s *Store) LoadChannel(channel string) ([]Block, error) {
	rows, err := s.db.Query(
		"SELECT idx, timestamp, data, previous_hash, hash FROM blocks WHERE channel = ? ORDER BY idx",
		channel,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query channel %s: %w", channel, err)
	}
	defer rows.Close()

	var blocks []Block
	for rows.Next() {
		var b Block
		var data string
		if err := rows.Scan(&b.Index, &b.Timestamp, &data, &b.PrevHash, &b.Hash); err != nil {
			return nil, fmt.Errorf("failed to scan block row: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &b.Data); err != nil {
			return nil, fmt.Errorf("failed to decode payload of block %d: %w", b.Index, err)
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
