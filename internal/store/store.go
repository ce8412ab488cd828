// Package store is a local SQLite cache for fetched candidate batches, keyed
// by query and date. It keeps repeated curation runs inside a TTL window from
// re-hitting the news providers.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"policybrief/internal/core"
)

// Store is the SQLite-backed candidate cache.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the cache database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "policybrief.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	table := `
	CREATE TABLE IF NOT EXISTS candidate_batches (
		cache_key TEXT PRIMARY KEY,
		candidates TEXT NOT NULL,
		fetched_at DATETIME NOT NULL
	);`

	_, err := s.db.Exec(table)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CacheCandidates stores a fetched candidate batch under query+date.
func (s *Store) CacheCandidates(query, date string, candidates []core.Candidate) error {
	payload, err := json.Marshal(candidates)
	if err != nil {
		return fmt.Errorf("failed to marshal candidates: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO candidate_batches (cache_key, candidates, fetched_at)
		VALUES (?, ?, ?)`,
		cacheKey(query, date), string(payload), time.Now().UTC())
	return err
}

// GetCachedCandidates retrieves a cached batch no older than maxAge. A cache
// miss returns (nil, nil).
func (s *Store) GetCachedCandidates(query, date string, maxAge time.Duration) ([]core.Candidate, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	row := s.db.QueryRow(`
		SELECT candidates FROM candidate_batches
		WHERE cache_key = ? AND fetched_at > ?`,
		cacheKey(query, date), cutoff)

	var payload string
	err := row.Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan cached candidates: %w", err)
	}

	var candidates []core.Candidate
	if err := json.Unmarshal([]byte(payload), &candidates); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached candidates: %w", err)
	}
	return candidates, nil
}

// CleanupOld removes cache entries older than maxAge.
func (s *Store) CleanupOld(maxAge time.Duration) error {
	cutoff := time.Now().UTC().Add(-maxAge)
	_, err := s.db.Exec(`DELETE FROM candidate_batches WHERE fetched_at < ?`, cutoff)
	return err
}

func cacheKey(query, date string) string {
	return date + "|" + query
}
