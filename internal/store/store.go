// Package store persists per-user preferences between sessions.
//
// Backed by an embedded SQLite database holding independent keyed
// entries: the region preference plus the "seen" and "liked" video id
// sets, each serialized as a JSON id-to-true map. Writes are
// last-write-wins; there is no cross-key transactionality.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	keyRegion = "region"
	keySeen   = "seen_videos"
	keyLiked  = "liked_videos"
)

const schema = `
CREATE TABLE IF NOT EXISTS preferences (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

// Store manages preference persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the preference database under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config directory: %w", err)
	}

	dbPath := filepath.Join(dir, "alttube.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Region returns the persisted region preference, or "" when unset.
func (s *Store) Region(ctx context.Context) (string, error) {
	value, ok, err := s.get(ctx, keyRegion)
	if err != nil || !ok {
		return "", err
	}
	return value, nil
}

// SetRegion persists the region preference.
func (s *Store) SetRegion(ctx context.Context, code string) error {
	return s.set(ctx, keyRegion, code)
}

// SeenIDs returns the persisted set of seen video ids.
func (s *Store) SeenIDs(ctx context.Context) (map[string]bool, error) {
	return s.readIDSet(ctx, keySeen)
}

// MarkSeen adds a video id to the seen set. Idempotent.
func (s *Store) MarkSeen(ctx context.Context, id string) error {
	ids, err := s.readIDSet(ctx, keySeen)
	if err != nil {
		return err
	}
	if ids[id] {
		return nil
	}
	ids[id] = true
	return s.writeIDSet(ctx, keySeen, ids)
}

// LikedIDs returns the persisted set of liked video ids.
func (s *Store) LikedIDs(ctx context.Context) (map[string]bool, error) {
	return s.readIDSet(ctx, keyLiked)
}

// ToggleLiked flips a video id's membership in the liked set and
// reports the new state.
func (s *Store) ToggleLiked(ctx context.Context, id string) (bool, error) {
	ids, err := s.readIDSet(ctx, keyLiked)
	if err != nil {
		return false, err
	}
	liked := !ids[id]
	if liked {
		ids[id] = true
	} else {
		delete(ids, id)
	}
	if err := s.writeIDSet(ctx, keyLiked, ids); err != nil {
		return false, err
	}
	return liked, nil
}

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read preference %q: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO preferences (key, value) VALUES (?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("write preference %q: %w", key, err)
	}
	return nil
}

func (s *Store) readIDSet(ctx context.Context, key string) (map[string]bool, error) {
	value, ok, err := s.get(ctx, key)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool)
	if !ok || value == "" {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(value), &ids); err != nil {
		// A corrupt entry resets rather than wedging every session.
		return make(map[string]bool), nil
	}
	return ids, nil
}

func (s *Store) writeIDSet(ctx context.Context, key string, ids map[string]bool) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode preference %q: %w", key, err)
	}
	return s.set(ctx, key, string(data))
}
