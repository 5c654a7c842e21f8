// Package imagecache keeps rendered preview images in SQLite so a post is
// rasterized once per content revision.
package imagecache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// ErrClosed is returned by every method after Close.
var ErrClosed = errors.New("imagecache: closed")

// Store wraps a SQLite database holding PNG bytes by key.
type Store struct {
	db     *sql.DB
	closed atomic.Bool
}

// Open opens (or creates) the database at path, creating its directory.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("imagecache: create dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("imagecache: open: %w", err)
	}
	// WAL lets readers proceed while a render is being stored; writers wait
	// on busy_timeout instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("imagecache: pragmas: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS images (
    key TEXT PRIMARY KEY,
    data BLOB NOT NULL,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS images_created_at ON images(created_at);
`); err != nil {
		db.Close()
		return nil, fmt.Errorf("imagecache: schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database. Further calls return ErrClosed.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

// Get returns the bytes stored under key and whether they were found.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.closed.Load() {
		return nil, false, ErrClosed
	}
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM images WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("imagecache: get %s: %w", key, err)
	}
	return data, true, nil
}

// Put stores data under key, replacing any previous value.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO images (key, data, created_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET data=excluded.data, created_at=excluded.created_at
`, key, data, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("imagecache: put %s: %w", key, err)
	}
	return nil
}

// Purge deletes entries stored before the given time and reports how many
// were removed.
func (s *Store) Purge(ctx context.Context, before time.Time) (int64, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM images WHERE created_at < ?`,
		before.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("imagecache: purge: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of stored images.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM images`).Scan(&n); err != nil {
		return 0, fmt.Errorf("imagecache: count: %w", err)
	}
	return n, nil
}

// PostKey identifies the image of one revision of a post.
func PostKey(lang, slug, checksum string) string {
	return "post:" + lang + ":" + slug + ":" + checksum
}

// PageKey identifies the image of a page title.
func PageKey(slug, title string) string {
	sum := sha256.Sum256([]byte(title))
	return "page:" + slug + ":" + hex.EncodeToString(sum[:])
}
