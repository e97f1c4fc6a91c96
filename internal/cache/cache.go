// Package cache stores compiled output in SQLite, keyed by a hash of the
// target and the source text.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// format is mixed into every key so output from an older code generator
// is never served after the format changes.
const format = "quill-1"

// Cache is a build cache backed by a SQLite database.
type Cache struct {
	db *sql.DB
}

// Stats summarises cache contents.
type Stats struct {
	Artifacts int
	Builds    int
	Hits      int
}

// Open creates or opens the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to cache: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Key returns the cache key for compiling source with target.
func Key(target, source string) string {
	h := sha256.New()
	h.Write([]byte(format))
	h.Write([]byte{0})
	h.Write([]byte(target))
	h.Write([]byte{0})
	h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the stored output for key.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	var output []byte
	err := c.db.QueryRowContext(ctx, "SELECT output FROM artifacts WHERE key = ?", key).Scan(&output)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache lookup: %w", err)
	}
	return string(output), true, nil
}

// Put stores output for key, replacing any previous entry. Output is kept
// as a blob so binary targets round-trip unchanged.
func (c *Cache) Put(ctx context.Context, key, target, output string) error {
	_, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO artifacts (key, target, output, created_at) VALUES (?, ?, ?, ?)",
		key, target, []byte(output), time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}

// Record logs one build request and returns its id.
func (c *Cache) Record(ctx context.Context, file, target, key string, hit, ok bool) (string, error) {
	id := uuid.Must(uuid.NewV7()).String()
	_, err := c.db.ExecContext(ctx,
		"INSERT INTO builds (id, file, target, key, hit, ok, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		id, file, target, key, hit, ok, time.Now().UnixNano())
	if err != nil {
		return "", fmt.Errorf("record build: %w", err)
	}
	return id, nil
}

// Stats counts stored artifacts and recorded builds.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM artifacts").Scan(&s.Artifacts)
	if err != nil {
		return s, fmt.Errorf("count artifacts: %w", err)
	}
	err = c.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(hit), 0) FROM builds").Scan(&s.Builds, &s.Hits)
	if err != nil {
		return s, fmt.Errorf("count builds: %w", err)
	}
	return s, nil
}

// Clear removes every artifact and build record.
func (c *Cache) Clear(ctx context.Context) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"artifacts", "builds"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}
