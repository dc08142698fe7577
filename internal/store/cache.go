// Package store keeps the per-project scan cache: file content hashes
// from the last successful run plus a small run ledger. The cache only
// ever lets the generator skip work; manifest bytes never depend on it.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// cacheDirName is created under the project root.
const cacheDirName = ".rpc-manifest"

// Cache wraps the SQLite connection backing the scan cache.
type Cache struct {
	db     *sql.DB
	dbPath string
}

// Run is one recorded generation run.
type Run struct {
	ID           int64
	StartedAt    time.Time
	Files        int
	Diagnostics  int
	ManifestHash string
}

// Open opens or creates the scan cache under the given project root.
func Open(projectRoot string) (*Cache, error) {
	dir := filepath.Join(projectRoot, cacheDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir cache: %w", err)
	}
	return OpenPath(filepath.Join(dir, "cache.db"))
}

// OpenPath opens the cache database at the given path.
func OpenPath(dbPath string) (*Cache, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	c := &Cache{db: db, dbPath: dbPath}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return c, nil
}

// OpenMemory opens an in-memory cache (for testing).
func OpenMemory() (*Cache, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open memory db: %w", err)
	}
	c := &Cache{db: db, dbPath: ":memory:"}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return c, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS file_hashes (
		rel_path TEXT PRIMARY KEY,
		hash TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		files INTEGER NOT NULL,
		diagnostics INTEGER NOT NULL,
		manifest_hash TEXT NOT NULL DEFAULT ''
	);
	`
	_, err := c.db.Exec(schema)
	return err
}

// FileHashes returns the hash of every file tracked by the last
// successful run.
func (c *Cache) FileHashes() (map[string]string, error) {
	rows, err := c.db.Query(`SELECT rel_path, hash FROM file_hashes`)
	if err != nil {
		return nil, fmt.Errorf("query file hashes: %w", err)
	}
	defer rows.Close()

	hashes := map[string]string{}
	for rows.Next() {
		var rel, hash string
		if err := rows.Scan(&rel, &hash); err != nil {
			return nil, err
		}
		hashes[rel] = hash
	}
	return hashes, rows.Err()
}

// ReplaceFileHashes replaces the tracked file set in one transaction.
func (c *Cache) ReplaceFileHashes(hashes map[string]string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM file_hashes`); err != nil {
		_ = tx.Rollback()
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO file_hashes (rel_path, hash) VALUES (?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	for rel, hash := range hashes {
		if _, err := stmt.Exec(rel, hash); err != nil {
			stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}
	stmt.Close()
	return tx.Commit()
}

// ClearFileHashes drops the tracked file set, forcing the next run to
// scan from scratch.
func (c *Cache) ClearFileHashes() error {
	_, err := c.db.Exec(`DELETE FROM file_hashes`)
	return err
}

// RecordRun appends one run to the ledger.
func (c *Cache) RecordRun(files, diagnostics int, manifestHash string) error {
	_, err := c.db.Exec(
		`INSERT INTO runs (started_at, files, diagnostics, manifest_hash) VALUES (?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), files, diagnostics, manifestHash,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// LastSuccessfulManifestHash returns the manifest hash of the most
// recent zero-diagnostic run, if any.
func (c *Cache) LastSuccessfulManifestHash() (string, bool) {
	var hash string
	err := c.db.QueryRow(
		`SELECT manifest_hash FROM runs WHERE diagnostics = 0 AND manifest_hash != '' ORDER BY id DESC LIMIT 1`,
	).Scan(&hash)
	if err != nil {
		return "", false
	}
	return hash, true
}

// Runs returns the ledger, newest first, capped at limit.
func (c *Cache) Runs(limit int) ([]Run, error) {
	rows, err := c.db.Query(
		`SELECT id, started_at, files, diagnostics, manifest_hash FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &started, &r.Files, &r.Diagnostics, &r.ManifestHash); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
