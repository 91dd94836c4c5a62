// Package storage provides the durable message store for teledigest.
//
// Messages live in a single-file SQLite database: one primary table with
// duplicate-id suppression, and a parallel FTS5 virtual table used for
// keyword retrieval. The index is a best-effort accelerator, not a
// correctness-critical path: when FTS5 is unavailable the store keeps
// ingesting into the primary table and retrieval degrades to range scans.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"
)

const dirPerm = 0o755

// DB wraps the SQLite handle and tracks whether the full-text index is
// usable.
type DB struct {
	conn   *sql.DB
	logger *zerolog.Logger

	ftsAvailable bool
}

// Open opens (creating if needed) the SQLite database at path.
func Open(path string, logger *zerolog.Logger) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Serialized access: writes are small and infrequent, a single
	// connection sidesteps SQLITE_BUSY between the three loops.
	conn.SetMaxOpenConns(1)

	return &DB{conn: conn, logger: logger}, nil
}

// Init idempotently ensures the primary table and the FTS5 index exist.
//
// A missing FTS5 capability is not fatal: ingestion must not be blocked
// by search unavailability, so the failure is logged and the store runs
// in primary-only mode.
func (d *DB) Init(ctx context.Context) error {
	_, err := d.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			channel TEXT,
			date TEXT,
			text TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("create messages table: %w", err)
	}

	_, err = d.conn.ExecContext(ctx, `
		CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts
		USING fts5(
			id,
			channel,
			date,
			text
		)
	`)
	if err != nil {
		d.ftsAvailable = false
		d.logger.Error().Err(err).Msg("failed to create FTS5 table, continuing in primary-only mode")

		return nil
	}

	d.ftsAvailable = true
	d.logger.Info().Msg("FTS5 virtual table messages_fts initialized")

	return nil
}

// FTSAvailable reports whether the full-text index was created.
func (d *DB) FTSAvailable() bool {
	return d.ftsAvailable
}

// Ping verifies the database file is still reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.conn.PingContext(ctx)
}

// Close closes the underlying database handle.
func (d *DB) Close() error {
	return d.conn.Close()
}
