// Package storage owns the single process-wide connection to
// duckindex's relational store: schema bootstrap, the shutdown
// checkpoint, and the pool wrapper that fails fast once torn down.
//
// Grounded on kadirpekel-hector's pkg/config/dbpool.go: one *sql.DB per
// process, SetMaxOpenConns(1) for SQLite because it allows exactly one
// writer, and a PRAGMA warm-up on open.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/standardbeagle/duckindex/internal/errors"
)

const schemaVersion = "0.1"

// Pool is the process-wide singleton wrapping the shared *sql.DB. It is
// initialized once at startup and torn down last at shutdown; Close
// removes the underlying handle so any later Get fails with
// NotInitializedError instead of operating on a closed connection.
type Pool struct {
	mu sync.RWMutex
	db *sql.DB
}

// Open creates the SQLite database file under dataDir/index/index.db
// (creating the directory if needed), configures the busy handler and
// WAL mode, and ensures the schema exists.
func Open(ctx context.Context, dataDir string, busyTimeoutMs int) (*Pool, error) {
	indexDir := filepath.Join(dataDir, "index")
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return nil, errors.NewStoreError("open", err)
	}
	dsn := dataSourceName(filepath.Join(indexDir, "index.db"), busyTimeoutMs)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.NewStoreError("open", err)
	}
	// SQLite allows exactly one writer; serializing through a single
	// connection avoids "database is locked" errors entirely rather
	// than retrying around them.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.NewStoreError("ping", err)
	}

	p := &Pool{db: db}
	if err := p.bootstrap(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

// Get returns the shared handle, or NotInitializedError once the pool
// has been torn down.
func (p *Pool) Get() (*sql.DB, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.db == nil {
		return nil, errors.NewNotInitializedError("storage.Pool")
	}
	return p.db, nil
}

// Close flushes the write-ahead log, VACUUMs, and drops the pool. After
// Close returns, Get always fails.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	db := p.db
	p.db = nil

	if _, err := db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		db.Close()
		return errors.NewStoreError("checkpoint", err)
	}
	if _, err := db.ExecContext(ctx, "VACUUM"); err != nil {
		db.Close()
		return errors.NewStoreError("vacuum", err)
	}
	if err := db.Close(); err != nil {
		return errors.NewStoreError("close", err)
	}
	return nil
}

func (p *Pool) bootstrap(ctx context.Context) error {
	var version string
	err := p.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = 'db_version'`).Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		return p.recreateSchema(ctx)
	case isNoSuchTable(err):
		return p.recreateSchema(ctx)
	case err != nil:
		return errors.NewStoreError("bootstrap", err)
	case version != schemaVersion:
		return p.recreateSchema(ctx)
	default:
		return nil
	}
}

func (p *Pool) recreateSchema(ctx context.Context) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStoreError("recreate schema", err)
	}
	defer tx.Rollback()

	for _, stmt := range dropStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.NewStoreError("drop schema", err)
		}
	}
	for _, stmt := range createStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.NewStoreError("create schema", err)
		}
	}
	for key, value := range seedConfig {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO config (key, value) VALUES (?, ?)`, key, value); err != nil {
			return errors.NewStoreError("seed config", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewStoreError("recreate schema", err)
	}
	return nil
}

func isNoSuchTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

func dataSourceName(path string, busyTimeoutMs int) string {
	return fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(0)",
		path, busyTimeoutMs,
	)
}
