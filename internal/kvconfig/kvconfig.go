// Package kvconfig reads and writes the DB-resident config table: the
// two keys the UI can mutate at runtime (IndexDirPaths,
// ExtensionWhitelist), as opposed to the process-tuning knobs that live
// in the on-disk duckindex.kdl file (see internal/config). Grounded on
// storage.Pool's own config table usage for schema version.
package kvconfig

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/standardbeagle/duckindex/internal/errors"
	"github.com/standardbeagle/duckindex/internal/storage"
)

const KeyIndexDirPaths = "IndexDirPaths"
const KeyExtensionWhitelist = "ExtensionWhitelist"

// Store reads and writes key/value rows in the config table.
type Store struct {
	pool *storage.Pool
}

func New(pool *storage.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	db, err := s.pool.Get()
	if err != nil {
		return "", err
	}
	var value string
	err = db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", errors.NewStoreError("kvconfig.get", err)
	}
	return value, nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	db, err := s.pool.Get()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return errors.NewStoreError("kvconfig.set", err)
	}
	return nil
}

// IndexDirPaths returns the configured root paths, in the order stored.
func (s *Store) IndexDirPaths(ctx context.Context) ([]string, error) {
	raw, err := s.get(ctx, KeyIndexDirPaths)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var paths []string
	if err := json.Unmarshal([]byte(raw), &paths); err != nil {
		return nil, errors.NewStoreError("kvconfig.index_dir_paths", err)
	}
	return paths, nil
}

// SetIndexDirPaths persists the full root path list.
func (s *Store) SetIndexDirPaths(ctx context.Context, paths []string) error {
	raw, err := json.Marshal(paths)
	if err != nil {
		return errors.NewStoreError("kvconfig.set_index_dir_paths", err)
	}
	return s.set(ctx, KeyIndexDirPaths, string(raw))
}

// ExtensionWhitelist returns the raw JSON category tree, for callers
// that render or mutate it directly without needing a typed shape.
func (s *Store) ExtensionWhitelist(ctx context.Context) (string, error) {
	return s.get(ctx, KeyExtensionWhitelist)
}

// SetExtensionWhitelist overwrites the stored category tree.
func (s *Store) SetExtensionWhitelist(ctx context.Context, raw string) error {
	return s.set(ctx, KeyExtensionWhitelist, raw)
}
