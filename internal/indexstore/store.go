// Package indexstore implements the CRUD and search surface over the
// three persistent entities (directory, file, item), grounded on the
// plain database/sql usage found across the dependency corpus
// (jefflaplante-conduit's fts indexer, agentic-research-mache's
// sqlite_graph) rather than an ORM: the schema is small and fixed, and
// every statement here is hand-written SQL.
package indexstore

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/standardbeagle/duckindex/internal/errors"
	"github.com/standardbeagle/duckindex/internal/model"
	"github.com/standardbeagle/duckindex/internal/storage"
	"github.com/standardbeagle/duckindex/pkg/pathutil"
)

const itemBatchSize = 1000

// Store wraps the shared pool with the index's CRUD and search
// operations. It holds no state of its own beyond the pool reference,
// so it is cheap to construct once per worker goroutine.
type Store struct {
	pool *storage.Pool
}

func New(pool *storage.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) db() (*sql.DB, error) {
	return s.pool.Get()
}

// WriteDirectory upserts a directory by path, refreshing modified_time,
// and returns the row id.
func (s *Store) WriteDirectory(ctx context.Context, path string, mtime time.Time) (int64, error) {
	path, err := pathutil.Canonicalize(path)
	if err != nil {
		return 0, err
	}
	db, err := s.db()
	if err != nil {
		return 0, err
	}

	name := filepath.Base(path)
	row := db.QueryRowContext(ctx, `
		INSERT INTO directories (name, path, modified_time) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET modified_time = excluded.modified_time
		RETURNING id
	`, name, path, formatTime(mtime))

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, errors.NewStoreError("write_directory", err)
	}
	return id, nil
}

// GetDirectory looks up a directory by its exact path.
func (s *Store) GetDirectory(ctx context.Context, path string) (model.Directory, error) {
	path, err := pathutil.Canonicalize(path)
	if err != nil {
		return model.Directory{}, err
	}
	db, err := s.db()
	if err != nil {
		return model.Directory{}, err
	}

	var d model.Directory
	var mtime string
	row := db.QueryRowContext(ctx,
		`SELECT id, name, path, modified_time FROM directories WHERE path = ?`, path)
	if err := row.Scan(&d.ID, &d.Name, &d.Path, &mtime); err != nil {
		if err == sql.ErrNoRows {
			return model.Directory{}, errors.NewStoreError("get_directory", fmt.Errorf("not found: %s", path))
		}
		return model.Directory{}, errors.NewStoreError("get_directory", err)
	}
	d.ModifiedTime = parseTime(mtime)
	return d, nil
}

// GetFile looks up a file by its exact absolute path.
func (s *Store) GetFile(ctx context.Context, path string) (model.File, error) {
	path, err := pathutil.Canonicalize(path)
	if err != nil {
		return model.File{}, err
	}
	db, err := s.db()
	if err != nil {
		return model.File{}, err
	}

	dirPath := filepath.Dir(path)
	name := filepath.Base(path)

	var f model.File
	var mtime string
	row := db.QueryRowContext(ctx, `
		SELECT files.id, files.directory_id, files.name, files.modified_time
		FROM files JOIN directories ON files.directory_id = directories.id
		WHERE directories.path = ? AND files.name = ?
	`, dirPath, name)
	if err := row.Scan(&f.ID, &f.DirectoryID, &f.Name, &mtime); err != nil {
		if err == sql.ErrNoRows {
			return model.File{}, errors.NewStoreError("get_file", fmt.Errorf("not found: %s", path))
		}
		return model.File{}, errors.NewStoreError("get_file", err)
	}
	f.ModifiedTime = parseTime(mtime)
	return f, nil
}

// WriteFileItems upserts the File (its parent Directory must already
// exist) and inserts all items, replacing any items from a prior
// version of the same file, all within one transaction. Items are
// batched into multi-row inserts of up to 1000 rows.
func (s *Store) WriteFileItems(ctx context.Context, filePath string, mtime time.Time, items []string) error {
	filePath, err := pathutil.Canonicalize(filePath)
	if err != nil {
		return err
	}
	db, err := s.db()
	if err != nil {
		return err
	}

	dirPath := filepath.Dir(filePath)
	name := filepath.Base(filePath)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStoreError("write_file_items", err)
	}
	defer tx.Rollback()

	var dirID int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM directories WHERE path = ?`, dirPath).Scan(&dirID); err != nil {
		return errors.NewStoreError("write_file_items", fmt.Errorf("parent directory not indexed: %s: %w", dirPath, err))
	}

	var fileID int64
	row := tx.QueryRowContext(ctx, `
		INSERT INTO files (directory_id, name, modified_time) VALUES (?, ?, ?)
		ON CONFLICT(directory_id, name) DO UPDATE SET modified_time = excluded.modified_time
		RETURNING id
	`, dirID, name, formatTime(mtime))
	if err := row.Scan(&fileID); err != nil {
		return errors.NewStoreError("write_file_items", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE file_id = ?`, fileID); err != nil {
		return errors.NewStoreError("write_file_items", err)
	}

	for start := 0; start < len(items); start += itemBatchSize {
		end := start + itemBatchSize
		if end > len(items) {
			end = len(items)
		}
		if err := insertItemBatch(ctx, tx, fileID, items[start:end]); err != nil {
			return errors.NewStoreError("write_file_items", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewStoreError("write_file_items", err)
	}
	return nil
}

func insertItemBatch(ctx context.Context, tx *sql.Tx, fileID int64, batch []string) error {
	if len(batch) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO items (file_id, content) VALUES `)
	args := make([]interface{}, 0, len(batch)*2)
	for i, content := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?)")
		args = append(args, fileID, content)
	}
	_, err := tx.ExecContext(ctx, sb.String(), args...)
	return err
}

// GetSubDirectoriesAndFiles returns the immediate children of path:
// directories whose path starts with path+separator and contains no
// further separator beyond that prefix, and files owned by path's
// directory row.
func (s *Store) GetSubDirectoriesAndFiles(ctx context.Context, path string) ([]model.DirectoryResult, []model.FileResult, error) {
	path, err := pathutil.Canonicalize(path)
	if err != nil {
		return nil, nil, err
	}
	db, err := s.db()
	if err != nil {
		return nil, nil, err
	}

	prefix := path + string(filepath.Separator) + "%"
	rows, err := db.QueryContext(ctx,
		`SELECT name, path, modified_time FROM directories WHERE path LIKE ?`, prefix)
	if err != nil {
		return nil, nil, errors.NewStoreError("get_sub_directories_and_files", err)
	}
	var dirs []model.DirectoryResult
	for rows.Next() {
		var d model.DirectoryResult
		var mtime string
		if err := rows.Scan(&d.Name, &d.Path, &mtime); err != nil {
			rows.Close()
			return nil, nil, errors.NewStoreError("get_sub_directories_and_files", err)
		}
		if pathutil.IsImmediateChild(path, d.Path) {
			d.ModifiedTime = parseTime(mtime)
			dirs = append(dirs, d)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, errors.NewStoreError("get_sub_directories_and_files", err)
	}

	fileRows, err := db.QueryContext(ctx, `
		SELECT files.name, files.modified_time FROM files
		JOIN directories ON files.directory_id = directories.id
		WHERE directories.path = ?
	`, path)
	if err != nil {
		return nil, nil, errors.NewStoreError("get_sub_directories_and_files", err)
	}
	defer fileRows.Close()

	var files []model.FileResult
	for fileRows.Next() {
		var name, mtime string
		if err := fileRows.Scan(&name, &mtime); err != nil {
			return nil, nil, errors.NewStoreError("get_sub_directories_and_files", err)
		}
		files = append(files, model.FileResult{
			Name:         name,
			Path:         filepath.Join(path, name),
			ModifiedTime: parseTime(mtime),
		})
	}
	if err := fileRows.Err(); err != nil {
		return nil, nil, errors.NewStoreError("get_sub_directories_and_files", err)
	}
	return dirs, files, nil
}

// DeleteFile removes a file and all its items in one transaction. A
// path that doesn't exist in the index is not an error.
func (s *Store) DeleteFile(ctx context.Context, path string) error {
	path, err := pathutil.Canonicalize(path)
	if err != nil {
		return err
	}
	db, err := s.db()
	if err != nil {
		return err
	}

	dirPath := filepath.Dir(path)
	name := filepath.Base(path)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStoreError("delete_file", err)
	}
	defer tx.Rollback()

	var fileID sql.NullInt64
	err = tx.QueryRowContext(ctx, `
		SELECT files.id FROM files
		JOIN directories ON files.directory_id = directories.id
		WHERE directories.path = ? AND files.name = ?
	`, dirPath, name).Scan(&fileID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return errors.NewStoreError("delete_file", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE file_id = ?`, fileID.Int64); err != nil {
		return errors.NewStoreError("delete_file", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, fileID.Int64); err != nil {
		return errors.NewStoreError("delete_file", err)
	}
	if err := tx.Commit(); err != nil {
		return errors.NewStoreError("delete_file", err)
	}
	return nil
}

// DeleteDirectory recursively deletes every contained file, then every
// sub-directory depth-first, then the directory row itself. A path not
// present in the index is not an error.
func (s *Store) DeleteDirectory(ctx context.Context, path string) error {
	path, err := pathutil.Canonicalize(path)
	if err != nil {
		return err
	}
	db, err := s.db()
	if err != nil {
		return err
	}

	var dirID sql.NullInt64
	err = db.QueryRowContext(ctx, `SELECT id FROM directories WHERE path = ?`, path).Scan(&dirID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return errors.NewStoreError("delete_directory", err)
	}

	subDirs, files, err := s.GetSubDirectoriesAndFiles(ctx, path)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := s.DeleteFile(ctx, f.Path); err != nil {
			return err
		}
	}
	for _, d := range subDirs {
		if err := s.DeleteDirectory(ctx, d.Path); err != nil {
			return err
		}
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM directories WHERE id = ?`, dirID.Int64); err != nil {
		return errors.NewStoreError("delete_directory", err)
	}
	return nil
}

// GetIndexStatus returns the counts of directories, files, and items.
func (s *Store) GetIndexStatus(ctx context.Context) (model.IndexStatus, error) {
	db, err := s.db()
	if err != nil {
		return model.IndexStatus{}, err
	}
	var status model.IndexStatus
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM directories`).Scan(&status.Directories); err != nil {
		return model.IndexStatus{}, errors.NewStoreError("get_index_status", err)
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&status.Files); err != nil {
		return model.IndexStatus{}, errors.NewStoreError("get_index_status", err)
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&status.Items); err != nil {
		return model.IndexStatus{}, errors.NewStoreError("get_index_status", err)
	}
	return status, nil
}

// formatTime/parseTime round-trip at nanosecond precision. A
// second-granularity format would make the Reconciler see every
// directory as "changed" on every pass, since os.FileInfo.ModTime
// carries sub-second precision on every platform this runs on.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func escapeLike(query string) string {
	r := strings.NewReplacer("%", "\\%", "_", "\\_")
	return r.Replace(query)
}
