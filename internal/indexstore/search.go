package indexstore

import (
	"context"

	"github.com/standardbeagle/duckindex/internal/errors"
	"github.com/standardbeagle/duckindex/internal/model"
)

// SearchDirectory returns directories whose name contains query,
// ordered by row id (insertion order), paginated.
func (s *Store) SearchDirectory(ctx context.Context, query string, offset, limit int) ([]model.DirectoryResult, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT name, path, modified_time FROM directories
		WHERE name LIKE ? ESCAPE '\' ORDER BY id LIMIT ? OFFSET ?
	`, likePattern(query), limit, offset)
	if err != nil {
		return nil, errors.NewStoreError("search_directory", err)
	}
	defer rows.Close()

	var results []model.DirectoryResult
	for rows.Next() {
		var d model.DirectoryResult
		var mtime string
		if err := rows.Scan(&d.Name, &d.Path, &mtime); err != nil {
			return nil, errors.NewStoreError("search_directory", err)
		}
		d.ModifiedTime = parseTime(mtime)
		results = append(results, d)
	}
	return results, rows.Err()
}

// SearchFile returns files whose name contains query, ordered by row
// id, paginated. Path is the containing directory's absolute path, the
// same convention SearchItem uses — a File's own location is (name,
// parent directory), not a path of its own.
func (s *Store) SearchFile(ctx context.Context, query string, offset, limit int) ([]model.FileResult, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT files.name, directories.path, files.modified_time
		FROM files JOIN directories ON files.directory_id = directories.id
		WHERE files.name LIKE ? ESCAPE '\' ORDER BY files.id LIMIT ? OFFSET ?
	`, likePattern(query), limit, offset)
	if err != nil {
		return nil, errors.NewStoreError("search_file", err)
	}
	defer rows.Close()

	var results []model.FileResult
	for rows.Next() {
		var name, dirPath, mtime string
		if err := rows.Scan(&name, &dirPath, &mtime); err != nil {
			return nil, errors.NewStoreError("search_file", err)
		}
		results = append(results, model.FileResult{
			Name:         name,
			Path:         dirPath,
			ModifiedTime: parseTime(mtime),
		})
	}
	return results, rows.Err()
}

// SearchItem returns items whose content contains query, ordered by
// row id, paginated.
func (s *Store) SearchItem(ctx context.Context, query string, offset, limit int) ([]model.ItemResult, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT items.content, files.name, directories.path
		FROM items
		JOIN files ON items.file_id = files.id
		JOIN directories ON files.directory_id = directories.id
		WHERE items.content LIKE ? ESCAPE '\' ORDER BY items.id LIMIT ? OFFSET ?
	`, likePattern(query), limit, offset)
	if err != nil {
		return nil, errors.NewStoreError("search_item", err)
	}
	defer rows.Close()

	var results []model.ItemResult
	for rows.Next() {
		var r model.ItemResult
		if err := rows.Scan(&r.Content, &r.File, &r.Path); err != nil {
			return nil, errors.NewStoreError("search_item", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func likePattern(query string) string {
	return "%" + escapeLike(query) + "%"
}
