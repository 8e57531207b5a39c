package extract

import (
	"bufio"
	"context"
	"os"

	"github.com/standardbeagle/duckindex/internal/errors"
)

// PlainReader handles plain-text and markdown files: one Item per line,
// empty lines preserved so line numbers (if ever surfaced) stay stable.
type PlainReader struct{}

func (r *PlainReader) Supports() []string {
	return []string{"txt", "md", "markdown"}
}

func (r *PlainReader) Read(ctx context.Context, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIoError("open", path, err)
	}
	defer f.Close()

	var items []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		items = append(items, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewIoError("read", path, err)
	}
	return items, nil
}
