package extract

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/duckindex/pkg/pathutil"
)

// Registry maps a file extension to the Reader that handles it. Lookup
// is case-insensitive. Unknown extensions are not an error — Read
// simply returns no items, letting the Reconciler decide that an
// unsupported file is not a reason to submit a task.
type Registry struct {
	byExt map[string]Reader
}

// NewRegistry builds the default registry covering every format named
// in the content-extraction contract, plus the supplemental HTML reader.
func NewRegistry(ocrLanguages string) *Registry {
	r := &Registry{byExt: make(map[string]Reader)}
	r.register(&PlainReader{})
	r.register(&DocxReader{})
	r.register(&PptxReader{})
	r.register(&XlsxReader{})
	r.register(&PdfReader{})
	r.register(&OcrReader{Languages: ocrLanguages})
	r.register(&HtmlReader{})
	return r
}

func (r *Registry) register(reader Reader) {
	for _, ext := range reader.Supports() {
		r.byExt[ext] = reader
	}
}

func extOf(path string) string {
	ext := filepath.Ext(path)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// readerFor returns the Reader registered for path's extension, or nil
// if none is registered.
func (r *Registry) readerFor(path string) Reader {
	return r.byExt[extOf(path)]
}

// SupportsExtension reports whether ext (without a leading dot, any
// case) has a registered Reader, independent of any particular path.
func (r *Registry) SupportsExtension(ext string) bool {
	_, ok := r.byExt[strings.ToLower(ext)]
	return ok
}

// Supports reports whether path should be indexed: it must have a
// registered extension and must not be a hidden file.
func (r *Registry) Supports(path string) bool {
	if pathutil.IsHidden(path) {
		return false
	}
	return r.readerFor(path) != nil
}

// Read dispatches to the registered reader for path's extension. It
// returns (nil, nil) for unsupported extensions.
func (r *Registry) Read(ctx context.Context, path string) ([]string, error) {
	reader := r.readerFor(path)
	if reader == nil {
		return nil, nil
	}
	return reader.Read(ctx, path)
}
