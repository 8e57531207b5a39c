// Package extract turns heterogeneous document formats into a flat
// stream of text Items. Each Reader is stateless after construction, so
// the Registry hands the same instance to every concurrent caller —
// the same sharing model the teacher used for its parser pool entries.
package extract

import "context"

// Reader is a single-format content extractor.
type Reader interface {
	// Supports returns the lowercase extensions (without the leading
	// dot) this reader handles.
	Supports() []string

	// Read extracts the ordered sequence of text Items from path. An
	// error propagates to the caller, which decides policy — the
	// Worker logs and leaves the file un-indexed.
	Read(ctx context.Context, path string) ([]string, error)
}
