// Package pathutil centralizes the absolute-path and UTF-8 contract
// every component boundary in duckindex relies on: paths stored in the
// index are always absolute, OS-native, and valid UTF-8, and a
// violation fails loudly rather than silently losing data.
package pathutil

import (
	"path/filepath"
	"unicode/utf8"

	"github.com/standardbeagle/duckindex/internal/errors"
)

// Canonicalize validates that path is absolute and valid UTF-8, then
// cleans it (resolving "." and ".." elements) so that two different
// spellings of the same location always compare equal in the store.
func Canonicalize(path string) (string, error) {
	if !utf8.ValidString(path) {
		return "", errors.NewPathError(path, "contains non-UTF-8 bytes")
	}
	if !filepath.IsAbs(path) {
		return "", errors.NewPathError(path, "must be absolute")
	}
	return filepath.Clean(path), nil
}

// IsImmediateChild reports whether candidate is exactly one path
// component below parent, using the OS-native separator so a prefix
// match like "/a/b" never also matches "/a/bc".
func IsImmediateChild(parent, candidate string) bool {
	prefix := parent + string(filepath.Separator)
	if len(candidate) <= len(prefix) || candidate[:len(prefix)] != prefix {
		return false
	}
	rest := candidate[len(prefix):]
	for _, r := range rest {
		if r == filepath.Separator {
			return false
		}
	}
	return true
}
