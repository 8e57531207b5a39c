//go:build !windows

package pathutil

import "path/filepath"

// IsHidden reports whether the basename of path marks it hidden on
// this platform. POSIX: a leading dot. See pathutil_windows.go for the
// FILE_ATTRIBUTE_HIDDEN variant.
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return len(base) > 0 && base[0] == '.'
}
