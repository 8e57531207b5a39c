//go:build windows

package pathutil

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// IsHidden overrides the POSIX leading-dot rule on Windows with the
// FILE_ATTRIBUTE_HIDDEN bit, per the extractor registry's hidden-file
// contract.
func IsHidden(path string) bool {
	p, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return false
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return false
	}
	return attrs&windows.FILE_ATTRIBUTE_HIDDEN != 0
}
