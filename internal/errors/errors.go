// Package errors defines the typed error kinds that cross component
// boundaries in duckindex. Kinds are distinguished by Go type, not by a
// string tag, so callers use errors.As to branch on them.
package errors

import (
	"fmt"
	"time"
)

// Kind names the documented error categories. The typed errors below
// do not carry a Kind field; to branch on a category, use errors.As
// against the concrete type.
type Kind string

const (
	KindNotInitialized Kind = "not_initialized"
	KindStore          Kind = "store"
	KindPath           Kind = "path"
	KindIO             Kind = "io"
	KindExtractor      Kind = "extractor"
	KindWatcher        Kind = "watcher"
)

// StoreError wraps any SQL-level failure with the operation that triggered it.
type StoreError struct {
	Op         string
	Underlying error
	Timestamp  time.Time
}

func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Underlying: err, Timestamp: time.Now()}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Underlying)
}

func (e *StoreError) Unwrap() error { return e.Underlying }

// PathError is returned when a path fails the absolute/UTF-8 contract
// required at component boundaries.
type PathError struct {
	Path   string
	Reason string
}

func NewPathError(path, reason string) *PathError {
	return &PathError{Path: path, Reason: reason}
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path %q: %s", e.Path, e.Reason)
}

// IoError wraps a stat/read/open failure. The caller decides whether to
// skip the file or fail the enclosing task.
type IoError struct {
	Op         string
	Path       string
	Underlying error
}

func NewIoError(op, path string, err error) *IoError {
	return &IoError{Op: op, Path: path, Underlying: err}
}

func (e *IoError) Error() string {
	return fmt.Sprintf("io: %s %s: %v", e.Op, e.Path, e.Underlying)
}

func (e *IoError) Unwrap() error { return e.Underlying }

// ExtractorError represents a malformed document or a missing expected
// member inside a supported file. It is logged and the file is left
// un-indexed; it is never fatal to the worker loop.
type ExtractorError struct {
	Reader     string
	Path       string
	Underlying error
}

func NewExtractorError(reader, path string, err error) *ExtractorError {
	return &ExtractorError{Reader: reader, Path: path, Underlying: err}
}

func (e *ExtractorError) Error() string {
	return fmt.Sprintf("extractor %s: %s: %v", e.Reader, e.Path, e.Underlying)
}

func (e *ExtractorError) Unwrap() error { return e.Underlying }

// WatcherError represents a failure to add or remove a watched path. It
// is surfaced directly to the UI.
type WatcherError struct {
	Op         string
	Path       string
	Underlying error
}

func NewWatcherError(op, path string, err error) *WatcherError {
	return &WatcherError{Op: op, Path: path, Underlying: err}
}

func (e *WatcherError) Error() string {
	return fmt.Sprintf("watcher: %s %s: %v", e.Op, e.Path, e.Underlying)
}

func (e *WatcherError) Unwrap() error { return e.Underlying }

// NotInitializedError marks a programming error: a component accessed
// the connection pool while it held no handle (a zero Pool, or one
// already closed). Callers should treat this
// as panic-worthy rather than retry it.
type NotInitializedError struct {
	Component string
}

func NewNotInitializedError(component string) *NotInitializedError {
	return &NotInitializedError{Component: component}
}

func (e *NotInitializedError) Error() string {
	return fmt.Sprintf("%s accessed before initialization", e.Component)
}
