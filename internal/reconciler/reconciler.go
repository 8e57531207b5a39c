// Package reconciler implements the single convergent function that
// keeps the index store's view of a path consistent with the
// filesystem: SubmitIndexAllFiles. It is the only bridge between "the
// world changed" (a watcher event, a startup scan, an add_index_path
// call) and the durable task queue.
//
// Grounded on the teacher's FileWatcher/FileProcessor split: the
// teacher walks a directory tree and pushes work onto a channel this
// package walks the same tree and submits work onto the durable queue
// instead, using an explicit worklist rather than call recursion so a
// deep tree doesn't grow the Go call stack.
package reconciler

import (
	"context"
	"os"
	"path/filepath"

	"github.com/standardbeagle/duckindex/internal/extract"
	"github.com/standardbeagle/duckindex/internal/indexstore"
	"github.com/standardbeagle/duckindex/internal/model"
	"github.com/standardbeagle/duckindex/internal/taskqueue"
)

// Reconciler compares the store's view of a path against the live
// filesystem and submits exactly the tasks needed to reconcile them.
type Reconciler struct {
	store    *indexstore.Store
	queue    *taskqueue.Queue
	registry *extract.Registry
}

func New(store *indexstore.Store, queue *taskqueue.Queue, registry *extract.Registry) *Reconciler {
	return &Reconciler{store: store, queue: queue, registry: registry}
}

// SubmitIndexAllFiles is the single entry point. It is convergent and
// idempotent: running it twice on an unchanged tree submits nothing;
// running it after any create/modify/rename/delete restores
// consistency by submitting work proportional to what changed.
func (r *Reconciler) SubmitIndexAllFiles(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return r.handleMissing(ctx, path)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return r.handleFile(ctx, path, info)
	}
	return r.handleDirectory(ctx, path, info)
}

// handleMissing cleans up any stored state for a path that no longer
// exists on disk. Both calls are no-ops if the path was never indexed.
func (r *Reconciler) handleMissing(ctx context.Context, path string) error {
	if err := r.store.DeleteDirectory(ctx, path); err != nil {
		return err
	}
	return r.store.DeleteFile(ctx, path)
}

func (r *Reconciler) handleFile(ctx context.Context, path string, info os.FileInfo) error {
	if err := r.store.DeleteFile(ctx, path); err != nil {
		return err
	}
	if !r.registry.Supports(path) {
		return nil
	}
	_, err := r.queue.Submit(ctx, model.PathTypeFile, model.TaskTypeIndex, path)
	return err
}

// worklistEntry is one unit of a directory still to be reconciled.
type worklistEntry struct {
	path string
	info os.FileInfo
}

func (r *Reconciler) handleDirectory(ctx context.Context, path string, info os.FileInfo) error {
	worklist := []worklistEntry{{path: path, info: info}}

	for len(worklist) > 0 {
		n := len(worklist) - 1
		entry := worklist[n]
		worklist = worklist[:n]

		children, err := r.reconcileOneDirectory(ctx, entry.path, entry.info)
		if err != nil {
			return err
		}
		worklist = append(worklist, children...)
	}
	return nil
}

// reconcileOneDirectory reconciles exactly one directory level (not its
// descendants) and returns the sub-directories that still need
// reconciling, to be pushed onto the caller's worklist.
func (r *Reconciler) reconcileOneDirectory(ctx context.Context, path string, info os.FileInfo) ([]worklistEntry, error) {
	existing, err := r.store.GetDirectory(ctx, path)
	wasIndexed := err == nil

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	changed := !wasIndexed || !existing.ModifiedTime.Equal(info.ModTime())
	if changed {
		if _, err := r.queue.Submit(ctx, model.PathTypeDirectory, model.TaskTypeIndex, path); err != nil {
			return nil, err
		}
	}

	onDisk := make(map[string]os.DirEntry, len(entries))
	for _, e := range entries {
		onDisk[e.Name()] = e
	}

	if wasIndexed && changed {
		if err := r.pruneDeletedChildren(ctx, path, onDisk); err != nil {
			return nil, err
		}
	}

	var subdirs []worklistEntry
	for _, e := range entries {
		childPath := filepath.Join(path, e.Name())
		childInfo, err := e.Info()
		if err != nil {
			continue // vanished between ReadDir and Info; next pass picks it up
		}

		if childInfo.IsDir() {
			subdirs = append(subdirs, worklistEntry{path: childPath, info: childInfo})
			continue
		}

		if err := r.reconcileChildFile(ctx, childPath, childInfo); err != nil {
			return nil, err
		}
	}
	return subdirs, nil
}

// pruneDeletedChildren removes stored children that no longer exist on
// disk. Only called when the directory itself changed, since an
// unchanged directory's modified_time means nothing underneath it was
// added or removed (a rename or delete updates the parent's mtime on
// every platform this runs on).
func (r *Reconciler) pruneDeletedChildren(ctx context.Context, path string, onDisk map[string]os.DirEntry) error {
	indexedDirs, indexedFiles, err := r.store.GetSubDirectoriesAndFiles(ctx, path)
	if err != nil {
		return err
	}
	for _, d := range indexedDirs {
		if _, ok := onDisk[d.Name]; !ok {
			if err := r.store.DeleteDirectory(ctx, d.Path); err != nil {
				return err
			}
		}
	}
	for _, f := range indexedFiles {
		if _, ok := onDisk[f.Name]; !ok {
			if err := r.store.DeleteFile(ctx, f.Path); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Reconciler) reconcileChildFile(ctx context.Context, path string, info os.FileInfo) error {
	existing, err := r.store.GetFile(ctx, path)
	switch {
	case err == nil && !existing.ModifiedTime.Equal(info.ModTime()):
		if err := r.store.DeleteFile(ctx, path); err != nil {
			return err
		}
		if !r.registry.Supports(path) {
			return nil
		}
		_, err := r.queue.Submit(ctx, model.PathTypeFile, model.TaskTypeIndex, path)
		return err
	case err != nil:
		if !r.registry.Supports(path) {
			return nil
		}
		_, err := r.queue.Submit(ctx, model.PathTypeFile, model.TaskTypeIndex, path)
		return err
	default:
		return nil
	}
}
