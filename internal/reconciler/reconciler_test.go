package reconciler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/duckindex/internal/extract"
	"github.com/standardbeagle/duckindex/internal/indexstore"
	"github.com/standardbeagle/duckindex/internal/model"
	"github.com/standardbeagle/duckindex/internal/storage"
	"github.com/standardbeagle/duckindex/internal/taskqueue"
)

func newTestReconciler(t *testing.T) (*Reconciler, *indexstore.Store, *taskqueue.Queue) {
	t.Helper()
	ctx := context.Background()
	pool, err := storage.Open(ctx, t.TempDir(), 5000)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close(context.Background()) })

	store := indexstore.New(pool)
	queue := taskqueue.New(pool)
	registry := extract.NewRegistry("eng")
	return New(store, queue, registry), store, queue
}

func TestSubmitIndexAllFilesOnNewDirectory(t *testing.T) {
	r, _, q := newTestReconciler(t)
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	require.NoError(t, r.SubmitIndexAllFiles(ctx, dir))

	snap, err := q.StatusSnapshot(ctx)
	require.NoError(t, err)
	// dir itself, dir/a.txt, dir/sub: three INDEX submissions.
	require.EqualValues(t, 3, snap.Pending)
}

func TestSubmitIndexAllFilesIsIdempotent(t *testing.T) {
	r, store, q := newTestReconciler(t)
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644))

	require.NoError(t, r.SubmitIndexAllFiles(ctx, dir))

	// Drain the queue and simulate the worker pool's side effects so the
	// store matches what a real pass would have produced.
	for {
		task, ok, err := q.Claim(ctx, "test")
		require.NoError(t, err)
		if !ok {
			break
		}
		switch task.PathType {
		case model.PathTypeDirectory:
			info, err := os.Stat(task.Path)
			require.NoError(t, err)
			_, err = store.WriteDirectory(ctx, task.Path, info.ModTime())
			require.NoError(t, err)
		case model.PathTypeFile:
			info, err := os.Stat(task.Path)
			require.NoError(t, err)
			require.NoError(t, store.WriteFileItems(ctx, task.Path, info.ModTime(), []string{"hello"}))
		}
		require.NoError(t, q.Complete(ctx, task.ID))
	}

	// A second pass over an unchanged tree submits nothing.
	require.NoError(t, r.SubmitIndexAllFiles(ctx, dir))
	snap, err := q.StatusSnapshot(ctx)
	require.NoError(t, err)
	require.Zero(t, snap.Pending)
}

func TestSubmitIndexAllFilesOnMissingPathCleansUpStoredState(t *testing.T) {
	r, store, _ := newTestReconciler(t)
	ctx := context.Background()
	dir := t.TempDir()

	_, err := store.WriteDirectory(ctx, dir, time.Now())
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, r.SubmitIndexAllFiles(ctx, dir))

	_, err = store.GetDirectory(ctx, dir)
	require.Error(t, err)
}

func TestSubmitIndexAllFilesSkipsUnsupportedExtensions(t *testing.T) {
	r, _, q := newTestReconciler(t)
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bin"), []byte{0x00, 0x01}, 0o644))

	require.NoError(t, r.SubmitIndexAllFiles(ctx, dir))

	snap, err := q.StatusSnapshot(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, snap.Pending) // directory only, not a.bin
}
