package workerpool

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/duckindex/internal/indexstore"
	"github.com/standardbeagle/duckindex/internal/logging"
	"github.com/standardbeagle/duckindex/internal/model"
	"github.com/standardbeagle/duckindex/internal/storage"
	"github.com/standardbeagle/duckindex/internal/taskqueue"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestPool(t *testing.T) (*storage.Pool, *taskqueue.Queue, *indexstore.Store) {
	t.Helper()
	ctx := context.Background()
	pool, err := storage.Open(ctx, t.TempDir(), 5000)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close(context.Background()) })
	return pool, taskqueue.New(pool), indexstore.New(pool)
}

func TestPoolProcessesDirectoryAndFileTasks(t *testing.T) {
	sqlPool, queue, store := newTestPool(t)
	testLog, err := logging.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = testLog.Close() })

	dir := t.TempDir()
	filePath := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("hello world"), 0o644))

	_, err = queue.Submit(context.Background(), model.PathTypeDirectory, model.TaskTypeIndex, dir)
	require.NoError(t, err)
	_, err = store.WriteDirectory(context.Background(), dir, mustModTime(t, dir))
	require.NoError(t, err)
	_, err = queue.Submit(context.Background(), model.PathTypeFile, model.TaskTypeIndex, filePath)
	require.NoError(t, err)

	p := Start(context.Background(), 2, sqlPool, "eng", testLog)
	defer p.Stop()

	require.Eventually(t, func() bool {
		snap, err := queue.StatusSnapshot(context.Background())
		return err == nil && snap.Pending == 0 && snap.Running == 0
	}, 2*time.Second, 10*time.Millisecond)

	f, err := store.GetFile(context.Background(), filePath)
	require.NoError(t, err)
	require.Equal(t, "a.txt", f.Name)
}

func mustModTime(t *testing.T, path string) time.Time {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.ModTime()
}
