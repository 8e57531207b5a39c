package duckindex

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	t.Setenv("DUCKINDEX_TEST_DIR", t.TempDir())

	ctx := context.Background()
	svc, err := Open(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close(context.Background()) })
	return svc
}

func TestAddIndexPathRejectsDuplicate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	root := t.TempDir()

	require.NoError(t, svc.AddIndexPath(ctx, root))
	require.Error(t, svc.AddIndexPath(ctx, root))
}

func TestAddIndexPathIndexesAndSearchFindsContent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello world"), 0o644))

	require.NoError(t, svc.AddIndexPath(ctx, root))
	require.NoError(t, svc.WaitIdle(ctx, 20*time.Millisecond))

	results, err := svc.SearchItem(ctx, "world", 0, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "a.txt", results[0].File)
}

func TestDelIndexPathRejectsUnknownRoot(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	require.Error(t, svc.DelIndexPath(ctx, t.TempDir()))
}

func TestGetStatusReflectsIndexedContent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0o644))

	require.NoError(t, svc.AddIndexPath(ctx, root))
	require.NoError(t, svc.WaitIdle(ctx, 20*time.Millisecond))

	status, err := svc.GetStatus(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, status.Index.Files)
}
