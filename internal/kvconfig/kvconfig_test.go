package kvconfig

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/duckindex/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	pool, err := storage.Open(ctx, t.TempDir(), 5000)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close(context.Background()) })
	return New(pool)
}

func TestIndexDirPathsDefaultsEmpty(t *testing.T) {
	s := newTestStore(t)
	paths, err := s.IndexDirPaths(context.Background())
	require.NoError(t, err)
	require.Empty(t, paths)
}

func TestSetIndexDirPathsRoundTrips(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SetIndexDirPaths(ctx, []string{"/a", "/b"}))

	paths, err := s.IndexDirPaths(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"/a", "/b"}, paths)
}

func TestExtensionWhitelistIsSeeded(t *testing.T) {
	s := newTestStore(t)
	raw, err := s.ExtensionWhitelist(context.Background())
	require.NoError(t, err)
	require.Contains(t, raw, "Documents")
}
