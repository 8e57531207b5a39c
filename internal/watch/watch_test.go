package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/duckindex/internal/logging"
)

func newTestMonitor(t *testing.T, onEvent Handler) *Monitor {
	t.Helper()
	log, err := logging.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })

	m, err := New(log, onEvent)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestAddPathReceivesWriteEvents(t *testing.T) {
	dir := t.TempDir()
	var mu sync.Mutex
	var seen []string

	m := newTestMonitor(t, func(path string) {
		mu.Lock()
		seen = append(seen, path)
		mu.Unlock()
	})
	require.NoError(t, m.AddPath(dir))

	target := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(target, []byte("hello"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, p := range seen {
			if p == target {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAddPathIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	m := newTestMonitor(t, func(string) {})
	require.NoError(t, m.AddPath(dir))
	require.NoError(t, m.AddPath(dir))
}

func TestDelPathStopsDelivery(t *testing.T) {
	dir := t.TempDir()
	var mu sync.Mutex
	count := 0

	m := newTestMonitor(t, func(path string) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	require.NoError(t, m.AddPath(dir))
	require.NoError(t, m.DelPath(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644))
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Zero(t, count)
}
