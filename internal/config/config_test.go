package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	require.Equal(t, "eng+chi_sim", cfg.OcrLanguages)
	require.Equal(t, 0, cfg.Workers)
}

func TestWorkerCountOverride(t *testing.T) {
	cfg := Default()
	cfg.Workers = 4
	require.Equal(t, 4, cfg.WorkerCount())
}

func TestDataDirHonorsTestDirEnv(t *testing.T) {
	t.Setenv("DUCKINDEX_TEST_DIR", "/tmp/duckindex-test-xyz")
	dir, err := DataDir()
	require.NoError(t, err)
	require.Equal(t, "/tmp/duckindex-test-xyz", dir)
}

func TestLoadMergesKDLOverrides(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("DUCKINDEX_TEST_DIR", dataDir)

	kdlContent := "workers 3\nocr_languages \"eng\"\nbusy_timeout_ms 1000\n"
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "duckindex.kdl"), []byte(kdlContent), 0o644))

	cfg, resolvedDir, err := Load()
	require.NoError(t, err)
	require.Equal(t, dataDir, resolvedDir)
	require.Equal(t, 3, cfg.Workers)
	require.Equal(t, "eng", cfg.OcrLanguages)
	require.Equal(t, 1000, cfg.BusyTimeoutMs)
}

func TestLoadWithoutKDLFileUsesDefaults(t *testing.T) {
	t.Setenv("DUCKINDEX_TEST_DIR", t.TempDir())
	cfg, _, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default().OcrLanguages, cfg.OcrLanguages)
}
