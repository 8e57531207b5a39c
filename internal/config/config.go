// Package config resolves duckindex's process-level tuning (worker
// count, OCR languages, storage knobs) the way the indexer's own
// predecessor split "how the engine runs" into a small on-disk file
// read once at startup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	kdlFileName = "duckindex.kdl"
	envTestDir  = "DUCKINDEX_TEST_DIR"
)

// Config is process-level tuning. It never holds the watched-root list
// or the extension whitelist — those live in the index store's config
// table (see internal/kvconfig) because the UI mutates them at
// runtime and they must survive independently of this file.
type Config struct {
	// Workers overrides the default max(1, NumCPU/2) worker count. 0 means auto.
	Workers int

	// OcrLanguages is the -l flag passed to the tesseract binary.
	OcrLanguages string

	// BusyTimeoutMs overrides the SQLite busy_timeout pragma.
	BusyTimeoutMs int
}

// Default returns the tuning defaults applied before any duckindex.kdl
// override is parsed.
func Default() *Config {
	return &Config{
		Workers:       0,
		OcrLanguages:  "eng+chi_sim",
		BusyTimeoutMs: 2147483647,
	}
}

// WorkerCount resolves the effective worker pool size.
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	n := runtime.NumCPU() / 2
	if n < 1 {
		n = 1
	}
	return n
}

// DataDir resolves the per-user data directory that holds index/, log/,
// and duckindex.kdl. DUCKINDEX_TEST_DIR relocates it for tests, per the
// spec's test-mode override.
func DataDir() (string, error) {
	if dir := os.Getenv(envTestDir); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve user config dir: %w", err)
	}
	return filepath.Join(base, "duckindex"), nil
}

// Load resolves the data directory and parses duckindex.kdl from it, if
// present, merging overrides onto Default().
func Load() (*Config, string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return nil, "", err
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, "", fmt.Errorf("config: create data dir: %w", err)
	}

	cfg := Default()
	kdlPath := filepath.Join(dataDir, kdlFileName)
	if _, err := os.Stat(kdlPath); err == nil {
		if err := mergeKDL(cfg, kdlPath); err != nil {
			return nil, "", err
		}
	}
	return cfg, dataDir, nil
}
