package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"reelscript/internal/config"
)

// ConfigOption adjusts a fixture config after its temp tree exists.
type ConfigOption func(t testing.TB, root string, cfg *config.Config)

// NewConfig returns a config rooted in a fresh temp directory. It uses a
// SQLite catalog, placeholder credentials, and no pacing between titles.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(root, "staging")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Paths.StateDir = filepath.Join(root, "state")
	cfg.Paths.OpenSubtitlesCacheDir = filepath.Join(root, "cache", "opensubtitles")
	cfg.Catalog.Driver = config.CatalogSQLite
	cfg.Catalog.Path = filepath.Join(root, "catalog.db")
	cfg.Transcription.APIKey = "test"
	cfg.OpenSubtitles.APIKey = "test"
	cfg.OpenSubtitles.Username = "tester"
	cfg.OpenSubtitles.Password = "secret"
	cfg.Pacing.AISeconds = 0
	cfg.Pacing.SubtitleSeconds = 0

	for _, opt := range opts {
		opt(t, root, &cfg)
	}
	return &cfg
}

// WithCatalogBatchSize overrides the number of segments per insert.
func WithCatalogBatchSize(size int) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) {
		cfg.Catalog.BatchSize = size
	}
}

// WithStubbedBinaries puts no-op executables first on PATH for the test.
// Without names, yt-dlp and ffmpeg are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(t testing.TB, root string, _ *config.Config) {
		if len(names) == 0 {
			names = []string{"yt-dlp", "ffmpeg"}
		}
		bin := filepath.Join(root, "bin")
		if err := os.MkdirAll(bin, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", bin, err)
		}
		for _, name := range names {
			if err := os.WriteFile(filepath.Join(bin, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
				t.Fatalf("stub %s: %v", name, err)
			}
		}
		t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// BaseDir returns the temp root behind a fixture config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StagingDir)
}
