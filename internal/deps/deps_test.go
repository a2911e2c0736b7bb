package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func stubProgram(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, executable(name))
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestProbe(t *testing.T) {
	t.Run("downloader missing", func(t *testing.T) {
		t.Setenv("PATH", t.TempDir())
		got := Probe("reelscript-no-such-downloader")
		if len(got) != 2 {
			t.Fatalf("expected 2 statuses, got %d", len(got))
		}
		if got[0].Available || got[0].Detail == "" {
			t.Fatalf("downloader should be unavailable with detail: %+v", got[0])
		}
		if got[1].Available || !got[1].Optional {
			t.Fatalf("ffmpeg should be optional and missing: %+v", got[1])
		}
	})

	t.Run("blank command", func(t *testing.T) {
		got := Probe("  ")
		if got[0].Available || got[0].Detail != "command not configured" {
			t.Fatalf("unexpected status: %+v", got[0])
		}
	})

	t.Run("sidecar preferred over path", func(t *testing.T) {
		bundle := t.TempDir()
		onPath := t.TempDir()
		ytdlp := stubProgram(t, bundle, "yt-dlp")
		sidecar := stubProgram(t, bundle, "ffmpeg")
		stubProgram(t, onPath, "ffmpeg")
		t.Setenv("PATH", onPath)

		got := Probe(ytdlp)
		if !got[0].Available {
			t.Fatalf("downloader should resolve: %+v", got[0])
		}
		if !got[1].Available || got[1].Command != sidecar {
			t.Fatalf("expected sidecar %q, got %+v", sidecar, got[1])
		}
	})

	t.Run("path fallback", func(t *testing.T) {
		onPath := t.TempDir()
		want := stubProgram(t, onPath, "ffmpeg")
		t.Setenv("PATH", onPath)

		got := Probe("reelscript-no-such-downloader")
		if !got[1].Available || got[1].Command != want {
			t.Fatalf("expected %q, got %+v", want, got[1])
		}
	})
}
