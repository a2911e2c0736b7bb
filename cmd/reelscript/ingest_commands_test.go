package main

import (
	"os"
	"path/filepath"
	"testing"

	"reelscript/internal/config"
	"reelscript/internal/dialogue"
)

func TestBatchRejectsUnknownKind(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"batch", "--kind", "video"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	requireContains(t, err.Error(), "invalid --kind")
}

func TestBatchWithNoMatchesIsANoop(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"batch", "--filter", "no such title anywhere"}, env.configPath)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	requireContains(t, out, "No titles match")
}

func TestBatchPlaceholderSeedsFailValidation(t *testing.T) {
	env := setupCLITestEnv(t)
	seedPath := filepath.Join(env.baseDir, "seeds.toml")
	seedData := `
[[ai]]
name = "Unreleased"
video_id = "placeholder_unreleased"
year = 2026
`
	if err := os.WriteFile(seedPath, []byte(seedData), 0o644); err != nil {
		t.Fatalf("write seeds: %v", err)
	}

	out, _, err := runCLI(t, []string{"batch", "--seeds", seedPath, "--dry-run", "--skip-preflight"}, env.configPath)
	if err == nil {
		t.Fatal("expected batch with failed titles to return an error")
	}
	requireContains(t, err.Error(), "titles failed")
	requireContains(t, out, "invalid_source at validate")
}

func TestTranscribeRequiresCredentials(t *testing.T) {
	env := setupCLITestEnv(t, func(cfg *config.Config) {
		cfg.Transcription.APIKey = ""
	})
	_, _, err := runCLI(t, []string{
		"transcribe",
		"--url", "https://www.youtube.com/watch?v=IfkZMODd0A0",
		"--title", "Vikram",
		"--dry-run",
	}, env.configPath)
	if err == nil {
		t.Fatal("expected missing api key error")
	}
	requireContains(t, err.Error(), "transcription.api_key")
}

func TestSubtitlesRequiresVideoID(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"subtitles", "--title", "Vikram", "--imdb", "tt9179430"}, env.configPath)
	if err == nil {
		t.Fatal("expected required flag error")
	}
	requireContains(t, err.Error(), "video-id")
}

func TestDistinctKinds(t *testing.T) {
	got := distinctKinds([]dialogue.Source{
		{Kind: dialogue.KindSubtitles},
		{Kind: dialogue.KindAI},
		{Kind: dialogue.KindSubtitles},
	})
	if len(got) != 2 || got[0] != dialogue.KindAI || got[1] != dialogue.KindSubtitles {
		t.Fatalf("distinctKinds = %v", got)
	}
}
