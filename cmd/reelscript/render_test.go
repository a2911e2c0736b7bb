package main

import (
	"errors"
	"strings"
	"testing"
	"time"

	"reelscript/internal/dialogue"
	"reelscript/internal/ingest"
	"reelscript/internal/preflight"
)

func TestRenderSummary(t *testing.T) {
	summary := ingest.Summary{
		Results: []ingest.Result{
			{Title: dialogue.Title{Name: "Vikram", Year: 2022}, Kind: "ai", Success: true, Segments: 1234, Elapsed: 2 * time.Second},
			{Title: dialogue.Title{Name: "Kaithi", Year: 2019}, Kind: "ai", Stage: "acquire", Reason: "timeout", Err: errors.New("deadline")},
		},
		Succeeded:     1,
		Failed:        1,
		TotalSegments: 1234,
		Elapsed:       3 * time.Second,
	}

	out := renderSummary(summary, false)
	for _, want := range []string{"Vikram (2022)", "Kaithi (2019)", "1,234", "timeout at acquire", "Succeeded:", "Failed:"} {
		requireContains(t, out, want)
	}
	if strings.Contains(out, ansiReset) {
		t.Fatalf("expected no ANSI codes without colorize:\n%s", out)
	}
	if strings.Contains(out, "Canceled") {
		t.Fatalf("unexpected cancel line:\n%s", out)
	}

	summary.Canceled = true
	summary.Skipped = 4
	requireContains(t, renderSummary(summary, false), "4 titles not started")
}

func TestRenderResultDryRunShowsSample(t *testing.T) {
	res := ingest.Result{
		Title:    dialogue.Title{ExternalVideoID: "abc123", Name: "Jailer", Year: 2023},
		Kind:     "subtitles",
		Success:  true,
		DryRun:   true,
		Segments: 2,
		Sample: []dialogue.Segment{
			{Text: "வணக்கம்", StartMS: 61_500, DurationMS: 2000, Language: "tamil"},
		},
	}
	out := strings.Join(renderResult(res, false), "\n")
	requireContains(t, out, "dry run, catalog untouched")
	requireContains(t, out, "00:01:01,500")
	requireContains(t, out, "வணக்கம்")
}

func TestRenderResultFailure(t *testing.T) {
	res := ingest.Result{
		Title:  dialogue.Title{ExternalVideoID: "abc123", Name: "Jailer"},
		Kind:   "ai",
		Stage:  "extract",
		Reason: "malformed_output",
		Err:    errors.New("no JSON array"),
	}
	out := strings.Join(renderResult(res, true), "\n")
	requireContains(t, out, "[ERROR] malformed_output at extract")
	requireContains(t, out, ansiRed)
}

func TestRenderPreflightKinds(t *testing.T) {
	lines := renderPreflight([]preflight.Result{
		{Name: "Staging directory", Passed: true, Detail: "/tmp"},
		{Name: "ffmpeg", Optional: true, Detail: "not found"},
		{Name: "OpenSubtitles", Skipped: true, Detail: "skipped"},
		{Name: "Catalog", Detail: "locked"},
	}, false)
	out := strings.Join(lines, "\n")
	for _, want := range []string{"[OK] /tmp", "[WARN] not found", "[INFO] skipped", "[ERROR] locked"} {
		requireContains(t, out, want)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate short = %q", got)
	}
	if got := truncate("வணக்கம் நண்பா", 5); got != "வணக்…" {
		t.Fatalf("truncate runes = %q", got)
	}
}
