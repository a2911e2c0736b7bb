package logging_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reelscript/internal/config"
	"reelscript/internal/logging"
	"reelscript/internal/services"
)

func TestNewFromConfigWritesRunLog(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, path, err := logging.NewFromConfig(&cfg, "abc123")
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if want := filepath.Join(cfg.Paths.LogDir, "run-abc123.log"); path != want {
		t.Fatalf("log path = %q, want %q", path, want)
	}
	logger.Info("batch started", logging.Int("titles", 3))

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "batch started") || !strings.Contains(string(content), "Titles: 3") {
		t.Fatalf("unexpected log content %q", content)
	}
}

func TestNewFromConfigWithoutRunIDSkipsFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	_, path, err := logging.NewFromConfig(&cfg, "")
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if path != "" {
		t.Fatalf("expected no log file, got %q", path)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleSubjectAndHumanizedFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "subject.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithKind(services.WithTitle(services.WithStage(context.Background(), "acquire"), "xFMJWJVLJxQ"), "ai")
	logging.WithContext(ctx, logger).Info("audio acquired",
		logging.Int64("audio_bytes", 3*1024*1024),
		logging.String("audio_path", "/tmp/x.mp3"),
	)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(content)
	for _, want := range []string{"AI · xFMJWJVLJxQ (acquire)", "Audio: 3.0 MiB", "+ 1 more field hidden"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewJSONLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("json message", logging.Error(errors.New("boom")), logging.Duration("elapsed", 1500*time.Millisecond))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(content)
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, `"error":"boom"`) || !strings.Contains(out, `"ts":`) || !strings.Contains(out, `"elapsed":"1.5s"`) {
		t.Fatalf("unexpected json output %q", out)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithTitle(ctx, "KrC8ye3adAM")
	ctx = services.WithStage(ctx, "persist")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logging.WithContext(ctx, logger).Info("contextual log")

	out := buf.String()
	for _, want := range []string{"run_id=run-1", "title=KrC8ye3adAM", "stage=persist"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logging.WarnWithContext(logger, "language search failed", "subtitle_search_failed")
	out := buf.String()
	for _, want := range []string{"event_type=subtitle_search_failed", "error_hint=", "impact="} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestPruneRunLogs(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "run-old.log")
	current := filepath.Join(dir, "run-current.log")
	unrelated := filepath.Join(dir, "notes.txt")
	for _, p := range []string{old, current, unrelated} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	stale := time.Now().AddDate(0, 0, -40)
	for _, p := range []string{old, current, unrelated} {
		if err := os.Chtimes(p, stale, stale); err != nil {
			t.Fatal(err)
		}
	}

	if removed := logging.PruneRunLogs(logging.NewNop(), dir, 30, current); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be removed", old)
	}
	for _, p := range []string{current, unrelated} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected %s to remain: %v", p, err)
		}
	}
	if removed := logging.PruneRunLogs(nil, dir, 0, ""); removed != 0 {
		t.Fatalf("zero retention should disable pruning")
	}
}
