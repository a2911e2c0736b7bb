package audio

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reelscript/internal/services"
)

type stubExecutor struct {
	results []error
	writes  []string
	calls   [][]string
	block   bool
}

func (s *stubExecutor) Run(ctx context.Context, _ string, args []string) error {
	s.calls = append(s.calls, append([]string(nil), args...))
	idx := len(s.calls) - 1
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if idx < len(s.writes) && s.writes[idx] != "" {
		dir := filepath.Dir(args[indexOf(args, "--output")+1])
		if err := os.WriteFile(filepath.Join(dir, s.writes[idx]), []byte("audio"), 0o644); err != nil {
			return err
		}
	}
	if idx < len(s.results) {
		return s.results[idx]
	}
	return nil
}

func indexOf(args []string, flag string) int {
	for i, a := range args {
		if a == flag {
			return i
		}
	}
	return -1
}

func newTestAcquirer(exec Executor, timeout time.Duration) *Acquirer {
	return New(Options{Binary: "yt-dlp", Executor: exec, AttemptTimeout: timeout})
}

func TestAcquirePrimarySucceeds(t *testing.T) {
	dir := t.TempDir()
	stub := &stubExecutor{writes: []string{"xFMJWJVLJxQ.mp3"}}
	path, err := newTestAcquirer(stub, time.Second).Acquire(context.Background(), "https://www.youtube.com/watch?v=xFMJWJVLJxQ", dir)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if filepath.Base(path) != "xFMJWJVLJxQ.mp3" {
		t.Fatalf("unexpected path %q", path)
	}
	if len(stub.calls) != 1 {
		t.Fatalf("expected a single attempt, got %d", len(stub.calls))
	}
	args := strings.Join(stub.calls[0], " ")
	for _, want := range []string{"--extract-audio", "--audio-format mp3", "--audio-quality 5", "--no-playlist", "--quiet", "--no-warnings"} {
		if !strings.Contains(args, want) {
			t.Fatalf("expected %q in %q", want, args)
		}
	}
}

func TestAcquireFallsBackOnToolFailure(t *testing.T) {
	dir := t.TempDir()
	stub := &stubExecutor{
		results: []error{&ExitError{Code: 1, Stderr: "ffmpeg not found"}, nil},
		writes:  []string{"", "KrC8ye3adAM.webm"},
	}
	path, err := newTestAcquirer(stub, time.Second).Acquire(context.Background(), "https://youtu.be/KrC8ye3adAM", dir)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if filepath.Ext(path) != ".webm" {
		t.Fatalf("unexpected path %q", path)
	}
	if len(stub.calls) != 2 || stub.calls[1][0] != "-f" || stub.calls[1][1] != fallbackFormat {
		t.Fatalf("unexpected fallback call %v", stub.calls)
	}
}

func TestAcquireBothStrategiesFail(t *testing.T) {
	stub := &stubExecutor{results: []error{&ExitError{Code: 1}, &ExitError{Code: 2}}}
	_, err := newTestAcquirer(stub, time.Second).Acquire(context.Background(), "https://youtu.be/x", t.TempDir())
	if services.Reason(err) != "tool_failed" {
		t.Fatalf("expected tool_failed, got %q (%v)", services.Reason(err), err)
	}
}

func TestAcquireTimeoutSkipsFallback(t *testing.T) {
	stub := &stubExecutor{block: true}
	_, err := newTestAcquirer(stub, 20*time.Millisecond).Acquire(context.Background(), "https://youtu.be/x", t.TempDir())
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if len(stub.calls) != 1 {
		t.Fatalf("timeout must not trigger fallback, got %d calls", len(stub.calls))
	}
	if stage, _ := services.StageOf(err); stage != services.StageAcquire {
		t.Fatalf("unexpected stage %q", stage)
	}
}

func TestAcquireMissingBinary(t *testing.T) {
	stub := &stubExecutor{results: []error{exec.ErrNotFound}}
	_, err := newTestAcquirer(stub, time.Second).Acquire(context.Background(), "https://youtu.be/x", t.TempDir())
	if services.Reason(err) != "tool_missing" {
		t.Fatalf("expected tool_missing, got %v", err)
	}
	if len(stub.calls) != 1 {
		t.Fatalf("missing binary must not trigger fallback")
	}
}

func TestAcquireNoAudioFile(t *testing.T) {
	stub := &stubExecutor{writes: []string{"thumbnail.jpg"}}
	_, err := newTestAcquirer(stub, time.Second).Acquire(context.Background(), "https://youtu.be/x", t.TempDir())
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAcquireRequiresURL(t *testing.T) {
	_, err := newTestAcquirer(&stubExecutor{}, time.Second).Acquire(context.Background(), " ", t.TempDir())
	if services.Reason(err) != "invalid_source" {
		t.Fatalf("expected invalid_source, got %v", err)
	}
}

func TestMIMEType(t *testing.T) {
	cases := map[string]string{
		"a.mp3":  "audio/mpeg",
		"a.M4A":  "audio/mp4",
		"a.webm": "audio/webm",
		"a.opus": "audio/ogg",
		"a.ogg":  "audio/ogg",
		"a.wav":  "audio/wav",
		"a.flac": "audio/flac",
		"a.aac":  "audio/aac",
		"a.bin":  DefaultMIMEType,
	}
	for path, want := range cases {
		if got := MIMEType(path); got != want {
			t.Fatalf("MIMEType(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestResolveBinaryFallsBackToLocalBin(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PATH", t.TempDir())
	bin := filepath.Join(home, ".local", "bin")
	if err := os.MkdirAll(bin, 0o755); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(bin, "yt-dlp-test")
	if err := os.WriteFile(target, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	got, ok := ResolveBinary("yt-dlp-test")
	if !ok || got != target {
		t.Fatalf("ResolveBinary = %q, %v; want %q", got, ok, target)
	}
	if _, ok := ResolveBinary("definitely-missing-binary"); ok {
		t.Fatal("expected missing binary to be unresolved")
	}
}
