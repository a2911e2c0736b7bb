package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"reelscript/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "acquire", "yt-dlp", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"acquire", "yt-dlp", "failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestStageOfSurvivesFmtWrapping(t *testing.T) {
	inner := services.Wrap(services.ErrTimeout, "acquire", "download", "timed out", nil)
	outer := fmt.Errorf("ingest vip: %w", inner)
	stage, ok := services.StageOf(outer)
	if !ok || stage != "acquire" {
		t.Fatalf("unexpected stage %q ok=%v", stage, ok)
	}
	if _, ok := services.StageOf(errors.New("plain")); ok {
		t.Fatal("expected no stage for plain error")
	}
}

func TestReasonMapping(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrTimeout, "acquire", "", "", nil), "timeout"},
		{fmt.Errorf("poll: %w", context.DeadlineExceeded), "timeout"},
		{services.Wrap(services.ErrToolMissing, "acquire", "", "", nil), "tool_missing"},
		{services.Wrap(services.ErrExternalTool, "acquire", "", "", nil), "tool_failed"},
		{services.Wrap(services.ErrNotFound, "extract", "", "", nil), "not_found"},
		{services.Wrap(services.ErrValidation, "extract", "", "", nil), "malformed_output"},
		{services.Wrap(services.ErrNoContent, "extract", "", "", nil), "empty"},
		{services.Wrap(services.ErrInvalidSource, "validate", "", "placeholder id", nil), "invalid_source"},
		{services.Wrap(services.ErrConfiguration, "extract", "", "", nil), "configuration"},
		{services.Wrap(services.ErrPersistence, "persist", "", "", nil), "persistence"},
		{context.Canceled, "canceled"},
		{services.Wrap(services.ErrTransient, "extract", "", "", nil), "unavailable"},
	}
	for _, tc := range cases {
		if got := services.Reason(tc.err); got != tc.want {
			t.Fatalf("Reason(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
