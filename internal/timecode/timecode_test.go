package timecode

import (
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"00:00:01,000", 1000},
		{"00:00:03,500", 3500},
		{"01:02:03,004", 3723004},
		{"00:00:02.250", 2250},
		{"00:00:02", 2000},
		{"00:00:02,5", 2500},
		{"00:00:02,12345", 2123},
		{" 00:00:10,000 ", 10000},
		{"100:00:00,000", 360000000},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("Parse(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "00:01", "aa:00:00,000", "00:00:00,abc", "00:-1:00,000", "1:2:3:4"} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestFormatRoundTrip(t *testing.T) {
	for _, ms := range []int64{0, 1, 999, 1000, 59_999, 3_600_000, 3_723_004, 86_399_999} {
		formatted := Format(ms)
		back, err := Parse(formatted)
		if err != nil {
			t.Fatalf("Parse(Format(%d)) error: %v", ms, err)
		}
		if back != ms {
			t.Fatalf("round trip %d -> %q -> %d", ms, formatted, back)
		}
	}
	if got := Format(-5); got != "00:00:00,000" {
		t.Fatalf("expected negative to clamp, got %q", got)
	}
}

func TestFromSeconds(t *testing.T) {
	if ms, ok := FromSeconds(12.3456); !ok || ms != 12345 {
		t.Fatalf("unexpected conversion %d %v", ms, ok)
	}
	if ms, ok := FromSeconds(-1.5); !ok || ms != -1500 {
		t.Fatalf("unexpected negative conversion %d %v", ms, ok)
	}
	if _, ok := FromSeconds(math.NaN()); ok {
		t.Fatal("expected NaN to be rejected")
	}
	if _, ok := FromSeconds(math.Inf(1)); ok {
		t.Fatal("expected Inf to be rejected")
	}
}
