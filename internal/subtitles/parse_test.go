package subtitles

import (
	"testing"
	"time"
)

func TestParseSkipsMalformedBlocks(t *testing.T) {
	content := "1\n00:00:01,000 --> 00:00:03,500\nEn vazhi\nthani vazhi\n\n" +
		"2\nno timecode here\nJust text\n\n" +
		"3\n00:00:05,000 --> 00:00:05,200\n<i>Naan oru thadava sonna</i>\n"
	segs := Parse(content)
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(segs), segs)
	}
	if segs[0].Text != "En vazhi thani vazhi" {
		t.Fatalf("unexpected first text %q", segs[0].Text)
	}
	if segs[0].Start != time.Second || segs[0].End != 3500*time.Millisecond || !segs[0].HasEnd {
		t.Fatalf("unexpected first timing %+v", segs[0])
	}
	if segs[1].Text != "Naan oru thadava sonna" {
		t.Fatalf("expected tags stripped, got %q", segs[1].Text)
	}
	if got := segs[1].End - segs[1].Start; got != MinCueDuration {
		t.Fatalf("expected 1s floor, got %s", got)
	}
}

func TestParseStripsAnnotationsAndShortText(t *testing.T) {
	content := "1\r\n00:00:01,000 --> 00:00:02,000\r\n[MUSIC]\r\n\r\n" +
		"2\r\n00:00:03,000 --> 00:00:04,000 X1:100 X2:200\r\n(laughs) Ok\r\n\r\n" +
		"3\r\n00:00:05.000 --> 00:00:07.000\r\n{\\an8}Mass da (whispers) [door]\r\n"
	segs := Parse(content)
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d: %+v", len(segs), segs)
	}
	if segs[0].Text != "Mass da" {
		t.Fatalf("unexpected text %q", segs[0].Text)
	}
	if segs[0].Start != 5*time.Second || segs[0].End != 7*time.Second {
		t.Fatalf("unexpected timing %+v", segs[0])
	}
}

func TestParseHandlesMissingIndexAndExtraBlankLines(t *testing.T) {
	content := "\n\n00:01:00,000 --> 00:01:02,000\nFirst line\n\n\n  \n00:01:03,000 --> 00:01:04,000\nSecond line\n"
	segs := Parse(content)
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].Start != time.Minute {
		t.Fatalf("unexpected start %s", segs[0].Start)
	}
}

func TestParseRejectsBadTimecodes(t *testing.T) {
	content := "1\n00:00:xx,000 --> 00:00:02,000\nBroken start\n\n2\n00:00:01,000 --> soon\nBroken end\n"
	if segs := Parse(content); len(segs) != 0 {
		t.Fatalf("expected no segments, got %+v", segs)
	}
}

func TestParseEmpty(t *testing.T) {
	if segs := Parse("   \n\n"); len(segs) != 0 {
		t.Fatalf("expected no segments, got %+v", segs)
	}
}
