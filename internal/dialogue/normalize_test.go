package dialogue

import (
	"strings"
	"testing"
	"time"
)

type stubClassifier struct{}

func (stubClassifier) Classify(text string) string {
	if strings.HasPrefix(text, "Hello") {
		return "english"
	}
	return "tanglish"
}

func TestNormalizeDropsShortText(t *testing.T) {
	n := NewNormalizer(stubClassifier{})
	got := n.Normalize("vid", []RawSegment{
		{Text: "  ok  ", Start: time.Second, End: 2 * time.Second, HasEnd: true},
		{Text: "", Start: 0},
		{Text: "Hello there", Start: 0, End: time.Second, HasEnd: true},
		{Text: " a b ", Start: 0},
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(got), got)
	}
	if got[0].Text != "Hello there" || got[1].Text != "a b" {
		t.Fatalf("unexpected texts %q %q", got[0].Text, got[1].Text)
	}
	for _, seg := range got {
		if seg.TitleKey != "vid" {
			t.Fatalf("expected title key to be attached, got %q", seg.TitleKey)
		}
	}
	if got[0].Language != "english" || got[1].Language != "tanglish" {
		t.Fatalf("unexpected languages %q %q", got[0].Language, got[1].Language)
	}
}

func TestNormalizeSynthesizesDuration(t *testing.T) {
	n := NewNormalizer(stubClassifier{})
	got := n.Normalize("vid", []RawSegment{
		{Text: "Vaa thalaiva", Start: 10 * time.Second},
		{Text: "Sollu machan", Start: 10 * time.Second, End: 10 * time.Second, HasEnd: true},
		{Text: "Backwards end", Start: 10 * time.Second, End: 9 * time.Second, HasEnd: true},
	})
	if len(got) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(got))
	}
	for _, seg := range got {
		if seg.StartMS != 10000 || seg.DurationMS != DefaultDurationMS {
			t.Fatalf("expected synthesized 3s duration at 10s, got %+v", seg)
		}
	}
}

func TestNormalizeAppliesFloorAndClamp(t *testing.T) {
	n := NewNormalizer(nil)
	got := n.Normalize("vid", []RawSegment{
		{Text: "Quick line", Start: time.Second, End: time.Second + 100*time.Millisecond, HasEnd: true},
		{Text: "Before zero", Start: -2 * time.Second, End: 2 * time.Second, HasEnd: true},
		{Text: "Long line", Start: 0, End: 4500 * time.Millisecond, HasEnd: true},
	})
	if len(got) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(got))
	}
	if got[0].DurationMS != MinDurationMS {
		t.Fatalf("expected floor of %d, got %d", MinDurationMS, got[0].DurationMS)
	}
	if got[1].StartMS != 0 || got[1].DurationMS != 4000 {
		t.Fatalf("expected clamped start with original span, got %+v", got[1])
	}
	if got[2].DurationMS != 4500 {
		t.Fatalf("expected 4500ms duration, got %d", got[2].DurationMS)
	}
	if got[0].Language != "" {
		t.Fatalf("expected no label without classifier, got %q", got[0].Language)
	}
}

func TestNormalizeCountsRunesNotBytes(t *testing.T) {
	n := NewNormalizer(nil)
	// Two Tamil letters are six bytes but only two runes.
	got := n.Normalize("vid", []RawSegment{{Text: "அம", Start: 0}, {Text: "அமா", Start: 0}})
	if len(got) != 1 || got[0].Text != "அமா" {
		t.Fatalf("unexpected result %+v", got)
	}
}
