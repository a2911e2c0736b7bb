package language

import "testing"

func newTamilClassifier(t *testing.T, threshold float64) *Classifier {
	t.Helper()
	c, err := NewClassifier("Tamil", threshold, Labels{Source: "tamil", Target: "english", Mixed: "tanglish"})
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	return c
}

func TestClassifierScriptWins(t *testing.T) {
	c := newTamilClassifier(t, 0.85)
	for _, text := range []string{
		"வணக்கம்",
		"This is English but ஒன்று",
		"ஃ",
		"௺ end",
	} {
		if got := c.Class(text); got != ClassSource {
			t.Errorf("Class(%q) = %s, want source", text, got)
		}
	}
}

func TestClassifierRatio(t *testing.T) {
	c := newTamilClassifier(t, 0.7)
	tests := []struct {
		text string
		want Class
	}{
		// 10 letters / 10 runes
		{"Helloworld", ClassTarget},
		// 7 letters / 10 runes is not strictly above 0.7
		{"abcdefg123", ClassMixed},
		// 8 letters / 10 runes
		{"abcdefgh12", ClassTarget},
		{"", ClassMixed},
		{"1234 !!", ClassMixed},
	}
	for _, tt := range tests {
		if got := c.Class(tt.text); got != tt.want {
			t.Errorf("Class(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestClassifierThresholdsDifferByExtractor(t *testing.T) {
	text := "Naan oru thadava sonna" // 19 letters / 22 runes = 0.86
	if got := newTamilClassifier(t, 0.85).Classify(text); got != "english" {
		t.Fatalf("expected english at 0.85, got %q", got)
	}
	text = "Enna da, semma mass scene!" // 20 letters / 26 runes = 0.77
	if got := newTamilClassifier(t, 0.85).Classify(text); got != "tanglish" {
		t.Fatalf("expected tanglish at 0.85, got %q", got)
	}
	if got := newTamilClassifier(t, 0.7).Classify(text); got != "english" {
		t.Fatalf("expected english at 0.7, got %q", got)
	}
}

func TestNewClassifierRejectsBadInput(t *testing.T) {
	if _, err := NewClassifier("Elvish", 0.5, Labels{}); err == nil {
		t.Fatal("expected error for unknown script")
	}
	if _, err := NewClassifier("Tamil", 0, Labels{}); err == nil {
		t.Fatal("expected error for zero threshold")
	}
	c, err := NewClassifier("Tamil", 0.5, Labels{})
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	if got := c.Label(ClassMixed); got != "mixed" {
		t.Fatalf("expected default mixed label, got %q", got)
	}
}
