package subtitles

import (
	"testing"

	"reelscript/internal/subtitles/opensubtitles"
)

func TestSelectPrefersSourceLanguage(t *testing.T) {
	candidates := []opensubtitles.Subtitle{
		{FileID: 1, Language: "en", Downloads: 9000},
		{FileID: 2, Language: "ta", Downloads: 10},
		{FileID: 3, Language: "ta", Downloads: 250},
	}
	got, ok := Select(candidates, "ta", "en")
	if !ok || got.FileID != 3 {
		t.Fatalf("expected Tamil file 3, got %+v ok=%v", got, ok)
	}
}

func TestSelectFallsBackToTarget(t *testing.T) {
	candidates := []opensubtitles.Subtitle{
		{FileID: 7, Language: "en", Downloads: 40},
		{FileID: 5, Language: "EN", Downloads: 40},
		{FileID: 9, Language: "fr", Downloads: 900},
	}
	got, ok := Select(candidates, "ta", "en")
	if !ok || got.FileID != 5 {
		t.Fatalf("expected tiebreak on lowest file id 5, got %+v ok=%v", got, ok)
	}
}

func TestSelectNoCandidates(t *testing.T) {
	candidates := []opensubtitles.Subtitle{{FileID: 0, Language: "ta", Downloads: 3}}
	if _, ok := Select(candidates, "ta", "en"); ok {
		t.Fatal("expected no selection")
	}
	if _, ok := Select(nil, "ta"); ok {
		t.Fatal("expected no selection for empty input")
	}
}

func TestRankPrefersHumanTranslations(t *testing.T) {
	candidates := []opensubtitles.Subtitle{
		{FileID: 1, Language: "ta", Downloads: 5000, AITranslated: true},
		{FileID: 2, Language: "ta", Downloads: 120, HearingImpaired: true},
		{FileID: 3, Language: "ta", Downloads: 120},
		{FileID: 4, Language: "ta", Downloads: 40},
	}
	ranked := Rank(candidates, "ta")
	want := []int64{3, 2, 4, 1}
	if len(ranked) != len(want) {
		t.Fatalf("expected %d candidates, got %d", len(want), len(ranked))
	}
	for i, id := range want {
		if ranked[i].FileID != id {
			t.Fatalf("position %d: got file %d, want %d (%+v)", i, ranked[i].FileID, id, ranked)
		}
	}
}
