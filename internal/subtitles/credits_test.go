package subtitles

import "testing"

func TestDropCredits(t *testing.T) {
	content := "1\n00:00:01,000 --> 00:00:03,000\nDownloaded from www.TamilYogi.cc\n\n" +
		"2\n00:00:04,000 --> 00:00:06,000\nவா தலைவா, போகலாம்\n\n" +
		"3\n00:00:07,000 --> 00:00:09,000\nSubtitles by Team Kollywood\n\n" +
		"4\n00:00:10,000 --> 00:00:12,000\nEvery dog has its day\n\n" +
		"5\n00:01:10,000 --> 00:01:12,000\nSynced & corrected by arun\n"

	kept, removed := DropCredits(Parse(content))
	if removed != 3 {
		t.Fatalf("removed = %d, want 3", removed)
	}
	if len(kept) != 2 {
		t.Fatalf("kept %d segments, want 2: %+v", len(kept), kept)
	}
	if kept[0].Text != "வா தலைவா, போகலாம்" || kept[1].Text != "Every dog has its day" {
		t.Fatalf("unexpected kept text: %q, %q", kept[0].Text, kept[1].Text)
	}
}

func TestDropCreditsKeepsDialogueMentioningWords(t *testing.T) {
	segments := Parse("1\n00:00:01,000 --> 00:00:02,500\nThe subtitles were wrong, machan\n")
	kept, removed := DropCredits(segments)
	if removed != 0 || len(kept) != 1 {
		t.Fatalf("expected dialogue to survive, removed=%d kept=%d", removed, len(kept))
	}
}
