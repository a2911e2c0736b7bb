package subtitles

import (
	"regexp"

	"reelscript/internal/dialogue"
)

// creditPattern matches uploader credits and marketplace or piracy-site
// watermarks that appear as cues in community subtitle files.
var creditPattern = regexp.MustCompile(`(?i)` +
	`opensubtitles|subtitles? (by|from)|synced?( and| &) corrected|advertise your product|` +
	`https?://|\bwww\.|\.(com|net|org|in)\b|` +
	`\b(subscene|yts|yify|isaimini|tamilrockers|tamilyogi|tamilblasters|tamilgun|moviesda)\b`)

// DropCredits removes segments whose text is a credit or watermark and
// reports how many were removed. The input slice is not modified.
func DropCredits(segments []dialogue.RawSegment) ([]dialogue.RawSegment, int) {
	kept := make([]dialogue.RawSegment, 0, len(segments))
	for _, seg := range segments {
		if creditPattern.MatchString(seg.Text) {
			continue
		}
		kept = append(kept, seg)
	}
	return kept, len(segments) - len(kept)
}
