package subtitles

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"reelscript/internal/dialogue"
	"reelscript/internal/textutil"
	"reelscript/internal/timecode"
)

// MinCueDuration is the floor applied to parsed cue durations.
const MinCueDuration = time.Second

var (
	blockSeparator  = regexp.MustCompile(`\n\s*\n`)
	markupPattern   = regexp.MustCompile(`<[^>]+>|\{\\[^}]*\}`)
	annotationRegex = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
)

// Parse converts SRT content into raw segments. Blocks without a timecode
// line, with unparseable timecodes, or with two or fewer characters of text
// after cleanup are skipped.
func Parse(content string) []dialogue.RawSegment {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	blocks := splitBlocks(normalized)
	segments := make([]dialogue.RawSegment, 0, len(blocks))
	for _, block := range blocks {
		seg, ok := parseBlock(block)
		if !ok {
			continue
		}
		segments = append(segments, seg)
	}
	return segments
}

func splitBlocks(content string) []string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil
	}
	return blockSeparator.Split(trimmed, -1)
}

func parseBlock(block string) (dialogue.RawSegment, bool) {
	lines := strings.Split(block, "\n")
	cueIdx := -1
	for i, line := range lines {
		if strings.Contains(line, "-->") {
			cueIdx = i
			break
		}
	}
	if cueIdx < 0 {
		return dialogue.RawSegment{}, false
	}
	start, end, ok := parseCueLine(lines[cueIdx])
	if !ok {
		return dialogue.RawSegment{}, false
	}
	text := cleanCueText(strings.Join(lines[cueIdx+1:], " "))
	if utf8.RuneCountInString(text) <= 2 {
		return dialogue.RawSegment{}, false
	}
	duration := max(end-start, MinCueDuration)
	return dialogue.RawSegment{
		Text:   text,
		Start:  start,
		End:    start + duration,
		HasEnd: true,
	}, true
}

// parseCueLine reads "start --> end [position hints]".
func parseCueLine(line string) (time.Duration, time.Duration, bool) {
	left, right, found := strings.Cut(line, "-->")
	if !found {
		return 0, 0, false
	}
	endToken := strings.TrimSpace(right)
	if idx := strings.IndexAny(endToken, " \t"); idx >= 0 {
		endToken = endToken[:idx]
	}
	startMS, err := timecode.Parse(left)
	if err != nil {
		return 0, 0, false
	}
	endMS, err := timecode.Parse(endToken)
	if err != nil {
		return 0, 0, false
	}
	return time.Duration(startMS) * time.Millisecond, time.Duration(endMS) * time.Millisecond, true
}

func cleanCueText(text string) string {
	text = markupPattern.ReplaceAllString(text, "")
	text = annotationRegex.ReplaceAllString(text, "")
	return textutil.CollapseSpace(text)
}
