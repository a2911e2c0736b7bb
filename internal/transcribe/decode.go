package transcribe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"reelscript/internal/dialogue"
	"reelscript/internal/timecode"
)

var (
	fenceOpen    = regexp.MustCompile("(?m)^```(?:json|JSON)?[ \t]*\n?")
	fenceClose   = regexp.MustCompile("(?m)\n?```[ \t]*$")
	arraySalvage = regexp.MustCompile(`(?s)\[.*?\]`)
)

// ErrMalformed reports model output that holds no decodable JSON array.
var ErrMalformed = errors.New("transcript is not a JSON array")

// Entry is one timed phrase from the model. End is nil when the model omitted it.
type Entry struct {
	Start float64
	End   *float64
	Text  string
}

type rawEntry struct {
	Start *flexSeconds `json:"start_seconds"`
	End   *flexSeconds `json:"end_seconds"`
	Text  string       `json:"text"`
}

// flexSeconds accepts a JSON number or a numeric string.
type flexSeconds float64

func (f *flexSeconds) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return errors.New("null seconds")
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("seconds %q: %w", s, err)
		}
		*f = flexSeconds(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexSeconds(v)
	return nil
}

// StripCodeFences removes Markdown code fence lines around a payload.
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = fenceOpen.ReplaceAllString(text, "")
	text = fenceClose.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Decode parses model output into entries. When the whole payload is not a
// JSON array, the first bracketed substring is tried instead. Entries whose
// timing cannot be read are dropped; a missing start reads as zero.
func Decode(text string) ([]Entry, bool, error) {
	cleaned := StripCodeFences(text)
	var items []json.RawMessage
	salvaged := false
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		match := arraySalvage.FindString(text)
		if match == "" {
			return nil, false, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if err := json.Unmarshal([]byte(match), &items); err != nil {
			return nil, false, fmt.Errorf("%w: salvage failed: %v", ErrMalformed, err)
		}
		salvaged = true
	}
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		var raw rawEntry
		if err := json.Unmarshal(item, &raw); err != nil {
			continue
		}
		entry := Entry{Text: raw.Text}
		if raw.Start != nil {
			entry.Start = float64(*raw.Start)
		}
		if raw.End != nil {
			end := float64(*raw.End)
			entry.End = &end
		}
		entries = append(entries, entry)
	}
	return entries, salvaged, nil
}

// RawSegments converts entries to raw segments, dropping entries whose
// seconds are not finite.
func RawSegments(entries []Entry) []dialogue.RawSegment {
	segments := make([]dialogue.RawSegment, 0, len(entries))
	for _, e := range entries {
		startMS, ok := timecode.FromSeconds(e.Start)
		if !ok {
			continue
		}
		seg := dialogue.RawSegment{Text: e.Text, Start: time.Duration(startMS) * time.Millisecond}
		if e.End != nil {
			endMS, ok := timecode.FromSeconds(*e.End)
			if !ok {
				continue
			}
			seg.End = time.Duration(endMS) * time.Millisecond
			seg.HasEnd = true
		}
		segments = append(segments, seg)
	}
	return segments
}
