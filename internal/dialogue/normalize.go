package dialogue

import (
	"unicode/utf8"

	"reelscript/internal/textutil"
)

const (
	// MinTextRunes is the shortest line kept after trimming.
	MinTextRunes = 3
	// DefaultDurationMS is used when a segment has no usable end time.
	DefaultDurationMS = 3000
	// MinDurationMS is the floor applied to every duration.
	MinDurationMS = 500
)

// Classifier assigns a language label to a line of text.
type Classifier interface {
	Classify(text string) string
}

// Normalizer converts raw extractor output into canonical segments. It is
// pure and never fails; unusable entries are dropped.
type Normalizer struct {
	classifier Classifier
}

// NewNormalizer returns a normalizer labelling text with classifier.
func NewNormalizer(classifier Classifier) *Normalizer {
	return &Normalizer{classifier: classifier}
}

// Normalize returns the canonical segments for raw, in input order, owned by titleKey.
func (n *Normalizer) Normalize(titleKey string, raw []RawSegment) []Segment {
	out := make([]Segment, 0, len(raw))
	for _, entry := range raw {
		seg, ok := n.normalizeOne(titleKey, entry)
		if !ok {
			continue
		}
		out = append(out, seg)
	}
	return out
}

func (n *Normalizer) normalizeOne(titleKey string, entry RawSegment) (Segment, bool) {
	text := textutil.NormalizeDialogue(entry.Text)
	if utf8.RuneCountInString(text) < MinTextRunes {
		return Segment{}, false
	}
	start := entry.Start.Milliseconds()
	duration := int64(DefaultDurationMS)
	if entry.HasEnd && entry.End > entry.Start {
		duration = entry.End.Milliseconds() - start
	}
	if start < 0 {
		start = 0
	}
	if duration < MinDurationMS {
		duration = MinDurationMS
	}
	seg := Segment{
		TitleKey:   titleKey,
		Text:       text,
		StartMS:    start,
		DurationMS: duration,
	}
	if n.classifier != nil {
		seg.Language = n.classifier.Classify(text)
	}
	return seg, true
}
