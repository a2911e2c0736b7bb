package dialogue

import (
	"strconv"
	"strings"
	"time"

	"reelscript/internal/textutil"
)

// Title is the catalog identity of a movie or clip. ExternalVideoID is the
// natural key; every other field is replaced on re-ingestion.
type Title struct {
	ExternalVideoID string
	Name            string
	NativeName      string
	Year            int
	Cast            []string
	Director        string
	Description     string
}

// Slug returns the lookup key derived from name and year.
func (t Title) Slug() string {
	base := textutil.Slug(t.Name)
	if t.Year > 0 {
		return base + "-" + strconv.Itoa(t.Year)
	}
	return base
}

// Label renders "Name (Year)" for logs and summaries.
func (t Title) Label() string {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		name = t.ExternalVideoID
	}
	if t.Year > 0 {
		return name + " (" + strconv.Itoa(t.Year) + ")"
	}
	return name
}

// RawSegment is one line of dialogue as an extractor produced it. End is only
// meaningful when HasEnd is set.
type RawSegment struct {
	Text   string
	Start  time.Duration
	End    time.Duration
	HasEnd bool
}

// Segment is a canonical catalog row.
type Segment struct {
	TitleKey   string
	Text       string
	StartMS    int64
	DurationMS int64
	Language   string
}

// Source is one ingestion request: the title plus whatever media reference
// the chosen extractor needs.
type Source struct {
	Title    Title
	Kind     string
	VideoURL string
	IMDBID   string
}

// Extractor kinds.
const (
	KindAI        = "ai"
	KindSubtitles = "subtitles"
)
