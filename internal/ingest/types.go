package ingest

import (
	"context"
	"time"

	"reelscript/internal/catalog"
	"reelscript/internal/dialogue"
)

// DefaultSampleSize is the number of segments kept on a dry-run result.
const DefaultSampleSize = 5

// Extractor turns a source into raw segments using scratchDir for any files.
type Extractor interface {
	Kind() string
	Extract(ctx context.Context, src dialogue.Source, scratchDir string) ([]dialogue.RawSegment, error)
}

// Writer persists a title's segment set.
type Writer interface {
	Replace(ctx context.Context, title dialogue.Title, segments []dialogue.Segment) (catalog.ReplaceResult, error)
}

// Result is the outcome of ingesting one title. On failure Stage and Reason
// name the first failing stage and its classification.
type Result struct {
	Title      dialogue.Title
	Kind       string
	Success    bool
	Segments   int
	Raw        int
	Stage      string
	Reason     string
	Err        error
	DryRun     bool
	Sample     []dialogue.Segment
	Generation int64
	Elapsed    time.Duration
}

// BatchOptions narrows and configures a batch run.
type BatchOptions struct {
	// Filter keeps titles whose name or native name contains it, ignoring case.
	Filter string
	// Kind keeps titles of one extractor kind; empty or "all" keeps every kind.
	Kind   string
	DryRun bool
}

// Summary aggregates a batch run.
type Summary struct {
	Results       []Result
	Succeeded     int
	Failed        int
	TotalSegments int
	// Skipped counts selected titles never started because the run was canceled.
	Skipped  int
	Canceled bool
	Elapsed  time.Duration
}

func (s *Summary) add(res Result) {
	s.Results = append(s.Results, res)
	if res.Success {
		s.Succeeded++
		s.TotalSegments += res.Segments
		return
	}
	s.Failed++
}
