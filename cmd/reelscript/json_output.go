package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"reelscript/internal/catalog"
	"reelscript/internal/ingest"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type jsonSegment struct {
	StartMS    int64  `json:"start_ms"`
	DurationMS int64  `json:"duration_ms"`
	Language   string `json:"language"`
	Text       string `json:"text"`
}

type jsonResult struct {
	VideoID    string        `json:"video_id"`
	Title      string        `json:"title"`
	Year       int           `json:"year,omitempty"`
	Kind       string        `json:"kind"`
	Success    bool          `json:"success"`
	Segments   int           `json:"segments"`
	Stage      string        `json:"stage,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	Error      string        `json:"error,omitempty"`
	DryRun     bool          `json:"dry_run,omitempty"`
	Generation int64         `json:"generation,omitempty"`
	ElapsedMS  int64         `json:"elapsed_ms"`
	Sample     []jsonSegment `json:"sample,omitempty"`
}

type jsonSummary struct {
	RunID         string       `json:"run_id,omitempty"`
	Succeeded     int          `json:"succeeded"`
	Failed        int          `json:"failed"`
	TotalSegments int          `json:"total_segments"`
	Skipped       int          `json:"skipped,omitempty"`
	Canceled      bool         `json:"canceled,omitempty"`
	ElapsedMS     int64        `json:"elapsed_ms"`
	Results       []jsonResult `json:"results"`
}

type jsonTitle struct {
	VideoID    string `json:"video_id"`
	Title      string `json:"title"`
	NativeName string `json:"native_title,omitempty"`
	Year       int    `json:"year,omitempty"`
	Slug       string `json:"slug"`
	Generation int64  `json:"generation"`
	Segments   int    `json:"segments"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

func toJSONResult(res ingest.Result) jsonResult {
	out := jsonResult{
		VideoID:    res.Title.ExternalVideoID,
		Title:      res.Title.Name,
		Year:       res.Title.Year,
		Kind:       res.Kind,
		Success:    res.Success,
		Segments:   res.Segments,
		Stage:      res.Stage,
		Reason:     res.Reason,
		DryRun:     res.DryRun,
		Generation: res.Generation,
		ElapsedMS:  res.Elapsed.Milliseconds(),
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	for _, seg := range res.Sample {
		out.Sample = append(out.Sample, jsonSegment{
			StartMS:    seg.StartMS,
			DurationMS: seg.DurationMS,
			Language:   seg.Language,
			Text:       seg.Text,
		})
	}
	return out
}

func toJSONSummary(summary ingest.Summary, runID string) jsonSummary {
	out := jsonSummary{
		RunID:         runID,
		Succeeded:     summary.Succeeded,
		Failed:        summary.Failed,
		TotalSegments: summary.TotalSegments,
		Skipped:       summary.Skipped,
		Canceled:      summary.Canceled,
		ElapsedMS:     summary.Elapsed.Milliseconds(),
		Results:       make([]jsonResult, 0, len(summary.Results)),
	}
	for _, res := range summary.Results {
		out.Results = append(out.Results, toJSONResult(res))
	}
	return out
}

func toJSONTitles(titles []catalog.TitleSummary) []jsonTitle {
	out := make([]jsonTitle, 0, len(titles))
	for _, t := range titles {
		entry := jsonTitle{
			VideoID:    t.Title.ExternalVideoID,
			Title:      t.Title.Name,
			NativeName: t.Title.NativeName,
			Year:       t.Title.Year,
			Slug:       t.Slug,
			Generation: t.Generation,
			Segments:   t.Segments,
		}
		if !t.UpdatedAt.IsZero() {
			entry.UpdatedAt = t.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z")
		}
		out = append(out, entry)
	}
	return out
}
