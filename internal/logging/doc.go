// Package logging assembles structured slog loggers and formatting helpers used
// across reelscript.
//
// It owns the console and JSON handlers, level and output plumbing, per-run
// log files with age-based retention, and context-aware helpers so pipeline
// code tags log lines with the run id, title, extractor kind and stage.
package logging
