// Package preflight provides readiness checks for the external tools,
// services and filesystem paths an ingestion run depends on.
//
// The `reelscript preflight` command prints every check. Batch and single
// title commands run RunAll first and refuse to start when a required check
// fails, so a run does not discover a missing binary or bad credential only
// after the first title.
//
// Service checks are gated on credentials: an extractor whose credentials
// are absent is reported as skipped rather than failed.
package preflight
