// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp title keys, stage names, extractor kinds and
//     run identifiers for logging.
//   - Structured error markers plus the Wrap helper, whose typed Error carries
//     the failing stage so the orchestrator can report it without parsing text.
//   - Reason, which maps a wrapped failure to the short code recorded in run
//     results.
//
// Use these helpers when wiring new stage logic so failure reporting stays
// uniform across extractors.
package services
