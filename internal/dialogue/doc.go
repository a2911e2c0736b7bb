// Package dialogue defines the canonical title and segment types shared by
// every extractor, plus the normalizer that turns raw extractor output into
// catalog-ready segments.
//
// Extractors emit RawSegment values in whatever timing unit their source uses;
// Normalizer is the only place minimum lengths, synthetic durations, floors
// and language labels are applied.
package dialogue
