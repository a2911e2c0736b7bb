package services

import "context"

// contextField identifies one piece of ingestion metadata carried on a
// context for logging and error attribution.
type contextField int

const (
	titleField contextField = iota
	stageField
	kindField
	runIDField
)

func withField(ctx context.Context, field contextField, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, field, value)
}

func fieldFrom(ctx context.Context, field contextField) (string, bool) {
	value, _ := ctx.Value(field).(string)
	return value, value != ""
}

// WithTitle records the external video id of the title being ingested.
func WithTitle(ctx context.Context, videoID string) context.Context {
	return withField(ctx, titleField, videoID)
}

// TitleFromContext returns the video id set by WithTitle.
func TitleFromContext(ctx context.Context) (string, bool) { return fieldFrom(ctx, titleField) }

// WithStage records the pipeline stage: validate, acquire, extract,
// normalize or persist.
func WithStage(ctx context.Context, stage string) context.Context {
	return withField(ctx, stageField, stage)
}

// StageFromContext returns the stage set by WithStage.
func StageFromContext(ctx context.Context) (string, bool) { return fieldFrom(ctx, stageField) }

// WithKind records the extractor kind, "ai" or "subtitles".
func WithKind(ctx context.Context, kind string) context.Context {
	return withField(ctx, kindField, kind)
}

// KindFromContext returns the kind set by WithKind.
func KindFromContext(ctx context.Context) (string, bool) { return fieldFrom(ctx, kindField) }

// WithRunID records the identifier shared by every title in one invocation.
func WithRunID(ctx context.Context, id string) context.Context {
	return withField(ctx, runIDField, id)
}

// RunIDFromContext returns the id set by WithRunID.
func RunIDFromContext(ctx context.Context) (string, bool) { return fieldFrom(ctx, runIDField) }
