package preflight

import (
	"context"

	"reelscript/internal/config"
)

// CheckGeminiFromConfig checks Gemini when an API key is configured and
// reports the AI extractor as skipped otherwise.
func CheckGeminiFromConfig(ctx context.Context, cfg *config.Config) Result {
	const name = "Gemini"
	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if err := cfg.RequireTranscription(); err != nil {
		return Result{Name: name, Skipped: true, Detail: "skipped: " + err.Error()}
	}
	return CheckGemini(ctx, cfg.Transcription)
}

// CheckOpenSubtitlesFromConfig checks OpenSubtitles when credentials are
// configured and reports the subtitle extractor as skipped otherwise.
func CheckOpenSubtitlesFromConfig(ctx context.Context, cfg *config.Config) Result {
	const name = "OpenSubtitles"
	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if err := cfg.RequireOpenSubtitles(); err != nil {
		return Result{Name: name, Skipped: true, Detail: "skipped: " + err.Error()}
	}
	return CheckOpenSubtitles(ctx, cfg.OpenSubtitles)
}
