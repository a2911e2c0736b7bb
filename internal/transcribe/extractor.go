package transcribe

import (
	"context"
	"log/slog"
	"strings"

	"reelscript/internal/dialogue"
	"reelscript/internal/logging"
	"reelscript/internal/services"
)

// Acquirer fetches the audio of a video into a scratch directory.
type Acquirer interface {
	Acquire(ctx context.Context, videoURL, scratchDir string) (string, error)
}

// Extractor produces raw segments for a video by transcribing its audio.
type Extractor struct {
	acquirer    Acquirer
	transcriber *Transcriber
	logger      *slog.Logger
}

// NewExtractor wires an Extractor.
func NewExtractor(acquirer Acquirer, transcriber *Transcriber, logger *slog.Logger) *Extractor {
	return &Extractor{
		acquirer:    acquirer,
		transcriber: transcriber,
		logger:      logging.NewComponentLogger(logger, "transcribe"),
	}
}

// Kind reports the extractor kind.
func (e *Extractor) Kind() string { return dialogue.KindAI }

// Extract downloads the audio for src into scratchDir and transcribes it.
func (e *Extractor) Extract(ctx context.Context, src dialogue.Source, scratchDir string) ([]dialogue.RawSegment, error) {
	if e == nil || e.acquirer == nil || e.transcriber == nil {
		return nil, services.Wrap(services.ErrConfiguration, services.StageAcquire, "ai extractor", "not configured", nil)
	}
	videoURL := strings.TrimSpace(src.VideoURL)
	if videoURL == "" {
		videoURL = dialogue.WatchURL(src.Title.ExternalVideoID)
	}
	path, err := e.acquirer.Acquire(services.WithStage(ctx, services.StageAcquire), videoURL, scratchDir)
	if err != nil {
		return nil, err
	}
	return e.transcriber.Transcribe(services.WithStage(ctx, services.StageExtract), path)
}
