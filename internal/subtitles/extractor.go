package subtitles

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"reelscript/internal/dialogue"
	"reelscript/internal/logging"
	"reelscript/internal/services"
)

// Fetcher returns the subtitle payload chosen for a title.
type Fetcher interface {
	Fetch(ctx context.Context, title dialogue.Title, imdbID string) (Fetched, error)
}

// Extractor turns a title with an IMDb id into raw segments read from a
// marketplace subtitle file.
type Extractor struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// NewExtractor wires an Extractor over fetcher.
func NewExtractor(fetcher Fetcher, logger *slog.Logger) *Extractor {
	return &Extractor{fetcher: fetcher, logger: logging.NewComponentLogger(logger, "subtitles")}
}

// Kind reports the extractor kind.
func (e *Extractor) Kind() string { return dialogue.KindSubtitles }

// Extract downloads the selected subtitle, parses it in memory and drops
// credit cues from the parsed blocks. The payload cache, not the scratch
// directory, keeps downloaded files.
func (e *Extractor) Extract(ctx context.Context, src dialogue.Source, _ string) ([]dialogue.RawSegment, error) {
	if e == nil || e.fetcher == nil {
		return nil, services.Wrap(services.ErrConfiguration, services.StageAcquire, "subtitle extractor", "not configured", nil)
	}
	imdbID := strings.TrimSpace(src.IMDBID)
	if imdbID == "" && strings.TrimSpace(src.Title.Name) == "" {
		return nil, services.Wrap(services.ErrInvalidSource, services.StageValidate, "subtitle extractor", "imdb id or title name is required", nil)
	}
	logger := logging.WithContext(ctx, e.logger)

	fetched, err := e.fetcher.Fetch(services.WithStage(ctx, services.StageAcquire), src.Title, imdbID)
	if err != nil {
		return nil, err
	}

	segments, credits := DropCredits(Parse(string(fetched.Data)))
	if len(segments) == 0 {
		return nil, services.Wrap(services.ErrNoContent, services.StageExtract, "parse subtitle",
			fmt.Sprintf("file %d yielded no dialogue", fetched.Subtitle.FileID), nil)
	}
	logger.Info("subtitle parsed",
		logging.Int("raw_segments", len(segments)),
		logging.String("language", fetched.Subtitle.Language),
		logging.Int("credit_cues", credits),
		logging.Bool("cache_hit", fetched.FromCache),
		logging.Int64("file_id", fetched.Subtitle.FileID),
	)
	return segments, nil
}
