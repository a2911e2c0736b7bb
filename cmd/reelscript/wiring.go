package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"reelscript/internal/audio"
	"reelscript/internal/catalog"
	"reelscript/internal/config"
	"reelscript/internal/dialogue"
	"reelscript/internal/ingest"
	"reelscript/internal/language"
	"reelscript/internal/logging"
	"reelscript/internal/runlock"
	"reelscript/internal/services/gemini"
	"reelscript/internal/subtitles"
	"reelscript/internal/subtitles/opensubtitles"
	"reelscript/internal/transcribe"
)

// ingestRuntime owns everything a run opened. close releases them in reverse.
type ingestRuntime struct {
	pipeline *ingest.Pipeline
	store    catalog.Store
	lock     *runlock.Lock
}

func (r *ingestRuntime) close(logger *slog.Logger) {
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			logger.Warn("catalog close failed", logging.Error(err))
		}
	}
	if err := r.lock.Release(); err != nil {
		logger.Warn("run lock release failed", logging.Error(err))
	}
}

type runtimeOptions struct {
	kinds  []string
	dryRun bool
	// strict fails when an extractor cannot be built instead of leaving its
	// titles to fail at validation.
	strict bool
}

// buildRuntime wires the pipeline for the requested extractor kinds. Persisting
// runs take the run lock and open the catalog; dry runs touch neither.
func buildRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts runtimeOptions) (*ingestRuntime, error) {
	rt := &ingestRuntime{}
	var writer ingest.Writer
	if !opts.dryRun {
		lock, err := runlock.Acquire(cfg.LockPath())
		if err != nil {
			return nil, err
		}
		rt.lock = lock
		store, err := catalog.Open(ctx, cfg)
		if err != nil {
			rt.close(logger)
			return nil, fmt.Errorf("open catalog: %w", err)
		}
		rt.store = store
		writer = store
	}

	pipeline, err := ingest.New(ingest.Options{
		StagingDir: cfg.Paths.StagingDir,
		Writer:     writer,
		Logger:     logger,
	})
	if err != nil {
		rt.close(logger)
		return nil, err
	}
	rt.pipeline = pipeline

	for _, kind := range opts.kinds {
		extractor, normalizer, err := buildExtractor(cfg, logger, kind)
		if err != nil {
			if opts.strict {
				rt.close(logger)
				return nil, err
			}
			logging.WarnWithContext(logger, "extractor unavailable", "extractor_unavailable",
				logging.String(logging.FieldKind, kind),
				logging.Error(err),
				logging.String(logging.FieldImpact, kind+" titles will fail with reason configuration"),
				logging.String(logging.FieldErrorHint, "run reelscript config show"),
			)
			continue
		}
		pipeline.Register(extractor, normalizer, cfg.PauseFor(kind))
	}
	return rt, nil
}

func buildExtractor(cfg *config.Config, logger *slog.Logger, kind string) (ingest.Extractor, *dialogue.Normalizer, error) {
	switch kind {
	case dialogue.KindAI:
		return buildAIExtractor(cfg, logger)
	case dialogue.KindSubtitles:
		return buildSubtitleExtractor(cfg, logger)
	default:
		return nil, nil, fmt.Errorf("unknown extractor kind %q", kind)
	}
}

func buildNormalizer(cfg *config.Config, threshold float64) (*dialogue.Normalizer, error) {
	classifier, err := language.NewClassifier(cfg.Language.SourceScript, threshold, language.Labels{
		Source: cfg.Language.SourceLabel,
		Target: cfg.Language.TargetLabel,
		Mixed:  cfg.Language.MixedLabel,
	})
	if err != nil {
		return nil, err
	}
	return dialogue.NewNormalizer(classifier), nil
}

func buildAIExtractor(cfg *config.Config, logger *slog.Logger) (ingest.Extractor, *dialogue.Normalizer, error) {
	if err := cfg.RequireTranscription(); err != nil {
		return nil, nil, err
	}
	client, err := gemini.New(gemini.Config{
		APIKey:         cfg.Transcription.APIKey,
		BaseURL:        cfg.Transcription.BaseURL,
		Model:          cfg.Transcription.Model,
		TimeoutSeconds: cfg.Transcription.TimeoutSeconds,
	})
	if err != nil {
		return nil, nil, err
	}
	transcriber := transcribe.NewTranscriber(client, transcribe.Options{
		PollInterval:    cfg.PollInterval(),
		PollTimeout:     cfg.PollTimeout(),
		Temperature:     cfg.Transcription.Temperature,
		MaxOutputTokens: cfg.Transcription.MaxOutputTokens,
		Logger:          logger,
	})
	acquirer := audio.New(audio.Options{
		Binary:         cfg.Audio.Binary,
		Quality:        cfg.Audio.Quality,
		AttemptTimeout: cfg.AttemptTimeout(),
		Logger:         logger,
	})
	if binary, ok := acquirer.Binary(); !ok {
		logger.Warn("yt-dlp not found; AI titles will fail at acquire",
			logging.String("binary", binary),
			logging.String(logging.FieldErrorHint, "install yt-dlp or set audio.binary"),
		)
	}
	normalizer, err := buildNormalizer(cfg, cfg.Language.AIThreshold)
	if err != nil {
		return nil, nil, err
	}
	return transcribe.NewExtractor(acquirer, transcriber, logger), normalizer, nil
}

func buildSubtitleExtractor(cfg *config.Config, logger *slog.Logger) (ingest.Extractor, *dialogue.Normalizer, error) {
	if err := cfg.RequireOpenSubtitles(); err != nil {
		return nil, nil, err
	}
	client, err := opensubtitles.New(opensubtitles.Config{
		APIKey:     cfg.OpenSubtitles.APIKey,
		UserAgent:  cfg.OpenSubtitles.UserAgent,
		Username:   cfg.OpenSubtitles.Username,
		Password:   cfg.OpenSubtitles.Password,
		BaseURL:    cfg.OpenSubtitles.BaseURL,
		HTTPClient: &http.Client{Timeout: time.Duration(cfg.OpenSubtitles.TimeoutSeconds) * time.Second},
	})
	if err != nil {
		return nil, nil, err
	}
	var cache *opensubtitles.Cache
	if dir := cfg.Paths.OpenSubtitlesCacheDir; dir != "" {
		cache, err = opensubtitles.NewCache(dir, logger)
		if err != nil {
			logger.Warn("subtitle cache disabled", logging.Error(err))
			cache = nil
		}
	}
	source, err := subtitles.NewSource(client, subtitles.SourceOptions{
		Languages: []string{cfg.OpenSubtitles.SourceLanguage, cfg.OpenSubtitles.TargetLanguage},
		Cache:     cache,
		Logger:    logger,
	})
	if err != nil {
		return nil, nil, err
	}
	normalizer, err := buildNormalizer(cfg, cfg.Language.SubtitleThreshold)
	if err != nil {
		return nil, nil, err
	}
	return subtitles.NewExtractor(source, logger), normalizer, nil
}

// errTitlesFailed makes the process exit non-zero when any title failed.
var errTitlesFailed = errors.New("one or more titles failed")
