package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"reelscript/internal/dialogue"
	"reelscript/internal/logging"
	"reelscript/internal/services"
)

// Options configures a Pipeline.
type Options struct {
	StagingDir string
	Writer     Writer
	Logger     *slog.Logger
	SampleSize int
	Sleep      func(context.Context, time.Duration) error
}

type route struct {
	extractor  Extractor
	normalizer *dialogue.Normalizer
	pause      time.Duration
}

// Pipeline runs sources through their registered extractor.
type Pipeline struct {
	stagingDir string
	writer     Writer
	logger     *slog.Logger
	sampleSize int
	sleep      func(context.Context, time.Duration) error
	routes     map[string]route
}

// New constructs an empty pipeline. Register at least one extractor before use.
func New(opts Options) (*Pipeline, error) {
	if strings.TrimSpace(opts.StagingDir) == "" {
		return nil, fmt.Errorf("ingest: staging dir is required")
	}
	p := &Pipeline{
		stagingDir: opts.StagingDir,
		writer:     opts.Writer,
		logger:     logging.NewComponentLogger(opts.Logger, "ingest"),
		sampleSize: opts.SampleSize,
		sleep:      opts.Sleep,
		routes:     make(map[string]route),
	}
	if p.sampleSize <= 0 {
		p.sampleSize = DefaultSampleSize
	}
	if p.sleep == nil {
		p.sleep = sleepContext
	}
	return p, nil
}

// Register routes sources of extractor.Kind() through extractor and normalizer.
// pause is inserted after each such title in a batch.
func (p *Pipeline) Register(extractor Extractor, normalizer *dialogue.Normalizer, pause time.Duration) {
	p.routes[extractor.Kind()] = route{extractor: extractor, normalizer: normalizer, pause: max(pause, 0)}
}

// Kinds lists the registered extractor kinds in sorted order.
func (p *Pipeline) Kinds() []string {
	kinds := make([]string, 0, len(p.routes))
	for kind := range p.routes {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// IngestOne runs a single source to completion. Dry runs stop before persist
// and carry a sample of the normalized segments.
func (p *Pipeline) IngestOne(ctx context.Context, src dialogue.Source, dryRun bool) Result {
	started := time.Now()
	src = resolveSource(src)
	res := Result{Title: src.Title, Kind: src.Kind, DryRun: dryRun}

	ctx = services.WithKind(ctx, src.Kind)
	ctx = services.WithTitle(ctx, src.Title.ExternalVideoID)
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("title started",
		logging.String(logging.FieldEventType, "title_start"),
		logging.String("subject", logging.FormatSubject(src.Kind, src.Title.Label(), "")),
		logging.Bool("dry_run", dryRun),
	)

	finish := func(err error) Result {
		res.Elapsed = time.Since(started)
		if err != nil {
			return p.fail(ctx, res, err)
		}
		res.Success = true
		logger.Info("title completed",
			logging.String(logging.FieldEventType, "title_complete"),
			logging.Int("raw_segments", res.Raw),
			logging.Int("segments", res.Segments),
			logging.Bool("dry_run", dryRun),
			logging.Duration("elapsed", res.Elapsed),
		)
		return res
	}

	r, err := p.validate(src)
	if err != nil {
		return finish(err)
	}

	raw, err := p.extract(ctx, r.extractor, src)
	if err != nil {
		return finish(err)
	}
	res.Raw = len(raw)

	// Normalization never fails a title. An empty result still replaces the
	// stored pass so the catalog reflects this extraction.
	segments := r.normalizer.Normalize(src.Title.ExternalVideoID, raw)
	res.Segments = len(segments)
	if len(segments) == 0 {
		logging.WarnWithContext(logger, "no segments survived normalization", "normalize_empty",
			logging.Int("raw_segments", len(raw)),
			logging.String(logging.FieldImpact, "title stored with no dialogue"),
			logging.String(logging.FieldErrorHint, "check the source for usable dialogue lines"),
		)
	} else if dropped := len(raw) - len(segments); dropped > 0 {
		logger.Debug("raw segments dropped", logging.Int("dropped", dropped))
	}

	if dryRun {
		res.Sample = append([]dialogue.Segment(nil), segments[:min(p.sampleSize, len(segments))]...)
		return finish(nil)
	}

	if p.writer == nil {
		return finish(services.Wrap(services.ErrConfiguration, services.StagePersist, "persist", "no catalog writer configured", nil))
	}
	written, err := p.writer.Replace(services.WithStage(ctx, services.StagePersist), src.Title, segments)
	if err != nil {
		return finish(err)
	}
	res.Segments = written.Inserted
	res.Generation = written.Generation
	return finish(nil)
}

func (p *Pipeline) validate(src dialogue.Source) (route, error) {
	r, ok := p.routes[src.Kind]
	if !ok {
		return route{}, services.Wrap(services.ErrConfiguration, services.StageValidate, "route source",
			fmt.Sprintf("no extractor registered for kind %q", src.Kind), nil)
	}
	if dialogue.IsPlaceholderID(src.Title.ExternalVideoID) {
		return route{}, services.Wrap(services.ErrInvalidSource, services.StageValidate, "check video id",
			fmt.Sprintf("video id %q is missing or a placeholder", src.Title.ExternalVideoID), nil)
	}
	if strings.TrimSpace(src.Title.Name) == "" {
		return route{}, services.Wrap(services.ErrInvalidSource, services.StageValidate, "check title", "title name is empty", nil)
	}
	return r, nil
}

// extract runs the extractor inside a scratch directory that is always removed.
func (p *Pipeline) extract(ctx context.Context, extractor Extractor, src dialogue.Source) ([]dialogue.RawSegment, error) {
	if err := os.MkdirAll(p.stagingDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, services.StageAcquire, "create staging dir", "", err)
	}
	scratch, err := os.MkdirTemp(p.stagingDir, src.Title.Slug()+"-*")
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, services.StageAcquire, "create scratch dir", "", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, p.logger), "scratch cleanup failed", "scratch_cleanup_failed",
				logging.String("scratch_dir", scratch),
				logging.Error(err),
				logging.String(logging.FieldImpact, "downloaded media left on disk"),
				logging.String(logging.FieldErrorHint, "remove the directory by hand"),
			)
		}
	}()

	raw, err := extractor.Extract(ctx, src, scratch)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, services.Wrap(services.ErrNoContent, services.StageExtract, "extract", "extractor returned no segments", nil)
	}
	return raw, nil
}

func (p *Pipeline) fail(ctx context.Context, res Result, err error) Result {
	res.Success = false
	res.Segments = 0
	res.Sample = nil
	res.Err = err
	res.Reason = services.Reason(err)
	if stage, ok := services.StageOf(err); ok {
		res.Stage = stage
	} else {
		res.Stage = services.StageExtract
	}
	ctx = services.WithStage(ctx, res.Stage)
	logging.ErrorWithContext(logging.WithContext(ctx, p.logger), "title failed", "title_failure",
		logging.String(logging.FieldReason, res.Reason),
		logging.String(logging.FieldErrorHint, hintFor(res.Reason)),
		logging.Error(err),
		logging.Duration("elapsed", res.Elapsed),
	)
	return res
}

// resolveSource fills the video id from the URL when only the URL was given.
func resolveSource(src dialogue.Source) dialogue.Source {
	src.Kind = strings.ToLower(strings.TrimSpace(src.Kind))
	src.Title.ExternalVideoID = strings.TrimSpace(src.Title.ExternalVideoID)
	if src.Title.ExternalVideoID == "" {
		if id, ok := dialogue.VideoIDFromURL(src.VideoURL); ok {
			src.Title.ExternalVideoID = id
		}
	}
	return src
}

func hintFor(reason string) string {
	switch reason {
	case "timeout":
		return "retry later or raise the timeout in config"
	case "tool_missing":
		return "install yt-dlp and ffmpeg, then run reelscript preflight"
	case "tool_failed":
		return "run the download by hand to see the tool output"
	case "not_found":
		return "check the video id or IMDb id"
	case "malformed_output":
		return "re-run the title; model output was not valid JSON"
	case "empty":
		return "the source produced no usable dialogue"
	case "configuration":
		return "check credentials and paths with reelscript config show"
	case "persistence":
		return "check catalog connectivity; the previous segment set is intact"
	case "invalid_source":
		return "fill in the video id and title name"
	case "canceled":
		return "run was interrupted"
	default:
		return "upstream service unavailable; retry later"
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
