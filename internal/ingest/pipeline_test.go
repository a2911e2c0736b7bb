package ingest_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"reelscript/internal/catalog"
	"reelscript/internal/dialogue"
	"reelscript/internal/ingest"
	"reelscript/internal/language"
	"reelscript/internal/services"
	"reelscript/internal/testsupport"
)

type stubExtractor struct {
	kind     string
	segments []dialogue.RawSegment
	errs     map[string]error
	calls    []string
	scratch  []string
}

func (s *stubExtractor) Kind() string { return s.kind }

func (s *stubExtractor) Extract(_ context.Context, src dialogue.Source, scratchDir string) ([]dialogue.RawSegment, error) {
	s.calls = append(s.calls, src.Title.ExternalVideoID)
	s.scratch = append(s.scratch, scratchDir)
	if info, err := os.Stat(scratchDir); err != nil || !info.IsDir() {
		return nil, errors.New("scratch dir missing during extract")
	}
	if err := os.WriteFile(filepath.Join(scratchDir, "asset.mp3"), []byte("ID3"), 0o644); err != nil {
		return nil, err
	}
	if err, ok := s.errs[src.Title.ExternalVideoID]; ok {
		return nil, err
	}
	return s.segments, nil
}

func rawLines(n int) []dialogue.RawSegment {
	out := make([]dialogue.RawSegment, 0, n)
	for i := range n {
		start := time.Duration(i) * 2 * time.Second
		out = append(out, dialogue.RawSegment{
			Text:   "Naan oru thadava sonna",
			Start:  start,
			End:    start + 1500*time.Millisecond,
			HasEnd: true,
		})
	}
	return out
}

func normalizer(t *testing.T, threshold float64) *dialogue.Normalizer {
	t.Helper()
	classifier, err := language.NewClassifier("Tamil", threshold, language.Labels{Source: "tamil", Target: "english", Mixed: "tanglish"})
	if err != nil {
		t.Fatalf("classifier: %v", err)
	}
	return dialogue.NewNormalizer(classifier)
}

type pauseRecorder struct {
	pauses []time.Duration
}

func (p *pauseRecorder) sleep(_ context.Context, d time.Duration) error {
	p.pauses = append(p.pauses, d)
	return nil
}

func newPipeline(t *testing.T, store catalog.Store, sleeper *pauseRecorder, extractors ...*stubExtractor) *ingest.Pipeline {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	opts := ingest.Options{StagingDir: cfg.Paths.StagingDir}
	if store != nil {
		opts.Writer = store
	}
	if sleeper != nil {
		opts.Sleep = sleeper.sleep
	}
	p, err := ingest.New(opts)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	for _, ex := range extractors {
		pause := 5 * time.Second
		threshold := 0.85
		if ex.kind == dialogue.KindSubtitles {
			pause = time.Second
			threshold = 0.7
		}
		p.Register(ex, normalizer(t, threshold), pause)
	}
	return p
}

func source(kind, id, name string) dialogue.Source {
	return dialogue.Source{Kind: kind, Title: dialogue.Title{ExternalVideoID: id, Name: name, Year: 2022}}
}

func TestIngestOnePersistsAndRemovesScratch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ex := &stubExtractor{kind: dialogue.KindAI, segments: rawLines(4)}
	p := newPipeline(t, store, nil, ex)

	res := p.IngestOne(context.Background(), source(dialogue.KindAI, "KrC8ye3adAM", "Beast"), false)
	if !res.Success || res.Segments != 4 || res.Err != nil {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Generation != 1 {
		t.Fatalf("generation = %d", res.Generation)
	}
	count, err := store.CountSegments(context.Background(), "KrC8ye3adAM")
	if err != nil || count != 4 {
		t.Fatalf("catalog count = %d, %v", count, err)
	}
	if _, err := os.Stat(ex.scratch[0]); !os.IsNotExist(err) {
		t.Fatalf("scratch dir should be removed, stat err = %v", err)
	}

	again := p.IngestOne(context.Background(), source(dialogue.KindAI, "KrC8ye3adAM", "Beast"), false)
	if !again.Success || again.Segments != 4 {
		t.Fatalf("re-ingest result: %+v", again)
	}
	if count, _ := store.CountSegments(context.Background(), "KrC8ye3adAM"); count != 4 {
		t.Fatalf("re-ingest should replace, got %d segments", count)
	}
}

func TestIngestOneDryRunSkipsPersist(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ex := &stubExtractor{kind: dialogue.KindSubtitles, segments: rawLines(8)}
	p := newPipeline(t, store, nil, ex)

	res := p.IngestOne(context.Background(), source(dialogue.KindSubtitles, "IfkZMODd0A0", "Baasha"), true)
	if !res.Success || !res.DryRun || res.Segments != 8 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.Sample) != ingest.DefaultSampleSize {
		t.Fatalf("sample size = %d", len(res.Sample))
	}
	if res.Sample[0].Language != "english" || res.Sample[0].DurationMS != 1500 {
		t.Fatalf("unexpected sample segment: %+v", res.Sample[0])
	}
	if _, err := store.CountSegments(context.Background(), "IfkZMODd0A0"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("dry run must not write the catalog, got %v", err)
	}
}

func TestIngestOneValidation(t *testing.T) {
	ex := &stubExtractor{kind: dialogue.KindAI, segments: rawLines(1)}
	p := newPipeline(t, nil, nil, ex)

	tests := []struct {
		name   string
		src    dialogue.Source
		reason string
	}{
		{"placeholder id", source(dialogue.KindAI, "placeholder_1", "Ghilli"), "invalid_source"},
		{"missing name", source(dialogue.KindAI, "k5fc1xe5n5k", ""), "invalid_source"},
		{"unknown kind", source("dubbing", "k5fc1xe5n5k", "Osthe"), "configuration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.IngestOne(context.Background(), tt.src, false)
			if res.Success || res.Stage != services.StageValidate || res.Reason != tt.reason {
				t.Fatalf("unexpected result: %+v", res)
			}
		})
	}
	if len(ex.calls) != 0 {
		t.Fatalf("extractor should not run for invalid sources, got %v", ex.calls)
	}
}

func TestIngestOneDerivesIDFromURL(t *testing.T) {
	ex := &stubExtractor{kind: dialogue.KindAI, segments: rawLines(2)}
	p := newPipeline(t, nil, nil, ex)

	src := dialogue.Source{Kind: dialogue.KindAI, VideoURL: "https://youtu.be/OKBMCL-frPU", Title: dialogue.Title{Name: "Vikram", Year: 2022}}
	res := p.IngestOne(context.Background(), src, true)
	if !res.Success || res.Title.ExternalVideoID != "OKBMCL-frPU" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestIngestOneEmptyNormalizationReplacesStoredPass(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ex := &stubExtractor{kind: dialogue.KindAI, segments: rawLines(3)}
	p := newPipeline(t, store, nil, ex)
	src := source(dialogue.KindAI, "xFMJWJVLJxQ", "VIP")

	if res := p.IngestOne(context.Background(), src, false); !res.Success || res.Segments != 3 {
		t.Fatalf("first pass: %+v", res)
	}

	ex.segments = []dialogue.RawSegment{{Text: "ok"}, {Text: " a "}}
	res := p.IngestOne(context.Background(), src, false)
	if !res.Success || res.Segments != 0 || res.Raw != 2 || res.Err != nil {
		t.Fatalf("second pass: %+v", res)
	}
	count, err := store.CountSegments(context.Background(), "xFMJWJVLJxQ")
	if err != nil {
		t.Fatalf("CountSegments: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected stored segments cleared, got %d", count)
	}
}

func TestIngestOnePersistFailure(t *testing.T) {
	ex := &stubExtractor{kind: dialogue.KindAI, segments: rawLines(2)}
	p := newPipeline(t, failingWriter{}, nil, ex)

	res := p.IngestOne(context.Background(), source(dialogue.KindAI, "xFMJWJVLJxQ", "VIP"), false)
	if res.Success || res.Stage != services.StagePersist || res.Reason != "persistence" || res.Segments != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

type failingWriter struct{ catalog.Store }

func (failingWriter) Replace(context.Context, dialogue.Title, []dialogue.Segment) (catalog.ReplaceResult, error) {
	return catalog.ReplaceResult{}, services.Wrap(services.ErrPersistence, services.StagePersist, "upsert title", "no identity returned", nil)
}

func TestBatchContinuesAfterAcquisitionTimeout(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ex := &stubExtractor{
		kind:     dialogue.KindAI,
		segments: rawLines(3),
		errs: map[string]error{
			"KrC8ye3adAM": services.Wrap(services.ErrTimeout, services.StageAcquire, "yt-dlp", "attempt exceeded 5m0s", context.DeadlineExceeded),
		},
	}
	sleeper := &pauseRecorder{}
	p := newPipeline(t, store, sleeper, ex)

	sources := []dialogue.Source{
		source(dialogue.KindAI, "KrC8ye3adAM", "Beast"),
		source(dialogue.KindAI, "OKBMCL-frPU", "Vikram"),
	}
	summary := p.IngestBatch(context.Background(), sources, ingest.BatchOptions{})

	if len(summary.Results) != 2 {
		t.Fatalf("expected both titles attempted, got %d", len(summary.Results))
	}
	first := summary.Results[0]
	if first.Success || first.Segments != 0 || first.Stage != services.StageAcquire || first.Reason != "timeout" {
		t.Fatalf("unexpected first result: %+v", first)
	}
	if !summary.Results[1].Success || summary.Results[1].Segments != 3 {
		t.Fatalf("second title should succeed: %+v", summary.Results[1])
	}
	if summary.Succeeded != 1 || summary.Failed != 1 || summary.TotalSegments != 3 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(sleeper.pauses) != 1 || sleeper.pauses[0] != 5*time.Second {
		t.Fatalf("expected a single 5s pause between titles, got %v", sleeper.pauses)
	}
}

func TestBatchFilterKindAndPacing(t *testing.T) {
	ai := &stubExtractor{kind: dialogue.KindAI, segments: rawLines(1)}
	subs := &stubExtractor{kind: dialogue.KindSubtitles, segments: rawLines(2)}
	sleeper := &pauseRecorder{}
	p := newPipeline(t, nil, sleeper, ai, subs)

	sources := []dialogue.Source{
		source(dialogue.KindAI, "xFMJWJVLJxQ", "VIP"),
		source(dialogue.KindSubtitles, "IfkZMODd0A0", "Baasha"),
		source(dialogue.KindSubtitles, "mH5qWjJ5kUo", "Muthu"),
		source(dialogue.KindSubtitles, "U3xbZlHZFZQ", "Padayappa"),
	}

	summary := p.IngestBatch(context.Background(), sources, ingest.BatchOptions{Kind: "subtitles", Filter: "A", DryRun: true})
	if len(summary.Results) != 2 {
		t.Fatalf("expected Baasha and Padayappa, got %+v", summary.Results)
	}
	if summary.Results[0].Title.Name != "Baasha" || summary.Results[1].Title.Name != "Padayappa" {
		t.Fatalf("unexpected selection order: %+v", summary.Results)
	}
	if len(ai.calls) != 0 {
		t.Fatalf("ai extractor should be filtered out, got %v", ai.calls)
	}
	if len(sleeper.pauses) != 1 || sleeper.pauses[0] != time.Second {
		t.Fatalf("expected one 1s pause, got %v", sleeper.pauses)
	}
}

func TestBatchStopsWhenCanceled(t *testing.T) {
	ex := &stubExtractor{kind: dialogue.KindAI, segments: rawLines(1)}
	ctx, cancel := context.WithCancel(context.Background())
	p := newPipeline(t, nil, nil, ex)

	cancel()
	summary := p.IngestBatch(ctx, []dialogue.Source{
		source(dialogue.KindAI, "xFMJWJVLJxQ", "VIP"),
		source(dialogue.KindAI, "OKBMCL-frPU", "Vikram"),
	}, ingest.BatchOptions{DryRun: true})

	if !summary.Canceled || summary.Skipped != 2 || len(summary.Results) != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(ex.calls) != 0 {
		t.Fatalf("no title should start after cancel, got %v", ex.calls)
	}
}
