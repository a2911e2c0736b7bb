package subtitles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"reelscript/internal/dialogue"
	"reelscript/internal/logging"
	"reelscript/internal/services"
	"reelscript/internal/subtitles/opensubtitles"
)

// API is the subset of the OpenSubtitles client used by Source.
type API interface {
	Authenticated() bool
	Login(ctx context.Context) error
	Search(ctx context.Context, req opensubtitles.SearchRequest) ([]opensubtitles.Subtitle, error)
	Download(ctx context.Context, fileID int64) (opensubtitles.DownloadResult, error)
}

// SourceOptions configures a Source. Languages are tried in preference order.
type SourceOptions struct {
	Languages   []string
	Cache       *opensubtitles.Cache
	Logger      *slog.Logger
	MinInterval time.Duration
	MaxRetries  int
	Sleep       func(context.Context, time.Duration) error
	Backoff     func(int) time.Duration
}

// Fetched is a selected subtitle and its decoded payload.
type Fetched struct {
	Subtitle  opensubtitles.Subtitle
	Data      []byte
	FromCache bool
}

// Source searches, selects and downloads subtitle files, spacing calls to
// respect the marketplace rate limit.
type Source struct {
	api         API
	languages   []string
	cache       *opensubtitles.Cache
	logger      *slog.Logger
	minInterval time.Duration
	maxRetries  int
	sleep       func(context.Context, time.Duration) error
	backoff     func(int) time.Duration

	mu       sync.Mutex
	lastCall time.Time
}

// NewSource builds a Source over api.
func NewSource(api API, opts SourceOptions) (*Source, error) {
	if api == nil {
		return nil, errors.New("subtitles: api client is required")
	}
	languages := make([]string, 0, len(opts.Languages))
	for _, lang := range opts.Languages {
		if lang = strings.ToLower(strings.TrimSpace(lang)); lang != "" {
			languages = append(languages, lang)
		}
	}
	if len(languages) == 0 {
		return nil, errors.New("subtitles: at least one language is required")
	}
	s := &Source{
		api:         api,
		languages:   languages,
		cache:       opts.Cache,
		logger:      logging.NewComponentLogger(opts.Logger, "subtitles"),
		minInterval: opts.MinInterval,
		maxRetries:  opts.MaxRetries,
		sleep:       opts.Sleep,
		backoff:     opts.Backoff,
	}
	if s.minInterval <= 0 {
		s.minInterval = opensubtitles.MinInterval
	}
	if s.maxRetries <= 0 {
		s.maxRetries = opensubtitles.MaxRateRetries
	}
	if s.sleep == nil {
		s.sleep = opensubtitles.SleepWithContext
	}
	if s.backoff == nil {
		s.backoff = opensubtitles.Backoff
	}
	return s, nil
}

// Languages returns the configured preference order.
func (s *Source) Languages() []string {
	return append([]string(nil), s.languages...)
}

// Fetch logs in if needed, searches every language, selects the best
// candidate and returns its payload, preferring the local cache.
func (s *Source) Fetch(ctx context.Context, title dialogue.Title, imdbID string) (Fetched, error) {
	logger := logging.WithContext(ctx, s.logger)
	if err := s.ensureLogin(ctx); err != nil {
		return Fetched{}, services.Wrap(markerFor(err), services.StageAcquire, "opensubtitles login", "", err)
	}

	candidates, err := s.Search(ctx, title, imdbID)
	if err != nil {
		return Fetched{}, err
	}
	chosen, ok := Select(candidates, s.languages...)
	if !ok {
		return Fetched{}, services.Wrap(services.ErrNotFound, services.StageAcquire, "select subtitle",
			fmt.Sprintf("no subtitles in %s", strings.Join(s.languages, ", ")), nil)
	}
	logger.Info("subtitle selected",
		logging.String("language", chosen.Language),
		logging.Int("downloads", chosen.Downloads),
		logging.Int("candidates", len(candidates)),
		logging.Int64("file_id", chosen.FileID),
		logging.String("release", chosen.Release),
	)

	if cached, hit := s.loadCached(chosen.FileID); hit {
		logger.Debug("subtitle served from cache", logging.Int64("file_id", chosen.FileID))
		return Fetched{Subtitle: chosen, Data: cached, FromCache: true}, nil
	}

	var result opensubtitles.DownloadResult
	err = s.withRetry(ctx, "download", func(ctx context.Context) error {
		var callErr error
		result, callErr = s.api.Download(ctx, chosen.FileID)
		return callErr
	})
	if err != nil {
		return Fetched{}, services.Wrap(markerFor(err), services.StageAcquire, "download subtitle", "", err)
	}
	s.storeCached(chosen, imdbID, result)
	logger.Debug("subtitle downloaded",
		logging.Int("payload_bytes", len(result.Data)),
		logging.Int("remaining_downloads", result.Remaining),
	)
	return Fetched{Subtitle: chosen, Data: result.Data}, nil
}

// Search queries every configured language and concatenates the results.
// A language whose search fails is logged and skipped; only when every
// language fails is an error returned.
func (s *Source) Search(ctx context.Context, title dialogue.Title, imdbID string) ([]opensubtitles.Subtitle, error) {
	logger := logging.WithContext(ctx, s.logger)
	var (
		all     []opensubtitles.Subtitle
		lastErr error
		failed  int
	)
	for _, lang := range s.languages {
		req := opensubtitles.SearchRequest{
			IMDBID:   imdbID,
			Query:    title.Name,
			Year:     title.Year,
			Language: lang,
		}
		var found []opensubtitles.Subtitle
		err := s.withRetry(ctx, "search", func(ctx context.Context) error {
			var callErr error
			found, callErr = s.api.Search(ctx, req)
			return callErr
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, services.Wrap(markerFor(ctx.Err()), services.StageAcquire, "search subtitles", "", ctx.Err())
			}
			failed++
			lastErr = err
			logging.WarnWithContext(logger, "subtitle search failed for language; skipping", "subtitle_search_failed",
				logging.String("language", lang),
				logging.Error(err),
				logging.String(logging.FieldImpact, "candidates in this language are not considered"),
				logging.String(logging.FieldErrorHint, "check OpenSubtitles status and quota"),
			)
			continue
		}
		logger.Debug("subtitle search completed", logging.String("language", lang), logging.Int("results", len(found)))
		all = append(all, found...)
	}
	if failed == len(s.languages) && lastErr != nil {
		return nil, services.Wrap(markerFor(lastErr), services.StageAcquire, "search subtitles", "every language failed", lastErr)
	}
	return all, nil
}

func (s *Source) ensureLogin(ctx context.Context) error {
	if s.api.Authenticated() {
		return nil
	}
	return s.withRetry(ctx, "login", s.api.Login)
}

// withRetry spaces calls by the minimum interval and retries transient
// failures with exponential backoff.
func (s *Source) withRetry(ctx context.Context, op string, call func(context.Context) error) error {
	var err error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		if waitErr := s.throttle(ctx); waitErr != nil {
			return waitErr
		}
		err = call(ctx)
		if err == nil || !opensubtitles.IsRetriable(err) || attempt == s.maxRetries {
			return err
		}
		delay := s.backoff(attempt)
		s.logger.Debug("opensubtitles call retrying",
			logging.String("operation", op),
			logging.Int("attempt", attempt),
			logging.Duration("backoff", delay),
			logging.Error(err),
		)
		if waitErr := s.sleep(ctx, delay); waitErr != nil {
			return waitErr
		}
	}
	return err
}

func (s *Source) throttle(ctx context.Context) error {
	s.mu.Lock()
	wait := time.Until(s.lastCall.Add(s.minInterval))
	s.mu.Unlock()
	if wait > 0 {
		if err := s.sleep(ctx, wait); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.lastCall = time.Now()
	s.mu.Unlock()
	return nil
}

func (s *Source) loadCached(fileID int64) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	cached, ok, err := s.cache.Get(fileID)
	if err != nil {
		s.logger.Debug("subtitle cache read failed", logging.Int64("file_id", fileID), logging.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return cached.Payload, true
}

func (s *Source) storeCached(chosen opensubtitles.Subtitle, imdbID string, result opensubtitles.DownloadResult) {
	if s.cache == nil {
		return
	}
	err := s.cache.Put(opensubtitles.CachedFile{
		FileID:   chosen.FileID,
		Language: chosen.Language,
		FileName: result.FileName,
		IMDBID:   imdbID,
		Feature:  chosen.FeatureTitle,
		Payload:  result.Data,
	})
	if err != nil {
		logging.WarnWithContext(s.logger, "subtitle cache write failed", "subtitle_cache_failed",
			logging.Int64("file_id", chosen.FileID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "the next run downloads this file again"),
			logging.String(logging.FieldErrorHint, "check paths.opensubtitles_cache_dir permissions"),
		)
	}
}

func markerFor(err error) error {
	var statusErr *opensubtitles.StatusError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return services.ErrTimeout
	case errors.Is(err, context.Canceled):
		return services.ErrTransient
	case errors.As(err, &statusErr):
		switch statusErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return services.ErrConfiguration
		case http.StatusNotFound, http.StatusGone:
			return services.ErrNotFound
		}
	}
	return services.ErrTransient
}
