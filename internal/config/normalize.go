package config

import (
	"fmt"
	"os"
	"strings"

	"reelscript/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	c.normalizeTranscription()
	c.normalizeOpenSubtitles()
	c.normalizeAudio()
	c.normalizeLanguage()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(orDefault(c.Paths.StagingDir, defaultStagingDir)); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(orDefault(c.Paths.StateDir, defaultStateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.OpenSubtitlesCacheDir, err = expandPath(orDefault(c.Paths.OpenSubtitlesCacheDir, defaultOpenSubtitlesCacheDir)); err != nil {
		return fmt.Errorf("paths.opensubtitles_cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCatalog() error {
	c.Catalog.Driver = strings.ToLower(strings.TrimSpace(c.Catalog.Driver))
	switch c.Catalog.Driver {
	case "", "sqlite3":
		c.Catalog.Driver = CatalogSQLite
	case "postgresql", "pgx":
		c.Catalog.Driver = CatalogPostgres
	}
	var err error
	if c.Catalog.Path, err = expandPath(orDefault(c.Catalog.Path, defaultCatalogPath)); err != nil {
		return fmt.Errorf("catalog.path: %w", err)
	}
	c.Catalog.DSN = strings.TrimSpace(c.Catalog.DSN)
	if c.Catalog.DSN == "" {
		c.Catalog.DSN = envFirst("REELSCRIPT_DATABASE_URL", "DATABASE_URL")
	}
	if c.Catalog.BatchSize <= 0 {
		c.Catalog.BatchSize = defaultCatalogBatchSize
	}
	return nil
}

func (c *Config) normalizeTranscription() {
	c.Transcription.APIKey = strings.TrimSpace(c.Transcription.APIKey)
	if c.Transcription.APIKey == "" {
		c.Transcription.APIKey = envFirst("GEMINI_API_KEY", "GOOGLE_API_KEY")
	}
	c.Transcription.BaseURL = strings.TrimRight(orDefault(c.Transcription.BaseURL, defaultGeminiBaseURL), "/")
	c.Transcription.Model = orDefault(c.Transcription.Model, defaultGeminiModel)
	if c.Transcription.MaxOutputTokens <= 0 {
		c.Transcription.MaxOutputTokens = defaultGeminiMaxOutputTokens
	}
	if c.Transcription.PollIntervalSeconds <= 0 {
		c.Transcription.PollIntervalSeconds = defaultPollIntervalSeconds
	}
	if c.Transcription.PollTimeoutSeconds <= 0 {
		c.Transcription.PollTimeoutSeconds = defaultPollTimeoutSeconds
	}
	if c.Transcription.TimeoutSeconds <= 0 {
		c.Transcription.TimeoutSeconds = defaultGeminiTimeoutSeconds
	}
}

func (c *Config) normalizeOpenSubtitles() {
	subs := &c.OpenSubtitles
	subs.APIKey = strings.TrimSpace(subs.APIKey)
	if subs.APIKey == "" {
		subs.APIKey = envFirst("OPENSUBTITLES_API_KEY")
	}
	subs.Username = strings.TrimSpace(subs.Username)
	if subs.Username == "" {
		subs.Username = envFirst("OPENSUBTITLES_USERNAME")
	}
	if subs.Password == "" {
		subs.Password = envFirst("OPENSUBTITLES_PASSWORD")
	}
	subs.BaseURL = strings.TrimRight(orDefault(subs.BaseURL, defaultOpenSubtitlesBaseURL), "/")
	subs.UserAgent = orDefault(subs.UserAgent, defaultOpenSubtitlesUserAgent)
	subs.SourceLanguage = normalizeLanguageCode(subs.SourceLanguage, defaultSourceLanguage)
	subs.TargetLanguage = normalizeLanguageCode(subs.TargetLanguage, defaultTargetLanguage)
	if subs.TimeoutSeconds <= 0 {
		subs.TimeoutSeconds = defaultOpenSubtitlesTimeout
	}
}

func (c *Config) normalizeAudio() {
	c.Audio.Binary = orDefault(c.Audio.Binary, defaultYTDLPBinary)
	c.Audio.Quality = orDefault(c.Audio.Quality, defaultAudioQuality)
	if c.Audio.AttemptTimeoutSeconds <= 0 {
		c.Audio.AttemptTimeoutSeconds = defaultAttemptTimeoutSeconds
	}
}

func (c *Config) normalizeLanguage() {
	if strings.TrimSpace(c.Language.SourceScript) == "" {
		c.Language.SourceScript = language.Script(c.OpenSubtitles.SourceLanguage)
	}
	c.Language.SourceScript = orDefault(c.Language.SourceScript, defaultSourceScript)
	c.Language.SourceLabel = strings.ToLower(orDefault(c.Language.SourceLabel, strings.ToLower(language.DisplayName(c.OpenSubtitles.SourceLanguage))))
	c.Language.TargetLabel = strings.ToLower(orDefault(c.Language.TargetLabel, strings.ToLower(language.DisplayName(c.OpenSubtitles.TargetLanguage))))
	c.Language.MixedLabel = strings.ToLower(orDefault(c.Language.MixedLabel, defaultMixedLabel))
	if c.Language.AIThreshold == 0 {
		c.Language.AIThreshold = defaultAIThreshold
	}
	if c.Language.SubtitleThreshold == 0 {
		c.Language.SubtitleThreshold = defaultSubtitleThreshold
	}
	if c.Pacing.AISeconds < 0 {
		c.Pacing.AISeconds = 0
	}
	if c.Pacing.SubtitleSeconds < 0 {
		c.Pacing.SubtitleSeconds = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

// normalizeLanguageCode maps codes such as "tam" or "tamil" to ISO 639-1.
func normalizeLanguageCode(value, fallback string) string {
	if code := language.ToISO2(value); code != "" {
		return code
	}
	return fallback
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func envFirst(keys ...string) string {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
