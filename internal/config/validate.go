package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Validate ensures the configuration is usable. Credentials are checked by
// RequireTranscription and RequireOpenSubtitles when an extractor is built.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateOpenSubtitles(); err != nil {
		return err
	}
	if err := c.validateLanguage(); err != nil {
		return err
	}
	if err := ensurePositiveMap(map[string]int{
		"audio.attempt_timeout_seconds":       c.Audio.AttemptTimeoutSeconds,
		"transcription.poll_interval_seconds": c.Transcription.PollIntervalSeconds,
		"transcription.poll_timeout_seconds":  c.Transcription.PollTimeoutSeconds,
		"transcription.timeout_seconds":       c.Transcription.TimeoutSeconds,
		"opensubtitles.timeout_seconds":       c.OpenSubtitles.TimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Pacing.AISeconds < 0 || c.Pacing.SubtitleSeconds < 0 {
		return errors.New("pacing values must be >= 0")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	switch c.Catalog.Driver {
	case CatalogSQLite:
		if strings.TrimSpace(c.Catalog.Path) == "" {
			return errors.New("catalog.path must be set when catalog.driver is sqlite")
		}
	case CatalogPostgres:
		if strings.TrimSpace(c.Catalog.DSN) == "" {
			return errors.New("catalog.dsn must be set when catalog.driver is postgres (or set REELSCRIPT_DATABASE_URL)")
		}
	default:
		return fmt.Errorf("catalog.driver: unsupported value %q (want sqlite or postgres)", c.Catalog.Driver)
	}
	if c.Catalog.BatchSize <= 0 || c.Catalog.BatchSize > maxCatalogBatchSize {
		return fmt.Errorf("catalog.batch_size must be between 1 and %d", maxCatalogBatchSize)
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if c.Transcription.Temperature < 0 || c.Transcription.Temperature > 2 {
		return errors.New("transcription.temperature must be between 0 and 2")
	}
	if c.Transcription.MaxOutputTokens <= 0 {
		return errors.New("transcription.max_output_tokens must be positive")
	}
	if c.Transcription.PollTimeoutSeconds < c.Transcription.PollIntervalSeconds {
		return errors.New("transcription.poll_timeout_seconds must be >= transcription.poll_interval_seconds")
	}
	return nil
}

func (c *Config) validateOpenSubtitles() error {
	if c.OpenSubtitles.SourceLanguage == c.OpenSubtitles.TargetLanguage {
		return errors.New("opensubtitles.source_language and opensubtitles.target_language must differ")
	}
	if strings.TrimSpace(c.OpenSubtitles.UserAgent) == "" {
		return errors.New("opensubtitles.user_agent must be set")
	}
	return nil
}

func (c *Config) validateLanguage() error {
	if _, ok := unicode.Scripts[c.Language.SourceScript]; !ok {
		return fmt.Errorf("language.source_script: unknown Unicode script %q", c.Language.SourceScript)
	}
	if c.Language.AIThreshold <= 0 || c.Language.AIThreshold > 1 {
		return errors.New("language.ai_threshold must be between 0 and 1")
	}
	if c.Language.SubtitleThreshold <= 0 || c.Language.SubtitleThreshold > 1 {
		return errors.New("language.subtitle_threshold must be between 0 and 1")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
