package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains working directory configuration.
type Paths struct {
	StagingDir            string `toml:"staging_dir"`
	LogDir                string `toml:"log_dir"`
	StateDir              string `toml:"state_dir"`
	OpenSubtitlesCacheDir string `toml:"opensubtitles_cache_dir"`
}

// Catalog selects and configures the segment catalog backend.
type Catalog struct {
	Driver    string `toml:"driver"`
	Path      string `toml:"path"`
	DSN       string `toml:"dsn"`
	BatchSize int    `toml:"batch_size"`
}

// Transcription contains the Gemini connection settings used by the AI extractor.
type Transcription struct {
	APIKey              string  `toml:"api_key"`
	BaseURL             string  `toml:"base_url"`
	Model               string  `toml:"model"`
	Temperature         float64 `toml:"temperature"`
	MaxOutputTokens     int     `toml:"max_output_tokens"`
	PollIntervalSeconds int     `toml:"poll_interval_seconds"`
	PollTimeoutSeconds  int     `toml:"poll_timeout_seconds"`
	TimeoutSeconds      int     `toml:"timeout_seconds"`
}

// OpenSubtitles contains credentials and language preferences for subtitle retrieval.
type OpenSubtitles struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	UserAgent      string `toml:"user_agent"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	SourceLanguage string `toml:"source_language"`
	TargetLanguage string `toml:"target_language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Audio contains yt-dlp acquisition settings.
type Audio struct {
	Binary                string `toml:"binary"`
	AttemptTimeoutSeconds int    `toml:"attempt_timeout_seconds"`
	Quality               string `toml:"quality"`
}

// Language contains classification settings. SourceScript is a Unicode script
// name such as "Tamil".
type Language struct {
	SourceScript      string  `toml:"source_script"`
	AIThreshold       float64 `toml:"ai_threshold"`
	SubtitleThreshold float64 `toml:"subtitle_threshold"`
	SourceLabel       string  `toml:"source_label"`
	TargetLabel       string  `toml:"target_label"`
	MixedLabel        string  `toml:"mixed_label"`
}

// Pacing contains the pauses inserted between titles in a batch.
type Pacing struct {
	AISeconds       int `toml:"ai_seconds"`
	SubtitleSeconds int `toml:"subtitle_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for reelscript.
//
// Configuration sections by subsystem:
//   - Paths: staging, logs, run state and subtitle cache directories
//   - Catalog: sqlite or postgres segment store
//   - Transcription: Gemini audio transcription
//   - OpenSubtitles: subtitle marketplace credentials and languages
//   - Audio: yt-dlp acquisition
//   - Language: classifier script and thresholds
//   - Pacing: pauses between batch titles
//   - Logging: log format, level and per-run log retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Catalog       Catalog       `toml:"catalog"`
	Transcription Transcription `toml:"transcription"`
	OpenSubtitles OpenSubtitles `toml:"opensubtitles"`
	Audio         Audio         `toml:"audio"`
	Language      Language      `toml:"language"`
	Pacing        Pacing        `toml:"pacing"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelscript.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the working directories an ingestion run needs.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.StagingDir, c.Paths.LogDir, c.Paths.StateDir, c.Paths.OpenSubtitlesCacheDir}
	if c.Catalog.Driver == CatalogSQLite {
		dirs = append(dirs, filepath.Dir(c.Catalog.Path))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RequireTranscription reports whether the AI extractor has the credentials it needs.
func (c *Config) RequireTranscription() error {
	if strings.TrimSpace(c.Transcription.APIKey) == "" {
		return fmt.Errorf("transcription.api_key is required. Set GEMINI_API_KEY or edit %s", displayConfigPath())
	}
	return nil
}

// RequireOpenSubtitles reports whether the subtitle extractor has the credentials it needs.
func (c *Config) RequireOpenSubtitles() error {
	missing := make([]string, 0, 3)
	if c.OpenSubtitles.APIKey == "" {
		missing = append(missing, "opensubtitles.api_key (OPENSUBTITLES_API_KEY)")
	}
	if c.OpenSubtitles.Username == "" {
		missing = append(missing, "opensubtitles.username (OPENSUBTITLES_USERNAME)")
	}
	if c.OpenSubtitles.Password == "" {
		missing = append(missing, "opensubtitles.password (OPENSUBTITLES_PASSWORD)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s; edit %s", strings.Join(missing, ", "), displayConfigPath())
	}
	return nil
}

// PollInterval returns the transcription readiness poll interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Transcription.PollIntervalSeconds) * time.Second
}

// PollTimeout returns the maximum time to wait for an uploaded file to become ready.
func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.Transcription.PollTimeoutSeconds) * time.Second
}

// AttemptTimeout returns the per-attempt yt-dlp timeout.
func (c *Config) AttemptTimeout() time.Duration {
	return time.Duration(c.Audio.AttemptTimeoutSeconds) * time.Second
}

// PauseFor returns the pause inserted between titles of the given extractor kind.
func (c *Config) PauseFor(kind string) time.Duration {
	switch kind {
	case "subtitles":
		return time.Duration(c.Pacing.SubtitleSeconds) * time.Second
	default:
		return time.Duration(c.Pacing.AISeconds) * time.Second
	}
}

// LockPath returns the location of the single-run lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "reelscript.lock")
}

func displayConfigPath() string {
	path, err := DefaultConfigPath()
	if err != nil {
		return defaultConfigPath
	}
	return path
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
