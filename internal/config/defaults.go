package config

const (
	defaultConfigPath             = "~/.config/reelscript/config.toml"
	defaultStagingDir             = "~/.local/share/reelscript/staging"
	defaultLogDir                 = "~/.local/share/reelscript/logs"
	defaultStateDir               = "~/.local/share/reelscript/state"
	defaultOpenSubtitlesCacheDir  = "~/.local/share/reelscript/cache/opensubtitles"
	defaultCatalogPath            = "~/.local/share/reelscript/catalog.db"
	defaultCatalogBatchSize       = 500
	maxCatalogBatchSize           = 4000
	defaultGeminiBaseURL          = "https://generativelanguage.googleapis.com"
	defaultGeminiModel            = "gemini-2.0-flash"
	defaultGeminiTemperature      = 0.1
	defaultGeminiMaxOutputTokens  = 32768
	defaultPollIntervalSeconds    = 3
	defaultPollTimeoutSeconds     = 120
	defaultGeminiTimeoutSeconds   = 300
	defaultOpenSubtitlesBaseURL   = "https://api.opensubtitles.com/api/v1"
	defaultOpenSubtitlesUserAgent = "reelscript v1.0"
	defaultSourceLanguage         = "ta"
	defaultTargetLanguage         = "en"
	defaultOpenSubtitlesTimeout   = 30
	defaultYTDLPBinary            = "yt-dlp"
	defaultAttemptTimeoutSeconds  = 300
	defaultAudioQuality           = "5"
	defaultSourceScript           = "Tamil"
	defaultSourceLabel            = "tamil"
	defaultTargetLabel            = "english"
	defaultMixedLabel             = "tanglish"
	defaultAIThreshold            = 0.85
	defaultSubtitleThreshold      = 0.7
	defaultAIPauseSeconds         = 5
	defaultSubtitlePauseSeconds   = 1
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultLogRetentionDays       = 30
)

// Catalog driver names.
const (
	CatalogSQLite   = "sqlite"
	CatalogPostgres = "postgres"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir:            defaultStagingDir,
			LogDir:                defaultLogDir,
			StateDir:              defaultStateDir,
			OpenSubtitlesCacheDir: defaultOpenSubtitlesCacheDir,
		},
		Catalog: Catalog{
			Driver:    CatalogSQLite,
			Path:      defaultCatalogPath,
			BatchSize: defaultCatalogBatchSize,
		},
		Transcription: Transcription{
			BaseURL:             defaultGeminiBaseURL,
			Model:               defaultGeminiModel,
			Temperature:         defaultGeminiTemperature,
			MaxOutputTokens:     defaultGeminiMaxOutputTokens,
			PollIntervalSeconds: defaultPollIntervalSeconds,
			PollTimeoutSeconds:  defaultPollTimeoutSeconds,
			TimeoutSeconds:      defaultGeminiTimeoutSeconds,
		},
		OpenSubtitles: OpenSubtitles{
			BaseURL:        defaultOpenSubtitlesBaseURL,
			UserAgent:      defaultOpenSubtitlesUserAgent,
			SourceLanguage: defaultSourceLanguage,
			TargetLanguage: defaultTargetLanguage,
			TimeoutSeconds: defaultOpenSubtitlesTimeout,
		},
		Audio: Audio{
			Binary:                defaultYTDLPBinary,
			AttemptTimeoutSeconds: defaultAttemptTimeoutSeconds,
			Quality:               defaultAudioQuality,
		},
		Language: Language{
			SourceScript:      defaultSourceScript,
			AIThreshold:       defaultAIThreshold,
			SubtitleThreshold: defaultSubtitleThreshold,
			SourceLabel:       defaultSourceLabel,
			TargetLabel:       defaultTargetLabel,
			MixedLabel:        defaultMixedLabel,
		},
		Pacing: Pacing{
			AISeconds:       defaultAIPauseSeconds,
			SubtitleSeconds: defaultSubtitlePauseSeconds,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
