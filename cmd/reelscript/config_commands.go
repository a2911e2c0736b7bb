package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelscript/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigValidateCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set transcription.api_key (or GEMINI_API_KEY) and the opensubtitles credentials before running reelscript.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			source := ctx.configPath
			if !ctx.configExists {
				source += " (not found, defaults in use)"
			}
			fmt.Fprintf(out, "Config: %s\n", source)
			fmt.Fprint(out, renderTable([]column{{title: "Setting"}, {title: "Value", maxWidth: 80}}, configRows(cfg)))
			fmt.Fprintln(out)
			return nil
		},
	}
}

func configRows(cfg *config.Config) [][]string {
	rows := [][]string{
		{"paths.staging_dir", cfg.Paths.StagingDir},
		{"paths.log_dir", cfg.Paths.LogDir},
		{"paths.state_dir", cfg.Paths.StateDir},
		{"paths.opensubtitles_cache_dir", cfg.Paths.OpenSubtitlesCacheDir},
		{"catalog.driver", cfg.Catalog.Driver},
	}
	if cfg.Catalog.Driver == config.CatalogPostgres {
		rows = append(rows, []string{"catalog.dsn", maskDSN(cfg.Catalog.DSN)})
	} else {
		rows = append(rows, []string{"catalog.path", cfg.Catalog.Path})
	}
	return append(rows,
		[]string{"catalog.batch_size", strconv.Itoa(cfg.Catalog.BatchSize)},
		[]string{"transcription.api_key", maskSecret(cfg.Transcription.APIKey)},
		[]string{"transcription.model", cfg.Transcription.Model},
		[]string{"transcription.poll", fmt.Sprintf("every %s for up to %s", cfg.PollInterval(), cfg.PollTimeout())},
		[]string{"opensubtitles.api_key", maskSecret(cfg.OpenSubtitles.APIKey)},
		[]string{"opensubtitles.username", cfg.OpenSubtitles.Username},
		[]string{"opensubtitles.password", maskSecret(cfg.OpenSubtitles.Password)},
		[]string{"opensubtitles.languages", cfg.OpenSubtitles.SourceLanguage + ", " + cfg.OpenSubtitles.TargetLanguage},
		[]string{"audio.binary", cfg.Audio.Binary},
		[]string{"audio.attempt_timeout", cfg.AttemptTimeout().String()},
		[]string{"language.source_script", cfg.Language.SourceScript},
		[]string{"language.thresholds", fmt.Sprintf("ai %.2f, subtitles %.2f", cfg.Language.AIThreshold, cfg.Language.SubtitleThreshold)},
		[]string{"language.labels", strings.Join([]string{cfg.Language.SourceLabel, cfg.Language.TargetLabel, cfg.Language.MixedLabel}, ", ")},
		[]string{"pacing", fmt.Sprintf("ai %s, subtitles %s", cfg.PauseFor("ai"), cfg.PauseFor("subtitles"))},
		[]string{"logging", fmt.Sprintf("%s/%s, keep %d days", cfg.Logging.Format, cfg.Logging.Level, cfg.Logging.RetentionDays)},
	)
}

func maskSecret(value string) string {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return "(not set)"
	case len(value) <= 4:
		return "****"
	default:
		return value[:2] + strings.Repeat("*", 6) + value[len(value)-2:]
	}
}

// maskDSN hides the password component of a postgres URL.
func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	if colon := strings.Index(creds, ":"); colon >= 0 {
		creds = creds[:colon] + ":****"
	}
	return dsn[:scheme+3] + creds + dsn[at:]
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if !ctx.configExists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			colorize := shouldColorize(out)
			for _, check := range []struct {
				name string
				err  error
			}{
				{"AI extractor", cfg.RequireTranscription()},
				{"Subtitle extractor", cfg.RequireOpenSubtitles()},
			} {
				if check.err != nil {
					fmt.Fprintln(out, renderStatusLine(check.name, statusWarn, check.err.Error(), colorize))
				} else {
					fmt.Fprintln(out, renderStatusLine(check.name, statusOK, "credentials set", colorize))
				}
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
