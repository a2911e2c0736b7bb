package main

import (
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCommand() *cobra.Command {
	var configFlag string
	cc := newCommandContext(&configFlag)

	root := &cobra.Command{
		Use:   "reelscript",
		Short: "Tamil movie dialogue ingestion",
		Long: "reelscript collects timed dialogue for Tamil films from AI transcription\n" +
			"of trailers and clips or from community subtitles, and stores it in a\n" +
			"searchable catalog.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := cc.ensureConfig()
			return err
		},
	}
	root.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	root.AddGroup(
		&cobra.Group{ID: "ingest", Title: "Ingestion:"},
		&cobra.Group{ID: "manage", Title: "Management:"},
	)
	for _, cmd := range []*cobra.Command{newTranscribeCommand(cc), newSubtitlesCommand(cc), newBatchCommand(cc)} {
		cmd.GroupID = "ingest"
		root.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{newCatalogCommand(cc), newConfigCommand(cc), newPreflightCommand(cc)} {
		cmd.GroupID = "manage"
		root.AddCommand(cmd)
	}
	return root
}
