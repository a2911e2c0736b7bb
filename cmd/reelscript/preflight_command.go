package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"reelscript/internal/dialogue"
	"reelscript/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Check tools, directories, catalog and service credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var kinds []string
			switch kind {
			case "", "all":
			case dialogue.KindAI, dialogue.KindSubtitles:
				kinds = []string{kind}
			default:
				return fmt.Errorf("invalid --kind %q (want ai, subtitles or all)", kind)
			}
			results := preflight.RunAll(cmd.Context(), cfg, kinds...)
			out := cmd.OutOrStdout()
			for _, line := range renderPreflight(results, shouldColorize(out)) {
				fmt.Fprintln(out, line)
			}
			if preflight.AnyFailed(results) {
				return errors.New("preflight failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "all", "Extractor kind to check: ai, subtitles or all")
	return cmd
}
