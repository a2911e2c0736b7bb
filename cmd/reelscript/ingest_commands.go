package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"reelscript/internal/dialogue"
	"reelscript/internal/ingest"
	"reelscript/internal/preflight"
	"reelscript/internal/seeds"
)

// titleFlags collects the catalog metadata shared by the single-title commands.
type titleFlags struct {
	videoID     string
	name        string
	nativeName  string
	year        int
	cast        []string
	director    string
	description string
}

func (f *titleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.videoID, "video-id", "", "External video id (catalog key)")
	cmd.Flags().StringVar(&f.name, "title", "", "Title name")
	cmd.Flags().StringVar(&f.nativeName, "native-title", "", "Title in the source script")
	cmd.Flags().IntVar(&f.year, "year", 0, "Release year")
	cmd.Flags().StringSliceVar(&f.cast, "cast", nil, "Cast members (comma separated or repeated)")
	cmd.Flags().StringVar(&f.director, "director", "", "Director")
	cmd.Flags().StringVar(&f.description, "description", "", "Short description")
	_ = cmd.MarkFlagRequired("title")
}

func (f titleFlags) title() dialogue.Title {
	return dialogue.Title{
		ExternalVideoID: strings.TrimSpace(f.videoID),
		Name:            strings.TrimSpace(f.name),
		NativeName:      strings.TrimSpace(f.nativeName),
		Year:            f.year,
		Cast:            f.cast,
		Director:        strings.TrimSpace(f.director),
		Description:     strings.TrimSpace(f.description),
	}
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var meta titleFlags
	var videoURL string
	var dryRun, jsonOut bool

	cmd := &cobra.Command{
		Use:   "transcribe",
		Short: "Transcribe one video's audio and store its dialogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			src := dialogue.Source{
				Title:    meta.title(),
				Kind:     dialogue.KindAI,
				VideoURL: strings.TrimSpace(videoURL),
			}
			return ctx.runSingle(cmd, src, dryRun, jsonOut)
		},
	}
	meta.register(cmd)
	cmd.Flags().StringVar(&videoURL, "url", "", "Video URL to download audio from")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Extract and normalize without writing the catalog")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the result as JSON")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func newSubtitlesCommand(ctx *commandContext) *cobra.Command {
	var meta titleFlags
	var imdbID string
	var dryRun, jsonOut bool

	cmd := &cobra.Command{
		Use:   "subtitles",
		Short: "Import one title's dialogue from a marketplace subtitle file",
		RunE: func(cmd *cobra.Command, args []string) error {
			src := dialogue.Source{
				Title:  meta.title(),
				Kind:   dialogue.KindSubtitles,
				IMDBID: strings.TrimSpace(imdbID),
			}
			return ctx.runSingle(cmd, src, dryRun, jsonOut)
		},
	}
	meta.register(cmd)
	cmd.Flags().StringVar(&imdbID, "imdb", "", "IMDb id used for the subtitle search (tt1234567)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Extract and normalize without writing the catalog")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the result as JSON")
	_ = cmd.MarkFlagRequired("video-id")
	return cmd
}

func (c *commandContext) runSingle(cmd *cobra.Command, src dialogue.Source, dryRun, jsonOut bool) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	runCtx, logger, err := c.runContext(cmd)
	if err != nil {
		return err
	}
	rt, err := buildRuntime(runCtx, cfg, logger, runtimeOptions{
		kinds:  []string{src.Kind},
		dryRun: dryRun,
		strict: true,
	})
	if err != nil {
		return err
	}
	defer rt.close(logger)

	res := rt.pipeline.IngestOne(runCtx, src, dryRun)
	out := cmd.OutOrStdout()
	if jsonOut {
		if err := writeJSON(cmd, toJSONResult(res)); err != nil {
			return err
		}
	} else {
		for _, line := range renderResult(res, shouldColorize(out)) {
			fmt.Fprintln(out, line)
		}
	}
	if !res.Success {
		return fmt.Errorf("%s: %s at %s: %w", res.Title.Label(), res.Reason, res.Stage, res.Err)
	}
	return nil
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var kind, filter, seedPath string
	var dryRun, jsonOut, skipPreflight bool

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Ingest the seed title list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			kind = strings.ToLower(strings.TrimSpace(kind))
			switch kind {
			case "", ingest.KindAll, dialogue.KindAI, dialogue.KindSubtitles:
			default:
				return fmt.Errorf("invalid --kind %q (want ai, subtitles or all)", kind)
			}

			sources, err := loadSeeds(seedPath)
			if err != nil {
				return err
			}
			opts := ingest.BatchOptions{Filter: filter, Kind: kind, DryRun: dryRun}
			selected := ingest.Select(sources, opts)
			out := cmd.OutOrStdout()
			if len(selected) == 0 {
				fmt.Fprintln(out, "No titles match the requested kind and filter")
				return nil
			}

			runCtx, logger, err := ctx.runContext(cmd)
			if err != nil {
				return err
			}
			kinds := distinctKinds(selected)
			colorize := shouldColorize(out)

			if !skipPreflight {
				results := preflight.RunAll(runCtx, cfg, kinds...)
				if preflight.AnyFailed(results) {
					for _, line := range renderPreflight(results, colorize) {
						fmt.Fprintln(out, line)
					}
					return errors.New("preflight failed; fix the checks above or pass --skip-preflight")
				}
			}

			rt, err := buildRuntime(runCtx, cfg, logger, runtimeOptions{kinds: kinds, dryRun: dryRun})
			if err != nil {
				return err
			}
			defer rt.close(logger)

			summary := rt.pipeline.IngestBatch(runCtx, sources, opts)
			if jsonOut {
				if err := writeJSON(cmd, toJSONSummary(summary, ctx.runID)); err != nil {
					return err
				}
			} else {
				fmt.Fprint(out, renderSummary(summary, colorize))
			}

			switch {
			case summary.Canceled:
				return context.Canceled
			case summary.Failed > 0:
				return fmt.Errorf("%w: %d of %d", errTitlesFailed, summary.Failed, len(summary.Results))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", ingest.KindAll, "Extractor kind to run: ai, subtitles or all")
	cmd.Flags().StringVar(&filter, "filter", "", "Only titles whose name contains this text (case-insensitive)")
	cmd.Flags().StringVar(&seedPath, "seeds", "", "Seed file to use instead of the built-in list")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Extract and normalize without writing the catalog")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the summary as JSON")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Start without running preflight checks")
	return cmd
}

func loadSeeds(path string) ([]dialogue.Source, error) {
	if strings.TrimSpace(path) == "" {
		return seeds.Builtin()
	}
	return seeds.Load(path)
}

func distinctKinds(sources []dialogue.Source) []string {
	seen := make(map[string]struct{})
	kinds := make([]string, 0, 2)
	for _, src := range sources {
		if _, ok := seen[src.Kind]; ok {
			continue
		}
		seen[src.Kind] = struct{}{}
		kinds = append(kinds, src.Kind)
	}
	sort.Strings(kinds)
	return kinds
}
