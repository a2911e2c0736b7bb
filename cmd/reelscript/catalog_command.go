package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"reelscript/internal/catalog"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the segment catalog",
	}
	catalogCmd.AddCommand(newCatalogListCommand(ctx))
	catalogCmd.AddCommand(newCatalogShowCommand(ctx))
	return catalogCmd
}

func (c *commandContext) withCatalog(cmd *cobra.Command, fn func(catalog.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := catalog.Open(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalogued titles with their segment counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(cmd, func(store catalog.Store) error {
				titles, err := store.ListTitles(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, toJSONTitles(titles))
				}
				out := cmd.OutOrStdout()
				if len(titles) == 0 {
					fmt.Fprintln(out, "Catalog is empty")
					return nil
				}
				rows := make([][]string, 0, len(titles))
				total := 0
				for _, t := range titles {
					total += t.Segments
					rows = append(rows, []string{
						t.Title.ExternalVideoID,
						t.Title.Label(),
						humanize.Comma(int64(t.Segments)),
						strconv.FormatInt(t.Generation, 10),
						humanize.Time(t.UpdatedAt),
					})
				}
				fmt.Fprint(out, renderTable([]column{
					{title: "Video"},
					{title: "Title"},
					{title: "Segments", numeric: true},
					{title: "Generation", numeric: true},
					{title: "Updated"},
				}, rows))
				fmt.Fprintf(out, "\n%d titles, %s segments\n", len(titles), humanize.Comma(int64(total)))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newCatalogShowCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "show <video-id>",
		Short: "Show a title and the start of its dialogue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoID := strings.TrimSpace(args[0])
			return ctx.withCatalog(cmd, func(store catalog.Store) error {
				record, err := store.Title(cmd.Context(), videoID)
				if err != nil {
					return err
				}
				segments, err := store.Segments(cmd.Context(), videoID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				lines := renderSectionHeader(record.Title.Label(), colorize)
				lines = append(lines,
					renderStatusLine("Video id", statusInfo, record.Title.ExternalVideoID, colorize),
					renderStatusLine("Slug", statusInfo, record.Slug, colorize),
				)
				if record.Title.NativeName != "" {
					lines = append(lines, renderStatusLine("Native title", statusInfo, record.Title.NativeName, colorize))
				}
				if record.Title.Director != "" {
					lines = append(lines, renderStatusLine("Director", statusInfo, record.Title.Director, colorize))
				}
				if len(record.Title.Cast) > 0 {
					lines = append(lines, renderStatusLine("Cast", statusInfo, strings.Join(record.Title.Cast, ", "), colorize))
				}
				lines = append(lines,
					renderStatusLine("Segments", statusInfo, humanize.Comma(int64(len(segments))), colorize),
					renderStatusLine("Generation", statusInfo, strconv.FormatInt(record.Generation, 10), colorize),
				)
				for _, line := range lines {
					fmt.Fprintln(out, line)
				}
				if limit > 0 && len(segments) > limit {
					segments = segments[:limit]
				}
				if len(segments) > 0 {
					fmt.Fprintln(out)
					fmt.Fprintln(out, renderSampleTable(segments))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of segments to print (0 prints all)")
	return cmd
}
