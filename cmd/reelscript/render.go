package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"reelscript/internal/dialogue"
	"reelscript/internal/ingest"
	"reelscript/internal/preflight"
	"reelscript/internal/timecode"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
	sampleTextWidth  = 72
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	tag := "[" + statusKindLabel(kind) + "]"
	if message != "" {
		tag += " " + message
	}
	return colorText(fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", tag), statusKindColor(kind), colorize)
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	default:
		return ansiBlue
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	return []string{colorText(line, ansiBlue, colorize), colorText(rule, ansiBlue, colorize)}
}

func colorText(value, color string, colorize bool) string {
	if !colorize || color == "" {
		return value
	}
	return color + value + ansiReset
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// renderResult describes a single-title run, with the sample table for dry runs.
func renderResult(res ingest.Result, colorize bool) []string {
	lines := renderSectionHeader(res.Title.Label(), colorize)
	lines = append(lines, renderStatusLine("Video id", statusInfo, res.Title.ExternalVideoID, colorize))
	lines = append(lines, renderStatusLine("Extractor", statusInfo, res.Kind, colorize))
	if !res.Success {
		lines = append(lines, renderStatusLine("Result", statusError, fmt.Sprintf("%s at %s", res.Reason, res.Stage), colorize))
		if res.Err != nil {
			lines = append(lines, renderStatusLine("Error", statusError, res.Err.Error(), colorize))
		}
		return lines
	}
	message := fmt.Sprintf("%s segments in %s", humanize.Comma(int64(res.Segments)), formatElapsed(res.Elapsed))
	if res.DryRun {
		lines = append(lines, renderStatusLine("Result", statusWarn, message+" (dry run, catalog untouched)", colorize))
		if len(res.Sample) > 0 {
			lines = append(lines, "", "Sample:", renderSampleTable(res.Sample))
		}
		return lines
	}
	lines = append(lines, renderStatusLine("Result", statusOK, message, colorize))
	lines = append(lines, renderStatusLine("Generation", statusInfo, strconv.FormatInt(res.Generation, 10), colorize))
	return lines
}

func renderSampleTable(segments []dialogue.Segment) string {
	rows := make([][]string, 0, len(segments))
	for _, seg := range segments {
		rows = append(rows, []string{
			timecode.Format(seg.StartMS),
			formatElapsed(time.Duration(seg.DurationMS) * time.Millisecond),
			seg.Language,
			truncate(seg.Text, sampleTextWidth),
		})
	}
	return renderTable([]column{
		{title: "Start", numeric: true},
		{title: "Duration", numeric: true},
		{title: "Language"},
		{title: "Text", maxWidth: sampleTextWidth},
	}, rows)
}

// renderSummary renders the per-title table followed by the batch totals.
func renderSummary(summary ingest.Summary, colorize bool) string {
	rows := make([][]string, 0, len(summary.Results))
	for _, res := range summary.Results {
		status := colorText("ok", ansiGreen, colorize)
		detail := ""
		if res.DryRun && res.Success {
			status = colorText("dry-run", ansiYellow, colorize)
		}
		if !res.Success {
			status = colorText("failed", ansiRed, colorize)
			detail = res.Reason + " at " + res.Stage
		}
		rows = append(rows, []string{
			res.Title.Label(),
			res.Kind,
			status,
			humanize.Comma(int64(res.Segments)),
			detail,
			formatElapsed(res.Elapsed),
		})
	}

	var b strings.Builder
	b.WriteString(renderTable([]column{
		{title: "Title", maxWidth: 40},
		{title: "Kind"},
		{title: "Status"},
		{title: "Segments", numeric: true},
		{title: "Failure"},
		{title: "Elapsed", numeric: true},
	}, rows))
	b.WriteString("\n")

	failedKind := statusOK
	if summary.Failed > 0 {
		failedKind = statusError
	}
	for _, line := range []string{
		renderStatusLine("Succeeded", statusOK, strconv.Itoa(summary.Succeeded), colorize),
		renderStatusLine("Failed", failedKind, strconv.Itoa(summary.Failed), colorize),
		renderStatusLine("Total segments", statusInfo, humanize.Comma(int64(summary.TotalSegments)), colorize),
		renderStatusLine("Elapsed", statusInfo, formatElapsed(summary.Elapsed), colorize),
	} {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if summary.Canceled {
		b.WriteString(renderStatusLine("Canceled", statusWarn, fmt.Sprintf("%d titles not started", summary.Skipped), colorize))
		b.WriteString("\n")
	}
	return b.String()
}

func renderPreflight(results []preflight.Result, colorize bool) []string {
	lines := renderSectionHeader("Preflight", colorize)
	for _, r := range results {
		kind := statusOK
		switch {
		case r.Skipped:
			kind = statusInfo
		case r.Passed:
		case r.Optional:
			kind = statusWarn
		default:
			kind = statusError
		}
		lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
	}
	return lines
}

func formatElapsed(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

func truncate(value string, width int) string {
	runes := []rune(strings.TrimSpace(value))
	if len(runes) <= width {
		return string(runes)
	}
	return string(runes[:width-1]) + "…"
}
