package ingest

import (
	"context"
	"strings"
	"time"

	"reelscript/internal/dialogue"
	"reelscript/internal/logging"
)

// KindAll selects every registered kind in a batch.
const KindAll = "all"

// Select returns the sources matching opts in their original order.
func Select(sources []dialogue.Source, opts BatchOptions) []dialogue.Source {
	filter := strings.ToLower(strings.TrimSpace(opts.Filter))
	kind := strings.ToLower(strings.TrimSpace(opts.Kind))
	out := make([]dialogue.Source, 0, len(sources))
	for _, src := range sources {
		if kind != "" && kind != KindAll && !strings.EqualFold(src.Kind, kind) {
			continue
		}
		if filter != "" && !matchesFilter(src.Title, filter) {
			continue
		}
		out = append(out, src)
	}
	return out
}

func matchesFilter(title dialogue.Title, filter string) bool {
	return strings.Contains(strings.ToLower(title.Name), filter) ||
		strings.Contains(strings.ToLower(title.NativeName), filter)
}

// IngestBatch ingests the selected sources one after another. Cancellation is
// honoured between titles; a title already started runs to completion.
func (p *Pipeline) IngestBatch(ctx context.Context, sources []dialogue.Source, opts BatchOptions) Summary {
	started := time.Now()
	selected := Select(sources, opts)
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.Int("selected", len(selected)),
		logging.Int("available", len(sources)),
		logging.String("filter", opts.Filter),
		logging.Bool("dry_run", opts.DryRun),
	)

	var summary Summary
	for i, src := range selected {
		if ctx.Err() != nil {
			summary.Canceled = true
			summary.Skipped = len(selected) - i
			break
		}
		res := p.IngestOne(ctx, src, opts.DryRun)
		summary.add(res)

		if i == len(selected)-1 {
			break
		}
		pause := p.routes[res.Kind].pause
		if pause <= 0 {
			continue
		}
		logger.Debug("pausing before next title", logging.Duration("pause", pause))
		if err := p.sleep(ctx, pause); err != nil {
			summary.Canceled = true
			summary.Skipped = len(selected) - i - 1
			break
		}
	}
	summary.Elapsed = time.Since(started)

	attrs := []logging.Attr{
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Int("total_segments", summary.TotalSegments),
		logging.Duration("elapsed", summary.Elapsed),
	}
	if summary.Canceled {
		logging.WarnWithContext(logger, "batch canceled", "batch_canceled", append(attrs,
			logging.Int("skipped", summary.Skipped),
			logging.String(logging.FieldImpact, "remaining titles were not ingested"),
			logging.String(logging.FieldErrorHint, "re-run the batch with --filter to resume"),
		)...)
		return summary
	}
	attrs = append(attrs, logging.String(logging.FieldEventType, "batch_complete"))
	logger.Info("batch completed", logging.Args(attrs...)...)
	return summary
}
