package preflight

import (
	"context"

	"reelscript/internal/config"
	"reelscript/internal/dialogue"
)

// MinFreeBytes is the free space the staging directory must have for audio downloads.
const MinFreeBytes = 512 << 20

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Skipped  bool
	Optional bool
	Detail   string
}

// Failed reports whether the check blocks a run.
func (r Result) Failed() bool {
	return !r.Passed && !r.Skipped && !r.Optional
}

// RunAll executes the checks relevant to the extractor kinds about to run.
// An empty kinds list checks everything.
func RunAll(ctx context.Context, cfg *config.Config, kinds ...string) []Result {
	if cfg == nil {
		return nil
	}
	wantAI, wantSubs := len(kinds) == 0, len(kinds) == 0
	for _, kind := range kinds {
		switch kind {
		case dialogue.KindAI:
			wantAI = true
		case dialogue.KindSubtitles:
			wantSubs = true
		}
	}

	results := []Result{
		CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		CheckFreeSpace("Staging free space", cfg.Paths.StagingDir, MinFreeBytes),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckCatalog(ctx, cfg),
	}
	if wantAI {
		for _, status := range CheckSystemDeps(cfg) {
			results = append(results, Result{
				Name:     status.Name,
				Passed:   status.Available,
				Optional: status.Optional,
				Detail:   statusDetail(status.Command, status.Detail),
			})
		}
		results = append(results, CheckGeminiFromConfig(ctx, cfg))
	}
	if wantSubs {
		results = append(results, CheckOpenSubtitlesFromConfig(ctx, cfg))
	}
	return results
}

// AnyFailed reports whether any result blocks a run.
func AnyFailed(results []Result) bool {
	for _, r := range results {
		if r.Failed() {
			return true
		}
	}
	return false
}

func statusDetail(command, detail string) string {
	if detail != "" {
		return detail
	}
	return command
}
