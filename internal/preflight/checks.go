package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"reelscript/internal/catalog"
	"reelscript/internal/config"
	"reelscript/internal/deps"
	"reelscript/internal/services/gemini"
	"reelscript/internal/subtitles/opensubtitles"
)

// CheckGemini verifies that the Gemini API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt (no retries).
func CheckGemini(ctx context.Context, cfg config.Transcription) Result {
	const name = "Gemini"
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := gemini.New(gemini.Config{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		TimeoutSeconds: 30,
	}, gemini.WithRetry(1, 0, 0))
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeServiceError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("model %s reachable", client.Model())}
}

// CheckOpenSubtitles verifies the OpenSubtitles credentials by logging in.
func CheckOpenSubtitles(ctx context.Context, cfg config.OpenSubtitles) Result {
	const name = "OpenSubtitles"
	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := opensubtitles.New(opensubtitles.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		UserAgent:  cfg.UserAgent,
		Username:   cfg.Username,
		Password:   cfg.Password,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	})
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if err := client.Login(checkCtx); err != nil {
		var statusErr *opensubtitles.StatusError
		if errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden) {
			return Result{Name: name, Detail: "login rejected (check username, password and api key)"}
		}
		return Result{Name: name, Detail: summarizeServiceError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "login ok"}
}

// CheckCatalog opens the configured catalog, which also verifies its schema.
func CheckCatalog(ctx context.Context, cfg *config.Config) Result {
	name := "Catalog (" + cfg.Catalog.Driver + ")"
	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	store, err := catalog.Open(checkCtx, cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	defer store.Close()
	titles, err := store.ListTitles(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d titles", len(titles))}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies that the filesystem holding path has at least minBytes available.
func CheckFreeSpace(name, path string, minBytes uint64) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < minBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s free, need %s", humanize.IBytes(free), humanize.IBytes(minBytes))}
	}
	return Result{Name: name, Passed: true, Detail: humanize.IBytes(free) + " free"}
}

// CheckSystemDeps evaluates the external binaries the AI extractor uses.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.Probe(cfg.Audio.Binary)
}

// summarizeServiceError produces a human-readable summary for health check failures.
func summarizeServiceError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (API unreachable)"
	}
	return err.Error()
}
