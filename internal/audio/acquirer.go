package audio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"reelscript/internal/logging"
	"reelscript/internal/services"
)

// DefaultAttemptTimeout bounds each yt-dlp invocation.
const DefaultAttemptTimeout = 5 * time.Minute

const (
	strategyExtract   = "extract-mp3"
	strategyBestAudio = "bestaudio"
	fallbackFormat    = "bestaudio[ext=m4a]/bestaudio[ext=webm]/bestaudio"
)

// Options configures an Acquirer.
type Options struct {
	Binary         string
	Quality        string
	AttemptTimeout time.Duration
	Executor       Executor
	Logger         *slog.Logger
}

// Acquirer downloads audio with yt-dlp.
type Acquirer struct {
	binary   string
	quality  string
	timeout  time.Duration
	exec     Executor
	logger   *slog.Logger
	resolved bool
}

// New constructs an Acquirer. The binary is resolved once up front.
func New(opts Options) *Acquirer {
	name := strings.TrimSpace(opts.Binary)
	if name == "" {
		name = "yt-dlp"
	}
	binary, resolved := ResolveBinary(name)
	quality := strings.TrimSpace(opts.Quality)
	if quality == "" {
		quality = "5"
	}
	timeout := opts.AttemptTimeout
	if timeout <= 0 {
		timeout = DefaultAttemptTimeout
	}
	executor := opts.Executor
	if executor == nil {
		executor = commandExecutor{}
	}
	return &Acquirer{
		binary:   binary,
		quality:  quality,
		timeout:  timeout,
		exec:     executor,
		logger:   logging.NewComponentLogger(opts.Logger, "audio"),
		resolved: resolved,
	}
}

// Binary returns the yt-dlp path in use and whether it was found on disk.
func (a *Acquirer) Binary() (string, bool) {
	return a.binary, a.resolved
}

// Acquire downloads the audio of videoURL into scratchDir and returns the
// path of the first audio file found there.
func (a *Acquirer) Acquire(ctx context.Context, videoURL, scratchDir string) (string, error) {
	videoURL = strings.TrimSpace(videoURL)
	if videoURL == "" {
		return "", services.Wrap(services.ErrInvalidSource, services.StageValidate, "acquire audio", "video url is required", nil)
	}
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrTransient, services.StageAcquire, "prepare scratch dir", scratchDir, err)
	}
	logger := logging.WithContext(ctx, a.logger)
	output := filepath.Join(scratchDir, "%(id)s.%(ext)s")

	primary := []string{
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", a.quality,
		"--output", output,
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		videoURL,
	}
	strategy := strategyExtract
	err := a.attempt(ctx, primary)
	if err != nil && errors.Is(err, services.ErrExternalTool) {
		logging.WarnWithContext(logger, "audio extraction failed; retrying without transcoding", "audio_fallback",
			logging.Error(err),
			logging.String(logging.FieldImpact, "audio is downloaded in its native container"),
			logging.String(logging.FieldErrorHint, "install ffmpeg to enable mp3 extraction"),
		)
		fallback := []string{
			"-f", fallbackFormat,
			"--output", output,
			"--no-playlist",
			"--quiet",
			"--no-warnings",
			videoURL,
		}
		strategy = strategyBestAudio
		if fbErr := a.attempt(ctx, fallback); fbErr != nil {
			if errors.Is(fbErr, services.ErrExternalTool) {
				return "", services.Wrap(services.ErrExternalTool, services.StageAcquire, "yt-dlp",
					"both download strategies failed", errors.Join(err, fbErr))
			}
			return "", fbErr
		}
		err = nil
	}
	if err != nil {
		return "", err
	}

	path, err := findAudio(scratchDir)
	if err != nil {
		return "", err
	}
	var size int64
	if info, statErr := os.Stat(path); statErr == nil {
		size = info.Size()
	}
	logger.Info("audio acquired",
		logging.String("strategy", strategy),
		logging.Int64("audio_bytes", size),
		logging.String("audio_path", path),
	)
	return path, nil
}

func (a *Acquirer) attempt(ctx context.Context, args []string) error {
	attemptCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	err := a.exec.Run(attemptCtx, a.binary, args)
	if err == nil {
		return nil
	}
	switch {
	case ctx.Err() != nil:
		return services.Wrap(services.ErrTransient, services.StageAcquire, "yt-dlp", "interrupted", ctx.Err())
	case errors.Is(attemptCtx.Err(), context.DeadlineExceeded):
		return services.Wrap(services.ErrTimeout, services.StageAcquire, "yt-dlp",
			fmt.Sprintf("no result after %s", a.timeout), err)
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return services.Wrap(services.ErrToolMissing, services.StageAcquire, "yt-dlp",
			fmt.Sprintf("%s not found; install with pip install yt-dlp", a.binary), err)
	default:
		return services.Wrap(services.ErrExternalTool, services.StageAcquire, "yt-dlp", "", err)
	}
}

func findAudio(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, services.StageAcquire, "locate audio", dir, err)
	}
	present := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		present = append(present, entry.Name())
		if IsAudioFile(entry.Name()) {
			return filepath.Join(dir, entry.Name()), nil
		}
	}
	return "", services.Wrap(services.ErrNotFound, services.StageAcquire, "locate audio",
		fmt.Sprintf("no audio file in %s (found %d other files)", dir, len(present)), nil)
}
