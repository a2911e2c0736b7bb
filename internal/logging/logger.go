package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"reelscript/internal/config"
)

// RunLogPattern matches per-run log files in the log directory.
const RunLogPattern = "run-*.log"

// Options describes logger construction parameters. OutputPaths accepts
// "stdout", "stderr", or file paths; it defaults to stderr.
type Options struct {
	Level       string
	Format      string
	OutputPaths []string
	Development bool
}

type handlerFactory func(w io.Writer, level *slog.LevelVar, addSource bool) slog.Handler

var handlerFactories = map[string]handlerFactory{
	"console": newPrettyHandler,
	"json":    newJSONHandler,
}

// New constructs a slog logger. Caller locations are attached in
// development mode and at debug level.
func New(opts Options) (*slog.Logger, error) {
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	factory, ok := handlerFactories[format]
	if !ok {
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	w, err := openOutputs(opts.OutputPaths)
	if err != nil {
		return nil, err
	}
	level := new(slog.LevelVar)
	level.Set(parseLevel(opts.Level))
	return slog.New(factory(w, level, opts.Development || level.Level() <= slog.LevelDebug)), nil
}

// NewFromConfig logs to stderr and, when runID is set and a log directory
// is configured, also to that run's file. The path is empty without a file.
func NewFromConfig(cfg *config.Config, runID string) (*slog.Logger, string, error) {
	if cfg == nil {
		logger, err := New(Options{})
		return logger, "", err
	}

	opts := Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, OutputPaths: []string{"stderr"}}
	dir := strings.TrimSpace(cfg.Paths.LogDir)
	var runLog string
	if dir != "" && strings.TrimSpace(runID) != "" {
		runLog = RunLogPath(dir, runID)
		opts.OutputPaths = append(opts.OutputPaths, runLog)
	}
	logger, err := New(opts)
	if err != nil {
		return nil, "", err
	}
	return logger, runLog, nil
}

// RunLogPath returns the per-run log file for runID inside dir.
func RunLogPath(dir, runID string) string {
	return filepath.Join(dir, "run-"+strings.TrimSpace(runID)+".log")
}

func parseLevel(value string) slog.Level {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "warning" {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func openOutputs(paths []string) (io.Writer, error) {
	var cleaned []string
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" && !slices.Contains(cleaned, p) {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) == 0 {
		return os.Stderr, nil
	}

	writers := make([]io.Writer, 0, len(cleaned))
	for _, p := range cleaned {
		switch p {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
				return nil, fmt.Errorf("ensure log directory: %w", err)
			}
			f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", p, err)
			}
			writers = append(writers, f)
		}
	}
	if len(writers) == 1 {
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}
