package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"reelscript/internal/audio"
	"reelscript/internal/dialogue"
	"reelscript/internal/logging"
	"reelscript/internal/services"
	"reelscript/internal/services/gemini"
)

// Default transcription settings.
const (
	DefaultPollInterval    = 3 * time.Second
	DefaultPollTimeout     = 120 * time.Second
	DefaultTemperature     = 0.1
	DefaultMaxOutputTokens = 32768
)

// Capability is the hosted speech model the transcriber talks to.
type Capability interface {
	UploadFile(ctx context.Context, path, mimeType string) (gemini.File, error)
	GetFile(ctx context.Context, name string) (gemini.File, error)
	Generate(ctx context.Context, req gemini.GenerateRequest) (gemini.GenerateResult, error)
	DeleteFile(ctx context.Context, name string) error
}

// Options configures a Transcriber.
type Options struct {
	PollInterval    time.Duration
	PollTimeout     time.Duration
	Temperature     float64
	MaxOutputTokens int
	Prompt          string
	Logger          *slog.Logger
	Sleep           func(context.Context, time.Duration) error
}

// Transcriber drives the upload, poll, generate and delete protocol.
type Transcriber struct {
	api          Capability
	pollInterval time.Duration
	pollTimeout  time.Duration
	temperature  float64
	maxTokens    int
	prompt       string
	logger       *slog.Logger
	sleep        func(context.Context, time.Duration) error
}

// NewTranscriber constructs a Transcriber over api.
func NewTranscriber(api Capability, opts Options) *Transcriber {
	t := &Transcriber{
		api:          api,
		pollInterval: opts.PollInterval,
		pollTimeout:  opts.PollTimeout,
		temperature:  opts.Temperature,
		maxTokens:    opts.MaxOutputTokens,
		prompt:       opts.Prompt,
		logger:       logging.NewComponentLogger(opts.Logger, "transcribe"),
		sleep:        opts.Sleep,
	}
	if t.pollInterval <= 0 {
		t.pollInterval = DefaultPollInterval
	}
	if t.pollTimeout <= 0 {
		t.pollTimeout = DefaultPollTimeout
	}
	if t.temperature <= 0 {
		t.temperature = DefaultTemperature
	}
	if t.maxTokens <= 0 {
		t.maxTokens = DefaultMaxOutputTokens
	}
	if t.prompt == "" {
		t.prompt = Prompt
	}
	if t.sleep == nil {
		t.sleep = sleepContext
	}
	return t
}

// Transcribe returns the raw segments spoken in the audio file at path.
func (t *Transcriber) Transcribe(ctx context.Context, path string) ([]dialogue.RawSegment, error) {
	if t == nil || t.api == nil {
		return nil, services.Wrap(services.ErrConfiguration, services.StageExtract, "transcribe", "not configured", nil)
	}
	logger := logging.WithContext(ctx, t.logger)
	mimeType := audio.MIMEType(path)

	file, err := t.api.UploadFile(ctx, path, mimeType)
	if err != nil {
		return nil, services.Wrap(markerFor(err), services.StageExtract, "upload audio", "", err)
	}
	if file.MIMEType == "" {
		file.MIMEType = mimeType
	}
	logger.Debug("audio uploaded", logging.String("remote_file", file.Name), logging.String("mime_type", mimeType))
	defer t.deleteRemote(ctx, logger, file.Name)

	file, err = t.waitReady(ctx, file)
	if err != nil {
		return nil, err
	}

	result, err := t.api.Generate(ctx, gemini.GenerateRequest{
		Prompt:          t.prompt,
		File:            file,
		Temperature:     t.temperature,
		MaxOutputTokens: t.maxTokens,
	})
	if err != nil {
		var empty *gemini.EmptyResponseError
		if errors.As(err, &empty) {
			return nil, services.Wrap(services.ErrNoContent, services.StageExtract, "generate transcript", "model returned no text", err)
		}
		return nil, services.Wrap(markerFor(err), services.StageExtract, "generate transcript", "", err)
	}

	entries, salvaged, err := Decode(result.Text)
	if err != nil {
		logger.Debug("transcript decode failed", logging.String("response_snippet", snippet(result.Text)))
		return nil, services.Wrap(services.ErrValidation, services.StageExtract, "decode transcript", "", err)
	}
	segments := RawSegments(entries)
	if len(segments) == 0 {
		return nil, services.Wrap(services.ErrNoContent, services.StageExtract, "decode transcript", "no timed entries", nil)
	}
	if salvaged {
		logging.WarnWithContext(logger, "transcript salvaged from surrounding text", "transcript_salvaged",
			logging.Int("raw_segments", len(segments)),
			logging.String(logging.FieldImpact, "only the first array in the response was kept"),
			logging.String(logging.FieldErrorHint, "inspect the model response if segments look truncated"),
		)
	}
	logger.Info("transcript decoded",
		logging.Int("raw_segments", len(segments)),
		logging.String("finish_reason", result.FinishReason),
	)
	return segments, nil
}

func (t *Transcriber) waitReady(ctx context.Context, file gemini.File) (gemini.File, error) {
	deadline := time.Now().Add(t.pollTimeout)
	for {
		switch {
		case file.Ready():
			return file, nil
		case file.Failed():
			msg := "remote processing failed"
			if file.Error != nil && file.Error.Message != "" {
				msg = file.Error.Message
			}
			return file, services.Wrap(services.ErrExternalTool, services.StageExtract, "process audio", msg, nil)
		case file.State != "" && file.State != gemini.StateProcessing:
			return file, services.Wrap(services.ErrExternalTool, services.StageExtract, "process audio",
				fmt.Sprintf("unexpected state %q", file.State), nil)
		}
		if !time.Now().Before(deadline) {
			return file, services.Wrap(services.ErrTimeout, services.StageExtract, "process audio",
				fmt.Sprintf("still processing after %s", t.pollTimeout), nil)
		}
		if err := t.sleep(ctx, t.pollInterval); err != nil {
			return file, services.Wrap(services.ErrTransient, services.StageExtract, "process audio", "interrupted", err)
		}
		next, err := t.api.GetFile(ctx, file.Name)
		if err != nil {
			return file, services.Wrap(markerFor(err), services.StageExtract, "poll audio state", "", err)
		}
		if next.MIMEType == "" {
			next.MIMEType = file.MIMEType
		}
		file = next
	}
}

func (t *Transcriber) deleteRemote(ctx context.Context, logger *slog.Logger, name string) {
	if name == "" {
		return
	}
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := t.api.DeleteFile(cleanupCtx, name); err != nil {
		logging.WarnWithContext(logger, "remote audio delete failed", "remote_delete_failed",
			logging.String("remote_file", name),
			logging.Error(err),
			logging.String(logging.FieldImpact, "the uploaded file expires on its own"),
			logging.String(logging.FieldErrorHint, "remove it manually if quota is tight"),
		)
		return
	}
	logger.Debug("remote audio deleted", logging.String("remote_file", name))
}

func markerFor(err error) error {
	var statusErr *gemini.StatusError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return services.ErrTimeout
	case errors.As(err, &statusErr):
		switch statusErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return services.ErrConfiguration
		case http.StatusNotFound:
			return services.ErrNotFound
		case http.StatusBadRequest:
			return services.ErrExternalTool
		}
	}
	return services.ErrTransient
}

func snippet(text string) string {
	const limit = 500
	if runes := []rune(text); len(runes) > limit {
		return string(runes[:limit])
	}
	return text
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
