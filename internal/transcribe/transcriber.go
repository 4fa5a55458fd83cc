package transcribe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"captioner/internal/captions"
	"captioner/internal/config"
	"captioner/internal/services"
)

// Transcriber produces time-ordered segments for an audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]captions.Segment, error)
}

// New builds the engine selected by cfg.Transcription.Engine, bounded by the
// configured transcription timeout.
func New(cfg *config.Config) (Transcriber, error) {
	engine, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}
	return WithTimeout(engine, cfg.TranscriptionTimeout()), nil
}

func newEngine(cfg *config.Config) (Transcriber, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "select engine", "configuration unavailable", nil)
	}
	t := cfg.Transcription
	switch strings.ToLower(strings.TrimSpace(t.Engine)) {
	case config.EngineWhisperX:
		return NewWhisperX(WhisperXConfig{
			Model:       t.Model,
			CUDAEnabled: t.CUDAEnabled,
			Language:    t.Language,
			WorkDir:     cfg.Paths.WorkDir,
		}), nil
	case config.EngineOpenAI:
		return NewOpenAI(OpenAIConfig{
			APIKey:   t.OpenAIAPIKey,
			BaseURL:  t.OpenAIBaseURL,
			Model:    t.OpenAIModel,
			Language: t.Language,
		})
	default:
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "select engine", fmt.Sprintf("unknown engine %q", t.Engine), nil)
	}
}

// normalizeSegments drops blank segments, trims text, and repairs inverted spans.
func normalizeSegments(in []captions.Segment) []captions.Segment {
	out := make([]captions.Segment, 0, len(in))
	for _, seg := range in {
		seg.Text = strings.TrimSpace(seg.Text)
		if seg.Text == "" {
			continue
		}
		if seg.End < seg.Start {
			seg.End = seg.Start
		}
		out = append(out, seg)
	}
	return out
}

type timeoutTranscriber struct {
	inner   Transcriber
	timeout time.Duration
}

// WithTimeout bounds each Transcribe call. A non-positive timeout returns t.
func WithTimeout(t Transcriber, timeout time.Duration) Transcriber {
	if timeout <= 0 {
		return t
	}
	return timeoutTranscriber{inner: t, timeout: timeout}
}

func (t timeoutTranscriber) Transcribe(ctx context.Context, audioPath string) ([]captions.Segment, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	segments, err := t.inner.Transcribe(ctx, audioPath)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, services.Wrap(services.ErrTimeout, "transcribe", "run", fmt.Sprintf("exceeded %s", t.timeout), err)
	}
	return segments, err
}
