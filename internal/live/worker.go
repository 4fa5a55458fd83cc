package live

import (
	"context"
	"errors"
	"io"
	"strings"

	"captioner/internal/logging"
	"captioner/internal/textcorrect"
)

func (c *Controller) run(s *session, rec Recognizer) {
	defer close(s.done)
	reason := c.loop(s, rec)
	c.finish(s, reason)
}

func (c *Controller) loop(s *session, rec Recognizer) string {
	defer func() {
		if err := rec.Close(); err != nil {
			s.logger.Debug("recognizer close failed", logging.Error(err))
		}
	}()

	src, err := c.source.Open(s.ctx, c.sampleRate)
	if err != nil {
		if s.ctx.Err() != nil {
			return EndStopped
		}
		logging.ErrorWithContext(s.logger, "failed to open audio source", "audio_open_failed", logging.Error(err))
		return EndError
	}
	defer func() {
		if err := src.Close(); err != nil {
			s.logger.Debug("audio source close failed", logging.Error(err))
		}
	}()

	buf := make([]byte, c.chunkFrames*bytesPerFrame)
	for {
		if s.ctx.Err() != nil {
			return EndStopped
		}
		n, readErr := io.ReadFull(src, buf)
		if n > 0 {
			res, ok, err := rec.Feed(s.ctx, buf[:n])
			if err != nil {
				if s.ctx.Err() != nil {
					return EndStopped
				}
				logging.ErrorWithContext(s.logger, "recognizer failed", "recognizer_failed", logging.Error(err))
				return EndError
			}
			if ok {
				c.dispatch(s, res)
			}
		}
		if readErr != nil {
			if s.ctx.Err() != nil {
				return EndStopped
			}
			if errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF) {
				return EndSourceClosed
			}
			logging.ErrorWithContext(s.logger, "audio read failed", "audio_read_failed", logging.Error(readErr))
			return EndError
		}
	}
}

// dispatch folds one recognizer result into the session. Results arriving
// after cancellation are dropped.
func (c *Controller) dispatch(s *session, res Result) {
	if s.ctx.Err() != nil {
		return
	}
	if !res.Final {
		if res.Text == "" {
			return
		}
		c.notify(s.snapshot() + res.Text)
		return
	}

	final := strings.TrimSpace(res.Text)
	if final == "" {
		return
	}
	corrected := textcorrect.Correct(final, s.lang)
	full := strings.TrimSpace(s.append(corrected + " "))

	persistCtx := context.WithoutCancel(s.ctx)
	if !c.saveTranscript(persistCtx, s, full) {
		return
	}
	if c.journal != nil {
		if err := c.journal.FinalRecorded(persistCtx, s.id, corrected, full); err != nil {
			logging.WarnWithContext(s.logger, "session journal unavailable", "journal_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "final result missing from session history"),
			)
		}
	}
	s.logger.Debug("final recorded", logging.Int("chars", len([]rune(full))))
	c.notify(full)
}

// saveTranscript writes full to every sink unless the session has been
// cancelled. It reports whether the save went ahead.
func (c *Controller) saveTranscript(ctx context.Context, s *session, full string) bool {
	c.sinkMu.Lock()
	defer c.sinkMu.Unlock()
	if s.ctx.Err() != nil {
		return false
	}
	for _, sink := range c.sinks {
		if err := sink.Save(ctx, full); err != nil {
			logging.WarnWithContext(s.logger, "failed to persist transcript", "transcript_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "transcript on disk lags the live text"),
			)
		}
	}
	return true
}
