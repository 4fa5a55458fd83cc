package logging

import (
	"context"
	"log/slog"

	"captioner/internal/services"
)

// Standard attribute keys.
const (
	FieldComponent = "component"
	FieldSessionID = "session_id"
	FieldStage     = "stage"
	// FieldCorrelationID carries the HTTP request id.
	FieldCorrelationID = "correlation_id"
	FieldEventType     = "event_type"
	// FieldErrorHint suggests the operator's next step.
	FieldErrorHint = "error_hint"
	// FieldImpact describes what the user loses because of a warning.
	FieldImpact = "impact"
)

// WithContext adds the session, stage and request ids found in ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	var args []any
	for _, f := range []struct {
		key    string
		lookup func(context.Context) (string, bool)
	}{
		{FieldSessionID, services.SessionIDFromContext},
		{FieldStage, services.StageFromContext},
		{FieldCorrelationID, services.RequestIDFromContext},
	} {
		if v, ok := f.lookup(ctx); ok {
			args = append(args, slog.String(f.key, v))
		}
	}
	if len(args) == 0 {
		return logger
	}
	return logger.With(args...)
}
