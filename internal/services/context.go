package services

import "context"

type contextKey int

const (
	sessionIDKey contextKey = iota
	stageKey
	requestIDKey
)

func withValue(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func lookup(ctx context.Context, key contextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}

// WithSessionID tags ctx with a live session id.
func WithSessionID(ctx context.Context, id string) context.Context {
	return withValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext returns the live session id, if any.
func SessionIDFromContext(ctx context.Context) (string, bool) { return lookup(ctx, sessionIDKey) }

// WithStage tags ctx with a pipeline stage name such as "burn".
func WithStage(ctx context.Context, stage string) context.Context {
	return withValue(ctx, stageKey, stage)
}

func StageFromContext(ctx context.Context) (string, bool) { return lookup(ctx, stageKey) }

// WithRequestID tags ctx with an HTTP request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withValue(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) { return lookup(ctx, requestIDKey) }
