package live

import (
	"context"
	"errors"
	"io"
	"time"

	"captioner/internal/language"
)

// DefaultStopTimeout bounds how long Stop waits for the worker to exit.
const DefaultStopTimeout = 5 * time.Second

// DefaultSampleRate and DefaultChunkFrames describe the capture format.
const (
	DefaultSampleRate  = 44100
	DefaultChunkFrames = 2000
)

// bytesPerFrame is the size of one mono signed 16-bit sample.
const bytesPerFrame = 2

var (
	// ErrAlreadyRunning is returned when Start or SetLanguage is called outside Idle.
	ErrAlreadyRunning = errors.New("live session already running")
	// ErrNotRunning is returned when Stop is called while no session is running.
	ErrNotRunning = errors.New("live session not running")
	// ErrNoRecognizer is returned when no factory is registered for a language.
	ErrNoRecognizer = errors.New("no recognizer registered for language")
)

// State is the controller lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Result is one recognizer output. Partial results are superseded by the next
// result; final results are committed to the session text.
type Result struct {
	Text  string
	Final bool
}

// Recognizer consumes audio chunks. Feed reports ok=false when the chunk
// produced no result. The chunk buffer is reused after Feed returns.
type Recognizer interface {
	Feed(ctx context.Context, chunk []byte) (Result, bool, error)
	Close() error
}

// RecognizerFactory builds a fresh recognizer for a session.
type RecognizerFactory interface {
	NewRecognizer(ctx context.Context, sampleRate int) (Recognizer, error)
}

// AudioSource opens a stream of mono s16le PCM at the given sample rate.
// Implementations should end the stream when ctx is cancelled.
type AudioSource interface {
	Open(ctx context.Context, sampleRate int) (io.ReadCloser, error)
}

// Observer receives the displayed text after every partial and final result.
// Calls happen on the session worker goroutine.
type Observer interface {
	OnTextUpdated(text string)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(text string)

// OnTextUpdated calls f(text).
func (f ObserverFunc) OnTextUpdated(text string) { f(text) }

// TranscriptSink persists the full session transcript, replacing the previous content.
type TranscriptSink interface {
	Save(ctx context.Context, text string) error
}

// resettable sinks are cleared when a session starts.
type resettable interface {
	Reset() error
}

// SessionJournal records session history.
type SessionJournal interface {
	SessionStarted(ctx context.Context, id, language string) error
	FinalRecorded(ctx context.Context, id, final, transcript string) error
	SessionEnded(ctx context.Context, id, reason, transcript string) error
}

// Reasons recorded when a session ends.
const (
	EndStopped      = "stopped"
	EndSourceClosed = "source_closed"
	EndError        = "error"
)

// StopResult reports how Stop completed.
type StopResult struct {
	SessionID string
	TimedOut  bool
}

// Snapshot is a point-in-time view of the controller.
type Snapshot struct {
	SessionID string
	State     State
	Language  language.Language
	Text      string
}
