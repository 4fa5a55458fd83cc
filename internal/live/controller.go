package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"captioner/internal/language"
	"captioner/internal/logging"
	"captioner/internal/services"
)

// Options configures a Controller.
type Options struct {
	Language    language.Language
	SampleRate  int
	ChunkFrames int
	StopTimeout time.Duration

	Registry *Registry
	Source   AudioSource
	Sinks    []TranscriptSink
	Journal  SessionJournal
	Logger   *slog.Logger
}

// Controller drives live sessions through Idle, Running and Stopping.
type Controller struct {
	registry    *Registry
	source      AudioSource
	sinks       []TranscriptSink
	journal     SessionJournal
	logger      *slog.Logger
	sampleRate  int
	chunkFrames int
	stopTimeout time.Duration

	// sinkMu orders sink resets against saves so a cancelled session never
	// writes after the next session has cleared the sinks.
	sinkMu sync.Mutex

	mu        sync.Mutex
	state     State
	lang      language.Language
	session   *session
	observers map[int]Observer
	nextObs   int
}

type session struct {
	id     string
	lang   language.Language
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	logger *slog.Logger

	mu   sync.RWMutex
	text string
}

func (s *session) snapshot() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

func (s *session) append(piece string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text += piece
	return s.text
}

// NewController validates opts and returns an idle controller.
func NewController(opts Options) (*Controller, error) {
	if opts.Registry == nil {
		return nil, errors.New("live controller requires a recognizer registry")
	}
	if opts.Source == nil {
		return nil, errors.New("live controller requires an audio source")
	}
	lang := opts.Language
	if lang == "" {
		lang = language.Default
	}
	if !lang.Valid() {
		return nil, services.Wrap(services.ErrValidation, "live", "configure", fmt.Sprintf("unsupported language %q", lang), nil)
	}
	c := &Controller{
		registry:    opts.Registry,
		source:      opts.Source,
		sinks:       opts.Sinks,
		journal:     opts.Journal,
		logger:      logging.NewComponentLogger(opts.Logger, "live"),
		sampleRate:  opts.SampleRate,
		chunkFrames: opts.ChunkFrames,
		stopTimeout: opts.StopTimeout,
		lang:        lang,
		observers:   make(map[int]Observer),
	}
	if c.sampleRate <= 0 {
		c.sampleRate = DefaultSampleRate
	}
	if c.chunkFrames <= 0 {
		c.chunkFrames = DefaultChunkFrames
	}
	if c.stopTimeout <= 0 {
		c.stopTimeout = DefaultStopTimeout
	}
	return c, nil
}

// Subscribe registers an observer and returns a function removing it.
func (c *Controller) Subscribe(obs Observer) (unsubscribe func()) {
	if obs == nil {
		return func() {}
	}
	c.mu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = obs
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

// SetLanguage selects the recognizer language for the next session.
func (c *Controller) SetLanguage(lang language.Language) error {
	if !lang.Valid() {
		return services.Wrap(services.ErrValidation, "live", "set language", fmt.Sprintf("unsupported language %q", lang), nil)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return fmt.Errorf("set language: %w", ErrAlreadyRunning)
	}
	c.lang = lang
	return nil
}

// Snapshot returns the current state and the text of the current or most
// recent session.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	snap := Snapshot{State: c.state, Language: c.lang}
	s := c.session
	c.mu.Unlock()
	if s != nil {
		snap.SessionID = s.id
		snap.Text = strings.TrimSpace(s.snapshot())
	}
	return snap
}

// Done returns a channel closed when the current session's worker exits.
// With no session the channel is already closed.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return c.session.done
}

// Start begins a new session. It fails with ErrAlreadyRunning unless Idle.
// The recognizer is created without holding the controller lock, so a slow
// backend does not block Snapshot or observers.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	lang := c.lang
	c.mu.Unlock()

	rec, err := c.registry.NewRecognizer(ctx, lang, c.sampleRate)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "live", "create recognizer", string(lang), err)
	}

	id := uuid.NewString()
	sessCtx, cancel := context.WithCancel(services.WithSessionID(ctx, id))
	s := &session{
		id:     id,
		lang:   lang,
		ctx:    sessCtx,
		cancel: cancel,
		done:   make(chan struct{}),
		logger: logging.WithContext(sessCtx, c.logger),
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		cancel()
		if err := rec.Close(); err != nil {
			s.logger.Debug("recognizer close failed", logging.Error(err))
		}
		return ErrAlreadyRunning
	}
	c.session = s
	c.state = StateRunning
	c.mu.Unlock()

	c.resetSinks(s)
	if c.journal != nil {
		if err := c.journal.SessionStarted(sessCtx, id, string(s.lang)); err != nil {
			logging.WarnWithContext(s.logger, "session journal unavailable", "journal_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "session history will be incomplete"),
			)
		}
	}

	s.logger.Info("live session started",
		logging.String("language", string(s.lang)),
		logging.Int("sample_rate", c.sampleRate),
		logging.Int("chunk_frames", c.chunkFrames),
	)
	go c.run(s, rec)
	return nil
}

// Stop cancels the running session and waits up to the stop timeout for the
// worker to exit. A timeout is reported in the result and logged, not
// returned as an error. The controller is Idle when Stop returns.
func (c *Controller) Stop() (StopResult, error) {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return StopResult{}, ErrNotRunning
	}
	s := c.session
	c.state = StateStopping
	s.cancel()
	c.mu.Unlock()

	result := StopResult{SessionID: s.id}
	timer := time.NewTimer(c.stopTimeout)
	defer timer.Stop()
	select {
	case <-s.done:
	case <-timer.C:
		result.TimedOut = true
		logging.WarnWithContext(s.logger, "live worker did not stop in time", "live_stop_timeout",
			logging.Duration("timeout", c.stopTimeout),
			logging.String(logging.FieldErrorHint, "check the audio device and recognizer connection"),
			logging.String(logging.FieldImpact, "worker abandoned; its remaining results are discarded"),
		)
	}

	c.mu.Lock()
	if c.session == s {
		c.state = StateIdle
	}
	c.mu.Unlock()
	s.logger.Info("live session stopped", logging.Bool("timed_out", result.TimedOut))
	return result, nil
}

func (c *Controller) resetSinks(s *session) {
	c.sinkMu.Lock()
	defer c.sinkMu.Unlock()
	for _, sink := range c.sinks {
		r, ok := sink.(resettable)
		if !ok {
			continue
		}
		if err := r.Reset(); err != nil {
			logging.WarnWithContext(s.logger, "failed to clear transcript", "transcript_reset_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "previous transcript remains until the first final result"),
			)
		}
	}
}

// finish returns the controller to Idle when the worker ends on its own.
func (c *Controller) finish(s *session, reason string) {
	c.mu.Lock()
	if c.session == s && c.state == StateRunning {
		c.state = StateIdle
	}
	c.mu.Unlock()
	s.cancel()

	text := strings.TrimSpace(s.snapshot())
	if c.journal != nil {
		if err := c.journal.SessionEnded(context.WithoutCancel(s.ctx), s.id, reason, text); err != nil {
			logging.WarnWithContext(s.logger, "session journal unavailable", "journal_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "session end not recorded"),
			)
		}
	}
	s.logger.Info("live worker exited", logging.String("reason", reason), logging.Int("chars", len([]rune(text))))
}

func (c *Controller) notify(text string) {
	c.mu.Lock()
	observers := make([]Observer, 0, len(c.observers))
	for _, obs := range c.observers {
		observers = append(observers, obs)
	}
	c.mu.Unlock()
	for _, obs := range observers {
		obs.OnTextUpdated(text)
	}
}
