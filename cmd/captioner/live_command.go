package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"captioner/internal/audio"
	"captioner/internal/config"
	"captioner/internal/journal"
	"captioner/internal/language"
	"captioner/internal/live"
	"captioner/internal/live/vosk"
	"captioner/internal/liveapi"
	"captioner/internal/logging"
	"captioner/internal/services"
	"captioner/internal/transcript"
)

const consoleTailWidth = 100

func newLiveCommand(ctx *commandContext) *cobra.Command {
	var langFlag string
	var serve bool
	var idle bool

	cmd := &cobra.Command{
		Use:   "live",
		Short: "Stream microphone audio to a recognizer and show subtitles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			langValue := cfg.Live.Language
			if strings.TrimSpace(langFlag) != "" {
				langValue = langFlag
			}
			lang, err := language.Parse(langValue)
			if err != nil {
				return services.Wrap(services.ErrValidation, "live", "select language", "", err)
			}
			if idle && !serve && !cfg.API.Enabled {
				return services.Wrap(services.ErrValidation, "live", "configure", "--idle requires --serve", nil)
			}

			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runLive(sigCtx, liveRun{
				cfg:     cfg,
				logger:  logger,
				lang:    lang,
				serve:   serve || cfg.API.Enabled,
				idle:    idle,
				out:     cmd.OutOrStdout(),
				console: shouldColorize(cmd.OutOrStdout()),
			})
		},
	}

	cmd.Flags().StringVarP(&langFlag, "language", "l", "", "Recognition language (english or hindi)")
	cmd.Flags().BoolVar(&serve, "serve", false, "Expose the live HTTP API while running")
	cmd.Flags().BoolVar(&idle, "idle", false, "Wait for POST /api/live/start instead of starting immediately")
	return cmd
}

type liveRun struct {
	cfg     *config.Config
	logger  *slog.Logger
	lang    language.Language
	serve   bool
	idle    bool
	out     io.Writer
	console bool
}

func runLive(ctx context.Context, run liveRun) error {
	cfg := run.cfg
	registry, err := buildRegistry(cfg.Live.Models)
	if err != nil {
		return err
	}

	fileSink, err := transcript.OpenFile(cfg.Paths.TranscriptPath, run.logger)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "live", "open transcript", cfg.Paths.TranscriptPath, err)
	}
	defer fileSink.Close()
	sinks := []live.TranscriptSink{fileSink}

	if cfg.Redis.Enabled {
		client := transcript.NewRedisClient(cfg.Redis)
		defer client.Close()
		sinks = append(sinks, transcript.NewRedisMirror(client, cfg.Redis.Key, cfg.Redis.Channel, run.logger))
	}

	store, err := journal.Open(cfg.Paths.JournalPath)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "live", "open journal", cfg.Paths.JournalPath, err)
	}
	defer store.Close()

	ctrl, err := live.NewController(live.Options{
		Language:    run.lang,
		SampleRate:  cfg.Live.SampleRate,
		ChunkFrames: cfg.Live.ChunkFrames,
		StopTimeout: cfg.StopTimeout(),
		Registry:    registry,
		Source:      audio.NewMicrophone(cfg.FFmpegBinary(), cfg.Live.InputFormat, cfg.Live.InputDevice, run.logger),
		Sinks:       sinks,
		Journal:     store,
		Logger:      run.logger,
	})
	if err != nil {
		return err
	}

	console := newConsoleObserver(run.out, run.console)
	defer ctrl.Subscribe(console)()

	if run.serve {
		server, err := liveapi.New(cfg.API.Bind, ctrl, store, run.logger)
		if err != nil {
			return err
		}
		defer ctrl.Subscribe(server)()
		if err := server.Start(ctx); err != nil {
			return err
		}
		defer server.Stop()
		fmt.Fprintf(run.out, "Live API listening on http://%s/api\n", server.Addr())
	}

	if !run.idle {
		if err := ctrl.Start(ctx); err != nil {
			return err
		}
	}

	if run.serve {
		<-ctx.Done()
	} else {
		select {
		case <-ctx.Done():
		case <-ctrl.Done():
		}
	}

	result, err := ctrl.Stop()
	if err != nil && !errors.Is(err, live.ErrNotRunning) {
		return err
	}
	console.finish()
	run.logger.Info("live command finished",
		logging.String("language", string(run.lang)),
		logging.Bool("stop_timed_out", result.TimedOut),
	)
	if result.TimedOut {
		fmt.Fprintln(run.out, "Warning: recognizer did not stop in time; its remaining output was discarded")
	}
	if text := ctrl.Snapshot().Text; text != "" && !run.console {
		fmt.Fprintln(run.out, text)
	}
	return nil
}

func buildRegistry(models map[string]string) (*live.Registry, error) {
	registry := live.NewRegistry()
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		lang, err := language.Parse(name)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "live", "register model", name, err)
		}
		if err := registry.Register(lang, vosk.NewModel(models[name])); err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "live", "register model", name, err)
		}
	}
	return registry, nil
}

// consoleObserver redraws the transcript tail on a terminal.
type consoleObserver struct {
	mu      sync.Mutex
	w       io.Writer
	redraw  bool
	written bool
}

func newConsoleObserver(w io.Writer, redraw bool) *consoleObserver {
	return &consoleObserver{w: w, redraw: redraw}
}

func (o *consoleObserver) OnTextUpdated(text string) {
	if !o.redraw {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(o.w, "\r%s%s", ansiClearLine, tail(text, consoleTailWidth))
	o.written = true
}

func (o *consoleObserver) finish() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.written {
		fmt.Fprintln(o.w)
		o.written = false
	}
}

var _ live.Observer = (*consoleObserver)(nil)
