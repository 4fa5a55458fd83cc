package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"captioner/internal/logging"
)

// Microphone opens the platform capture device through ffmpeg.
type Microphone struct {
	FFmpeg string
	// Format and Device are the ffmpeg -f and -i values. Empty uses the platform default.
	Format string
	Device string
	Logger *slog.Logger

	goos  string
	start func(cmd *exec.Cmd) error
}

// NewMicrophone returns a Microphone using ffmpegBinary.
func NewMicrophone(ffmpegBinary, format, device string, logger *slog.Logger) *Microphone {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	return &Microphone{
		FFmpeg: ffmpegBinary,
		Format: format,
		Device: device,
		Logger: logging.NewComponentLogger(logger, "audio"),
		goos:   runtime.GOOS,
		start:  (*exec.Cmd).Start,
	}
}

// DefaultInput returns the ffmpeg input format and device for goos.
func DefaultInput(goos string) (format, device string) {
	switch goos {
	case "darwin":
		return "avfoundation", ":default"
	case "windows":
		return "dshow", "audio=default"
	default:
		return "pulse", "default"
	}
}

func (m *Microphone) args(sampleRate int) []string {
	format, device := DefaultInput(m.goos)
	if m.Format != "" {
		format = m.Format
	}
	if m.Device != "" {
		device = m.Device
	}
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-nostdin",
		"-f", format,
		"-i", device,
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-f", "s16le",
		"-",
	}
}

// Open starts capturing. The stream ends when ctx is cancelled or ffmpeg exits.
func (m *Microphone) Open(ctx context.Context, sampleRate int) (io.ReadCloser, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("microphone: invalid sample rate %d", sampleRate)
	}
	args := m.args(sampleRate)
	cmd := exec.CommandContext(ctx, m.FFmpeg, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("microphone: %w", err)
	}
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	start := m.start
	if start == nil {
		start = (*exec.Cmd).Start
	}
	if err := start(cmd); err != nil {
		return nil, fmt.Errorf("microphone: start ffmpeg: %w", err)
	}
	m.Logger.Debug("microphone capture started", logging.String("command", m.FFmpeg+" "+strings.Join(args, " ")))
	return &captureStream{ReadCloser: stdout, cmd: cmd, stderr: stderr, ctx: ctx}, nil
}

type captureStream struct {
	io.ReadCloser
	cmd    *exec.Cmd
	stderr *bytes.Buffer
	ctx    context.Context
	once   sync.Once
	err    error
}

// Close stops ffmpeg and reports capture failures other than cancellation.
func (s *captureStream) Close() error {
	s.once.Do(func() {
		_ = s.ReadCloser.Close()
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		err := s.cmd.Wait()
		if err == nil || s.ctx.Err() != nil {
			return
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && !exitErr.Exited() {
			// Killed by Close.
			return
		}
		s.err = fmt.Errorf("microphone: ffmpeg: %w: %s", err, strings.TrimSpace(s.stderr.String()))
	})
	return s.err
}
