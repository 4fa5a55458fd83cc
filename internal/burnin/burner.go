package burnin

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"captioner/internal/captions"
	"captioner/internal/logging"
	"captioner/internal/media"
	"captioner/internal/services"
	"captioner/internal/transcribe"
)

const stage = "burn"

// Media is the subset of ffmpeg tooling the pipeline needs.
type Media interface {
	Probe(ctx context.Context, path string) (media.VideoInfo, error)
	ExtractAudio(ctx context.Context, source, dest string) error
	OpenFrames(ctx context.Context, path string, info media.VideoInfo) (media.FrameSource, error)
	CreateOutput(ctx context.Context, dest string, spec media.OutputSpec) (media.FrameSink, error)
}

// Painter measures and draws caption text.
type Painter interface {
	captions.TextMeasurer
	Draw(dst draw.Image, text string, p captions.Placement) error
	CharWidth(sample string, fontScale float64) float64
}

// Options wires the pipeline.
type Options struct {
	Media       Media
	Transcriber transcribe.Transcriber
	Painter     Painter
	Segmenter   captions.Segmenter
	Layout      captions.LayoutConfig
	// CharWidth is the pixel width used for line packing; 0 measures it
	// from the transcript.
	CharWidth float64
	Workers   int
	WorkDir   string
	KeepWork  bool
	Logger    *slog.Logger
}

// Request names the files of one run.
type Request struct {
	Input  string
	Output string
	// SRTPath, when set, receives the computed cues as SubRip.
	SRTPath string
}

// Result summarizes a completed run.
type Result struct {
	Output    string
	SRTPath   string
	Segments  int
	Cues      int
	Frames    int
	FPS       float64
	CharWidth float64
	Elapsed   time.Duration
}

// Burner runs the burn pipeline.
type Burner struct {
	opts   Options
	logger *slog.Logger
}

// New validates opts.
func New(opts Options) (*Burner, error) {
	if opts.Media == nil || opts.Transcriber == nil || opts.Painter == nil {
		return nil, errors.New("burnin requires media, transcriber, and painter")
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Layout == (captions.LayoutConfig{}) {
		opts.Layout = captions.DefaultLayout()
	}
	return &Burner{opts: opts, logger: logging.NewComponentLogger(opts.Logger, "burn")}, nil
}

// Run executes the pipeline for req.
func (b *Burner) Run(ctx context.Context, req Request) (Result, error) {
	started := time.Now()
	ctx = services.WithStage(ctx, stage)
	logger := logging.WithContext(ctx, b.logger)

	input := strings.TrimSpace(req.Input)
	if input == "" {
		return Result{}, services.Wrap(services.ErrValidation, stage, "validate", "input path required", nil)
	}
	output := strings.TrimSpace(req.Output)
	if output == "" {
		output = filepath.Join(filepath.Dir(input), "output.mp4")
	}
	if sameFile(input, output) {
		return Result{}, services.Wrap(services.ErrValidation, stage, "validate", "output would overwrite the input", nil)
	}
	if _, err := os.Stat(input); err != nil {
		return Result{}, services.Wrap(services.ErrInput, stage, "open video", input, err)
	}
	info, err := b.opts.Media.Probe(ctx, input)
	if err != nil {
		return Result{}, services.Wrap(services.ErrInput, stage, "probe video", input, err)
	}
	logger.Info("video probed",
		logging.Int("width", info.Width),
		logging.Int("height", info.Height),
		logging.Float64("fps", info.FPS),
		logging.Float64("duration_seconds", info.Duration),
	)
	if !info.HasAudio {
		return Result{}, services.Wrap(services.ErrTranscription, stage, "extract audio", "video has no audio track", nil)
	}

	workDir, cleanup, err := b.workspace()
	if err != nil {
		return Result{}, err
	}
	defer cleanup()

	segments, err := b.transcribe(ctx, input, workDir)
	if err != nil {
		return Result{}, err
	}
	logger.Info("transcription complete", logging.Int("segments", len(segments)))

	charWidth := b.charWidth(segments, info.Width)
	cues := b.opts.Segmenter.Segment(segments, info.FPS, charWidth, info.Width)
	result := Result{
		Output:    output,
		Segments:  len(segments),
		Cues:      len(cues),
		FPS:       info.FPS,
		CharWidth: charWidth,
	}

	if req.SRTPath != "" {
		if err := captions.WriteSRTFile(req.SRTPath, cues, info.FPS); err != nil {
			logging.WarnWithContext(logger, "failed to write subtitle sidecar", "srt_write_failed",
				logging.Error(err),
				logging.String("path", req.SRTPath),
				logging.String(logging.FieldImpact, "captions are burned in but no .srt is available"),
			)
		} else {
			result.SRTPath = req.SRTPath
		}
	}

	frames, err := b.render(ctx, input, output, info, cues)
	if err != nil {
		return Result{}, err
	}
	result.Frames = frames
	result.Elapsed = time.Since(started)
	logger.Info("captions burned",
		logging.String("output", output),
		logging.Int("frames", frames),
		logging.Int("cues", len(cues)),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

func (b *Burner) workspace() (string, func(), error) {
	base := b.opts.WorkDir
	if base == "" {
		base = os.TempDir()
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", nil, services.Wrap(services.ErrConfiguration, stage, "prepare work dir", base, err)
	}
	dir, err := os.MkdirTemp(base, "burn-")
	if err != nil {
		return "", nil, services.Wrap(services.ErrConfiguration, stage, "prepare work dir", base, err)
	}
	cleanup := func() {
		if b.opts.KeepWork {
			return
		}
		if err := os.RemoveAll(dir); err != nil {
			b.logger.Debug("work dir cleanup failed", logging.String("path", dir), logging.Error(err))
		}
	}
	return dir, cleanup, nil
}

func (b *Burner) transcribe(ctx context.Context, input, workDir string) ([]captions.Segment, error) {
	audioPath := filepath.Join(workDir, "audio.wav")
	if err := b.opts.Media.ExtractAudio(ctx, input, audioPath); err != nil {
		return nil, services.Wrap(services.ErrTranscription, stage, "extract audio", input, err)
	}
	segments, err := b.opts.Transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, services.Wrap(services.ErrTranscription, stage, "transcribe", audioPath, err)
	}
	return segments, nil
}

// charWidth uses the configured width or measures the first non-empty
// segment at the font scale used for drawing.
func (b *Burner) charWidth(segments []captions.Segment, frameWidth int) float64 {
	if b.opts.CharWidth > 0 {
		return b.opts.CharWidth
	}
	fontScale := b.opts.Layout.BaseFontScale * b.opts.Layout.Scale(frameWidth)
	for _, seg := range segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			return b.opts.Painter.CharWidth(text, fontScale)
		}
	}
	return 0
}

func (b *Burner) render(ctx context.Context, input, output string, info media.VideoInfo, cues []captions.Cue) (int, error) {
	src, err := b.opts.Media.OpenFrames(ctx, input, info)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, stage, "decode frames", input, err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			b.logger.Debug("frame decoder exited with error", logging.Error(err))
		}
	}()

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return 0, services.Wrap(services.ErrConfiguration, stage, "prepare output", output, err)
	}
	sink, err := b.opts.Media.CreateOutput(ctx, output, media.OutputSpec{
		Width:       info.Width,
		Height:      info.Height,
		FPS:         info.FPS,
		AudioSource: input,
	})
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, stage, "encode frames", output, err)
	}

	written, renderErr := b.annotateAll(ctx, src, sink, info, captions.NewCueIndex(cues))
	closeErr := sink.Close()
	if renderErr != nil {
		return written, renderErr
	}
	if closeErr != nil {
		return written, services.Wrap(services.ErrExternalTool, stage, "finalize output", output, closeErr)
	}
	return written, nil
}

func (b *Burner) annotateAll(ctx context.Context, src media.FrameSource, sink media.FrameSink, info media.VideoInfo, index *captions.CueIndex) (int, error) {
	batchSize := b.opts.Workers * 4
	batch := make([]*image.RGBA, 0, batchSize)
	frame := 0
	for {
		batch = batch[:0]
		var readErr error
		for len(batch) < batchSize {
			img, err := src.Next()
			if err != nil {
				readErr = err
				break
			}
			batch = append(batch, img)
		}

		if err := b.annotateBatch(ctx, batch, frame, info, index); err != nil {
			return frame, err
		}
		for _, img := range batch {
			if err := sink.Write(img); err != nil {
				return frame, services.Wrap(services.ErrExternalTool, stage, "encode frames", fmt.Sprintf("frame %d", frame), err)
			}
			frame++
		}

		switch {
		case readErr == nil:
			continue
		case errors.Is(readErr, io.EOF):
			return frame, nil
		case errors.Is(readErr, io.ErrUnexpectedEOF):
			b.logger.Debug("decoder ended mid-frame", logging.Int("frames", frame))
			return frame, nil
		default:
			return frame, services.Wrap(services.ErrExternalTool, stage, "decode frames", fmt.Sprintf("frame %d", frame), readErr)
		}
	}
}

func (b *Burner) annotateBatch(ctx context.Context, batch []*image.RGBA, first int, info media.VideoInfo, index *captions.CueIndex) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)
	for i, img := range batch {
		frameNo := first + i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cue, ok := index.Lookup(frameNo)
			if !ok || cue.Line == "" {
				return nil
			}
			p := b.opts.Layout.Layout(cue.Line, info.Width, info.Height, b.opts.Painter)
			if err := b.opts.Painter.Draw(img, cue.Line, p); err != nil {
				return services.Wrap(services.ErrExternalTool, stage, "draw caption", fmt.Sprintf("frame %d", frameNo), err)
			}
			return nil
		})
	}
	return g.Wait()
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
