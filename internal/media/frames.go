package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// FrameReader decodes a video into RGBA frames.
type FrameReader struct {
	r      io.Reader
	width  int
	height int

	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *bytes.Buffer
}

// OpenFrames starts ffmpeg decoding path to raw RGBA frames of the given size.
func OpenFrames(ctx context.Context, ffmpegBinary, path string, width, height int) (*FrameReader, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("open frames: invalid size %dx%d", width, height)
	}
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary, //nolint:gosec
		"-hide_banner", "-loglevel", "error",
		"-i", path,
		"-map", "0:v:0",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open frames: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("open frames: start ffmpeg: %w", err)
	}
	fr := newFrameReader(stdout, width, height)
	fr.cmd, fr.stdout, fr.stderr = cmd, stdout, &stderr
	return fr, nil
}

func newFrameReader(r io.Reader, width, height int) *FrameReader {
	return &FrameReader{r: r, width: width, height: height}
}

// Next returns the next frame, or io.EOF when the stream ends. A truncated
// final frame is reported as io.ErrUnexpectedEOF.
func (f *FrameReader) Next() (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	if _, err := io.ReadFull(f.r, img.Pix); err != nil {
		return nil, err
	}
	return img, nil
}

// Close stops the decoder.
func (f *FrameReader) Close() error {
	if f.cmd == nil {
		return nil
	}
	// Drain so ffmpeg can exit if the caller stopped early.
	_, _ = io.Copy(io.Discard, f.stdout)
	if err := f.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg decode: %w: %s", err, strings.TrimSpace(f.stderr.String()))
	}
	return nil
}

// FrameWriter encodes RGBA frames to a video file.
type FrameWriter struct {
	w      io.Writer
	width  int
	height int

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *bytes.Buffer
	once   sync.Once
}

// OutputSpec describes the encoded output.
type OutputSpec struct {
	Width  int
	Height int
	FPS    float64
	// AudioSource is muxed into the output when it carries an audio stream.
	AudioSource string
}

// CreateOutput starts ffmpeg encoding raw RGBA frames into dest.
func CreateOutput(ctx context.Context, ffmpegBinary, dest string, spec OutputSpec) (*FrameWriter, error) {
	if spec.Width <= 0 || spec.Height <= 0 || spec.FPS <= 0 {
		return nil, fmt.Errorf("create output: invalid spec %+v", spec)
	}
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary, encodeArgs(dest, spec)...) //nolint:gosec
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("create output: start ffmpeg: %w", err)
	}
	fw := newFrameWriter(stdin, spec.Width, spec.Height)
	fw.cmd, fw.stdin, fw.stderr = cmd, stdin, &stderr
	return fw, nil
}

func newFrameWriter(w io.Writer, width, height int) *FrameWriter {
	return &FrameWriter{w: w, width: width, height: height}
}

func encodeArgs(dest string, spec OutputSpec) []string {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", spec.Width, spec.Height),
		"-r", strconv.FormatFloat(spec.FPS, 'f', -1, 64),
		"-i", "-",
	}
	if spec.AudioSource != "" {
		args = append(args, "-i", spec.AudioSource, "-map", "0:v:0", "-map", "1:a?", "-c:a", "aac")
	}
	args = append(args,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-shortest",
		dest,
	)
	return args
}

// Write encodes one frame. The frame must match the output size.
func (f *FrameWriter) Write(img *image.RGBA) error {
	bounds := img.Bounds()
	if bounds.Dx() != f.width || bounds.Dy() != f.height {
		return fmt.Errorf("write frame: size %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), f.width, f.height)
	}
	rowBytes := f.width * 4
	if img.Stride == rowBytes {
		_, err := f.w.Write(img.Pix[:rowBytes*f.height])
		return err
	}
	for y := range f.height {
		start := y * img.Stride
		if _, err := f.w.Write(img.Pix[start : start+rowBytes]); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes the encoder and waits for ffmpeg to finish the file.
func (f *FrameWriter) Close() error {
	var err error
	f.once.Do(func() {
		if f.cmd == nil {
			return
		}
		closeErr := f.stdin.Close()
		waitErr := f.cmd.Wait()
		if waitErr != nil {
			err = fmt.Errorf("ffmpeg encode: %w: %s", waitErr, strings.TrimSpace(f.stderr.String()))
			return
		}
		if closeErr != nil && !errors.Is(closeErr, io.ErrClosedPipe) {
			err = closeErr
		}
	})
	return err
}
