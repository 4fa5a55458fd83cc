package media

import (
	"context"
	"image"
)

// FrameSource yields decoded frames until io.EOF.
type FrameSource interface {
	Next() (*image.RGBA, error)
	Close() error
}

// FrameSink accepts frames in presentation order.
type FrameSink interface {
	Write(img *image.RGBA) error
	Close() error
}

// Tool runs the media operations with configured binaries.
type Tool struct {
	FFmpeg  string
	FFprobe string
}

// NewTool returns a Tool; empty names resolve through PATH.
func NewTool(ffmpegBinary, ffprobeBinary string) Tool {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	if ffprobeBinary == "" {
		ffprobeBinary = "ffprobe"
	}
	return Tool{FFmpeg: ffmpegBinary, FFprobe: ffprobeBinary}
}

func (t Tool) Probe(ctx context.Context, path string) (VideoInfo, error) {
	return Probe(ctx, t.FFprobe, path)
}

func (t Tool) ExtractAudio(ctx context.Context, source, dest string) error {
	return ExtractAudio(ctx, t.FFmpeg, source, dest)
}

func (t Tool) OpenFrames(ctx context.Context, path string, info VideoInfo) (FrameSource, error) {
	fr, err := OpenFrames(ctx, t.FFmpeg, path, info.Width, info.Height)
	if err != nil {
		return nil, err
	}
	return fr, nil
}

func (t Tool) CreateOutput(ctx context.Context, dest string, spec OutputSpec) (FrameSink, error) {
	fw, err := CreateOutput(ctx, t.FFmpeg, dest, spec)
	if err != nil {
		return nil, err
	}
	return fw, nil
}
