package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// VideoInfo describes the first video stream of a file.
type VideoInfo struct {
	Width    int
	Height   int
	FPS      float64
	Duration float64
	// Frames is the container's frame count, 0 when unknown.
	Frames   int
	HasAudio bool
}

type probeResult struct {
	Streams []probeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	NBFrames     string `json:"nb_frames"`
	Duration     string `json:"duration"`
}

type outputRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func combinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput() //nolint:gosec
}

// Probe inspects path with ffprobe.
func Probe(ctx context.Context, binary, path string) (VideoInfo, error) {
	return probe(ctx, combinedOutput, binary, path)
}

func probe(ctx context.Context, run outputRunner, binary, path string) (VideoInfo, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return VideoInfo{}, errors.New("ffprobe: empty path")
	}
	output, err := run(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	if err != nil {
		return VideoInfo{}, fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return parseProbe(output)
}

func parseProbe(output []byte) (VideoInfo, error) {
	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return VideoInfo{}, fmt.Errorf("ffprobe parse: %w", err)
	}

	var info VideoInfo
	var video *probeStream
	for i := range result.Streams {
		stream := &result.Streams[i]
		switch strings.ToLower(stream.CodecType) {
		case "video":
			if video == nil {
				video = stream
			}
		case "audio":
			info.HasAudio = true
		}
	}
	if video == nil {
		return VideoInfo{}, errors.New("ffprobe: no video stream")
	}
	info.Width, info.Height = video.Width, video.Height
	if info.Width <= 0 || info.Height <= 0 {
		return VideoInfo{}, fmt.Errorf("ffprobe: invalid frame size %dx%d", info.Width, info.Height)
	}
	info.FPS = parseRate(video.AvgFrameRate)
	if info.FPS <= 0 {
		info.FPS = parseRate(video.RFrameRate)
	}
	if info.FPS <= 0 {
		return VideoInfo{}, errors.New("ffprobe: unknown frame rate")
	}
	info.Duration = parseFloat(result.Format.Duration)
	if info.Duration <= 0 {
		info.Duration = parseFloat(video.Duration)
	}
	if n, err := strconv.Atoi(strings.TrimSpace(video.NBFrames)); err == nil && n > 0 {
		info.Frames = n
	}
	return info, nil
}

// parseRate parses ffprobe rationals such as "30000/1001". Invalid input yields 0.
func parseRate(value string) float64 {
	num, den, found := strings.Cut(strings.TrimSpace(value), "/")
	if !found {
		return parseFloat(num)
	}
	n := parseFloat(num)
	d := parseFloat(den)
	if d == 0 {
		return 0
	}
	return n / d
}

func parseFloat(value string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0
	}
	return parsed
}
