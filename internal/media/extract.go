package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ExtractAudio writes the first audio stream of source to dest as 16 kHz mono PCM WAV.
func ExtractAudio(ctx context.Context, ffmpegBinary, source, dest string) error {
	return extractAudio(ctx, combinedOutput, ffmpegBinary, source, dest)
}

func extractAudio(ctx context.Context, run outputRunner, ffmpegBinary, source, dest string) error {
	if strings.TrimSpace(source) == "" || strings.TrimSpace(dest) == "" {
		return errors.New("extract audio: source and destination required")
	}
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	if output, err := run(ctx, ffmpegBinary, extractArgs(source, dest)...); err != nil {
		return fmt.Errorf("ffmpeg extract: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func extractArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", "0:a:0",
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
}
