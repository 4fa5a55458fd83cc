package captions

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// WriteSRT writes cues as SubRip using fps to convert frames to timestamps.
// Empty or zero-span cues are skipped.
func WriteSRT(w io.Writer, cues []Cue, fps float64) error {
	if fps <= 0 {
		return fmt.Errorf("write srt: invalid frame rate %v", fps)
	}
	bw := bufio.NewWriter(w)
	n := 0
	for _, cue := range cues {
		line := strings.TrimSpace(cue.Line)
		if line == "" || cue.EndFrame <= cue.StartFrame {
			continue
		}
		n++
		start := float64(cue.StartFrame) / fps
		end := float64(cue.EndFrame) / fps
		if _, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n", n, formatSRTTimestamp(start), formatSRTTimestamp(end), line); err != nil {
			return fmt.Errorf("write srt: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return nil
}

// WriteSRTFile writes cues to path atomically via a temp file and rename.
func WriteSRTFile(path string, cues []Cue, fps float64) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("write srt: create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck

	if err := WriteSRT(tmp, cues, fps); err != nil {
		tmp.Close() //nolint:errcheck
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write srt: close temp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("write srt: rename: %w", err)
	}
	return nil
}

func formatSRTTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	msTotal := int(seconds*1000 + 0.5)
	hours := msTotal / 3_600_000
	msTotal %= 3_600_000
	minutes := msTotal / 60_000
	msTotal %= 60_000
	secs := msTotal / 1_000
	millis := msTotal % 1_000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
