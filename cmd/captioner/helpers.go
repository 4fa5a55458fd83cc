package main

import (
	"path/filepath"
	"strings"
	"time"
)

func defaultOutput(input, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "output.mp4"
	}
	return filepath.Join(filepath.Dir(input), name)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// tail returns the last max runes of s.
func tail(s string, max int) string {
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	return string(runes[len(runes)-max:])
}
