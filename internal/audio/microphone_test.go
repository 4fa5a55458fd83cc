package audio

import (
	"context"
	"os/exec"
	"strings"
	"testing"
)

func TestDefaultInput(t *testing.T) {
	tests := []struct {
		goos, format, device string
	}{
		{"linux", "pulse", "default"},
		{"darwin", "avfoundation", ":default"},
		{"windows", "dshow", "audio=default"},
		{"freebsd", "pulse", "default"},
	}
	for _, tt := range tests {
		format, device := DefaultInput(tt.goos)
		if format != tt.format || device != tt.device {
			t.Errorf("DefaultInput(%s) = %s, %s", tt.goos, format, device)
		}
	}
}

func TestArgsUsePlatformDefaultsAndOverrides(t *testing.T) {
	m := NewMicrophone("", "", "", nil)
	m.goos = "darwin"
	joined := strings.Join(m.args(44100), " ")
	for _, fragment := range []string{"-f avfoundation", "-i :default", "-ac 1", "-ar 44100", "-f s16le -"} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("args %q missing %q", joined, fragment)
		}
	}

	m.Format, m.Device = "alsa", "hw:1"
	joined = strings.Join(m.args(16000), " ")
	if !strings.Contains(joined, "-f alsa -i hw:1") || !strings.Contains(joined, "-ar 16000") {
		t.Fatalf("override args %q", joined)
	}
}

func TestOpenStartsCapture(t *testing.T) {
	m := NewMicrophone("/usr/bin/ffmpeg", "", "", nil)
	var started *exec.Cmd
	m.start = func(cmd *exec.Cmd) error {
		started = cmd
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream, err := m.Open(ctx, 16000)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if stream == nil || started == nil {
		t.Fatal("expected a started capture command")
	}
	if started.Path != "/usr/bin/ffmpeg" {
		t.Fatalf("command path = %q", started.Path)
	}
}

func TestOpenRejectsBadRate(t *testing.T) {
	m := NewMicrophone("ffmpeg", "", "", nil)
	if _, err := m.Open(context.Background(), 0); err == nil {
		t.Fatal("expected error")
	}
}
