// Package testsupport builds configurations and fixtures for package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"captioner/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig returns a default config whose paths live under a per-test temp
// directory. The directories are created.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.TranscriptPath = filepath.Join(base, "subtitles.txt")
	cfg.Paths.JournalPath = filepath.Join(base, "data", "sessions.db")
	cfg.API.Bind = "127.0.0.1:0"
	cfg.Logging.Format = "json"
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.LogDir, filepath.Dir(cfg.Paths.JournalPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfg}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithModel points the recognizer for lang at url.
func WithModel(lang, url string) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Live.Models == nil {
			b.cfg.Live.Models = make(map[string]string)
		}
		b.cfg.Live.Models[lang] = url
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg, ffprobe, and uvx are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe", "uvx"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			if err := os.WriteFile(filepath.Join(binDir, name), script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}

// WriteConfigFile encodes cfg as TOML under the test's base directory and
// returns the file path.
func WriteConfigFile(t testing.TB, cfg *config.Config) string {
	t.Helper()

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	path := filepath.Join(BaseDir(cfg), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
