package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"captioner/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "captioner", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.Paths.TranscriptPath != filepath.Join(tempHome, "subtitles.txt") {
		t.Fatalf("unexpected transcript path: %q", cfg.Paths.TranscriptPath)
	}
	if cfg.Captions.LeadFrames != 15 {
		t.Fatalf("unexpected lead frames: %d", cfg.Captions.LeadFrames)
	}
	if cfg.Live.SampleRate != 44100 || cfg.Live.ChunkFrames != 2000 {
		t.Fatalf("unexpected live audio settings: %+v", cfg.Live)
	}
	if cfg.StopTimeout() != 5*time.Second {
		t.Fatalf("unexpected stop timeout: %v", cfg.StopTimeout())
	}
	if cfg.Live.Language != "english" {
		t.Fatalf("unexpected live language: %q", cfg.Live.Language)
	}
	if cfg.Transcription.Engine != config.EngineWhisperX {
		t.Fatalf("unexpected engine: %q", cfg.Transcription.Engine)
	}
	if cfg.Redis.Enabled || cfg.API.Enabled {
		t.Fatal("expected redis and api disabled by default")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.LogDir, filepath.Dir(cfg.Paths.JournalPath)} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "captioner.toml")

	type payload struct {
		Captions struct {
			LeadFrames int  `toml:"lead_frames"`
			WriteSRT   bool `toml:"write_srt"`
		} `toml:"captions"`
		Live struct {
			Language string            `toml:"language"`
			Models   map[string]string `toml:"models"`
		} `toml:"live"`
	}
	custom := payload{}
	custom.Captions.LeadFrames = 5
	custom.Captions.WriteSRT = true
	custom.Live.Language = "hi"
	custom.Live.Models = map[string]string{"hin": "ws://recognizer:2800"}
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Captions.LeadFrames != 5 || !cfg.Captions.WriteSRT {
		t.Fatalf("expected caption overrides, got %+v", cfg.Captions)
	}
	if cfg.Live.Language != "hindi" {
		t.Fatalf("expected language normalized to hindi, got %q", cfg.Live.Language)
	}
	if got := cfg.Live.Models["hindi"]; got != "ws://recognizer:2800" {
		t.Fatalf("expected hindi model url, got %q (models %v)", got, cfg.Live.Models)
	}
}

func TestEnvVarOverridesConfigFileForSecrets(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "captioner.toml")
	contents := `
[transcription]
engine = "openai"
openai_api_key = "file-key"

[redis]
enabled = true
password = "file-pass"
`
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("CAPTIONER_REDIS_PASSWORD", "env-pass")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Transcription.OpenAIAPIKey != "env-key" {
		t.Errorf("expected OpenAI key from env, got %q", cfg.Transcription.OpenAIAPIKey)
	}
	if cfg.Redis.Password != "env-pass" {
		t.Errorf("expected redis password from env, got %q", cfg.Redis.Password)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "your_openai_api_key_here") {
		t.Fatalf("sample config missing placeholder OpenAI key: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Live.Models["hindi"] == "" {
		t.Fatalf("expected sample to configure a hindi recognizer, got %v", cfg.Live.Models)
	}
	if !strings.Contains(cfg.Paths.WorkDir, "captioner") {
		t.Fatalf("expected work dir to contain captioner, got %q", cfg.Paths.WorkDir)
	}
}

func TestLoadRejectsUnknownLanguage(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "captioner.toml")
	if err := os.WriteFile(configPath, []byte("[live]\nlanguage = \"klingon\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unsupported live language")
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"negative lead", func(c *config.Config) { c.Captions.LeadFrames = -1 }},
		{"zero reference width", func(c *config.Config) { c.Captions.ReferenceWidth = 0 }},
		{"vertical position out of range", func(c *config.Config) { c.Captions.VerticalPosition = 1.5 }},
		{"unknown engine", func(c *config.Config) { c.Transcription.Engine = "vosk" }},
		{"openai without key", func(c *config.Config) { c.Transcription.Engine = config.EngineOpenAI }},
		{"zero stop timeout", func(c *config.Config) { c.Live.StopTimeoutSeconds = 0 }},
		{"zero chunk", func(c *config.Config) { c.Live.ChunkFrames = 0 }},
		{"missing model", func(c *config.Config) { delete(c.Live.Models, "english") }},
		{"http model url", func(c *config.Config) { c.Live.Models["english"] = "http://x" }},
		{"system audio", func(c *config.Config) { c.Live.AudioSource = "system" }},
		{"redis without key", func(c *config.Config) {
			c.Redis.Enabled = true
			c.Redis.Key = ""
			c.Redis.Channel = ""
		}},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}
