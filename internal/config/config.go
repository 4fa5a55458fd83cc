package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations.
type Paths struct {
	WorkDir        string `toml:"work_dir"`
	LogDir         string `toml:"log_dir"`
	TranscriptPath string `toml:"transcript_path"`
	JournalPath    string `toml:"journal_path"`
}

// Captions contains segmentation and burn-in settings.
type Captions struct {
	// LeadFrames delays every cue to compensate for sync bias.
	LeadFrames int `toml:"lead_frames"`
	// ReferenceWidth is the frame width the base font values are tuned for.
	ReferenceWidth   int     `toml:"reference_width"`
	FontScale        float64 `toml:"font_scale"`
	Thickness        int     `toml:"thickness"`
	VerticalPosition float64 `toml:"vertical_position"`
	// FontSize is the glyph height in pixels at font scale 1.
	FontSize float64 `toml:"font_size"`
	// CharWidth overrides the estimated pixel width of a character. 0 measures it.
	CharWidth float64 `toml:"char_width"`
	// Workers bounds parallel frame annotation. 0 uses every CPU.
	Workers    int    `toml:"workers"`
	WriteSRT   bool   `toml:"write_srt"`
	OutputName string `toml:"output_name"`
	KeepWork   bool   `toml:"keep_work_files"`
}

// Transcription selects and configures the batch speech-to-text engine.
type Transcription struct {
	Engine         string `toml:"engine"`
	Language       string `toml:"language"`
	Model          string `toml:"model"`
	CUDAEnabled    bool   `toml:"cuda_enabled"`
	OpenAIAPIKey   string `toml:"openai_api_key"`
	OpenAIBaseURL  string `toml:"openai_base_url"`
	OpenAIModel    string `toml:"openai_model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Live contains streaming recognizer and capture settings.
type Live struct {
	Language           string `toml:"language"`
	SampleRate         int    `toml:"sample_rate"`
	ChunkFrames        int    `toml:"chunk_frames"`
	StopTimeoutSeconds int    `toml:"stop_timeout_seconds"`
	AudioSource        string `toml:"audio_source"`
	// InputFormat and InputDevice select the ffmpeg capture device. Empty
	// values use the platform default.
	InputFormat string `toml:"input_format"`
	InputDevice string `toml:"input_device"`
	// Models maps a language to its recognizer server URL.
	Models map[string]string `toml:"models"`
}

// Redis mirrors the live transcript for other consumers.
type Redis struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Key      string `toml:"key"`
	Channel  string `toml:"channel"`
}

// API contains the live HTTP endpoint settings.
type API struct {
	Enabled bool   `toml:"enabled"`
	Bind    string `toml:"bind"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for captioner.
//
// Configuration sections by subsystem:
//   - Paths: work files, logs, transcript, and session journal
//   - Captions: cue timing and burn-in layout
//   - Transcription: batch engine used by burn
//   - Live: streaming recognizer, capture device, and stop timeout
//   - Redis: optional transcript mirror
//   - API: optional HTTP/SSE endpoint for live text
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Captions      Captions      `toml:"captions"`
	Transcription Transcription `toml:"transcription"`
	Live          Live          `toml:"live"`
	Redis         Redis         `toml:"redis"`
	API           API           `toml:"api"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("captioner.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the work and log directories and the parents of
// the transcript and journal files.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.WorkDir,
		c.Paths.LogDir,
		filepath.Dir(c.Paths.TranscriptPath),
		filepath.Dir(c.Paths.JournalPath),
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// StopTimeout returns the bounded wait applied when stopping a live session.
func (c *Config) StopTimeout() time.Duration {
	return time.Duration(c.Live.StopTimeoutSeconds) * time.Second
}

// TranscriptionTimeout returns the per-request limit for the batch engine.
func (c *Config) TranscriptionTimeout() time.Duration {
	return time.Duration(c.Transcription.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
