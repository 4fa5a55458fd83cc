package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"captioner/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateLive(); err != nil {
		return err
	}
	if err := c.validateRedis(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateCaptions() error {
	if c.Captions.LeadFrames < 0 {
		return errors.New("captions.lead_frames must not be negative")
	}
	if err := ensurePositiveMap(map[string]int{
		"captions.reference_width": c.Captions.ReferenceWidth,
		"captions.thickness":       c.Captions.Thickness,
	}); err != nil {
		return err
	}
	if c.Captions.FontScale <= 0 {
		return errors.New("captions.font_scale must be positive")
	}
	if c.Captions.FontSize <= 0 {
		return errors.New("captions.font_size must be positive")
	}
	if c.Captions.VerticalPosition <= 0 || c.Captions.VerticalPosition > 1 {
		return errors.New("captions.vertical_position must be between 0 and 1")
	}
	if c.Captions.CharWidth < 0 {
		return errors.New("captions.char_width must not be negative")
	}
	if c.Captions.Workers < 0 {
		return errors.New("captions.workers must not be negative")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Engine {
	case EngineWhisperX:
	case EngineOpenAI:
		if c.Transcription.OpenAIAPIKey == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = defaultConfigPath
			}
			return fmt.Errorf("transcription.openai_api_key is required for the openai engine. Set OPENAI_API_KEY env var or edit %s (create with 'captioner config init')", defaultPath)
		}
	default:
		return fmt.Errorf("transcription.engine: unsupported value %q (want %s or %s)", c.Transcription.Engine, EngineWhisperX, EngineOpenAI)
	}
	if c.Transcription.TimeoutSeconds <= 0 {
		return errors.New("transcription.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLive() error {
	if err := ensurePositiveMap(map[string]int{
		"live.sample_rate":          c.Live.SampleRate,
		"live.chunk_frames":         c.Live.ChunkFrames,
		"live.stop_timeout_seconds": c.Live.StopTimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Live.AudioSource != AudioSourceMicrophone {
		return fmt.Errorf("live.audio_source: unsupported value %q (want %s)", c.Live.AudioSource, AudioSourceMicrophone)
	}
	if _, ok := c.Live.Models[c.Live.Language]; !ok {
		return fmt.Errorf("live.models must include a recognizer URL for %q", c.Live.Language)
	}
	for lang, url := range c.Live.Models {
		if !language.Language(lang).Valid() {
			return fmt.Errorf("live.models: unsupported language %q", lang)
		}
		if !strings.HasPrefix(url, "ws://") && !strings.HasPrefix(url, "wss://") {
			return fmt.Errorf("live.models.%s must be a ws:// or wss:// URL", lang)
		}
	}
	return nil
}

func (c *Config) validateRedis() error {
	if !c.Redis.Enabled {
		return nil
	}
	if c.Redis.Key == "" && c.Redis.Channel == "" {
		return errors.New("redis.key or redis.channel must be set when redis.enabled is true")
	}
	if c.Redis.DB < 0 {
		return errors.New("redis.db must not be negative")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.Enabled && strings.TrimSpace(c.API.Bind) == "" {
		return errors.New("api.bind must be set when api.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
