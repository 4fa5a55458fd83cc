package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"captioner/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCaptions()
	if err := c.normalizeTranscription(); err != nil {
		return err
	}
	if err := c.normalizeLive(); err != nil {
		return err
	}
	c.normalizeRedis()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TranscriptPath) == "" {
		c.Paths.TranscriptPath = defaultTranscriptPath
	}
	if c.Paths.TranscriptPath, err = expandPath(c.Paths.TranscriptPath); err != nil {
		return fmt.Errorf("paths.transcript_path: %w", err)
	}
	if c.Paths.JournalPath, err = expandPath(c.Paths.JournalPath); err != nil {
		return fmt.Errorf("paths.journal_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeCaptions() {
	c.Captions.OutputName = strings.TrimSpace(c.Captions.OutputName)
	if c.Captions.OutputName == "" {
		c.Captions.OutputName = defaultOutputName
	}
	if c.Captions.ReferenceWidth == 0 {
		c.Captions.ReferenceWidth = defaultReferenceWidth
	}
	if c.Captions.FontSize == 0 {
		c.Captions.FontSize = defaultFontSize
	}
}

func (c *Config) normalizeTranscription() error {
	c.Transcription.Engine = strings.ToLower(strings.TrimSpace(c.Transcription.Engine))
	if c.Transcription.Engine == "" {
		c.Transcription.Engine = defaultEngine
	}
	if lang := strings.TrimSpace(c.Transcription.Language); lang != "" {
		parsed, err := language.Parse(lang)
		if err != nil {
			return fmt.Errorf("transcription.language: %w", err)
		}
		c.Transcription.Language = parsed.String()
	}
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultModel
	}
	if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok && strings.TrimSpace(value) != "" {
		c.Transcription.OpenAIAPIKey = strings.TrimSpace(value)
	}
	c.Transcription.OpenAIAPIKey = strings.TrimSpace(c.Transcription.OpenAIAPIKey)
	c.Transcription.OpenAIBaseURL = strings.TrimSpace(c.Transcription.OpenAIBaseURL)
	if c.Transcription.OpenAIBaseURL == "" {
		if value, ok := os.LookupEnv("OPENAI_BASE_URL"); ok {
			c.Transcription.OpenAIBaseURL = strings.TrimSpace(value)
		}
	}
	c.Transcription.OpenAIModel = strings.TrimSpace(c.Transcription.OpenAIModel)
	if c.Transcription.OpenAIModel == "" {
		c.Transcription.OpenAIModel = defaultOpenAIModel
	}
	return nil
}

func (c *Config) normalizeLive() error {
	lang := strings.TrimSpace(c.Live.Language)
	if lang == "" {
		lang = defaultLiveLanguage
	}
	parsed, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("live.language: %w", err)
	}
	c.Live.Language = parsed.String()

	c.Live.AudioSource = strings.ToLower(strings.TrimSpace(c.Live.AudioSource))
	if c.Live.AudioSource == "" {
		c.Live.AudioSource = defaultAudioSource
	}
	c.Live.InputFormat = strings.TrimSpace(c.Live.InputFormat)
	c.Live.InputDevice = strings.TrimSpace(c.Live.InputDevice)

	// Decoding merges into the default map, so aliases such as "hi" are
	// applied after canonical keys and win over the built-in URLs.
	keys := make([]string, 0, len(c.Live.Models))
	for key := range c.Live.Models {
		keys = append(keys, key)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		ci, cj := isCanonicalLanguage(keys[i]), isCanonicalLanguage(keys[j])
		if ci != cj {
			return ci
		}
		return keys[i] < keys[j]
	})
	models := make(map[string]string, len(keys))
	for _, key := range keys {
		parsed, err := language.Parse(key)
		if err != nil {
			return fmt.Errorf("live.models: %w", err)
		}
		if url := strings.TrimSpace(c.Live.Models[key]); url != "" {
			models[parsed.String()] = url
		}
	}
	c.Live.Models = models
	return nil
}

func isCanonicalLanguage(key string) bool {
	parsed, err := language.Parse(key)
	return err == nil && parsed.String() == key
}

func (c *Config) normalizeRedis() {
	c.Redis.Addr = strings.TrimSpace(c.Redis.Addr)
	if c.Redis.Addr == "" {
		c.Redis.Addr = defaultRedisAddr
	}
	if value, ok := os.LookupEnv("CAPTIONER_REDIS_PASSWORD"); ok && strings.TrimSpace(value) != "" {
		c.Redis.Password = strings.TrimSpace(value)
	}
	c.Redis.Key = strings.TrimSpace(c.Redis.Key)
	c.Redis.Channel = strings.TrimSpace(c.Redis.Channel)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
